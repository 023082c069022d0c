package core

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	boom := errors.New("boom")
	items := []JournalSummary{{ID: "1"}}

	cases := []struct {
		name string
		env  Envelope[[]JournalSummary]
		want State
	}{
		{"data", Ok(items), StatePopulated},
		{"empty slice", Ok([]JournalSummary{}), StateEmpty},
		{"nil slice", Ok[[]JournalSummary](nil), StateEmpty},
		{"absent", Absent[[]JournalSummary](), StateEmpty},
		{"error without data", Fail[[]JournalSummary](boom), StateError},
		{"error dominates data", Wrap(items, boom), StateError},
		{"error dominates empty", Wrap([]JournalSummary{}, boom), StateError},
	}
	for _, tc := range cases {
		if got := Classify(tc.env, EmptySlice[JournalSummary]); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassifyWithoutEmptinessCheck(t *testing.T) {
	if got := Classify(Ok(StreakSnapshot{}), nil); got != StatePopulated {
		t.Fatalf("present snapshot should be populated, got %s", got)
	}
	if got := Classify(Absent[StreakSnapshot](), nil); got != StateEmpty {
		t.Fatalf("absent snapshot should be empty, got %s", got)
	}
}
