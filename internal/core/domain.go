package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

type (
	TxType string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID        string
		Amount    Money
		Type      TxType
		Timestamp time.Time
	}

	// JournalSummary is the read-only projection of a journal entry shown on the dashboard.
	JournalSummary struct {
		ID    string
		Title string
	}

	GoalSummary struct {
		ID    string
		Title string
	}

	// StreakRecord marks one day on which the tracked activity happened.
	StreakRecord struct {
		Date Date
	}

	StreakSnapshot struct {
		Count int
		Items []StreakRecord
	}
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrEmptyID       = errors.New("empty id")
	ErrZeroTimestamp = errors.New("zero timestamp")
	ErrNegativeCount = errors.New("negative streak count")
)

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTxType accepts "income" and "expense" case-insensitively.
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (tx Transaction) Validate() error {
	if strings.TrimSpace(tx.ID) == "" {
		return ErrEmptyID
	}
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}

func (s StreakSnapshot) Validate() error {
	if s.Count < 0 {
		return ErrNegativeCount
	}
	return nil
}

// DisplayTitle returns the title, or the placeholder when it is blank.
func (j JournalSummary) DisplayTitle() (string, bool) {
	return displayTitle(j.Title, "Untitled Entry")
}

func (g GoalSummary) DisplayTitle() (string, bool) {
	return displayTitle(g.Title, "Untitled Goal")
}

// displayTitle reports whether the placeholder was used.
func displayTitle(title, placeholder string) (string, bool) {
	if strings.TrimSpace(title) == "" {
		return placeholder, true
	}
	return title, false
}
