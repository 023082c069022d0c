package core

import "time"

var weekLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekDaySlot is one cell of the weekly streak strip.
type WeekDaySlot struct {
	Label     string `json:"label"`
	IsPresent bool   `json:"isPresent"`
}

// MondayOf returns the Monday of d's week. Weeks start on Monday, so a
// Sunday belongs to the week that began six days earlier.
func MondayOf(d Date) Date {
	wd := d.Weekday()
	if wd == time.Sunday {
		return d.AddDays(-6)
	}
	return d.AddDays(-(int(wd) - 1))
}

// BuildWeek marks which days of today's week (Mon..Sun) have a streak record.
// Records outside the week are ignored and duplicates count once.
func BuildWeek(today Date, items []StreakRecord) [7]WeekDaySlot {
	monday := MondayOf(today)

	var week [7]WeekDaySlot
	for i, label := range weekLabels {
		target := monday.AddDays(i)
		week[i] = WeekDaySlot{Label: label, IsPresent: hasRecordOn(items, target)}
	}
	return week
}

func hasRecordOn(items []StreakRecord, day Date) bool {
	for _, it := range items {
		if it.Date.Equal(day) {
			return true
		}
	}
	return false
}

// CurrentStreak counts consecutive recorded days ending today. A streak that
// ended yesterday is still alive until today is over.
func CurrentStreak(days []Date, today Date) int {
	seen := make(map[int]struct{}, len(days))
	for _, d := range days {
		seen[d.key()] = struct{}{}
	}

	cursor := today
	if _, ok := seen[cursor.key()]; !ok {
		cursor = cursor.AddDays(-1)
	}

	count := 0
	for {
		if _, ok := seen[cursor.key()]; !ok {
			return count
		}
		count++
		cursor = cursor.AddDays(-1)
	}
}
