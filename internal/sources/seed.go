package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"homeboard/internal/core"
)

// Seed is the on-disk shape of DATA_DIR/seed.json, keyed by user id.
type Seed struct {
	Users map[string]SeedUser `json:"users"`
}

type SeedUser struct {
	Journals []struct {
		Title     string    `json:"title"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"journals"`
	Goals []struct {
		Title string `json:"title"`
	} `json:"goals"`
	StreakDays   []string `json:"streakDays"`
	Transactions []struct {
		Amount    string    `json:"amount"`
		Type      string    `json:"type"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"transactions"`
}

// SeedWriter is the write side of a store that can take seed rows.
type SeedWriter interface {
	CreateJournal(ctx context.Context, userID, title string, createdAt time.Time) (core.JournalSummary, error)
	CreateGoal(ctx context.Context, userID, title string) (core.GoalSummary, error)
	RecordStreakDay(ctx context.Context, userID string, day core.Date) error
	AddTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error)
}

// DecodeSeed reads a seed document.
func DecodeSeed(r io.Reader) (Seed, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return seed, nil
}

// ApplySeed writes every row of seed through w. Streak days are read in loc.
func ApplySeed(ctx context.Context, seed Seed, w SeedWriter, loc *time.Location) error {
	for userID, su := range seed.Users {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			return fmt.Errorf("seed: %w", core.ErrEmptyID)
		}
		for i, j := range su.Journals {
			if _, err := w.CreateJournal(ctx, userID, j.Title, j.CreatedAt); err != nil {
				return fmt.Errorf("user %s journal %d: %w", userID, i, err)
			}
		}
		for i, g := range su.Goals {
			if _, err := w.CreateGoal(ctx, userID, g.Title); err != nil {
				return fmt.Errorf("user %s goal %d: %w", userID, i, err)
			}
		}
		for _, raw := range su.StreakDays {
			d, err := core.ParseDate(raw, loc)
			if err != nil {
				return fmt.Errorf("user %s streak day: %w", userID, err)
			}
			if err := w.RecordStreakDay(ctx, userID, d); err != nil {
				return fmt.Errorf("user %s streak day: %w", userID, err)
			}
		}
		for i, t := range su.Transactions {
			tx, err := ParseTransaction(t.Amount, t.Type, t.Timestamp)
			if err != nil {
				return fmt.Errorf("user %s transaction %d: %w", userID, i, err)
			}
			if _, err := w.AddTransaction(ctx, userID, tx); err != nil {
				return fmt.Errorf("user %s transaction %d: %w", userID, i, err)
			}
		}
	}
	return nil
}

// ParseTransaction builds a transaction from a decimal amount and a type name.
func ParseTransaction(amount, typ string, at time.Time) (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := core.ParseTxType(typ)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{Amount: core.Money{Cents: cents}, Type: t, Timestamp: at}, nil
}
