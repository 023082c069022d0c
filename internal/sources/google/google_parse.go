package google

import (
	"fmt"
	"strings"
	"time"

	"homeboard/internal/core"
)

type userTx struct {
	user string
	tx   core.Transaction
}

const (
	colID = iota
	colUser
	colDate
	colType
	colAmount
	numCols
)

// parseTransactions converts a values matrix into transactions. A leading
// header row and rows that do not parse are skipped; the second return value
// counts the skipped data rows.
func parseTransactions(values [][]interface{}, loc *time.Location) ([]userTx, int) {
	out := make([]userTx, 0, len(values))
	skipped := 0
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		if i == 0 && looksLikeHeader(row) {
			continue
		}
		r, ok := parseRow(row, loc)
		if !ok {
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, skipped
}

func parseRow(row []string, loc *time.Location) (userTx, bool) {
	if len(row) < numCols {
		return userTx{}, false
	}
	ts, ok := parseTimestamp(row[colDate], loc)
	if !ok {
		return userTx{}, false
	}
	typ, err := core.ParseTxType(row[colType])
	if err != nil {
		return userTx{}, false
	}
	cents, err := core.ParseDecimalToCents(stripCurrency(row[colAmount]))
	if err != nil {
		return userTx{}, false
	}
	tx := core.Transaction{ID: row[colID], Amount: core.Money{Cents: cents}, Type: typ, Timestamp: ts}
	if err := tx.Validate(); err != nil || row[colUser] == "" {
		return userTx{}, false
	}
	return userTx{user: row[colUser], tx: tx}, true
}

// parseTimestamp accepts RFC 3339 instants or plain dates in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("02/01/2006", s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func stripCurrency(s string) string {
	return strings.NewReplacer("€", "", "$", "", " ", "").Replace(s)
}

func looksLikeHeader(row []string) bool {
	return strings.EqualFold(row[0], "id") || (len(row) > colDate && strings.EqualFold(row[colDate], "date"))
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
