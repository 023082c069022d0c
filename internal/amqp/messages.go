package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"homeboard/internal/core"
)

var ErrInvalidMessage = errors.New("invalid message")

// ActivityRecordedMessage asks the worker to record one streak day for a
// user. The ID makes redeliveries traceable in logs; recording itself is
// idempotent per user and day.
type ActivityRecordedMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"`
	Timestamp time.Time `json:"timestamp"`
}

func NewActivityRecordedMessage(userID string, day core.Date) *ActivityRecordedMessage {
	return &ActivityRecordedMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Day:       day.String(),
		Timestamp: time.Now(),
	}
}

// Date parses the message day in loc.
func (m *ActivityRecordedMessage) Date(loc *time.Location) (core.Date, error) {
	return core.ParseDate(m.Day, loc)
}

func (m *ActivityRecordedMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidMessage)
	}
	if _, err := core.ParseDate(m.Day, time.UTC); err != nil {
		return fmt.Errorf("%w: day %q", ErrInvalidMessage, m.Day)
	}
	return nil
}

func (m *ActivityRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityRecordedMessageFromJSON decodes and validates a message body.
func ActivityRecordedMessageFromJSON(data []byte) (*ActivityRecordedMessage, error) {
	var msg ActivityRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
