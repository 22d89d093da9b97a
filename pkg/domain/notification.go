package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity validates a raw severity.
func ParseSeverity(raw string) (Severity, error) {
	switch s := Severity(raw); s {
	case SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown severity %q", ErrInvalidParams, raw)
}

// DefaultNotificationDuration is used when a request carries no duration.
const DefaultNotificationDuration = 5000 * time.Millisecond

// NotificationRequest is the input of an enqueue. On the wire the duration
// is an integer number of milliseconds, "duration_ms".
type NotificationRequest struct {
	Severity    Severity
	Title       string
	Description string
	Duration    time.Duration // zero means the queue default
}

type notificationRequestJSON struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DurationMS  int64    `json:"duration_ms,omitempty"`
}

// MarshalJSON encodes the duration as duration_ms.
func (r NotificationRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(notificationRequestJSON{
		Severity:    r.Severity,
		Title:       r.Title,
		Description: r.Description,
		DurationMS:  r.Duration.Milliseconds(),
	})
}

// UnmarshalJSON decodes duration_ms and rejects unknown fields.
func (r *NotificationRequest) UnmarshalJSON(data []byte) error {
	var raw notificationRequestJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*r = NotificationRequest{
		Severity:    raw.Severity,
		Title:       raw.Title,
		Description: raw.Description,
		Duration:    time.Duration(raw.DurationMS) * time.Millisecond,
	}
	return nil
}

// Notification is a queued toast.
type Notification struct {
	ID          string
	Severity    Severity
	Title       string
	Description string
	Duration    time.Duration
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type notificationJSON struct {
	ID          string    `json:"id"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MarshalJSON encodes the duration as duration_ms.
func (n Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(notificationJSON{
		ID:          n.ID,
		Severity:    n.Severity,
		Title:       n.Title,
		Description: n.Description,
		DurationMS:  n.Duration.Milliseconds(),
		CreatedAt:   n.CreatedAt,
		ExpiresAt:   n.ExpiresAt,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (n *Notification) UnmarshalJSON(data []byte) error {
	var raw notificationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Notification{
		ID:          raw.ID,
		Severity:    raw.Severity,
		Title:       raw.Title,
		Description: raw.Description,
		Duration:    time.Duration(raw.DurationMS) * time.Millisecond,
		CreatedAt:   raw.CreatedAt,
		ExpiresAt:   raw.ExpiresAt,
	}
	return nil
}
