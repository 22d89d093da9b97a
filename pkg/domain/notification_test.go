package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRequest_DurationMilliseconds(t *testing.T) {
	var req NotificationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"severity":"info","title":"t","duration_ms":100}`), &req))
	assert.Equal(t, 100*time.Millisecond, req.Duration)

	data, err := json.Marshal(NotificationRequest{Title: "t", Duration: 2 * time.Second})
	require.NoError(t, err)
	assert.JSONEq(t, `{"severity":"","title":"t","duration_ms":2000}`, string(data))

	err = json.Unmarshal([]byte(`{"title":"t","duration":100}`), &req)
	assert.Error(t, err)
}

func TestNotification_JSON(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := Notification{
		ID:        "n1",
		Severity:  SeverityWarning,
		Title:     "Comparison is full",
		Duration:  5 * time.Second,
		CreatedAt: created,
		ExpiresAt: created.Add(5 * time.Second),
	}

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.EqualValues(t, 5000, fields["duration_ms"])
	assert.NotContains(t, fields, "duration")

	var back Notification
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, n.Duration, back.Duration)
	assert.True(t, n.ExpiresAt.Equal(back.ExpiresAt))
}
