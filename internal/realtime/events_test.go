package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cloudconsole/internal/model"
)

func TestParseTimestamp(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"missing", ``, fallback},
		{"null", `null`, fallback},
		{"rfc3339", `"2026-02-03T04:05:06Z"`, time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)},
		{"garbage string", `"yesterday"`, fallback},
		{"millis", `1767225600000`, time.UnixMilli(1767225600000)},
		{"zero millis", `0`, fallback},
		{"object", `{}`, fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(json.RawMessage(tt.raw), fallback)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestTranslateNotificationDefaultsToInfo(t *testing.T) {
	received := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	n, err := translateNotification(json.RawMessage(`{"title":"t","message":"m","timestamp":"2020-01-01T00:00:00Z"}`), received)
	require.NoError(t, err)

	assert.Equal(t, model.NotificationInfo, n.Type)
	assert.Equal(t, received, n.Timestamp)
	assert.Nil(t, n.Data)
}

func TestTranslateRejectsMalformedPayload(t *testing.T) {
	for name, translate := range inbound {
		_, err := translate(json.RawMessage(`"not an object"`), time.Now())
		assert.Error(t, err, name)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
}
