package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

// TestParseRelativeTimeUnit covers various valid and invalid cases.
func TestParseRelativeTimeUnit(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{"valid plural months (mixed case)", "3 MoNtHs AgO", fixedNow.AddDate(0, -3, 0), false},
		{"valid singular week (capitalized)", "1 Week Ago", fixedNow.Add(-7 * 24 * time.Hour), false},
		{"valid 10 days (upper case)", "10 DAYS AGO", fixedNow.Add(-10 * 24 * time.Hour), false},
		{"valid seconds", "30 seconds ago", fixedNow.Add(-30 * time.Second), false},
		{"invalid missing ago", "2 years", time.Time{}, true},
		{"invalid bad unit (decades)", "4 decades ago", time.Time{}, true},
		{"invalid non-numeric value", "one year ago", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tResult, err := ParseRelativeTime(tt.input, fixedNow)

			if tt.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, tResult, "Parsed time mismatch")
			}
		})
	}
}

// TestParseResolution covers Go durations, human-readable units and bare seconds.
func TestParseResolution(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      int64
		expectErr bool
	}{
		{"go duration seconds", "5s", 5, false},
		{"go duration minutes", "1m", 60, false},
		{"go duration day", "24h", 86400, false},
		{"bare seconds", "3600", 3600, false},
		{"human minute", "1 minute", 60, false},
		{"human hours", "2 Hours", 7200, false},
		{"human compact", "5seconds", 5, false},
		{"human week", "1 week", 604800, false},
		{"sub-second", "500ms", 0, true},
		{"fractional seconds", "1.5s", 0, true},
		{"zero", "0", 0, true},
		{"zero human", "0 days", 0, true},
		{"negative", "-5", 0, true},
		{"bad unit", "3 decades", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResolution(tt.input)
			if tt.expectErr {
				assert.Error(t, err, "Expected an error for input: %q", tt.input)
			} else if assert.NoError(t, err, "Did not expect an error for input: %q", tt.input) {
				assert.Equal(t, tt.want, got, "Resolution mismatch for input: %q", tt.input)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("1700000000", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), ts)

	ts, err = ParseTimestamp("2025-11-03T09:00:00Z", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(-time.Hour).Unix(), ts)

	ts, err = ParseTimestamp("2 hours ago", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(-2*time.Hour).Unix(), ts)

	_, err = ParseTimestamp("yesterday", fixedNow)
	assert.Error(t, err)
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:05 01/01/1970", FormatTimestamp(5, 5))
	assert.Equal(t, "01:00 01/01/1970", FormatTimestamp(3600, 60))
	assert.Equal(t, "01:00 01/01/1970", FormatTimestamp(3600, 3600))
	assert.Equal(t, "02/01/1970", FormatTimestamp(86400, 86400))
}
