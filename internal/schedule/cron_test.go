package schedule

import (
	"testing"
	"time"
)

func TestOneShotCron(t *testing.T) {
	tests := []struct {
		name     string
		t        time.Time
		expected string
	}{
		{
			name:     "minute after midnight new year",
			t:        time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC),
			expected: "cron(1 0 1 1 ? 2024)",
		},
		{
			name:     "seconds truncated to the minute",
			t:        time.Date(2024, 1, 1, 0, 1, 59, 999999999, time.UTC),
			expected: "cron(1 0 1 1 ? 2024)",
		},
		{
			name:     "non-UTC input converted to UTC",
			t:        time.Date(2025, 6, 15, 20, 30, 0, 0, time.FixedZone("JST", 9*3600)),
			expected: "cron(30 11 15 6 ? 2025)",
		},
		{
			name:     "end of year",
			t:        time.Date(2026, 12, 31, 23, 59, 30, 0, time.UTC),
			expected: "cron(59 23 31 12 ? 2026)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OneShotCron(tt.t); got != tt.expected {
				t.Errorf("OneShotCron(%v) = %q, want %q", tt.t, got, tt.expected)
			}
		})
	}
}

func TestOneShotCron_FireAheadScenario(t *testing.T) {
	// A run starting at 2024-01-01T00:00:00Z forces cron(1 0 1 1 ? 2024).
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := OneShotCron(start.Add(fireAhead)); got != "cron(1 0 1 1 ? 2024)" {
		t.Errorf("forced expression = %q, want %q", got, "cron(1 0 1 1 ? 2024)")
	}
}
