package schedule

import (
	"fmt"
	"time"
)

// fireAhead is how far in the future the forced one-shot schedule fires,
// measured from the moment the run starts.
const fireAhead = time.Minute

// OneShotCron formats t as an EventBridge cron expression that fires exactly
// once, at t truncated to the whole minute in UTC. Day-of-week is wildcarded
// with "?" because EventBridge rejects expressions that pin both day-of-month
// and day-of-week.
//
// For example, 2024-01-01T00:01:00Z produces "cron(1 0 1 1 ? 2024)".
func OneShotCron(t time.Time) string {
	t = t.UTC().Truncate(time.Minute)
	return fmt.Sprintf("cron(%d %d %d %d ? %d)",
		t.Minute(), t.Hour(), t.Day(), int(t.Month()), t.Year())
}
