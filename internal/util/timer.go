package util

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Timer measures a whole evaluation and the stages inside it.
type Timer struct {
	start time.Time
	last  time.Time
	laps  []lap
}

type lap struct {
	stage string
	took  time.Duration
}

// StartTimer creates a new timer starting at current time.
func StartTimer() *Timer {
	now := time.Now()
	return &Timer{start: now, last: now}
}

// Mark closes the current stage under the given name.
func (t *Timer) Mark(stage string) {
	if t == nil {
		return
	}
	now := time.Now()
	t.laps = append(t.laps, lap{stage: stage, took: now.Sub(t.last)})
	t.last = now
}

// ElapsedMs returns the elapsed milliseconds since start.
func (t *Timer) ElapsedMs() int64 {
	if t == nil || t.start.IsZero() {
		return 0
	}
	return time.Since(t.start).Milliseconds()
}

// Fields reports each marked stage in microseconds plus the total in
// milliseconds, for structured logging.
func (t *Timer) Fields() logrus.Fields {
	fields := logrus.Fields{"total_ms": t.ElapsedMs()}
	if t == nil {
		return fields
	}
	for _, l := range t.laps {
		fields[l.stage+"_us"] = l.took.Microseconds()
	}
	return fields
}
