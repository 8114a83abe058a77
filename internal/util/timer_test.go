package util

import (
	"testing"
	"time"
)

func TestTimerFields(t *testing.T) {
	timer := StartTimer()
	timer.Mark("classify")
	time.Sleep(2 * time.Millisecond)
	timer.Mark("score")

	fields := timer.Fields()
	for _, key := range []string{"classify_us", "score_us", "total_ms"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing %s in %v", key, fields)
		}
	}
	if fields["score_us"].(int64) < 2000 {
		t.Fatalf("score stage = %v, want >= 2ms", fields["score_us"])
	}
	if timer.ElapsedMs() < 2 {
		t.Fatalf("elapsed = %d", timer.ElapsedMs())
	}
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	timer.Mark("noop")
	if timer.ElapsedMs() != 0 {
		t.Fatal("nil timer should report zero")
	}
	if got := timer.Fields()["total_ms"]; got != int64(0) {
		t.Fatalf("total_ms = %v", got)
	}
}
