package timex

import (
	"testing"
	"time"
)

func TestFakeSleepAdvances(t *testing.T) {
	start := time.Unix(1000, 0)
	f := NewFake(start)
	f.Sleep(10 * time.Millisecond)
	f.Advance(time.Second)
	if got := f.Now().Sub(start); got != 1010*time.Millisecond {
		t.Fatalf("elapsed = %v, want 1.01s", got)
	}
}
