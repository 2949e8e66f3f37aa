package timeutil

import (
	"testing"
	"time"
)

func TestRealClockNow(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, want between %v and %v", now, before, after)
	}
}

func TestRealClockSinceUntil(t *testing.T) {
	clock := RealClock{}
	if d := clock.Since(time.Now().Add(-time.Second)); d < time.Second {
		t.Errorf("Since = %v, want >= 1s", d)
	}
	if d := clock.Until(time.Now().Add(time.Hour)); d < 59*time.Minute {
		t.Errorf("Until = %v, want >= 59m", d)
	}
}

func TestRealClockTimerAndTicker(t *testing.T) {
	clock := RealClock{}

	timer := clock.NewTimer(10 * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C():
	case <-time.After(100 * time.Millisecond):
		t.Error("timer did not fire")
	}

	ticker := clock.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	select {
	case <-ticker.C():
	case <-time.After(100 * time.Millisecond):
		t.Error("ticker did not fire")
	}
}

func TestMockClockNowSetAdvance(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	clock := NewMockClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("Now = %v, want %v", clock.Now(), start)
	}

	jumped := start.Add(48 * time.Hour)
	clock.Set(jumped)
	if !clock.Now().Equal(jumped) {
		t.Errorf("after Set, Now = %v, want %v", clock.Now(), jumped)
	}

	clock.Advance(time.Hour)
	if !clock.Now().Equal(jumped.Add(time.Hour)) {
		t.Errorf("after Advance, Now = %v", clock.Now())
	}
}

func TestMockClockSinceUntil(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(now)

	if d := clock.Since(now.Add(-5 * time.Minute)); d != 5*time.Minute {
		t.Errorf("Since = %v, want 5m", d)
	}
	if d := clock.Until(now.Add(10 * time.Minute)); d != 10*time.Minute {
		t.Errorf("Until = %v, want 10m", d)
	}
}

func TestMockClockSleepRecords(t *testing.T) {
	clock := NewMockClock(time.Now())
	clock.Sleep(time.Second)
	clock.Sleep(2 * time.Second)

	sleeps := clock.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != time.Second || sleeps[1] != 2*time.Second {
		t.Errorf("sleeps = %v, want [1s 2s]", sleeps)
	}
}

func TestMockTimerFiresOnAdvance(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	timer := clock.NewTimer(5 * time.Minute)

	select {
	case <-timer.C():
		t.Error("timer fired before its deadline")
	default:
	}

	clock.Advance(6 * time.Minute)

	select {
	case <-timer.C():
	default:
		t.Error("timer did not fire after advancing past the deadline")
	}
}

func TestMockTimerStop(t *testing.T) {
	clock := NewMockClock(time.Now())
	timer := clock.NewTimer(time.Minute)

	if !timer.Stop() {
		t.Error("Stop on a pending timer must report true")
	}
	clock.Advance(2 * time.Minute)
	select {
	case <-timer.C():
		t.Error("stopped timer must not fire")
	default:
	}
}

func TestMockTimerReset(t *testing.T) {
	clock := NewMockClock(time.Now())
	timer := clock.NewTimer(time.Minute)
	timer.Stop()
	timer.Reset(30 * time.Second)

	select {
	case <-timer.C():
		t.Error("reset timer fired before its new deadline")
	default:
	}
}

func TestMockTickerFiresOnAdvance(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ticker := clock.NewTicker(time.Minute)

	select {
	case <-ticker.C():
		t.Error("ticker fired before its first interval")
	default:
	}

	clock.Advance(time.Minute)

	select {
	case <-ticker.C():
	default:
		t.Error("ticker did not fire after the first interval")
	}
}

func TestMockTickerStop(t *testing.T) {
	clock := NewMockClock(time.Now())
	ticker := clock.NewTicker(time.Second)
	ticker.Stop()
	clock.Advance(5 * time.Second)

	select {
	case <-ticker.C():
		t.Error("stopped ticker must not tick")
	default:
	}
}

func TestMockTickerTrigger(t *testing.T) {
	clock := NewMockClock(time.Now())
	ticker := clock.NewTicker(time.Hour).(*MockTicker)
	now := clock.Now()
	ticker.Trigger(now)

	select {
	case received := <-ticker.C():
		if !received.Equal(now) {
			t.Errorf("tick carries %v, want %v", received, now)
		}
	default:
		t.Error("Trigger did not deliver a tick")
	}
}

func TestMockClockAfter(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ch := clock.After(time.Hour)

	select {
	case <-ch:
		t.Error("After delivered before the duration elapsed")
	default:
	}

	clock.Advance(2 * time.Hour)

	select {
	case <-ch:
	default:
		t.Error("After did not deliver once the clock passed the deadline")
	}
}
