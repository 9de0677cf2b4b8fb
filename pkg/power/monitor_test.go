package power

import (
	"errors"
	"testing"
	"time"
)

func advance(d time.Duration) time.Time {
	return time.Now().Add(d)
}

func TestMonitorThrottle(t *testing.T) {
	src := NewMockSource(15)
	m := NewMonitor(src)

	if got := m.Check(time.Now()); got != "" {
		t.Errorf("Check inside throttle window = %q, want \"\"", got)
	}
	if src.Calls() != 0 {
		t.Errorf("source read %d times inside throttle window, want 0", src.Calls())
	}

	if got := m.Check(advance(301 * time.Second)); got != "Battery at 15%. Please charge soon." {
		t.Errorf("Check after throttle = %q", got)
	}
	if src.Calls() != 1 {
		t.Errorf("source reads = %d, want 1", src.Calls())
	}
}

func TestMonitorThresholdsFireOnce(t *testing.T) {
	src := NewMockSource(15)
	m := NewMonitor(src, WithInterval(time.Millisecond))

	now := advance(time.Second)
	if got := m.Check(now); got != "Battery at 15%. Please charge soon." {
		t.Fatalf("first check = %q", got)
	}

	// Same charge, 20 already alerted, 10 not yet reached.
	now = now.Add(time.Second)
	if got := m.Check(now); got != "" {
		t.Errorf("repeat check at same level = %q, want \"\"", got)
	}

	src.SetPercent(9)
	now = now.Add(time.Second)
	if got := m.Check(now); got != "Battery at 9%. Please charge soon." {
		t.Errorf("check at 9%% = %q", got)
	}

	src.SetPercent(4)
	now = now.Add(time.Second)
	if got := m.Check(now); got != "Battery at 4%. Please charge soon." {
		t.Errorf("check at 4%% = %q", got)
	}

	// Every threshold has fired; staying low stays silent.
	now = now.Add(time.Second)
	if got := m.Check(now); got != "" {
		t.Errorf("check with all thresholds alerted = %q, want \"\"", got)
	}
}

func TestMonitorResetAboveHighest(t *testing.T) {
	src := NewMockSource(15)
	m := NewMonitor(src, WithInterval(time.Millisecond))

	now := advance(time.Second)
	if got := m.Check(now); got == "" {
		t.Fatal("expected initial warning")
	}

	// Recovery above 20 re-arms every threshold.
	src.SetPercent(50)
	now = now.Add(time.Second)
	if got := m.Check(now); got != "" {
		t.Errorf("check at 50%% = %q, want \"\"", got)
	}

	src.SetPercent(18)
	now = now.Add(time.Second)
	if got := m.Check(now); got != "Battery at 18%. Please charge soon." {
		t.Errorf("check after recovery = %q", got)
	}
}

func TestMonitorNoResetBetweenThresholds(t *testing.T) {
	src := NewMockSource(4)
	m := NewMonitor(src, WithInterval(time.Millisecond))

	now := advance(time.Second)
	m.Check(now) // fires 20
	now = now.Add(time.Second)
	m.Check(now) // fires 10
	now = now.Add(time.Second)
	m.Check(now) // fires 5

	// Climbing back to 15 is not above the highest threshold, so
	// nothing re-arms and nothing fires.
	src.SetPercent(15)
	now = now.Add(time.Second)
	if got := m.Check(now); got != "" {
		t.Errorf("check at 15%% after full alert run = %q, want \"\"", got)
	}
}

func TestMonitorSourceError(t *testing.T) {
	src := NewMockSource(0).WithError(errors.New("no battery"))
	m := NewMonitor(src, WithInterval(time.Millisecond))

	if got := m.Check(advance(time.Second)); got != "" {
		t.Errorf("Check with failing source = %q, want \"\"", got)
	}
}

func TestMonitorCustomThresholds(t *testing.T) {
	src := NewMockSource(30)
	m := NewMonitor(src, WithInterval(time.Millisecond), WithThresholds(50, 30))

	if got := m.Check(advance(time.Second)); got != "Battery at 30%. Please charge soon." {
		t.Errorf("custom threshold check = %q", got)
	}
}
