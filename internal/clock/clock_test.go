package clock

import (
	"testing"
	"time"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var order []string

	m.AfterFunc(30*time.Millisecond, func() { order = append(order, "late") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "early") })

	m.Advance(5 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("Expected nothing to fire yet, got %v", order)
	}

	m.Advance(25 * time.Millisecond)
	if len(order) != 2 || order[0] != "early" || order[1] != "late" {
		t.Errorf("Expected [early late], got %v", order)
	}
	if m.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", m.Pending())
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	fired := false

	timer := m.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Error("Expected first Stop to report true")
	}
	if timer.Stop() {
		t.Error("Expected second Stop to report false")
	}

	m.Advance(time.Hour)
	if fired {
		t.Error("Stopped timer must not fire")
	}
}

func TestManualChainedTimers(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var firedAt []time.Time

	m.AfterFunc(time.Second, func() {
		firedAt = append(firedAt, m.Now())
		m.AfterFunc(2*time.Second, func() {
			firedAt = append(firedAt, m.Now())
		})
	})

	m.Advance(5 * time.Second)
	if len(firedAt) != 2 {
		t.Fatalf("Expected both timers to fire, got %d", len(firedAt))
	}
	if got := firedAt[1].Sub(time.Unix(0, 0)); got != 3*time.Second {
		t.Errorf("Expected chained timer at 3s, got %v", got)
	}
	if got := m.Now().Sub(time.Unix(0, 0)); got != 5*time.Second {
		t.Errorf("Expected clock at 5s, got %v", got)
	}
}

func TestRealClockStop(t *testing.T) {
	timer := Real{}.AfterFunc(time.Hour, func() {})
	if !timer.Stop() {
		t.Error("Expected pending real timer to stop")
	}
}
