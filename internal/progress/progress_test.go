package progress

import "testing"

func TestTracker_ReachesExactly100(t *testing.T) {
	tr := NewTracker()
	tr.Reset(4)

	want := []int{25, 50, 75, 100}
	for i, w := range want {
		got := tr.Tick()
		if got != w {
			t.Errorf("tick %d: expected %d%%, got %d%%", i+1, w, got)
		}
	}
	if !tr.Finished() {
		t.Error("expected tracker to be finished after total ticks")
	}
}

func TestTracker_Monotonic(t *testing.T) {
	tr := NewTracker()
	tr.Reset(7)

	prev := 0
	for i := 0; i < 7; i++ {
		got := tr.Tick()
		if got < prev {
			t.Fatalf("percent decreased from %d to %d at tick %d", prev, got, i+1)
		}
		prev = got
	}
	if prev != 100 {
		t.Errorf("expected 100%% after all ticks, got %d%%", prev)
	}
}

func TestTracker_ZeroTotal(t *testing.T) {
	tr := NewTracker()
	tr.Reset(0)

	if got := tr.Percent(); got != 0 {
		t.Errorf("expected 0%% for empty cycle, got %d%%", got)
	}
	if got := tr.Tick(); got != 0 {
		t.Errorf("expected 0%% after tick on empty cycle, got %d%%", got)
	}
	if tr.Finished() {
		t.Error("empty cycle should not report finished")
	}
}

func TestTracker_ClampedAt100(t *testing.T) {
	tr := NewTracker()
	tr.Reset(2)
	tr.Tick()
	tr.Tick()

	// Extra ticks beyond total must not push past 100.
	if got := tr.Tick(); got != 100 {
		t.Errorf("expected clamp at 100%%, got %d%%", got)
	}
}

func TestTracker_ResetStartsNewCycle(t *testing.T) {
	tr := NewTracker()
	tr.Reset(2)
	tr.Tick()
	tr.Tick()

	tr.Reset(5)
	if got := tr.Percent(); got != 0 {
		t.Errorf("expected 0%% after reset, got %d%%", got)
	}
	if got := tr.Tick(); got != 20 {
		t.Errorf("expected 20%% after first tick of new cycle, got %d%%", got)
	}
}
