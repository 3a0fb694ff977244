package status

import "testing"

func TestCycleStartPauseFinish(t *testing.T) {
	c := NewCycle()
	if c.State() != Paused {
		t.Fatalf("new Cycle should start Paused, got %v", c.State())
	}
	if !c.Start() {
		t.Fatalf("Start should succeed from Paused")
	}
	if c.State() != Running {
		t.Fatalf("expected Running, got %v", c.State())
	}
	if c.Start() {
		t.Fatalf("Start should fail when already Running")
	}
	if !c.Pause() {
		t.Fatalf("Pause should succeed from Running")
	}
	if c.State() != Paused {
		t.Fatalf("expected Paused, got %v", c.State())
	}
	if c.Pause() {
		t.Fatalf("Pause should fail when not Running")
	}
}

func TestCycleRestartAfterFinish(t *testing.T) {
	c := NewCycle()
	c.Start()
	if !c.Finish() {
		t.Fatalf("Finish should succeed from Running")
	}
	if c.State() != Finished {
		t.Fatalf("expected Finished, got %v", c.State())
	}
	if !c.Start() {
		t.Fatalf("Cycle should be able to restart from Finished, unlike Controller")
	}
	if c.State() != Running {
		t.Fatalf("expected Running after restart, got %v", c.State())
	}
}

func TestCycleIs(t *testing.T) {
	c := NewCycle()
	if !c.Is(Paused) {
		t.Fatalf("expected Is(Paused) true")
	}
	c.Start()
	if !c.Is(Running) {
		t.Fatalf("expected Is(Running) true")
	}
}
