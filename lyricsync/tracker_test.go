package lyricsync

import (
	"testing"
)

func testSet() Set {
	return Parse("[00:01.00]one\n[00:03.00]three\n[00:05.00]five")
}

func TestUpdateBeforeFirstLine(t *testing.T) {
	tr := NewTracker(testSet())

	index, changed := tr.Update(0.5)
	if index != NoActiveLine {
		t.Errorf("Expected no active line, got %d", index)
	}
	if changed {
		t.Error("Initial no-line state should not count as a change")
	}
}

func TestUpdateProgression(t *testing.T) {
	tr := NewTracker(testSet())

	steps := []struct {
		time        float64
		wantIndex   int
		wantChanged bool
	}{
		{0.0, NoActiveLine, false},
		{1.0, 0, true},  // exactly at the first timestamp
		{2.9, 0, false}, // still inside the first line
		{3.0, 1, true},
		{4.5, 1, false},
		{5.0, 2, true},
		{100.0, 2, false}, // past the last line stays on the last line
		{2.0, 0, true},    // seek backwards
		{0.0, NoActiveLine, true},
	}

	for _, step := range steps {
		index, changed := tr.Update(step.time)
		if index != step.wantIndex || changed != step.wantChanged {
			t.Errorf("Update(%v) = (%d, %v), expected (%d, %v)",
				step.time, index, changed, step.wantIndex, step.wantChanged)
		}
	}
}

func TestUpdateDuplicateTimestampsLastDeclaredWins(t *testing.T) {
	tr := NewTracker(Parse("[00:01.00]a\n[00:01.00]b"))

	index, changed := tr.Update(1.0)
	if !changed {
		t.Fatal("Expected a change")
	}
	if got := tr.Set().Lines[index].Text; got != "b" {
		t.Errorf("Expected later-declared line %q to win, got %q", "b", got)
	}
}

func TestOffsetShiftsSampling(t *testing.T) {
	tr := NewTracker(Parse("[00:03.00]line"))

	if got := tr.Offset(2.0); got != 2.0 {
		t.Fatalf("Expected cumulative offset 2.0, got %v", got)
	}

	// update(1.0) with offset +2.0 behaves like update(3.0) before.
	index, changed := tr.Update(1.0)
	if index != 0 || !changed {
		t.Errorf("Update(1.0) with offset +2.0 = (%d, %v), expected (0, true)", index, changed)
	}
}

func TestOffsetAccumulatesAndResets(t *testing.T) {
	tr := NewTracker(testSet())

	tr.Offset(1.5)
	if got := tr.Offset(-0.5); got != 1.0 {
		t.Errorf("Expected cumulative offset 1.0, got %v", got)
	}

	tr.ResetOffset()
	if got := tr.CurrentOffset(); got != 0 {
		t.Errorf("Expected offset 0 after reset, got %v", got)
	}
}

func TestVeryNegativeOffsetDeactivatesAllLines(t *testing.T) {
	tr := NewTracker(testSet())

	tr.Update(5.0)
	tr.Offset(-100)

	index, changed := tr.Update(5.0)
	if index != NoActiveLine || !changed {
		t.Errorf("Expected (no line, changed), got (%d, %v)", index, changed)
	}
}

func TestOnChangeNotifications(t *testing.T) {
	tr := NewTracker(testSet())

	var notified []int
	tr.OnChange(func(index int) {
		notified = append(notified, index)
	})

	for _, ts := range []float64{0.5, 1.0, 1.5, 3.2, 3.4, 0.0} {
		tr.Update(ts)
	}

	want := []int{0, 1, NoActiveLine}
	if len(notified) != len(want) {
		t.Fatalf("Expected %d notifications, got %d (%v)", len(want), len(notified), notified)
	}
	for i := range want {
		if notified[i] != want[i] {
			t.Errorf("Notification %d: expected %d, got %d", i, want[i], notified[i])
		}
	}
}

func TestLoadReplacesSetAndKeepsOffset(t *testing.T) {
	tr := NewTracker(testSet())
	tr.Offset(1.0)
	tr.Update(3.0)

	tr.Load(Parse("[00:10.00]new song"))

	if tr.ActiveIndex() != NoActiveLine {
		t.Errorf("Expected active line cleared after Load, got %d", tr.ActiveIndex())
	}
	if tr.CurrentOffset() != 1.0 {
		t.Errorf("Expected offset kept across Load, got %v", tr.CurrentOffset())
	}

	index, changed := tr.Update(9.0)
	if index != 0 || !changed {
		t.Errorf("Update(9.0) with offset +1.0 = (%d, %v), expected (0, true)", index, changed)
	}
}

func TestUpdateWithEmptySet(t *testing.T) {
	tr := NewTracker(Set{})

	index, changed := tr.Update(10)
	if index != NoActiveLine || changed {
		t.Errorf("Expected (no line, unchanged) on empty set, got (%d, %v)", index, changed)
	}
}
