package termcore

import (
	"testing"
	"time"
)

func testThresholds() []EvolutionThreshold {
	return []EvolutionThreshold{
		{Interactions: 2, ActiveTime: 0, Level: 1},
		{Interactions: 5, ActiveTime: time.Hour, Level: 2},
	}
}

func TestEngine_ZeroDeltaNeverChangesFrame(t *testing.T) {
	e := NewEngine(testThresholds(), nil)
	before := e.CurrentFrame()
	if e.Update(0) {
		t.Fatal("expected Update(0) to report no change")
	}
	if e.CurrentFrame().Duration != before.Duration {
		t.Fatal("expected frame unchanged after a zero-delta update")
	}
}

func TestEngine_RepeatLoopNeverMarksFinished(t *testing.T) {
	e := NewEngine(testThresholds(), nil)
	e.Play("idle", LoopRepeat)
	anim, ok := e.currentAnimation()
	if !ok || len(anim.Frames) < 2 {
		t.Fatal("expected medium idle to have at least 2 frames")
	}

	total := time.Duration(0)
	for i := 0; i < len(anim.Frames)+2; i++ {
		total += anim.Frames[i%len(anim.Frames)].Duration
	}
	e.Update(total)
	if e.finished {
		t.Fatal("LoopRepeat should never mark finished")
	}
}

func TestEngine_LoopOnceMarksFinished(t *testing.T) {
	e := NewEngine(testThresholds(), nil)
	e.Play("happy", LoopOnce)
	anim, _ := e.currentAnimation()
	e.Update(anim.Frames[0].Duration * 2)
	if !e.finished {
		t.Fatal("expected LoopOnce animation to finish after its only frame elapses")
	}
	if e.Update(time.Second) {
		t.Fatal("expected a finished LoopOnce animation to report no further change")
	}
}

func TestEngine_PlaySingleFrameLoopHoldStillReportsChangedOnNextUpdate(t *testing.T) {
	// "happy" is a single LoopHold frame: Update's frame-tuple cursor
	// never advances past (happy, 0), so without the forced-changed
	// signal the engine would never report a change and the avatar
	// would stay on its stale prior frame forever.
	e := NewEngine(testThresholds(), nil)
	e.Play("idle", LoopRepeat)
	e.Update(50 * time.Millisecond) // settle into a known (idle, n) tuple

	e.Play("happy", LoopHold)
	if !e.Update(10 * time.Millisecond) {
		t.Fatal("expected the first Update after switching to a single-frame animation to report changed")
	}
	if e.Update(10 * time.Millisecond) {
		t.Fatal("expected a later Update against the same unchanged single-frame animation to report no change")
	}
}

func TestEngine_PlaySameAnimationTupleStillReportsChanged(t *testing.T) {
	// Re-Play landing back on the exact (name, index=0) tuple Update
	// last reported (e.g. re-triggering "idle" from frame 0) must still
	// force a repaint: the render loop cannot tell a repeated Play from
	// a no-op by comparing tuples alone.
	e := NewEngine(testThresholds(), nil)
	e.Play("idle", LoopRepeat)
	e.Play("idle", LoopRepeat)
	if !e.Update(10 * time.Millisecond) {
		t.Fatal("expected Update after a repeated Play to report changed")
	}
}

func TestEngine_PlayUnknownNameFallsBackToIdle(t *testing.T) {
	e := NewEngine(testThresholds(), nil)
	e.Play("does-not-exist", LoopRepeat)
	if e.currentAnimationName != "idle" {
		t.Fatalf("expected fallback to idle, got %q", e.currentAnimationName)
	}
}

func TestEngine_SetSizeLazilyLoadsAndFallsBack(t *testing.T) {
	e := NewEngine(testThresholds(), nil)
	e.SetSize(SizeTiny)
	if _, ok := e.sheets[SizeTiny]; !ok {
		t.Fatal("expected SetSize to lazily populate the tiny sheet")
	}
	// tiny only defines "idle" — switching to it and requesting
	// "thinking" should fall back to idle rather than panic.
	e.Play("thinking", LoopRepeat)
	if e.currentAnimationName != "idle" {
		t.Fatalf("expected fallback to idle at a size missing the animation, got %q", e.currentAnimationName)
	}
}

func TestEngine_EvolutionLevelMonotonicNonDecreasing(t *testing.T) {
	e := NewEngine(testThresholds(), nil)
	levels := []int{}
	for i := 0; i < 6; i++ {
		e.RecordInteraction()
		levels = append(levels, e.Evolution().Level)
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] < levels[i-1] {
			t.Fatalf("evolution level decreased: %v", levels)
		}
	}
	if levels[len(levels)-1] != 2 {
		t.Fatalf("expected level 2 after 6 interactions against thresholds %v, got %d", testThresholds(), levels[len(levels)-1])
	}
}

func TestEngine_ActiveTimeAloneReachesThreshold(t *testing.T) {
	e := NewEngine(testThresholds(), nil)
	e.RecordActiveTime(time.Hour)
	if e.Evolution().Level != 2 {
		t.Fatalf("expected active-time threshold to promote to level 2 without any interactions, got %d", e.Evolution().Level)
	}
}

func TestSelectMoodAnimation_PureByMoodAndLevel(t *testing.T) {
	if SelectMoodAnimation(MoodIdle, 3) != "idle" {
		t.Fatal("expected non-curious moods to ignore level")
	}
	if SelectMoodAnimation(MoodCurious, 1) != "curious_1" {
		t.Fatal("expected curious level 1 to select curious_1")
	}
	if SelectMoodAnimation(MoodCurious, 3) != "curious_3" {
		t.Fatal("expected curious level 3 to select curious_3")
	}
}
