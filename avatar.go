package termcore

import (
	"math/rand/v2"
	"time"
)

// LoopBehavior controls what an Animation does after its last frame.
type LoopBehavior int

const (
	// LoopOnce clamps to the last frame and marks the animation finished.
	LoopOnce LoopBehavior = iota
	// LoopRepeat wraps back to frame 0.
	LoopRepeat
	// LoopHold freezes on the last frame without marking finished.
	LoopHold
)

// Frame is one still image in an animation sequence: a grid of
// color-tagged glyphs plus a display duration. Rows are compact 2D
// string literals, one rune per cell, matching the sheet's declared
// width; Colors parallels Rows cell-for-cell.
type Frame struct {
	Rows     []string
	Colors   [][]Color
	Duration time.Duration
}

// Animation is an ordered, non-empty sequence of Frames plus its loop
// behavior.
type Animation struct {
	Frames []Frame
	Loop   LoopBehavior
}

// SpriteSheet maps animation name to Animation for one AvatarSize.
type SpriteSheet map[string]Animation

// EvolutionContext tracks the avatar's accumulated interaction count
// and active session time, and the discrete evolution level derived
// from them. Level is monotonic non-decreasing within a process
// lifetime.
type EvolutionContext struct {
	InteractionCount int
	TotalActiveTime  time.Duration
	Level            int
}

// Engine is the avatar Animation Engine: it owns the lazily-populated
// sheet map, the current playback cursor, and the EvolutionContext.
// Only Medium is populated at construction; other sizes load on first
// request.
type Engine struct {
	sheets      map[AvatarSize]SpriteSheet
	currentSize AvatarSize

	currentAnimationName string
	currentFrameIndex    int
	frameElapsed         time.Duration
	currentLoop          LoopBehavior
	finished             bool
	forceChanged         bool

	evolution  EvolutionContext
	thresholds []EvolutionThreshold

	logger       *LogCapture
	warnedSizes  map[AvatarSize]bool
	rng          *rand.Rand
}

// NewEngine constructs the engine, loading only the Medium sheet — the
// design rationale: full lazy loading removes most of startup-time
// sprite work and a majority of memory at boot.
func NewEngine(thresholds []EvolutionThreshold, logger *LogCapture) *Engine {
	e := &Engine{
		sheets:               make(map[AvatarSize]SpriteSheet),
		currentSize:          SizeMedium,
		currentAnimationName: "idle",
		currentLoop:          LoopRepeat,
		thresholds:           thresholds,
		logger:               logger,
		warnedSizes:          make(map[AvatarSize]bool),
		rng:                  rand.New(rand.NewPCG(1, 2)),
	}
	e.sheets[SizeMedium] = builtinSheets[SizeMedium]
	return e
}

// SetSize ensures the requested size is loaded, loading it
// synchronously if absent, then switches current_size to it.
func (e *Engine) SetSize(size AvatarSize) {
	if _, ok := e.sheets[size]; !ok {
		e.load(size)
	}
	e.currentSize = size
}

func (e *Engine) load(size AvatarSize) {
	sheet, ok := builtinSheets[size]
	if !ok {
		if !e.warnedSizes[size] {
			if e.logger != nil {
				e.logger.Warn("avatar: no sheet defined for size %s, falling back to %s", size, SizeMedium)
			}
			e.warnedSizes[size] = true
		}
		e.sheets[size] = builtinSheets[SizeMedium]
		return
	}
	e.sheets[size] = sheet
}

// Play begins the named animation at frame 0. If the name is unknown
// for the current size, falls back to "idle".
func (e *Engine) Play(name string, loop LoopBehavior) {
	sheet := e.sheets[e.currentSize]
	if _, ok := sheet[name]; !ok {
		if e.logger != nil {
			e.logger.Warn("avatar: animation %q missing at size %s, falling back to idle", name, e.currentSize)
		}
		name = "idle"
	}
	e.currentAnimationName = name
	e.currentFrameIndex = 0
	e.frameElapsed = 0
	e.currentLoop = loop
	e.finished = false
	// A mood/animation switch must repaint even if the new animation
	// happens to land on the same (name, index) tuple Update last
	// reported, or is a single-frame LoopHold that never advances.
	e.forceChanged = true
}

func (e *Engine) currentAnimation() (Animation, bool) {
	sheet := e.sheets[e.currentSize]
	anim, ok := sheet[e.currentAnimationName]
	if !ok {
		anim, ok = sheet["idle"]
	}
	return anim, ok
}

// Update advances playback by delta and returns whether the rendered
// (animation, frame) tuple changed this tick, or whether Play/PlayMood
// switched animations since the last Update (so a mood change or a
// single-frame LoopHold animation is never missed). delta == 0 always
// returns false and leaves state unchanged (animation monotonicity).
func (e *Engine) Update(delta time.Duration) bool {
	if delta <= 0 {
		return false
	}

	anim, ok := e.currentAnimation()
	if !ok || len(anim.Frames) == 0 {
		return false
	}

	nameBefore, indexBefore := e.currentAnimationName, e.currentFrameIndex
	if e.finished && e.currentLoop == LoopOnce {
		return false
	}

	e.frameElapsed += delta
	for {
		frame := anim.Frames[e.currentFrameIndex]
		duration := e.jittered(frame.Duration)
		if e.frameElapsed < duration {
			break
		}
		e.frameElapsed -= duration
		e.currentFrameIndex++
		if e.currentFrameIndex >= len(anim.Frames) {
			switch e.currentLoop {
			case LoopRepeat:
				e.currentFrameIndex = 0
			case LoopHold:
				e.currentFrameIndex = len(anim.Frames) - 1
			case LoopOnce:
				e.currentFrameIndex = len(anim.Frames) - 1
				e.finished = true
			}
			if e.currentLoop != LoopRepeat {
				break
			}
		}
	}

	changed := e.currentAnimationName != nameBefore || e.currentFrameIndex != indexBefore
	if e.forceChanged {
		changed = true
		e.forceChanged = false
	}
	return changed
}

// jittered perturbs a frame duration by up to ±10% so simultaneous
// animations avoid visual lockstep; it never affects the engine's
// dirty signal, only pacing within a frame.
func (e *Engine) jittered(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	spread := 0.2 * e.rng.Float64() - 0.1
	return time.Duration(float64(d) * (1 + spread))
}

// CurrentFrame returns a read-only view of the currently displayed
// frame.
func (e *Engine) CurrentFrame() Frame {
	anim, ok := e.currentAnimation()
	if !ok || len(anim.Frames) == 0 {
		return Frame{}
	}
	idx := e.currentFrameIndex
	if idx >= len(anim.Frames) {
		idx = len(anim.Frames) - 1
	}
	return anim.Frames[idx]
}

// RecordInteraction increments the interaction count and recomputes
// the evolution level.
func (e *Engine) RecordInteraction() {
	e.evolution.InteractionCount++
	e.recomputeLevel()
}

// RecordActiveTime adds delta to total active time and recomputes the
// evolution level.
func (e *Engine) RecordActiveTime(delta time.Duration) {
	e.evolution.TotalActiveTime += delta
	e.recomputeLevel()
}

// Evolution returns the current evolution context.
func (e *Engine) Evolution() EvolutionContext { return e.evolution }

func (e *Engine) recomputeLevel() {
	level := e.evolution.Level
	for _, th := range e.thresholds {
		met := (th.Interactions > 0 && e.evolution.InteractionCount >= th.Interactions) ||
			(th.ActiveTime > 0 && e.evolution.TotalActiveTime >= th.ActiveTime)
		if met && th.Level > level {
			level = th.Level
		}
	}
	e.evolution.Level = level
}
