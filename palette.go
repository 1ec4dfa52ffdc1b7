package termcore

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Role names one of the palette's fixed color slots.
type Role int

const (
	RoleUserPrefix Role = iota
	RoleAssistantPrefix
	RoleStreamingCursor
	RoleInputText
	RoleStatusReady
	RoleProcessingIndicator
	RoleAgentIndicator
	RoleLatestMessageGlow
	roleCount
)

// roleBases pairs each role's resting (base) color with the color it
// breathes toward (highlight) at the peak of the wave. Chosen to read
// clearly on a dark terminal background; deliberately modest contrast
// so the breathing effect is felt, not distracting.
var roleBases = [roleCount]struct{ Base, Highlight RGB }{
	RoleUserPrefix:          {RGB{100, 180, 255}, RGB{160, 210, 255}},
	RoleAssistantPrefix:     {RGB{180, 140, 255}, RGB{210, 180, 255}},
	RoleStreamingCursor:     {RGB{255, 255, 255}, RGB{130, 130, 130}},
	RoleInputText:           {RGB{220, 220, 220}, RGB{255, 255, 255}},
	RoleStatusReady:         {RGB{90, 200, 120}, RGB{140, 235, 160}},
	RoleProcessingIndicator: {RGB{240, 190, 70}, RGB{255, 225, 130}},
	RoleAgentIndicator:      {RGB{90, 160, 220}, RGB{140, 200, 255}},
	RoleLatestMessageGlow:   {RGB{255, 210, 120}, RGB{255, 245, 200}},
}

// Palette is the shared, slowly-pulsing color table every surface
// reads from. Only Palette.Update mutates resolved colors; renderers
// never compute color math themselves.
type Palette struct {
	interval time.Duration
	elapsed  time.Duration
	phase    float64

	resolved [roleCount]RGB
	static   bool

	glow       *glowTween
	glowActive bool
}

// NewPalette initializes a breathing palette at phase 0 with the given
// rotation interval.
func NewPalette(interval time.Duration) *Palette {
	p := &Palette{interval: interval}
	p.recompute()
	return p
}

// StaticColors returns a palette whose Update is a no-op, for the
// "reduce motion" accessibility contract: resolved colors are fixed to
// each role's base value.
func StaticColors() *Palette {
	p := &Palette{interval: time.Second, static: true}
	p.recompute()
	return p
}

// Update advances the palette by delta. When reduce-motion is active
// this is a guaranteed no-op. Otherwise it accumulates delta, wraps the
// accumulator modulo the rotation interval, and recomputes the wave
// phase and every role's resolved color on every call, so a
// sub-interval delta moves the colors along the wave rather than
// leaving them unchanged. An active evolution glow is then advanced.
func (p *Palette) Update(delta time.Duration) {
	if p.static {
		return
	}
	p.elapsed += delta
	if p.interval <= 0 {
		return
	}
	for p.elapsed >= p.interval {
		p.elapsed -= p.interval
	}
	p.recompute()
	p.advanceGlow(delta)
}

// waveAt evaluates the half-cosine breathing wave at the given elapsed
// time within one rotation interval. Evaluated with math.Cos directly
// rather than a general easing curve, so it reproduces the testable
// property's exact values: 1.0 at the half-period, 0.0 at the full
// period.
func waveAt(elapsed, interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}
	phaseTime := elapsed.Seconds()
	intervalSeconds := interval.Seconds()
	return (1 - math.Cos(2*math.Pi*phaseTime/intervalSeconds)) / 2
}

func (p *Palette) recompute() {
	p.phase = waveAt(p.elapsed, p.interval)
	for r := Role(0); r < roleCount; r++ {
		pair := roleBases[r]
		base := pair.Base
		if p.static {
			p.resolved[r] = base
			continue
		}
		p.resolved[r] = Lerp(base, pair.Highlight, p.phase)
	}
}

// Role resolves a color role to its current RGB value in constant
// time.
func (p *Palette) Role(r Role) RGB {
	if r < 0 || r >= roleCount {
		return RGB{}
	}
	return p.resolved[r]
}

// Phase returns the current wave phase in [0, 1]; it is 1.0 at the
// half-interval peak.
func (p *Palette) Phase() float64 { return p.phase }

// GlowActive reports whether an evolution glow is currently animating,
// so a renderer knows to keep repainting the avatar layer every tick
// even when its frame hasn't changed.
func (p *Palette) GlowActive() bool { return p.glowActive }

// glowTween is a transient three-second highlight on LatestMessageGlow
// triggered when the avatar's evolution level increases. Grounded on
// phanxgames-willow's TweenGroup/TweenColor pattern: three independent
// gween.Tween values (one per RGB channel) driven each frame by
// Update(dt), layered on top of the palette's steady breathing rather
// than replacing it.
type glowTween struct {
	r, g, b *gween.Tween
	to      RGB
}

// StartEvolutionGlow begins a three-second glow on LatestMessageGlow,
// tweening from its current resolved color up to white via
// ease.OutQuad. Once the tween completes the glow ends, and the next
// Update returns the role to its breathing color. It never changes
// which sprite or animation plays —
// only the color the current frame is painted with while the glow is
// active.
func (p *Palette) StartEvolutionGlow() {
	from := p.resolved[RoleLatestMessageGlow]
	to := RGB{255, 255, 255}
	const seconds = 3.0
	p.glow = &glowTween{
		r:  gween.New(float32(from.R), float32(to.R), seconds, ease.OutQuad),
		g:  gween.New(float32(from.G), float32(to.G), seconds, ease.OutQuad),
		b:  gween.New(float32(from.B), float32(to.B), seconds, ease.OutQuad),
		to: to,
	}
	p.glowActive = true
}

func (p *Palette) advanceGlow(delta time.Duration) {
	if !p.glowActive || p.glow == nil {
		return
	}
	dt := float32(delta.Seconds())
	r, doneR := p.glow.r.Update(dt)
	g, doneG := p.glow.g.Update(dt)
	b, doneB := p.glow.b.Update(dt)
	p.resolved[RoleLatestMessageGlow] = RGB{R: clampByte(r), G: clampByte(g), B: clampByte(b)}
	if doneR && doneG && doneB {
		p.glowActive = false
		p.glow = nil
	}
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
