package termcore

import "time"

// Compiled-in sprite data, one SpriteSheet per AvatarSize. Frames are
// compact 2D string literals (one rune per cell) with a parallel color
// grid, matching spec.md §9's "Sprite encoding" guidance: no runtime
// asset loader, just in-memory construction from literals. Loading a
// non-default size means building this representation on first
// request, not performing I/O.

func solidColors(rows []string, c Color) [][]Color {
	grid := make([][]Color, len(rows))
	for y, row := range rows {
		line := make([]Color, len([]rune(row)))
		for x := range line {
			line[x] = c
		}
		grid[y] = line
	}
	return grid
}

func frame(rows []string, c Color, dur time.Duration) Frame {
	return Frame{Rows: rows, Colors: solidColors(rows, c), Duration: dur}
}

// mediumIdle and friends are 18x6 Medium-tier animations. The Tiny,
// Small and Large sheets below each define their own idle-only frame.
var mediumIdleFrames = []Frame{
	frame([]string{
		"   .-‾‾‾-.        ",
		"  /  o  o \\       ",
		" |    ◡    |      ",
		"  \\       /       ",
		"   '-...-'        ",
		"                  ",
	}, ColorCyan, 600*time.Millisecond),
	frame([]string{
		"   .-‾‾‾-.        ",
		"  /  -  - \\       ",
		" |    ◡    |      ",
		"  \\       /       ",
		"   '-...-'        ",
		"                  ",
	}, ColorCyan, 120*time.Millisecond),
}

var mediumThinkingFrames = []Frame{
	frame([]string{
		"   .-‾‾‾-.    .   ",
		"  /  o  o \\  o    ",
		" |    ~    | o    ",
		"  \\       /       ",
		"   '-...-'        ",
		"                  ",
	}, ColorYellow, 450*time.Millisecond),
	frame([]string{
		"   .-‾‾‾-.   .    ",
		"  /  o  o \\ o     ",
		" |    ~    |o     ",
		"  \\       /       ",
		"   '-...-'        ",
		"                  ",
	}, ColorYellow, 450*time.Millisecond),
}

var mediumHappyFrames = []Frame{
	frame([]string{
		"   .-‾‾‾-.        ",
		"  /  ^  ^ \\       ",
		" |    ◡    |      ",
		"  \\  \\_/  /       ",
		"   '-...-'        ",
		"     \\o/          ",
	}, ColorGreen, 500*time.Millisecond),
}

func curiousFrames(level int) []Frame {
	switch level {
	case 3:
		return []Frame{frame([]string{
			"   .-‾‾‾-.   ?    ",
			"  /  O  O \\       ",
			" |    o    |      ",
			"  \\       /       ",
			"   '-...-'        ",
			"                  ",
		}, ColorMagenta, 500*time.Millisecond)}
	case 2:
		return []Frame{frame([]string{
			"   .-‾‾‾-.  ?     ",
			"  /  o  O \\       ",
			" |    o    |      ",
			"  \\       /       ",
			"   '-...-'        ",
			"                  ",
		}, ColorMagenta, 500*time.Millisecond)}
	default:
		return []Frame{frame([]string{
			"   .-‾‾‾-.        ",
			"  /  o  o \\       ",
			" |    o    |      ",
			"  \\       /       ",
			"   '-...-'        ",
			"                  ",
		}, ColorMagenta, 500*time.Millisecond)}
	}
}

func buildMediumSheet() SpriteSheet {
	sheet := SpriteSheet{
		"idle":     {Frames: mediumIdleFrames, Loop: LoopRepeat},
		"thinking": {Frames: mediumThinkingFrames, Loop: LoopRepeat},
		"happy":    {Frames: mediumHappyFrames, Loop: LoopHold},
	}
	for level := 1; level <= 3; level++ {
		sheet[curiousVariantName(level)] = Animation{Frames: curiousFrames(level), Loop: LoopHold}
	}
	return sheet
}

func curiousVariantName(level int) string {
	switch {
	case level >= 3:
		return "curious_3"
	case level == 2:
		return "curious_2"
	default:
		return "curious_1"
	}
}

// SelectMoodAnimation resolves a mood and evolution level to the
// sheet key to play — pure and deterministic in (mood, level), per
// spec.md §4.4. Evolution level only affects the variant chosen for
// "curious"; every other mood is level-invariant.
func SelectMoodAnimation(mood Mood, level int) string {
	if mood == MoodCurious {
		return curiousVariantName(level)
	}
	return string(mood)
}

// PlayMood resolves and plays the animation for a mood at the
// engine's current evolution level.
func (e *Engine) PlayMood(mood Mood, loop LoopBehavior) {
	name := SelectMoodAnimation(mood, e.evolution.Level)
	e.Play(name, loop)
}

func buildTinySheet() SpriteSheet {
	rows := []string{
		" o  o ",
		" \\__/ ",
	}
	idle := frame(rows, ColorCyan, 600*time.Millisecond)
	return SpriteSheet{
		"idle": {Frames: []Frame{idle}, Loop: LoopRepeat},
	}
}

func buildSmallSheet() SpriteSheet {
	rows := []string{
		"  .----.    ",
		" /  oo  \\   ",
		"|   ◡◡   |  ",
		" \\      /   ",
	}
	idle := frame(rows, ColorCyan, 600*time.Millisecond)
	return SpriteSheet{
		"idle": {Frames: []Frame{idle}, Loop: LoopRepeat},
	}
}

func buildLargeSheet() SpriteSheet {
	rows := []string{
		"     .-‾‾‾‾‾‾-.           ",
		"    /   o    o  \\         ",
		"   |              |       ",
		"   |      ◡       |       ",
		"    \\           /         ",
		"     '-........-'         ",
		"                          ",
		"                          ",
		"                          ",
		"                          ",
	}
	idle := frame(rows, ColorCyan, 600*time.Millisecond)
	return SpriteSheet{
		"idle": {Frames: []Frame{idle}, Loop: LoopRepeat},
	}
}

// builtinSheets is populated for every size; Engine.load falls back to
// Medium only if a requested size is somehow absent from this map
// (defensive — all four are always defined here).
var builtinSheets = map[AvatarSize]SpriteSheet{
	SizeTiny:   buildTinySheet(),
	SizeSmall:  buildSmallSheet(),
	SizeMedium: buildMediumSheet(),
	SizeLarge:  buildLargeSheet(),
}
