package termcore

import (
	"strings"
	"testing"
)

func TestRenderConversationLayer_BottomAnchorsToMostRecentRows(t *testing.T) {
	buf := NewBuffer(20, 2)
	palette := StaticColors()
	messages := []ConversationMessage{
		{Role: ConversationUser, Text: "first"},
		{Role: ConversationAssistant, Text: "second"},
		{Role: ConversationUser, Text: "third"},
	}
	renderConversationLayer(buf, messages, palette)

	var row1 strings.Builder
	for x := 0; x < buf.Width(); x++ {
		row1.WriteRune(buf.Get(x, 1).Char)
	}
	if !strings.Contains(row1.String(), "third") {
		t.Fatalf("expected the most recent message on the last visible row, got %q", row1.String())
	}
}

func TestRenderConversationLayer_EmptyTranscriptLeavesBufferBlank(t *testing.T) {
	buf := NewBuffer(10, 3)
	buf.SetChar(0, 0, 'x', EmptyStyle)
	renderConversationLayer(buf, nil, StaticColors())
	if !buf.Get(0, 0).IsBlank() {
		t.Fatal("expected an empty transcript to reset the buffer to blank")
	}
}

func TestRenderConversationLayer_StreamingMessageGetsCursorGlyph(t *testing.T) {
	buf := NewBuffer(30, 1)
	messages := []ConversationMessage{
		{Role: ConversationAssistant, Text: "typing", Streaming: true},
	}
	renderConversationLayer(buf, messages, StaticColors())

	found := false
	for x := 0; x < buf.Width(); x++ {
		if buf.Get(x, 0).Char == '▌' {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a streaming cursor glyph to be painted")
	}
}

func TestRenderTasksLayer_FormatsProgressAndCompletionMarker(t *testing.T) {
	buf := NewBuffer(40, 2)
	tasks := []Task{
		{ID: "a", Text: "indexing", Progress: 0.5},
		{ID: "b", Text: "done-task", Done: true, Progress: 1},
	}
	renderTasksLayer(buf, tasks, StaticColors())

	var row0, row1 strings.Builder
	for x := 0; x < buf.Width(); x++ {
		row0.WriteRune(buf.Get(x, 0).Char)
		row1.WriteRune(buf.Get(x, 1).Char)
	}
	if !strings.Contains(row0.String(), "(50%)") {
		t.Fatalf("expected 50%% progress formatted, got %q", row0.String())
	}
	if !strings.Contains(row1.String(), "✓") {
		t.Fatalf("expected a completion checkmark, got %q", row1.String())
	}
}

func TestRenderTasksLayer_OverflowTasksAreClippedNotPanicking(t *testing.T) {
	buf := NewBuffer(10, 1)
	tasks := []Task{{ID: "a", Text: "one"}, {ID: "b", Text: "two"}}
	renderTasksLayer(buf, tasks, StaticColors()) // must not panic despite 2 tasks, 1 row
}

func TestRenderInputLayer_EmptyFieldPaintsPlaceholder(t *testing.T) {
	buf := NewBuffer(20, 3)
	in := NewInput(InputOptions{Placeholder: "type here"})
	renderInputLayer(buf, in, StaticColors())

	var row1 strings.Builder
	for x := 0; x < buf.Width(); x++ {
		row1.WriteRune(buf.Get(x, 1).Char)
	}
	if !strings.Contains(row1.String(), "type here") {
		t.Fatalf("expected placeholder text painted, got %q", row1.String())
	}
}

func TestRenderInputLayer_CursorAdvancesWithTypedText(t *testing.T) {
	buf := NewBuffer(20, 3)
	in := NewInput(InputOptions{InitialValue: "ab"})
	in.SetCursorPos(2)
	renderInputLayer(buf, in, StaticColors())

	if !buf.Get(3, 1).Style.Inverse {
		t.Fatalf("expected inverse-video cursor cell at column 3, got style %+v", buf.Get(3, 1).Style)
	}
}

func TestRenderStatusLayer_BackendUnavailablePrependsNotice(t *testing.T) {
	buf := NewBuffer(60, 1)
	renderStatusLayer(buf, StatusInfo{Text: "ready", BackendUnavailable: true}, StaticColors())

	var row strings.Builder
	for x := 0; x < buf.Width(); x++ {
		row.WriteRune(buf.Get(x, 0).Char)
	}
	if !strings.HasPrefix(strings.TrimRight(row.String(), " \x00"), "backend unavailable") {
		t.Fatalf("expected backend-unavailable prefix, got %q", row.String())
	}
}

func TestRenderAvatarLayer_GlowOverridesSpriteColorOnNonSpaceGlyphs(t *testing.T) {
	buf := NewBuffer(5, 2)
	palette := NewPalette(1000 * 1000 * 1000) // 1s, irrelevant here
	palette.StartEvolutionGlow()

	frame := Frame{
		Rows:   []string{"ab", "cd"},
		Colors: [][]Color{{ColorRed, ColorRed}, {ColorRed, ColorRed}},
	}
	renderAvatarLayer(buf, frame, palette)

	glow := palette.Role(RoleLatestMessageGlow)
	if buf.Get(0, 0).Style.ColorRGB == nil || *buf.Get(0, 0).Style.ColorRGB != glow {
		t.Fatalf("expected glyph colored by the glow while active, got %+v", buf.Get(0, 0).Style)
	}
}

func TestRenderLoadingLayer_PaintsSpriteAndStatusLine(t *testing.T) {
	buf := NewBuffer(20, 10)
	frame := Frame{
		Rows:   []string{"^^", "()"},
		Colors: [][]Color{{ColorRed, ColorRed}, {ColorRed, ColorRed}},
	}
	renderLoadingLayer(buf, frame, "loading…", StaticColors())

	foundSprite, foundStatus := false, false
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			switch buf.Get(x, y).Char {
			case '^', '(':
				foundSprite = true
			case 'l':
				foundStatus = true
			}
		}
	}
	if !foundSprite {
		t.Fatal("expected the avatar frame glyphs painted somewhere on the loading surface")
	}
	if !foundStatus {
		t.Fatal("expected the status text painted somewhere on the loading surface")
	}
}

func TestRenderLoadingLayer_UsesProcessingIndicatorColor(t *testing.T) {
	buf := NewBuffer(20, 10)
	frame := Frame{Rows: []string{"x"}, Colors: [][]Color{{ColorRed}}}
	palette := StaticColors()
	renderLoadingLayer(buf, frame, "loading…", palette)

	want := palette.Role(RoleProcessingIndicator)
	found := false
	for y := 0; y < buf.Height() && !found; y++ {
		for x := 0; x < buf.Width(); x++ {
			cell := buf.Get(x, y)
			if cell.Char == 'x' {
				if cell.Style.ColorRGB == nil || *cell.Style.ColorRGB != want {
					t.Fatalf("expected the sprite glyph tinted with RoleProcessingIndicator, got %+v", cell.Style)
				}
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatal("expected to find the sprite glyph")
	}
}

func TestRenderLogLayer_HeaderShowsMessageCountAndColorCodesByLevel(t *testing.T) {
	buf := NewBuffer(60, 10)
	messages := []LogMessage{
		{Level: LogLevelError, Message: "boom"},
		{Level: LogLevelInfo, Message: "ok"},
	}
	renderLogLayer(buf, messages)

	var header strings.Builder
	for x := 0; x < buf.Width(); x++ {
		header.WriteRune(buf.Get(x, buf.Height()-6).Char)
	}
	if !strings.Contains(header.String(), "log (2)") {
		t.Fatalf("expected header to report message count, got %q", header.String())
	}
}
