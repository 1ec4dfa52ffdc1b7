package termcore

import "fmt"

// renderConversationLayer paints the bottom-anchored, word-wrapped
// transcript into buf: the most recent visual rows that fit, so new
// messages push older ones off the top rather than truncating new
// content at the bottom.
func renderConversationLayer(buf *Buffer, messages []ConversationMessage, palette *Palette) {
	buf.Reset()
	if len(messages) == 0 {
		return
	}

	lb := NewLogicalBuffer(len(messages))
	for i, m := range messages {
		prefix := "you: "
		role := palette.Role(RoleUserPrefix)
		if m.Role == ConversationAssistant {
			prefix = "companion: "
			role = palette.Role(RoleAssistantPrefix)
		}
		lb.WriteString(0, i, prefix+m.Text, Style{ColorRGB: &role})
		if m.Streaming {
			cursor := palette.Role(RoleStreamingCursor)
			lb.WriteString(lb.RowLength(i), i, "▌", Style{ColorRGB: &cursor})
		}
	}

	visual := lb.ToVisualRows(buf.Width())
	rows := visual.Rows
	start := 0
	if len(rows) > buf.Height() {
		start = len(rows) - buf.Height()
	}
	for i := start; i < len(rows); i++ {
		for x, cell := range rows[i] {
			buf.Put(x, i-start, cell)
		}
	}
}

// renderTasksLayer paints each task as one line with a completion
// marker and percentage.
func renderTasksLayer(buf *Buffer, tasks []Task, palette *Palette) {
	buf.Reset()
	color := palette.Role(RoleAgentIndicator)
	for i, t := range tasks {
		if i >= buf.Height() {
			break
		}
		mark := "…"
		if t.Done {
			mark = "✓"
		}
		line := fmt.Sprintf("%s %s (%d%%)", mark, t.Text, int(t.Progress*100+0.5))
		buf.WriteString(0, i, line, Style{ColorRGB: &color})
	}
}

// renderInputLayer paints a one-line border, the field's display value
// (dimmed while showing its placeholder), and an inverse-video cursor
// cell.
func renderInputLayer(buf *Buffer, in *Input, palette *Palette) {
	buf.Reset()
	if buf.Height() == 0 {
		return
	}

	for x := 0; x < buf.Width(); x++ {
		buf.SetChar(x, 0, '─', Style{Dim: true})
	}

	color := palette.Role(RoleInputText)
	style := Style{ColorRGB: &color}
	if in.ShowingPlaceholder() {
		style.Dim = true
	}
	display := in.DisplayValue()
	row := 1
	if row >= buf.Height() {
		row = buf.Height() - 1
	}
	buf.WriteString(1, row, display, style)

	cursorCol := 1
	if !in.ShowingPlaceholder() {
		pos := in.CursorPos()
		if pos > len(display) {
			pos = len(display)
		}
		cursorCol = 1 + StringWidth(display[:pos])
	}
	cursorCell := buf.Get(cursorCol, row)
	ch := cursorCell.Char
	if ch == 0 {
		ch = ' '
	}
	buf.SetChar(cursorCol, row, ch, Style{ColorRGB: &color, Inverse: true})
}

// renderStatusLayer paints the single status line, tinted by whether
// the backend is processing or unavailable.
func renderStatusLayer(buf *Buffer, status StatusInfo, palette *Palette) {
	buf.Reset()
	color := palette.Role(RoleStatusReady)
	if status.Processing {
		color = palette.Role(RoleProcessingIndicator)
	}
	text := status.Text
	if status.BackendUnavailable {
		text = "backend unavailable — " + text
	}
	buf.WriteString(0, 0, text, Style{ColorRGB: &color})
}

// renderAvatarLayer paints the animation engine's current frame. While
// an evolution glow is active every non-space glyph is painted in the
// palette's glow color instead of its sprite-declared color, layered
// on top without changing which frame plays.
func renderAvatarLayer(buf *Buffer, frame Frame, palette *Palette) {
	buf.Reset()
	glowing := palette.GlowActive()
	glow := palette.Role(RoleLatestMessageGlow)

	for y, row := range frame.Rows {
		if y >= buf.Height() {
			break
		}
		colors := frame.Colors[y]
		x := 0
		for i, r := range []rune(row) {
			if x >= buf.Width() {
				break
			}
			style := Style{}
			if glowing && r != ' ' {
				style.ColorRGB = &glow
			} else if i < len(colors) {
				style.Color = colors[i]
			}
			buf.SetChar(x, y, r, style)
			w := CellWidth(r)
			if w <= 0 {
				w = 1
			}
			x += w
		}
	}
}

// renderLoadingLayer paints the dedicated startup surface: the avatar's
// current frame centered on screen with a status line beneath it, both
// tinted in the palette's pulsing processing color. The layer spans the
// full terminal, but only its non-space glyphs are painted and blank
// cells are transparent; the render loop keeps the five main surfaces
// hidden while it is shown.
func renderLoadingLayer(buf *Buffer, frame Frame, statusText string, palette *Palette) {
	buf.Reset()
	color := palette.Role(RoleProcessingIndicator)
	style := Style{ColorRGB: &color}

	frameHeight := len(frame.Rows)
	frameWidth := 0
	for _, row := range frame.Rows {
		if w := StringWidth(row); w > frameWidth {
			frameWidth = w
		}
	}

	startY := (buf.Height() - frameHeight - 2) / 2
	if startY < 0 {
		startY = 0
	}
	startX := (buf.Width() - frameWidth) / 2
	if startX < 0 {
		startX = 0
	}

	for y, row := range frame.Rows {
		ty := startY + y
		if ty < 0 || ty >= buf.Height() {
			continue
		}
		x := startX
		for _, r := range []rune(row) {
			if x >= 0 && x < buf.Width() && r != ' ' {
				buf.SetChar(x, ty, r, style)
			}
			w := CellWidth(r)
			if w <= 0 {
				w = 1
			}
			x += w
		}
	}

	statusY := startY + frameHeight + 1
	if statusY >= buf.Height() {
		statusY = buf.Height() - 1
	}
	statusX := (buf.Width() - StringWidth(statusText)) / 2
	if statusX < 0 {
		statusX = 0
	}
	buf.WriteString(statusX, statusY, statusText, style)
}

// renderLogLayer paints the Ctrl+L diagnostics panel: a bottom strip
// showing the most recent captured log lines, color-coded by level.
func renderLogLayer(buf *Buffer, messages []LogMessage) {
	buf.Reset()
	panelHeight := buf.Height() / 3
	if panelHeight < 6 {
		panelHeight = 6
	}
	if panelHeight > buf.Height() {
		panelHeight = buf.Height()
	}
	panelY := buf.Height() - panelHeight

	header := fmt.Sprintf(" log (%d) — Ctrl+L close, Ctrl+K clear", len(messages))
	buf.WriteString(0, panelY, header, Style{Bold: true, Color: ColorCyan})

	maxLines := panelHeight - 1
	visible := messages
	if len(visible) > maxLines {
		visible = visible[len(visible)-maxLines:]
	}
	for i, msg := range visible {
		color := ColorWhite
		switch msg.Level {
		case LogLevelError:
			color = ColorRed
		case LogLevelWarn:
			color = ColorYellow
		}
		buf.WriteString(0, panelY+1+i, " "+FormatMessage(msg), Style{Color: color})
	}
}
