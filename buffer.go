package termcore

import "strings"

// MaxLogicalHeight bounds how far a LogicalBuffer will auto-grow, so a
// runaway conversation can't balloon memory without limit.
const MaxLogicalHeight = 10000

// Buffer is a fixed-size rectangular grid of Cells: the primitive the
// Compositor and the terminal flush step both operate on.
type Buffer struct {
	width, height int
	cells         []Cell
}

// NewBuffer allocates an all-blank buffer. Zero width or height is a
// programmer error — every other operation on Buffer is total.
func NewBuffer(width, height int) *Buffer {
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = Blank
	}
	return &Buffer{width: width, height: height, cells: cells}
}

func (b *Buffer) index(x, y int) int { return y*b.width + x }

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Width returns the buffer width.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height.
func (b *Buffer) Height() int { return b.height }

// Get returns the cell at (x, y), or Blank if out of bounds.
func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Blank
	}
	return b.cells[b.index(x, y)]
}

// Put sets the cell at (x, y); silently clipped if out of bounds.
func (b *Buffer) Put(x, y int, c Cell) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[b.index(x, y)] = c
}

// SetChar sets a character with style at (x, y).
func (b *Buffer) SetChar(x, y int, char rune, style Style) {
	b.Put(x, y, NewCell(char, style))
}

// WriteString writes text starting at (x, y), advancing by each rune's
// display width (so wide CJK/emoji glyphs correctly occupy two cells).
// Clipped at the buffer edge. Returns the number of cells advanced.
func (b *Buffer) WriteString(x, y int, text string, style Style) int {
	if y < 0 || y >= b.height {
		return 0
	}
	col := x
	start := x
	for _, char := range text {
		w := CellWidth(char)
		if w <= 0 {
			w = 1
		}
		if col >= 0 && col < b.width {
			b.SetChar(col, y, char, style)
		}
		col += w
		if col >= b.width {
			break
		}
	}
	return col - start
}

// Reset overwrites every cell with Blank.
func (b *Buffer) Reset() {
	for i := range b.cells {
		b.cells[i] = Blank
	}
}

// CopyFrom replaces self's contents with src's, reallocating only if
// the dimensions differ. The render loop uses this to keep a
// previous-frame snapshot for diffing without allocating one every
// tick.
func (b *Buffer) CopyFrom(src *Buffer) {
	if b.width != src.width || b.height != src.height {
		b.width, b.height = src.width, src.height
		b.cells = make([]Cell, len(src.cells))
	}
	copy(b.cells, src.cells)
}

// Merge copies every non-blank cell of src into self at the given
// offset; blank cells of src leave self unchanged. This is the
// transparency rule: blank means transparent.
func (b *Buffer) Merge(src *Buffer, offsetX, offsetY int) {
	for y := 0; y < src.height; y++ {
		dy := y + offsetY
		if dy < 0 || dy >= b.height {
			continue
		}
		for x := 0; x < src.width; x++ {
			c := src.cells[src.index(x, y)]
			if c.IsBlank() {
				continue
			}
			dx := x + offsetX
			if dx < 0 || dx >= b.width {
				continue
			}
			b.cells[b.index(dx, dy)] = c
		}
	}
}

// Diff yields every position where self differs from previous, in
// row-major order — the minimal edit list that transforms previous
// into self. Out-of-range dimensions between the two buffers are
// treated as newly-written regions of self.
func (b *Buffer) Diff(previous *Buffer) []CellChange {
	return DiffBuffers(previous, b)
}

// ToDebugString renders the buffer's characters only, one line per row.
func (b *Buffer) ToDebugString() string {
	var sb strings.Builder
	for y := 0; y < b.height; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < b.width; x++ {
			sb.WriteRune(b.Get(x, y).Char)
		}
	}
	return sb.String()
}

// LogicalRow is a variable-length, unwrapped row of cells.
type LogicalRow struct {
	Cells []Cell
}

// LogicalBuffer stores content as logical rows of arbitrary length;
// terminal wrapping is deferred to render time via ToVisualRows. This
// backs the conversation and task surfaces, which hold more text than
// the terminal is wide and reflow it against the current width.
type LogicalBuffer struct {
	rows   []LogicalRow
	height int
}

// NewLogicalBuffer creates a logical buffer with the given initial
// height (number of logical rows, before wrapping).
func NewLogicalBuffer(height int) *LogicalBuffer {
	rows := make([]LogicalRow, height)
	return &LogicalBuffer{rows: rows, height: height}
}

// Height returns the number of logical rows.
func (b *LogicalBuffer) Height() int { return b.height }

// Get returns the cell at logical position (x, y), or Blank if out of
// bounds.
func (b *LogicalBuffer) Get(x, y int) Cell {
	if y < 0 || y >= b.height {
		return Blank
	}
	row := b.rows[y]
	if x < 0 || x >= len(row.Cells) {
		return Blank
	}
	return row.Cells[x]
}

func (b *LogicalBuffer) growTo(y int) {
	for y >= b.height && b.height < MaxLogicalHeight {
		b.rows = append(b.rows, LogicalRow{})
		b.height++
	}
}

// Set sets the cell at logical position (x, y), growing the row and
// the buffer (up to MaxLogicalHeight) as needed.
func (b *LogicalBuffer) Set(x, y int, c Cell) {
	if x < 0 || y < 0 || y >= MaxLogicalHeight {
		return
	}
	b.growTo(y)
	if y >= b.height {
		return
	}
	row := &b.rows[y]
	for len(row.Cells) <= x {
		row.Cells = append(row.Cells, Blank)
	}
	row.Cells[x] = c
}

// RowLength returns the length of a logical row.
func (b *LogicalBuffer) RowLength(y int) int {
	if y < 0 || y >= b.height {
		return 0
	}
	return len(b.rows[y].Cells)
}

// WriteString writes text starting at logical position (x, y),
// advancing by grapheme display width. The row extends as needed; no
// clipping happens here (clipping happens at ToVisualRows time).
func (b *LogicalBuffer) WriteString(x, y int, text string, style Style) {
	if y < 0 || y >= b.height {
		return
	}
	col := x
	for _, cluster := range SegmentGraphemes(text) {
		r := firstRune(cluster)
		b.Set(col, y, NewCell(r, style))
		w := GraphemeWidth(cluster)
		if w <= 0 {
			w = 1
		}
		col += w
	}
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ' '
}

// ClearRow empties a single logical row.
func (b *LogicalBuffer) ClearRow(y int) {
	if y < 0 || y >= b.height {
		return
	}
	b.rows[y] = LogicalRow{}
}

// Clear empties every logical row.
func (b *LogicalBuffer) Clear() {
	for y := range b.rows {
		b.rows[y] = LogicalRow{}
	}
}

// VisualRows holds the result of wrapping logical rows to a terminal
// width: the wrapped rows themselves, and a map from each logical row
// index to the first visual row it produced.
type VisualRows struct {
	Rows            [][]Cell
	LogicalToVisual []int
}

// ToVisualRows wraps every logical row into one or more visual rows no
// wider than terminalWidth. An empty logical row produces exactly one
// empty visual row, so blank lines in a conversation are preserved.
func (b *LogicalBuffer) ToVisualRows(terminalWidth int) VisualRows {
	if terminalWidth <= 0 {
		terminalWidth = 1
	}
	visual := make([][]Cell, 0, b.height)
	logicalToVisual := make([]int, b.height)

	for y := 0; y < b.height; y++ {
		logicalToVisual[y] = len(visual)
		row := b.rows[y]
		if len(row.Cells) == 0 {
			visual = append(visual, []Cell{})
			continue
		}
		for i := 0; i < len(row.Cells); i += terminalWidth {
			end := i + terminalWidth
			if end > len(row.Cells) {
				end = len(row.Cells)
			}
			chunk := make([]Cell, end-i)
			copy(chunk, row.Cells[i:end])
			visual = append(visual, chunk)
		}
	}

	return VisualRows{Rows: visual, LogicalToVisual: logicalToVisual}
}
