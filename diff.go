package termcore

import "sort"

// CellChange is a single (x, y) position whose cell differs between two
// buffers, carrying the new cell value.
type CellChange struct {
	X    int
	Y    int
	Cell Cell
}

// DiffBuffers computes the minimal set of changes that transforms from
// into to. This is the round-trip diff law's producer: applying every
// change in order to a copy of from reproduces to exactly.
func DiffBuffers(from, to *Buffer) []CellChange {
	estimated := (to.Width() * to.Height()) / 5
	if estimated < 64 {
		estimated = 64
	}
	changes := make([]CellChange, 0, estimated)
	return DiffBuffersInto(from, to, changes[:0])
}

// DiffBuffersInto computes the diff, appending to the caller-provided
// slice. Reusing the backing array across frames avoids per-tick
// allocation, the pooling technique the render loop relies on to stay
// under its per-frame time budget.
func DiffBuffersInto(from, to *Buffer, result []CellChange) []CellChange {
	width := min(from.Width(), to.Width())
	height := min(from.Height(), to.Height())

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fromCell := from.Get(x, y)
			toCell := to.Get(x, y)
			if !fromCell.Equal(toCell) {
				result = append(result, CellChange{X: x, Y: y, Cell: toCell})
			}
		}
	}

	for y := height; y < to.Height(); y++ {
		for x := 0; x < to.Width(); x++ {
			result = append(result, CellChange{X: x, Y: y, Cell: to.Get(x, y)})
		}
	}

	for y := 0; y < height; y++ {
		for x := width; x < to.Width(); x++ {
			result = append(result, CellChange{X: x, Y: y, Cell: to.Get(x, y)})
		}
	}

	return result
}

// GroupChangesByRow groups changes by row, each row sorted by column,
// so a flush can move the cursor once per row instead of per cell.
func GroupChangesByRow(changes []CellChange) map[int][]CellChange {
	byRow := make(map[int][]CellChange)
	for _, change := range changes {
		byRow[change.Y] = append(byRow[change.Y], change)
	}
	for _, row := range byRow {
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return byRow
}

// CellRun is a maximal run of consecutive, same-row cell changes — the
// unit the ANSI flush writes as a single cursor move plus a single run
// of characters.
type CellRun struct {
	X, Y  int
	Cells []Cell
}

// FindRuns groups changes into CellRuns, in row-major, then
// column-major order.
func FindRuns(changes []CellChange) []CellRun {
	if len(changes) == 0 {
		return nil
	}
	runs := make([]CellRun, 0, len(changes)/4+1)
	return FindRunsInto(changes, runs[:0])
}

// FindRunsInto groups changes into CellRuns, appending to result.
func FindRunsInto(changes []CellChange, result []CellRun) []CellRun {
	if len(changes) == 0 {
		return result
	}

	byRow := GroupChangesByRow(changes)

	rows := make([]int, 0, len(byRow))
	for y := range byRow {
		rows = append(rows, y)
	}
	sort.Ints(rows)

	for _, y := range rows {
		rowChanges := byRow[y]
		var current *CellRun

		for _, change := range rowChanges {
			if current != nil && change.X == current.X+len(current.Cells) {
				current.Cells = append(current.Cells, change.Cell)
				continue
			}
			if current != nil {
				result = append(result, *current)
			}
			cells := make([]Cell, 1, 16)
			cells[0] = change.Cell
			current = &CellRun{X: change.X, Y: y, Cells: cells}
		}

		if current != nil {
			result = append(result, *current)
		}
	}

	return result
}
