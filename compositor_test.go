package termcore

import "testing"

func TestCompositor_IdleFastPathReturnsCachedOutput(t *testing.T) {
	c := NewCompositor(10, 5, nil)
	id := c.CreateLayer(Bounds{X: 0, Y: 0, Width: 10, Height: 5}, 0)
	c.LayerBufferMut(id).SetChar(0, 0, 'x', EmptyStyle)
	c.MarkLayerDirty(id)

	first := c.Composite()
	if !first.Get(0, 0).Equal(NewCell('x', EmptyStyle)) {
		t.Fatal("expected 'x' painted after dirty composite")
	}

	if c.IsDirty() {
		t.Fatal("expected compositor clean after Composite")
	}
	second := c.Composite()
	if second != first {
		t.Fatal("expected Composite to return the same cached buffer when nothing is dirty")
	}
}

func TestCompositor_ZOrderHighestWins(t *testing.T) {
	c := NewCompositor(5, 1, nil)
	bottom := c.CreateLayer(Bounds{X: 0, Y: 0, Width: 5, Height: 1}, 0)
	top := c.CreateLayer(Bounds{X: 0, Y: 0, Width: 5, Height: 1}, 1)

	c.LayerBufferMut(bottom).SetChar(0, 0, 'b', EmptyStyle)
	c.MarkLayerDirty(bottom)
	c.LayerBufferMut(top).SetChar(0, 0, 't', EmptyStyle)
	c.MarkLayerDirty(top)

	out := c.Composite()
	if out.Get(0, 0).Char != 't' {
		t.Fatalf("expected top layer's cell to win, got %q", out.Get(0, 0).Char)
	}
}

func TestCompositor_InvisibleLayerNotComposited(t *testing.T) {
	c := NewCompositor(5, 1, nil)
	id := c.CreateLayer(Bounds{X: 0, Y: 0, Width: 5, Height: 1}, 0)
	c.LayerBufferMut(id).SetChar(0, 0, 'x', EmptyStyle)
	c.MarkLayerDirty(id)
	c.SetVisible(id, false)

	out := c.Composite()
	if !out.Get(0, 0).IsBlank() {
		t.Fatal("expected invisible layer to contribute nothing")
	}
}

func TestCompositor_BlankCellsAreTransparent(t *testing.T) {
	c := NewCompositor(3, 1, nil)
	bottom := c.CreateLayer(Bounds{X: 0, Y: 0, Width: 3, Height: 1}, 0)
	top := c.CreateLayer(Bounds{X: 0, Y: 0, Width: 3, Height: 1}, 1)

	c.LayerBufferMut(bottom).SetChar(1, 0, 'b', EmptyStyle)
	c.MarkLayerDirty(bottom)
	// top layer left entirely blank
	c.MarkLayerDirty(top)

	out := c.Composite()
	if out.Get(1, 0).Char != 'b' {
		t.Fatal("expected blank top cell to let the bottom layer show through")
	}
}

func TestCompositor_LayerPartiallyOutsideOutputIsClipped(t *testing.T) {
	c := NewCompositor(3, 3, nil)
	id := c.CreateLayer(Bounds{X: 2, Y: 2, Width: 3, Height: 3}, 0)
	c.LayerBufferMut(id).SetChar(0, 0, 'z', EmptyStyle) // lands at output (2,2)
	c.MarkLayerDirty(id)

	out := c.Composite()
	if out.Get(2, 2).Char != 'z' {
		t.Fatal("expected in-bounds cell to be painted")
	}
}

func TestCompositor_ResizeMarksEveryLayerDirty(t *testing.T) {
	c := NewCompositor(4, 4, nil)
	id := c.CreateLayer(Bounds{X: 0, Y: 0, Width: 4, Height: 4}, 0)
	c.Composite() // clears initial dirty flag

	c.Resize(8, 8)
	if !c.IsDirty() {
		t.Fatal("expected resize to dirty every layer")
	}
	out := c.Composite()
	if out.Width() != 8 || out.Height() != 8 {
		t.Fatalf("expected resized output 8x8, got %dx%d", out.Width(), out.Height())
	}
	_ = id
}

func TestCompositor_UnknownLayerIdIsNoop(t *testing.T) {
	c := NewCompositor(2, 2, nil)
	c.SetVisible(999, false)
	c.MoveLayer(999, 1, 1)
	c.ResizeLayer(999, 1, 1)
	c.MarkLayerDirty(999)
	if buf := c.LayerBufferMut(999); buf != nil {
		t.Fatal("expected nil buffer for unknown layer id")
	}
}
