package signals

import "testing"

func TestCreateSignal_ReturnsCurrentValue(t *testing.T) {
	count, setCount := CreateSignal(0)
	if count() != 0 {
		t.Fatalf("expected initial value 0, got %d", count())
	}
	setCount(5)
	if count() != 5 {
		t.Fatalf("expected 5 after set, got %d", count())
	}
}

func TestSetWith_UpdatesFromPreviousValue(t *testing.T) {
	count, setCount := CreateSignal(10)
	SetWith(setCount, func(prev int) int { return prev + 5 }, count)
	if count() != 15 {
		t.Fatalf("expected 15, got %d", count())
	}
}

func TestBatchVoid_RunsAllWritesBeforeReturning(t *testing.T) {
	a, setA := CreateSignal(0)
	b, setB := CreateSignal("")

	BatchVoid(func() {
		setA(1)
		setB("one")
	})

	if a() != 1 || b() != "one" {
		t.Fatalf("expected both writes to land, got a=%d b=%q", a(), b())
	}
}

func TestCreateSignal_IndependentSignalsDoNotInterfere(t *testing.T) {
	a, setA := CreateSignal(1)
	b, setB := CreateSignal(2)
	setA(100)
	if a() != 100 || b() != 2 {
		t.Fatalf("expected signals to be independent, got a=%d b=%d", a(), b())
	}
	setB(200)
	if a() != 100 || b() != 200 {
		t.Fatalf("expected signals to be independent, got a=%d b=%d", a(), b())
	}
}
