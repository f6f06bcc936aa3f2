package randutil

import "testing"

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.IntN(1000), b.IntN(1000); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestDeriveStreamsDiffer(t *testing.T) {
	a, b := Derive(42, 0), Derive(42, 1)
	same := 0
	for i := 0; i < 50; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same == 50 {
		t.Fatal("derived streams should not be identical")
	}
}
