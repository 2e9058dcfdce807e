package random

import "testing"

func TestSequence_Wraps(t *testing.T) {
	s := NewSequence(0.1, 0.9)

	got := []float64{s.Float64(), s.Float64(), s.Float64()}

	want := []float64{0.1, 0.9, 0.1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("draw %d = %v, want %v", i, got[i], want[i])
		}
	}
	if s.Draws() != 3 {
		t.Errorf("Draws() = %d, want 3", s.Draws())
	}
}

func TestSequence_Empty(t *testing.T) {
	if v := NewSequence().Float64(); v != 0 {
		t.Errorf("empty sequence returned %v", v)
	}
}

func TestSeeded_Reproducible(t *testing.T) {
	a, b := Seeded(7), Seeded(7)
	for i := 0; i < 10; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("draw %d differs: %v vs %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d out of range: %v", i, va)
		}
	}
}

func TestDefault_Range(t *testing.T) {
	src := Default()
	for i := 0; i < 1000; i++ {
		if v := src.Float64(); v < 0 || v >= 1 {
			t.Fatalf("draw out of range: %v", v)
		}
	}
}
