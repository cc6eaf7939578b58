package cluster

import (
	"math"
	"testing"
)

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"unit apart", []float32{0, 0}, []float32{1, 0}, 1},
		{"pythagorean", []float32{0, 0}, []float32{3, 4}, 5},
		{"negative components", []float32{-1, -1}, []float32{1, 1}, 2 * math.Sqrt2},
		{"empty vectors", []float32{}, []float32{}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Euclidean(tc.a, tc.b)
			if math.Abs(result-tc.expected) > 1e-9 {
				t.Errorf("Euclidean(%v, %v) = %g; want %g", tc.a, tc.b, result, tc.expected)
			}
		})
	}
}

func TestSquaredEuclidean(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 6, 3}

	got := SquaredEuclidean(a, b)
	if got != 25 {
		t.Errorf("SquaredEuclidean(%v, %v) = %g; want 25", a, b, got)
	}
}

func TestEuclideanSymmetric(t *testing.T) {
	a := []float32{0.1, 0.9, -0.4, 0.3}
	b := []float32{-0.2, 0.5, 0.7, 0.0}

	if d1, d2 := Euclidean(a, b), Euclidean(b, a); d1 != d2 {
		t.Errorf("distance not symmetric: %g vs %g", d1, d2)
	}
}
