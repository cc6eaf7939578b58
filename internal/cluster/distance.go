package cluster

import "math"

// Euclidean returns the euclidean distance between two embedding vectors.
// Lower distance means more similar faces. Vectors must be the same length.
func Euclidean(a, b []float32) float64 {
	return math.Sqrt(SquaredEuclidean(a, b))
}

// SquaredEuclidean avoids the sqrt for threshold comparisons.
func SquaredEuclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return sum
}
