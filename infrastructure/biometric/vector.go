package biometric

import (
	"math"

	"facegate.io/infrastructure/biometric/types"
)

// EuclideanDistance returns the L2 distance between two vectors. The second
// return value is false when the vectors are empty or of unequal length;
// malformed input is never an error condition here, matching degrades to
// "no match" upstream.
func EuclideanDistance(a, b types.EmbeddingVector) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum), true
}

// SimilarityFromDistance maps a distance into [0,1] with a monotonic
// decreasing transform. Identical vectors score 1.
func SimilarityFromDistance(distance, scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	return clamp01(1 - distance/scale)
}

// AverageVector computes the component-wise mean of equal-length vectors.
// Vectors whose length disagrees with the first are skipped.
func AverageVector(vectors [][]float64) []float64 {
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil
	}
	dim := len(vectors[0])
	avg := make([]float64, dim)
	count := 0
	for _, vector := range vectors {
		if len(vector) != dim {
			continue
		}
		for i, v := range vector {
			avg[i] += v
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range avg {
		avg[i] /= float64(count)
	}
	return avg
}

// l2Normalize scales the vector to unit length in place. A zero vector is
// left untouched.
func l2Normalize(vector []float64) {
	var sum float64
	for _, v := range vector {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range vector {
		vector[i] /= norm
	}
}

// minMaxNormalize rescales components to [0,1]. A flat vector maps to all
// zeros rather than dividing by zero.
func minMaxNormalize(vector []float64) {
	if len(vector) == 0 {
		return
	}
	min, max := vector[0], vector[0]
	for _, v := range vector {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	spread := max - min
	if spread == 0 {
		for i := range vector {
			vector[i] = 0
		}
		return
	}
	for i := range vector {
		vector[i] = (vector[i] - min) / spread
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
