package facerec

import "math"

// EuclideanDistance computes the Euclidean (L2) distance between two descriptors.
// Returns +Inf for mismatched or empty inputs so callers always reject them.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Average computes the element-wise mean of the given descriptors, producing
// a single reference descriptor of the same dimensionality. The result does
// not depend on the order of the inputs. Returns nil if the input is empty
// or the descriptors disagree on length.
func Average(descriptors [][]float32) []float32 {
	if len(descriptors) == 0 {
		return nil
	}

	dim := len(descriptors[0])
	sums := make([]float64, dim)
	for _, d := range descriptors {
		if len(d) != dim {
			return nil
		}
		for i, v := range d {
			sums[i] += float64(v)
		}
	}

	avg := make([]float32, dim)
	n := float64(len(descriptors))
	for i, s := range sums {
		avg[i] = float32(s / n)
	}
	return avg
}
