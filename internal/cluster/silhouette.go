package cluster

import "math"

// silhouette computes the mean silhouette coefficient over all points.
// Returns -1 when fewer than two distinct clusters exist, which makes a
// degenerate clustering lose every k comparison.
func silhouette(points [][]float64, assignments []int) float64 {
	n := len(points)
	counts := make(map[int]int)
	for _, a := range assignments {
		counts[a]++
	}
	if len(counts) < 2 {
		return -1
	}

	total := 0.0
	for i, p := range points {
		own := assignments[i]
		if counts[own] <= 1 {
			// Singleton clusters contribute zero by convention.
			continue
		}

		// Mean distance to every cluster in one pass.
		sums := make(map[int]float64)
		for j, q := range points {
			if i == j {
				continue
			}
			sums[assignments[j]] += math.Sqrt(sqDist(p, q))
		}

		a := sums[own] / float64(counts[own]-1)
		b := math.Inf(1)
		for c, sum := range sums {
			if c == own {
				continue
			}
			if mean := sum / float64(counts[c]); mean < b {
				b = mean
			}
		}

		max := a
		if b > max {
			max = b
		}
		if max > 0 {
			total += (b - a) / max
		}
	}
	return total / float64(n)
}
