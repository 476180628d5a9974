// Package cluster segments engineered feature vectors with k-means and picks
// the cluster count by silhouette score. Everything is seeded: identical
// inputs always produce identical segments.
package cluster

import (
	"math"
	"math/rand"
)

// kmeansMaxIter bounds Lloyd iterations; convergence is usually much earlier.
const kmeansMaxIter = 100

// kmeans runs seeded k-means++ on a row-major matrix and returns an
// assignment per row. k must be <= len(points).
func kmeans(points [][]float64, k int, seed int64) []int {
	n := len(points)
	r := rand.New(rand.NewSource(seed))

	centroids := seedCentroids(points, k, r)
	assignments := make([]int, n)

	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		recomputeCentroids(points, assignments, centroids, r)
	}
	return assignments
}

// seedCentroids implements k-means++ initialization: the first centroid is
// uniform, each next is drawn proportional to squared distance from the
// nearest existing centroid.
func seedCentroids(points [][]float64, k int, r *rand.Rand) [][]float64 {
	n := len(points)
	dim := len(points[0])

	centroids := make([][]float64, 0, k)
	first := append([]float64(nil), points[r.Intn(n)]...)
	centroids = append(centroids, first)

	dists := make([]float64, n)
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := math.Inf(1)
			for _, c := range centroids {
				if dd := sqDist(p, c); dd < d {
					d = dd
				}
			}
			dists[i] = d
			total += d
		}

		var next int
		if total == 0 {
			// Degenerate data: every point sits on a centroid.
			next = r.Intn(n)
		} else {
			roll := r.Float64() * total
			for i, d := range dists {
				roll -= d
				if roll <= 0 {
					next = i
					break
				}
			}
		}
		c := make([]float64, dim)
		copy(c, points[next])
		centroids = append(centroids, c)
	}
	return centroids
}

func recomputeCentroids(points [][]float64, assignments []int, centroids [][]float64, r *rand.Rand) {
	dim := len(points[0])
	counts := make([]int, len(centroids))
	for i := range centroids {
		for j := 0; j < dim; j++ {
			centroids[i][j] = 0
		}
	}
	for i, p := range points {
		c := assignments[i]
		counts[c]++
		for j, v := range p {
			centroids[c][j] += v
		}
	}
	for i, cnt := range counts {
		if cnt == 0 {
			// Re-seed an emptied centroid on a random point.
			copy(centroids[i], points[r.Intn(len(points))])
			continue
		}
		for j := range centroids[i] {
			centroids[i][j] /= float64(cnt)
		}
	}
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centroids {
		if d := sqDist(p, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
