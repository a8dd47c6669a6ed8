package instrec

import "math"

// hungarianAssign solves the rectangular assignment problem maximizing the total score
// with Kuhn-Munkres (potentials form, O(n³)). Rows are candidates, columns are tracks.
// Returns assignment[i] = column of row i, or -1 for rows left without a real column.
func hungarianAssign(scores [][]float64, numCols int) []int {
	n := len(scores)
	result := make([]int, n)
	for i := range result {
		result[i] = -1
	}
	if n == 0 || numCols == 0 {
		return result
	}

	// Pad to square. Dummy cells cost nothing, so excess rows or columns stay free.
	// Maximizing score is minimizing its negation
	dim := maxInt(n, numCols)
	cost := make([][]float64, dim)
	for i := 0; i < dim; i++ {
		cost[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			if i < n && j < numCols {
				cost[i][j] = -scores[i][j]
			}
		}
	}

	const inf = math.MaxFloat64 / 2
	// 1-indexed; column 0 is virtual
	u := make([]float64, dim+1) // Row potentials
	v := make([]float64, dim+1) // Column potentials
	p := make([]int, dim+1)     // p[j] = row assigned to column j
	way := make([]int, dim+1)   // way[j] = previous column in augmenting path
	minv := make([]float64, dim+1)
	used := make([]bool, dim+1)

	for i := 1; i <= dim; i++ {
		p[0] = i
		j0 := 0
		for j := 1; j <= dim; j++ {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= dim; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			if j1 < 0 {
				break
			}
			for j := 0; j <= dim; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		// Augment along the path
		for j0 != 0 {
			p[j0] = p[way[j0]]
			j0 = way[j0]
		}
	}

	for j := 1; j <= numCols; j++ {
		if row := p[j] - 1; row >= 0 && row < n {
			result[row] = j - 1
		}
	}
	return result
}
