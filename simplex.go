package main

// Two-phase tableau simplex used as the LP relaxation engine by the
// branch-and-bound backend. Maximizes obj over x >= 0 subject to dense
// linear rows. Bland's rule is used for both pivot choices, so the
// iteration cap is a safety net, not a correctness requirement.

const (
	lpEpsilon = 1e-9
	lpMaxIter = 100000
)

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
	lpIterLimit
)

type lpRow struct {
	coefs []float64
	sense Sense
	rhs   float64
}

type simplexTableau struct {
	rows     [][]float64 // m constraint rows, then the cost row; last column is RHS
	basis    []int       // basic column per constraint row
	n        int         // structural variable count
	artStart int         // first artificial column; columns >= artStart are banned in phase 2
	cols     int         // total columns excluding RHS
}

// solveLP maximizes obj (length n) subject to rows, x >= 0.
func solveLP(n int, obj []float64, rows []lpRow) (lpStatus, []float64, float64) {
	t := newTableau(n, rows)

	// Phase 1: drive the artificials to zero.
	if t.artStart < t.cols {
		phase1 := make([]float64, t.cols)
		for j := t.artStart; j < t.cols; j++ {
			phase1[j] = -1
		}
		t.setObjective(phase1, t.cols)
		if st := t.iterate(t.cols); st != lpOptimal {
			if st == lpIterLimit {
				return lpIterLimit, nil, 0
			}
			// Phase 1 is bounded below by zero, so unbounded cannot happen.
			return lpInfeasible, nil, 0
		}
		if t.objective() < -1e-7 {
			return lpInfeasible, nil, 0
		}
		t.expelArtificials()
	}

	// Phase 2: the real objective, artificial columns banned.
	full := make([]float64, t.cols)
	copy(full, obj)
	t.setObjective(full, t.artStart)
	if st := t.iterate(t.artStart); st != lpOptimal {
		return st, nil, 0
	}

	return lpOptimal, t.solution(), t.objective()
}

func newTableau(n int, rows []lpRow) *simplexTableau {
	m := len(rows)

	slackCount, artCount := 0, 0
	for _, r := range rows {
		sense, rhs := r.sense, r.rhs
		if rhs < 0 {
			sense = flipSense(sense)
		}
		switch sense {
		case SenseLE:
			slackCount++
		case SenseGE:
			slackCount++
			artCount++
		case SenseEQ:
			artCount++
		}
	}

	artStart := n + slackCount
	cols := artStart + artCount
	t := &simplexTableau{
		rows:     make([][]float64, m+1),
		basis:    make([]int, m),
		n:        n,
		artStart: artStart,
		cols:     cols,
	}

	slackIdx, artIdx := n, artStart
	for i, r := range rows {
		row := make([]float64, cols+1)
		sign := 1.0
		sense := r.sense
		if r.rhs < 0 {
			sign = -1
			sense = flipSense(sense)
		}
		for j := 0; j < n && j < len(r.coefs); j++ {
			row[j] = sign * r.coefs[j]
		}
		row[cols] = sign * r.rhs

		switch sense {
		case SenseLE:
			row[slackIdx] = 1
			t.basis[i] = slackIdx
			slackIdx++
		case SenseGE:
			row[slackIdx] = -1
			slackIdx++
			row[artIdx] = 1
			t.basis[i] = artIdx
			artIdx++
		case SenseEQ:
			row[artIdx] = 1
			t.basis[i] = artIdx
			artIdx++
		}
		t.rows[i] = row
	}
	t.rows[m] = make([]float64, cols+1)
	return t
}

func flipSense(s Sense) Sense {
	switch s {
	case SenseLE:
		return SenseGE
	case SenseGE:
		return SenseLE
	}
	return SenseEQ
}

// setObjective installs cost row z_j - c_j for maximizing c, pricing out the
// current basis. colLimit restricts which columns may carry cost.
func (t *simplexTableau) setObjective(c []float64, colLimit int) {
	m := len(t.basis)
	cost := t.rows[m]
	for j := range cost {
		cost[j] = 0
	}
	for j := 0; j < colLimit && j < len(c); j++ {
		cost[j] = -c[j]
	}
	for i := 0; i < m; i++ {
		if mult := cost[t.basis[i]]; mult != 0 {
			addScaled(cost, t.rows[i], -mult)
		}
	}
}

// objective is the current value of the installed objective.
func (t *simplexTableau) objective() float64 {
	return t.rows[len(t.basis)][t.cols]
}

// iterate runs primal simplex pivots until optimal, unbounded, or the
// iteration cap. Columns >= colLimit never enter.
func (t *simplexTableau) iterate(colLimit int) lpStatus {
	m := len(t.basis)
	cost := t.rows[m]

	for iter := 0; iter < lpMaxIter; iter++ {
		// Bland: smallest-index column with negative reduced cost.
		enter := -1
		for j := 0; j < colLimit; j++ {
			if cost[j] < -lpEpsilon {
				enter = j
				break
			}
		}
		if enter == -1 {
			return lpOptimal
		}

		leave := -1
		bestRatio := 0.0
		for i := 0; i < m; i++ {
			a := t.rows[i][enter]
			if a <= lpEpsilon {
				continue
			}
			ratio := t.rows[i][t.cols] / a
			if leave == -1 || ratio < bestRatio-lpEpsilon ||
				(ratio < bestRatio+lpEpsilon && t.basis[i] < t.basis[leave]) {
				leave = i
				bestRatio = ratio
			}
		}
		if leave == -1 {
			return lpUnbounded
		}
		t.pivot(leave, enter)
	}
	return lpIterLimit
}

func (t *simplexTableau) pivot(row, col int) {
	pr := t.rows[row]
	inv := 1 / pr[col]
	for j := range pr {
		pr[j] *= inv
	}
	for i := range t.rows {
		if i == row {
			continue
		}
		if mult := t.rows[i][col]; mult != 0 {
			addScaled(t.rows[i], pr, -mult)
		}
	}
	t.basis[row] = col
}

// expelArtificials pivots any artificial still basic after phase 1 onto a
// structural or slack column; rows where that is impossible are redundant
// and dropped.
func (t *simplexTableau) expelArtificials() {
	var kept [][]float64
	var keptBasis []int
	for i := 0; i < len(t.basis); i++ {
		if t.basis[i] < t.artStart {
			kept = append(kept, t.rows[i])
			keptBasis = append(keptBasis, t.basis[i])
			continue
		}
		pivoted := false
		for j := 0; j < t.artStart; j++ {
			if t.rows[i][j] > lpEpsilon || t.rows[i][j] < -lpEpsilon {
				t.pivot(i, j)
				kept = append(kept, t.rows[i])
				keptBasis = append(keptBasis, j)
				pivoted = true
				break
			}
		}
		if !pivoted && Verbose {
			logger.Debugw("dropping redundant constraint row", "row", i)
		}
	}
	cost := t.rows[len(t.basis)]
	t.rows = append(kept, cost)
	t.basis = keptBasis
}

func (t *simplexTableau) solution() []float64 {
	x := make([]float64, t.n)
	for i, b := range t.basis {
		if b < t.n {
			x[b] = t.rows[i][t.cols]
		}
	}
	return x
}

func addScaled(dst, src []float64, mult float64) {
	for j := range dst {
		dst[j] += mult * src[j]
	}
}
