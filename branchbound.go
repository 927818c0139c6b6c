package main

import (
	"math"
	"time"
)

// MILPSolver is the in-process backend: branch-and-bound over simplex LP
// relaxations. It satisfies the Solver contract exactly as an external
// engine would; the optimization core never looks inside.
type MILPSolver struct{}

const intTolerance = 1e-6

type bbState struct {
	n        int
	obj      []float64
	base     []lpRow
	vars     []Variable
	deadline time.Time
	hasLimit bool
	gapRel   float64

	bestX    []float64
	bestObj  float64
	hasBest  bool
	limitHit bool
	rootUnbounded bool
}

// Solve maximizes the problem. The error return is always nil here: an
// infeasible or unbounded program is a status, not a failure.
func (s *MILPSolver) Solve(p *Problem) (*Solution, error) {
	n := len(p.Vars)
	obj := make([]float64, n)
	for j := range obj {
		obj[j] = p.objCoef(j)
	}

	base := make([]lpRow, 0, len(p.Cons)+n)
	for i := range p.Cons {
		c := &p.Cons[i]
		coefs := make([]float64, n)
		for j := range coefs {
			coefs[j] = c.coef(j)
		}
		base = append(base, lpRow{coefs: coefs, sense: c.Sense, rhs: c.RHS})
	}
	for j := range p.Vars {
		if high := p.Vars[j].High; !math.IsInf(high, 1) {
			base = append(base, boundRow(n, j, SenseLE, high))
		}
	}

	st := &bbState{
		n:       n,
		obj:     obj,
		base:    base,
		vars:    p.Vars,
		gapRel:  p.GapRel,
		bestObj: math.Inf(-1),
	}
	if p.TimeLimit > 0 {
		st.hasLimit = true
		st.deadline = time.Now().Add(p.TimeLimit)
	}

	st.branch(nil, true)

	switch {
	case st.hasBest:
		values := st.bestX[:n:n]
		for j := range values {
			if st.vars[j].Integer {
				values[j] = math.Round(values[j])
			}
		}
		return &Solution{Status: StatusOptimal, Values: values, Objective: st.bestObj}, nil
	case st.rootUnbounded:
		return &Solution{Status: StatusUnbounded}, nil
	case st.limitHit:
		return &Solution{Status: StatusLimit}, nil
	default:
		return &Solution{Status: StatusInfeasible}, nil
	}
}

func boundRow(n, j int, sense Sense, rhs float64) lpRow {
	coefs := make([]float64, n)
	coefs[j] = 1
	return lpRow{coefs: coefs, sense: sense, rhs: rhs}
}

func (st *bbState) branch(extra []lpRow, root bool) {
	if st.hasLimit && time.Now().After(st.deadline) {
		st.limitHit = true
		return
	}

	rows := make([]lpRow, 0, len(st.base)+len(extra))
	rows = append(rows, st.base...)
	rows = append(rows, extra...)

	status, x, z := solveLP(st.n, st.obj, rows)
	switch status {
	case lpInfeasible, lpIterLimit:
		return
	case lpUnbounded:
		if root {
			st.rootUnbounded = true
		}
		return
	}

	if st.hasBest {
		// Bound prune, then gap prune: a node that cannot beat the incumbent
		// by more than the acceptable gap is not worth expanding.
		if z <= st.bestObj+lpEpsilon {
			return
		}
		if st.gapRel > 0 && z-st.bestObj <= st.gapRel*math.Max(1, math.Abs(st.bestObj)) {
			return
		}
	}

	// Most fractional integer variable.
	branchVar := -1
	worst := intTolerance
	for j := 0; j < st.n; j++ {
		if !st.vars[j].Integer {
			continue
		}
		frac := math.Abs(x[j] - math.Round(x[j]))
		if frac > worst {
			worst = frac
			branchVar = j
		}
	}

	if branchVar == -1 {
		st.bestObj = z
		st.bestX = x
		st.hasBest = true
		return
	}

	floor := math.Floor(x[branchVar])
	down := append(append([]lpRow(nil), extra...), boundRow(st.n, branchVar, SenseLE, floor))
	up := append(append([]lpRow(nil), extra...), boundRow(st.n, branchVar, SenseGE, floor+1))

	// Explore the side nearer the relaxation value first.
	if x[branchVar]-floor > 0.5 {
		st.branch(up, false)
		st.branch(down, false)
	} else {
		st.branch(down, false)
		st.branch(up, false)
	}
}
