package main

import (
	"fmt"
	"math"
	"math/rand"
)

// Result is one solved build: chosen copy counts (zero counts omitted), the
// realized value of every tracked property, and the objective score. An
// empty build with score 0 means "no feasible build", an expected outcome,
// not a failure.
type Result struct {
	Build map[string]int     `json:"build"`
	Stats map[string]float64 `json:"stats"`
	Score float64            `json:"score"`

	// indices of catalog rows included in the build, used for no-good cuts.
	Indices []int `json:"-"`
}

// Empty reports whether the solve found no feasible build.
func (r *Result) Empty() bool { return len(r.Build) == 0 }

func emptyResult() Result {
	return Result{Build: map[string]int{}, Stats: map[string]float64{}}
}

// ProgramBuilder translates the rule set and catalog into integer programs:
// the deterministic balanced solve, the jittered alternative solve, and the
// per-property extrema solves behind the normalization denominators. The
// base constraint set is built once and never mutated; cuts are layered onto
// fresh derived slices per call.
type ProgramBuilder struct {
	set    *Settings
	rules  *RuleSet
	cat    *Catalog
	coef   Coefficients
	solver Solver
	cache  *ExtremaCache
	rng    *rand.Rand

	baseCons []Constraint
	extrema  map[string]float64
}

// NewProgramBuilder wires the builder and constructs the shared base
// constraints: rule bounds plus the slot-count equality.
func NewProgramBuilder(set *Settings, rules *RuleSet, cat *Catalog, coef Coefficients,
	solver Solver, cache *ExtremaCache, rng *rand.Rand) *ProgramBuilder {

	p := &ProgramBuilder{
		set:    set,
		rules:  rules,
		cat:    cat,
		coef:   coef,
		solver: solver,
		cache:  cache,
		rng:    rng,
	}

	n := len(cat.Rows)
	for _, name := range rules.Names() {
		r := rules.Rules[name]
		if !r.Use {
			continue
		}
		if low, ok := r.Lower(); ok {
			p.baseCons = append(p.baseCons, Constraint{Coefs: coef[name], Sense: SenseGE, RHS: low})
		}
		if high, ok := r.Upper(); ok {
			p.baseCons = append(p.baseCons, Constraint{Coefs: coef[name], Sense: SenseLE, RHS: high})
		}
	}
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	p.baseCons = append(p.baseCons, Constraint{Coefs: ones, Sense: SenseEQ, RHS: float64(set.NumSlots)})
	return p
}

func (p *ProgramBuilder) itemVars() []Variable {
	vars := make([]Variable, len(p.cat.Rows))
	for i := range p.cat.Rows {
		vars[i] = Variable{
			Name:    fmt.Sprintf("x%d", i),
			High:    float64(p.set.MaxCopy),
			Integer: true,
		}
	}
	return vars
}

// withCuts derives a constraint slice with one no-good row per cut: the rows
// of a previously found build may not all recur at full slot count, forcing
// the next solve to differ in at least one included item.
func (p *ProgramBuilder) withCuts(cuts [][]int) []Constraint {
	cons := make([]Constraint, 0, len(p.baseCons)+len(cuts))
	cons = append(cons, p.baseCons...)
	n := len(p.cat.Rows)
	for _, cut := range cuts {
		coefs := make([]float64, n)
		for _, i := range cut {
			coefs[i] = 1
		}
		cons = append(cons, Constraint{Coefs: coefs, Sense: SenseLE, RHS: float64(p.set.NumSlots - 1)})
	}
	return cons
}

// ensureExtrema fills p.extrema through the cache, computing on miss.
func (p *ProgramBuilder) ensureExtrema() error {
	if p.extrema != nil {
		return nil
	}
	maxima, err := p.cache.GetOrCompute(p.set, p.rules, p.computeExtrema)
	if err != nil {
		return err
	}
	p.extrema = maxima
	return nil
}

// computeExtrema solves one single-objective program per active property:
// its best achievable value under the base constraints alone. Infeasible
// programs define the maximum as 0.
func (p *ProgramBuilder) computeExtrema() (map[string]float64, error) {
	maxima := map[string]float64{}
	for _, name := range p.rules.Names() {
		if !p.rules.Rules[name].Active() {
			continue
		}
		prob := &Problem{
			Vars:      p.itemVars(),
			Cons:      p.withCuts(nil),
			Objective: p.coef[name],
			TimeLimit: p.set.SolveTimeLimit,
		}
		sol, err := p.solver.Solve(prob)
		if err != nil {
			return nil, fmt.Errorf("extrema for %q: %w", name, err)
		}
		if sol.Status == StatusOptimal {
			maxima[name] = sol.Objective
		} else {
			maxima[name] = 0.0
		}
		if Verbose {
			logger.Debugw("achievable maximum", "property", name, "value", maxima[name], "status", sol.Status.String())
		}
	}
	return maxima, nil
}

// scale is the normalization denominator for one property: the achievable
// maximum clamped by the upper bound, falling back to 1 so a dead property
// can never divide by zero.
func (p *ProgramBuilder) scale(name string) float64 {
	r := p.rules.Rules[name]
	achievable := p.extrema[name]
	s := achievable
	if high, ok := r.Upper(); ok {
		s = math.Min(high, achievable)
	}
	if s == 0 {
		s = 1.0
	}
	return s
}

// SolveBalanced runs the deterministic target-seeking solve. For every
// active rule the normalized expression is rewarded by priority; rules with
// bounds additionally get a slack penalty for falling short of the midpoint
// target, so the objective balances "maximize" against "hit the configured
// sweet spot".
func (p *ProgramBuilder) SolveBalanced(cuts [][]int) (Result, error) {
	if err := p.ensureExtrema(); err != nil {
		return emptyResult(), err
	}

	n := len(p.cat.Rows)
	vars := p.itemVars()
	cons := p.withCuts(cuts)
	objective := make([]float64, n)

	for _, name := range p.rules.Names() {
		r := p.rules.Rules[name]
		if !r.Active() {
			continue
		}
		s := p.scale(name)
		low, okLow := r.Lower()
		high, okHigh := r.Upper()

		if !okLow && !okHigh {
			// Unbounded property: maximize outright, no target shaping.
			for j := 0; j < n; j++ {
				objective[j] += r.Priority * p.coef[name][j] / s
			}
			continue
		}

		var target float64
		switch {
		case okLow && okHigh:
			target = (low/s + high/s) / 2
		case okLow:
			target = (low/s + 1.0) / 2
		default:
			target = (high / s) / 2
		}

		// delta >= target - normalized(x); shortfall costs priority/2 per unit.
		deltaCol := len(vars)
		vars = append(vars, Variable{Name: "delta_" + name, High: Inf()})
		row := make([]float64, deltaCol+1)
		for j := 0; j < n; j++ {
			row[j] = -p.coef[name][j] / s
		}
		row[deltaCol] = -1
		cons = append(cons, Constraint{Coefs: row, Sense: SenseLE, RHS: -target})

		for j := 0; j < n; j++ {
			objective[j] += r.Priority * p.coef[name][j] / s
		}
		objective = append(objective, -r.Priority*balancedSlackRatio)
	}

	prob := &Problem{
		Vars:      vars,
		Cons:      cons,
		Objective: objective,
		TimeLimit: p.set.SolveTimeLimit,
	}
	sol, err := p.solver.Solve(prob)
	if err != nil {
		return emptyResult(), fmt.Errorf("balanced solve: %w", err)
	}
	return p.extract(sol), nil
}

// SolveOnce runs one fast jittered solve: every active rule's priority is
// perturbed by up to ±jitter and the normalized expressions are maximized
// directly under a short time budget and relaxed gap.
func (p *ProgramBuilder) SolveOnce(jitter float64, cuts [][]int) (Result, error) {
	if err := p.ensureExtrema(); err != nil {
		return emptyResult(), err
	}

	n := len(p.cat.Rows)
	objective := make([]float64, n)
	for _, name := range p.rules.Names() {
		r := p.rules.Rules[name]
		if !r.Active() {
			continue
		}
		s := p.scale(name)
		weight := r.Priority * (1 + jitter*(p.rng.Float64()*2-1))
		for j := 0; j < n; j++ {
			objective[j] += weight * p.coef[name][j] / s
		}
	}

	prob := &Problem{
		Vars:      p.itemVars(),
		Cons:      p.withCuts(cuts),
		Objective: objective,
		TimeLimit: p.set.AltTimeLimit,
		GapRel:    p.set.AltGapRel,
	}
	sol, err := p.solver.Solve(prob)
	if err != nil {
		return emptyResult(), fmt.Errorf("alternative solve: %w", err)
	}
	return p.extract(sol), nil
}

// extract turns a solver assignment into a Result. Any non-optimal status
// yields the empty "loosen your constraints" result.
func (p *ProgramBuilder) extract(sol *Solution) Result {
	if sol.Status != StatusOptimal {
		return emptyResult()
	}

	res := emptyResult()
	res.Score = sol.Objective
	for i := range p.cat.Rows {
		count := int(math.Round(sol.Values[i]))
		if count > 0 {
			res.Build[p.cat.Rows[i].Name] = count
			res.Indices = append(res.Indices, i)
		}
	}
	for _, name := range p.rules.Names() {
		total := 0.0
		for i := range p.cat.Rows {
			total += p.coef[name][i] * sol.Values[i]
		}
		res.Stats[name] = total
	}
	return res
}
