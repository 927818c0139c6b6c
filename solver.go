package main

import (
	"math"
	"time"
)

// Status is the outcome of one solver invocation.
type Status int

const (
	// StatusOptimal covers both proven optima and incumbents accepted under
	// a time/gap budget.
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	// StatusLimit means the budget expired before any feasible assignment
	// was found.
	StatusLimit
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusLimit:
		return "limit"
	}
	return "unknown"
}

// Sense of a linear constraint row.
type Sense int

const (
	SenseLE Sense = iota
	SenseGE
	SenseEQ
)

// Variable declares one decision variable. All variables are non-negative;
// High may be math.Inf(1) for no upper bound. Integer variables are branched
// on, continuous ones are not.
type Variable struct {
	Name    string
	High    float64
	Integer bool
}

// Constraint is a dense linear row over the problem's variables. Coefs
// shorter than the variable count reads as zero-padded.
type Constraint struct {
	Coefs []float64
	Sense Sense
	RHS   float64
}

// Problem is a linear objective plus linear constraints over declared
// bounded variables, always maximized. TimeLimit of zero means run to proven
// optimality; GapRel is the acceptable relative optimality gap.
type Problem struct {
	Vars      []Variable
	Cons      []Constraint
	Objective []float64

	TimeLimit time.Duration
	GapRel    float64
}

// coef returns the padded objective/row coefficient helpers.
func (c *Constraint) coef(j int) float64 {
	if j < len(c.Coefs) {
		return c.Coefs[j]
	}
	return 0
}

func (p *Problem) objCoef(j int) float64 {
	if j < len(p.Objective) {
		return p.Objective[j]
	}
	return 0
}

// Solution is an assignment of variable values plus the realized objective.
// Values is nil unless Status is StatusOptimal.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
}

// Solver is the opaque solving capability the optimization core is built
// against. Any conforming linear/integer backend satisfies it; the error
// return is reserved for backend failures (crash, transport), never for
// infeasibility.
type Solver interface {
	Solve(p *Problem) (*Solution, error)
}

// Inf is the unbounded variable limit.
func Inf() float64 { return math.Inf(1) }
