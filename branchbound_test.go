package main

import (
	"math"
	"testing"
)

func TestMILPSolveInteger(t *testing.T) {
	// max 5x + 4y, 6x + 4y <= 24, x + 2y <= 6, integer -> x=4, y=0, obj 20
	// (the LP relaxation optimum x=3, y=1.5 is fractional).
	p := &Problem{
		Vars: []Variable{
			{Name: "x", High: 10, Integer: true},
			{Name: "y", High: 10, Integer: true},
		},
		Cons: []Constraint{
			{Coefs: []float64{6, 4}, Sense: SenseLE, RHS: 24},
			{Coefs: []float64{1, 2}, Sense: SenseLE, RHS: 6},
		},
		Objective: []float64{5, 4},
	}
	sol, err := (&MILPSolver{}).Solve(p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	if !almostEqual(sol.Objective, 20) {
		t.Errorf("objective = %g, want 20", sol.Objective)
	}
	if sol.Values[0] != 4 || sol.Values[1] != 0 {
		t.Errorf("values = %v, want [4 0]", sol.Values)
	}
}

func TestMILPSolveEquality(t *testing.T) {
	// pick exactly 3 copies across two items capped at 2 each, maximize value.
	p := &Problem{
		Vars: []Variable{
			{Name: "x0", High: 2, Integer: true},
			{Name: "x1", High: 2, Integer: true},
		},
		Cons: []Constraint{
			{Coefs: []float64{1, 1}, Sense: SenseEQ, RHS: 3},
		},
		Objective: []float64{1, 3},
	}
	sol, err := (&MILPSolver{}).Solve(p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	// best: x1=2, x0=1 -> 7
	if !almostEqual(sol.Objective, 7) {
		t.Errorf("objective = %g, want 7", sol.Objective)
	}
	if sol.Values[0]+sol.Values[1] != 3 {
		t.Errorf("copies = %v, want sum 3", sol.Values)
	}
}

func TestMILPSolveInfeasible(t *testing.T) {
	// 5 copies demanded but only 4 available.
	p := &Problem{
		Vars: []Variable{
			{Name: "x0", High: 2, Integer: true},
			{Name: "x1", High: 2, Integer: true},
		},
		Cons: []Constraint{
			{Coefs: []float64{1, 1}, Sense: SenseEQ, RHS: 5},
		},
		Objective: []float64{1, 1},
	}
	sol, err := (&MILPSolver{}).Solve(p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusInfeasible {
		t.Fatalf("status = %v, want infeasible", sol.Status)
	}
	if sol.Values != nil {
		t.Errorf("values = %v, want nil", sol.Values)
	}
}

func TestMILPSolveContinuousMix(t *testing.T) {
	// integer x plus continuous slack d: max 2x - d, x <= 2.5 via constraint,
	// d >= 3 - x. Best integer x=2, d=1 -> obj 3.
	p := &Problem{
		Vars: []Variable{
			{Name: "x", High: 5, Integer: true},
			{Name: "d", High: Inf()},
		},
		Cons: []Constraint{
			{Coefs: []float64{1, 0}, Sense: SenseLE, RHS: 2.5},
			{Coefs: []float64{-1, -1}, Sense: SenseLE, RHS: -3},
		},
		Objective: []float64{2, -1},
	}
	sol, err := (&MILPSolver{}).Solve(p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	if !almostEqual(sol.Objective, 3) {
		t.Errorf("objective = %g, want 3", sol.Objective)
	}
	if sol.Values[0] != 2 {
		t.Errorf("x = %g, want 2", sol.Values[0])
	}
	if math.Abs(sol.Values[1]-1) > 1e-6 {
		t.Errorf("d = %g, want 1", sol.Values[1])
	}
}

func TestMILPSolveUnbounded(t *testing.T) {
	p := &Problem{
		Vars:      []Variable{{Name: "x", High: Inf(), Integer: true}},
		Objective: []float64{1},
	}
	sol, err := (&MILPSolver{}).Solve(p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusUnbounded {
		t.Fatalf("status = %v, want unbounded", sol.Status)
	}
}
