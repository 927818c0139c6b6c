package main

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestSolveLPBasic(t *testing.T) {
	// max 3x + 2y, x + y <= 4, x <= 2 -> x=2, y=2, obj 10
	status, x, obj := solveLP(2, []float64{3, 2}, []lpRow{
		{coefs: []float64{1, 1}, sense: SenseLE, rhs: 4},
		{coefs: []float64{1, 0}, sense: SenseLE, rhs: 2},
	})
	if status != lpOptimal {
		t.Fatalf("status = %v, want optimal", status)
	}
	if !almostEqual(obj, 10) {
		t.Errorf("objective = %g, want 10", obj)
	}
	if !almostEqual(x[0], 2) || !almostEqual(x[1], 2) {
		t.Errorf("solution = %v, want [2 2]", x)
	}
}

func TestSolveLPEquality(t *testing.T) {
	// max x + 2y, x + y == 3, y <= 2 -> x=1, y=2, obj 5
	status, x, obj := solveLP(2, []float64{1, 2}, []lpRow{
		{coefs: []float64{1, 1}, sense: SenseEQ, rhs: 3},
		{coefs: []float64{0, 1}, sense: SenseLE, rhs: 2},
	})
	if status != lpOptimal {
		t.Fatalf("status = %v, want optimal", status)
	}
	if !almostEqual(obj, 5) {
		t.Errorf("objective = %g, want 5", obj)
	}
	if !almostEqual(x[0]+x[1], 3) {
		t.Errorf("equality violated: %v", x)
	}
}

func TestSolveLPGreaterEqual(t *testing.T) {
	// min-style: max -x with x >= 2 -> x=2, obj -2
	status, x, obj := solveLP(1, []float64{-1}, []lpRow{
		{coefs: []float64{1}, sense: SenseGE, rhs: 2},
	})
	if status != lpOptimal {
		t.Fatalf("status = %v, want optimal", status)
	}
	if !almostEqual(obj, -2) || !almostEqual(x[0], 2) {
		t.Errorf("got x=%v obj=%g, want x=2 obj=-2", x, obj)
	}
}

func TestSolveLPInfeasible(t *testing.T) {
	status, _, _ := solveLP(1, []float64{1}, []lpRow{
		{coefs: []float64{1}, sense: SenseLE, rhs: 1},
		{coefs: []float64{1}, sense: SenseGE, rhs: 2},
	})
	if status != lpInfeasible {
		t.Fatalf("status = %v, want infeasible", status)
	}
}

func TestSolveLPUnbounded(t *testing.T) {
	status, _, _ := solveLP(1, []float64{1}, []lpRow{
		{coefs: []float64{1}, sense: SenseGE, rhs: 0},
	})
	if status != lpUnbounded {
		t.Fatalf("status = %v, want unbounded", status)
	}
}

func TestSolveLPNegativeRHS(t *testing.T) {
	// -x <= -2 is x >= 2; max -x -> x=2
	status, x, _ := solveLP(1, []float64{-1}, []lpRow{
		{coefs: []float64{-1}, sense: SenseLE, rhs: -2},
	})
	if status != lpOptimal {
		t.Fatalf("status = %v, want optimal", status)
	}
	if !almostEqual(x[0], 2) {
		t.Errorf("x = %v, want 2", x)
	}
}
