package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteSolver sends problems to an external solver service over HTTP. It is
// a drop-in Solver: the core cannot tell it apart from the in-process
// backend.
type RemoteSolver struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteSolver creates a client for the solver service at baseURL.
func NewRemoteSolver(baseURL string) *RemoteSolver {
	return &RemoteSolver{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // long timeout for unbudgeted solves
		},
	}
}

type remoteVariable struct {
	Name    string   `json:"name"`
	High    *float64 `json:"high,omitempty"`
	Integer bool     `json:"integer"`
}

type remoteConstraint struct {
	Coefs []float64 `json:"coefs"`
	Sense string    `json:"sense"`
	RHS   float64   `json:"rhs"`
}

type remoteSolveRequest struct {
	Vars        []remoteVariable   `json:"vars"`
	Constraints []remoteConstraint `json:"constraints"`
	Objective   []float64          `json:"objective"`
	TimeLimitMs int64              `json:"timeLimitMs,omitempty"`
	GapRel      float64            `json:"gapRel,omitempty"`
}

type remoteSolveResponse struct {
	Status    string    `json:"status"`
	Values    []float64 `json:"values"`
	Objective float64   `json:"objective"`
}

func senseString(s Sense) string {
	switch s {
	case SenseGE:
		return ">="
	case SenseEQ:
		return "=="
	}
	return "<="
}

// Solve posts the problem and maps the service response onto the Solver
// contract. Transport and server failures are errors; infeasibility is a
// status.
func (c *RemoteSolver) Solve(p *Problem) (*Solution, error) {
	req := remoteSolveRequest{
		Objective:   p.Objective,
		TimeLimitMs: p.TimeLimit.Milliseconds(),
		GapRel:      p.GapRel,
	}
	for i := range p.Vars {
		v := remoteVariable{Name: p.Vars[i].Name, Integer: p.Vars[i].Integer}
		if high := p.Vars[i].High; high != Inf() {
			v.High = &high
		}
		req.Vars = append(req.Vars, v)
	}
	for i := range p.Cons {
		req.Constraints = append(req.Constraints, remoteConstraint{
			Coefs: p.Cons[i].Coefs,
			Sense: senseString(p.Cons[i].Sense),
			RHS:   p.Cons[i].RHS,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+"/api/solve", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Detail != "" {
			return nil, fmt.Errorf("solver error (%d): %s", resp.StatusCode, errResp.Detail)
		}
		return nil, fmt.Errorf("solver returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result remoteSolveResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	sol := &Solution{Values: result.Values, Objective: result.Objective}
	switch result.Status {
	case "optimal":
		sol.Status = StatusOptimal
	case "unbounded":
		sol.Status = StatusUnbounded
	case "limit":
		sol.Status = StatusLimit
	default:
		sol.Status = StatusInfeasible
		sol.Values = nil
	}
	return sol, nil
}

// Health checks whether the solver service is reachable.
func (c *RemoteSolver) Health() error {
	resp, err := c.httpClient.Get(c.baseURL + "/api/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("solver service unhealthy: %d", resp.StatusCode)
	}
	return nil
}
