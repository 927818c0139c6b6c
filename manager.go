package main

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// ValidationError carries every configuration issue found before solving, so
// the user can fix them all in one pass.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %d issue(s), first: %s", len(e.Issues), e.Issues[0])
}

// BuildManager orchestrates one optimization run: catalog → coefficients →
// balanced solve → cut-accumulating diversity loop → ranked alternatives.
type BuildManager struct {
	set   *Settings
	rules *RuleSet
	cat   *Catalog
	prog  *ProgramBuilder
}

// NewBuildManager validates the configuration and prepares the program
// builder. A ValidationError is returned with the full issue list when the
// configuration cannot be solved as given.
func NewBuildManager(set *Settings, rules *RuleSet, cat *Catalog,
	solver Solver, cache *ExtremaCache, rng *rand.Rand) (*BuildManager, error) {

	issues := validateSettings(set)
	issues = append(issues, rules.Validate()...)
	if max := len(cat.Rows) * set.MaxCopy; max < set.NumSlots {
		issues = append(issues, fmt.Sprintf(
			"slot count %d exceeds the %d copies available after filtering", set.NumSlots, max))
	}

	coef, coefIssues := BuildCoefficients(rules, cat)
	issues = append(issues, coefIssues...)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &BuildManager{
		set:   set,
		rules: rules,
		cat:   cat,
		prog:  NewProgramBuilder(set, rules, cat, coef, solver, cache, rng),
	}, nil
}

func validateSettings(set *Settings) []string {
	var issues []string
	if set.NumSlots <= 0 {
		issues = append(issues, fmt.Sprintf("slot count must be positive, got %d", set.NumSlots))
	}
	if set.MaxCopy < 1 {
		issues = append(issues, fmt.Sprintf("max copies per item must be at least 1, got %d", set.MaxCopy))
	}
	if set.AltJitter < 0 || set.AltJitter > 1 {
		issues = append(issues, fmt.Sprintf("jitter must be within [0, 1], got %g", set.AltJitter))
	}
	if set.AltCount < 0 {
		issues = append(issues, fmt.Sprintf("alternative count must not be negative, got %d", set.AltCount))
	}
	return issues
}

// Run produces the balanced best build and the top alternatives, pairwise
// distinct from the best and from each other by item composition. An
// infeasible configuration comes back as an empty best, not an error.
func (m *BuildManager) Run() (Result, []Result, error) {
	start := time.Now()

	best, err := m.prog.SolveBalanced(nil)
	if err != nil {
		return emptyResult(), nil, err
	}
	logger.Infow("balanced solve done",
		"score", best.Score, "items", len(best.Build), "elapsed", time.Since(start))

	cuts := [][]int{best.Indices}
	results := make([]Result, 0, m.set.AltRuns)
	for run := 0; run < m.set.AltRuns; run++ {
		alt, err := m.prog.SolveOnce(m.set.AltJitter, cuts)
		if err != nil {
			return emptyResult(), nil, err
		}
		// Degenerate (infeasible) attempts are kept: they rank last and are
		// trimmed by the final truncation.
		results = append(results, alt)
		cuts = append(cuts, alt.Indices)
		if Verbose {
			logger.Debugw("alternative solve", "run", run+1, "score", alt.Score, "items", len(alt.Build))
		}
	}

	// Rank only after all runs: a late high-scoring jittered solve can still
	// outrank earlier ones.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > m.set.AltCount {
		results = results[:m.set.AltCount]
	}

	logger.Infow("run complete", "alternatives", len(results), "elapsed", time.Since(start))
	return best, results, nil
}

// ComputeBuilds is the one-call entry used by the CLI and lambda handlers.
func ComputeBuilds(set *Settings, rules *RuleSet, solver Solver, cache *ExtremaCache) (Result, []Result, error) {
	cat, err := LoadCatalog(set.DataFile, set.Tier, set.Exclude)
	if err != nil {
		return emptyResult(), nil, err
	}
	mgr, err := NewBuildManager(set, rules, cat, solver, cache, nil)
	if err != nil {
		return emptyResult(), nil, err
	}
	return mgr.Run()
}
