package main

import "time"

// Settings holds everything one optimization run depends on. Mutated by CLI
// flags or the lambda request body, then treated as read-only by the solve
// path.
type Settings struct {
	DataFile  string
	RulesFile string

	Tier     int
	NumSlots int
	MaxCopy  int
	Exclude  []string

	// AltJitter is the relative weight perturbation for alternative solves,
	// in [0, 1].
	AltJitter float64
	// AltCount is how many alternatives are returned; AltRuns is how many
	// jittered solves are attempted to produce them.
	AltCount int
	AltRuns  int

	// AltTimeLimit and AltGapRel bound each jittered solve. The balanced and
	// extrema solves run to proven optimality unless SolveTimeLimit is set.
	AltTimeLimit   time.Duration
	AltGapRel      float64
	SolveTimeLimit time.Duration

	CacheDir string
}

// DefaultSettings returns the settings a session starts from.
func DefaultSettings() Settings {
	return Settings{
		DataFile:     "data/artifacts.json",
		RulesFile:    "props/props_tier3.yaml",
		Tier:         3,
		NumSlots:     17,
		MaxCopy:      3,
		AltJitter:    0.30,
		AltCount:     10,
		AltRuns:      10,
		AltTimeLimit: time.Second,
		AltGapRel:    0.05,
	}
}

// Recompute refreshes fields derived from the primary ones. Call after
// changing AltCount.
func (s *Settings) Recompute() {
	s.AltRuns = s.AltCount
}

// balancedSlackRatio is the fraction of a rule's priority charged per unit of
// shortfall below its target in the balanced objective. Tunable, not a law.
const balancedSlackRatio = 0.5

// Verbose controls whether detailed solve progress is logged.
var Verbose bool
