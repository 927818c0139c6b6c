//go:build !lambda

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

// runOutput is the JSON-serializable result of one optimization run.
type runOutput struct {
	Best         Result   `json:"best"`
	Alternatives []Result `json:"alternatives"`
}

const usage = `Usage: artifact-optimizer [flags]

Finds the best artifact build for the configured tier and slot count, plus
ranked near-optimal alternatives, from the artifact catalog and rule file.

Flags:
`

func main() {
	set := DefaultSettings()

	dataFile := flag.String("data", set.DataFile, "Path to the artifact catalog JSON")
	rulesFile := flag.String("rules", set.RulesFile, "Path to the property rule YAML")
	tier := flag.Int("tier", set.Tier, "Artifact tier")
	slots := flag.Int("slots", set.NumSlots, "Total artifact count to select")
	maxCopy := flag.Int("copies", set.MaxCopy, "Maximum copies per artifact")
	exclude := flag.String("exclude", "", "Comma-separated artifact names to exclude")
	jitter := flag.Float64("jitter", set.AltJitter, "Weight perturbation for alternatives, in [0,1]")
	alts := flag.Int("alts", set.AltCount, "Number of alternatives to return")
	cacheDir := flag.String("cache-dir", "", "Directory with precomputed achievable maxima")
	solverURL := flag.String("solver-url", "", "Base URL of a remote solver service (default: in-process)")
	precompute := flag.Bool("precompute", false, "Precompute achievable maxima for the whole grid and exit")
	rulesDir := flag.String("rules-dir", "props", "Rule file directory (precompute mode)")
	outDir := flag.String("out", "data/achievable_maxima", "Output directory (precompute mode)")
	jsonOut := flag.Bool("json", false, "Output results as JSON")
	verbose := flag.Bool("verbose", false, "Log detailed solve progress")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	Verbose = *verbose
	initLogger(*verbose)

	set.DataFile = *dataFile
	set.RulesFile = *rulesFile
	set.Tier = *tier
	set.NumSlots = *slots
	set.MaxCopy = *maxCopy
	set.AltJitter = *jitter
	set.AltCount = *alts
	set.CacheDir = *cacheDir
	set.Recompute()
	if *exclude != "" {
		for _, name := range strings.Split(*exclude, ",") {
			if name = strings.TrimSpace(name); name != "" {
				set.Exclude = append(set.Exclude, name)
			}
		}
	}

	if *precompute {
		job := DefaultPrecomputeJob(set.DataFile, *rulesDir, *outDir)
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if err := job.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rules, err := LoadRules(set.RulesFile, set.NumSlots)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var solver Solver = &MILPSolver{}
	if *solverURL != "" {
		remote := NewRemoteSolver(*solverURL)
		if err := remote.Health(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		solver = remote
	}

	cache := NewExtremaCache()
	if set.CacheDir != "" {
		cache = NewExtremaCacheFromDir(set.CacheDir)
		fmt.Fprintf(os.Stderr, "Loaded %d precomputed extrema entries\n", cache.Len())
	}

	best, alternatives, err := ComputeBuilds(&set, rules, solver, cache)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, "configuration issues:")
			for _, issue := range verr.Issues {
				fmt.Fprintf(os.Stderr, "  - %s\n", issue)
			}
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(runOutput{Best: best, Alternatives: alternatives})
	} else {
		fmt.Print(FormatRun(&best, alternatives, rules))
	}
}
