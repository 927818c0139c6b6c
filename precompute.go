package main

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// PrecomputeJob warms the extrema cache offline: it enumerates a grid of
// configurations, computes the achievable maxima for each point in total
// isolation, and writes one achievable_tier{N}.json per tier in the format
// NewExtremaCacheFromDir reads. A failed grid point is logged and skipped;
// it never aborts the rest of the grid.
type PrecomputeJob struct {
	DataFile string
	RulesDir string
	OutDir   string

	Tiers      []int
	SlotMin    int
	SlotMax    int
	MaxCopyMin int
	MaxCopyMax int
	Exclusions [][]string

	Workers int
}

// DefaultPrecomputeJob covers the grid interactive sessions draw from.
func DefaultPrecomputeJob(dataFile, rulesDir, outDir string) *PrecomputeJob {
	return &PrecomputeJob{
		DataFile:   dataFile,
		RulesDir:   rulesDir,
		OutDir:     outDir,
		Tiers:      []int{1, 2, 3, 4},
		SlotMin:    1,
		SlotMax:    25,
		MaxCopyMin: 1,
		MaxCopyMax: 5,
		Exclusions: [][]string{{}},
		Workers:    runtime.NumCPU(),
	}
}

type gridPoint struct {
	tier    int
	slots   int
	maxCopy int
	exclude []string
}

// Run computes the whole grid on a bounded worker pool. Each point is a pure
// function of its own (tier, slots, max copy, exclusions, rule file) tuple
// and shares nothing mutable with the others.
func (j *PrecomputeJob) Run(ctx context.Context) error {
	for _, tier := range j.Tiers {
		var points []gridPoint
		for slots := j.SlotMin; slots <= j.SlotMax; slots++ {
			for maxCopy := j.MaxCopyMin; maxCopy <= j.MaxCopyMax; maxCopy++ {
				for _, exclude := range j.Exclusions {
					points = append(points, gridPoint{tier: tier, slots: slots, maxCopy: maxCopy, exclude: exclude})
				}
			}
		}

		entries := map[string]map[string]float64{}
		var mu sync.Mutex

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(j.Workers)
		for _, pt := range points {
			pt := pt
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				key, maxima, err := j.computePoint(pt)
				if err != nil {
					logger.Warnw("grid point failed",
						"tier", pt.tier, "slots", pt.slots, "maxCopy", pt.maxCopy, "error", err)
					return nil
				}
				mu.Lock()
				entries[key] = maxima
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := filepath.Join(j.OutDir, fmt.Sprintf("achievable_tier%d.json", tier))
		if err := WriteExtremaFile(out, entries); err != nil {
			return err
		}
		logger.Infow("tier precomputed", "tier", tier, "points", len(entries), "file", out)
	}
	return nil
}

func (j *PrecomputeJob) computePoint(pt gridPoint) (string, map[string]float64, error) {
	set := DefaultSettings()
	set.DataFile = j.DataFile
	set.RulesFile = filepath.Join(j.RulesDir, fmt.Sprintf("props_tier%d.yaml", pt.tier))
	set.Tier = pt.tier
	set.NumSlots = pt.slots
	set.MaxCopy = pt.maxCopy
	set.Exclude = pt.exclude

	rules, err := LoadRules(set.RulesFile, set.NumSlots)
	if err != nil {
		return "", nil, err
	}
	cat, err := LoadCatalog(set.DataFile, set.Tier, set.Exclude)
	if err != nil {
		return "", nil, err
	}
	coef, issues := BuildCoefficients(rules, cat)
	if len(issues) > 0 {
		return "", nil, &ValidationError{Issues: issues}
	}

	prog := NewProgramBuilder(&set, rules, cat, coef, &MILPSolver{}, NewExtremaCache(),
		rand.New(rand.NewSource(int64(pt.tier)<<16|int64(pt.slots)<<8|int64(pt.maxCopy))))
	maxima, err := prog.computeExtrema()
	if err != nil {
		return "", nil, err
	}
	return Fingerprint(&set, rules), maxima, nil
}
