package main

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

func loadTierFixture(t *testing.T) (*Settings, *RuleSet, *Catalog) {
	t.Helper()
	set := DefaultSettings()
	set.AltCount = 4 // reduced for test speed
	set.Recompute()

	rules, err := LoadRules(set.RulesFile, set.NumSlots)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	cat, err := LoadCatalog(set.DataFile, set.Tier, set.Exclude)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return &set, rules, cat
}

// verifyBuild runs the 6-point checklist against one solved build.
func verifyBuild(t *testing.T, label string, res *Result, set *Settings, rules *RuleSet, cat *Catalog) {
	t.Helper()

	// 1. feasible with a positive score
	if res.Empty() {
		t.Errorf("%s: empty build", label)
		return
	}
	if res.Score <= 0 {
		t.Errorf("%s: score %g, want > 0", label, res.Score)
	}

	// 2. total copies fill every slot
	total := 0
	for _, count := range res.Build {
		total += count
	}
	if total != set.NumSlots {
		t.Errorf("%s: total copies %d, want %d", label, total, set.NumSlots)
	}

	// 3. per-item counts within [1, MaxCopy], names drawn from the catalog
	known := map[string]bool{}
	for i := range cat.Rows {
		known[cat.Rows[i].Name] = true
	}
	for name, count := range res.Build {
		if count < 1 || count > set.MaxCopy {
			t.Errorf("%s: %s count %d outside [1, %d]", label, name, count, set.MaxCopy)
		}
		if !known[name] {
			t.Errorf("%s: %s is not in the catalog", label, name)
		}
	}

	// 4. every bounded stat within its configured range
	for _, name := range rules.Names() {
		if name == slotsRule {
			continue
		}
		r := rules.Rules[name]
		if !r.Use {
			continue
		}
		v := res.Stats[name]
		if low, ok := r.Lower(); ok && v < low-1e-6 {
			t.Errorf("%s: %s = %g below lower bound %g", label, name, v, low)
		}
		if high, ok := r.Upper(); ok && v > high+1e-6 {
			t.Errorf("%s: %s = %g above upper bound %g", label, name, v, high)
		}
	}

	// 5. stats recompute from the raw coefficients
	coef, issues := BuildCoefficients(rules, cat)
	if issues != nil {
		t.Fatalf("%s: coefficient issues: %v", label, issues)
	}
	idx := map[string]int{}
	for i := range cat.Rows {
		idx[cat.Rows[i].Name] = i
	}
	for _, name := range rules.Names() {
		want := 0.0
		for item, count := range res.Build {
			want += coef[name][idx[item]] * float64(count)
		}
		if !almostEqual(res.Stats[name], want) {
			t.Errorf("%s: %s stat %g, recomputed %g", label, name, res.Stats[name], want)
		}
	}

	// 6. slot stat equals the slot count
	if !almostEqual(res.Stats[slotsRule], float64(set.NumSlots)) {
		t.Errorf("%s: slots stat %g, want %d", label, res.Stats[slotsRule], set.NumSlots)
	}
}

func TestTierThreeDefaults(t *testing.T) {
	set, rules, cat := loadTierFixture(t)
	cache := NewExtremaCache()

	mgr, err := NewBuildManager(set, rules, cat, &MILPSolver{}, cache,
		rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewBuildManager: %v", err)
	}
	best, alts, err := mgr.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	t.Logf("best score=%g items=%d alternatives=%d", best.Score, len(best.Build), len(alts))

	verifyBuild(t, "best", &best, set, rules, cat)
	for i := range alts {
		if alts[i].Empty() {
			continue
		}
		verifyBuild(t, fmt.Sprintf("alt %d", i), &alts[i], set, rules, cat)
	}

	// Diversity: no two builds share an item composition.
	seen := map[string]string{}
	record := func(label string, indices []int) {
		sorted := append([]int(nil), indices...)
		sort.Ints(sorted)
		key := fmt.Sprint(sorted)
		if prev, ok := seen[key]; ok {
			t.Errorf("%s repeats the composition of %s", label, prev)
		}
		seen[key] = label
	}
	record("best", best.Indices)
	for i := range alts {
		if !alts[i].Empty() {
			record(fmt.Sprintf("alt %d", i), alts[i].Indices)
		}
	}

	// One run, one extrema entry: the balanced and jittered solves share the
	// same fingerprint.
	if cache.Len() != 1 {
		t.Errorf("extrema cache holds %d entries, want 1", cache.Len())
	}
}

func TestTierThreeExclusions(t *testing.T) {
	set, _, _ := loadTierFixture(t)
	set.Exclude = []string{"Sun Sigil", "Wolf Fang"}
	set.AltCount = 2
	set.Recompute()

	rules, err := LoadRules(set.RulesFile, set.NumSlots)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	cat, err := LoadCatalog(set.DataFile, set.Tier, set.Exclude)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	mgr, err := NewBuildManager(set, rules, cat, &MILPSolver{}, NewExtremaCache(),
		rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewBuildManager: %v", err)
	}
	best, alts, err := mgr.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	check := func(label string, res *Result) {
		for _, name := range set.Exclude {
			if _, ok := res.Build[name]; ok {
				t.Errorf("%s: excluded item %s present", label, name)
			}
		}
	}
	check("best", &best)
	for i := range alts {
		check(fmt.Sprintf("alt %d", i), &alts[i])
	}
	verifyBuild(t, "best", &best, set, rules, cat)
}
