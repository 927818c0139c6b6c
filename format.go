package main

import (
	"fmt"
	"sort"
	"strings"
)

// FormatBuild renders one build as an item/count table sorted by count
// descending, name ascending.
func FormatBuild(res *Result) string {
	if res.Empty() {
		return "no feasible build, try loosening the constraints\n"
	}

	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(res.Build))
	total := 0
	for name, count := range res.Build {
		entries = append(entries, entry{name, count})
		total += count
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%-28s %6s\n", "Artifact", "Count")
	fmt.Fprintf(&b, "%-28s %6s\n", strings.Repeat("-", 28), "------")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-28s %6d\n", e.name, e.count)
	}
	fmt.Fprintf(&b, "%-28s %6d\n", "TOTAL", total)
	return b.String()
}

// FormatStats renders the realized property values next to their configured
// bounds. The reserved slots rule is skipped.
func FormatStats(res *Result, rules *RuleSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %12s %10s %10s\n", "Property", "Value", "Min", "Max")
	for _, name := range rules.Names() {
		if name == slotsRule {
			continue
		}
		r := rules.Rules[name]
		if !r.Use {
			continue
		}
		lowStr, highStr := "-", "-"
		if low, ok := r.Lower(); ok {
			lowStr = fmt.Sprintf("%g", low)
		}
		if high, ok := r.Upper(); ok {
			highStr = fmt.Sprintf("%g", high)
		}
		label := name
		if r.Label != "" {
			label = r.Label
		}
		fmt.Fprintf(&b, "%-20s %12.2f %10s %10s\n", label, res.Stats[name], lowStr, highStr)
	}
	return b.String()
}

// FormatRun renders the full run: best build, its stats and score, then the
// ranked alternatives.
func FormatRun(best *Result, alts []Result, rules *RuleSet) string {
	var b strings.Builder
	b.WriteString("=== Balanced build ===\n")
	b.WriteString(FormatBuild(best))
	if !best.Empty() {
		b.WriteString(FormatStats(best, rules))
		fmt.Fprintf(&b, "Score: %.4f\n", best.Score)
	}

	for i := range alts {
		alt := &alts[i]
		fmt.Fprintf(&b, "\n=== Alternative %d (score %.4f) ===\n", i+1, alt.Score)
		b.WriteString(FormatBuild(alt))
	}
	return b.String()
}
