package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// RuleKind tags how a rule derives its per-item value. Exactly one kind is
// set per rule; anything else is rejected at load time.
type RuleKind int

const (
	KindConst RuleKind = iota
	KindColumn
	KindDelta
	KindGroup
)

// SubRule is a column or delta term inside a grouped rule.
type SubRule struct {
	Column string  `yaml:"column,omitempty"`
	ColIn  string  `yaml:"col_in,omitempty"`
	ColOut string  `yaml:"col_out,omitempty"`
	Sign   float64 `yaml:"sign,omitempty"`
}

// Rule is the declarative configuration of one tracked property: how its per-item
// value is derived, whether it participates in the objective, and its bounds.
// A High of zero (or absent) means "no upper bound".
type Rule struct {
	Use      bool     `yaml:"use"`
	Priority float64  `yaml:"priority"`
	Low      *float64 `yaml:"low,omitempty"`
	High     *float64 `yaml:"high,omitempty"`

	Expr   *float64  `yaml:"expr,omitempty"`
	Column string    `yaml:"column,omitempty"`
	ColIn  string    `yaml:"col_in,omitempty"`
	ColOut string    `yaml:"col_out,omitempty"`
	Sign   float64   `yaml:"sign,omitempty"`
	Group  []SubRule `yaml:"group,omitempty"`

	Label string `yaml:"label,omitempty"`

	kind RuleKind
}

// Kind returns the derivation kind resolved at load time.
func (r *Rule) Kind() RuleKind { return r.kind }

// Upper returns the effective upper bound. ok is false when High is absent
// or zero.
func (r *Rule) Upper() (float64, bool) {
	if r.High == nil || *r.High == 0 {
		return 0, false
	}
	return *r.High, true
}

// Lower returns the effective lower bound.
func (r *Rule) Lower() (float64, bool) {
	if r.Low == nil {
		return 0, false
	}
	return *r.Low, true
}

// Active reports whether the rule contributes to the objective.
func (r *Rule) Active() bool { return r.Use && r.Priority > 0 }

func (r *Rule) resolveKind(name string) error {
	tags := 0
	if r.Expr != nil {
		r.kind = KindConst
		tags++
	}
	if r.Column != "" {
		r.kind = KindColumn
		tags++
	}
	if r.ColIn != "" || r.ColOut != "" {
		if r.ColIn == "" || r.ColOut == "" {
			return fmt.Errorf("rule %q: col_in and col_out must be set together", name)
		}
		r.kind = KindDelta
		tags++
	}
	if len(r.Group) > 0 {
		r.kind = KindGroup
		tags++
	}
	if tags == 0 {
		return fmt.Errorf("rule %q: no derivation set (expr, column, col_in/col_out or group)", name)
	}
	if tags > 1 {
		return fmt.Errorf("rule %q: multiple derivations set, exactly one allowed", name)
	}
	if r.kind == KindGroup {
		for i := range r.Group {
			g := &r.Group[i]
			hasCol := g.Column != ""
			hasDelta := g.ColIn != "" || g.ColOut != ""
			if hasCol == hasDelta {
				return fmt.Errorf("rule %q group[%d]: exactly one of column or col_in/col_out required", name, i)
			}
			if hasDelta && (g.ColIn == "" || g.ColOut == "") {
				return fmt.Errorf("rule %q group[%d]: col_in and col_out must be set together", name, i)
			}
		}
	}
	return nil
}

// slotsRule is the reserved rule whose bounds are pinned to the requested
// slot count before every solve.
const slotsRule = "slots"

// RuleSet is the full per-property configuration, keyed by property name.
// Iteration always goes through Names() so downstream output is stable.
type RuleSet struct {
	Rules map[string]*Rule

	names []string
}

// LoadRules reads a rule file and pins the slots rule to numSlots.
func LoadRules(path string, numSlots int) (*RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rs, err := ParseRules(raw)
	if err != nil {
		return nil, err
	}
	rs.SetSlots(numSlots)
	return rs, nil
}

// ParseRules decodes a YAML rule document and resolves derivation kinds.
func ParseRules(raw []byte) (*RuleSet, error) {
	rules := map[string]*Rule{}
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	rs := &RuleSet{Rules: rules}
	for _, name := range rs.Names() {
		if err := rules[name].resolveKind(name); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// Names returns the property names in sorted order.
func (rs *RuleSet) Names() []string {
	if len(rs.names) != len(rs.Rules) {
		rs.names = rs.names[:0]
		for name := range rs.Rules {
			rs.names = append(rs.names, name)
		}
		sort.Strings(rs.names)
	}
	return rs.names
}

// SetSlots pins the reserved slots rule to n. The rule is created if the
// file does not carry one.
func (rs *RuleSet) SetSlots(n int) {
	r, ok := rs.Rules[slotsRule]
	if !ok {
		one := 1.0
		r = &Rule{Use: true, Expr: &one, kind: KindConst}
		rs.Rules[slotsRule] = r
		rs.names = nil
	}
	r.Use = true
	v := float64(n)
	r.Low = &v
	high := v
	r.High = &high
}

// Validate collects every configuration issue instead of stopping at the
// first, so a caller can fix everything in one pass.
func (rs *RuleSet) Validate() []string {
	var issues []string

	anyUsed := false
	for _, name := range rs.Names() {
		r := rs.Rules[name]
		if name != slotsRule && r.Use {
			anyUsed = true
		}
		low, okLow := r.Lower()
		high, okHigh := r.Upper()
		if okLow && okHigh && low > high {
			issues = append(issues, fmt.Sprintf("rule %q: lower bound %g exceeds upper bound %g", name, low, high))
		}
	}
	if !anyUsed {
		issues = append(issues, "no property is in use, enable at least one rule")
	}
	return issues
}

// Save writes the rule set back to YAML. Only called on explicit user save.
func (rs *RuleSet) Save(path string) error {
	out, err := yaml.Marshal(rs.Rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}
