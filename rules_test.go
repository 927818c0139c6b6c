package main

import (
	"strings"
	"testing"
)

const testRulesYAML = `
power:
  use: true
  priority: 2
  column: Power
vitality:
  use: true
  priority: 1
  low: 50
  high: 200
  column: Vitality
energy:
  use: true
  priority: 1
  col_out: EnergyGain
  col_in: EnergyDrain
bulk:
  use: true
  priority: 1
  group:
    - column: Attack
    - column: Fragility
      sign: -1
slots:
  use: true
  priority: 0
  expr: 1
`

func TestParseRulesKinds(t *testing.T) {
	rs, err := ParseRules([]byte(testRulesYAML))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}

	wantKinds := map[string]RuleKind{
		"power":    KindColumn,
		"vitality": KindColumn,
		"energy":   KindDelta,
		"bulk":     KindGroup,
		"slots":    KindConst,
	}
	for name, want := range wantKinds {
		r, ok := rs.Rules[name]
		if !ok {
			t.Fatalf("rule %q missing", name)
		}
		if r.Kind() != want {
			t.Errorf("rule %q kind = %d, want %d", name, r.Kind(), want)
		}
	}
}

func TestParseRulesRejectsAmbiguous(t *testing.T) {
	cases := map[string]string{
		"two kinds": "p:\n  use: true\n  column: A\n  expr: 1\n",
		"no kind":   "p:\n  use: true\n  priority: 1\n",
		"half delta": "p:\n  use: true\n  col_out: A\n",
		"bad group": "p:\n  use: true\n  group:\n    - column: A\n      col_in: B\n      col_out: C\n",
	}
	for name, doc := range cases {
		if _, err := ParseRules([]byte(doc)); err == nil {
			t.Errorf("%s: ParseRules accepted invalid rule", name)
		}
	}
}

func TestSetSlotsPinsBounds(t *testing.T) {
	rs, err := ParseRules([]byte(testRulesYAML))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	rs.SetSlots(17)

	r := rs.Rules[slotsRule]
	if low, _ := r.Lower(); low != 17 {
		t.Errorf("slots low = %g, want 17", low)
	}
	if high, _ := r.Upper(); high != 17 {
		t.Errorf("slots high = %g, want 17", high)
	}

	// Re-pinning moves both bounds.
	rs.SetSlots(5)
	if low, _ := r.Lower(); low != 5 {
		t.Errorf("slots low after repin = %g, want 5", low)
	}
}

func TestSetSlotsCreatesMissingRule(t *testing.T) {
	rs, err := ParseRules([]byte("power:\n  use: true\n  column: Power\n"))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	rs.SetSlots(9)
	r, ok := rs.Rules[slotsRule]
	if !ok {
		t.Fatal("slots rule not created")
	}
	if r.Kind() != KindConst || *r.Expr != 1 {
		t.Errorf("slots rule not a unit constant")
	}
}

func TestUpperZeroMeansUnbounded(t *testing.T) {
	zero := 0.0
	r := &Rule{High: &zero}
	if _, ok := r.Upper(); ok {
		t.Error("High=0 should read as no upper bound")
	}
	r.High = nil
	if _, ok := r.Upper(); ok {
		t.Error("absent High should read as no upper bound")
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	doc := `
a:
  use: true
  priority: 1
  low: 10
  high: 5
  column: A
b:
  use: true
  priority: 1
  low: 100
  high: 50
  column: B
`
	rs, err := ParseRules([]byte(doc))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	issues := rs.Validate()
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2: %v", len(issues), issues)
	}
	for _, issue := range issues {
		if !strings.Contains(issue, "exceeds upper bound") {
			t.Errorf("unexpected issue: %s", issue)
		}
	}
}

func TestValidateRequiresUsedRule(t *testing.T) {
	rs, err := ParseRules([]byte("a:\n  use: false\n  column: A\n"))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	issues := rs.Validate()
	if len(issues) != 1 || !strings.Contains(issues[0], "no property") {
		t.Errorf("issues = %v, want single no-property issue", issues)
	}
}
