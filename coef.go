package main

import "fmt"

// Coefficients maps property name to the per-row contribution of a single
// copy, same length and order as the catalog rows. Derived once per run.
type Coefficients map[string][]float64

func subRuleValue(row *CatalogRow, sub *SubRule) float64 {
	sign := sub.Sign
	if sign == 0 {
		sign = 1
	}
	if sub.Column != "" {
		return sign * row.Attr(sub.Column)
	}
	return sign * (row.Attr(sub.ColOut) - row.Attr(sub.ColIn))
}

func checkColumns(cat *Catalog, name string, sub *SubRule, issues *[]string) {
	cols := []string{sub.Column, sub.ColIn, sub.ColOut}
	for _, col := range cols {
		if col != "" && !cat.HasColumn(col) {
			*issues = append(*issues, fmt.Sprintf("rule %q references column %q absent from the catalog", name, col))
		}
	}
}

// BuildCoefficients evaluates every rule against the catalog. Referencing a
// column the catalog does not carry at all is a configuration error; all
// such errors are collected and reported together before any solve.
func BuildCoefficients(rs *RuleSet, cat *Catalog) (Coefficients, []string) {
	var issues []string
	n := len(cat.Rows)
	coef := make(Coefficients, len(rs.Rules))

	for _, name := range rs.Names() {
		r := rs.Rules[name]
		vals := make([]float64, n)

		switch r.Kind() {
		case KindConst:
			for i := range vals {
				vals[i] = *r.Expr
			}
		case KindColumn, KindDelta:
			sub := SubRule{Column: r.Column, ColIn: r.ColIn, ColOut: r.ColOut, Sign: r.Sign}
			checkColumns(cat, name, &sub, &issues)
			for i := range cat.Rows {
				vals[i] = subRuleValue(&cat.Rows[i], &sub)
			}
		case KindGroup:
			for gi := range r.Group {
				checkColumns(cat, name, &r.Group[gi], &issues)
			}
			for i := range cat.Rows {
				sum := 0.0
				for gi := range r.Group {
					sum += subRuleValue(&cat.Rows[i], &r.Group[gi])
				}
				vals[i] = sum
			}
		}
		coef[name] = vals
	}

	if len(issues) > 0 {
		return nil, issues
	}
	return coef, nil
}
