package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/gjson"
)

// CatalogRow is one artifact at one tier. Attrs is sparse: attributes the
// source file omits read as zero.
type CatalogRow struct {
	Name  string
	Tier  int
	Attrs map[string]float64
}

// Attr returns the raw attribute value, zero when absent.
func (r *CatalogRow) Attr(name string) float64 {
	return r.Attrs[name]
}

// Catalog is the artifact table already filtered to the active tier and
// exclusion list. Immutable once loaded for a run.
type Catalog struct {
	Rows []CatalogRow

	// columns is the union of attribute names across rows, used to reject
	// rules referencing columns that exist nowhere.
	columns map[string]bool
}

// HasColumn reports whether any row carries the attribute.
func (c *Catalog) HasColumn(name string) bool {
	return c.columns[name]
}

// LoadCatalog reads the nested artifact JSON ({name: {tier: {attr: value}}})
// and keeps rows matching tier that are not excluded.
func LoadCatalog(path string, tier int, exclude []string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("catalog %s: invalid JSON", path)
	}
	return parseCatalog(string(raw), tier, exclude), nil
}

func parseCatalog(data string, tier int, exclude []string) *Catalog {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	cat := &Catalog{columns: map[string]bool{}}
	gjson.Parse(data).ForEach(func(key, tiers gjson.Result) bool {
		name := key.String()
		if excluded[name] {
			return true
		}
		tiers.ForEach(func(tierKey, attrs gjson.Result) bool {
			t, err := strconv.Atoi(tierKey.String())
			if err != nil || t != tier {
				return true
			}
			row := CatalogRow{Name: name, Tier: t, Attrs: map[string]float64{}}
			attrs.ForEach(func(attrKey, v gjson.Result) bool {
				col := attrKey.String()
				row.Attrs[col] = v.Float()
				cat.columns[col] = true
				return true
			})
			cat.Rows = append(cat.Rows, row)
			return true
		})
		return true
	})
	return cat
}
