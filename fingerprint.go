package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// fingerprintRule is the bound slice of one rule that participates in the
// cache key. Priorities and derivations do not: they change the objective,
// not the achievable maxima.
type fingerprintRule struct {
	Name string   `json:"name"`
	Low  *float64 `json:"low"`
	High *float64 `json:"high"`
}

type fingerprintPayload struct {
	Tier      int               `json:"tier"`
	Slots     int               `json:"slots"`
	MaxCopy   int               `json:"max_copy"`
	Exclude   []string          `json:"blacklist"`
	RulesFile string            `json:"props_file"`
	Rules     []fingerprintRule `json:"props"`
}

// Fingerprint deterministically hashes the inputs the achievable maxima
// depend on. Exclusions are sorted first, so list order never changes the
// key; any bound change does. The digest is a lookup key only, not a
// security boundary.
func Fingerprint(set *Settings, rs *RuleSet) string {
	exclude := append([]string(nil), set.Exclude...)
	sort.Strings(exclude)
	if exclude == nil {
		exclude = []string{}
	}

	payload := fingerprintPayload{
		Tier:      set.Tier,
		Slots:     set.NumSlots,
		MaxCopy:   set.MaxCopy,
		Exclude:   exclude,
		RulesFile: set.RulesFile,
		Rules:     make([]fingerprintRule, 0, len(rs.Rules)),
	}
	for _, name := range rs.Names() {
		r := rs.Rules[name]
		payload.Rules = append(payload.Rules, fingerprintRule{Name: name, Low: r.Low, High: r.High})
	}

	serialized, _ := json.Marshal(payload)
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:])
}
