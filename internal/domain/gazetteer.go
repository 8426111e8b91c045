package domain

import (
	"regexp"
	"strings"
)

const (
	// AllRegions is the configured-region sentinel for the whole country.
	AllRegions = "all"

	// UnknownRegion tags warnings whose region text names no known county, so
	// they are not dropped.
	UnknownRegion = "Necunoscut"
)

// romanianCounties is the canonical county list, in the order region
// extraction reports matches.
var romanianCounties = []string{
	"Alba", "Arad", "Argeș", "Bacău", "Bihor", "Bistrița-Năsăud", "Botoșani",
	"Brașov", "Brăila", "București", "Buzău", "Caraș-Severin", "Călărași",
	"Cluj", "Constanța", "Covasna", "Dâmbovița", "Dolj", "Galați", "Giurgiu",
	"Gorj", "Harghita", "Hunedoara", "Ialomița", "Iași", "Ilfov", "Maramureș",
	"Mehedinți", "Mureș", "Neamț", "Olt", "Prahova", "Satu Mare", "Sălaj",
	"Sibiu", "Suceava", "Teleorman", "Timiș", "Tulcea", "Vaslui", "Vâlcea",
	"Vrancea",
}

// Counties is the gazetteer of Romanian counties. It is built once and never
// mutated, so it is safe for concurrent use.
var Counties = NewGazetteer(romanianCounties)

// Gazetteer is a fixed, ordered list of region names with precompiled
// matchers.
type Gazetteer struct {
	entries []gazetteerEntry
	byKey   map[string]string
}

type gazetteerEntry struct {
	name string
	// qualified matches "județul <name>" and similar administrative prefixes.
	qualified *regexp.Regexp
	bare      *regexp.Regexp
}

// NewGazetteer compiles matchers for names. Names that fold to the same key
// are kept once, first occurrence wins.
func NewGazetteer(names []string) *Gazetteer {
	g := &Gazetteer{byKey: make(map[string]string, len(names))}
	for _, name := range names {
		key := FoldKey(name)
		if key == "" {
			continue
		}
		if _, dup := g.byKey[key]; dup {
			continue
		}
		g.byKey[key] = name
		g.entries = append(g.entries, gazetteerEntry{
			name:      name,
			qualified: regexp.MustCompile(`(?i)\b(?:judetul|jud\.?|municipiul)\s+` + namePattern(key) + `\b`),
			bare:      regexp.MustCompile(`(?i)\b` + namePattern(key) + `\b`),
		})
	}
	return g
}

// namePattern turns a folded name into a regexp that tolerates variable
// spacing around words and hyphens.
func namePattern(key string) string {
	var b strings.Builder
	for i, part := range strings.Split(key, "-") {
		if i > 0 {
			b.WriteString(`\s*-\s*`)
		}
		for j, w := range strings.Fields(part) {
			if j > 0 {
				b.WriteString(`\s+`)
			}
			b.WriteString(regexp.QuoteMeta(w))
		}
	}
	return b.String()
}

// Names returns the canonical names in gazetteer order.
func (g *Gazetteer) Names() []string {
	names := make([]string, len(g.entries))
	for i, e := range g.entries {
		names[i] = e.name
	}
	return names
}

// Lookup resolves name to its canonical spelling, ignoring case, diacritics
// and extra whitespace.
func (g *Gazetteer) Lookup(name string) (string, bool) {
	canonical, ok := g.byKey[FoldKey(name)]
	return canonical, ok
}
