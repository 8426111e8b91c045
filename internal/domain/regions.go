package domain

import "regexp"

var markupRe = regexp.MustCompile(`<[^>]*>`)

// ExtractRegions returns the gazetteer entries named in text. Markup is
// stripped and the text folded before matching. Results follow gazetteer
// order, not position in text, and each region appears at most once.
func ExtractRegions(text string, g *Gazetteer) []string {
	clean := FoldKey(markupRe.ReplaceAllString(text, " "))
	if clean == "" {
		return nil
	}

	var found []string
	for _, e := range g.entries {
		if e.qualified.MatchString(clean) || e.bare.MatchString(clean) {
			found = append(found, e.name)
		}
	}
	return found
}
