package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// romanianFolds is the explicit folding table for Romanian letters. Both the
// comma-below (ș, ț) and the legacy cedilla (ş, ţ) forms appear in feed text.
var romanianFolds = strings.NewReplacer(
	"ă", "a", "Ă", "A",
	"â", "a", "Â", "A",
	"î", "i", "Î", "I",
	"ș", "s", "Ș", "S",
	"ş", "s", "Ş", "S",
	"ț", "t", "Ț", "T",
	"ţ", "t", "Ţ", "T",
)

// Fold lowercases s and removes diacritics. The Romanian table runs first;
// any remaining combining marks (decomposed input, other alphabets) are
// stripped via NFD.
func Fold(s string) string {
	s = romanianFolds.Replace(s)
	// transform.Chain keeps internal buffers, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	return strings.ToLower(s)
}

// FoldKey folds s and collapses surrounding and repeated whitespace. Two names
// with equal keys refer to the same region.
func FoldKey(s string) string {
	return strings.Join(strings.Fields(Fold(s)), " ")
}
