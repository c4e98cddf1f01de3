package textproc

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// minTermLength excludes single characters, which carry no signal.
	minTermLength = 2

	// maxTermLength excludes degenerate tokens such as base64 fragments
	// or minified-code identifiers that would bloat the term indexes.
	maxTermLength = 50

	// minNumericLength keeps long numbers ("5555", years, IDs) searchable
	// while discarding small incidental numbers like "5" or "42".
	minNumericLength = 4
)

// TermSet is a deduplicated set of searchable terms. It serializes to a
// sorted JSON array so that stored documents are byte-stable.
type TermSet map[string]struct{}

// NewTermSet builds a TermSet from the given terms.
func NewTermSet(terms ...string) TermSet {
	ts := make(TermSet, len(terms))
	for _, t := range terms {
		ts[t] = struct{}{}
	}
	return ts
}

// Has reports whether term is in the set.
func (ts TermSet) Has(term string) bool {
	_, ok := ts[term]
	return ok
}

// Add inserts term into the set.
func (ts TermSet) Add(term string) {
	ts[term] = struct{}{}
}

// Merge inserts every term of other into the set.
func (ts TermSet) Merge(other TermSet) {
	for t := range other {
		ts[t] = struct{}{}
	}
}

// Slice returns the terms in sorted order.
func (ts TermSet) Slice() []string {
	out := make([]string, 0, len(ts))
	for t := range ts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted string array.
func (ts TermSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Slice())
}

// UnmarshalJSON decodes a string array into the set.
func (ts *TermSet) UnmarshalJSON(data []byte) error {
	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return err
	}
	*ts = NewTermSet(terms...)
	return nil
}

// foldDiacritics strips combining marks after canonical decomposition, so
// "café" and "cafe" index to the same term.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ExtractTerms splits free text into the set of searchable terms.
//
// Terms are lowercased and diacritics-folded. Splitting happens on
// whitespace and punctuation, except that internal hyphens and email-like
// tokens survive as single terms ("e-mail", "user@example.com"). Tokens
// shorter than two characters, longer than maxTermLength, purely numeric
// below minNumericLength, or on the stopword list are discarded.
//
// The result has set semantics: duplicates collapse and ordering is not
// meaningful.
func ExtractTerms(text string) TermSet {
	lowered := strings.ToLower(text)
	folded, _, err := transform.String(foldDiacritics, lowered)
	if err != nil {
		folded = lowered
	}

	terms := make(TermSet)
	for _, tok := range splitTokens(folded) {
		for _, term := range refineToken(tok) {
			if validTerm(term) {
				terms.Add(term)
			}
		}
	}
	return terms
}

// splitTokens cuts text into raw tokens. Letters and digits always belong
// to a token; '-', '.', '@', '_', and '+' are kept for now so that emails
// and hyphenated words stay whole, and get refined afterwards.
func splitTokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		switch r {
		case '-', '.', '@', '_', '+':
			return false
		}
		return true
	})
}

// refineToken trims boundary punctuation and decides whether a token stays
// whole (email-like) or splits further on dots, underscores, and pluses.
// Internal hyphens always survive.
func refineToken(tok string) []string {
	tok = strings.Trim(tok, "-.@_+")
	if tok == "" {
		return nil
	}

	// Email-like tokens stay intact: exactly one '@' with content on
	// both sides.
	if at := strings.Count(tok, "@"); at == 1 {
		i := strings.Index(tok, "@")
		if i > 0 && i < len(tok)-1 {
			return []string{tok}
		}
	}

	// Everything else splits on the remaining joiner punctuation.
	parts := strings.FieldsFunc(tok, func(r rune) bool {
		return r == '.' || r == '_' || r == '+' || r == '@'
	})
	for i, p := range parts {
		parts[i] = strings.Trim(p, "-")
	}
	return parts
}

// validTerm applies the length, numeric, and stopword rules.
func validTerm(term string) bool {
	n := len([]rune(term))
	if n < minTermLength || n > maxTermLength {
		return false
	}
	if stopWords[term] {
		return false
	}
	if isNumeric(term) && n < minNumericLength {
		return false
	}
	return true
}

// isNumeric reports whether the term consists solely of digits.
func isNumeric(term string) bool {
	for _, r := range term {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ExtractURLTerms derives searchable terms from a normalized URL path.
// Path separators act as plain punctuation, so "blog/go-generics" yields
// "blog" and "go-generics".
func ExtractURLTerms(path string) TermSet {
	return ExtractTerms(strings.ReplaceAll(path, "/", " "))
}
