package match

import (
	"strings"
	"unicode"
)

// stopWords filters common English words that add noise to keyword overlap.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"using": true, "used": true, "well": true, "able": true, "such": true,
	"years": true, "experience": true, "strong": true, "plus": true,
}

// skillAliases maps common tool-name spellings onto each other so "Go"
// matches "golang" and "k8s" matches "kubernetes".
var skillAliases = map[string][]string{
	"go":         {"golang"},
	"golang":     {"go"},
	"js":         {"javascript"},
	"javascript": {"js"},
	"ts":         {"typescript"},
	"typescript": {"ts"},
	"k8s":        {"kubernetes"},
	"kubernetes": {"k8s"},
	"postgres":   {"postgresql"},
	"postgresql": {"postgres"},
	"aws":        {"amazon web services"},
	"gcp":        {"google cloud"},
}

// normalizeTerm lowercases and squeezes a phrase for comparison, keeping
// tech-name characters like "+", "#" and "." ("c++", "c#", "node.js").
func normalizeTerm(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// variants returns the normalized spellings a term may appear under.
func variants(term string) []string {
	n := normalizeTerm(term)
	if n == "" {
		return nil
	}
	out := []string{n}
	for _, alias := range skillAliases[n] {
		out = append(out, alias)
	}
	return out
}

// extractKeywords tokenizes text into a lowercase keyword set, skipping stop
// words and short noise tokens (2-letter tech names like "go" survive via
// the alias table on the matching side).
func extractKeywords(text string) map[string]bool {
	kw := make(map[string]bool)
	for _, tok := range strings.Fields(normalizeTerm(text)) {
		tok = strings.TrimRight(tok, ".")
		if len([]rune(tok)) < 3 || stopWords[tok] {
			continue
		}
		kw[tok] = true
	}
	return kw
}

// containsPhrase reports whether the normalized phrase occurs as whole words
// inside the normalized text.
func containsPhrase(normalizedText, normalizedPhrase string) bool {
	if normalizedPhrase == "" {
		return false
	}
	hay := " " + normalizedText + " "
	needle := " " + normalizedPhrase + " "
	return strings.Contains(hay, needle)
}
