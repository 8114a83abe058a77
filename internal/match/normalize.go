package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// QuestionProfile captures the normalization output for a strategic question.
type QuestionProfile struct {
	Original string
	Folded   string
	Tokens   []string
}

// NormalizeQuestion lower-cases the question, strips diacritics and splits it
// into word tokens.
func NormalizeQuestion(input string) QuestionProfile {
	folded := Fold(input)
	return QuestionProfile{
		Original: input,
		Folded:   folded,
		Tokens:   splitTokens(folded),
	}
}

// Fold lower-cases s and removes combining marks, so "Aquisição" and
// "aquisicao" compare equal.
func Fold(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return out
}

func splitTokens(folded string) []string {
	parts := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// KeywordSet is an ordered list of folded keywords. A keyword matches a
// question when some token starts with it, so inflections match
// ("escalaremos") but a keyword buried inside a longer word ("reescalar",
// "subproduto") does not. Hyphens split tokens.
type KeywordSet []string

// NewKeywordSet folds the supplied words, dropping empties and duplicates.
func NewKeywordSet(words ...string) KeywordSet {
	var set KeywordSet
	for _, w := range words {
		set = appendUnique(set, Fold(w))
	}
	return set
}

// First returns the first keyword, in set order, present in the question.
func (k KeywordSet) First(p QuestionProfile) (string, bool) {
	for _, kw := range k {
		for _, tok := range p.Tokens {
			if strings.HasPrefix(tok, kw) {
				return kw, true
			}
		}
	}
	return "", false
}

// Matches reports whether any keyword is present in the question.
func (k KeywordSet) Matches(p QuestionProfile) bool {
	_, ok := k.First(p)
	return ok
}

func appendUnique(s KeywordSet, v string) KeywordSet {
	if v == "" {
		return s
	}
	for _, existing := range s {
		if existing == v {
			return s
		}
	}
	return append(s, v)
}
