// Package textnorm turns raw article text into the token stream the classifier was trained on.
package textnorm

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// punctuation is the ASCII punctuation set; each character becomes a space.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// maxLemmaSteps bounds the lemma fixed-point search.
const maxLemmaSteps = 4

var (
	bracketRe = regexp.MustCompile(`\[.*?\]`)
	urlRe     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagRe     = regexp.MustCompile(`<.*?>+`)
)

// Lemmatizer maps a word to its dictionary base form. Unknown words are returned unchanged.
type Lemmatizer interface {
	Lemma(word string) string
}

// Normalizer is safe for concurrent use once built.
type Normalizer struct {
	lemmatizer Lemmatizer
	stopwords  map[string]struct{}
}

func New(l Lemmatizer) *Normalizer {
	return &Normalizer{
		lemmatizer: l,
		stopwords:  stopwordSet(englishStopwords),
	}
}

// NewEnglish loads the English lemma dictionary and lemmatizes nouns only.
// It is slow; call it once at startup.
func NewEnglish() (*Normalizer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("failed to load english lemma dictionary: %w", err)
	}
	return New(NewNounLemmatizer(l)), nil
}

// Normalize lowercases text, strips citations, URLs, tags, punctuation and digit tokens,
// drops stopwords and lemmatizes what is left. Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(text string) string {
	text = strings.ToLower(text)
	text = bracketRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, "")
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return ' '
		}
		return r
	}, text)
	text = strings.ReplaceAll(text, "\n", " ")

	var b strings.Builder
	for _, tok := range strings.Fields(text) {
		if hasDigit(tok) {
			continue
		}
		if n.isStopword(tok) {
			continue
		}
		lemma := n.lemma(tok)
		if lemma == "" || n.isStopword(lemma) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(lemma)
	}
	return b.String()
}

func (n *Normalizer) isStopword(w string) bool {
	_, ok := n.stopwords[w]
	return ok
}

// lemma follows the lemmatizer to a fixed point so that a second pass is a no-op.
// A lemma that would not survive normalization itself (upper case, digits, symbols)
// is rejected in favour of the last clean form.
func (n *Normalizer) lemma(word string) string {
	if n.lemmatizer == nil {
		return word
	}
	cur := word
	for i := 0; i < maxLemmaSteps; i++ {
		next := n.lemmatizer.Lemma(cur)
		if next == cur || !isCleanToken(next) {
			return cur
		}
		cur = next
	}
	return cur
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isCleanToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) || unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
