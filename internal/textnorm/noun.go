package textnorm

import "strings"

// Dictionary lists the base forms of an inflected word; unknown words map to themselves.
type Dictionary interface {
	Lemmas(word string) []string
}

// nounSuffixes are the WordNet noun detachment rules, tried in order.
var nounSuffixes = []struct{ from, to string }{
	{"s", ""},
	{"ses", "s"},
	{"xes", "x"},
	{"zes", "z"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"men", "man"},
	{"ies", "y"},
}

// irregularNouns covers plurals the suffix rules cannot reach.
var irregularNouns = map[string]string{
	"children":  "child",
	"criteria":  "criterion",
	"data":      "datum",
	"feet":      "foot",
	"geese":     "goose",
	"halves":    "half",
	"knives":    "knife",
	"leaves":    "leaf",
	"lives":     "life",
	"lice":      "louse",
	"mice":      "mouse",
	"oxen":      "ox",
	"phenomena": "phenomenon",
	"teeth":     "tooth",
	"thieves":   "thief",
	"wives":     "wife",
	"wolves":    "wolf",
}

// NounLemmatizer reduces plural nouns only. Verbs and adjectives keep their surface form
// ("running", "found", "better"), so tokens line up with a noun-lemmatized training vocabulary.
type NounLemmatizer struct {
	dict Dictionary
}

func NewNounLemmatizer(dict Dictionary) *NounLemmatizer {
	return &NounLemmatizer{dict: dict}
}

// Lemma returns the shortest noun base form of word the dictionary confirms, or word itself.
func (l *NounLemmatizer) Lemma(word string) string {
	if base, ok := irregularNouns[word]; ok {
		return base
	}

	known := make(map[string]struct{})
	for _, lemma := range l.dict.Lemmas(word) {
		known[lemma] = struct{}{}
	}

	best := word
	for _, rule := range nounSuffixes {
		if !strings.HasSuffix(word, rule.from) {
			continue
		}
		candidate := strings.TrimSuffix(word, rule.from) + rule.to
		if candidate == "" || candidate == word {
			continue
		}
		if _, ok := known[candidate]; ok && len(candidate) < len(best) {
			best = candidate
		}
	}
	return best
}
