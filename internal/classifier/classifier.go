// Package classifier applies an exported TF-IDF vectorizer and binary linear model to normalized text.
//
// The artifacts are JSON exports of a fitted scikit-learn TfidfVectorizer and LogisticRegression:
//
//	vectorizer.json: {"vocabulary": {"term": 0}, "idf": [1.7], "ngram_range": [1, 1], "sublinear_tf": false, "norm": "l2"}
//	classifier.json: {"coef": [0.42], "intercept": -0.1, "classes": [0, 1]}
package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	VectorizerFile = "vectorizer.json"
	ModelFile      = "classifier.json"

	LabelTrue = "True"
	LabelFake = "Fake"
)

// tokenRe matches runs of two or more word characters, like the default sklearn token_pattern.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

type Vectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramRange  [2]int         `json:"ngram_range"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
}

type Model struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Classes   []int     `json:"classes"`
}

// Classifier is read-only after Load and safe for concurrent use.
type Classifier struct {
	vec   Vectorizer
	model Model
}

// Load reads both artifacts from dir. Any error here should stop the process.
func Load(dir string) (*Classifier, error) {
	var vec Vectorizer
	if err := readJSON(filepath.Join(dir, VectorizerFile), &vec); err != nil {
		return nil, fmt.Errorf("failed to load vectorizer: %w", err)
	}
	var model Model
	if err := readJSON(filepath.Join(dir, ModelFile), &model); err != nil {
		return nil, fmt.Errorf("failed to load classifier: %w", err)
	}
	return New(vec, model)
}

// New validates the artifacts against each other.
func New(vec Vectorizer, model Model) (*Classifier, error) {
	if len(vec.Vocabulary) == 0 {
		return nil, fmt.Errorf("vectorizer has an empty vocabulary")
	}
	if len(vec.IDF) != len(model.Coef) {
		return nil, fmt.Errorf("idf has %d features but model has %d coefficients", len(vec.IDF), len(model.Coef))
	}
	for term, idx := range vec.Vocabulary {
		if idx < 0 || idx >= len(vec.IDF) {
			return nil, fmt.Errorf("vocabulary term %q has out of range index %d", term, idx)
		}
	}
	if len(model.Classes) != 2 {
		return nil, fmt.Errorf("expected a binary model, got %d classes", len(model.Classes))
	}
	if vec.NgramRange == [2]int{} {
		vec.NgramRange = [2]int{1, 1}
	}
	if vec.NgramRange[0] < 1 || vec.NgramRange[1] < vec.NgramRange[0] {
		return nil, fmt.Errorf("invalid ngram_range %v", vec.NgramRange)
	}
	switch vec.Norm {
	case "", "l1", "l2":
	default:
		return nil, fmt.Errorf("unsupported norm %q", vec.Norm)
	}
	return &Classifier{vec: vec, model: model}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Classify returns LabelTrue when the model predicts class 1 and LabelFake otherwise.
func (c *Classifier) Classify(normalized string) string {
	if c.Predict(normalized) == 1 {
		return LabelTrue
	}
	return LabelFake
}

// Predict returns the predicted class value for one document.
func (c *Classifier) Predict(normalized string) int {
	if c.decision(c.transform(normalized)) > 0 {
		return c.model.Classes[1]
	}
	return c.model.Classes[0]
}

func (c *Classifier) decision(features []feature) float64 {
	score := c.model.Intercept
	for _, f := range features {
		score += c.model.Coef[f.index] * f.value
	}
	return score
}

type feature struct {
	index int
	value float64
}

// transform builds the sparse TF-IDF vector for one document, ordered by feature index
// so that floating point sums are reproducible.
func (c *Classifier) transform(doc string) []feature {
	tokens := tokenRe.FindAllString(doc, -1)

	counts := make(map[int]float64)
	for n := c.vec.NgramRange[0]; n <= c.vec.NgramRange[1]; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if idx, ok := c.vec.Vocabulary[term]; ok {
				counts[idx]++
			}
		}
	}

	features := make([]feature, 0, len(counts))
	for idx, tf := range counts {
		if c.vec.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		features = append(features, feature{index: idx, value: tf * c.vec.IDF[idx]})
	}
	sort.Slice(features, func(i, j int) bool { return features[i].index < features[j].index })

	var norm float64
	switch c.vec.Norm {
	case "l2":
		for _, f := range features {
			norm += f.value * f.value
		}
		norm = math.Sqrt(norm)
	case "l1":
		for _, f := range features {
			norm += math.Abs(f.value)
		}
	}
	if norm > 0 {
		for i := range features {
			features[i].value /= norm
		}
	}
	return features
}
