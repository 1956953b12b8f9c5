// internal/nlu/vectorizer/vectorizer.go
package vectorizer

import (
	"errors"
	"fmt"
	"math"

	"defi-nlu/internal/nlu/textnorm"
)

var (
	ErrNotFitted     = errors.New("VECTORIZER_NOT_FITTED")
	ErrEmptyCorpus   = errors.New("VECTORIZER_EMPTY_CORPUS")
	ErrInvalidTables = errors.New("VECTORIZER_INVALID_TABLES")
)

// Vectorizer turns text into TF-IDF feature vectors over a vocabulary
// frozen at Fit time.
type Vectorizer struct {
	index  map[string]int
	terms  []string
	idf    []float64
	fitted bool
}

func New() *Vectorizer {
	return &Vectorizer{}
}

// Fit builds the vocabulary in first-seen order and computes ln(N/df) per term.
// A previous vocabulary is replaced, never extended.
func (v *Vectorizer) Fit(documents []string) error {
	if len(documents) == 0 {
		return ErrEmptyCorpus
	}

	index := make(map[string]int)
	terms := make([]string, 0)
	df := make([]int, 0)

	for _, doc := range documents {
		seen := make(map[int]struct{})
		for _, tok := range textnorm.Tokenize(doc) {
			idx, ok := index[tok]
			if !ok {
				idx = len(terms)
				index[tok] = idx
				terms = append(terms, tok)
				df = append(df, 0)
			}
			if _, dup := seen[idx]; dup {
				continue
			}
			seen[idx] = struct{}{}
			df[idx]++
		}
	}

	n := float64(len(documents))
	idf := make([]float64, len(terms))
	for i, count := range df {
		idf[i] = math.Log(n / float64(max(count, 1)))
	}

	v.index = index
	v.terms = terms
	v.idf = idf
	v.fitted = true
	return nil
}

// Transform vectorizes text. Term frequency counts every token, including
// out-of-vocabulary ones, in the denominator.
func (v *Vectorizer) Transform(text string) ([]float64, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}

	vec := make([]float64, len(v.terms))
	tokens := textnorm.Tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := v.index[tok]; ok {
			counts[idx]++
		}
	}

	total := float64(len(tokens))
	for idx, c := range counts {
		vec[idx] = (float64(c) / total) * v.idf[idx]
	}
	return vec, nil
}

func (v *Vectorizer) FitTransform(documents []string) ([][]float64, error) {
	if err := v.Fit(documents); err != nil {
		return nil, err
	}
	out := make([][]float64, len(documents))
	for i, doc := range documents {
		vec, err := v.Transform(doc)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (v *Vectorizer) Fitted() bool { return v.fitted }

func (v *Vectorizer) VocabularySize() int { return len(v.terms) }

// Vocabulary returns a copy of the terms in index order.
func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.terms...)
}

// IDF returns a copy of the weights, index-aligned with Vocabulary.
func (v *Vectorizer) IDF() []float64 {
	return append([]float64(nil), v.idf...)
}

// FromTables rebuilds a fitted vectorizer from exported vocabulary and IDF tables.
func FromTables(terms []string, idf []float64) (*Vectorizer, error) {
	if len(terms) != len(idf) {
		return nil, fmt.Errorf("%w: %d terms but %d idf weights", ErrInvalidTables, len(terms), len(idf))
	}
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		if term == "" {
			return nil, fmt.Errorf("%w: empty term at %d", ErrInvalidTables, i)
		}
		if _, dup := index[term]; dup {
			return nil, fmt.Errorf("%w: duplicate term %q", ErrInvalidTables, term)
		}
		if idf[i] < 0 || math.IsNaN(idf[i]) || math.IsInf(idf[i], 0) {
			return nil, fmt.Errorf("%w: bad idf for %q", ErrInvalidTables, term)
		}
		index[term] = i
	}
	return &Vectorizer{
		index:  index,
		terms:  append([]string(nil), terms...),
		idf:    append([]float64(nil), idf...),
		fitted: true,
	}, nil
}
