// Package model pairs a fitted vectorizer with the classifier trained on
// its output. A Model is immutable once built; retraining yields a new one.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"defi-nlu/internal/nlu/classifier"
	"defi-nlu/internal/nlu/corpus"
	"defi-nlu/internal/nlu/intent"
	"defi-nlu/internal/nlu/vectorizer"
)

const Type = "tfidf-logistic-regression-ovr"

var ErrEmptyCorpus = errors.New("MODEL_EMPTY_CORPUS")

type Model struct {
	ID         string
	TrainedAt  time.Time
	CorpusSize int

	vectorizer *vectorizer.Vectorizer
	classifier *classifier.Classifier
}

// Train fits a fresh vectorizer and classifier on the examples.
func Train(examples []corpus.Example, opts classifier.Options) (*Model, error) {
	if len(examples) == 0 {
		return nil, ErrEmptyCorpus
	}

	vec := vectorizer.New()
	X, err := vec.FitTransform(corpus.Texts(examples))
	if err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}

	clf := classifier.New(opts)
	if err := clf.Fit(X, corpus.Labels(examples)); err != nil {
		return nil, fmt.Errorf("fit classifier: %w", err)
	}

	return &Model{
		ID:         uuid.NewString(),
		TrainedAt:  time.Now().UTC(),
		CorpusSize: len(examples),
		vectorizer: vec,
		classifier: clf,
	}, nil
}

// Assemble wraps already fitted parts, e.g. restored from a snapshot.
func Assemble(id string, trainedAt time.Time, corpusSize int, vec *vectorizer.Vectorizer, clf *classifier.Classifier) (*Model, error) {
	if vec == nil || !vec.Fitted() {
		return nil, vectorizer.ErrNotFitted
	}
	if clf == nil || !clf.Fitted() {
		return nil, classifier.ErrNotFitted
	}
	if vec.VocabularySize() != clf.Dimension() {
		return nil, fmt.Errorf("%w: vocabulary %d, weights %d", classifier.ErrDimensionMismatch, vec.VocabularySize(), clf.Dimension())
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &Model{
		ID:         id,
		TrainedAt:  trainedAt,
		CorpusSize: corpusSize,
		vectorizer: vec,
		classifier: clf,
	}, nil
}

func (m *Model) Predict(text string) (classifier.Prediction, error) {
	x, err := m.vectorizer.Transform(text)
	if err != nil {
		return classifier.Prediction{}, err
	}
	return m.classifier.PredictWithConfidence(x)
}

// PredictIntent drops the confidence; it satisfies evaluation.Predictor.
func (m *Model) PredictIntent(text string) (intent.Intent, error) {
	p, err := m.Predict(text)
	return p.Intent, err
}

func (m *Model) VocabularySize() int { return m.vectorizer.VocabularySize() }

func (m *Model) Classes() []intent.Intent { return m.classifier.Classes() }

func (m *Model) Vectorizer() *vectorizer.Vectorizer { return m.vectorizer }

func (m *Model) Classifier() *classifier.Classifier { return m.classifier }
