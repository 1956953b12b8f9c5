// Package service owns the process-wide trained model and turns raw chat
// messages into validated NLU results.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"defi-nlu/internal/common/config"
	apperrors "defi-nlu/internal/common/errors"
	"defi-nlu/internal/common/logger"
	"defi-nlu/internal/common/metrics"
	"defi-nlu/internal/nlu/classifier"
	"defi-nlu/internal/nlu/corpus"
	"defi-nlu/internal/nlu/entities"
	"defi-nlu/internal/nlu/intent"
	"defi-nlu/internal/nlu/model"
	"defi-nlu/internal/nlu/store"
	"defi-nlu/internal/nlu/validator"
)

type State int32

const (
	StateUninitialized State = iota
	StateTraining
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateTraining:
		return "training"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Result is the wire-level record returned for every processed message.
type Result struct {
	Intent       intent.Intent     `json:"intent"`
	Confidence   float64           `json:"confidence"`
	Entities     entities.Entities `json:"entities"`
	Valid        bool              `json:"valid"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	OriginalText string            `json:"originalText"`
}

type ModelInfo struct {
	Initialized    bool            `json:"initialized"`
	ModelType      string          `json:"modelType"`
	State          string          `json:"state"`
	ModelID        string          `json:"modelId,omitempty"`
	TrainedAt      *time.Time      `json:"trainedAt,omitempty"`
	CorpusSize     int             `json:"corpusSize,omitempty"`
	VocabularySize int             `json:"vocabularySize,omitempty"`
	Classes        []intent.Intent `json:"classes,omitempty"`
}

type Options struct {
	Classifier       classifier.Options
	BatchConcurrency int
	LoadSnapshot     bool
}

func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultNLU())
}

func OptionsFromConfig(cfg config.NLUConfig) Options {
	return Options{
		Classifier: classifier.Options{
			Epochs:             cfg.Epochs,
			LearningRate:       cfg.LearningRate,
			EarlyStopTolerance: cfg.EarlyStopTolerance,
		},
		BatchConcurrency: cfg.BatchConcurrency,
		LoadSnapshot:     cfg.LoadSnapshot,
	}
}

type Option func(*Service)

// WithStore enables warm start from, and persistence to, a snapshot store.
func WithStore(s store.SnapshotStore) Option {
	return func(svc *Service) { svc.store = s }
}

func WithExtractor(x *entities.Extractor) Option {
	return func(svc *Service) { svc.extractor = x }
}

// Service is safe for concurrent use. Training runs at most once at a time;
// readers always see either no model or a complete one.
type Service struct {
	opts      Options
	source    corpus.Source
	store     store.SnapshotStore
	extractor *entities.Extractor
	logger    logger.Logger

	// held while training; waiters select on it against their ctx
	trainMu chan struct{}
	state   atomic.Int32
	current atomic.Pointer[model.Model]
}

func New(source corpus.Source, log logger.Logger, opts Options, options ...Option) *Service {
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 1
	}
	svc := &Service{
		opts:      opts,
		source:    source,
		extractor: entities.NewExtractor(),
		trainMu:   make(chan struct{}, 1),
		logger:    log.WithFields(map[string]interface{}{"component": "nlu-service"}),
	}
	for _, o := range options {
		o(svc)
	}
	return svc
}

func (s *Service) State() State { return State(s.state.Load()) }

func (s *Service) Ready() bool { return s.current.Load() != nil }

// Initialize trains the model unless one is already serving. Concurrent
// callers wait for the first one to finish or for their own ctx to end.
func (s *Service) Initialize(ctx context.Context) error {
	if s.current.Load() != nil {
		return nil
	}

	if err := s.lockTraining(ctx); err != nil {
		return err
	}
	defer s.unlockTraining()
	if s.current.Load() != nil {
		return nil
	}

	s.state.Store(int32(StateTraining))

	if s.opts.LoadSnapshot && s.store != nil {
		if m := s.loadSnapshot(ctx); m != nil {
			s.publish(m)
			return nil
		}
	}

	m, err := s.train(ctx)
	if err != nil {
		s.state.Store(int32(StateUninitialized))
		return err
	}
	s.publish(m)
	s.saveSnapshot(ctx, m)
	return nil
}

// Reinitialize retrains from the current corpus sources and swaps the new
// model in. The previous model keeps serving until the swap and stays in
// place if training fails.
func (s *Service) Reinitialize(ctx context.Context) error {
	if err := s.lockTraining(ctx); err != nil {
		return err
	}
	defer s.unlockTraining()

	s.state.Store(int32(StateTraining))

	m, err := s.train(ctx)
	if err != nil {
		if s.current.Load() != nil {
			s.state.Store(int32(StateReady))
		} else {
			s.state.Store(int32(StateUninitialized))
		}
		return err
	}
	s.publish(m)
	s.saveSnapshot(ctx, m)
	return nil
}

func (s *Service) lockTraining(ctx context.Context) error {
	select {
	case s.trainMu <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) unlockTraining() { <-s.trainMu }

func (s *Service) train(ctx context.Context) (*model.Model, error) {
	start := time.Now()

	examples, err := s.source.Load(ctx)
	if err != nil {
		return nil, apperrors.NewCorpusLoadFailedError(err)
	}

	s.logger.Info("Training intent model", map[string]interface{}{
		"examples":     len(examples),
		"epochs":       s.opts.Classifier.Epochs,
		"learningRate": s.opts.Classifier.LearningRate,
	})

	m, err := model.Train(examples, s.opts.Classifier)
	if err != nil {
		return nil, apperrors.NewModelTrainingFailedError(err)
	}

	elapsed := time.Since(start)
	metrics.NLUTrainingDuration.Observe(elapsed.Seconds())
	s.logger.Info("Intent model trained", map[string]interface{}{
		"modelId":        m.ID,
		"examples":       m.CorpusSize,
		"vocabularySize": m.VocabularySize(),
		"durationMs":     elapsed.Milliseconds(),
	})
	return m, nil
}

func (s *Service) publish(m *model.Model) {
	s.current.Store(m)
	s.state.Store(int32(StateReady))
	metrics.NLUVocabularySize.Set(float64(m.VocabularySize()))
}

func (s *Service) loadSnapshot(ctx context.Context) *model.Model {
	m, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrSnapshotNotFound):
		s.logger.Info("No model snapshot stored, training", nil)
		return nil
	case err != nil:
		s.logger.WithError(err).Warn("Model snapshot unusable, training", nil)
		return nil
	}
	s.logger.Info("Loaded model snapshot", map[string]interface{}{
		"modelId":        m.ID,
		"trainedAt":      m.TrainedAt,
		"vocabularySize": m.VocabularySize(),
	})
	return m
}

func (s *Service) saveSnapshot(ctx context.Context, m *model.Model) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, m); err != nil {
		s.logger.WithError(err).Warn("Failed to save model snapshot", map[string]interface{}{
			"modelId": m.ID,
		})
	}
}

// ProcessInput classifies text, extracts entities and validates them
// against the predicted intent. Low confidence is returned as is; callers
// apply their own threshold.
func (s *Service) ProcessInput(ctx context.Context, text string) (*Result, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s.process(s.current.Load(), text)
}

func (s *Service) process(m *model.Model, text string) (*Result, error) {
	pred, err := m.Predict(text)
	if err != nil {
		return nil, apperrors.NewModelNotTrainedError(err)
	}
	ents := s.extractor.Extract(text)
	check := validator.Validate(pred.Intent, ents)

	res := &Result{
		Intent:       pred.Intent,
		Confidence:   pred.Confidence,
		Entities:     ents,
		Valid:        check.Valid,
		OriginalText: text,
	}
	if !check.Valid {
		res.ErrorMessage = validator.MissingEntitiesMessage(pred.Intent, check.Missing, text)
		metrics.NLUValidationFailures.WithLabelValues(pred.Intent.String()).Inc()
	}

	metrics.NLUPredictions.WithLabelValues(pred.Intent.String()).Inc()
	metrics.NLUPredictionConfidence.Observe(pred.Confidence)
	s.logger.Debug("Processed input", map[string]interface{}{
		"intent":     pred.Intent.String(),
		"confidence": pred.Confidence,
		"valid":      check.Valid,
	})
	return res, nil
}

// ProcessBatch processes texts in parallel; results keep input order. Every
// item is scored by the same model even if a retrain completes meanwhile.
func (s *Service) ProcessBatch(ctx context.Context, texts []string) ([]Result, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	m := s.current.Load()

	results := make([]Result, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BatchConcurrency)
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.process(m, text)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) ModelInfo() ModelInfo {
	info := ModelInfo{
		ModelType: model.Type,
		State:     s.State().String(),
	}
	m := s.current.Load()
	if m == nil {
		return info
	}
	trainedAt := m.TrainedAt
	info.Initialized = true
	info.ModelID = m.ID
	info.TrainedAt = &trainedAt
	info.CorpusSize = m.CorpusSize
	info.VocabularySize = m.VocabularySize()
	info.Classes = m.Classes()
	return info
}
