package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defi-nlu/internal/nlu/classifier"
	"defi-nlu/internal/nlu/corpus"
	"defi-nlu/internal/nlu/intent"
	"defi-nlu/internal/nlu/vectorizer"
)

func createTinyCorpus() []corpus.Example {
	var out []corpus.Example
	for i := 0; i < 5; i++ {
		out = append(out,
			corpus.Example{Text: "stake sol now", Intent: intent.StakeNative},
			corpus.Example{Text: "send sol to friend", Intent: intent.Send},
			corpus.Example{Text: "show my balance", Intent: intent.Balance},
		)
	}
	return out
}

func TestTrain(t *testing.T) {
	m, err := Train(createTinyCorpus(), classifier.Options{Epochs: 200, LearningRate: 0.5})
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, 15, m.CorpusSize)
	assert.WithinDuration(t, time.Now(), m.TrainedAt, time.Minute)
	assert.Equal(t, []intent.Intent{intent.StakeNative, intent.Send, intent.Balance}, m.Classes())
	assert.Equal(t, m.Vectorizer().VocabularySize(), m.VocabularySize())

	got, err := m.PredictIntent("please show balance")
	require.NoError(t, err)
	assert.Equal(t, intent.Balance, got)
}

func TestTrain_EmptyCorpus(t *testing.T) {
	_, err := Train(nil, classifier.DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestTrain_IndependentModels(t *testing.T) {
	a, err := Train(createTinyCorpus(), classifier.DefaultOptions())
	require.NoError(t, err)
	b, err := Train(createTinyCorpus()[:3], classifier.DefaultOptions())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotSame(t, a.Vectorizer(), b.Vectorizer())
	assert.NotSame(t, a.Classifier(), b.Classifier())
}

func TestAssemble(t *testing.T) {
	trained, err := Train(createTinyCorpus(), classifier.DefaultOptions())
	require.NoError(t, err)

	m, err := Assemble("", trained.TrainedAt, 15, trained.Vectorizer(), trained.Classifier())
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)

	_, err = Assemble("x", time.Now(), 0, vectorizer.New(), trained.Classifier())
	assert.ErrorIs(t, err, vectorizer.ErrNotFitted)

	_, err = Assemble("x", time.Now(), 0, trained.Vectorizer(), classifier.New(classifier.DefaultOptions()))
	assert.ErrorIs(t, err, classifier.ErrNotFitted)

	small, err := vectorizer.FromTables([]string{"a"}, []float64{1})
	require.NoError(t, err)
	_, err = Assemble("x", time.Now(), 0, small, trained.Classifier())
	assert.ErrorIs(t, err, classifier.ErrDimensionMismatch)
}
