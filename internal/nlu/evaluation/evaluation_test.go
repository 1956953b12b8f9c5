package evaluation

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defi-nlu/internal/nlu/classifier"
	"defi-nlu/internal/nlu/corpus"
	"defi-nlu/internal/nlu/intent"
	"defi-nlu/internal/nlu/model"
)

// ==========================
// Metrics
// ==========================

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name        string
		predictions []intent.Intent
		labels      []intent.Intent
		want        float64
	}{
		{name: "empty", want: 0},
		{name: "all correct", predictions: []intent.Intent{intent.Send, intent.Balance}, labels: []intent.Intent{intent.Send, intent.Balance}, want: 1},
		{name: "half", predictions: []intent.Intent{intent.Send, intent.Price}, labels: []intent.Intent{intent.Send, intent.Balance}, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.predictions, tt.labels)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestLengthMismatch(t *testing.T) {
	_, err := Accuracy([]intent.Intent{intent.Send}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = NewConfusionMatrix(nil, []intent.Intent{intent.Send})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Evaluate([]intent.Intent{intent.Send}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestConfusionMatrix(t *testing.T) {
	predictions := []intent.Intent{intent.Send, intent.Send, intent.Balance, intent.Price}
	labels := []intent.Intent{intent.Send, intent.Balance, intent.Balance, intent.Balance}

	cm, err := NewConfusionMatrix(predictions, labels)
	require.NoError(t, err)

	assert.Equal(t, 1, cm.Count(intent.Send, intent.Send))
	assert.Equal(t, 1, cm.Count(intent.Balance, intent.Send))
	assert.Equal(t, 1, cm.Count(intent.Balance, intent.Balance))
	assert.Equal(t, 1, cm.Count(intent.Balance, intent.Price))
	assert.Equal(t, 0, cm.Count(intent.Price, intent.Price))
	assert.Equal(t, []intent.Intent{intent.Send, intent.Balance, intent.Price}, cm.Classes())
}

func TestPerClass(t *testing.T) {
	// SEND: tp=1 fp=1 fn=0; BALANCE: tp=1 fp=0 fn=2; PRICE: tp=0 fp=1 fn=0
	predictions := []intent.Intent{intent.Send, intent.Send, intent.Balance, intent.Price}
	labels := []intent.Intent{intent.Send, intent.Balance, intent.Balance, intent.Balance}

	cm, err := NewConfusionMatrix(predictions, labels)
	require.NoError(t, err)
	per := PerClass(cm)
	require.Len(t, per, 3)

	send, balance, price := per[0], per[1], per[2]

	assert.Equal(t, intent.Send, send.Intent)
	assert.InDelta(t, 0.5, send.Precision, 1e-12)
	assert.InDelta(t, 1.0, send.Recall, 1e-12)
	assert.InDelta(t, 2.0/3.0, send.F1, 1e-12)
	assert.Equal(t, 1, send.Support)

	assert.InDelta(t, 1.0, balance.Precision, 1e-12)
	assert.InDelta(t, 1.0/3.0, balance.Recall, 1e-12)
	assert.InDelta(t, 0.5, balance.F1, 1e-12)
	assert.Equal(t, 3, balance.Support)

	// never an actual label: zero denominators give 0, not NaN
	assert.Equal(t, 0.0, price.Precision)
	assert.Equal(t, 0.0, price.Recall)
	assert.Equal(t, 0.0, price.F1)
	assert.Equal(t, 0, price.Support)

	macro := MacroAverage(per)
	assert.InDelta(t, 0.5, macro.Precision, 1e-12)
	assert.InDelta(t, (1.0+1.0/3.0)/3.0, macro.Recall, 1e-12)
	assert.InDelta(t, (2.0/3.0+0.5)/3.0, macro.F1, 1e-12)
}

func TestMacroAverage_Empty(t *testing.T) {
	assert.Equal(t, Averages{}, MacroAverage(nil))
}

func TestEvaluate(t *testing.T) {
	report, err := Evaluate(
		[]intent.Intent{intent.Send, intent.Balance},
		[]intent.Intent{intent.Send, intent.Balance},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1.0, report.Accuracy)
	assert.Equal(t, Averages{Precision: 1, Recall: 1, F1: 1}, report.Macro)
	assert.Len(t, report.PerClass, 2)
}

// ==========================
// Split
// ==========================

func createExamples(n int) []corpus.Example {
	out := make([]corpus.Example, n)
	for i := range out {
		out[i] = corpus.Example{Text: string(rune('a' + i%26)), Intent: intent.Intent(i % intent.Count)}
	}
	return out
}

func TestTrainTestSplit(t *testing.T) {
	examples := createExamples(100)

	train, test := TrainTestSplit(examples, 0.2, rand.New(rand.NewSource(1)))
	assert.Len(t, test, 20)
	assert.Len(t, train, 80)
	assert.Equal(t, createExamples(100), examples, "input is not reordered")

	// default fraction for out-of-range input
	train, test = TrainTestSplit(examples, 1.5, rand.New(rand.NewSource(1)))
	assert.Len(t, test, 20)
	assert.Len(t, train, 80)

	// seeded splits are reproducible
	_, a := TrainTestSplit(examples, 0.3, rand.New(rand.NewSource(7)))
	_, b := TrainTestSplit(examples, 0.3, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}

func TestTrainTestSplit_Small(t *testing.T) {
	train, test := TrainTestSplit(createExamples(1), 0.2, rand.New(rand.NewSource(1)))
	assert.Len(t, train, 1)
	assert.Empty(t, test)

	train, test = TrainTestSplit(createExamples(3), 0.1, rand.New(rand.NewSource(1)))
	assert.Len(t, train, 2)
	assert.Len(t, test, 1)

	train, test = TrainTestSplit(createExamples(2), 0.9, rand.New(rand.NewSource(1)))
	assert.Len(t, train, 1)
	assert.Len(t, test, 1)
}

// ==========================
// Keyword baseline
// ==========================

func TestKeywordBaseline(t *testing.T) {
	b, err := NewKeywordBaseline(nil)
	require.NoError(t, err)

	tests := []struct {
		text string
		want intent.Intent
	}{
		{"stake 5 sol", intent.StakeNative},
		{"stake 5 sol to msol", intent.StakeMSOL},
		{"Stake with BlazeStake", intent.StakeBSOL},
		{"unstake bsol", intent.UnstakeBSOL},
		{"unstake my marinade position", intent.UnstakeMSOL},
		{"unstake 3 sol", intent.UnstakeNative},
		{"send 1 sol to GZXs9Dy4GzPD3PYZ2pz6ggPYPjDYKE3fFMDVZ8ZdEJ3m", intent.Send},
		{"what's my balance", intent.Balance},
		{"what is the sol price", intent.Price},
		{"show market volume", intent.MarketData},
		{"analyze my portfolio", intent.PortfolioAnalysis},
		{"what do you recommend", intent.PortfolioRecommendation},
		{"what is liquid staking", intent.StakeNative},
		{"tell me about solana", intent.Explain},
		{"", intent.Explain},
		{"mistake", intent.Explain},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := b.PredictIntent(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeywordBaseline_CustomRules(t *testing.T) {
	b, err := NewKeywordBaseline([]KeywordRule{
		{Intent: intent.Price, Groups: [][]string{{"cuánto"}}},
	})
	require.NoError(t, err)

	got, _ := b.PredictIntent("CUANTO vale sol")
	assert.Equal(t, intent.Price, got)

	got, _ = b.PredictIntent("stake 5 sol")
	assert.Equal(t, intent.Explain, got)
}

// ==========================
// Run / Compare
// ==========================

type failingPredictor struct{}

func (failingPredictor) PredictIntent(string) (intent.Intent, error) {
	return 0, errors.New("not fitted")
}

func TestRun_PropagatesError(t *testing.T) {
	_, err := Run(failingPredictor{}, createExamples(3))
	assert.Error(t, err)
}

func TestCompare_ModelBeatsBaseline(t *testing.T) {
	examples := corpus.NewGenerator(corpus.DefaultOptions()).Generate()
	train, test := TrainTestSplit(examples, 0.2, rand.New(rand.NewSource(42)))

	m, err := model.Train(train, classifier.DefaultOptions())
	require.NoError(t, err)
	baseline, err := NewKeywordBaseline(nil)
	require.NoError(t, err)

	cmp, err := Compare(m, baseline, test)
	require.NoError(t, err)

	assert.Equal(t, len(test), cmp.Model.Total)
	assert.Equal(t, len(test), cmp.Baseline.Total)
	assert.Greater(t, cmp.Model.Accuracy, 0.7)
	assert.Greater(t, cmp.Baseline.Accuracy, 0.0)
	assert.InDelta(t, cmp.Model.Accuracy-cmp.Baseline.Accuracy, cmp.AccuracyGain(), 1e-12)
}
