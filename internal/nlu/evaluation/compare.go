package evaluation

import (
	"fmt"

	"github.com/samber/lo"

	"defi-nlu/internal/nlu/corpus"
	"defi-nlu/internal/nlu/intent"
)

// Predictor maps text to a single intent. *model.Model and
// *KeywordBaseline both satisfy it.
type Predictor interface {
	PredictIntent(text string) (intent.Intent, error)
}

// Run predicts every test example and scores the result.
func Run(p Predictor, test []corpus.Example) (*Report, error) {
	predictions := make([]intent.Intent, len(test))
	for i, ex := range test {
		got, err := p.PredictIntent(ex.Text)
		if err != nil {
			return nil, fmt.Errorf("predict example %d: %w", i, err)
		}
		predictions[i] = got
	}
	return Evaluate(predictions, lo.Map(test, func(ex corpus.Example, _ int) intent.Intent { return ex.Intent }))
}

type Comparison struct {
	Model    *Report `json:"model"`
	Baseline *Report `json:"baseline"`
}

// AccuracyGain is model accuracy minus baseline accuracy.
func (c Comparison) AccuracyGain() float64 {
	return c.Model.Accuracy - c.Baseline.Accuracy
}

// Compare scores the model and the baseline on the same held-out set.
func Compare(m, baseline Predictor, test []corpus.Example) (*Comparison, error) {
	mr, err := Run(m, test)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	br, err := Run(baseline, test)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	return &Comparison{Model: mr, Baseline: br}, nil
}
