// Package evaluation scores intent predictions against labels. Every
// function here is pure and works on parallel prediction/label slices.
package evaluation

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"defi-nlu/internal/nlu/intent"
)

var ErrLengthMismatch = errors.New("EVALUATION_LENGTH_MISMATCH")

func checkLengths(predictions, labels []intent.Intent) error {
	if len(predictions) != len(labels) {
		return fmt.Errorf("%w: %d predictions, %d labels", ErrLengthMismatch, len(predictions), len(labels))
	}
	return nil
}

// Accuracy is the fraction of exact matches; 0 for empty input.
func Accuracy(predictions, labels []intent.Intent) (float64, error) {
	if err := checkLengths(predictions, labels); err != nil {
		return 0, err
	}
	if len(labels) == 0 {
		return 0, nil
	}
	correct := 0
	for i := range labels {
		if predictions[i] == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels)), nil
}

// ConfusionMatrix maps actual intent to predicted intent to count.
type ConfusionMatrix map[intent.Intent]map[intent.Intent]int

func NewConfusionMatrix(predictions, labels []intent.Intent) (ConfusionMatrix, error) {
	if err := checkLengths(predictions, labels); err != nil {
		return nil, err
	}
	cm := make(ConfusionMatrix)
	for i, actual := range labels {
		row, ok := cm[actual]
		if !ok {
			row = make(map[intent.Intent]int)
			cm[actual] = row
		}
		row[predictions[i]]++
	}
	return cm, nil
}

func (cm ConfusionMatrix) Count(actual, predicted intent.Intent) int {
	return cm[actual][predicted]
}

// Classes lists every intent that occurs as an actual or predicted label,
// in declaration order.
func (cm ConfusionMatrix) Classes() []intent.Intent {
	var seen [intent.Count]bool
	for actual, row := range cm {
		seen[actual] = true
		for predicted := range row {
			seen[predicted] = true
		}
	}
	return lo.Filter(intent.All(), func(in intent.Intent, _ int) bool { return seen[in] })
}

type ClassMetrics struct {
	Intent    intent.Intent `json:"intent"`
	Precision float64       `json:"precision"`
	Recall    float64       `json:"recall"`
	F1        float64       `json:"f1"`
	Support   int           `json:"support"`
}

type Averages struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// PerClass derives precision, recall and F1 for each class in the matrix.
// A zero denominator yields 0.
func PerClass(cm ConfusionMatrix) []ClassMetrics {
	classes := cm.Classes()
	out := make([]ClassMetrics, 0, len(classes))
	for _, c := range classes {
		tp := cm.Count(c, c)
		var fp, fn int
		for actual, row := range cm {
			for predicted, n := range row {
				switch {
				case actual == c && predicted != c:
					fn += n
				case actual != c && predicted == c:
					fp += n
				}
			}
		}

		m := ClassMetrics{
			Intent:    c,
			Precision: ratio(tp, tp+fp),
			Recall:    ratio(tp, tp+fn),
			Support:   tp + fn,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		out = append(out, m)
	}
	return out
}

// MacroAverage is the unweighted mean across classes.
func MacroAverage(metrics []ClassMetrics) Averages {
	if len(metrics) == 0 {
		return Averages{}
	}
	n := float64(len(metrics))
	return Averages{
		Precision: lo.SumBy(metrics, func(m ClassMetrics) float64 { return m.Precision }) / n,
		Recall:    lo.SumBy(metrics, func(m ClassMetrics) float64 { return m.Recall }) / n,
		F1:        lo.SumBy(metrics, func(m ClassMetrics) float64 { return m.F1 }) / n,
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Report bundles every metric for one evaluation run.
type Report struct {
	Total     int             `json:"total"`
	Accuracy  float64         `json:"accuracy"`
	Confusion ConfusionMatrix `json:"confusion"`
	PerClass  []ClassMetrics  `json:"perClass"`
	Macro     Averages        `json:"macro"`
}

func Evaluate(predictions, labels []intent.Intent) (*Report, error) {
	acc, err := Accuracy(predictions, labels)
	if err != nil {
		return nil, err
	}
	cm, err := NewConfusionMatrix(predictions, labels)
	if err != nil {
		return nil, err
	}
	per := PerClass(cm)
	return &Report{
		Total:     len(labels),
		Accuracy:  acc,
		Confusion: cm,
		PerClass:  per,
		Macro:     MacroAverage(per),
	}, nil
}
