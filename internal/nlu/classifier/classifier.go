// internal/nlu/classifier/classifier.go
package classifier

import (
	"errors"
	"fmt"
	"math"

	"defi-nlu/internal/nlu/intent"
)

var (
	ErrNotFitted         = errors.New("CLASSIFIER_NOT_FITTED")
	ErrEmptyTrainingSet  = errors.New("CLASSIFIER_EMPTY_TRAINING_SET")
	ErrDimensionMismatch = errors.New("CLASSIFIER_DIMENSION_MISMATCH")
	ErrInvalidLabel      = errors.New("CLASSIFIER_INVALID_LABEL")
)

// Options controls training. EarlyStopTolerance of zero keeps the fixed
// epoch count; a positive value stops a class once the mean absolute error
// moves less than the tolerance between two epochs.
type Options struct {
	Epochs             int
	LearningRate       float64
	EarlyStopTolerance float64
}

func DefaultOptions() Options {
	return Options{
		Epochs:       100,
		LearningRate: 0.01,
	}
}

type Prediction struct {
	Intent     intent.Intent `json:"intent"`
	Confidence float64       `json:"confidence"`
}

// ClassWeights is the exported form of one binary model.
type ClassWeights struct {
	Intent  intent.Intent
	Weights []float64
	Bias    float64
}

// Classifier is a one-vs-rest logistic regression. Weight storage is indexed
// by intent; only intents observed during Fit take part in prediction.
type Classifier struct {
	opts      Options
	dim       int
	weights   [intent.Count][]float64
	bias      [intent.Count]float64
	epochsRun [intent.Count]int
	classes   []intent.Intent
}

func New(opts Options) *Classifier {
	if opts.Epochs <= 0 {
		opts.Epochs = DefaultOptions().Epochs
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultOptions().LearningRate
	}
	return &Classifier{opts: opts}
}

// Fit trains one binary model per distinct label with per-sample stochastic
// gradient ascent, visiting samples in input order every epoch.
func (c *Classifier) Fit(X [][]float64, y []intent.Intent) error {
	if len(X) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d samples but %d labels", ErrDimensionMismatch, len(X), len(y))
	}

	dim := len(X[0])
	var classes []intent.Intent
	var seen [intent.Count]bool
	for i, label := range y {
		if !label.Valid() {
			return fmt.Errorf("%w: %d at sample %d", ErrInvalidLabel, int(label), i)
		}
		if len(X[i]) != dim {
			return fmt.Errorf("%w: sample %d has %d features, want %d", ErrDimensionMismatch, i, len(X[i]), dim)
		}
		if !seen[label] {
			seen[label] = true
			classes = append(classes, label)
		}
	}

	var weights [intent.Count][]float64
	var bias [intent.Count]float64
	var epochsRun [intent.Count]int
	for _, class := range classes {
		weights[class], bias[class], epochsRun[class] = c.trainBinary(X, y, class, dim)
	}

	c.dim = dim
	c.weights = weights
	c.bias = bias
	c.epochsRun = epochsRun
	c.classes = classes
	return nil
}

func (c *Classifier) trainBinary(X [][]float64, y []intent.Intent, class intent.Intent, dim int) ([]float64, float64, int) {
	w := make([]float64, dim)
	b := 0.0
	lr := c.opts.LearningRate
	prevLoss := math.Inf(1)

	epoch := 0
	for epoch < c.opts.Epochs {
		epoch++
		totalErr := 0.0
		for i, x := range X {
			target := 0.0
			if y[i] == class {
				target = 1.0
			}
			errVal := target - sigmoid(dot(w, x)+b)
			for j, xj := range x {
				if xj != 0 {
					w[j] += lr * errVal * xj
				}
			}
			b += lr * errVal
			totalErr += math.Abs(errVal)
		}

		if c.opts.EarlyStopTolerance > 0 {
			loss := totalErr / float64(len(X))
			if math.Abs(prevLoss-loss) < c.opts.EarlyStopTolerance {
				break
			}
			prevLoss = loss
		}
	}
	return w, b, epoch
}

// Predict returns the intent whose binary model scores highest.
func (c *Classifier) Predict(x []float64) (intent.Intent, error) {
	p, err := c.PredictWithConfidence(x)
	if err != nil {
		return 0, err
	}
	return p.Intent, nil
}

// PredictWithConfidence returns the winning intent with its raw sigmoid
// score. Scores across classes are not normalized. Ties go to the class
// seen first during Fit.
func (c *Classifier) PredictWithConfidence(x []float64) (Prediction, error) {
	if len(c.classes) == 0 {
		return Prediction{}, ErrNotFitted
	}
	if len(x) != c.dim {
		return Prediction{}, fmt.Errorf("%w: got %d features, want %d", ErrDimensionMismatch, len(x), c.dim)
	}

	first := c.classes[0]
	best := Prediction{Intent: first, Confidence: sigmoid(dot(c.weights[first], x) + c.bias[first])}
	for _, class := range c.classes[1:] {
		score := sigmoid(dot(c.weights[class], x) + c.bias[class])
		if score > best.Confidence {
			best = Prediction{Intent: class, Confidence: score}
		}
	}
	return best, nil
}

func (c *Classifier) Fitted() bool { return len(c.classes) > 0 }

// Classes returns the trained intents in first-seen order.
func (c *Classifier) Classes() []intent.Intent {
	return append([]intent.Intent(nil), c.classes...)
}

func (c *Classifier) Dimension() int { return c.dim }

// EpochsRun reports how many epochs the given class trained for.
func (c *Classifier) EpochsRun(class intent.Intent) int {
	if !class.Valid() {
		return 0
	}
	return c.epochsRun[class]
}

// Export copies the trained weights in class order.
func (c *Classifier) Export() []ClassWeights {
	out := make([]ClassWeights, 0, len(c.classes))
	for _, class := range c.classes {
		out = append(out, ClassWeights{
			Intent:  class,
			Weights: append([]float64(nil), c.weights[class]...),
			Bias:    c.bias[class],
		})
	}
	return out
}

// Restore builds a fitted classifier from exported weights.
func Restore(opts Options, classes []ClassWeights) (*Classifier, error) {
	if len(classes) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	c := New(opts)
	c.dim = len(classes[0].Weights)
	var seen [intent.Count]bool
	for _, cw := range classes {
		if !cw.Intent.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidLabel, int(cw.Intent))
		}
		if seen[cw.Intent] {
			return nil, fmt.Errorf("%w: duplicate class %s", ErrInvalidLabel, cw.Intent)
		}
		if len(cw.Weights) != c.dim {
			return nil, fmt.Errorf("%w: class %s has %d weights, want %d", ErrDimensionMismatch, cw.Intent, len(cw.Weights), c.dim)
		}
		seen[cw.Intent] = true
		c.weights[cw.Intent] = append([]float64(nil), cw.Weights...)
		c.bias[cw.Intent] = cw.Bias
		c.classes = append(c.classes, cw.Intent)
	}
	return c, nil
}

func dot(w, x []float64) float64 {
	sum := 0.0
	for i, xi := range x {
		sum += w[i] * xi
	}
	return sum
}

// sigmoid branches on the sign of z so exp never overflows.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
