package evaluation

import (
	"math"
	"math/rand"

	"defi-nlu/internal/nlu/corpus"
)

const DefaultTestFraction = 0.2

// TrainTestSplit shuffles a copy of examples and holds out fraction of them
// for testing. Fractions outside (0, 1) fall back to DefaultTestFraction.
// Classes are not stratified, so a small class may be missing from one side.
func TrainTestSplit(examples []corpus.Example, fraction float64, rng *rand.Rand) (train, test []corpus.Example) {
	if fraction <= 0 || fraction >= 1 || math.IsNaN(fraction) {
		fraction = DefaultTestFraction
	}

	shuffled := make([]corpus.Example, len(examples))
	copy(shuffled, examples)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := len(shuffled)
	if n < 2 {
		return shuffled, nil
	}
	testN := int(math.Round(float64(n) * fraction))
	if testN < 1 {
		testN = 1
	}
	if testN > n-1 {
		testN = n - 1
	}
	return shuffled[testN:], shuffled[:testN]
}
