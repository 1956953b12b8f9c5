// internal/nlu/corpus/corpus.go
package corpus

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"defi-nlu/internal/nlu/entities"
	"defi-nlu/internal/nlu/intent"
)

// Example is one labeled training sentence. Examples are never mutated
// after creation.
type Example struct {
	Text      string             `json:"text"`
	Intent    intent.Intent      `json:"intent"`
	Entities  *entities.Entities `json:"entities,omitempty"`
	Augmented bool               `json:"augmented,omitempty"`
}

// Source supplies training examples.
type Source interface {
	Load(ctx context.Context) ([]Example, error)
}

type Options struct {
	TypoRate           float64
	AmountsPerTemplate int
	Seed               int64
}

func DefaultOptions() Options {
	return Options{
		TypoRate:           0.3,
		AmountsPerTemplate: 3,
		Seed:               42,
	}
}

// Generator expands the built-in templates and appends typo variants.
// Output is fully determined by Options.
type Generator struct {
	opts Options
}

func NewGenerator(opts Options) *Generator {
	if opts.AmountsPerTemplate <= 0 {
		opts.AmountsPerTemplate = DefaultOptions().AmountsPerTemplate
	}
	if opts.AmountsPerTemplate > len(amounts) {
		opts.AmountsPerTemplate = len(amounts)
	}
	if opts.TypoRate < 0 {
		opts.TypoRate = 0
	}
	return &Generator{opts: opts}
}

// Base returns the template expansions without typo variants.
func (g *Generator) Base() []Example {
	var out []Example
	for _, in := range intent.All() {
		for ti, tpl := range templates[in] {
			out = append(out, g.expand(in, ti, tpl)...)
		}
	}
	return out
}

// Generate returns the base examples followed by typo-injected copies.
func (g *Generator) Generate() []Example {
	base := g.Base()
	rng := rand.New(rand.NewSource(g.opts.Seed))

	out := make([]Example, 0, len(base)+int(float64(len(base))*g.opts.TypoRate)+1)
	out = append(out, base...)
	for _, ex := range base {
		if rng.Float64() >= g.opts.TypoRate {
			continue
		}
		typo := InjectTypo(rng, ex.Text)
		if typo == ex.Text {
			continue
		}
		out = append(out, Example{
			Text:      typo,
			Intent:    ex.Intent,
			Entities:  ex.Entities,
			Augmented: true,
		})
	}
	return out
}

func (g *Generator) expand(in intent.Intent, ti int, tpl string) []Example {
	hasAmount := strings.Contains(tpl, amountSlot)
	hasAddress := strings.Contains(tpl, addressSlot)

	n := 1
	if hasAmount {
		n = g.opts.AmountsPerTemplate
	} else if hasAddress {
		n = len(addresses)
	}

	out := make([]Example, 0, n)
	for k := 0; k < n; k++ {
		text := tpl
		if hasAmount {
			text = strings.ReplaceAll(text, amountSlot, amounts[(ti*g.opts.AmountsPerTemplate+k)%len(amounts)])
		}
		if hasAddress {
			text = strings.ReplaceAll(text, addressSlot, addresses[(ti+k)%len(addresses)])
		}
		ents := entities.Extract(text)
		ex := Example{Text: text, Intent: in}
		if !ents.Empty() {
			ex.Entities = &ents
		}
		out = append(out, ex)
	}
	return out
}

// Load implements Source.
func (g *Generator) Load(ctx context.Context) ([]Example, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Generate(), nil
}

// InjectTypo applies one random edit (drop, swap, duplicate or case flip) to
// one word of at least three letters. Numbers and addresses are left alone.
func InjectTypo(rng *rand.Rand, text string) string {
	words := strings.Fields(text)
	var candidates []int
	for i, w := range words {
		if len(w) >= 3 && len(w) < 32 && isAlpha(w) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return text
	}

	idx := candidates[rng.Intn(len(candidates))]
	r := []rune(words[idx])
	pos := rng.Intn(len(r))

	switch rng.Intn(4) {
	case 0:
		r = append(r[:pos], r[pos+1:]...)
	case 1:
		if pos == len(r)-1 {
			pos--
		}
		r[pos], r[pos+1] = r[pos+1], r[pos]
	case 2:
		dup := make([]rune, 0, len(r)+1)
		dup = append(dup, r[:pos+1]...)
		r = append(dup, r[pos:]...)
	case 3:
		if unicode.IsUpper(r[pos]) {
			r[pos] = unicode.ToLower(r[pos])
		} else {
			r[pos] = unicode.ToUpper(r[pos])
		}
	}
	words[idx] = string(r)
	return strings.Join(words, " ")
}

func isAlpha(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) && r != '\'' {
			return false
		}
	}
	return true
}

// Sources concatenates the output of several sources in order.
type Sources []Source

func (s Sources) Load(ctx context.Context) ([]Example, error) {
	var out []Example
	for i, src := range s {
		examples, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("corpus source %d: %w", i, err)
		}
		out = append(out, examples...)
	}
	return out, nil
}

// Static serves a fixed example list.
type Static []Example

func (s Static) Load(context.Context) ([]Example, error) {
	return append([]Example(nil), s...), nil
}

// Texts and Labels split examples into parallel slices.
func Texts(examples []Example) []string {
	out := make([]string, len(examples))
	for i, ex := range examples {
		out[i] = ex.Text
	}
	return out
}

func Labels(examples []Example) []intent.Intent {
	out := make([]intent.Intent, len(examples))
	for i, ex := range examples {
		out[i] = ex.Intent
	}
	return out
}
