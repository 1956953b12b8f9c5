package evaluation

import (
	"fmt"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"

	"defi-nlu/internal/nlu/intent"
	"defi-nlu/internal/nlu/textnorm"
)

// KeywordRule fires when every group has at least one keyword present.
type KeywordRule struct {
	Intent intent.Intent
	Groups [][]string
}

var (
	unstakeWords = []string{"unstake", "unstaking", "withdraw", "redeem"}
	stakeWords   = []string{"stake", "staking", "deposit", "delegate"}
	bsolWords    = []string{"bsol", "blaze", "blazestake", "solblaze"}
	msolWords    = []string{"msol", "marinade"}
)

// DefaultKeywordRules are checked in order; the first match wins.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{intent.UnstakeBSOL, [][]string{unstakeWords, bsolWords}},
		{intent.UnstakeMSOL, [][]string{unstakeWords, msolWords}},
		{intent.UnstakeNative, [][]string{unstakeWords}},
		{intent.StakeBSOL, [][]string{stakeWords, bsolWords}},
		{intent.StakeMSOL, [][]string{stakeWords, msolWords}},
		{intent.StakeNative, [][]string{stakeWords}},
		{intent.Send, [][]string{{"send", "transfer", "pay"}}},
		{intent.Balance, [][]string{{"balance", "holdings", "wallet"}}},
		{intent.PortfolioRecommendation, [][]string{{"recommend", "recommendation", "suggest", "should", "advice"}}},
		{intent.PortfolioAnalysis, [][]string{{"portfolio", "allocation", "analyze", "analysis", "diversified"}}},
		{intent.MarketData, [][]string{{"market", "volume", "tvl", "trend", "trending", "apy", "yields"}}},
		{intent.Price, [][]string{{"price", "worth", "cost", "trading"}}},
	}
}

// KeywordBaseline is a pure rule classifier used as a reference point for
// the trained model. Keywords match whole words only.
type KeywordBaseline struct {
	rules    []KeywordRule
	fallback intent.Intent
	matcher  *goahocorasick.Machine
}

// NewKeywordBaseline falls back to EXPLAIN when no rule fires.
func NewKeywordBaseline(rules []KeywordRule) (*KeywordBaseline, error) {
	if len(rules) == 0 {
		rules = DefaultKeywordRules()
	}

	var words []string
	for _, r := range rules {
		for _, g := range r.Groups {
			words = append(words, g...)
		}
	}
	patterns := lo.Map(lo.Uniq(words), func(w string, _ int) []rune {
		return []rune(fold(w))
	})

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("build keyword automaton: %w", err)
	}
	return &KeywordBaseline{rules: rules, fallback: intent.Explain, matcher: m}, nil
}

// PredictIntent implements Predictor; it never fails.
func (b *KeywordBaseline) PredictIntent(text string) (intent.Intent, error) {
	found := b.keywords(text)
	for _, r := range b.rules {
		if lo.EveryBy(r.Groups, func(g []string) bool {
			return lo.SomeBy(g, func(w string) bool { return found[fold(w)] })
		}) {
			return r.Intent, nil
		}
	}
	return b.fallback, nil
}

func (b *KeywordBaseline) keywords(text string) map[string]bool {
	content := []rune(fold(text))
	found := make(map[string]bool)
	if len(content) == 0 {
		return found
	}
	for _, term := range b.matcher.MultiPatternSearch(content, false) {
		start, end := term.Pos, term.Pos+len(term.Word)
		if start > 0 && isWordRune(content[start-1]) {
			continue
		}
		if end < len(content) && isWordRune(content[end]) {
			continue
		}
		found[string(term.Word)] = true
	}
	return found
}

func fold(s string) string {
	return strings.ToLower(textnorm.Fold(s))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
