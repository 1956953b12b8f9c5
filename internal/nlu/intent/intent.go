// internal/nlu/intent/intent.go
package intent

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownIntent = errors.New("UNKNOWN_INTENT")

// Intent is the closed set of actions a chat message can be mapped to.
// Values are dense so per-intent tables can be plain arrays.
type Intent int

const (
	StakeNative Intent = iota
	StakeMSOL
	StakeBSOL
	UnstakeNative
	UnstakeMSOL
	UnstakeBSOL
	Send
	Explain
	Balance
	Price
	MarketData
	PortfolioAnalysis
	PortfolioRecommendation
)

// Count is the number of defined intents.
const Count = int(PortfolioRecommendation) + 1

var names = [Count]string{
	StakeNative:             "STAKE_NATIVE",
	StakeMSOL:               "STAKE_MSOL",
	StakeBSOL:               "STAKE_BSOL",
	UnstakeNative:           "UNSTAKE_NATIVE",
	UnstakeMSOL:             "UNSTAKE_MSOL",
	UnstakeBSOL:             "UNSTAKE_BSOL",
	Send:                    "SEND",
	Explain:                 "EXPLAIN",
	Balance:                 "BALANCE",
	Price:                   "PRICE",
	MarketData:              "MARKET_DATA",
	PortfolioAnalysis:       "PORTFOLIO_ANALYSIS",
	PortfolioRecommendation: "PORTFOLIO_RECOMMENDATION",
}

// All returns every intent in declaration order.
func All() []Intent {
	out := make([]Intent, Count)
	for i := range out {
		out[i] = Intent(i)
	}
	return out
}

func (i Intent) Valid() bool {
	return i >= 0 && int(i) < Count
}

func (i Intent) String() string {
	if !i.Valid() {
		return fmt.Sprintf("Intent(%d)", int(i))
	}
	return names[i]
}

// IsStake reports whether the intent belongs to the staking family.
func (i Intent) IsStake() bool {
	return i == StakeNative || i == StakeMSOL || i == StakeBSOL
}

// IsUnstake reports whether the intent belongs to the unstaking family.
func (i Intent) IsUnstake() bool {
	return i == UnstakeNative || i == UnstakeMSOL || i == UnstakeBSOL
}

// Parse resolves a wire name such as "STAKE_MSOL". Matching is case-insensitive.
func Parse(s string) (Intent, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range names {
		if name == key {
			return Intent(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIntent, s)
}

func (i Intent) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIntent, int(i))
	}
	return []byte(names[i]), nil
}

func (i *Intent) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
