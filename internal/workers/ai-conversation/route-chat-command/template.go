package routechatcommand

import (
	"defi-nlu/internal/nlu/entities"
	"defi-nlu/internal/nlu/intent"
)

const (
	ProtocolNative   = "native"
	ProtocolMarinade = "marinade"
	ProtocolBlaze    = "blazestake"
)

type actionSpec struct {
	kind     string
	protocol string
	in, out  entities.Token
}

var actionSpecs = [intent.Count]actionSpec{
	intent.StakeNative:             {kind: "stake", protocol: ProtocolNative, in: entities.TokenSOL},
	intent.StakeMSOL:               {kind: "stake", protocol: ProtocolMarinade, in: entities.TokenSOL, out: entities.TokenMSOL},
	intent.StakeBSOL:               {kind: "stake", protocol: ProtocolBlaze, in: entities.TokenSOL, out: entities.TokenBSOL},
	intent.UnstakeNative:           {kind: "unstake", protocol: ProtocolNative, out: entities.TokenSOL},
	intent.UnstakeMSOL:             {kind: "unstake", protocol: ProtocolMarinade, in: entities.TokenMSOL, out: entities.TokenSOL},
	intent.UnstakeBSOL:             {kind: "unstake", protocol: ProtocolBlaze, in: entities.TokenBSOL, out: entities.TokenSOL},
	intent.Send:                    {kind: "transfer", in: entities.TokenSOL},
	intent.Explain:                 {kind: "explain"},
	intent.Balance:                 {kind: "balance"},
	intent.Price:                   {kind: "price", in: entities.TokenSOL},
	intent.MarketData:              {kind: "market_data"},
	intent.PortfolioAnalysis:       {kind: "portfolio_analysis"},
	intent.PortfolioRecommendation: {kind: "portfolio_recommendation"},
}

// BuildActionTemplate maps an intent and its entities to an action. The
// intent fixes protocol and token direction; for transfers, balance and
// price queries an extracted token overrides the default.
func BuildActionTemplate(in intent.Intent, ents entities.Entities) *ActionTemplate {
	if !in.Valid() {
		return nil
	}
	spec := actionSpecs[in]

	tpl := &ActionTemplate{
		Kind:        spec.kind,
		Protocol:    spec.protocol,
		InputToken:  spec.in,
		OutputToken: spec.out,
		Amount:      ents.Amount,
		Address:     ents.Address,
		Duration:    ents.Duration,
		RiskLevel:   ents.RiskLevel,
	}
	switch in {
	case intent.Send, intent.Balance, intent.Price:
		if ents.Token != "" {
			tpl.InputToken = ents.Token
		}
	}
	return tpl
}
