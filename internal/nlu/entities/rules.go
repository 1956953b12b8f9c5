package entities

import (
	"regexp"
	"strconv"
	"strings"

	"defi-nlu/internal/nlu/textnorm"
)

// AmountRule takes the first number in the text. Digits inside an address
// placed before the amount win; that is a known limitation.
type AmountRule struct{}

var amountPattern = regexp.MustCompile(`\d+(\.\d+)?`)

func (AmountRule) Field() Field { return FieldAmount }

func (AmountRule) Apply(text string, into *Entities) {
	m := amountPattern.FindString(text)
	if m == "" {
		return
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return
	}
	into.Amount = &v
}

// TokenRule resolves the asset. Families are checked bSOL, mSOL then SOL so
// the generic "sol" never masks a liquid staking token.
type TokenRule struct{}

type tokenFamily struct {
	token Token
	fuzzy *regexp.Regexp
	exact string
}

var tokenFamilies = []tokenFamily{
	{
		token: TokenBSOL,
		fuzzy: regexp.MustCompile(`(?i)\b(?:b-?s[o0]l+|bsl|bso|bosl|blaze(?:stake)?|blaz|blzae|balze|solblaze)\b`),
		exact: "bsol",
	},
	{
		token: TokenMSOL,
		fuzzy: regexp.MustCompile(`(?i)\b(?:m-?s[o0]l+|msl|mso|mosl|marinade|marinad|marnade|mariande|marinde|maranade)\b`),
		exact: "msol",
	},
	{
		token: TokenSOL,
		fuzzy: regexp.MustCompile(`(?i)\b(?:s[o0]l+|sl|slo|solana|solanna|solan|slana|native)\b`),
		exact: "sol",
	},
}

func (TokenRule) Field() Field { return FieldToken }

func (TokenRule) Apply(text string, into *Entities) {
	folded := textnorm.Fold(text)
	for _, fam := range tokenFamilies {
		if fam.fuzzy.MatchString(folded) {
			into.Token = fam.token
			return
		}
	}
	// Addresses are random base58 and may spell a token name by chance.
	lower := strings.ToLower(addressPattern.ReplaceAllString(folded, " "))
	for _, fam := range tokenFamilies {
		if strings.Contains(lower, fam.exact) {
			into.Token = fam.token
			return
		}
	}
}

// AddressRule accepts a base58 account key or a 0x-prefixed hex address.
// The leftmost match wins.
type AddressRule struct{}

var addressPattern = regexp.MustCompile(`\b(?:[1-9A-HJ-NP-Za-km-z]{32,44}|0x[a-fA-F0-9]{40})\b`)

func (AddressRule) Field() Field { return FieldAddress }

func (AddressRule) Apply(text string, into *Entities) {
	if m := addressPattern.FindString(text); m != "" {
		into.Address = m
	}
}

// DurationRule matches an integer followed by a calendar unit. The unit is
// lowercased but kept as written, so "2 day" stays "2 day".
type DurationRule struct{}

var durationPattern = regexp.MustCompile(`(?i)\b(\d+)\s*((?:day|week|month|year)s?)\b`)

func (DurationRule) Field() Field { return FieldDuration }

func (DurationRule) Apply(text string, into *Entities) {
	if m := durationPattern.FindStringSubmatch(text); m != nil {
		into.Duration = m[1] + " " + strings.ToLower(m[2])
	}
}

// RiskRule matches low, medium or high, optionally followed by "risk".
type RiskRule struct{}

var riskPattern = regexp.MustCompile(`(?i)\b(low|medium|high)(?:\s+risk)?\b`)

func (RiskRule) Field() Field { return FieldRiskLevel }

func (RiskRule) Apply(text string, into *Entities) {
	if m := riskPattern.FindStringSubmatch(text); m != nil {
		into.RiskLevel = RiskLevel(strings.ToLower(m[1]))
	}
}
