package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "GZXs9Dy4GzPD3PYZ2pz6ggPYPjDYKE3fFMDVZ8ZdEJ3m"

func amount(v float64) *float64 { return &v }

// ==========================
// Extract
// ==========================

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Entities
	}{
		{
			name:  "stake to msol",
			input: "stake 5 sol to msol",
			want:  Entities{Amount: amount(5), Token: TokenMSOL},
		},
		{
			name:  "bsol wins over sol",
			input: "stake 5 bsol",
			want:  Entities{Amount: amount(5), Token: TokenBSOL},
		},
		{
			name:  "unstake without amount",
			input: "unstake bsol",
			want:  Entities{Token: TokenBSOL},
		},
		{
			name:  "nothing to extract",
			input: "what's my balance",
			want:  Entities{},
		},
		{
			name:  "send with base58 address",
			input: "send 1 sol to " + testAddress,
			want:  Entities{Amount: amount(1), Token: TokenSOL, Address: testAddress},
		},
		{
			name:  "typo and odd casing",
			input: "stak 10 SOl",
			want:  Entities{Amount: amount(10), Token: TokenSOL},
		},
		{
			name:  "decimal amount",
			input: "stake 2.5 sol with marinade",
			want:  Entities{Amount: amount(2.5), Token: TokenMSOL},
		},
		{
			name:  "blaze alias",
			input: "stake 3 sol with blazestake",
			want:  Entities{Amount: amount(3), Token: TokenBSOL},
		},
		{
			name:  "native maps to sol",
			input: "unstake my native stake",
			want:  Entities{Token: TokenSOL},
		},
		{
			name:  "hex address",
			input: "send 0.1 sol to 0x52908400098527886E0F7030069857D2E4169EE7",
			want:  Entities{Amount: amount(0.1), Token: TokenSOL, Address: "0x52908400098527886E0F7030069857D2E4169EE7"},
		},
		{
			name:  "duration and risk",
			input: "recommend a low risk strategy for 6 months",
			want:  Entities{Amount: amount(6), Duration: "6 months", RiskLevel: RiskLow},
		},
		{
			name:  "singular duration",
			input: "plan for 1 Year with HIGH risk",
			want:  Entities{Amount: amount(1), Duration: "1 year", RiskLevel: RiskHigh},
		},
		{
			name:  "substring fallback",
			input: "stake into mysolvault",
			want:  Entities{Token: TokenSOL},
		},
		{
			name:  "first number wins",
			input: "send 3 or 4 sol",
			want:  Entities{Amount: amount(3), Token: TokenSOL},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	inputs := []string{
		"stake 5 sol to msol",
		"send 1 sol to " + testAddress,
		"medium risk portfolio for 2 weeks",
		"",
	}
	for _, in := range inputs {
		assert.Equal(t, Extract(in), Extract(in), in)
	}
}

func TestExtract_AddressDoesNotLeakIntoToken(t *testing.T) {
	// spells "msol" case-insensitively only inside the address
	addr := "7xKXtg2CW87d97TXJSDpbD5jBkheTqmsoLZRuJosgAsU"
	got := Extract("send to " + addr)
	assert.Empty(t, got.Token)
	assert.Equal(t, addr, got.Address)
}

func TestExtract_TooShortAddressIgnored(t *testing.T) {
	got := Extract("send 1 sol to abc123")
	assert.Empty(t, got.Address)
}

// ==========================
// Rules in isolation
// ==========================

func TestDurationRule(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hold for 6 months", "6 months"},
		{"for 2 day", "2 day"},
		{"for 1 years", "1 years"},
		{"01 year", "01 year"},
		{"12MONTHS", "12 months"},
		{"3 Weeks please", "3 weeks"},
		{"in 30 days or so", "30 days"},
		{"daily rewards", ""},
		{"5 dayz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got Entities
			DurationRule{}.Apply(tt.input, &got)
			assert.Equal(t, tt.want, got.Duration)
		})
	}
}

func TestRules_IndependentlyUsable(t *testing.T) {
	x := NewExtractor(RiskRule{})
	got := x.Extract("stake 5 sol, medium risk")
	assert.Equal(t, Entities{RiskLevel: RiskMedium}, got)

	for _, r := range DefaultRules() {
		assert.NotEmpty(t, r.Field())
	}
}

func TestEntities_Has(t *testing.T) {
	e := Entities{Amount: amount(0), Address: testAddress}
	assert.True(t, e.Has(FieldAmount))
	assert.True(t, e.Has(FieldAddress))
	assert.False(t, e.Has(FieldToken))
	assert.False(t, e.Has(FieldDuration))
	assert.False(t, e.Has(FieldRiskLevel))
	assert.False(t, e.Has(Field("other")))
	assert.False(t, e.Empty())
	assert.True(t, Entities{}.Empty())
	assert.Zero(t, Entities{}.AmountValue())
}

func TestEntities_JSON(t *testing.T) {
	data, err := json.Marshal(Entities{Amount: amount(2), Token: TokenBSOL, RiskLevel: RiskHigh})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":2,"token":"bSOL","risk_level":"high"}`, string(data))

	data, err = json.Marshal(Entities{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
