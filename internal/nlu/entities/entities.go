// internal/nlu/entities/entities.go
package entities

// Field names a slot an extractor rule can fill.
type Field string

const (
	FieldAmount    Field = "amount"
	FieldToken     Field = "token"
	FieldAddress   Field = "address"
	FieldDuration  Field = "duration"
	FieldRiskLevel Field = "risk_level"
)

type Token string

const (
	TokenSOL  Token = "SOL"
	TokenMSOL Token = "mSOL"
	TokenBSOL Token = "bSOL"
	// TokenNative is part of the token vocabulary but no rule emits it;
	// "native" resolves to SOL.
	TokenNative Token = "NATIVE"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Entities holds the slots pulled from one message. Every field is optional.
type Entities struct {
	Amount    *float64  `json:"amount,omitempty"`
	Token     Token     `json:"token,omitempty"`
	Address   string    `json:"address,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	RiskLevel RiskLevel `json:"risk_level,omitempty"`
}

// Has reports whether the given field was extracted.
func (e Entities) Has(f Field) bool {
	switch f {
	case FieldAmount:
		return e.Amount != nil
	case FieldToken:
		return e.Token != ""
	case FieldAddress:
		return e.Address != ""
	case FieldDuration:
		return e.Duration != ""
	case FieldRiskLevel:
		return e.RiskLevel != ""
	}
	return false
}

// Empty reports whether no field was extracted.
func (e Entities) Empty() bool {
	return e.Amount == nil && e.Token == "" && e.Address == "" && e.Duration == "" && e.RiskLevel == ""
}

// AmountValue returns the amount or zero when absent.
func (e Entities) AmountValue() float64 {
	if e.Amount == nil {
		return 0
	}
	return *e.Amount
}
