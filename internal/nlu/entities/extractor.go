package entities

// Rule extracts a single field. Rules never fail: no match leaves the
// field untouched.
type Rule interface {
	Field() Field
	Apply(text string, into *Entities)
}

// Extractor runs its rules in order against the raw text. It holds no
// trained state and is safe for concurrent use.
type Extractor struct {
	rules []Rule
}

func NewExtractor(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// DefaultRules returns the amount, token, address, duration and risk rules.
func DefaultRules() []Rule {
	return []Rule{
		AmountRule{},
		TokenRule{},
		AddressRule{},
		DurationRule{},
		RiskRule{},
	}
}

func (x *Extractor) Extract(text string) Entities {
	var out Entities
	for _, r := range x.rules {
		r.Apply(text, &out)
	}
	return out
}

var defaultExtractor = NewExtractor()

// Extract runs the default rule set.
func Extract(text string) Entities {
	return defaultExtractor.Extract(text)
}
