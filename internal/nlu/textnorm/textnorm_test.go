package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "lowercases", input: "Stake 5 SOL", want: []string{"stake", "5", "sol"}},
		{name: "strips punctuation", input: "what's my balance?", want: []string{"whats", "my", "balance"}},
		{name: "decimal collapses", input: "send 2.5 sol", want: []string{"send", "25", "sol"}},
		{name: "extra whitespace", input: "  unstake \t bsol \n", want: []string{"unstake", "bsol"}},
		{name: "accents folded", input: "stäke sól", want: []string{"stake", "sol"}},
		{name: "underscore is a word char", input: "stake_native", want: []string{"stake_native"}},
		{name: "empty", input: "", want: []string{}},
		{name: "only punctuation", input: "?!...", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "solana", Fold("sôlána"))
	assert.Equal(t, "plain", Fold("plain"))
}
