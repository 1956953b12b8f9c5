// internal/workers/ai-conversation/parse-user-intent/models.go
package parseuserintent

import "defi-nlu/internal/nlu/service"

type Input struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

// Output carries the NLU result under "nlu" so route-chat-command can read
// it from the process variables.
type Output struct {
	NLU *service.Result `json:"nlu"`
}

const inputSchema = `{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message": {"type": "string", "minLength": 1, "maxLength": 2000},
		"userId": {"type": "string"}
	}
}`
