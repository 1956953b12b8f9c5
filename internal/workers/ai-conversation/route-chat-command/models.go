// internal/workers/ai-conversation/route-chat-command/models.go
package routechatcommand

import (
	"defi-nlu/internal/nlu/entities"
	"defi-nlu/internal/nlu/service"
)

type Route string

const (
	RouteAction        Route = "action"
	RouteClarification Route = "clarification"
	RouteConversation  Route = "conversation"
)

type Input struct {
	NLU *service.Result `json:"nlu"`
}

type Output struct {
	Route      Route           `json:"route"`
	Intent     string          `json:"intent"`
	Confidence float64         `json:"confidence"`
	Action     *ActionTemplate `json:"action,omitempty"`
	// Reply is shown to the user verbatim on the clarification route.
	Reply string `json:"reply,omitempty"`
	// Question feeds llm-synthesis on the conversation route.
	Question string `json:"question,omitempty"`
}

// ActionTemplate is the financial action a confident, complete command maps to.
type ActionTemplate struct {
	Kind        string             `json:"kind"`
	Protocol    string             `json:"protocol,omitempty"`
	InputToken  entities.Token     `json:"inputToken,omitempty"`
	OutputToken entities.Token     `json:"outputToken,omitempty"`
	Amount      *float64           `json:"amount,omitempty"`
	Address     string             `json:"address,omitempty"`
	Duration    string             `json:"duration,omitempty"`
	RiskLevel   entities.RiskLevel `json:"riskLevel,omitempty"`
}

const inputSchema = `{
	"type": "object",
	"required": ["nlu"],
	"properties": {
		"nlu": {
			"type": "object",
			"required": ["intent", "confidence", "valid", "originalText"],
			"properties": {
				"intent": {"type": "string", "pattern": "^[A-Z_]+$"},
				"confidence": {"type": "number", "minimum": 0, "maximum": 1},
				"valid": {"type": "boolean"},
				"errorMessage": {"type": "string"},
				"originalText": {"type": "string"},
				"entities": {"type": "object"}
			}
		}
	}
}`
