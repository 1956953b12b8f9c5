// internal/workers/ai-conversation/llm-synthesis/models.go
package llmsynthesis

// Input is the conversation-route output of route-chat-command.
type Input struct {
	Question string `json:"question"`
	// Intent and Confidence are the low-confidence NLU guess, passed on as a hint.
	Intent     string  `json:"intent,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

type Output struct {
	LLMResponse   string   `json:"llmResponse"`
	LLMConfidence float64  `json:"llmConfidence"`
	Sources       []string `json:"sources,omitempty"`
}
