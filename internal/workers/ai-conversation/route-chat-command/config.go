// internal/workers/ai-conversation/route-chat-command/config.go
package routechatcommand

import "time"

type Config struct {
	// ConfidenceThreshold below which the NLU result is ignored and the
	// message goes to the conversational collaborator.
	ConfidenceThreshold float64
	Timeout             time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ConfidenceThreshold: 0.4,
		Timeout:             2 * time.Second,
	}
}
