// internal/workers/ai-conversation/llm-synthesis/handler_test.go
package llmsynthesis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "defi-nlu/internal/common/errors"
)

// ==========================
// Test Logger Implementation
// ==========================

// TestLogger implements the Logger interface for testing
type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		t:      t,
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return &TestLogger{t: l.t, fields: l.mergeFields(fields)}
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	allFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}
	return allFields
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		GenAIBaseURL: "http://localhost:8080",
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		MaxTokens:    500,
		Temperature:  0.7,
	}
}

func createLLMAPIResponse(text string, confidence float64, sources []string) string {
	response := map[string]interface{}{
		"text":       text,
		"confidence": confidence,
		"sources":    sources,
	}
	data, _ := json.Marshal(response)
	return string(data)
}

func createGenAIServer(t *testing.T, status int, body string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name         string
		input        *Input
		apiResponse  string
		expectedText string
		expectedConf float64
		promptHint   bool
	}{
		{
			name:         "plain question",
			input:        &Input{Question: "what is liquid staking?"},
			apiResponse:  createLLMAPIResponse("Liquid staking gives you a token such as mSOL for your staked SOL.", 0.9, []string{"docs"}),
			expectedText: "Liquid staking gives you a token such as mSOL for your staked SOL.",
			expectedConf: 0.9,
		},
		{
			name:         "question with low confidence guess",
			input:        &Input{Question: "is blaze better than marinade", Intent: "EXPLAIN", Confidence: 0.31},
			apiResponse:  createLLMAPIResponse("Both are liquid staking protocols.", 0.7, nil),
			expectedText: "Both are liquid staking protocols.",
			expectedConf: 0.7,
			promptHint:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/ai/generate", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

				var reqBody map[string]interface{}
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				prompt, _ := reqBody["prompt"].(string)
				assert.Contains(t, prompt, tt.input.Question)
				if tt.promptHint {
					assert.Contains(t, prompt, "EXPLAIN (0.31)")
				} else {
					assert.NotContains(t, prompt, "classifier guess")
				}
				assert.Equal(t, float64(500), reqBody["max_tokens"])
				assert.Equal(t, 0.7, reqBody["temperature"])

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.apiResponse))
			}))
			defer server.Close()

			config := createTestConfig()
			config.GenAIBaseURL = server.URL
			config.APIKey = "secret"
			handler := NewHandler(config, NewTestLogger(t))

			output, err := handler.execute(context.Background(), tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedText, output.LLMResponse)
			assert.Equal(t, tt.expectedConf, output.LLMConfidence)
		})
	}
}

func TestHandler_Execute_EmptyQuestion(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	output, err := handler.execute(context.Background(), &Input{Question: "  \n"})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, toStandardError(err).Code)
}

func TestHandler_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	config := createTestConfig()
	config.GenAIBaseURL = server.URL
	handler := NewHandler(config, NewTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	output, err := handler.execute(ctx, &Input{Question: "Test"})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrLLMTimeout)
	assert.Equal(t, apperrors.ErrCodeLLMTimeout, toStandardError(err).Code)
}

func TestHandler_Execute_APIError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"Internal Server Error", http.StatusInternalServerError},
		{"Bad Gateway", http.StatusBadGateway},
		{"Service Unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := createGenAIServer(t, tt.statusCode, "")

			config := createTestConfig()
			config.GenAIBaseURL = server.URL
			handler := NewHandler(config, NewTestLogger(t))

			output, err := handler.execute(context.Background(), &Input{Question: "Test"})

			assert.Nil(t, output)
			assert.ErrorIs(t, err, ErrLLMSynthesisFailed)
			assert.Equal(t, apperrors.ErrCodeLLMSynthesisFailed, toStandardError(err).Code)
		})
	}
}

func TestHandler_Execute_MalformedResponse(t *testing.T) {
	server := createGenAIServer(t, http.StatusOK, "{not json")

	config := createTestConfig()
	config.GenAIBaseURL = server.URL
	handler := NewHandler(config, NewTestLogger(t))

	_, err := handler.execute(context.Background(), &Input{Question: "Test"})
	assert.ErrorIs(t, err, ErrLLMSynthesisFailed)
}

func TestHandler_Execute_EmptyResponse(t *testing.T) {
	server := createGenAIServer(t, http.StatusOK, createLLMAPIResponse("", 0.5, nil))

	config := createTestConfig()
	config.GenAIBaseURL = server.URL
	handler := NewHandler(config, NewTestLogger(t))

	output, err := handler.execute(context.Background(), &Input{Question: "Test"})

	require.NoError(t, err)
	assert.Equal(t, fallbackResponse, output.LLMResponse)
	assert.Equal(t, fallbackConfidence, output.LLMConfidence)
}

func TestHandler_Execute_InvalidConfidence(t *testing.T) {
	tests := []struct {
		name               string
		confidence         float64
		expectedConfidence float64
	}{
		{"negative confidence", -0.5, 0.5},
		{"confidence > 1", 1.5, 0.5},
		{"valid confidence", 0.85, 0.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := createGenAIServer(t, http.StatusOK, createLLMAPIResponse("Valid response", tt.confidence, nil))

			config := createTestConfig()
			config.GenAIBaseURL = server.URL
			handler := NewHandler(config, NewTestLogger(t))

			output, err := handler.execute(context.Background(), &Input{Question: "Test"})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedConfidence, output.LLMConfidence)
		})
	}
}

func TestHandler_Execute_RetryLogic(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		// every attempt must resend the full body
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["prompt"])

		if attempts.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(createLLMAPIResponse("Success after retry", 0.8, nil)))
	}))
	defer server.Close()

	config := createTestConfig()
	config.GenAIBaseURL = server.URL
	config.MaxRetries = 2
	handler := NewHandler(config, NewTestLogger(t))

	output, err := handler.execute(context.Background(), &Input{Question: "Test"})

	require.NoError(t, err)
	assert.Equal(t, "Success after retry", output.LLMResponse)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestHandler_Execute_RetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	config := createTestConfig()
	config.GenAIBaseURL = server.URL
	config.MaxRetries = 2
	handler := NewHandler(config, NewTestLogger(t))

	_, err := handler.execute(context.Background(), &Input{Question: "Test"})

	assert.ErrorIs(t, err, ErrLLMSynthesisFailed)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, int32(3), attempts.Load())
}

func TestHandler_BuildPrompt(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	prompt := handler.buildPrompt(&Input{Question: "how do validators earn rewards"})

	assert.Contains(t, prompt, "DeFi assistant")
	assert.Contains(t, prompt, "User Message: how do validators earn rewards")
	assert.Contains(t, prompt, "Never claim that a transaction was executed")
	assert.NotContains(t, prompt, "classifier guess")
}
