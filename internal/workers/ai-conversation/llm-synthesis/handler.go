package llmsynthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "defi-nlu/internal/common/errors"
	"defi-nlu/internal/common/metrics"
)

const (
	TaskType = "llm-synthesis"

	fallbackResponse   = "I don't have enough information to answer that question."
	fallbackConfidence = 0.1
)

var (
	ErrLLMTimeout         = errors.New("LLM_TIMEOUT")
	ErrLLMSynthesisFailed = errors.New("LLM_SYNTHESIS_FAILED")
	ErrEmptyQuestion      = errors.New("EMPTY_QUESTION")
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config     *Config
	client     *http.Client
	logger     Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config: config,
		// no client timeout; the job context bounds every attempt
		client:     &http.Client{},
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	err := json.Unmarshal([]byte(job.Variables), &input)
	if err != nil {
		err = fmt.Errorf("parse input: %w", err)
	} else {
		var output *Output
		output, err = h.execute(ctx, &input)
		if err == nil {
			h.completeJob(client, job, output)
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
			return
		}
	}

	stdErr := toStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func toStandardError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrLLMTimeout):
		return apperrors.NewLLMTimeoutError()
	case errors.Is(err, ErrLLMSynthesisFailed):
		return apperrors.NewLLMSynthesisFailedError(err)
	default:
		return apperrors.NewInvalidInputError(err.Error())
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, ErrEmptyQuestion
	}

	body, err := json.Marshal(map[string]interface{}{
		"prompt":      h.buildPrompt(input),
		"max_tokens":  h.config.MaxTokens,
		"temperature": h.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrLLMTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.GenAIBaseURL+"/api/ai/generate", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if h.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
		}

		resp, lastErr = h.client.Do(req)
		if ctx.Err() != nil {
			return nil, ErrLLMTimeout
		}
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
		h.logger.Warn("GenAI call failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		})
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, lastErr)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Text       string   `json:"text"`
		Confidence float64  `json:"confidence"`
		Sources    []string `json:"sources"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrLLMSynthesisFailed, err)
	}

	if strings.TrimSpace(apiResponse.Text) == "" {
		apiResponse.Text = fallbackResponse
		apiResponse.Confidence = fallbackConfidence
	}
	if apiResponse.Confidence < 0.0 || apiResponse.Confidence > 1.0 {
		apiResponse.Confidence = 0.5
	}

	h.logger.Info("LLM synthesis completed", map[string]interface{}{
		"confidence":  apiResponse.Confidence,
		"sourceCount": len(apiResponse.Sources),
	})

	return &Output{
		LLMResponse:   apiResponse.Text,
		LLMConfidence: apiResponse.Confidence,
		Sources:       apiResponse.Sources,
	}, nil
}

func (h *Handler) buildPrompt(input *Input) string {
	var parts []string

	parts = append(parts, "You are a DeFi assistant for a Solana wallet. You explain staking, liquid staking tokens (mSOL, bSOL), transfers and market data in plain language.")
	parts = append(parts, fmt.Sprintf("\nUser Message: %s", input.Question))

	if input.Intent != "" {
		parts = append(parts, fmt.Sprintf("\nCommand classifier guess (low confidence, may be wrong): %s (%.2f)", input.Intent, input.Confidence))
	}

	parts = append(parts, "\nInstructions:")
	parts = append(parts, "- Never claim that a transaction was executed")
	parts = append(parts, "- If the user wants to act, tell them the exact command to type, e.g. \"stake 5 sol to msol\"")
	parts = append(parts, "- If you are unsure, say so clearly")
	parts = append(parts, "- Keep the response concise")
	parts = append(parts, "- Return confidence score between 0.0 and 1.0")

	parts = append(parts, "\nAnswer:")

	return strings.Join(parts, "\n")
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
