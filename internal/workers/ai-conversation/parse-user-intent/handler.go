package parseuserintent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "defi-nlu/internal/common/errors"
	"defi-nlu/internal/common/metrics"
	"defi-nlu/internal/common/validation"
	"defi-nlu/internal/nlu/service"
)

const (
	TaskType = "parse-user-intent"
)

var (
	ErrIntentParsingFailed = errors.New("INTENT_PARSING_FAILED")
	ErrEmptyMessage        = errors.New("EMPTY_MESSAGE")
	ErrInvalidInput        = errors.New("INVALID_INPUT")
)

var schema = validation.MustCompile(inputSchema)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Processor classifies one chat message. *service.Service implements it.
type Processor interface {
	ProcessInput(ctx context.Context, text string) (*service.Result, error)
}

type Handler struct {
	config     *Config
	processor  Processor
	logger     Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, processor Processor, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		processor:  processor,
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

	input, err := decodeInput(job.Variables)
	if err == nil {
		var output *Output
		output, err = h.execute(ctx, input)
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
	// ctx may already be past its deadline; the failure must still reach the broker
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func decodeInput(variables string) (*Input, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &raw); err != nil {
		return nil, fmt.Errorf("%w: parse variables: %v", ErrInvalidInput, err)
	}
	if result := schema.ValidateInput(raw); !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, ErrEmptyMessage
	}

	result, err := h.processor.ProcessInput(ctx, input.Message)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntentParsingFailed, err)
	}

	fields := map[string]interface{}{
		"intent":     result.Intent.String(),
		"confidence": result.Confidence,
		"valid":      result.Valid,
	}
	if input.UserID != "" {
		fields["userId"] = input.UserID
	}
	h.logger.Info("intent parsed successfully", fields)

	return &Output{NLU: result}, nil
}

// toStandardError keeps the code of a service error and classifies the rest.
func toStandardError(err error) *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	switch {
	case errors.As(err, &stdErr):
		return stdErr
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyMessage):
		return apperrors.NewInvalidInputError(err.Error())
	default:
		return apperrors.NewIntentParsingFailedError(err)
	}
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
