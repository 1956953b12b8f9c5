package routechatcommand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "defi-nlu/internal/common/errors"
	"defi-nlu/internal/common/metrics"
	"defi-nlu/internal/common/validation"
	"defi-nlu/internal/nlu/service"
)

const (
	TaskType = "route-chat-command"
)

var (
	ErrInvalidInput        = errors.New("INVALID_INPUT")
	ErrRouteDecisionFailed = errors.New("ROUTE_DECISION_FAILED")
)

var schema = validation.MustCompile(inputSchema)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config     *Config
	logger     Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
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

	var stdErr *apperrors.StandardError
	if errors.Is(err, ErrInvalidInput) {
		stdErr = apperrors.NewInvalidInputError(err.Error())
	} else {
		stdErr = apperrors.NewRouteDecisionFailedError(err)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.NLU == nil {
		return nil, fmt.Errorf("%w: no nlu result", ErrRouteDecisionFailed)
	}
	output, err := Decide(input.NLU, h.config.ConfidenceThreshold)
	if err != nil {
		return nil, err
	}

	metrics.NLURouteDecisions.WithLabelValues(string(output.Route)).Inc()
	h.logger.Info("chat command routed", map[string]interface{}{
		"route":      string(output.Route),
		"intent":     output.Intent,
		"confidence": output.Confidence,
	})
	return output, nil
}

// Decide applies the NLU consumer contract: a confident valid result maps to
// an action, a confident invalid one to its clarification message, anything
// below the threshold to the conversational collaborator.
func Decide(res *service.Result, threshold float64) (*Output, error) {
	if !res.Intent.Valid() {
		return nil, fmt.Errorf("%w: unknown intent %d", ErrRouteDecisionFailed, int(res.Intent))
	}

	out := &Output{
		Intent:     res.Intent.String(),
		Confidence: res.Confidence,
	}
	switch {
	case res.Confidence < threshold:
		out.Route = RouteConversation
		out.Question = res.OriginalText
	case res.Valid:
		out.Route = RouteAction
		out.Action = BuildActionTemplate(res.Intent, res.Entities)
	default:
		out.Route = RouteClarification
		out.Reply = res.ErrorMessage
	}
	return out, nil
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

	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
