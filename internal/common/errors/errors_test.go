package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

type recordingLogger struct {
	entries []map[string]interface{}
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, fields)
}

func createMockJob(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                42,
		Type:               "parse-user-intent",
		ProcessInstanceKey: 420,
		Retries:            retries,
		Variables:          "{}",
	}}
}

// ==========================
// StandardError
// ==========================

func TestStandardError_Unwrap(t *testing.T) {
	sentinel := stderrors.New("CLASSIFIER_NOT_FITTED")
	err := NewModelNotTrainedError(fmt.Errorf("predict: %w", sentinel))

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, ErrCodeModelNotTrained, err.Code)
	assert.Contains(t, err.Details, "CLASSIFIER_NOT_FITTED")
	assert.False(t, err.Retryable)
	assert.Equal(t, "StandardError[MODEL_NOT_TRAINED]: Intent model is not trained", err.Error())
}

func TestAsStandardError(t *testing.T) {
	std := NewCorpusLoadFailedError(stderrors.New("connection refused"))
	wrapped := fmt.Errorf("initialize: %w", std)
	assert.Same(t, std, AsStandardError(wrapped))

	plain := AsStandardError(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)
	assert.Equal(t, "boom", plain.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"retryable llm failure", NewLLMSynthesisFailedError(stderrors.New("502")), "LLM_SYNTHESIS_FAILED", 3},
		{"llm timeout", NewLLMTimeoutError(), "LLM_TIMEOUT", 1},
		{"invalid input", NewInvalidInputError("message is empty"), "INVALID_INPUT", 0},
		{"snapshot invalid", NewModelSnapshotInvalidError(stderrors.New("bad")), "MODEL_SNAPSHOT_INVALID", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "MODEL", GetErrorCategory(ErrCodeModelTrainingFailed))
	assert.Equal(t, "MODEL", GetErrorCategory(ErrCodeCorpusLoadFailed))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeLLMTimeout))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeRouteDecisionFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseConnectionFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "UNKNOWN", GetErrorCategory("SOMETHING_ELSE"))
	assert.True(t, IsRetryableErrorCode(ErrCodeIntentParsingFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidInput))
}

// ==========================
// ErrorHandler
// ==========================

func TestErrorHandler_Decide(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		jobRetries  int32
		wantRetry   bool
		wantRetries int
		wantCode    string
	}{
		{"retryable with budget", NewLLMSynthesisFailedError(stderrors.New("503")), 5, true, 3, "LLM_SYNTHESIS_FAILED"},
		{"retry capped by broker", NewLLMSynthesisFailedError(stderrors.New("503")), 2, true, 1, "LLM_SYNTHESIS_FAILED"},
		{"last attempt throws", NewLLMSynthesisFailedError(stderrors.New("503")), 0, false, 0, "LLM_SYNTHESIS_FAILED"},
		{"business error throws", NewInvalidInputError("empty"), 3, false, 0, "INVALID_INPUT"},
		{"plain error throws internal", stderrors.New("panic"), 3, false, 0, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			d := NewErrorHandler(log).Decide(createMockJob(tt.jobRetries), tt.err)

			assert.Equal(t, tt.wantRetry, d.Retry)
			assert.Equal(t, tt.wantRetries, d.Retries)
			require.NotNil(t, d.Error)
			assert.Equal(t, tt.wantCode, d.Error.Code)

			require.Len(t, log.entries, 1)
			assert.Equal(t, int64(42), log.entries[0]["jobKey"])
		})
	}
}
