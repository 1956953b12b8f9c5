package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeModelNotTrained      ErrorCode = "MODEL_NOT_TRAINED"
	ErrCodeModelTrainingFailed  ErrorCode = "MODEL_TRAINING_FAILED"
	ErrCodeModelSnapshotInvalid ErrorCode = "MODEL_SNAPSHOT_INVALID"
	ErrCodeSnapshotStoreFailed  ErrorCode = "SNAPSHOT_STORE_FAILED"
	ErrCodeCorpusLoadFailed     ErrorCode = "CORPUS_LOAD_FAILED"

	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeIntentParsingFailed ErrorCode = "INTENT_PARSING_FAILED"
	ErrCodeRouteDecisionFailed ErrorCode = "ROUTE_DECISION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"

	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMSynthesisFailed ErrorCode = "LLM_SYNTHESIS_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the sentinel or driver error the StandardError was built from.
func (e *StandardError) Unwrap() error { return e.cause }

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewModelNotTrainedError(err error) *StandardError {
	return newError(ErrCodeModelNotTrained, "Intent model is not trained", err, false)
}

func NewModelTrainingFailedError(err error) *StandardError {
	return newError(ErrCodeModelTrainingFailed, "Intent model training failed", err, true)
}

func NewModelSnapshotInvalidError(err error) *StandardError {
	return newError(ErrCodeModelSnapshotInvalid, "Stored model snapshot is invalid", err, false)
}

func NewSnapshotStoreFailedError(err error) *StandardError {
	return newError(ErrCodeSnapshotStoreFailed, "Model snapshot store error", err, true)
}

func NewCorpusLoadFailedError(err error) *StandardError {
	return newError(ErrCodeCorpusLoadFailed, "Training corpus could not be loaded", err, true)
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Job input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewIntentParsingFailedError(err error) *StandardError {
	return newError(ErrCodeIntentParsingFailed, "Intent parsing error", err, true)
}

func NewRouteDecisionFailedError(err error) *StandardError {
	return newError(ErrCodeRouteDecisionFailed, "Chat command could not be routed", err, false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err, true)
}

func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM synthesis timeout",
		Details:   "LLM call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewLLMSynthesisFailedError(err error) *StandardError {
	return newError(ErrCodeLLMSynthesisFailed, "LLM synthesis API error", err, true)
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeModelNotTrained:          "MODEL_NOT_TRAINED",
	ErrCodeModelTrainingFailed:      "MODEL_TRAINING_FAILED",
	ErrCodeModelSnapshotInvalid:     "MODEL_SNAPSHOT_INVALID",
	ErrCodeSnapshotStoreFailed:      "SNAPSHOT_STORE_FAILED",
	ErrCodeCorpusLoadFailed:         "CORPUS_LOAD_FAILED",
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeIntentParsingFailed:      "INTENT_PARSING_FAILED",
	ErrCodeRouteDecisionFailed:      "ROUTE_DECISION_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeLLMTimeout:               "LLM_TIMEOUT",
	ErrCodeLLMSynthesisFailed:       "LLM_SYNTHESIS_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCorpusLoadFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeIntentParsingFailed,
		ErrCodeLLMSynthesisFailed:
		return 3

	case ErrCodeSnapshotStoreFailed:
		return 2

	case ErrCodeModelTrainingFailed,
		ErrCodeLLMTimeout:
		return 1

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// AsStandardError finds a StandardError anywhere in err's chain, or wraps
// err as a non-retryable INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err, false)
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "MODEL") || strings.Contains(codeStr, "SNAPSHOT") || strings.Contains(codeStr, "CORPUS"):
		return "MODEL"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "INTENT") || strings.Contains(codeStr, "ROUTE") || strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "INPUT"):
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}
