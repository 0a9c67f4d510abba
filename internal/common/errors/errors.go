// Package errors provides the standardized error taxonomy of the generation
// compilation pipeline and its mapping onto BPMN errors for the job workers.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Malformed input
const (
	ErrCodeMalformedAir           ErrorCode = "MALFORMED_AIR"
	ErrCodeUnknownBaseModel       ErrorCode = "UNKNOWN_BASE_MODEL"
	ErrCodeMissingRequiredField   ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidGenerationInput ErrorCode = "INVALID_GENERATION_INPUT"
)

// Configuration
const (
	ErrCodeWorkflowNotFound          ErrorCode = "WORKFLOW_NOT_FOUND"
	ErrCodeWorkflowCompilationFailed ErrorCode = "WORKFLOW_COMPILATION_FAILED"
	ErrCodeUnsupportedWorkflow       ErrorCode = "UNSUPPORTED_WORKFLOW"
	ErrCodeInvalidWorkflowDefinition ErrorCode = "INVALID_WORKFLOW_DEFINITION"
)

// Internal invariant violations
const (
	ErrCodeResourceNotResolved ErrorCode = "RESOURCE_NOT_RESOLVED"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Infrastructure (the only retryable class, owned by the worker layer)
const (
	ErrCodeWorkflowCacheUnavailable ErrorCode = "WORKFLOW_CACHE_UNAVAILABLE"
	ErrCodeResourceLookupFailed     ErrorCode = "RESOURCE_LOOKUP_FAILED"
)

// Error categories returned by GetErrorCategory.
const (
	CategoryMalformedInput = "malformed-input"
	CategoryConfiguration  = "configuration"
	CategoryInternal       = "internal"
	CategoryInfrastructure = "infrastructure"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

// Is matches any StandardError carrying the same code, so the sentinels below
// work with errors.Is.
func (e *StandardError) Is(target error) bool {
	var t *StandardError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is checks.
var (
	ErrMalformedAir              = &StandardError{Code: ErrCodeMalformedAir}
	ErrUnknownBaseModel          = &StandardError{Code: ErrCodeUnknownBaseModel}
	ErrMissingRequiredField      = &StandardError{Code: ErrCodeMissingRequiredField}
	ErrInvalidGenerationInput    = &StandardError{Code: ErrCodeInvalidGenerationInput}
	ErrWorkflowNotFound          = &StandardError{Code: ErrCodeWorkflowNotFound}
	ErrWorkflowCompilationFailed = &StandardError{Code: ErrCodeWorkflowCompilationFailed}
	ErrUnsupportedWorkflow       = &StandardError{Code: ErrCodeUnsupportedWorkflow}
	ErrInvalidWorkflowDefinition = &StandardError{Code: ErrCodeInvalidWorkflowDefinition}
	ErrResourceNotResolved       = &StandardError{Code: ErrCodeResourceNotResolved}
	ErrWorkflowCacheUnavailable  = &StandardError{Code: ErrCodeWorkflowCacheUnavailable}
	ErrResourceLookupFailed      = &StandardError{Code: ErrCodeResourceLookupFailed}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
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

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedAirError reports an AIR string that does not match the urn grammar.
func NewMalformedAirError(value, reason string) *StandardError {
	return newError(ErrCodeMalformedAir, "Malformed AIR", fmt.Sprintf("air: %q, reason: %s", value, reason), false).
		WithMetadata("air", value)
}

func NewUnknownBaseModelError(baseModel string) *StandardError {
	return newError(ErrCodeUnknownBaseModel, "Base model has no ecosystem mapping", fmt.Sprintf("baseModel: %q", baseModel), false).
		WithMetadata("baseModel", baseModel)
}

// NewMissingRequiredFieldError reports a context field the target ecosystem cannot do without.
func NewMissingRequiredFieldError(field, ecosystem string) *StandardError {
	return newError(ErrCodeMissingRequiredField, "Required generation field missing", fmt.Sprintf("field: %s, ecosystem: %s", field, ecosystem), false).
		WithMetadata("field", field)
}

func NewInvalidGenerationInputError(details string) *StandardError {
	return newError(ErrCodeInvalidGenerationInput, "Generation input failed validation", details, false)
}

func NewWorkflowNotFoundError(key string) *StandardError {
	return newError(ErrCodeWorkflowNotFound, "Workflow definition not found", fmt.Sprintf("key: %s", key), false).
		WithMetadata("workflowKey", key)
}

// NewWorkflowCompilationError reports a template that does not compile against its params.
func NewWorkflowCompilationError(key string, err error) *StandardError {
	e := newError(ErrCodeWorkflowCompilationFailed, "Workflow template failed to compile", fmt.Sprintf("key: %s, error: %v", key, err), false).
		WithMetadata("workflowKey", key)
	e.cause = err
	return e
}

func NewUnsupportedWorkflowError(workflow, ecosystem, baseModel string) *StandardError {
	return newError(ErrCodeUnsupportedWorkflow, "No step builder registered for request",
		fmt.Sprintf("workflow: %q, ecosystem: %q, baseModel: %q", workflow, ecosystem, baseModel), false).
		WithMetadata("workflow", workflow).
		WithMetadata("ecosystem", ecosystem).
		WithMetadata("baseModel", baseModel)
}

func NewInvalidWorkflowDefinitionError(key, details string) *StandardError {
	return newError(ErrCodeInvalidWorkflowDefinition, "Workflow definition is invalid", fmt.Sprintf("key: %s, %s", key, details), false)
}

// NewResourceNotResolvedError reports a resource id that reached a handler
// without an AIR. It is an internal invariant violation.
func NewResourceNotResolvedError(resourceID int) *StandardError {
	return newError(ErrCodeResourceNotResolved, "Resource id has no resolved AIR", fmt.Sprintf("resourceId: %d", resourceID), false).
		WithMetadata("resourceId", resourceID)
}

func NewInternalError(err error) *StandardError {
	e := newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
	e.cause = err
	return e
}

func NewWorkflowCacheUnavailableError(key string, err error) *StandardError {
	e := newError(ErrCodeWorkflowCacheUnavailable, "Workflow cache read failed", fmt.Sprintf("key: %s, error: %v", key, err), true)
	e.cause = err
	return e
}

func NewResourceLookupFailedError(source string, err error) *StandardError {
	e := newError(ErrCodeResourceLookupFailed, fmt.Sprintf("Resource lookup against %s failed", source), err.Error(), true)
	e.cause = err
	return e
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeMalformedAir:              "MALFORMED_AIR",
	ErrCodeUnknownBaseModel:          "MALFORMED_AIR",
	ErrCodeMissingRequiredField:      "INVALID_GENERATION_INPUT",
	ErrCodeInvalidGenerationInput:    "INVALID_GENERATION_INPUT",
	ErrCodeWorkflowNotFound:          "WORKFLOW_CONFIGURATION_ERROR",
	ErrCodeWorkflowCompilationFailed: "WORKFLOW_CONFIGURATION_ERROR",
	ErrCodeUnsupportedWorkflow:       "WORKFLOW_CONFIGURATION_ERROR",
	ErrCodeInvalidWorkflowDefinition: "WORKFLOW_CONFIGURATION_ERROR",
	ErrCodeResourceNotResolved:       "INTERNAL_ERROR",
	ErrCodeInternal:                  "INTERNAL_ERROR",
	ErrCodeWorkflowCacheUnavailable:  "WORKFLOW_CACHE_UNAVAILABLE",
	ErrCodeResourceLookupFailed:      "RESOURCE_LOOKUP_FAILED",
}

// GetRetryCount returns the job retry budget for a code. Only infrastructure
// failures are retried, and only by the job engine.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeWorkflowCacheUnavailable, ErrCodeResourceLookupFailed:
		return 3
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
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
			"errorCategory":     GetErrorCategory(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the taxonomy class of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeMalformedAir, ErrCodeUnknownBaseModel, ErrCodeMissingRequiredField, ErrCodeInvalidGenerationInput:
		return CategoryMalformedInput
	case ErrCodeWorkflowNotFound, ErrCodeWorkflowCompilationFailed, ErrCodeUnsupportedWorkflow, ErrCodeInvalidWorkflowDefinition:
		return CategoryConfiguration
	case ErrCodeWorkflowCacheUnavailable, ErrCodeResourceLookupFailed:
		return CategoryInfrastructure
	default:
		return CategoryInternal
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// CodeOf returns the code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	return Normalize(err).Code
}
