package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error taxonomy. Validation errors surface immediately to the caller;
// OCR page errors recover locally; AI errors degrade to the fallback path.
var (
	ErrFileValidation = errors.New("file validation failed")
	ErrOCRProcessing  = errors.New("ocr processing failed")
	ErrAIAnalysis     = errors.New("ai analysis failed")
	ErrConfiguration  = errors.New("configuration error")
)

// Error codes used in AppError.Code.
const (
	CodeFileValidation = "FILE_VALIDATION"
	CodeOCRProcessing  = "OCR_PROCESSING"
	CodeAIAnalysis     = "AI_ANALYSIS"
	CodeConfiguration  = "CONFIGURATION"
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error constructors for the taxonomy. Each wraps the matching sentinel so
// callers can branch with errors.Is.
func NewFileValidationError(message string, cause error) *AppError {
	return NewAppError(CodeFileValidation, message, join(ErrFileValidation, cause))
}

func NewOCRProcessingError(message string, cause error) *AppError {
	return NewAppError(CodeOCRProcessing, message, join(ErrOCRProcessing, cause))
}

func NewAIAnalysisError(message string, cause error) *AppError {
	return NewAppError(CodeAIAnalysis, message, join(ErrAIAnalysis, cause))
}

func NewConfigurationError(message string, cause error) *AppError {
	return NewAppError(CodeConfiguration, message, join(ErrConfiguration, cause))
}

func join(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return errors.Join(sentinel, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
