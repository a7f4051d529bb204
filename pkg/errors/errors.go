// Package errors provides structured error handling for the application.
// It defines AppError with error codes and the pipeline stage that produced it,
// so operators can tell which external collaborator failed.
package errors

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step an error is attributed to.
type Stage string

const (
	StageUnknown    Stage = ""
	StageConfig     Stage = "config"
	StageFact       Stage = "fact"
	StageNarration  Stage = "narration"
	StageTimeline   Stage = "timeline"
	StageBackground Stage = "background"
	StageRender     Stage = "render"
	StageStorage    Stage = "storage"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeInvalidConfig = 1003
	CodeQueueFull     = 1004

	// Fact source errors (1100-1199)
	CodeFactFetch  = 1100
	CodeFactEmpty  = 1101
	CodeFactExpand = 1102

	// Narration errors (1200-1299)
	CodeTTSFailed      = 1200
	CodeVoiceNotFound  = 1201
	CodeTTSEmptyOutput = 1202

	// Audio alignment errors (1300-1399)
	CodeAudioDecode   = 1300
	CodeAudioDuration = 1301
	CodeTimelineBuild = 1302

	// Background errors (1400-1499)
	CodeBackgroundNotFound = 1400
	CodeBackgroundDownload = 1401
	CodeBackgroundDir      = 1402

	// Render errors (1500-1599)
	CodeRenderFailed   = 1500
	CodeRenderInput    = 1501
	CodeCaptionFailed  = 1502
	CodeMusicNotLoaded = 1503

	// Storage errors (1600-1699)
	CodeDBError        = 1600
	CodeFileNotFound   = 1601
	CodeFileWriteError = 1602
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Stage   Stage  `json:"stage,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	prefix := fmt.Sprintf("[%d]", e.Code)
	if e.Stage != StageUnknown {
		prefix = fmt.Sprintf("[%d] %s", e.Code, e.Stage)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// WrapStage wraps an error and attributes it to a pipeline stage.
func WrapStage(stage Stage, code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetStage returns the stage the outermost AppError is attributed to.
func GetStage(err error) Stage {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Stage
	}
	return StageUnknown
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")

	ErrFactEmpty = New(CodeFactEmpty, "Fact source returned empty text")

	ErrTTSFailed      = New(CodeTTSFailed, "Narration synthesis failed")
	ErrVoiceNotFound  = New(CodeVoiceNotFound, "Voice not found")
	ErrTTSEmptyOutput = New(CodeTTSEmptyOutput, "Narration produced no audio")

	ErrAudioDecode = New(CodeAudioDecode, "Audio could not be decoded")

	ErrBackgroundNotFound = New(CodeBackgroundNotFound, "No background clip found")

	ErrRenderFailed = New(CodeRenderFailed, "Render failed")

	ErrDBError      = New(CodeDBError, "Database error")
	ErrFileNotFound = New(CodeFileNotFound, "File not found")
)
