package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrClientInput represents a request rejected before any external work starts.
type ErrClientInput struct {
	Reason string
}

// Error implements the error interface.
func (e *ErrClientInput) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrClientInput) Is(target error) bool {
	_, ok := target.(*ErrClientInput)
	return ok
}

// NewClientInputError creates a new ErrClientInput.
func NewClientInputError(format string, args ...any) *ErrClientInput {
	return &ErrClientInput{Reason: fmt.Sprintf(format, args...)}
}

// ErrExtraction is returned when yt-dlp cannot resolve the title or thumbnail of a URL.
type ErrExtraction struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ErrExtraction) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to extract metadata for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to extract metadata for %s", e.URL)
}

// Unwrap returns the underlying cause.
func (e *ErrExtraction) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrExtraction) Is(target error) bool {
	_, ok := target.(*ErrExtraction)
	return ok
}

// ErrGeneration is returned when the download subprocess did not produce the expected file.
// ExitCode is -1 when the process never reported one.
type ErrGeneration struct {
	OutputPath string
	ExitCode   int
	Err        error
}

// Error implements the error interface.
func (e *ErrGeneration) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("download of %s failed with exit code %d", e.OutputPath, e.ExitCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("download of %s failed: %v", e.OutputPath, e.Err)
	}
	return fmt.Sprintf("download finished but %s was not generated", e.OutputPath)
}

// Unwrap returns the underlying cause.
func (e *ErrGeneration) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrGeneration) Is(target error) bool {
	_, ok := target.(*ErrGeneration)
	return ok
}

// ErrTransfer is returned when streaming a finished file to the caller fails.
// The file is left on disk.
type ErrTransfer struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ErrTransfer) Error() string {
	return fmt.Sprintf("failed to send %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ErrTransfer) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrTransfer) Is(target error) bool {
	_, ok := target.(*ErrTransfer)
	return ok
}

// ErrConflict is returned when an identical download is already running.
type ErrConflict struct {
	Key string
}

// Error implements the error interface.
func (e *ErrConflict) Error() string {
	return fmt.Sprintf("download already in progress for %s", e.Key)
}

// Is allows for error checking with errors.Is().
func (e *ErrConflict) Is(target error) bool {
	_, ok := target.(*ErrConflict)
	return ok
}

// HTTPStatus maps an error to the status code returned to HTTP clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, &ErrClientInput{}):
		return http.StatusBadRequest
	case errors.Is(err, &ErrConflict{}):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the plain-text body sent to clients for err.
// Internal details such as paths and exit codes stay in the logs.
func PublicMessage(err error) string {
	var clientErr *ErrClientInput
	switch {
	case errors.As(err, &clientErr):
		return clientErr.Reason
	case errors.Is(err, &ErrConflict{}):
		return "A download for this video and format is already in progress."
	case errors.Is(err, &ErrExtraction{}):
		return "Failed to retrieve the video details."
	case errors.Is(err, &ErrGeneration{}):
		return "The file was not generated."
	case errors.Is(err, &ErrTransfer{}):
		return "Failed to send the file."
	default:
		return "Internal server error."
	}
}
