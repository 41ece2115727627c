package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/provider"
	"github.com/rileyhilliard/hwdash/internal/sampler"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeNoGPU          = "NO_GPU"
	ErrCodeProviderFailed = "PROVIDER_FAILED"
	ErrCodeNoCores        = "NO_CORES"
	ErrCodeSamplerFailed  = "SAMPLER_FAILED"
	ErrCodeCommandFailed  = "COMMAND_FAILED"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Error: ErrorToJSON(err)})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var hwErr *errors.Error
	if stderrors.As(err, &hwErr) {
		jsonErr := &JSONError{
			Code:       mapErrorCode(hwErr.Code, hwErr.Message),
			Message:    hwErr.Message,
			Suggestion: hwErr.Suggestion,
		}
		// Sentinels are more specific than the code.
		switch {
		case stderrors.Is(err, provider.ErrNoGPU):
			jsonErr.Code = ErrCodeNoGPU
		case stderrors.Is(err, sampler.ErrNoCores):
			jsonErr.Code = ErrCodeNoCores
		}
		if hwErr.Cause != nil {
			jsonErr.Details = map[string]string{"cause": hwErr.Cause.Error()}
		}
		return jsonErr
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		// Distinguish between not found and invalid
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrProvider:
		return ErrCodeProviderFailed
	case errors.ErrSampler:
		return ErrCodeSamplerFailed
	case errors.ErrExec:
		return ErrCodeCommandFailed
	}

	return ErrCodeUnknown
}

// firstLine returns the headline of an error: the message of a structured
// error, or the first line of anything else.
func firstLine(err error) string {
	var hwErr *errors.Error
	if stderrors.As(err, &hwErr) {
		return hwErr.Message
	}
	msg := strings.TrimSpace(err.Error())
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
