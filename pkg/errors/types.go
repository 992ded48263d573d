package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Database errors
	ErrCodeDatabaseQuery ErrorCode = "DATABASE_QUERY"

	// Resource errors
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeConflict ErrorCode = "CONFLICT"

	// Validation errors
	ErrCodeValidation ErrorCode = "VALIDATION"

	// Pipeline input errors: a required parameter or file is missing
	ErrCodeInput ErrorCode = "INPUT"

	// External tool errors
	ErrCodeToolResolution ErrorCode = "TOOL_RESOLUTION"
	ErrCodeProcessFailure ErrorCode = "PROCESS_FAILURE"
	ErrCodeMissingOutput  ErrorCode = "MISSING_OUTPUT"
	ErrCodeTimeout        ErrorCode = "TIMEOUT"
	ErrCodeProbe          ErrorCode = "PROBE"

	// Cross-artifact consistency errors
	ErrCodeDimensionMismatch  ErrorCode = "DIMENSION_MISMATCH"
	ErrCodeFrameRateMismatch  ErrorCode = "FRAME_RATE_MISMATCH"
	ErrCodeFrameCountMismatch ErrorCode = "FRAME_COUNT_MISMATCH"
	ErrCodeNonBinaryMask      ErrorCode = "NON_BINARY_MASK"

	// Audio decoding errors
	ErrCodeDecode ErrorCode = "DECODE"

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// AppError represents a structured application error
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Cause    error                  `json:"-"`
	HTTPCode int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// GetHTTPCode returns the appropriate HTTP status code
func (e *AppError) GetHTTPCode() int {
	if e.HTTPCode != 0 {
		return e.HTTPCode
	}
	return getDefaultHTTPCode(e.Code)
}

// IsConsistency reports whether the error is a cross-artifact validation failure.
func (e *AppError) IsConsistency() bool {
	switch e.Code {
	case ErrCodeDimensionMismatch, ErrCodeFrameRateMismatch, ErrCodeFrameCountMismatch, ErrCodeNonBinaryMask:
		return true
	}
	return false
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// Newf creates a new AppError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(cause error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Cause:    cause,
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(cause error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Cause:    cause,
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// getDefaultHTTPCode returns the default HTTP status code for an error code
func getDefaultHTTPCode(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeValidation, ErrCodeInput, ErrCodeDecode:
		return http.StatusBadRequest
	case ErrCodeDimensionMismatch, ErrCodeFrameRateMismatch, ErrCodeFrameCountMismatch, ErrCodeNonBinaryMask:
		return http.StatusUnprocessableEntity
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeProcessFailure, ErrCodeMissingOutput, ErrCodeProbe:
		return http.StatusBadGateway
	case ErrCodeToolResolution:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors

// NotFound creates a not found error
func NotFound(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// ValidationError creates a validation error
func ValidationError(field string, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// InputError reports a missing parameter or input file.
func InputError(what string) *AppError {
	return New(ErrCodeInput, fmt.Sprintf("missing %s", what)).
		WithDetail("input", what)
}

// MissingInputFile reports a declared stage input that does not exist yet.
func MissingInputFile(stage, path string) *AppError {
	return New(ErrCodeInput, fmt.Sprintf("%s: required input %s not found", stage, path)).
		WithDetail("stage", stage).
		WithDetail("path", path)
}

// ToolResolutionError reports an external executable that cannot be located or started.
func ToolResolutionError(tool string, cause error) *AppError {
	return Wrap(cause, ErrCodeToolResolution, fmt.Sprintf("external tool '%s' is not usable", tool)).
		WithDetail("tool", tool)
}

// ProcessFailure reports an external process that exited non-zero.
func ProcessFailure(stage string, exitCode int, output string) *AppError {
	return Newf(ErrCodeProcessFailure, "%s failed (code %d)", stage, exitCode).
		WithDetail("stage", stage).
		WithDetail("exit_code", exitCode).
		WithDetail("output", output)
}

// MissingOutputError reports a process that exited zero without producing its artifact.
func MissingOutputError(stage, path string) *AppError {
	return Newf(ErrCodeMissingOutput, "%s completed but output file not found", stage).
		WithDetail("stage", stage).
		WithDetail("path", path)
}

// DecodeError reports malformed or empty audio input.
func DecodeError(reason string, cause error) *AppError {
	return Wrap(cause, ErrCodeDecode, reason)
}

// ProbeError reports a file that yielded no decodable stream.
func ProbeError(path string, cause error) *AppError {
	return Wrap(cause, ErrCodeProbe, fmt.Sprintf("could not probe %s", path)).
		WithDetail("path", path)
}

// DimensionMismatch reports two artifacts with different frame sizes.
func DimensionMismatch(a, b string, aw, ah, bw, bh int) *AppError {
	return Newf(ErrCodeDimensionMismatch, "%s is %dx%d but %s is %dx%d", a, aw, ah, b, bw, bh).
		WithDetail("artifacts", []string{a, b})
}

// FrameRateMismatch reports two artifacts whose frame rates differ beyond tolerance.
func FrameRateMismatch(a, b string, afps, bfps float64) *AppError {
	return Newf(ErrCodeFrameRateMismatch, "%s runs at %.3f fps but %s runs at %.3f fps", a, afps, b, bfps).
		WithDetail("artifacts", []string{a, b})
}

// FrameCountMismatch reports an artifact whose frame count disagrees with the features record.
func FrameCountMismatch(artifact string, expected, actual int) *AppError {
	return Newf(ErrCodeFrameCountMismatch, "%s has %d frames, expected %d", artifact, actual, expected).
		WithDetail("expected", expected).
		WithDetail("actual", actual)
}

// NonBinaryMask reports sampled mask frames that are not two-level.
func NonBinaryMask(nonBinary, sampled int) *AppError {
	return Newf(ErrCodeNonBinaryMask, "%d of %d sampled mask frames are not binary", nonBinary, sampled).
		WithDetail("sampled_non_binary_frames", nonBinary).
		WithDetail("sampled_frames", sampled)
}

// ConfigError creates a configuration error
func ConfigError(key string, reason string) *AppError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("configuration error for '%s': %s", key, reason)).
		WithDetail("key", key).
		WithDetail("reason", reason)
}

// TimeoutError creates a timeout error
func TimeoutError(operation string, timeout string) *AppError {
	return New(ErrCodeTimeout, fmt.Sprintf("operation '%s' timed out after %s", operation, timeout)).
		WithDetail("operation", operation).
		WithDetail("timeout", timeout)
}

// DatabaseError creates a database error
func DatabaseError(operation string, cause error) *AppError {
	return Wrap(cause, ErrCodeDatabaseQuery, fmt.Sprintf("database %s failed", operation)).
		WithDetail("operation", operation)
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is checks if an error is of a specific type
func Is(err error, code ErrorCode) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// GetHTTPCode extracts the HTTP status code from an error
func GetHTTPCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.GetHTTPCode()
	}
	return http.StatusInternalServerError
}
