package domain

// ErrorDomain namespaces the numeric codes of CodedError values.
const ErrorDomain = "dev.simlaunch"

// CodedError is implemented by the launcher's closed error taxonomies.
// Code is stable and doubles as the process exit status.
type CodedError interface {
	error
	Code() int
	Domain() string
	// Name is the machine-readable identifier emitted in NDJSON output.
	Name() string
}

// ErrorOutput represents a structured error for NDJSON output
type ErrorOutput struct {
	Type          string `json:"type"`                // Always "error"
	SchemaVersion int    `json:"schemaVersion"`       // Schema version for compatibility
	Code          string `json:"code"`                // Machine-readable error code
	Message       string `json:"message"`             // Human-readable message
	ErrorCode     int    `json:"errorCode,omitempty"` // Numeric taxonomy code
	Domain        string `json:"domain,omitempty"`
	Hint          string `json:"hint,omitempty"`
}

// NewErrorOutput creates a new error output
// Note: SchemaVersion should be set by the caller (output package)
func NewErrorOutput(code, message string) *ErrorOutput {
	return &ErrorOutput{
		Type:    "error",
		Code:    code,
		Message: message,
	}
}
