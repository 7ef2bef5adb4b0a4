package cli

// CLIError is a structured error used for consistent NDJSON/text emission
// of failures outside the packaging and device taxonomies.
type CLIError struct {
	Code    string
	Message string
	Hint    string
	Err     error
}

func (e *CLIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newCLIError(code string, err error, hint string) *CLIError {
	return &CLIError{Code: code, Message: err.Error(), Hint: hint, Err: err}
}
