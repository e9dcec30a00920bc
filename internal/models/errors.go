package models

// ErrorType identifies the category of a revision-scoped failure.
type ErrorType string

const (
	// Workspace phase
	ErrWorkspaceBusy  ErrorType = "workspace_busy"
	ErrCheckoutFailed ErrorType = "checkout_failed"
	ErrInstallFailed  ErrorType = "install_failed"

	// Measurement phase
	ErrTimingToolMissing ErrorType = "timing_tool_missing"
	ErrTimingToolFailed  ErrorType = "timing_tool_failed"

	// Result collection phase
	ErrResultFileMissing   ErrorType = "result_file_missing"
	ErrResultFileInvalid   ErrorType = "result_file_invalid"
	ErrResultCountMismatch ErrorType = "result_count_mismatch"

	// Catch-all
	ErrInternalError ErrorType = "internal_error"
)

// RevisionError is a failure confined to a single revision. The run keeps
// going when one is recorded.
type RevisionError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

func (e *RevisionError) Error() string {
	return e.Message
}

// NewRevisionError builds a RevisionError of the given type from err.
func NewRevisionError(t ErrorType, err error) *RevisionError {
	return &RevisionError{Type: t, Message: err.Error()}
}
