package graph

// GraphError represents a structural or usage error from graph operations.
type GraphError struct {
	// Message is the human-readable error description.
	Message string

	// Code is a machine-readable error code for programmatic handling.
	Code string
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// TransformError reports a transform failure during StoreAnswer.
// When it occurs no answer is committed: the prior stored answer, if any,
// remains untouched.
type TransformError struct {
	// Stage identifies the stage whose answer was being stored.
	Stage string

	// Transform names the transform that failed.
	Transform string

	// Cause is the underlying error returned by the transform.
	Cause error
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	return "transform " + e.Transform + " failed for stage " + e.Stage + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for error wrapping support.
func (e *TransformError) Unwrap() error {
	return e.Cause
}
