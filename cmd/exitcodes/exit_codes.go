package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them,
	// aside from ExitCodeHandledError.

	// ExitCodeHandledError indicates that there was an error that was already logged, so it should not be printed
	// again by main.
	ExitCodeHandledError = 2

	// ExitCodePlannerError indicates that there was an error during the execution of a planner run. Note that an error
	// with error code ExitCodeGeneralError and ExitCodePlannerError are mutually exclusive errors
	ExitCodePlannerError = 6

	// ExitCodeInvalidCheckpoint indicates a run could not be resumed because its checkpoint was missing, malformed or
	// captured over different operations.
	ExitCodeInvalidCheckpoint = 8
)
