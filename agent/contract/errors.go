package contract

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")

	// ErrUnknownTask is returned when a caller-supplied plan names a task the
	// registry does not know.
	ErrUnknownTask = errors.New("unknown task")

	// ErrProductNotFound distinguishes a missing SKU from a transient storage
	// failure.
	ErrProductNotFound = errors.New("product not found")

	// ErrMissingBehaviorSummary is raised by the classify step when it runs
	// without its precondition data.
	ErrMissingBehaviorSummary = errors.New("behavior summary is required")

	// ErrMissingIntentLevel and ErrMissingGateResult signal that a mandatory
	// business step was skipped or silently failed during execution.
	ErrMissingIntentLevel = errors.New("intent level missing after execution")
	ErrMissingGateResult  = errors.New("anti-disturb result missing after execution")
)
