package logging

// These constants are used to identify the various services that may do some logging
const (
	// PLANNING_SERVICE is the constant used to identify the planning package
	PLANNING_SERVICE = "planning"
	// CHECKPOINT_SERVICE is the constant used to identify the checkpoint store
	CHECKPOINT_SERVICE = "checkpoints"
)
