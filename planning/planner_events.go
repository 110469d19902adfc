package planning

import (
	"github.com/crytic/seqenum/enumeration/checkpoints"
	"github.com/crytic/seqenum/events"
)

// PlannerEvents defines event emitters for a Planner.
type PlannerEvents struct {
	// PlannerStarting emits events when the Planner has restored or created its run and is about to begin the main
	// enumeration loop.
	PlannerStarting events.EventEmitter[PlannerStartingEvent]

	// PlannerStopping emits events when the Planner is exiting its main enumeration loop, after its final checkpoint
	// was saved.
	PlannerStopping events.EventEmitter[PlannerStoppingEvent]

	// SequenceGenerated emits events when a sequence was produced and accepted by the SequenceHandler.
	SequenceGenerated events.EventEmitter[SequenceGeneratedEvent]

	// CheckpointSaved emits events when the Planner saved a checkpoint of its run to the checkpoint store.
	CheckpointSaved events.EventEmitter[CheckpointSavedEvent]
}

// PlannerStartingEvent describes an event where a planning.Planner is about to begin enumerating sequences.
type PlannerStartingEvent struct {
	// Planner represents the instance of the planning.Planner for which the event occurred.
	Planner *Planner

	// Resumed indicates whether the run continues from a previously saved checkpoint.
	Resumed bool
}

// PlannerStoppingEvent describes an event where a planning.Planner is exiting the main enumeration loop.
type PlannerStoppingEvent struct {
	// Planner represents the instance of the planning.Planner for which the event occurred.
	Planner *Planner

	// Exhausted indicates whether every sequence of the run has been produced.
	Exhausted bool

	// Err describes a potential error returned by the planner run.
	Err error
}

// SequenceGeneratedEvent describes an event where a planning.Planner produced a sequence.
type SequenceGeneratedEvent struct {
	// Planner represents the instance of the planning.Planner for which the event occurred.
	Planner *Planner

	// Sequence describes the operation labels of the produced sequence, in call order.
	Sequence []string

	// Iterated describes the cumulative amount of sequences the run has produced, including this one.
	Iterated uint64
}

// CheckpointSavedEvent describes an event where a planning.Planner saved a checkpoint.
type CheckpointSavedEvent struct {
	// Planner represents the instance of the planning.Planner for which the event occurred.
	Planner *Planner

	// Envelope describes the checkpoint which was saved.
	Envelope *checkpoints.Envelope
}
