package planning

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/crytic/seqenum/enumeration"
	"github.com/crytic/seqenum/enumeration/checkpoints"
	"github.com/crytic/seqenum/planning/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

// newTestConfig creates a project configuration enumerating the provided operations, checkpointing to a database in
// a temporary directory.
func newTestConfig(t *testing.T, operations ...string) config.ProjectConfig {
	projectConfig := config.GetDefaultProjectConfig()
	projectConfig.Enumeration.Operations = operations
	projectConfig.Enumeration.CheckpointDatabase = filepath.Join(t.TempDir(), "checkpoints.db")
	projectConfig.Enumeration.CheckpointInterval = 2
	return *projectConfig
}

// expectedSequences returns every sequence a fresh generator produces over the provided operations.
func expectedSequences(t *testing.T, operations []string, maxLength int) [][]string {
	generator, err := enumeration.NewBoundedSequenceGenerator(operations, maxLength)
	require.NoError(t, err)

	sequences := make([][]string, 0)
	for sequence := range generator.All() {
		sequences = append(sequences, sequence)
	}
	return sequences
}

// collectingHandler returns a SequenceHandler which appends every sequence it receives to the provided slice.
func collectingHandler(sequences *[][]string) SequenceHandler {
	return func(ctx context.Context, sequence []string) error {
		*sequences = append(*sequences, sequence)
		return nil
	}
}

// TestPlannerEnumeratesEverySequence verifies that a planner run produces the complete enumeration space in order.
func TestPlannerEnumeratesEverySequence(t *testing.T) {
	projectConfig := newTestConfig(t, "a", "b", "c")
	projectConfig.Enumeration.CheckpointDatabase = ""

	var produced [][]string
	planner, err := NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	require.NoError(t, planner.Start())

	assert.EqualValues(t, expectedSequences(t, planner.Operations(), 3), produced)
	assert.Len(t, produced, 15)
	assert.EqualValues(t, 15, planner.Metrics().TotalIterated())
	assert.EqualValues(t, 0, planner.Metrics().CheckpointsSaved())
	assert.NotEmpty(t, planner.RunID())

	progress, ok := planner.Metrics().Progress()
	require.True(t, ok)
	assert.Equal(t, "100.00", progress.StringFixed(2))
}

// TestPlannerMaxLength verifies the configured bound is applied and clamped to the amount of operations.
func TestPlannerMaxLength(t *testing.T) {
	projectConfig := newTestConfig(t, "a", "b", "c", "d")
	projectConfig.Enumeration.MaxLength = 2

	var produced [][]string
	planner, err := NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	assert.EqualValues(t, 2, planner.MaxLength())
	require.NoError(t, planner.Start())
	assert.Len(t, produced, 4+12)

	// A bound above the domain size is clamped to it
	projectConfig.Enumeration.MaxLength = 9
	planner, err = NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	assert.EqualValues(t, 4, planner.MaxLength())
}

// TestNewPlannerInvalid verifies planners are not created from invalid configurations.
func TestNewPlannerInvalid(t *testing.T) {
	var produced [][]string

	// No operations
	projectConfig := newTestConfig(t)
	_, err := NewPlanner(projectConfig, collectingHandler(&produced))
	assert.Error(t, err)

	// No handler
	projectConfig = newTestConfig(t, "a")
	_, err = NewPlanner(projectConfig, nil)
	assert.Error(t, err)
}

// TestPlannerTestLimitAndResume verifies that a run stopped by its test limit continues where it stopped when
// resumed, and that both invocations together produce the complete enumeration space exactly once.
func TestPlannerTestLimitAndResume(t *testing.T) {
	projectConfig := newTestConfig(t, "a", "b", "c")
	projectConfig.Enumeration.TestLimit = 7

	// Run until our test limit
	var produced [][]string
	planner, err := NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	require.NoError(t, planner.Start())
	require.Len(t, produced, 7)
	runID := planner.RunID()

	// The saved checkpoint reflects the run's progress
	store, err := checkpoints.OpenStore(projectConfig.Enumeration.CheckpointDatabase)
	require.NoError(t, err)
	envelope, err := store.Load(runID)
	require.NoError(t, err)
	assert.EqualValues(t, 7, envelope.Iterated)
	assert.EqualValues(t, planner.Checkpoint(), envelope.Checkpoint)
	require.NoError(t, store.Close())

	// Resume the run without a limit
	projectConfig.Enumeration.TestLimit = 0
	projectConfig.Enumeration.ResumeRunID = runID
	planner, err = NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	require.NoError(t, planner.Start())

	assert.Equal(t, runID, planner.RunID())
	assert.EqualValues(t, 8, planner.Metrics().SequencesGenerated())
	assert.EqualValues(t, 15, planner.Metrics().TotalIterated())
	assert.EqualValues(t, expectedSequences(t, planner.Operations(), 3), produced)

	// Resuming an exhausted run produces nothing
	planner, err = NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	require.NoError(t, planner.Start())
	assert.EqualValues(t, 0, planner.Metrics().SequencesGenerated())
	assert.Len(t, produced, 15)
}

// TestPlannerResumeWithLargerBound verifies a run completed with a small bound can be extended to longer sequences.
func TestPlannerResumeWithLargerBound(t *testing.T) {
	projectConfig := newTestConfig(t, "a", "b", "c")
	projectConfig.Enumeration.MaxLength = 2

	var produced [][]string
	planner, err := NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	require.NoError(t, planner.Start())
	require.Len(t, produced, 9)

	// Extend the run to sequences of three calls
	projectConfig.Enumeration.MaxLength = 3
	projectConfig.Enumeration.ResumeRunID = planner.RunID()
	planner, err = NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	require.NoError(t, planner.Start())

	assert.EqualValues(t, 6, planner.Metrics().SequencesGenerated())
	assert.EqualValues(t, expectedSequences(t, planner.Operations(), 3), produced)
}

// TestPlannerHandlerError verifies that a failing handler stops the run and that the failing sequence is produced
// again once the run is resumed.
func TestPlannerHandlerError(t *testing.T) {
	projectConfig := newTestConfig(t, "a", "b", "c")
	handlerErr := errors.New("execution failed")

	// Fail on the fifth sequence
	var produced [][]string
	planner, err := NewPlanner(projectConfig, func(ctx context.Context, sequence []string) error {
		if len(produced) == 4 {
			return handlerErr
		}
		produced = append(produced, sequence)
		return nil
	})
	require.NoError(t, err)
	err = planner.Start()
	assert.ErrorIs(t, err, handlerErr)
	assert.EqualValues(t, 4, planner.Metrics().TotalIterated())

	// Resume, the failing sequence comes first
	projectConfig.Enumeration.ResumeRunID = planner.RunID()
	planner, err = NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	require.NoError(t, planner.Start())
	assert.EqualValues(t, expectedSequences(t, planner.Operations(), 3), produced)
}

// TestPlannerStop verifies a planner stopped by its caller saves a checkpoint the run can be resumed from.
func TestPlannerStop(t *testing.T) {
	projectConfig := newTestConfig(t, "a", "b", "c", "d")
	projectConfig.Enumeration.CheckpointInterval = 0

	var produced [][]string
	var planner *Planner
	planner, err := NewPlanner(projectConfig, func(ctx context.Context, sequence []string) error {
		produced = append(produced, sequence)
		if len(produced) == 10 {
			planner.Stop()
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, planner.Start())
	require.Len(t, produced, 10)

	// Only the final checkpoint was saved
	assert.EqualValues(t, 1, planner.Metrics().CheckpointsSaved())

	// Resume to completion
	projectConfig.Enumeration.ResumeRunID = planner.RunID()
	planner, err = NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	require.NoError(t, planner.Start())
	assert.EqualValues(t, expectedSequences(t, planner.Operations(), 4), produced)
}

// TestPlannerResumeInvalidCheckpoint verifies runs cannot be resumed from missing checkpoints or over different
// operations.
func TestPlannerResumeInvalidCheckpoint(t *testing.T) {
	projectConfig := newTestConfig(t, "a", "b", "c")
	projectConfig.Enumeration.TestLimit = 3

	var produced [][]string
	planner, err := NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	require.NoError(t, planner.Start())

	// Resume over reordered operations
	projectConfig.Enumeration.Operations = []string{"c", "b", "a"}
	projectConfig.Enumeration.ResumeRunID = planner.RunID()
	planner, err = NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	err = planner.Start()
	assert.ErrorIs(t, err, ErrInvalidCheckpoint)

	// Resume a run that never existed
	projectConfig.Enumeration.Operations = []string{"a", "b", "c"}
	projectConfig.Enumeration.ResumeRunID = checkpoints.NewRunID()
	planner, err = NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	err = planner.Start()
	assert.ErrorIs(t, err, ErrInvalidCheckpoint)
}

// TestPlannerEvents verifies the events published over the course of a run.
func TestPlannerEvents(t *testing.T) {
	projectConfig := newTestConfig(t, "a", "b", "c")
	projectConfig.Enumeration.CheckpointInterval = 5

	var produced [][]string
	planner, err := NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)

	// Subscribe to every event
	var starting, generated, saved int
	var stopping *PlannerStoppingEvent
	var lastIterated uint64
	planner.Events.PlannerStarting.Subscribe(func(event PlannerStartingEvent) error {
		starting++
		assert.False(t, event.Resumed)
		return nil
	})
	planner.Events.SequenceGenerated.Subscribe(func(event SequenceGeneratedEvent) error {
		generated++
		lastIterated = event.Iterated
		assert.NotEmpty(t, event.Sequence)
		return nil
	})
	planner.Events.CheckpointSaved.Subscribe(func(event CheckpointSavedEvent) error {
		saved++
		assert.Equal(t, planner.RunID(), event.Envelope.RunID)
		return nil
	})
	planner.Events.PlannerStopping.Subscribe(func(event PlannerStoppingEvent) error {
		stopping = &event
		return nil
	})
	require.NoError(t, planner.Start())

	assert.Equal(t, 1, starting)
	assert.Equal(t, 15, generated)
	assert.EqualValues(t, 15, lastIterated)
	// Three periodic checkpoints and a final one
	assert.Equal(t, 4, saved)
	require.NotNil(t, stopping)
	assert.True(t, stopping.Exhausted)
	assert.NoError(t, stopping.Err)
}

// TestPlannerEventHandlerError verifies an event handler error stops the run and is returned.
func TestPlannerEventHandlerError(t *testing.T) {
	projectConfig := newTestConfig(t, "a", "b", "c")
	projectConfig.Enumeration.CheckpointDatabase = ""

	var produced [][]string
	planner, err := NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)
	planner.Events.SequenceGenerated.Subscribe(func(event SequenceGeneratedEvent) error {
		if strings.Join(event.Sequence, ",") == "b,a" {
			return errors.New("unwanted sequence")
		}
		return nil
	})

	err = planner.Start()
	assert.Error(t, err)
	assert.Equal(t, []string{"b", "a"}, produced[len(produced)-1])
}

// TestPlannerFlushesIntervalCheckpoints verifies that every periodic checkpoint is on disk by the time it is reported,
// so a killed process loses at most one checkpoint interval.
func TestPlannerFlushesIntervalCheckpoints(t *testing.T) {
	projectConfig := newTestConfig(t, "a", "b", "c")
	projectConfig.Enumeration.CheckpointInterval = 1

	var produced [][]string
	planner, err := NewPlanner(projectConfig, collectingHandler(&produced))
	require.NoError(t, err)

	saved := 0
	planner.Events.CheckpointSaved.Subscribe(func(event CheckpointSavedEvent) error {
		saved++
		assert.Equal(t, 0, planner.store.PendingWrites())
		return nil
	})
	require.NoError(t, planner.Start())

	// One checkpoint per sequence and a final one
	assert.Equal(t, 16, saved)
	assert.EqualValues(t, 16, planner.Metrics().CheckpointsSaved())
}
