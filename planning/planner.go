package planning

import (
	"fmt"
	"time"

	"github.com/crytic/seqenum/enumeration"
	"github.com/crytic/seqenum/enumeration/checkpoints"
	"github.com/crytic/seqenum/logging"
	"github.com/crytic/seqenum/logging/colors"
	"github.com/crytic/seqenum/planning/config"
	"github.com/crytic/seqenum/utils"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/net/context"
)

// metricsPrintInterval describes how often the planner logs its metrics while running.
const metricsPrintInterval = 3 * time.Second

// ErrInvalidCheckpoint is returned when a run cannot be resumed because its checkpoint is missing, malformed, or was
// captured over a different set of operations.
var ErrInvalidCheckpoint = errors.New("invalid checkpoint")

// SequenceHandler describes a function which is provided every sequence of operation labels produced by a Planner, in
// enumeration order. A non-nil error stops the Planner. The sequence which failed is not counted as produced, so a
// resumed run begins with it again.
type SequenceHandler func(ctx context.Context, sequence []string) error

// Planner describes an exhaustive sequence planning provider. It enumerates every ordered sequence of distinct
// operations up to a maximum length, hands each one to a SequenceHandler, and checkpoints its position so that a run
// can be stopped and resumed in a later process.
type Planner struct {
	// config describes the project configuration which the planner is operating with.
	config config.ProjectConfig

	// operations describes the ordered domain of operation labels being enumerated.
	operations []string

	// maxLength describes the longest sequence the planner produces.
	maxLength int

	// handler describes the function every produced sequence is provided to.
	handler SequenceHandler

	// runID describes the identifier of the run, which is used to key its checkpoints.
	runID string

	// ctx describes the context for the planner run. If it is cancelled, the planner stops.
	ctx context.Context

	// ctxCancelFunc describes the function used to cancel ctx.
	ctxCancelFunc context.CancelFunc

	// store describes the checkpoint store the run is persisted to. It is nil if checkpointing is disabled, and is
	// only open while the planner is running.
	store *checkpoints.Store

	// generator describes the sequence generator driving the run.
	generator *enumeration.SequenceGenerator[string]

	// metrics describes the metrics of the current run.
	metrics *PlannerMetrics

	// logger describes the Planner's log object that can be used to log important events
	logger *logging.Logger

	// Events describes the event system for the Planner.
	Events PlannerEvents
}

// NewPlanner returns an instance of a new Planner provided a project configuration and a handler for the produced
// sequences. Returns an error if the configuration is invalid or its operations could not be resolved.
func NewPlanner(config config.ProjectConfig, handler SequenceHandler) (*Planner, error) {
	// Create our logger
	logger := logging.GlobalLogger.NewSubLogger("module", logging.PLANNING_SERVICE)

	// Validate our provided config
	err := config.Validate()
	if err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, errors.New("a sequence handler must be provided to the planner")
	}

	// Resolve the operations we are going to enumerate
	operations, err := config.Enumeration.ResolveOperations()
	if err != nil {
		return nil, err
	}

	// Determine our maximum sequence length, which cannot exceed the amount of operations
	maxLength, clamped := config.Enumeration.EffectiveMaxLength(len(operations))
	if clamped {
		logger.Warn("Maximum sequence length ", config.Enumeration.MaxLength, " is outside of the domain of ",
			len(operations), " operations, using ", maxLength, " instead")
	}

	// Create our base context. Stop may be called before Start, in which case Start returns immediately.
	ctx, cancel := context.WithCancel(context.Background())

	planner := &Planner{
		config:        config,
		operations:    operations,
		maxLength:     maxLength,
		handler:       handler,
		ctx:           ctx,
		ctxCancelFunc: cancel,
		logger:        logger,
	}
	return planner, nil
}

// Operations returns the ordered domain of operation labels the planner enumerates.
func (p *Planner) Operations() []string {
	return p.operations
}

// MaxLength returns the longest sequence the planner produces.
func (p *Planner) MaxLength() int {
	return p.maxLength
}

// RunID returns the identifier of the run. It is empty until the planner is started.
func (p *Planner) RunID() string {
	return p.runID
}

// Metrics returns the metrics of the current run. It is nil until the planner is started.
func (p *Planner) Metrics() *PlannerMetrics {
	return p.metrics
}

// Checkpoint returns the position of the run, describing the next sequence to be produced.
func (p *Planner) Checkpoint() enumeration.SequenceCheckpoint {
	return p.generator.Checkpoint()
}

// Start begins an enumeration run, resuming the configured run if one was provided. This method blocks until the
// enumeration space is exhausted, the test limit or timeout is reached, Stop is called, or the SequenceHandler
// returns an error. A checkpoint is saved before returning, whatever the reason for stopping.
// Returns an error if one occurs.
func (p *Planner) Start() error {
	// Define our variable to catch errors
	var err error

	// If we set a timeout, create the timeout context now, as we're about to begin enumerating.
	if p.config.Enumeration.Timeout > 0 {
		p.logger.Info("Running with a timeout of ", colors.Bold, p.config.Enumeration.Timeout, " seconds")
		var cancelTimeout context.CancelFunc
		p.ctx, cancelTimeout = context.WithTimeout(p.ctx, time.Duration(p.config.Enumeration.Timeout)*time.Second)
		defer cancelTimeout()
	}

	// Open our checkpoint store, if checkpointing is enabled
	if p.config.Enumeration.CheckpointDatabase != "" {
		p.store, err = checkpoints.OpenStore(p.config.Enumeration.CheckpointDatabase)
		if err != nil {
			return err
		}
		defer func() {
			_ = p.store.Close()
			p.store = nil
		}()
	}

	// Create or restore our run
	resumed := p.config.Enumeration.ResumeRunID != ""
	var resumedIterated uint64
	if resumed {
		resumedIterated, err = p.resumeRun(p.config.Enumeration.ResumeRunID)
	} else {
		err = p.newRun()
	}
	if err != nil {
		return err
	}

	// Initialize our metrics. If our space is too large to count, progress is simply not reported.
	spaceSize, err := enumeration.SequenceCount(len(p.operations), p.maxLength)
	if err != nil && !errors.Is(err, enumeration.ErrCountOverflow) {
		return err
	}
	p.metrics = newPlannerMetrics(resumedIterated, spaceSize)

	// Start our printing loop now that we're about to begin enumerating.
	printLoopDone := make(chan struct{})
	printLoopCtx, stopPrintLoop := context.WithCancel(p.ctx)
	go func() {
		p.runMetricsPrintLoop(printLoopCtx)
		close(printLoopDone)
	}()

	// Publish a planner starting event.
	err = p.Events.PlannerStarting.Publish(PlannerStartingEvent{Planner: p, Resumed: resumed})
	if err == nil {
		// Run the main enumeration loop
		err = p.enumerationLoop()
	}

	// NOTE: After this point, we capture errors but do not return immediately, as we want to exit gracefully.

	// Stop our printing loop before reporting our final state.
	stopPrintLoop()
	<-printLoopDone

	// Save our final checkpoint. We do this even if we had a previous error, as we don't want to lose progress.
	checkpointErr := p.saveCheckpoint(p.generator.Checkpoint(), p.metrics.TotalIterated())
	if err == nil {
		err = checkpointErr
	}
	if p.store != nil {
		flushErr := p.store.Flush()
		if err == nil {
			err = flushErr
		}
	}

	// Publish a planner stopping event.
	exhausted := !p.generator.HasNext()
	plannerStoppingErr := p.Events.PlannerStopping.Publish(PlannerStoppingEvent{Planner: p, Exhausted: exhausted, Err: err})
	if err == nil && plannerStoppingErr != nil {
		err = plannerStoppingErr
	}

	// Print our run summary
	p.logger.Info(p.summary(exhausted))

	// Return any encountered error.
	return err
}

// Stop stops a running operation invoked by the Start method. This method may return before complete operation teardown
// occurs.
func (p *Planner) Stop() {
	// Call the cancel function on our running context to stop the enumeration loop
	if p.ctxCancelFunc != nil {
		p.ctxCancelFunc()
	}
}

// newRun creates a new run identifier and positions the planner at the start of the enumeration.
// Returns an error if one occurs.
func (p *Planner) newRun() error {
	var err error
	p.runID = checkpoints.NewRunID()
	p.generator, err = enumeration.NewBoundedSequenceGenerator(p.operations, p.maxLength)
	if err != nil {
		return err
	}

	p.logger.Info("Starting run ", colors.Bold, p.runID, colors.Reset, " over ", len(p.operations),
		" operations with sequences of up to ", p.maxLength, " calls")
	return nil
}

// resumeRun restores the run with the provided identifier from the checkpoint store and positions the planner at the
// next sequence it had not produced.
// Returns the amount of sequences the run produced before, or an error wrapping ErrInvalidCheckpoint if it cannot be
// resumed.
func (p *Planner) resumeRun(runID string) (uint64, error) {
	// Fetch the latest checkpoint of our run
	envelope, err := p.store.Load(runID)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidCheckpoint, "could not load run %s: %v", runID, err)
	}

	// The checkpoint only makes sense over the exact same ordered operations
	if err = envelope.Verify(p.operations); err != nil {
		return 0, errors.Wrapf(ErrInvalidCheckpoint, "could not resume run %s: %v", runID, err)
	}

	// Restore our generator with our current bound, which may differ from the one the run was started with.
	p.generator, err = enumeration.ResumeSequenceGenerator(p.operations, p.maxLength, envelope.Checkpoint)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidCheckpoint, "could not resume run %s: %v", runID, err)
	}
	p.runID = envelope.RunID

	p.logger.Info("Resuming run ", colors.Bold, p.runID, colors.Reset, " after ", humanize.Comma(int64(envelope.Iterated)),
		" sequences from ", envelope.Checkpoint.String())
	if envelope.MaxLength != p.maxLength {
		p.logger.Info("Maximum sequence length changed from ", envelope.MaxLength, " to ", p.maxLength)
	}
	return envelope.Iterated, nil
}

// enumerationLoop produces sequences and hands them to the SequenceHandler until the generator is exhausted, a limit
// is reached, or the planner is stopped.
// Returns an error if the handler or a checkpoint fails.
func (p *Planner) enumerationLoop() error {
	testLimit := p.config.Enumeration.TestLimit
	checkpointInterval := p.config.Enumeration.CheckpointInterval

	for p.generator.HasNext() {
		// Exit if we were told to stop
		if utils.CheckContextDone(p.ctx) {
			return nil
		}

		// Capture our position before producing the sequence, so a failing sequence is produced again on resume.
		pending := p.generator.Checkpoint()
		sequence, err := p.generator.Next()
		if err != nil {
			return err
		}

		// Hand the sequence off. If it fails, we rewind to it so our final checkpoint produces it again on resume.
		err = p.handler(p.ctx, sequence)
		if err != nil {
			generator, rewindErr := enumeration.ResumeSequenceGenerator(p.operations, p.maxLength, pending)
			if rewindErr != nil {
				return rewindErr
			}
			p.generator = generator

			// A handler interrupted by our cancellation is not an error.
			if utils.CheckContextDone(p.ctx) {
				return nil
			}
			return errors.Wrapf(err, "sequence handler failed on %v", sequence)
		}

		// Update our metrics and notify any subscribers
		p.metrics.sequencesGenerated.Add(1)
		iterated := p.metrics.TotalIterated()
		err = p.Events.SequenceGenerated.Publish(SequenceGeneratedEvent{Planner: p, Sequence: sequence, Iterated: iterated})
		if err != nil {
			return err
		}

		// Checkpoint periodically
		generated := p.metrics.SequencesGenerated()
		if checkpointInterval > 0 && generated%checkpointInterval == 0 {
			err = p.saveCheckpoint(p.generator.Checkpoint(), iterated)
			if err != nil {
				return err
			}
		}

		// If we reached our test limit, halt
		if testLimit > 0 && generated >= testLimit {
			p.logger.Info("Sequence test limit reached, halting now...")
			return nil
		}
	}
	return nil
}

// saveCheckpoint saves the provided position of the run to the checkpoint store, if one is configured.
// Returns an error if one occurs.
func (p *Planner) saveCheckpoint(checkpoint enumeration.SequenceCheckpoint, iterated uint64) error {
	if p.store == nil {
		return nil
	}

	// Wrap our checkpoint and queue it in our store
	envelope := checkpoints.NewEnvelope(p.runID, p.operations, p.maxLength, iterated, checkpoint)
	err := p.store.Save(envelope)
	if err != nil {
		return err
	}

	// Write it to disk right away, so a killed process resumes from its latest checkpoint
	err = p.store.Flush()
	if err != nil {
		return err
	}
	p.metrics.checkpointsSaved.Add(1)

	p.logger.Debug("Saved checkpoint ", envelope.Checkpoint.String(), " after ", iterated, " sequences")
	return p.Events.CheckpointSaved.Publish(CheckpointSavedEvent{Planner: p, Envelope: envelope})
}

// runMetricsPrintLoop logs metrics in a loop until ctx signals a stopped operation.
func (p *Planner) runMetricsPrintLoop(ctx context.Context) {
	// Define cached variables for our metrics to calculate deltas.
	var lastSequencesGenerated uint64
	lastPrintedTime := time.Now()
	for utils.SleepContext(ctx, metricsPrintInterval) {
		// Obtain our metrics
		sequencesGenerated := p.metrics.SequencesGenerated()
		secondsSinceLastUpdate := time.Since(lastPrintedTime).Seconds()

		// Build our metrics update
		logBuffer := logging.NewLogBuffer()
		logBuffer.Append(colors.Bold, "enumerate: ", colors.Reset)
		logBuffer.Append("elapsed: ", colors.Bold, p.metrics.Elapsed().Round(time.Second).String(), colors.Reset)
		logBuffer.Append(", sequences: ", colors.Bold, humanize.Comma(int64(p.metrics.TotalIterated())), colors.Reset)
		logBuffer.Append(fmt.Sprintf(" (%s/sec)", humanize.Comma(int64(float64(utils.SaturatingSub(sequencesGenerated, lastSequencesGenerated))/secondsSinceLastUpdate))))
		if progress, ok := p.metrics.Progress(); ok {
			logBuffer.Append(", progress: ", colors.Bold, progress.StringFixed(2), "%", colors.Reset)
		}
		p.logger.Info(logBuffer)

		// Update our delta tracking metrics
		lastPrintedTime = time.Now()
		lastSequencesGenerated = sequencesGenerated
	}
}

// summary builds the log message describing the state of the run when the planner stops.
func (p *Planner) summary(exhausted bool) *logging.LogBuffer {
	logBuffer := logging.NewLogBuffer()
	logBuffer.Append("Planner stopped after producing ", colors.Bold, humanize.Comma(int64(p.metrics.SequencesGenerated())), colors.Reset, " sequences")
	logBuffer.Append(" (", humanize.Comma(int64(p.metrics.TotalIterated())), " total) in ", p.metrics.Elapsed().Round(time.Millisecond).String())
	if spaceSize := p.metrics.SpaceSize(); spaceSize != nil {
		logBuffer.Append(" out of ", humanize.BigComma(spaceSize.ToBig()))
	}
	if exhausted {
		logBuffer.Append(", ", colors.GreenBold, "enumeration complete", colors.Reset)
	} else if p.store != nil {
		logBuffer.Append(", resume with run ID ", colors.Bold, p.runID, colors.Reset)
	}
	return logBuffer
}
