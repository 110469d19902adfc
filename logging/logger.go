package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/crytic/seqenum/logging/colors"
	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when the planner is created. Each
// module/package should create its own sub-logger. This allows to create unique logging instances depending on the
// use case.
var GlobalLogger = NewLogger(zerolog.Disabled)

// Logger describes a custom logging object that can log events to any arbitrary channel in structured, unstructured,
// or unstructured and colorized format.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// structuredLogger describes a logger that will be used to output structured logs to any arbitrary channel.
	structuredLogger zerolog.Logger

	// structuredWriters describes the various channels that the output from the structuredLogger will go to.
	structuredWriters []io.Writer

	// unstructuredLogger describes a logger that will be used to stream un-colorized, unstructured output to any
	// arbitrary channel.
	unstructuredLogger zerolog.Logger

	// unstructuredWriters describes the various channels that the output from the unstructuredLogger will go to.
	unstructuredWriters []io.Writer

	// unstructuredColorLogger describes a logger that will be used to stream colorized, unstructured output to any
	// arbitrary channel.
	unstructuredColorLogger zerolog.Logger

	// unstructuredColorWriters describes the various channels that the output from the unstructuredColorLogger will
	// go to.
	unstructuredColorWriters []io.Writer

	// context describes the key-value pairs attached to every log event by this logger.
	context []string
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger will create a new Logger object with a specific log level. By default, a logger that is instantiated
// with this function is not usable until a log channel is added. To add or remove channels that the logger
// streams logs to, call the Logger.AddWriter and Logger.RemoveWriter functions.
func NewLogger(level zerolog.Level) *Logger {
	return &Logger{
		level:                    level,
		structuredLogger:         zerolog.New(nil).Level(zerolog.Disabled),
		structuredWriters:        make([]io.Writer, 0),
		unstructuredLogger:       zerolog.New(nil).Level(zerolog.Disabled),
		unstructuredWriters:      make([]io.Writer, 0),
		unstructuredColorLogger:  zerolog.New(nil).Level(zerolog.Disabled),
		unstructuredColorWriters: make([]io.Writer, 0),
		context:                  make([]string, 0),
	}
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of this
// function is for each package to have their own unique logger so that parsing of logs is "grep-able" based on some
// key. Writers added to the parent afterwards are not seen by the sub-logger.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	subLogger := &Logger{
		level:                    l.level,
		structuredWriters:        append([]io.Writer(nil), l.structuredWriters...),
		unstructuredWriters:      append([]io.Writer(nil), l.unstructuredWriters...),
		unstructuredColorWriters: append([]io.Writer(nil), l.unstructuredColorWriters...),
		context:                  append(append([]string(nil), l.context...), key, value),
	}
	subLogger.rebuildLoggers()
	return subLogger
}

// AddWriter will add a writer to which log output will go to. If the format is structured then the writer will
// receive structured output. If the format is unstructured and colored is true, the writer will receive colorized,
// unstructured output. Otherwise, it will receive plain unstructured output. Adding a writer twice is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat, colored bool) {
	// Obtain the list of writers the writer belongs to
	writers := l.writersFor(format, colored)

	// Check to see if the writer is already in the array of writers
	for _, w := range *writers {
		if writer == w {
			return
		}
	}

	// Add it to the list of writers and update the loggers
	*writers = append(*writers, writer)
	l.rebuildLoggers()
}

// RemoveWriter will remove a writer from the list of writers that the logger manages. If the writer does not exist,
// this function is a no-op.
func (l *Logger) RemoveWriter(writer io.Writer, format LogFormat, colored bool) {
	// Obtain the list of writers the writer belongs to
	writers := l.writersFor(format, colored)

	// Iterate through the writers and drop the matching one
	for i, w := range *writers {
		if writer == w {
			*writers = append((*writers)[:i], (*writers)[i+1:]...)
			break
		}
	}
	l.rebuildLoggers()
}

// writersFor returns a pointer to the writer list that manages the provided format and coloring.
func (l *Logger) writersFor(format LogFormat, colored bool) *[]io.Writer {
	if format == STRUCTURED {
		return &l.structuredWriters
	} else if colored {
		return &l.unstructuredColorWriters
	}
	return &l.unstructuredWriters
}

// rebuildLoggers recreates the underlying zerolog loggers from the current writer lists, level and context.
func (l *Logger) rebuildLoggers() {
	// Structured output is plain JSON with a timestamp
	l.structuredLogger = zerolog.New(nil).Level(zerolog.Disabled)
	if len(l.structuredWriters) > 0 {
		l.structuredLogger = l.withContext(zerolog.New(zerolog.MultiLevelWriter(l.structuredWriters...)).Level(l.level).With().Timestamp()).Logger()
	}

	// Unstructured output goes through a console writer without colors
	l.unstructuredLogger = zerolog.New(nil).Level(zerolog.Disabled)
	if len(l.unstructuredWriters) > 0 {
		writer := setupDefaultFormatting(zerolog.ConsoleWriter{Out: zerolog.MultiLevelWriter(l.unstructuredWriters...), NoColor: true}, l.level)
		l.unstructuredLogger = l.withContext(zerolog.New(writer).Level(l.level).With()).Logger()
	}

	// Colorized output goes through a console writer with our color scheme
	l.unstructuredColorLogger = zerolog.New(nil).Level(zerolog.Disabled)
	if len(l.unstructuredColorWriters) > 0 {
		writer := setupDefaultFormatting(zerolog.ConsoleWriter{Out: zerolog.MultiLevelWriter(l.unstructuredColorWriters...), NoColor: true}, l.level)
		l.unstructuredColorLogger = l.withContext(zerolog.New(writer).Level(l.level).With()).Logger()
	}
}

// withContext attaches the logger's key-value pairs to a zerolog context.
func (l *Logger) withContext(ctx zerolog.Context) zerolog.Context {
	for i := 0; i+1 < len(l.context); i += 2 {
		ctx = ctx.Str(l.context[i], l.context[i+1])
	}
	return ctx
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.rebuildLoggers()
}

// Trace is a wrapper function that will log a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error is a wrapper function that will log an error event.
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic is a wrapper function that will log a panic event
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

// log builds the messages for the provided arguments and sends them to every channel at the provided level.
func (l *Logger) log(level zerolog.Level, args ...any) {
	// Build the messages and retrieve any error or associated structured log info
	colorMsg, noColorMsg, err, info := buildMsgs(args...)

	// Instantiate log events
	structuredLog := l.structuredLogger.WithLevel(level)
	unstructuredLog := l.unstructuredLogger.WithLevel(level)
	unstructuredColorLog := l.unstructuredColorLogger.WithLevel(level)

	// Chain the error. Stack traces are only added at debug level or below, or when panicking.
	debug := l.level <= zerolog.DebugLevel || level == zerolog.PanicLevel
	chainError(structuredLog, err, debug)
	chainError(unstructuredLog, err, debug)
	chainError(unstructuredColorLog, err, debug)

	// Chain the structured log info and send off the logs
	chainStructuredLogInfo(structuredLog, info)
	chainStructuredLogInfo(unstructuredLog, info)
	chainStructuredLogInfo(unstructuredColorLog, info)
	structuredLog.Msg(noColorMsg)
	unstructuredLog.Msg(noColorMsg)
	unstructuredColorLog.Msg(colorMsg)

	// zerolog's WithLevel does not panic on its own, so we do it once every channel received the log.
	if level == zerolog.PanicLevel {
		panic(noColorMsg)
	}
}

// buildMsgs describes a function that takes in a variadic list of arguments of any type and returns two strings and,
// optionally, an error and a StructuredLogInfo object. The first string will be a colorized-string that can be used for
// console logging while the second string will be a non-colorized one that can be used for file/structured logging.
// The error and the StructuredLogInfo can be used to add additional context to log messages
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	// Guard clause
	if len(args) == 0 {
		return "", "", nil, nil
	}

	// Initialize the base color context, the string buffers and the structured log info object
	colorCtx := colors.Reset
	colorOutput := make([]string, 0)
	noColorOutput := make([]string, 0)
	var info StructuredLogInfo
	var err error

	// Iterate through each argument in the list and switch on type
	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			// If the argument is a color function, switch the current color context
			colorCtx = t
		case StructuredLogInfo:
			// Note that only one structured log info can be provided for each log message
			info = t
		case *LogBuffer:
			// Log buffers are flattened into the message with their own coloring
			bufferColorMsg, bufferNoColorMsg, _, _ := buildMsgs(t.Args()...)
			colorOutput = append(colorOutput, bufferColorMsg)
			noColorOutput = append(noColorOutput, bufferNoColorMsg)
		case error:
			// Note that only one error can be provided for each log message
			err = t
		default:
			// In the base case, append the object to the two string buffers. The colorized string buffer will have the
			// current color context applied to it.
			colorOutput = append(colorOutput, colorCtx(t))
			noColorOutput = append(noColorOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(colorOutput, ""), strings.Join(noColorOutput, ""), err, info
}

// chainError is a helper function that takes in a *zerolog.Event and chains an error to it. If debug is true, then a
// stack trace is added to the event as well.
func chainError(event *zerolog.Event, err error, debug bool) {
	// Guard clause
	if err == nil {
		return
	}

	// If we are in debug mode or below, then we will add the stack traces as well for debugging
	if debug {
		event.Stack()
	}
	event.Err(err)
}

// chainStructuredLogInfo is a helper function that takes in a *zerolog.Event and chains any StructuredLogInfo
// provided to it.
func chainStructuredLogInfo(event *zerolog.Event, info StructuredLogInfo) {
	// If we are provided a structured log info object, add that as a key-value pair to the event
	if info != nil {
		event.Any("info", info)
	}
}

// setupDefaultFormatting will update the console logger's formatting to the seqenum standard
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	// Get rid of the timestamp for console output
	writer.FormatTimestamp = func(i interface{}) string {
		return ""
	}

	// We will define a custom format for each level
	writer.FormatLevel = func(i any) string {
		// Create a level object for better switch logic
		level, err := zerolog.ParseLevel(fmt.Sprintf("%v", i))
		if err != nil {
			return fmt.Sprintf("%v", i)
		}

		// Switch on the level and return a custom, colored string
		switch level {
		case zerolog.TraceLevel:
			// Return a bold, cyan "trace" string
			return colors.CyanBold(zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			// Return a bold, blue "debug" string
			return colors.BlueBold(zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			// Return a bold, green left arrow
			return colors.GreenBold(colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			// Return a bold, yellow "warn" string
			return colors.YellowBold(zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			// Return a bold, red "err" string
			return colors.RedBold(zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			// Return a bold, red "fatal" string
			return colors.RedBold(zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			// Return a bold, red "panic" string
			return colors.RedBold(zerolog.LevelPanicValue)
		default:
			return fmt.Sprintf("%v", i)
		}
	}

	// If we are above debug level, we want to get rid of the `module` component when logging to console
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module"}
	}

	return writer
}
