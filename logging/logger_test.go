package logging

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/crytic/seqenum/logging/colors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// TestAddAndRemoveWriter will test to Logger.AddWriter and Logger.RemoveWriter functions to ensure that they work as expected.
func TestAddAndRemoveWriter(t *testing.T) {
	// Create a base logger
	logger := NewLogger(zerolog.InfoLevel)

	// Add three types of writers
	// 1. Unstructured and colorized output to stdout
	logger.AddWriter(os.Stdout, UNSTRUCTURED, true)
	// 2. Unstructured and non-colorized output to stderr
	logger.AddWriter(os.Stderr, UNSTRUCTURED, false)
	// 3. Structured output to stdin
	logger.AddWriter(os.Stdin, STRUCTURED, false)

	// We should expect the underlying data structures are correctly updated
	assert.Equal(t, len(logger.unstructuredWriters), 1)
	assert.Equal(t, len(logger.unstructuredColorWriters), 1)
	assert.Equal(t, len(logger.structuredWriters), 1)

	// Try to add duplicate writers
	logger.AddWriter(os.Stdout, UNSTRUCTURED, true)
	logger.AddWriter(os.Stderr, UNSTRUCTURED, false)
	logger.AddWriter(os.Stdin, STRUCTURED, false)

	// Ensure that the lengths of the lists have not changed
	assert.Equal(t, len(logger.unstructuredWriters), 1)
	assert.Equal(t, len(logger.unstructuredColorWriters), 1)
	assert.Equal(t, len(logger.structuredWriters), 1)

	// Remove each writer
	logger.RemoveWriter(os.Stdout, UNSTRUCTURED, true)
	logger.RemoveWriter(os.Stderr, UNSTRUCTURED, false)
	logger.RemoveWriter(os.Stdin, STRUCTURED, false)

	// We should expect the underlying data structures are correctly updated
	assert.Equal(t, len(logger.unstructuredWriters), 0)
	assert.Equal(t, len(logger.unstructuredColorWriters), 0)
	assert.Equal(t, len(logger.structuredWriters), 0)
}

// TestDisabledColors verifies the behavior of the unstructured colored logger when colors are disabled,
// ensuring that it does not output colors when the color feature is turned off.
func TestDisabledColors(t *testing.T) {
	// Create a base logger
	logger := NewLogger(zerolog.InfoLevel)

	// Add colorized logger
	var buf bytes.Buffer
	logger.AddWriter(&buf, UNSTRUCTURED, true)

	// We should expect the underlying data structures are correctly updated
	assert.Equal(t, len(logger.unstructuredColorWriters), 1)

	// Disable colors and log msg
	colors.DisableColor()
	logger.Info("foo")

	// Ensure that msg doesn't include colors afterwards
	prefix := fmt.Sprintf("%s %s", colors.LEFT_ARROW, "foo")
	_, _, ok := strings.Cut(buf.String(), prefix)
	assert.True(t, ok)
}

// TestSubLoggerContext verifies that a sub-logger attaches its key-value pair to structured output and inherits the
// writers of its parent.
func TestSubLoggerContext(t *testing.T) {
	logger := NewLogger(zerolog.InfoLevel)
	var buf bytes.Buffer
	logger.AddWriter(&buf, STRUCTURED, false)

	subLogger := logger.NewSubLogger("module", PLANNING_SERVICE)
	subLogger.Info("started ", 3, " workers")

	assert.Contains(t, buf.String(), `"module":"planning"`)
	assert.Contains(t, buf.String(), `"message":"started 3 workers"`)
}

// TestLogBufferString verifies that a LogBuffer is flattened into an uncolored message.
func TestLogBufferString(t *testing.T) {
	buffer := NewLogBuffer()
	buffer.Append(colors.Bold, "sequences: ", colors.Reset, 42)
	assert.Equal(t, "sequences: 42", buffer.String())

	// Log buffers passed to a logger are flattened as well
	logger := NewLogger(zerolog.InfoLevel)
	var buf bytes.Buffer
	logger.AddWriter(&buf, STRUCTURED, false)
	logger.Warn("summary: ", buffer)
	assert.Contains(t, buf.String(), `"message":"summary: sequences: 42"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

// TestLevelFiltering verifies that events below the logger's level are discarded.
func TestLevelFiltering(t *testing.T) {
	logger := NewLogger(zerolog.WarnLevel)
	var buf bytes.Buffer
	logger.AddWriter(&buf, STRUCTURED, false)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.SetLevel(zerolog.DebugLevel)
	assert.Equal(t, zerolog.DebugLevel, logger.Level())
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
