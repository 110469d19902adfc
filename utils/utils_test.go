package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

// TestClampInteger verifies integers are constrained to their inclusive bounds.
func TestClampInteger(t *testing.T) {
	value, clamped := ClampInteger(5, 1, 10)
	assert.EqualValues(t, 5, value)
	assert.False(t, clamped)

	value, clamped = ClampInteger(12, 1, 10)
	assert.EqualValues(t, 10, value)
	assert.True(t, clamped)

	value, clamped = ClampInteger(-3, 1, 10)
	assert.EqualValues(t, 1, value)
	assert.True(t, clamped)
}

// TestSaturatingSub verifies unsigned subtraction never wraps around.
func TestSaturatingSub(t *testing.T) {
	assert.EqualValues(t, 3, SaturatingSub[uint64](5, 2))
	assert.EqualValues(t, 0, SaturatingSub[uint64](2, 5))
	assert.EqualValues(t, 0, SaturatingSub[uint64](5, 5))
}

// TestSliceHelpers verifies the selection and filtering helpers.
func TestSliceHelpers(t *testing.T) {
	labels := []string{"push", "pop", "peek"}
	assert.EqualValues(t, []int{4, 3, 4}, SliceSelect(labels, func(x string) int { return len(x) }))
	assert.EqualValues(t, []string{"pop", "peek"}, SliceWhere(labels, func(x string) bool { return x[0] == 'p' && x != "push" }))
	assert.Empty(t, SliceWhere(labels, func(x string) bool { return false }))
}

// TestContextHelpers verifies the context helpers observe cancellation.
func TestContextHelpers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.False(t, CheckContextDone(ctx))
	assert.True(t, SleepContext(ctx, time.Millisecond))

	cancel()
	assert.True(t, CheckContextDone(ctx))
	assert.False(t, SleepContext(ctx, time.Hour))
}

// TestCreateFile verifies files are created inside directories which are made on demand.
func TestCreateFile(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "nested", "logs")
	file, err := CreateFile(directory, "run.log")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	assert.True(t, FileExists(filepath.Join(directory, "run.log")))
	assert.False(t, FileExists(filepath.Join(directory, "missing.log")))

	// A file cannot be used as a directory
	assert.Error(t, MakeDirectory(filepath.Join(directory, "run.log")))
}

// TestOpenFileForAppend verifies that reopening a file for appending keeps its previous contents.
func TestOpenFileForAppend(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "out")
	for _, line := range []string{"a\n", "b\n"} {
		file, err := OpenFileForAppend(directory, "sequences.txt")
		require.NoError(t, err)
		_, err = file.WriteString(line)
		require.NoError(t, err)
		require.NoError(t, file.Close())
	}

	b, err := os.ReadFile(filepath.Join(directory, "sequences.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(b))
}
