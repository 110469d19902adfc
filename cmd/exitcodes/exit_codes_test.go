package exitcodes

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// TestGetInnerErrorAndExitCode verifies exit codes are derived from plain and wrapped errors.
func TestGetInnerErrorAndExitCode(t *testing.T) {
	err, exitCode := GetInnerErrorAndExitCode(nil)
	assert.NoError(t, err)
	assert.Equal(t, ExitCodeSuccess, exitCode)

	plainErr := errors.New("failure")
	err, exitCode = GetInnerErrorAndExitCode(plainErr)
	assert.Equal(t, plainErr, err)
	assert.Equal(t, ExitCodeGeneralError, exitCode)

	err, exitCode = GetInnerErrorAndExitCode(NewErrorWithExitCode(plainErr, ExitCodeInvalidCheckpoint))
	assert.Equal(t, plainErr, err)
	assert.Equal(t, ExitCodeInvalidCheckpoint, exitCode)
	assert.Equal(t, "failure", NewErrorWithExitCode(plainErr, ExitCodePlannerError).Error())
}
