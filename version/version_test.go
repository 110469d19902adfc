package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInfoFormatting verifies the short and long version strings.
func TestInfoFormatting(t *testing.T) {
	info := Info{
		Version:          "0.1.0",
		CheckpointFormat: "1.0.0",
		GitCommit:        "0123456789abcdef",
		GitCommitTime:    "2024-05-01T10:00:00Z",
		GitTreeDirty:     true,
		GoVersion:        "go1.23.3",
	}

	assert.Equal(t, "0.1.0+0123456-dirty", info.Short())
	assert.Equal(t, "2024-05-01 10:00:00 UTC", info.FormattedTime())

	long := info.String()
	assert.True(t, strings.HasPrefix(long, "seqenum version 0.1.0\n"))
	assert.Contains(t, long, "0123456-dirty")
	assert.Contains(t, long, "Checkpoint format: 1.0.0")

	// Without VCS metadata, only the version is reported
	info = Info{Version: "0.1.0"}
	assert.Equal(t, "0.1.0", info.Short())
	assert.Equal(t, "unknown", info.FormattedTime())
}

// TestBuildVersionIsSemantic verifies the default build version parses as a semantic version.
func TestBuildVersionIsSemantic(t *testing.T) {
	v, err := GetInfo().SemVer()
	require.NoError(t, err)
	assert.EqualValues(t, 0, v.Major())
}
