// Package version provides build and version information for seqenum.
// Commit metadata is taken from the VCS settings embedded by the Go toolchain, unless set explicitly via ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Masterminds/semver"
	"github.com/crytic/seqenum/enumeration/checkpoints"
)

// These variables can be set via ldflags at build time for explicit versioning.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// GitCommit is the git commit hash.
	GitCommit = ""
	// GitCommitTime is the timestamp of the git commit.
	GitCommitTime = ""
	// GitTreeDirty indicates if the git tree was dirty at build time.
	GitTreeDirty = ""
)

// Info contains the full version information for the build.
type Info struct {
	// Version is the semantic version of the build.
	Version string
	// CheckpointFormat is the version of the checkpoint envelope format this build writes.
	CheckpointFormat string
	// GitCommit is the git commit hash the build was made from.
	GitCommit string
	// GitCommitTime is the RFC3339 timestamp of GitCommit.
	GitCommitTime string
	// GitTreeDirty indicates the build contained uncommitted changes.
	GitTreeDirty bool
	// GoVersion is the version of the Go runtime.
	GoVersion string
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	// Fill in any VCS info that was not provided via ldflags
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			if GitCommit == "" {
				GitCommit = kv.Value
			}
		case "vcs.time":
			if GitCommitTime == "" {
				GitCommitTime = kv.Value
			}
		case "vcs.modified":
			if GitTreeDirty == "" {
				GitTreeDirty = kv.Value
			}
		}
	}
}

// GetInfo returns the complete version information.
func GetInfo() Info {
	return Info{
		Version:          Version,
		CheckpointFormat: checkpoints.FormatVersion,
		GitCommit:        GitCommit,
		GitCommitTime:    GitCommitTime,
		GitTreeDirty:     GitTreeDirty == "true",
		GoVersion:        runtime.Version(),
	}
}

// SemVer parses the build version as a semantic version.
// Returns an error if the version was overridden with a malformed value.
func (i Info) SemVer() (*semver.Version, error) {
	return semver.NewVersion(i.Version)
}

// ShortCommit returns the first 7 characters of the git commit hash.
func (i Info) ShortCommit() string {
	if len(i.GitCommit) >= 7 {
		return i.GitCommit[:7]
	}
	return i.GitCommit
}

// FormattedTime returns the commit time in a human-readable format.
func (i Info) FormattedTime() string {
	if i.GitCommitTime == "" {
		return "unknown"
	}
	t, err := time.Parse(time.RFC3339, i.GitCommitTime)
	if err != nil {
		return i.GitCommitTime
	}
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}

// String returns a formatted multi-line version string.
func (i Info) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("seqenum version %s\n", i.Version))

	if i.GitCommit != "" {
		commit := i.ShortCommit()
		if i.GitTreeDirty {
			commit += "-dirty"
		}
		sb.WriteString(fmt.Sprintf("  Commit:            %s\n", commit))
	}

	if i.GitCommitTime != "" {
		sb.WriteString(fmt.Sprintf("  Built:             %s\n", i.FormattedTime()))
	}

	sb.WriteString(fmt.Sprintf("  Checkpoint format: %s\n", i.CheckpointFormat))
	sb.WriteString(fmt.Sprintf("  Go version:        %s\n", i.GoVersion))

	return sb.String()
}

// Short returns a single-line version string suitable for --version output.
func (i Info) Short() string {
	v := i.Version
	if i.GitCommit != "" {
		v += "+" + i.ShortCommit()
		if i.GitTreeDirty {
			v += "-dirty"
		}
	}
	return v
}
