package config

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/crytic/seqenum/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes the configuration of an exhaustive sequence planning project.
type ProjectConfig struct {
	// Enumeration describes the configuration used by the planning.Planner.
	Enumeration EnumerationConfig `json:"enumeration" toml:"enumeration"`

	// Logging describes the configuration used for logging.
	Logging LoggingConfig `json:"logging" toml:"logging"`
}

// EnumerationConfig describes the configuration options used by the planning.Planner.
type EnumerationConfig struct {
	// Operations describes the ordered list of operation labels whose arrangements are enumerated.
	Operations []string `json:"operations" toml:"operations"`

	// OperationsFile describes a path to a file listing additional operation labels, one per line. Blank lines and
	// lines starting with '#' are ignored. Labels from the file are appended after Operations.
	OperationsFile string `json:"operationsFile" toml:"operationsFile"`

	// MaxLength describes the longest sequence to enumerate. A zero value uses the number of operations, and values
	// above it are clamped to it.
	MaxLength int `json:"maxLength" toml:"maxLength"`

	// Timeout describes a time in seconds for which the planner should run. Providing negative or zero value will
	// result in no timeout.
	Timeout int `json:"timeout" toml:"timeout"`

	// TestLimit describes a threshold for the number of sequences to produce in this invocation, after which the
	// planner will stop. A zero value indicates the test limit should not be enforced.
	TestLimit uint64 `json:"testLimit" toml:"testLimit"`

	// CheckpointDatabase describes the path of the database checkpoints are persisted to. If empty, checkpoints are not
	// persisted and runs cannot be resumed.
	CheckpointDatabase string `json:"checkpointDatabase" toml:"checkpointDatabase"`

	// CheckpointInterval describes how many sequences are produced between two checkpoints. Each checkpoint is
	// flushed to disk when saved, so at most one interval is replayed after the process is killed. A checkpoint is
	// always saved when the planner stops. A zero value only checkpoints on stop.
	CheckpointInterval uint64 `json:"checkpointInterval" toml:"checkpointInterval"`

	// ResumeRunID describes the identifier of a previously checkpointed run to continue. If empty, a new run is
	// started.
	ResumeRunID string `json:"resumeRunId" toml:"resumeRunId"`

	// OutputFile describes a path where produced sequences are written, one per line. If empty, sequences are written
	// to stdout.
	OutputFile string `json:"outputFile" toml:"outputFile"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level" toml:"level"`

	// LogDirectory describes what directory log files should be outputted in. LogDirectory being a non-empty string is
	// equivalent to enabling file logging.
	LogDirectory string `json:"logDirectory" toml:"logDirectory"`

	// NoColor indicates whether log messages should be displayed with colored formatting.
	NoColor bool `json:"noColor" toml:"noColor"`
}

// isTOMLPath indicates whether the provided path should be treated as a TOML configuration file.
func isTOMLPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// ReadProjectConfigFromFile reads a ProjectConfig from a provided file path. Files with a .toml extension are parsed
// as TOML, any other file as JSON. Options missing from the file keep their default values.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration on top of our defaults
	projectConfig := GetDefaultProjectConfig()
	if isTOMLPath(path) {
		_, err = toml.Decode(string(b), projectConfig)
	} else {
		err = json.Unmarshal(b, projectConfig)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse project configuration %s", path)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path, in TOML if the path has a .toml extension or in JSON
// otherwise. Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	var b []byte
	if isTOMLPath(path) {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(p); err != nil {
			return errors.WithStack(err)
		}
		b = []byte(sb.String())
	} else {
		var err error
		b, err = json.MarshalIndent(p, "", "\t")
		if err != nil {
			return errors.WithStack(err)
		}
	}

	// Save it to the provided output path and return the result
	err := os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify we have something to enumerate
	if len(p.Enumeration.Operations) == 0 && p.Enumeration.OperationsFile == "" {
		return errors.Errorf("project configuration must provide operations or an operations file")
	}

	// Verify the operations file exists, if provided
	if p.Enumeration.OperationsFile != "" {
		if _, err := os.Stat(p.Enumeration.OperationsFile); err != nil {
			return errors.Errorf("operations file %s could not be accessed: %v", p.Enumeration.OperationsFile, err)
		}
	}

	// Verify the maximum sequence length is not negative
	if p.Enumeration.MaxLength < 0 {
		return errors.Errorf("maximum sequence length cannot be negative")
	}

	// Resuming requires somewhere to resume from
	if p.Enumeration.ResumeRunID != "" && p.Enumeration.CheckpointDatabase == "" {
		return errors.Errorf("a checkpoint database must be provided to resume run %s", p.Enumeration.ResumeRunID)
	}

	return nil
}

// ResolveOperations returns the ordered list of operation labels described by Operations and OperationsFile.
// Returns an error if the file could not be read, if a label is empty, or if no operations were found.
func (e *EnumerationConfig) ResolveOperations() ([]string, error) {
	operations := make([]string, 0, len(e.Operations))
	for i, operation := range e.Operations {
		operation = strings.TrimSpace(operation)
		if operation == "" {
			return nil, errors.Errorf("operation %d has an empty label", i)
		}
		operations = append(operations, operation)
	}

	// Append every label listed in the operations file
	if e.OperationsFile != "" {
		file, err := os.Open(e.OperationsFile)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			operations = append(operations, line)
		}
		if err = scanner.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if len(operations) == 0 {
		return nil, errors.Errorf("no operations to enumerate")
	}
	return operations, nil
}

// EffectiveMaxLength returns the sequence length bound to use for a domain of the provided size: the configured
// MaxLength, or the domain size if MaxLength is zero or exceeds it. The second return value indicates whether the
// configured value was clamped.
func (e *EnumerationConfig) EffectiveMaxLength(domainSize int) (int, bool) {
	if e.MaxLength == 0 {
		return domainSize, false
	}
	return utils.ClampInteger(e.MaxLength, 1, domainSize)
}
