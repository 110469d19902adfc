package checkpoints

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/Masterminds/semver"
	"github.com/crytic/seqenum/enumeration"
	"github.com/fxamacker/cbor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// FormatVersion describes the version of the envelope layout written by this package.
const FormatVersion = "1.0.0"

// supportedFormatVersions describes the envelope versions this package is able to read.
const supportedFormatVersions = "^1"

var (
	// ErrUnsupportedFormat is returned when decoding an envelope written in an incompatible layout.
	ErrUnsupportedFormat = errors.New("unsupported checkpoint format")

	// ErrFingerprintMismatch is returned when an envelope is verified against a domain other than the one it was
	// captured over.
	ErrFingerprintMismatch = errors.New("checkpoint was captured over a different domain")
)

// Envelope wraps an enumeration.SequenceCheckpoint with the metadata needed to resume an exhaustive run in a later
// process: which run it belongs to, which domain it was captured over and how far the run had progressed.
type Envelope struct {
	// FormatVersion describes the semantic version of the envelope layout.
	FormatVersion string `cbor:"1,keyasint" json:"formatVersion"`

	// RunID describes the unique identifier of the run the checkpoint belongs to.
	RunID string `cbor:"2,keyasint" json:"runId"`

	// Fingerprint describes a digest of the ordered domain labels the run enumerates.
	Fingerprint []byte `cbor:"3,keyasint" json:"fingerprint"`

	// DomainSize describes the amount of elements in the domain.
	DomainSize int `cbor:"4,keyasint" json:"domainSize"`

	// MaxLength describes the sequence length bound in effect when the checkpoint was captured.
	MaxLength int `cbor:"5,keyasint" json:"maxLength"`

	// Iterated describes the cumulative amount of sequences produced by the run across every resumption.
	Iterated uint64 `cbor:"6,keyasint" json:"iterated"`

	// Checkpoint describes the position of the run's enumeration.SequenceGenerator.
	Checkpoint enumeration.SequenceCheckpoint `cbor:"7,keyasint" json:"checkpoint"`

	// UpdatedAt describes the unix timestamp at which the checkpoint was captured.
	UpdatedAt int64 `cbor:"8,keyasint" json:"updatedAt"`
}

// NewRunID returns a new unique run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewEnvelope creates an Envelope for the provided run, domain labels and checkpoint.
func NewEnvelope(runID string, labels []string, maxLength int, iterated uint64, checkpoint enumeration.SequenceCheckpoint) *Envelope {
	return &Envelope{
		FormatVersion: FormatVersion,
		RunID:         runID,
		Fingerprint:   Fingerprint(labels),
		DomainSize:    len(labels),
		MaxLength:     maxLength,
		Iterated:      iterated,
		Checkpoint:    checkpoint.Clone(),
		UpdatedAt:     time.Now().Unix(),
	}
}

// Fingerprint returns a SHA3-256 digest of the ordered domain labels. Each label is length-prefixed so that distinct
// label lists never share an encoding.
func Fingerprint(labels []string) []byte {
	hash := sha3.New256()
	var lengthPrefix [8]byte
	for _, label := range labels {
		binary.BigEndian.PutUint64(lengthPrefix[:], uint64(len(label)))
		hash.Write(lengthPrefix[:])
		hash.Write([]byte(label))
	}
	return hash.Sum(nil)
}

// Verify checks that the Envelope was captured over the provided ordered domain labels.
// Returns an error wrapping ErrFingerprintMismatch if it was not.
func (e *Envelope) Verify(labels []string) error {
	if e.DomainSize != len(labels) {
		return errors.Wrapf(ErrFingerprintMismatch, "checkpoint covers %d operations, domain has %d", e.DomainSize, len(labels))
	}
	if !bytes.Equal(e.Fingerprint, Fingerprint(labels)) {
		return errors.Wrapf(ErrFingerprintMismatch, "run %s", e.RunID)
	}
	return nil
}

// Encode serializes the Envelope into canonical CBOR.
// Returns the encoded bytes, or an error if one occurs.
func Encode(e *Envelope) ([]byte, error) {
	b, err := cbor.Marshal(e, cbor.EncOptions{Sort: cbor.SortCanonical})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// Decode deserializes an Envelope from CBOR and verifies its layout version is supported.
// Returns the Envelope, or an error if one occurs.
func Decode(b []byte) (*Envelope, error) {
	// Parse the envelope
	var envelope Envelope
	if err := cbor.Unmarshal(b, &envelope); err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the layout version and ensure it is one we can read.
	version, err := semver.NewVersion(envelope.FormatVersion)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "invalid format version %q", envelope.FormatVersion)
	}
	constraint, err := semver.NewConstraint(supportedFormatVersions)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !constraint.Check(version) {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "format version %s does not satisfy %s", version, supportedFormatVersions)
	}
	return &envelope, nil
}
