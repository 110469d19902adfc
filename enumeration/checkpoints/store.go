package checkpoints

import (
	"sort"
	"sync"
	"time"

	"github.com/crytic/seqenum/logging"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// checkpointsBucket describes the bbolt bucket holding encoded envelopes, keyed by run ID.
var checkpointsBucket = []byte("checkpoints")

// defaultFlushThreshold describes the amount of pending writes which triggers a flush to disk.
const defaultFlushThreshold = 8

// ErrCheckpointNotFound is returned when a store holds no checkpoint for a run ID.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Store persists run checkpoints in a bbolt database. Writes are queued and flushed in batches once the flush
// threshold is reached, and always when the Store is flushed or closed. A Store is safe for concurrent use.
type Store struct {
	// db describes the underlying database.
	db *bbolt.DB

	// pendingWrites describes encoded envelopes which have been saved but not yet written to db.
	pendingWrites []pendingWrite

	// pendingWritesLock provides thread synchronization when accessing pendingWrites.
	pendingWritesLock sync.Mutex

	// flushThreshold describes the amount of pending writes which triggers a flush.
	flushThreshold int

	// logger describes the Store's log object
	logger *logging.Logger
}

// pendingWrite describes a queued database write.
type pendingWrite struct {
	key   []byte
	value []byte
}

// OpenStore opens or creates the checkpoint database at the provided path.
// Returns the Store, or an error if one occurs.
func OpenStore(path string) (*Store, error) {
	// Open the database, failing rather than blocking forever if another process holds it.
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open checkpoint database %s", path)
	}

	// Create our bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(checkpointsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}

	return &Store{
		db:             db,
		pendingWrites:  make([]pendingWrite, 0),
		flushThreshold: defaultFlushThreshold,
		logger:         logging.GlobalLogger.NewSubLogger("module", logging.CHECKPOINT_SERVICE),
	}, nil
}

// SetFlushThreshold updates the amount of pending writes which triggers a flush. Values below one flush every write.
func (s *Store) SetFlushThreshold(threshold int) {
	s.pendingWritesLock.Lock()
	defer s.pendingWritesLock.Unlock()
	s.flushThreshold = max(threshold, 1)
}

// PendingWrites returns the amount of saved checkpoints which have not been written to disk yet.
func (s *Store) PendingWrites() int {
	s.pendingWritesLock.Lock()
	defer s.pendingWritesLock.Unlock()
	return len(s.pendingWrites)
}

// Save queues the provided Envelope to be written under its run ID, replacing any previous checkpoint for that run.
// Returns an error if encoding or a triggered flush fails.
func (s *Store) Save(envelope *Envelope) error {
	if envelope.RunID == "" {
		return errors.New("cannot save a checkpoint without a run ID")
	}
	encoded, err := Encode(envelope)
	if err != nil {
		return err
	}

	s.pendingWritesLock.Lock()
	defer s.pendingWritesLock.Unlock()

	s.pendingWrites = append(s.pendingWrites, pendingWrite{key: []byte(envelope.RunID), value: encoded})
	if len(s.pendingWrites) >= s.flushThreshold {
		return s.flushWrites()
	}
	return nil
}

// Load obtains the latest checkpoint saved for the provided run ID.
// Returns the Envelope, or an error wrapping ErrCheckpointNotFound if the run has no checkpoint.
func (s *Store) Load(runID string) (*Envelope, error) {
	// Queued writes are newer than anything on disk, so check them first, latest first.
	s.pendingWritesLock.Lock()
	for i := len(s.pendingWrites) - 1; i >= 0; i-- {
		if string(s.pendingWrites[i].key) == runID {
			value := s.pendingWrites[i].value
			s.pendingWritesLock.Unlock()
			return Decode(value)
		}
	}
	s.pendingWritesLock.Unlock()

	// Read the encoded envelope from disk. bbolt values are only valid during the transaction, so copy it out.
	var encoded []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(checkpointsBucket).Get([]byte(runID))
		if data != nil {
			encoded = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if encoded == nil {
		return nil, errors.Wrapf(ErrCheckpointNotFound, "run %s", runID)
	}
	return Decode(encoded)
}

// List returns every stored checkpoint, sorted by run ID.
// Returns an error if pending writes could not be flushed or an envelope could not be decoded.
func (s *Store) List() ([]*Envelope, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}

	envelopes := make([]*Envelope, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(checkpointsBucket).ForEach(func(key, value []byte) error {
			envelope, err := Decode(value)
			if err != nil {
				return errors.Wrapf(err, "run %s", string(key))
			}
			envelopes = append(envelopes, envelope)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(envelopes, func(i, j int) bool {
		return envelopes[i].RunID < envelopes[j].RunID
	})
	return envelopes, nil
}

// Delete removes the checkpoint stored for the provided run ID.
// Returns an error wrapping ErrCheckpointNotFound if the run has no checkpoint.
func (s *Store) Delete(runID string) error {
	if err := s.Flush(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(checkpointsBucket)
		if bucket.Get([]byte(runID)) == nil {
			return errors.Wrapf(ErrCheckpointNotFound, "run %s", runID)
		}
		return errors.WithStack(bucket.Delete([]byte(runID)))
	})
}

// Flush writes every pending write to disk.
func (s *Store) Flush() error {
	s.pendingWritesLock.Lock()
	defer s.pendingWritesLock.Unlock()
	return s.flushWrites()
}

// flushWrites writes every pending write to disk in a single transaction. The caller must hold pendingWritesLock.
func (s *Store) flushWrites() error {
	if len(s.pendingWrites) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(checkpointsBucket)
		for _, pw := range s.pendingWrites {
			if err := bucket.Put(pw.key, pw.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}
	s.logger.Debug("Flushed ", len(s.pendingWrites), " checkpoint writes to ", s.db.Path())
	s.pendingWrites = s.pendingWrites[:0]
	return nil
}

// Close flushes any pending writes and closes the database.
func (s *Store) Close() error {
	err := s.Flush()
	if err != nil {
		return err
	}
	return errors.WithStack(s.db.Close())
}
