package validation

import (
	"context"
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-flex-validator/db"
	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

// StoreMode selects how the error store initializes against the namespace.
type StoreMode string

const (
	// Create drops and recreates the error tables; numbering starts at 0.
	Create StoreMode = "create"
	// Reconnect resumes numbering after the highest error_id already in the
	// table, so an incremental run against a previously-validated feed never
	// reuses an identity. An empty table resumes at 0.
	Reconnect StoreMode = "reconnect"
)

// DefaultBatchSize is how many findings are buffered before a flush.
const DefaultBatchSize = 500

// ErrorStore durably records findings. Store calls are buffered and written
// in batches; Finish must be called exactly once to commit the tail of the
// buffer. Not safe for concurrent use - a run owns its store.
type ErrorStore struct {
	db        *db.DB
	ns        db.Namespace
	batchSize int
	buffer    []storedError
	nextID    int
	stored    int
}

type storedError struct {
	id  int
	err *ValidationError
}

// NewErrorStore initializes a store for the namespace in the given mode.
// batchSize <= 0 selects DefaultBatchSize.
func NewErrorStore(ctx context.Context, d *db.DB, ns db.Namespace, mode StoreMode, batchSize int) (*ErrorStore, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	s := &ErrorStore{db: d, ns: ns, batchSize: batchSize}

	switch mode {
	case Create:
		if err := d.CreateErrorTables(ctx, ns); err != nil {
			return nil, fmt.Errorf("error store init: %w", err)
		}
	case Reconnect:
		maxID, err := d.MaxErrorID(ctx, ns)
		if err != nil {
			return nil, fmt.Errorf("error store reconnect: %w", err)
		}
		s.nextID = maxID + 1
		s.stored = maxID + 1
	default:
		return nil, fmt.Errorf("error store init: unknown mode %q", mode)
	}
	return s, nil
}

// Store assigns the next identity to the finding and buffers it. The write
// hits the database once the buffer reaches the batch size; a flush failure
// is a fatal storage error and is not retried.
func (s *ErrorStore) Store(ctx context.Context, e *ValidationError) error {
	s.buffer = append(s.buffer, storedError{id: s.nextID, err: e})
	s.nextID++
	s.stored++
	if len(s.buffer) >= s.batchSize {
		return s.flush(ctx)
	}
	return nil
}

// Count returns the number of findings stored so far, which is also the
// next identity to be assigned.
func (s *ErrorStore) Count() int {
	return s.stored
}

// Finish flushes any buffered findings. Call exactly once at the end of a
// run; skipping it loses whatever is still buffered.
func (s *ErrorStore) Finish(ctx context.Context) error {
	return s.flush(ctx)
}

func (s *ErrorStore) flush(ctx context.Context) error {
	if len(s.buffer) == 0 {
		return nil
	}
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error store flush: %w", err)
	}
	defer tx.Rollback()

	errStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+s.ns.Table("errors")+" (error_id, type, problems) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("error store flush: %w", err)
	}
	defer errStmt.Close()

	refStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+s.ns.Table("error_refs")+" (error_id, entity_type, line_number, entity_id, sequence_number) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("error store flush: %w", err)
	}
	defer refStmt.Close()

	for _, se := range s.buffer {
		if _, err := errStmt.ExecContext(ctx, se.id, string(se.err.Type), se.err.BadValue); err != nil {
			return fmt.Errorf("error store flush: insert error %d: %w", se.id, err)
		}
		for _, ref := range se.err.Refs {
			var entityID any
			if ref.EntityID != "" {
				entityID = ref.EntityID
			}
			var seq any
			if ref.Sequence != gtfs.MissingInt {
				seq = ref.Sequence
			}
			if _, err := refStmt.ExecContext(ctx, se.id, ref.Kind, ref.Line, entityID, seq); err != nil {
				return fmt.Errorf("error store flush: insert ref for error %d: %w", se.id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error store flush: commit: %w", err)
	}
	s.buffer = s.buffer[:0]
	return nil
}
