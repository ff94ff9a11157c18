package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/pulsenet/internal/ir"
)

// WriteRun records a run and the network it simulates.
// Uses ON CONFLICT(id) DO NOTHING, so re-recording a run is a no-op.
func (s *Store) WriteRun(ctx context.Context, runID string, spec ir.NetworkSpec) error {
	hash, err := ir.NetworkHash(spec)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	network, err := marshalNetwork(spec)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, network_hash, network, engine_version, trace_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, runID, hash, network, ir.EngineVersion, ir.TraceVersion)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

const insertEventSQL = `
	INSERT INTO events (run_id, seq, press, source, destination, pulse)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, seq) DO NOTHING
`

// WriteEvent records one delivered pulse. The run must already exist.
func (s *Store) WriteEvent(ctx context.Context, runID string, ev ir.Event) error {
	_, err := s.db.ExecContext(ctx, insertEventSQL,
		runID, ev.Seq, ev.Press, ev.Source, ev.Destination, ev.Pulse.String())
	if err != nil {
		return fmt.Errorf("write event %d: %w", ev.Seq, err)
	}
	return nil
}

// Recorder writes engine events into the store inside one transaction.
//
// Observe matches engine.Observer, so a recorder subscribes directly:
//
//	rec, err := store.NewRecorder(ctx, s, e.RunID(), spec)
//	unsubscribe := e.Subscribe(rec.Observe)
//	...
//	unsubscribe()
//	err = rec.Close()
//
// The store has a single connection, which the open transaction holds.
// Close the recorder before reading from the store.
type Recorder struct {
	ctx   context.Context
	runID string
	tx    *sql.Tx
	stmt  *sql.Stmt
	n     int64
	err   error
}

// NewRecorder records the run and opens the transaction events go into.
func NewRecorder(ctx context.Context, s *Store, runID string, spec ir.NetworkSpec) (*Recorder, error) {
	if err := s.WriteRun(ctx, runID, spec); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin recording: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertEventSQL)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("prepare recording: %w", err)
	}

	return &Recorder{ctx: ctx, runID: runID, tx: tx, stmt: stmt}, nil
}

// Observe writes ev. After the first failure further events are ignored;
// the failure is reported by Close.
func (r *Recorder) Observe(ev ir.Event) {
	if r.err != nil {
		return
	}
	if _, err := r.stmt.ExecContext(r.ctx, r.runID, ev.Seq, ev.Press, ev.Source, ev.Destination, ev.Pulse.String()); err != nil {
		r.err = fmt.Errorf("record event %d: %w", ev.Seq, err)
		return
	}
	r.n++
}

// Recorded returns the number of events written so far.
func (r *Recorder) Recorded() int64 {
	return r.n
}

// Close commits the recorded events, or rolls back and returns the first
// write error.
func (r *Recorder) Close() error {
	r.stmt.Close()
	if r.err != nil {
		r.tx.Rollback()
		return r.err
	}
	if err := r.tx.Commit(); err != nil {
		return fmt.Errorf("commit recording: %w", err)
	}
	return nil
}
