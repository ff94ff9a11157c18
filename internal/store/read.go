package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/pulsenet/internal/ir"
)

// ErrRunNotFound is returned by ReadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is a recorded run.
type Run struct {
	ID            string         `json:"id"`
	NetworkHash   string         `json:"network_hash"`
	Network       ir.NetworkSpec `json:"network"`
	EngineVersion string         `json:"engine_version"`
	TraceVersion  string         `json:"trace_version"`
}

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	var run Run
	var network string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, network_hash, network, engine_version, trace_version
		FROM runs
		WHERE id = ?
	`, runID).Scan(&run.ID, &run.NetworkHash, &network, &run.EngineVersion, &run.TraceVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", runID, err)
	}

	run.Network, err = unmarshalNetwork(network)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// EventFilter narrows ReadEvents. Zero fields match everything.
type EventFilter struct {
	// Module matches events whose source or destination is Module.
	Module string
	// Press matches events of one press.
	Press int64
}

// ReadEvents returns a run's events ordered by seq.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadEvents(ctx context.Context, runID string, f EventFilter) ([]ir.Event, error) {
	where := []string{"run_id = ?"}
	args := []any{runID}
	if f.Module != "" {
		where = append(where, "(source = ? OR destination = ?)")
		args = append(args, f.Module, f.Module)
	}
	if f.Press != 0 {
		where = append(where, "press = ?")
		args = append(args, f.Press)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, press, source, destination, pulse
		FROM events
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY seq ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.Event{}
	for rows.Next() {
		var ev ir.Event
		var pulse string
		if err := rows.Scan(&ev.Seq, &ev.Press, &ev.Source, &ev.Destination, &pulse); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if ev.Pulse, err = unmarshalPulse(pulse); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// CountPulses returns a run's recorded pulses by level.
func (s *Store) CountPulses(ctx context.Context, runID string) (ir.PulseCounts, error) {
	var counts ir.PulseCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN pulse = 'low' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN pulse = 'high' THEN 1 ELSE 0 END), 0)
		FROM events
		WHERE run_id = ?
	`, runID).Scan(&counts.Low, &counts.High)
	if err != nil {
		return ir.PulseCounts{}, fmt.Errorf("count pulses: %w", err)
	}
	return counts, nil
}

// EdgeCount is the number of pulses of one level sent along one edge.
type EdgeCount struct {
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Pulse       ir.Pulse `json:"pulse"`
	Count       int64    `json:"count"`
}

// EdgeSummary returns per-edge pulse counts ordered by first use.
func (s *Store) EdgeSummary(ctx context.Context, runID string) ([]EdgeCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, destination, pulse, COUNT(*), MIN(seq) AS first_seq
		FROM events
		WHERE run_id = ?
		GROUP BY source, destination, pulse
		ORDER BY first_seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges := []EdgeCount{}
	for rows.Next() {
		var e EdgeCount
		var pulse string
		var firstSeq int64
		if err := rows.Scan(&e.Source, &e.Destination, &pulse, &e.Count, &firstSeq); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		if e.Pulse, err = unmarshalPulse(pulse); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return edges, nil
}

// CountEdge counts a run's pulses of level p from source to destination.
// An empty source or destination matches any module.
func (s *Store) CountEdge(ctx context.Context, runID, source, destination string, p ir.Pulse) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM events
		WHERE run_id = ?
		  AND (? = '' OR source = ?)
		  AND (? = '' OR destination = ?)
		  AND pulse = ?
	`, runID, source, source, destination, destination, p.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count edge: %w", err)
	}
	return n, nil
}
