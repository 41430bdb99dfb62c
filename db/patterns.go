package db

import (
	"context"
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

// PatternWriter persists inferred patterns for one feed namespace. It is the
// sink the pattern builder writes through at the end of a validation run.
type PatternWriter struct {
	db *DB
	ns Namespace
}

// NewPatternWriter returns a writer for the namespace, creating the pattern
// tables and the trips.pattern_id column when they do not exist yet.
func NewPatternWriter(ctx context.Context, d *DB, ns Namespace) (*PatternWriter, error) {
	if err := d.EnsurePatternTables(ctx, ns); err != nil {
		return nil, err
	}
	if err := d.EnsureTripPatternColumn(ctx, ns); err != nil {
		return nil, err
	}
	return &PatternWriter{db: d, ns: ns}, nil
}

// WritePatterns upserts the patterns, replaces their halt rows and sets
// pattern_id on every trip in tripPatterns. Pattern ids are derived from the
// halt sequence, so re-running against an already-populated table rewrites
// identical rows.
func (w *PatternWriter) WritePatterns(ctx context.Context, patterns []*gtfs.Pattern, tripPatterns map[string]string) error {
	tx, err := w.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	patternStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO `+w.ns.Table("patterns")+` (pattern_id, route_id, name, shape_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (pattern_id) DO UPDATE SET
			route_id = excluded.route_id,
			name = excluded.name,
			shape_id = excluded.shape_id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare pattern statement: %w", err)
	}
	defer patternStmt.Close()

	haltStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO `+w.ns.Table("pattern_halts")+` (
			pattern_id, halt_sequence, stop_id, location_group_id, location_id,
			default_travel_time, default_dwell_time, pickup_type, drop_off_type,
			start_pickup_drop_off_window, end_pickup_drop_off_window,
			pickup_booking_rule_id, drop_off_booking_rule_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare halt statement: %w", err)
	}
	defer haltStmt.Close()

	for _, p := range patterns {
		if _, err := patternStmt.ExecContext(ctx, p.PatternID, p.RouteID, p.Name, p.ShapeID); err != nil {
			return fmt.Errorf("failed to upsert pattern %s: %w", p.PatternID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM "+w.ns.Table("pattern_halts")+" WHERE pattern_id = ?", p.PatternID); err != nil {
			return fmt.Errorf("failed to clear halts for pattern %s: %w", p.PatternID, err)
		}
		for _, h := range p.Halts {
			if _, err := haltStmt.ExecContext(ctx,
				p.PatternID, h.HaltSequence, h.StopID, h.LocationGroupID, h.LocationID,
				h.DefaultTravelTime, h.DefaultDwellTime, h.PickupType, h.DropOffType,
				h.StartPickupDropOffWindow, h.EndPickupDropOffWindow,
				h.PickupBookingRuleID, h.DropOffBookingRuleID); err != nil {
				return fmt.Errorf("failed to insert halt for pattern %s: %w", p.PatternID, err)
			}
		}
	}

	if len(tripPatterns) > 0 {
		tripStmt, err := tx.PrepareContext(ctx,
			"UPDATE "+w.ns.Table("trips")+" SET pattern_id = ? WHERE trip_id = ?")
		if err != nil {
			return fmt.Errorf("failed to prepare trip update: %w", err)
		}
		defer tripStmt.Close()
		for tripID, patternID := range tripPatterns {
			if _, err := tripStmt.ExecContext(ctx, patternID, tripID); err != nil {
				return fmt.Errorf("failed to set pattern on trip %s: %w", tripID, err)
			}
		}
	}

	return tx.Commit()
}
