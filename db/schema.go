package db

import (
	"context"
	"fmt"
)

// Namespace isolates one feed's tables inside a shared database. A loaded
// feed's tables are all named "<namespace>_<table>"; an empty namespace
// means bare table names.
type Namespace string

// Table returns the namespaced physical table name.
func (n Namespace) Table(name string) string {
	if n == "" {
		return name
	}
	return string(n) + "_" + name
}

// Error tables, per feed namespace. error_refs and error_info reference
// errors.error_id, so drops run child-first and creates parent-first.
// error_info is reserved for structured key/value annotations and is
// currently never written, but downstream readers expect it to exist.
const (
	errorsDDL = `CREATE TABLE %s (
		error_id INTEGER PRIMARY KEY,
		type VARCHAR,
		problems VARCHAR
	)`
	errorRefsDDL = `CREATE TABLE %s (
		error_id INTEGER,
		entity_type VARCHAR,
		line_number INTEGER,
		entity_id VARCHAR,
		sequence_number INTEGER
	)`
	errorInfoDDL = `CREATE TABLE %s (
		error_id INTEGER,
		key VARCHAR,
		value VARCHAR
	)`
)

// CreateErrorTables drops any existing error tables for the namespace and
// recreates them empty.
func (d *DB) CreateErrorTables(ctx context.Context, ns Namespace) error {
	drops := []string{ns.Table("error_info"), ns.Table("error_refs"), ns.Table("errors")}
	for _, t := range drops {
		if _, err := d.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+t); err != nil {
			return fmt.Errorf("failed to drop %s: %w", t, err)
		}
	}
	creates := []struct{ table, ddl string }{
		{ns.Table("errors"), errorsDDL},
		{ns.Table("error_refs"), errorRefsDDL},
		{ns.Table("error_info"), errorInfoDDL},
	}
	for _, c := range creates {
		if _, err := d.conn.ExecContext(ctx, fmt.Sprintf(c.ddl, c.table)); err != nil {
			return fmt.Errorf("failed to create %s: %w", c.table, err)
		}
	}
	return nil
}

// MaxErrorID returns the highest error_id already stored for the namespace,
// or -1 when the table is empty. Used to resume numbering on reconnect.
func (d *DB) MaxErrorID(ctx context.Context, ns Namespace) (int, error) {
	var maxID *int
	err := d.conn.QueryRowContext(ctx, "SELECT max(error_id) FROM "+ns.Table("errors")).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("failed to read max error_id: %w", err)
	}
	if maxID == nil {
		return -1, nil
	}
	return *maxID, nil
}

// Pattern tables, per feed namespace.
const (
	patternsDDL = `CREATE TABLE %s (
		pattern_id VARCHAR PRIMARY KEY,
		route_id VARCHAR,
		name VARCHAR,
		shape_id VARCHAR
	)`
	patternHaltsDDL = `CREATE TABLE %s (
		pattern_id VARCHAR,
		halt_sequence INTEGER,
		stop_id VARCHAR,
		location_group_id VARCHAR,
		location_id VARCHAR,
		default_travel_time INTEGER,
		default_dwell_time INTEGER,
		pickup_type INTEGER,
		drop_off_type INTEGER,
		start_pickup_drop_off_window INTEGER,
		end_pickup_drop_off_window INTEGER,
		pickup_booking_rule_id VARCHAR,
		drop_off_booking_rule_id VARCHAR
	)`
)

// EnsureTripPatternColumn adds the pattern_id column to the namespace's
// trips table when it is missing. Importers do not know about pattern_id;
// it is this system's derived output.
func (d *DB) EnsureTripPatternColumn(ctx context.Context, ns Namespace) error {
	table := ns.Table("trips")
	ok, err := d.TableExists(ctx, table)
	if err != nil || !ok {
		return err
	}
	has, err := d.ColumnExists(ctx, table, "pattern_id")
	if err != nil || has {
		return err
	}
	if _, err := d.conn.ExecContext(ctx, "ALTER TABLE "+table+" ADD COLUMN pattern_id VARCHAR"); err != nil {
		return fmt.Errorf("failed to add pattern_id to %s: %w", table, err)
	}
	return nil
}

// EnsurePatternTables creates the pattern tables if they do not exist yet.
// Existing rows are kept so reusable patterns survive repeated runs.
func (d *DB) EnsurePatternTables(ctx context.Context, ns Namespace) error {
	creates := []struct{ table, ddl string }{
		{ns.Table("patterns"), patternsDDL},
		{ns.Table("pattern_halts"), patternHaltsDDL},
	}
	for _, c := range creates {
		ok, err := d.TableExists(ctx, c.table)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := d.conn.ExecContext(ctx, fmt.Sprintf(c.ddl, c.table)); err != nil {
			return fmt.Errorf("failed to create %s: %w", c.table, err)
		}
	}
	return nil
}
