package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

// LoadFeed reads an already-loaded feed's tables for the namespace into an
// in-memory gtfs.Feed and indexes it. Every feed table carries an `id`
// column holding the source row number from the original archive; it becomes
// the record's Line. Flex tables (locations, location_groups,
// location_group_stops, booking_rules) and patterns are optional and load as
// empty collections when absent.
func (d *DB) LoadFeed(ctx context.Context, ns Namespace) (*gtfs.Feed, error) {
	f := &gtfs.Feed{}

	if err := d.loadStops(ctx, ns, f); err != nil {
		return nil, err
	}
	if err := d.loadRoutes(ctx, ns, f); err != nil {
		return nil, err
	}
	if err := d.loadTrips(ctx, ns, f); err != nil {
		return nil, err
	}
	if err := d.loadStopTimes(ctx, ns, f); err != nil {
		return nil, err
	}
	if err := d.loadLocations(ctx, ns, f); err != nil {
		return nil, err
	}
	if err := d.loadLocationGroups(ctx, ns, f); err != nil {
		return nil, err
	}
	if err := d.loadLocationGroupStops(ctx, ns, f); err != nil {
		return nil, err
	}
	if err := d.loadBookingRules(ctx, ns, f); err != nil {
		return nil, err
	}
	if err := d.loadFareRules(ctx, ns, f); err != nil {
		return nil, err
	}
	if err := d.loadPatterns(ctx, ns, f); err != nil {
		return nil, err
	}

	f.Index()
	return f, nil
}

// optionalQuery runs a query against a table that may not exist; ok is false
// when the table is absent.
func (d *DB) optionalQuery(ctx context.Context, table, query string) (*sql.Rows, bool, error) {
	exists, err := d.TableExists(ctx, table)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}
	rows, err := d.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return rows, true, nil
}

// intOr maps a nullable integer column to its value or the given sentinel.
func intOr(v sql.NullInt64, missing int) int {
	if !v.Valid {
		return missing
	}
	return int(v.Int64)
}

func str(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func (d *DB) loadStops(ctx context.Context, ns Namespace, f *gtfs.Feed) error {
	table := ns.Table("stops")
	rows, ok, err := d.optionalQuery(ctx, table,
		"SELECT id, stop_id, stop_name, stop_lat, stop_lon, zone_id, parent_station, location_type FROM "+table)
	if err != nil || !ok {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line               int
			stopID             string
			name, zone, parent sql.NullString
			lat, lon           sql.NullFloat64
			locType            sql.NullInt64
		)
		if err := rows.Scan(&line, &stopID, &name, &lat, &lon, &zone, &parent, &locType); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		f.Stops = append(f.Stops, &gtfs.Stop{
			StopID:        stopID,
			Name:          str(name),
			Lat:           lat.Float64,
			Lon:           lon.Float64,
			ZoneID:        str(zone),
			ParentStation: str(parent),
			LocationType:  intOr(locType, 0),
			Line:          line,
		})
	}
	return rows.Err()
}

func (d *DB) loadRoutes(ctx context.Context, ns Namespace, f *gtfs.Feed) error {
	table := ns.Table("routes")
	rows, ok, err := d.optionalQuery(ctx, table,
		"SELECT id, route_id, agency_id, route_short_name, route_long_name, route_type, continuous_pickup, continuous_drop_off FROM "+table)
	if err != nil || !ok {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line                    int
			routeID                 string
			agency, short, long     sql.NullString
			routeType, contP, contD sql.NullInt64
		)
		if err := rows.Scan(&line, &routeID, &agency, &short, &long, &routeType, &contP, &contD); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		f.Routes = append(f.Routes, &gtfs.Route{
			RouteID:           routeID,
			AgencyID:          str(agency),
			ShortName:         str(short),
			LongName:          str(long),
			Type:              intOr(routeType, 0),
			ContinuousPickup:  intOr(contP, gtfs.MissingInt),
			ContinuousDropOff: intOr(contD, gtfs.MissingInt),
			Line:              line,
		})
	}
	return rows.Err()
}

func (d *DB) loadTrips(ctx context.Context, ns Namespace, f *gtfs.Feed) error {
	table := ns.Table("trips")
	// pattern_id is written back by pattern inference; importer schemas may
	// not have the column yet.
	patternCol := "pattern_id"
	if has, err := d.ColumnExists(ctx, table, "pattern_id"); err != nil {
		return err
	} else if !has {
		patternCol = "NULL AS pattern_id"
	}
	rows, ok, err := d.optionalQuery(ctx, table,
		"SELECT id, trip_id, route_id, service_id, shape_id, block_id, trip_headsign, direction_id, "+patternCol+" FROM "+table)
	if err != nil || !ok {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line                       int
			tripID                     string
			routeID, service, shape    sql.NullString
			block, headsign, patternID sql.NullString
			direction                  sql.NullInt64
		)
		if err := rows.Scan(&line, &tripID, &routeID, &service, &shape, &block, &headsign, &direction, &patternID); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		f.Trips = append(f.Trips, &gtfs.Trip{
			TripID:      tripID,
			RouteID:     str(routeID),
			ServiceID:   str(service),
			ShapeID:     str(shape),
			BlockID:     str(block),
			Headsign:    str(headsign),
			DirectionID: intOr(direction, gtfs.MissingInt),
			PatternID:   str(patternID),
			Line:        line,
		})
	}
	return rows.Err()
}

func (d *DB) loadStopTimes(ctx context.Context, ns Namespace, f *gtfs.Feed) error {
	table := ns.Table("stop_times")
	rows, ok, err := d.optionalQuery(ctx, table,
		`SELECT id, trip_id, stop_sequence, stop_id, location_group_id, location_id,
			arrival_time, departure_time, start_pickup_drop_off_window, end_pickup_drop_off_window,
			pickup_type, drop_off_type, continuous_pickup, continuous_drop_off,
			pickup_booking_rule_id, drop_off_booking_rule_id, timepoint, shape_dist_traveled
		FROM `+table)
	if err != nil || !ok {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line, seq                         int
			tripID                            string
			stopID, groupID, locationID       sql.NullString
			arr, dep, startW, endW            sql.NullInt64
			pickup, dropOff, contP, contD, tp sql.NullInt64
			pickupRule, dropOffRule           sql.NullString
			shapeDist                         sql.NullFloat64
		)
		if err := rows.Scan(&line, &tripID, &seq, &stopID, &groupID, &locationID,
			&arr, &dep, &startW, &endW, &pickup, &dropOff, &contP, &contD,
			&pickupRule, &dropOffRule, &tp, &shapeDist); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		f.StopTimes = append(f.StopTimes, &gtfs.StopTime{
			TripID:                   tripID,
			StopSequence:             seq,
			StopID:                   str(stopID),
			LocationGroupID:          str(groupID),
			LocationID:               str(locationID),
			ArrivalTime:              intOr(arr, gtfs.MissingInt),
			DepartureTime:            intOr(dep, gtfs.MissingInt),
			StartPickupDropOffWindow: intOr(startW, gtfs.MissingInt),
			EndPickupDropOffWindow:   intOr(endW, gtfs.MissingInt),
			PickupType:               intOr(pickup, gtfs.MissingInt),
			DropOffType:              intOr(dropOff, gtfs.MissingInt),
			ContinuousPickup:         intOr(contP, gtfs.MissingInt),
			ContinuousDropOff:        intOr(contD, gtfs.MissingInt),
			PickupBookingRuleID:      str(pickupRule),
			DropOffBookingRuleID:     str(dropOffRule),
			Timepoint:                intOr(tp, gtfs.MissingInt),
			ShapeDistTraveled:        shapeDist.Float64,
			Line:                     line,
		})
	}
	return rows.Err()
}

func (d *DB) loadLocations(ctx context.Context, ns Namespace, f *gtfs.Feed) error {
	table := ns.Table("locations")
	rows, ok, err := d.optionalQuery(ctx, table,
		"SELECT id, location_id, location_name, zone_id FROM "+table)
	if err != nil || !ok {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line       int
			locationID string
			name, zone sql.NullString
		)
		if err := rows.Scan(&line, &locationID, &name, &zone); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		f.Locations = append(f.Locations, &gtfs.Location{
			LocationID: locationID,
			Name:       str(name),
			ZoneID:     str(zone),
			Line:       line,
		})
	}
	return rows.Err()
}

func (d *DB) loadLocationGroups(ctx context.Context, ns Namespace, f *gtfs.Feed) error {
	table := ns.Table("location_groups")
	rows, ok, err := d.optionalQuery(ctx, table,
		"SELECT id, location_group_id, location_group_name FROM "+table)
	if err != nil || !ok {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line    int
			groupID string
			name    sql.NullString
		)
		if err := rows.Scan(&line, &groupID, &name); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		f.LocationGroups = append(f.LocationGroups, &gtfs.LocationGroup{
			LocationGroupID: groupID,
			Name:            str(name),
			Line:            line,
		})
	}
	return rows.Err()
}

func (d *DB) loadLocationGroupStops(ctx context.Context, ns Namespace, f *gtfs.Feed) error {
	table := ns.Table("location_group_stops")
	rows, ok, err := d.optionalQuery(ctx, table,
		"SELECT id, location_group_id, stop_id FROM "+table)
	if err != nil || !ok {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line            int
			groupID, stopID string
		)
		if err := rows.Scan(&line, &groupID, &stopID); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		f.LocationGroupStops = append(f.LocationGroupStops, &gtfs.LocationGroupStop{
			LocationGroupID: groupID,
			StopID:          stopID,
			Line:            line,
		})
	}
	return rows.Err()
}

func (d *DB) loadBookingRules(ctx context.Context, ns Namespace, f *gtfs.Feed) error {
	table := ns.Table("booking_rules")
	rows, ok, err := d.optionalQuery(ctx, table,
		`SELECT id, booking_rule_id, booking_type, prior_notice_duration_min, prior_notice_duration_max,
			prior_notice_last_day, prior_notice_last_time, prior_notice_start_day, prior_notice_start_time,
			prior_notice_service_id, message, phone_number, info_url, booking_url
		FROM `+table)
	if err != nil || !ok {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line                                        int
			ruleID                                      string
			bookingType, durMin, durMax                 sql.NullInt64
			lastDay, lastTime, startDay, startTime      sql.NullInt64
			serviceID, message, phone, infoURL, bookURL sql.NullString
		)
		if err := rows.Scan(&line, &ruleID, &bookingType, &durMin, &durMax,
			&lastDay, &lastTime, &startDay, &startTime,
			&serviceID, &message, &phone, &infoURL, &bookURL); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		f.BookingRules = append(f.BookingRules, &gtfs.BookingRule{
			BookingRuleID:          ruleID,
			BookingType:            intOr(bookingType, gtfs.MissingInt),
			PriorNoticeDurationMin: intOr(durMin, gtfs.MissingInt),
			PriorNoticeDurationMax: intOr(durMax, gtfs.MissingInt),
			PriorNoticeLastDay:     intOr(lastDay, gtfs.MissingInt),
			PriorNoticeLastTime:    intOr(lastTime, gtfs.MissingInt),
			PriorNoticeStartDay:    intOr(startDay, gtfs.MissingInt),
			PriorNoticeStartTime:   intOr(startTime, gtfs.MissingInt),
			PriorNoticeServiceID:   str(serviceID),
			Message:                str(message),
			PhoneNumber:            str(phone),
			InfoURL:                str(infoURL),
			BookingURL:             str(bookURL),
			Line:                   line,
		})
	}
	return rows.Err()
}

func (d *DB) loadFareRules(ctx context.Context, ns Namespace, f *gtfs.Feed) error {
	table := ns.Table("fare_rules")
	rows, ok, err := d.optionalQuery(ctx, table,
		"SELECT id, fare_id, route_id, origin_id, destination_id, contains_id FROM "+table)
	if err != nil || !ok {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line                        int
			fareID                      string
			routeID, origin, dest, cont sql.NullString
		)
		if err := rows.Scan(&line, &fareID, &routeID, &origin, &dest, &cont); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		f.FareRules = append(f.FareRules, &gtfs.FareRule{
			FareID:        fareID,
			RouteID:       str(routeID),
			OriginID:      str(origin),
			DestinationID: str(dest),
			ContainsID:    str(cont),
			Line:          line,
		})
	}
	return rows.Err()
}

func (d *DB) loadPatterns(ctx context.Context, ns Namespace, f *gtfs.Feed) error {
	table := ns.Table("patterns")
	rows, ok, err := d.optionalQuery(ctx, table,
		"SELECT pattern_id, route_id, name, shape_id FROM "+table)
	if err != nil || !ok {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			patternID            string
			routeID, name, shape sql.NullString
		)
		if err := rows.Scan(&patternID, &routeID, &name, &shape); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		f.Patterns = append(f.Patterns, &gtfs.Pattern{
			PatternID: patternID,
			RouteID:   str(routeID),
			Name:      str(name),
			ShapeID:   str(shape),
			Line:      -1,
		})
	}
	return rows.Err()
}
