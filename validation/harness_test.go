package validation

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/gtfs-flex-validator/db"
	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

const testNS = db.Namespace("test")

// harness wires a real in-memory store behind a Reporter so validator tests
// exercise the same pipeline production uses.
type harness struct {
	ctx      context.Context
	db       *db.DB
	store    *ErrorStore
	reporter *Reporter
	result   *Result
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	store, err := NewErrorStore(ctx, d, testNS, Create, 0)
	require.NoError(t, err)

	result := &Result{}
	return &harness{
		ctx:      ctx,
		db:       d,
		store:    store,
		reporter: &Reporter{ctx: ctx, store: store, result: result},
		result:   result,
	}
}

type storedFinding struct {
	ID       int
	Type     string
	BadValue string
}

type storedRef struct {
	ErrorID    int
	EntityType string
	LineNumber int
	EntityID   string
	Sequence   *int
}

// findings finishes the store and reads back everything it persisted.
func (h *harness) findings(t *testing.T) []storedFinding {
	t.Helper()
	require.NoError(t, h.store.Finish(h.ctx))
	rows, err := h.db.Conn().Query(
		"SELECT error_id, type, problems FROM " + testNS.Table("errors") + " ORDER BY error_id")
	require.NoError(t, err)
	defer rows.Close()

	var out []storedFinding
	for rows.Next() {
		var f storedFinding
		require.NoError(t, rows.Scan(&f.ID, &f.Type, &f.BadValue))
		out = append(out, f)
	}
	require.NoError(t, rows.Err())
	return out
}

func (h *harness) refs(t *testing.T) []storedRef {
	t.Helper()
	rows, err := h.db.Conn().Query(
		"SELECT error_id, entity_type, line_number, entity_id, sequence_number FROM " +
			testNS.Table("error_refs") + " ORDER BY error_id")
	require.NoError(t, err)
	defer rows.Close()

	var out []storedRef
	for rows.Next() {
		var (
			ref      storedRef
			entityID sql.NullString
			seq      sql.NullInt64
		)
		require.NoError(t, rows.Scan(&ref.ErrorID, &ref.EntityType, &ref.LineNumber, &entityID, &seq))
		ref.EntityID = entityID.String
		if seq.Valid {
			v := int(seq.Int64)
			ref.Sequence = &v
		}
		out = append(out, ref)
	}
	require.NoError(t, rows.Err())
	return out
}

func typeCounts(findings []storedFinding) map[string]int {
	counts := make(map[string]int)
	for _, f := range findings {
		counts[f.Type]++
	}
	return counts
}

// fixedStop returns a plain scheduled stop time at a fixed stop.
func fixedStop(tripID string, seq int, stopID string, arrival, departure int) *gtfs.StopTime {
	return &gtfs.StopTime{
		TripID:                   tripID,
		StopSequence:             seq,
		StopID:                   stopID,
		ArrivalTime:              arrival,
		DepartureTime:            departure,
		StartPickupDropOffWindow: gtfs.MissingInt,
		EndPickupDropOffWindow:   gtfs.MissingInt,
		PickupType:               gtfs.MissingInt,
		DropOffType:              gtfs.MissingInt,
		ContinuousPickup:         gtfs.MissingInt,
		ContinuousDropOff:        gtfs.MissingInt,
		Timepoint:                gtfs.MissingInt,
		Line:                     seq + 1,
	}
}

// flexStop returns a valid flex stop time halting at a location with both
// windows defined.
func flexStop(tripID string, seq int, locationID string, startWindow, endWindow int) *gtfs.StopTime {
	st := fixedStop(tripID, seq, "", gtfs.MissingInt, gtfs.MissingInt)
	st.StopID = ""
	st.LocationID = locationID
	st.StartPickupDropOffWindow = startWindow
	st.EndPickupDropOffWindow = endWindow
	st.PickupType = 2
	st.DropOffType = 1
	return st
}

// emptyBookingRule returns a booking rule with every optional field absent.
func emptyBookingRule(id string, bookingType int) *gtfs.BookingRule {
	return &gtfs.BookingRule{
		BookingRuleID:          id,
		BookingType:            bookingType,
		PriorNoticeDurationMin: gtfs.MissingInt,
		PriorNoticeDurationMax: gtfs.MissingInt,
		PriorNoticeLastDay:     gtfs.MissingInt,
		PriorNoticeLastTime:    gtfs.MissingInt,
		PriorNoticeStartDay:    gtfs.MissingInt,
		PriorNoticeStartTime:   gtfs.MissingInt,
		Line:                   1,
	}
}
