package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

func newRoute(id string) *gtfs.Route {
	return &gtfs.Route{
		RouteID:           id,
		ContinuousPickup:  gtfs.MissingInt,
		ContinuousDropOff: gtfs.MissingInt,
		Line:              1,
	}
}

func TestIsFlexFeed(t *testing.T) {
	tests := []struct {
		name string
		feed *gtfs.Feed
		want bool
	}{
		{"empty feed", &gtfs.Feed{}, false},
		{"only fixed service", &gtfs.Feed{
			Stops: []*gtfs.Stop{{StopID: "S1"}},
			Trips: []*gtfs.Trip{{TripID: "T1"}},
		}, false},
		{"booking rules", &gtfs.Feed{
			BookingRules: []*gtfs.BookingRule{emptyBookingRule("B1", 0)},
		}, true},
		{"locations", &gtfs.Feed{
			Locations: []*gtfs.Location{{LocationID: "L1"}},
		}, true},
		{"location groups", &gtfs.Feed{
			LocationGroups: []*gtfs.LocationGroup{{LocationGroupID: "G1"}},
		}, true},
		{"location group stops", &gtfs.Feed{
			LocationGroupStops: []*gtfs.LocationGroupStop{{LocationGroupID: "G1", StopID: "S1"}},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFlexFeed(tt.feed))
		})
	}
}

func TestFlexValidator_NoOpWithoutFlexTables(t *testing.T) {
	// Even blatantly wrong stop times produce nothing when the feed has no
	// flex tables at all.
	st := fixedStop("T1", 1, "S1", 28800, 28800)
	st.StartPickupDropOffWindow = 28800
	feed := &gtfs.Feed{
		Stops:     []*gtfs.Stop{{StopID: "S1", Line: 2}},
		Trips:     []*gtfs.Trip{{TripID: "T1", RouteID: "R1", Line: 2}},
		StopTimes: []*gtfs.StopTime{st},
	}
	feed.Index()

	h := newHarness(t)
	require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))
	assert.Empty(t, h.findings(t))
}

func TestFlexValidator_ForbiddenArrivalTime(t *testing.T) {
	// An otherwise valid flex halt with an arrival time yields exactly one
	// finding carrying the offending time.
	st := flexStop("T1", 1, "L1", 28800, 32400)
	st.ArrivalTime = 28800
	feed := &gtfs.Feed{
		Locations: []*gtfs.Location{{LocationID: "L1", Line: 2}},
		Trips:     []*gtfs.Trip{{TripID: "T1", RouteID: "R1", Line: 2}},
		Routes:    []*gtfs.Route{newRoute("R1")},
		StopTimes: []*gtfs.StopTime{st},
	}
	feed.Index()

	h := newHarness(t)
	require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))

	findings := h.findings(t)
	require.Len(t, findings, 1)
	assert.Equal(t, string(FlexForbiddenArrivalTime), findings[0].Type)
	assert.Equal(t, "28800", findings[0].BadValue)

	refs := h.refs(t)
	require.Len(t, refs, 1)
	assert.Equal(t, gtfs.KindStopTime, refs[0].EntityType)
	require.NotNil(t, refs[0].Sequence)
	assert.Equal(t, 1, *refs[0].Sequence)
}

func TestFlexValidator_ForbiddenDepartureTime(t *testing.T) {
	st := flexStop("T1", 1, "L1", 28800, 32400)
	st.DepartureTime = 30000
	feed := &gtfs.Feed{
		Locations: []*gtfs.Location{{LocationID: "L1", Line: 2}},
		Trips:     []*gtfs.Trip{{TripID: "T1", RouteID: "R1", Line: 2}},
		Routes:    []*gtfs.Route{newRoute("R1")},
		StopTimes: []*gtfs.StopTime{st},
	}
	feed.Index()

	h := newHarness(t)
	require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))

	findings := h.findings(t)
	require.Len(t, findings, 1)
	assert.Equal(t, string(FlexForbiddenDepartureTime), findings[0].Type)
	assert.Equal(t, "30000", findings[0].BadValue)
}

func TestFlexValidator_HaltExclusivity(t *testing.T) {
	// At most one of the forbidden stop/location-group/location findings
	// fires per stop time, whatever the combination.
	trio := map[string]bool{
		string(FlexForbiddenStopID):          true,
		string(FlexForbiddenLocationGroupID): true,
		string(FlexForbiddenLocationID):      true,
		string(FlexRequiredStopID):           true,
	}
	tests := []struct {
		name               string
		stopID, group, loc string
		want               ErrorType
	}{
		{"none set", "", "", "", FlexRequiredStopID},
		{"stop and group", "S1", "G1", "", FlexForbiddenStopID},
		{"stop and location", "S1", "", "L1", FlexForbiddenLocationID},
		{"group and location", "", "G1", "L1", FlexForbiddenLocationGroupID},
		{"all three", "S1", "G1", "L1", FlexForbiddenStopID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := flexStop("T1", 1, "", 28800, 32400)
			st.StopID = tt.stopID
			st.LocationGroupID = tt.group
			st.LocationID = tt.loc
			feed := &gtfs.Feed{
				Locations: []*gtfs.Location{{LocationID: "L1", Line: 2}},
				StopTimes: []*gtfs.StopTime{st},
			}
			feed.Index()

			h := newHarness(t)
			require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))

			var fired []string
			for _, f := range h.findings(t) {
				if trio[f.Type] {
					fired = append(fired, f.Type)
				}
			}
			require.Len(t, fired, 1)
			assert.Equal(t, string(tt.want), fired[0])
		})
	}
}

func TestFlexValidator_RequiredWindows(t *testing.T) {
	st := flexStop("T1", 1, "L1", gtfs.MissingInt, gtfs.MissingInt)
	feed := &gtfs.Feed{
		Locations: []*gtfs.Location{{LocationID: "L1", Line: 2}},
		StopTimes: []*gtfs.StopTime{st},
	}
	feed.Index()

	h := newHarness(t)
	require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))

	counts := typeCounts(h.findings(t))
	assert.Equal(t, 1, counts[string(FlexRequiredStartPickupDropOffWindow)])
	assert.Equal(t, 1, counts[string(FlexRequiredEndPickupDropOffWindow)])
}

func TestFlexValidator_ForbiddenWindowOnFixedStop(t *testing.T) {
	st := fixedStop("T1", 1, "S1", 28800, 28900)
	st.StartPickupDropOffWindow = 28800
	st.EndPickupDropOffWindow = 32400
	feed := &gtfs.Feed{
		Locations: []*gtfs.Location{{LocationID: "L1", Line: 2}},
		Stops:     []*gtfs.Stop{{StopID: "S1", Line: 2}},
		StopTimes: []*gtfs.StopTime{st},
	}
	feed.Index()

	h := newHarness(t)
	require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))

	counts := typeCounts(h.findings(t))
	assert.Equal(t, 1, counts[string(FlexForbiddenStartPickupDropOffWindow)])
	assert.Equal(t, 1, counts[string(FlexForbiddenEndPickupDropOffWindow)])
}

func TestFlexValidator_ForbiddenTypesWithWindows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*gtfs.StopTime)
		want   ErrorType
	}{
		{"pickup type 0", func(st *gtfs.StopTime) { st.PickupType = 0 }, FlexForbiddenPickupType},
		{"pickup type 3", func(st *gtfs.StopTime) { st.PickupType = 3 }, FlexForbiddenPickupType},
		{"drop off type 0", func(st *gtfs.StopTime) { st.DropOffType = 0 }, FlexForbiddenDropOffType},
		{"continuous pickup 0", func(st *gtfs.StopTime) { st.ContinuousPickup = 0 }, FlexForbiddenContinuousPickup},
		{"continuous drop off 2", func(st *gtfs.StopTime) { st.ContinuousDropOff = 2 }, FlexForbiddenContinuousDropOff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := flexStop("T1", 1, "L1", 28800, 32400)
			tt.mutate(st)
			feed := &gtfs.Feed{
				Locations: []*gtfs.Location{{LocationID: "L1", Line: 2}},
				StopTimes: []*gtfs.StopTime{st},
			}
			feed.Index()

			h := newHarness(t)
			require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))
			assert.Equal(t, 1, typeCounts(h.findings(t))[string(tt.want)])
		})
	}
}

func TestFlexValidator_ContinuousNoneIsNotSet(t *testing.T) {
	// continuous_pickup 1 explicitly means no continuous service and must
	// not conflict with windows.
	st := flexStop("T1", 1, "L1", 28800, 32400)
	st.ContinuousPickup = 1
	st.ContinuousDropOff = 1
	feed := &gtfs.Feed{
		Locations: []*gtfs.Location{{LocationID: "L1", Line: 2}},
		StopTimes: []*gtfs.StopTime{st},
	}
	feed.Index()

	h := newHarness(t)
	require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))
	assert.Empty(t, h.findings(t))
}

func TestFlexValidator_BookingRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*gtfs.BookingRule)
		want   []ErrorType
	}{
		{
			"type 1 without duration min",
			func(b *gtfs.BookingRule) { b.BookingType = 1 },
			[]ErrorType{FlexRequiredPriorNoticeDurationMin},
		},
		{
			"type 0 with duration min",
			func(b *gtfs.BookingRule) { b.BookingType = 0; b.PriorNoticeDurationMin = 30 },
			[]ErrorType{FlexForbiddenPriorNoticeDurationMin},
		},
		{
			"type 0 with duration max",
			func(b *gtfs.BookingRule) { b.BookingType = 0; b.PriorNoticeDurationMax = 120 },
			[]ErrorType{FlexForbiddenPriorNoticeDurationMax},
		},
		{
			"type 2 without last day",
			func(b *gtfs.BookingRule) { b.BookingType = 2 },
			[]ErrorType{FlexRequiredPriorNoticeLastDay},
		},
		{
			"type 0 with last day",
			func(b *gtfs.BookingRule) { b.BookingType = 0; b.PriorNoticeLastDay = 1 },
			[]ErrorType{FlexForbiddenPriorNoticeLastDay},
		},
		{
			"type 0 with start day",
			func(b *gtfs.BookingRule) {
				b.BookingType = 0
				b.PriorNoticeStartDay = 2
				b.PriorNoticeStartTime = 28800
			},
			[]ErrorType{FlexForbiddenPriorNoticeStartDayForBooking},
		},
		{
			"type 1 with start day and duration max",
			func(b *gtfs.BookingRule) {
				b.BookingType = 1
				b.PriorNoticeDurationMin = 30
				b.PriorNoticeDurationMax = 120
				b.PriorNoticeStartDay = 2
				b.PriorNoticeStartTime = 28800
			},
			[]ErrorType{FlexForbiddenPriorNoticeStartDay},
		},
		{
			"start day without start time",
			func(b *gtfs.BookingRule) { b.BookingType = 1; b.PriorNoticeDurationMin = 30; b.PriorNoticeStartDay = 2 },
			[]ErrorType{FlexRequiredPriorNoticeStartTime},
		},
		{
			"start time without start day",
			func(b *gtfs.BookingRule) {
				b.BookingType = 1
				b.PriorNoticeDurationMin = 30
				b.PriorNoticeStartTime = 28800
			},
			[]ErrorType{FlexForbiddenPriorNoticeStartTime},
		},
		{
			"type 0 with service id",
			func(b *gtfs.BookingRule) { b.BookingType = 0; b.PriorNoticeServiceID = "SVC" },
			[]ErrorType{FlexForbiddenPriorNoticeServiceID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := emptyBookingRule("B1", 0)
			tt.mutate(b)
			feed := &gtfs.Feed{BookingRules: []*gtfs.BookingRule{b}}
			feed.Index()

			h := newHarness(t)
			require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))

			findings := h.findings(t)
			require.Len(t, findings, len(tt.want))
			counts := typeCounts(findings)
			for _, want := range tt.want {
				assert.Equal(t, 1, counts[string(want)], "expected %s", want)
			}
		})
	}
}

func TestFlexValidator_DuplicateIDs(t *testing.T) {
	feed := &gtfs.Feed{
		Stops:          []*gtfs.Stop{{StopID: "X", Line: 2}, {StopID: "Y", Line: 3}},
		Locations:      []*gtfs.Location{{LocationID: "X", Line: 2}, {LocationID: "L9", Line: 3}},
		LocationGroups: []*gtfs.LocationGroup{{LocationGroupID: "Y", Line: 2}, {LocationGroupID: "G9", Line: 3}},
	}
	feed.Index()

	h := newHarness(t)
	require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))

	counts := typeCounts(h.findings(t))
	// location X collides with stop X, group Y collides with stop Y
	assert.Equal(t, 1, counts[string(FlexForbiddenDuplicateLocationID)])
	assert.Equal(t, 1, counts[string(FlexForbiddenDuplicateLocationGroupID)])
}

func TestFlexValidator_MissingFareRule(t *testing.T) {
	t.Run("unreferenced zone", func(t *testing.T) {
		feed := &gtfs.Feed{
			Locations: []*gtfs.Location{{LocationID: "L1", ZoneID: "Z1", Line: 2}},
			FareRules: []*gtfs.FareRule{{FareID: "F1", OriginID: "Z9", Line: 2}},
		}
		feed.Index()

		h := newHarness(t)
		require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))

		findings := h.findings(t)
		require.Len(t, findings, 1)
		assert.Equal(t, string(FlexMissingFareRule), findings[0].Type)
		assert.Equal(t, "Z1", findings[0].BadValue)
	})

	t.Run("zone matched on any of the three id fields", func(t *testing.T) {
		for _, fr := range []*gtfs.FareRule{
			{FareID: "F1", OriginID: "Z1", Line: 2},
			{FareID: "F1", DestinationID: "Z1", Line: 2},
			{FareID: "F1", ContainsID: "Z1", Line: 2},
		} {
			feed := &gtfs.Feed{
				Locations: []*gtfs.Location{{LocationID: "L1", ZoneID: "Z1", Line: 2}},
				FareRules: []*gtfs.FareRule{fr},
			}
			feed.Index()

			h := newHarness(t)
			require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))
			assert.Empty(t, h.findings(t))
		}
	})

	t.Run("no fare rules at all", func(t *testing.T) {
		feed := &gtfs.Feed{
			Locations: []*gtfs.Location{{LocationID: "L1", ZoneID: "Z1", Line: 2}},
		}
		feed.Index()

		h := newHarness(t)
		require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))
		assert.Empty(t, h.findings(t))
	})
}

func TestFlexValidator_RouteContinuousPickup(t *testing.T) {
	// A route declaring continuous pickup while one of its trips halts in a
	// pickup/drop off window gets flagged on the route.
	route := newRoute("R1")
	route.ContinuousPickup = 0
	feed := &gtfs.Feed{
		Routes:    []*gtfs.Route{route},
		Trips:     []*gtfs.Trip{{TripID: "T1", RouteID: "R1", Line: 2}},
		Locations: []*gtfs.Location{{LocationID: "L1", Line: 2}},
		StopTimes: []*gtfs.StopTime{flexStop("T1", 1, "L1", 3600, 7200)},
	}
	feed.Index()

	h := newHarness(t)
	require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))

	findings := h.findings(t)
	require.Len(t, findings, 1)
	assert.Equal(t, string(FlexForbiddenRouteContinuousPickup), findings[0].Type)
	assert.Equal(t, "0", findings[0].BadValue)

	refs := h.refs(t)
	require.Len(t, refs, 1)
	assert.Equal(t, gtfs.KindRoute, refs[0].EntityType)
	assert.Equal(t, "R1", refs[0].EntityID)
}

func TestFlexValidator_SpeedNotValidated(t *testing.T) {
	feed := &gtfs.Feed{
		Routes:    []*gtfs.Route{newRoute("R1")},
		Trips:     []*gtfs.Trip{{TripID: "T1", RouteID: "R1", Line: 2}, {TripID: "T2", RouteID: "R1", Line: 3}},
		Stops:     []*gtfs.Stop{{StopID: "S1", Line: 2}},
		Locations: []*gtfs.Location{{LocationID: "L1", Line: 2}},
		StopTimes: []*gtfs.StopTime{
			flexStop("T1", 1, "L1", 3600, 7200),
			fixedStop("T2", 1, "S1", 28800, 28900),
		},
	}
	feed.Index()

	h := newHarness(t)
	require.NoError(t, NewFlexValidator(feed).Validate(h.reporter))

	assert.True(t, h.result.SpeedNotValidated("T1"))
	assert.False(t, h.result.SpeedNotValidated("T2"))
}
