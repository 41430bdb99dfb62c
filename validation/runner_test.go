package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

type fakeFeedValidator struct {
	name     string
	validate func(r *Reporter) error
}

func (f *fakeFeedValidator) Name() string               { return f.name }
func (f *fakeFeedValidator) Validate(r *Reporter) error { return f.validate(r) }

type fakeTripValidator struct {
	name      string
	seen      []string
	onTrip    func(tc *TripContext, r *Reporter)
	completed bool
}

func (f *fakeTripValidator) Name() string { return f.name }

func (f *fakeTripValidator) ValidateTrip(tc *TripContext, r *Reporter) {
	f.seen = append(f.seen, tc.Trip.TripID)
	if f.onTrip != nil {
		f.onTrip(tc, r)
	}
}

func (f *fakeTripValidator) Complete(result *Result, r *Reporter) error {
	f.completed = true
	return nil
}

func twoTripFeed() *gtfs.Feed {
	feed := &gtfs.Feed{
		Routes: []*gtfs.Route{newRoute("R1")},
		Stops:  []*gtfs.Stop{{StopID: "S1", Line: 2}},
		Trips: []*gtfs.Trip{
			{TripID: "T1", RouteID: "R1", Line: 2},
			{TripID: "T2", RouteID: "R1", Line: 3},
		},
		StopTimes: []*gtfs.StopTime{
			fixedStop("T1", 1, "S1", 28800, 28900),
			fixedStop("T2", 1, "S1", 32400, 32500),
		},
	}
	feed.Index()
	return feed
}

func TestRunner_TallyAndResult(t *testing.T) {
	h := newHarness(t)
	feed := twoTripFeed()

	runner := NewRunner(feed, h.store)
	runner.AddFeedValidator(&fakeFeedValidator{name: "fake", validate: func(r *Reporter) error {
		r.RegisterError(RouteUnused, feed.Routes[0]) // high
		r.RegisterError(StopUnused, feed.Stops[0])   // medium
		return nil
	}})

	result, err := runner.Run(h.ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.ErrorCount)
	assert.Equal(t, 1, result.HighCount)
	assert.Equal(t, 1, result.MediumCount)
	assert.Equal(t, 0, result.LowCount)
	assert.False(t, result.Passed())
	assert.Empty(t, result.FailedValidators)
	assert.Contains(t, result.ValidatorTimings, "fake")
}

func TestRunner_PassedWithoutHighFindings(t *testing.T) {
	h := newHarness(t)
	runner := NewRunner(twoTripFeed(), h.store)
	runner.AddFeedValidator(&fakeFeedValidator{name: "fake", validate: func(r *Reporter) error {
		r.RegisterError(StopUnused, &gtfs.Stop{StopID: "S1", Line: 2})
		return nil
	}})

	result, err := runner.Run(h.ctx)
	require.NoError(t, err)
	assert.True(t, result.Passed())
}

func TestRunner_ErrorCountExcludesReconnectBaseline(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	first, err := NewErrorStore(ctx, d, testNS, Create, 0)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, first.Store(ctx, NewValidationError(StopUnused, &gtfs.Stop{StopID: "S1", Line: 2})))
	}
	require.NoError(t, first.Finish(ctx))

	second, err := NewErrorStore(ctx, d, testNS, Reconnect, 0)
	require.NoError(t, err)

	runner := NewRunner(twoTripFeed(), second)
	runner.AddFeedValidator(&fakeFeedValidator{name: "fake", validate: func(r *Reporter) error {
		r.RegisterError(StopUnused, &gtfs.Stop{StopID: "S2", Line: 3})
		return nil
	}})

	result, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ErrorCount)
}

func TestRunner_FeedValidatorFailureIsAFinding(t *testing.T) {
	h := newHarness(t)
	runner := NewRunner(twoTripFeed(), h.store)
	runner.AddFeedValidator(&fakeFeedValidator{name: "boom", validate: func(r *Reporter) error {
		panic("exploded")
	}})
	runner.AddFeedValidator(&fakeFeedValidator{name: "broken", validate: func(r *Reporter) error {
		return errors.New("no good")
	}})

	result, err := runner.Run(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"boom", "broken"}, result.FailedValidators)
	assert.False(t, result.Passed())

	findings := h.findings(t)
	require.Len(t, findings, 2)
	assert.Equal(t, string(ValidatorFailed), findings[0].Type)
	assert.Equal(t, "boom: exploded", findings[0].BadValue)
	assert.Equal(t, "broken: no good", findings[1].BadValue)
}

func TestRunner_PanickingTripValidatorIsDropped(t *testing.T) {
	h := newHarness(t)

	faulty := &fakeTripValidator{name: "faulty", onTrip: func(tc *TripContext, r *Reporter) {
		panic("bad trip")
	}}
	healthy := &fakeTripValidator{name: "healthy"}

	runner := NewRunner(twoTripFeed(), h.store)
	runner.AddTripValidator(faulty)
	runner.AddTripValidator(healthy)

	result, err := runner.Run(h.ctx)
	require.NoError(t, err)

	// The faulty validator saw only the first trip and never completed; the
	// healthy one was unaffected.
	assert.Equal(t, []string{"T1"}, faulty.seen)
	assert.False(t, faulty.completed)
	assert.Equal(t, []string{"T1", "T2"}, healthy.seen)
	assert.True(t, healthy.completed)
	assert.Equal(t, []string{"faulty"}, result.FailedValidators)
	assert.Equal(t, 1, typeCounts(h.findings(t))[string(ValidatorFailed)])
}

func TestRunner_TripContextResolvesEntities(t *testing.T) {
	h := newHarness(t)
	feed := &gtfs.Feed{
		Routes:         []*gtfs.Route{newRoute("R1")},
		Stops:          []*gtfs.Stop{{StopID: "S1", Line: 2}},
		Locations:      []*gtfs.Location{{LocationID: "L1", Line: 2}},
		LocationGroups: []*gtfs.LocationGroup{{LocationGroupID: "G1", Line: 2}},
		Trips:          []*gtfs.Trip{{TripID: "T1", RouteID: "R1", Line: 2}},
		StopTimes: []*gtfs.StopTime{
			fixedStop("T1", 1, "S1", 28800, 28900),
			flexStop("T1", 2, "L1", 28900, 32400),
		},
	}
	group := fixedStop("T1", 3, "", gtfs.MissingInt, gtfs.MissingInt)
	group.LocationGroupID = "G1"
	group.StartPickupDropOffWindow = 32400
	group.EndPickupDropOffWindow = 36000
	feed.StopTimes = append(feed.StopTimes, group)
	feed.Index()

	var captured *TripContext
	v := &fakeTripValidator{name: "capture", onTrip: func(tc *TripContext, r *Reporter) {
		captured = tc
	}}
	runner := NewRunner(feed, h.store)
	runner.AddTripValidator(v)

	_, err := runner.Run(h.ctx)
	require.NoError(t, err)

	require.NotNil(t, captured)
	require.NotNil(t, captured.Route)
	assert.Equal(t, "R1", captured.Route.RouteID)
	assert.Len(t, captured.StopTimes, 3)
	assert.Contains(t, captured.Stops, "S1")
	assert.Contains(t, captured.Locations, "L1")
	assert.Contains(t, captured.LocationGroups, "G1")
}

func TestRunner_CompletionsRunInRegistrationOrder(t *testing.T) {
	h := newHarness(t)

	var order []string
	record := func(name string) TripValidator {
		return &orderedValidator{name: name, order: &order}
	}
	runner := NewRunner(twoTripFeed(), h.store)
	runner.AddTripValidator(record("first"))
	runner.AddTripValidator(record("second"))
	runner.AddTripValidator(record("third"))

	_, err := runner.Run(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

type orderedValidator struct {
	name  string
	order *[]string
}

func (v *orderedValidator) Name() string                         { return v.name }
func (v *orderedValidator) ValidateTrip(*TripContext, *Reporter) {}

func (v *orderedValidator) Complete(result *Result, r *Reporter) error {
	*v.order = append(*v.order, v.name)
	return nil
}
