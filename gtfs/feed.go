package gtfs

import "sort"

// Feed holds one loaded feed's record collections plus the lookup indexes
// validators need. Collections are read-only for the duration of a
// validation run and support repeated full iteration. How the records got
// here (archive parser, SQL tables, test fixtures) is the caller's business.
type Feed struct {
	Stops              []*Stop
	Routes             []*Route
	Trips              []*Trip
	StopTimes          []*StopTime
	Locations          []*Location
	LocationGroups     []*LocationGroup
	LocationGroupStops []*LocationGroupStop
	BookingRules       []*BookingRule
	FareRules          []*FareRule
	Patterns           []*Pattern

	stopByID     map[string]*Stop
	routeByID    map[string]*Route
	tripByID     map[string]*Trip
	locationByID map[string]*Location
	groupByID    map[string]*LocationGroup
	patternByID  map[string]*Pattern
	tripStops    map[string][]*StopTime // trip_id -> stop times ordered by stop_sequence
}

// Index builds the lookup maps and orders each trip's stop times by
// stop_sequence. Call it once after the collections are populated and
// before handing the feed to validators.
func (f *Feed) Index() {
	f.stopByID = make(map[string]*Stop, len(f.Stops))
	for _, s := range f.Stops {
		f.stopByID[s.StopID] = s
	}
	f.routeByID = make(map[string]*Route, len(f.Routes))
	for _, r := range f.Routes {
		f.routeByID[r.RouteID] = r
	}
	f.tripByID = make(map[string]*Trip, len(f.Trips))
	for _, t := range f.Trips {
		f.tripByID[t.TripID] = t
	}
	f.locationByID = make(map[string]*Location, len(f.Locations))
	for _, l := range f.Locations {
		f.locationByID[l.LocationID] = l
	}
	f.groupByID = make(map[string]*LocationGroup, len(f.LocationGroups))
	for _, g := range f.LocationGroups {
		f.groupByID[g.LocationGroupID] = g
	}
	f.patternByID = make(map[string]*Pattern, len(f.Patterns))
	for _, p := range f.Patterns {
		f.patternByID[p.PatternID] = p
	}
	f.tripStops = make(map[string][]*StopTime, len(f.Trips))
	for _, st := range f.StopTimes {
		f.tripStops[st.TripID] = append(f.tripStops[st.TripID], st)
	}
	for _, sts := range f.tripStops {
		sort.Slice(sts, func(i, j int) bool { return sts[i].StopSequence < sts[j].StopSequence })
	}
}

// Stop returns the stop with the given id, or nil.
func (f *Feed) Stop(id string) *Stop { return f.stopByID[id] }

// Route returns the route with the given id, or nil.
func (f *Feed) Route(id string) *Route { return f.routeByID[id] }

// Trip returns the trip with the given id, or nil.
func (f *Feed) Trip(id string) *Trip { return f.tripByID[id] }

// Location returns the location with the given id, or nil.
func (f *Feed) Location(id string) *Location { return f.locationByID[id] }

// LocationGroup returns the location group with the given id, or nil.
func (f *Feed) LocationGroup(id string) *LocationGroup { return f.groupByID[id] }

// Pattern returns the pre-existing pattern with the given id, or nil.
func (f *Feed) Pattern(id string) *Pattern { return f.patternByID[id] }

// StopTimesForTrip returns the trip's stop times ordered by stop_sequence.
func (f *Feed) StopTimesForTrip(tripID string) []*StopTime { return f.tripStops[tripID] }

// RouteForTrip resolves a trip's route, or nil when the reference dangles.
func (f *Feed) RouteForTrip(t *Trip) *Route { return f.routeByID[t.RouteID] }
