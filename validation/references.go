package validation

import (
	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

// ReferenceValidator detects entities nothing points at: stops no trip ever
// halts at, trips without stop times, routes without trips, and flex
// locations or location groups no stop time references.
type ReferenceValidator struct {
	feed             *gtfs.Feed
	referencedStops  map[string]bool
	referencedTrips  map[string]bool
	referencedRoutes map[string]bool
}

// NewReferenceValidator returns a reference counter for the feed.
func NewReferenceValidator(feed *gtfs.Feed) *ReferenceValidator {
	return &ReferenceValidator{
		feed:             feed,
		referencedStops:  make(map[string]bool),
		referencedTrips:  make(map[string]bool),
		referencedRoutes: make(map[string]bool),
	}
}

func (v *ReferenceValidator) Name() string { return "references" }

func (v *ReferenceValidator) ValidateTrip(tc *TripContext, r *Reporter) {
	// A route is used as soon as any trip runs on it, even an empty one;
	// the empty trip gets its own finding.
	v.referencedRoutes[tc.Trip.RouteID] = true
	if len(tc.StopTimes) > 0 {
		v.referencedTrips[tc.Trip.TripID] = true
	}
	for _, st := range tc.StopTimes {
		if st.StopID == "" {
			continue
		}
		v.referencedStops[st.StopID] = true
		// Parent stations are structural, not halted at directly; count
		// them as used so they are not flagged.
		if s := tc.Stops[st.StopID]; s != nil && s.ParentStation != "" {
			v.referencedStops[s.ParentStation] = true
		}
	}
}

func (v *ReferenceValidator) Complete(result *Result, r *Reporter) error {
	for _, s := range v.feed.Stops {
		if !v.referencedStops[s.StopID] {
			r.RegisterErrorWithBadValue(StopUnused, s.StopID, s)
		}
	}
	for _, t := range v.feed.Trips {
		if !v.referencedTrips[t.TripID] {
			r.RegisterErrorWithBadValue(TripEmpty, t.TripID, t)
		}
	}
	for _, route := range v.feed.Routes {
		if !v.referencedRoutes[route.RouteID] {
			r.RegisterErrorWithBadValue(RouteUnused, route.RouteID, route)
		}
	}

	// Locations and groups are checked against every stop time directly,
	// not only those seen on the trip pass, so a dangling reference from an
	// orphaned stop time still counts as usage.
	referencedLocations := make(map[string]bool)
	referencedGroups := make(map[string]bool)
	for _, st := range v.feed.StopTimes {
		if st.LocationID != "" {
			referencedLocations[st.LocationID] = true
		}
		if st.LocationGroupID != "" {
			referencedGroups[st.LocationGroupID] = true
		}
	}
	for _, l := range v.feed.Locations {
		if !referencedLocations[l.LocationID] {
			r.RegisterErrorWithBadValue(LocationUnused, l.LocationID, l)
		}
	}
	for _, g := range v.feed.LocationGroups {
		if !referencedGroups[g.LocationGroupID] {
			r.RegisterErrorWithBadValue(LocationGroupUnused, g.LocationGroupID, g)
		}
	}
	return nil
}
