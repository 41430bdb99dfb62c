package validation

import (
	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

// FlexValidator checks the conditional-constraint table of the GTFS-Flex
// extension: window/time exclusivity on stop times, booking rule field
// dependencies, id collisions between stops, locations and location groups,
// fare rule coverage of location zones, and continuous-service conflicts on
// routes. All checks are per-instance and independent; a single record can
// accumulate several findings.
type FlexValidator struct {
	feed *gtfs.Feed
}

// NewFlexValidator returns the flex rule engine for a feed.
func NewFlexValidator(feed *gtfs.Feed) *FlexValidator {
	return &FlexValidator{feed: feed}
}

func (v *FlexValidator) Name() string { return "flex" }

// IsFlexFeed reports whether the feed carries any flex tables. The rule
// engine is a no-op on feeds without them, whatever their stop_times look
// like.
func IsFlexFeed(feed *gtfs.Feed) bool {
	return len(feed.BookingRules) > 0 ||
		len(feed.LocationGroups) > 0 ||
		len(feed.LocationGroupStops) > 0 ||
		len(feed.Locations) > 0
}

// continuousSet reports whether a continuous_pickup/continuous_drop_off
// value enables continuous service. 1 and absent both mean "none".
func continuousSet(v int) bool {
	return v == 0 || v == 2 || v == 3
}

func (v *FlexValidator) Validate(r *Reporter) error {
	if !IsFlexFeed(v.feed) {
		return nil
	}

	for _, st := range v.feed.StopTimes {
		v.validateStopTime(st, r)
	}
	for _, b := range v.feed.BookingRules {
		v.validateBookingRule(b, r)
	}
	v.validateIDCollisions(r)
	v.validateFareRules(r)
	v.validateRoutesAndTrips(r)
	return nil
}

func (v *FlexValidator) validateStopTime(st *gtfs.StopTime, r *Reporter) {
	hasWindow := st.HasPickupDropOffWindow()
	hasTime := st.ArrivalTime != gtfs.MissingInt || st.DepartureTime != gtfs.MissingInt

	if st.ArrivalTime != gtfs.MissingInt && hasWindow {
		r.Register(NewValidationError(FlexForbiddenArrivalTime, st).WithBadInt(st.ArrivalTime))
	}
	if st.DepartureTime != gtfs.MissingInt && hasWindow {
		r.Register(NewValidationError(FlexForbiddenDepartureTime, st).WithBadInt(st.DepartureTime))
	}

	// Halt fields are mutually exclusive; at most one of these three fires
	// per row, naming the reference that has to go.
	switch {
	case st.StopID == "" && st.LocationGroupID == "" && st.LocationID == "":
		r.RegisterError(FlexRequiredStopID, st)
	case st.StopID != "" && st.LocationGroupID != "":
		r.RegisterErrorWithBadValue(FlexForbiddenStopID, st.StopID, st)
	case st.StopID != "" && st.LocationID != "":
		r.RegisterErrorWithBadValue(FlexForbiddenLocationID, st.LocationID, st)
	case st.LocationGroupID != "" && st.LocationID != "":
		r.RegisterErrorWithBadValue(FlexForbiddenLocationGroupID, st.LocationGroupID, st)
	}

	if st.StartPickupDropOffWindow == gtfs.MissingInt &&
		(st.HasFlexHalt() || st.EndPickupDropOffWindow != gtfs.MissingInt) {
		r.RegisterError(FlexRequiredStartPickupDropOffWindow, st)
	}
	if st.EndPickupDropOffWindow == gtfs.MissingInt &&
		(st.HasFlexHalt() || st.StartPickupDropOffWindow != gtfs.MissingInt) {
		r.RegisterError(FlexRequiredEndPickupDropOffWindow, st)
	}

	// Windows on a fixed stop with scheduled times. Flex halts with times
	// are already covered by the forbidden arrival/departure checks above.
	if st.StopID != "" && hasTime {
		if st.StartPickupDropOffWindow != gtfs.MissingInt {
			r.Register(NewValidationError(FlexForbiddenStartPickupDropOffWindow, st).WithBadInt(st.StartPickupDropOffWindow))
		}
		if st.EndPickupDropOffWindow != gtfs.MissingInt {
			r.Register(NewValidationError(FlexForbiddenEndPickupDropOffWindow, st).WithBadInt(st.EndPickupDropOffWindow))
		}
	}

	if hasWindow {
		if st.PickupType == 0 || st.PickupType == 3 {
			r.Register(NewValidationError(FlexForbiddenPickupType, st).WithBadInt(st.PickupType))
		}
		if st.DropOffType == 0 {
			r.Register(NewValidationError(FlexForbiddenDropOffType, st).WithBadInt(st.DropOffType))
		}
		if continuousSet(st.ContinuousPickup) {
			r.Register(NewValidationError(FlexForbiddenContinuousPickup, st).WithBadInt(st.ContinuousPickup))
		}
		if continuousSet(st.ContinuousDropOff) {
			r.Register(NewValidationError(FlexForbiddenContinuousDropOff, st).WithBadInt(st.ContinuousDropOff))
		}
	}
}

func (v *FlexValidator) validateBookingRule(b *gtfs.BookingRule, r *Reporter) {
	bt := b.BookingType

	if bt == 1 && b.PriorNoticeDurationMin == gtfs.MissingInt {
		r.RegisterError(FlexRequiredPriorNoticeDurationMin, b)
	}
	if bt != 1 && b.PriorNoticeDurationMin != gtfs.MissingInt {
		r.Register(NewValidationError(FlexForbiddenPriorNoticeDurationMin, b).WithBadInt(b.PriorNoticeDurationMin))
	}
	if (bt == 0 || bt == 2) && b.PriorNoticeDurationMax != gtfs.MissingInt {
		r.Register(NewValidationError(FlexForbiddenPriorNoticeDurationMax, b).WithBadInt(b.PriorNoticeDurationMax))
	}
	if bt == 2 && b.PriorNoticeLastDay == gtfs.MissingInt {
		r.RegisterError(FlexRequiredPriorNoticeLastDay, b)
	}
	if bt != 2 && b.PriorNoticeLastDay != gtfs.MissingInt {
		r.Register(NewValidationError(FlexForbiddenPriorNoticeLastDay, b).WithBadInt(b.PriorNoticeLastDay))
	}
	if bt == 0 && b.PriorNoticeStartDay != gtfs.MissingInt {
		r.Register(NewValidationError(FlexForbiddenPriorNoticeStartDayForBooking, b).WithBadInt(b.PriorNoticeStartDay))
	}
	if bt == 1 && b.PriorNoticeStartDay != gtfs.MissingInt && b.PriorNoticeDurationMax != gtfs.MissingInt {
		r.Register(NewValidationError(FlexForbiddenPriorNoticeStartDay, b).WithBadInt(b.PriorNoticeStartDay))
	}
	if b.PriorNoticeStartDay != gtfs.MissingInt && b.PriorNoticeStartTime == gtfs.MissingInt {
		r.RegisterError(FlexRequiredPriorNoticeStartTime, b)
	}
	if b.PriorNoticeStartTime != gtfs.MissingInt && b.PriorNoticeStartDay == gtfs.MissingInt {
		r.Register(NewValidationError(FlexForbiddenPriorNoticeStartTime, b).WithBadInt(b.PriorNoticeStartTime))
	}
	if bt != 2 && b.PriorNoticeServiceID != "" {
		r.RegisterErrorWithBadValue(FlexForbiddenPriorNoticeServiceID, b.PriorNoticeServiceID, b)
	}
}

func (v *FlexValidator) validateIDCollisions(r *Reporter) {
	stopIDs := make(map[string]bool, len(v.feed.Stops))
	for _, s := range v.feed.Stops {
		stopIDs[s.StopID] = true
	}
	locationIDs := make(map[string]bool, len(v.feed.Locations))
	for _, l := range v.feed.Locations {
		locationIDs[l.LocationID] = true
	}
	groupIDs := make(map[string]bool, len(v.feed.LocationGroups))
	for _, g := range v.feed.LocationGroups {
		groupIDs[g.LocationGroupID] = true
	}

	for _, g := range v.feed.LocationGroups {
		if stopIDs[g.LocationGroupID] || locationIDs[g.LocationGroupID] {
			r.RegisterErrorWithBadValue(FlexForbiddenDuplicateLocationGroupID, g.LocationGroupID, g)
		}
	}
	for _, l := range v.feed.Locations {
		if stopIDs[l.LocationID] || groupIDs[l.LocationID] {
			r.RegisterErrorWithBadValue(FlexForbiddenDuplicateLocationID, l.LocationID, l)
		}
	}
}

// validateFareRules requires every location zone to be reachable through at
// least one fare rule, matching on any of contains, destination or origin.
// Feeds without fare rules are exempt.
func (v *FlexValidator) validateFareRules(r *Reporter) {
	if len(v.feed.FareRules) == 0 {
		return
	}
	zones := make(map[string]bool, len(v.feed.FareRules)*3)
	for _, fr := range v.feed.FareRules {
		if fr.ContainsID != "" {
			zones[fr.ContainsID] = true
		}
		if fr.DestinationID != "" {
			zones[fr.DestinationID] = true
		}
		if fr.OriginID != "" {
			zones[fr.OriginID] = true
		}
	}
	for _, l := range v.feed.Locations {
		if l.ZoneID != "" && !zones[l.ZoneID] {
			r.RegisterErrorWithBadValue(FlexMissingFareRule, l.ZoneID, l)
		}
	}
}

// validateRoutesAndTrips aggregates stop-time state per trip: a trip "is
// flex" when any of its stop times sets a pickup/drop off window or halts at
// a location or location group. Flex trips gate the route-level continuous
// checks and are exempted from speed validation downstream.
func (v *FlexValidator) validateRoutesAndTrips(r *Reporter) {
	flexTrips := make(map[string]bool)
	flexHaltTrips := make(map[string]bool)
	for _, st := range v.feed.StopTimes {
		if st.HasPickupDropOffWindow() || st.HasFlexHalt() {
			flexTrips[st.TripID] = true
		}
		if st.HasFlexHalt() {
			flexHaltTrips[st.TripID] = true
		}
	}

	flexRoutes := make(map[string]bool)
	for _, t := range v.feed.Trips {
		if flexTrips[t.TripID] {
			flexRoutes[t.RouteID] = true
		}
		if flexHaltTrips[t.TripID] {
			r.Result().MarkSpeedNotValidated(t.TripID)
		}
	}

	for _, route := range v.feed.Routes {
		if !flexRoutes[route.RouteID] {
			continue
		}
		if continuousSet(route.ContinuousPickup) {
			r.Register(NewValidationError(FlexForbiddenRouteContinuousPickup, route).WithBadInt(route.ContinuousPickup))
		}
		if continuousSet(route.ContinuousDropOff) {
			r.Register(NewValidationError(FlexForbiddenRouteContinuousDropOff, route).WithBadInt(route.ContinuousDropOff))
		}
	}
}
