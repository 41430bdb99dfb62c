package gtfs

import "math"

// MissingInt marks an optional numeric field that was absent in the source
// row. Zero is a meaningful value for most GTFS numeric fields (pickup_type,
// continuous_pickup, booking_type, times at midnight), so absence needs its
// own sentinel.
const MissingInt = math.MinInt32

// Entity kinds, persisted into error_refs.entity_type.
const (
	KindStop              = "stop"
	KindRoute             = "route"
	KindTrip              = "trip"
	KindStopTime          = "stop_time"
	KindLocation          = "location"
	KindLocationGroup     = "location_group"
	KindLocationGroupStop = "location_group_stop"
	KindBookingRule       = "booking_rule"
	KindFareRule          = "fare_rule"
	KindPattern           = "pattern"
)

// Entity is implemented by every feed record so validation findings can
// capture the record's table, id and source row without knowing its type.
type Entity interface {
	Kind() string
	ID() string
	Row() int
}

// Stop is one row of stops.txt.
type Stop struct {
	StopID        string
	Name          string
	Lat           float64
	Lon           float64
	ZoneID        string
	ParentStation string
	LocationType  int
	Line          int
}

func (s *Stop) Kind() string { return KindStop }
func (s *Stop) ID() string   { return s.StopID }
func (s *Stop) Row() int     { return s.Line }

// Route is one row of routes.txt.
type Route struct {
	RouteID           string
	AgencyID          string
	ShortName         string
	LongName          string
	Type              int
	ContinuousPickup  int // MissingInt when absent
	ContinuousDropOff int // MissingInt when absent
	Line              int
}

func (r *Route) Kind() string { return KindRoute }
func (r *Route) ID() string   { return r.RouteID }
func (r *Route) Row() int     { return r.Line }

// Trip is one row of trips.txt. PatternID is derived output, written back by
// pattern inference rather than read from the feed archive.
type Trip struct {
	TripID      string
	RouteID     string
	ServiceID   string
	ShapeID     string
	BlockID     string
	Headsign    string
	DirectionID int // MissingInt when absent
	PatternID   string
	Line        int
}

func (t *Trip) Kind() string { return KindTrip }
func (t *Trip) ID() string   { return t.TripID }
func (t *Trip) Row() int     { return t.Line }

// StopTime is one row of stop_times.txt. Exactly one of StopID,
// LocationGroupID and LocationID should be set; the flex rule engine checks
// that, nothing here assumes it. Times are seconds since midnight.
type StopTime struct {
	TripID                   string
	StopSequence             int
	StopID                   string
	LocationGroupID          string
	LocationID               string
	ArrivalTime              int // MissingInt when absent
	DepartureTime            int // MissingInt when absent
	StartPickupDropOffWindow int // MissingInt when absent
	EndPickupDropOffWindow   int // MissingInt when absent
	PickupType               int // MissingInt when absent
	DropOffType              int // MissingInt when absent
	ContinuousPickup         int // MissingInt when absent
	ContinuousDropOff        int // MissingInt when absent
	PickupBookingRuleID      string
	DropOffBookingRuleID     string
	Timepoint                int // MissingInt when absent
	ShapeDistTraveled        float64
	Line                     int
}

func (st *StopTime) Kind() string { return KindStopTime }
func (st *StopTime) ID() string   { return st.TripID }
func (st *StopTime) Row() int     { return st.Line }

// HasPickupDropOffWindow reports whether either flex window field is set.
func (st *StopTime) HasPickupDropOffWindow() bool {
	return st.StartPickupDropOffWindow != MissingInt || st.EndPickupDropOffWindow != MissingInt
}

// HasFlexHalt reports whether the row references a location or location
// group instead of a fixed stop.
func (st *StopTime) HasFlexHalt() bool {
	return st.LocationGroupID != "" || st.LocationID != ""
}

// Location is one row of locations.geojson, reduced to the fields
// validation needs. Geometry handling is out of scope.
type Location struct {
	LocationID string
	Name       string
	ZoneID     string
	Line       int
}

func (l *Location) Kind() string { return KindLocation }
func (l *Location) ID() string   { return l.LocationID }
func (l *Location) Row() int     { return l.Line }

// LocationGroup is one row of location_groups.txt.
type LocationGroup struct {
	LocationGroupID string
	Name            string
	Line            int
}

func (g *LocationGroup) Kind() string { return KindLocationGroup }
func (g *LocationGroup) ID() string   { return g.LocationGroupID }
func (g *LocationGroup) Row() int     { return g.Line }

// LocationGroupStop is one row of location_group_stops.txt.
type LocationGroupStop struct {
	LocationGroupID string
	StopID          string
	Line            int
}

func (g *LocationGroupStop) Kind() string { return KindLocationGroupStop }
func (g *LocationGroupStop) ID() string   { return g.LocationGroupID }
func (g *LocationGroupStop) Row() int     { return g.Line }

// BookingRule is one row of booking_rules.txt.
type BookingRule struct {
	BookingRuleID          string
	BookingType            int // MissingInt when absent
	PriorNoticeDurationMin int // MissingInt when absent
	PriorNoticeDurationMax int // MissingInt when absent
	PriorNoticeLastDay     int // MissingInt when absent
	PriorNoticeLastTime    int // MissingInt when absent
	PriorNoticeStartDay    int // MissingInt when absent
	PriorNoticeStartTime   int // MissingInt when absent
	PriorNoticeServiceID   string
	Message                string
	PhoneNumber            string
	InfoURL                string
	BookingURL             string
	Line                   int
}

func (b *BookingRule) Kind() string { return KindBookingRule }
func (b *BookingRule) ID() string   { return b.BookingRuleID }
func (b *BookingRule) Row() int     { return b.Line }

// FareRule is one row of fare_rules.txt.
type FareRule struct {
	FareID        string
	RouteID       string
	OriginID      string
	DestinationID string
	ContainsID    string
	Line          int
}

func (f *FareRule) Kind() string { return KindFareRule }
func (f *FareRule) ID() string   { return f.FareID }
func (f *FareRule) Row() int     { return f.Line }

// Pattern is a derived entity: the canonical ordered halt sequence shared by
// one or more trips on a route, plus a representative shape.
type Pattern struct {
	PatternID string
	RouteID   string
	Name      string
	ShapeID   string
	Halts     []*PatternHalt
	Line      int // -1 for patterns synthesized during a run
}

func (p *Pattern) Kind() string { return KindPattern }
func (p *Pattern) ID() string   { return p.PatternID }
func (p *Pattern) Row() int     { return p.Line }

// PatternHalt is one ordered halt of a pattern. Exactly one of StopID,
// LocationGroupID and LocationID is set, mirroring the representative
// trip's stop time.
type PatternHalt struct {
	PatternID                string
	HaltSequence             int
	StopID                   string
	LocationGroupID          string
	LocationID               string
	DefaultTravelTime        int
	DefaultDwellTime         int
	PickupType               int
	DropOffType              int
	StartPickupDropOffWindow int
	EndPickupDropOffWindow   int
	PickupBookingRuleID      string
	DropOffBookingRuleID     string
}
