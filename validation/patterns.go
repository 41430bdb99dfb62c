package validation

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

// PatternSink receives the resolved patterns at the end of a run. The db
// package provides the SQLite-backed implementation; tests substitute their
// own.
type PatternSink interface {
	WritePatterns(ctx context.Context, patterns []*gtfs.Pattern, tripPatterns map[string]string) error
}

// PatternFinder clusters trips into canonical halt-sequence patterns during
// the shared trip pass and resolves them on completion. Two trips share a
// pattern iff their ordered halts are equal, where a halt's identity is its
// kind (stop, location group or location), its id, and whether the stop
// time uses flex windows. Reordered halts are always a different pattern.
type PatternFinder struct {
	feed    *gtfs.Feed
	sink    PatternSink // nil means resolve without persisting
	buckets map[string][]*gtfs.Trip
}

// NewPatternFinder returns a pattern finder writing to sink, which may be
// nil.
func NewPatternFinder(feed *gtfs.Feed, sink PatternSink) *PatternFinder {
	return &PatternFinder{
		feed:    feed,
		sink:    sink,
		buckets: make(map[string][]*gtfs.Trip),
	}
}

func (v *PatternFinder) Name() string { return "patterns" }

// keyEscaper escapes the encoding's separator bytes inside ids, keeping the
// key injective: an id containing '|' or ';' cannot fake a halt boundary or
// a window flag.
var keyEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `;`, `\;`)

// patternKey canonicalizes a trip's ordered halts. The encoding feeds both
// the bucket map and the derived pattern id, so it must stay stable across
// versions.
func patternKey(stopTimes []*gtfs.StopTime) string {
	var b strings.Builder
	for i, st := range stopTimes {
		if i > 0 {
			b.WriteByte('|')
		}
		switch {
		case st.StopID != "":
			b.WriteString("s=")
			b.WriteString(keyEscaper.Replace(st.StopID))
		case st.LocationGroupID != "":
			b.WriteString("g=")
			b.WriteString(keyEscaper.Replace(st.LocationGroupID))
		case st.LocationID != "":
			b.WriteString("l=")
			b.WriteString(keyEscaper.Replace(st.LocationID))
		}
		if st.HasPickupDropOffWindow() {
			b.WriteString(";w")
		}
	}
	return b.String()
}

// patternIDForKey derives the stable pattern id from the canonical key.
// Hash-derived ids make pattern synthesis independent of trip order and
// idempotent across repeated runs.
func patternIDForKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return "pattern_" + hex.EncodeToString(sum[:8])
}

func (v *PatternFinder) ValidateTrip(tc *TripContext, r *Reporter) {
	if len(tc.StopTimes) == 0 {
		return
	}
	key := patternKey(tc.StopTimes)
	v.buckets[key] = append(v.buckets[key], tc.Trip)
}

// Complete resolves every bucket into a pattern, assigns pattern ids to the
// bucketed trips and persists through the sink. Buckets are walked in
// sorted key order so error emission and synthesis are deterministic.
func (v *PatternFinder) Complete(result *Result, r *Reporter) error {
	keys := make([]string, 0, len(v.buckets))
	for key := range v.buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	patterns := make([]*gtfs.Pattern, 0, len(keys))
	tripPatterns := make(map[string]string)

	for _, key := range keys {
		trips := v.buckets[key]
		patternID, pattern := v.resolveBucket(key, trips, r)
		for _, t := range trips {
			t.PatternID = patternID
			tripPatterns[t.TripID] = patternID
		}
		if pattern != nil {
			patterns = append(patterns, pattern)
		}
	}
	result.PatternCount = len(keys)

	if v.sink != nil {
		if err := v.sink.WritePatterns(r.ctx, patterns, tripPatterns); err != nil {
			return fmt.Errorf("persisting patterns: %w", err)
		}
	}
	return nil
}

// resolveBucket either reuses a consistent pre-existing pattern assignment
// or synthesizes a new pattern from the bucket's representative trip. The
// returned pattern is nil on reuse.
func (v *PatternFinder) resolveBucket(key string, trips []*gtfs.Trip, r *Reporter) (string, *gtfs.Pattern) {
	if existing := v.reusablePattern(trips); existing != "" {
		return existing, nil
	}

	// Representative trip: lexicographically first id, so synthesis does
	// not depend on iteration order.
	rep := trips[0]
	for _, t := range trips[1:] {
		if t.TripID < rep.TripID {
			rep = t
		}
	}

	patternID := patternIDForKey(key)
	shapeID := v.resolveShape(trips, rep, r)
	p := &gtfs.Pattern{
		PatternID: patternID,
		RouteID:   rep.RouteID,
		Name:      v.patternName(rep),
		ShapeID:   shapeID,
		Halts:     buildHalts(patternID, v.feed.StopTimesForTrip(rep.TripID)),
		Line:      -1,
	}
	return patternID, p
}

// reusablePattern returns the pattern id all trips in the bucket already
// consistently carry, provided that pattern exists in the feed; "" means a
// new pattern must be synthesized.
func (v *PatternFinder) reusablePattern(trips []*gtfs.Trip) string {
	first := trips[0].PatternID
	if first == "" || v.feed.Pattern(first) == nil {
		return ""
	}
	for _, t := range trips[1:] {
		if t.PatternID != first {
			return ""
		}
	}
	return first
}

// resolveShape picks the bucket's representative shape: the most frequent
// non-empty shape id, ties broken by first appearance. Conflicting shapes
// are reported once per bucket and never fail the run.
func (v *PatternFinder) resolveShape(trips []*gtfs.Trip, rep *gtfs.Trip, r *Reporter) string {
	counts := make(map[string]int)
	var order []string
	for _, t := range trips {
		if t.ShapeID == "" {
			continue
		}
		if counts[t.ShapeID] == 0 {
			order = append(order, t.ShapeID)
		}
		counts[t.ShapeID]++
	}
	if len(order) == 0 {
		return ""
	}
	chosen := order[0]
	for _, id := range order[1:] {
		if counts[id] > counts[chosen] {
			chosen = id
		}
	}
	if len(order) > 1 {
		refs := []gtfs.Entity{}
		if route := v.feed.Route(rep.RouteID); route != nil {
			refs = append(refs, route)
		}
		refs = append(refs, rep)
		r.Register(NewValidationError(MultipleShapesForPattern, refs...).WithBadValue(chosen))
	}
	return chosen
}

func (v *PatternFinder) patternName(rep *gtfs.Trip) string {
	stopTimes := v.feed.StopTimesForTrip(rep.TripID)
	return fmt.Sprintf("%d halts from %s to %s",
		len(stopTimes), v.haltName(stopTimes[0]), v.haltName(stopTimes[len(stopTimes)-1]))
}

func (v *PatternFinder) haltName(st *gtfs.StopTime) string {
	switch {
	case st.StopID != "":
		if s := v.feed.Stop(st.StopID); s != nil && s.Name != "" {
			return s.Name
		}
		return st.StopID
	case st.LocationGroupID != "":
		if g := v.feed.LocationGroup(st.LocationGroupID); g != nil && g.Name != "" {
			return g.Name
		}
		return st.LocationGroupID
	case st.LocationID != "":
		if l := v.feed.Location(st.LocationID); l != nil && l.Name != "" {
			return l.Name
		}
		return st.LocationID
	}
	return "?"
}

// buildHalts derives the ordered pattern halts from the representative
// trip's stop times, carrying default travel/dwell times and the flex
// booking references.
func buildHalts(patternID string, stopTimes []*gtfs.StopTime) []*gtfs.PatternHalt {
	halts := make([]*gtfs.PatternHalt, 0, len(stopTimes))
	prevDeparture := gtfs.MissingInt
	for i, st := range stopTimes {
		travel := 0
		if i > 0 && st.ArrivalTime != gtfs.MissingInt && prevDeparture != gtfs.MissingInt {
			travel = st.ArrivalTime - prevDeparture
		}
		dwell := 0
		if st.ArrivalTime != gtfs.MissingInt && st.DepartureTime != gtfs.MissingInt {
			dwell = st.DepartureTime - st.ArrivalTime
		}
		halts = append(halts, &gtfs.PatternHalt{
			PatternID:                patternID,
			HaltSequence:             i,
			StopID:                   st.StopID,
			LocationGroupID:          st.LocationGroupID,
			LocationID:               st.LocationID,
			DefaultTravelTime:        travel,
			DefaultDwellTime:         dwell,
			PickupType:               st.PickupType,
			DropOffType:              st.DropOffType,
			StartPickupDropOffWindow: st.StartPickupDropOffWindow,
			EndPickupDropOffWindow:   st.EndPickupDropOffWindow,
			PickupBookingRuleID:      st.PickupBookingRuleID,
			DropOffBookingRuleID:     st.DropOffBookingRuleID,
		})
		if st.DepartureTime != gtfs.MissingInt {
			prevDeparture = st.DepartureTime
		} else if st.EndPickupDropOffWindow != gtfs.MissingInt {
			prevDeparture = st.EndPickupDropOffWindow
		} else {
			prevDeparture = gtfs.MissingInt
		}
	}
	return halts
}
