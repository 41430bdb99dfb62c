package validation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

// FeedValidator is the whole-feed shape: Validate is called once and is
// free to iterate any feed collections. Returning an error marks the
// validator as failed without aborting the run.
type FeedValidator interface {
	Name() string
	Validate(r *Reporter) error
}

// TripValidator is the per-trip shape: ValidateTrip is called once for
// every trip during one shared iteration pass, then Complete exactly once
// after all trips have been offered.
type TripValidator interface {
	Name() string
	ValidateTrip(tc *TripContext, r *Reporter)
	Complete(result *Result, r *Reporter) error
}

// TripContext hands a trip validator everything pre-resolved for one trip.
type TripContext struct {
	Trip           *gtfs.Trip
	Route          *gtfs.Route // nil when the route reference dangles
	StopTimes      []*gtfs.StopTime
	Stops          map[string]*gtfs.Stop
	Locations      map[string]*gtfs.Location
	LocationGroups map[string]*gtfs.LocationGroup
}

// Result summarizes one validation run.
type Result struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	ErrorCount  int
	HighCount   int
	MediumCount int
	LowCount    int
	// PatternCount is the number of patterns resolved by pattern inference.
	PatternCount int
	// FailedValidators names validators converted to VALIDATOR_FAILED.
	FailedValidators []string
	// ValidatorTimings is wall time spent per validator name.
	ValidatorTimings map[string]time.Duration

	speedSkipped map[string]bool
}

// Passed reports whether the feed had no HIGH severity findings.
func (res *Result) Passed() bool { return res.HighCount == 0 }

// MarkSpeedNotValidated flags a trip whose travel speed cannot be checked
// because it halts at flex locations. Not a finding, only advisory state
// for downstream speed validators.
func (res *Result) MarkSpeedNotValidated(tripID string) {
	if res.speedSkipped == nil {
		res.speedSkipped = make(map[string]bool)
	}
	res.speedSkipped[tripID] = true
}

// SpeedNotValidated reports whether speed validation was skipped for a trip.
func (res *Result) SpeedNotValidated(tripID string) bool { return res.speedSkipped[tripID] }

// Reporter is the channel validators emit findings through. It captures the
// entity references, tallies severities and forwards to the error store.
// The first storage failure is retained and fails the whole run; findings
// themselves never stop a validator.
type Reporter struct {
	ctx      context.Context
	store    *ErrorStore
	result   *Result
	storeErr error
}

// Register stores a pre-built finding.
func (r *Reporter) Register(e *ValidationError) {
	if r.storeErr != nil {
		return
	}
	switch e.Type.SeverityOf() {
	case High:
		r.result.HighCount++
	case Medium:
		r.result.MediumCount++
	default:
		r.result.LowCount++
	}
	if err := r.store.Store(r.ctx, e); err != nil {
		r.storeErr = err
	}
}

// RegisterError builds and stores a finding referencing the given entities.
func (r *Reporter) RegisterError(t ErrorType, entities ...gtfs.Entity) {
	r.Register(NewValidationError(t, entities...))
}

// RegisterErrorWithBadValue is RegisterError with the offending value kept
// for diagnosis.
func (r *Reporter) RegisterErrorWithBadValue(t ErrorType, badValue string, entities ...gtfs.Entity) {
	r.Register(NewValidationError(t, entities...).WithBadValue(badValue))
}

// Err returns the first storage failure, if any.
func (r *Reporter) Err() error { return r.storeErr }

// Result exposes the run summary so validators can record advisory state
// (speed-validation skips, pattern counts).
func (r *Reporter) Result() *Result { return r.result }

// Runner orchestrates one validation run: whole-feed validators first, then
// a single shared trip pass feeding every trip validator, then completions
// in registration order (so a validator depending on another's accumulation
// registers after it).
type Runner struct {
	feed           *gtfs.Feed
	store          *ErrorStore
	feedValidators []FeedValidator
	tripValidators []TripValidator
}

// NewRunner returns a runner over the feed writing findings to the store.
func NewRunner(feed *gtfs.Feed, store *ErrorStore) *Runner {
	return &Runner{feed: feed, store: store}
}

// AddFeedValidator registers a whole-feed validator.
func (r *Runner) AddFeedValidator(v FeedValidator) { r.feedValidators = append(r.feedValidators, v) }

// AddTripValidator registers a per-trip validator.
func (r *Runner) AddTripValidator(v TripValidator) { r.tripValidators = append(r.tripValidators, v) }

// Run executes all registered validators and finishes the error store.
// The returned error is a storage failure; findings are in the store and
// summarized in the Result either way.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:            uuid.New().String(),
		StartedAt:        time.Now(),
		ValidatorTimings: make(map[string]time.Duration),
	}
	rep := &Reporter{ctx: ctx, store: r.store, result: result}

	// In reconnect mode the store already counts the prior run's findings;
	// the summary reports this run only.
	baseline := r.store.Count()

	for _, v := range r.feedValidators {
		started := time.Now()
		r.runFeedValidator(v, rep, result)
		result.ValidatorTimings[v.Name()] += time.Since(started)
		if rep.Err() != nil {
			return result, rep.Err()
		}
		log.Printf("validator %s finished in %v", v.Name(), time.Since(started))
	}

	// One shared pass over all trips. A trip validator that panics is
	// dropped for the rest of the pass and its Complete is never called.
	active := make([]TripValidator, len(r.tripValidators))
	copy(active, r.tripValidators)
	for _, trip := range r.feed.Trips {
		tc := r.tripContext(trip)
		for i := 0; i < len(active); i++ {
			name := active[i].Name()
			started := time.Now()
			ok := r.offerTrip(active[i], tc, rep, result)
			result.ValidatorTimings[name] += time.Since(started)
			if !ok {
				active = append(active[:i], active[i+1:]...)
				i--
			}
		}
		if rep.Err() != nil {
			return result, rep.Err()
		}
	}
	for _, v := range active {
		started := time.Now()
		r.completeValidator(v, rep, result)
		result.ValidatorTimings[v.Name()] += time.Since(started)
		if rep.Err() != nil {
			return result, rep.Err()
		}
		log.Printf("validator %s finished in %v", v.Name(), result.ValidatorTimings[v.Name()])
	}

	if err := r.store.Finish(ctx); err != nil {
		return result, err
	}
	result.ErrorCount = r.store.Count() - baseline
	result.Duration = time.Since(result.StartedAt)
	log.Printf("validation run %s: %d findings (%d high, %d medium, %d low) in %v",
		result.RunID, result.HighCount+result.MediumCount+result.LowCount,
		result.HighCount, result.MediumCount, result.LowCount, result.Duration)
	return result, nil
}

func (r *Runner) tripContext(trip *gtfs.Trip) *TripContext {
	tc := &TripContext{
		Trip:           trip,
		Route:          r.feed.RouteForTrip(trip),
		StopTimes:      r.feed.StopTimesForTrip(trip.TripID),
		Stops:          make(map[string]*gtfs.Stop),
		Locations:      make(map[string]*gtfs.Location),
		LocationGroups: make(map[string]*gtfs.LocationGroup),
	}
	for _, st := range tc.StopTimes {
		if st.StopID != "" {
			if s := r.feed.Stop(st.StopID); s != nil {
				tc.Stops[s.StopID] = s
			}
		}
		if st.LocationID != "" {
			if l := r.feed.Location(st.LocationID); l != nil {
				tc.Locations[l.LocationID] = l
			}
		}
		if st.LocationGroupID != "" {
			if g := r.feed.LocationGroup(st.LocationGroupID); g != nil {
				tc.LocationGroups[g.LocationGroupID] = g
			}
		}
	}
	return tc
}

// runFeedValidator isolates one whole-feed validator: a panic or returned
// error becomes a single VALIDATOR_FAILED finding and the run moves on.
func (r *Runner) runFeedValidator(v FeedValidator, rep *Reporter, result *Result) {
	defer func() {
		if p := recover(); p != nil {
			r.markFailed(v.Name(), fmt.Sprintf("%v", p), rep, result)
		}
	}()
	if err := v.Validate(rep); err != nil {
		r.markFailed(v.Name(), err.Error(), rep, result)
	}
}

// offerTrip feeds one trip to one validator; reports false if the validator
// panicked and must be dropped from the pass.
func (r *Runner) offerTrip(v TripValidator, tc *TripContext, rep *Reporter, result *Result) (ok bool) {
	ok = true
	defer func() {
		if p := recover(); p != nil {
			ok = false
			r.markFailed(v.Name(), fmt.Sprintf("%v", p), rep, result)
		}
	}()
	v.ValidateTrip(tc, rep)
	return ok
}

func (r *Runner) completeValidator(v TripValidator, rep *Reporter, result *Result) {
	defer func() {
		if p := recover(); p != nil {
			r.markFailed(v.Name(), fmt.Sprintf("%v", p), rep, result)
		}
	}()
	if err := v.Complete(result, rep); err != nil {
		r.markFailed(v.Name(), err.Error(), rep, result)
	}
}

func (r *Runner) markFailed(name, detail string, rep *Reporter, result *Result) {
	log.Printf("validator %s failed: %s", name, detail)
	result.FailedValidators = append(result.FailedValidators, name)
	rep.Register(NewValidationError(ValidatorFailed).WithBadValue(name + ": " + detail))
}
