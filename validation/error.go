package validation

import (
	"strconv"

	"github.com/theoremus-urban-solutions/gtfs-flex-validator/gtfs"
)

// EntityReference points a finding at one feed record. Line is -1 for
// synthetic references (derived entities that never had a source row).
// Sequence is gtfs.MissingInt except for row-scoped entities like stop
// times, where it carries stop_sequence.
type EntityReference struct {
	Kind     string
	Line     int
	EntityID string
	Sequence int
}

// ValidationError is one finding: a catalog code, the records it concerns
// and an optional offending value captured for diagnosis. It is immutable
// once built and handed straight to the error store.
type ValidationError struct {
	Type     ErrorType
	Refs     []EntityReference
	BadValue string
}

// NewValidationError builds a finding referencing the given entities.
func NewValidationError(t ErrorType, entities ...gtfs.Entity) *ValidationError {
	e := &ValidationError{Type: t}
	for _, entity := range entities {
		e.Refs = append(e.Refs, refFor(entity))
	}
	return e
}

// WithBadValue attaches the offending value and returns the finding.
func (e *ValidationError) WithBadValue(v string) *ValidationError {
	e.BadValue = v
	return e
}

// WithBadInt attaches a numeric offending value, skipping the missing
// sentinel so absent fields do not render as a huge negative number.
func (e *ValidationError) WithBadInt(v int) *ValidationError {
	if v != gtfs.MissingInt {
		e.BadValue = strconv.Itoa(v)
	}
	return e
}

func refFor(entity gtfs.Entity) EntityReference {
	ref := EntityReference{
		Kind:     entity.Kind(),
		Line:     entity.Row(),
		EntityID: entity.ID(),
		Sequence: gtfs.MissingInt,
	}
	if st, ok := entity.(*gtfs.StopTime); ok {
		ref.Sequence = st.StopSequence
	}
	return ref
}
