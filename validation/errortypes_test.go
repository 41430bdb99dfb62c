package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypeInfo(t *testing.T) {
	assert.Equal(t, High, TripEmpty.SeverityOf())
	assert.Equal(t, Medium, StopUnused.SeverityOf())
	assert.Equal(t, Low, FeedTravelTimesRounded.SeverityOf())

	info := FlexForbiddenArrivalTime.Info()
	assert.Equal(t, High, info.Severity)
	assert.NotEmpty(t, info.Message)

	unknown := ErrorType("NOT_A_REAL_CODE").Info()
	assert.Equal(t, High, unknown.Severity)
	assert.Equal(t, "Unknown error type.", unknown.Message)
}

func TestCatalogIsACopy(t *testing.T) {
	c := Catalog()
	assert.NotEmpty(t, c)
	c[StopUnused] = ErrorTypeInfo{Low, "tampered"}
	assert.Equal(t, Medium, StopUnused.SeverityOf())
}
