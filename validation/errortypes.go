package validation

// Severity ranks a finding for display. It never drives control flow: every
// finding, whatever its severity, is recorded and validation continues.
type Severity string

const (
	High   Severity = "HIGH"
	Medium Severity = "MEDIUM"
	Low    Severity = "LOW"
)

// ErrorType is a stable catalog code. Codes are part of the persisted output
// contract (errors.type); never rename or reuse one after removal without a
// migration note.
type ErrorType string

const (
	BooleanFormat                              ErrorType = "BOOLEAN_FORMAT"
	ColumnNameUnsafe                           ErrorType = "COLUMN_NAME_UNSAFE"
	ConditionallyRequired                      ErrorType = "CONDITIONALLY_REQUIRED"
	DateFormat                                 ErrorType = "DATE_FORMAT"
	DateNoService                              ErrorType = "DATE_NO_SERVICE"
	DateRange                                  ErrorType = "DATE_RANGE"
	DepartureBeforeArrival                     ErrorType = "DEPARTURE_BEFORE_ARRIVAL"
	DuplicateHeader                            ErrorType = "DUPLICATE_HEADER"
	DuplicateID                                ErrorType = "DUPLICATE_ID"
	DuplicateStop                              ErrorType = "DUPLICATE_STOP"
	DuplicateTrip                              ErrorType = "DUPLICATE_TRIP"
	FareTransferMismatch                       ErrorType = "FARE_TRANSFER_MISMATCH"
	FeedTravelTimesRounded                     ErrorType = "FEED_TRAVEL_TIMES_ROUNDED"
	FieldValueTooLong                          ErrorType = "FIELD_VALUE_TOO_LONG"
	FlexForbiddenArrivalTime                   ErrorType = "FLEX_FORBIDDEN_ARRIVAL_TIME"
	FlexForbiddenContinuousDropOff             ErrorType = "FLEX_FORBIDDEN_CONTINUOUS_DROP_OFF"
	FlexForbiddenContinuousPickup              ErrorType = "FLEX_FORBIDDEN_CONTINUOUS_PICKUP"
	FlexForbiddenDepartureTime                 ErrorType = "FLEX_FORBIDDEN_DEPARTURE_TIME"
	FlexForbiddenDropOffType                   ErrorType = "FLEX_FORBIDDEN_DROP_OFF_TYPE"
	FlexForbiddenDuplicateLocationGroupID      ErrorType = "FLEX_FORBIDDEN_DUPLICATE_LOCATION_GROUP_ID"
	FlexForbiddenDuplicateLocationID           ErrorType = "FLEX_FORBIDDEN_DUPLICATE_LOCATION_ID"
	FlexForbiddenEndPickupDropOffWindow        ErrorType = "FLEX_FORBIDDEN_END_PICKUP_DROP_OFF_WINDOW"
	FlexForbiddenLocationGroupID               ErrorType = "FLEX_FORBIDDEN_LOCATION_GROUP_ID"
	FlexForbiddenLocationID                    ErrorType = "FLEX_FORBIDDEN_LOCATION_ID"
	FlexForbiddenPickupType                    ErrorType = "FLEX_FORBIDDEN_PICKUP_TYPE"
	FlexForbiddenPriorNoticeDurationMax        ErrorType = "FLEX_FORBIDDEN_PRIOR_NOTICE_DURATION_MAX"
	FlexForbiddenPriorNoticeDurationMin        ErrorType = "FLEX_FORBIDDEN_PRIOR_NOTICE_DURATION_MIN"
	FlexForbiddenPriorNoticeLastDay            ErrorType = "FLEX_FORBIDDEN_PRIOR_NOTICE_LAST_DAY"
	FlexForbiddenPriorNoticeServiceID          ErrorType = "FLEX_FORBIDDEN_PRIOR_NOTICE_SERVICE_ID"
	FlexForbiddenPriorNoticeStartDay           ErrorType = "FLEX_FORBIDDEN_PRIOR_NOTICE_START_DAY"
	FlexForbiddenPriorNoticeStartDayForBooking ErrorType = "FLEX_FORBIDDEN_PRIOR_NOTICE_START_DAY_FOR_BOOKING_TYPE"
	FlexForbiddenPriorNoticeStartTime          ErrorType = "FLEX_FORBIDDEN_PRIOR_NOTICE_START_TIME"
	FlexForbiddenRouteContinuousDropOff        ErrorType = "FLEX_FORBIDDEN_ROUTE_CONTINUOUS_DROP_OFF"
	FlexForbiddenRouteContinuousPickup         ErrorType = "FLEX_FORBIDDEN_ROUTE_CONTINUOUS_PICKUP"
	FlexForbiddenStartPickupDropOffWindow      ErrorType = "FLEX_FORBIDDEN_START_PICKUP_DROP_OFF_WINDOW"
	FlexForbiddenStopID                        ErrorType = "FLEX_FORBIDDEN_STOP_ID"
	FlexMissingFareRule                        ErrorType = "FLEX_MISSING_FARE_RULE"
	FlexRequiredEndPickupDropOffWindow         ErrorType = "FLEX_REQUIRED_END_PICKUP_DROP_OFF_WINDOW"
	FlexRequiredPriorNoticeDurationMin         ErrorType = "FLEX_REQUIRED_PRIOR_NOTICE_DURATION_MIN"
	FlexRequiredPriorNoticeLastDay             ErrorType = "FLEX_REQUIRED_PRIOR_NOTICE_LAST_DAY"
	FlexRequiredPriorNoticeStartTime           ErrorType = "FLEX_REQUIRED_PRIOR_NOTICE_START_TIME"
	FlexRequiredStartPickupDropOffWindow       ErrorType = "FLEX_REQUIRED_START_PICKUP_DROP_OFF_WINDOW"
	FlexRequiredStopID                         ErrorType = "FLEX_REQUIRED_STOP_ID"
	GeoJSONParsing                             ErrorType = "GEO_JSON_PARSING"
	IllegalFieldValue                          ErrorType = "ILLEGAL_FIELD_VALUE"
	IntFormat                                  ErrorType = "INT_FORMAT"
	LanguageFormat                             ErrorType = "LANGUAGE_FORMAT"
	LocationGroupUnused                        ErrorType = "LOCATION_GROUP_UNUSED"
	LocationUnused                             ErrorType = "LOCATION_UNUSED"
	MissingArrivalOrDeparture                  ErrorType = "MISSING_ARRIVAL_OR_DEPARTURE"
	MissingColumn                              ErrorType = "MISSING_COLUMN"
	MissingField                               ErrorType = "MISSING_FIELD"
	MissingForeignTableReference               ErrorType = "MISSING_FOREIGN_TABLE_REFERENCE"
	MissingShape                               ErrorType = "MISSING_SHAPE"
	MissingTable                               ErrorType = "MISSING_TABLE"
	MultipleShapesForPattern                   ErrorType = "MULTIPLE_SHAPES_FOR_PATTERN"
	NoService                                  ErrorType = "NO_SERVICE"
	NumberNegative                             ErrorType = "NUMBER_NEGATIVE"
	NumberParsing                              ErrorType = "NUMBER_PARSING"
	NumberTooLarge                             ErrorType = "NUMBER_TOO_LARGE"
	NumberTooSmall                             ErrorType = "NUMBER_TOO_SMALL"
	OverlappingTrip                            ErrorType = "OVERLAPPING_TRIP"
	ReferentialIntegrity                       ErrorType = "REFERENTIAL_INTEGRITY"
	RequiredTableEmpty                         ErrorType = "REQUIRED_TABLE_EMPTY"
	RouteDescriptionSameAsName                 ErrorType = "ROUTE_DESCRIPTION_SAME_AS_NAME"
	RouteLongNameContainsShortName             ErrorType = "ROUTE_LONG_NAME_CONTAINS_SHORT_NAME"
	RouteShortAndLongNameMissing               ErrorType = "ROUTE_SHORT_AND_LONG_NAME_MISSING"
	RouteShortNameTooLong                      ErrorType = "ROUTE_SHORT_NAME_TOO_LONG"
	RouteUnused                                ErrorType = "ROUTE_UNUSED"
	ServiceNeverActive                         ErrorType = "SERVICE_NEVER_ACTIVE"
	ServiceUnused                              ErrorType = "SERVICE_UNUSED"
	ServiceWithoutDaysOfWeek                   ErrorType = "SERVICE_WITHOUT_DAYS_OF_WEEK"
	ShapeDistTraveledNotIncreasing             ErrorType = "SHAPE_DIST_TRAVELED_NOT_INCREASING"
	ShapeMissingCoordinate                     ErrorType = "SHAPE_MISSING_COORDINATE"
	ShapeReversed                              ErrorType = "SHAPE_REVERSED"
	StopDescriptionSameAsName                  ErrorType = "STOP_DESCRIPTION_SAME_AS_NAME"
	StopGeographicOutlier                      ErrorType = "STOP_GEOGRAPHIC_OUTLIER"
	StopLowPopulationDensity                   ErrorType = "STOP_LOW_POPULATION_DENSITY"
	StopNameMissing                            ErrorType = "STOP_NAME_MISSING"
	StopTimeUnused                             ErrorType = "STOP_TIME_UNUSED"
	StopUnused                                 ErrorType = "STOP_UNUSED"
	TableInSubdirectory                        ErrorType = "TABLE_IN_SUBDIRECTORY"
	TableMissingColumnHeaders                  ErrorType = "TABLE_MISSING_COLUMN_HEADERS"
	TableTooLong                               ErrorType = "TABLE_TOO_LONG"
	TimeFormat                                 ErrorType = "TIME_FORMAT"
	TimeZoneFormat                             ErrorType = "TIME_ZONE_FORMAT"
	TravelDistanceZero                         ErrorType = "TRAVEL_DISTANCE_ZERO"
	TravelTimeNegative                         ErrorType = "TRAVEL_TIME_NEGATIVE"
	TravelTimeZero                             ErrorType = "TRAVEL_TIME_ZERO"
	TravelTooFast                              ErrorType = "TRAVEL_TOO_FAST"
	TravelTooSlow                              ErrorType = "TRAVEL_TOO_SLOW"
	TripEmpty                                  ErrorType = "TRIP_EMPTY"
	TripHeadsignContainsRouteName              ErrorType = "TRIP_HEADSIGN_CONTAINS_ROUTE_NAME"
	TripHeadsignShouldDescribeDestination      ErrorType = "TRIP_HEADSIGN_SHOULD_DESCRIBE_DESTINATION"
	TripNeverActive                            ErrorType = "TRIP_NEVER_ACTIVE"
	TripOverlapInBlock                         ErrorType = "TRIP_OVERLAP_IN_BLOCK"
	TripTooFewStopTimes                        ErrorType = "TRIP_TOO_FEW_STOP_TIMES"
	URLFormat                                  ErrorType = "URL_FORMAT"
	ValidatorFailed                            ErrorType = "VALIDATOR_FAILED"
	WrongNumberOfFields                        ErrorType = "WRONG_NUMBER_OF_FIELDS"
)

// ErrorTypeInfo is one immutable catalog entry.
type ErrorTypeInfo struct {
	Severity Severity
	Message  string
}

// A few messages are literally "???" or "Blocks?"; those entries predate
// any documentation of their trigger condition and the codes are kept
// stable without inventing one.
var errorCatalog = map[ErrorType]ErrorTypeInfo{
	BooleanFormat:                              {High, "Field must contain a binary value (0 or 1)."},
	ColumnNameUnsafe:                           {High, "Column header contains characters not safe in SQL, it was renamed."},
	ConditionallyRequired:                      {High, "A conditionally required field was missing in a particular row."},
	DateFormat:                                 {High, "Date format must be YYYYMMDD."},
	DateNoService:                              {Medium, "No service exists on this date."},
	DateRange:                                  {Medium, "Date is out of range."},
	DepartureBeforeArrival:                     {High, "The vehicle departs from this stop before it arrives."},
	DuplicateHeader:                            {High, "More than one column in a table had the same name in the header row."},
	DuplicateID:                                {High, "More than one entity in a table had the same ID."},
	DuplicateStop:                              {Medium, "More than one stop was located in exactly the same place."},
	DuplicateTrip:                              {Medium, "More than one trip had an identical schedule and stops."},
	FareTransferMismatch:                       {Medium, "A fare that does not permit transfers has a non-zero transfer duration."},
	FeedTravelTimesRounded:                     {Low, "All travel times in the feed are rounded to the minute, which may cause unexpected results in routing applications."},
	FieldValueTooLong:                          {Medium, "Field value has too many characters."},
	FlexForbiddenArrivalTime:                   {High, "It is forbidden to define an arrival time when a pickup/drop off window is defined."},
	FlexForbiddenContinuousDropOff:             {High, "It is forbidden to define a continuous drop off when a pickup/drop off window is defined."},
	FlexForbiddenContinuousPickup:              {High, "It is forbidden to define a continuous pickup when a pickup/drop off window is defined."},
	FlexForbiddenDepartureTime:                 {High, "It is forbidden to define a departure time when a pickup/drop off window is defined."},
	FlexForbiddenDropOffType:                   {High, "It is forbidden to define a drop off type of 0 (regularly scheduled) when a pickup/drop off window is defined."},
	FlexForbiddenDuplicateLocationGroupID:      {High, "A location group id must not match a stop id or location id."},
	FlexForbiddenDuplicateLocationID:           {High, "A location id must not match a stop id or location group id."},
	FlexForbiddenEndPickupDropOffWindow:        {High, "It is forbidden to define an end pickup/drop off window when an arrival or departure time is defined."},
	FlexForbiddenLocationGroupID:               {High, "It is forbidden to define a location group id when a stop id or location id is defined."},
	FlexForbiddenLocationID:                    {High, "It is forbidden to define a location id when a stop id or location group id is defined."},
	FlexForbiddenPickupType:                    {High, "It is forbidden to define a pickup type of 0 (regularly scheduled) or 3 (coordinate with driver) when a pickup/drop off window is defined."},
	FlexForbiddenPriorNoticeDurationMax:        {High, "It is forbidden to define a prior notice duration max for booking types 0 (real time booking) and 2 (up to prior day(s) booking)."},
	FlexForbiddenPriorNoticeDurationMin:        {High, "It is forbidden to define a prior notice duration min unless the booking type is 1 (up to same-day booking)."},
	FlexForbiddenPriorNoticeLastDay:            {High, "It is forbidden to define a prior notice last day unless the booking type is 2 (up to prior day(s) booking)."},
	FlexForbiddenPriorNoticeServiceID:          {High, "It is forbidden to define a prior notice service id unless the booking type is 2 (up to prior day(s) booking)."},
	FlexForbiddenPriorNoticeStartDay:           {High, "It is forbidden to define a prior notice start day when a prior notice duration max is defined."},
	FlexForbiddenPriorNoticeStartDayForBooking: {High, "It is forbidden to define a prior notice start day for booking type 0 (real time booking)."},
	FlexForbiddenPriorNoticeStartTime:          {High, "It is forbidden to define a prior notice start time when no prior notice start day is defined."},
	FlexForbiddenRouteContinuousDropOff:        {High, "It is forbidden to define a continuous drop off on a route when a trip has a stop time with a pickup/drop off window defined."},
	FlexForbiddenRouteContinuousPickup:         {High, "It is forbidden to define a continuous pickup on a route when a trip has a stop time with a pickup/drop off window defined."},
	FlexForbiddenStartPickupDropOffWindow:      {High, "It is forbidden to define a start pickup/drop off window when an arrival or departure time is defined."},
	FlexForbiddenStopID:                        {High, "It is forbidden to define a stop id when a location group id or location id is defined."},
	FlexMissingFareRule:                        {High, "A fare rule referencing the location's zone id as an origin, destination or contains zone is required."},
	FlexRequiredEndPickupDropOffWindow:         {High, "An end pickup/drop off window is required when a location group or location is referenced or a start pickup/drop off window is defined."},
	FlexRequiredPriorNoticeDurationMin:         {High, "A prior notice duration min is required for booking type 1 (up to same-day booking)."},
	FlexRequiredPriorNoticeLastDay:             {High, "A prior notice last day is required for booking type 2 (up to prior day(s) booking)."},
	FlexRequiredPriorNoticeStartTime:           {High, "A prior notice start time is required when a prior notice start day is defined."},
	FlexRequiredStartPickupDropOffWindow:       {High, "A start pickup/drop off window is required when a location group or location is referenced or an end pickup/drop off window is defined."},
	FlexRequiredStopID:                         {High, "A stop id, location group id or location id is required."},
	GeoJSONParsing:                             {High, "Unable to parse the locations GeoJSON file."},
	IllegalFieldValue:                          {Medium, "Fields may not contain tabs, carriage returns or new lines."},
	IntFormat:                                  {High, "Field must contain an integer."},
	LanguageFormat:                             {Low, "Language should be specified with a valid BCP47 tag."},
	LocationGroupUnused:                        {Medium, "This location group is not referenced by any stop times."},
	LocationUnused:                             {Medium, "This location is not referenced by any stop times."},
	MissingArrivalOrDeparture:                  {Medium, "First and last stop times are required to have both an arrival and departure time."},
	MissingColumn:                              {Medium, "A required column was missing from a table."},
	MissingField:                               {High, "A required field was missing or empty in a particular row."},
	MissingForeignTableReference:               {High, "This line references an ID that must exist in a single foreign table."},
	MissingShape:                               {Medium, "???"},
	MissingTable:                               {High, "This table is required by the GTFS specification but is missing."},
	MultipleShapesForPattern:                   {Medium, "Multiple shapes found for a single unique sequence of stops (i.e. trip pattern)."},
	NoService:                                  {High, "There is no service defined on any day in this feed."},
	NumberNegative:                             {Medium, "Number was expected to be non-negative."},
	NumberParsing:                              {Medium, "Unable to parse number from value."},
	NumberTooLarge:                             {Medium, "Number was above the allowed range."},
	NumberTooSmall:                             {Medium, "Number was below the allowed range."},
	OverlappingTrip:                            {Medium, "Blocks?"},
	ReferentialIntegrity:                       {High, "This line references an ID that does not exist in the target table."},
	RequiredTableEmpty:                         {High, "This table is required by the GTFS specification but is empty."},
	RouteDescriptionSameAsName:                 {Low, "The description of a route is identical to its name, so does not add any information."},
	RouteLongNameContainsShortName:             {Low, "The long name of a route should complement the short name, not include it."},
	RouteShortAndLongNameMissing:               {Medium, "A route has neither a short nor a long name."},
	RouteShortNameTooLong:                      {Medium, "The short name of a route is too long for display in standard GTFS consumer applications."},
	RouteUnused:                                {High, "This route is defined but has no trips."},
	ServiceNeverActive:                         {Medium, "A service code was defined, but is never active on any date."},
	ServiceUnused:                              {Medium, "A service code was defined, but is never referenced by any trips."},
	ServiceWithoutDaysOfWeek:                   {Medium, "A service defined in calendar.txt should be active on at least one day of the week. Otherwise, it should be omitted from this file."},
	ShapeDistTraveledNotIncreasing:             {Medium, "Shape distance traveled must increase with stop times."},
	ShapeMissingCoordinate:                     {Medium, "???"},
	ShapeReversed:                              {Medium, "A shape appears to be intended for vehicles running the opposite direction on the route."},
	StopDescriptionSameAsName:                  {Low, "The description of a stop is identical to its name, so does not add any information."},
	StopGeographicOutlier:                      {High, "This stop is located very far from the middle 90% of stops in this feed."},
	StopLowPopulationDensity:                   {High, "A stop is located in a geographic area with very low human population density."},
	StopNameMissing:                            {Medium, "A stop does not have a name."},
	StopTimeUnused:                             {Low, "This stop time allows neither pickup nor drop off and is not a timepoint, so it serves no purpose."},
	StopUnused:                                 {Medium, "This stop is not referenced by any trips."},
	TableInSubdirectory:                        {High, "Rather than being at the root of the zip file, a table was nested in a subdirectory."},
	TableMissingColumnHeaders:                  {High, "Table is missing column headers."},
	TableTooLong:                               {Medium, "Table is too long to record line numbers with a 32-bit integer, overflow will occur."},
	TimeFormat:                                 {High, "Time format should be HH:MM:SS."},
	TimeZoneFormat:                             {Medium, "Time zone format should match value from the Time Zone Database."},
	TravelDistanceZero:                         {Medium, "The vehicle does not cover any distance between the last stop and this one."},
	TravelTimeNegative:                         {High, "The vehicle arrives at this stop before it departs from the previous one."},
	TravelTimeZero:                             {High, "The vehicle arrives at this stop at the same time it departs from the previous stop."},
	TravelTooFast:                              {Medium, "The vehicle travels extremely fast to reach this stop from the previous one."},
	TravelTooSlow:                              {Medium, "The vehicle is traveling very slowly to reach this stop from the previous one."},
	TripEmpty:                                  {High, "This trip is defined but has no stop times."},
	TripHeadsignContainsRouteName:              {Low, "A trip headsign contains the route name, but this is redundant as the route name is always viewable alongside the headsign."},
	TripHeadsignShouldDescribeDestination:      {Low, "A trip headsign should describe the destination or waypoints of the trip."},
	TripNeverActive:                            {Medium, "A trip is defined, but its service is never running on any date."},
	TripOverlapInBlock:                         {Medium, "Two trips with the same block id overlap in time."},
	TripTooFewStopTimes:                        {Medium, "A trip must have at least two stop times to represent travel."},
	URLFormat:                                  {Medium, "URL format should be <scheme>://<authority><path>?<query>#<fragment>."},
	ValidatorFailed:                            {High, "The specified validation stage failed due to an unexpected error."},
	WrongNumberOfFields:                        {High, "A row did not have the same number of fields as there are headers in its table."},
}

// Info returns the catalog entry for a code. Unknown codes map to a HIGH
// severity placeholder so a stale persisted code still renders.
func (t ErrorType) Info() ErrorTypeInfo {
	if info, ok := errorCatalog[t]; ok {
		return info
	}
	return ErrorTypeInfo{High, "Unknown error type."}
}

// SeverityOf is shorthand for t.Info().Severity.
func (t ErrorType) SeverityOf() Severity { return t.Info().Severity }

// Catalog returns a copy of the full error catalog, for display layers.
func Catalog() map[ErrorType]ErrorTypeInfo {
	out := make(map[ErrorType]ErrorTypeInfo, len(errorCatalog))
	for k, v := range errorCatalog {
		out[k] = v
	}
	return out
}
