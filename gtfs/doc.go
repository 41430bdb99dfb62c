/*
Package gtfs defines the feed record types and the in-memory Feed that
validation runs against.

This package is data-source agnostic - it holds already-parsed records and
builds lookup indexes over them. It does NOT parse feed archives; load
records from SQL tables (see the db package) or construct them directly in
tests, then call Feed.Index once before validating.

# Missing values

GTFS makes heavy use of conditionally required numeric fields where zero is
meaningful (pickup_type 0 is "regularly scheduled", times can be midnight).
Optional numerics therefore use the MissingInt sentinel, and optional
strings use "". Check presence with `field != gtfs.MissingInt`, never with
`field != 0`.

# Flex records

Locations, location groups, location-group stops and booking rules carry
the GTFS-Flex extension for on-demand service. Their presence is what
activates the flex rule engine in the validation package.
*/
package gtfs
