/*
Package validation is the core of the feed validator: the error catalog and
model, the durable error store, the orchestration framework, and the
validators themselves (flex rule engine, reference counting, pattern
inference).

# Lifecycle

A Runner owns one run over one feed:

	store, err := validation.NewErrorStore(ctx, database, ns, validation.Create, 0)
	...
	runner := validation.NewRunner(feed, store)
	runner.AddFeedValidator(validation.NewFlexValidator(feed))
	runner.AddTripValidator(validation.NewReferenceValidator(feed))
	runner.AddTripValidator(validation.NewPatternFinder(feed, sink))
	result, err := runner.Run(ctx)

Whole-feed validators run first, then every trip is offered once to each
trip validator in one shared pass, then completions run in registration
order. Findings never abort anything; a panicking or erroring validator is
converted into a single VALIDATOR_FAILED finding and the run continues.
Only storage failures propagate as errors and abort the run.

# Error identities

The store assigns each finding a monotonically increasing error_id, unique
for the lifetime of a feed namespace: reconnect mode resumes numbering from
max(error_id) so repeated runs against the same loaded feed never reuse an
identity.
*/
package validation
