// Package electionengine implements the election engine inside the governance
// context.
//
// The module owns the election stage machine (application, voting, closed),
// candidate application and registration, one-ballot-per-voter voting and the
// incrementally maintained top-N winner board. Every operation runs as one
// atomic unit of work against a RecordStore port and records its domain event
// in an outbox that workers relay to the event bus.
package electionengine
