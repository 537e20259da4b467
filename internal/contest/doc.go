// Package contest defines the data model of the contest validation and
// leaderboard engine.
//
// Events, contests, participants and catches are read-only facts owned by
// other parts of the fishing-log application. The only entity the engine
// creates is the ValidationRecord, which is append-only: a catch's current
// status is the record with the greatest (ValidatedAt, Seq) pair, and
// corrections happen by appending a later record.
//
// # Eligibility
//
// Scope captures the population and window of a single contest. Every
// component (candidate listing, scoring, live feed) admits catches through
// Scope.Admits so they agree on exactly which catches belong to a contest:
//
//   - the catch is not a draft
//   - its owner participates in the contest's event
//   - createdAt lies within [event.StartAt, event.EndAt], both ends inclusive
//   - species equals the contest's species filter, when one is set
//     (case-sensitive, no trimming)
package contest
