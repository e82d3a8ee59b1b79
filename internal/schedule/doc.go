// Package schedule implements the event reconciliation engine that keeps a
// streamer's published Twitch schedule mirrored onto a Discord guild's
// scheduled events.
//
// The package is organized around four pieces:
//
//   - [RecurrenceRule] : weekly recurrence arithmetic (slot equivalence and
//     next-occurrence advancement)
//   - [ToCreateRequest] : translation of a [SourceEvent] into the payload the
//     mirror side expects, including the correlation marker embedded in the
//     event description
//   - [BuildPlan] : a pure diff of the two event collections into create,
//     delete and update operations
//   - [Syncer] : one fetch-diff-apply pass over the [Source] and [Mirror]
//     collaborator interfaces
//
// The engine holds no state between passes. Matching relies entirely on the
// source event uid embedded in each mirrored event's description, so every
// pass is an independent full re-diff and a converged pair produces zero
// writes. Callers must guarantee at most one in-flight pass per
// (source, target) pair; see the tasks package.
package schedule
