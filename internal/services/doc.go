// Package services implements the collaborator adapters the reconciliation
// engine runs against.
//
//   - [TwitchService] : the source side. Fetches a broadcaster's published
//     schedule as an iCalendar feed from the Helix API and normalizes it
//     into [schedule.SourceEvent] values, plus a Users lookup for resolving
//     broadcaster logins when registering streamers.
//   - [DiscordService] : the mirror side. Wraps the guild scheduled-events
//     REST resource (list/create/modify/delete) and filters the listing to
//     events created by the bot itself, satisfying the engine's ownership
//     invariant.
//
// Both adapters own their HTTP concerns (auth, timeouts, rate limiting) and
// surface failures as wrapped sentinel errors from the shared package; the
// engine records them per operation and never retries within a pass.
package services
