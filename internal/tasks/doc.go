// Package tasks orchestrates schedule mirroring runs across all tracked streamers.
//
// # Core Operations
//
// The [SyncEngine] interface defines two operations:
//
//  1. [SyncEngine.RunAll] : Mirror every enabled streamer
//     - Loads enabled streamers from the database
//     - Reconciles each streamer's Twitch schedule against their guild's scheduled events
//     - Skips streamers whose previous run is still in flight
//     - Returns per-streamer results including collected apply errors
//
//  2. [SyncEngine.RunOne] : Mirror a single streamer by Twitch broadcaster ID
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, and messages for display.
// Updates use select with default to prevent blocking.
//
// # Scheduling
//
// [Scheduler] wraps robfig/cron to run [SyncEngine.RunAll] on a configured cron
// expression, skipping a tick entirely when the previous run has not finished.
package tasks
