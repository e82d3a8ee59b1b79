// Package models defines domain entities and persistence interfaces for the schedule mirroring service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [ScheduleEntry] : A single rendered row of a streamer's upcoming schedule
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Streamer] : A tracked Twitch broadcaster paired with the Discord guild that mirrors their schedule
//
// All persistent entities implement the Model interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
