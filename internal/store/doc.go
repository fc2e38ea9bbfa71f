// Package store provides SQLite-backed storage for player stats.
//
// The store holds one row per player with the pvp counters that back the
// kills/deaths/kdr/killstreak/mob variables, and answers the ranked top list
// shown in the temporary overlay board.
//
// Reads on the refresh path never hit the database: PlayerCache holds the
// stats of connected players and TopCache holds the last ranked list. Both
// are filled from the database by callers that own a context.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Ranked queries are ordered by kills DESC, name ASC COLLATE BINARY so ties
// resolve the same way on every call.
package store
