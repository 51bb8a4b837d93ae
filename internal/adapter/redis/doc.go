// Package redis implements the Redis-backed stores.
//
// Provides the three vote policies (multiple, single, changeable), the ranking leaderboards,
// the fixed-window rate limiter, post and page storage and the activity stream.
// Every operation is a single atomic command or one MULTI/EXEC round trip; there is no
// in-process locking. Failures are returned as structured, classified errors.
package redis
