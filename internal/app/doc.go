// Package app provides the application service layer.
//
// Orchestrates use cases: casting votes, the home listing, post creation, reset and the
// leaderboard. Consults the rate limiter before quota-gated operations and keeps the ranking in
// step with the tally. Depends on domain interfaces, not concrete implementations.
package app
