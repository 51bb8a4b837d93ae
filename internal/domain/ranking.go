package domain

import "context"

// Ranking maintains ordered leaderboards grouped by scope.
type Ranking interface {
	// Increase adds amount (may be negative) to member's score and returns the new score.
	Increase(ctx context.Context, scope string, amount float64, member string) (float64, error)
	// GetRatings returns at most count members ordered by descending score.
	GetRatings(ctx context.Context, scope string, count int) ([]string, error)
	// Score returns the member's current score and whether it is ranked at all.
	Score(ctx context.Context, scope, member string) (float64, bool, error)
}
