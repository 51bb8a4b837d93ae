package domain

import (
	"context"
	"fmt"
)

// VoteValue is the signed direction of a single ballot.
type VoteValue int64

const (
	VoteNone VoteValue = 0 // no ballot recorded
	VoteUp   VoteValue = 1
	VoteDown VoteValue = -1
)

func (v VoteValue) String() string {
	switch v {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	default:
		return "none"
	}
}

// VotePolicyName selects one of the vote policies. It is chosen once per process.
type VotePolicyName string

const (
	// VotePolicyMultiple lets a user vote any number of times; no ballot is kept.
	VotePolicyMultiple VotePolicyName = "multiple"
	// VotePolicySingle lets a user claim an item exactly once, with either direction.
	VotePolicySingle VotePolicyName = "single"
	// VotePolicyChangeable keeps the last direction per user and item and applies the difference.
	VotePolicyChangeable VotePolicyName = "changeable"
)

// ParseVotePolicy converts a configured name to a VotePolicyName.
func ParseVotePolicy(s string) (VotePolicyName, error) {
	switch name := VotePolicyName(s); name {
	case VotePolicyMultiple, VotePolicySingle, VotePolicyChangeable:
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVotePolicy, s)
	}
}

// VotePolicy records votes and maintains the per-item tally.
//
// Vote and Downvote return the delta that was applied to the tally; 0 means the
// call was a no-op under the active policy.
type VotePolicy interface {
	Name() VotePolicyName
	Vote(ctx context.Context, userID, itemID string) (int64, error)
	Downvote(ctx context.Context, userID, itemID string) (int64, error)
	// VotesByUser returns the recorded ballot per requested item. Policies that keep no
	// direction return an empty map; a missing entry reads as VoteNone.
	VotesByUser(ctx context.Context, userID string, itemIDs []string) (map[string]VoteValue, error)
}

// VoteResult describes what a vote call did to the tally.
type VoteResult int

const (
	VoteApplied VoteResult = iota // tally changed
	VoteIgnored                   // policy treated the call as a no-op
)

func (r VoteResult) String() string {
	switch r {
	case VoteApplied:
		return "applied"
	case VoteIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// VoteOutcome is returned to the caller after a vote was processed.
type VoteOutcome struct {
	PostID    string
	Direction VoteValue
	Delta     int64
	Result    VoteResult
	Score     float64 // leaderboard score after the vote; unchanged when ignored
}
