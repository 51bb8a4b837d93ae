package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/pscheid92/bookvote/internal/domain"
)

// --- Mock implementations ---

type mockVotePolicy struct {
	name          domain.VotePolicyName
	voteFn        func(ctx context.Context, userID, itemID string) (int64, error)
	downvoteFn    func(ctx context.Context, userID, itemID string) (int64, error)
	votesByUserFn func(ctx context.Context, userID string, itemIDs []string) (map[string]domain.VoteValue, error)
}

func (m *mockVotePolicy) Name() domain.VotePolicyName {
	if m.name == "" {
		return domain.VotePolicyMultiple
	}
	return m.name
}

func (m *mockVotePolicy) Vote(ctx context.Context, userID, itemID string) (int64, error) {
	if m.voteFn != nil {
		return m.voteFn(ctx, userID, itemID)
	}
	return 1, nil
}

func (m *mockVotePolicy) Downvote(ctx context.Context, userID, itemID string) (int64, error) {
	if m.downvoteFn != nil {
		return m.downvoteFn(ctx, userID, itemID)
	}
	return -1, nil
}

func (m *mockVotePolicy) VotesByUser(ctx context.Context, userID string, itemIDs []string) (map[string]domain.VoteValue, error) {
	if m.votesByUserFn != nil {
		return m.votesByUserFn(ctx, userID, itemIDs)
	}
	return map[string]domain.VoteValue{}, nil
}

type mockRanking struct {
	increaseFn   func(ctx context.Context, scope string, amount float64, member string) (float64, error)
	getRatingsFn func(ctx context.Context, scope string, count int) ([]string, error)
	scoreFn      func(ctx context.Context, scope, member string) (float64, bool, error)
}

func (m *mockRanking) Increase(ctx context.Context, scope string, amount float64, member string) (float64, error) {
	if m.increaseFn != nil {
		return m.increaseFn(ctx, scope, amount, member)
	}
	return amount, nil
}

func (m *mockRanking) GetRatings(ctx context.Context, scope string, count int) ([]string, error) {
	if m.getRatingsFn != nil {
		return m.getRatingsFn(ctx, scope, count)
	}
	return []string{}, nil
}

func (m *mockRanking) Score(ctx context.Context, scope, member string) (float64, bool, error) {
	if m.scoreFn != nil {
		return m.scoreFn(ctx, scope, member)
	}
	return 0, false, nil
}

type mockLimiter struct {
	updateFn func(ctx context.Context, userID string) (bool, error)
	getFn    func(ctx context.Context, userID string) (int64, error)
	max      int
}

func (m *mockLimiter) Update(ctx context.Context, userID string) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID)
	}
	return true, nil
}

func (m *mockLimiter) Get(ctx context.Context, userID string) (int64, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockLimiter) MaxRequests() int {
	if m.max == 0 {
		return 15
	}
	return m.max
}

type mockPosts struct {
	createFn func(ctx context.Context, title string) (*domain.Post, error)
	getFn    func(ctx context.Context, postID string) (*domain.Post, error)
	getAllFn func(ctx context.Context, postIDs []string) ([]domain.Post, error)
}

func (m *mockPosts) Create(ctx context.Context, title string) (*domain.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, title)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockPosts) Get(ctx context.Context, postID string) (*domain.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, postID)
	}
	return &domain.Post{ID: postID, Title: "Post " + postID}, nil
}

func (m *mockPosts) GetAll(ctx context.Context, postIDs []string) ([]domain.Post, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx, postIDs)
	}
	posts := make([]domain.Post, 0, len(postIDs))
	for _, id := range postIDs {
		posts = append(posts, domain.Post{ID: id, Title: "Post " + id})
	}
	return posts, nil
}

type mockPages struct {
	saveFn       func(ctx context.Context, page string, postIDs []string) error
	getFn        func(ctx context.Context, page string) ([]string, error)
	addFn        func(ctx context.Context, page, postID string, limit int) error
	countVisitFn func(ctx context.Context, page string) (int64, error)
}

func (m *mockPages) Save(ctx context.Context, page string, postIDs []string) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, page, postIDs)
	}
	return nil
}

func (m *mockPages) Get(ctx context.Context, page string) ([]string, error) {
	if m.getFn != nil {
		return m.getFn(ctx, page)
	}
	return []string{}, nil
}

func (m *mockPages) Add(ctx context.Context, page, postID string, limit int) error {
	if m.addFn != nil {
		return m.addFn(ctx, page, postID, limit)
	}
	return nil
}

func (m *mockPages) CountVisit(ctx context.Context, page string) (int64, error) {
	if m.countVisitFn != nil {
		return m.countVisitFn(ctx, page)
	}
	return 1, nil
}

type mockActivity struct {
	mu       sync.Mutex
	recorded []domain.ActivityEvent
	recordFn func(ctx context.Context, event domain.ActivityEvent) error
	recentFn func(ctx context.Context, count int) ([]domain.ActivityEvent, error)
}

func (m *mockActivity) Record(ctx context.Context, event domain.ActivityEvent) error {
	if m.recordFn != nil {
		return m.recordFn(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, event)
	return nil
}

func (m *mockActivity) Recent(ctx context.Context, count int) ([]domain.ActivityEvent, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, count)
	}
	return []domain.ActivityEvent{}, nil
}

func (m *mockActivity) events() []domain.ActivityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ActivityEvent(nil), m.recorded...)
}

type mockWiper struct {
	wipeFn func(ctx context.Context) error
}

func (m *mockWiper) Wipe(ctx context.Context) error {
	if m.wipeFn != nil {
		return m.wipeFn(ctx)
	}
	return nil
}
