package app

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pscheid92/bookvote/internal/adapter/metrics"
	"github.com/pscheid92/bookvote/internal/domain"
	"github.com/pscheid92/bookvote/internal/platform/correlation"
	apperrors "github.com/pscheid92/bookvote/internal/platform/errors"
)

const maxTitleLength = 200

// DefaultTitles seeds the store on reset when no titles are given.
var DefaultTitles = []string{
	"Hyperion",
	"Start with Why",
	"Why we sleep",
	"The subtle art of not giving a F*ck",
	"Do more",
	"The war of art",
}

// Stores groups the domain components the service orchestrates.
type Stores struct {
	Votes    domain.VotePolicy
	Ranking  domain.Ranking
	Limiter  domain.RateLimiter
	Posts    domain.PostRepository
	Pages    domain.PageRepository
	Activity domain.ActivityLog
	Wiper    domain.StoreWiper
}

// Settings holds the names and sizes the use cases work with.
type Settings struct {
	RankingScope  string
	TopCount      int
	HomePage      string
	HomePageLimit int
	// OpTimeout bounds every use case; zero means no deadline.
	OpTimeout time.Duration
}

// Service is the application layer: the only component that references multiple
// domain components.
type Service struct {
	stores      Stores
	settings    Settings
	clock       clockwork.Clock
	voteMetrics *metrics.VoteMetrics
	rateMetrics *metrics.RateLimitMetrics
	topGroup    singleflight.Group
}

var _ domain.AppService = (*Service)(nil)

func NewService(stores Stores, settings Settings, clock clockwork.Clock, voteMetrics *metrics.VoteMetrics, rateMetrics *metrics.RateLimitMetrics) *Service {
	return &Service{
		stores:      stores,
		settings:    settings,
		clock:       clock,
		voteMetrics: voteMetrics,
		rateMetrics: rateMetrics,
	}
}

// begin stamps the use case with a correlation id and applies the operation deadline.
func (s *Service) begin(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, _ = correlation.Ensure(ctx)
	if s.settings.OpTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.settings.OpTimeout)
}

// CheckQuota counts one request for userID and returns a quota error once the window is exhausted.
func (s *Service) CheckQuota(ctx context.Context, userID string) error {
	ctx, cancel := s.begin(ctx)
	defer cancel()
	return s.checkQuota(ctx, userID)
}

func (s *Service) checkQuota(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.ValidationError("user id must not be empty")
	}

	allowed, err := s.stores.Limiter.Update(ctx, userID)
	if err != nil {
		s.rateMetrics.Checks.WithLabelValues("error").Inc()
		return err
	}
	if allowed {
		s.rateMetrics.Checks.WithLabelValues("allowed").Inc()
		return nil
	}

	s.rateMetrics.Checks.WithLabelValues("exceeded").Inc()
	current, err := s.stores.Limiter.Get(ctx, userID)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Quota exceeded", "user_id", userID, "current", current, "max", s.stores.Limiter.MaxRequests())
	return apperrors.QuotaError(current, s.stores.Limiter.MaxRequests())
}

// CastVote applies an up or down vote under the active policy and moves the post's
// leaderboard score by the delta the policy actually applied.
func (s *Service) CastVote(ctx context.Context, userID, postID string, direction domain.VoteValue) (*domain.VoteOutcome, error) {
	ctx, cancel := s.begin(ctx)
	defer cancel()

	start := s.clock.Now()
	policy := string(s.stores.Votes.Name())
	defer func() {
		s.voteMetrics.ProcessingDuration.Observe(s.clock.Since(start).Seconds())
	}()

	if direction != domain.VoteUp && direction != domain.VoteDown {
		return nil, apperrors.ValidationError("vote direction must be up or down")
	}
	if postID == "" {
		return nil, apperrors.ValidationError("post id must not be empty")
	}
	if err := s.checkQuota(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.stores.Posts.Get(ctx, postID); err != nil {
		return nil, err
	}

	var delta int64
	var err error
	if direction == domain.VoteUp {
		delta, err = s.stores.Votes.Vote(ctx, userID, postID)
	} else {
		delta, err = s.stores.Votes.Downvote(ctx, userID, postID)
	}
	if err != nil {
		s.voteMetrics.VotesProcessed.WithLabelValues(policy, direction.String(), "error").Inc()
		slog.ErrorContext(ctx, "Vote failed", "user_id", userID, "post_id", postID, "direction", direction.String(), "error", err)
		return nil, err
	}

	outcome := &domain.VoteOutcome{
		PostID:    postID,
		Direction: direction,
		Delta:     delta,
		Result:    domain.VoteIgnored,
	}

	if delta != 0 {
		outcome.Result = domain.VoteApplied
		score, err := s.stores.Ranking.Increase(ctx, s.settings.RankingScope, float64(delta), postID)
		if err != nil {
			slog.ErrorContext(ctx, "Tally changed but ranking update failed",
				"user_id", userID, "post_id", postID, "delta", delta, "error", err)
			return nil, err
		}
		outcome.Score = score
		s.voteMetrics.ObserveDelta(delta)
	} else if score, _, err := s.stores.Ranking.Score(ctx, s.settings.RankingScope, postID); err != nil {
		slog.WarnContext(ctx, "Failed to read ranking score", "post_id", postID, "error", err)
	} else {
		outcome.Score = score
	}

	s.voteMetrics.VotesProcessed.WithLabelValues(policy, direction.String(), outcome.Result.String()).Inc()

	action := domain.ActivityUpvote
	if direction == domain.VoteDown {
		action = domain.ActivityDownvote
	}
	s.record(ctx, domain.ActivityEvent{UserID: userID, Action: action, PostID: postID, Result: outcome.Result.String()})

	slog.DebugContext(ctx, "Vote processed",
		"user_id", userID, "post_id", postID, "direction", direction.String(),
		"delta", delta, "result", outcome.Result.String())
	return outcome, nil
}

// Home loads the home listing for userID. The request counts against the user's quota.
func (s *Service) Home(ctx context.Context, userID string) (*domain.HomeView, error) {
	ctx, cancel := s.begin(ctx)
	defer cancel()

	if err := s.checkQuota(ctx, userID); err != nil {
		return nil, err
	}

	ids, err := s.stores.Pages.Get(ctx, s.settings.HomePage)
	if err != nil {
		return nil, err
	}

	view := &domain.HomeView{UserID: userID, Policy: s.stores.Votes.Name()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		posts, err := s.stores.Posts.GetAll(gctx, ids)
		view.Posts = posts
		return err
	})
	g.Go(func() error {
		votes, err := s.stores.Votes.VotesByUser(gctx, userID, ids)
		view.Votes = votes
		return err
	})
	g.Go(func() error {
		visits, err := s.stores.Pages.CountVisit(gctx, s.settings.HomePage)
		view.Visits = visits
		return err
	})
	g.Go(func() error {
		usage, err := s.usage(gctx, userID)
		view.RateLimits = usage
		return err
	})
	g.Go(func() error {
		top, err := s.top(gctx, s.settings.TopCount)
		view.TopPosts = top
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// CreatePost stores a new post and puts it at the top of the home page.
func (s *Service) CreatePost(ctx context.Context, title string) (*domain.Post, error) {
	ctx, cancel := s.begin(ctx)
	defer cancel()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ValidationError("title must not be empty")
	}
	if len(title) > maxTitleLength {
		return nil, apperrors.ValidationError("title must be at most " + strconv.Itoa(maxTitleLength) + " bytes")
	}

	post, err := s.stores.Posts.Create(ctx, title)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Pages.Add(ctx, s.settings.HomePage, post.ID, s.settings.HomePageLimit); err != nil {
		return nil, err
	}

	s.record(ctx, domain.ActivityEvent{Action: domain.ActivityPost, PostID: post.ID, Result: domain.VoteApplied.String()})
	slog.InfoContext(ctx, "Post created", "post_id", post.ID, "title", post.Title)
	return post, nil
}

// Reset wipes the database, seeds the given titles (DefaultTitles when empty) and
// builds the home page from them.
func (s *Service) Reset(ctx context.Context, titles []string) ([]domain.Post, error) {
	ctx, cancel := s.begin(ctx)
	defer cancel()

	if len(titles) == 0 {
		titles = DefaultTitles
	}

	if err := s.stores.Wiper.Wipe(ctx); err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(titles))
	ids := make([]string, 0, len(titles))
	for _, title := range titles {
		post, err := s.stores.Posts.Create(ctx, title)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
		ids = append(ids, post.ID)
	}

	if err := s.stores.Pages.Save(ctx, s.settings.HomePage, ids); err != nil {
		return nil, err
	}

	s.record(ctx, domain.ActivityEvent{Action: domain.ActivityReset, Result: strconv.Itoa(len(posts))})
	slog.InfoContext(ctx, "Store reset", "posts", len(posts))
	return posts, nil
}

// Top returns the count highest ranked posts. Ranked ids without a stored post are skipped.
func (s *Service) Top(ctx context.Context, count int) ([]domain.Post, error) {
	ctx, cancel := s.begin(ctx)
	defer cancel()
	return s.top(ctx, count)
}

// top collapses concurrent leaderboard reads of the same size into one. The shared
// read runs detached from any single caller with its own deadline; each caller
// stops waiting when its own context ends.
func (s *Service) top(ctx context.Context, count int) ([]domain.Post, error) {
	ch := s.topGroup.DoChan(strconv.Itoa(count), func() (any, error) {
		ctx, cancel := s.begin(context.WithoutCancel(ctx))
		defer cancel()

		ids, err := s.stores.Ranking.GetRatings(ctx, s.settings.RankingScope, count)
		if err != nil {
			return nil, err
		}
		return s.stores.Posts.GetAll(ctx, ids)
	})

	select {
	case <-ctx.Done():
		return nil, apperrors.TimeoutError("top posts did not complete", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]domain.Post)), nil
	}
}

// Quota reports the user's current request count without counting a request.
func (s *Service) Quota(ctx context.Context, userID string) (domain.RateLimitUsage, error) {
	ctx, cancel := s.begin(ctx)
	defer cancel()
	return s.usage(ctx, userID)
}

func (s *Service) usage(ctx context.Context, userID string) (domain.RateLimitUsage, error) {
	current, err := s.stores.Limiter.Get(ctx, userID)
	if err != nil {
		return domain.RateLimitUsage{}, err
	}
	return domain.RateLimitUsage{Current: current, Max: s.stores.Limiter.MaxRequests()}, nil
}

// Activity returns the most recent actions, newest first.
func (s *Service) Activity(ctx context.Context, count int) ([]domain.ActivityEvent, error) {
	ctx, cancel := s.begin(ctx)
	defer cancel()
	return s.stores.Activity.Recent(ctx, count)
}

// record appends to the activity log. A failure is logged, never returned: the
// action it describes has already happened.
func (s *Service) record(ctx context.Context, event domain.ActivityEvent) {
	event.At = s.clock.Now()
	if err := s.stores.Activity.Record(ctx, event); err != nil {
		slog.WarnContext(ctx, "Failed to record activity", "action", string(event.Action), "post_id", event.PostID, "error", err)
	}
}
