package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pscheid92/bookvote/internal/domain"
	apperrors "github.com/pscheid92/bookvote/internal/platform/errors"
	"github.com/pscheid92/bookvote/internal/platform/version"
)

const usage = `usage: votectl <command> [flags]

commands:
  reset [title ...]                    wipe the database and seed the home page
  home -user ID                        show the home listing for a user
  vote -user ID -post ID [-down]       vote on a post
  post -title TITLE                    create a post on the home page
  top [-n N]                           show the highest ranked posts
  quota -user ID                       show a user's request count
  activity [-n N]                      show recent actions
  flood -user ID -post ID [-n N] [-rps R]
                                       cast votes at a fixed pace to exercise the quota
  version                              print build information
`

var errUsage = errors.New("invalid usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func run(ctx context.Context, svc domain.AppService, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "reset":
		return runReset(ctx, svc, args, out)
	case "home":
		return runHome(ctx, svc, args, out)
	case "vote":
		return runVote(ctx, svc, args, out)
	case "post":
		return runPost(ctx, svc, args, out)
	case "top":
		return runTop(ctx, svc, args, out)
	case "quota":
		return runQuota(ctx, svc, args, out)
	case "activity":
		return runActivity(ctx, svc, args, out)
	case "flood":
		return runFlood(ctx, svc, args, out)
	default:
		return usageError("unknown command %q", cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError("%s: %v", fs.Name(), err)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type postView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Likes int64  `json:"likes"`
	Vote  string `json:"vote,omitempty"`
}

func toPostViews(posts []domain.Post, votes map[string]domain.VoteValue) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		v := postView{ID: p.ID, Title: p.Title, Likes: p.Likes}
		if vote := votes[p.ID]; vote != domain.VoteNone {
			v.Vote = vote.String()
		}
		views = append(views, v)
	}
	return views
}

func runReset(ctx context.Context, svc domain.AppService, args []string, out io.Writer) error {
	fs := newFlagSet("reset")
	if err := parse(fs, args); err != nil {
		return err
	}

	posts, err := svc.Reset(ctx, fs.Args())
	if err != nil {
		return err
	}
	return writeJSON(out, toPostViews(posts, nil))
}

func runHome(ctx context.Context, svc domain.AppService, args []string, out io.Writer) error {
	fs := newFlagSet("home")
	user := fs.String("user", "1", "user id")
	if err := parse(fs, args); err != nil {
		return err
	}

	view, err := svc.Home(ctx, *user)
	if err != nil {
		return err
	}
	return writeJSON(out, map[string]any{
		"user_id":     view.UserID,
		"policy":      view.Policy,
		"visits":      view.Visits,
		"rate_limits": view.RateLimits,
		"posts":       toPostViews(view.Posts, view.Votes),
		"top_books":   toPostViews(view.TopPosts, nil),
	})
}

func runVote(ctx context.Context, svc domain.AppService, args []string, out io.Writer) error {
	fs := newFlagSet("vote")
	user := fs.String("user", "1", "user id")
	post := fs.String("post", "", "post id")
	down := fs.Bool("down", false, "downvote instead of upvote")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *post == "" {
		return usageError("vote: -post is required")
	}

	direction := domain.VoteUp
	if *down {
		direction = domain.VoteDown
	}

	outcome, err := svc.CastVote(ctx, *user, *post, direction)
	if err != nil {
		return err
	}
	return writeJSON(out, map[string]any{
		"post_id":   outcome.PostID,
		"direction": outcome.Direction.String(),
		"delta":     outcome.Delta,
		"result":    outcome.Result.String(),
		"score":     outcome.Score,
	})
}

func runPost(ctx context.Context, svc domain.AppService, args []string, out io.Writer) error {
	fs := newFlagSet("post")
	title := fs.String("title", "", "post title")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *title == "" && fs.NArg() > 0 {
		*title = strings.Join(fs.Args(), " ")
	}

	post, err := svc.CreatePost(ctx, *title)
	if err != nil {
		return err
	}
	return writeJSON(out, post)
}

func runTop(ctx context.Context, svc domain.AppService, args []string, out io.Writer) error {
	fs := newFlagSet("top")
	n := fs.Int("n", 3, "number of posts")
	if err := parse(fs, args); err != nil {
		return err
	}

	posts, err := svc.Top(ctx, *n)
	if err != nil {
		return err
	}
	return writeJSON(out, toPostViews(posts, nil))
}

func runQuota(ctx context.Context, svc domain.AppService, args []string, out io.Writer) error {
	fs := newFlagSet("quota")
	user := fs.String("user", "1", "user id")
	if err := parse(fs, args); err != nil {
		return err
	}

	quota, err := svc.Quota(ctx, *user)
	if err != nil {
		return err
	}
	return writeJSON(out, quota)
}

func runActivity(ctx context.Context, svc domain.AppService, args []string, out io.Writer) error {
	fs := newFlagSet("activity")
	n := fs.Int("n", 20, "number of events")
	if err := parse(fs, args); err != nil {
		return err
	}

	events, err := svc.Activity(ctx, *n)
	if err != nil {
		return err
	}
	for _, e := range events {
		fmt.Fprintf(out, "%s\t%s\t%-8s\tuser=%s\tpost=%s\t%s\n",
			e.ID, e.At.Format("15:04:05"), e.Action, e.UserID, e.PostID, e.Result)
	}
	return nil
}

type floodReport struct {
	Sent     int `json:"sent"`
	Applied  int `json:"applied"`
	Ignored  int `json:"ignored"`
	Rejected int `json:"rejected"`
	Failed   int `json:"failed"`
}

// runFlood votes n times at rps per second. Quota rejections are counted, not fatal.
func runFlood(ctx context.Context, svc domain.AppService, args []string, out io.Writer) error {
	fs := newFlagSet("flood")
	user := fs.String("user", "1", "user id")
	post := fs.String("post", "", "post id")
	n := fs.Int("n", 20, "number of votes")
	rps := fs.Float64("rps", 10, "votes per second")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *post == "" {
		return usageError("flood: -post is required")
	}
	if *n < 1 || *rps <= 0 {
		return usageError("flood: -n and -rps must be positive")
	}

	limiter := rate.NewLimiter(rate.Limit(*rps), 1)
	var r floodReport
	for i := 0; i < *n; i++ {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		r.Sent++

		outcome, err := svc.CastVote(ctx, *user, *post, domain.VoteUp)
		switch {
		case apperrors.IsType(err, apperrors.TypeQuota):
			r.Rejected++
		case err != nil:
			r.Failed++
		case outcome.Result == domain.VoteApplied:
			r.Applied++
		default:
			r.Ignored++
		}
	}
	return writeJSON(out, r)
}

func printVersion(out io.Writer) error {
	_, err := fmt.Fprintln(out, version.Get())
	return err
}
