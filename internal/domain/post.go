package domain

import (
	"context"
	"time"
)

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int64     `json:"-"`
}

// PostRepository stores posts and their like tally.
type PostRepository interface {
	Create(ctx context.Context, title string) (*Post, error)
	Get(ctx context.Context, postID string) (*Post, error)
	// GetAll returns the posts in the given order, skipping unknown ids.
	GetAll(ctx context.Context, postIDs []string) ([]Post, error)
}

// PageRepository stores named listings of post ids, newest first.
type PageRepository interface {
	Save(ctx context.Context, page string, postIDs []string) error
	Get(ctx context.Context, page string) ([]string, error)
	Add(ctx context.Context, page, postID string, limit int) error
	CountVisit(ctx context.Context, page string) (int64, error)
}

// StoreWiper removes all keys of the configured database.
type StoreWiper interface {
	Wipe(ctx context.Context) error
}
