package repository

import (
	"context"

	"myblog/internal/domain"
)

// BlogRepository persists blog entries. Create and Update enforce title uniqueness atomically
// and report collisions as domain.ErrDuplicateTitle.
type BlogRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, entry *domain.BlogEntry) (int64, error)
	Update(ctx context.Context, entry *domain.BlogEntry) error
	// Delete removes the entry together with its comments and votes.
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.BlogEntry, error)
	Count(ctx context.Context) (int, error)
	// List returns entries newest first.
	List(ctx context.Context, limit, offset int) ([]domain.BlogEntry, error)
}

// CommentRepository persists comments on blog entries.
type CommentRepository interface {
	Init(ctx context.Context) error
	// Create fails with domain.ErrNotFound when the parent entry does not exist.
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Comment, error)
	ListByEntry(ctx context.Context, entryID int64) ([]domain.Comment, error)
}

// VoteRepository keeps vote rows and the entry tally consistent.
type VoteRepository interface {
	Init(ctx context.Context) error
	// Cast upserts the (entry, user) vote and adjusts the tally as one atomic unit.
	Cast(ctx context.Context, entryID, userID int64, direction domain.VoteDirection) (domain.Tally, error)
	// Get returns domain.VoteNone when the user has not voted.
	Get(ctx context.Context, entryID, userID int64) (domain.VoteDirection, error)
	Tally(ctx context.Context, entryID int64) (domain.Tally, error)
	// ListByEntry returns the entry's votes with voter usernames, ordered by user id.
	ListByEntry(ctx context.Context, entryID int64) ([]domain.Vote, error)
}
