package service

import (
	"context"

	"myblog/internal/domain"
	"myblog/internal/repository"
)

// VoteService records up/down votes and reports tallies.
type VoteService interface {
	CastVote(ctx context.Context, entryID int64, actor *domain.User, direction string) (domain.Tally, error)
	UserVote(ctx context.Context, entryID int64, actor *domain.User) (domain.VoteDirection, error)
	Tally(ctx context.Context, entryID int64) (domain.Tally, error)
	Voters(ctx context.Context, entryID int64) ([]domain.Vote, error)
}

type voteService struct {
	votes repository.VoteRepository
	blogs repository.BlogRepository
	guard *Guard
	retry RetryPolicy
}

func NewVoteService(votes repository.VoteRepository, blogs repository.BlogRepository, guard *Guard, retry RetryPolicy) VoteService {
	return &voteService{
		votes: votes,
		blogs: blogs,
		guard: guard,
		retry: retry.normalize(),
	}
}

func (s *voteService) CastVote(ctx context.Context, entryID int64, actor *domain.User, direction string) (domain.Tally, error) {
	dir, err := domain.ParseVoteDirection(direction)
	if err != nil {
		return domain.Tally{}, err
	}
	entry, err := withRetry(ctx, s.retry, func() (*domain.BlogEntry, error) {
		return s.blogs.Get(ctx, entryID)
	})
	if err != nil {
		return domain.Tally{}, err
	}
	if err := s.guard.RequireNotOwner(entry.OwnerID, actor); err != nil {
		return domain.Tally{}, err
	}
	return withRetry(ctx, s.retry, func() (domain.Tally, error) {
		return s.votes.Cast(ctx, entryID, actor.ID, dir)
	})
}

func (s *voteService) UserVote(ctx context.Context, entryID int64, actor *domain.User) (domain.VoteDirection, error) {
	if actor == nil {
		return domain.VoteNone, nil
	}
	return withRetry(ctx, s.retry, func() (domain.VoteDirection, error) {
		return s.votes.Get(ctx, entryID, actor.ID)
	})
}

func (s *voteService) Tally(ctx context.Context, entryID int64) (domain.Tally, error) {
	return withRetry(ctx, s.retry, func() (domain.Tally, error) {
		return s.votes.Tally(ctx, entryID)
	})
}

func (s *voteService) Voters(ctx context.Context, entryID int64) ([]domain.Vote, error) {
	return withRetry(ctx, s.retry, func() ([]domain.Vote, error) {
		return s.votes.ListByEntry(ctx, entryID)
	})
}
