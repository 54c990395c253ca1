package service

import (
	"context"
	"strings"

	"myblog/internal/domain"
	"myblog/internal/repository"
)

// CommentService describes comment operations.
type CommentService interface {
	Add(ctx context.Context, entryID int64, actor *domain.User, text string) (*domain.Comment, error)
	Edit(ctx context.Context, commentID int64, actor *domain.User, text string) (*domain.Comment, error)
	Delete(ctx context.Context, commentID int64, actor *domain.User) error
	ListForEntry(ctx context.Context, entryID int64) ([]domain.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	guard    *Guard
	retry    RetryPolicy
}

func NewCommentService(comments repository.CommentRepository, guard *Guard, retry RetryPolicy) CommentService {
	return &commentService{
		comments: comments,
		guard:    guard,
		retry:    retry.normalize(),
	}
}

func (s *commentService) Add(ctx context.Context, entryID int64, actor *domain.User, text string) (*domain.Comment, error) {
	if err := s.guard.RequireUser(actor); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrTooShort
	}

	comment := &domain.Comment{
		EntryID:        entryID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Text:           text,
	}
	if _, err := withRetry(ctx, s.retry, func() (int64, error) {
		return s.comments.Create(ctx, comment)
	}); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Edit(ctx context.Context, commentID int64, actor *domain.User, text string) (*domain.Comment, error) {
	comment, err := s.get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireOwner(comment.AuthorID, actor); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrTooShort
	}

	comment.Text = text
	if err := doWithRetry(ctx, s.retry, func() error {
		return s.comments.Update(ctx, comment)
	}); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, commentID int64, actor *domain.User) error {
	comment, err := s.get(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.guard.RequireOwner(comment.AuthorID, actor); err != nil {
		return err
	}
	return doWithRetry(ctx, s.retry, func() error {
		return s.comments.Delete(ctx, commentID)
	})
}

func (s *commentService) ListForEntry(ctx context.Context, entryID int64) ([]domain.Comment, error) {
	return withRetry(ctx, s.retry, func() ([]domain.Comment, error) {
		return s.comments.ListByEntry(ctx, entryID)
	})
}

func (s *commentService) get(ctx context.Context, id int64) (*domain.Comment, error) {
	return withRetry(ctx, s.retry, func() (*domain.Comment, error) {
		return s.comments.Get(ctx, id)
	})
}
