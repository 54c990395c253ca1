package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"myblog/internal/domain"
	"myblog/internal/repository"
)

type CommentRepository struct {
	store *Store
}

func NewCommentRepository(store *Store) repository.CommentRepository {
	return &CommentRepository{store: store}
}

func (r *CommentRepository) Init(ctx context.Context) error { return nil }

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[comment.EntryID]; !ok {
		return 0, fmt.Errorf("blog entry %d: %w", comment.EntryID, domain.ErrNotFound)
	}

	now := time.Now().UTC()
	s.nextCommentID++
	comment.ID = s.nextCommentID
	comment.CreatedAt = now
	comment.UpdatedAt = now
	comment.AuthorUsername = s.username(comment.AuthorID)
	s.comments[comment.ID] = *comment
	return comment.ID, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.comments[comment.ID]
	if !ok {
		return fmt.Errorf("comment %d: %w", comment.ID, domain.ErrNotFound)
	}
	current.Text = comment.Text
	current.UpdatedAt = time.Now().UTC()
	s.comments[comment.ID] = current
	comment.UpdatedAt = current.UpdatedAt
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return fmt.Errorf("comment %d: %w", id, domain.ErrNotFound)
	}
	delete(s.comments, id)
	return nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment: %w", domain.ErrNotFound)
	}
	return &comment, nil
}

func (r *CommentRepository) ListByEntry(ctx context.Context, entryID int64) ([]domain.Comment, error) {
	s := r.store
	s.mu.RLock()
	comments := []domain.Comment{}
	for _, c := range s.comments {
		if c.EntryID == entryID {
			comments = append(comments, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}
