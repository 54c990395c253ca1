package memory

import (
	"context"
	"fmt"
	"time"

	"myblog/internal/domain"
	"myblog/internal/repository"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) repository.UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Init(ctx context.Context) error { return nil }

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByName[user.Username]; exists {
		return 0, fmt.Errorf("insert user %q: %w", user.Username, domain.ErrDuplicateUser)
	}

	now := time.Now().UTC()
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	s.usersByName[user.Username] = user.ID
	return user.ID, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[username]
	if !ok {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	user := s.users[id]
	return &user, nil
}
