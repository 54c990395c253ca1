package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"myblog/internal/domain"
	"myblog/internal/repository"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	passwordPattern = regexp.MustCompile(`^.{3,20}$`)
	emailPattern    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// bcrypt rejects longer inputs.
const maxPasswordBytes = 72

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, password, email string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Lookup(ctx context.Context, username string) (*domain.User, error)
}

type UserOptions struct {
	BcryptCost int
	Retry      RetryPolicy
}

type userService struct {
	users repository.UserRepository
	cost  int
	retry RetryPolicy

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(users repository.UserRepository, opts UserOptions) UserService {
	cost := opts.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &userService{
		users: users,
		cost:  cost,
		retry: opts.Retry.normalize(),
	}
}

// ValidateSignup checks the registration fields. Email is optional.
func ValidateSignup(username, password, email string) error {
	if !usernamePattern.MatchString(username) {
		return &domain.FieldError{Field: "username", Reason: "must be 3-20 letters, digits, '_' or '-'"}
	}
	if !passwordPattern.MatchString(password) {
		return &domain.FieldError{Field: "password", Reason: "must be 3-20 characters"}
	}
	if len(password) > maxPasswordBytes {
		return &domain.FieldError{Field: "password", Reason: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)}
	}
	if email != "" && !emailPattern.MatchString(email) {
		return &domain.FieldError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}

func (s *userService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := ValidateSignup(username, password, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &domain.FieldError{Field: "password", Reason: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)}
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if _, err := withRetry(ctx, s.retry, func() (int64, error) {
		return s.users.Create(ctx, user)
	}); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.lookup(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// spend the same bcrypt time as a real mismatch
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) Lookup(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) lookup(ctx context.Context, username string) (*domain.User, error) {
	return withRetry(ctx, s.retry, func() (*domain.User, error) {
		return s.users.GetByUsername(ctx, username)
	})
}

func (s *userService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), s.cost)
	})
	return s.dummyHash
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
