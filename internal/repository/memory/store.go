// Package memory implements the repository interfaces over maps guarded by one mutex.
// It backs tests and the "memory" database driver.
package memory

import (
	"context"
	"sync"

	"myblog/internal/domain"
	"myblog/internal/repository"
)

type voteKey struct {
	entryID int64
	userID  int64
}

// Store holds every table. Repositories created from the same Store see each other's writes.
type Store struct {
	mu sync.RWMutex

	nextUserID    int64
	nextEntryID   int64
	nextCommentID int64

	users       map[int64]domain.User
	usersByName map[string]int64
	entries     map[int64]domain.BlogEntry
	titles      map[string]int64
	comments    map[int64]domain.Comment
	votes       map[voteKey]domain.Vote
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int64]domain.User),
		usersByName: make(map[string]int64),
		entries:     make(map[int64]domain.BlogEntry),
		titles:      make(map[string]int64),
		comments:    make(map[int64]domain.Comment),
		votes:       make(map[voteKey]domain.Vote),
	}
}

// Repositories mirrors sqlite.Repositories for the in-memory backend.
type Repositories struct {
	Users    repository.UserRepository
	Blogs    repository.BlogRepository
	Comments repository.CommentRepository
	Votes    repository.VoteRepository
}

func NewRepositories(store *Store) Repositories {
	return Repositories{
		Users:    NewUserRepository(store),
		Blogs:    NewBlogRepository(store),
		Comments: NewCommentRepository(store),
		Votes:    NewVoteRepository(store),
	}
}

func (r Repositories) Init(ctx context.Context) error {
	return nil
}

func (s *Store) username(id int64) string {
	return s.users[id].Username
}
