package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"myblog/internal/repository"
)

const maxOpenConns = 4

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// pragmas go through the DSN so they survive connection recycling
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(3000)&_pragma=journal_mode(WAL)&_time_format=sqlite&_txlock=immediate", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// WAL lets readers run beside the single sqlite writer; writers queue on busy_timeout
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return db, nil
}

// Repositories bundles every sqlite repository sharing one database handle.
type Repositories struct {
	Users    repository.UserRepository
	Blogs    repository.BlogRepository
	Comments repository.CommentRepository
	Votes    repository.VoteRepository
}

func NewRepositories(db *sql.DB) Repositories {
	return Repositories{
		Users:    NewUserRepository(db),
		Blogs:    NewBlogRepository(db),
		Comments: NewCommentRepository(db),
		Votes:    NewVoteRepository(db),
	}
}

// Init creates tables in dependency order.
func (r Repositories) Init(ctx context.Context) error {
	if err := r.Users.Init(ctx); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	if err := r.Blogs.Init(ctx); err != nil {
		return fmt.Errorf("init blog repository: %w", err)
	}
	if err := r.Comments.Init(ctx); err != nil {
		return fmt.Errorf("init comment repository: %w", err)
	}
	if err := r.Votes.Init(ctx); err != nil {
		return fmt.Errorf("init vote repository: %w", err)
	}
	return nil
}
