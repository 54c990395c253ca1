package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"myblog/internal/domain"
	"myblog/internal/repository"
)

const createBlogEntriesTable = `
CREATE TABLE IF NOT EXISTS blog_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL UNIQUE,
	article TEXT NOT NULL,
	owner_id INTEGER NOT NULL REFERENCES users(id),
	up_votes INTEGER NOT NULL DEFAULT 0,
	down_votes INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_blog_entries_created_at ON blog_entries(created_at DESC, id DESC);
`

const selectBlogEntry = `
SELECT b.id, b.title, b.article, b.owner_id, u.username, b.up_votes, b.down_votes, b.created_at, b.updated_at
FROM blog_entries b
JOIN users u ON u.id = b.owner_id`

type BlogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) repository.BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBlogEntriesTable); err != nil {
		return fmt.Errorf("create blog_entries table: %w", err)
	}
	return nil
}

func (r *BlogRepository) Create(ctx context.Context, entry *domain.BlogEntry) (int64, error) {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	entry.Tally = domain.Tally{}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO blog_entries (title, article, owner_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		entry.Title,
		entry.Article,
		entry.OwnerID,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert blog entry %q: %w", entry.Title, domain.ErrDuplicateTitle)
		}
		return 0, fmt.Errorf("insert blog entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("blog entry last insert id: %w", err)
	}
	entry.ID = id
	return id, nil
}

func (r *BlogRepository) Update(ctx context.Context, entry *domain.BlogEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE blog_entries
SET title=?, article=?, updated_at=?
WHERE id=?`,
		entry.Title,
		entry.Article,
		entry.UpdatedAt,
		entry.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update blog entry %q: %w", entry.Title, domain.ErrDuplicateTitle)
		}
		return fmt.Errorf("update blog entry: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("blog entry update rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("blog entry %d: %w", entry.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE entry_id=?`, id); err != nil {
		return fmt.Errorf("delete entry votes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE entry_id=?`, id); err != nil {
		return fmt.Errorf("delete entry comments: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM blog_entries WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete blog entry: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("blog entry delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("blog entry %d: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit blog entry delete: %w", err)
	}
	return nil
}

func (r *BlogRepository) Get(ctx context.Context, id int64) (*domain.BlogEntry, error) {
	row := r.db.QueryRowContext(ctx, selectBlogEntry+`
WHERE b.id=?`, id)
	return scanBlogEntry(row)
}

func (r *BlogRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM blog_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count blog entries: %w", err)
	}
	return n, nil
}

func (r *BlogRepository) List(ctx context.Context, limit, offset int) ([]domain.BlogEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectBlogEntry+`
ORDER BY b.created_at DESC, b.id DESC
LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query blog entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.BlogEntry{}
	for rows.Next() {
		entry, err := scanBlogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

func scanBlogEntry(row rowScanner) (*domain.BlogEntry, error) {
	var entry domain.BlogEntry
	if err := row.Scan(
		&entry.ID,
		&entry.Title,
		&entry.Article,
		&entry.OwnerID,
		&entry.OwnerUsername,
		&entry.Tally.Up,
		&entry.Tally.Down,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("blog entry: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan blog entry: %w", err)
	}
	return &entry, nil
}
