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

const createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id INTEGER NOT NULL,
	author_id INTEGER NOT NULL REFERENCES users(id),
	text TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(entry_id) REFERENCES blog_entries(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_comments_entry_id ON comments(entry_id);
`

const selectComment = `
SELECT c.id, c.entry_id, c.author_id, u.username, c.text, c.created_at, c.updated_at
FROM comments c
JOIN users u ON u.id = c.author_id`

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCommentsTable); err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}
	return nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (int64, error) {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	// insert only while the parent entry is live
	res, err := r.db.ExecContext(ctx, `
INSERT INTO comments (entry_id, author_id, text, created_at, updated_at)
SELECT ?, ?, ?, ?, ?
WHERE EXISTS (SELECT 1 FROM blog_entries WHERE id = ?)`,
		comment.EntryID,
		comment.AuthorID,
		comment.Text,
		comment.CreatedAt,
		comment.UpdatedAt,
		comment.EntryID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("comment insert rows affected: %w", err)
	}
	if aff == 0 {
		return 0, fmt.Errorf("blog entry %d: %w", comment.EntryID, domain.ErrNotFound)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("comment last insert id: %w", err)
	}
	comment.ID = id
	return id, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	comment.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE comments
SET text=?, updated_at=?
WHERE id=?`,
		comment.Text,
		comment.UpdatedAt,
		comment.ID,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("comment update rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("comment %d: %w", comment.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("comment delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("comment %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	row := r.db.QueryRowContext(ctx, selectComment+`
WHERE c.id=?`, id)
	return scanComment(row)
}

func (r *CommentRepository) ListByEntry(ctx context.Context, entryID int64) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, selectComment+`
WHERE c.entry_id=?
ORDER BY c.created_at ASC, c.id ASC`, entryID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}

	return comments, rows.Err()
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.EntryID,
		&comment.AuthorID,
		&comment.AuthorUsername,
		&comment.Text,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &comment, nil
}
