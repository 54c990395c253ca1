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

const createVotesTable = `
CREATE TABLE IF NOT EXISTS votes (
	entry_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL REFERENCES users(id),
	direction TEXT NOT NULL CHECK (direction IN ('up', 'down')),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (entry_id, user_id),
	FOREIGN KEY(entry_id) REFERENCES blog_entries(id) ON DELETE CASCADE
);
`

type VoteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) repository.VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createVotesTable); err != nil {
		return fmt.Errorf("create votes table: %w", err)
	}
	return nil
}

// Cast reads the current vote and tally, then writes both back inside one transaction.
func (r *VoteRepository) Cast(ctx context.Context, entryID, userID int64, direction domain.VoteDirection) (domain.Tally, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var tally domain.Tally
	err = tx.QueryRowContext(ctx, `SELECT up_votes, down_votes FROM blog_entries WHERE id=?`, entryID).
		Scan(&tally.Up, &tally.Down)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Tally{}, fmt.Errorf("blog entry %d: %w", entryID, domain.ErrNotFound)
		}
		return domain.Tally{}, fmt.Errorf("read tally: %w", err)
	}

	var prev string
	err = tx.QueryRowContext(ctx, `SELECT direction FROM votes WHERE entry_id=? AND user_id=?`, entryID, userID).
		Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.Tally{}, fmt.Errorf("read vote: %w", err)
	}

	previous := domain.VoteDirection(prev)
	if previous == direction {
		return tally, nil
	}

	now := time.Now().UTC()
	if previous == domain.VoteNone {
		_, err = tx.ExecContext(ctx, `
INSERT INTO votes (entry_id, user_id, direction, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
			entryID, userID, string(direction), now, now)
	} else {
		_, err = tx.ExecContext(ctx, `
UPDATE votes SET direction=?, updated_at=?
WHERE entry_id=? AND user_id=?`,
			string(direction), now, entryID, userID)
	}
	if err != nil {
		return domain.Tally{}, fmt.Errorf("write vote: %w", err)
	}

	tally = tally.Apply(previous, direction)
	if _, err := tx.ExecContext(ctx, `
UPDATE blog_entries SET up_votes=?, down_votes=?
WHERE id=?`,
		tally.Up, tally.Down, entryID); err != nil {
		return domain.Tally{}, fmt.Errorf("write tally: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Tally{}, fmt.Errorf("commit vote: %w", err)
	}
	return tally, nil
}

func (r *VoteRepository) Get(ctx context.Context, entryID, userID int64) (domain.VoteDirection, error) {
	var dir string
	err := r.db.QueryRowContext(ctx, `SELECT direction FROM votes WHERE entry_id=? AND user_id=?`, entryID, userID).
		Scan(&dir)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.VoteNone, nil
		}
		return domain.VoteNone, fmt.Errorf("read vote: %w", err)
	}
	return domain.VoteDirection(dir), nil
}

func (r *VoteRepository) Tally(ctx context.Context, entryID int64) (domain.Tally, error) {
	var tally domain.Tally
	err := r.db.QueryRowContext(ctx, `SELECT up_votes, down_votes FROM blog_entries WHERE id=?`, entryID).
		Scan(&tally.Up, &tally.Down)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Tally{}, fmt.Errorf("blog entry %d: %w", entryID, domain.ErrNotFound)
		}
		return domain.Tally{}, fmt.Errorf("read tally: %w", err)
	}
	return tally, nil
}

func (r *VoteRepository) ListByEntry(ctx context.Context, entryID int64) ([]domain.Vote, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT v.entry_id, v.user_id, u.username, v.direction, v.created_at
FROM votes v
JOIN users u ON u.id = v.user_id
WHERE v.entry_id=?
ORDER BY v.user_id ASC`, entryID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	votes := []domain.Vote{}
	for rows.Next() {
		var (
			vote domain.Vote
			dir  string
		)
		if err := rows.Scan(&vote.EntryID, &vote.UserID, &vote.Username, &dir, &vote.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		vote.Direction = domain.VoteDirection(dir)
		votes = append(votes, vote)
	}

	return votes, rows.Err()
}
