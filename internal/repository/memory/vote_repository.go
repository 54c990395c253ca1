package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"myblog/internal/domain"
	"myblog/internal/repository"
)

type VoteRepository struct {
	store *Store
}

func NewVoteRepository(store *Store) repository.VoteRepository {
	return &VoteRepository{store: store}
}

func (r *VoteRepository) Init(ctx context.Context) error { return nil }

func (r *VoteRepository) Cast(ctx context.Context, entryID, userID int64, direction domain.VoteDirection) (domain.Tally, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return domain.Tally{}, fmt.Errorf("blog entry %d: %w", entryID, domain.ErrNotFound)
	}

	key := voteKey{entryID: entryID, userID: userID}
	vote, exists := s.votes[key]
	previous := domain.VoteNone
	if exists {
		previous = vote.Direction
	}
	if previous == direction {
		return entry.Tally, nil
	}

	if !exists {
		vote = domain.Vote{EntryID: entryID, UserID: userID, CreatedAt: time.Now().UTC()}
	}
	vote.Direction = direction
	s.votes[key] = vote

	entry.Tally = entry.Tally.Apply(previous, direction)
	s.entries[entryID] = entry
	return entry.Tally, nil
}

func (r *VoteRepository) Get(ctx context.Context, entryID, userID int64) (domain.VoteDirection, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	vote, ok := s.votes[voteKey{entryID: entryID, userID: userID}]
	if !ok {
		return domain.VoteNone, nil
	}
	return vote.Direction, nil
}

func (r *VoteRepository) Tally(ctx context.Context, entryID int64) (domain.Tally, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return domain.Tally{}, fmt.Errorf("blog entry %d: %w", entryID, domain.ErrNotFound)
	}
	return entry.Tally, nil
}

func (r *VoteRepository) ListByEntry(ctx context.Context, entryID int64) ([]domain.Vote, error) {
	s := r.store
	s.mu.RLock()
	votes := []domain.Vote{}
	for key, v := range s.votes {
		if key.entryID == entryID {
			v.Username = s.username(v.UserID)
			votes = append(votes, v)
		}
	}
	s.mu.RUnlock()

	sort.Slice(votes, func(i, j int) bool { return votes[i].UserID < votes[j].UserID })
	return votes, nil
}
