package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"myblog/internal/domain"
	"myblog/internal/repository"
)

type BlogRepository struct {
	store *Store
}

func NewBlogRepository(store *Store) repository.BlogRepository {
	return &BlogRepository{store: store}
}

func (r *BlogRepository) Init(ctx context.Context) error { return nil }

func (r *BlogRepository) Create(ctx context.Context, entry *domain.BlogEntry) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.titles[entry.Title]; taken {
		return 0, fmt.Errorf("insert blog entry %q: %w", entry.Title, domain.ErrDuplicateTitle)
	}
	if _, ok := s.users[entry.OwnerID]; !ok {
		return 0, fmt.Errorf("owner %d: %w", entry.OwnerID, domain.ErrNotFound)
	}

	now := time.Now().UTC()
	s.nextEntryID++
	entry.ID = s.nextEntryID
	entry.CreatedAt = now
	entry.UpdatedAt = now
	entry.Tally = domain.Tally{}
	entry.OwnerUsername = s.username(entry.OwnerID)
	s.entries[entry.ID] = *entry
	s.titles[entry.Title] = entry.ID
	return entry.ID, nil
}

func (r *BlogRepository) Update(ctx context.Context, entry *domain.BlogEntry) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[entry.ID]
	if !ok {
		return fmt.Errorf("blog entry %d: %w", entry.ID, domain.ErrNotFound)
	}
	if holder, taken := s.titles[entry.Title]; taken && holder != entry.ID {
		return fmt.Errorf("update blog entry %q: %w", entry.Title, domain.ErrDuplicateTitle)
	}

	delete(s.titles, current.Title)
	current.Title = entry.Title
	current.Article = entry.Article
	current.UpdatedAt = time.Now().UTC()
	s.entries[entry.ID] = current
	s.titles[current.Title] = current.ID
	entry.UpdatedAt = current.UpdatedAt
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("blog entry %d: %w", id, domain.ErrNotFound)
	}
	for cid, c := range s.comments {
		if c.EntryID == id {
			delete(s.comments, cid)
		}
	}
	for key := range s.votes {
		if key.entryID == id {
			delete(s.votes, key)
		}
	}
	delete(s.titles, entry.Title)
	delete(s.entries, id)
	return nil
}

func (r *BlogRepository) Get(ctx context.Context, id int64) (*domain.BlogEntry, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("blog entry: %w", domain.ErrNotFound)
	}
	return &entry, nil
}

func (r *BlogRepository) Count(ctx context.Context) (int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (r *BlogRepository) List(ctx context.Context, limit, offset int) ([]domain.BlogEntry, error) {
	s := r.store
	s.mu.RLock()
	all := make([]domain.BlogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if offset >= len(all) {
		return []domain.BlogEntry{}, nil
	}
	end := len(all)
	if limit < end-offset {
		end = offset + limit
	}
	return all[offset:end], nil
}
