package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"myblog/internal/domain"
)

func newTestRepositories(t *testing.T) Repositories {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repos := NewRepositories(db)
	if err := repos.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return repos
}

func mustCreateUser(t *testing.T, repos Repositories, name string) *domain.User {
	t.Helper()
	user := &domain.User{Username: name, PasswordHash: "hash"}
	if _, err := repos.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func mustCreateEntry(t *testing.T, repos Repositories, owner *domain.User, title string) *domain.BlogEntry {
	t.Helper()
	entry := &domain.BlogEntry{Title: title, Article: "body", OwnerID: owner.ID}
	if _, err := repos.Blogs.Create(context.Background(), entry); err != nil {
		t.Fatalf("create entry %s: %v", title, err)
	}
	return entry
}

func TestUserRepositoryDuplicate(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()
	alice := mustCreateUser(t, repos, "alice")

	_, err := repos.Users.Create(ctx, &domain.User{Username: "alice", PasswordHash: "other"})
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
	if _, err := repos.Users.Create(ctx, &domain.User{Username: "Alice", PasswordHash: "x"}); err != nil {
		t.Fatalf("usernames are case-sensitive: %v", err)
	}

	got, err := repos.Users.GetByUsername(ctx, "alice")
	if err != nil || got.ID != alice.ID {
		t.Fatalf("get by username: %+v %v", got, err)
	}
	if _, err := repos.Users.GetByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepositoryConcurrentCreate(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repos.Users.Create(ctx, &domain.User{Username: "racer", PasswordHash: "h"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrDuplicateUser):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if successes != 1 || dupes != 7 {
		t.Fatalf("successes=%d dupes=%d", successes, dupes)
	}
}

func TestBlogRepositoryTitleUniqueness(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()
	alice := mustCreateUser(t, repos, "alice")
	bob := mustCreateUser(t, repos, "bob")

	e1 := mustCreateEntry(t, repos, alice, "T1")
	_, err := repos.Blogs.Create(ctx, &domain.BlogEntry{Title: "T1", Article: "y", OwnerID: bob.ID})
	if !errors.Is(err, domain.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}

	e2 := mustCreateEntry(t, repos, bob, "T2")
	e2.Title = "T1"
	if err := repos.Blogs.Update(ctx, e2); !errors.Is(err, domain.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle on update, got %v", err)
	}
	stored, err := repos.Blogs.Get(ctx, e2.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "T2" {
		t.Fatalf("title changed to %q", stored.Title)
	}

	e1.Article = "edited"
	if err := repos.Blogs.Update(ctx, e1); err != nil {
		t.Fatalf("update keeping own title: %v", err)
	}
	if stored, _ := repos.Blogs.Get(ctx, e1.ID); stored.Article != "edited" || stored.OwnerUsername != "alice" {
		t.Fatalf("unexpected entry %+v", stored)
	}
}

func TestBlogRepositoryListOrderAndDelete(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()
	alice := mustCreateUser(t, repos, "alice")
	bob := mustCreateUser(t, repos, "bob")

	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		ids = append(ids, mustCreateEntry(t, repos, alice, title).ID)
	}

	entries, err := repos.Blogs.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != ids[2] || entries[1].ID != ids[1] {
		t.Fatalf("unexpected first page %+v", entries)
	}
	entries, err = repos.Blogs.List(ctx, 2, 2)
	if err != nil || len(entries) != 1 || entries[0].ID != ids[0] {
		t.Fatalf("unexpected second page %+v %v", entries, err)
	}

	if _, err := repos.Comments.Create(ctx, &domain.Comment{EntryID: ids[0], AuthorID: bob.ID, Text: "hi"}); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if _, err := repos.Votes.Cast(ctx, ids[0], bob.ID, domain.VoteUp); err != nil {
		t.Fatalf("cast: %v", err)
	}

	if err := repos.Blogs.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repos.Blogs.Delete(ctx, ids[0]); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	comments, err := repos.Comments.ListByEntry(ctx, ids[0])
	if err != nil || len(comments) != 0 {
		t.Fatalf("comments survived delete: %+v %v", comments, err)
	}
	votes, err := repos.Votes.ListByEntry(ctx, ids[0])
	if err != nil || len(votes) != 0 {
		t.Fatalf("votes survived delete: %+v %v", votes, err)
	}
	if n, err := repos.Blogs.Count(ctx); err != nil || n != 2 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestCommentRepository(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()
	alice := mustCreateUser(t, repos, "alice")
	entry := mustCreateEntry(t, repos, alice, "T1")

	_, err := repos.Comments.Create(ctx, &domain.Comment{EntryID: 404, AuthorID: alice.ID, Text: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing entry, got %v", err)
	}

	c := &domain.Comment{EntryID: entry.ID, AuthorID: alice.ID, Text: "first"}
	if _, err := repos.Comments.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	c.Text = "changed"
	if err := repos.Comments.Update(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repos.Comments.Get(ctx, c.ID)
	if err != nil || got.Text != "changed" || got.AuthorUsername != "alice" {
		t.Fatalf("get: %+v %v", got, err)
	}
	if err := repos.Comments.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repos.Comments.Get(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVoteRepositoryCast(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()
	alice := mustCreateUser(t, repos, "alice")
	bob := mustCreateUser(t, repos, "bob")
	entry := mustCreateEntry(t, repos, alice, "T1")

	steps := []struct {
		dir  domain.VoteDirection
		want domain.Tally
	}{
		{domain.VoteUp, domain.Tally{Up: 1}},
		{domain.VoteUp, domain.Tally{Up: 1}},
		{domain.VoteDown, domain.Tally{Down: 1}},
		{domain.VoteUp, domain.Tally{Up: 1}},
	}
	for i, step := range steps {
		got, err := repos.Votes.Cast(ctx, entry.ID, bob.ID, step.dir)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got != step.want {
			t.Fatalf("step %d: tally %+v, want %+v", i, got, step.want)
		}
	}

	dir, err := repos.Votes.Get(ctx, entry.ID, bob.ID)
	if err != nil || dir != domain.VoteUp {
		t.Fatalf("get vote: %q %v", dir, err)
	}
	if dir, _ := repos.Votes.Get(ctx, entry.ID, alice.ID); dir != domain.VoteNone {
		t.Fatalf("alice has vote %q", dir)
	}
	votes, err := repos.Votes.ListByEntry(ctx, entry.ID)
	if err != nil || len(votes) != 1 {
		t.Fatalf("votes: %+v %v", votes, err)
	}
	if votes[0].Username != "bob" || votes[0].Direction != domain.VoteUp {
		t.Fatalf("unexpected vote row %+v", votes[0])
	}
	if _, err := repos.Votes.Cast(ctx, 404, bob.ID, domain.VoteUp); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVoteRepositoryConcurrentCastsStayConsistent(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()
	owner := mustCreateUser(t, repos, "owner")
	entry := mustCreateEntry(t, repos, owner, "T1")

	var voters []*domain.User
	for _, name := range []string{"v1", "v2", "v3", "v4"} {
		voters = append(voters, mustCreateUser(t, repos, name))
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir := domain.VoteUp
			if i%3 == 0 {
				dir = domain.VoteDown
			}
			if _, err := repos.Votes.Cast(ctx, entry.ID, voters[i%len(voters)].ID, dir); err != nil {
				t.Errorf("cast: %v", err)
			}
		}(i)
	}
	wg.Wait()

	votes, err := repos.Votes.ListByEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	var want domain.Tally
	for _, v := range votes {
		want = want.Apply(domain.VoteNone, v.Direction)
	}
	got, err := repos.Votes.Tally(ctx, entry.ID)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if got != want || len(votes) > len(voters) {
		t.Fatalf("tally %+v does not match %d vote rows %+v", got, len(votes), want)
	}
}

func TestBlogRepositoryConcurrentCreateSameTitle(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	const writers = 8
	owners := make([]*domain.User, writers)
	for i := range owners {
		owners[i] = mustCreateUser(t, repos, fmt.Sprintf("writer%d", i))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for _, owner := range owners {
		wg.Add(1)
		go func(owner *domain.User) {
			defer wg.Done()
			_, err := repos.Blogs.Create(ctx, &domain.BlogEntry{Title: "Contested", Article: "body", OwnerID: owner.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrDuplicateTitle):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(owner)
	}
	wg.Wait()

	if successes != 1 || dupes != writers-1 {
		t.Fatalf("successes=%d dupes=%d", successes, dupes)
	}
	if n, err := repos.Blogs.Count(ctx); err != nil || n != 1 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestBlogRepositoryConcurrentRenameSameTitle(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()
	owner := mustCreateUser(t, repos, "owner")

	const writers = 8
	entries := make([]*domain.BlogEntry, writers)
	for i := range entries {
		entries[i] = mustCreateEntry(t, repos, owner, fmt.Sprintf("draft %d", i))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for _, entry := range entries {
		wg.Add(1)
		go func(entry domain.BlogEntry) {
			defer wg.Done()
			entry.Title = "Final"
			err := repos.Blogs.Update(ctx, &entry)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrDuplicateTitle):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(*entry)
	}
	wg.Wait()

	if successes != 1 || dupes != writers-1 {
		t.Fatalf("successes=%d dupes=%d", successes, dupes)
	}
	list, err := repos.Blogs.List(ctx, writers, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	finals := 0
	for _, e := range list {
		if e.Title == "Final" {
			finals++
		}
	}
	if finals != 1 {
		t.Fatalf("%d entries carry the contested title", finals)
	}
}

func TestOpenConfiguresPoolAndWAL(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "pool.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != maxOpenConns {
		t.Fatalf("max open connections = %d, want %d", got, maxOpenConns)
	}
	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("journal mode = %q, want wal", mode)
	}
}

func TestReadsProceedDuringWriteTransaction(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "rw.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	repos := NewRepositories(db)
	ctx := context.Background()
	if err := repos.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	owner := mustCreateUser(t, repos, "owner")
	mustCreateEntry(t, repos, owner, "T1")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `UPDATE blog_entries SET article='pending' WHERE title='T1'`); err != nil {
		t.Fatalf("update in tx: %v", err)
	}

	// the open write transaction holds one connection; reads use another
	entries, err := repos.Blogs.List(ctx, 10, 0)
	if err != nil || len(entries) != 1 || entries[0].Article != "body" {
		t.Fatalf("read during write: %+v %v", entries, err)
	}
}
