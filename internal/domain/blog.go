package domain

import "time"

// Tally is the maintained vote aggregate of a blog entry.
type Tally struct {
	Up   int
	Down int
}

// BlogEntry is a published post. Title is unique across live entries.
type BlogEntry struct {
	ID            int64
	Title         string
	Article       string
	OwnerID       int64
	OwnerUsername string
	Tally         Tally
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PendingDelete is returned by the first phase of a two-step delete. It is never stored.
type PendingDelete struct {
	EntryID int64
	Title   string
}

// Page is one slice of the blog listing.
type Page struct {
	Entries    []BlogEntry
	Page       int
	PageSize   int
	TotalPages int
	Total      int
}

// Comment is a remark left by a user on a blog entry.
type Comment struct {
	ID             int64
	EntryID        int64
	AuthorID       int64
	AuthorUsername string
	Text           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
