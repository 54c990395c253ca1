package domain

import (
	"fmt"
	"strings"
	"time"
)

type VoteDirection string

const (
	VoteNone VoteDirection = ""
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// ParseVoteDirection accepts "up" or "down" in any case.
func ParseVoteDirection(s string) (VoteDirection, error) {
	switch VoteDirection(strings.ToLower(strings.TrimSpace(s))) {
	case VoteUp:
		return VoteUp, nil
	case VoteDown:
		return VoteDown, nil
	}
	return VoteNone, &FieldError{Field: "direction", Reason: fmt.Sprintf("unknown vote direction %q", s)}
}

// Vote is the single vote a user holds on an entry.
type Vote struct {
	EntryID   int64
	UserID    int64
	Username  string
	Direction VoteDirection
	CreatedAt time.Time
}

// Apply returns t adjusted for a vote moving from prev to next.
func (t Tally) Apply(prev, next VoteDirection) Tally {
	if prev == next {
		return t
	}
	switch prev {
	case VoteUp:
		t.Up--
	case VoteDown:
		t.Down--
	}
	switch next {
	case VoteUp:
		t.Up++
	case VoteDown:
		t.Down++
	}
	return t
}
