package http

import (
	"time"

	"myblog/internal/domain"
	"myblog/internal/storage"
)

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

type EntryResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Article   string `json:"article"`
	OwnerID   int64  `json:"owner_id"`
	Owner     string `json:"owner"`
	UpVotes   int    `json:"up_votes"`
	DownVotes int    `json:"down_votes"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type PageResponse struct {
	Entries    []EntryResponse `json:"entries"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
	Total      int             `json:"total"`
}

type CommentResponse struct {
	ID        int64  `json:"id"`
	EntryID   int64  `json:"entry_id"`
	AuthorID  int64  `json:"author_id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type PermalinkResponse struct {
	Entry         EntryResponse     `json:"entry"`
	Comments      []CommentResponse `json:"comments"`
	UserVote      string            `json:"user_vote"`
	UserUpvoted   bool              `json:"user_upvoted"`
	UserDownvoted bool              `json:"user_downvoted"`
}

type TallyResponse struct {
	Up       int    `json:"up"`
	Down     int    `json:"down"`
	Score    int    `json:"score"`
	UserVote string `json:"user_vote"`
}

type VoterResponse struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Direction string `json:"direction"`
}

// VotesResponse flattens the tally and adds the voter list.
type VotesResponse struct {
	TallyResponse
	Voters []VoterResponse `json:"voters"`
}

type PendingDeleteResponse struct {
	EntryID int64  `json:"entry_id"`
	Title   string `json:"title"`
	Confirm string `json:"confirm"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func entryToResponse(entry domain.BlogEntry) EntryResponse {
	return EntryResponse{
		ID:        entry.ID,
		Title:     entry.Title,
		Article:   entry.Article,
		OwnerID:   entry.OwnerID,
		Owner:     entry.OwnerUsername,
		UpVotes:   entry.Tally.Up,
		DownVotes: entry.Tally.Down,
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		UpdatedAt: entry.UpdatedAt.Format(time.RFC3339),
	}
}

func pageToResponse(page *domain.Page) PageResponse {
	resp := PageResponse{
		Entries:    make([]EntryResponse, len(page.Entries)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
		Total:      page.Total,
	}
	for i := range page.Entries {
		resp.Entries[i] = entryToResponse(page.Entries[i])
	}
	return resp
}

func commentToResponse(comment domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		EntryID:   comment.EntryID,
		AuthorID:  comment.AuthorID,
		Author:    comment.AuthorUsername,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
		UpdatedAt: comment.UpdatedAt.Format(time.RFC3339),
	}
}

func permalinkToResponse(entry domain.BlogEntry, comments []domain.Comment, vote domain.VoteDirection) PermalinkResponse {
	resp := PermalinkResponse{
		Entry:         entryToResponse(entry),
		Comments:      make([]CommentResponse, len(comments)),
		UserVote:      string(vote),
		UserUpvoted:   vote == domain.VoteUp,
		UserDownvoted: vote == domain.VoteDown,
	}
	for i := range comments {
		resp.Comments[i] = commentToResponse(comments[i])
	}
	return resp
}

func tallyToResponse(tally domain.Tally, vote domain.VoteDirection) TallyResponse {
	return TallyResponse{
		Up:       tally.Up,
		Down:     tally.Down,
		Score:    tally.Up - tally.Down,
		UserVote: string(vote),
	}
}

func votesToResponse(tally domain.Tally, vote domain.VoteDirection, voters []domain.Vote) VotesResponse {
	resp := VotesResponse{
		TallyResponse: tallyToResponse(tally, vote),
		Voters:        make([]VoterResponse, len(voters)),
	}
	for i := range voters {
		resp.Voters[i] = VoterResponse{
			UserID:    voters[i].UserID,
			Username:  voters[i].Username,
			Direction: string(voters[i].Direction),
		}
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
