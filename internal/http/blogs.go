package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type entryRequest struct {
	Title   string `json:"title"`
	Article string `json:"article"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type voteRequest struct {
	Direction string `json:"direction"`
}

func (h *Handler) listBlogs(c *gin.Context) {
	// unparsable values fall back to the first page and the default size
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	result, err := h.blogs.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(result))
}

func (h *Handler) createBlog(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSONError(c, http.StatusBadRequest, "invalid_input", err.Error(), "")
		return
	}

	entry, err := h.blogs.Create(c.Request.Context(), actor(c), req.Title, req.Article)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entryToResponse(*entry))
}

func (h *Handler) getBlog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	entry, err := h.blogs.Get(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	comments, err := h.comments.ListForEntry(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	vote, err := h.votes.UserVote(ctx, id, actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, permalinkToResponse(*entry, comments, vote))
}

func (h *Handler) editBlog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSONError(c, http.StatusBadRequest, "invalid_input", err.Error(), "")
		return
	}

	entry, err := h.blogs.Edit(c.Request.Context(), id, actor(c), req.Title, req.Article)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entryToResponse(*entry))
}

// deleteBlog answers 202 with the pending delete until the client repeats the call with confirmed=true.
func (h *Handler) deleteBlog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	confirmed, err := strconv.ParseBool(c.DefaultQuery("confirmed", "false"))
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, "invalid_input", "invalid flag confirmed", "confirmed")
		return
	}

	if !confirmed {
		pending, err := h.blogs.RequestDelete(c.Request.Context(), id, actor(c))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, PendingDeleteResponse{
			EntryID: pending.EntryID,
			Title:   pending.Title,
			Confirm: fmt.Sprintf("/api/blogs/%d?confirmed=true", pending.EntryID),
		})
		return
	}

	if err := h.blogs.ConfirmDelete(c.Request.Context(), id, actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSONError(c, http.StatusBadRequest, "invalid_input", err.Error(), "")
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), id, actor(c), req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, commentToResponse(*comment))
}

func (h *Handler) editComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSONError(c, http.StatusBadRequest, "invalid_input", err.Error(), "")
		return
	}

	comment, err := h.comments.Edit(c.Request.Context(), id, actor(c), req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, commentToResponse(*comment))
}

func (h *Handler) deleteComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id, actor(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) castVote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSONError(c, http.StatusBadRequest, "invalid_input", err.Error(), "")
		return
	}

	user := actor(c)
	tally, err := h.votes.CastVote(c.Request.Context(), id, user, req.Direction)
	if err != nil {
		h.writeError(c, err)
		return
	}
	vote, err := h.votes.UserVote(c.Request.Context(), id, user)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tallyToResponse(tally, vote))
}

func (h *Handler) getVotes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	tally, err := h.votes.Tally(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	vote, err := h.votes.UserVote(ctx, id, actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	voters, err := h.votes.Voters(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, votesToResponse(tally, vote, voters))
}

func (h *Handler) listArchive(c *gin.Context) {
	objects, err := h.blogs.ListArchived(c.Request.Context(), actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}
