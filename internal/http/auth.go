package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"myblog/internal/domain"
)

const rememberMeAge = 30 * 24 * time.Hour

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Verify   string `json:"verify"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSONError(c, http.StatusBadRequest, "invalid_input", err.Error(), "")
		return
	}
	if req.Password != req.Verify {
		h.writeError(c, &domain.FieldError{Field: "verify", Reason: "passwords do not match"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}

	setSession(c, h.guard.IssueSession(user), 0)
	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSONError(c, http.StatusBadRequest, "invalid_input", err.Error(), "")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var maxAge time.Duration
	if req.RememberMe {
		maxAge = rememberMeAge
	}
	setSession(c, h.guard.IssueSession(user), maxAge)
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) logout(c *gin.Context) {
	clearSession(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) welcome(c *gin.Context) {
	user := actor(c)
	if err := h.guard.RequireUser(user); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}
