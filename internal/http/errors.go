package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"myblog/internal/domain"
	"myblog/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

var errorKinds = []struct {
	err    error
	status int
	kind   string
}{
	{domain.ErrDuplicateUser, http.StatusConflict, "duplicate_user"},
	{domain.ErrDuplicateTitle, http.StatusConflict, "duplicate_title"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{domain.ErrTooShort, http.StatusBadRequest, "too_short"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrSelfVoteForbidden, http.StatusForbidden, "self_vote_forbidden"},
	{domain.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
	{service.ErrArchiveDisabled, http.StatusNotImplemented, "archive_disabled"},
}

func (h *Handler) writeError(c *gin.Context, err error) {
	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}
		// storage and repository wrapping stays in the log, never in the body
		message, field := k.err.Error(), ""
		var fieldErr *domain.FieldError
		if errors.As(err, &fieldErr) {
			message, field = fieldErr.Error(), fieldErr.Field
		}
		if k.status >= http.StatusInternalServerError {
			h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		}
		writeJSONError(c, k.status, k.kind, message, field)
		return
	}

	h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("unexpected error")
	writeJSONError(c, http.StatusInternalServerError, "internal", "internal server error", "")
}

func writeJSONError(c *gin.Context, status int, kind, message, field string) {
	c.JSON(status, ErrorResponse{Error: message, Kind: kind, Field: field})
}
