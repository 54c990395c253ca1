package http

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"myblog/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	guard    *service.Guard
	blogs    service.BlogService
	comments service.CommentService
	votes    service.VoteService
	logger   logrus.FieldLogger
}

func NewHandler(users service.UserService, guard *service.Guard, blogs service.BlogService, comments service.CommentService, votes service.VoteService, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:    users,
		guard:    guard,
		blogs:    blogs,
		comments: comments,
		votes:    votes,
		logger:   logger,
	}
}

// RegisterRoutes installs middleware and routes. An empty origin list or "*" allows any origin.
func (h *Handler) RegisterRoutes(router *gin.Engine, allowedOrigins []string) {
	router.Use(accessLog(h.logger))
	router.Use(cors.New(corsConfig(allowedOrigins)))
	router.Use(h.identity())

	api := router.Group("/api")
	{
		api.POST("/signup", h.signup)
		api.POST("/login", h.login)
		api.POST("/logout", h.logout)
		api.GET("/welcome", h.welcome)

		api.GET("/blogs", h.listBlogs)
		api.POST("/blogs", h.createBlog)
		api.GET("/blogs/:id", h.getBlog)
		api.PUT("/blogs/:id", h.editBlog)
		api.DELETE("/blogs/:id", h.deleteBlog)

		api.POST("/blogs/:id/comments", h.addComment)
		api.PUT("/comments/:id", h.editComment)
		api.DELETE("/comments/:id", h.deleteComment)

		api.POST("/blogs/:id/votes", h.castVote)
		api.GET("/blogs/:id/votes", h.getVotes)

		api.GET("/archive", h.listArchive)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}

	allowAll := len(allowedOrigins) == 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowedOrigins
	cfg.AllowCredentials = true
	return cfg
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(c, http.StatusBadRequest, "invalid_input", "invalid id", "id")
		return 0, false
	}
	return id, true
}
