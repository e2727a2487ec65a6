package handlers

import (
	"net/http"

	"github.com/asfak07/blognest/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// AnalyticsHandler serves read-only aggregate reports over posts
type AnalyticsHandler struct {
	postRepository repositories.PostRepository
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(postRepo repositories.PostRepository) *AnalyticsHandler {
	return &AnalyticsHandler{postRepository: postRepo}
}

// RegisterAnalyticsRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterAnalyticsRoutes(g *echo.Group) {
	g.GET("/top-posts", h.TopPosts)
	g.GET("/posts-per-user", h.PostsPerUser)
}

// TopPosts returns the five posts with the most comments
func (h *AnalyticsHandler) TopPosts(c echo.Context) error {
	results, err := h.postRepository.TopPostsByComments(c.Request().Context(), 5)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}

// PostsPerUser returns how many posts each author has written
func (h *AnalyticsHandler) PostsPerUser(c echo.Context) error {
	results, err := h.postRepository.PostCountsByAuthor(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}
