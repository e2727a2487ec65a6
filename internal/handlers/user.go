package handlers

import (
	"net/http"
	"strconv"

	"github.com/asfak07/blognest/backend/internal/middleware"
	"github.com/asfak07/blognest/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository // For per-user post stats
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		postRepository: postRepo,
	}
}

// RegisterUserRoutes registers user profile-related routes
func (h *UserHandler) RegisterUserRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/users/me", h.GetMyProfile, auth)
	e.GET("/users/:id", h.GetUserProfile)
	e.GET("/users/:id/posts", h.GetUserPosts)
}

// GetMyProfile retrieves the authenticated user's profile with stats
func (h *UserHandler) GetMyProfile(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return h.profileResponse(c, userID)
}

// GetUserProfile retrieves any user's profile with stats
func (h *UserHandler) GetUserProfile(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	return h.profileResponse(c, uint(id))
}

func (h *UserHandler) profileResponse(c echo.Context, userID uint) error {
	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.postRepository.GetPostsByAuthorID(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalLikes := 0
	totalComments := 0
	for _, p := range posts {
		totalLikes += len(p.Likes)
		totalComments += len(p.Comments)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		},
		"stats": echo.Map{
			"postCount":     len(posts),
			"totalLikes":    totalLikes,
			"totalComments": totalComments,
		},
	})
}

// GetUserPosts retrieves a user's posts, newest first
func (h *UserHandler) GetUserPosts(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.postRepository.GetPostsByAuthorID(c.Request().Context(), uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	author := user.ToCompact()
	enriched := make([]PostWithAuthor, len(posts))
	for i, p := range posts {
		enriched[i] = PostWithAuthor{Post: p, Author: author}
	}
	return c.JSON(http.StatusOK, enriched)
}
