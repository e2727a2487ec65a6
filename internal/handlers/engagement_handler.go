package handlers

import (
	"net/http"

	"github.com/asfak07/blognest/backend/internal/middleware"
	"github.com/asfak07/blognest/backend/internal/models"
	"github.com/asfak07/blognest/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementHandler handles the three toggle surfaces of a post: likes,
// emoji reactions and comment likes.
type EngagementHandler struct {
	postRepository repositories.PostRepository
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(postRepo repositories.PostRepository) *EngagementHandler {
	return &EngagementHandler{postRepository: postRepo}
}

// RegisterEngagementRoutes registers like and reaction routes
func (h *EngagementHandler) RegisterEngagementRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.PUT("/posts/:id/like", h.TogglePostLike, auth)
	e.PUT("/posts/:id/react", h.ReactToPost, auth)
	e.PUT("/posts/:id/comments/:comment_id/like", h.ToggleCommentLike, auth)
}

// TogglePostLike flips the caller's membership in the post's like set
func (h *EngagementHandler) TogglePostLike(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	post, liked, err := h.postRepository.ToggleLike(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return postErrorToHTTP(err)
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    message,
		"likesCount": len(post.Likes),
		"liked":      liked,
	})
}

// ReactToPost sets, replaces or removes the caller's emoji reaction
func (h *EngagementHandler) ReactToPost(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	var req models.ReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if !models.IsValidReactionType(req.Type) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid reaction type")
	}

	post, removed, err := h.postRepository.ApplyReaction(c.Request().Context(), c.Param("id"), userID, req.Type)
	if err != nil {
		return postErrorToHTTP(err)
	}

	message := "Reaction updated"
	if removed {
		message = "Reaction removed"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": message,
		"post":    post,
	})
}

// ToggleCommentLike flips the caller's membership in one comment's like set
func (h *EngagementHandler) ToggleCommentLike(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("comment_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	post, liked, err := h.postRepository.ToggleCommentLike(c.Request().Context(), c.Param("id"), commentID, userID)
	if err != nil {
		return postErrorToHTTP(err)
	}

	likesCount := 0
	if comment := post.CommentByID(commentID); comment != nil {
		likesCount = len(comment.Likes)
	}

	message := "Comment unliked"
	if liked {
		message = "Comment liked"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    message,
		"liked":      liked,
		"likesCount": likesCount,
	})
}
