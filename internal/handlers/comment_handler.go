package handlers

import (
	"net/http"
	"time"

	"github.com/asfak07/blognest/backend/internal/middleware"
	"github.com/asfak07/blognest/backend/internal/models"
	"github.com/asfak07/blognest/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests for a post's comment thread
type CommentHandler struct {
	postRepository repositories.PostRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(postRepo repositories.PostRepository) *CommentHandler {
	return &CommentHandler{postRepository: postRepo}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/posts/:id/comments", h.ListComments)
	e.POST("/posts/:id/comments", h.AddComment, auth)
	e.DELETE("/posts/:id/comments/:comment_id", h.DeleteComment, auth)
}

// AddComment appends a comment to the post's thread and returns the
// updated post
func (h *CommentHandler) AddComment(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Text:      req.Text,
		Likes:     []uint{},
		CreatedAt: time.Now(),
	}

	post, err := h.postRepository.AddComment(c.Request().Context(), c.Param("id"), comment)
	if err != nil {
		return postErrorToHTTP(err)
	}

	return c.JSON(http.StatusCreated, post)
}

// ListComments returns the post's comments in insertion order
func (h *CommentHandler) ListComments(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return postErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, post.Comments)
}

// DeleteComment removes a comment. Only the comment's own author may delete
// it; the post's author gets no special rights over other users' comments.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("comment_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return postErrorToHTTP(err)
	}

	comment := post.CommentByID(commentID)
	if comment == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	updated, err := h.postRepository.RemoveComment(c.Request().Context(), c.Param("id"), commentID)
	if err != nil {
		return postErrorToHTTP(err)
	}

	return c.JSON(http.StatusOK, updated)
}
