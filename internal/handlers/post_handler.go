package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/asfak07/blognest/backend/internal/middleware"
	"github.com/asfak07/blognest/backend/internal/models"
	"github.com/asfak07/blognest/backend/internal/repositories"
	"github.com/asfak07/blognest/backend/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Uploaded image constraints
const (
	maxImageSize    = 5 << 20 // 5 MB
	uploadURLPrefix = "/uploads/"
)

var allowedImageExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true,
}

var allowedImageMIMEs = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true,
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository // To resolve author display fields
	blobStore      storage.BlobStore
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, blobStore storage.BlobStore) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		blobStore:      blobStore,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/posts", h.ListPosts)
	e.GET("/posts/search", h.SearchByTag)
	e.GET("/posts/:id", h.GetPost)
	e.POST("/posts", h.CreatePost, auth)
	e.PUT("/posts/:id", h.UpdatePost, auth)
	e.DELETE("/posts/:id", h.DeletePost, auth)
}

// PostWithAuthor is a post with the author resolved to its display fields
type PostWithAuthor struct {
	models.Post
	Author models.UserCompact `json:"author"`
}

// withAuthors resolves the author of each post to {id, username} at read
// time, so post documents never embed mutable user data.
func (h *PostHandler) withAuthors(posts []models.Post) []PostWithAuthor {
	userMap := make(map[uint]models.UserCompact)
	for _, p := range posts {
		if _, seen := userMap[p.AuthorID]; seen {
			continue
		}
		if user, err := h.userRepository.GetUserByID(p.AuthorID); err == nil {
			userMap[p.AuthorID] = user.ToCompact()
		}
	}

	enriched := make([]PostWithAuthor, len(posts))
	for i, p := range posts {
		enriched[i] = PostWithAuthor{Post: p, Author: userMap[p.AuthorID]}
	}
	return enriched
}

func (h *PostHandler) withAuthor(post *models.Post) PostWithAuthor {
	enriched := PostWithAuthor{Post: *post}
	if user, err := h.userRepository.GetUserByID(post.AuthorID); err == nil {
		enriched.Author = user.ToCompact()
	}
	return enriched
}

// CreatePost creates a new post, optionally with an image attachment
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	req, file, err := h.bindCreateRequest(c)
	if err != nil {
		return err
	}
	// Whitespace-only title/content fails validation, same rule as update
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := c.Validate(req); err != nil {
		return err
	}

	imagePath := ""
	blobName := ""
	if file != nil {
		if err := validateImageUpload(file); err != nil {
			return err
		}
		// Write the blob before the document ever references it
		blobName = newBlobName(file)
		if err := h.blobStore.Save(file, blobName); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
		}
		imagePath = uploadURLPrefix + blobName
	}

	post := &models.Post{
		AuthorID:  userID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		ImagePath: imagePath,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		if blobName != "" {
			h.blobStore.Delete(blobName) // don't leave an orphaned blob behind
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID with its author resolved
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return postErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, h.withAuthor(post))
}

// ListPosts retrieves all posts, newest first, with authors resolved
func (h *PostHandler) ListPosts(c echo.Context) error {
	posts, err := h.postRepository.GetAllPosts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.withAuthors(posts))
}

// SearchByTag retrieves posts whose tag set contains the exact query tag
func (h *PostHandler) SearchByTag(c echo.Context) error {
	tag := c.QueryParam("tag")
	if tag == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tag is required")
	}

	posts, err := h.postRepository.SearchPostsByTag(c.Request().Context(), tag)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.withAuthors(posts))
}

// UpdatePost updates an existing post. Absent fields stay unchanged; a new
// image replaces the stored blob, removeImage=true clears it.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	postID := c.Param("id")

	req, file, err := h.bindUpdateRequest(c)
	if err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return postErrorToHTTP(err)
	}

	// Ensure the user updating the post is the owner
	if post.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Title cannot be empty")
		}
		post.Title = *req.Title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Content cannot be empty")
		}
		post.Content = *req.Content
	}
	if req.Tags != nil {
		post.Tags = *req.Tags
		if post.Tags == nil {
			post.Tags = []string{}
		}
	}

	oldImagePath := post.ImagePath
	newBlob := ""
	if file != nil {
		if err := validateImageUpload(file); err != nil {
			return err
		}
		newBlob = newBlobName(file)
		if err := h.blobStore.Save(file, newBlob); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
		}
		post.ImagePath = uploadURLPrefix + newBlob
	} else if req.RemoveImage {
		post.ImagePath = ""
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), postID, post); err != nil {
		if newBlob != "" {
			h.blobStore.Delete(newBlob)
		}
		return postErrorToHTTP(err)
	}

	// The document no longer references the previous blob, drop it
	if oldImagePath != "" && post.ImagePath != oldImagePath {
		h.blobStore.Delete(path.Base(oldImagePath))
	}

	return c.JSON(http.StatusOK, h.withAuthor(post))
}

// DeletePost deletes a post, its comments and its image blob
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return postErrorToHTTP(err)
	}

	// Ensure the user deleting the post is the owner
	if post.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return postErrorToHTTP(err)
	}

	if post.ImagePath != "" {
		h.blobStore.Delete(path.Base(post.ImagePath))
	}

	return c.NoContent(http.StatusNoContent)
}

// bindCreateRequest reads a create request from either a JSON body or a
// multipart form (fields title, content, tags as a JSON-encoded array, and
// an optional image file).
func (h *PostHandler) bindCreateRequest(c echo.Context) (*models.CreatePostRequest, *multipart.FileHeader, error) {
	var req models.CreatePostRequest

	if !isMultipart(c) {
		if err := c.Bind(&req); err != nil {
			return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
		return &req, nil, nil
	}

	req.Title = c.FormValue("title")
	req.Content = c.FormValue("content")
	if raw := c.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Tags); err != nil {
			return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Tags must be a JSON-encoded string array")
		}
	}

	file, err := c.FormFile("image")
	if err != nil {
		file = nil
	}
	return &req, file, nil
}

// bindUpdateRequest reads a partial update from a JSON body or multipart
// form. A field missing from the request leaves the post field untouched.
func (h *PostHandler) bindUpdateRequest(c echo.Context) (*models.UpdatePostRequest, *multipart.FileHeader, error) {
	var req models.UpdatePostRequest

	if !isMultipart(c) {
		if err := c.Bind(&req); err != nil {
			return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
		return &req, nil, nil
	}

	params, err := c.FormParams()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}
	if v, ok := params["title"]; ok && len(v) > 0 {
		title := v[0]
		req.Title = &title
	}
	if v, ok := params["content"]; ok && len(v) > 0 {
		content := v[0]
		req.Content = &content
	}
	if v, ok := params["tags"]; ok && len(v) > 0 {
		var tags []string
		if err := json.Unmarshal([]byte(v[0]), &tags); err != nil {
			return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Tags must be a JSON-encoded string array")
		}
		req.Tags = &tags
	}
	req.RemoveImage = c.FormValue("removeImage") == "true"

	file, err := c.FormFile("image")
	if err != nil {
		file = nil
	}
	return &req, file, nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// validateImageUpload rejects oversized or non-image uploads before any
// blob write happens.
func validateImageUpload(file *multipart.FileHeader) error {
	if file.Size > maxImageSize {
		return echo.NewHTTPError(http.StatusBadRequest, "Image exceeds the 5 MB size limit")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] || !allowedImageMIMEs[file.Header.Get("Content-Type")] {
		return echo.NewHTTPError(http.StatusBadRequest, "Only image files are allowed (jpeg, jpg, png, gif, webp)")
	}
	return nil
}

func newBlobName(file *multipart.FileHeader) string {
	return "post-" + uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
}

// postErrorToHTTP maps repository sentinel errors onto HTTP statuses.
func postErrorToHTTP(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case errors.Is(err, repositories.ErrCommentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
