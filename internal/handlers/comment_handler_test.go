package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/asfak07/blognest/backend/internal/models"
	"github.com/asfak07/blognest/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddCommentAppendsToThread(t *testing.T) {
	postID := primitive.NewObjectID()
	mockRepo := new(MockPostRepository)
	mockRepo.On("AddComment", mock.Anything, postID.Hex(), mock.MatchedBy(func(cm models.Comment) bool {
		return cm.UserID == 3 && cm.Text == "hi" && !cm.ID.IsZero() && !cm.CreatedAt.IsZero()
	})).Return(&models.Post{ID: postID, Comments: []models.Comment{{Text: "hi", UserID: 3}}}, nil)
	h := NewCommentHandler(mockRepo)

	body := strings.NewReader(`{"text":"hi"}`)
	c, rec := newTestContext(t, http.MethodPost, "/posts/"+postID.Hex()+"/comments", "application/json", body)
	c.SetParamNames("id")
	c.SetParamValues(postID.Hex())
	authenticateAs(c, 3)

	assert.NoError(t, h.AddComment(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	mockRepo.AssertExpectations(t)
}

func TestAddCommentRejectsEmptyText(t *testing.T) {
	mockRepo := new(MockPostRepository)
	h := NewCommentHandler(mockRepo)

	body := strings.NewReader(`{"text":""}`)
	c, _ := newTestContext(t, http.MethodPost, "/posts/abc/comments", "application/json", body)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	authenticateAs(c, 3)

	err := h.AddComment(c)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	mockRepo.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddCommentMissingPost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockRepo.On("AddComment", mock.Anything, "missing", mock.Anything).
		Return(nil, repositories.ErrPostNotFound)
	h := NewCommentHandler(mockRepo)

	body := strings.NewReader(`{"text":"hi"}`)
	c, _ := newTestContext(t, http.MethodPost, "/posts/missing/comments", "application/json", body)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	authenticateAs(c, 3)

	err := h.AddComment(c)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestListCommentsInsertionOrder(t *testing.T) {
	postID := primitive.NewObjectID()
	post := &models.Post{ID: postID, Comments: []models.Comment{
		{ID: primitive.NewObjectID(), Text: "first", CreatedAt: time.Now().Add(-2 * time.Hour)},
		{ID: primitive.NewObjectID(), Text: "second", CreatedAt: time.Now().Add(-1 * time.Hour)},
	}}
	mockRepo := new(MockPostRepository)
	mockRepo.On("GetPostByID", mock.Anything, postID.Hex()).Return(post, nil)
	h := NewCommentHandler(mockRepo)

	c, rec := newTestContext(t, http.MethodGet, "/posts/"+postID.Hex()+"/comments", "", nil)
	c.SetParamNames("id")
	c.SetParamValues(postID.Hex())

	assert.NoError(t, h.ListComments(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, "first"), strings.Index(body, "second"))
}

func TestDeleteCommentForbiddenForPostAuthor(t *testing.T) {
	postID := primitive.NewObjectID()
	commentID := primitive.NewObjectID()
	// Post belongs to user 1, the comment to user 3. Post authorship grants
	// no delete rights over other users' comments.
	post := &models.Post{
		ID:       postID,
		AuthorID: 1,
		Comments: []models.Comment{{ID: commentID, UserID: 3, Text: "hi"}},
	}
	mockRepo := new(MockPostRepository)
	mockRepo.On("GetPostByID", mock.Anything, postID.Hex()).Return(post, nil)
	h := NewCommentHandler(mockRepo)

	c, _ := newTestContext(t, http.MethodDelete, "/posts/x/comments/y", "", nil)
	c.SetParamNames("id", "comment_id")
	c.SetParamValues(postID.Hex(), commentID.Hex())
	authenticateAs(c, 1)

	err := h.DeleteComment(c)
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err))
	mockRepo.AssertNotCalled(t, "RemoveComment", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteCommentByItsAuthor(t *testing.T) {
	postID := primitive.NewObjectID()
	commentID := primitive.NewObjectID()
	post := &models.Post{
		ID:       postID,
		AuthorID: 1,
		Comments: []models.Comment{{ID: commentID, UserID: 3, Text: "hi"}},
	}
	mockRepo := new(MockPostRepository)
	mockRepo.On("GetPostByID", mock.Anything, postID.Hex()).Return(post, nil)
	mockRepo.On("RemoveComment", mock.Anything, postID.Hex(), commentID).
		Return(&models.Post{ID: postID, AuthorID: 1, Comments: []models.Comment{}}, nil)
	h := NewCommentHandler(mockRepo)

	c, rec := newTestContext(t, http.MethodDelete, "/posts/x/comments/y", "", nil)
	c.SetParamNames("id", "comment_id")
	c.SetParamValues(postID.Hex(), commentID.Hex())
	authenticateAs(c, 3)

	assert.NoError(t, h.DeleteComment(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	mockRepo.AssertExpectations(t)
}

func TestDeleteCommentUnknownID(t *testing.T) {
	postID := primitive.NewObjectID()
	post := &models.Post{ID: postID, AuthorID: 1, Comments: []models.Comment{}}
	mockRepo := new(MockPostRepository)
	mockRepo.On("GetPostByID", mock.Anything, postID.Hex()).Return(post, nil)
	h := NewCommentHandler(mockRepo)

	c, _ := newTestContext(t, http.MethodDelete, "/posts/x/comments/y", "", nil)
	c.SetParamNames("id", "comment_id")
	c.SetParamValues(postID.Hex(), primitive.NewObjectID().Hex())
	authenticateAs(c, 3)

	err := h.DeleteComment(c)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}
