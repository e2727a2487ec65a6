package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/asfak07/blognest/backend/internal/models"
	"github.com/asfak07/blognest/backend/internal/repositories"
	"github.com/asfak07/blognest/backend/internal/storage"
	"github.com/asfak07/blognest/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockPostRepository is a testify mock of repositories.PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) GetPostsByAuthorID(ctx context.Context, authorID uint) ([]models.Post, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) SearchPostsByTag(ctx context.Context, tag string) ([]models.Post, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	args := m.Called(ctx, id, post)
	return args.Error(0)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) ToggleLike(ctx context.Context, id string, userID uint) (*models.Post, bool, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Post), args.Bool(1), args.Error(2)
}

func (m *MockPostRepository) ApplyReaction(ctx context.Context, id string, userID uint, reactionType string) (*models.Post, bool, error) {
	args := m.Called(ctx, id, userID, reactionType)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Post), args.Bool(1), args.Error(2)
}

func (m *MockPostRepository) AddComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error) {
	args := m.Called(ctx, id, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) RemoveComment(ctx context.Context, id string, commentID primitive.ObjectID) (*models.Post, error) {
	args := m.Called(ctx, id, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) ToggleCommentLike(ctx context.Context, id string, commentID primitive.ObjectID, userID uint) (*models.Post, bool, error) {
	args := m.Called(ctx, id, commentID, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Post), args.Bool(1), args.Error(2)
}

func (m *MockPostRepository) TopPostsByComments(ctx context.Context, limit int64) ([]repositories.TopPost, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.TopPost), args.Error(1)
}

func (m *MockPostRepository) PostCountsByAuthor(ctx context.Context) ([]repositories.AuthorPostCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.AuthorPostCount), args.Error(1)
}

var _ repositories.PostRepository = (*MockPostRepository)(nil)

// MockUserRepository is a testify mock of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	args := m.Called(firebaseUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

var _ repositories.UserRepository = (*MockUserRepository)(nil)

// MockBlobStore is a testify mock of storage.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Save(file *multipart.FileHeader, name string) error {
	args := m.Called(file, name)
	return args.Error(0)
}

func (m *MockBlobStore) Delete(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

var _ storage.BlobStore = (*MockBlobStore)(nil)

// newTestContext builds an echo context with the request validator wired in.
func newTestContext(t *testing.T, method, target, contentType string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// authenticateAs stores JWT claims in the context the way the auth
// middleware does.
func authenticateAs(c echo.Context, userID uint) {
	c.Set("user", &models.JwtCustomClaims{UserID: userID})
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}
