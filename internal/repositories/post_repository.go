package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/asfak07/blognest/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Engagement mutations retry this many times on a version conflict before
// giving up with ErrUpdateConflict.
const engagementMaxRetries = 5

// TopPost is the analytics projection of a post ranked by comment count.
type TopPost struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Title        string             `json:"title" bson:"title"`
	CommentCount int32              `json:"commentCount" bson:"commentCount"`
}

// AuthorPostCount is the analytics projection of posts grouped per author.
type AuthorPostCount struct {
	AuthorID   uint  `json:"author_id" bson:"_id"`
	TotalPosts int32 `json:"totalPosts" bson:"totalPosts"`
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByAuthorID(ctx context.Context, authorID uint) ([]models.Post, error)
	SearchPostsByTag(ctx context.Context, tag string) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, id string, userID uint) (*models.Post, bool, error)
	ApplyReaction(ctx context.Context, id string, userID uint, reactionType string) (*models.Post, bool, error)
	AddComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error)
	RemoveComment(ctx context.Context, id string, commentID primitive.ObjectID) (*models.Post, error)
	ToggleCommentLike(ctx context.Context, id string, commentID primitive.ObjectID, userID uint) (*models.Post, bool, error)
	TopPostsByComments(ctx context.Context, limit int64) ([]TopPost, error)
	PostCountsByAuthor(ctx context.Context) ([]AuthorPostCount, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Tags == nil {
		post.Tags = []string{}
	}
	post.Likes = []uint{}
	post.Reactions = []models.Reaction{}
	post.Comments = []models.Comment{}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetAllPosts retrieves all posts from MongoDB, newest first
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.findPosts(ctx, bson.D{})
}

// GetPostsByAuthorID retrieves posts by a specific author, newest first
func (r *MongoPostRepository) GetPostsByAuthorID(ctx context.Context, authorID uint) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"author_id": authorID})
}

// SearchPostsByTag retrieves posts whose tag set contains the exact tag.
// Matching is case-sensitive.
func (r *MongoPostRepository) SearchPostsByTag(ctx context.Context, tag string) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"tags": tag})
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter interface{}) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost writes the post's mutable fields (title, content, tags, image
// path) back to MongoDB. Embedded likes, reactions and comments are owned by
// the engagement methods and are deliberately left out of the update.
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":      post.Title,
			"content":    post.Content,
			"tags":       post.Tags,
			"image_path": post.ImagePath,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB. The embedded comments go
// with the document.
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// ToggleLike flips userID's like on the post and returns the updated post
// along with the resulting membership.
func (r *MongoPostRepository) ToggleLike(ctx context.Context, id string, userID uint) (*models.Post, bool, error) {
	var liked bool
	post, err := r.updateEngagement(ctx, id, func(p *models.Post) (bson.M, error) {
		liked = p.ToggleLike(userID)
		return bson.M{"likes": p.Likes}, nil
	})
	return post, liked, err
}

// ApplyReaction records userID's reaction on the post and reports whether
// the entry was removed (same-type toggle off).
func (r *MongoPostRepository) ApplyReaction(ctx context.Context, id string, userID uint, reactionType string) (*models.Post, bool, error) {
	var removed bool
	post, err := r.updateEngagement(ctx, id, func(p *models.Post) (bson.M, error) {
		removed = p.ApplyReaction(userID, reactionType)
		return bson.M{"reactions": p.Reactions}, nil
	})
	return post, removed, err
}

// ToggleCommentLike flips userID's like on one of the post's comments.
func (r *MongoPostRepository) ToggleCommentLike(ctx context.Context, id string, commentID primitive.ObjectID, userID uint) (*models.Post, bool, error) {
	var liked bool
	post, err := r.updateEngagement(ctx, id, func(p *models.Post) (bson.M, error) {
		comment := p.CommentByID(commentID)
		if comment == nil {
			return nil, ErrCommentNotFound
		}
		liked = comment.ToggleLike(userID)
		return bson.M{"comments": p.Comments}, nil
	})
	return post, liked, err
}

// engagementUpdate builds the guarded write for one engagement transition.
// Only the array the transition touched is replaced, so a concurrent writer
// of a different array can at worst force a retry, never be overwritten.
func engagementUpdate(changed bson.M, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	for field, value := range changed {
		set[field] = value
	}
	return bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
}

// updateEngagement runs an optimistic read-modify-write cycle: load the
// post, apply the in-memory transition, then write the touched array back
// guarded by the document version. Every writer of the document, including
// the comment append/remove paths, bumps the version, so any concurrent
// write makes the guarded update match nothing and the cycle retries.
func (r *MongoPostRepository) updateEngagement(ctx context.Context, id string, apply func(*models.Post) (bson.M, error)) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	for attempt := 0; attempt < engagementMaxRetries; attempt++ {
		var post models.Post
		if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrPostNotFound
			}
			return nil, err
		}

		changed, err := apply(&post)
		if err != nil {
			return nil, err
		}

		post.UpdatedAt = time.Now()
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": objID, "version": post.Version},
			engagementUpdate(changed, post.UpdatedAt),
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			post.Version++
			return &post, nil
		}
		// Lost the race, reload and retry
	}
	return nil, ErrUpdateConflict
}

// commentAppendUpdate builds the write that pushes one comment. It bumps the
// document version so an in-flight engagement cycle that read the old
// comment list fails its guard instead of writing the list back without the
// new comment.
func commentAppendUpdate(comment models.Comment, now time.Time) bson.M {
	return bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": now},
		"$inc":  bson.M{"version": 1},
	}
}

// commentRemoveUpdate builds the write that pulls one comment by ID. Bumps
// the version for the same reason as commentAppendUpdate.
func commentRemoveUpdate(commentID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID}},
		"$set":  bson.M{"updated_at": now},
		"$inc":  bson.M{"version": 1},
	}
}

// AddComment appends a comment to the end of the post's comment list and
// returns the updated post.
func (r *MongoPostRepository) AddComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		commentAppendUpdate(comment, time.Now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// RemoveComment pulls exactly the comment with the given ID out of the
// post's comment list, preserving the order of the rest.
func (r *MongoPostRepository) RemoveComment(ctx context.Context, id string, commentID primitive.ObjectID) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		commentRemoveUpdate(commentID, time.Now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// TopPostsByComments returns the posts with the most comments.
func (r *MongoPostRepository) TopPostsByComments(ctx context.Context, limit int64) ([]TopPost, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{"title": 1, "commentCount": bson.M{"$size": "$comments"}}}},
		{{Key: "$sort", Value: bson.M{"commentCount": -1}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating top posts: %w", err)
	}
	defer cursor.Close(ctx)

	results := []TopPost{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// PostCountsByAuthor returns how many posts each author has written.
func (r *MongoPostRepository) PostCountsByAuthor(ctx context.Context) ([]AuthorPostCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$author_id", "totalPosts": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"totalPosts": -1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating posts per author: %w", err)
	}
	defer cursor.Close(ctx)

	results := []AuthorPostCount{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
