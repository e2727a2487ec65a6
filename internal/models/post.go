package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReactionTypes is the fixed set of emoji a user may react with.
var ReactionTypes = []string{"👍", "❤️", "😂", "😭", "😡"}

// IsValidReactionType reports whether t is one of ReactionTypes.
func IsValidReactionType(t string) bool {
	for _, rt := range ReactionTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// Reaction is a single user's emoji reaction to a post. A post holds at
// most one reaction per user.
type Reaction struct {
	UserID uint   `json:"user_id" bson:"user_id"`
	Type   string `json:"type" bson:"type"`
}

// Comment lives embedded in its parent post. The comments array keeps
// insertion order; deletion removes the matching element only.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	Likes     []uint             `json:"likes" bson:"likes"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Post is a blog post stored in MongoDB. Likes, reactions and comments are
// embedded so every engagement mutation is a single document update; the
// version field guards the optimistic update loop in the repository.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	ImagePath string             `json:"image_path,omitempty" bson:"image_path,omitempty"`
	Tags      []string           `json:"tags" bson:"tags"`
	Likes     []uint             `json:"likes" bson:"likes"`
	Reactions []Reaction         `json:"reactions" bson:"reactions"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	Version   int64              `json:"-" bson:"version"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ToggleLike flips userID's membership in the post's like set and reports
// the resulting membership. The likes array never holds a user twice.
func (p *Post) ToggleLike(userID uint) (liked bool) {
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return false
		}
	}
	p.Likes = append(p.Likes, userID)
	return true
}

// ApplyReaction records userID's reaction of the given type. Reacting with
// the same type again removes the entry (removed=true); a different type
// overwrites the existing entry in place; otherwise a new entry is appended.
func (p *Post) ApplyReaction(userID uint, reactionType string) (removed bool) {
	for i := range p.Reactions {
		if p.Reactions[i].UserID == userID {
			if p.Reactions[i].Type == reactionType {
				p.Reactions = append(p.Reactions[:i], p.Reactions[i+1:]...)
				return true
			}
			p.Reactions[i].Type = reactionType
			return false
		}
	}
	p.Reactions = append(p.Reactions, Reaction{UserID: userID, Type: reactionType})
	return false
}

// CommentByID returns a pointer into the post's comments array, or nil.
func (p *Post) CommentByID(id primitive.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// RemoveComment deletes the comment with the given ID, keeping the relative
// order of the remaining comments. It reports whether a comment was removed.
func (p *Post) RemoveComment(id primitive.ObjectID) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleLike flips userID's membership in the comment's like set.
func (c *Comment) ToggleLike(userID uint) (liked bool) {
	for i, id := range c.Likes {
		if id == userID {
			c.Likes = append(c.Likes[:i], c.Likes[i+1:]...)
			return false
		}
	}
	c.Likes = append(c.Likes, userID)
	return true
}

// CreatePostRequest defines the fields for creating a new post. With an
// image attachment the same fields arrive as multipart form values.
type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required,min=1"`
	Content string   `json:"content" validate:"required,min=1"`
	Tags    []string `json:"tags"`
}

// UpdatePostRequest defines the mutable post fields. Pointers distinguish
// "field omitted" from "field set to empty".
type UpdatePostRequest struct {
	Title       *string   `json:"title"`
	Content     *string   `json:"content"`
	Tags        *[]string `json:"tags"`
	RemoveImage bool      `json:"removeImage"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

// ReactionRequest defines the request body for reacting to a post
type ReactionRequest struct {
	Type string `json:"type" validate:"required"`
}
