package repositories

import (
	"testing"
	"time"

	"github.com/asfak07/blognest/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Every writer of a post document must bump the version, and each write may
// only replace the array it actually changed. Otherwise an interleaved
// comment insert could pass an engagement cycle's version guard and be
// overwritten by a stale comment list.

func TestEngagementUpdateReplacesOnlyTouchedArray(t *testing.T) {
	now := time.Now()
	update := engagementUpdate(bson.M{"likes": []uint{1, 2}}, now)

	set := update["$set"].(bson.M)
	assert.Equal(t, []uint{1, 2}, set["likes"])
	assert.Equal(t, now, set["updated_at"])
	assert.NotContains(t, set, "reactions")
	assert.NotContains(t, set, "comments")
}

func TestEngagementUpdateBumpsVersion(t *testing.T) {
	update := engagementUpdate(bson.M{"reactions": []models.Reaction{}}, time.Now())

	inc := update["$inc"].(bson.M)
	assert.Equal(t, 1, inc["version"])
}

func TestCommentAppendUpdateBumpsVersionAndTimestamp(t *testing.T) {
	now := time.Now()
	comment := models.Comment{ID: primitive.NewObjectID(), UserID: 7, Text: "hi"}
	update := commentAppendUpdate(comment, now)

	push := update["$push"].(bson.M)
	assert.Equal(t, comment, push["comments"])

	set := update["$set"].(bson.M)
	assert.Equal(t, now, set["updated_at"])

	inc := update["$inc"].(bson.M)
	assert.Equal(t, 1, inc["version"])
}

func TestCommentRemoveUpdateBumpsVersionAndTimestamp(t *testing.T) {
	now := time.Now()
	commentID := primitive.NewObjectID()
	update := commentRemoveUpdate(commentID, now)

	pull := update["$pull"].(bson.M)
	assert.Equal(t, bson.M{"_id": commentID}, pull["comments"])

	set := update["$set"].(bson.M)
	assert.Equal(t, now, set["updated_at"])

	inc := update["$inc"].(bson.M)
	assert.Equal(t, 1, inc["version"])
}
