package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"careconnect/models"
)

type FeedStateRepository struct {
	col *mongo.Collection
}

func NewFeedStateRepository(db *mongo.Database) *FeedStateRepository {
	return &FeedStateRepository{col: db.Collection("feed_states")}
}

// Get 은 피드 상태를 반환한다. 처음 보는 피드면 (nil, nil).
func (r *FeedStateRepository) Get(ctx context.Context, feedURL string) (*models.FeedState, error) {
	var s models.FeedState
	err := r.col.FindOne(ctx, bson.M{"feed_url": feedURL}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Touch 는 변경 없이 확인 시각만 갱신한다.
func (r *FeedStateRepository) Touch(ctx context.Context, feedURL string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"feed_url": feedURL},
		bson.M{"$set": bson.M{"checked_at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// SetLastPostID 는 최신 글 번호와 변경 시각을 기록한다.
func (r *FeedStateRepository) SetLastPostID(ctx context.Context, feedURL string, postID int64) error {
	now := time.Now()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"feed_url": feedURL},
		bson.M{"$set": bson.M{
			"last_post_id": postID,
			"checked_at":   now,
			"changed_at":   now,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
