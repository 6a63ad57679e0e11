package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"careconnect/models"
)

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection("posts")}
}

// UpsertByPostID 는 post_id 기준으로 게시글을 갱신하거나 새로 만든다.
// status, aisummary 는 기존 값을 유지하기 위해 insert 시에만 기록한다.
func (r *PostRepository) UpsertByPostID(ctx context.Context, p *models.Post) (*mongo.UpdateResult, error) {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	filter := bson.M{"post_id": p.PostID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"created_at": p.CreatedAt,
			"status":     p.Status,
			"aisummary":  p.AISummary,
		},
		"$set": bson.M{
			"updated_at":    p.UpdatedAt,
			"slug":          p.Slug,
			"title":         p.Title,
			"link":          p.Link,
			"category":      p.Category,
			"author":        p.Author,
			"published_at":  p.PublishedAt,
			"thumbnail_url": p.ThumbnailURL,
		},
	}
	opts := options.Update().SetUpsert(true)
	return r.col.UpdateOne(ctx, filter, update, opts)
}

// UpdateAISummary 는 분류 결과를 기록하고 classified 플래그를 세운다.
func (r *PostRepository) UpdateAISummary(ctx context.Context, postID int64, summary models.AISummary) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"post_id": postID}, bson.M{
		"$set": bson.M{
			"aisummary":         summary,
			"status.classified": true,
			"updated_at":        time.Now(),
		},
	})
	return err
}

func (r *PostRepository) SetAnnounced(ctx context.Context, postID int64) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"post_id": postID}, bson.M{
		"$set": bson.M{"status.announced": true, "updated_at": time.Now()},
	})
	return err
}

// FindUnclassified 는 아직 분류되지 않은 게시글을 최신순으로 limit 개 반환한다.
func (r *PostRepository) FindUnclassified(ctx context.Context, limit int64) ([]models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{"status.classified": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// FindUnannounced 는 post.published 를 아직 발행하지 못한 게시글을 오래된 순으로 limit 개 반환한다.
func (r *PostRepository) FindUnannounced(ctx context.Context, limit int64) ([]models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "post_id", Value: 1}}).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{"status.announced": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// TagsByPostIDs 는 post_id -> aisummary.tags 맵을 반환한다. 태그가 없는 글은 맵에 넣지 않는다.
func (r *PostRepository) TagsByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"post_id": 1, "aisummary.tags": 1})
	cur, err := r.col.Find(ctx, bson.M{"post_id": bson.M{"$in": postIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var p models.Post
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		if len(p.AISummary.Tags) > 0 {
			out[p.PostID] = p.AISummary.Tags
		}
	}
	return out, cur.Err()
}
