package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusFlags 는 워처가 게시글에 대해 수행한 후처리 단계다.
type StatusFlags struct {
	Classified bool `bson:"classified" json:"classified"`
	Announced  bool `bson:"announced" json:"announced"`
}

// Post 는 워처가 본 블로그 글의 스냅샷이다.
// Collection: posts (post_id unique)
type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
	Status       StatusFlags        `bson:"status" json:"status"`
	PostID       int64              `bson:"post_id" json:"post_id"`
	Slug         string             `bson:"slug" json:"slug"`
	Title        string             `bson:"title" json:"title"`
	Link         string             `bson:"link" json:"link"`
	Category     string             `bson:"category" json:"category"`
	Author       string             `bson:"author" json:"author"`
	PublishedAt  time.Time          `bson:"published_at" json:"published_at"`
	ThumbnailURL string             `bson:"thumbnail_url" json:"thumbnail_url"`
	AISummary    AISummary          `bson:"aisummary" json:"aisummary"`
}

// AISummary 는 LLM 분류 결과다. tags 는 /api/posts 응답의 tags 로 노출된다.
type AISummary struct {
	Categories  []string  `bson:"categories" json:"categories"`
	Tags        []string  `bson:"tags" json:"tags"`
	Summary     string    `bson:"summary" json:"summary"`
	ModelName   string    `bson:"model_name" json:"model_name"`
	GeneratedAt time.Time `bson:"generated_at" json:"generated_at"`
}
