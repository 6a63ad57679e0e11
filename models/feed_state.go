package models

import "time"

// FeedState 는 피드별로 마지막으로 확인한 최신 글 번호를 기억한다.
// Collection: feed_states
type FeedState struct {
	FeedURL    string    `bson:"feed_url" json:"feed_url"`
	LastPostID int64     `bson:"last_post_id" json:"last_post_id"`
	CheckedAt  time.Time `bson:"checked_at" json:"checked_at"`
	ChangedAt  time.Time `bson:"changed_at" json:"changed_at"`
}
