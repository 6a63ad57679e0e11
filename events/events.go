package events

import (
	"time"

	"careconnect/internal/trace"
)

type EventType string

const (
	// 워처가 새 블로그 글을 발견했을 때
	PostPublished EventType = "post.published"
	// 데모 신청 폼이 저장됐을 때. notifier 가 메일을 보낸다.
	DemoRequested EventType = "demo.requested"
)

const schemaVersion = "1"

// BaseEvent 모든 이벤트의 공통 필드
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // "api", "watcher"
	Version   string    `json:"version"`
}

func NewBaseEvent(t EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        trace.GenerateID(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   schemaVersion,
	}
}

type PostPublishedEvent struct {
	BaseEvent
	PostID       int64     `json:"post_id"`
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
}

type DemoRequestedEvent struct {
	BaseEvent
	RequestID    string `json:"request_id"`
	Name         string `json:"name"`
	HospitalName string `json:"hospital_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Message      string `json:"message,omitempty"`
}
