package main

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"careconnect/eventbus"
	"careconnect/events"
	"careconnect/internal/logger"
	"careconnect/mailer"
	"careconnect/models"
)

// DeliveryStore 는 repositories.DemoRequestRepository 다.
type DeliveryStore interface {
	FindByRequestID(ctx context.Context, requestID string) (*models.DemoRequest, error)
	UpdateDelivery(ctx context.Context, requestID string, status models.DeliveryStatus, messageID, lastError string) error
}

// NotifyService 는 버스로 들어온 데모 신청을 운영팀 메일로 보낸다.
type NotifyService struct {
	store    DeliveryStore
	sender   mailer.Sender
	notifyTo string
}

func NewNotifyService(store DeliveryStore, sender mailer.Sender, notifyTo string) *NotifyService {
	return &NotifyService{store: store, sender: sender, notifyTo: notifyTo}
}

// Routes 는 이 서비스가 처리하는 이벤트 타입을 등록한 Router 를 반환한다.
func (s *NotifyService) Routes() eventbus.Router {
	r := eventbus.Router{}
	eventbus.On(r, string(events.DemoRequested), s.HandleDemoRequested)
	eventbus.On(r, string(events.PostPublished), s.HandlePostPublished)
	return r
}

// HandleDemoRequested 는 이미 발송된 신청이면 건너뛴다. 발송 실패는 에러로 돌려 재시도 토픽으로 보낸다.
func (s *NotifyService) HandleDemoRequested(ctx context.Context, evt events.DemoRequestedEvent, meta eventbus.Event) error {
	fields := logger.Fields{
		"request_id": evt.RequestID,
		"event_id":   meta.ID,
		"retry":      meta.Retry,
	}

	if s.store != nil {
		existing, err := s.store.FindByRequestID(ctx, evt.RequestID)
		switch {
		case err == nil && existing.Delivery == models.DeliverySent:
			logger.InfoWithFields("demo request already delivered, skipping", fields)
			return nil
		case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
			return fmt.Errorf("load demo request: %w", err)
		}
	}

	msg, err := mailer.DemoRequestMessage(s.notifyTo, mailer.DemoRequest{
		RequestID:    evt.RequestID,
		Name:         evt.Name,
		HospitalName: evt.HospitalName,
		Email:        evt.Email,
		Phone:        evt.Phone,
		Message:      evt.Message,
		SubmittedAt:  evt.Timestamp,
	})
	if err != nil {
		return err
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		s.mark(ctx, evt.RequestID, models.DeliveryFailed, "", err.Error())
		fields["error"] = err.Error()
		logger.WarnWithFields("demo request mail failed", fields)
		return err
	}

	s.mark(ctx, evt.RequestID, models.DeliverySent, id, "")
	fields["message_id"] = id
	logger.InfoWithFields("demo request mail sent", fields)
	return nil
}

// HandlePostPublished 는 새 글 알림을 기록만 한다.
func (s *NotifyService) HandlePostPublished(ctx context.Context, evt events.PostPublishedEvent, meta eventbus.Event) error {
	logger.InfoWithFields("new blog post published", logger.Fields{
		"post_id":      evt.PostID,
		"title":        evt.Title,
		"link":         evt.Link,
		"published_at": evt.PublishedAt,
		"event_id":     meta.ID,
	})
	return nil
}

func (s *NotifyService) mark(ctx context.Context, requestID string, status models.DeliveryStatus, messageID, lastError string) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdateDelivery(ctx, requestID, status, messageID, lastError); err != nil {
		logger.WarnWithFields("demo delivery status update failed", logger.Fields{
			"request_id": requestID,
			"status":     string(status),
			"error":      err.Error(),
		})
	}
}
