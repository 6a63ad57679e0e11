package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"careconnect/eventbus"
	"careconnect/events"
	"careconnect/mailer"
	"careconnect/models"
)

type memDeliveries struct {
	requests map[string]*models.DemoRequest
	updates  []models.DeliveryStatus
	findErr  error
}

func newMemDeliveries(reqs ...*models.DemoRequest) *memDeliveries {
	m := &memDeliveries{requests: map[string]*models.DemoRequest{}}
	for _, r := range reqs {
		m.requests[r.RequestID] = r
	}
	return m
}

func (m *memDeliveries) FindByRequestID(_ context.Context, requestID string) (*models.DemoRequest, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	r, ok := m.requests[requestID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return r, nil
}

func (m *memDeliveries) UpdateDelivery(_ context.Context, requestID string, status models.DeliveryStatus, messageID, lastError string) error {
	m.updates = append(m.updates, status)
	if r, ok := m.requests[requestID]; ok {
		r.Delivery = status
		r.MessageID = messageID
		r.LastError = lastError
	}
	return nil
}

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "<msg-1@mg>", nil
}

func demoEvent(requestID string) events.DemoRequestedEvent {
	evt := events.DemoRequestedEvent{
		BaseEvent:    events.NewBaseEvent(events.DemoRequested, "api"),
		RequestID:    requestID,
		Name:         "홍길동",
		HospitalName: "서울병원",
		Email:        "hong@example.com",
		Phone:        "010-1234-5678",
	}
	evt.Timestamp = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	return evt
}

func TestHandleDemoRequestedSendsAndMarksSent(t *testing.T) {
	store := newMemDeliveries(&models.DemoRequest{RequestID: "req-1", Delivery: models.DeliveryQueued})
	sender := &fakeSender{}
	svc := NewNotifyService(store, sender, "ops@careconnect.ai")

	err := svc.HandleDemoRequested(context.Background(), demoEvent("req-1"), eventbus.Event{ID: "req-1"})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ops@careconnect.ai", sender.sent[0].To)
	assert.Equal(t, "hong@example.com", sender.sent[0].ReplyTo)
	assert.Equal(t, models.DeliverySent, store.requests["req-1"].Delivery)
	assert.Equal(t, "<msg-1@mg>", store.requests["req-1"].MessageID)
}

func TestHandleDemoRequestedSkipsAlreadySent(t *testing.T) {
	store := newMemDeliveries(&models.DemoRequest{RequestID: "req-1", Delivery: models.DeliverySent})
	sender := &fakeSender{}
	svc := NewNotifyService(store, sender, "ops@careconnect.ai")

	err := svc.HandleDemoRequested(context.Background(), demoEvent("req-1"), eventbus.Event{ID: "req-1", Retry: 1})
	require.NoError(t, err)

	assert.Empty(t, sender.sent)
	assert.Empty(t, store.updates)
}

func TestHandleDemoRequestedMailFailureReturnsError(t *testing.T) {
	store := newMemDeliveries(&models.DemoRequest{RequestID: "req-1", Delivery: models.DeliveryQueued})
	svc := NewNotifyService(store, &fakeSender{err: errors.New("mailgun down")}, "ops@careconnect.ai")

	err := svc.HandleDemoRequested(context.Background(), demoEvent("req-1"), eventbus.Event{ID: "req-1"})
	require.Error(t, err)

	assert.Equal(t, models.DeliveryFailed, store.requests["req-1"].Delivery)
	assert.Equal(t, "mailgun down", store.requests["req-1"].LastError)
}

func TestHandleDemoRequestedUnknownRequestStillSends(t *testing.T) {
	store := newMemDeliveries()
	sender := &fakeSender{}
	svc := NewNotifyService(store, sender, "ops@careconnect.ai")

	require.NoError(t, svc.HandleDemoRequested(context.Background(), demoEvent("req-9"), eventbus.Event{ID: "req-9"}))
	assert.Len(t, sender.sent, 1)
}

func TestHandleDemoRequestedStoreError(t *testing.T) {
	store := newMemDeliveries()
	store.findErr = errors.New("mongo timeout")
	sender := &fakeSender{}
	svc := NewNotifyService(store, sender, "ops@careconnect.ai")

	err := svc.HandleDemoRequested(context.Background(), demoEvent("req-1"), eventbus.Event{ID: "req-1"})
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestRoutesDispatchesDemoEvents(t *testing.T) {
	sender := &fakeSender{}
	routes := NewNotifyService(nil, sender, "ops@careconnect.ai").Routes()

	evt, err := eventbus.NewJSONEvent("req-1", string(events.DemoRequested), demoEvent("req-1"), 3)
	require.NoError(t, err)
	require.NoError(t, routes.Handle(context.Background(), evt))
	assert.Len(t, sender.sent, 1)

	post, err := eventbus.NewJSONEvent("post-1", string(events.PostPublished), events.PostPublishedEvent{PostID: 1, Title: "새 글"}, 3)
	require.NoError(t, err)
	require.NoError(t, routes.Handle(context.Background(), post))
	assert.Len(t, sender.sent, 1)
}
