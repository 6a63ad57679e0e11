package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"careconnect/internal/trace"
)

// NewJSONEvent 는 payload 를 JSON 으로 인코딩한 Event 를 만든다.
// id 가 비어 있으면 새 ID 를 생성한다.
func NewJSONEvent(id, eventType string, payload any, maxRetry int) (Event, error) {
	if maxRetry <= 0 || maxRetry > len(RetryDelays) {
		maxRetry = len(RetryDelays)
	}
	if id == "" {
		id = trace.GenerateID()
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("payload marshal 실패: %w", err)
	}
	return Event{
		ID:       id,
		Type:     eventType,
		Payload:  b,
		MaxRetry: maxRetry,
	}, nil
}

// DecodeJSON 은 Event.Payload 를 T 로 언마샬한다.
func DecodeJSON[T any](evt Event) (T, error) {
	var out T
	if err := json.Unmarshal(evt.Payload, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("payload unmarshal 실패: %w", err)
	}
	return out, nil
}

// Router 는 Event.Type 별 핸들러 묶음이다. 등록되지 않은 타입은 무시된다.
type Router map[string]EventHandler

func (r Router) Handle(ctx context.Context, evt Event) error {
	h, ok := r[evt.Type]
	if !ok {
		return nil
	}
	return h(ctx, evt)
}

// On 은 JSON payload 를 자동으로 디코딩하는 핸들러를 등록한다.
func On[T any](r Router, eventType string, handler func(ctx context.Context, payload T, meta Event) error) {
	r[eventType] = func(ctx context.Context, evt Event) error {
		v, err := DecodeJSON[T](evt)
		if err != nil {
			return err
		}
		return handler(ctx, v, evt)
	}
}
