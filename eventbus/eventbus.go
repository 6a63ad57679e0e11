package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RetryDelays 는 재시도 횟수(1-based)별 지연 시간이다.
// 데모 신청 메일은 사람이 기다리고 있으므로 마지막 단계도 10분을 넘기지 않는다.
var RetryDelays = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// Topic 은 기본 토픽 이름과 그로부터 파생되는 재시도/DLQ 토픽 이름을 관리한다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ 는 DLQ 토픽 이름을 반환한다. (예: careconnect.site.events.dlq)
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

func (t Topic) retryTopicName(delay time.Duration) string {
	return fmt.Sprintf("%s.retry.%s", t.base, delay.String())
}

// GetRetryTopics 는 모든 재시도 토픽 이름을 반환한다.
func (t Topic) GetRetryTopics() []string {
	topics := make([]string, len(RetryDelays))
	for i, delay := range RetryDelays {
		topics[i] = t.retryTopicName(delay)
	}
	return topics
}

// GetRetryTopic 은 다음 재시도 횟수(1-based)에 해당하는 토픽 이름을 반환한다.
func (t Topic) GetRetryTopic(retryCount int) (string, error) {
	if retryCount <= 0 || retryCount > len(RetryDelays) {
		return "", ErrMaxRetryExceeded
	}
	return t.retryTopicName(RetryDelays[retryCount-1]), nil
}

// ParseRetryDelay 는 "<base>.retry.<duration>" 형식의 토픽 이름에서 지연 시간을 꺼낸다.
// 예: "careconnect.site.events.retry.1m0s" -> 1m0s
func ParseRetryDelay(name string) (time.Duration, bool) {
	idx := strings.LastIndex(name, ".retry.")
	if idx == -1 || idx+7 >= len(name) {
		return 0, false
	}
	d, err := time.ParseDuration(name[idx+7:])
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// Event 는 Kafka 메시지 값으로 쓰이는 봉투다.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"` // 현재 재시도 횟수 (0부터)
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

type EventHandler func(ctx context.Context, event Event) error

// EventBus 는 이벤트 발행/구독 추상화다.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe 는 기본 토픽을 구독해 handler 를 실행한다. 실패하면 재시도 토픽 또는 DLQ 로 보낸다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartRetryReinjector 는 재시도 토픽을 구독해 지연 시간이 지난 이벤트를 기본 토픽으로 되돌린다.
	StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error
	Close()
}

var ErrMaxRetryExceeded = errors.New("최대 재시도 횟수 초과")

var ErrRetryScheduleFailed = errors.New("재시도 또는 DLQ 발행 실패")
