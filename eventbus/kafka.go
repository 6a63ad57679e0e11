package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"careconnect/internal/logger"
)

// KafkaEventBus 는 confluent-kafka-go 기반 EventBus 구현체다.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string

	// produce 가 nil 이 아니면 Publish 대신 사용한다.
	produce func(ctx context.Context, topic string, event Event) error
}

// offsetStore 는 *kafka.Consumer 중 소비 위치를 다루는 부분이다.
type offsetStore interface {
	CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	SeekPartitions(partitions []kafka.TopicPartition) ([]kafka.TopicPartition, error)
}

// failureBackoff 는 재시도 예약/재주입 발행이 실패한 뒤 같은 메시지를 다시 읽기 전 대기 시간이다.
var failureBackoff = time.Second

func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer 생성 실패: %w", err)
	}

	// 전달 보고서 처리
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.ErrorWithFields("kafka delivery failed", logger.Fields{
						"topic_partition": ev.TopicPartition.String(),
						"error":           ev.TopicPartition.Error.Error(),
					})
				}
			case kafka.Error:
				logger.ErrorWithFields("kafka error", logger.Fields{"error": ev.Error()})
			}
		}
	}()

	return &KafkaEventBus{Producer: p, Brokers: brokers}, nil
}

func (k *KafkaEventBus) Close() {
	if k.Producer == nil {
		return
	}
	if remaining := k.Producer.Flush(5000); remaining > 0 {
		logger.WarnWithFields("kafka producer flush incomplete", logger.Fields{"remaining": remaining})
	}
	k.Producer.Close()
	logger.Log.Info("kafka producer closed")
}

func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("이벤트 마샬링 실패: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("메시지 발행 실패: %w", err)
	}

	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event: %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("메시지 전달 실패: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (k *KafkaEventBus) newConsumer(groupID string) (*kafka.Consumer, error) {
	return kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false,
		"partition.assignment.strategy": "range",
	})
}

// readMessage 는 타임아웃을 (nil, nil) 로 돌려준다. 치명적 오류만 error 로 반환한다.
func readMessage(c *kafka.Consumer) (*kafka.Message, error) {
	msg, err := c.ReadMessage(100 * time.Millisecond)
	if err == nil {
		return msg, nil
	}
	var kerr kafka.Error
	if errors.As(err, &kerr) {
		if kerr.Code() == kafka.ErrTimedOut {
			return nil, nil
		}
		if kerr.IsFatal() {
			return nil, err
		}
	}
	logger.WarnWithFields("kafka read failed", logger.Fields{"error": err.Error()})
	return nil, nil
}

func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("kafka consumer 생성 실패: %w", err)
	}
	defer c.Close()

	if err := c.SubscribeTopics([]string{topic.Base()}, nil); err != nil {
		return fmt.Errorf("토픽 구독 실패 %s: %w", topic.Base(), err)
	}
	logger.InfoWithFields("main consumer started", logger.Fields{"group_id": groupID, "topic": topic.Base()})

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("main consumer stopping")
			return ctx.Err()
		default:
		}

		msg, err := readMessage(c)
		if err != nil {
			return fmt.Errorf("메인 컨슈머 치명적 오류: %w", err)
		}
		if msg == nil {
			continue
		}

		k.handleMessage(ctx, c, topic, msg, handler)
	}
}

// handleMessage 는 메시지 하나를 처리하고 커밋한다.
// 재시도 예약에 실패하면 커밋하지 않고 소비 위치를 되돌려 같은 메시지를 다시 읽는다.
func (k *KafkaEventBus) handleMessage(ctx context.Context, c offsetStore, topic Topic, msg *kafka.Message, handler EventHandler) {
	var evt Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		logger.ErrorWithFields("invalid event payload, skipping", logger.Fields{
			"topic": topicName(msg),
			"error": err.Error(),
		})
		commit(c, msg)
		return
	}
	if evt.MaxRetry <= 0 || evt.MaxRetry > len(RetryDelays) {
		evt.MaxRetry = len(RetryDelays)
	}

	logger.DebugWithFields("event received", logger.Fields{
		"event_id":   evt.ID,
		"event_type": evt.Type,
		"retry":      evt.Retry,
	})

	if herr := handler(ctx, evt); herr != nil {
		if err := k.scheduleRetry(ctx, topic, evt, herr); err != nil {
			logger.ErrorWithFields("retry schedule failed, offset not committed", logger.Fields{
				"event_id": evt.ID,
				"error":    err.Error(),
			})
			rewind(c, msg)
			pause(ctx, failureBackoff)
			return
		}
	}

	commit(c, msg)
}

// scheduleRetry 는 실패한 이벤트를 다음 재시도 토픽에, 한도를 넘었으면 DLQ 에 발행한다.
func (k *KafkaEventBus) scheduleRetry(ctx context.Context, topic Topic, evt Event, cause error) error {
	evt.LastError = cause.Error()
	next := evt.Retry + 1

	if next > evt.MaxRetry {
		logger.ErrorWithFields("max retry exceeded, sending to dlq", logger.Fields{
			"event_id": evt.ID,
			"dlq":      topic.DLQ(),
			"error":    cause.Error(),
		})
		if err := k.publish(ctx, topic.DLQ(), evt); err != nil {
			return fmt.Errorf("%w: %v", ErrRetryScheduleFailed, err)
		}
		return nil
	}

	retryTopic, err := topic.GetRetryTopic(next)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRetryScheduleFailed, err)
	}
	evt.Retry = next
	logger.WarnWithFields("event failed, retry scheduled", logger.Fields{
		"event_id":    evt.ID,
		"retry":       evt.Retry,
		"max_retry":   evt.MaxRetry,
		"retry_topic": retryTopic,
		"error":       cause.Error(),
	})
	if err := k.publish(ctx, retryTopic, evt); err != nil {
		return fmt.Errorf("%w: %v", ErrRetryScheduleFailed, err)
	}
	return nil
}

func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("kafka 재시도 재주입기 생성 실패: %w", err)
	}
	defer c.Close()

	retryTopics := topic.GetRetryTopics()
	if err := c.SubscribeTopics(retryTopics, nil); err != nil {
		return fmt.Errorf("재시도 토픽 구독 실패 %v: %w", retryTopics, err)
	}
	logger.InfoWithFields("retry reinjector started", logger.Fields{"group_id": groupID, "topics": retryTopics})

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("retry reinjector stopping")
			return ctx.Err()
		default:
		}

		msg, err := readMessage(c)
		if err != nil {
			return fmt.Errorf("재시도 재주입 컨슈머 치명적 오류: %w", err)
		}
		if msg == nil {
			continue
		}

		k.reinjectMessage(ctx, c, topic, msg)
	}
}

// reinjectMessage 는 지연 시간이 지난 재시도 메시지를 메인 토픽으로 다시 발행하고 커밋한다.
// 아직 이르거나 발행에 실패하면 커밋하지 않고 소비 위치를 되돌린다.
func (k *KafkaEventBus) reinjectMessage(ctx context.Context, c offsetStore, topic Topic, msg *kafka.Message) {
	name := topicName(msg)
	delay, ok := ParseRetryDelay(name)
	if !ok {
		logger.ErrorWithFields("unparsable retry topic, skipping", logger.Fields{"topic": name})
		commit(c, msg)
		return
	}

	if wait := readyIn(msg.Timestamp, delay, time.Now()); wait > 0 {
		pause(ctx, wait)
		rewind(c, msg)
		return
	}

	var evt Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		logger.ErrorWithFields("invalid retry payload, skipping", logger.Fields{"topic": name, "error": err.Error()})
		commit(c, msg)
		return
	}

	if err := k.publish(ctx, topic.Base(), evt); err != nil {
		logger.ErrorWithFields("reinject failed, offset not committed", logger.Fields{
			"event_id": evt.ID,
			"error":    err.Error(),
		})
		rewind(c, msg)
		pause(ctx, failureBackoff)
		return
	}
	logger.InfoWithFields("event reinjected", logger.Fields{
		"event_id": evt.ID,
		"from":     name,
		"to":       topic.Base(),
		"retry":    evt.Retry,
	})

	commit(c, msg)
}

func (k *KafkaEventBus) publish(ctx context.Context, topic string, event Event) error {
	if k.produce != nil {
		return k.produce(ctx, topic, event)
	}
	return k.Publish(ctx, topic, event)
}

func commit(c offsetStore, msg *kafka.Message) {
	if _, err := c.CommitMessage(msg); err != nil {
		logger.ErrorWithFields("offset commit failed", logger.Fields{"error": err.Error()})
	}
}

// rewind 는 msg 의 오프셋으로 소비 위치를 되돌려 다음 읽기에서 같은 메시지를 받게 한다.
func rewind(c offsetStore, msg *kafka.Message) {
	if _, err := c.SeekPartitions([]kafka.TopicPartition{msg.TopicPartition}); err != nil {
		logger.WarnWithFields("seek failed", logger.Fields{"topic": topicName(msg), "error": err.Error()})
	}
}

func topicName(msg *kafka.Message) string {
	if msg.TopicPartition.Topic == nil {
		return ""
	}
	return *msg.TopicPartition.Topic
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// readyIn 은 메시지가 재주입 가능해질 때까지 남은 대기 시간을 [50ms, 500ms] 로 잘라 반환한다.
// 이미 준비됐으면 0 이다.
func readyIn(producedAt time.Time, delay time.Duration, now time.Time) time.Duration {
	readyAt := producedAt.Add(delay)
	if !now.Before(readyAt) {
		return 0
	}
	wait := readyAt.Sub(now)
	if wait > 500*time.Millisecond {
		return 500 * time.Millisecond
	}
	if wait < 50*time.Millisecond {
		return 50 * time.Millisecond
	}
	return wait
}
