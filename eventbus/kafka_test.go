package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOffsets struct {
	commits []kafka.Offset
	seeks   []kafka.TopicPartition
}

func (f *fakeOffsets) CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error) {
	f.commits = append(f.commits, m.TopicPartition.Offset)
	return nil, nil
}

func (f *fakeOffsets) SeekPartitions(partitions []kafka.TopicPartition) ([]kafka.TopicPartition, error) {
	f.seeks = append(f.seeks, partitions...)
	return partitions, nil
}

type published struct {
	topic string
	event Event
}

func busWithProducer(err error, out *[]published) *KafkaEventBus {
	return &KafkaEventBus{produce: func(ctx context.Context, topic string, event Event) error {
		if err != nil {
			return err
		}
		*out = append(*out, published{topic: topic, event: event})
		return nil
	}}
}

func testMessage(t *testing.T, topic string, offset kafka.Offset, evt Event) *kafka.Message {
	t.Helper()
	data, err := json.Marshal(evt)
	require.NoError(t, err)
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0, Offset: offset},
		Value:          data,
		Timestamp:      time.Now().Add(-time.Hour),
	}
}

func noBackoff(t *testing.T) {
	prev := failureBackoff
	failureBackoff = 0
	t.Cleanup(func() { failureBackoff = prev })
}

func failingHandler(ctx context.Context, evt Event) error { return errors.New("mailgun down") }

func TestHandleMessageSchedulesRetryAndCommits(t *testing.T) {
	topic := NewTopic("careconnect.site.events")
	var out []published
	bus := busWithProducer(nil, &out)
	offsets := &fakeOffsets{}

	bus.handleMessage(context.Background(), offsets, topic, testMessage(t, topic.Base(), 7, Event{ID: "req-1", Type: "demo.requested"}), failingHandler)

	require.Len(t, out, 1)
	first, _ := topic.GetRetryTopic(1)
	assert.Equal(t, first, out[0].topic)
	assert.Equal(t, 1, out[0].event.Retry)
	assert.Equal(t, "mailgun down", out[0].event.LastError)
	assert.Equal(t, []kafka.Offset{7}, offsets.commits)
	assert.Empty(t, offsets.seeks)
}

func TestHandleMessageRewindsWhenRetryCannotBeScheduled(t *testing.T) {
	noBackoff(t)
	topic := NewTopic("careconnect.site.events")
	var out []published
	bus := busWithProducer(errors.New("broker unavailable"), &out)
	offsets := &fakeOffsets{}

	bus.handleMessage(context.Background(), offsets, topic, testMessage(t, topic.Base(), 7, Event{ID: "req-1"}), failingHandler)

	assert.Empty(t, offsets.commits, "실패한 메시지는 커밋하지 않는다")
	require.Len(t, offsets.seeks, 1)
	assert.Equal(t, kafka.Offset(7), offsets.seeks[0].Offset)
	assert.Equal(t, topic.Base(), *offsets.seeks[0].Topic)
}

func TestHandleMessageCommitsOnSuccess(t *testing.T) {
	topic := NewTopic("careconnect.site.events")
	var out []published
	bus := busWithProducer(nil, &out)
	offsets := &fakeOffsets{}

	ok := func(ctx context.Context, evt Event) error { return nil }
	bus.handleMessage(context.Background(), offsets, topic, testMessage(t, topic.Base(), 3, Event{ID: "req-1"}), ok)

	assert.Empty(t, out)
	assert.Equal(t, []kafka.Offset{3}, offsets.commits)
}

func TestReinjectMessagePublishesToBaseTopic(t *testing.T) {
	topic := NewTopic("careconnect.site.events")
	var out []published
	bus := busWithProducer(nil, &out)
	offsets := &fakeOffsets{}

	retryTopic, _ := topic.GetRetryTopic(1)
	bus.reinjectMessage(context.Background(), offsets, topic, testMessage(t, retryTopic, 11, Event{ID: "req-1", Retry: 1}))

	require.Len(t, out, 1)
	assert.Equal(t, topic.Base(), out[0].topic)
	assert.Equal(t, []kafka.Offset{11}, offsets.commits)
}

func TestReinjectMessageRewindsWhenPublishFails(t *testing.T) {
	noBackoff(t)
	topic := NewTopic("careconnect.site.events")
	var out []published
	bus := busWithProducer(errors.New("broker unavailable"), &out)
	offsets := &fakeOffsets{}

	retryTopic, _ := topic.GetRetryTopic(1)
	bus.reinjectMessage(context.Background(), offsets, topic, testMessage(t, retryTopic, 11, Event{ID: "req-1", Retry: 1}))

	assert.Empty(t, offsets.commits)
	require.Len(t, offsets.seeks, 1)
	assert.Equal(t, kafka.Offset(11), offsets.seeks[0].Offset)
}
