package eventbus

import (
	"errors"

	"careconnect/config"
)

// ErrNotConfigured 는 KAFKA_BOOTSTRAP_SERVERS 가 비어 있을 때 반환된다.
// API 서버는 이 경우 이벤트 발행 없이 동기 처리로 동작한다.
var ErrNotConfigured = errors.New("kafka bootstrap servers not configured")

// GetBrokers 는 설정된 Kafka bootstrap servers 를 반환한다.
func GetBrokers() (string, error) {
	v := config.GetConfig().Secrets.KafkaBrokers
	if v == "" {
		return "", ErrNotConfigured
	}
	return v, nil
}

// GetGroupID 는 컨슈머 그룹 ID 를 반환한다. suffix 가 있으면 "<group>-<suffix>" 형태가 된다.
func GetGroupID(suffix string) string {
	g := config.GetConfig().Secrets.KafkaGroupID
	if suffix == "" {
		return g
	}
	return g + "-" + suffix
}
