package eventbus

// 사이트 백엔드가 주고받는 이벤트는 하나의 토픽에 모으고 Event.Type 으로 구분한다.
var (
	TopicSiteEvents = NewTopic("careconnect.site.events")
)

var AllTopics = []Topic{
	TopicSiteEvents,
}
