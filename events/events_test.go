package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/streamhub/logger"
)

type testSubscriber struct {
	mtx      sync.Mutex
	consumed []*Event
	globals  map[string]interface{}
}

func (s *testSubscriber) ConsumeEvent(ctx context.Context, event *Event, globalProperties map[string]interface{}) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.consumed = append(s.consumed, event)
	s.globals = globalProperties
}

func (s *testSubscriber) events() []*Event {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return append([]*Event{}, s.consumed...)
}

func TestPublishSync_DeliversToAllSubscribers(t *testing.T) {
	logger.Init("2")
	publisher := NewEventPublisher()

	first := &testSubscriber{}
	second := &testSubscriber{}
	publisher.RegisterSubscriber(first)
	publisher.RegisterSubscriber(second)

	publisher.PublishSync(&Event{Event: "test_event"})

	require.Len(t, first.events(), 1)
	require.Len(t, second.events(), 1)
	assert.Equal(t, "test_event", first.events()[0].Event)
}

func TestRemoveSubscriber_StopsDelivery(t *testing.T) {
	logger.Init("2")
	publisher := NewEventPublisher()

	subscriber := &testSubscriber{}
	publisher.RegisterSubscriber(subscriber)
	publisher.PublishSync(&Event{Event: "before"})

	publisher.RemoveSubscriber(subscriber)
	publisher.PublishSync(&Event{Event: "after"})

	consumed := subscriber.events()
	require.Len(t, consumed, 1)
	assert.Equal(t, "before", consumed[0].Event)
}

func TestSetGlobalProperty_ReachesSubscribers(t *testing.T) {
	logger.Init("2")
	publisher := NewEventPublisher()
	publisher.SetGlobalProperty("network", "mainnet")

	subscriber := &testSubscriber{}
	publisher.RegisterSubscriber(subscriber)
	publisher.PublishSync(&Event{Event: "test_event"})

	assert.Equal(t, "mainnet", subscriber.globals["network"])
}
