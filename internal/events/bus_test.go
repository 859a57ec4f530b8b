package events

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, e Event) {
	n.events = append(n.events, e)
}

func TestPublishFansOutInOrder(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}
	bus := NewBus(zerolog.Nop(), first, second)

	bus.Publish(context.Background(), Event{Topic: TopicReceiptCreated, Subject: "r1"})
	bus.Publish(context.Background(), Event{Topic: TopicReceiptDeleted, Subject: "r1"})

	require.Len(t, first.events, 2)
	require.Len(t, second.events, 2)
	require.Equal(t, TopicReceiptCreated, first.events[0].Topic)
	require.Equal(t, TopicReceiptDeleted, first.events[1].Topic)
}

func TestPublishStampsIDAndTime(t *testing.T) {
	sink := &recordingNotifier{}
	bus := NewBus(zerolog.Nop(), sink)

	bus.Publish(context.Background(), Event{Topic: TopicProductUpdated, Subject: "p1"})

	require.Len(t, sink.events, 1)
	got := sink.events[0]
	require.NotEmpty(t, got.ID)
	require.False(t, got.CreatedAt.IsZero())
}
