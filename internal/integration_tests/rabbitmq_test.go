package integrationtests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk-backend/internal/messaging"
)

func TestRabbitMQEscalations(t *testing.T) {
	ctx := context.Background()
	publisher, receiver := setupRabbitMQContainer(t, ctx)

	event := messaging.EscalationEvent{
		Id:        uuid.New(),
		SessionID: "session-1",
		Parent:    "Maria Johnson",
		Child:     "James",
		Message:   "Can I talk to a real person?",
		Reason:    "Parent asked to speak with a human",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, publisher.PublishEscalation(ctx, event))

	select {
	case task := <-receiver.Tasks():
		assert.Equal(t, messaging.EscalationQueue, task.Type())
		var got messaging.EscalationEvent
		require.NoError(t, json.Unmarshal(task.Payload(), &got))
		assert.Equal(t, event.Id, got.Id)
		assert.Equal(t, event.SessionID, got.SessionID)
		assert.Equal(t, event.Message, got.Message)
		assert.True(t, event.Timestamp.Equal(got.Timestamp))
		require.NoError(t, task.Ack())
	case <-time.After(4 * time.Second):
		t.Fatal("timeout waiting for escalation event")
	}
}

func TestRabbitMQAlertWorker(t *testing.T) {
	ctx := context.Background()
	publisher, receiver := setupRabbitMQContainer(t, ctx)

	feed := messaging.NewAlertFeed(0)
	worker := messaging.NewAlertWorker(receiver, feed)
	go worker.Start()
	t.Cleanup(func() {
		worker.Stop()
		<-worker.Done()
	})

	for _, parent := range []string{"Maria Johnson", "Carlos Rodriguez"} {
		require.NoError(t, publisher.PublishEscalation(ctx, messaging.EscalationEvent{
			Id:        uuid.New(),
			SessionID: parent,
			Parent:    parent,
			Message:   "I need a human",
			Timestamp: time.Now(),
		}))
	}

	require.Eventually(t, func() bool {
		return len(feed.Latest()) == 2
	}, 10*time.Second, 100*time.Millisecond)

	latest := feed.Latest()
	assert.Equal(t, "Carlos Rodriguez", latest[0].Parent)
	assert.Equal(t, "Maria Johnson", latest[1].Parent)
}
