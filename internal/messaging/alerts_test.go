package messaging_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk-backend/internal/messaging"
)

type recordingTask struct {
	queue    string
	payload  []byte
	acked    bool
	rejected bool
}

func (t *recordingTask) Type() string    { return t.queue }
func (t *recordingTask) Payload() []byte { return t.payload }
func (t *recordingTask) Ack() error      { t.acked = true; return nil }
func (t *recordingTask) Nack() error     { return nil }
func (t *recordingTask) Reject() error   { t.rejected = true; return nil }

func TestAlertFeedKeepsNewestFirst(t *testing.T) {
	feed := messaging.NewAlertFeed(3)

	for i := 0; i < 5; i++ {
		feed.Add(messaging.EscalationEvent{SessionID: fmt.Sprintf("s%d", i)})
	}

	latest := feed.Latest()
	require.Len(t, latest, 3)
	assert.Equal(t, "s4", latest[0].SessionID)
	assert.Equal(t, "s3", latest[1].SessionID)
	assert.Equal(t, "s2", latest[2].SessionID)
}

func TestAlertWorkerConsumesInMemoryQueue(t *testing.T) {
	queue := messaging.NewInMemoryQueue()
	feed := messaging.NewAlertFeed(10)
	worker := messaging.NewAlertWorker(queue, feed)

	go worker.Start()

	event := messaging.EscalationEvent{
		Id:        uuid.New(),
		SessionID: "session-1",
		Parent:    "Maria",
		Child:     "James",
		Message:   "can I talk to a real person",
		Reason:    "Parent asked to speak with a human",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, queue.PublishEscalation(context.Background(), event))

	worker.Stop()

	select {
	case <-worker.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	latest := feed.Latest()
	require.Len(t, latest, 1)
	assert.Equal(t, event, latest[0])

	assert.ErrorIs(t, queue.PublishEscalation(context.Background(), event), messaging.ErrQueueClosed)
}

func TestAlertWorkerRejectsBadTasks(t *testing.T) {
	feed := messaging.NewAlertFeed(10)
	worker := messaging.NewAlertWorker(messaging.NewInMemoryQueue(), feed)

	t.Run("UnknownQueue", func(t *testing.T) {
		task := &recordingTask{queue: "other_queue", payload: []byte(`{}`)}
		worker.ProcessTask(task)
		assert.True(t, task.rejected)
		assert.False(t, task.acked)
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		task := &recordingTask{queue: messaging.EscalationQueue, payload: []byte(`not json`)}
		worker.ProcessTask(task)
		assert.True(t, task.rejected)
		assert.False(t, task.acked)
	})

	assert.Empty(t, feed.Latest())
}
