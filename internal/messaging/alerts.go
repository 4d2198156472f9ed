package messaging

import (
	"encoding/json"
	"log/slog"
	"sync"

	"frontdesk-backend/internal/metrics"
)

const DefaultAlertFeedSize = 20

// AlertFeed keeps the latest escalation events, newest first.
type AlertFeed struct {
	mu       sync.RWMutex
	events   []EscalationEvent
	capacity int
}

func NewAlertFeed(capacity int) *AlertFeed {
	if capacity <= 0 {
		capacity = DefaultAlertFeedSize
	}
	return &AlertFeed{capacity: capacity}
}

func (f *AlertFeed) Add(event EscalationEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append([]EscalationEvent{event}, f.events...)
	if len(f.events) > f.capacity {
		f.events = f.events[:f.capacity]
	}
}

func (f *AlertFeed) Latest() []EscalationEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]EscalationEvent, len(f.events))
	copy(out, f.events)
	return out
}

type AlertWorker struct {
	reciever Reciever
	feed     *AlertFeed
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewAlertWorker(reciever Reciever, feed *AlertFeed) *AlertWorker {
	return &AlertWorker{
		reciever: reciever,
		feed:     feed,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start consumes tasks until Stop is called or the reciever's channel is closed.
func (w *AlertWorker) Start() {
	slog.Info("starting escalation alert worker")
	defer close(w.done)

	tasks := w.reciever.Tasks()
	for {
		select {
		case task, ok := <-tasks:
			if !ok {
				return
			}
			w.ProcessTask(task)
		case <-w.stop:
			return
		}
	}
}

func (w *AlertWorker) Stop() {
	slog.Info("stopping escalation alert worker")
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	w.reciever.Close()
}

// Done is closed once Start returns.
func (w *AlertWorker) Done() <-chan struct{} {
	return w.done
}

func (w *AlertWorker) ProcessTask(task Task) {
	if task.Type() != EscalationQueue {
		slog.Error("received unknown task type", "queue", task.Type())
		if err := task.Reject(); err != nil {
			slog.Error("error rejecting message from queue", "error", err)
		}
		return
	}

	var event EscalationEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		slog.Error("error unmarshalling escalation event", "error", err)
		if err := task.Reject(); err != nil {
			slog.Error("error rejecting message from queue", "error", err)
		}
		return
	}

	slog.Warn("parent requested a human", "session_id", event.SessionID, "parent", event.Parent, "child", event.Child, "reason", event.Reason)
	w.feed.Add(event)
	metrics.RecordEscalation("alerted")

	if err := task.Ack(); err != nil {
		slog.Error("error acknowledging message from queue", "error", err)
	}
}
