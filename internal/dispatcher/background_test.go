package dispatcher

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/store"
)

func TestBackgroundRunsDispatchDetached(t *testing.T) {
	srv, reqs, mu := captureServer(t, 200, "")

	st := store.NewMemory()
	addEndpoint(t, st, "w1", srv.URL, "", true, "task.completed")

	d := newTestDispatcher(st, DefaultConfig())
	queue := NewBackground(d, 16, 2, zap.NewNop())
	queue.Start()

	// Enqueue must return immediately; the dispatch happens on a worker
	done := make(chan struct{})
	go func() {
		queue.Enqueue(Job{WorkspaceID: "w1", EventType: "task.completed", Data: map[string]interface{}{"k": "v"}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Enqueue blocked the caller")
	}

	// Stop drains in-flight jobs before returning
	queue.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(*reqs) != 1 {
		t.Fatalf("expected the queued dispatch to complete, got %d requests", len(*reqs))
	}
	if logs := st.Deliveries(); len(logs) != 1 {
		t.Fatalf("expected 1 delivery log after drain, got %d", len(logs))
	}
}

func TestBackgroundEnqueueAfterStop(t *testing.T) {
	st := store.NewMemory()
	d := newTestDispatcher(st, DefaultConfig())
	queue := NewBackground(d, 4, 1, zap.NewNop())
	queue.Start()
	queue.Stop()

	// Must not panic on a closed queue
	queue.Enqueue(Job{WorkspaceID: "w1", EventType: "task.completed"})
	queue.Stop() // idempotent
}

func TestBackgroundFullQueueDropsWithoutBlocking(t *testing.T) {
	st := store.NewMemory()
	d := newTestDispatcher(st, DefaultConfig())
	// Never started: jobs stay queued, so the buffer fills
	queue := NewBackground(d, 1, 1, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			queue.Enqueue(Job{WorkspaceID: "w1", EventType: "task.completed"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Enqueue must drop when the queue is full, not block")
	}
}
