package consumer

import (
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/config"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/dispatcher"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/store"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/tracker"
)

type fakeAcknowledger struct {
	acks  int
	nacks int
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error { f.acks++; return nil }
func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacks++
	return nil
}
func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error { return nil }

type fakeHandler struct {
	bodies [][]byte
	err    error
}

func (f *fakeHandler) HandleEvent(body []byte) error {
	f.bodies = append(f.bodies, body)
	return f.err
}

func TestProcessMessageAcksOnSuccess(t *testing.T) {
	ack := &fakeAcknowledger{}
	handler := &fakeHandler{}
	msg := amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{"x":1}`)}

	ProcessMessage(zap.NewNop(), "events", msg, handler)

	if len(handler.bodies) != 1 || string(handler.bodies[0]) != `{"x":1}` {
		t.Fatalf("handler did not receive message body: %v", handler.bodies)
	}
	if ack.acks != 1 || ack.nacks != 0 {
		t.Fatalf("expected 1 ack 0 nacks, got %d/%d", ack.acks, ack.nacks)
	}
}

func TestProcessMessageNacksOnHandlerError(t *testing.T) {
	ack := &fakeAcknowledger{}
	handler := &fakeHandler{err: fmt.Errorf("boom")}
	msg := amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte(`{}`)}

	ProcessMessage(zap.NewNop(), "events", msg, handler)

	if ack.acks != 0 || ack.nacks != 1 {
		t.Fatalf("expected 0 acks 1 nack, got %d/%d", ack.acks, ack.nacks)
	}
}

func newTestIngestor(st store.Store) (*Ingestor, *dispatcher.Background) {
	log := zap.NewNop()
	d := dispatcher.NewDispatcher(st, nil, dispatcher.DefaultConfig(), log)
	queue := dispatcher.NewBackground(d, 16, 1, log)
	queue.Start()
	trk := tracker.NewTracker(st, queue, log)
	cfg := &config.RabbitMQConfig{SourceQueue: "domain-events"}
	return NewIngestor(cfg, nil, trk, log), queue
}

func TestHandleEventTracksDomainEvent(t *testing.T) {
	st := store.NewMemory()
	ingestor, queue := newTestIngestor(st)

	err := ingestor.HandleEvent([]byte(`{"event_type":"PROJECT_CREATED","workspace_id":"w1","metadata":{"projectId":"p1"}}`))
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}
	queue.Stop()

	events := st.AnalyticsEvents()
	if len(events) != 1 || events[0].EventType != "PROJECT_CREATED" || events[0].WorkspaceID != "w1" {
		t.Fatalf("expected tracked analytics event, got %+v", events)
	}
}

func TestHandleEventMalformedJSON(t *testing.T) {
	st := store.NewMemory()
	ingestor, queue := newTestIngestor(st)
	defer queue.Stop()

	if err := ingestor.HandleEvent([]byte(`not json`)); err == nil {
		t.Fatalf("malformed payload must surface an error for the NACK path")
	}
}

func TestHandleEventDropsUnknownType(t *testing.T) {
	st := store.NewMemory()
	ingestor, queue := newTestIngestor(st)
	defer queue.Stop()

	// Unknown types are acked and dropped, not retried
	if err := ingestor.HandleEvent([]byte(`{"event_type":"SOMETHING_ELSE","workspace_id":"w1"}`)); err != nil {
		t.Fatalf("unknown event type must be dropped without error, got %v", err)
	}
	if events := st.AnalyticsEvents(); len(events) != 0 {
		t.Fatalf("unknown event must not be persisted, got %+v", events)
	}

	if err := ingestor.HandleEvent([]byte(`{"event_type":"TASK_COMPLETED"}`)); err != nil {
		t.Fatalf("missing workspace must be dropped without error, got %v", err)
	}
}
