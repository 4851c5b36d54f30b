package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/dispatcher"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/models"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/store"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/tracker"
)

func newTestApp(st store.Store) (*fiber.App, *dispatcher.Background) {
	log := zap.NewNop()
	d := dispatcher.NewDispatcher(st, nil, dispatcher.DefaultConfig(), log)
	queue := dispatcher.NewBackground(d, 16, 1, log)
	queue.Start()
	trk := tracker.NewTracker(st, queue, log)

	app := fiber.New()
	api := app.Group("/api/v1")
	endpoints := NewEndpointsHandler(st, log)
	deliveries := NewDeliveriesHandler(st, log)
	events := NewEventsHandler(trk, log)
	api.Post("/workspaces/:workspaceID/endpoints", endpoints.CreateEndpoint)
	api.Get("/workspaces/:workspaceID/endpoints", endpoints.ListEndpoints)
	api.Patch("/endpoints/:id", endpoints.UpdateEndpoint)
	api.Delete("/endpoints/:id", endpoints.DeleteEndpoint)
	api.Get("/endpoints/:id/deliveries", deliveries.GetDeliveries)
	api.Post("/events", events.TrackEvent)
	return app, queue
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateEndpointValidation(t *testing.T) {
	st := store.NewMemory()
	app, queue := newTestApp(st)
	defer queue.Stop()

	cases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing url", map[string]interface{}{"events": []string{"task.completed"}}},
		{"bad scheme", map[string]interface{}{"url": "ftp://x", "events": []string{"task.completed"}}},
		{"no events", map[string]interface{}{"url": "https://example.com/hook", "events": []string{}}},
		{"unknown event", map[string]interface{}{"url": "https://example.com/hook", "events": []string{"task.deleted"}}},
	}
	for _, tc := range cases {
		resp, err := app.Test(jsonRequest("POST", "/api/v1/workspaces/w1/endpoints", tc.payload))
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
	}
}

func TestEndpointLifecycle(t *testing.T) {
	st := store.NewMemory()
	app, queue := newTestApp(st)
	defer queue.Stop()

	resp, err := app.Test(jsonRequest("POST", "/api/v1/workspaces/w1/endpoints", map[string]interface{}{
		"url":    "https://example.com/hook",
		"events": []string{"task.completed"},
		"secret": "abc",
	}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created models.WebhookEndpoint
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == uuid.Nil || !created.IsActive {
		t.Fatalf("created endpoint malformed: %+v", created)
	}

	resp, err = app.Test(jsonRequest("GET", "/api/v1/workspaces/w1/endpoints", nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || !bytes.Contains(body, []byte(created.ID.String())) {
		t.Fatalf("list missing created endpoint: %d %s", resp.StatusCode, body)
	}

	// Deactivate via PATCH
	resp, err = app.Test(jsonRequest("PATCH", "/api/v1/endpoints/"+created.ID.String(), map[string]interface{}{
		"is_active": false,
	}))
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("patch expected 200, got %d", resp.StatusCode)
	}
	stored, err := st.GetEndpoint(context.Background(), created.ID)
	if err != nil || stored.IsActive {
		t.Fatalf("patch did not deactivate endpoint: %+v %v", stored, err)
	}

	resp, err = app.Test(jsonRequest("DELETE", "/api/v1/endpoints/"+created.ID.String(), nil))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete expected 204, got %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonRequest("DELETE", "/api/v1/endpoints/"+created.ID.String(), nil))
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("second delete expected 404, got %d", resp.StatusCode)
	}
}

func TestGetDeliveriesPagination(t *testing.T) {
	st := store.NewMemory()
	app, queue := newTestApp(st)
	defer queue.Stop()

	endpointID := uuid.New()
	for i := 0; i < 3; i++ {
		if err := st.RecordDelivery(context.Background(), &models.WebhookDeliveryLog{
			EndpointID: endpointID,
			EventID:    uuid.New(),
			EventType:  "task.completed",
			StatusCode: 200,
			Success:    true,
			DurationMs: 12,
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	resp, err := app.Test(jsonRequest("GET", fmt.Sprintf("/api/v1/endpoints/%s/deliveries?limit=2", endpointID), nil))
	if err != nil {
		t.Fatalf("get deliveries: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var page DeliveriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Deliveries) != 2 || !page.HasMore {
		t.Fatalf("expected 2 rows with has_more, got %d has_more=%v", len(page.Deliveries), page.HasMore)
	}

	resp, err = app.Test(jsonRequest("GET", fmt.Sprintf("/api/v1/endpoints/%s/deliveries?limit=0", endpointID), nil))
	if err != nil {
		t.Fatalf("bad limit: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("limit=0 expected 400, got %d", resp.StatusCode)
	}
}

func TestTrackEventEndpoint(t *testing.T) {
	st := store.NewMemory()
	app, queue := newTestApp(st)

	resp, err := app.Test(jsonRequest("POST", "/api/v1/events", map[string]interface{}{
		"event_type":   "TASK_COMPLETED",
		"workspace_id": "w1",
		"metadata":     map[string]interface{}{"taskId": "t1"},
	}))
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	queue.Stop()

	events := st.AnalyticsEvents()
	if len(events) != 1 || events[0].EventType != "TASK_COMPLETED" {
		t.Fatalf("expected tracked analytics event, got %+v", events)
	}

	// Unknown event type is rejected before anything is persisted
	app2, queue2 := newTestApp(store.NewMemory())
	defer queue2.Stop()
	resp, err = app2.Test(jsonRequest("POST", "/api/v1/events", map[string]interface{}{
		"event_type":   "NOT_A_THING",
		"workspace_id": "w1",
	}))
	if err != nil {
		t.Fatalf("track unknown: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("unknown event type expected 400, got %d", resp.StatusCode)
	}

	// Missing workspace is rejected
	resp, err = app2.Test(jsonRequest("POST", "/api/v1/events", map[string]interface{}{
		"event_type": "TASK_COMPLETED",
	}))
	if err != nil {
		t.Fatalf("track missing workspace: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing workspace expected 400, got %d", resp.StatusCode)
	}
}
