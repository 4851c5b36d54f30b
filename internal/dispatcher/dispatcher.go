package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/models"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/store"
)

const (
	headerEvent     = "X-Flowboard-Event"
	headerDelivery  = "X-Flowboard-Delivery"
	headerSignature = "X-Flowboard-Signature"
	userAgent       = "FlowBoard-Hookshot/1.0"
)

// Config holds delivery tuning knobs
type Config struct {
	// Timeout bounds each individual HTTP POST. There is no dispatch-wide
	// deadline: N slow endpoints cost ~Timeout in parallel, not N*Timeout.
	Timeout time.Duration
	// MaxResponseBody bounds how much of a response body is stored per
	// delivery log row, in bytes
	MaxResponseBody int
}

// DefaultConfig returns the production delivery settings
func DefaultConfig() Config {
	return Config{
		Timeout:         5 * time.Second,
		MaxResponseBody: 500,
	}
}

// Dispatcher fans one event occurrence out to every interested, active
// endpoint of a workspace and records the outcome of each attempt
type Dispatcher struct {
	store  store.Store
	client *http.Client
	cfg    Config
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher with dependencies. A nil client gets a
// default http.Client bound by cfg.Timeout.
func NewDispatcher(st store.Store, client *http.Client, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.MaxResponseBody <= 0 {
		cfg.MaxResponseBody = DefaultConfig().MaxResponseBody
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Dispatcher{
		store:  st,
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Dispatch delivers one event occurrence to every active endpoint of the
// workspace subscribed to eventType. Deliveries run concurrently and
// independently; Dispatch returns only after all attempts have settled.
// Failures are recorded and logged, never returned: the triggering business
// action must not observe webhook plumbing.
func (d *Dispatcher) Dispatch(ctx context.Context, workspaceID, eventType string, data map[string]interface{}) {
	endpoints, err := d.store.ResolveEndpoints(ctx, workspaceID, eventType)
	if err != nil {
		d.logger.Error("Failed to resolve webhook endpoints",
			zap.String("workspace_id", workspaceID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if len(endpoints) == 0 {
		d.logger.Debug("No active webhook endpoints for event",
			zap.String("workspace_id", workspaceID),
			zap.String("event_type", eventType),
		)
		return
	}

	// One eventId identifies this occurrence; every endpoint notified in
	// this dispatch shares it
	eventID := uuid.New()
	envelope := map[string]interface{}{
		"eventId":   eventID.String(),
		"eventType": eventType,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data":      data,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		d.logger.Error("Failed to marshal webhook envelope",
			zap.String("workspace_id", workspaceID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	d.logger.Info("Dispatching webhook event",
		zap.String("event_id", eventID.String()),
		zap.String("event_type", eventType),
		zap.String("workspace_id", workspaceID),
		zap.Int("endpoint_count", len(endpoints)),
	)

	var wg sync.WaitGroup
	for i := range endpoints {
		endpoint := endpoints[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.deliver(ctx, &endpoint, eventID, eventType, envelope, body)
		}()
	}
	wg.Wait()
}

// deliver performs one HTTP POST against one endpoint and writes exactly one
// delivery log row regardless of outcome
func (d *Dispatcher) deliver(
	ctx context.Context,
	endpoint *models.WebhookEndpoint,
	eventID uuid.UUID,
	eventType string,
	envelope map[string]interface{},
	body []byte,
) {
	result := d.send(ctx, endpoint, eventID, eventType, body)

	logRow := &models.WebhookDeliveryLog{
		EndpointID:   endpoint.ID,
		EventID:      eventID,
		EventType:    eventType,
		Payload:      envelope,
		StatusCode:   result.statusCode,
		ResponseBody: result.responseBody,
		Success:      result.success,
		DurationMs:   result.durationMs,
	}

	// A failed log write must not abort sibling deliveries
	if err := d.store.RecordDelivery(ctx, logRow); err != nil {
		d.logger.Error("Failed to record webhook delivery log",
			zap.String("event_id", eventID.String()),
			zap.String("endpoint_id", endpoint.ID.String()),
			zap.Error(err),
		)
	}

	if result.success {
		d.logger.Info("Webhook delivered",
			zap.String("event_id", eventID.String()),
			zap.String("endpoint_id", endpoint.ID.String()),
			zap.Int("status_code", result.statusCode),
			zap.Int("duration_ms", result.durationMs),
		)
	} else {
		d.logger.Warn("Webhook delivery failed",
			zap.String("event_id", eventID.String()),
			zap.String("endpoint_id", endpoint.ID.String()),
			zap.String("url", endpoint.URL),
			zap.Int("status_code", result.statusCode),
			zap.Int("duration_ms", result.durationMs),
		)
	}
}

type deliveryResult struct {
	statusCode   int // 0 when the request never completed
	responseBody string
	success      bool
	durationMs   int
}

func (d *Dispatcher) send(
	ctx context.Context,
	endpoint *models.WebhookEndpoint,
	eventID uuid.UUID,
	eventType string,
	body []byte,
) deliveryResult {
	result := deliveryResult{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		result.responseBody = err.Error()
		return result
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerEvent, eventType)
	req.Header.Set(headerDelivery, eventID.String())
	req.Header.Set("User-Agent", userAgent)

	// Endpoints without a secret receive unsigned requests
	if endpoint.Secret != "" {
		signature, err := Sign(body, endpoint.Secret)
		if err != nil {
			result.responseBody = err.Error()
			return result
		}
		req.Header.Set(headerSignature, signature)
	}

	startTime := time.Now()
	resp, err := d.client.Do(req)
	result.durationMs = int(time.Since(startTime).Milliseconds())

	if err != nil {
		// DNS failure, connection refused, timeout, TLS error
		result.responseBody = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.statusCode = resp.StatusCode
	result.success = resp.StatusCode >= 200 && resp.StatusCode < 300
	result.responseBody = d.readBody(resp.Body, endpoint.URL)

	return result
}

// readBody reads the response body for diagnostic storage, truncated to the
// configured bound. Best-effort: a read error never fails the delivery record.
func (d *Dispatcher) readBody(body io.Reader, url string) string {
	data, err := io.ReadAll(io.LimitReader(body, int64(d.cfg.MaxResponseBody)))
	if err != nil {
		d.logger.Warn("Failed to read webhook response body",
			zap.String("url", url),
			zap.Error(err),
		)
	}
	return string(data)
}
