package reconciliation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/domain/shared"
	"github.com/codops/backend/internal/infrastructure/telemetry"
)

// WebhookService ingests warehouse notifications
type WebhookService struct {
	client           fulfillment.WarehouseClient
	verifySignatures bool
	dedup            shared.IdempotencyStore
	dedupTTL         time.Duration
	events           *EventLog
	handlers         map[fulfillment.EventKind]eventHandler
	validate         *validator.Validate
	metrics          *telemetry.ReconciliationMetrics
	logger           *zap.Logger
	now              func() time.Time
}

// WebhookServiceConfig contains configuration for WebhookService
type WebhookServiceConfig struct {
	Client     fulfillment.WarehouseClient
	Reconciler *Reconciler
	// VerifySignatures is false when no webhook secret is configured. The
	// service then accepts unsigned deliveries and says so in the logs.
	VerifySignatures bool
	// Dedup is optional; nil disables delivery de-duplication
	Dedup    shared.IdempotencyStore
	DedupTTL time.Duration
	EventLog *EventLog
	Metrics  *telemetry.ReconciliationMetrics
	Logger   *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	events := cfg.EventLog
	if events == nil {
		events = NewEventLog(DefaultEventLogCapacity)
	}
	ttl := cfg.DedupTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}

	if !cfg.VerifySignatures {
		logger.Warn("Warehouse webhook secret not configured, accepting unsigned webhooks (insecure mode)")
	}

	return &WebhookService{
		client:           cfg.Client,
		verifySignatures: cfg.VerifySignatures,
		dedup:            cfg.Dedup,
		dedupTTL:         ttl,
		events:           events,
		handlers:         cfg.Reconciler.handlers(),
		validate:         newPayloadValidator(),
		metrics:          cfg.Metrics,
		logger:           logger,
		now:              time.Now,
	}
}

func newPayloadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// IngestResult describes what happened to an accepted delivery
type IngestResult struct {
	EventID uuid.UUID                `json:"eventId"`
	Kind    fulfillment.EventKind    `json:"kind"`
	Outcome fulfillment.EventOutcome `json:"outcome"`
}

// EventLog returns the log of recent deliveries
func (s *WebhookService) EventLog() *EventLog {
	return s.events
}

// Ingest verifies, parses and dispatches one warehouse delivery. Handler
// failures are recorded on the event and do not fail the call, so the sender
// does not retry a delivery that only a local bug rejected.
func (s *WebhookService) Ingest(ctx context.Context, rawBody []byte, signature string) (*IngestResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "warehouse_webhook", "ingest")
	defer span.End()

	if s.verifySignatures {
		if !s.client.VerifyWebhookSignature(rawBody, signature) {
			s.logger.Warn("Rejected warehouse webhook with invalid signature",
				zap.Int("body_size", len(rawBody)))
			s.metrics.RecordWebhook(ctx, "", "rejected")
			telemetry.RecordError(span, ErrInvalidSignature)
			return nil, ErrInvalidSignature
		}
	} else {
		s.logger.Warn("Accepting unsigned warehouse webhook (insecure mode)")
	}

	payload, err := s.parse(rawBody)
	if err != nil {
		s.logger.Warn("Rejected malformed warehouse webhook", zap.Error(err))
		s.metrics.RecordWebhook(ctx, "", "invalid")
		telemetry.RecordError(span, err)
		return nil, err
	}

	event := fulfillment.WebhookEvent{
		ID:         uuid.New(),
		Kind:       fulfillment.ParseEventKind(payload.Event),
		RawType:    payload.Event,
		OrderID:    payload.Data.OrderID,
		Payload:    json.RawMessage(append([]byte(nil), rawBody...)),
		ReceivedAt: s.now(),
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrEventKind, event.Kind.String(),
		telemetry.SpanAttrOrderRef, payload.Data.ExternalRef,
	)

	log := s.logger.With(
		zap.String("event_id", event.ID.String()),
		zap.String("event", payload.Event),
		zap.String("warehouse_order_id", payload.Data.OrderID))

	key := deliveryKey(rawBody)
	if s.dedup != nil {
		seen, err := s.dedup.IsProcessed(ctx, key)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check webhook delivery: %w", err)
		}
		if seen {
			log.Info("Duplicate warehouse webhook acknowledged")
			return s.finish(ctx, event, fulfillment.EventOutcomeDuplicate, nil), nil
		}
	}

	handler, ok := s.handlers[event.Kind]
	if !ok {
		log.Info("Unhandled warehouse webhook event acknowledged")
		return s.finish(ctx, event, fulfillment.EventOutcomeIgnored, nil), nil
	}

	if err := handler(ctx, payload.Data); err != nil {
		log.Error("Failed to process warehouse webhook", zap.Error(err))
		telemetry.RecordError(span, err)
		return s.finish(ctx, event, fulfillment.EventOutcomeFailed, err), nil
	}

	if s.dedup != nil {
		if _, err := s.dedup.MarkProcessed(ctx, key, s.dedupTTL); err != nil {
			// handlers are idempotent, a redelivery is harmless
			log.Warn("Failed to remember processed webhook", zap.Error(err))
		}
	}

	log.Info("Processed warehouse webhook")
	return s.finish(ctx, event, fulfillment.EventOutcomeProcessed, nil), nil
}

func (s *WebhookService) parse(rawBody []byte) (*fulfillment.WebhookPayload, error) {
	var payload fulfillment.WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := s.validate.Struct(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &payload, nil
}

func (s *WebhookService) finish(ctx context.Context, event fulfillment.WebhookEvent, outcome fulfillment.EventOutcome, err error) *IngestResult {
	event.Outcome = outcome
	if err != nil {
		event.Error = err.Error()
	}
	s.events.Add(event)
	s.metrics.RecordWebhook(ctx, event.Kind.String(), string(outcome))

	return &IngestResult{EventID: event.ID, Kind: event.Kind, Outcome: outcome}
}

// deliveryKey identifies a delivery by the hash of its exact bytes
func deliveryKey(rawBody []byte) string {
	sum := sha256.Sum256(rawBody)
	return hex.EncodeToString(sum[:])
}
