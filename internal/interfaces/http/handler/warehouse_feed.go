package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codops/backend/internal/application/reconciliation"
	"github.com/codops/backend/internal/interfaces/http/dto"
)

// DefaultMaxFeedClients bounds concurrent change feed connections
const DefaultMaxFeedClients = 1000

// WarehouseFeedHandler streams warehouse order changes over SSE
type WarehouseFeedHandler struct {
	BaseHandler
	feed       *reconciliation.ChangeFeed
	logger     *zap.Logger
	maxClients int64
	clients    atomic.Int64

	// ctx is cancelled by Stop and ends every open stream
	ctx    context.Context
	cancel context.CancelFunc
}

// WarehouseFeedOption is a functional option for configuring the handler
type WarehouseFeedOption func(*WarehouseFeedHandler)

// WithFeedLogger sets the logger for the handler
func WithFeedLogger(logger *zap.Logger) WarehouseFeedOption {
	return func(h *WarehouseFeedHandler) {
		h.logger = logger
	}
}

// WithFeedMaxClients sets the maximum number of concurrent clients; zero means unlimited
func WithFeedMaxClients(max int) WarehouseFeedOption {
	return func(h *WarehouseFeedHandler) {
		h.maxClients = int64(max)
	}
}

// NewWarehouseFeedHandler creates a new WarehouseFeedHandler
func NewWarehouseFeedHandler(feed *reconciliation.ChangeFeed, opts ...WarehouseFeedOption) *WarehouseFeedHandler {
	h := &WarehouseFeedHandler{
		feed:       feed,
		logger:     zap.NewNop(),
		maxClients: DefaultMaxFeedClients,
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stop ends every open stream and rejects new ones. Other requests are not
// affected, so http.Server.Shutdown can drain them normally afterwards.
func (h *WarehouseFeedHandler) Stop() {
	h.cancel()
	h.logger.Info("Warehouse feed handler stopped", zap.Int("open_streams", h.ClientCount()))
}

// ClientCount returns the number of connected clients
func (h *WarehouseFeedHandler) ClientCount() int {
	return int(h.clients.Load())
}

// Stream godoc
//
// Each connection runs its own poll loop until the client goes away.
//
//	@ID				streamWarehouseFeed
//	@Summary		Subscribe to warehouse order changes via SSE
//	@Description	Streams order_update, heartbeat and error messages as Server-Sent Events
//	@Tags			warehouse
//	@Produce		text/event-stream
//	@Success		200	{string}	string	"SSE stream"
//	@Failure		503	{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/warehouse/feed [get]
func (h *WarehouseFeedHandler) Stream(c *gin.Context) {
	if h.ctx.Err() != nil {
		h.ErrorWithCode(c, dto.ErrCodeShuttingDown, "Change feed is shutting down")
		return
	}
	if n := h.clients.Add(1); h.maxClients > 0 && n > h.maxClients {
		h.clients.Add(-1)
		h.ErrorWithCode(c, dto.ErrCodeMaxConnections, "Maximum number of feed connections reached")
		return
	}
	defer h.clients.Add(-1)

	// the stream outlives the server write timeout
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	clientID := uuid.NewString()
	log := h.logger.With(zap.String("client_id", clientID))
	log.Info("Warehouse feed client connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	stop := context.AfterFunc(h.ctx, cancel)
	defer stop()

	err := h.feed.Run(ctx, func(msg reconciliation.FeedMessage) error {
		if err := writeFeedMessage(c.Writer, msg); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		log.Info("Warehouse feed client write failed", zap.Error(err))
		return
	}
	log.Info("Warehouse feed client disconnected")
}

// writeFeedMessage writes one JSON object as a single SSE data line
func writeFeedMessage(w io.Writer, msg reconciliation.FeedMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode feed message: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
