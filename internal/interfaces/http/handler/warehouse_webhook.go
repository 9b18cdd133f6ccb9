package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codops/backend/internal/application/reconciliation"
	"github.com/codops/backend/internal/infrastructure/logger"
	"github.com/codops/backend/internal/interfaces/http/dto"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body
	SignatureHeader = "X-Warehouse-Signature"
	// MaxWebhookBodySize bounds a webhook delivery
	MaxWebhookBodySize = 64 << 10
)

// WarehouseWebhookHandler receives warehouse push notifications
type WarehouseWebhookHandler struct {
	BaseHandler
	service *reconciliation.WebhookService
	logger  *zap.Logger
}

// NewWarehouseWebhookHandler creates a new WarehouseWebhookHandler
func NewWarehouseWebhookHandler(service *reconciliation.WebhookService, logger *zap.Logger) *WarehouseWebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarehouseWebhookHandler{service: service, logger: logger}
}

// Receive godoc
//
// The raw body is verified as sent, so it is read here instead of being bound.
//
//	@ID				receiveWarehouseWebhook
//	@Summary		Handle warehouse webhook
//	@Description	Receive an order notification from the warehouse. Duplicates and handler failures are acknowledged.
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			X-Warehouse-Signature	header		string			false	"Hex HMAC-SHA256 of the body"
//	@Success		200						{object}	dto.WebhookAck	"Webhook accepted"
//	@Failure		400						{object}	dto.Response{error=dto.ErrorInfo}	"Invalid payload"
//	@Failure		401						{object}	dto.Response{error=dto.ErrorInfo}	"Invalid signature"
//	@Failure		413						{object}	dto.Response{error=dto.ErrorInfo}	"Payload too large"
//	@Failure		500						{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/webhooks/warehouse [post]
func (h *WarehouseWebhookHandler) Receive(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.logger)

	if c.Request.ContentLength > MaxWebhookBodySize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Webhook body too large")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Webhook body too large")
			return
		}
		h.BadRequest(c, "Failed to read request body")
		return
	}

	_, err = h.service.Ingest(c.Request.Context(), body, c.GetHeader(SignatureHeader))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.WebhookAck{Success: true, Received: true})
	case errors.Is(err, reconciliation.ErrInvalidSignature):
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeInvalidSignature, "Invalid webhook signature")
	case errors.Is(err, reconciliation.ErrInvalidPayload):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidPayload, err.Error())
	default:
		log.Error("Warehouse webhook processing failed", zap.Error(err))
		h.InternalError(c, "Failed to process webhook")
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *WarehouseWebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/warehouse", h.Receive)
}
