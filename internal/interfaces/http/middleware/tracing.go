package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TenantIDHeader selects the workspace for tenant scoped endpoints
const TenantIDHeader = "X-Tenant-ID"

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns otelgin followed by a handler that adds request_id
// and tenant_id span attributes and marks 4xx and 5xx responses as failed.
// Span names follow "HTTP METHOD route", e.g. "GET /api/v1/warehouse/orders".
func TracingWithConfig(cfg TracingConfig) gin.HandlersChain {
	if !cfg.Enabled {
		return nil
	}
	return gin.HandlersChain{otelgin.Middleware(cfg.ServiceName), spanAttributes()}
}

// spanAttributes must run inside the otelgin span, before it ends
func spanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		enrichSpan(c, span)
		c.Next()
		markSpanError(span, c.Writer.Status())
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	// only well-formed ids reach the trace backend
	if tenantID, err := uuid.Parse(c.GetHeader(TenantIDHeader)); err == nil {
		span.SetAttributes(attribute.String("tenant_id", tenantID.String()))
	}
}

func markSpanError(span trace.Span, statusCode int) {
	if statusCode < http.StatusBadRequest {
		return
	}
	message := "Client Error"
	switch {
	case statusCode >= http.StatusInternalServerError:
		message = "Internal Server Error"
	case statusCode == http.StatusUnauthorized:
		message = "Unauthorized"
	case statusCode == http.StatusNotFound:
		message = "Not Found"
	case statusCode == http.StatusRequestEntityTooLarge:
		message = "Payload Too Large"
	}
	span.SetStatus(codes.Error, message)
	span.SetAttributes(attribute.Int("http.status_code", statusCode))
}
