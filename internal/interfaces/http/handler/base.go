package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/domain/shared"
	"github.com/codops/backend/internal/interfaces/http/dto"
	"github.com/codops/backend/internal/interfaces/http/middleware"
)

// errTenantRequired is returned when a tenant scoped endpoint gets no tenant
var errTenantRequired = errors.New("X-Tenant-ID header is required")

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getTenantID extracts the workspace id from the X-Tenant-ID header
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(middleware.TenantIDHeader)
	if raw == "" {
		return uuid.Nil, errTenantRequired
	}
	return uuid.Parse(raw)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps domain and warehouse errors onto HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	switch {
	case errors.Is(err, fulfillment.ErrWarehouseAuthFailed),
		errors.Is(err, fulfillment.ErrWarehouseUnavailable),
		errors.Is(err, fulfillment.ErrWarehouseRequestFailed),
		errors.Is(err, fulfillment.ErrWarehouseInvalidResponse):
		h.ErrorWithCode(c, dto.ErrCodeWarehouseUnavailable, err.Error())
	default:
		h.InternalError(c, "An unexpected error occurred")
	}
}
