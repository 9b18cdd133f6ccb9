package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codops/backend/internal/application/reconciliation"
	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/infrastructure/scheduler"
	"github.com/codops/backend/internal/interfaces/http/dto"
)

// recentEventsLimit is how many webhook events the debug endpoint returns
const recentEventsLimit = 20

// recentJobsLimit is how many scheduled pulls GET /warehouse/sync/jobs returns
const recentJobsLimit = 20

// SyncJobHistory exposes the background pull history
type SyncJobHistory interface {
	History(limit int) []scheduler.SyncJob
	Cursor() *time.Time
}

// WarehouseHandler serves the warehouse dashboard endpoints
type WarehouseHandler struct {
	BaseHandler
	sync   *reconciliation.SyncService
	events *reconciliation.EventLog
	feed   *WarehouseFeedHandler
	jobs   SyncJobHistory
}

// NewWarehouseHandler creates a new WarehouseHandler. feed and jobs may be nil.
func NewWarehouseHandler(sync *reconciliation.SyncService, events *reconciliation.EventLog, feed *WarehouseFeedHandler, jobs SyncJobHistory) *WarehouseHandler {
	return &WarehouseHandler{sync: sync, events: events, feed: feed, jobs: jobs}
}

// ListOrders godoc
//
//	@ID				listWarehouseOrders
//	@Summary		List warehouse orders
//	@Description	Proxy one page of orders from the warehouse together with the last sync time
//	@Tags			warehouse
//	@Produce		json
//	@Param			page	query		int		false	"Page number"	default(1)
//	@Param			limit	query		int		false	"Page size"		default(50)	maximum(100)
//	@Param			status	query		string	false	"Warehouse status code"
//	@Param			country	query		string	false	"Destination country"
//	@Param			since	query		string	false	"Only orders modified after this RFC 3339 time"
//	@Success		200		{object}	dto.WarehouseOrderListResponse
//	@Failure		502		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/warehouse/orders [get]
func (h *WarehouseHandler) ListOrders(c *gin.Context) {
	filter := fulfillment.OrderFilter{
		Page:    queryInt(c, "page"),
		Limit:   queryInt(c, "limit"),
		Status:  c.Query("status"),
		Country: c.Query("country"),
		Since:   parseSince(c.Query("since")),
	}

	list, err := h.sync.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	orders := list.Orders
	if orders == nil {
		orders = []fulfillment.ExternalOrder{}
	}
	c.JSON(http.StatusOK, dto.WarehouseOrderListResponse{
		Success:    true,
		Orders:     orders,
		Total:      list.Total,
		Page:       list.Page,
		Limit:      list.Limit,
		LastSyncAt: list.LastSyncAt,
	})
}

// Sync godoc
//
//	@ID				syncWarehouseOrders
//	@Summary		Pull warehouse orders
//	@Description	Pull orders modified since the given time into the local mirror. The body is optional.
//	@Tags			warehouse
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.WarehouseSyncRequest	false	"Lower bound of the pull"
//	@Success		200		{object}	dto.WarehouseSyncResponse
//	@Failure		400		{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure		502		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/warehouse/sync [post]
func (h *WarehouseHandler) Sync(c *gin.Context) {
	var req dto.WarehouseSyncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
			return
		}
	}

	result, err := h.sync.Sync(c.Request.Context(), parseSince(req.Since))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WarehouseSyncResponse{
		Success:    result.Status != fulfillment.SyncStatusFailed,
		Status:     result.Status,
		Synced:     result.Synced,
		Errors:     result.Errors,
		Failures:   result.Failures,
		LastSyncAt: result.LastSyncAt,
	})
}

// Status godoc
//
//	@ID			getWarehouseStatus
//	@Summary	Warehouse connection status
//	@Tags		warehouse
//	@Produce	json
//	@Success	200	{object}	reconciliation.ConnectionStatus
//	@Router		/warehouse/status [get]
func (h *WarehouseHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.sync.Status(c.Request.Context()))
}

// RecentEvents godoc
//
//	@ID			listWarehouseWebhookEvents
//	@Summary	Recent webhook deliveries
//	@Tags		warehouse
//	@Produce	json
//	@Success	200	{object}	dto.WebhookEventsResponse
//	@Router		/warehouse/webhooks/events [get]
func (h *WarehouseHandler) RecentEvents(c *gin.Context) {
	c.JSON(http.StatusOK, dto.WebhookEventsResponse{
		Events: h.events.Recent(recentEventsLimit),
		Total:  h.events.Len(),
	})
}

// SyncJobs godoc
//
//	@ID				listWarehouseSyncJobs
//	@Summary		Scheduled sync history
//	@Description	Recent background pulls, newest first, and the lower bound of the next one
//	@Tags			warehouse
//	@Produce		json
//	@Success		200	{object}	dto.SyncJobsResponse
//	@Router			/warehouse/sync/jobs [get]
func (h *WarehouseHandler) SyncJobs(c *gin.Context) {
	resp := dto.SyncJobsResponse{Jobs: []dto.SyncJobResponse{}}
	if h.jobs == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Cursor = h.jobs.Cursor()
	for _, job := range h.jobs.History(recentJobsLimit) {
		resp.Jobs = append(resp.Jobs, dto.SyncJobResponse{
			ID:          job.ID.String(),
			Status:      string(job.Status),
			Since:       job.Since,
			Synced:      job.Synced,
			Failed:      job.Failed,
			RetryCount:  job.RetryCount,
			Error:       job.Error,
			StartedAt:   job.StartedAt,
			CompletedAt: job.CompletedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Comparison godoc
//
//	@ID				compareWarehouseOrders
//	@Summary		Compare local and warehouse orders
//	@Description	Join the tenant's local orders against the warehouse by external reference
//	@Tags			warehouse
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	true	"Tenant ID"	format(uuid)
//	@Success		200			{object}	dto.Response{data=fulfillment.ComparisonReport}
//	@Failure		400			{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure		502			{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/warehouse/comparison [get]
func (h *WarehouseHandler) Comparison(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "A valid X-Tenant-ID header is required")
		return
	}

	report, err := h.sync.Compare(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// RegisterRoutes implements router.RouteRegistrar
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/warehouse")
	group.GET("/orders", h.ListOrders)
	group.POST("/sync", h.Sync)
	group.GET("/sync/jobs", h.SyncJobs)
	group.GET("/status", h.Status)
	group.GET("/webhooks/events", h.RecentEvents)
	group.GET("/comparison", h.Comparison)
	if h.feed != nil {
		group.GET("/feed", h.feed.Stream)
	}
}

// queryInt returns 0 for missing or malformed values so the filter defaults apply
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// parseSince returns nil for empty or malformed RFC 3339 timestamps
func parseSince(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
