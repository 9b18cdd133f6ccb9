package warehouse

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/codops/backend/internal/domain/fulfillment"
)

// maxResponseSize caps how much of a warehouse response body is read
const maxResponseSize = 4 << 20

// orderListResponse is the body of GET /orders
type orderListResponse struct {
	Data  []apiOrder `json:"data"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// apiOrder is a warehouse order in the provider's own vocabulary
type apiOrder struct {
	ID           string          `json:"id"`
	Reference    string          `json:"reference"`
	Status       string          `json:"status"`
	StatusLabel  string          `json:"statusLabel"`
	TrackingCode string          `json:"trackingCode"`
	CarrierName  string          `json:"carrierName"`
	Country      string          `json:"country"`
	CustomerName string          `json:"customerName"`
	CODAmount    decimal.Decimal `json:"codAmount"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (o *apiOrder) toDomain() fulfillment.ExternalOrder {
	status := fulfillment.NormalizeExternalStatus(o.Status)
	label := o.StatusLabel
	if label == "" {
		label = status.Label()
	}
	return fulfillment.ExternalOrder{
		ExternalID:   o.ID,
		Reference:    o.Reference,
		Status:       status,
		StatusLabel:  label,
		TrackingCode: o.TrackingCode,
		Carrier:      o.CarrierName,
		Country:      o.Country,
		CustomerName: o.CustomerName,
		CODAmount:    o.CODAmount,
		UpdatedAt:    o.UpdatedAt,
	}
}

// pingResponse is the body of GET /ping
type pingResponse struct {
	OK      bool   `json:"ok"`
	Account string `json:"account"`
}
