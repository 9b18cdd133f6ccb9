package fulfillment

import (
	"strconv"

	"github.com/google/uuid"
)

// ComparisonState classifies a local order against the warehouse
type ComparisonState string

const (
	ComparisonSynced   ComparisonState = "synced"
	ComparisonNotFound ComparisonState = "not_found"
)

// ComparisonItem is the join result for one local order
type ComparisonItem struct {
	OrderID        uuid.UUID       `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	ExternalRef    string          `json:"externalRef,omitempty"`
	State          ComparisonState `json:"state"`
	LocalStatus    OrderStatus     `json:"localStatus"`
	ExternalStatus ExternalStatus  `json:"externalStatus,omitempty"`
	ExternalLabel  string          `json:"externalLabel,omitempty"`
}

// ComparisonReport aggregates a comparison run
type ComparisonReport struct {
	Items    []ComparisonItem `json:"items"`
	Total    int              `json:"total"`
	Synced   int              `json:"synced"`
	NotFound int              `json:"notFound"`
	SyncRate string           `json:"syncRate"`
}

// CompareOrders joins local orders against warehouse orders by external reference.
// A local order is synced when its ExternalRef equals a warehouse order's
// ExternalID or Reference. It performs no I/O.
func CompareOrders(local []LocalOrder, external []ExternalOrder) ComparisonReport {
	index := make(map[string]*ExternalOrder, len(external)*2)
	for i := range external {
		e := &external[i]
		if e.ExternalID != "" {
			index[e.ExternalID] = e
		}
		// ExternalID wins over a back-reference with the same value
		if _, taken := index[e.Reference]; e.Reference != "" && !taken {
			index[e.Reference] = e
		}
	}

	report := ComparisonReport{
		Items: make([]ComparisonItem, 0, len(local)),
		Total: len(local),
	}
	for i := range local {
		o := &local[i]
		item := ComparisonItem{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			ExternalRef: o.ExternalRef,
			State:       ComparisonNotFound,
			LocalStatus: o.Status,
		}
		if match, ok := index[o.ExternalRef]; ok && o.ExternalRef != "" {
			item.State = ComparisonSynced
			item.ExternalStatus = match.Status
			item.ExternalLabel = match.StatusLabel
			report.Synced++
		} else {
			report.NotFound++
		}
		report.Items = append(report.Items, item)
	}
	report.SyncRate = FormatSyncRate(report.Synced, report.Total)
	return report
}

// FormatSyncRate formats synced/total as a percentage with one decimal.
// An empty input yields "0".
func FormatSyncRate(synced, total int) string {
	if total == 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(synced)/float64(total)*100, 'f', 1, 64)
}
