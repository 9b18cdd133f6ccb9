package fulfillment

// OrderStatus is the fulfillment status of a local order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusReturned   OrderStatus = "RETURNED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusReturned, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsShippedOrLater reports whether the warehouse has already handed the parcel to a carrier.
func (s OrderStatus) IsShippedOrLater() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered
}

// PaymentStatus is the payment status of a local order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// DeliveryStatus is the carrier-side delivery status of a local order
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusReturned  DeliveryStatus = "RETURNED"
)

// IsValid checks if the status is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusInTransit, DeliveryStatusDelivered, DeliveryStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of DeliveryStatus
func (s DeliveryStatus) String() string {
	return string(s)
}
