package fulfillment

import "errors"

var (
	// ErrWarehouseNotConfigured is returned when the warehouse API credentials are missing
	ErrWarehouseNotConfigured = errors.New("fulfillment: warehouse API not configured")
	// ErrWarehouseUnavailable is returned when the warehouse API cannot be reached
	ErrWarehouseUnavailable = errors.New("fulfillment: warehouse API unavailable")
	// ErrWarehouseRequestFailed is returned when the warehouse API answers with an error
	ErrWarehouseRequestFailed = errors.New("fulfillment: warehouse request failed")
	// ErrWarehouseAuthFailed is returned when the warehouse rejects our token
	ErrWarehouseAuthFailed = errors.New("fulfillment: warehouse authentication failed")
	// ErrWarehouseInvalidResponse is returned when a warehouse response cannot be decoded
	ErrWarehouseInvalidResponse = errors.New("fulfillment: invalid warehouse response")

	ErrOrderNumberRequired = errors.New("fulfillment: order number is required")
	ErrNegativeAmount      = errors.New("fulfillment: amounts cannot be negative")
	ErrExternalIDRequired  = errors.New("fulfillment: external order id is required")
	ErrExternalRefMissing  = errors.New("fulfillment: external reference is required")
)
