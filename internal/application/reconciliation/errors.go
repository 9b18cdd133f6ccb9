// Package reconciliation keeps local COD orders in step with the warehouse.
// It ingests signed warehouse webhooks, streams warehouse changes to dashboard
// clients and runs on-demand pull syncs.
package reconciliation

import "errors"

var (
	// ErrInvalidSignature is returned when a webhook signature does not verify
	ErrInvalidSignature = errors.New("reconciliation: invalid webhook signature")
	// ErrInvalidPayload is returned when a webhook body is not a valid notification
	ErrInvalidPayload = errors.New("reconciliation: invalid webhook payload")
)
