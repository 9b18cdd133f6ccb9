// Package fulfillment contains the Fulfillment bounded context.
// It reconciles the local order ledger with an external warehouse that physically
// ships cash-on-delivery orders.
//
// Key concepts:
//   - LocalOrder: tenant-owned sales record, authoritative for payment status
//   - ExternalOrder: mirror of the warehouse record, authoritative for physical status
//   - WebhookEvent: one inbound warehouse notification, kept for operator inspection
//   - WarehouseClient: port interface implemented by the HTTP and demo adapters
//   - CompareOrders: joins local orders against warehouse orders to derive a sync rate
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package fulfillment
