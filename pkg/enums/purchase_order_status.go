package enums

import "fmt"

// PurchaseOrderStatus tracks a replenishment order's lifecycle.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusQueued    PurchaseOrderStatus = "queued"
	PurchaseOrderStatusSent      PurchaseOrderStatus = "sent"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
	PurchaseOrderStatusFulfilled PurchaseOrderStatus = "fulfilled"
)

var validPurchaseOrderStatuses = []PurchaseOrderStatus{
	PurchaseOrderStatusQueued,
	PurchaseOrderStatusSent,
	PurchaseOrderStatusCancelled,
	PurchaseOrderStatusFulfilled,
}

// IsValid reports whether the value is a known PurchaseOrderStatus.
func (p PurchaseOrderStatus) IsValid() bool {
	for _, candidate := range validPurchaseOrderStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePurchaseOrderStatus converts raw input into a PurchaseOrderStatus.
func ParsePurchaseOrderStatus(value string) (PurchaseOrderStatus, error) {
	for _, candidate := range validPurchaseOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase order status %q", value)
}
