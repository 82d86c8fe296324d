package enums

import "fmt"

// RequestStatus tracks the lifecycle of an item request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusCancelled RequestStatus = "cancelled"
	RequestStatusStockOut  RequestStatus = "stock_out"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusFulfilled,
	RequestStatusCancelled,
	RequestStatusStockOut,
}

// String implements fmt.Stringer.
func (r RequestStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RequestStatus.
func (r RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (r RequestStatus) IsTerminal() bool {
	return r == RequestStatusFulfilled || r == RequestStatusCancelled || r == RequestStatusStockOut
}

// ParseRequestStatus converts raw input into a RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}
