package enums

// AllocationStatus is the derived display state of an allocation. It is never
// stored; it is computed from the approver/approved pair at read time.
type AllocationStatus string

const (
	AllocationStatusPending     AllocationStatus = "pending"
	AllocationStatusNotApproved AllocationStatus = "not_approved"
	AllocationStatusApproved    AllocationStatus = "approved"
)

// String implements fmt.Stringer.
func (a AllocationStatus) String() string {
	return string(a)
}
