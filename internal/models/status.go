package models

type InvoiceStatus string

const (
	InvoiceStatusCreated   InvoiceStatus = "CREATED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	switch InvoiceStatus(s) {
	case InvoiceStatusCreated, InvoiceStatusPaid, InvoiceStatusCancelled:
		return InvoiceStatus(s), true
	}
	return "", false
}

// CanTransitionTo enforces the closed transition set: CREATED may move to
// PAID or CANCELLED, both of which are terminal. Self-transitions are
// treated as no-ops and allowed.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	if s == target {
		return true
	}
	switch s {
	case InvoiceStatusCreated:
		return target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	default:
		return false
	}
}

func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}
