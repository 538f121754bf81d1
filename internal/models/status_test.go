package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInvoiceStatus(t *testing.T) {
	for _, valid := range []string{"CREATED", "PAID", "CANCELLED"} {
		status, ok := ParseInvoiceStatus(valid)
		assert.True(t, ok, "status %s should parse", valid)
		assert.Equal(t, InvoiceStatus(valid), status)
	}

	for _, invalid := range []string{"", "paid", "SHIPPED", "created ", "REFUNDED"} {
		_, ok := ParseInvoiceStatus(invalid)
		assert.False(t, ok, "status %q should not parse", invalid)
	}
}

func TestInvoiceStatusTransitions(t *testing.T) {
	cases := []struct {
		from    InvoiceStatus
		to      InvoiceStatus
		allowed bool
	}{
		{InvoiceStatusCreated, InvoiceStatusPaid, true},
		{InvoiceStatusCreated, InvoiceStatusCancelled, true},
		{InvoiceStatusCreated, InvoiceStatusCreated, true},
		{InvoiceStatusPaid, InvoiceStatusCancelled, false},
		{InvoiceStatusPaid, InvoiceStatusCreated, false},
		{InvoiceStatusCancelled, InvoiceStatusPaid, false},
		{InvoiceStatusCancelled, InvoiceStatusCreated, false},
		{InvoiceStatusPaid, InvoiceStatusPaid, true},
		{InvoiceStatusCancelled, InvoiceStatusCancelled, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestInvoiceStatusTerminal(t *testing.T) {
	assert.False(t, InvoiceStatusCreated.Terminal())
	assert.True(t, InvoiceStatusPaid.Terminal())
	assert.True(t, InvoiceStatusCancelled.Terminal())
}
