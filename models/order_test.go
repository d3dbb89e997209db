package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		legal    bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusCancelled, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.legal, CanTransitionStatus(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		legal    bool
	}{
		{PaymentStatusPending, PaymentStatusPaid, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusPending, PaymentStatusRefunded, false},
		{PaymentStatusPaid, PaymentStatusRefunded, true},
		{PaymentStatusPaid, PaymentStatusPending, false},
		{PaymentStatusFailed, PaymentStatusRefunded, true},
		{PaymentStatusRefunded, PaymentStatusPaid, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.legal, CanTransitionPaymentStatus(tt.from, tt.to),
			"payment %s -> %s", tt.from, tt.to)
	}
}

func TestCanCancelOnlyWhilePending(t *testing.T) {
	assert.True(t, CanCancel(OrderStatusPending))

	for _, status := range []string{
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	} {
		assert.False(t, CanCancel(status), status)
	}
}
