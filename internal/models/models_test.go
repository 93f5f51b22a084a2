package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{PaymentStatusPending, PaymentStatusCompleted, true},
		{PaymentStatusPending, PaymentStatusCancelled, true},
		{PaymentStatusCompleted, PaymentStatusRefunded, true},

		{PaymentStatusPending, PaymentStatusRefunded, false},
		{PaymentStatusCompleted, PaymentStatusCancelled, false},
		{PaymentStatusCompleted, PaymentStatusPending, false},
		{PaymentStatusCompleted, PaymentStatusCompleted, false},
		{PaymentStatusCancelled, PaymentStatusPending, false},
		{PaymentStatusCancelled, PaymentStatusCompleted, false},
		{PaymentStatusRefunded, PaymentStatusCompleted, false},
		{PaymentStatusRefunded, PaymentStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStatus(t *testing.T) {
	assert.True(t, TerminalStatus(PaymentStatusCancelled))
	assert.True(t, TerminalStatus(PaymentStatusRefunded))
	assert.False(t, TerminalStatus(PaymentStatusPending))
	assert.False(t, TerminalStatus(PaymentStatusCompleted))
	assert.False(t, TerminalStatus("NOT_A_STATUS"))
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := &InvalidTransitionError{From: PaymentStatusCancelled, To: PaymentStatusCompleted}
	assert.Equal(t, "invalid status transition: CANCELLED is terminal, cannot move to COMPLETED", err.Error())

	err = &InvalidTransitionError{From: PaymentStatusRefunded, To: PaymentStatusPending}
	assert.Equal(t, "invalid status transition: REFUNDED is terminal, cannot move to PENDING", err.Error())

	err = &InvalidTransitionError{From: PaymentStatusCompleted, To: PaymentStatusCancelled}
	assert.Equal(t, "invalid status transition: COMPLETED -> CANCELLED", err.Error())
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{PaymentStatusPending, PaymentStatusCompleted, PaymentStatusCancelled, PaymentStatusRefunded} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("completed"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("SHIPPED"))
}
