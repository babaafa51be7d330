// file: internals/features/finance/payments/model/enum_model_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatus_IsTerminal(t *testing.T) {
	assert.False(t, PaymentStatusInitiated.IsTerminal())
	assert.False(t, PaymentStatusPendingConfirmation.IsTerminal())
	assert.True(t, PaymentStatusCompleted.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
	assert.True(t, PaymentStatusCancelled.IsTerminal())
}

func TestPaymentStatus_CanTransition(t *testing.T) {
	// initiated boleh maju ke pending_confirmation atau langsung terminal
	assert.True(t, PaymentStatusInitiated.CanTransition(PaymentStatusPendingConfirmation))
	assert.True(t, PaymentStatusInitiated.CanTransition(PaymentStatusCompleted))
	assert.True(t, PaymentStatusInitiated.CanTransition(PaymentStatusFailed))
	assert.True(t, PaymentStatusInitiated.CanTransition(PaymentStatusCancelled))

	// pending_confirmation hanya maju ke terminal
	assert.True(t, PaymentStatusPendingConfirmation.CanTransition(PaymentStatusCompleted))
	assert.True(t, PaymentStatusPendingConfirmation.CanTransition(PaymentStatusFailed))
	assert.True(t, PaymentStatusPendingConfirmation.CanTransition(PaymentStatusCancelled))
	assert.False(t, PaymentStatusPendingConfirmation.CanTransition(PaymentStatusInitiated))

	// terminal tidak pernah bergerak lagi
	for _, terminal := range []PaymentStatus{PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled} {
		for _, to := range []PaymentStatus{
			PaymentStatusInitiated, PaymentStatusPendingConfirmation,
			PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled,
		} {
			assert.False(t, terminal.CanTransition(to), "%s → %s harus ditolak", terminal, to)
		}
	}
}
