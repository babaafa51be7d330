package model

/* ===================== Enums (string) ===================== */
/* Selaras dengan ENUM di PostgreSQL:
   payment_status, payment_gateway_provider
*/

type PaymentStatus string

const (
	// initiated → pending_confirmation → {completed | failed | cancelled}
	PaymentStatusInitiated           PaymentStatus = "initiated"
	PaymentStatusPendingConfirmation PaymentStatus = "pending_confirmation"
	PaymentStatusCompleted           PaymentStatus = "completed"
	PaymentStatusFailed              PaymentStatus = "failed"
	PaymentStatusCancelled           PaymentStatus = "cancelled"
)

// IsTerminal: status final, tidak boleh mundur lagi.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition memeriksa transisi maju pada state machine payment.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case PaymentStatusInitiated:
		return to == PaymentStatusPendingConfirmation || to.IsTerminal()
	case PaymentStatusPendingConfirmation:
		return to.IsTerminal()
	}
	return false
}

type PaymentGatewayProvider string

const (
	GatewayProviderPaystack PaymentGatewayProvider = "paystack"
	GatewayProviderMidtrans PaymentGatewayProvider = "midtrans"
)
