package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/* ===================== Model ===================== */

// Payment = satu attempt pembayaran terhadap satu invoice.
// payment_reference adalah idempotency key caller: unik system-wide,
// dipakai untuk dedup lintas redirect callback, webhook, dan retry.
// Record TIDAK pernah dihapus (audit finansial) — tidak ada soft delete.
type Payment struct {
	PaymentID uuid.UUID `gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_id"`

	PaymentInvoiceID uuid.UUID `gorm:"column:payment_invoice_id;type:uuid;not null;index" json:"payment_invoice_id"`

	PaymentReference string `gorm:"column:payment_reference;type:varchar(100);not null;uniqueIndex:uq_payments_reference" json:"payment_reference"`

	// Nominal dalam minor units (kobo)
	PaymentAmountKobo int64  `gorm:"column:payment_amount_kobo;not null;check:payment_amount_kobo > 0" json:"payment_amount_kobo"`
	PaymentCurrency   string `gorm:"column:payment_currency;type:varchar(8);not null;default:NGN" json:"payment_currency"`

	PaymentPayerEmail string `gorm:"column:payment_payer_email;type:varchar(254);not null" json:"payment_payer_email"`

	PaymentStatus PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'initiated';index" json:"payment_status"`

	// Info gateway
	PaymentGatewayProvider PaymentGatewayProvider `gorm:"column:payment_gateway_provider;type:payment_gateway_provider;not null" json:"payment_gateway_provider"`
	PaymentGatewayTxnID    *string                `gorm:"column:payment_gateway_txn_id" json:"payment_gateway_txn_id,omitempty"`
	PaymentCheckoutURL     *string                `gorm:"column:payment_checkout_url" json:"payment_checkout_url,omitempty"`

	// Payload gateway terakhir yang kita lihat (audit/debug)
	PaymentLastPayload datatypes.JSON `gorm:"column:payment_last_payload;type:jsonb" json:"payment_last_payload,omitempty"`

	// Timestamps penting
	PaymentRequestedAt *time.Time `gorm:"column:payment_requested_at" json:"payment_requested_at,omitempty"`
	PaymentPaidAt      *time.Time `gorm:"column:payment_paid_at" json:"payment_paid_at,omitempty"`
	PaymentFailedAt    *time.Time `gorm:"column:payment_failed_at" json:"payment_failed_at,omitempty"`
	PaymentCancelledAt *time.Time `gorm:"column:payment_cancelled_at" json:"payment_cancelled_at,omitempty"`

	PaymentCreatedAt time.Time `gorm:"column:payment_created_at;autoCreateTime" json:"payment_created_at"`
	PaymentUpdatedAt time.Time `gorm:"column:payment_updated_at;autoUpdateTime" json:"payment_updated_at"`
}

func (Payment) TableName() string { return "payments" }

/* ===================== Helpers ===================== */

func (p *Payment) IsTerminal() bool { return p.PaymentStatus.IsTerminal() }

func (p *Payment) IsOpen() bool {
	return p.PaymentStatus == PaymentStatusInitiated || p.PaymentStatus == PaymentStatusPendingConfirmation
}
