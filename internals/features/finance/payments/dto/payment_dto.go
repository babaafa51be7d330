// file: internals/features/finance/payments/dto/payment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	model "schoolku_backend/internals/features/finance/payments/model"
)

/* ===================== Requests ===================== */

// CreatePaymentRequest = mulai attempt pembayaran invoice.
// Reference opsional (idempotency key caller); amount 0 = sisa balance.
type CreatePaymentRequest struct {
	InvoiceID  uuid.UUID `json:"invoice_id" validate:"required"`
	Reference  string    `json:"reference" validate:"omitempty,max=100"`
	AmountKobo int64     `json:"amount_kobo" validate:"omitempty,gt=0"`
	PayerEmail string    `json:"payer_email" validate:"omitempty,email"`
	ReturnURL  string    `json:"return_url" validate:"omitempty,url"`
}

type ManualReconcileRequest struct {
	Reference     *string `json:"reference" validate:"omitempty,max=100"`
	StuckForHours int     `json:"stuck_for_hours" validate:"omitempty,gte=1,lte=720"`
}

/* ===================== Responses ===================== */

type PaymentResponse struct {
	PaymentID    uuid.UUID           `json:"payment_id"`
	InvoiceID    uuid.UUID           `json:"invoice_id"`
	Reference    string              `json:"reference"`
	AmountKobo   int64               `json:"amount_kobo"`
	Currency     string              `json:"currency"`
	PayerEmail   string              `json:"payer_email"`
	Status       model.PaymentStatus `json:"status"`
	Provider     string              `json:"provider"`
	GatewayTxnID *string             `json:"gateway_txn_id,omitempty"`
	CheckoutURL  *string             `json:"checkout_url,omitempty"`
	RequestedAt  *time.Time          `json:"requested_at,omitempty"`
	PaidAt       *time.Time          `json:"paid_at,omitempty"`
	FailedAt     *time.Time          `json:"failed_at,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

func ToPaymentResponse(p *model.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:    p.PaymentID,
		InvoiceID:    p.PaymentInvoiceID,
		Reference:    p.PaymentReference,
		AmountKobo:   p.PaymentAmountKobo,
		Currency:     p.PaymentCurrency,
		PayerEmail:   p.PaymentPayerEmail,
		Status:       p.PaymentStatus,
		Provider:     string(p.PaymentGatewayProvider),
		GatewayTxnID: p.PaymentGatewayTxnID,
		CheckoutURL:  p.PaymentCheckoutURL,
		RequestedAt:  p.PaymentRequestedAt,
		PaidAt:       p.PaymentPaidAt,
		FailedAt:     p.PaymentFailedAt,
		CancelledAt:  p.PaymentCancelledAt,
		CreatedAt:    p.PaymentCreatedAt,
	}
}

func ToPaymentResponses(ps []model.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(ps))
	for i := range ps {
		out = append(out, ToPaymentResponse(&ps[i]))
	}
	return out
}

// CreatePaymentResponse membawa checkout URL utk redirect payer.
type CreatePaymentResponse struct {
	Payment     PaymentResponse `json:"payment"`
	CheckoutURL string          `json:"checkout_url,omitempty"`
	AccessCode  string          `json:"access_code,omitempty"`
}

// CallbackResponse = status advisory setelah payer balik dari gateway.
// Finalisasi tetap menunggu webhook; is_final memberitahu UI perlu polling.
type CallbackResponse struct {
	Reference string              `json:"reference"`
	Status    model.PaymentStatus `json:"status"`
	IsFinal   bool                `json:"is_final"`
	Message   string              `json:"message"`
}
