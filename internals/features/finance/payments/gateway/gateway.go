// file: internals/features/finance/payments/gateway/gateway.go
package gateway

import (
	"context"
	"encoding/json"
	"errors"

	model "schoolku_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Outcome — hasil normalisasi status provider
   Engine TIDAK pernah branching di string mentah provider;
   semua provider dinormalkan di boundary ini.
========================================================= */

type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeAbandoned Outcome = "abandoned"
	OutcomeUnknown   Outcome = "unknown"
)

/* =========================================================
   Errors
========================================================= */

var (
	// ErrGatewayUnavailable = network error / 5xx dari PSP.
	// Aman di-retry caller dengan reference yang sama (gateway dedup by reference).
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrMalformedPayload = body webhook tidak bisa diparse sebagai event provider.
	ErrMalformedPayload = errors.New("malformed gateway payload")
)

/* =========================================================
   Types
========================================================= */

// StartChargeInput = parameter memulai charge di PSP.
type StartChargeInput struct {
	Reference  string // idempotency reference kita (order id di PSP)
	AmountKobo int64  // minor units
	Currency   string
	PayerEmail string
	ReturnURL  string
}

// ChargeSession = handle charge di sisi PSP + URL redirect payer.
type ChargeSession struct {
	Reference    string
	CheckoutURL  string
	AccessCode   string // token/access code sisi PSP, bila ada
	GatewayTxnID string // bila PSP sudah kasih transaction id
}

// Result = pandangan otoritatif PSP atas satu charge, sudah dinormalkan.
// Diproduksi oleh ParseWebhook (delivery async) maupun FetchStatus (reconcile).
type Result struct {
	Provider     model.PaymentGatewayProvider
	Reference    string
	EventID      string // id event/delivery dari PSP (dedup key bersama reference)
	EventType    string
	Outcome      Outcome
	AmountKobo   int64
	Currency     string
	GatewayTxnID string
	FeesKobo     int64
	Raw          json.RawMessage
}

// Client = adapter satu payment processor.
type Client interface {
	Provider() model.PaymentGatewayProvider

	// StartCharge memulai charge; repeat call dengan reference sama
	// diperlakukan PSP sebagai charge yang sama.
	StartCharge(ctx context.Context, in StartChargeInput) (ChargeSession, error)

	// FetchStatus menanyakan status otoritatif charge (untuk manual reconcile).
	FetchStatus(ctx context.Context, reference string) (Result, error)

	// VerifyWebhookSignature memverifikasi signature delivery webhook.
	// WAJIB constant-time compare.
	VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool

	// ParseWebhook menormalkan body webhook jadi Result.
	ParseWebhook(rawBody []byte) (Result, error)
}
