// file: internals/features/finance/payments/gateway/midtrans.go
package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"schoolku_backend/internals/configs"
	model "schoolku_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Midtrans Client (provider alternatif, deployment IDR)
   - StartCharge  : Snap CreateTransaction (order_id = reference)
   - FetchStatus  : Core API CheckTransaction
   - Webhook      : signature_key = SHA512(order_id+status_code+gross_amount+ServerKey)
========================================================= */

type MidtransClient struct {
	cfg  configs.PaymentGatewayConfig
	snap snap.Client
	core coreapi.Client
}

func NewMidtransClient(cfg configs.PaymentGatewayConfig) *MidtransClient {
	env := midtrans.Sandbox
	if cfg.UseProduction {
		env = midtrans.Production
	}
	c := &MidtransClient{cfg: cfg}
	c.snap.New(cfg.SecretKey, env)
	c.core.New(cfg.SecretKey, env)
	return c
}

func (m *MidtransClient) Provider() model.PaymentGatewayProvider {
	return model.GatewayProviderMidtrans
}

/* ---------- wire types ---------- */

type midtransNotif struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, failure
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"` // string dari Midtrans
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"` // accept / challenge / deny
	TransactionID     string `json:"transaction_id"`
	Currency          string `json:"currency"`
	// field lain aman diabaikan
}

/* ---------- operations ---------- */

func (m *MidtransClient) StartCharge(ctx context.Context, in StartChargeInput) (ChargeSession, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  in.Reference,
			GrossAmt: in.AmountKobo, // IDR: minor unit = 1 rupiah
		},
		CustomerDetail: &midtrans.CustomerDetails{
			Email: in.PayerEmail,
		},
	}
	if in.ReturnURL != "" {
		req.Callbacks = &snap.Callbacks{Finish: in.ReturnURL}
	}

	resp, err := m.snap.CreateTransaction(req)
	if err != nil {
		// midtrans-go tidak membedakan network vs 4xx; perlakukan retryable
		return ChargeSession{}, ErrGatewayUnavailable
	}
	return ChargeSession{
		Reference:   in.Reference,
		CheckoutURL: resp.RedirectURL,
		AccessCode:  resp.Token,
	}, nil
}

func (m *MidtransClient) FetchStatus(ctx context.Context, reference string) (Result, error) {
	resp, err := m.core.CheckTransaction(reference)
	if err != nil {
		return Result{}, ErrGatewayUnavailable
	}

	raw, _ := json.Marshal(resp)
	return m.normalize(midtransNotif{
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		OrderID:           resp.OrderID,
		GrossAmount:       resp.GrossAmount,
		TransactionID:     resp.TransactionID,
		Currency:          resp.Currency,
		StatusCode:        resp.StatusCode,
	}, "transaction.status", raw), nil
}

// VerifyWebhookSignature: Midtrans menaruh signature DI DALAM body —
// SHA512(order_id + status_code + gross_amount + ServerKey). Header diabaikan.
func (m *MidtransClient) VerifyWebhookSignature(rawBody []byte, _ string) bool {
	var notif midtransNotif
	if err := json.Unmarshal(rawBody, &notif); err != nil {
		return false
	}
	if notif.SignatureKey == "" {
		return false
	}
	h := sha512.Sum512([]byte(notif.OrderID + notif.StatusCode + notif.GrossAmount + m.cfg.SecretKey))
	want := hex.EncodeToString(h[:])
	got := strings.ToLower(notif.SignatureKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func (m *MidtransClient) ParseWebhook(rawBody []byte) (Result, error) {
	var notif midtransNotif
	if err := json.Unmarshal(rawBody, &notif); err != nil {
		return Result{}, ErrMalformedPayload
	}
	if notif.OrderID == "" {
		return Result{}, ErrMalformedPayload
	}
	return m.normalize(notif, "transaction.notification", rawBody), nil
}

/* ---------- normalization ---------- */

// normalize memetakan transaction_status (+fraud_status) Midtrans ke Outcome.
func (m *MidtransClient) normalize(n midtransNotif, eventType string, raw json.RawMessage) Result {
	ts := strings.ToLower(n.TransactionStatus)
	fraud := strings.ToLower(n.FraudStatus)

	var outcome Outcome
	switch ts {
	case "capture":
		switch fraud {
		case "accept":
			outcome = OutcomeSuccess
		case "challenge":
			outcome = OutcomeUnknown
		default:
			outcome = OutcomeFailure
		}
	case "settlement":
		outcome = OutcomeSuccess
	case "deny", "failure":
		outcome = OutcomeFailure
	case "cancel", "expire":
		outcome = OutcomeAbandoned
	default:
		// pending, refund, dsb → bukan hasil final untuk attempt ini
		outcome = OutcomeUnknown
	}

	var amount int64
	if f, err := strconv.ParseFloat(n.GrossAmount, 64); err == nil {
		amount = int64(f + 0.5)
	}

	eventID := n.TransactionID
	if eventID == "" {
		eventID = n.OrderID
	}
	// Midtrans tidak punya event id; kombinasi txn+status unik per delivery bermakna
	eventID = eventID + ":" + ts

	return Result{
		Provider:     model.GatewayProviderMidtrans,
		Reference:    n.OrderID,
		EventID:      eventID,
		EventType:    eventType,
		Outcome:      outcome,
		AmountKobo:   amount,
		Currency:     defaultStr(n.Currency, "IDR"),
		GatewayTxnID: n.TransactionID,
		Raw:          raw,
	}
}
