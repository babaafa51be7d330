// file: internals/features/finance/payments/gateway/paystack.go
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"schoolku_backend/internals/configs"
	model "schoolku_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Paystack Client
   - POST /transaction/initialize
   - GET  /transaction/verify/{reference}
   - Webhook: HMAC-SHA512 atas raw body, header x-paystack-signature
========================================================= */

type PaystackClient struct {
	cfg  configs.PaymentGatewayConfig
	http *http.Client
}

func NewPaystackClient(cfg configs.PaymentGatewayConfig) *PaystackClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.paystack.co"
	}
	return &PaystackClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *PaystackClient) Provider() model.PaymentGatewayProvider {
	return model.GatewayProviderPaystack
}

/* ---------- wire types ---------- */

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackTxnData struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"` // success | failed | abandoned | ongoing | ...
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"` // kobo
	Currency  string `json:"currency"`
	Fees      int64  `json:"fees"`
}

type paystackWebhookEnvelope struct {
	Event string          `json:"event"` // charge.success, charge.failed, ...
	Data  paystackTxnData `json:"data"`
}

/* ---------- operations ---------- */

func (p *PaystackClient) StartCharge(ctx context.Context, in StartChargeInput) (ChargeSession, error) {
	payload := map[string]interface{}{
		"email":     in.PayerEmail,
		"amount":    in.AmountKobo, // Paystack expects kobo
		"reference": in.Reference,
		"currency":  defaultStr(in.Currency, p.cfg.Currency),
	}
	if cb := defaultStr(in.ReturnURL, p.cfg.CallbackURL); cb != "" {
		payload["callback_url"] = cb
	}

	var data paystackInitData
	if err := p.call(ctx, http.MethodPost, "/transaction/initialize", payload, &data); err != nil {
		return ChargeSession{}, err
	}
	return ChargeSession{
		Reference:   data.Reference,
		CheckoutURL: data.AuthorizationURL,
		AccessCode:  data.AccessCode,
	}, nil
}

func (p *PaystackClient) FetchStatus(ctx context.Context, reference string) (Result, error) {
	var data paystackTxnData
	raw, err := p.callRaw(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data)
	if err != nil {
		return Result{}, err
	}
	return p.normalize("transaction.verify", data, raw), nil
}

// VerifyWebhookSignature: HMAC-SHA512(raw body, webhook secret), hex,
// dibandingkan constant-time dengan header x-paystack-signature.
func (p *PaystackClient) VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool {
	if p.cfg.WebhookSecret == "" || signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(p.cfg.WebhookSecret))
	mac.Write(rawBody)
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(strings.ToLower(signatureHeader)))
}

func (p *PaystackClient) ParseWebhook(rawBody []byte) (Result, error) {
	var env paystackWebhookEnvelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return Result{}, ErrMalformedPayload
	}
	if env.Data.Reference == "" {
		return Result{}, ErrMalformedPayload
	}
	return p.normalize(env.Event, env.Data, rawBody), nil
}

/* ---------- normalization (satu-satunya tempat mapping status Paystack) ---------- */

func (p *PaystackClient) normalize(eventType string, d paystackTxnData, raw json.RawMessage) Result {
	var outcome Outcome
	switch strings.ToLower(d.Status) {
	case "success":
		outcome = OutcomeSuccess
	case "failed", "reversed":
		outcome = OutcomeFailure
	case "abandoned":
		outcome = OutcomeAbandoned
	default:
		// ongoing, pending, queued, processing → belum otoritatif
		outcome = OutcomeUnknown
	}

	return Result{
		Provider:     model.GatewayProviderPaystack,
		Reference:    d.Reference,
		EventID:      strconv.FormatInt(d.ID, 10),
		EventType:    eventType,
		Outcome:      outcome,
		AmountKobo:   d.Amount,
		Currency:     d.Currency,
		GatewayTxnID: strconv.FormatInt(d.ID, 10),
		FeesKobo:     d.Fees,
		Raw:          raw,
	}
}

/* ---------- HTTP plumbing ---------- */

func (p *PaystackClient) call(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	_, err := p.callRaw(ctx, method, endpoint, body, out)
	return err
}

// callRaw mengembalikan raw data JSON di samping hasil decode (buat audit).
func (p *PaystackClient) callRaw(ctx context.Context, method, endpoint string, body interface{}, out interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: paystack %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	var env paystackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid paystack response: %w", err)
	}
	if !env.Status || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("paystack error: %s", env.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("invalid paystack data: %w", err)
		}
	}
	return env.Data, nil
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
