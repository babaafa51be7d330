// file: internals/features/finance/payments/gateway/paystack_test.go
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/configs"
)

func paystackTestClient(baseURL string) *PaystackClient {
	return NewPaystackClient(configs.PaymentGatewayConfig{
		Provider:      "paystack",
		SecretKey:     "sk_test_secret",
		WebhookSecret: "sk_test_secret",
		BaseURL:       baseURL,
		Currency:      "NGN",
	})
}

func signPaystack(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

/* =========================================================
   Webhook signature
========================================================= */

func TestPaystack_VerifyWebhookSignature(t *testing.T) {
	client := paystackTestClient("")
	body := []byte(`{"event":"charge.success","data":{"reference":"PAY-1"}}`)
	sig := signPaystack("sk_test_secret", body)

	assert.True(t, client.VerifyWebhookSignature(body, sig))

	// header uppercase tetap diterima (hex case-insensitive)
	assert.True(t, client.VerifyWebhookSignature(body, strings.ToUpper(sig)))

	// body diubah satu byte → tolak
	tampered := []byte(`{"event":"charge.success","data":{"reference":"PAY-2"}}`)
	assert.False(t, client.VerifyWebhookSignature(tampered, sig))

	// secret beda → tolak
	wrongSig := signPaystack("sk_other_secret", body)
	assert.False(t, client.VerifyWebhookSignature(body, wrongSig))

	// signature kosong → tolak
	assert.False(t, client.VerifyWebhookSignature(body, ""))
}

func TestPaystack_VerifyWebhookSignature_EmptySecret(t *testing.T) {
	client := NewPaystackClient(configs.PaymentGatewayConfig{})
	body := []byte(`{}`)
	assert.False(t, client.VerifyWebhookSignature(body, signPaystack("", body)))
}

/* =========================================================
   ParseWebhook & normalisasi outcome
========================================================= */

func TestPaystack_ParseWebhook_Normalization(t *testing.T) {
	client := paystackTestClient("")

	tests := []struct {
		status string
		want   Outcome
	}{
		{"success", OutcomeSuccess},
		{"failed", OutcomeFailure},
		{"reversed", OutcomeFailure},
		{"abandoned", OutcomeAbandoned},
		{"ongoing", OutcomeUnknown},
		{"pending", OutcomeUnknown},
		{"queued", OutcomeUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			body := []byte(fmt.Sprintf(
				`{"event":"charge.%s","data":{"id":42,"status":%q,"reference":"PAY-1","amount":500000,"currency":"NGN","fees":7500}}`,
				tc.status, tc.status))

			res, err := client.ParseWebhook(body)
			require.NoError(t, err)

			assert.Equal(t, tc.want, res.Outcome)
			assert.Equal(t, "PAY-1", res.Reference)
			assert.Equal(t, "42", res.EventID)
			assert.Equal(t, int64(500000), res.AmountKobo)
			assert.Equal(t, "NGN", res.Currency)
		})
	}
}

func TestPaystack_ParseWebhook_Malformed(t *testing.T) {
	client := paystackTestClient("")

	_, err := client.ParseWebhook([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	// tanpa reference = tidak bisa dikaitkan ke payment mana pun
	_, err = client.ParseWebhook([]byte(`{"event":"charge.success","data":{"status":"success"}}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

/* =========================================================
   HTTP client (initialize & verify)
========================================================= */

func TestPaystack_StartCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":true,"message":"Authorization URL created","data":{
			"authorization_url":"https://checkout.paystack.com/abc123",
			"access_code":"abc123",
			"reference":"PAY-1"}}`)
	}))
	defer srv.Close()

	client := paystackTestClient(srv.URL)
	sess, err := client.StartCharge(context.Background(), StartChargeInput{
		Reference:  "PAY-1",
		AmountKobo: 500000,
		Currency:   "NGN",
		PayerEmail: "student@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY-1", sess.Reference)
	assert.Equal(t, "https://checkout.paystack.com/abc123", sess.CheckoutURL)
	assert.Equal(t, "abc123", sess.AccessCode)
}

func TestPaystack_FetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/PAY-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":true,"message":"Verification successful","data":{
			"id":42,"status":"success","reference":"PAY-1","amount":500000,"currency":"NGN","fees":7500}}`)
	}))
	defer srv.Close()

	client := paystackTestClient(srv.URL)
	res, err := client.FetchStatus(context.Background(), "PAY-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "PAY-1", res.Reference)
	assert.Equal(t, int64(500000), res.AmountKobo)
	assert.Equal(t, int64(7500), res.FeesKobo)
}

func TestPaystack_ServerErrorIsGatewayUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := paystackTestClient(srv.URL)
	_, err := client.FetchStatus(context.Background(), "PAY-1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestPaystack_NetworkErrorIsGatewayUnavailable(t *testing.T) {
	// port yang tidak listen
	client := paystackTestClient("http://127.0.0.1:1")
	_, err := client.FetchStatus(context.Background(), "PAY-1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestPaystack_APIErrorIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status":false,"message":"Transaction reference not found"}`)
	}))
	defer srv.Close()

	client := paystackTestClient(srv.URL)
	_, err := client.FetchStatus(context.Background(), "PAY-404")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGatewayUnavailable)
}
