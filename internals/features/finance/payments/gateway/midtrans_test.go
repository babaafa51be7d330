// file: internals/features/finance/payments/gateway/midtrans_test.go
package gateway

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/configs"
)

func midtransTestClient() *MidtransClient {
	return NewMidtransClient(configs.PaymentGatewayConfig{
		Provider:  "midtrans",
		SecretKey: "SB-Mid-server-test",
		Currency:  "IDR",
	})
}

func signMidtrans(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

func midtransNotifBody(orderID, status, fraud, gross, sigKey string) []byte {
	return []byte(fmt.Sprintf(`{
		"transaction_status":%q,
		"fraud_status":%q,
		"status_code":"200",
		"signature_key":%q,
		"order_id":%q,
		"gross_amount":%q,
		"transaction_id":"txn-1",
		"currency":"IDR"
	}`, status, fraud, sigKey, orderID, gross))
}

/* =========================================================
   Signature (signature_key di body)
========================================================= */

func TestMidtrans_VerifyWebhookSignature(t *testing.T) {
	client := midtransTestClient()

	sig := signMidtrans("PAY-1", "200", "10000.00", "SB-Mid-server-test")
	body := midtransNotifBody("PAY-1", "settlement", "", "10000.00", sig)
	assert.True(t, client.VerifyWebhookSignature(body, ""))

	// server key salah
	badSig := signMidtrans("PAY-1", "200", "10000.00", "SB-Mid-server-other")
	assert.False(t, client.VerifyWebhookSignature(
		midtransNotifBody("PAY-1", "settlement", "", "10000.00", badSig), ""))

	// gross_amount diubah setelah ditandatangani
	assert.False(t, client.VerifyWebhookSignature(
		midtransNotifBody("PAY-1", "settlement", "", "999999.00", sig), ""))

	// tanpa signature_key
	assert.False(t, client.VerifyWebhookSignature(
		midtransNotifBody("PAY-1", "settlement", "", "10000.00", ""), ""))

	// body bukan JSON
	assert.False(t, client.VerifyWebhookSignature([]byte(`garbage`), ""))
}

/* =========================================================
   Normalisasi outcome
========================================================= */

func TestMidtrans_ParseWebhook_Normalization(t *testing.T) {
	client := midtransTestClient()

	tests := []struct {
		name   string
		status string
		fraud  string
		want   Outcome
	}{
		{"settlement", "settlement", "", OutcomeSuccess},
		{"capture accepted", "capture", "accept", OutcomeSuccess},
		{"capture challenged", "capture", "challenge", OutcomeUnknown},
		{"capture denied", "capture", "deny", OutcomeFailure},
		{"deny", "deny", "", OutcomeFailure},
		{"failure", "failure", "", OutcomeFailure},
		{"cancel", "cancel", "", OutcomeAbandoned},
		{"expire", "expire", "", OutcomeAbandoned},
		{"pending", "pending", "", OutcomeUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := midtransNotifBody("PAY-1", tc.status, tc.fraud, "10000.00", "sig")
			res, err := client.ParseWebhook(body)
			require.NoError(t, err)

			assert.Equal(t, tc.want, res.Outcome)
			assert.Equal(t, "PAY-1", res.Reference)
			assert.Equal(t, int64(10000), res.AmountKobo)
			assert.Equal(t, "IDR", res.Currency)
			// event id unik per (txn, status) — replay status yang sama dedup
			assert.Equal(t, "txn-1:"+tc.status, res.EventID)
		})
	}
}

func TestMidtrans_ParseWebhook_Malformed(t *testing.T) {
	client := midtransTestClient()

	_, err := client.ParseWebhook([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = client.ParseWebhook([]byte(`{"transaction_status":"settlement"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestMidtrans_GrossAmountRounding(t *testing.T) {
	client := midtransTestClient()

	// Midtrans mengirim gross_amount sebagai string desimal
	body := midtransNotifBody("PAY-1", "settlement", "", "150000.00", "sig")
	res, err := client.ParseWebhook(body)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), res.AmountKobo)
}
