// file: internals/features/finance/payments/service/reconcile_service_test.go
package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"schoolku_backend/internals/features/finance/payments/gateway"
	model "schoolku_backend/internals/features/finance/payments/model"
)

func successResult(amount int64) gateway.Result {
	return gateway.Result{
		Provider:   model.GatewayProviderPaystack,
		Reference:  "PAY-20250101-000001",
		EventID:    "1001",
		Outcome:    gateway.OutcomeSuccess,
		AmountKobo: amount,
	}
}

func withOutcome(o gateway.Outcome) gateway.Result {
	r := successResult(500_000)
	r.Outcome = o
	return r
}

/* =========================================================
   Decide — transisi dasar
========================================================= */

func TestDecide_BasicTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current model.PaymentStatus
		res     gateway.Result
		want    Action
	}{
		{"initiated + success", model.PaymentStatusInitiated, withOutcome(gateway.OutcomeSuccess), ActionComplete},
		{"initiated + failure", model.PaymentStatusInitiated, withOutcome(gateway.OutcomeFailure), ActionFail},
		{"initiated + abandoned", model.PaymentStatusInitiated, withOutcome(gateway.OutcomeAbandoned), ActionCancel},
		{"initiated + unknown", model.PaymentStatusInitiated, withOutcome(gateway.OutcomeUnknown), ActionNone},
		{"pending + success", model.PaymentStatusPendingConfirmation, withOutcome(gateway.OutcomeSuccess), ActionComplete},
		{"pending + failure", model.PaymentStatusPendingConfirmation, withOutcome(gateway.OutcomeFailure), ActionFail},
		{"pending + abandoned", model.PaymentStatusPendingConfirmation, withOutcome(gateway.OutcomeAbandoned), ActionCancel},
		{"pending + unknown", model.PaymentStatusPendingConfirmation, withOutcome(gateway.OutcomeUnknown), ActionNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.current, 500_000, tc.res)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Webhook bisa tiba sebelum payer balik (record masih initiated):
// hasil final tetap di-apply langsung, tidak menunggu callback.
func TestDecide_WebhookBeforeCallbackFinalizesDirectly(t *testing.T) {
	got := Decide(model.PaymentStatusInitiated, 500_000, successResult(500_000))
	assert.Equal(t, ActionComplete, got)
}

/* =========================================================
   Decide — terminal absorption & konflik
========================================================= */

func TestDecide_DuplicateAgreementIsNoop(t *testing.T) {
	// webhook retry dengan isi sama: tidak ada mutasi kedua
	got := Decide(model.PaymentStatusCompleted, 500_000, successResult(500_000))
	assert.Equal(t, ActionNone, got)

	got = Decide(model.PaymentStatusFailed, 500_000, withOutcome(gateway.OutcomeFailure))
	assert.Equal(t, ActionNone, got)

	got = Decide(model.PaymentStatusCancelled, 500_000, withOutcome(gateway.OutcomeAbandoned))
	assert.Equal(t, ActionNone, got)
}

func TestDecide_DisagreeingOutcomeIsConflict(t *testing.T) {
	// completed lalu datang failure utk reference yang sama
	got := Decide(model.PaymentStatusCompleted, 500_000, withOutcome(gateway.OutcomeFailure))
	assert.Equal(t, ActionConflict, got)

	// failed lalu datang success
	got = Decide(model.PaymentStatusFailed, 500_000, successResult(500_000))
	assert.Equal(t, ActionConflict, got)

	// cancelled lalu datang success
	got = Decide(model.PaymentStatusCancelled, 500_000, successResult(500_000))
	assert.Equal(t, ActionConflict, got)
}

func TestDecide_AmountMismatchOnCompletedIsConflict(t *testing.T) {
	// success kedua dengan nominal beda = bukan duplicate, tapi konflik
	got := Decide(model.PaymentStatusCompleted, 500_000, successResult(300_000))
	assert.Equal(t, ActionConflict, got)
}

func TestDecide_UnknownNeverMovesTerminalState(t *testing.T) {
	for _, st := range []model.PaymentStatus{
		model.PaymentStatusCompleted,
		model.PaymentStatusFailed,
		model.PaymentStatusCancelled,
	} {
		got := Decide(st, 500_000, withOutcome(gateway.OutcomeUnknown))
		assert.Equal(t, ActionNone, got, "status %s", st)
	}
}

// Urutan kedatangan tidak mengubah hasil akhir: siapa pun yang menang
// balapan, attempt kedua atas hasil yang sama selalu no-op.
func TestDecide_OrderIndependentForSameResult(t *testing.T) {
	res := successResult(500_000)

	first := Decide(model.PaymentStatusPendingConfirmation, 500_000, res)
	assert.Equal(t, ActionComplete, first)

	// state setelah pemenang apply
	second := Decide(model.PaymentStatusCompleted, 500_000, res)
	assert.Equal(t, ActionNone, second)
}

/* =========================================================
   GenReference
========================================================= */

func TestGenReference(t *testing.T) {
	a := GenReference("PAY")
	b := GenReference("PAY")

	assert.True(t, strings.HasPrefix(a, "PAY-"))
	assert.NotEqual(t, a, b, "reference harus unik antar panggilan")
	assert.LessOrEqual(t, len(a), 100, "muat di kolom varchar(100)")
}
