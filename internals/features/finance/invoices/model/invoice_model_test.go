// file: internals/features/finance/invoices/model/invoice_model_test.go
package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		paid  int64
		want  InvoiceStatus
	}{
		{"belum dibayar", 500_000, 0, InvoiceStatusUnpaid},
		{"dibayar sebagian", 500_000, 200_000, InvoiceStatusPartiallyPaid},
		{"lunas", 500_000, 500_000, InvoiceStatusPaid},
		{"invoice nol tetap unpaid sampai ada pembayaran", 0, 0, InvoiceStatusUnpaid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeStatus(tc.total, tc.paid))
		})
	}
}

func TestInvoiceItem_ComputeLineTotal(t *testing.T) {
	it := InvoiceItem{
		InvoiceItemQuantity:       3,
		InvoiceItemUnitAmountKobo: 150_000,
	}
	it.ComputeLineTotal()
	assert.Equal(t, int64(450_000), it.InvoiceItemLineTotalKobo)
}

func TestInvoice_IsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	inv := Invoice{
		InvoiceStatus:      InvoiceStatusUnpaid,
		InvoiceBalanceKobo: 500_000,
		InvoiceDueAt:       &past,
	}
	assert.True(t, inv.IsOverdue(now))

	inv.InvoiceDueAt = &future
	assert.False(t, inv.IsOverdue(now))

	// lunas tidak pernah overdue
	inv.InvoiceDueAt = &past
	inv.InvoiceBalanceKobo = 0
	assert.False(t, inv.IsOverdue(now))

	// void tidak pernah overdue
	inv.InvoiceBalanceKobo = 500_000
	inv.InvoiceStatus = InvoiceStatusVoid
	assert.False(t, inv.IsOverdue(now))

	// tanpa due date
	inv.InvoiceStatus = InvoiceStatusUnpaid
	inv.InvoiceDueAt = nil
	assert.False(t, inv.IsOverdue(now))
}

func TestInvoice_IsVoid(t *testing.T) {
	inv := Invoice{InvoiceStatus: InvoiceStatusUnpaid}
	assert.False(t, inv.IsVoid())
	inv.InvoiceStatus = InvoiceStatusVoid
	assert.True(t, inv.IsVoid())
}
