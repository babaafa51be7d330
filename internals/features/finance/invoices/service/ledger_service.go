// file: internals/features/finance/invoices/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "schoolku_backend/internals/features/finance/invoices/model"
)

/* =========================================================
   Invoice Ledger — satu-satunya pintu mutasi saldo invoice.
========================================================= */

var (
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrOverpayment: amount > balance_due. Kelebihan bayar TIDAK
	// di-auto-resolve (butuh credit note manual), pembayaran ditolak.
	ErrOverpayment = errors.New("payment exceeds invoice balance")

	// ErrInvoiceVoid: invoice sudah void, tidak menerima pembayaran lagi.
	ErrInvoiceVoid = errors.New("invoice is void")

	// ErrPendingPayments: masih ada payment pending_confirmation;
	// void ditunda supaya konfirmasi telat tidak menghidupkan invoice void.
	ErrPendingPayments = errors.New("invoice has payments pending confirmation")

	ErrInvalidAmount = errors.New("payment amount must be positive")
)

// ApplyPayment menambah amount_paid lalu menghitung ulang balance & status
// DI TRANSAKSI PEMANGGIL (tx). Row invoice dikunci FOR UPDATE supaya dua
// konfirmasi konkuren terhadap invoice yang sama terserialisasi.
func ApplyPayment(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID, amountKobo int64) (*model.Invoice, error) {
	if amountKobo <= 0 {
		return nil, ErrInvalidAmount
	}

	var inv model.Invoice
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "invoice_id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	if inv.IsVoid() {
		return nil, ErrInvoiceVoid
	}
	// Exact-or-under only (toleransi 0 kobo)
	if amountKobo > inv.InvoiceBalanceKobo {
		return nil, ErrOverpayment
	}

	inv.InvoicePaidKobo += amountKobo
	inv.InvoiceBalanceKobo = inv.InvoiceTotalKobo - inv.InvoicePaidKobo
	inv.InvoiceStatus = model.ComputeStatus(inv.InvoiceTotalKobo, inv.InvoicePaidKobo)
	inv.InvoiceUpdatedAt = time.Now()

	if err := tx.WithContext(ctx).Save(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// Void mematikan invoice secara permanen. Gagal kalau masih ada payment
// pending_confirmation — selesaikan dulu (manual reconcile) baru void.
func Void(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID, reason string, actorID uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&inv, "invoice_id = ?", invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if inv.IsVoid() {
			return nil // idempotent
		}

		var pending int64
		if err := tx.Table("payments").
			Where("payment_invoice_id = ? AND payment_status = 'pending_confirmation'", invoiceID).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrPendingPayments
		}

		now := time.Now()
		inv.InvoiceStatus = model.InvoiceStatusVoid
		inv.InvoiceVoidReason = &reason
		inv.InvoiceVoidedBy = &actorID
		inv.InvoiceVoidedAt = &now
		inv.InvoiceUpdatedAt = now
		return tx.Save(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// BalanceSnapshot = potret read-only saldo invoice.
type BalanceSnapshot struct {
	InvoiceID   uuid.UUID           `json:"invoice_id"`
	TotalKobo   int64               `json:"total_kobo"`
	PaidKobo    int64               `json:"paid_kobo"`
	BalanceKobo int64               `json:"balance_kobo"`
	Status      model.InvoiceStatus `json:"status"`
}

func GetBalance(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID) (BalanceSnapshot, error) {
	var inv model.Invoice
	if err := db.WithContext(ctx).
		First(&inv, "invoice_id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceSnapshot{}, ErrInvoiceNotFound
		}
		return BalanceSnapshot{}, err
	}
	return BalanceSnapshot{
		InvoiceID:   inv.InvoiceID,
		TotalKobo:   inv.InvoiceTotalKobo,
		PaidKobo:    inv.InvoicePaidKobo,
		BalanceKobo: inv.InvoiceBalanceKobo,
		Status:      inv.InvoiceStatus,
	}, nil
}

// NextInvoiceNumber menghasilkan nomor invoice incremental.
func NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	var next int64
	if err := tx.WithContext(ctx).Raw(`
		SELECT COALESCE(MAX(invoice_number), 0) + 1 FROM invoices
	`).Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
