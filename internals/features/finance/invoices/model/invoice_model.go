package model

import (
	"time"

	"github.com/google/uuid"
)

/* ===================== Enums (string) ===================== */
/* Selaras dengan ENUM di PostgreSQL: invoice_status */

type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusVoid          InvoiceStatus = "void" // terminal, set manual oleh staff
)

// ComputeStatus = proyeksi murni status dari (total, paid).
// Status DISIMPAN untuk query performance, tapi WAJIB dihitung ulang
// lewat fungsi ini di transaksi yang sama setiap amount_paid berubah —
// tidak pernah di-set lepas dari amount. Void tidak lewat sini.
func ComputeStatus(totalKobo, paidKobo int64) InvoiceStatus {
	switch {
	case paidKobo <= 0:
		return InvoiceStatusUnpaid
	case paidKobo < totalKobo:
		return InvoiceStatusPartiallyPaid
	default:
		return InvoiceStatusPaid
	}
}

/* ===================== Model ===================== */

// Invoice = sumber kebenaran "berapa yang masih terutang".
// Invariant: invoice_balance_kobo == invoice_total_kobo - invoice_paid_kobo ≥ 0.
// Tidak pernah dihapus fisik; pensiun via status void.
type Invoice struct {
	InvoiceID uuid.UUID `gorm:"column:invoice_id;type:uuid;default:gen_random_uuid();primaryKey" json:"invoice_id"`

	// Nomor urut per sekolah (human-facing)
	InvoiceNumber int64 `gorm:"column:invoice_number;not null" json:"invoice_number"`

	InvoiceStudentID    uuid.UUID `gorm:"column:invoice_student_id;type:uuid;not null;index" json:"invoice_student_id"`
	InvoiceStudentEmail string    `gorm:"column:invoice_student_email;type:varchar(254);not null" json:"invoice_student_email"`

	InvoiceCurrency string `gorm:"column:invoice_currency;type:varchar(8);not null;default:NGN" json:"invoice_currency"`

	// Nominal dalam minor units (kobo)
	InvoiceTotalKobo   int64 `gorm:"column:invoice_total_kobo;not null;check:invoice_total_kobo >= 0" json:"invoice_total_kobo"`
	InvoicePaidKobo    int64 `gorm:"column:invoice_paid_kobo;not null;default:0;check:invoice_paid_kobo >= 0" json:"invoice_paid_kobo"`
	InvoiceBalanceKobo int64 `gorm:"column:invoice_balance_kobo;not null;check:invoice_balance_kobo >= 0" json:"invoice_balance_kobo"`

	InvoiceStatus InvoiceStatus `gorm:"column:invoice_status;type:invoice_status;not null;default:'unpaid';index" json:"invoice_status"`

	// Void audit
	InvoiceVoidReason *string    `gorm:"column:invoice_void_reason" json:"invoice_void_reason,omitempty"`
	InvoiceVoidedBy   *uuid.UUID `gorm:"column:invoice_voided_by;type:uuid" json:"invoice_voided_by,omitempty"`
	InvoiceVoidedAt   *time.Time `gorm:"column:invoice_voided_at" json:"invoice_voided_at,omitempty"`

	InvoiceIssuedAt time.Time  `gorm:"column:invoice_issued_at;not null;default:now()" json:"invoice_issued_at"`
	InvoiceDueAt    *time.Time `gorm:"column:invoice_due_at" json:"invoice_due_at,omitempty"`

	InvoiceCreatedAt time.Time `gorm:"column:invoice_created_at;autoCreateTime" json:"invoice_created_at"`
	InvoiceUpdatedAt time.Time `gorm:"column:invoice_updated_at;autoUpdateTime" json:"invoice_updated_at"`

	// Preload relasi items
	Items []InvoiceItem `gorm:"foreignKey:InvoiceItemInvoiceID;references:InvoiceID" json:"items,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }

/* ===================== Helpers ===================== */

func (i *Invoice) IsVoid() bool { return i.InvoiceStatus == InvoiceStatusVoid }

func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.InvoiceDueAt != nil && i.InvoiceDueAt.Before(now) && i.InvoiceBalanceKobo > 0 && !i.IsVoid()
}
