package model

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceItem = satu baris tagihan di invoice.
// line_total = qty × unit_amount; total invoice = SUM(line_total).
type InvoiceItem struct {
	InvoiceItemID uuid.UUID `gorm:"column:invoice_item_id;type:uuid;default:gen_random_uuid();primaryKey" json:"invoice_item_id"`

	InvoiceItemInvoiceID      uuid.UUID  `gorm:"column:invoice_item_invoice_id;type:uuid;not null;index" json:"invoice_item_invoice_id"`
	InvoiceItemFeeStructureID *uuid.UUID `gorm:"column:invoice_item_fee_structure_id;type:uuid" json:"invoice_item_fee_structure_id,omitempty"`

	InvoiceItemDescription    string `gorm:"column:invoice_item_description;type:text;not null" json:"invoice_item_description"`
	InvoiceItemQuantity       int    `gorm:"column:invoice_item_quantity;not null;default:1;check:invoice_item_quantity > 0" json:"invoice_item_quantity"`
	InvoiceItemUnitAmountKobo int64  `gorm:"column:invoice_item_unit_amount_kobo;not null;check:invoice_item_unit_amount_kobo >= 0" json:"invoice_item_unit_amount_kobo"`
	InvoiceItemLineTotalKobo  int64  `gorm:"column:invoice_item_line_total_kobo;not null" json:"invoice_item_line_total_kobo"`

	InvoiceItemCreatedAt time.Time `gorm:"column:invoice_item_created_at;autoCreateTime" json:"invoice_item_created_at"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// ComputeLineTotal mengisi line_total dari qty × unit.
func (it *InvoiceItem) ComputeLineTotal() {
	it.InvoiceItemLineTotalKobo = int64(it.InvoiceItemQuantity) * it.InvoiceItemUnitAmountKobo
}
