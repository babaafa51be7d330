// file: internals/features/finance/invoices/dto/invoice_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	model "schoolku_backend/internals/features/finance/invoices/model"
)

/* ===================== Requests ===================== */

type CreateInvoiceItemRequest struct {
	FeeStructureID *uuid.UUID `json:"fee_structure_id"`
	Description    string     `json:"description" validate:"required,max=255"`
	Quantity       int        `json:"quantity" validate:"required,gt=0"`
	UnitAmountKobo int64      `json:"unit_amount_kobo" validate:"required,gt=0"`
}

type CreateInvoiceRequest struct {
	StudentID    uuid.UUID                  `json:"student_id" validate:"required"`
	StudentEmail string                     `json:"student_email" validate:"required,email"`
	Currency     string                     `json:"currency" validate:"omitempty,len=3"`
	DueAt        *time.Time                 `json:"due_at"`
	Items        []CreateInvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

type VoidInvoiceRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

/* ===================== Responses ===================== */

type InvoiceItemResponse struct {
	ItemID         uuid.UUID  `json:"item_id"`
	FeeStructureID *uuid.UUID `json:"fee_structure_id,omitempty"`
	Description    string     `json:"description"`
	Quantity       int        `json:"quantity"`
	UnitAmountKobo int64      `json:"unit_amount_kobo"`
	LineTotalKobo  int64      `json:"line_total_kobo"`
}

type InvoiceResponse struct {
	InvoiceID     uuid.UUID             `json:"invoice_id"`
	InvoiceNumber int64                 `json:"invoice_number"`
	StudentID     uuid.UUID             `json:"student_id"`
	StudentEmail  string                `json:"student_email"`
	Currency      string                `json:"currency"`
	TotalKobo     int64                 `json:"total_kobo"`
	PaidKobo      int64                 `json:"paid_kobo"`
	BalanceKobo   int64                 `json:"balance_kobo"`
	Status        model.InvoiceStatus   `json:"status"`
	VoidReason    *string               `json:"void_reason,omitempty"`
	VoidedAt      *time.Time            `json:"voided_at,omitempty"`
	IssuedAt      time.Time             `json:"issued_at"`
	DueAt         *time.Time            `json:"due_at,omitempty"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
}

func ToInvoiceItemResponse(it *model.InvoiceItem) InvoiceItemResponse {
	return InvoiceItemResponse{
		ItemID:         it.InvoiceItemID,
		FeeStructureID: it.InvoiceItemFeeStructureID,
		Description:    it.InvoiceItemDescription,
		Quantity:       it.InvoiceItemQuantity,
		UnitAmountKobo: it.InvoiceItemUnitAmountKobo,
		LineTotalKobo:  it.InvoiceItemLineTotalKobo,
	}
}

func ToInvoiceResponse(inv *model.Invoice, withItems bool) InvoiceResponse {
	resp := InvoiceResponse{
		InvoiceID:     inv.InvoiceID,
		InvoiceNumber: inv.InvoiceNumber,
		StudentID:     inv.InvoiceStudentID,
		StudentEmail:  inv.InvoiceStudentEmail,
		Currency:      inv.InvoiceCurrency,
		TotalKobo:     inv.InvoiceTotalKobo,
		PaidKobo:      inv.InvoicePaidKobo,
		BalanceKobo:   inv.InvoiceBalanceKobo,
		Status:        inv.InvoiceStatus,
		VoidReason:    inv.InvoiceVoidReason,
		VoidedAt:      inv.InvoiceVoidedAt,
		IssuedAt:      inv.InvoiceIssuedAt,
		DueAt:         inv.InvoiceDueAt,
	}
	if withItems {
		items := make([]InvoiceItemResponse, 0, len(inv.Items))
		for i := range inv.Items {
			items = append(items, ToInvoiceItemResponse(&inv.Items[i]))
		}
		resp.Items = items
	}
	return resp
}

func ToInvoiceResponses(invs []model.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invs))
	for i := range invs {
		out = append(out, ToInvoiceResponse(&invs[i], false))
	}
	return out
}
