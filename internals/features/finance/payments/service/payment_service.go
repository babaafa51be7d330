// file: internals/features/finance/payments/service/payment_service.go
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	invoiceModel "schoolku_backend/internals/features/finance/invoices/model"
	ledger "schoolku_backend/internals/features/finance/invoices/service"
	"schoolku_backend/internals/features/finance/payments/gateway"
	model "schoolku_backend/internals/features/finance/payments/model"
)

/* =========================================================
   StartPayment — buka attempt pembayaran utk satu invoice
========================================================= */

type StartPaymentInput struct {
	InvoiceID  uuid.UUID
	Reference  string // opsional; kosong = digenerate
	AmountKobo int64  // opsional; 0 = sisa balance invoice
	PayerEmail string // opsional; kosong = email student di invoice
	ReturnURL  string // opsional; kosong = callback URL dari config
}

type StartPaymentResult struct {
	Payment     *model.Payment
	CheckoutURL string
	AccessCode  string
}

// StartPayment membuat (atau memakai ulang) payment record lalu memulai
// charge di gateway. Retry dengan reference yang sama idempotent:
// selama record masih open, kita panggil ulang PSP dengan reference itu
// — PSP men-dedup by reference, jadi tidak ada double charge.
func (s *ReconcileService) StartPayment(ctx context.Context, in StartPaymentInput) (*StartPaymentResult, error) {
	// 1) Validasi invoice di luar gateway call
	var inv invoiceModel.Invoice
	if err := s.DB.WithContext(ctx).
		First(&inv, "invoice_id = ?", in.InvoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrInvoiceNotFound
		}
		return nil, err
	}
	if inv.IsVoid() {
		return nil, ledger.ErrInvoiceVoid
	}

	amount := in.AmountKobo
	if amount == 0 {
		amount = inv.InvoiceBalanceKobo
	}
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	if amount > inv.InvoiceBalanceKobo {
		return nil, ledger.ErrOverpayment
	}

	email := in.PayerEmail
	if email == "" {
		email = inv.InvoiceStudentEmail
	}

	// 2) Siapkan record — reference adalah idempotency key caller
	reference := in.Reference
	if reference == "" {
		reference = GenReference("PAY")
	}

	var p model.Payment
	err := s.DB.WithContext(ctx).
		First(&p, "payment_reference = ?", reference).Error
	switch {
	case err == nil:
		// reference sudah ada: retry hanya sah utk record open + invoice sama
		if p.PaymentInvoiceID != in.InvoiceID {
			return nil, ErrInvoiceMismatch
		}
		if p.IsTerminal() {
			return nil, ErrReferenceUsed
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		now := time.Now()
		p = model.Payment{
			PaymentInvoiceID:       in.InvoiceID,
			PaymentReference:       reference,
			PaymentAmountKobo:      amount,
			PaymentCurrency:        inv.InvoiceCurrency,
			PaymentPayerEmail:      email,
			PaymentStatus:          model.PaymentStatusInitiated,
			PaymentGatewayProvider: s.GW.Provider(),
			PaymentRequestedAt:     &now,
		}
		if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	// 3) Mulai charge di PSP. Kalau gateway down, record tinggal di
	//    initiated dan caller boleh retry dengan reference yang sama.
	gctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	sess, err := s.GW.StartCharge(gctx, gateway.StartChargeInput{
		Reference:  p.PaymentReference,
		AmountKobo: p.PaymentAmountKobo,
		Currency:   p.PaymentCurrency,
		PayerEmail: p.PaymentPayerEmail,
		ReturnURL:  in.ReturnURL,
	})
	if err != nil {
		log.Printf("[WARN] start charge ref=%s gagal: %v", p.PaymentReference, err)
		return nil, err
	}

	// 4) Simpan handle sesi checkout (best-effort; charge sudah jalan)
	updates := map[string]interface{}{}
	if sess.CheckoutURL != "" {
		p.PaymentCheckoutURL = &sess.CheckoutURL
		updates["payment_checkout_url"] = sess.CheckoutURL
	}
	if sess.GatewayTxnID != "" {
		p.PaymentGatewayTxnID = &sess.GatewayTxnID
		updates["payment_gateway_txn_id"] = sess.GatewayTxnID
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&model.Payment{}).
			Where("payment_id = ?", p.PaymentID).
			Updates(updates).Error; err != nil {
			log.Printf("[ERROR] gagal simpan checkout url ref=%s: %v", p.PaymentReference, err)
		}
	}

	return &StartPaymentResult{
		Payment:     &p,
		CheckoutURL: sess.CheckoutURL,
		AccessCode:  sess.AccessCode,
	}, nil
}

/* =========================================================
   Query helpers utk controller
========================================================= */

func (s *ReconcileService) GetPaymentByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	if err := s.DB.WithContext(ctx).First(&p, "payment_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownReference
		}
		return nil, err
	}
	return &p, nil
}

func (s *ReconcileService) GetPaymentByReference(ctx context.Context, reference string) (*model.Payment, error) {
	var p model.Payment
	if err := s.DB.WithContext(ctx).First(&p, "payment_reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownReference
		}
		return nil, err
	}
	return &p, nil
}

type ListPaymentsFilter struct {
	InvoiceID *uuid.UUID
	Status    *model.PaymentStatus
	Limit     int
	Offset    int
}

func (s *ReconcileService) ListPayments(ctx context.Context, f ListPaymentsFilter) ([]model.Payment, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.Payment{})
	if f.InvoiceID != nil {
		q = q.Where("payment_invoice_id = ?", *f.InvoiceID)
	}
	if f.Status != nil {
		q = q.Where("payment_status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	var rows []model.Payment
	if err := q.Order("payment_created_at DESC").
		Limit(f.Limit).Offset(f.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
