// file: internals/features/finance/payments/controller/payment_controller.go
package controller

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	ledger "schoolku_backend/internals/features/finance/invoices/service"
	"schoolku_backend/internals/features/finance/payments/dto"
	"schoolku_backend/internals/features/finance/payments/gateway"
	model "schoolku_backend/internals/features/finance/payments/model"
	"schoolku_backend/internals/features/finance/payments/service"
	helper "schoolku_backend/internals/helpers"
)

type PaymentController struct {
	DB      *gorm.DB
	Service *service.ReconcileService
}

func NewPaymentController(db *gorm.DB, svc *service.ReconcileService) *PaymentController {
	return &PaymentController{DB: db, Service: svc}
}

var validate = validator.New()

/* =========================================================
   POST /api/payments — mulai pembayaran invoice
========================================================= */

func (ctrl *PaymentController) CreatePayment(c *fiber.Ctx) error {
	var req dto.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Format request tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctrl.Service.StartPayment(c.Context(), service.StartPaymentInput{
		InvoiceID:  req.InvoiceID,
		Reference:  req.Reference,
		AmountKobo: req.AmountKobo,
		PayerEmail: req.PayerEmail,
		ReturnURL:  req.ReturnURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvoiceNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Invoice tidak ditemukan")
		case errors.Is(err, ledger.ErrInvoiceVoid):
			return fiber.NewError(fiber.StatusConflict, "Invoice sudah void, tidak menerima pembayaran")
		case errors.Is(err, ledger.ErrOverpayment):
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Nominal melebihi sisa tagihan invoice")
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(fiber.StatusBadRequest, "Nominal pembayaran tidak valid")
		case errors.Is(err, service.ErrReferenceUsed):
			return fiber.NewError(fiber.StatusConflict, "Reference sudah dipakai pembayaran yang selesai")
		case errors.Is(err, service.ErrInvoiceMismatch):
			return fiber.NewError(fiber.StatusConflict, "Reference terdaftar untuk invoice lain")
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			return fiber.NewError(fiber.StatusBadGateway, "Payment gateway sedang tidak tersedia, coba lagi")
		default:
			log.Printf("[ERROR] create payment: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal memulai pembayaran")
		}
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Pembayaran dimulai", dto.CreatePaymentResponse{
		Payment:     dto.ToPaymentResponse(res.Payment),
		CheckoutURL: res.CheckoutURL,
		AccessCode:  res.AccessCode,
	})
}

/* =========================================================
   GET /api/payments/:id & GET /api/payments
========================================================= */

func (ctrl *PaymentController) GetPaymentByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID payment tidak valid")
	}

	p, err := ctrl.Service.GetPaymentByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUnknownReference) {
			return fiber.NewError(fiber.StatusNotFound, "Payment tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil payment")
	}
	return helper.Success(c, "Detail payment", dto.ToPaymentResponse(p))
}

func (ctrl *PaymentController) ListPayments(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	filter := service.ListPaymentsFilter{
		Limit:  paging.PerPage,
		Offset: paging.Offset,
	}
	if raw := c.Query("invoice_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invoice_id tidak valid")
		}
		filter.InvoiceID = &id
	}
	if raw := c.Query("status"); raw != "" {
		st := model.PaymentStatus(raw)
		filter.Status = &st
	}

	rows, total, err := ctrl.Service.ListPayments(c.Context(), filter)
	if err != nil {
		log.Printf("[ERROR] list payments: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil daftar payment")
	}

	return helper.Success(c, "Daftar payment", fiber.Map{
		"items":      dto.ToPaymentResponses(rows),
		"pagination": helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage),
	})
}

/* =========================================================
   POST /payments/webhooks/gateway — endpoint publik PSP
========================================================= */

// GatewayWebhook menerima delivery webhook dari PSP.
// Body HARUS dibaca raw (signature dihitung atas byte mentah).
func (ctrl *PaymentController) GatewayWebhook(c *fiber.Ctx) error {
	rawBody := c.Body()
	signature := ctrl.signatureHeader(c)

	headers := map[string]string{}
	for k, vals := range c.GetReqHeaders() {
		if len(vals) > 0 {
			headers[k] = vals[0]
		}
	}

	receipt, err := ctrl.Service.ProcessWebhook(c.Context(), rawBody, signature, headers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignatureVerification):
			return fiber.NewError(fiber.StatusBadRequest, "Signature tidak valid")
		case errors.Is(err, gateway.ErrMalformedPayload):
			return fiber.NewError(fiber.StatusBadRequest, "Payload tidak bisa diproses")
		default:
			// transient (DB error dll) → 500 supaya PSP retry delivery
			log.Printf("[ERROR] process webhook: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal memproses webhook")
		}
	}

	return helper.Success(c, "Webhook diterima", receipt)
}

func (ctrl *PaymentController) signatureHeader(c *fiber.Ctx) string {
	// Paystack: x-paystack-signature. Midtrans menaruh signature di body,
	// header dibiarkan kosong dan adapter yang menangani.
	if sig := c.Get("x-paystack-signature"); sig != "" {
		return sig
	}
	return c.Get("x-callback-signature")
}

/* =========================================================
   GET /payments/callback/:reference — redirect payer (advisory)
========================================================= */

func (ctrl *PaymentController) PaymentCallback(c *fiber.Ctx) error {
	reference := c.Params("reference")
	if reference == "" {
		reference = c.Query("reference") // Paystack menaruh ?reference= di return URL
	}
	if reference == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Reference tidak ada")
	}

	p, err := ctrl.Service.HandleCallback(c.Context(), reference)
	if err != nil {
		if errors.Is(err, service.ErrUnknownReference) {
			return fiber.NewError(fiber.StatusNotFound, "Pembayaran tidak ditemukan")
		}
		log.Printf("[ERROR] payment callback ref=%s: %v", reference, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memproses callback")
	}

	msg := "Pembayaran sedang diverifikasi, status final menyusul"
	if p.IsTerminal() {
		msg = "Pembayaran sudah final"
	}
	return helper.Success(c, "Callback diterima", dto.CallbackResponse{
		Reference: p.PaymentReference,
		Status:    p.PaymentStatus,
		IsFinal:   p.IsTerminal(),
		Message:   msg,
	})
}

/* =========================================================
   POST /api/payments/reconcile — manual reconcile (staff)
========================================================= */

func (ctrl *PaymentController) ManualReconcile(c *fiber.Ctx) error {
	var req dto.ManualReconcileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Format request tidak valid")
		}
		if err := validate.Struct(req); err != nil {
			return helper.ValidationError(c, err)
		}
	}

	stuckFor := time.Duration(req.StuckForHours) * time.Hour
	summary, err := ctrl.Service.ManualReconcile(c.Context(), req.Reference, stuckFor)
	if err != nil {
		log.Printf("[ERROR] manual reconcile: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menjalankan rekonsiliasi")
	}
	return helper.Success(c, "Rekonsiliasi selesai", summary)
}
