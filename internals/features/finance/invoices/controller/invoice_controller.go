// file: internals/features/finance/invoices/controller/invoice_controller.go
package controller

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/finance/invoices/dto"
	model "schoolku_backend/internals/features/finance/invoices/model"
	"schoolku_backend/internals/features/finance/invoices/service"
	helper "schoolku_backend/internals/helpers"
)

type InvoiceController struct {
	DB *gorm.DB
}

func NewInvoiceController(db *gorm.DB) *InvoiceController {
	return &InvoiceController{DB: db}
}

var validate = validator.New()

/* =========================================================
   POST /api/invoices — terbitkan invoice baru
========================================================= */

func (ctrl *InvoiceController) CreateInvoice(c *fiber.Ctx) error {
	var req dto.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Format request tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "NGN"
	}

	var inv model.Invoice
	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		number, err := service.NextInvoiceNumber(c.Context(), tx)
		if err != nil {
			return err
		}

		items := make([]model.InvoiceItem, 0, len(req.Items))
		var total int64
		for _, it := range req.Items {
			item := model.InvoiceItem{
				InvoiceItemFeeStructureID: it.FeeStructureID,
				InvoiceItemDescription:    it.Description,
				InvoiceItemQuantity:       it.Quantity,
				InvoiceItemUnitAmountKobo: it.UnitAmountKobo,
			}
			item.ComputeLineTotal()
			total += item.InvoiceItemLineTotalKobo
			items = append(items, item)
		}

		inv = model.Invoice{
			InvoiceNumber:       number,
			InvoiceStudentID:    req.StudentID,
			InvoiceStudentEmail: req.StudentEmail,
			InvoiceCurrency:     currency,
			InvoiceTotalKobo:    total,
			InvoicePaidKobo:     0,
			InvoiceBalanceKobo:  total,
			InvoiceStatus:       model.ComputeStatus(total, 0),
			InvoiceIssuedAt:     time.Now(),
			InvoiceDueAt:        req.DueAt,
			Items:               items,
		}
		return tx.Create(&inv).Error
	})
	if err != nil {
		log.Printf("[ERROR] create invoice: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat invoice")
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Invoice dibuat", dto.ToInvoiceResponse(&inv, true))
}

/* =========================================================
   GET /api/invoices & GET /api/invoices/:id
========================================================= */

func (ctrl *InvoiceController) ListInvoices(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.WithContext(c.Context()).Model(&model.Invoice{})
	if raw := c.Query("student_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "student_id tidak valid")
		}
		q = q.Where("invoice_student_id = ?", id)
	}
	if raw := c.Query("status"); raw != "" {
		q = q.Where("invoice_status = ?", raw)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menghitung invoice")
	}

	var rows []model.Invoice
	if err := q.Order("invoice_issued_at DESC").
		Limit(paging.Limit).Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		log.Printf("[ERROR] list invoices: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil daftar invoice")
	}

	return helper.Success(c, "Daftar invoice", fiber.Map{
		"items":      dto.ToInvoiceResponses(rows),
		"pagination": helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage),
	})
}

func (ctrl *InvoiceController) GetInvoiceByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID invoice tidak valid")
	}

	var inv model.Invoice
	if err := ctrl.DB.WithContext(c.Context()).
		Preload("Items").
		First(&inv, "invoice_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Invoice tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil invoice")
	}

	return helper.Success(c, "Detail invoice", dto.ToInvoiceResponse(&inv, true))
}

/* =========================================================
   GET /api/invoices/:id/balance — snapshot tagihan
========================================================= */

func (ctrl *InvoiceController) GetInvoiceBalance(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID invoice tidak valid")
	}

	snap, err := service.GetBalance(c.Context(), ctrl.DB, id)
	if err != nil {
		if errors.Is(err, service.ErrInvoiceNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Invoice tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil balance")
	}
	return helper.Success(c, "Balance invoice", snap)
}

/* =========================================================
   POST /api/invoices/:id/void — batalkan invoice (staff)
========================================================= */

func (ctrl *InvoiceController) VoidInvoice(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID invoice tidak valid")
	}

	var req dto.VoidInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Format request tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	actorID := uuid.Nil
	if raw, ok := c.Locals("user_id").(string); ok {
		if parsed, err := uuid.Parse(raw); err == nil {
			actorID = parsed
		}
	}

	inv, err := service.Void(c.Context(), ctrl.DB, id, req.Reason, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Invoice tidak ditemukan")
		case errors.Is(err, service.ErrPendingPayments):
			return fiber.NewError(fiber.StatusConflict, "Masih ada pembayaran menunggu konfirmasi, selesaikan dulu")
		default:
			log.Printf("[ERROR] void invoice %s: %v", id, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal membatalkan invoice")
		}
	}

	return helper.Success(c, "Invoice dibatalkan", dto.ToInvoiceResponse(inv, false))
}
