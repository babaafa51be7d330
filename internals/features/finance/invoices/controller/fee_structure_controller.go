// file: internals/features/finance/invoices/controller/fee_structure_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	model "schoolku_backend/internals/features/finance/invoices/model"
	helper "schoolku_backend/internals/helpers"
)

type FeeStructureController struct {
	DB *gorm.DB
}

func NewFeeStructureController(db *gorm.DB) *FeeStructureController {
	return &FeeStructureController{DB: db}
}

type createFeeStructureRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Code       string `json:"code" validate:"required,max=50"`
	Type       string `json:"type" validate:"omitempty,oneof=tuition transport hostel library laboratory examination sports development other"`
	AmountKobo int64  `json:"amount_kobo" validate:"required,gte=0"`
}

// POST /api/fee-structures
func (ctrl *FeeStructureController) CreateFeeStructure(c *fiber.Ctx) error {
	var req createFeeStructureRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Format request tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	if req.Type == "" {
		req.Type = model.FeeTypeTuition
	}

	fs := model.FeeStructure{
		FeeStructureName:       req.Name,
		FeeStructureCode:       strings.ToUpper(strings.TrimSpace(req.Code)),
		FeeStructureType:       req.Type,
		FeeStructureAmountKobo: req.AmountKobo,
		FeeStructureIsActive:   true,
	}
	if err := ctrl.DB.WithContext(c.Context()).Create(&fs).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "uq_fee_structures_code") {
			return fiber.NewError(fiber.StatusConflict, "Kode fee sudah dipakai")
		}
		log.Printf("[ERROR] create fee structure: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat fee structure")
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Fee structure dibuat", fs)
}

// GET /api/fee-structures
func (ctrl *FeeStructureController) ListFeeStructures(c *fiber.Ctx) error {
	q := ctrl.DB.WithContext(c.Context()).Model(&model.FeeStructure{})
	if c.Query("include_inactive") != "true" {
		q = q.Where("fee_structure_is_active = true")
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("fee_structure_type = ?", t)
	}

	var rows []model.FeeStructure
	if err := q.Order("fee_structure_code ASC").Find(&rows).Error; err != nil {
		log.Printf("[ERROR] list fee structures: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil fee structures")
	}
	return helper.Success(c, "Daftar fee structure", rows)
}

// POST /api/fee-structures/:id/deactivate
func (ctrl *FeeStructureController) DeactivateFeeStructure(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID fee structure tidak valid")
	}

	var fs model.FeeStructure
	if err := ctrl.DB.WithContext(c.Context()).
		First(&fs, "fee_structure_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Fee structure tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil fee structure")
	}

	if fs.FeeStructureIsActive {
		fs.FeeStructureIsActive = false
		if err := ctrl.DB.WithContext(c.Context()).Save(&fs).Error; err != nil {
			log.Printf("[ERROR] deactivate fee structure %s: %v", id, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menonaktifkan fee structure")
		}
	}
	return helper.Success(c, "Fee structure dinonaktifkan", fs)
}
