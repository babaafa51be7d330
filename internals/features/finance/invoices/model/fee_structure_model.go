package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* Selaras dengan ENUM di PostgreSQL: fee_type */

const (
	FeeTypeTuition     = "tuition"
	FeeTypeTransport   = "transport"
	FeeTypeHostel      = "hostel"
	FeeTypeLibrary     = "library"
	FeeTypeLaboratory  = "laboratory"
	FeeTypeExamination = "examination"
	FeeTypeSports      = "sports"
	FeeTypeDevelopment = "development"
	FeeTypeOther       = "other"
)

// FeeStructure = master tarif per jenis biaya; sumber baris invoice.
type FeeStructure struct {
	FeeStructureID uuid.UUID `gorm:"column:fee_structure_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_structure_id"`

	FeeStructureName string `gorm:"column:fee_structure_name;type:varchar(200);not null" json:"fee_structure_name"`
	FeeStructureCode string `gorm:"column:fee_structure_code;type:varchar(50);not null;uniqueIndex:uq_fee_structures_code" json:"fee_structure_code"`
	FeeStructureType string `gorm:"column:fee_structure_type;type:fee_type;not null;default:'tuition'" json:"fee_structure_type"`

	FeeStructureAmountKobo int64 `gorm:"column:fee_structure_amount_kobo;not null;check:fee_structure_amount_kobo >= 0" json:"fee_structure_amount_kobo"`

	FeeStructureIsActive bool `gorm:"column:fee_structure_is_active;not null;default:true" json:"fee_structure_is_active"`

	FeeStructureCreatedAt time.Time      `gorm:"column:fee_structure_created_at;autoCreateTime" json:"fee_structure_created_at"`
	FeeStructureUpdatedAt time.Time      `gorm:"column:fee_structure_updated_at;autoUpdateTime" json:"fee_structure_updated_at"`
	FeeStructureDeletedAt gorm.DeletedAt `gorm:"column:fee_structure_deleted_at;index" json:"fee_structure_deleted_at,omitempty"`
}

func (FeeStructure) TableName() string { return "fee_structures" }
