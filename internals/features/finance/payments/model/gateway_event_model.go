// file: internals/features/finance/payments/model/gateway_event_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/*
  payment_gateway_events = LOG WEBHOOK / CALLBACK PAYMENT GATEWAY
  - Setiap delivery dicatat, valid atau tidak (audit trail, retained selamanya)
  - Dedup: maksimal SATU row processed=true per
    (provider, reference, external event id); replay dicatat sebagai row baru
    dengan processed=false + error "duplicate delivery".
    Di DB dijaga partial unique index:
      uq_gateway_events_processed ON (gateway_event_provider,
        gateway_event_reference, gateway_event_external_id)
      WHERE gateway_event_processed
*/

type PaymentGatewayEvent struct {
	GatewayEventID uuid.UUID `gorm:"column:gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"gateway_event_id"`

	GatewayEventPaymentID *uuid.UUID `gorm:"column:gateway_event_payment_id;type:uuid;index" json:"gateway_event_payment_id,omitempty"`

	// Provider & identitas event
	GatewayEventProvider   PaymentGatewayProvider `gorm:"column:gateway_event_provider;type:payment_gateway_provider;not null" json:"gateway_event_provider"`
	GatewayEventType       *string                `gorm:"column:gateway_event_type" json:"gateway_event_type,omitempty"`
	GatewayEventReference  string                 `gorm:"column:gateway_event_reference;not null;index" json:"gateway_event_reference"`
	GatewayEventExternalID *string                `gorm:"column:gateway_event_external_id" json:"gateway_event_external_id,omitempty"`

	// Raw data (buat debug / replay)
	GatewayEventHeaders   datatypes.JSON `gorm:"column:gateway_event_headers;type:jsonb" json:"gateway_event_headers,omitempty"`
	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload;type:jsonb" json:"gateway_event_payload,omitempty"`
	GatewayEventSignature *string        `gorm:"column:gateway_event_signature" json:"gateway_event_signature,omitempty"`

	// Status processing internal
	GatewayEventProcessed bool    `gorm:"column:gateway_event_processed;not null;default:false;index" json:"gateway_event_processed"`
	GatewayEventError     *string `gorm:"column:gateway_event_error" json:"gateway_event_error,omitempty"`

	// Timestamps
	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;not null;default:now()" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at,omitempty"`
}

func (PaymentGatewayEvent) TableName() string { return "payment_gateway_events" }
