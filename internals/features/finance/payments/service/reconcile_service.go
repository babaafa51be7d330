// file: internals/features/finance/payments/service/reconcile_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ledger "schoolku_backend/internals/features/finance/invoices/service"
	"schoolku_backend/internals/features/finance/payments/gateway"
	model "schoolku_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Reconciliation Engine

   Entry points (boleh balapan untuk reference yang sama):
     A. Redirect callback  → advisory, TIDAK pernah memfinalkan payment
     B. Webhook (signed)   → satu-satunya jalur finalisasi
     C. Manual reconcile   → fetch_status, lewat jalur aplikasi yang sama

   Semua transisi terminal lewat applyOutcome: satu transaksi,
   row payment dikunci FOR UPDATE, jadi dua attempt konkuren
   terserialisasi — yang kalah menemukan record sudah terminal.
========================================================= */

var (
	ErrUnknownReference       = errors.New("unknown payment reference")
	ErrSignatureVerification  = errors.New("webhook signature verification failed")
	ErrReconciliationConflict = errors.New("authoritative sources disagree for this reference")
	ErrReferenceUsed          = errors.New("payment reference already finalized")
	ErrInvoiceMismatch        = errors.New("reference belongs to a different invoice")
)

type ReconcileService struct {
	DB       *gorm.DB
	GW       gateway.Client
	Notifier Notifier

	// Batas umur pending_confirmation sebelum dianggap stuck (default 24h)
	StuckAfter time.Duration
}

func NewReconcileService(db *gorm.DB, gw gateway.Client, n Notifier) *ReconcileService {
	if n == nil {
		n = ConsoleNotifier{}
	}
	return &ReconcileService{DB: db, GW: gw, Notifier: n, StuckAfter: 24 * time.Hour}
}

/* =========================================================
   Decision — fungsi murni state machine (unit-testable)
========================================================= */

type Action int

const (
	ActionNone Action = iota
	ActionComplete
	ActionFail
	ActionCancel
	ActionConflict
)

// Decide menentukan aksi atas (status sekarang, hasil gateway).
// Aturan:
//   - outcome unknown tidak pernah menggerakkan state
//   - record terminal menyerap hasil yang SETUJU (no-op) dan menandai
//     konflik untuk hasil yang tidak setuju — tanpa mutasi
//   - completed + success dengan amount berbeda = konflik
func Decide(current model.PaymentStatus, recordAmountKobo int64, res gateway.Result) Action {
	if res.Outcome == gateway.OutcomeUnknown {
		return ActionNone
	}

	if current.IsTerminal() {
		switch current {
		case model.PaymentStatusCompleted:
			if res.Outcome == gateway.OutcomeSuccess && res.AmountKobo == recordAmountKobo {
				return ActionNone // duplicate agreement
			}
			return ActionConflict
		case model.PaymentStatusFailed:
			if res.Outcome == gateway.OutcomeFailure {
				return ActionNone
			}
			return ActionConflict
		case model.PaymentStatusCancelled:
			if res.Outcome == gateway.OutcomeAbandoned {
				return ActionNone
			}
			return ActionConflict
		}
	}

	switch res.Outcome {
	case gateway.OutcomeSuccess:
		return ActionComplete
	case gateway.OutcomeFailure:
		return ActionFail
	case gateway.OutcomeAbandoned:
		return ActionCancel
	}
	return ActionNone
}

/* =========================================================
   Entry point A — redirect callback (advisory only)
========================================================= */

// HandleCallback dipanggil saat browser payer balik dari gateway.
// Data redirect TIDAK cryptographically verifiable (bisa di-replay/spoof),
// jadi maksimal hanya menggeser initiated → pending_confirmation.
func (s *ReconcileService) HandleCallback(ctx context.Context, reference string) (*model.Payment, error) {
	var p model.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "payment_reference = ?", reference).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownReference
			}
			return err
		}
		if p.PaymentStatus != model.PaymentStatusInitiated {
			return nil // idempotent no-op; status sekarang dipakai untuk UI
		}
		p.PaymentStatus = model.PaymentStatusPendingConfirmation
		p.PaymentUpdatedAt = time.Now()
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

/* =========================================================
   Entry point B — webhook (satu-satunya jalur finalisasi)
========================================================= */

// WebhookReceipt = ringkasan hasil pemrosesan satu delivery.
type WebhookReceipt struct {
	Status        string               `json:"status"` // processed | duplicate | ignored | conflict | deferred
	PaymentID     *uuid.UUID           `json:"payment_id,omitempty"`
	PaymentStatus *model.PaymentStatus `json:"payment_status,omitempty"`
}

// ProcessWebhook memproses satu delivery webhook gateway.
// Error yang dikembalikan HANYA untuk kasus yang harus dibalas 400
// (signature gagal / payload rusak) supaya gateway retry; sisanya 200
// dengan receipt — tapi SEMUA delivery tercatat di payment_gateway_events.
func (s *ReconcileService) ProcessWebhook(ctx context.Context, rawBody []byte, signatureHeader string, headers map[string]string) (*WebhookReceipt, error) {
	// 1) Verify signature sebelum percaya isi body
	if !s.GW.VerifyWebhookSignature(rawBody, signatureHeader) {
		log.Printf("[WARN] webhook signature invalid (provider=%s)", s.GW.Provider())
		s.recordRejectedEvent(ctx, rawBody, signatureHeader, headers, "invalid signature")
		return nil, ErrSignatureVerification
	}

	// 2) Normalisasi payload
	res, err := s.GW.ParseWebhook(rawBody)
	if err != nil {
		s.recordRejectedEvent(ctx, rawBody, signatureHeader, headers, "malformed payload")
		return nil, err
	}

	// 3) Dedup: sudah ada event processed utk (provider, reference, event id)?
	duplicate, err := s.hasProcessedEvent(ctx, res)
	if err != nil {
		return nil, err
	}
	if duplicate {
		// replay at-least-once delivery: dicatat, tidak di-apply lagi
		s.recordEvent(ctx, nil, res, signatureHeader, headers, false, "duplicate delivery")
		return &WebhookReceipt{Status: "duplicate"}, nil
	}

	// 4) Apply lewat jalur yang sama dengan manual reconcile
	p, action, applyErr := s.applyOutcome(ctx, res)

	switch {
	case errors.Is(applyErr, ErrUnknownReference):
		// webhook bisa datang utk reference yang tidak kita kenal; record & ack
		s.recordEvent(ctx, nil, res, signatureHeader, headers, false, "unknown reference")
		return &WebhookReceipt{Status: "ignored"}, nil

	case errors.Is(applyErr, ledger.ErrOverpayment), errors.Is(applyErr, ledger.ErrInvoiceVoid):
		// Ledger menolak konfirmasi valid → payment ditahan di
		// pending_confirmation untuk review manual, JANGAN menebak.
		s.holdForReview(ctx, res.Reference)
		s.recordEvent(ctx, p, res, signatureHeader, headers, false, applyErr.Error())
		return &WebhookReceipt{Status: "deferred"}, nil

	case applyErr != nil:
		s.recordEvent(ctx, p, res, signatureHeader, headers, false, applyErr.Error())
		return nil, applyErr

	case action == ActionConflict:
		log.Printf("[ERROR] reconciliation conflict ref=%s outcome=%s amount=%d", res.Reference, res.Outcome, res.AmountKobo)
		s.recordEvent(ctx, p, res, signatureHeader, headers, false, ErrReconciliationConflict.Error())
		return &WebhookReceipt{Status: "conflict", PaymentID: &p.PaymentID, PaymentStatus: &p.PaymentStatus}, nil
	}

	// 5) Sukses (termasuk no-op yang setuju): baru sekarang event ditandai processed
	s.recordEvent(ctx, p, res, signatureHeader, headers, true, "")

	if action == ActionComplete {
		s.Notifier.PaymentCompleted(ctx, p)
	}
	return &WebhookReceipt{Status: "processed", PaymentID: &p.PaymentID, PaymentStatus: &p.PaymentStatus}, nil
}

/* =========================================================
   Entry point C — manual reconcile (fallback webhook hilang)
========================================================= */

type ReconcileSummary struct {
	Checked    int      `json:"checked"`
	Completed  int      `json:"completed"`
	Failed     int      `json:"failed"`
	Cancelled  int      `json:"cancelled"`
	Conflicts  int      `json:"conflicts"`
	Unchanged  int      `json:"unchanged"`
	Errors     int      `json:"errors"`
	References []string `json:"references"`
}

// ManualReconcile menanyakan status otoritatif ke gateway untuk satu
// reference, atau untuk semua payment yang stuck pending_confirmation
// lebih lama dari threshold, lalu mengalirkan hasilnya lewat applyOutcome.
func (s *ReconcileService) ManualReconcile(ctx context.Context, reference *string, stuckFor time.Duration) (*ReconcileSummary, error) {
	if stuckFor <= 0 {
		stuckFor = s.StuckAfter
	}

	var refs []string
	if reference != nil && *reference != "" {
		refs = []string{*reference}
	} else {
		cutoff := time.Now().Add(-stuckFor)
		if err := s.DB.WithContext(ctx).Model(&model.Payment{}).
			Where("payment_status = ? AND payment_updated_at < ?", model.PaymentStatusPendingConfirmation, cutoff).
			Order("payment_updated_at ASC").
			Limit(200).
			Pluck("payment_reference", &refs).Error; err != nil {
			return nil, err
		}
	}

	sum := &ReconcileSummary{References: refs}
	for _, ref := range refs {
		sum.Checked++

		res, err := s.GW.FetchStatus(ctx, ref)
		if err != nil {
			log.Printf("[WARN] manual reconcile fetch_status ref=%s err=%v", ref, err)
			sum.Errors++
			continue
		}

		p, action, err := s.applyOutcome(ctx, res)
		switch {
		case err != nil:
			log.Printf("[ERROR] manual reconcile apply ref=%s err=%v", ref, err)
			sum.Errors++
		case action == ActionComplete:
			sum.Completed++
			s.Notifier.PaymentCompleted(ctx, p)
		case action == ActionFail:
			sum.Failed++
		case action == ActionCancel:
			sum.Cancelled++
		case action == ActionConflict:
			log.Printf("[ERROR] reconciliation conflict ref=%s outcome=%s amount=%d", ref, res.Outcome, res.AmountKobo)
			sum.Conflicts++
		default:
			sum.Unchanged++
		}
	}
	return sum, nil
}

/* =========================================================
   applyOutcome — SATU-SATUNYA jalur transisi terminal
========================================================= */

// applyOutcome menerapkan hasil gateway ke payment + ledger dalam SATU
// transaksi. Row payment dikunci FOR UPDATE; pemenang balapan melakukan
// transisi, yang kalah mengambil cabang no-op/conflict.
func (s *ReconcileService) applyOutcome(ctx context.Context, res gateway.Result) (*model.Payment, Action, error) {
	var p model.Payment
	var action Action

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "payment_reference = ?", res.Reference).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownReference
			}
			return err
		}

		action = Decide(p.PaymentStatus, p.PaymentAmountKobo, res)

		now := time.Now()
		switch action {
		case ActionNone, ActionConflict:
			return nil // tanpa mutasi

		case ActionComplete:
			p.PaymentStatus = model.PaymentStatusCompleted
			p.PaymentPaidAt = &now

			// Transisi payment + mutasi ledger harus atomic:
			// dua-duanya commit, atau dua-duanya tidak kelihatan.
			if _, err := ledger.ApplyPayment(ctx, tx, p.PaymentInvoiceID, res.AmountKobo); err != nil {
				return err
			}

		case ActionFail:
			p.PaymentStatus = model.PaymentStatusFailed
			p.PaymentFailedAt = &now

		case ActionCancel:
			p.PaymentStatus = model.PaymentStatusCancelled
			p.PaymentCancelledAt = &now
		}

		if res.GatewayTxnID != "" {
			txnID := res.GatewayTxnID
			p.PaymentGatewayTxnID = &txnID
		}
		if len(res.Raw) > 0 {
			p.PaymentLastPayload = datatypes.JSON(res.Raw)
		}
		p.PaymentUpdatedAt = now

		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, action, err
	}
	if action == ActionConflict {
		return &p, action, nil
	}
	return &p, action, nil
}

/* =========================================================
   Helpers: event audit trail
========================================================= */

func (s *ReconcileService) hasProcessedEvent(ctx context.Context, res gateway.Result) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.PaymentGatewayEvent{}).
		Where(
			"gateway_event_provider = ? AND gateway_event_reference = ? AND COALESCE(gateway_event_external_id,'') = ? AND gateway_event_processed",
			res.Provider, res.Reference, res.EventID,
		).Count(&n).Error
	return n > 0, err
}

func (s *ReconcileService) recordEvent(ctx context.Context, p *model.Payment, res gateway.Result, signature string, headers map[string]string, processed bool, errMsg string) {
	headersJSON, _ := json.Marshal(headers)

	ev := model.PaymentGatewayEvent{
		GatewayEventProvider:  res.Provider,
		GatewayEventType:      strPtr(res.EventType),
		GatewayEventReference: res.Reference,
		GatewayEventHeaders:   datatypes.JSON(headersJSON),
		GatewayEventPayload:   datatypes.JSON(res.Raw),
		GatewayEventSignature: strPtr(signature),
		GatewayEventProcessed: processed,
		GatewayEventError:     strPtr(errMsg),
	}
	if res.EventID != "" {
		ev.GatewayEventExternalID = &res.EventID
	}
	if p != nil {
		ev.GatewayEventPaymentID = &p.PaymentID
	}
	if processed {
		now := time.Now()
		ev.GatewayEventProcessedAt = &now
	}

	if err := s.DB.WithContext(ctx).Create(&ev).Error; err != nil {
		// partial unique index bisa menolak replay yang balapan; aman
		lc := strings.ToLower(err.Error())
		if !strings.Contains(lc, "duplicate") && !strings.Contains(lc, "uq_gateway_events_processed") {
			log.Printf("[ERROR] gagal simpan gateway event ref=%s: %v", res.Reference, err)
		}
	}
}

// recordRejectedEvent mencatat delivery yang gagal verifikasi/parse.
// Tidak ada yang di-drop tanpa jejak, meski body-nya tidak bisa dipercaya.
func (s *ReconcileService) recordRejectedEvent(ctx context.Context, rawBody []byte, signature string, headers map[string]string, reason string) {
	headersJSON, _ := json.Marshal(headers)

	// best-effort ambil reference dari body yang belum terverifikasi
	ref := "unverified"
	var probe struct {
		Data    struct{ Reference string } `json:"data"`
		OrderID string                     `json:"order_id"`
	}
	if err := json.Unmarshal(rawBody, &probe); err == nil {
		if probe.Data.Reference != "" {
			ref = probe.Data.Reference
		} else if probe.OrderID != "" {
			ref = probe.OrderID
		}
	}

	ev := model.PaymentGatewayEvent{
		GatewayEventProvider:  s.GW.Provider(),
		GatewayEventReference: ref,
		GatewayEventHeaders:   datatypes.JSON(headersJSON),
		GatewayEventPayload:   datatypes.JSON(rawBody),
		GatewayEventSignature: strPtr(signature),
		GatewayEventProcessed: false,
		GatewayEventError:     strPtr(reason),
	}
	if err := s.DB.WithContext(ctx).Create(&ev).Error; err != nil {
		log.Printf("[ERROR] gagal simpan rejected event: %v", err)
	}
}

// holdForReview memastikan payment yang konfirmasinya ditolak ledger
// berhenti di pending_confirmation (bukan initiated) sambil menunggu operator.
func (s *ReconcileService) holdForReview(ctx context.Context, reference string) {
	if err := s.DB.WithContext(ctx).Model(&model.Payment{}).
		Where("payment_reference = ? AND payment_status = ?", reference, model.PaymentStatusInitiated).
		Updates(map[string]interface{}{
			"payment_status":     model.PaymentStatusPendingConfirmation,
			"payment_updated_at": time.Now(),
		}).Error; err != nil {
		log.Printf("[ERROR] holdForReview ref=%s: %v", reference, err)
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GenReference membuat reference dengan prefix tertentu (order id di PSP).
func GenReference(prefix string) string {
	now := time.Now().Format("20060102-150405")
	u := uuid.New().String()
	if len(u) > 8 {
		u = u[:8]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now, strings.ToUpper(u))
}
