// file: internals/features/finance/payments/service/notifier.go
package service

import (
	"context"
	"log"

	model "schoolku_backend/internals/features/finance/payments/model"
)

// Notifier dipanggil SETELAH transisi payment commit (bukan di dalam
// transaksi) — gagal kirim notifikasi tidak boleh membatalkan rekonsiliasi.
type Notifier interface {
	PaymentCompleted(ctx context.Context, p *model.Payment)
}

// ConsoleNotifier = implementasi default: log saja.
// Integrasi email/WhatsApp tinggal mengganti implementasi interface ini.
type ConsoleNotifier struct{}

func (ConsoleNotifier) PaymentCompleted(_ context.Context, p *model.Payment) {
	if p == nil {
		return
	}
	log.Printf("[INFO] payment completed ref=%s invoice=%s amount=%d %s payer=%s",
		p.PaymentReference, p.PaymentInvoiceID, p.PaymentAmountKobo, p.PaymentCurrency, p.PaymentPayerEmail)
}
