// file: internals/databases/migrate.go
package database

import (
	"log"
	"os"

	invoiceModel "schoolku_backend/internals/features/finance/invoices/model"
	paymentModel "schoolku_backend/internals/features/finance/payments/model"
	userModel "schoolku_backend/internals/features/users/user/model"
)

// AutoMigrate dijalankan hanya kalau DB_AUTOMIGRATE=true (dev/staging).
// Produksi pakai migration SQL terkontrol.
func AutoMigrate() {
	if os.Getenv("DB_AUTOMIGRATE") != "true" {
		return
	}
	log.Println("⚙️ AutoMigrate aktif...")

	// ENUM types harus ada sebelum tabel yang memakainya
	for _, stmt := range []string{
		`DO $$ BEGIN
			CREATE TYPE payment_status AS ENUM ('initiated','pending_confirmation','completed','failed','cancelled');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		`DO $$ BEGIN
			CREATE TYPE payment_gateway_provider AS ENUM ('paystack','midtrans');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		`DO $$ BEGIN
			CREATE TYPE invoice_status AS ENUM ('unpaid','partially_paid','paid','void');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		`DO $$ BEGIN
			CREATE TYPE fee_type AS ENUM ('tuition','transport','hostel','library','laboratory','examination','sports','development','other');
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
	} {
		if err := DB.Exec(stmt).Error; err != nil {
			log.Fatalf("❌ Gagal buat enum: %v", err)
		}
	}

	if err := DB.AutoMigrate(
		&userModel.User{},
		&invoiceModel.FeeStructure{},
		&invoiceModel.Invoice{},
		&invoiceModel.InvoiceItem{},
		&paymentModel.Payment{},
		&paymentModel.PaymentGatewayEvent{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate gagal: %v", err)
	}

	// Partial unique index: maksimal SATU event processed per
	// (provider, reference, external event id) — dedup webhook di level DB.
	if err := DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_gateway_events_processed
		ON payment_gateway_events (gateway_event_provider, gateway_event_reference, COALESCE(gateway_event_external_id, ''))
		WHERE gateway_event_processed
	`).Error; err != nil {
		log.Fatalf("❌ Gagal buat index dedup webhook: %v", err)
	}

	log.Println("✅ AutoMigrate selesai.")
}
