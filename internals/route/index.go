// file: internals/route/index.go
package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/constants"
	invoiceController "schoolku_backend/internals/features/finance/invoices/controller"
	"schoolku_backend/internals/features/finance/payments/controller"
	"schoolku_backend/internals/features/finance/payments/gateway"
	"schoolku_backend/internals/features/finance/payments/service"
	authController "schoolku_backend/internals/features/users/auth/controller"
	middlewares "schoolku_backend/internals/middlewares"
	authmw "schoolku_backend/internals/middlewares/auth"
)

// SetupRoutes merakit seluruh route aplikasi.
// Pemilihan gateway client terjadi SEKALI di sini berdasarkan config;
// engine & controller tidak tahu provider mana yang dipakai.
func SetupRoutes(app *fiber.App, db *gorm.DB, gwCfg configs.PaymentGatewayConfig) {
	var gw gateway.Client
	switch gwCfg.Provider {
	case "midtrans":
		gw = gateway.NewMidtransClient(gwCfg)
	default:
		gw = gateway.NewPaystackClient(gwCfg)
	}
	log.Printf("[INFO] payment gateway aktif: %s", gw.Provider())

	reconcileSvc := service.NewReconcileService(db, gw, service.ConsoleNotifier{})

	paymentCtrl := controller.NewPaymentController(db, reconcileSvc)
	invoiceCtrl := invoiceController.NewInvoiceController(db)
	feeCtrl := invoiceController.NewFeeStructureController(db)
	authCtrl := authController.NewAuthController(db)

	// ✅ Health & base
	BaseRoutes(app, db)

	/* ===== Publik (tanpa auth) ===== */

	// Login (rate-limited terpisah dari limiter global)
	app.Post("/auth/login", middlewares.LoginRateLimiter(), authCtrl.Login)

	// Webhook PSP — diverifikasi via signature, BUKAN via JWT
	app.Post("/payments/webhooks/gateway", paymentCtrl.GatewayWebhook)

	// Redirect callback payer balik dari halaman PSP (advisory)
	app.Get("/payments/callback/:reference", paymentCtrl.PaymentCallback)
	app.Get("/payments/callback", paymentCtrl.PaymentCallback)

	/* ===== API (wajib JWT) ===== */
	api := app.Group("/api", authmw.AuthMiddleware())

	api.Get("/users/me", authCtrl.Me)
	api.Post("/users",
		authmw.OnlyRoles("Hanya admin yang boleh membuat akun", constants.RoleAdmin),
		authCtrl.Register)

	fin := api.Group("/finance")

	// Invoice
	fin.Post("/invoices",
		authmw.OnlyRoles("Hanya staff keuangan yang boleh membuat invoice", constants.FinanceStaff...),
		invoiceCtrl.CreateInvoice)
	fin.Get("/invoices", invoiceCtrl.ListInvoices)
	fin.Get("/invoices/:id", invoiceCtrl.GetInvoiceByID)
	fin.Get("/invoices/:id/balance", invoiceCtrl.GetInvoiceBalance)
	fin.Post("/invoices/:id/void",
		authmw.OnlyRoles("Hanya staff keuangan yang boleh void invoice", constants.FinanceStaff...),
		invoiceCtrl.VoidInvoice)

	// Fee structure
	fin.Post("/fee-structures",
		authmw.OnlyRoles("Hanya staff keuangan yang boleh kelola fee", constants.FinanceStaff...),
		feeCtrl.CreateFeeStructure)
	fin.Get("/fee-structures", feeCtrl.ListFeeStructures)
	fin.Post("/fee-structures/:id/deactivate",
		authmw.OnlyRoles("Hanya staff keuangan yang boleh kelola fee", constants.FinanceStaff...),
		feeCtrl.DeactivateFeeStructure)

	// Payment
	fin.Post("/payments", paymentCtrl.CreatePayment)
	fin.Get("/payments", paymentCtrl.ListPayments)
	fin.Get("/payments/:id", paymentCtrl.GetPaymentByID)
	fin.Post("/payments/reconcile",
		authmw.OnlyRoles("Hanya staff keuangan yang boleh reconcile", constants.FinanceStaff...),
		paymentCtrl.ManualReconcile)
}
