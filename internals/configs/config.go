package configs

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var (
	JWTSecret        string
	JWTRefreshSecret string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	JWTRefreshSecret = GetEnv("JWT_REFRESH_SECRET")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	} else {
		log.Println("✅ JWT_SECRET berhasil dimuat.")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// =======================
// PAYMENT GATEWAY CONFIG
// =======================

// PaymentGatewayConfig adalah value object kredensial gateway.
// Dibangun sekali di main() lalu dioper ke controller/gateway client,
// supaya tidak ada state global mutable untuk secret.
type PaymentGatewayConfig struct {
	Provider      string // "paystack" | "midtrans"
	SecretKey     string
	PublicKey     string
	BaseURL       string
	WebhookSecret string
	CallbackURL   string
	Currency      string // kode mata uang deployment, default NGN
	UseProduction bool
}

func LoadPaymentGatewayConfig() PaymentGatewayConfig {
	cfg := PaymentGatewayConfig{
		Provider:      strings.ToLower(GetEnv("PAYMENT_GATEWAY_PROVIDER", "paystack")),
		SecretKey:     GetEnv("PAYMENT_GATEWAY_SECRET_KEY"),
		PublicKey:     GetEnv("PAYMENT_GATEWAY_PUBLIC_KEY"),
		BaseURL:       GetEnv("PAYMENT_GATEWAY_BASE_URL", "https://api.paystack.co"),
		WebhookSecret: GetEnv("PAYMENT_GATEWAY_WEBHOOK_SECRET"),
		CallbackURL:   GetEnv("PAYMENT_GATEWAY_CALLBACK_URL"),
		Currency:      GetEnv("PAYMENT_GATEWAY_CURRENCY", "NGN"),
		UseProduction: GetEnv("PAYMENT_GATEWAY_ENV", "sandbox") == "production",
	}

	if cfg.SecretKey == "" {
		log.Println("❌ PAYMENT_GATEWAY_SECRET_KEY belum diset!")
	}
	if cfg.WebhookSecret == "" {
		// Paystack memakai secret key sebagai HMAC key webhook
		cfg.WebhookSecret = cfg.SecretKey
	}
	return cfg
}
