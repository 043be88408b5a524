package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"3000"`

	DBHost string `env:"DB_HOST" envDefault:"localhost"`
	DBPort string `env:"DB_PORT" envDefault:"5432"`
	DBUser string `env:"DB_USER" envDefault:"postgres"`
	DBPass string `env:"DB_PASS" envDefault:"postgres"`
	DBName string `env:"DB_NAME" envDefault:"embroiderydb"`

	// Optional collaborators: an empty address disables the integration.
	RedisAddr   string `env:"REDIS_ADDR"`
	KafkaBroker string `env:"KAFKA_BROKER"`
	ElasticURL  string `env:"ELASTICSEARCH_URL"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret"`

	GatewayBaseURL      string `env:"GATEWAY_BASE_URL" envDefault:"https://smartgateway.hdfcbank.com"`
	GatewayMerchantID   string `env:"GATEWAY_MERCHANT_ID"`
	GatewayAPIKey       string `env:"GATEWAY_API_KEY"`
	PaymentPageClientID string `env:"PAYMENT_PAGE_CLIENT_ID"`
	ReturnURL           string `env:"PAYMENT_RETURN_URL" envDefault:"https://app.rgembroiderydesigns.com/api/payment/callback"`
	OrderSuccessURL     string `env:"ORDER_SUCCESS_URL" envDefault:"https://www.rgembroiderydesigns.com/order-success"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`

	AdminEmail string `env:"ADMIN_EMAIL" envDefault:"rgdigitizing@gmail.com"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	WhatsAppFrom     string `env:"WHATSAPP_FROM"`
	WhatsAppAdminTo  string `env:"WHATSAPP_ADMIN_TO"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPass +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable TimeZone=UTC"
}
