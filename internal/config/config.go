// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort              = "8080"
	defaultAPIBase           = "http://localhost:5000"
	defaultCurrency          = "gbp"
	defaultSessionTTL        = 120 * time.Minute
	defaultConfirmationDelay = 3 * time.Second
	defaultGatewayTimeout    = 15 * time.Second
	defaultReconcileSchedule = "@every 5m"
	defaultReconcileAttempts = 5
	defaultSendGridFromName  = "Airport Ride"
)

type Config struct {
	Port    string
	APIBase string

	StripePublishableKey string
	StripeSecretKey      string
	StripeWebhookSecret  string
	GoogleMapsKey        string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool
	JWTSecret     string

	Currency          string
	ConfirmationDelay time.Duration
	GatewayTimeout    time.Duration
	AirportsFile      string
	AllowedOrigins    []string

	ReconcileSchedule    string
	ReconcileMaxAttempts int

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
	OpsAlertEmail     string

	AdminEmail    string
	AdminPassword string
}

// Load builds a Config from environment variables, applying defaults and checking the
// required keys.
func Load() (Config, error) {
	cfg := Config{
		Port:                 envOr("PORT", defaultPort),
		APIBase:              strings.TrimRight(envOr("API_BASE", defaultAPIBase), "/"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		GoogleMapsKey:        os.Getenv("GOOGLE_MAPS_KEY"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		SessionTTL:           defaultSessionTTL,
		JWTSecret:            os.Getenv("JWT_SECRET"),
		Currency:             strings.ToLower(envOr("PAYMENT_CURRENCY", defaultCurrency)),
		ConfirmationDelay:    defaultConfirmationDelay,
		GatewayTimeout:       defaultGatewayTimeout,
		AirportsFile:         os.Getenv("AIRPORTS_FILE"),
		AllowedOrigins:       splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		ReconcileSchedule:    envOr("RECONCILE_SCHEDULE", defaultReconcileSchedule),
		ReconcileMaxAttempts: defaultReconcileAttempts,
		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail:    os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:     envOr("SENDGRID_FROM_NAME", defaultSendGridFromName),
		TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:     os.Getenv("TWILIO_FROM_NUMBER"),
		OpsAlertEmail:        os.Getenv("OPS_ALERT_EMAIL"),
		AdminEmail:           os.Getenv("ADMIN_EMAIL"),
		AdminPassword:        os.Getenv("ADMIN_PASSWORD"),
	}

	if v, err := readIntEnv("REDIS_DB"); err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	} else if v != nil {
		cfg.RedisDB = *v
	}

	if v, err := readIntEnv("SESSION_TTL_MINUTES"); err != nil {
		return Config{}, fmt.Errorf("parse SESSION_TTL_MINUTES: %w", err)
	} else if v != nil {
		cfg.SessionTTL = time.Duration(*v) * time.Minute
	}

	if v := strings.TrimSpace(os.Getenv("SESSION_COOKIE_SECURE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse SESSION_COOKIE_SECURE: %w", err)
		}
		cfg.SecureCookies = b
	}

	if v, err := readIntEnv("CONFIRMATION_DELAY_SECONDS"); err != nil {
		return Config{}, fmt.Errorf("parse CONFIRMATION_DELAY_SECONDS: %w", err)
	} else if v != nil {
		cfg.ConfirmationDelay = time.Duration(*v) * time.Second
	}

	if v, err := readIntEnv("GATEWAY_TIMEOUT_SECONDS"); err != nil {
		return Config{}, fmt.Errorf("parse GATEWAY_TIMEOUT_SECONDS: %w", err)
	} else if v != nil {
		cfg.GatewayTimeout = time.Duration(*v) * time.Second
	}

	if v, err := readIntEnv("RECONCILE_MAX_ATTEMPTS"); err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_MAX_ATTEMPTS: %w", err)
	} else if v != nil {
		cfg.ReconcileMaxAttempts = *v
	}

	for key, val := range map[string]string{
		"DATABASE_URL":      cfg.DatabaseURL,
		"SESSION_SECRET":    cfg.SessionSecret,
		"JWT_SECRET":        cfg.JWTSecret,
		"STRIPE_SECRET_KEY": cfg.StripeSecretKey,
	} {
		if val == "" {
			return Config{}, fmt.Errorf("%s is required", key)
		}
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	if cfg.GatewayTimeout <= 0 {
		return Config{}, fmt.Errorf("GATEWAY_TIMEOUT_SECONDS must be positive")
	}
	if cfg.ConfirmationDelay < 0 {
		return Config{}, fmt.Errorf("CONFIRMATION_DELAY_SECONDS cannot be negative")
	}
	if cfg.ReconcileMaxAttempts < 1 {
		return Config{}, fmt.Errorf("RECONCILE_MAX_ATTEMPTS must be at least 1")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func readIntEnv(key string) (*int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
