package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"ledger-reports/internal/ledger"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=ledger port=5432 sslmode=disable"

type Config struct {
	HTTPPort       string
	DatabaseDSN    string
	CORSOrigins    string
	LogLevel       logrus.Level
	Location       *time.Location // zone "today" is taken in
	RequestTimeout time.Duration
	UploadLimitMB  int
	AutoMigrate    bool

	// PlanLabels maps category labels found in uploaded plan sheets.
	PlanLabels ledger.LabelMap

	// Dictionary names backing each category and payment type.
	CategoryNames    map[ledger.Category]string
	PaymentTypeNames map[ledger.PaymentType]string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using process environment")
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be a positive duration, got %q", os.Getenv("REQUEST_TIMEOUT"))
	}

	uploadLimit, err := strconv.Atoi(getEnv("UPLOAD_LIMIT_MB", "10"))
	if err != nil || uploadLimit <= 0 {
		return nil, fmt.Errorf("UPLOAD_LIMIT_MB must be a positive integer, got %q", os.Getenv("UPLOAD_LIMIT_MB"))
	}

	autoMigrate, err := strconv.ParseBool(getEnv("AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("AUTO_MIGRATE: %w", err)
	}

	labels, err := ledger.ParseLabelMap(getEnv("PLAN_CATEGORY_LABELS", "видача=issuance,збір=collection"))
	if err != nil {
		return nil, fmt.Errorf("PLAN_CATEGORY_LABELS: %w", err)
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "*"),
		LogLevel:       level,
		Location:       loc,
		RequestTimeout: timeout,
		UploadLimitMB:  uploadLimit,
		AutoMigrate:    autoMigrate,
		PlanLabels:     labels,
		CategoryNames: map[ledger.Category]string{
			ledger.CategoryIssuance:   getEnv("DICT_ISSUANCE", "видача"),
			ledger.CategoryCollection: getEnv("DICT_COLLECTION", "збір"),
		},
		PaymentTypeNames: map[ledger.PaymentType]string{
			ledger.PaymentTypeBody:    getEnv("DICT_BODY", "тіло"),
			ledger.PaymentTypePercent: getEnv("DICT_PERCENT", "відсотки"),
		},
	}

	if cfg.DatabaseDSN == defaultDSN {
		logrus.Warn("DATABASE_DSN is not set, using the local development default")
	}

	return cfg, nil
}

// CORSOriginList splits the comma separated origin list.
func (c *Config) CORSOriginList() []string {
	origins := strings.Split(c.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
