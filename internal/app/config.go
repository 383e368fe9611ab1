package app

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/contentforge/moderation-backend/internal/logger"
	"github.com/contentforge/moderation-backend/internal/utils"
)

type Config struct {
	JWTSecretKey         string
	AccessTokenTTL       time.Duration
	AutoApproveThreshold float64
	ReviewSLA            time.Duration
	BulkWorkers          int
	ContentStoreMode     string
	AllowOrigins         []string
}

// fileConfig is the optional YAML file shape (CONFIG_PATH); environment
// variables take precedence over anything set here.
type fileConfig struct {
	AutoApproveThreshold *float64 `yaml:"auto_approve_threshold"`
	ReviewSLAHours       *int     `yaml:"review_sla_hours"`
	BulkWorkers          *int     `yaml:"bulk_workers"`
	ContentStoreMode     string   `yaml:"content_store_mode"`
	AllowOrigins         []string `yaml:"allow_origins"`
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		JWTSecretKey:         "defaultsecret",
		AccessTokenTTL:       time.Hour,
		AutoApproveThreshold: 0.8,
		ReviewSLA:            24 * time.Hour,
		BulkWorkers:          4,
		ContentStoreMode:     "http",
		AllowOrigins:         []string{"http://localhost:3000"},
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		applyFileConfig(&cfg, path, log)
	}

	cfg.JWTSecretKey = utils.GetEnv("JWT_SECRET_KEY", cfg.JWTSecretKey, log)
	accessTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", int(cfg.AccessTokenTTL.Seconds()), log)
	cfg.AccessTokenTTL = time.Duration(accessTTLSeconds) * time.Second
	cfg.AutoApproveThreshold = utils.GetEnvAsFloat("AUTO_APPROVE_THRESHOLD", cfg.AutoApproveThreshold, log)
	reviewSLAHours := utils.GetEnvAsInt("REVIEW_SLA_HOURS", int(cfg.ReviewSLA.Hours()), log)
	cfg.ReviewSLA = time.Duration(reviewSLAHours) * time.Hour
	cfg.BulkWorkers = utils.GetEnvAsInt("BULK_WORKERS", cfg.BulkWorkers, log)
	cfg.ContentStoreMode = utils.GetEnv("CONTENT_STORE_MODE", cfg.ContentStoreMode, log)
	if origins := utils.GetEnv("ALLOW_ORIGINS", "", log); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	}

	if cfg.AutoApproveThreshold < 0 {
		cfg.AutoApproveThreshold = 0
	}
	if cfg.AutoApproveThreshold > 1 {
		cfg.AutoApproveThreshold = 1
	}
	return cfg
}

func applyFileConfig(cfg *Config, path string, log *logger.Logger) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to read config file, using defaults", "path", path, "error", err)
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		log.Warn("Failed to parse config file, using defaults", "path", path, "error", err)
		return
	}
	if fc.AutoApproveThreshold != nil {
		cfg.AutoApproveThreshold = *fc.AutoApproveThreshold
	}
	if fc.ReviewSLAHours != nil {
		cfg.ReviewSLA = time.Duration(*fc.ReviewSLAHours) * time.Hour
	}
	if fc.BulkWorkers != nil {
		cfg.BulkWorkers = *fc.BulkWorkers
	}
	if mode := strings.TrimSpace(fc.ContentStoreMode); mode != "" {
		cfg.ContentStoreMode = mode
	}
	if len(fc.AllowOrigins) > 0 {
		cfg.AllowOrigins = fc.AllowOrigins
	}
	log.Info("Loaded config file", "path", path)
}
