package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// GatewayDriver selects the spreadsheet persistence backend.
const (
	DriverScript = "script" // Apps-Script style web endpoint
	DriverSheets = "sheets" // direct Google Sheets API
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Gateway GatewayConfig
	Sheets  SheetsConfig
	Cache   CacheConfig
	Import  ImportConfig
	Report  ReportConfig
	MongoDB MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// GatewayConfig describes the external spreadsheet-backed web service.
type GatewayConfig struct {
	Driver  string
	BaseURL string
}

// SheetsConfig contains configuration required for the direct Sheets driver.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// CacheConfig holds options for the local master-data cache mirror.
type CacheConfig struct {
	RefreshCron string
	TTLMinutes  int
}

// ImportConfig bounds the bulk-import pipeline.
type ImportConfig struct {
	MaxFileMB         int
	CommitConcurrency int
	SessionTTLMinutes int
}

// ReportConfig holds dashboard thresholds.
type ReportConfig struct {
	LowStockThreshold float64
}

// MongoDBConfig holds settings for the optional MongoDB cache store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Gateway: GatewayConfig{
			Driver:  getenvWithDefault("GATEWAY_DRIVER", DriverScript),
			BaseURL: os.Getenv("GATEWAY_BASE_URL"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Cache: CacheConfig{
			RefreshCron: getenvWithDefault("CACHE_REFRESH_CRON", "*/30 * * * *"),
			TTLMinutes:  getenvIntWithDefault("CACHE_TTL_MINUTES", 30),
		},
		Import: ImportConfig{
			MaxFileMB:         getenvIntWithDefault("IMPORT_MAX_FILE_MB", 5),
			CommitConcurrency: getenvIntWithDefault("IMPORT_COMMIT_CONCURRENCY", 4),
			SessionTTLMinutes: getenvIntWithDefault("IMPORT_SESSION_TTL_MINUTES", 30),
		},
		Report: ReportConfig{
			LowStockThreshold: float64(getenvIntWithDefault("LOW_STOCK_THRESHOLD", 10)),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockroom"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Gateway.Driver {
	case DriverScript:
		if c.Gateway.BaseURL == "" {
			return errors.New("GATEWAY_BASE_URL must be provided for the script driver")
		}
	case DriverSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided for the sheets driver")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided for the sheets driver")
		}
	default:
		return fmt.Errorf("unknown GATEWAY_DRIVER %q", c.Gateway.Driver)
	}

	if c.Cache.RefreshCron == "" {
		return errors.New("CACHE_REFRESH_CRON must be provided")
	}

	if c.Import.MaxFileMB <= 0 {
		return errors.New("IMPORT_MAX_FILE_MB must be positive")
	}

	if c.Import.CommitConcurrency <= 0 {
		return errors.New("IMPORT_COMMIT_CONCURRENCY must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
