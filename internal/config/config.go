package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendCSV     = "csv"
	BackendMongoDB = "mongodb"
)

// Recipe sources.
const (
	RecipeSourceXLSX   = "xlsx"
	RecipeSourceSheets = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Labeling  LabelingConfig
	Recipes   RecipesConfig
	Reporting ReportingConfig
	Notify    NotifyConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// StoreConfig selects and parameterizes the persistence backend.
type StoreConfig struct {
	Backend     string
	DataDir     string
	MongoURI    string
	MongoDBName string
}

// LabelingConfig carries the batch-code separator literals. They vary by
// label stock, not by deployment, so both default to "-".
type LabelingConfig struct {
	Sep1 string
	Sep2 string
}

// RecipesConfig points at the external formulation spreadsheet.
type RecipesConfig struct {
	Source          string
	WorkbookPath    string
	CredentialsPath string
	SpreadsheetID   string
	HeaderOffset    int
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// NotifyConfig holds the outbound webhook settings. An empty URL disables
// notifications.
type NotifyConfig struct {
	WebhookURL string
	Timeout    time.Duration
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

	headerOffset, err := getenvInt("RECIPE_HEADER_OFFSET", 6)
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := getenvInt("NOTIFY_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:     getenvWithDefault("STORE_BACKEND", BackendCSV),
			DataDir:     getenvWithDefault("DATA_DIR", "data"),
			MongoURI:    os.Getenv("MONGODB_URI"),
			MongoDBName: getenvWithDefault("MONGODB_DB_NAME", "culturemedia"),
		},
		Labeling: LabelingConfig{
			Sep1: getenvWithDefault("CODE_SEPARATOR_1", "-"),
			Sep2: getenvWithDefault("CODE_SEPARATOR_2", "-"),
		},
		Recipes: RecipesConfig{
			Source:          getenvWithDefault("RECIPE_SOURCE", RecipeSourceXLSX),
			WorkbookPath:    os.Getenv("RECIPE_WORKBOOK_PATH"),
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("RECIPE_SPREADSHEET_ID"),
			HeaderOffset:    headerOffset,
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Mexico_City"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
			Timeout:    time.Duration(notifyTimeout) * time.Second,
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

	switch c.Store.Backend {
	case BackendCSV:
		if c.Store.DataDir == "" {
			return errors.New("DATA_DIR must be provided for the csv backend")
		}
	case BackendMongoDB:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI must be provided for the mongodb backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.Recipes.Source {
	case RecipeSourceXLSX:
		// WorkbookPath may be empty; the recipe endpoints are then disabled.
	case RecipeSourceSheets:
		switch {
		case c.Recipes.CredentialsPath == "":
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided for the sheets recipe source")
		case c.Recipes.SpreadsheetID == "":
			return errors.New("RECIPE_SPREADSHEET_ID must be provided for the sheets recipe source")
		}
	default:
		return fmt.Errorf("unknown RECIPE_SOURCE %q", c.Recipes.Source)
	}

	if c.Recipes.HeaderOffset < 0 {
		return errors.New("RECIPE_HEADER_OFFSET must not be negative")
	}

	if c.Labeling.Sep1 == "" && c.Labeling.Sep2 == "" {
		return errors.New("at least one code separator must be non-empty")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}
