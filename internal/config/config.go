package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/kjannette/avaline-backend/internal/advisory"
)

const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
)

type Config struct {
	// Server
	Port            int    `envconfig:"PORT" default:"3001"`
	APIKey          string `envconfig:"API_KEY"`
	CORSAllowOrigin string `envconfig:"CORS_ALLOW_ORIGIN" default:"*"`

	// Store
	StoreBackend string `envconfig:"STORE_BACKEND" default:"sheets"`

	// Google Sheets
	SheetID              string `envconfig:"SHEET_ID"`
	SheetRange           string `envconfig:"SHEET_RANGE" default:"OasisData!A:D"`
	SubscriberSheetRange string `envconfig:"SUBSCRIBER_SHEET_RANGE" default:"Emails!A:B"`
	GoogleClientEmail    string `envconfig:"GOOGLE_CLIENT_EMAIL"`
	GooglePrivateKey     string `envconfig:"GOOGLE_PRIVATE_KEY"`

	// Database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBName     string `envconfig:"DB_NAME" default:"avaline"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`

	// Redis
	RedisAddr       string `envconfig:"REDIS_ADDR"`
	RedisPassword   string `envconfig:"REDIS_PASSWORD"`
	RedisDB         int    `envconfig:"REDIS_DB" default:"0"`
	CacheTTLSeconds int    `envconfig:"CACHE_TTL_SECONDS" default:"60"`

	// Text generation
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-5"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`

	// Alerts
	WebhookURL           string `envconfig:"WEBHOOK_URL"`
	BotName              string `envconfig:"BOT_NAME" default:"Avaline"`
	AlertIntervalMinutes int    `envconfig:"ALERT_INTERVAL_MINUTES" default:"30"`

	// Advice
	EventName                string  `envconfig:"EVENT_NAME" default:"East Rutherford Night 1"`
	AdviceDiscourageAbove    float64 `envconfig:"ADVICE_DISCOURAGE_ABOVE" default:"600"`
	AdviceEncourageAtOrBelow float64 `envconfig:"ADVICE_ENCOURAGE_AT_OR_BELOW" default:"400"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Keys pasted from a service-account JSON keep their escaped newlines.
	cfg.GooglePrivateKey = strings.ReplaceAll(cfg.GooglePrivateKey, `\n`, "\n")
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	switch c.StoreBackend {
	case BackendSheets:
		if c.SheetID == "" {
			errs = append(errs, "SHEET_ID is required for the sheets backend")
		}
		if c.GoogleClientEmail == "" || c.GooglePrivateKey == "" {
			errs = append(errs, "GOOGLE_CLIENT_EMAIL and GOOGLE_PRIVATE_KEY are required for the sheets backend")
		}
	case BackendPostgres:
		if c.DBUser == "" {
			errs = append(errs, "DB_USER is required for the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND must be %q or %q, got %q", BackendSheets, BackendPostgres, c.StoreBackend))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT out of range: %d", c.Port))
	}
	if err := c.Thresholds().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.AlertIntervalMinutes <= 0 {
		errs = append(errs, "ALERT_INTERVAL_MINUTES must be positive")
	}

	if c.OpenAIAPIKey == "" {
		fmt.Println("[WARN] OPENAI_API_KEY not set, replies will use the template")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set, REST API has no authentication")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Avaline Price Tracker Configuration ===")
	fmt.Printf("Event: %s\n", c.EventName)
	fmt.Printf("Port: %d\n", c.Port)
	fmt.Println("--------------------------------------")
	fmt.Printf("Store: %s\n", c.StoreBackend)
	if c.StoreBackend == BackendSheets {
		fmt.Printf("  Sheet: %s\n", truncID(c.SheetID))
		fmt.Printf("  Price range: %s\n", c.SheetRange)
		fmt.Printf("  Subscriber range: %s\n", c.SubscriberSheetRange)
	} else {
		fmt.Printf("  Database: %s@%s:%d/%s\n", c.DBUser, c.DBHost, c.DBPort, c.DBName)
	}
	fmt.Printf("Cache: %s\n", boolLabel(c.RedisAddr != "", c.RedisAddr, "disabled"))
	fmt.Println("--------------------------------------")
	fmt.Printf("Replies: %s\n", boolLabel(c.OpenAIAPIKey != "", "OpenAI "+c.OpenAIModel, "template only"))
	fmt.Printf("Advice: discourage above $%.0f, encourage at or below $%.0f\n",
		c.AdviceDiscourageAbove, c.AdviceEncourageAtOrBelow)
	fmt.Printf("Alerts: every %d min, webhook %s\n",
		c.AlertIntervalMinutes, boolLabel(c.WebhookURL != "", "configured", "not set (console only)"))
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) Thresholds() advisory.Thresholds {
	return advisory.Thresholds{
		DiscourageAbove:    c.AdviceDiscourageAbove,
		EncourageAtOrBelow: c.AdviceEncourageAtOrBelow,
	}
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) AlertInterval() time.Duration {
	return time.Duration(c.AlertIntervalMinutes) * time.Minute
}

// --- helpers ---

func truncID(id string) string {
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
