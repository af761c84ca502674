package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Analysis configures the optional remote model enrichment.
type Analysis struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Provider configures the upstream marine data sources.
type Provider struct {
	OpenMeteoURL   string
	StormglassURL  string
	StormglassKey  string
	WorldTidesURL  string
	WorldTidesKey  string
	Timezone       string
	RequestTimeout time.Duration
	RatePerSecond  float64
	Concurrency    int
	ForecastHours  int
	CacheTTL       time.Duration
}

// Email configures SMTP delivery.
type Email struct {
	SMTPServer  string
	SMTPPort    int
	Username    string
	Password    string
	FromName    string
	FromAddress string
}

// Config holds application configuration loaded from environment.
type Config struct {
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Email    Email
	Telegram struct {
		BotToken      string
		ChatID        int64
		RatePerSecond int
	}
	API struct {
		Port     string
		BasePath string
	}
	Notification struct {
		QueueSize  int
		MaxWorkers int
	}
	Schedule struct {
		Interval time.Duration
	}
	Logging struct {
		Dir   string
		Level string
	}
	Provider Provider
	Analysis Analysis
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	var invalid []string

	// Kafka settings
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	// Database DSN
	cfg.DB.DSN = os.Getenv("DB_DSN")

	// Redis conditions cache
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = envInt("REDIS_DB", &invalid)

	// Email settings
	cfg.Email.SMTPServer = os.Getenv("EMAIL_SMTP_SERVER")
	cfg.Email.SMTPPort = envInt("EMAIL_SMTP_PORT", &invalid)
	cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	cfg.Email.FromName = os.Getenv("EMAIL_FROM_NAME")
	cfg.Email.FromAddress = os.Getenv("EMAIL_FROM_ADDRESS")

	// Telegram operator reports
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			invalid = append(invalid, "TELEGRAM_CHAT_ID")
		}
		cfg.Telegram.ChatID = id
	}
	cfg.Telegram.RatePerSecond = envInt("TELEGRAM_RATE_LIMIT", &invalid)

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Notification worker settings
	cfg.Notification.QueueSize = envInt("QUEUE_SIZE", &invalid)
	cfg.Notification.MaxWorkers = envInt("MAX_WORKERS", &invalid)
	cfg.Schedule.Interval = envDuration("SCHEDULE_INTERVAL", &invalid)

	// Logging
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Upstream providers
	cfg.Provider.OpenMeteoURL = os.Getenv("OPEN_METEO_URL")
	cfg.Provider.StormglassURL = os.Getenv("STORMGLASS_URL")
	cfg.Provider.StormglassKey = os.Getenv("STORMGLASS_API_KEY")
	cfg.Provider.WorldTidesURL = os.Getenv("WORLDTIDES_URL")
	cfg.Provider.WorldTidesKey = os.Getenv("WORLDTIDES_API_KEY")
	cfg.Provider.Timezone = os.Getenv("PROVIDER_TIMEZONE")
	cfg.Provider.RequestTimeout = envDuration("PROVIDER_TIMEOUT", &invalid)
	cfg.Provider.RatePerSecond = envFloat("PROVIDER_RATE_LIMIT", &invalid)
	cfg.Provider.Concurrency = envInt("PROVIDER_CONCURRENCY", &invalid)
	cfg.Provider.ForecastHours = envInt("FORECAST_HOURS", &invalid)
	cfg.Provider.CacheTTL = envDuration("CONDITIONS_CACHE_TTL", &invalid)

	// Remote analysis
	cfg.Analysis.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Analysis.BaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.Analysis.Model = os.Getenv("OPENAI_MODEL")
	cfg.Analysis.Timeout = envDuration("ANALYSIS_TIMEOUT", &invalid)

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configurations: %v", invalid)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if !strings.HasPrefix(cfg.API.Port, ":") && !strings.Contains(cfg.API.Port, ":") {
		cfg.API.Port = ":" + cfg.API.Port
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "surf_alert_triggers"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "surfalert-service"
	}
	if cfg.Notification.QueueSize == 0 {
		cfg.Notification.QueueSize = 100
	}
	if cfg.Notification.MaxWorkers == 0 {
		cfg.Notification.MaxWorkers = 2
	}
	if cfg.Schedule.Interval == 0 {
		cfg.Schedule.Interval = 3 * time.Hour
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = "Surf Alerts"
	}
	if cfg.Email.FromAddress == "" {
		cfg.Email.FromAddress = cfg.Email.Username
	}
	if cfg.Telegram.RatePerSecond == 0 {
		cfg.Telegram.RatePerSecond = 1
	}
	if cfg.Provider.OpenMeteoURL == "" {
		cfg.Provider.OpenMeteoURL = "https://marine-api.open-meteo.com/v1/marine"
	}
	if cfg.Provider.StormglassURL == "" {
		cfg.Provider.StormglassURL = "https://api.stormglass.io/v2/weather/point"
	}
	if cfg.Provider.WorldTidesURL == "" {
		cfg.Provider.WorldTidesURL = "https://www.worldtides.info/api/v3"
	}
	if cfg.Provider.Timezone == "" {
		cfg.Provider.Timezone = "America/Fortaleza"
	}
	if cfg.Provider.RequestTimeout == 0 {
		cfg.Provider.RequestTimeout = 15 * time.Second
	}
	if cfg.Provider.RatePerSecond == 0 {
		cfg.Provider.RatePerSecond = 5
	}
	if cfg.Provider.Concurrency == 0 {
		cfg.Provider.Concurrency = 4
	}
	if cfg.Provider.ForecastHours == 0 {
		cfg.Provider.ForecastHours = 48
	}
	if cfg.Provider.CacheTTL == 0 {
		cfg.Provider.CacheTTL = 15 * time.Minute
	}
	if cfg.Analysis.BaseURL == "" {
		cfg.Analysis.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Analysis.Model == "" {
		cfg.Analysis.Model = "gpt-4o-mini"
	}
	if cfg.Analysis.Timeout == 0 {
		cfg.Analysis.Timeout = 20 * time.Second
	}
}

func envInt(key string, invalid *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*invalid = append(*invalid, key)
		return 0
	}
	return n
}

func envFloat(key string, invalid *[]string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*invalid = append(*invalid, key)
		return 0
	}
	return f
}

func envDuration(key string, invalid *[]string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*invalid = append(*invalid, key)
		return 0
	}
	return d
}
