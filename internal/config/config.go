// internal/config/config.go
package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Cache     CacheConfig
	Forecast  ForecastConfig
	Storage   StorageConfig
	Drive     DriveConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	DataDir   string
	ReportDir string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	SummaryTTLSeconds int
}

// ForecastConfig holds the fixed run-time constants of the forecasting core.
// All values are read once at process start; there is no runtime
// reconfiguration.
type ForecastConfig struct {
	SafetyStockRatio float64 // fraction of expected demand held as buffer
	LeadTimeWeeks    int     // forecast weeks counted toward expected demand
	HorizonWeeks     int     // forecast horizon H
	WeekAnchor       time.Weekday
	Alpha            float64 // level smoothing, 0 = estimate from data
	Beta             float64 // trend smoothing, 0 = estimate from data
	GridStep         float64 // resolution of the smoothing-coefficient search
	WorkerCount      int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	FolderPath      string
	DownloadDir     string
	PollInterval    time.Duration
}

type SchedulerConfig struct {
	Enabled  bool
	CronSpec string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "barpar")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("APP_DATA_DIR", "./data/exports")
		viper.SetDefault("APP_REPORT_DIR", "./data/reports")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SUMMARY_TTL_SECONDS", 60)
		viper.SetDefault("FORECAST_SAFETY_STOCK_RATIO", 0.15)
		viper.SetDefault("FORECAST_LEAD_TIME_WEEKS", 1)
		viper.SetDefault("FORECAST_HORIZON_WEEKS", 4)
		viper.SetDefault("FORECAST_WEEK_ANCHOR", "monday")
		viper.SetDefault("FORECAST_ALPHA", 0.0)
		viper.SetDefault("FORECAST_BETA", 0.0)
		viper.SetDefault("FORECAST_GRID_STEP", 0.05)
		viper.SetDefault("FORECAST_WORKER_COUNT", 4)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_BUCKET", "barpar-reports")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("DRIVE_FOLDER_PATH", "")
		viper.SetDefault("DRIVE_DOWNLOAD_DIR", "./data/exports")
		viper.SetDefault("DRIVE_POLL_INTERVAL_SECONDS", 300)
		viper.SetDefault("SCHEDULER_ENABLED", false)
		viper.SetDefault("SCHEDULER_CRON", "0 3 * * *")

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_DATA_DIR"))
		ensureDir(viper.GetString("APP_REPORT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				DataDir:   viper.GetString("APP_DATA_DIR"),
				ReportDir: viper.GetString("APP_REPORT_DIR"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				SummaryTTLSeconds: viper.GetInt("CACHE_SUMMARY_TTL_SECONDS"),
			},
			Forecast: ForecastConfig{
				SafetyStockRatio: viper.GetFloat64("FORECAST_SAFETY_STOCK_RATIO"),
				LeadTimeWeeks:    viper.GetInt("FORECAST_LEAD_TIME_WEEKS"),
				HorizonWeeks:     viper.GetInt("FORECAST_HORIZON_WEEKS"),
				WeekAnchor:       parseWeekday(viper.GetString("FORECAST_WEEK_ANCHOR")),
				Alpha:            viper.GetFloat64("FORECAST_ALPHA"),
				Beta:             viper.GetFloat64("FORECAST_BETA"),
				GridStep:         viper.GetFloat64("FORECAST_GRID_STEP"),
				WorkerCount:      viper.GetInt("FORECAST_WORKER_COUNT"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
				FolderPath:      viper.GetString("DRIVE_FOLDER_PATH"),
				DownloadDir:     viper.GetString("DRIVE_DOWNLOAD_DIR"),
				PollInterval:    time.Duration(viper.GetInt("DRIVE_POLL_INTERVAL_SECONDS")) * time.Second,
			},
			Scheduler: SchedulerConfig{
				Enabled:  viper.GetBool("SCHEDULER_ENABLED"),
				CronSpec: viper.GetString("SCHEDULER_CRON"),
			},
		}
	})

	return instance
}

func parseWeekday(name string) time.Weekday {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
