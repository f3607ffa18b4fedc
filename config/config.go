package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`

	// Firebase push delivery. Leave the credentials path empty to run
	// without FCM (notifications are still persisted).
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Dispatch engine tunables.
	AlwaysOpenOverride   bool    `mapstructure:"ALWAYS_OPEN_OVERRIDE"`
	DefaultMinNoticeMin  int     `mapstructure:"DEFAULT_MIN_NOTICE_MIN"`
	SlotGranularityMin   int     `mapstructure:"SLOT_GRANULARITY_MIN"`
	MaxLookaheadDays     int     `mapstructure:"MAX_LOOKAHEAD_DAYS"`
	BlockedSlotLimit     int     `mapstructure:"BLOCKED_SLOT_LIMIT"`
	PlatformFeePct       float64 `mapstructure:"PLATFORM_FEE_PCT"`
	ReportWindowDays     int     `mapstructure:"REPORT_WINDOW_DAYS"`
	RebookMaxAgeDays     int     `mapstructure:"REBOOK_MAX_AGE_DAYS"`
	RebookWarnAgeDays    int     `mapstructure:"REBOOK_WARN_AGE_DAYS"`
	ReassignMatchRetries int     `mapstructure:"REASSIGN_MATCH_RETRIES"`
	CancellationFlatFee  float64 `mapstructure:"CANCELLATION_FLAT_FEE"`
	RescheduleFlatFee    float64 `mapstructure:"RESCHEDULE_FLAT_FEE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "serviq")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

	viper.SetDefault("ALWAYS_OPEN_OVERRIDE", false)
	viper.SetDefault("DEFAULT_MIN_NOTICE_MIN", 30)
	viper.SetDefault("SLOT_GRANULARITY_MIN", 30)
	viper.SetDefault("MAX_LOOKAHEAD_DAYS", 60)
	viper.SetDefault("BLOCKED_SLOT_LIMIT", 120)
	viper.SetDefault("PLATFORM_FEE_PCT", 15.0)
	viper.SetDefault("REPORT_WINDOW_DAYS", 14)
	viper.SetDefault("REBOOK_MAX_AGE_DAYS", 180)
	viper.SetDefault("REBOOK_WARN_AGE_DAYS", 90)
	viper.SetDefault("REASSIGN_MATCH_RETRIES", 1)
	viper.SetDefault("CANCELLATION_FLAT_FEE", 49.0)
	viper.SetDefault("RESCHEDULE_FLAT_FEE", 29.0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
