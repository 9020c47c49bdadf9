package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Remote scheduling service.
	RemoteBaseURL        string `mapstructure:"REMOTE_BASE_URL"`
	RemoteTimeoutSecs    int    `mapstructure:"REMOTE_TIMEOUT_SECS"`
	RemoteMaxAttempts    int    `mapstructure:"REMOTE_MAX_ATTEMPTS"`
	RemoteMinDelayMillis int    `mapstructure:"REMOTE_MIN_DELAY_MILLIS"`

	// Business-rule policy. All remote times are already in this zone.
	Timezone       string `mapstructure:"TIMEZONE"`
	MaxAdvanceDays int    `mapstructure:"MAX_ADVANCE_DAYS"`
	NoticeHours    int    `mapstructure:"NOTICE_HOURS"`
	CutoffHour     int    `mapstructure:"CUTOFF_HOUR"`

	// Session persistence. SESSION_STORE selects "file" or "mongo".
	SessionStore    string `mapstructure:"SESSION_STORE"`
	SessionFilePath string `mapstructure:"SESSION_FILE_PATH"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
	SessionSecret   string `mapstructure:"SESSION_SECRET"`
	SessionKeySalt  string `mapstructure:"SESSION_KEY_SALT"`
	MongoURI        string `mapstructure:"MONGO_URI"`
	MongoDatabase   string `mapstructure:"MONGO_DATABASE"`
	MongoCollection string `mapstructure:"MONGO_COLLECTION"`

	// Redis trip cache. Empty address disables caching.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`

	// Shell auth.
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
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
	viper.SetDefault("REMOTE_BASE_URL", "https://dats.example.org")
	viper.SetDefault("REMOTE_TIMEOUT_SECS", 30)
	viper.SetDefault("REMOTE_MAX_ATTEMPTS", 3)
	viper.SetDefault("REMOTE_MIN_DELAY_MILLIS", 500)
	viper.SetDefault("TIMEZONE", "America/Edmonton")
	viper.SetDefault("MAX_ADVANCE_DAYS", 3)
	viper.SetDefault("NOTICE_HOURS", 2)
	viper.SetDefault("CUTOFF_HOUR", 12)
	viper.SetDefault("SESSION_STORE", "file")
	viper.SetDefault("SESSION_FILE_PATH", "./data/session.enc")
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	// Secrets default to empty so viper knows the keys; AutomaticEnv only
	// surfaces environment values for keys it has already seen.
	viper.SetDefault("SESSION_SECRET", "")
	viper.SetDefault("SESSION_KEY_SALT", "dats-booking-session")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "dats")
	viper.SetDefault("MONGO_COLLECTION", "sessions")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if IsProduction() && AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set when ENV=production")
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
