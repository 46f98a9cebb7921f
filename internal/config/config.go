package config // package config loads application configuration from environment variables

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; a .env file in the working directory is loaded
// first when present.
type Config struct {
	Env            string        // APP_ENV (dev, test, prod)
	Port           string        // APP_PORT
	LogLevel       string        // LOG_LEVEL (debug, info, warn, error)
	DBUser         string        // DB_USER
	DBPass         string        // DB_PASS (optional)
	DBHost         string        // DB_HOST
	DBPort         string        // DB_PORT
	DBName         string        // DB_NAME
	JWTSecret      string        // JWT_SECRET
	AccessTTLMin   int           // ACCESS_TOKEN_TTL_MIN
	RefreshTTLDays int           // REFRESH_TOKEN_TTL_DAYS
	BcryptCost     int           // BCRYPT_COST
	RequestTimeout time.Duration // REQUEST_TIMEOUT, bounds store work per request
	AMQPURL        string        // RABBITMQ_URL (falls back to AMQP_URL); empty disables events
	AlertLogPath   string        // ALERT_LOG_PATH

	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// required lists variables that have no sensible default.
var required = []string{"APP_ENV", "APP_PORT", "DB_USER", "DB_HOST", "DB_PORT", "DB_NAME", "JWT_SECRET"}

// Load reads .env (if any) and the process environment into a Config.  A
// missing required variable is reported as an error naming it.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ACCESS_TOKEN_TTL_MIN", 15)
	v.SetDefault("REFRESH_TOKEN_TTL_DAYS", 30)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("REQUEST_TIMEOUT", "5s")
	v.SetDefault("ALERT_LOG_PATH", "logs/alerts.log")
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	var missing []string
	for _, k := range required {
		if strings.TrimSpace(v.GetString(k)) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env var: %s", strings.Join(missing, ", "))
	}

	amqpURL := v.GetString("RABBITMQ_URL")
	if amqpURL == "" {
		amqpURL = v.GetString("AMQP_URL")
	}

	return Config{
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetString("APP_PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DBUser:         v.GetString("DB_USER"),
		DBPass:         v.GetString("DB_PASS"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBName:         v.GetString("DB_NAME"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		AccessTTLMin:   v.GetInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: v.GetInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		AMQPURL:        amqpURL,
		AlertLogPath:   v.GetString("ALERT_LOG_PATH"),
		Redis:          LoadRedisConfig(v),
		Cache:          LoadCacheConfig(v),
		RateLimit:      LoadRateLimitConfig(v),
	}, nil
}
