package utils

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Payment  PaymentConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name          string
	Port          string
	Debug         bool
	LogPath       string
	StorageDriver string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	MaxConns       int32
	ConnectRetries int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PaymentConfig struct {
	BaseURL             string
	SecretKey           string
	Currency            string
	CallbackURL         string
	ReturnURL           string
	Title               string
	Description         string
	Timeout             time.Duration
	CancelOnInitFailure bool
}

type BookingConfig struct {
	RejectPastDates bool
	PreventOverlap  bool
	LockTTL         time.Duration
	PendingTTL      time.Duration
	SweepInterval   time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is optional, real environment wins
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("APP_NAME", "travel-booking")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("STORAGE_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CHAPA_BASE_URL", "https://api.chapa.co/v1")
	v.SetDefault("PAYMENT_CURRENCY", "ETB")
	v.SetDefault("PAYMENT_TITLE", "Booking Payment")
	v.SetDefault("PAYMENT_DESCRIPTION", "Payment for travel booking")
	v.SetDefault("GATEWAY_TIMEOUT", "15s")
	v.SetDefault("PAYMENT_CANCEL_ON_INIT_FAILURE", false)
	v.SetDefault("BOOKING_REJECT_PAST_DATES", true)
	v.SetDefault("BOOKING_PREVENT_OVERLAP", false)
	v.SetDefault("BOOKING_LOCK_TTL", "10s")
	v.SetDefault("BOOKING_PENDING_TTL", "24h")
	v.SetDefault("BOOKING_SWEEP_INTERVAL", "10m")

	config := &Config{
		App: AppConfig{
			Name:          v.GetString("APP_NAME"),
			Port:          v.GetString("PORT"),
			Debug:         v.GetBool("DEBUG"),
			LogPath:       v.GetString("LOG_PATH"),
			StorageDriver: v.GetString("STORAGE_DRIVER"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			Name:           v.GetString("DB_NAME"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASS"),
			MaxConns:       v.GetInt32("DB_MAX_CONNS"),
			ConnectRetries: v.GetInt("DB_CONNECT_RETRIES"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Payment: PaymentConfig{
			BaseURL:             v.GetString("CHAPA_BASE_URL"),
			SecretKey:           v.GetString("CHAPA_SECRET_KEY"),
			Currency:            v.GetString("PAYMENT_CURRENCY"),
			CallbackURL:         v.GetString("PAYMENT_CALLBACK_URL"),
			ReturnURL:           v.GetString("PAYMENT_RETURN_URL"),
			Title:               v.GetString("PAYMENT_TITLE"),
			Description:         v.GetString("PAYMENT_DESCRIPTION"),
			Timeout:             v.GetDuration("GATEWAY_TIMEOUT"),
			CancelOnInitFailure: v.GetBool("PAYMENT_CANCEL_ON_INIT_FAILURE"),
		},
		Booking: BookingConfig{
			RejectPastDates: v.GetBool("BOOKING_REJECT_PAST_DATES"),
			PreventOverlap:  v.GetBool("BOOKING_PREVENT_OVERLAP"),
			LockTTL:         v.GetDuration("BOOKING_LOCK_TTL"),
			PendingTTL:      v.GetDuration("BOOKING_PENDING_TTL"),
			SweepInterval:   v.GetDuration("BOOKING_SWEEP_INTERVAL"),
		},
	}

	return config, nil
}
