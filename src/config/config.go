package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=admitdb port=5432 sslmode=disable TimeZone=Asia/Manila"

const (
	TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
	EVENT_DATE_FORMAT = "2006-01-02"
	ISSUED_AT_FORMAT  = "2006-01-02T15:04:05.000Z07:00"
)

const defaultDeliveryHour = 6

var (
	ErrMissingSecret       = errors.New("QR signing secret is not configured")
	ErrInvalidDeliveryHour = errors.New("delivery hour must be between 0 and 23")
)

type Config struct {
	APIEnv        string
	Port          string
	QRSecret      string
	QRSecretARN   string
	JWTSecret     string
	StoreDriver   string
	NotifierName  string
	RedisHost     string
	Location      *time.Location
	DeliveryHour  int
	MailFrom      string
	MailFromName  string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	EmailQueue    string
	AlertTopicArn string
	AssetsBucket  string
	AWSRoleArn    string
}

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// Load reads the process configuration from the environment. The signing
// secret is resolved later by boot, since it may live in Secrets Manager.
func Load() (*Config, error) {
	cfg := &Config{
		APIEnv:        getenv("API_ENV", "local"),
		Port:          getenv("PORT", "9090"),
		QRSecret:      os.Getenv("QR_SECRET"),
		QRSecretARN:   os.Getenv("QR_SECRET_ARN"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		StoreDriver:   getenv("TICKET_STORE", "memory"),
		NotifierName:  getenv("NOTIFIER", "log"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		MailFrom:      getenv("SMTP_FROM", "noreply@localhost"),
		MailFromName:  getenv("SMTP_FROM_NAME", "noreply"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		EmailQueue:    os.Getenv("EMAIL_QUEUE"),
		AlertTopicArn: os.Getenv("DELIVERY_ALERT_TOPIC_ARN"),
		AssetsBucket:  os.Getenv("S3_ASSETS_BUCKET"),
		AWSRoleArn:    os.Getenv("AWS_IAM_ROLE_ARN"),
		DeliveryHour:  defaultDeliveryHour,
		SMTPPort:      587,
		Location:      time.Local,
	}

	if tz := os.Getenv("TZ_LOCATION"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ_LOCATION %q: %w", tz, err)
		}
		cfg.Location = loc
	}
	if v := os.Getenv("DELIVERY_HOUR"); v != "" {
		hour, err := strconv.Atoi(v)
		if err != nil || hour < 0 || hour > 23 {
			return nil, ErrInvalidDeliveryHour
		}
		cfg.DeliveryHour = hour
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		cfg.SMTPPort = port
	}

	return cfg, nil
}

// RequireSecret refuses to continue without a signing secret. There is no
// built-in fallback.
func (c *Config) RequireSecret() ([]byte, error) {
	if c.QRSecret == "" {
		return nil, ErrMissingSecret
	}
	return []byte(c.QRSecret), nil
}

func (c *Config) IsProd() bool {
	return c.APIEnv == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
