package app

import (
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port int
	Env  string
	DB   struct {
		DSN          string
		MaxOpenConns int
		MaxIdleTime  time.Duration
	}
	Redis struct {
		Url          string
		MaxOpenConns int
		MaxIdleConns int
		MaxIdleTime  time.Duration
		SeatMapTTL   time.Duration
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		Sender   string
	}
	RabbitMQ struct {
		Url string
	}
	Booking struct {
		MaxAttempts        uint
		CancellationCutoff time.Duration
	}
	OtelCollectorUrl string
}

// parseFlags reads the configuration from command line flags. Every flag
// defaults to an environment variable, so a .env file loaded beforehand
// configures the process as well.
func parseFlags(fs *flag.FlagSet, args []string) (Config, bool, error) {
	var cfg Config

	fs.IntVar(&cfg.Port, "port", getIntEnv("PORT", 3000), "server port")
	fs.StringVar(&cfg.Env, "env", getEnv("ENV", "dev"), "Environment (dev|staging|prod)")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", getEnv("DB_DSN", ""), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", getIntEnv("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", getDurationEnv("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")

	fs.StringVar(&cfg.Redis.Url, "redis-url", getEnv("REDIS_URL", ""), "Redis URL")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", getIntEnv("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", getIntEnv("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", getDurationEnv("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")
	fs.DurationVar(&cfg.Redis.SeatMapTTL, "seat-map-ttl", getDurationEnv("SEAT_MAP_TTL", 30*time.Second), "How long a seat map snapshot stays cached")

	fs.StringVar(&cfg.SMTP.Host, "smtp-host", getEnv("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	fs.IntVar(&cfg.SMTP.Port, "smtp-port", getIntEnv("SMTP_PORT", 2525), "SMTP port")
	fs.StringVar(&cfg.SMTP.Username, "smtp-username", getEnv("SMTP_USERNAME", ""), "SMTP username")
	fs.StringVar(&cfg.SMTP.Password, "smtp-password", getEnv("SMTP_PASSWORD", ""), "SMTP password")
	fs.StringVar(&cfg.SMTP.Sender, "smtp-sender", getEnv("SMTP_SENDER", "Cinex <no-reply@cinex.local>"), "SMTP sender")

	fs.StringVar(&cfg.RabbitMQ.Url, "rabbitmq-url", getEnv("RABBITMQ_URL", ""), "RabbitMQ URL, events are only logged when empty")

	fs.UintVar(&cfg.Booking.MaxAttempts, "booking-max-attempts", uint(getIntEnv("BOOKING_MAX_ATTEMPTS", 3)), "Attempts per booking on concurrent showtime updates")
	fs.DurationVar(&cfg.Booking.CancellationCutoff, "cancellation-cutoff", getDurationEnv("CANCELLATION_CUTOFF", time.Hour), "Latest time before a showtime a booking can be cancelled")

	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", getEnv("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err := fs.Parse(args)

	return cfg, *displayVersion, err
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}
