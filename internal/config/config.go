package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Connection string
	Host       string
	Port       string
	Username   string
	Password   string
	Name       string
	MaxConns   int
}

func (c *DBConfig) DSN() string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=disable",
		c.Connection, c.Username, c.Password, c.Host, c.Port, c.Name,
	)
}

type RabbitMQConfig struct {
	Host     string
	Port     string
	Username string
	Password string

	QueueName   string
	WorkerCount int
}

func (c *RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", c.Username, c.Password, c.Host, c.Port)
}

// SettlementConfig bounds retries and the reconciliation windows.
// StalePending is how long a payment may sit PENDING before the sweep
// re-enqueues it; ExpirePending is the hard cutoff after which it is
// failed outright.
type SettlementConfig struct {
	MaxAttempts    uint64
	InitialBackoff time.Duration
	SweepInterval  time.Duration
	StalePending   time.Duration
	ExpirePending  time.Duration
	SweepLimit     int
}

type APIConfig struct {
	Addr       string
	Currencies []string
}

func NewDBConfig() (*DBConfig, error) {
	_ = godotenv.Load()

	db := DBConfig{
		Connection: envStr("DB_CONNECTION", "postgres"),
		Host:       os.Getenv("DB_HOST"),
		Port:       os.Getenv("DB_PORT"),
		Username:   os.Getenv("DB_USER"),
		Password:   os.Getenv("DB_PASSWORD"),
		Name:       os.Getenv("DB_NAME"),
	}
	db.MaxConns = envInt("DB_MAX_CONNS", 50)

	return &db, nil
}

func NewMQConfig() (*RabbitMQConfig, error) {
	_ = godotenv.Load()

	mq := RabbitMQConfig{
		Host:      os.Getenv("MQ_HOST"),
		Port:      os.Getenv("MQ_PORT"),
		Username:  os.Getenv("MQ_USER"),
		Password:  os.Getenv("MQ_PASSWORD"),
		QueueName: envStr("MQ_QUEUE", "payments.settlement"),
	}
	mq.WorkerCount = envInt("MQ_WORKER_COUNT", 10)

	return &mq, nil
}

func NewSettlementConfig() (*SettlementConfig, error) {
	_ = godotenv.Load()

	cfg := SettlementConfig{
		MaxAttempts:    uint64(envInt("SETTLEMENT_MAX_ATTEMPTS", 3)),
		InitialBackoff: envDuration("SETTLEMENT_INITIAL_BACKOFF", 200*time.Millisecond),
		SweepInterval:  envDuration("SETTLEMENT_SWEEP_INTERVAL", 30*time.Second),
		StalePending:   envDuration("SETTLEMENT_STALE_PENDING", time.Minute),
		ExpirePending:  envDuration("SETTLEMENT_EXPIRE_PENDING", 10*time.Minute),
		SweepLimit:     envInt("SETTLEMENT_SWEEP_LIMIT", 100),
	}

	return &cfg, nil
}

func NewAPIConfig() (*APIConfig, error) {
	_ = godotenv.Load()

	cfg := APIConfig{
		Addr: envStr("API_ADDR", ":8000"),
	}
	for _, c := range strings.Split(envStr("CURRENCIES", "USD,ETB"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			cfg.Currencies = append(cfg.Currencies, c)
		}
	}

	return &cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
