package db

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const driverName = "mysql"

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type AuthConfig struct {
	// HS256 signing secret. Override with MIRIN_JWT_SECRET in production.
	JWTSecret  string `yaml:"jwt_secret"`
	CookieName string `yaml:"cookie_name"`
	// Token lifetime in hours. Cookies are issued with the same max-age.
	TokenTTLHours int `yaml:"token_ttl_hours"`
}

type PromptPayConfig struct {
	// Registered PromptPay target: a phone number or national id.
	ID string `yaml:"id"`
}

type WebPushConfig struct {
	VAPIDPublicKey  string `yaml:"vapid_public_key"`
	VAPIDPrivateKey string `yaml:"vapid_private_key"`
	Subscriber      string `yaml:"subscriber"`
}

type UploadsConfig struct {
	Dir string `yaml:"dir"`
}

type PaymentsConfig struct {
	// Pending payments older than this are failed by the expiry worker.
	// Zero disables expiry.
	PendingTTLHours int `yaml:"pending_ttl_hours"`
	SweepMinutes    int `yaml:"sweep_minutes"`
}

type Config struct {
	Mode      string          `yaml:"mode"`
	Addr      string          `yaml:"addr"`
	DB        DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	PromptPay PromptPayConfig `yaml:"promptpay"`
	WebPush   WebPushConfig   `yaml:"webpush"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Payments  PaymentsConfig  `yaml:"payments"`
}

// LoadConfig reads the yaml config and overlays secrets from the
// environment (a .env file is honored when present).
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	_ = godotenv.Load()
	applyEnv(&cfg)

	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "mirin_auth"
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 7 * 24
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "./uploads"
	}
	if cfg.Payments.SweepMinutes <= 0 {
		cfg.Payments.SweepMinutes = 10
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MIRIN_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("MIRIN_DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("MIRIN_DB_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := os.Getenv("MIRIN_DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.DB.Port = p
		}
	}
	if v := os.Getenv("PROMPTPAY_ID"); v != "" {
		cfg.PromptPay.ID = v
	}
	if v := os.Getenv("VAPID_PUBLIC_KEY"); v != "" {
		cfg.WebPush.VAPIDPublicKey = v
	}
	if v := os.Getenv("VAPID_PRIVATE_KEY"); v != "" {
		cfg.WebPush.VAPIDPrivateKey = v
	}
	if v := os.Getenv("VAPID_SUBSCRIBER"); v != "" {
		cfg.WebPush.Subscriber = v
	}
}

func Connect(c DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Keep the pool total under MySQL's max_connections.
	conn.SetMaxOpenConns(80)
	conn.SetMaxIdleConns(20)
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	return conn, nil
}
