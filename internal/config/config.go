package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all runtime configuration. Values come from a yaml file
// named by CONFIG_PATH when set, otherwise from environment variables.
type Config struct {
	Env    string `yaml:"env" env:"APP_ENV" env-default:"development"`
	HTTP   `yaml:"http"`
	DB     `yaml:"db"`
	Auth   `yaml:"auth"`
	Email  `yaml:"email"`
	Upload `yaml:"upload"`
	Outbox `yaml:"outbox"`
	Admin  `yaml:"admin"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type DB struct {
	Path string `yaml:"path" env:"DB_PATH" env-default:"paddock.db"`
}

type Auth struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL       time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	GoogleClientID string        `yaml:"google_client_id" env:"GOOGLE_CLIENT_ID"`
}

type Email struct {
	ResendAPIKey string `yaml:"resend_api_key" env:"RESEND_API_KEY"`
	FromAddress  string `yaml:"from_address" env:"EMAIL_FROM" env-default:"Paddock <noreply@paddock.app>"`
}

type Upload struct {
	Dir string `yaml:"dir" env:"UPLOAD_DIR" env-default:"uploads"`
}

type Outbox struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"OUTBOX_POLL_INTERVAL" env-default:"30s"`
	BatchSize    int           `yaml:"batch_size" env:"OUTBOX_BATCH_SIZE" env-default:"20"`
	BaseDelay    time.Duration `yaml:"base_delay" env:"OUTBOX_BASE_DELAY" env-default:"1m"`
	MaxDelay     time.Duration `yaml:"max_delay" env:"OUTBOX_MAX_DELAY" env-default:"1h"`
}

type Admin struct {
	Email    string `yaml:"email" env:"ADMIN_EMAIL"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// MustLoad reads configuration and exits the process on failure.
func MustLoad() (cfg Config) {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("Error loading config from %s: %v", configPath, err)
		}
		return
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return
}
