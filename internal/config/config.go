package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/kanzaki/taskproof/internal/constants"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" env-default:":8080"`
	GinMode    string `env:"GIN_MODE" env-default:"debug"`

	DBDriver   string `env:"DB_DRIVER" env-default:"mysql"`
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"3306"`
	DBUser     string `env:"DB_USER" env-default:"taskproof"`
	DBPassword string `env:"DB_PASSWORD" env-default:"taskproof"`
	DBName     string `env:"DB_NAME" env-default:"taskproof"`

	// No default on purpose: a baked-in signing secret is a deployment
	// defect, the process must refuse to start without one.
	JWTSecret string `env:"JWT_SECRET" env-required:"true"`

	UploadDir string `env:"UPLOAD_DIR" env-default:"./uploads"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	SMTPFrom string `env:"SMTP_FROM"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if len(cfg.JWTSecret) < constants.MinJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", constants.MinJWTSecretLength)
	}

	return &cfg, nil
}

// NotifierConfigured reports whether outbound mail can be sent.
func (c *Config) NotifierConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
