package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is loaded from the environment. The four JWT secrets are required
// and must be distinct; everything else has a sensible dev default.
type Config struct {
	Port int    `env:"PORT" envDefault:"8080"`
	Env  string `env:"ENV" envDefault:"dev"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DatabaseFile string `env:"USERS_DATABASE_FILE" envDefault:"users.db"`
	PepperFile   string `env:"USERS_PEPPER_FILE" envDefault:"pepper"`

	Issuer              string `env:"USERS_ISSUER" envDefault:"chirp-users"`
	AccessSecret        string `env:"JWT_ACCESS_SECRET,required"`
	RefreshSecret       string `env:"JWT_REFRESH_SECRET,required"`
	EmailVerifySecret   string `env:"JWT_EMAIL_VERIFY_SECRET,required"`
	PasswordResetSecret string `env:"JWT_PASSWORD_RESET_SECRET,required"`

	AccessTTL        time.Duration `env:"JWT_ACCESS_TTL"`
	RefreshTTL       time.Duration `env:"JWT_REFRESH_TTL"`
	EmailVerifyTTL   time.Duration `env:"JWT_EMAIL_VERIFY_TTL"`
	PasswordResetTTL time.Duration `env:"JWT_PASSWORD_RESET_TTL"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	// AppURL is the public frontend base used in email links.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:3000"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
