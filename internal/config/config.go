package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	DBPath    string `envconfig:"DB_PATH" default:"./data/planner.db"`
	DefaultTZ string `envconfig:"DEFAULT_TZ" default:"America/New_York"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error

	// Reminder matching. Tolerance should stay >= half the check interval,
	// otherwise scheduler jitter can skip a window entirely.
	CheckIntervalMin int     `envconfig:"CHECK_INTERVAL_MIN" default:"5"`
	ToleranceMin     float64 `envconfig:"TOLERANCE_MIN" default:"5"`

	// Email (SMTP).
	SMTPHost string `envconfig:"SMTP_HOST" default:""`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser string `envconfig:"SMTP_USER" default:""`
	SMTPPass string `envconfig:"SMTP_PASS" default:""`
	SMTPFrom string `envconfig:"SMTP_FROM" default:""`

	// Web push (VAPID).
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY" default:""`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY" default:""`
	VAPIDSubject    string `envconfig:"VAPID_SUBJECT" default:"mailto:admin@localhost"`

	// Optional Telegram delivery channel.
	TelegramToken string `envconfig:"TELEGRAM_TOKEN" default:""`

	// Third-party APIs.
	OpenAIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	WeatherKey string `envconfig:"OPENWEATHER_API_KEY" default:""`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
