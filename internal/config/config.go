package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Tasks    TasksConfig    `mapstructure:"tasks"    validate:"required"`
	Reminder ReminderConfig `mapstructure:"reminder" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"            validate:"required,gt=0,lt=65536"`
	LogLevel       string   `mapstructure:"log_level"       validate:"required,oneof=debug info warn error"`
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"required,min=1"`
	// TrustProxy takes the client IP from X-Forwarded-For/X-Real-IP. Enable it
	// only behind a reverse proxy that overwrites those headers.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string  `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int     `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=44640"`
	BCryptCost           int     `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
	LoginRatePerMinute   float64 `mapstructure:"login_rate_per_minute"  validate:"gt=0"`
	LoginBurst           int     `mapstructure:"login_burst"            validate:"gt=0"`
}

// TasksConfig controls task listing and sharing.
type TasksConfig struct {
	PageSize         int `mapstructure:"page_size"          validate:"required,gt=0,lte=100"`
	ShareTokenLength int `mapstructure:"share_token_length" validate:"required,gte=16,lte=64"`
}

// ReminderConfig configures the asynchronous reminder pipeline.
type ReminderConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	WorkerCount int    `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int    `mapstructure:"queue_size"   validate:"gt=0"`
	DailyAt     string `mapstructure:"daily_at"     validate:"required,datetime=15:04"`
	Timezone    string `mapstructure:"timezone"     validate:"required,timezone"`
}
