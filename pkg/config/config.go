package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "crystal"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Activation    ActivationConfig
	AuthRateLimit AuthRateLimitConfig
	SMTP          SMTPConfig
	GCS           GCSConfig
	GCP           GCPConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CRYSTAL_APP_ENV" required:"true"`
	Port         string `envconfig:"CRYSTAL_APP_PORT" default:"8080"`
	BaseURL      string `envconfig:"CRYSTAL_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"CRYSTAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRYSTAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CRYSTAL_DB_DSN"`
	Driver string `envconfig:"CRYSTAL_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CRYSTAL_DB_HOST"`
	Port     int    `envconfig:"CRYSTAL_DB_PORT" default:"5432"`
	User     string `envconfig:"CRYSTAL_DB_USER"`
	Password string `envconfig:"CRYSTAL_DB_PASSWORD"`
	Name     string `envconfig:"CRYSTAL_DB_NAME"`
	SSLMode  string `envconfig:"CRYSTAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRYSTAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRYSTAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRYSTAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRYSTAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if strings.EqualFold(d.Driver, "sqlite") {
		d.DSN = "file::memory:?cache=shared"
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"CRYSTAL_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"CRYSTAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRYSTAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRYSTAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRYSTAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRYSTAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CRYSTAL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CRYSTAL_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CRYSTAL_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"CRYSTAL_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CRYSTAL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CRYSTAL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CRYSTAL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CRYSTAL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CRYSTAL_ARGON_KEY_LEN" default:"32"`
}

type ActivationConfig struct {
	Secret string        `envconfig:"CRYSTAL_ACTIVATION_SECRET" required:"true"`
	TTL    time.Duration `envconfig:"CRYSTAL_ACTIVATION_TTL" default:"72h"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CRYSTAL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CRYSTAL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CRYSTAL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CRYSTAL_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CRYSTAL_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CRYSTAL_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type SMTPConfig struct {
	Host     string `envconfig:"CRYSTAL_SMTP_HOST"`
	Port     int    `envconfig:"CRYSTAL_SMTP_PORT" default:"587"`
	Username string `envconfig:"CRYSTAL_SMTP_USERNAME"`
	Password string `envconfig:"CRYSTAL_SMTP_PASSWORD"`
	From     string `envconfig:"CRYSTAL_SMTP_FROM" default:"no-reply@crystalims.com"`
}

type GCSConfig struct {
	BucketName string `envconfig:"CRYSTAL_GCS_BUCKET"`
}

type GCPConfig struct {
	CredentialsJSON        string `envconfig:"CRYSTAL_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CRYSTAL_GOOGLE_APPLICATION_CREDENTIALS"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CRYSTAL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CRYSTAL_AUTO_MIGRATE" default:"false"`
}
