package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// devJWTSecret solo para APP_ENV=development sin JWT_SECRET.
const devJWTSecret = "development-only-secret"

// Drivers de almacenamiento soportados.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente .env).
type Config struct {
	App         AppConfig
	DB          DBConfig
	JWT         JWTConfig
	HTTP        HTTPConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	Metrics     MetricsConfig
	Tenancy     TenancyConfig
	Swagger     SwaggerConfig
	Admin       AdminConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// IsDevelopment indica entorno de desarrollo.
func (c AppConfig) IsDevelopment() bool { return c.Env == "development" }

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL      string
	Host             string
	Port             int
	User             string
	Password         string
	DBName           string
	SSLMode          string
	MaxConns         int
	LockTimeout      time.Duration // espera máxima por la fila de saldo
	StatementTimeout time.Duration
	AutoMigrate      bool
	ForceIPv4        bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN arma el connection string con la contraseña escapada.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig selecciona el adaptador de persistencia.
type StorageConfig struct {
	Driver string // memory | postgres
}

// RedisConfig conexión a Redis. Addr vacío = claves de idempotencia en memoria.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled indica si hay Redis configurado.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// IdempotencyConfig vigencia de las claves Idempotency-Key.
type IdempotencyConfig struct {
	TTL time.Duration
}

// MetricsConfig exposición de métricas Prometheus.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// TenancyConfig filial y sector asignados a usuarios nuevos.
type TenancyConfig struct {
	DefaultBranchID string
	DefaultSectorID string
}

// SwaggerConfig ruta del documento OpenAPI servido en /swagger.
type SwaggerConfig struct {
	File string
}

// AdminConfig credenciales del administrador inicial (solo seed).
type AdminConfig struct {
	Username string
	Password string
}

// Load lee la configuración desde variables de entorno. Un archivo .env en el directorio
// actual se carga primero; las variables ya definidas tienen prioridad.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "stock-ledger"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL:      getString(v, "DATABASE_URL", ""),
			Host:             getString(v, "DB_HOST", "localhost"),
			Port:             getInt(v, "DB_PORT", 5432),
			User:             getString(v, "DB_USER", "postgres"),
			Password:         getString(v, "DB_PASSWORD", ""),
			DBName:           getString(v, "DB_NAME", "stock_ledger"),
			SSLMode:          getString(v, "DB_SSLMODE", "disable"),
			MaxConns:         getInt(v, "DB_MAX_CONNS", 25),
			LockTimeout:      getDuration(v, "DB_LOCK_TIMEOUT", 5*time.Second),
			StatementTimeout: getDuration(v, "DB_STATEMENT_TIMEOUT", 30*time.Second),
			AutoMigrate:      getBool(v, "DB_AUTO_MIGRATE", true),
			ForceIPv4:        getBool(v, "DB_FORCE_IPV4", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "stock-ledger"),
		},
		HTTP: HTTPConfig{
			Host:         getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:         getInt(v, "HTTP_PORT", 8080),
			ReadTimeout:  getDuration(v, "HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration(v, "HTTP_WRITE_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getString(v, "STORAGE_DRIVER", StoragePostgres)),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Idempotency: IdempotencyConfig{
			TTL: getDuration(v, "IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Metrics: MetricsConfig{
			Enabled: getBool(v, "METRICS_ENABLED", true),
			Path:    getString(v, "METRICS_PATH", "/metrics"),
		},
		Tenancy: TenancyConfig{
			DefaultBranchID: getString(v, "TENANCY_DEFAULT_BRANCH_ID", ""),
			DefaultSectorID: getString(v, "TENANCY_DEFAULT_SECTOR_ID", ""),
		},
		Swagger: SwaggerConfig{
			File: getString(v, "SWAGGER_FILE", "./docs/swagger.json"),
		},
		Admin: AdminConfig{
			Username: getString(v, "ADMIN_USERNAME", ""),
			Password: getString(v, "ADMIN_PASSWORD", ""),
		},
	}

	if cfg.JWT.Secret == "" && cfg.App.IsDevelopment() {
		cfg.JWT.Secret = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate revisa combinaciones inválidas.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("STORAGE_DRIVER inválido: %q (memory | postgres)", c.Storage.Driver)
	}
	if !c.App.IsDevelopment() && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET es obligatorio fuera de development")
	}
	if c.Idempotency.TTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL debe ser positivo")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return n
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if v.IsSet(key) {
		d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return d
	}
	return def
}
