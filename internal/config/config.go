package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int
	Debug   bool

	DBDriver    string
	SQLitePath  string
	DatabaseURL string

	JWTSecret          string
	AccessTokenMinutes int
	EncryptKey         string
	RedisURL           string

	UploadDir         string
	UploadMaxBytes    int64
	UploadAllowedExts []string
	PublicBaseURL     string

	CORSOrigins []string

	LogDir        string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

// Load reads configuration from the environment, an optional .env file and
// an optional file named by CONFIG_FILE. Environment values win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(v.GetString("POSTGRES_USER"), v.GetString("POSTGRES_PASSWORD")),
		Host:     fmt.Sprintf("%s:%s", v.GetString("POSTGRES_HOST"), v.GetString("POSTGRES_PORT")),
		Path:     v.GetString("POSTGRES_DB"),
		RawQuery: "sslmode=disable",
	}

	cfg := &Config{
		AppName: v.GetString("APP_NAME"),
		Env:     v.GetString("APP_ENV"),
		Host:    v.GetString("HTTP_HOST"),
		Port:    v.GetInt("HTTP_PORT"),
		Debug:   v.GetBool("DEBUG"),

		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		SQLitePath:  v.GetString("SQLITE_PATH"),
		DatabaseURL: u.String(),

		JWTSecret:          v.GetString("JWT_SECRET"),
		AccessTokenMinutes: v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES"),
		EncryptKey:         v.GetString("ENCRYPTION_KEY"),
		RedisURL:           v.GetString("REDIS_URL"),

		UploadDir:         v.GetString("UPLOAD_DIR"),
		UploadMaxBytes:    v.GetInt64("UPLOAD_MAX_BYTES"),
		UploadAllowedExts: splitList(v.GetString("UPLOAD_ALLOWED_EXTENSIONS")),
		PublicBaseURL:     strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),

		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		LogDir:        v.GetString("LOG_DIR"),
		LogMaxSize:    v.GetInt("LOG_MAX_SIZE"),
		LogMaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		LogMaxAge:     v.GetInt("LOG_MAX_AGE"),
		LogCompress:   v.GetBool("LOG_COMPRESS"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EncryptKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CONFIG_FILE", "")
	v.SetDefault("APP_NAME", "Messenger API")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8000)
	v.SetDefault("DEBUG", false)

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("SQLITE_PATH", "messenger.db")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "messenger")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24)
	v.SetDefault("ENCRYPTION_KEY", "")
	v.SetDefault("REDIS_URL", "")

	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 16<<20)
	v.SetDefault("UPLOAD_ALLOWED_EXTENSIONS", "txt,pdf,png,jpg,jpeg,gif,zip,mp3,mp4")
	v.SetDefault("PUBLIC_BASE_URL", "")

	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("LOG_MAX_SIZE", 10)
	v.SetDefault("LOG_MAX_BACKUPS", 30)
	v.SetDefault("LOG_MAX_AGE", 90)
	v.SetDefault("LOG_COMPRESS", true)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
