package config

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Jellyfin JellyfinConfig
	Storage  StorageConfig
	Admins   []string // JellyfinIDs granted admin rights

	// LocalUsers holds "username:bcrypt-hash" pairs for the static identity
	// provider used when no Jellyfin URL is configured.
	LocalUsers []string
}

var (
	configInstance *Config
	once           sync.Once
)

type ServerConfig struct {
	Host         string
	Port         string
	BasePath     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type SessionConfig struct {
	Secret     string
	Expiry     time.Duration
	CookieName string
}

type JellyfinConfig struct {
	// URL of the Jellyfin server used as identity provider. When empty the
	// local static provider (WISHLIST_LOCAL_USERS) is used instead.
	URL     string
	Timeout time.Duration
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func LoadConfig() (*Config, error) {
	once.Do(func() {
		viper.SetDefault("WISHLIST_PORT", "3000")
		viper.SetDefault("WISHLIST_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("WISHLIST_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("WISHLIST_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("WISHLIST_SESSION_SECRET", "secret")
		viper.SetDefault("WISHLIST_SESSION_EXPIRE", 7*24*time.Hour)
		viper.SetDefault("WISHLIST_SESSION_COOKIE", "wishlistauth")
		viper.SetDefault("JELLYFIN_TIMEOUT", 10*time.Second)
		viper.SetDefault("MYSQL_USER", "wishlist")
		viper.SetDefault("MYSQL_PASSWORD", "password")
		viper.SetDefault("MYSQL_HOST", "localhost")
		viper.SetDefault("MYSQL_PORT", "3306")
		viper.SetDefault("MYSQL_DB", "wishlist")
		viper.SetDefault("MINIO_BUCKET", "posters")
		viper.AutomaticEnv()

		configInstance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("WISHLIST_HOST"),
				Port:         viper.GetString("WISHLIST_PORT"),
				BasePath:     viper.GetString("WISHLIST_BASE_PATH"),
				ReadTimeout:  viper.GetDuration("WISHLIST_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("WISHLIST_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("WISHLIST_IDLE_TIMEOUT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("MYSQL_HOST"),
				Port:     viper.GetString("MYSQL_PORT"),
				User:     viper.GetString("MYSQL_USER"),
				Password: viper.GetString("MYSQL_PASSWORD"),
				DBName:   viper.GetString("MYSQL_DB"),
			},
			Session: SessionConfig{
				Secret:     viper.GetString("WISHLIST_SESSION_SECRET"),
				Expiry:     viper.GetDuration("WISHLIST_SESSION_EXPIRE"),
				CookieName: viper.GetString("WISHLIST_SESSION_COOKIE"),
			},
			Jellyfin: JellyfinConfig{
				URL:     viper.GetString("JELLYFIN_URL"),
				Timeout: viper.GetDuration("JELLYFIN_TIMEOUT"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			},
			Admins:     splitList(viper.GetString("WISHLIST_ADMINS")),
			LocalUsers: splitList(viper.GetString("WISHLIST_LOCAL_USERS")),
		}
	})

	return configInstance, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
