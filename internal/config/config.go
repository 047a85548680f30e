package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Cookie provisioning modes.
const (
	CookieModeUpload = "upload"
	CookieModeFixed  = "fixed"
)

// Defaults applied when the corresponding key is absent.
const (
	DefaultPort              = 3000
	DefaultRequestDelay      = 10 * time.Second
	DefaultMetadataTimeout   = 2 * time.Minute
	DefaultUploadMaxFiles    = 5
	DefaultFixedMaxFiles     = 3
	DefaultMaxUploadBytes    = 1 << 20
	DefaultYtdlpBinary       = "yt-dlp"
	DefaultCookiesFile       = "cookies.txt"
	DefaultCacheProvider     = "memory"
	DefaultCacheSize         = 256
	DefaultCacheTTL          = 10 * time.Minute
	DefaultMetricsPort       = 9090
	DefaultGRPCPort          = 9091
	DefaultStaticDir         = "public"
	DefaultDownloadsDir      = "downloads"
	DefaultUploadsDir        = "uploads"
	DefaultSentryEnvironment = "production"
)

// DefaultCookieMarkers are the cookie names whose presence marks a cookie file as logged in.
var DefaultCookieMarkers = []string{"LOGIN_INFO", "__Secure-3PSID"}

type Config struct {
	Server struct {
		Port      int    `mapstructure:"port"`
		Address   string `mapstructure:"address"`
		StaticDir string `mapstructure:"static_dir"`
	} `mapstructure:"server"`
	LogLevel     string `mapstructure:"log_level"`
	DownloadsDir string `mapstructure:"downloads_dir"`
	UploadsDir   string `mapstructure:"uploads_dir"`
	Ytdlp        struct {
		Binary          string `mapstructure:"binary"`
		RequestDelay    string `mapstructure:"request_delay"`    // Go duration string like "10s"
		MetadataTimeout string `mapstructure:"metadata_timeout"` // "0" disables the limit
		ForceIPv4       bool   `mapstructure:"force_ipv4"`
	} `mapstructure:"ytdlp"`
	Cookies struct {
		Mode           string   `mapstructure:"mode"` // "upload" or "fixed"
		File           string   `mapstructure:"file"`
		Markers        []string `mapstructure:"markers"`
		MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	} `mapstructure:"cookies"`
	Retention struct {
		MaxFiles int `mapstructure:"max_files"`
	} `mapstructure:"retention"`
	Cache struct {
		Provider      string `mapstructure:"provider"` // "memory", "redis" or "none"
		Size          int    `mapstructure:"size"`
		TTL           string `mapstructure:"ttl"`
		RedisAddress  string `mapstructure:"redis_address"`
		RedisPassword string `mapstructure:"redis_password"`
		RedisDB       int    `mapstructure:"redis_db"`
	} `mapstructure:"cache"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	GRPC struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"grpc"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	apply(config)
}

// Reload reads the configuration again, e.g. after environment variables changed,
// and makes it the one returned by GetConfig.
func Reload() (*Config, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	apply(config)
	return config, nil
}

func apply(config *Config) {
	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

// LoadConfig reads config.yaml (from . or ./config) and APP_* environment variables.
// PORT and LOG_LEVEL are honoured without the prefix.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("server.port", "APP_SERVER_PORT", "PORT")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	config.applyFallbacks()

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.address", "")
	v.SetDefault("server.static_dir", DefaultStaticDir)
	v.SetDefault("downloads_dir", DefaultDownloadsDir)
	v.SetDefault("uploads_dir", DefaultUploadsDir)
	v.SetDefault("ytdlp.binary", DefaultYtdlpBinary)
	v.SetDefault("ytdlp.request_delay", DefaultRequestDelay.String())
	v.SetDefault("ytdlp.metadata_timeout", DefaultMetadataTimeout.String())
	v.SetDefault("ytdlp.force_ipv4", true)
	v.SetDefault("cookies.mode", CookieModeUpload)
	v.SetDefault("cookies.file", DefaultCookiesFile)
	v.SetDefault("cookies.markers", DefaultCookieMarkers)
	v.SetDefault("cookies.max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("cache.provider", DefaultCacheProvider)
	v.SetDefault("cache.size", DefaultCacheSize)
	v.SetDefault("cache.ttl", DefaultCacheTTL.String())
	v.SetDefault("cache.redis_address", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("retention.max_files", 0) // 0 picks the per-mode default
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", DefaultMetricsPort)
	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.port", DefaultGRPCPort)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", DefaultSentryEnvironment)
}

// applyFallbacks fills values whose default depends on other keys.
func (c *Config) applyFallbacks() {
	c.Cookies.Mode = strings.ToLower(strings.TrimSpace(c.Cookies.Mode))
	if c.Cookies.Mode != CookieModeFixed {
		c.Cookies.Mode = CookieModeUpload
	}
	if c.Retention.MaxFiles == 0 {
		if c.Cookies.Mode == CookieModeFixed {
			c.Retention.MaxFiles = DefaultFixedMaxFiles
		} else {
			c.Retention.MaxFiles = DefaultUploadMaxFiles
		}
	}
	if len(c.Cookies.Markers) == 0 {
		c.Cookies.Markers = DefaultCookieMarkers
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
}

// RequestDelay is the pause applied before every yt-dlp invocation.
func (c *Config) RequestDelay() time.Duration {
	return parseDuration(c.Ytdlp.RequestDelay, DefaultRequestDelay, "ytdlp.request_delay")
}

// MetadataTimeout bounds a single metadata invocation. Zero means no limit.
func (c *Config) MetadataTimeout() time.Duration {
	return parseDuration(c.Ytdlp.MetadataTimeout, DefaultMetadataTimeout, "ytdlp.metadata_timeout")
}

// CacheTTL is the lifetime of cached metadata entries.
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Cache.TTL, DefaultCacheTTL, "cache.ttl")
}

func parseDuration(raw string, fallback time.Duration, key string) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		logger.Warn().Err(err).Str("key", key).Str("value", raw).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}

func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}
