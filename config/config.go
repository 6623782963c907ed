package config

import (
	"os"
	"path"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// DBConfig Database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres, sqlite or mongodb
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	URI      string `yaml:"uri"` // full DSN / mongodb URI, wins over host/port when set
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// SysConfig System configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig Web server configuration
type WebConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	ApiPrefix   string   `yaml:"api_prefix"`
	Secret      string   `yaml:"secret"`
	SessionName string   `yaml:"session_name"`
	AllowOrigin []string `yaml:"allow_origin"`
}

// AuthConfig token and bootstrap account settings
type AuthConfig struct {
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system"`
	Web      WebConfig  `yaml:"web"`
	Database DBConfig   `yaml:"database"`
	Logger   LogConfig  `yaml:"logger"`
	Auth     AuthConfig `yaml:"auth"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

// TokenTTL returns the lifetime of issued access tokens
func (c *AppConfig) TokenTTL() time.Duration {
	if c.Auth.TokenTTLHours <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(path.Join(c.System.Workdir, "logs"), 0o700)
	_ = os.MkdirAll(path.Join(c.System.Workdir, "data"), 0o700)
}

// DefaultAppConfig returns a fresh copy of the built-in configuration
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "storefront",
			Location: "Europe/Istanbul",
			Workdir:  "/var/storefront",
			Debug:    true,
		},
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        3000,
			ApiPrefix:   "/api",
			Secret:      "9b6de5cc-0731-4bf1-storefront-9d4f2b6c1e07",
			SessionName: "storefront_session",
			AllowOrigin: []string{"*"},
		},
		Database: DBConfig{
			Type:     "sqlite",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "storefront",
			User:     "postgres",
			Passwd:   "",
			MaxConn:  100,
			IdleConn: 10,
			Debug:    false,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/storefront/logs/storefront.log",
		},
		Auth: AuthConfig{
			TokenTTLHours: 24 * 30,
			AdminEmail:    "admin@karadagbaharat.com",
			AdminPassword: "admin123",
		},
	}
}

// LoadConfig reads cfile (or ./storefront.yml, then /etc/storefront.yml), falls back to
// the defaults and applies STOREFRONT_* environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	_ = godotenv.Load()

	if cfile == "" {
		cfile = "storefront.yml"
	}
	if !fileExists(cfile) {
		cfile = "/etc/storefront.yml"
	}
	cfg := DefaultAppConfig()
	if fileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	cfg.initDirs()
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("STOREFRONT_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("STOREFRONT_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("STOREFRONT_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("STOREFRONT_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("STOREFRONT_WEB_PORT", &cfg.Web.Port)
	setEnvValue("STOREFRONT_WEB_SECRET", &cfg.Web.Secret)
	setEnvValue("STOREFRONT_WEB_API_PREFIX", &cfg.Web.ApiPrefix)
	if v := os.Getenv("STOREFRONT_WEB_ALLOW_ORIGIN"); v != "" {
		cfg.Web.AllowOrigin = strings.Split(v, ",")
	}

	setEnvValue("STOREFRONT_DB_TYPE", &cfg.Database.Type)
	setEnvValue("STOREFRONT_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("STOREFRONT_DB_PORT", &cfg.Database.Port)
	setEnvValue("STOREFRONT_DB_NAME", &cfg.Database.Name)
	setEnvValue("STOREFRONT_DB_USER", &cfg.Database.User)
	setEnvValue("STOREFRONT_DB_PWD", &cfg.Database.Passwd)
	setEnvValue("STOREFRONT_DB_URI", &cfg.Database.URI)
	setEnvBoolValue("STOREFRONT_DB_DEBUG", &cfg.Database.Debug)
	// plain MONGODB_URI selects the document store
	if v := os.Getenv("MONGODB_URI"); v != "" && cfg.Database.URI == "" {
		cfg.Database.Type = "mongodb"
		cfg.Database.URI = v
	}

	setEnvValue("STOREFRONT_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("STOREFRONT_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	setEnvIntValue("STOREFRONT_AUTH_TOKEN_TTL_HOURS", &cfg.Auth.TokenTTLHours)
	setEnvValue("STOREFRONT_AUTH_ADMIN_EMAIL", &cfg.Auth.AdminEmail)
	setEnvValue("STOREFRONT_AUTH_ADMIN_PASSWORD", &cfg.Auth.AdminPassword)
}

func setEnvValue(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToBool(v)
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}

func fileExists(file string) bool {
	info, err := os.Stat(file)
	return err == nil && !info.IsDir()
}
