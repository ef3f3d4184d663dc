package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/logging"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var log = logging.L("config")

// EnvPrefix prefixes every environment override, e.g. EASYUPDATE_CHECK_URL.
const EnvPrefix = "EASYUPDATE"

// DatabaseConfig holds all database connection parameters.
type DatabaseConfig struct {
	Host         string        `mapstructure:"db_host"`
	Port         int           `mapstructure:"db_port"`
	User         string        `mapstructure:"db_user"`
	Password     string        `mapstructure:"db_password_conf"`
	DBName       string        `mapstructure:"db_name"`
	SSLMode      string        `mapstructure:"db_sslmode"`
	ReadTimeout  time.Duration `mapstructure:"db_read_timeout"`
	WriteTimeout time.Duration `mapstructure:"db_write_timeout"`
}

// Config matches the structure of the config file and environment variables.
type Config struct {
	ServiceName        string            `mapstructure:"service_name"`
	CheckURL           string            `mapstructure:"check_url"`
	HTTPMethod         string            `mapstructure:"http_method"`
	Headers            map[string]string `mapstructure:"headers"`
	JSONBody           string            `mapstructure:"json_body"`
	FormBody           map[string]string `mapstructure:"form_body"`
	CurrentVersionFile string            `mapstructure:"current_version_file"`
	LocalVersionCode   int64             `mapstructure:"local_version_code"`
	CacheDir           string            `mapstructure:"cache_dir"`
	Language           string            `mapstructure:"language"`
	LogLevel           string            `mapstructure:"log_level"`
	LogFormat          string            `mapstructure:"log_format"`
	PackageName        string            `mapstructure:"package_name"`
	SDKInt             int               `mapstructure:"sdk_int"`
	InstallAllowed     bool              `mapstructure:"install_allowed"`
	LauncherCommand    string            `mapstructure:"launcher_command"`
	HistoryEnabled     bool              `mapstructure:"history_enabled"`
	StatusReportURL    string            `mapstructure:"status_report_url"`
	StatusHeaders      map[string]string `mapstructure:"status_headers"`
	Database           DatabaseConfig    `mapstructure:"database"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"url":       "check_url",
	"log-level": "log_level",
	"lang":      "language",
}

// Load reads the configuration using Viper. Values resolve in the order
// flags, environment, config file, defaults. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.db_host", "localhost")
	v.SetDefault("database.db_port", 5432)
	v.SetDefault("database.db_user", "postgres")
	v.SetDefault("database.db_name", "easyupdate")
	v.SetDefault("database.db_sslmode", "disable")
	v.SetDefault("database.db_read_timeout", "5s")
	v.SetDefault("database.db_write_timeout", "5s")

	v.SetDefault("service_name", "EasyUpdate")
	v.SetDefault("check_url", "")
	v.SetDefault("http_method", "GET")
	v.SetDefault("json_body", "")
	v.SetDefault("package_name", "")
	v.SetDefault("current_version_file", "")
	v.SetDefault("local_version_code", -1)
	v.SetDefault("cache_dir", filepath.Join(os.TempDir(), "easyupdate"))
	v.SetDefault("language", "en")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("sdk_int", 33)
	v.SetDefault("install_allowed", true)
	v.SetDefault("launcher_command", "am")
	v.SetDefault("history_enabled", false)
	v.SetDefault("status_report_url", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/easyupdate/")
		v.AddConfigPath("$HOME/.easyupdate")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.db_password_conf", EnvPrefix+"_DB_PASSWORD"); err != nil {
		return nil, cstmerr.NewConfigError("failed to bind database password", err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, cstmerr.NewConfigError(fmt.Sprintf("failed to bind flag --%s", name), err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (configPath != "" && errors.Is(err, os.ErrNotExist)) {
			log.Print("Config file not found, using defaults and environment variables.")
		} else {
			return nil, cstmerr.NewFileIOError("failed to read config file", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, cstmerr.NewConfigError("failed to unmarshal config", err)
	}
	if err := config.loadCaseSensitiveTables(v.ConfigFileUsed()); err != nil {
		return nil, err
	}

	log.Printf("Configuration loaded. Service Name: %s, Check URL: %s", config.ServiceName, config.CheckURL)
	return &config, nil
}

// caseSensitiveTables are the map tables whose keys go on the wire verbatim.
// viper lower-cases map keys, so they are decoded from the file directly.
type caseSensitiveTables struct {
	Headers       map[string]string `toml:"headers"`
	FormBody      map[string]string `toml:"form_body"`
	StatusHeaders map[string]string `toml:"status_headers"`
}

func (c *Config) loadCaseSensitiveTables(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return cstmerr.NewFileIOError("failed to read config file", err)
	}

	var tables caseSensitiveTables
	if err := toml.Unmarshal(data, &tables); err != nil {
		return cstmerr.NewConfigError("failed to decode config tables", err)
	}
	if tables.Headers != nil {
		c.Headers = tables.Headers
	}
	if tables.FormBody != nil {
		c.FormBody = tables.FormBody
	}
	if tables.StatusHeaders != nil {
		c.StatusHeaders = tables.StatusHeaders
	}
	return nil
}

// Validate reports settings the updater cannot run with.
func (c *Config) Validate() error {
	if c.CheckURL == "" {
		return cstmerr.NewConfigError("check_url is required", nil)
	}
	if c.JSONBody != "" && len(c.FormBody) > 0 {
		return cstmerr.NewConfigError("json_body and form_body are mutually exclusive", nil)
	}
	if c.PackageName == "" {
		return cstmerr.NewConfigError("package_name is required", nil)
	}
	return nil
}

// LocalVersion returns local_version_code when set, otherwise the number in
// the current version file.
func (c *Config) LocalVersion() (int64, error) {
	if c.LocalVersionCode >= 0 {
		return c.LocalVersionCode, nil
	}
	return GetCurrentVersion(c)
}

// GetCurrentVersion reads the installed version code from the version file.
// A missing or empty file means version 0.
func GetCurrentVersion(cfg *Config) (int64, error) {
	if cfg.CurrentVersionFile == "" {
		return 0, nil
	}
	if _, err := os.Stat(cfg.CurrentVersionFile); os.IsNotExist(err) {
		log.Printf("Version file %s not found, assuming version 0.", cfg.CurrentVersionFile)
		return 0, nil
	}

	versionData, err := os.ReadFile(cfg.CurrentVersionFile)
	if err != nil {
		return 0, cstmerr.NewFileIOError(fmt.Sprintf("failed to read current version file %s", cfg.CurrentVersionFile), err)
	}

	trimmed := bytes.TrimSpace(versionData)
	if len(trimmed) == 0 {
		log.Printf("Version file %s is empty, assuming version 0.", cfg.CurrentVersionFile)
		return 0, nil
	}

	version, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return 0, cstmerr.NewConfigError(fmt.Sprintf("invalid version format in version file %s ('%s')", cfg.CurrentVersionFile, trimmed), err)
	}
	return version, nil
}
