// Package config resolves client settings from defaults, an optional config
// file, a .env file and TEAMS_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "TEAMS"
	configName = "config"
	configType = "toml"
	appDirName = "teams"

	KeyAPIBaseURL  = "api.base_url"
	KeyAPITimeout  = "api.timeout"
	KeySessionPath = "session.path"
	KeySecretsDir  = "secrets.dir"
	KeyLogLevel    = "log.level"
)

type Config struct {
	API     APIConfig
	Session SessionConfig
	Secrets SecretsConfig
	Log     LogConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Path string
}

type SecretsConfig struct {
	Dir string
}

type LogConfig struct {
	Level slog.Level
}

// Load reads the configuration into v. envFiles default to ".env" in the
// working directory; missing env files are ignored and never override
// variables already set in the process.
func Load(v *viper.Viper, envFiles ...string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".config", appDirName)

	v.SetDefault(KeyAPIBaseURL, "http://localhost:3333")
	v.SetDefault(KeyAPITimeout, "30s")
	v.SetDefault(KeySessionPath, filepath.Join(configDir, "session.toml"))
	v.SetDefault(KeySecretsDir, filepath.Join(configDir, "secrets"))
	v.SetDefault(KeyLogLevel, "warn")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		API: APIConfig{
			BaseURL: strings.TrimSpace(v.GetString(KeyAPIBaseURL)),
			Timeout: v.GetDuration(KeyAPITimeout),
		},
		Session: SessionConfig{Path: expandHome(v.GetString(KeySessionPath), homeDir)},
		Secrets: SecretsConfig{Dir: expandHome(v.GetString(KeySecretsDir), homeDir)},
	}

	level, err := parseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, err
	}
	cfg.Log.Level = level

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", KeyAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: must use http or https", KeyAPIBaseURL, c.API.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid %s %q: host is required", KeyAPIBaseURL, c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("invalid %s %s: must be positive", KeyAPITimeout, c.API.Timeout)
	}
	if c.Session.Path == "" {
		return fmt.Errorf("%s is empty", KeySessionPath)
	}
	if c.Secrets.Dir == "" {
		return fmt.Errorf("%s is empty", KeySecretsDir)
	}
	return nil
}

// NewLogger builds the text logger shared by every component.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level}))
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid %s %q: want debug, info, warn or error", KeyLogLevel, raw)
	}
}

func expandHome(path, homeDir string) string {
	path = strings.TrimSpace(path)
	if path == "~" {
		return homeDir
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(homeDir, rest)
	}
	return path
}
