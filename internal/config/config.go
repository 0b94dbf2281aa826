package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/morozRed/lineage/internal/state"
)

// DefaultFile is the config file looked up in the working directory when no
// explicit path is given.
const DefaultFile = "lineage.yaml"

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the resolved runtime configuration.
type Config struct {
	Environment Environment `yaml:"environment"`
	LogLevel    string      `yaml:"log_level"`
	Store       Store       `yaml:"store"`
	Server      Server      `yaml:"server"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-"`
}

type Store struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir"`
	SeedFile string `yaml:"seed_file"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func Default() *Config {
	return &Config{
		Environment: Development,
		LogLevel:    "info",
		Store: Store{
			Backend: state.BackendFile,
			DataDir: ".lineage",
		},
		Server: Server{
			Addr:            "127.0.0.1:8080",
			CORSOrigins:     []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		LoadedFrom: []string{"defaults"},
	}
}

// Load applies defaults, the YAML file at path and then environment
// overrides. An empty path tries DefaultFile and tolerates its absence; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	c.LoadedFrom = append(c.LoadedFrom, path)
	return nil
}

var envKeys = []string{
	"LINEAGE_ENV",
	"LINEAGE_LOG_LEVEL",
	"LINEAGE_STORE",
	"LINEAGE_DATA_DIR",
	"LINEAGE_SEED_FILE",
	"LINEAGE_ADDR",
	"LINEAGE_CORS",
	"LINEAGE_SHUTDOWN_TIMEOUT",
}

func (c *Config) applyEnv() {
	c.Environment = Environment(strings.ToLower(getEnv("LINEAGE_ENV", string(c.Environment))))
	c.LogLevel = getEnv("LINEAGE_LOG_LEVEL", c.LogLevel)
	c.Store.Backend = getEnv("LINEAGE_STORE", c.Store.Backend)
	c.Store.DataDir = getEnv("LINEAGE_DATA_DIR", c.Store.DataDir)
	c.Store.SeedFile = getEnv("LINEAGE_SEED_FILE", c.Store.SeedFile)
	c.Server.Addr = getEnv("LINEAGE_ADDR", c.Server.Addr)
	c.Server.CORSOrigins = getEnvList("LINEAGE_CORS", c.Server.CORSOrigins)
	c.Server.ShutdownTimeout = getEnvDuration("LINEAGE_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	for _, key := range envKeys {
		if strings.TrimSpace(os.Getenv(key)) != "" {
			c.LoadedFrom = append(c.LoadedFrom, "environment")
			break
		}
	}
}

// Validate rejects unknown backends, log levels and environments.
func (c *Config) Validate() error {
	var errs []string
	if !slices.Contains(state.Backends(), c.Store.Backend) {
		errs = append(errs, fmt.Sprintf("store backend %q must be one of %s", c.Store.Backend, strings.Join(state.Backends(), ", ")))
	}
	if c.Store.Backend != state.BackendMemory && strings.TrimSpace(c.Store.DataDir) == "" {
		errs = append(errs, "store data_dir is required")
	}
	if !slices.Contains(LogLevels(), strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Sprintf("log level %q must be one of %s", c.LogLevel, strings.Join(LogLevels(), ", ")))
	}
	switch c.Environment {
	case Development, Production:
	default:
		errs = append(errs, fmt.Sprintf("environment %q must be development or production", c.Environment))
	}
	if c.Server.Addr == "" {
		errs = append(errs, "server addr is required")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// LogLevels lists the accepted log level names.
func LogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	out := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
