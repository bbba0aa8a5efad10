package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	sortthread "github.com/emersion/go-imap-sortthread"
	"github.com/joho/godotenv"
)

// Typed names for the supported algorithms. go-imap-sortthread declares
// References as an untyped constant.
const (
	AlgorithmReferences     = sortthread.ThreadAlgorithm(sortthread.References)
	AlgorithmOrderedSubject = sortthread.ThreadAlgorithm(sortthread.OrderedSubject)
)

type Config struct {
	Environment string
	ConfigFile  string
	Algorithm   sortthread.ThreadAlgorithm
	InsistOnRe  bool
	UseUID      bool
}

// fileConfig mirrors the optional TOML file. Pointers tell unset keys apart
// from explicit zero values.
type fileConfig struct {
	Threading struct {
		Algorithm  *string `toml:"algorithm"`
		InsistOnRe *bool   `toml:"insist_on_re"`
		UseUID     *bool   `toml:"use_uid"`
	} `toml:"threading"`
}

func NewConfig() (*Config, error) {
	env := os.Getenv("THREADER_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	config := &Config{
		Environment: env,
		ConfigFile:  os.Getenv("THREADER_CONFIG_FILE"),
		Algorithm:   AlgorithmReferences,
		InsistOnRe:  true,
		UseUID:      false,
	}

	if config.ConfigFile != "" {
		if err := config.loadFile(config.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := config.loadEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) loadFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if fc.Threading.Algorithm != nil {
		c.Algorithm = ParseAlgorithm(*fc.Threading.Algorithm)
	}
	if fc.Threading.InsistOnRe != nil {
		c.InsistOnRe = *fc.Threading.InsistOnRe
	}
	if fc.Threading.UseUID != nil {
		c.UseUID = *fc.Threading.UseUID
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.Algorithm = ParseAlgorithm(getEnvOrDefault("THREADER_ALGORITHM", string(c.Algorithm)))

	var err error
	if c.InsistOnRe, err = getBoolEnvOrDefault("THREADER_INSIST_ON_RE", c.InsistOnRe); err != nil {
		return err
	}
	if c.UseUID, err = getBoolEnvOrDefault("THREADER_USE_UID", c.UseUID); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmReferences, AlgorithmOrderedSubject:
	default:
		return fmt.Errorf("THREADER_ALGORITHM must be REFERENCES or ORDEREDSUBJECT, got %q", c.Algorithm)
	}
	return nil
}

// ParseAlgorithm normalizes an algorithm name as written by users, so
// "references" and "orderedsubject" are accepted.
func ParseAlgorithm(name string) sortthread.ThreadAlgorithm {
	return sortthread.ThreadAlgorithm(strings.ToUpper(strings.TrimSpace(name)))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnvOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s is not a valid boolean: %q", key, value)
	}
	return b, nil
}
