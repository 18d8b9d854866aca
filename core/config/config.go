package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	// ConfigurationName is the file name of the shell configuration.
	ConfigurationName = "config.yaml"
	// HostKeyName is the default file name of the SSH host key.
	HostKeyName = "host_key"
	// HostKeyPubName is the default file name of the SSH host public key.
	HostKeyPubName = "host_key.pub"
	// HistoryName is the default file name of the history database.
	HistoryName = "history.db"
	// SessionLogName is the file name of the session event log.
	SessionLogName = "session.log"

	// DefaultPrompt is used when the configured prompt is empty.
	DefaultPrompt = `\u@\h:\w\$ `
)

// Configuration holds the shell's settings.
type Configuration struct {
	configurationDir string

	// Prompt is the prompt template. Supported escapes: \u (user),
	// \h (host), \w (working directory), \$ ($, or # for root).
	Prompt string `json:"prompt"`

	// HistoryFile is the path of the history database, relative to the
	// configuration directory unless absolute.
	HistoryFile string `json:"history_file" validate:"required"`

	// Path overrides the PATH environment variable when non-empty.
	Path []string `json:"path"`

	SSH SSH `json:"ssh"`
}

// SSH configures the `serve` command.
type SSH struct {
	Port int `json:"port" validate:"gte=0,lte=65535"`

	// HostKey is the path of the PEM-encoded host key, relative to the
	// configuration directory unless absolute.
	HostKey string `json:"host_key" validate:"required"`

	Banner string `json:"banner"`

	// Passwords lists accepted login passwords. Empty rejects password
	// logins outright.
	Passwords []string `json:"passwords"`

	// ConnectionsPerMinute bounds the rate of accepted connections.
	// Zero disables throttling.
	ConnectionsPerMinute int `json:"connections_per_minute" validate:"gte=0"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// resolve turns a configured path into one anchored at the configuration
// directory unless it is already absolute.
func (c *Configuration) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.configurationDir, path)
}

// HistoryPath returns the resolved path of the history database.
func (c *Configuration) HistoryPath() string {
	return c.resolve(c.HistoryFile)
}

// HostKeyPath returns the resolved path of the SSH host key.
func (c *Configuration) HostKeyPath() string {
	return c.resolve(c.SSH.HostKey)
}

// SessionLogPath returns the resolved path of the session event log.
func (c *Configuration) SessionLogPath() string {
	return c.resolve(SessionLogName)
}

// Default returns the built-in configuration anchored at dir. It is used
// when no configuration file exists.
func Default(dir string) *Configuration {
	out := defaultConfig()
	out.configurationDir = configDir(dir)
	return out
}

// Load reads and validates the configuration rooted at path. Both the
// configuration directory and the config.yaml file itself are accepted.
func Load(path string) (*Configuration, error) {
	dir := configDir(path)

	// The raw read error is returned as-is so callers can test for a
	// missing configuration with errors.Is.
	raw, err := os.ReadFile(filepath.Join(dir, ConfigurationName))
	if err != nil {
		return nil, err
	}

	out := Configuration{configurationDir: dir}
	if err := yaml.UnmarshalStrict(raw, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigurationName, err)
	}
	return &out, nil
}

// configDir normalizes a configuration path: pointing at the config.yaml
// file means its containing directory.
func configDir(path string) string {
	if filepath.Base(path) == ConfigurationName {
		return filepath.Dir(path)
	}
	return path
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
