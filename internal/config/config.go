package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Config is the portal configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Backend BackendConfig `yaml:"backend" json:"backend"`
	Session SessionConfig `yaml:"session" json:"session"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr" json:"addr"`
	TLSCert       string `yaml:"tls_cert" json:"tls_cert"`
	TLSKey        string `yaml:"tls_key" json:"tls_key"`
	SecureCookies bool   `yaml:"secure_cookies" json:"secure_cookies"`
}

// BackendConfig points at the two remote APIs. APIURL serves authentication
// and freight quotes, ERPURL serves orders and approval mutations.
type BackendConfig struct {
	APIURL  string `yaml:"api_url" json:"api_url"`
	ERPURL  string `yaml:"erp_url" json:"erp_url"`
	Timeout string `yaml:"timeout" json:"timeout"`
}

type SessionConfig struct {
	KeyFile    string `yaml:"key_file" json:"key_file"`
	CookieName string `yaml:"cookie_name" json:"cookie_name"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Backend: BackendConfig{
			APIURL:  "http://localhost:3000",
			ERPURL:  "https://sub.tractb2b.com.br/EcPlan-1.0_FR",
			Timeout: "15s",
		},
		Session: SessionConfig{
			KeyFile:    "session.key",
			CookieName: "portal_session",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML (.yaml, .yml) or JSON-with-comments (.json, .hujson)
// file over the defaults, then applies environment overrides. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".hujson":
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return err
		}
		return json.Unmarshal(standardized, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORTAL_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PORTAL_API_URL"); v != "" {
		c.Backend.APIURL = v
	}
	if v := os.Getenv("PORTAL_ERP_URL"); v != "" {
		c.Backend.ERPURL = v
	}
	if v := os.Getenv("PORTAL_HTTP_TIMEOUT"); v != "" {
		c.Backend.Timeout = v
	}
	if v := os.Getenv("PORTAL_SESSION_KEY_FILE"); v != "" {
		c.Session.KeyFile = v
	}
	if v := os.Getenv("PORTAL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("server.tls_cert and server.tls_key must be set together")
	}
	for name, raw := range map[string]string{"backend.api_url": c.Backend.APIURL, "backend.erp_url": c.Backend.ERPURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if _, err := c.BackendTimeout(); err != nil {
		return err
	}
	if c.Session.KeyFile == "" {
		return errors.New("session.key_file is required")
	}
	if c.Session.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}
	return nil
}

// BackendTimeout parses Backend.Timeout.
func (c *Config) BackendTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil {
		return 0, fmt.Errorf("backend.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("backend.timeout must be positive, got %s", d)
	}
	return d, nil
}

// TLSEnabled reports whether the server should serve HTTPS.
func (c *Config) TLSEnabled() bool {
	return c.Server.TLSCert != "" && c.Server.TLSKey != ""
}
