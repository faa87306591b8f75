// Package config loads the optional pgscan.yaml project file.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vvka-141/pgscan/internal/props"
	"github.com/vvka-141/pgscan/pkg/pgscan"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConnectionConfig describes the database used by "pgscan index". URL wins
// over the individual fields. Every value may be a ${...} expression.
type ConnectionConfig struct {
	URL      string `yaml:"url,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     string `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Database string `yaml:"database,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
}

type ProjectConfig struct {
	SearchPath      []string          `yaml:"search_path"`
	RootErrorPolicy string            `yaml:"root_error_policy"`
	EnvFile         string            `yaml:"env_file"`
	Properties      map[string]string `yaml:"properties"`
	Connection      ConnectionConfig  `yaml:"connection"`

	// dir is the directory the file was loaded from; relative paths in the
	// file are resolved against it.
	dir string
}

const ConfigFileName = "pgscan.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a project file at an explicit path.
func LoadFile(configPath string) (*ProjectConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", pgscan.ErrInvalidConfig, configPath, err)
	}
	cfg.dir = filepath.Dir(configPath)
	return &cfg, nil
}

// Dir returns the directory the configuration was loaded from.
func (c *ProjectConfig) Dir() string {
	return c.dir
}

// Policy parses RootErrorPolicy; an empty value selects the default.
func (c *ProjectConfig) Policy() (pgscan.RootErrorPolicy, error) {
	return pgscan.ParseRootErrorPolicy(c.RootErrorPolicy)
}

// EnvFilePath returns the env file location resolved against the config
// directory, or "" when none is configured.
func (c *ProjectConfig) EnvFilePath() string {
	if c.EnvFile == "" {
		return ""
	}
	return c.resolvePath(c.EnvFile)
}

// ResolveSearchPath evaluates the search path entries with r and makes
// relative entries relative to the config directory.
func (c *ProjectConfig) ResolveSearchPath(r *props.Resolver) ([]string, error) {
	entries := make([]string, 0, len(c.SearchPath))
	for i, raw := range c.SearchPath {
		entry, err := r.Resolve(raw)
		if err != nil {
			return nil, fmt.Errorf("search_path[%d]: %w", i, err)
		}
		if strings.TrimSpace(entry) == "" {
			return nil, fmt.Errorf("%w: search_path[%d] is empty", pgscan.ErrInvalidConfig, i)
		}
		entries = append(entries, c.resolvePath(entry))
	}
	return entries, nil
}

func (c *ProjectConfig) resolvePath(p string) string {
	if filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// ConnString builds a pgx connection string, evaluating every field with r.
// Passwords are not part of the file; pgx reads PGPASSWORD and ~/.pgpass.
func (c ConnectionConfig) ConnString(r *props.Resolver) (string, error) {
	resolved := make(map[string]string, 6)
	for field, raw := range map[string]string{
		"url":      c.URL,
		"host":     c.Host,
		"port":     c.Port,
		"username": c.Username,
		"database": c.Database,
		"sslmode":  c.SSLMode,
	} {
		value, err := r.Resolve(raw)
		if err != nil {
			return "", fmt.Errorf("connection.%s: %w", field, err)
		}
		resolved[field] = strings.TrimSpace(value)
	}

	if resolved["url"] != "" {
		return resolved["url"], nil
	}
	if resolved["host"] == "" && resolved["database"] == "" {
		return "", fmt.Errorf("%w: no connection configured (set connection.url or connection.host)", pgscan.ErrInvalidConfig)
	}

	host := resolved["host"]
	if host == "" {
		host = "localhost"
	}
	if port := resolved["port"]; port != "" {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return "", fmt.Errorf("%w: connection.port %q is not a port number", pgscan.ErrInvalidConfig, port)
		}
		host = net.JoinHostPort(host, port)
	}

	u := url.URL{Scheme: "postgres", Host: host, Path: "/" + resolved["database"]}
	if resolved["username"] != "" {
		u.User = url.User(resolved["username"])
	}
	if resolved["sslmode"] != "" {
		u.RawQuery = url.Values{"sslmode": {resolved["sslmode"]}}.Encode()
	}
	return u.String(), nil
}
