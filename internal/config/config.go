package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/assetver/internal/errors"
	"github.com/vango-dev/assetver/pkg/assets"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "assetver.yaml"

	// DefaultAddr is the default listen address of the asset server.
	DefaultAddr = ":8080"

	// DefaultPublicDir is the default public web root.
	DefaultPublicDir = "public"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "ASSETVER_"
)

// Config represents the complete assetver.yaml configuration.
type Config struct {
	// Version is the fixed asset version. Empty means none.
	Version string `yaml:"version,omitempty"`

	// Secure forces https (true) or http (false) URLs. Unset defers to the
	// URL builder.
	Secure *bool `yaml:"secure,omitempty"`

	// AutoVersioning derives versions from file modification times.
	AutoVersioning bool `yaml:"autoVersioning,omitempty"`

	// Paths are extra search directories, relative to BaseDir.
	Paths []string `yaml:"paths,omitempty"`

	// BaseDir is the application base directory. Relative values are
	// resolved against the directory holding the config file.
	BaseDir string `yaml:"baseDir,omitempty"`

	// PublicDir is the public web root, relative to BaseDir.
	PublicDir string `yaml:"publicDir,omitempty"`

	// AssetURL is the root used to build final URLs, e.g. a CDN. Empty
	// produces root-relative URLs.
	AssetURL string `yaml:"assetURL,omitempty"`

	// Server configures `assetver serve`.
	Server ServerConfig `yaml:"server,omitempty"`

	// Log configures logging.
	Log LogConfig `yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains asset server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr,omitempty"`

	// Prefix is the URL prefix static files are served under (default: "/").
	Prefix string `yaml:"prefix,omitempty"`

	// Headers are extra response headers set on every static file.
	Headers map[string]string `yaml:"headers,omitempty"`

	// RateLimit caps lookup requests per client IP per minute. 0 disables it.
	RateLimit int `yaml:"rateLimit,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is a zerolog level name.
	Level string `yaml:"level,omitempty"`

	// Console switches to human-readable output.
	Console bool `yaml:"console,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads assetver.yaml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Unknown keys
// are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("A100").
				WithDetail("No " + ConfigFileName + " found at " + path).
				WithSuggestion("Run 'assetver init' to create one").
				Wrap(err)
		}
		return nil, errors.New("A101").Wrap(err).WithDetail(err.Error())
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.New("A101").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid YAML").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Resolve loads explicitPath when given, otherwise assetver.yaml from dir if
// present, otherwise defaults. Environment overrides are applied and the
// result validated.
func Resolve(explicitPath, dir string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch {
	case explicitPath != "":
		cfg, err = LoadFile(explicitPath)
	case Exists(dir):
		cfg, err = Load(dir)
	default:
		cfg = New()
		if abs, absErr := filepath.Abs(dir); absErr == nil {
			cfg.configPath = filepath.Join(abs, ConfigFileName)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays ASSETVER_* variables (and LOG_LEVEL) read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "VERSION"); ok {
		c.Version = v
	}
	if v, ok := lookup(EnvPrefix + "SECURE"); ok {
		secure, err := assets.ParseSecure(v)
		if err != nil {
			return errors.New("A102").
				WithDetail(EnvPrefix + "SECURE=" + strconv.Quote(v) + " is not a boolean").
				Wrap(err)
		}
		c.SetSecure(secure)
	}
	if v, ok := lookup(EnvPrefix + "AUTO_VERSIONING"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.New("A103").
				WithDetail(EnvPrefix + "AUTO_VERSIONING=" + strconv.Quote(v) + " is not a boolean").
				Wrap(err)
		}
		c.AutoVersioning = b
	}
	if v, ok := lookup(EnvPrefix + "PATHS"); ok {
		c.Paths = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "ASSET_URL"); ok {
		c.AssetURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPrefix + "ADDR"); ok {
		c.Server.Addr = strings.TrimSpace(v)
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	return nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("A101").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("A101").Wrap(err).WithDetail(err.Error())
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.BaseDir == "" {
		c.BaseDir = "."
	}
	if c.PublicDir == "" {
		c.PublicDir = DefaultPublicDir
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Prefix == "" {
		c.Server.Prefix = "/"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("A104").WithDetail("server.addr must not be empty")
	}
	if !strings.HasPrefix(c.Server.Prefix, "/") {
		return errors.New("A104").
			WithDetail("server.prefix must start with \"/\", got " + strconv.Quote(c.Server.Prefix))
	}
	if c.Server.RateLimit < 0 {
		return errors.New("A104").WithDetail("server.rateLimit must not be negative")
	}
	for _, p := range c.Paths {
		if strings.TrimSpace(p) == "" {
			return errors.New("A101").WithDetail("paths must not contain empty entries")
		}
	}
	return nil
}

// SecureOption returns the secure setting as an explicit tri-state.
func (c *Config) SecureOption() assets.Secure {
	return assets.SecureFromPtr(c.Secure)
}

// SetSecure stores a tri-state secure setting. SecureDefault clears it.
func (c *Config) SetSecure(s assets.Secure) {
	b, ok := s.Bool()
	if !ok {
		c.Secure = nil
		return
	}
	c.Secure = &b
}

// BasePath returns the absolute application base directory.
func (c *Config) BasePath() string {
	if filepath.IsAbs(c.BaseDir) {
		return c.BaseDir
	}
	base := filepath.Join(c.Dir(), c.BaseDir)
	if abs, err := filepath.Abs(base); err == nil {
		return abs
	}
	return base
}

// PublicPath returns the absolute path to the public directory.
func (c *Config) PublicPath() string {
	if filepath.IsAbs(c.PublicDir) {
		return c.PublicDir
	}
	return filepath.Join(c.BasePath(), c.PublicDir)
}

// Assets returns the versioner options described by this configuration.
func (c *Config) Assets() assets.Config {
	return assets.Config{
		Version:        c.Version,
		Secure:         c.SecureOption(),
		AutoVersioning: c.AutoVersioning,
		Paths:          append([]string(nil), c.Paths...),
	}
}

// PathResolver returns the directory layout used for file lookups.
func (c *Config) PathResolver() assets.DirPaths {
	return assets.DirPaths{Base: c.BasePath(), Public: c.PublicPath()}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing assetver.yaml, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("A100").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'assetver init' to create one")
		}
		dir = parent
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
