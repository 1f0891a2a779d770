package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort           = 8080
	DefaultHost           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 50 * 1024 * 1024 // 50MB
	DefaultCerfaPDF       = "Formulaire-de-demande-a-la-MDPH-Document-cerfa_15692-012-combine.pdf"
	DefaultFormDef        = "data/form_pages.json"
	DefaultLifeProjectPDF = "pdf/mdph-projet-de-vie.pdf"
	DefaultOutputDir      = "output"

	// EnvPrefix prefixes every environment variable read by the service.
	EnvPrefix = "MDPH"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// DefaultBrandFonts are tried in order for the life-project heading.
var DefaultBrandFonts = []string{"fonts/Poppins-SemiBold.ttf", "fonts/Poppins-Bold.ttf"}

// Config holds all configuration for the MDPH PDF service
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Data configuration. Template paths are relative to DataDir unless absolute.
	DataDir        string
	OutputDir      string
	CerfaPDF       string
	FormDef        string
	LifeProjectPDF string
	BrandFonts     []string
	// NameBroadcast is an optional JSON file replacing the built-in
	// identity broadcast table.
	NameBroadcast string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio,
		Host:           DefaultHost,
		Port:           DefaultPort,
		DataDir:        currentDir,
		OutputDir:      filepath.Join(currentDir, DefaultOutputDir),
		CerfaPDF:       DefaultCerfaPDF,
		FormDef:        DefaultFormDef,
		LifeProjectPDF: DefaultLifeProjectPDF,
		BrandFonts:     append([]string(nil), DefaultBrandFonts...),
		Version:        "1.0.0",
		ServerName:     "mdph-pdf",
		LogLevel:       DefaultLogLevel,
		MaxFileSize:    DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and environment variables and
// returns a validated configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	for _, dir := range []*string{&cfg.DataDir, &cfg.OutputDir} {
		if *dir == "" {
			continue
		}
		if expanded, err := filepath.Abs(*dir); err == nil {
			*dir = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("datadir", cfg.DataDir)
	viper.SetDefault("outputdir", cfg.OutputDir)
	viper.SetDefault("cerfapdf", cfg.CerfaPDF)
	viper.SetDefault("formdef", cfg.FormDef)
	viper.SetDefault("lifeprojectpdf", cfg.LifeProjectPDF)
	viper.SetDefault("brandfonts", cfg.BrandFonts)
	viper.SetDefault("namebroadcast", cfg.NameBroadcast)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("datadir", cfg.DataDir, "Directory holding templates, form definitions and fonts")
	pflag.String("outputdir", cfg.OutputDir, "Directory receiving generated PDF files")
	pflag.String("cerfapdf", cfg.CerfaPDF, "CERFA request form template")
	pflag.String("formdef", cfg.FormDef, "Form definition (single document or pages index)")
	pflag.String("lifeprojectpdf", cfg.LifeProjectPDF, "Life-project template")
	pflag.StringSlice("brandfonts", cfg.BrandFonts, "TrueType fonts tried in order for the life-project heading")
	pflag.String("namebroadcast", cfg.NameBroadcast, "Optional JSON file overriding the identity broadcast table")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

var flagKeys = []string{
	"mode", "host", "port", "datadir", "outputdir", "cerfapdf", "formdef",
	"lifeprojectpdf", "brandfonts", "namebroadcast", "loglevel", "maxfilesize",
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range flagKeys {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMDPH PDF - fills the MDPH request form and composes life-project documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --datadir=/srv/mdph/public               "+
			"# stdio mode with custom data directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --datadir=/srv/mdph/public # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		for _, key := range flagKeys {
			fmt.Fprintf(os.Stderr, "  %s_%s\n", EnvPrefix, strings.ToUpper(key))
		}
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DataDir = viper.GetString("datadir")
	cfg.OutputDir = viper.GetString("outputdir")
	cfg.CerfaPDF = viper.GetString("cerfapdf")
	cfg.FormDef = viper.GetString("formdef")
	cfg.LifeProjectPDF = viper.GetString("lifeprojectpdf")
	cfg.BrandFonts = splitList(viper.GetStringSlice("brandfonts"))
	cfg.NameBroadcast = viper.GetString("namebroadcast")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// splitList flattens comma separated entries, as found in environment
// variables, and drops blanks.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks if the configuration is valid, creating the data and
// output directories when missing
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}
	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	for _, dir := range []string{c.DataDir, c.OutputDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access directory %s: %w", dir, err)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Resolve returns path unchanged when absolute or empty, otherwise joined
// to the data directory
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

// BrandFontPaths returns the brand fonts resolved against the data directory
func (c *Config) BrandFontPaths() []string {
	out := make([]string, 0, len(c.BrandFonts))
	for _, f := range c.BrandFonts {
		out = append(out, c.Resolve(f))
	}
	return out
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, DataDir: %s, OutputDir: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.DataDir, c.OutputDir, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
