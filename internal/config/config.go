package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/marcojr93/cntrackerv1/internal/calendar"
	"github.com/marcojr93/cntrackerv1/internal/dataprocessing"
	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable, e.g. CNTRACKER_SERVER_PORT
const EnvPrefix = "CNTRACKER"

// ConfigFileEnv points at an explicit YAML config file
const ConfigFileEnv = "CNTRACKER_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig         `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig       `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig        `yaml:"logging" envconfig:"LOGGING"`
	Register  RegisterConfig       `yaml:"register" envconfig:"REGISTER"`
	Calendar  CalendarConfig       `yaml:"calendar" envconfig:"CALENDAR"`
	Telemetry TelemetryConfig      `yaml:"telemetry" envconfig:"TELEMETRY"`
	Layouts   []domain.FieldLayout `yaml:"layouts" ignored:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	// untagged so envconfig never falls back to a bare HOST or PORT
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// Address returns the listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// RegisterConfig locates and describes the container register workbook
type RegisterConfig struct {
	// Path is a workbook file, or a directory whose newest .xlsx is used
	// untagged so the process PATH is never picked up
	Path           string `yaml:"path"`
	Sheet          string `yaml:"sheet" envconfig:"SHEET"`
	HeaderRow      int    `yaml:"header_row" envconfig:"HEADER_ROW"`
	Layout         string `yaml:"layout" envconfig:"LAYOUT"`
	UploadDir      string `yaml:"upload_dir" envconfig:"UPLOAD_DIR"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// CalendarConfig sets the horizon of selectable weeks
type CalendarConfig struct {
	Years []int `yaml:"years" envconfig:"YEARS"`
}

// TelemetryConfig toggles OpenTelemetry tracing and metrics
type TelemetryConfig struct {
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file; an empty path skips the file.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// only variables that are actually set override file values
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks ranges and normalises enumerations
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Output = strings.ToLower(c.Logging.Output); c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q: want console, file or both", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path is required for output %q", c.Logging.Output)
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if strings.TrimSpace(c.Register.Sheet) == "" {
		return fmt.Errorf("register sheet must not be empty")
	}
	if c.Register.HeaderRow < 1 {
		return fmt.Errorf("register header row must be at least 1, got %d", c.Register.HeaderRow)
	}
	if c.Register.MaxUploadBytes <= 0 {
		return fmt.Errorf("register max upload bytes must be positive")
	}

	if len(c.Calendar.Years) == 0 {
		return fmt.Errorf("calendar needs at least one year")
	}
	for _, y := range c.Calendar.Years {
		if y < 1900 || y > 9999 {
			return fmt.Errorf("calendar year out of range: %d", y)
		}
	}

	v := validator.New()
	for i := range c.Layouts {
		if err := v.Struct(c.Layouts[i]); err != nil {
			return fmt.Errorf("layout %d (%s): %w", i, c.Layouts[i].Name, err)
		}
	}
	if _, err := c.FieldLayout(); err != nil {
		return err
	}

	if c.Telemetry.EnableTracing {
		switch c.Telemetry.TraceExporter {
		case "stdout", "none":
		default:
			return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
		}
	}

	return nil
}

// FieldLayout resolves the configured register layout
func (c *Config) FieldLayout() (domain.FieldLayout, error) {
	return dataprocessing.ResolveLayout(c.Register.Layout, c.Layouts)
}

// LoadOptions returns the workbook parsing options for the register
func (c *Config) LoadOptions() (dataprocessing.LoadOptions, error) {
	layout, err := c.FieldLayout()
	if err != nil {
		return dataprocessing.LoadOptions{}, err
	}
	return dataprocessing.LoadOptions{
		Sheet:     c.Register.Sheet,
		HeaderRow: c.Register.HeaderRow,
		Layout:    layout,
	}, nil
}

// getConfigFilePath returns the explicit config file or the first one found
// in the usual locations
func getConfigFilePath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Register: RegisterConfig{
			Path:           "data",
			Sheet:          dataprocessing.DefaultSheet,
			HeaderRow:      dataprocessing.DefaultHeaderRow,
			Layout:         dataprocessing.LayoutSoon,
			UploadDir:      "data/uploads",
			MaxUploadBytes: 20 << 20,
		},
		Calendar: CalendarConfig{
			Years: append([]int(nil), calendar.DefaultYears...),
		},
		Telemetry: TelemetryConfig{
			EnableMetrics: true,
			EnableTracing: false,
			TraceExporter: "stdout",
			SampleRatio:   1.0,
			Environment:   "development",
		},
	}
}
