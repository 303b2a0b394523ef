package config

import (
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/dshills/inkwell/internal/config/loader"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/style"
)

// Config holds every Inkwell setting.
type Config struct {
	Change  ChangeConfig      `toml:"change" yaml:"change"`
	Guard   GuardConfig       `toml:"guard" yaml:"guard"`
	Styles  map[string]string `toml:"styles" yaml:"styles"`
	Log     LogConfig         `toml:"log" yaml:"log"`
	Preview PreviewConfig     `toml:"preview" yaml:"preview"`
}

// ChangeConfig configures change notification.
type ChangeConfig struct {
	// Delay is the debounce delay of change events.
	Delay Duration `toml:"delay" yaml:"delay"`
}

// GuardConfig configures the safety guard of multi-leaf commands.
type GuardConfig struct {
	Timeout  Duration `toml:"timeout" yaml:"timeout"`
	MaxSteps int      `toml:"max_steps" yaml:"max_steps"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`

	// File is the path of the rotated JSON log. Empty disables it.
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size" yaml:"max_size"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age" yaml:"max_age"`
	Compress   bool   `toml:"compress" yaml:"compress"`

	// Console also logs to stderr.
	Console bool `toml:"console" yaml:"console"`
}

// PreviewConfig configures the terminal preview of the CLI.
type PreviewConfig struct {
	Width   int  `toml:"width" yaml:"width"`
	NoColor bool `toml:"no_color" yaml:"no_color"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Change: ChangeConfig{Delay: Duration(engine.DefaultChangeDelay)},
		Guard: GuardConfig{
			Timeout:  Duration(engine.DefaultGuardTimeout),
			MaxSteps: engine.DefaultGuardSteps,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Preview: PreviewConfig{Width: 80},
	}
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	fs      loader.FileSystem
	prefix  string
	environ func() []string
}

// WithFS reads config files from fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnviron replaces the environment, in os.Environ form.
func WithEnviron(environ func() []string) Option {
	return func(o *loadOptions) {
		o.environ = environ
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.prefix = prefix
	}
}

// Load builds a config from the defaults, the file at path and the
// environment. An empty path skips the file layer; a missing file is
// not an error.
func Load(path string, opts ...Option) (*Config, error) {
	o := loadOptions{
		fs:      loader.DefaultFS(),
		prefix:  loader.DefaultEnvPrefix,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var merged map[string]any
	if path != "" {
		l, err := loader.ForPath(o.fs, path)
		if err != nil {
			return nil, err
		}
		file, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, file)
	}
	env, err := loader.NewEnvLoader(o.prefix).WithEnviron(o.environ).Load()
	if err != nil {
		return nil, err
	}
	merged = loader.DeepMerge(merged, env)

	cfg := Default()
	if err := cfg.decode(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays a generic settings map onto c.
func (c *Config) decode(settings map[string]any) error {
	if len(settings) == 0 {
		return nil
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decoding settings: %w", err)
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if c.Change.Delay < 0 {
		return &ValidationError{Path: "change.delay", Value: c.Change.Delay, Err: ErrValidationFailed}
	}
	if c.Guard.Timeout < 0 {
		return &ValidationError{Path: "guard.timeout", Value: c.Guard.Timeout, Err: ErrValidationFailed}
	}
	if c.Guard.MaxSteps < 0 {
		return &ValidationError{Path: "guard.max_steps", Value: c.Guard.MaxSteps, Err: ErrValidationFailed}
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Path: "log.level", Value: c.Log.Level, Err: err}
	}
	if c.Preview.Width < 0 {
		return &ValidationError{Path: "preview.width", Value: c.Preview.Width, Err: ErrValidationFailed}
	}
	known := slices.Concat(style.RootKeys(), style.ParagraphKeys(), style.InlineKeys())
	for k, v := range c.Styles {
		if !slices.Contains(known, k) {
			return &ValidationError{Path: "styles." + k, Value: v, Err: ErrUnknownStyle}
		}
	}
	return nil
}

// LogLevel returns the parsed log level, info if it does not parse.
func (c *Config) LogLevel() zapcore.Level {
	l, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// SurfaceOptions turns the config into engine options.
func (c *Config) SurfaceOptions() []engine.Option {
	opts := []engine.Option{
		engine.WithChangeDelay(c.Change.Delay.Std()),
		engine.WithGuard(c.Guard.Timeout.Std(), c.Guard.MaxSteps),
	}
	if len(c.Styles) > 0 {
		opts = append(opts, engine.WithDefaultStyles(style.Map(c.Styles)))
	}
	return opts
}
