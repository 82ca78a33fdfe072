package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Expr     ExprConfig     `yaml:"expr"`
	Debugger DebuggerConfig `yaml:"debugger"`
	Emulator EmulatorConfig `yaml:"emulator"`
	Server   ServerConfig   `yaml:"server"`
}

type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // json, console
	Output     string `yaml:"output"` // stderr, stdout, file, both
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
}

// ExprConfig bounds a single expression.
type ExprConfig struct {
	MaxTokens    int `yaml:"max_tokens"`
	MaxTokenText int `yaml:"max_token_text"`
}

type DebuggerConfig struct {
	MaxWatchpoints  int `yaml:"max_watchpoints"`
	MaxExamineWords int `yaml:"max_examine_words"` // largest examine request
}

type EmulatorConfig struct {
	StackStartAddress uint32 `yaml:"stack_start_address"`
	HeapStartAddress  uint32 `yaml:"heap_start_address"`
	RuntimeLimit      uint32 `yaml:"runtime_limit"` // instructions, 0 means unlimited
}

type ServerConfig struct {
	TCPAddr       string `yaml:"tcp_addr"`
	WebsocketAddr string `yaml:"websocket_addr"`
}

var (
	globalConfig *Config
	mu           sync.RWMutex
)

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
		Expr: ExprConfig{
			MaxTokens:    32,
			MaxTokenText: 31,
		},
		Debugger: DebuggerConfig{
			MaxWatchpoints:  32,
			MaxExamineWords: 1024,
		},
		Emulator: EmulatorConfig{
			StackStartAddress: 0x7FFFFFF0,
			HeapStartAddress:  0x10000000,
			RuntimeLimit:      1000000,
		},
		Server: ServerConfig{
			TCPAddr:       "127.0.0.1:2034",
			WebsocketAddr: "127.0.0.1:2035",
		},
	}
}

// LoadConfig reads a YAML file on top of the defaults, so a file only needs
// the keys it changes.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Expr.MaxTokens == 0 {
		c.Expr.MaxTokens = def.Expr.MaxTokens
	}
	if c.Expr.MaxTokenText == 0 {
		c.Expr.MaxTokenText = def.Expr.MaxTokenText
	}
	if c.Debugger.MaxWatchpoints == 0 {
		c.Debugger.MaxWatchpoints = def.Debugger.MaxWatchpoints
	}
	if c.Debugger.MaxExamineWords == 0 {
		c.Debugger.MaxExamineWords = def.Debugger.MaxExamineWords
	}
	if c.Emulator.StackStartAddress == 0 {
		c.Emulator.StackStartAddress = def.Emulator.StackStartAddress
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Output == "" {
		c.Log.Output = def.Log.Output
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Output {
	case "stderr", "stdout", "file", "both":
	default:
		errs = append(errs, fmt.Errorf("log.output %q is not one of stderr, stdout, file, both", c.Log.Output))
	}
	if (c.Log.Output == "file" || c.Log.Output == "both") && c.Log.FilePath == "" {
		errs = append(errs, errors.New("log.file_path is required when logging to a file"))
	}
	if c.Expr.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("expr.max_tokens must be positive, got %d", c.Expr.MaxTokens))
	}
	if c.Expr.MaxTokenText < 0 {
		errs = append(errs, fmt.Errorf("expr.max_token_text must be positive, got %d", c.Expr.MaxTokenText))
	}
	if c.Debugger.MaxWatchpoints < 0 {
		errs = append(errs, fmt.Errorf("debugger.max_watchpoints must be positive, got %d", c.Debugger.MaxWatchpoints))
	}
	if c.Debugger.MaxExamineWords < 0 {
		errs = append(errs, fmt.Errorf("debugger.max_examine_words must be positive, got %d", c.Debugger.MaxExamineWords))
	}
	if c.Emulator.StackStartAddress&0x3 != 0 {
		errs = append(errs, fmt.Errorf("emulator.stack_start_address 0x%08x is not word aligned", c.Emulator.StackStartAddress))
	}
	return errors.Join(errs...)
}

// GetConfig returns the process configuration, or the defaults if none was
// set.
func GetConfig() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if globalConfig == nil {
		return DefaultConfig()
	}
	return globalConfig
}

func SetConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = cfg
}
