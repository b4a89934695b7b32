package shop

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ═══════════════════════════════════════════════════════════════════════════
// 配置
// ═══════════════════════════════════════════════════════════════════════════

// Config 商店系统配置
type Config struct {
	// LogLevel 日志级别：debug、info、warn、error
	LogLevel string `koanf:"log_level"`
	// ShutdownTimeout 关闭时等待 Worker 排空的最长时间
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// Mailbox 各 Worker 的邮箱容量
	Mailbox MailboxConfig `koanf:"mailbox"`
}

// MailboxConfig 邮箱容量配置，0 表示使用默认值
type MailboxConfig struct {
	Users    int `koanf:"users"`
	Products int `koanf:"products"`
	Orders   int `koanf:"orders"`
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		Mailbox: MailboxConfig{
			Users:    100,
			Products: 100,
			Orders:   100,
		},
	}
}

// LoadConfig 加载配置文件，按扩展名选择解析器；path 为空时返回默认配置
func LoadConfig(path string) (Config, error) {
	k, err := defaults()
	if err != nil {
		return Config{}, err
	}

	if path != "" {
		parser, err := parserFor(filepath.Ext(path))
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return Config{}, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	return unmarshal(k)
}

// ParseConfig 从内存数据解析配置，format 为 yaml、json 或 toml
func ParseConfig(data []byte, format string) (Config, error) {
	k, err := defaults()
	if err != nil {
		return Config{}, err
	}

	parser, err := parserFor(format)
	if err != nil {
		return Config{}, err
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return Config{}, fmt.Errorf("parsing %s config: %w", format, err)
	}

	return unmarshal(k)
}

func defaults() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading default config: %w", err)
	}
	return k, nil
}

func unmarshal(k *koanf.Koanf) (Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	for name, size := range map[string]int{
		"users":    c.Mailbox.Users,
		"products": c.Mailbox.Products,
		"orders":   c.Mailbox.Orders,
	} {
		if size < 0 {
			return fmt.Errorf("mailbox.%s must not be negative, got %d", name, size)
		}
	}
	return nil
}

// ParseLevel 解析日志级别，大小写不敏感
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func parserFor(format string) (koanf.Parser, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		return yaml.Parser(), nil
	case "json":
		return json.Parser(), nil
	case "toml":
		return tomlParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// tomlParser koanf.Parser 的 TOML 实现
type tomlParser struct{}

func (tomlParser) Unmarshal(b []byte) (map[string]any, error) {
	out := make(map[string]any)
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlParser) Marshal(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
