package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig — настройки не прошли проверку.
var ErrInvalidConfig = errors.New("invalid config")

// Config — настройки provd-cli.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Display DisplayConfig `yaml:"display"`
	Search  SearchConfig  `yaml:"search"`
	Audit   AuditConfig   `yaml:"audit"`

	// MetricsFile — путь для textfile-метрик. Пусто — не писать.
	MetricsFile string `yaml:"metrics_file"`
}

// ServerConfig — адрес и доступ к provd.
type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Prefix string `yaml:"prefix"`
	HTTPS  bool   `yaml:"https"`

	// Verify — проверка сертификата: "false", "true" или путь к CA.
	Verify string `yaml:"verify"`

	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// DisplayConfig — поведение длительных операций и вывода.
type DisplayConfig struct {
	// Progress — рисовать прогресс операции. Иначе ждать молча.
	Progress bool `yaml:"progress"`

	// Async — не ждать операцию, а вернуть её location.
	Async bool `yaml:"async"`

	// Interval — период опроса операции.
	Interval time.Duration `yaml:"interval"`

	// JSON — выводить данные в JSON.
	JSON bool `yaml:"json"`
}

// SearchConfig — поиск по пакетам плагинов.
type SearchConfig struct {
	Description   bool `yaml:"description"`
	CaseSensitive bool `yaml:"case_sensitive"`
}

// AuditConfig — приёмники журнала аудита. Пустой URL отключает приёмник.
type AuditConfig struct {
	AMQPURL string `yaml:"amqp_url"`
	DBURL   string `yaml:"db_url"`
}

// Default возвращает настройки по умолчанию.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "localhost",
			Port:    8666,
			Prefix:  "/provd",
			Verify:  "false",
			Timeout: 30 * time.Second,
		},
		Display: DisplayConfig{
			Progress: true,
			Interval: time.Second,
		},
		Search: SearchConfig{
			Description: true,
		},
	}
}

// LoadDotEnv загружает переменные из .env, если файл есть.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load читает настройки из файла и окружения.
//
// Пустой path означает PROVD_CLI_CONFIG; если и он пуст, файл не читается.
// Явно указанный, но отсутствующий файл — ошибка.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("PROVD_CLI_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv применяет переменные окружения PROVD_*.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PROVD_HOST"); ok && v != "" {
		c.Server.Host = v
	}
	if v, ok := lookup("PROVD_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PROVD_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("PROVD_TOKEN"); ok {
		c.Server.Token = v
	}
	if v, ok := lookup("PROVD_HTTPS"); ok && v != "" {
		https, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: PROVD_HTTPS=%q", ErrInvalidConfig, v)
		}
		c.Server.HTTPS = https
	}
	if v, ok := lookup("PROVD_VERIFY"); ok && v != "" {
		c.Server.Verify = v
	}
	if v, ok := lookup("PROVD_CLI_AMQP_URL"); ok {
		c.Audit.AMQPURL = v
	}
	if v, ok := lookup("PROVD_CLI_DB_URL"); ok {
		c.Audit.DBURL = v
	}
	if v, ok := lookup("PROVD_CLI_METRICS_FILE"); ok {
		c.MetricsFile = v
	}
	return nil
}

// Validate проверяет настройки.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Display.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return nil
}
