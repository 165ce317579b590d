// Package config собирает конфигурацию приложения из флагов, переменных
// окружения и TOML-файла со списком разрешенных доменов.
package config

import (
	"flag"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
)

// Config хранит конфигурацию приложения.
// Приоритет источников: значения по умолчанию < флаги < переменные окружения.
// Список доменов и учетные данные imgur читаются из TOML-файла и
// считаются неизменяемыми на все время жизни процесса.
type Config struct {
	ServerAddress   string `env:"SERVER_ADDRESS"`    // Адрес для запуска HTTP-сервера
	BaseURL         string `env:"BASE_URL"`          // Базовый адрес ссылок на альбомы
	DatabaseDSN     string `env:"DATABASE_DSN"`      // DSN PostgreSQL; пусто — без базы
	FileStoragePath string `env:"FILE_STORAGE_PATH"` // Файл хранилища; пусто — память
	ConfigFile      string `env:"CONFIG_FILE"`       // Путь к TOML-файлу с доменами
	SessionSecret   string `env:"SESSION_SECRET"`    // Ключ подписи сессионных кук
	EnableHTTPS     bool   `env:"ENABLE_HTTPS"`      // Запуск HTTPS-сервера
	TLSCertFile     string `env:"TLS_CERT_FILE"`     // Сертификат для HTTPS
	TLSKeyFile      string `env:"TLS_KEY_FILE"`      // Ключ для HTTPS

	// Заполняются из TOML-файла
	AllowedDomains []string
	ImgurClientID  string
}

// fileConfig описывает формат TOML-файла конфигурации
type fileConfig struct {
	AllowedDomains []string `toml:"allowed-domains"`
	Imgur          struct {
		ClientID string `toml:"client-id"`
	} `toml:"imgur"`
}

// NewConfig инициализирует конфигурацию, читая флаги, переменные окружения
// и файл конфигурации. Отсутствующий или некорректный файл — фатальная
// ошибка запуска.
func NewConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: ":8080",
		BaseURL:       "http://localhost:8080",
		ConfigFile:    "config.toml",
		SessionSecret: "insecure-dev-secret",
	}

	flag.StringVar(&cfg.ServerAddress, "a", cfg.ServerAddress, "Адрес запуска HTTP-сервера (env: SERVER_ADDRESS)")
	flag.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "Базовый адрес ссылок на альбомы (env: BASE_URL)")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "DSN PostgreSQL (env: DATABASE_DSN)")
	flag.StringVar(&cfg.FileStoragePath, "f", cfg.FileStoragePath, "Путь к файлу хранилища (env: FILE_STORAGE_PATH)")
	flag.StringVar(&cfg.ConfigFile, "c", cfg.ConfigFile, "Путь к TOML-файлу конфигурации (env: CONFIG_FILE)")
	flag.BoolVar(&cfg.EnableHTTPS, "s", cfg.EnableHTTPS, "Включить HTTPS (env: ENABLE_HTTPS)")

	flag.Parse()

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile читает TOML-файл с разрешенными доменами и настройками imgur
func (c *Config) loadFile() error {
	var fc fileConfig
	if _, err := toml.DecodeFile(c.ConfigFile, &fc); err != nil {
		return fmt.Errorf("error loading config file %s: %w", c.ConfigFile, err)
	}

	if len(fc.AllowedDomains) == 0 {
		return fmt.Errorf("config file %s: allowed-domains must not be empty", c.ConfigFile)
	}

	c.AllowedDomains = fc.AllowedDomains
	c.ImgurClientID = fc.Imgur.ClientID
	return nil
}

// IsHTTPSEnabled сообщает, нужно ли запускать HTTPS-сервер
func (c *Config) IsHTTPSEnabled() bool {
	return c.EnableHTTPS && c.TLSCertFile != "" && c.TLSKeyFile != ""
}
