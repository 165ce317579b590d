// Package server предоставляет общую функциональность для запуска
// HTTP и HTTPS серверов: инициализацию логгера, конфигурации и сам запуск.
package server

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/anonalbum/anonalbum/internal/config"
)

// HTTPServer представляет HTTP сервер с общей логикой запуска
type HTTPServer struct {
	server *http.Server
	config *config.Config
	logger *zap.Logger
}

// NewHTTPServer создает новый HTTP сервер
func NewHTTPServer(server *http.Server, cfg *config.Config, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{
		server: server,
		config: cfg,
		logger: logger,
	}
}

// Start запускает HTTP или HTTPS сервер в зависимости от конфигурации
func (s *HTTPServer) Start() error {
	if s.config.IsHTTPSEnabled() {
		s.logger.Info("Starting HTTPS server",
			zap.String("address", s.config.ServerAddress),
			zap.String("cert", s.config.TLSCertFile),
			zap.String("key", s.config.TLSKeyFile))
		return s.server.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	}

	s.logger.Info("Starting HTTP server", zap.String("address", s.config.ServerAddress))
	return s.server.ListenAndServe()
}

// InitLogger инициализирует production логгер и функцию синхронизации
func InitLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			log.Printf("Error syncing logger: %v", err)
		}
	}

	return logger, cleanup
}

// InitConfig инициализирует конфигурацию приложения.
// Ошибка конфигурации фатальна: без списка разрешенных доменов
// сервис не имеет права принимать URL.
func InitConfig(logger *zap.Logger) *config.Config {
	cfg, err := config.NewConfig()
	if err != nil {
		if logger != nil {
			logger.Fatal("Error loading config", zap.Error(err))
		} else {
			log.Fatalf("Error loading config: %v", err)
		}
	}
	return cfg
}
