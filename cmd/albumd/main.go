package main

import (
	"github.com/anonalbum/anonalbum/internal/app"
	"github.com/anonalbum/anonalbum/internal/buildinfo"
	"github.com/anonalbum/anonalbum/internal/server"
	"go.uber.org/zap"
)

// Заполняются через ldflags при сборке
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	// Инициализация логгера
	logger, sync := server.InitLogger()
	defer sync()

	info := buildinfo.NewInfo(buildVersion, buildDate, buildCommit)
	logger.Info("Starting album service", info.Fields()...)

	// Инициализация конфигурации
	cfg := server.InitConfig(logger)

	// Создание приложения
	application, err := app.NewApp(cfg, logger)
	if err != nil {
		logger.Fatal("Error creating application", zap.Error(err))
	}

	// Запуск сервера
	srv := server.NewHTTPServer(application.GetServer(), cfg, logger)
	if err := srv.Start(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
