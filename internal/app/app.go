// Package app содержит основную структуру приложения и логику инициализации.
// Предоставляет точку входа для запуска HTTP сервера с настроенными
// маршрутами и middleware.
package app

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anonalbum/anonalbum/internal/config"
	"github.com/anonalbum/anonalbum/internal/handler"
	"github.com/anonalbum/anonalbum/internal/imgur"
	"github.com/anonalbum/anonalbum/internal/middleware"
	"github.com/anonalbum/anonalbum/internal/service"
	"github.com/anonalbum/anonalbum/internal/storage"
	"github.com/anonalbum/anonalbum/internal/validate"
)

// App представляет приложение сервиса хостинга альбомов.
// Инкапсулирует конфигурацию, роутер, логгер и обработчики запросов.
type App struct {
	config  *config.Config
	router  *chi.Mux
	logger  *zap.Logger
	handler *handler.Handler
}

// NewApp создает и инициализирует новый экземпляр приложения.
// Хранилище выбирается по конфигурации: PostgreSQL при заданном DSN,
// файл при заданном пути, иначе память.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := newStorage(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating storage: %w", err)
	}

	allowed := validate.NewDomainSet(cfg.AllowedDomains)
	imgurClient := imgur.NewClient(cfg.ImgurClientID, logger)
	svc := service.NewAlbumService(store, imgurClient, allowed, logger)

	return &App{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		handler: handler.NewHandler(svc, cfg, logger),
	}, nil
}

// newStorage создает хранилище согласно конфигурации
func newStorage(cfg *config.Config, logger *zap.Logger) (storage.AlbumStorage, error) {
	switch {
	case cfg.DatabaseDSN != "":
		return storage.NewPostgresStorage(cfg.DatabaseDSN, logger)
	case cfg.FileStoragePath != "":
		return storage.NewFileStorage(cfg.FileStoragePath, logger)
	default:
		return storage.NewMemoryStorage(logger), nil
	}
}

// setupRoutes настраивает HTTP маршруты и middleware приложения
func (a *App) setupRoutes() {
	// Middleware
	a.router.Use(middleware.Logger(a.logger))
	a.router.Use(middleware.Gzip)

	// Главная и статика
	a.router.Get("/", a.handler.HandleIndex)
	a.router.Head("/", a.handler.HandleIndexHead)
	a.router.Get("/new", a.handler.HandleNewForm)
	a.router.Get("/import", a.handler.HandleImportForm)
	a.router.Get("/styles.css", a.handler.HandleStyles)
	a.router.Get("/favicon.ico", a.handler.HandleFavicon)
	a.router.Get("/FeelsDankMan", a.handler.HandleTeapot)
	a.router.Get("/ping", a.handler.HandlePing)

	// Альбомы
	a.router.Route("/a", func(r chi.Router) {
		r.Get("/", a.handler.HandleNewForm)
		r.Get("/new", a.handler.HandleNewForm)
		r.Post("/new", a.handler.HandleCreateAlbum)
		r.Post("/import", a.handler.HandleImportAlbum)

		r.Get("/{token}", a.handler.HandleShowAlbum)
		r.Head("/{token}", a.handler.HandleHeadAlbum)
		r.Patch("/{token}", a.handler.HandlePatchAlbum)

		r.Get("/{token}/auth", a.handler.HandleAuthForm)
		r.Post("/{token}/auth", a.handler.HandleAuth)
		r.Get("/{token}/edit", a.handler.HandleEditForm)
		r.Post("/{token}/edit", a.handler.HandleEdit)
	})

	// Профилирование
	a.router.Mount("/debug/pprof", http.DefaultServeMux)
}

// Router возвращает настроенный роутер приложения
func (a *App) Router() *chi.Mux {
	a.setupRoutes()
	return a.router
}

// GetServer создает и возвращает настроенный HTTP сервер
func (a *App) GetServer() *http.Server {
	return &http.Server{
		Addr:         a.config.ServerAddress,
		Handler:      a.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
