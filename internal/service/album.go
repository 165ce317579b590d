// Package service содержит прикладную логику работы с альбомами:
// проверку URL, создание и импорт альбомов, вставку изображений.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/anonalbum/anonalbum/internal/imgur"
	"github.com/anonalbum/anonalbum/internal/models"
	"github.com/anonalbum/anonalbum/internal/storage"
	"github.com/anonalbum/anonalbum/internal/validate"
)

// AlbumService определяет интерфейс сервиса для работы с альбомами
type AlbumService interface {
	CreateAlbum(ctx context.Context, title string, rawURLs []string) (*models.Album, error)
	ImportAlbum(ctx context.Context, title string, link string) (*models.Album, error)
	GetAlbum(ctx context.Context, token string) (*models.Album, error)
	AlbumImageURLs(ctx context.Context, album *models.Album) ([]string, error)
	InsertImage(ctx context.Context, album *models.Album, rawURL string, index int) (*models.Image, error)
	CheckConnection(ctx context.Context) error
}

// ImageLister возвращает список URL изображений чужого альбома по его хэшу
type ImageLister interface {
	AlbumImages(ctx context.Context, hash string) ([]string, error)
}

// AlbumServiceImpl реализует AlbumService
type AlbumServiceImpl struct {
	storage storage.AlbumStorage
	lister  ImageLister
	allowed validate.DomainSet
	logger  *zap.Logger
}

// NewAlbumService создает новый экземпляр AlbumService
func NewAlbumService(store storage.AlbumStorage, lister ImageLister, allowed validate.DomainSet, logger *zap.Logger) *AlbumServiceImpl {
	return &AlbumServiceImpl{
		storage: store,
		lister:  lister,
		allowed: allowed,
		logger:  logger,
	}
}

// CreateAlbum проверяет все URL и создает альбом с изображениями
// в порядке подачи. Проверка выполняется до создания строки альбома:
// при любом невалидном URL в базе не остается никаких следов запроса.
func (s *AlbumServiceImpl) CreateAlbum(ctx context.Context, title string, rawURLs []string) (*models.Album, error) {
	urls, err := s.validateAll(rawURLs)
	if err != nil {
		return nil, err
	}

	album, err := s.storage.CreateAlbum(ctx, strings.TrimSpace(title))
	if err != nil {
		return nil, fmt.Errorf("create album: %w", err)
	}

	for i, u := range urls {
		if _, err := s.storage.AppendImage(ctx, album, u, i); err != nil {
			return nil, fmt.Errorf("append image %d: %w", i, err)
		}
	}

	s.logger.Info("Album created",
		zap.String("token", album.Token),
		zap.Int("images", len(urls)))

	return album, nil
}

// ImportAlbum получает список изображений стороннего альбома
// и создает из него собственный
func (s *AlbumServiceImpl) ImportAlbum(ctx context.Context, title string, link string) (*models.Album, error) {
	hash, err := imgur.ParseAlbumLink(link)
	if err != nil {
		return nil, err
	}

	links, err := s.lister.AlbumImages(ctx, hash)
	if err != nil {
		return nil, err
	}

	return s.CreateAlbum(ctx, title, links)
}

// GetAlbum возвращает альбом по публичному токену
func (s *AlbumServiceImpl) GetAlbum(ctx context.Context, token string) (*models.Album, error) {
	return s.storage.FindAlbumByToken(ctx, token)
}

// AlbumImageURLs возвращает URL изображений альбома в порядке отображения
func (s *AlbumServiceImpl) AlbumImageURLs(ctx context.Context, album *models.Album) ([]string, error) {
	return s.storage.ImageURLs(ctx, album)
}

// ErrBadIndex возвращается при отрицательной позиции вставки
var ErrBadIndex = errors.New("image index must not be negative")

// InsertImage проверяет URL и вставляет изображение на позицию index.
// Хвост списка сдвигается в той же транзакции хранилища.
func (s *AlbumServiceImpl) InsertImage(ctx context.Context, album *models.Album, rawURL string, index int) (*models.Image, error) {
	if index < 0 {
		return nil, ErrBadIndex
	}

	u, err := validate.URL(s.allowed, strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}

	img, err := s.storage.InsertImageAt(ctx, album, u.String(), index)
	if err != nil {
		return nil, fmt.Errorf("insert image at %d: %w", index, err)
	}

	s.logger.Info("Image inserted",
		zap.String("album", album.Token),
		zap.Int("index", index))

	return img, nil
}

// CheckConnection проверяет доступность хранилища, если оно это умеет
func (s *AlbumServiceImpl) CheckConnection(ctx context.Context) error {
	checker, ok := s.storage.(storage.DatabaseChecker)
	if !ok {
		return nil
	}
	return checker.CheckConnection(ctx)
}

// validateAll прогоняет каждый URL через валидатор. Пустые элементы
// списка пропускаются; первая же ошибка отклоняет весь список.
func (s *AlbumServiceImpl) validateAll(rawURLs []string) ([]string, error) {
	urls := make([]string, 0, len(rawURLs))
	for _, raw := range rawURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		u, err := validate.URL(s.allowed, raw)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u.String())
	}
	return urls, nil
}
