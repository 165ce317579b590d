package storage

import (
	"context"

	"github.com/anonalbum/anonalbum/internal/models"
)

// maxTokenAttempts ограничивает число повторов генерации токенов при
// конфликте уникальности, чтобы не блокироваться на патологических коллизиях
const maxTokenAttempts = 5

// AlbumStorage интерфейс хранилища альбомов и изображений
type AlbumStorage interface {
	// CreateAlbum создает пустой альбом с новой парой токенов.
	// Конфликт токенов при вставке разрешается повторной генерацией.
	CreateAlbum(ctx context.Context, title string) (*models.Album, error)

	// FindAlbumByToken ищет альбом по публичному токену.
	// Возвращает ErrAlbumNotFound, если альбом не существует.
	FindAlbumByToken(ctx context.Context, token string) (*models.Album, error)

	// AppendImage вставляет изображение с указанным индексом без сдвига.
	// Корректность индекса — ответственность вызывающего.
	AppendImage(ctx context.Context, album *models.Album, url string, index int) (*models.Image, error)

	// InsertImageAt вставляет изображение на позицию index, предварительно
	// сдвинув все изображения с index' >= index на единицу вверх.
	// Сдвиг и вставка выполняются в одной транзакции.
	InsertImageAt(ctx context.Context, album *models.Album, url string, index int) (*models.Image, error)

	// ImageCount возвращает число изображений альбома
	ImageCount(ctx context.Context, album *models.Album) (int, error)

	// ImageURLs возвращает URL изображений альбома по возрастанию индекса
	ImageURLs(ctx context.Context, album *models.Album) ([]string, error)
}

// DatabaseChecker интерфейс для проверки соединения с базой данных
type DatabaseChecker interface {
	// CheckConnection проверяет соединение с базой данных
	CheckConnection(ctx context.Context) error
}
