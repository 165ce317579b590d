package storage

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/anonalbum/anonalbum/internal/models"
)

// MemoryStorage реализует AlbumStorage с использованием памяти.
// Мьютекс сериализует чтение количества, сдвиг и вставку, поэтому
// конкурирующие вставки в один альбом не ломают упорядоченность индексов.
type MemoryStorage struct {
	mu         sync.RWMutex
	nextID     int64
	albums     map[string]*models.Album   // по публичному токену
	images     map[int64][]*models.Image  // по id альбома
	usedTokens map[string]struct{}        // эмулирует ограничения уникальности токенов
	logger     *zap.Logger
}

// NewMemoryStorage создает новый экземпляр MemoryStorage
func NewMemoryStorage(logger *zap.Logger) *MemoryStorage {
	return &MemoryStorage{
		albums:     make(map[string]*models.Album),
		images:     make(map[int64][]*models.Image),
		usedTokens: make(map[string]struct{}),
		logger:     logger,
	}
}

// newPair генерирует пару токенов, свободную от коллизий с уже выданными.
// Вызывается под мьютексом.
func (ms *MemoryStorage) newPair() (string, string, error) {
	return newUniquePair(ms.usedTokens)
}

// CreateAlbum создает новый альбом
func (ms *MemoryStorage) CreateAlbum(ctx context.Context, title string) (*models.Album, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	public, deletion, err := ms.newPair()
	if err != nil {
		return nil, err
	}

	ms.nextID++
	album := &models.Album{
		ID:            ms.nextID,
		Token:         public,
		DeletionToken: deletion,
		Title:         title,
	}
	ms.albums[album.Token] = album

	return album, nil
}

// FindAlbumByToken ищет альбом по публичному токену
func (ms *MemoryStorage) FindAlbumByToken(ctx context.Context, tok string) (*models.Album, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	album, ok := ms.albums[tok]
	if !ok {
		return nil, ErrAlbumNotFound
	}

	// Возвращаем копию, чтобы вызывающий не мутировал состояние хранилища
	copied := *album
	return &copied, nil
}

// AppendImage вставляет изображение с заданным индексом без сдвига существующих
func (ms *MemoryStorage) AppendImage(ctx context.Context, album *models.Album, url string, index int) (*models.Image, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.addImage(album.ID, url, index)
}

// InsertImageAt вставляет изображение на позицию index со сдвигом хвоста.
// Сдвиг и вставка выполняются под одним захватом мьютекса; при ошибке
// вставки сдвиг откатывается, чтобы альбом остался в исходном состоянии.
func (ms *MemoryStorage) InsertImageAt(ctx context.Context, album *models.Album, url string, index int) (*models.Image, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, img := range ms.images[album.ID] {
		if img.Index >= index {
			img.Index++
		}
	}

	inserted, err := ms.addImage(album.ID, url, index)
	if err != nil {
		for _, img := range ms.images[album.ID] {
			if img.Index > index {
				img.Index--
			}
		}
		return nil, err
	}

	return inserted, nil
}

// addImage добавляет запись изображения. Вызывается под мьютексом.
func (ms *MemoryStorage) addImage(albumID int64, url string, index int) (*models.Image, error) {
	public, deletion, err := ms.newPair()
	if err != nil {
		return nil, err
	}

	ms.nextID++
	img := &models.Image{
		ID:            ms.nextID,
		AlbumID:       albumID,
		Token:         public,
		DeletionToken: deletion,
		URL:           url,
		Index:         index,
	}
	ms.images[albumID] = append(ms.images[albumID], img)

	copied := *img
	return &copied, nil
}

// ImageCount возвращает число изображений альбома
func (ms *MemoryStorage) ImageCount(ctx context.Context, album *models.Album) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return len(ms.images[album.ID]), nil
}

// ImageURLs возвращает URL изображений альбома по возрастанию индекса
func (ms *MemoryStorage) ImageURLs(ctx context.Context, album *models.Album) ([]string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	imgs := make([]*models.Image, len(ms.images[album.ID]))
	copy(imgs, ms.images[album.ID])
	sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].Index < imgs[j].Index })

	urls := make([]string, 0, len(imgs))
	for _, img := range imgs {
		urls = append(urls, img.URL)
	}
	return urls, nil
}
