package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anonalbum/anonalbum/internal/models"
)

// record представляет одну запись в файловом хранилище.
// Kind различает записи альбомов и изображений в общем журнале.
type record struct {
	UUID          string `json:"uuid"`
	Kind          string `json:"kind"` // "album" или "image"
	ID            int64  `json:"id"`
	AlbumID       int64  `json:"album_id,omitempty"`
	Token         string `json:"token"`
	DeletionToken string `json:"deletion_token"`
	Title         string `json:"title,omitempty"`
	URL           string `json:"url,omitempty"`
	Index         int    `json:"index"`
}

// FileStorage реализует AlbumStorage поверх файла с JSON-записями.
// Состояние целиком держится в памяти; мутации переписывают файл,
// поскольку сдвиг индексов меняет уже записанные строки.
type FileStorage struct {
	mu       sync.RWMutex
	filePath string
	nextID   int64
	albums   map[string]*models.Album
	images   map[int64][]*models.Image
	used     map[string]struct{}
	logger   *zap.Logger
}

// NewFileStorage создает новый экземпляр FileStorage и загружает
// существующие записи из файла
func NewFileStorage(filePath string, logger *zap.Logger) (*FileStorage, error) {
	fs := &FileStorage{
		filePath: filePath,
		albums:   make(map[string]*models.Album),
		images:   make(map[int64][]*models.Image),
		used:     make(map[string]struct{}),
		logger:   logger,
	}

	if err := fs.load(); err != nil {
		return nil, fmt.Errorf("error loading storage file: %w", err)
	}

	return fs, nil
}

// load читает записи из файла. Отсутствующий файл — пустое хранилище.
func (fs *FileStorage) load() error {
	file, err := os.Open(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	for decoder.More() {
		var rec record
		if err := decoder.Decode(&rec); err != nil {
			return fmt.Errorf("error decoding record: %w", err)
		}

		switch rec.Kind {
		case "album":
			fs.albums[rec.Token] = &models.Album{
				ID:            rec.ID,
				Token:         rec.Token,
				DeletionToken: rec.DeletionToken,
				Title:         rec.Title,
			}
		case "image":
			fs.images[rec.AlbumID] = append(fs.images[rec.AlbumID], &models.Image{
				ID:            rec.ID,
				AlbumID:       rec.AlbumID,
				Token:         rec.Token,
				DeletionToken: rec.DeletionToken,
				URL:           rec.URL,
				Index:         rec.Index,
			})
		default:
			fs.logger.Warn("Skipping record of unknown kind", zap.String("kind", rec.Kind))
			continue
		}

		fs.used[rec.Token] = struct{}{}
		fs.used[rec.DeletionToken] = struct{}{}
		if rec.ID > fs.nextID {
			fs.nextID = rec.ID
		}
	}

	return nil
}

// persist переписывает файл целиком. Вызывается под мьютексом.
func (fs *FileStorage) persist() error {
	tmp := fs.filePath + ".tmp"
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error opening temp file: %w", err)
	}

	encoder := json.NewEncoder(file)
	for _, album := range fs.albums {
		rec := record{
			UUID:          uuid.NewString(),
			Kind:          "album",
			ID:            album.ID,
			Token:         album.Token,
			DeletionToken: album.DeletionToken,
			Title:         album.Title,
		}
		if err := encoder.Encode(rec); err != nil {
			file.Close()
			return fmt.Errorf("error encoding album record: %w", err)
		}

		for _, img := range fs.images[album.ID] {
			rec := record{
				UUID:          uuid.NewString(),
				Kind:          "image",
				ID:            img.ID,
				AlbumID:       img.AlbumID,
				Token:         img.Token,
				DeletionToken: img.DeletionToken,
				URL:           img.URL,
				Index:         img.Index,
			}
			if err := encoder.Encode(rec); err != nil {
				file.Close()
				return fmt.Errorf("error encoding image record: %w", err)
			}
		}
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing temp file: %w", err)
	}

	if err := os.Rename(tmp, fs.filePath); err != nil {
		return fmt.Errorf("error replacing storage file: %w", err)
	}

	return nil
}

// newPair генерирует пару токенов без коллизий с выданными. Под мьютексом.
func (fs *FileStorage) newPair() (string, string, error) {
	public, deletion, err := newUniquePair(fs.used)
	if err != nil {
		return "", "", err
	}
	return public, deletion, nil
}

// CreateAlbum создает новый альбом и сохраняет файл
func (fs *FileStorage) CreateAlbum(ctx context.Context, title string) (*models.Album, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	public, deletion, err := fs.newPair()
	if err != nil {
		return nil, err
	}

	fs.nextID++
	album := &models.Album{
		ID:            fs.nextID,
		Token:         public,
		DeletionToken: deletion,
		Title:         title,
	}
	fs.albums[album.Token] = album

	if err := fs.persist(); err != nil {
		delete(fs.albums, album.Token)
		fs.releasePair(public, deletion)
		return nil, err
	}

	return album, nil
}

// FindAlbumByToken ищет альбом по публичному токену
func (fs *FileStorage) FindAlbumByToken(ctx context.Context, tok string) (*models.Album, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	album, ok := fs.albums[tok]
	if !ok {
		return nil, ErrAlbumNotFound
	}

	copied := *album
	return &copied, nil
}

// AppendImage вставляет изображение с заданным индексом без сдвига существующих
func (fs *FileStorage) AppendImage(ctx context.Context, album *models.Album, url string, index int) (*models.Image, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.addImage(album.ID, url, index)
}

// InsertImageAt вставляет изображение на позицию index со сдвигом хвоста.
// Неудавшаяся вставка возвращает сдвинутые индексы на место: альбом
// не должен меняться от операции, которая завершилась ошибкой.
func (fs *FileStorage) InsertImageAt(ctx context.Context, album *models.Album, url string, index int) (*models.Image, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, img := range fs.images[album.ID] {
		if img.Index >= index {
			img.Index++
		}
	}

	inserted, err := fs.addImage(album.ID, url, index)
	if err != nil {
		// После сдвига позицию index не занимает никто, поэтому
		// обратный сдвиг всего, что выше, восстанавливает исходный порядок
		for _, img := range fs.images[album.ID] {
			if img.Index > index {
				img.Index--
			}
		}
		return nil, err
	}

	return inserted, nil
}

// addImage добавляет запись изображения и сохраняет файл. Под мьютексом.
func (fs *FileStorage) addImage(albumID int64, url string, index int) (*models.Image, error) {
	public, deletion, err := fs.newPair()
	if err != nil {
		return nil, err
	}

	fs.nextID++
	img := &models.Image{
		ID:            fs.nextID,
		AlbumID:       albumID,
		Token:         public,
		DeletionToken: deletion,
		URL:           url,
		Index:         index,
	}
	fs.images[albumID] = append(fs.images[albumID], img)

	if err := fs.persist(); err != nil {
		imgs := fs.images[albumID]
		fs.images[albumID] = imgs[:len(imgs)-1]
		fs.releasePair(public, deletion)
		return nil, err
	}

	copied := *img
	return &copied, nil
}

// releasePair освобождает пару токенов записи, откаченной после
// неудачного сохранения. Вызывается под мьютексом.
func (fs *FileStorage) releasePair(public, deletion string) {
	delete(fs.used, public)
	delete(fs.used, deletion)
}

// ImageCount возвращает число изображений альбома
func (fs *FileStorage) ImageCount(ctx context.Context, album *models.Album) (int, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return len(fs.images[album.ID]), nil
}

// ImageURLs возвращает URL изображений альбома по возрастанию индекса
func (fs *FileStorage) ImageURLs(ctx context.Context, album *models.Album) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	imgs := make([]*models.Image, len(fs.images[album.ID]))
	copy(imgs, fs.images[album.ID])
	sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].Index < imgs[j].Index })

	urls := make([]string, 0, len(imgs))
	for _, img := range imgs {
		urls = append(urls, img.URL)
	}
	return urls, nil
}
