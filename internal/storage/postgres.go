package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq" // Используем pq для проверки кода ошибки
	"go.uber.org/zap"

	"github.com/anonalbum/anonalbum/internal/models"
	"github.com/anonalbum/anonalbum/internal/token"
)

// uniqueViolation — код unique_violation в PostgreSQL
const uniqueViolation = "23505"

// PostgresStorage реализует AlbumStorage с использованием PostgreSQL
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStorage создает новый экземпляр PostgresStorage
func NewPostgresStorage(dsn string, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Failed to close DB connection after ping error: %v", closeErr)
		}
		return nil, fmt.Errorf("database connection check error: %w", err)
	}

	// Создание таблиц, если их ещё нет.
	// Колонка index заключена в кавычки, чтобы не зависеть от списка
	// ключевых слов конкретной версии сервера.
	createAlbums := `CREATE TABLE IF NOT EXISTS albums (` +
		`id BIGSERIAL PRIMARY KEY,` +
		`token VARCHAR(8) NOT NULL UNIQUE,` +
		`deletion_token VARCHAR(16) NOT NULL UNIQUE,` +
		`title VARCHAR` +
		`)`
	createImages := `CREATE TABLE IF NOT EXISTS images (` +
		`id BIGSERIAL PRIMARY KEY,` +
		`album_id BIGINT NOT NULL REFERENCES albums(id),` +
		`token VARCHAR(8) NOT NULL UNIQUE,` +
		`deletion_token VARCHAR(16) NOT NULL UNIQUE,` +
		`url TEXT NOT NULL,` +
		`"index" INT NOT NULL` +
		`)`

	for _, stmt := range []string{createAlbums, createImages} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				log.Printf("Failed to close DB connection after table creation error: %v", closeErr)
			}
			return nil, fmt.Errorf("table creation error: %w", err)
		}
	}

	return &PostgresStorage{
		db:     db,
		logger: logger,
	}, nil
}

// CreateAlbum создает новый альбом.
// При нарушении уникальности токенов пара генерируется заново,
// число попыток ограничено maxTokenAttempts.
func (ps *PostgresStorage) CreateAlbum(ctx context.Context, title string) (*models.Album, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		public, deletion := token.NewPair()

		var id int64
		err := ps.db.QueryRowContext(ctx,
			`INSERT INTO albums (token, deletion_token, title) VALUES ($1, $2, NULLIF($3, '')) RETURNING id`,
			public, deletion, title,
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				ps.logger.Warn("Token collision on album insert, regenerating",
					zap.Int("attempt", attempt+1))
				continue
			}
			return nil, fmt.Errorf("insert album error: %w", err)
		}

		return &models.Album{
			ID:            id,
			Token:         public,
			DeletionToken: deletion,
			Title:         title,
		}, nil
	}

	return nil, fmt.Errorf("insert album: %w", ErrTokenExhausted)
}

// FindAlbumByToken ищет альбом по публичному токену
func (ps *PostgresStorage) FindAlbumByToken(ctx context.Context, tok string) (*models.Album, error) {
	album := &models.Album{}
	var title sql.NullString

	err := ps.db.QueryRowContext(ctx,
		`SELECT id, token, deletion_token, title FROM albums WHERE token = $1`, tok,
	).Scan(&album.ID, &album.Token, &album.DeletionToken, &title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("find album error: %w", err)
	}

	album.Title = title.String
	return album, nil
}

// AppendImage вставляет изображение с заданным индексом без сдвига существующих
func (ps *PostgresStorage) AppendImage(ctx context.Context, album *models.Album, url string, index int) (*models.Image, error) {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("transaction start error: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback завершенной транзакции безопасен

	img, err := ps.insertImage(ctx, tx, album.ID, url, index)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("transaction commit error: %w", err)
	}

	return img, nil
}

// InsertImageAt вставляет изображение на позицию index со сдвигом хвоста.
// Строка альбома блокируется на время транзакции, чтобы конкурирующие
// вставки в один альбом не породили дубликаты индексов.
func (ps *PostgresStorage) InsertImageAt(ctx context.Context, album *models.Album, url string, index int) (*models.Image, error) {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("transaction start error: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback завершенной транзакции безопасен

	var lockedID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM albums WHERE id = $1 FOR UPDATE`, album.ID,
	).Scan(&lockedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("album lock error: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE images SET "index" = "index" + 1 WHERE album_id = $1 AND "index" >= $2`,
		album.ID, index,
	); err != nil {
		return nil, fmt.Errorf("index shift error: %w", err)
	}

	img, err := ps.insertImage(ctx, tx, album.ID, url, index)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("transaction commit error: %w", err)
	}

	return img, nil
}

// insertImage выполняет вставку строки изображения внутри транзакции
// с повтором генерации токенов при конфликте уникальности.
// Каждая попытка ограждена savepoint-ом: после нарушения ограничения
// транзакция без отката к savepoint была бы необратимо прервана.
func (ps *PostgresStorage) insertImage(ctx context.Context, tx *sql.Tx, albumID int64, url string, index int) (*models.Image, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		public, deletion := token.NewPair()

		if _, err := tx.ExecContext(ctx, `SAVEPOINT insert_image`); err != nil {
			return nil, fmt.Errorf("savepoint error: %w", err)
		}

		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO images (album_id, token, deletion_token, url, "index") VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			albumID, public, deletion, url, index,
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT insert_image`); rbErr != nil {
					return nil, fmt.Errorf("savepoint rollback error: %w", rbErr)
				}
				ps.logger.Warn("Token collision on image insert, regenerating",
					zap.Int("attempt", attempt+1))
				continue
			}
			return nil, fmt.Errorf("insert image error: %w", err)
		}

		return &models.Image{
			ID:            id,
			AlbumID:       albumID,
			Token:         public,
			DeletionToken: deletion,
			URL:           url,
			Index:         index,
		}, nil
	}

	return nil, fmt.Errorf("insert image: %w", ErrTokenExhausted)
}

// ImageCount возвращает число изображений альбома
func (ps *PostgresStorage) ImageCount(ctx context.Context, album *models.Album) (int, error) {
	var count int
	err := ps.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM images WHERE album_id = $1`, album.ID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("image count error: %w", err)
	}
	return count, nil
}

// ImageURLs возвращает URL изображений альбома.
// Порядок задается явно: по возрастанию индекса.
func (ps *PostgresStorage) ImageURLs(ctx context.Context, album *models.Album) ([]string, error) {
	rows, err := ps.db.QueryContext(ctx,
		`SELECT url FROM images WHERE album_id = $1 ORDER BY "index" ASC`, album.ID)
	if err != nil {
		return nil, fmt.Errorf("image urls query error: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("image urls scan error: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("image urls rows error: %w", err)
	}

	return urls, nil
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Close закрывает соединение с базой данных
func (ps *PostgresStorage) Close() error {
	return ps.db.Close()
}

// CheckConnection проверяет соединение с базой данных
func (ps *PostgresStorage) CheckConnection(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}
