// Package models содержит доменные сущности сервиса анонимного хостинга альбомов.
package models

// Album представляет альбом изображений.
// Публичный токен входит в ссылку для просмотра, токен удаления —
// секрет владельца, показываемый только при создании и авторизованном редактировании.
type Album struct {
	ID            int64
	Token         string // публичный токен, 8 символов
	DeletionToken string // секретный токен, 16 символов
	Title         string // пустая строка — альбом без названия
}

// Image представляет изображение внутри альбома.
// Собственная пара токенов изображения зарезервирована под будущие
// операции над отдельными изображениями и текущими обработчиками не используется.
type Image struct {
	ID            int64
	AlbumID       int64
	Token         string
	DeletionToken string
	URL           string
	Index         int // позиция в упорядоченном списке альбома, с нуля
}
