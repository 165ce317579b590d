// Package auth решает, можно ли запросу выполнять мутацию альбома
// или видеть его токен удаления. Способов предъявить секрет три:
// заголовок, параметр запроса и ранее выданная сессионная кука.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonalbum/anonalbum/internal/models"
	"github.com/anonalbum/anonalbum/internal/token"
)

const (
	// HeaderName заголовок с токеном удаления
	HeaderName = "x-api-key"
	// QueryParam имя параметра (и поля формы) с токеном удаления
	QueryParam = "deletion_token"
)

var (
	// ErrNoCredential — секрет не предъявлен вовсе
	ErrNoCredential = errors.New("no credential offered")
	// ErrAmbiguousCredential — секрет предъявлен более одного раза
	ErrAmbiguousCredential = errors.New("ambiguous credential")
	// ErrInvalidCredential — предъявленная строка не похожа на токен удаления
	ErrInvalidCredential = errors.New("malformed credential")
	// ErrWrongCredential — предъявлен чужой или неверный токен
	ErrWrongCredential = errors.New("wrong credential")
)

// Extractor извлекает кандидата секрета из запроса.
// Каждая стратегия предъявления — отдельная реализация.
type Extractor interface {
	Extract(r *http.Request) (string, error)
}

// HeaderCredential извлекает токен из заголовка x-api-key
type HeaderCredential struct{}

// Extract возвращает токен из заголовка.
// Ноль заголовков — ErrNoCredential, больше одного — ErrAmbiguousCredential.
func (HeaderCredential) Extract(r *http.Request) (string, error) {
	values := r.Header.Values(HeaderName)
	switch len(values) {
	case 0:
		return "", ErrNoCredential
	case 1:
		if !validShape(values[0]) {
			return "", ErrInvalidCredential
		}
		return values[0], nil
	default:
		return "", ErrAmbiguousCredential
	}
}

// QueryCredential извлекает токен из параметра deletion_token.
// Для form-encoded POST параметр может прийти и в теле запроса.
type QueryCredential struct{}

// Extract возвращает токен из параметра запроса или поля формы
func (QueryCredential) Extract(r *http.Request) (string, error) {
	value := strings.TrimSpace(r.FormValue(QueryParam))
	if value == "" {
		return "", ErrNoCredential
	}
	if !validShape(value) {
		return "", ErrInvalidCredential
	}
	return value, nil
}

// validShape проверяет форму кандидата: 16 печатных ASCII-символов.
// Сверка с настоящим токеном выполняется отдельно.
func validShape(s string) bool {
	if len(s) != token.DeletionLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '!' || s[i] > '~' {
			return false
		}
	}
	return true
}

// Matches сверяет кандидата с токеном удаления альбома.
// Кандидат предварительно очищается от окружающих пробелов.
func Matches(album *models.Album, candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	return len(candidate) == token.DeletionLength && candidate == album.DeletionToken
}

// Check пробует экстракторы по порядку и сверяет первого найденного
// кандидата с токеном альбома. Возвращает nil при совпадении,
// ErrWrongCredential при несовпадении и ErrNoCredential, если ни одна
// стратегия не нашла секрета.
func Check(album *models.Album, r *http.Request, extractors ...Extractor) error {
	for _, ex := range extractors {
		candidate, err := ex.Extract(r)
		if errors.Is(err, ErrNoCredential) {
			continue
		}
		if err != nil {
			return err
		}

		if Matches(album, candidate) {
			return nil
		}
		return ErrWrongCredential
	}
	return ErrNoCredential
}
