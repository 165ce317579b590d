// Package validate проверяет внешние URL изображений по списку разрешенных доменов.
package validate

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind определяет причину отклонения URL
type Kind int

const (
	// KindMalformed — строка не разбирается как абсолютный URL
	KindMalformed Kind = iota
	// KindNoDomain — у URL отсутствует хост
	KindNoDomain
	// KindDomainNotAllowed — хост не входит в список разрешенных доменов
	KindDomainNotAllowed
	// KindNotABase — URL не может служить базовым (opaque-схема вроде mailto:)
	KindNotABase
	// KindInvalidScheme — схема вне множества {http, https, ftp}
	KindInvalidScheme
)

// Error описывает отклоненный URL и причину отклонения
type Error struct {
	Kind Kind
	URL  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMalformed:
		return fmt.Sprintf("invalid URL: %s", e.URL)
	case KindNoDomain:
		return fmt.Sprintf("URL has no domain part: %s", e.URL)
	case KindDomainNotAllowed:
		return fmt.Sprintf("URL is not allowed: %s", e.URL)
	case KindNotABase:
		return fmt.Sprintf("not a base URL: %s", e.URL)
	case KindInvalidScheme:
		return fmt.Sprintf("invalid scheme: %s", e.URL)
	default:
		return fmt.Sprintf("invalid URL: %s", e.URL)
	}
}

// DomainSet содержит разрешенные хосты в нижнем регистре
type DomainSet map[string]struct{}

// NewDomainSet строит множество доменов, приводя каждый к нижнему регистру
func NewDomainSet(domains []string) DomainSet {
	set := make(DomainSet, len(domains))
	for _, d := range domains {
		set[strings.ToLower(d)] = struct{}{}
	}
	return set
}

// Contains проверяет вхождение хоста без учета регистра
func (s DomainSet) Contains(host string) bool {
	_, ok := s[strings.ToLower(host)]
	return ok
}

// URL проверяет и нормализует внешний URL изображения.
// Проверки выполняются по порядку, каждая со своей причиной отказа:
// разбор, наличие хоста, список доменов, базовость, схема.
// Функция чистая, побочных эффектов нет.
func URL(allowed DomainSet, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil, &Error{Kind: KindMalformed, URL: raw}
	}

	host := u.Hostname()
	if host == "" {
		return nil, &Error{Kind: KindNoDomain, URL: raw}
	}

	if !allowed.Contains(host) {
		return nil, &Error{Kind: KindDomainNotAllowed, URL: raw}
	}

	// Opaque-формы (mailto:user@host и подобные) не могут быть базовым URL
	if u.Opaque != "" {
		return nil, &Error{Kind: KindNotABase, URL: raw}
	}

	switch u.Scheme {
	case "http", "https", "ftp":
		// url.Parse уже приводит схему к нижнему регистру
	default:
		return nil, &Error{Kind: KindInvalidScheme, URL: raw}
	}

	// Нормализуем хост к нижнему регистру
	u.Host = strings.ToLower(u.Host)

	return u, nil
}
