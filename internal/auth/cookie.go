package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// cookiePrefix — префикс имени куки; полное имя включает публичный
// токен альбома, поэтому авторизация действует только на один альбом
const cookiePrefix = "album_auth_"

// cookieTTL определяет срок жизни сессионной куки
const cookieTTL = 24 * time.Hour

// AlbumClaims — данные, запечатанные в сессионной куке
type AlbumClaims struct {
	Album         string `json:"album"`
	DeletionToken string `json:"deletion_token"`
	jwt.RegisteredClaims
}

// CookieCredential извлекает токен удаления из запечатанной куки,
// выданной после успешной проверки секрета в форме авторизации
type CookieCredential struct {
	Secret []byte
	Album  string // публичный токен альбома, к которому относится запрос
}

// Extract возвращает токен удаления из куки альбома.
// Любая непригодная кука — отсутствующая, истекшая, с неверной подписью
// или выданная для другого альбома — означает ErrNoCredential: сессии
// просто нет, и секрет можно предъявить другим способом. Протухшая кука
// не должна блокировать повторно введенный токен удаления.
func (c CookieCredential) Extract(r *http.Request) (string, error) {
	cookie, err := r.Cookie(cookiePrefix + c.Album)
	if err != nil {
		return "", ErrNoCredential
	}

	claims := &AlbumClaims{}
	parsed, err := jwt.ParseWithClaims(cookie.Value, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.Secret, nil
		})
	if err != nil || !parsed.Valid {
		return "", ErrNoCredential
	}

	if claims.Album != c.Album {
		return "", ErrNoCredential
	}
	if !validShape(claims.DeletionToken) {
		return "", ErrNoCredential
	}

	return claims.DeletionToken, nil
}

// SealCookie выпускает куку с проверенным токеном удаления.
// Значение подписано HMAC, кука ограничена путем альбома и недоступна скриптам.
func SealCookie(secret []byte, albumToken, deletionToken string) (*http.Cookie, error) {
	claims := &AlbumClaims{
		Album:         albumToken,
		DeletionToken: deletionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cookieTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("error signing session cookie: %w", err)
	}

	return &http.Cookie{
		Name:     cookiePrefix + albumToken,
		Value:    signed,
		Path:     "/a/" + albumToken,
		Expires:  time.Now().Add(cookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}
