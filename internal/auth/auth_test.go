package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonalbum/anonalbum/internal/models"
)

const validToken = "aB3dE5fG7hI9jK1m"

func testAlbum() *models.Album {
	return &models.Album{
		ID:            1,
		Token:         "pUbL1cT0",
		DeletionToken: validToken,
	}
}

func TestHeaderCredential(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    string
		wantErr error
	}{
		{
			name:    "missing",
			headers: nil,
			wantErr: ErrNoCredential,
		},
		{
			name:    "single valid",
			headers: []string{validToken},
			want:    validToken,
		},
		{
			name:    "single invalid shape",
			headers: []string{"tooShort"},
			wantErr: ErrInvalidCredential,
		},
		{
			name:    "duplicated header",
			headers: []string{validToken, validToken},
			wantErr: ErrAmbiguousCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPatch, "/a/pUbL1cT0", nil)
			for _, v := range tt.headers {
				r.Header.Add(HeaderName, v)
			}

			got, err := HeaderCredential{}.Extract(r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryCredential(t *testing.T) {
	t.Run("from query string", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/a/pUbL1cT0/edit?deletion_token="+validToken, nil)

		got, err := QueryCredential{}.Extract(r)
		require.NoError(t, err)
		assert.Equal(t, validToken, got)
	})

	t.Run("from form body", func(t *testing.T) {
		body := strings.NewReader("deletion_token=" + validToken)
		r := httptest.NewRequest(http.MethodPost, "/a/pUbL1cT0/edit", body)
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		got, err := QueryCredential{}.Extract(r)
		require.NoError(t, err)
		assert.Equal(t, validToken, got)
	})

	t.Run("missing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/a/pUbL1cT0/edit", nil)

		_, err := QueryCredential{}.Extract(r)
		assert.ErrorIs(t, err, ErrNoCredential)
	})

	t.Run("invalid shape", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/a/pUbL1cT0/edit?deletion_token=short", nil)

		_, err := QueryCredential{}.Extract(r)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})
}

func TestCookieCredential_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	album := testAlbum()

	cookie, err := SealCookie(secret, album.Token, album.DeletionToken)
	require.NoError(t, err)
	assert.Equal(t, "album_auth_"+album.Token, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/a/"+album.Token+"/edit", nil)
	r.AddCookie(cookie)

	got, err := CookieCredential{Secret: secret, Album: album.Token}.Extract(r)
	require.NoError(t, err)
	assert.Equal(t, album.DeletionToken, got)
}

func TestCookieCredential_NoCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/a/pUbL1cT0/edit", nil)

	_, err := CookieCredential{Secret: []byte("s"), Album: "pUbL1cT0"}.Extract(r)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestCookieCredential_WrongAlbum(t *testing.T) {
	secret := []byte("test-secret")

	// Кука, выданная для другого альбома, равносильна отсутствию сессии
	cookie, err := SealCookie(secret, "otherAlb", validToken)
	require.NoError(t, err)
	cookie.Name = "album_auth_pUbL1cT0"

	r := httptest.NewRequest(http.MethodGet, "/a/pUbL1cT0/edit", nil)
	r.AddCookie(cookie)

	_, err = CookieCredential{Secret: secret, Album: "pUbL1cT0"}.Extract(r)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestCookieCredential_BadSignature(t *testing.T) {
	album := testAlbum()

	// Кука, подписанная старым ключом, равносильна отсутствию сессии
	cookie, err := SealCookie([]byte("right-secret"), album.Token, album.DeletionToken)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/a/"+album.Token+"/edit", nil)
	r.AddCookie(cookie)

	_, err = CookieCredential{Secret: []byte("wrong-secret"), Album: album.Token}.Extract(r)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestMatches(t *testing.T) {
	album := testAlbum()

	assert.True(t, Matches(album, album.DeletionToken))
	// Окружающие пробелы не мешают совпадению
	assert.True(t, Matches(album, album.DeletionToken+"  "))
	assert.True(t, Matches(album, "\t"+album.DeletionToken+"\n"))

	assert.False(t, Matches(album, "aB3dE5fG7hI9jK1X"))
	assert.False(t, Matches(album, ""))
	assert.False(t, Matches(album, album.Token))
}

func TestCheck(t *testing.T) {
	album := testAlbum()
	secret := []byte("test-secret")

	t.Run("no credential at all", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/a/"+album.Token+"/edit", nil)

		err := Check(album, r,
			CookieCredential{Secret: secret, Album: album.Token},
			QueryCredential{})
		assert.ErrorIs(t, err, ErrNoCredential)
	})

	t.Run("wrong token is forbidden, not unauthorized", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet,
			"/a/"+album.Token+"/edit?deletion_token=aB3dE5fG7hI9jK1X", nil)

		err := Check(album, r,
			CookieCredential{Secret: secret, Album: album.Token},
			QueryCredential{})
		assert.ErrorIs(t, err, ErrWrongCredential)
	})

	t.Run("cookie wins before query", func(t *testing.T) {
		cookie, err := SealCookie(secret, album.Token, album.DeletionToken)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/a/"+album.Token+"/edit", nil)
		r.AddCookie(cookie)

		err = Check(album, r,
			CookieCredential{Secret: secret, Album: album.Token},
			QueryCredential{})
		assert.NoError(t, err)
	})

	t.Run("stale cookie does not veto valid token", func(t *testing.T) {
		// Кука, пережившая смену ключа подписи, не мешает
		// предъявить токен удаления параметром запроса
		cookie, err := SealCookie([]byte("rotated-out-secret"), album.Token, album.DeletionToken)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet,
			"/a/"+album.Token+"/edit?deletion_token="+album.DeletionToken, nil)
		r.AddCookie(cookie)

		err = Check(album, r,
			CookieCredential{Secret: secret, Album: album.Token},
			QueryCredential{})
		assert.NoError(t, err)
	})

	t.Run("stale cookie alone is unauthorized", func(t *testing.T) {
		cookie, err := SealCookie([]byte("rotated-out-secret"), album.Token, album.DeletionToken)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/a/"+album.Token+"/edit", nil)
		r.AddCookie(cookie)

		err = Check(album, r,
			CookieCredential{Secret: secret, Album: album.Token},
			QueryCredential{})
		assert.ErrorIs(t, err, ErrNoCredential)
	})
}
