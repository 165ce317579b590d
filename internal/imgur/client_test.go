package imgur

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_AlbumImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/album/abc123/images", r.URL.Path)
		assert.Equal(t, "Client-ID test-id", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{
			"data": [
				{"link": "https://i.imgur.com/a.png"},
				{"link": "https://i.imgur.com/b.png"}
			],
			"status": 200
		}`))
		assert.NoError(t, err)
	}))
	defer srv.Close()

	c := NewClient("test-id", zap.NewNop())
	c.baseURL = srv.URL

	links, err := c.AlbumImages(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://i.imgur.com/a.png",
		"https://i.imgur.com/b.png",
	}, links)
}

func TestClient_AlbumImages_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test-id", zap.NewNop())
	c.baseURL = srv.URL

	_, err := c.AlbumImages(context.Background(), "abc123")
	require.Error(t, err)

	var impErr *ImportError
	assert.True(t, errors.As(err, &impErr))
}

func TestClient_AlbumImages_APIStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`{"data": [], "status": 500}`))
		assert.NoError(t, err)
	}))
	defer srv.Close()

	c := NewClient("test-id", zap.NewNop())
	c.baseURL = srv.URL

	_, err := c.AlbumImages(context.Background(), "abc123")
	require.Error(t, err)

	var impErr *ImportError
	assert.True(t, errors.As(err, &impErr))
}

func TestClient_AlbumImages_Unreachable(t *testing.T) {
	// Сетевая ошибка — тоже исправимая ошибка импорта
	c := NewClient("test-id", zap.NewNop())
	c.baseURL = "http://127.0.0.1:1"

	_, err := c.AlbumImages(context.Background(), "abc123")
	require.Error(t, err)

	var impErr *ImportError
	assert.True(t, errors.As(err, &impErr))
}

func TestParseAlbumLink(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		want    string
		wantErr bool
	}{
		{
			name: "plain album link",
			link: "https://imgur.com/a/abc123",
			want: "abc123",
		},
		{
			name: "www host",
			link: "https://www.imgur.com/a/xyz789",
			want: "xyz789",
		},
		{
			name: "host case-insensitive",
			link: "https://Imgur.COM/a/abc123",
			want: "abc123",
		},
		{
			name:    "foreign host",
			link:    "https://evil.com/a/abc123",
			wantErr: true,
		},
		{
			name:    "no hash segment",
			link:    "https://imgur.com/a",
			wantErr: true,
		},
		{
			name:    "relative link",
			link:    "/a/abc123",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := ParseAlbumLink(tt.link)
			if tt.wantErr {
				var impErr *ImportError
				require.Error(t, err)
				assert.True(t, errors.As(err, &impErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, hash)
		})
	}
}
