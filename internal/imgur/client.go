// Package imgur импортирует списки изображений из чужих альбомов imgur.
// Для сервиса это черный ящик: на входе ссылка на альбом, на выходе
// список URL изображений.
package imgur

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// requestTimeout ограничивает обращение к внешнему API.
// Таймаут — исправимая ошибка импорта, а не фатальный сбой сервиса.
const requestTimeout = 10 * time.Second

const apiBase = "https://api.imgur.com/3"

// ImportError описывает сбой получения или разбора чужого альбома.
// Клиент может исправить ситуацию, поменяв ссылку, поэтому на границе
// HTTP такие ошибки отображаются в 400, а не в 500.
type ImportError struct {
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not get album images: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("could not get album images: %s", e.Reason)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Client обращается к API imgur
type Client struct {
	clientID   string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient создает новый клиент API imgur
func NewClient(clientID string, logger *zap.Logger) *Client {
	return &Client{
		clientID: clientID,
		baseURL:  apiBase,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

type albumImage struct {
	Link string `json:"link"`
}

type albumImagesResponse struct {
	Data   []albumImage `json:"data"`
	Status int          `json:"status"`
}

// AlbumImages возвращает список URL изображений альбома imgur по его хэшу
func (c *Client) AlbumImages(ctx context.Context, hash string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/album/%s/images", c.baseURL, url.PathEscape(hash))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ImportError{Reason: "building request", Err: err}
	}
	req.Header.Set("Authorization", "Client-ID "+c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ImportError{Reason: "requesting imgur API", Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("Error closing imgur response body", zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &ImportError{Reason: fmt.Sprintf("imgur said: %s", resp.Status)}
	}

	var parsed albumImagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &ImportError{Reason: "decoding imgur response", Err: err}
	}

	if parsed.Status != http.StatusOK {
		return nil, &ImportError{Reason: fmt.Sprintf("imgur API status is %d", parsed.Status)}
	}

	links := make([]string, 0, len(parsed.Data))
	for _, img := range parsed.Data {
		links = append(links, img.Link)
	}

	return links, nil
}

// ParseAlbumLink извлекает хэш альбома из ссылки вида
// https://imgur.com/a/<hash>. Принимаются только ссылки на imgur.com.
func ParseAlbumLink(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() {
		return "", &ImportError{Reason: fmt.Sprintf("invalid album link: %s", link)}
	}

	host := strings.ToLower(u.Hostname())
	if host != "imgur.com" && host != "www.imgur.com" {
		return "", &ImportError{Reason: fmt.Sprintf("URL is not allowed: %s", link)}
	}

	// Ожидаемый путь: /a/<hash>
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[1] == "" {
		return "", &ImportError{Reason: fmt.Sprintf("could not parse album link: %s", link)}
	}

	return segments[1], nil
}
