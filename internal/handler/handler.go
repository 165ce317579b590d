// Package handler содержит HTTP-обработчики сервиса хостинга альбомов
// и отображение ошибок доменного слоя в коды ответов.
package handler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anonalbum/anonalbum/internal/auth"
	"github.com/anonalbum/anonalbum/internal/config"
	"github.com/anonalbum/anonalbum/internal/imgur"
	"github.com/anonalbum/anonalbum/internal/service"
	"github.com/anonalbum/anonalbum/internal/storage"
	"github.com/anonalbum/anonalbum/internal/validate"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	contentTypeHTML      = "text/html; charset=utf-8"
	albumNotFoundMessage = "Could not find album"
)

// Handler обрабатывает HTTP-запросы сервиса
type Handler struct {
	service service.AlbumService
	cfg     *config.Config
	logger  *zap.Logger
	tmpl    *template.Template
}

// NewHandler создает новый экземпляр Handler c разобранными шаблонами
func NewHandler(svc service.AlbumService, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service: svc,
		cfg:     cfg,
		logger:  logger,
		tmpl:    template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// render выполняет шаблон в буфер и отдает его с указанным статусом.
// Буферизация не дает сломанному шаблону испортить уже начатый ответ.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("Error rendering template", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("Error writing response", zap.Error(err))
	}
}

// respondError отображает ошибку доменного слоя в HTTP-статус.
// Ошибки валидации и авторизации уходят клиенту с пояснением,
// ошибки хранилища — непрозрачным 500 без внутренних деталей.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var vErr *validate.Error
	var impErr *imgur.ImportError

	switch {
	case errors.As(err, &vErr):
		http.Error(w, "Invalid form input: "+vErr.Error(), http.StatusBadRequest)
	case errors.As(err, &impErr):
		http.Error(w, impErr.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrAlbumNotFound):
		http.Error(w, albumNotFoundMessage, http.StatusNotFound)
	case errors.Is(err, service.ErrBadIndex):
		http.Error(w, "Invalid form input: "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrNoCredential):
		http.Error(w, "No credential offered", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrWrongCredential):
		http.Error(w, "Wrong credential", http.StatusForbidden)
	case errors.Is(err, auth.ErrInvalidCredential), errors.Is(err, auth.ErrAmbiguousCredential):
		http.Error(w, "Invalid credential", http.StatusBadRequest)
	default:
		h.logger.Error("Internal error", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// albumView — данные шаблонов просмотра и редактирования альбома
type albumView struct {
	Title  string
	Token  string
	Images []string
}

// createdView — данные шаблона созданного альбома.
// Единственное место, где токен удаления показывается анонимному создателю.
type createdView struct {
	Token         string
	URL           string
	DeletionToken string
}

// albumURL строит абсолютную ссылку на альбом от базового адреса сервиса
func (h *Handler) albumURL(token string) string {
	return strings.TrimRight(h.cfg.BaseURL, "/") + "/a/" + token
}

// HandleCreateAlbum обрабатывает POST запрос создания альбома из списка URL
func (h *Handler) HandleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form input", http.StatusBadRequest)
		return
	}

	var raws []string
	if images := r.PostFormValue("images"); images != "" {
		raws = strings.Split(images, ",")
	}

	album, err := h.service.CreateAlbum(r.Context(), r.PostFormValue("title"), raws)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Location", "/a/"+album.Token)
	h.render(w, http.StatusCreated, "created.html", createdView{
		Token:         album.Token,
		URL:           h.albumURL(album.Token),
		DeletionToken: album.DeletionToken,
	})
}

// HandleImportAlbum обрабатывает POST запрос импорта стороннего альбома
func (h *Handler) HandleImportAlbum(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form input", http.StatusBadRequest)
		return
	}

	album, err := h.service.ImportAlbum(r.Context(), r.PostFormValue("title"), r.PostFormValue("link"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Location", "/a/"+album.Token)
	h.render(w, http.StatusCreated, "created.html", createdView{
		Token:         album.Token,
		URL:           h.albumURL(album.Token),
		DeletionToken: album.DeletionToken,
	})
}

// HandleShowAlbum обрабатывает GET запрос просмотра альбома
func (h *Handler) HandleShowAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := h.service.GetAlbum(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	images, err := h.service.AlbumImageURLs(r.Context(), album)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.render(w, http.StatusOK, "show.html", albumView{
		Title:  album.Title,
		Token:  album.Token,
		Images: images,
	})
}

// HandleHeadAlbum обрабатывает HEAD запрос проверки существования альбома
func (h *Handler) HandleHeadAlbum(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.GetAlbum(r.Context(), chi.URLParam(r, "token")); err != nil {
		if errors.Is(err, storage.ErrAlbumNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error("Error checking album existence", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleAuthForm обрабатывает GET запрос формы авторизации альбома
func (h *Handler) HandleAuthForm(w http.ResponseWriter, r *http.Request) {
	album, err := h.service.GetAlbum(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.render(w, http.StatusOK, "auth.html", albumView{Token: album.Token})
}

// HandleAuth обрабатывает POST запрос авторизации: сверяет токен удаления
// и при совпадении выдает сессионную куку, действующую только на этот альбом
func (h *Handler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	album, err := h.service.GetAlbum(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	candidate := r.PostFormValue(auth.QueryParam)
	if strings.TrimSpace(candidate) == "" {
		h.respondError(w, auth.ErrNoCredential)
		return
	}

	if !auth.Matches(album, candidate) {
		h.respondError(w, auth.ErrWrongCredential)
		return
	}

	h.setSessionCookie(w, album.Token, album.DeletionToken)
	http.Redirect(w, r, "/a/"+album.Token+"/edit", http.StatusSeeOther)
}

// HandleEditForm обрабатывает GET запрос страницы редактирования.
// Требуется кука авторизации или токен удаления в параметре запроса.
func (h *Handler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	album, err := h.service.GetAlbum(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := auth.Check(album, r, h.extractors(album.Token)...); err != nil {
		h.respondError(w, err)
		return
	}

	images, err := h.service.AlbumImageURLs(r.Context(), album)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.render(w, http.StatusOK, "edit.html", albumView{
		Title:  album.Title,
		Token:  album.Token,
		Images: images,
	})
}

// HandleEdit обрабатывает POST запрос вставки изображения.
// Авторизация — кука либо повторно предъявленный токен удаления в форме.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	album, err := h.service.GetAlbum(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := auth.Check(album, r, h.extractors(album.Token)...); err != nil {
		h.respondError(w, err)
		return
	}

	if method := r.PostFormValue("method"); method != "insert" {
		http.Error(w, "Invalid form input: unsupported method", http.StatusBadRequest)
		return
	}

	index, err := strconv.Atoi(r.PostFormValue("index"))
	if err != nil {
		http.Error(w, "Invalid form input: index must be a number", http.StatusBadRequest)
		return
	}

	if _, err := h.service.InsertImage(r.Context(), album, r.PostFormValue("url"), index); err != nil {
		h.respondError(w, err)
		return
	}

	// Успешная авторизация токеном из формы продлевается кукой,
	// чтобы дальше редактировать без повторного ввода секрета
	h.setSessionCookie(w, album.Token, album.DeletionToken)
	http.Redirect(w, r, "/a/"+album.Token+"/edit", http.StatusSeeOther)
}

// HandlePatchAlbum зарезервирован под удаление альбома.
// Граница авторизации уже действует, сама операция не реализована.
func (h *Handler) HandlePatchAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := h.service.GetAlbum(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	candidate, err := auth.HeaderCredential{}.Extract(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if !auth.Matches(album, candidate) {
		h.respondError(w, auth.ErrWrongCredential)
		return
	}

	http.Error(w, "Not implemented", http.StatusNotImplemented)
}

// extractors возвращает стратегии извлечения секрета в порядке опроса
func (h *Handler) extractors(albumToken string) []auth.Extractor {
	return []auth.Extractor{
		auth.CookieCredential{Secret: []byte(h.cfg.SessionSecret), Album: albumToken},
		auth.QueryCredential{},
	}
}

// setSessionCookie выдает сессионную куку альбома
func (h *Handler) setSessionCookie(w http.ResponseWriter, albumToken, deletionToken string) {
	cookie, err := auth.SealCookie([]byte(h.cfg.SessionSecret), albumToken, deletionToken)
	if err != nil {
		h.logger.Error("Error sealing session cookie", zap.Error(err))
		return
	}
	http.SetCookie(w, cookie)
}
