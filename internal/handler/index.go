package handler

import (
	_ "embed"
	"net/http"

	"go.uber.org/zap"
)

// Статические ресурсы вшиты в бинарник
var (
	//go:embed assets/styles.css
	stylesCSS []byte
	//go:embed assets/favicon.svg
	faviconSVG []byte
)

// HandleIndex обрабатывает GET запрос главной страницы
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", nil)
}

// HandleIndexHead обрабатывает HEAD запрос главной страницы
func (h *Handler) HandleIndexHead(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleNewForm обрабатывает GET запрос формы нового альбома
func (h *Handler) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "new.html", nil)
}

// HandleImportForm обрабатывает GET запрос формы импорта альбома
func (h *Handler) HandleImportForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "import.html", nil)
}

// HandleStyles отдает таблицу стилей
func (h *Handler) HandleStyles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	if _, err := w.Write(stylesCSS); err != nil {
		h.logger.Error("Error writing styles", zap.Error(err))
	}
}

// HandleFavicon отдает иконку сайта
func (h *Handler) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write(faviconSVG); err != nil {
		h.logger.Error("Error writing favicon", zap.Error(err))
	}
}

// HandleTeapot отвечает чайником
func (h *Handler) HandleTeapot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusTeapot)
	if _, err := w.Write([]byte("FeelsDankMan")); err != nil {
		h.logger.Error("Error writing response", zap.Error(err))
	}
}
