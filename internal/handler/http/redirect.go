package http

import (
	"Shortly-Backend/internal/repository"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// RedirectHandler обработчик редиректов по коротким кодам
type RedirectHandler struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(storage repository.Storage, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		storage: storage,
		log:     log,
	}
}

// HandleRedirect разрешает короткий код и перенаправляет на исходный URL.
// Посещение фиксируется атомарно до редиректа: если запись не удалась,
// пользователь получает ошибку, а не переход с рассинхроненным счетчиком.
// Неизвестный код уводит на главную.
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/")

	link, err := h.storage.RecordVisit(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			h.log.Debug("unknown code", zap.String("code", code))
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		h.log.Error("failed to record visit", zap.String("code", code), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("redirect",
		zap.String("code", code),
		zap.String("url", link.URL),
		zap.Int64("visits", link.Visits))

	http.Redirect(w, r, link.URL, http.StatusFound)
}
