package http

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LinksHandler обработчик для работы со ссылками
type LinksHandler struct {
	shortener *service.Shortener
	log       *zap.Logger
	baseURL   string
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(shortener *service.Shortener, log *zap.Logger, baseURL string) *LinksHandler {
	return &LinksHandler{
		shortener: shortener,
		log:       log,
		baseURL:   baseURL,
	}
}

// CreateLinkRequest структура запроса создания ссылки
type CreateLinkRequest struct {
	URL string `json:"url"`
}

// LinkInfo информация о ссылке
type LinkInfo struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	Code      string `json:"code"`
	Title     string `json:"title,omitempty"`
	Visits    int64  `json:"visits"`
	ShortURL  string `json:"short_url"`
	CreatedAt string `json:"created_at"`
}

// ListLinks возвращает все ссылки, сначала самые новые
func (h *LinksHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.shortener.List(r.Context())
	if err != nil {
		h.log.Error("failed to list links", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	infos := make([]LinkInfo, 0, len(links))
	for _, link := range links {
		infos = append(infos, h.linkInfo(link))
	}

	h.writeJSON(w, infos, http.StatusOK)
}

// CreateLink создает короткую ссылку либо возвращает существующую для того же URL.
// Невалидный URL и ошибка получения заголовка отвечают 404, как и
// оригинальный сервис.
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseCreateRequest(r)
	if err != nil {
		h.log.Debug("invalid create link request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	link, err := h.shortener.CreateOrGet(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			h.log.Debug("not a valid url", zap.String("url", req.URL))
			h.writeError(w, "Not a valid url", http.StatusNotFound)
		case errors.Is(err, service.ErrTitleFetch):
			h.log.Debug("error reading url heading", zap.String("url", req.URL), zap.Error(err))
			h.writeError(w, "Error reading URL heading", http.StatusNotFound)
		default:
			h.log.Error("failed to create link", zap.String("url", req.URL), zap.Error(err))
			h.writeError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, h.linkInfo(link), http.StatusOK)
}

// Helper methods

func (h *LinksHandler) parseCreateRequest(r *http.Request) (CreateLinkRequest, error) {
	var req CreateLinkRequest

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.URL = r.PostFormValue("url")
	}

	req.URL = strings.TrimSpace(req.URL)
	return req, nil
}

func (h *LinksHandler) linkInfo(link *domain.Link) LinkInfo {
	return LinkInfo{
		ID:        link.ID,
		URL:       link.URL,
		Code:      link.Code,
		Title:     link.Title,
		Visits:    link.Visits,
		ShortURL:  fmt.Sprintf("%s/%s", strings.TrimSuffix(h.baseURL, "/"), link.Code),
		CreatedAt: link.CreatedAt.Format(time.RFC3339),
	}
}

func (h *LinksHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *LinksHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.log.Error("failed to encode error response", zap.Error(err))
	}
}
