package http

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PagesHandler отдает HTML-страницы (тонкая обертка над шаблонами)
type PagesHandler struct {
	templates *template.Template
	log       *zap.Logger
}

// NewPagesHandler создает новый обработчик страниц
func NewPagesHandler(log *zap.Logger) *PagesHandler {
	return &PagesHandler{
		templates: template.Must(template.ParseFS(templatesFS, "templates/*.html")),
		log:       log,
	}
}

// Index главная страница с формой создания ссылки
func (h *PagesHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html")
}

// Login страница входа
func (h *PagesHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html")
}

// Signup страница регистрации
func (h *PagesHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, "signup.html")
}

func (h *PagesHandler) render(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, nil); err != nil {
		h.log.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
