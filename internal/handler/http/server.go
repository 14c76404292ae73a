package http

import (
	"Shortly-Backend/internal/auth"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// Server HTTP сервер с обработчиками
type Server struct {
	authHandlers    *auth.AuthHandlers
	linksHandler    *LinksHandler
	redirectHandler *RedirectHandler
	pagesHandler    *PagesHandler
	healthHandler   *HealthHandler
	authMiddleware  *auth.Middleware
	log             *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	storage repository.Storage,
	shortener *service.Shortener,
	sessions *auth.SessionManager,
	passwordService *auth.PasswordService,
	log *zap.Logger,
	baseURL string,
) *Server {
	return &Server{
		authHandlers:    auth.NewAuthHandlers(storage, sessions, passwordService, log),
		linksHandler:    NewLinksHandler(shortener, log, baseURL),
		redirectHandler: NewRedirectHandler(storage, log),
		pagesHandler:    NewPagesHandler(log),
		healthHandler:   NewHealthHandler(storage, log),
		authMiddleware:  auth.NewMiddleware(sessions, log),
		log:             log,
	}
}

// SetupRoutes настраивает маршруты.
// Все структурные маршруты регистрируются до catch-all: разрешение
// короткого кода — последний вариант, когда ничего другое не подошло.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks (без аутентификации)
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)

	// Auth endpoints (без аутентификации)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/signup", s.handleSignup)
	mux.HandleFunc("/logout", s.authHandlers.Logout)

	// Link management (с аутентификацией)
	mux.HandleFunc("/links", s.authMiddleware.RequireAuth(s.handleLinks))
	mux.HandleFunc("/create", s.authMiddleware.RequireAuth(s.pagesHandler.Index))

	// Catch-all: главная страница либо разрешение короткого кода
	mux.HandleFunc("/", s.handleRoot)

	return mux
}

// handleRoot обслуживает корень сайта и, в последнюю очередь, короткие коды
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		s.authMiddleware.RequireAuth(s.pagesHandler.Index)(w, r)
		return
	}
	s.redirectHandler.HandleRedirect(w, r)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.pagesHandler.Login(w, r)
	case http.MethodPost:
		s.authHandlers.Login(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.pagesHandler.Signup(w, r)
	case http.MethodPost:
		s.authHandlers.Signup(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.linksHandler.ListLinks(w, r)
	case http.MethodPost:
		s.linksHandler.CreateLink(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
