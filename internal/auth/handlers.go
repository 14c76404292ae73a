package auth

import (
	"Shortly-Backend/internal/repository"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// AuthHandlers обработчики аутентификации
type AuthHandlers struct {
	storage         repository.Storage
	sessions        *SessionManager
	passwordService *PasswordService
	log             *zap.Logger
}

// NewAuthHandlers создает новые обработчики аутентификации
func NewAuthHandlers(storage repository.Storage, sessions *SessionManager, passwordService *PasswordService, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		storage:         storage,
		sessions:        sessions,
		passwordService: passwordService,
		log:             log,
	}
}

// credentialsRequest структура запроса входа/регистрации
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ErrorResponse структура ошибки
type ErrorResponse struct {
	Error string `json:"error"`
}

// Signup обработчик регистрации.
// Дубликат имени пользователя — 409; успех устанавливает сессию и
// возвращает 201 с Location: /.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseCredentials(r)
	if err != nil {
		h.log.Debug("invalid signup request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if req.Username == "" {
		h.writeError(w, "Username is required", http.StatusBadRequest)
		return
	}
	if err := IsValidPassword(req.Password); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	hashedPassword, err := h.passwordService.Hash(req.Password)
	if err != nil {
		h.log.Error("failed to hash password", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user, err := h.storage.CreateUser(r.Context(), req.Username, hashedPassword)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			h.writeError(w, "Username already taken", http.StatusConflict)
			return
		}
		h.log.Error("failed to create user", zap.String("username", req.Username), zap.Error(err))
		h.writeError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	_, cookie, err := h.sessions.Authenticate(r.Context(), user, h.currentCookie(r))
	if err != nil {
		h.log.Error("failed to establish session after signup", zap.Int64("user_id", user.ID), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	http.SetCookie(w, cookie)
	w.Header().Set("Location", "/")
	w.WriteHeader(http.StatusCreated)
}

// Login обработчик входа.
// Неизвестное имя — redirect на /login, неверный пароль — 401;
// молчаливого успеха при отказе быть не может.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseCredentials(r)
	if err != nil {
		h.log.Debug("invalid login request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	user, err := h.storage.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.log.Debug("login for unknown user", zap.String("username", req.Username))
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.log.Error("failed to look up user", zap.String("username", req.Username), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ok, err := h.passwordService.Verify(req.Password, user.PasswordHash)
	if err != nil {
		// Поврежденный хеш — внутренняя проблема, клиенту деталей не показываем
		h.log.Error("corrupt password hash", zap.Int64("user_id", user.ID), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		h.log.Debug("invalid password", zap.String("username", req.Username))
		h.writeError(w, "Your password is incorrect", http.StatusUnauthorized)
		return
	}

	_, cookie, err := h.sessions.Authenticate(r.Context(), user, h.currentCookie(r))
	if err != nil {
		h.log.Error("failed to establish session", zap.Int64("user_id", user.ID), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	http.SetCookie(w, cookie)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout обработчик выхода
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.sessions.CookieName()); err == nil {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil &&
			!errors.Is(err, repository.ErrSessionNotFound) && !errors.Is(err, ErrInvalidToken) {
			h.log.Error("failed to destroy session", zap.Error(err))
			h.writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	http.SetCookie(w, h.sessions.ExpiredCookie())
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Helper methods

// parseCredentials принимает и JSON, и обычную HTML-форму
func (h *AuthHandlers) parseCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	}

	req.Username = strings.TrimSpace(req.Username)
	return req, nil
}

func (h *AuthHandlers) currentCookie(r *http.Request) string {
	if cookie, err := r.Cookie(h.sessions.CookieName()); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *AuthHandlers) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
