package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// ContextKey тип для ключей контекста
type ContextKey string

const (
	// UserIDKey ключ для получения ID пользователя из контекста
	UserIDKey ContextKey = "user_id"
)

// Middleware сессионный middleware для HTTP обработчиков
type Middleware struct {
	sessions *SessionManager
	log      *zap.Logger
}

// NewMiddleware создает новый сессионный middleware
func NewMiddleware(sessions *SessionManager, log *zap.Logger) *Middleware {
	return &Middleware{
		sessions: sessions,
		log:      log,
	}
}

// RequireAuth пропускает запрос только с валидной сессией.
// Без нее пользователь отправляется на /login.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.sessions.CookieName())
		if err != nil {
			m.log.Debug("missing session cookie", zap.String("path", r.URL.Path))
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		session, err := m.sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			m.log.Debug("session denied", zap.String("path", r.URL.Path), zap.Error(err))
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, session.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext извлекает ID пользователя из контекста
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
