package auth

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
)

// SessionConfig конфигурация сессий
type SessionConfig struct {
	Secret     []byte
	TTL        time.Duration
	CookieName string
	Issuer     string
}

// sessionClaims полезная нагрузка cookie: подписанный токен серверной сессии
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionManager управляет жизненным циклом сессий.
// Запись в хранилище — источник истины; cookie несет только подписанный
// токен и не может быть подделана без секрета.
type SessionManager struct {
	storage repository.Storage
	config  *SessionConfig
	log     *zap.Logger
}

// NewSessionManager создает новый менеджер сессий
func NewSessionManager(storage repository.Storage, config *SessionConfig, log *zap.Logger) *SessionManager {
	return &SessionManager{
		storage: storage,
		config:  config,
		log:     log,
	}
}

// CookieName возвращает имя сессионной cookie
func (m *SessionManager) CookieName() string {
	return m.config.CookieName
}

// Authenticate устанавливает аутентифицированную сессию для пользователя.
// Токен всегда выпускается заново (защита от фиксации сессии); прежняя
// сессия из oldCookie удаляется. Cookie возвращается только после того,
// как новая запись сохранена — при ошибке запрос должен завершиться ошибкой.
func (m *SessionManager) Authenticate(ctx context.Context, user *domain.User, oldCookie string) (*domain.Session, *http.Cookie, error) {
	session := &domain.Session{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(m.config.TTL),
	}

	if err := m.storage.CreateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	if oldCookie != "" {
		if oldToken, err := m.parseCookie(oldCookie); err == nil {
			if err := m.storage.DeleteSession(ctx, oldToken); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
				m.log.Warn("failed to delete previous session", zap.Int64("user_id", user.ID), zap.Error(err))
			}
		}
	}

	value, err := m.signToken(session.Token, session.ExpiresAt)
	if err != nil {
		// Сессия без cookie бесполезна — убираем запись и проваливаем запрос
		if delErr := m.storage.DeleteSession(ctx, session.Token); delErr != nil && !errors.Is(delErr, repository.ErrSessionNotFound) {
			m.log.Warn("failed to clean up unusable session", zap.Error(delErr))
		}
		return nil, nil, err
	}

	m.log.Info("session established", zap.Int64("user_id", user.ID))
	return session, m.newCookie(value, session.ExpiresAt), nil
}

// Resolve проверяет cookie и возвращает привязанную сессию.
// Чистый предикат: ничего не изменяет, истекшие сессии убирает janitor.
func (m *SessionManager) Resolve(ctx context.Context, cookieValue string) (*domain.Session, error) {
	token, err := m.parseCookie(cookieValue)
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := m.storage.GetSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if !session.IsValid() {
		return nil, repository.ErrSessionNotFound
	}

	return session, nil
}

// Destroy удаляет сессию; последующие Resolve по старому токену отказывают
func (m *SessionManager) Destroy(ctx context.Context, cookieValue string) error {
	token, err := m.parseCookie(cookieValue)
	if err != nil {
		return ErrInvalidToken
	}

	return m.storage.DeleteSession(ctx, token)
}

// ExpiredCookie возвращает cookie, немедленно удаляющую сессию в браузере
func (m *SessionManager) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *SessionManager) newCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.config.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// signToken упаковывает токен сессии в подписанный JWT
func (m *SessionManager) signToken(token string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SID: token,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
}

// parseCookie проверяет подпись cookie и извлекает токен сессии
func (m *SessionManager) parseCookie(cookieValue string) (string, error) {
	parsed, err := jwt.ParseWithClaims(cookieValue, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.config.Secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.SID == "" {
		return "", ErrInvalidToken
	}

	return claims.SID, nil
}
