package repository

import (
	"Shortly-Backend/internal/domain"
	"context"
	"errors"
)

var (
	ErrCodeNotFound    = errors.New("code not found")
	ErrCodeExists      = errors.New("code already exists")
	ErrURLNotFound     = errors.New("url not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrSessionNotFound = errors.New("session not found")
)

type Storage interface {
	// User methods
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)

	// Link methods
	CreateOrGetLink(ctx context.Context, link *domain.Link) (*domain.Link, bool, error)
	GetLinkByCode(ctx context.Context, code string) (*domain.Link, error)
	GetLinkByURL(ctx context.Context, url string) (*domain.Link, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListLinks(ctx context.Context) ([]*domain.Link, error)

	// Click methods
	RecordVisit(ctx context.Context, code string) (*domain.Link, error)
	CountClicks(ctx context.Context, linkID int64) (int64, error)

	// Session methods
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByToken(ctx context.Context, token string) (*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}
