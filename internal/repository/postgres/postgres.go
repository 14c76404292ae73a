package postgres

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- User Methods ---

// CreateUser создает нового пользователя.
// Уникальность username обеспечивается ограничением на уровне БД.
func (s *PostgresStorage) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	user := domain.User{
		Username:     username,
		PasswordHash: passwordHash,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, repository.ErrUsernameTaken
		}
		s.log.Error("failed to create user", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("created new user", zap.Int64("user_id", user.ID), zap.String("username", username))
	return &user, nil
}

// GetUserByUsername получает пользователя по имени
func (s *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetUserByID получает пользователя по ID
func (s *PostgresStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by id", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// --- Link Methods ---

// CreateOrGetLink сохраняет новую ссылку либо возвращает существующую с тем же URL.
// INSERT ... ON CONFLICT (url) DO NOTHING гарантирует одну запись на URL
// даже при конкурентных запросах.
func (s *PostgresStorage) CreateOrGetLink(ctx context.Context, link *domain.Link) (*domain.Link, bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoNothing: true,
		}).
		Create(link)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			// конфликт по code, а не по url
			return nil, false, repository.ErrCodeExists
		}
		s.log.Error("failed to save link", zap.String("code", link.Code), zap.Error(result.Error))
		return nil, false, fmt.Errorf("failed to save link: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Запись с таким URL уже существует — возвращаем её
		existing, err := s.GetLinkByURL(ctx, link.URL)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	s.log.Info("saved new link", zap.String("code", link.Code), zap.String("url", link.URL))
	return link, true, nil
}

// GetLinkByCode получает ссылку по короткому коду
func (s *PostgresStorage) GetLinkByCode(ctx context.Context, code string) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrCodeNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

// GetLinkByURL получает ссылку по оригинальному URL
func (s *PostgresStorage) GetLinkByURL(ctx context.Context, url string) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).Where("url = ?", url).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrURLNotFound
	}
	if err != nil {
		s.log.Error("failed to get link by url", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to get link by url: %w", err)
	}

	return &link, nil
}

// CodeExists проверяет, занят ли короткий код
func (s *PostgresStorage) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Link{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check code existence", zap.String("code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check code: %w", err)
	}

	return count > 0, nil
}

// ListLinks возвращает все ссылки, сначала самые новые
func (s *PostgresStorage) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	var links []*domain.Link

	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&links).Error
	if err != nil {
		s.log.Error("failed to list links", zap.Error(err))
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	return links, nil
}

// --- Click Methods ---

// RecordVisit записывает посещение: добавляет Click и атомарно увеличивает счетчик.
// Обе записи выполняются в одной транзакции, поэтому счетчик не может
// разойтись с количеством записей Click.
func (s *PostgresStorage) RecordVisit(ctx context.Context, code string) (*domain.Link, error) {
	var updated domain.Link

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link domain.Link
		if err := tx.Where("code = ?", code).First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrCodeNotFound
			}
			return fmt.Errorf("failed to get link: %w", err)
		}

		click := domain.Click{LinkID: link.ID}
		if err := tx.Create(&click).Error; err != nil {
			return fmt.Errorf("failed to create click: %w", err)
		}

		// UPDATE links SET visits = visits + 1 — без потерянных обновлений
		if err := tx.Model(&domain.Link{}).Where("id = ?", link.ID).
			Update("visits", gorm.Expr("visits + 1")).Error; err != nil {
			return fmt.Errorf("failed to update visits: %w", err)
		}

		if err := tx.First(&updated, link.ID).Error; err != nil {
			return fmt.Errorf("failed to reload link: %w", err)
		}
		return nil
	})

	if err != nil {
		if !errors.Is(err, repository.ErrCodeNotFound) {
			s.log.Error("failed to record visit", zap.String("code", code), zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("recorded visit", zap.String("code", code), zap.Int64("visits", updated.Visits))
	return &updated, nil
}

// CountClicks возвращает количество записей Click для ссылки
func (s *PostgresStorage) CountClicks(ctx context.Context, linkID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Click{}).Where("link_id = ?", linkID).Count(&count).Error
	if err != nil {
		s.log.Error("failed to count clicks", zap.Int64("link_id", linkID), zap.Error(err))
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	return count, nil
}

// --- Session Methods ---

// CreateSession сохраняет новую сессию
func (s *PostgresStorage) CreateSession(ctx context.Context, session *domain.Session) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		s.log.Error("failed to create session", zap.Int64("user_id", session.UserID), zap.Error(err))
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSessionByToken получает сессию по токену
func (s *PostgresStorage) GetSessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session

	err := s.db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		s.log.Error("failed to get session", zap.Error(err))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// DeleteSession удаляет сессию по токену
func (s *PostgresStorage) DeleteSession(ctx context.Context, token string) error {
	result := s.db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{})
	if result.Error != nil {
		s.log.Error("failed to delete session", zap.Error(result.Error))
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// DeleteExpiredSessions удаляет все истекшие сессии
func (s *PostgresStorage) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&domain.Session{})
	if result.Error != nil {
		s.log.Error("failed to delete expired sessions", zap.Error(result.Error))
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}

	return result.RowsAffected, nil
}
