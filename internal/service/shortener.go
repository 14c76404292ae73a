package service

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

const maxCodeRetries = 5

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrTitleFetch = errors.New("failed to fetch page title")
)

// TitleFetcher получает заголовок страницы по URL.
type TitleFetcher interface {
	FetchTitle(ctx context.Context, pageURL string) (string, error)
}

// CodeGenerator выдает очередной короткий код.
type CodeGenerator func() string

// Shortener владеет разрешением коротких кодов и созданием ссылок.
type Shortener struct {
	storage      repository.Storage
	titles       TitleFetcher
	generateCode CodeGenerator
	log          *zap.Logger
}

// NewShortener создает новый сервис сокращения ссылок
func NewShortener(storage repository.Storage, titles TitleFetcher, generateCode CodeGenerator, log *zap.Logger) *Shortener {
	return &Shortener{
		storage:      storage,
		titles:       titles,
		generateCode: generateCode,
		log:          log,
	}
}

// CreateOrGet возвращает ссылку для URL, создавая её при необходимости.
// Для уже сокращенного URL существующая запись возвращается без изменений
// (один канонический код на URL). Ошибка получения заголовка отменяет
// создание целиком — частичных записей не бывает.
func (s *Shortener) CreateOrGet(ctx context.Context, rawURL string) (*domain.Link, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	// Быстрый путь: URL уже сокращали
	link, err := s.storage.GetLinkByURL(ctx, rawURL)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, repository.ErrURLNotFound) {
		return nil, err
	}

	title, err := s.titles.FetchTitle(ctx, rawURL)
	if err != nil {
		s.log.Debug("title fetch failed", zap.String("url", rawURL), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTitleFetch, err)
	}

	for i := 0; i < maxCodeRetries; i++ {
		code := s.generateCode()

		exists, err := s.storage.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check code existence: %w", err)
		}
		if exists {
			continue
		}

		saved, created, err := s.storage.CreateOrGetLink(ctx, &domain.Link{
			URL:   rawURL,
			Code:  code,
			Title: title,
		})
		if errors.Is(err, repository.ErrCodeExists) {
			// Проиграли гонку за код — пробуем следующий
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save link: %w", err)
		}

		if created {
			s.log.Info("created link", zap.String("code", saved.Code), zap.String("url", saved.URL))
		}
		return saved, nil
	}

	return nil, fmt.Errorf("failed to allocate unique code after %d attempts", maxCodeRetries)
}

// FindByCode ищет ссылку по короткому коду.
// Отсутствие кода — нормальный исход (repository.ErrCodeNotFound).
func (s *Shortener) FindByCode(ctx context.Context, code string) (*domain.Link, error) {
	return s.storage.GetLinkByCode(ctx, code)
}

// List возвращает все ссылки, сначала самые новые
func (s *Shortener) List(ctx context.Context) ([]*domain.Link, error) {
	return s.storage.ListLinks(ctx)
}

// validateURL требует абсолютный http(s) URL со схемой и хостом
func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}
	if parsed.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
