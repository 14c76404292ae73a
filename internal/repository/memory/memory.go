package memory

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"sync"
	"time"
)

// MemStorage хранит все данные в памяти под одним мьютексом.
// Используется в тестах и для локального запуска без PostgreSQL.
type MemStorage struct {
	mu              sync.RWMutex
	usersByName     map[string]*domain.User
	usersByID       map[int64]*domain.User
	linksByCode     map[string]*domain.Link
	linksByURL      map[string]*domain.Link
	clicks          []*domain.Click
	sessionsByToken map[string]*domain.Session
	userCounter     int64
	linkCounter     int64
	clickCounter    int64
	sessionCounter  int64
}

func New() *MemStorage {
	return &MemStorage{
		usersByName:     make(map[string]*domain.User),
		usersByID:       make(map[int64]*domain.User),
		linksByCode:     make(map[string]*domain.Link),
		linksByURL:      make(map[string]*domain.Link),
		sessionsByToken: make(map[string]*domain.Session),
	}
}

// --- User Methods ---

func (s *MemStorage) CreateUser(_ context.Context, username, passwordHash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByName[username]; exists {
		return nil, repository.ErrUsernameTaken
	}

	s.userCounter++
	user := &domain.User{
		ID:           s.userCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.usersByName[username] = user
	s.usersByID[user.ID] = user

	return user, nil
}

func (s *MemStorage) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByName[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *MemStorage) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

// --- Link Methods ---

func (s *MemStorage) CreateOrGetLink(_ context.Context, link *domain.Link) (*domain.Link, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Дедупликация по URL: существующая запись возвращается как есть
	if existing, exists := s.linksByURL[link.URL]; exists {
		return existing, false, nil
	}
	if _, exists := s.linksByCode[link.Code]; exists {
		return nil, false, repository.ErrCodeExists
	}

	s.linkCounter++
	link.ID = s.linkCounter
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}
	link.UpdatedAt = link.CreatedAt
	s.linksByCode[link.Code] = link
	s.linksByURL[link.URL] = link

	return link, true, nil
}

func (s *MemStorage) GetLinkByCode(_ context.Context, code string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.linksByCode[code]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}
	return link, nil
}

func (s *MemStorage) GetLinkByURL(_ context.Context, url string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.linksByURL[url]
	if !ok {
		return nil, repository.ErrURLNotFound
	}
	return link, nil
}

func (s *MemStorage) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.linksByCode[code]
	return ok, nil
}

func (s *MemStorage) ListLinks(_ context.Context) ([]*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := make([]*domain.Link, 0, len(s.linksByCode))
	for _, link := range s.linksByCode {
		links = append(links, link)
	}
	// Сначала самые новые
	for i := 0; i < len(links); i++ {
		for j := i + 1; j < len(links); j++ {
			if links[j].CreatedAt.After(links[i].CreatedAt) ||
				(links[j].CreatedAt.Equal(links[i].CreatedAt) && links[j].ID > links[i].ID) {
				links[i], links[j] = links[j], links[i]
			}
		}
	}
	return links, nil
}

// --- Click Methods ---

func (s *MemStorage) RecordVisit(_ context.Context, code string) (*domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.linksByCode[code]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}

	s.clickCounter++
	s.clicks = append(s.clicks, &domain.Click{
		ID:        s.clickCounter,
		LinkID:    link.ID,
		CreatedAt: time.Now(),
	})
	link.Visits++
	link.UpdatedAt = time.Now()

	// Копия, чтобы вызывающий не разделял указатель с хранилищем
	updated := *link
	return &updated, nil
}

func (s *MemStorage) CountClicks(_ context.Context, linkID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, click := range s.clicks {
		if click.LinkID == linkID {
			count++
		}
	}
	return count, nil
}

// --- Session Methods ---

func (s *MemStorage) CreateSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionCounter++
	session.ID = s.sessionCounter
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	s.sessionsByToken[session.Token] = session
	return nil
}

func (s *MemStorage) GetSessionByToken(_ context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessionsByToken[token]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return session, nil
}

func (s *MemStorage) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessionsByToken[token]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(s.sessionsByToken, token)
	return nil
}

func (s *MemStorage) DeleteExpiredSessions(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	now := time.Now()
	for token, session := range s.sessionsByToken {
		if now.After(session.ExpiresAt) {
			delete(s.sessionsByToken, token)
			removed++
		}
	}
	return removed, nil
}
