package memory

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStorage_CreateUserRejectsDuplicate(t *testing.T) {
	storage := New()
	ctx := context.Background()

	first, err := storage.CreateUser(ctx, "alice", "hash-1")
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	_, err = storage.CreateUser(ctx, "alice", "hash-2")
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)

	// Второй записи не появилось
	user, err := storage.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, user.ID)
	assert.Equal(t, "hash-1", user.PasswordHash)
}

func TestMemStorage_CreateOrGetLinkDeduplicatesByURL(t *testing.T) {
	storage := New()
	ctx := context.Background()

	first, created, err := storage.CreateOrGetLink(ctx, &domain.Link{URL: "https://example.com", Code: "aaa"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := storage.CreateOrGetLink(ctx, &domain.Link{URL: "https://example.com", Code: "bbb"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "aaa", second.Code)

	// Занятый код для другого URL — конфликт
	_, _, err = storage.CreateOrGetLink(ctx, &domain.Link{URL: "https://other.com", Code: "aaa"})
	assert.ErrorIs(t, err, repository.ErrCodeExists)
}

func TestMemStorage_RecordVisitUnknownCode(t *testing.T) {
	storage := New()

	_, err := storage.RecordVisit(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
}

func TestMemStorage_ConcurrentVisitsLoseNoUpdates(t *testing.T) {
	storage := New()
	ctx := context.Background()

	link, _, err := storage.CreateOrGetLink(ctx, &domain.Link{URL: "https://example.com", Code: "ccc"})
	require.NoError(t, err)

	const visitors = 50
	var wg sync.WaitGroup
	wg.Add(visitors)
	for i := 0; i < visitors; i++ {
		go func() {
			defer wg.Done()
			_, err := storage.RecordVisit(ctx, "ccc")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	updated, err := storage.GetLinkByCode(ctx, "ccc")
	require.NoError(t, err)
	assert.Equal(t, int64(visitors), updated.Visits)

	// Счетчик совпадает с количеством записей Click
	clicks, err := storage.CountClicks(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(visitors), clicks)
}

func TestMemStorage_Sessions(t *testing.T) {
	storage := New()
	ctx := context.Background()

	session := &domain.Session{UserID: 1, Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, storage.CreateSession(ctx, session))

	got, err := storage.GetSessionByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UserID)

	require.NoError(t, storage.DeleteSession(ctx, "tok-1"))
	_, err = storage.GetSessionByToken(ctx, "tok-1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	assert.ErrorIs(t, storage.DeleteSession(ctx, "tok-1"), repository.ErrSessionNotFound)
}

func TestMemStorage_DeleteExpiredSessions(t *testing.T) {
	storage := New()
	ctx := context.Background()

	require.NoError(t, storage.CreateSession(ctx, &domain.Session{UserID: 1, Token: "live", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, storage.CreateSession(ctx, &domain.Session{UserID: 1, Token: "dead", ExpiresAt: time.Now().Add(-time.Hour)}))

	removed, err := storage.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = storage.GetSessionByToken(ctx, "live")
	assert.NoError(t, err)
	_, err = storage.GetSessionByToken(ctx, "dead")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestMemStorage_ListLinksNewestFirst(t *testing.T) {
	storage := New()
	ctx := context.Background()

	older := time.Now().Add(-time.Minute)
	_, _, err := storage.CreateOrGetLink(ctx, &domain.Link{URL: "https://example.com/a", Code: "aaa", CreatedAt: older})
	require.NoError(t, err)
	_, _, err = storage.CreateOrGetLink(ctx, &domain.Link{URL: "https://example.com/b", Code: "bbb"})
	require.NoError(t, err)

	links, err := storage.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "bbb", links[0].Code)
	assert.Equal(t, "aaa", links[1].Code)
}
