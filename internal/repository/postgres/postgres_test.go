package postgres

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupStorage поднимает одноразовый PostgreSQL в контейнере
func setupStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("shortly_test"),
		tcpostgres.WithUsername("shortly"),
		tcpostgres.WithPassword("shortly"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Link{}, &domain.Click{}, &domain.Session{}))

	return New(db, zap.NewNop())
}

func TestPostgresStorage_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed integration test in short mode")
	}

	storage := setupStorage(t)
	ctx := context.Background()

	t.Run("duplicate username is rejected", func(t *testing.T) {
		first, err := storage.CreateUser(ctx, "alice", "hash-1")
		require.NoError(t, err)
		require.NotZero(t, first.ID)

		_, err = storage.CreateUser(ctx, "alice", "hash-2")
		assert.ErrorIs(t, err, repository.ErrUsernameTaken)
	})

	t.Run("create or get link deduplicates by url", func(t *testing.T) {
		first, created, err := storage.CreateOrGetLink(ctx, &domain.Link{URL: "https://example.com/dedup", Code: "dedup1", Title: "Dedup"})
		require.NoError(t, err)
		assert.True(t, created)

		// Тот же URL с другим кодом упирается в ON CONFLICT и возвращает оригинал
		second, created, err := storage.CreateOrGetLink(ctx, &domain.Link{URL: "https://example.com/dedup", Code: "dedup2", Title: "Dedup"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "dedup1", second.Code)
	})

	t.Run("concurrent creates of one url converge", func(t *testing.T) {
		const writers = 10
		results := make([]*domain.Link, writers)

		var wg sync.WaitGroup
		wg.Add(writers)
		for i := 0; i < writers; i++ {
			go func(i int) {
				defer wg.Done()
				link, _, err := storage.CreateOrGetLink(ctx, &domain.Link{
					URL:  "https://example.com/race",
					Code: "race" + string(rune('a'+i)),
				})
				assert.NoError(t, err)
				results[i] = link
			}(i)
		}
		wg.Wait()

		for _, link := range results {
			require.NotNil(t, link)
			assert.Equal(t, results[0].ID, link.ID)
			assert.Equal(t, results[0].Code, link.Code)
		}
	})

	t.Run("concurrent visits lose no updates", func(t *testing.T) {
		link, created, err := storage.CreateOrGetLink(ctx, &domain.Link{URL: "https://example.com/visits", Code: "visits"})
		require.NoError(t, err)
		require.True(t, created)

		const visitors = 50
		var wg sync.WaitGroup
		wg.Add(visitors)
		for i := 0; i < visitors; i++ {
			go func() {
				defer wg.Done()
				_, err := storage.RecordVisit(ctx, "visits")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		updated, err := storage.GetLinkByCode(ctx, "visits")
		require.NoError(t, err)
		assert.Equal(t, int64(visitors), updated.Visits)

		clicks, err := storage.CountClicks(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(visitors), clicks)
	})

	t.Run("record visit for unknown code", func(t *testing.T) {
		_, err := storage.RecordVisit(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrCodeNotFound)
	})

	t.Run("sessions round trip", func(t *testing.T) {
		session := &domain.Session{UserID: 1, Token: "11111111-2222-3333-4444-555555555555", ExpiresAt: time.Now().Add(time.Hour)}
		require.NoError(t, storage.CreateSession(ctx, session))

		got, err := storage.GetSessionByToken(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, session.UserID, got.UserID)

		require.NoError(t, storage.DeleteSession(ctx, session.Token))
		_, err = storage.GetSessionByToken(ctx, session.Token)
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	})
}
