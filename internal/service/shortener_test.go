package service

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/repository/memory"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockTitleFetcher is a mock implementation of TitleFetcher
type MockTitleFetcher struct {
	mock.Mock
}

func (m *MockTitleFetcher) FetchTitle(ctx context.Context, pageURL string) (string, error) {
	args := m.Called(ctx, pageURL)
	return args.String(0), args.Error(1)
}

func sequentialGenerator() CodeGenerator {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("code%d", n)
	}
}

func newTestShortener(titles TitleFetcher, generate CodeGenerator) (*Shortener, *memory.MemStorage) {
	storage := memory.New()
	return NewShortener(storage, titles, generate, zap.NewNop()), storage
}

func TestShortener_CreateOrGetIsIdempotent(t *testing.T) {
	titles := new(MockTitleFetcher)
	titles.On("FetchTitle", mock.Anything, "https://example.com/page").Return("Example Page", nil).Once()

	shortener, _ := newTestShortener(titles, sequentialGenerator())
	ctx := context.Background()

	first, err := shortener.CreateOrGet(ctx, "https://example.com/page")
	require.NoError(t, err)
	assert.Equal(t, "Example Page", first.Title)
	assert.Equal(t, int64(0), first.Visits)

	// Повторное создание возвращает ту же запись и не ходит за заголовком
	second, err := shortener.CreateOrGet(ctx, "https://example.com/page")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Code, second.Code)

	titles.AssertExpectations(t)
}

func TestShortener_DistinctURLsGetDistinctCodes(t *testing.T) {
	titles := new(MockTitleFetcher)
	titles.On("FetchTitle", mock.Anything, mock.Anything).Return("A Title", nil)

	shortener, _ := newTestShortener(titles, sequentialGenerator())
	ctx := context.Background()

	first, err := shortener.CreateOrGet(ctx, "https://example.com/one")
	require.NoError(t, err)
	second, err := shortener.CreateOrGet(ctx, "https://example.com/two")
	require.NoError(t, err)

	assert.NotEqual(t, first.Code, second.Code)
}

func TestShortener_InvalidURLPersistsNothing(t *testing.T) {
	titles := new(MockTitleFetcher)
	shortener, storage := newTestShortener(titles, sequentialGenerator())
	ctx := context.Background()

	for _, rawURL := range []string{"not-a-url", "ftp://example.com/file", "http://", ""} {
		_, err := shortener.CreateOrGet(ctx, rawURL)
		assert.ErrorIs(t, err, ErrInvalidURL, "url %q", rawURL)
	}

	links, err := storage.ListLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)
	titles.AssertNotCalled(t, "FetchTitle", mock.Anything, mock.Anything)
}

func TestShortener_TitleFetchFailureAbortsCreation(t *testing.T) {
	titles := new(MockTitleFetcher)
	titles.On("FetchTitle", mock.Anything, "https://unreachable.example.com").
		Return("", errors.New("connection refused"))

	shortener, storage := newTestShortener(titles, sequentialGenerator())
	ctx := context.Background()

	_, err := shortener.CreateOrGet(ctx, "https://unreachable.example.com")
	assert.ErrorIs(t, err, ErrTitleFetch)

	// Частичных записей не остается
	links, err := storage.ListLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestShortener_RetriesOnCodeCollision(t *testing.T) {
	titles := new(MockTitleFetcher)
	titles.On("FetchTitle", mock.Anything, mock.Anything).Return("A Title", nil)

	codes := []string{"taken", "taken", "fresh"}
	var i int
	generate := func() string {
		code := codes[i]
		i++
		return code
	}

	shortener, storage := newTestShortener(titles, generate)
	ctx := context.Background()

	_, _, err := storage.CreateOrGetLink(ctx, &domain.Link{URL: "https://example.com/old", Code: "taken"})
	require.NoError(t, err)

	link, err := shortener.CreateOrGet(ctx, "https://example.com/new")
	require.NoError(t, err)
	assert.Equal(t, "fresh", link.Code)
}

func TestShortener_FindByCodeMissIsNormal(t *testing.T) {
	titles := new(MockTitleFetcher)
	shortener, _ := newTestShortener(titles, sequentialGenerator())

	_, err := shortener.FindByCode(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
}

func TestShortener_ListNewestFirst(t *testing.T) {
	titles := new(MockTitleFetcher)
	titles.On("FetchTitle", mock.Anything, mock.Anything).Return("A Title", nil)

	shortener, _ := newTestShortener(titles, sequentialGenerator())
	ctx := context.Background()

	_, err := shortener.CreateOrGet(ctx, "https://example.com/first")
	require.NoError(t, err)
	second, err := shortener.CreateOrGet(ctx, "https://example.com/second")
	require.NoError(t, err)

	links, err := shortener.List(ctx)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, second.Code, links[0].Code)
}
