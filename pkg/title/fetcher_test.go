package title

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetcher_FetchTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><head>
			<meta charset="utf-8">
			<title>  Example Domain  </title>
			</head><body><h1>hello</h1></body></html>`))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, zap.NewNop())

	got, err := fetcher.FetchTitle(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Example Domain", got)
}

func TestFetcher_NoTitleElement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>no title here</body></html>`))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, zap.NewNop())

	_, err := fetcher.FetchTitle(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrNoTitle)
}

func TestFetcher_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, zap.NewNop())

	_, err := fetcher.FetchTitle(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestFetcher_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fetcher.FetchTitle(ctx, server.URL)
	assert.Error(t, err)
}
