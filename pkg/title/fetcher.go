package title

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// maxBodyBytes ограничивает чтение страницы: <title> живет в начале документа
const maxBodyBytes = 512 * 1024

var ErrNoTitle = errors.New("page has no title element")

// Fetcher извлекает <title> страницы по HTTP.
type Fetcher struct {
	client *http.Client
	log    *zap.Logger
}

// NewFetcher создает новый fetcher с заданным таймаутом запроса
func NewFetcher(timeout time.Duration, log *zap.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// FetchTitle загружает страницу и возвращает содержимое её <title>.
// Контекст запроса ограничивает только этот вызов — зависший удаленный
// сервер не задерживает другие запросы.
func (f *Fetcher) FetchTitle(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "ShortlyBot/1.0 (+title lookup)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.log.Debug("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, pageURL)
	}

	pageTitle, err := extractTitle(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}

	f.log.Debug("fetched page title", zap.String("url", pageURL), zap.String("title", pageTitle))
	return pageTitle, nil
}

// extractTitle токенизирует HTML до первого элемента <title>
func extractTitle(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	inTitle := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", ErrNoTitle
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				if text := strings.TrimSpace(string(z.Text())); text != "" {
					return text, nil
				}
			}
		case html.EndTagToken:
			if inTitle {
				// пустой <title></title>
				return "", ErrNoTitle
			}
		}
	}
}
