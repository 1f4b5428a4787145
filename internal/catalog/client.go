package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
)

const (
	booksRootPath   = "/books/"
	maxResponseBody = 1 << 20
)

// Fetcher выполняет одну попытку получения книги.
// Ошибки: domain.ErrBookNotFound для 404, domain.ErrCatalogUnavailable для остального.
type Fetcher interface {
	FetchBook(ctx context.Context, isbn string) (domain.BookInfo, error)
}

// HTTPClient — Fetcher поверх REST API каталога: GET {base}/books/{isbn}.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient создаёт HTTP-клиент каталога. Если client == nil, используется http.Client
// без собственного таймаута: дедлайн задаёт контекст.
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// bookPayload — ответ каталога; publisher и прочие поля игнорируются.
type bookPayload struct {
	ISBN   string              `json:"isbn"`
	Title  string              `json:"title"`
	Author string              `json:"author"`
	Price  decimal.NullDecimal `json:"price"`
}

// FetchBook выполняет ровно один HTTP-запрос.
func (c *HTTPClient) FetchBook(ctx context.Context, isbn string) (domain.BookInfo, error) {
	endpoint := c.baseURL + booksRootPath + url.PathEscape(isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.BookInfo{}, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.BookInfo{}, fmt.Errorf("catalog request: %w: %w", domain.ErrCatalogUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.BookInfo{}, fmt.Errorf("isbn %s: %w", isbn, domain.ErrBookNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return domain.BookInfo{}, fmt.Errorf("catalog status %d: %w", resp.StatusCode, domain.ErrCatalogUnavailable)
	}

	var payload bookPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&payload); err != nil {
		return domain.BookInfo{}, fmt.Errorf("decode catalog response: %w: %w", domain.ErrCatalogUnavailable, err)
	}
	if payload.ISBN == "" || payload.Title == "" || !payload.Price.Valid {
		return domain.BookInfo{}, fmt.Errorf("incomplete catalog response for isbn %s: %w", isbn, domain.ErrCatalogUnavailable)
	}

	return domain.BookInfo{
		ISBN:   payload.ISBN,
		Title:  payload.Title,
		Author: payload.Author,
		Price:  payload.Price.Decimal,
	}, nil
}

// Ping проверяет, что каталог отвечает. Любой ответ ниже 500 считается живым.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+booksRootPath, nil)
	if err != nil {
		return fmt.Errorf("build catalog ping: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog ping: %w: %w", domain.ErrCatalogUnavailable, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
	_ = resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("catalog ping status %d: %w", resp.StatusCode, domain.ErrCatalogUnavailable)
	}
	return nil
}

var _ Fetcher = (*HTTPClient)(nil)
