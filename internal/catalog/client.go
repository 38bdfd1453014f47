package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"catalog_importer/internal/domain"
)

const (
	productsPath = "/api/catalog-products"
	maxBodyBytes = 64 << 10
)

// Config holds remote catalog configuration.
type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	UserAgent string
}

// Client talks to the remote catalog over one HTTP session.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// New creates a catalog client. Every request carries the bearer token.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "CatalogImporter/1.0"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	httpClient := &http.Client{Transport: transport}
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	}
	httpClient.Timeout = cfg.Timeout

	return &Client{
		httpClient: httpClient,
		transport:  transport,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		logger:     logger.With("component", "catalog"),
	}, nil
}

// CountByArticle returns how many catalog products carry the given article number.
func (c *Client) CountByArticle(ctx context.Context, article string) (int, error) {
	u := fmt.Sprintf("%s%s?filters[articleNumber][$eq]=%s", c.baseURL, productsPath, escapeArticle(article))

	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{Op: "probe article", StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var list ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	return len(list.Data), nil
}

// Create submits a new, unpublished catalog product.
func (c *Client) Create(ctx context.Context, record domain.ProductRecord) error {
	body, err := json.Marshal(NewCreateRequest(record))
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	c.logger.Debug("sending product", "article", record.Article, "payload", string(body))

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+productsPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody := readBody(resp.Body)
	c.logger.Debug("catalog response", "article", record.Article, "status", resp.StatusCode, "body", respBody)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &StatusError{Op: "create product", StatusCode: resp.StatusCode, Body: respBody}
	}

	return nil
}

// Close releases idle connections held by the session.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// escapeArticle query-escapes an article number with spaces as %20.
func escapeArticle(article string) string {
	return strings.ReplaceAll(url.QueryEscape(article), "+", "%20")
}

func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return ""
	}
	return string(b)
}
