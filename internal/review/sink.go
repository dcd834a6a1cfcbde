package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"store-feedback/internal/models"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNoEndpoint is returned by WebhookSink when no URL is configured.
var ErrNoEndpoint = errors.New("webhook endpoint not configured")

// Sink is a backend that takes accepted reviews.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, r models.AcceptedReview) error
}

// WebhookSink posts each review as JSON to an external endpoint.
type WebhookSink struct {
	url        string
	httpClient *http.Client
}

// NewWebhookSink uses a traced client with a 10s timeout when client is nil.
func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &WebhookSink{url: url, httpClient: client}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, r models.AcceptedReview) error {
	if s.url == "" {
		return ErrNoEndpoint
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("webhook returned %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Repository is the persistence side of DatabaseSink.
type Repository interface {
	SaveReview(ctx context.Context, r models.AcceptedReview) error
}

// DatabaseSink inserts reviews into the local database.
type DatabaseSink struct {
	repo Repository
}

func NewDatabaseSink(repo Repository) *DatabaseSink {
	return &DatabaseSink{repo: repo}
}

func (s *DatabaseSink) Name() string { return "database" }

func (s *DatabaseSink) Deliver(ctx context.Context, r models.AcceptedReview) error {
	return s.repo.SaveReview(ctx, r)
}

// MultiSink delivers to each sink in order and stops at the first failure.
type MultiSink []Sink

func (m MultiSink) Name() string {
	names := make([]string, len(m))
	for i, s := range m {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

func (m MultiSink) Deliver(ctx context.Context, r models.AcceptedReview) error {
	for _, s := range m {
		if err := s.Deliver(ctx, r); err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return nil
}
