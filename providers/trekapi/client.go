package trekapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"jamjam-trek/config"
	"jamjam-trek/providers"
)

// maxBodyBytes begrenzt die gelesene Antwortgröße.
const maxBodyBytes = 16 << 20

// ErrNoSession wird geliefert, wenn eine geschützte Operation ohne Token aufgerufen wird.
var ErrNoSession = errors.New("trekapi: no session")

// ErrNotFound wird geliefert, wenn eine Einzelressource leer zurückkommt.
var ErrNotFound = errors.New("trekapi: not found")

// APIError ist eine Nicht-2xx-Antwort der Trek-API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("trek api returned status %d", e.Status)
}

// Cache speichert Antwort-Bodies öffentlicher GET-Anfragen.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	Invalidate(ctx context.Context, prefix string)
}

// Client spricht mit der Trek-API. Ein Client ohne Session ist anonym;
// WithSession liefert eine Kopie mit gebundenem Token.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Cache   Cache
	Logger  *zap.Logger

	session providers.Session
}

// NewClient erstellt einen Client aus der Konfiguration. cache darf nil sein.
func NewClient(cfg *config.Config, cache Cache, logger *zap.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		HTTP:    &http.Client{Timeout: cfg.APITimeout},
		Cache:   cache,
		Logger:  logger,
	}
}

// WithSession bindet die Anmeldedaten eines Admins an eine Kopie des Clients.
func (c *Client) WithSession(s providers.Session) *Client {
	cp := *c
	cp.session = s
	return &cp
}

// Session liefert die gebundene Session.
func (c *Client) Session() providers.Session {
	return c.session
}

// get führt ein GET aus. Anonyme Anfragen werden, falls konfiguriert, gecacht.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	cacheable := c.Cache != nil && !c.session.Valid()
	if cacheable {
		if body, ok := c.Cache.Get(ctx, key); ok {
			return body, nil
		}
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, path, query, nil, "")
	if err != nil {
		return nil, err
	}
	if cacheable {
		c.Cache.Set(ctx, key, body)
	}
	return body, nil
}

// sendJSON kodiert payload als JSON-Body.
func (c *Client) sendJSON(ctx context.Context, method, endpoint, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, method, endpoint, path, nil, body, "application/json")
}

// do führt die Anfrage aus. endpoint ist das Label für Metriken (z.B. "/treks/:id").
func (c *Client) do(ctx context.Context, method, endpoint, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.session.Valid() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	c.Logger.Debug("Rufe Trek-API auf", zap.String("method", method), zap.String("url", u))

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	requestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(method, endpoint, "error").Inc()
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		requestsTotal.WithLabelValues(method, endpoint, "error").Inc()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		requestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(resp.StatusCode/100)+"xx").Inc()
		return data, &APIError{Status: resp.StatusCode, Message: messageFrom(data)}
	}

	requestsTotal.WithLabelValues(method, endpoint, "ok").Inc()
	return data, nil
}

// messageFrom liest das "message"-Feld einer Fehlerantwort, falls vorhanden.
func messageFrom(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// withFallback setzt eine Standardmeldung, wenn die API keine geliefert hat.
func withFallback(err error, message string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			apiErr.Message = message
		}
		return apiErr
	}
	return fmt.Errorf("%s: %w", message, err)
}

// decodeAny dekodiert einen Body in ein untypisiertes JSON-Value. Zahlen bleiben json.Number.
func decodeAny(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
