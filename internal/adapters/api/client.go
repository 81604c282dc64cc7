// internal/adapters/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/core/ports"
)

var (
	_ ports.ResourceClient[domain.InventoryItem] = (*ResourceClient[domain.InventoryItem])(nil)
	_ ports.ResourceClient[domain.Supplier]      = (*ResourceClient[domain.Supplier])(nil)
)

// ResourceClient speaks the CRUD contract for one resource collection.
type ResourceClient[T domain.Resource] struct {
	session    *Session
	kind       domain.ResourceKind
	path       string
	retryMax   int
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
}

// ClientOption configures a ResourceClient.
type ClientOption func(*clientOptions)

type clientOptions struct {
	retryMax   int
	newBackOff func() backoff.BackOff
}

// WithRetryMax sets how often a failed List is retried.
func WithRetryMax(n int) ClientOption {
	return func(o *clientOptions) { o.retryMax = n }
}

// WithBackOff replaces the retry schedule of List.
func WithBackOff(fn func() backoff.BackOff) ClientOption {
	return func(o *clientOptions) { o.newBackOff = fn }
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	return b
}

// NewResourceClient creates a client for kind at path below the session's base URL.
func NewResourceClient[T domain.Resource](session *Session, kind domain.ResourceKind, path string, logger *slog.Logger, opts ...ClientOption) *ResourceClient[T] {
	o := clientOptions{retryMax: 2, newBackOff: defaultBackOff}
	for _, opt := range opts {
		opt(&o)
	}
	return &ResourceClient[T]{
		session:    session,
		kind:       kind,
		path:       path,
		retryMax:   max(0, o.retryMax),
		newBackOff: o.newBackOff,
		logger:     logger.With(slog.String("component", "api_client"), slog.String("resource", string(kind))),
	}
}

// List fetches the full collection. Network failures are retried with
// exponential backoff; validation errors are returned at once.
func (c *ResourceClient[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	attempt := 0

	op := func() error {
		attempt++
		var err error
		items, err = c.list(ctx)
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.retryMax)), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "list failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()))
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *ResourceClient[T]) list(ctx context.Context) ([]T, error) {
	resp, err := c.session.Do(ctx, http.MethodGet, c.path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.decodeError(http.MethodGet, c.path, err)
	}

	items, err := decodeList[T](raw, c.kind)
	if err != nil {
		return nil, c.decodeError(http.MethodGet, c.path, err)
	}
	return items, nil
}

func (c *ResourceClient[T]) Create(ctx context.Context, draft T) (T, error) {
	return c.write(ctx, http.MethodPost, c.path, draft)
}

// Update sends only the fields in patch.
func (c *ResourceClient[T]) Update(ctx context.Context, id int64, patch map[string]any) (T, error) {
	return c.write(ctx, http.MethodPut, c.itemPath(id), patch)
}

func (c *ResourceClient[T]) Delete(ctx context.Context, id int64) error {
	resp, err := c.session.Do(ctx, http.MethodDelete, c.itemPath(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *ResourceClient[T]) write(ctx context.Context, method, path string, body any) (T, error) {
	var zero T
	resp, err := c.session.Do(ctx, method, path, body)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, c.decodeError(method, path, err)
	}

	item, err := decodeOne[T](raw)
	if err != nil {
		return zero, c.decodeError(method, path, err)
	}
	return item, nil
}

func (c *ResourceClient[T]) itemPath(id int64) string {
	return c.path + "/" + strconv.FormatInt(id, 10)
}

func (c *ResourceClient[T]) decodeError(method, path string, err error) error {
	return &domain.NetworkError{
		Method: method,
		URL:    c.session.resolve(path).String(),
		Err:    fmt.Errorf("failed to decode response: %w", err),
	}
}

// decodeList accepts a bare array or an object holding the array under
// "items", "data" or the resource name.
func decodeList[T domain.Resource](raw []byte, kind domain.ResourceKind) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty body")
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	for _, key := range []string{"items", "data", string(kind)} {
		field, ok := envelope[key]
		if !ok {
			continue
		}
		field = bytes.TrimSpace(field)
		if len(field) == 0 || field[0] != '[' {
			continue
		}
		var items []T
		if err := json.Unmarshal(field, &items); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		return items, nil
	}
	return nil, fmt.Errorf("no %s list in response", kind)
}

// decodeOne accepts a bare object or one wrapped under "data".
func decodeOne[T domain.Resource](raw []byte) (T, error) {
	var zero T
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if d := bytes.TrimSpace(envelope.Data); len(d) > 0 && d[0] == '{' {
			raw = d
		}
	}

	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return zero, err
	}
	return item, nil
}
