// internal/adapters/api/session.go
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
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/pkg/config"
)

const maxErrorBody = 4 << 10

// Session is the credentialed connection to the dashboard API: a cookie jar
// for the login session plus the anti-forgery token mutating calls require.
type Session struct {
	client     *http.Client
	base       *url.URL
	loginPath  string
	csrfPath   string
	csrfHeader string
	username   string
	password   string
	logger     *slog.Logger

	mu        sync.Mutex
	csrfToken string
}

// NewSession creates a session against cfg.API.BaseURL using transport for
// every request.
func NewSession(cfg *config.Config, transport http.RoundTripper, logger *slog.Logger) (*Session, error) {
	base, err := cfg.ResourceURL("")
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Session{
		client: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   cfg.API.Timeout,
		},
		base:       base,
		loginPath:  cfg.API.LoginPath,
		csrfPath:   cfg.API.CSRFPath,
		csrfHeader: cfg.API.CSRFHeader,
		username:   cfg.API.Username,
		password:   cfg.API.Password,
		logger:     logger.With(slog.String("component", "api_session")),
	}, nil
}

// Login posts the configured credentials. The session cookie lands in the jar.
func (s *Session) Login(ctx context.Context) error {
	if s.username == "" {
		return nil
	}

	body := map[string]string{"username": s.username, "password": s.password}
	resp, err := s.send(ctx, http.MethodPost, s.loginPath, body, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	s.InvalidateCSRF()
	s.logger.InfoContext(ctx, "logged in", slog.String("username", s.username))
	return nil
}

// CSRFToken returns the cached anti-forgery token, priming it on first use.
func (s *Session) CSRFToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.csrfToken
	s.mu.Unlock()
	if token != "" {
		return token, nil
	}

	resp, err := s.send(ctx, http.MethodGet, s.csrfPath, nil, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.CSRFToken == "" {
		if err == nil {
			err = errors.New("empty csrfToken")
		}
		return "", &domain.NetworkError{Method: http.MethodGet, URL: s.resolve(s.csrfPath).String(), Err: fmt.Errorf("failed to decode anti-forgery token: %w", err)}
	}

	s.mu.Lock()
	s.csrfToken = payload.CSRFToken
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "anti-forgery token primed")
	return payload.CSRFToken, nil
}

// InvalidateCSRF drops the cached token so the next mutating call primes a new one.
func (s *Session) InvalidateCSRF() {
	s.mu.Lock()
	s.csrfToken = ""
	s.mu.Unlock()
}

// Do sends a JSON request to path. Mutating methods carry the anti-forgery
// token. A non-2xx answer is returned as a *domain.ValidationError (4xx) or
// *domain.NetworkError (5xx); the caller owns the body of a 2xx response.
func (s *Session) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return s.send(ctx, method, path, body, isMutating(method))
}

func (s *Session) send(ctx context.Context, method, path string, body any, mutating bool) (*http.Response, error) {
	target := s.resolve(path)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if mutating {
		token, err := s.CSRFToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set(s.csrfHeader, token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Method: method, URL: target.String(), Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	if mutating && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		s.InvalidateCSRF()
	}
	return nil, responseError(resp, method, target.String())
}

func (s *Session) resolve(path string) *url.URL {
	return s.base.JoinPath(strings.Trim(path, "/"))
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

// responseError maps a non-2xx response to the domain error taxonomy. The
// server's message is kept verbatim when it sends one.
func responseError(resp *http.Response, method, target string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := serverMessage(raw)

	if resp.StatusCode >= 500 {
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &domain.NetworkError{Method: method, URL: target, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	if msg == "" {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			msg = "session expired or not authenticated"
		case http.StatusForbidden:
			msg = "anti-forgery token or session rejected"
		default:
			msg = http.StatusText(resp.StatusCode)
		}
	}
	return &domain.ValidationError{StatusCode: resp.StatusCode, Message: msg}
}

func serverMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	return string(raw)
}
