// Package remote calls the hosted advice service.
package remote

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
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"fintech/internal/auth"
)

const (
	AuthPath   = "/api/advice/ai-response"
	PublicPath = "/api/advice/public-ai-response"
)

// ErrUnavailable wraps every failure to get an answer from the service.
var ErrUnavailable = errors.New("remote advisor unavailable")

// Request is the body posted to both advice endpoints.
type Request struct {
	Message      string `json:"message"`
	// Timestamp is Unix milliseconds.
	Timestamp    int64  `json:"timestamp"`
	ForceRefresh bool   `json:"force_refresh"`
}

// Response is the success body of both advice endpoints.
type Response struct {
	Response string `json:"response"`
}

type Config struct {
	BaseURL     string
	Token       string
	AllowPublic bool
	HTTPClient  *http.Client
}

// Client asks the advice service. Concurrent identical questions share one
// round trip.
type Client struct {
	baseURL     string
	token       string
	allowPublic bool
	http        *http.Client
	group       singleflight.Group
	now         func() time.Time
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.Token,
		allowPublic: cfg.AllowPublic,
		http:        hc,
		now:         time.Now,
	}
}

// Enabled reports whether a base URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Advise returns the service's answer to message. The authenticated endpoint
// is tried first when a fresh token is configured, then the public one.
func (c *Client) Advise(ctx context.Context, message string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("%w: no base URL", ErrUnavailable)
	}
	v, err, _ := c.group.Do(message, func() (interface{}, error) {
		return c.advise(ctx, message)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) advise(ctx context.Context, message string) (string, error) {
	var errs []error

	if c.token != "" && !auth.Expired(c.token, c.now()) {
		answer, err := c.post(ctx, AuthPath, message, c.token)
		if err == nil {
			return answer, nil
		}
		slog.WarnContext(ctx, "Authenticated advice request failed", "error", err)
		errs = append(errs, err)
	} else if c.token != "" {
		slog.DebugContext(ctx, "Skipping authenticated advice endpoint, token expired")
	}

	if !c.allowPublic {
		errs = append(errs, errors.New("public endpoint disabled"))
		return "", fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
	}

	answer, err := c.post(ctx, PublicPath, message, "")
	if err != nil {
		errs = append(errs, err)
		return "", fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
	}
	return answer, nil
}

func (c *Client) post(ctx context.Context, path, message, token string) (string, error) {
	now := c.now()
	body, err := json.Marshal(Request{
		Message:      message,
		Timestamp:    now.UnixMilli(),
		ForceRefresh: true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + path + "?nocache=" + strconv.FormatInt(now.UnixMilli(), 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Expires", "0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("post %s: status %d", path, resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode %s response: %w", path, err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("post %s: empty response", path)
	}
	return out.Response, nil
}
