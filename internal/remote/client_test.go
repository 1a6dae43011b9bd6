package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintech/internal/auth"
)

type fakeAdvisor struct {
	authStatus   int
	publicStatus int
	authHits     atomic.Int32
	publicHits   atomic.Int32
	mu           sync.Mutex
	lastBody     Request
	lastRaw      map[string]any
	delay        time.Duration
}

func (f *fakeAdvisor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("nocache") == "" {
		http.Error(w, "missing nocache", http.StatusBadRequest)
		return
	}
	raw, _ := io.ReadAll(r.Body)
	var body Request
	_ = json.Unmarshal(raw, &body)
	var fields map[string]any
	_ = json.Unmarshal(raw, &fields)
	f.mu.Lock()
	f.lastBody = body
	f.lastRaw = fields
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}

	switch r.URL.Path {
	case AuthPath:
		f.authHits.Add(1)
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.authStatus != 0 {
			w.WriteHeader(f.authStatus)
			return
		}
		json.NewEncoder(w).Encode(Response{Response: "auth answer"})
	case PublicPath:
		f.publicHits.Add(1)
		if f.publicStatus != 0 {
			w.WriteHeader(f.publicStatus)
			return
		}
		json.NewEncoder(w).Encode(Response{Response: "public answer"})
	default:
		http.NotFound(w, r)
	}
}

func validToken(t *testing.T) string {
	t.Helper()
	tok, err := auth.GenerateToken("secret", "dev", time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAdviseAuthenticated(t *testing.T) {
	fake := &fakeAdvisor{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: validToken(t), AllowPublic: true})
	got, err := c.Advise(context.Background(), "bu ay ne kadar harcadım")
	require.NoError(t, err)

	assert.Equal(t, "auth answer", got)
	assert.EqualValues(t, 1, fake.authHits.Load())
	assert.EqualValues(t, 0, fake.publicHits.Load())
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "bu ay ne kadar harcadım", fake.lastBody.Message)
	assert.True(t, fake.lastBody.ForceRefresh)
	assert.NotEmpty(t, fake.lastBody.Timestamp)
}

func TestAdviseSendsMillisecondTimestamp(t *testing.T) {
	fake := &fakeAdvisor{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	at := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	c := NewClient(Config{BaseURL: srv.URL, AllowPublic: true})
	c.now = func() time.Time { return at }
	_, err := c.Advise(context.Background(), "aylık gelirim")
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, at.UnixMilli(), fake.lastBody.Timestamp)
	ts, ok := fake.lastRaw["timestamp"].(float64)
	require.True(t, ok, "timestamp must be a JSON number, got %T", fake.lastRaw["timestamp"])
	assert.Equal(t, float64(1700000000000), ts)
	assert.Equal(t, true, fake.lastRaw["force_refresh"])
}

func TestAdviseFallsBackToPublic(t *testing.T) {
	fake := &fakeAdvisor{authStatus: http.StatusInternalServerError}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: validToken(t), AllowPublic: true})
	got, err := c.Advise(context.Background(), "merhaba")
	require.NoError(t, err)

	assert.Equal(t, "public answer", got)
	assert.EqualValues(t, 1, fake.authHits.Load())
	assert.EqualValues(t, 1, fake.publicHits.Load())
}

func TestAdviseExpiredTokenSkipsAuthEndpoint(t *testing.T) {
	fake := &fakeAdvisor{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	tok, err := auth.GenerateToken("secret", "dev", time.Minute)
	require.NoError(t, err)

	c := NewClient(Config{BaseURL: srv.URL, Token: tok, AllowPublic: true})
	c.now = func() time.Time { return time.Now().Add(time.Hour) }

	got, err := c.Advise(context.Background(), "merhaba")
	require.NoError(t, err)
	assert.Equal(t, "public answer", got)
	assert.EqualValues(t, 0, fake.authHits.Load())
}

func TestAdviseErrors(t *testing.T) {
	tests := []struct {
		name        string
		fake        *fakeAdvisor
		token       bool
		allowPublic bool
	}{
		{"both endpoints fail", &fakeAdvisor{authStatus: 500, publicStatus: 502}, true, true},
		{"public disabled and no token", &fakeAdvisor{}, false, false},
		{"auth fails and public disabled", &fakeAdvisor{authStatus: 500}, true, false},
		{"public fails without token", &fakeAdvisor{publicStatus: 503}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.fake)
			defer srv.Close()

			cfg := Config{BaseURL: srv.URL, AllowPublic: tt.allowPublic}
			if tt.token {
				cfg.Token = validToken(t)
			}
			_, err := NewClient(cfg).Advise(context.Background(), "merhaba")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestAdviseTimeout(t *testing.T) {
	fake := &fakeAdvisor{delay: time.Second}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, AllowPublic: true})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Advise(ctx, "merhaba")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAdviseEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response":"  "}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL, AllowPublic: true}).Advise(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAdviseDisabled(t *testing.T) {
	c := NewClient(Config{})
	assert.False(t, c.Enabled())
	_, err := c.Advise(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}
