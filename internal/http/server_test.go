package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fintech/internal/assistant"
	"fintech/internal/auth"
	"fintech/internal/core"
	applog "fintech/internal/log"
	"fintech/internal/remote"
	"fintech/internal/services"
	"fintech/internal/store"
)

const testSecret = "test-secret"

type testEnv struct {
	srv       *Server
	store     store.Store
	assistant *assistant.Assistant
}

func newTestEnv(t *testing.T, mutate ...func(*Options)) *testEnv {
	t.Helper()
	st := store.NewMemory()
	require.NoError(t, store.Seed(context.Background(), st, true))

	a := assistant.New(assistant.Options{Store: st, Summary: core.DefaultSummary()})
	opts := Options{
		Store:              st,
		Expenses:           services.NewExpenseService(st, nil),
		Assistant:          a,
		Sessions:           assistant.NewSessions(a, 16, time.Minute),
		JWTSecret:          testSecret,
		RateLimitPerMinute: 1000,
		Logger:             applog.New(applog.Config{Output: io.Discard}),
	}
	for _, m := range mutate {
		m(&opts)
	}
	srv := NewServer(opts)
	t.Cleanup(srv.limiter.Stop)
	return &testEnv{srv: srv, store: st, assistant: a}
}

func (e *testEnv) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/readyz", "").Code)

	down := newTestEnv(t, func(o *Options) {
		o.Ping = func(context.Context) error { return errors.New("db down") }
	})
	rec := down.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestAdviceEndpoints(t *testing.T) {
	env := newTestEnv(t)
	body := `{"message":"vergi indirimi","timestamp":1700000000000,"force_refresh":true}`

	rec := env.do(t, http.MethodPost, "/api/advice/ai-response", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	tok, err := auth.GenerateToken(testSecret, "tester", time.Hour)
	require.NoError(t, err)
	rec = env.do(t, http.MethodPost, "/api/advice/ai-response", body, "Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	want, err := env.assistant.Local(context.Background(), "vergi indirimi")
	require.NoError(t, err)
	assert.Equal(t, want.Text, decodeBody[remote.Response](t, rec).Response)

	rec = env.do(t, http.MethodPost, "/api/advice/public-ai-response", body)
	require.Equal(t, http.StatusOK, rec.Code)
	anon, err := env.assistant.Anonymous("vergi indirimi")
	require.NoError(t, err)
	assert.Equal(t, anon.Text, decodeBody[remote.Response](t, rec).Response)

	rec = env.do(t, http.MethodPost, "/api/advice/public-ai-response", `{"message":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/advice/public-ai-response", `{"message":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListExpensesPageBeyondRange(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/expenses?page=9223372036854775807&page_size=2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[services.ListResult](t, rec)
	assert.Empty(t, res.Items)
	assert.Equal(t, 10, res.Total)
	assert.Equal(t, 5, res.Pages)
}

func TestAdviceAcceptsRemoteClient(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.srv.Handler)
	defer ts.Close()

	rec := env.do(t, http.MethodPost, "/api/advice/public-ai-response",
		`{"message":"aylık gelirim","timestamp":1700000000000,"force_refresh":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// the client half of the contract talks to this server unchanged
	tok, err := auth.GenerateToken(testSecret, "tester", time.Hour)
	require.NoError(t, err)
	c := remote.NewClient(remote.Config{BaseURL: ts.URL, Token: tok})
	got, err := c.Advise(context.Background(), "aylık gelirim")
	require.NoError(t, err)
	want, err := env.assistant.Local(context.Background(), "aylık gelirim")
	require.NoError(t, err)
	assert.Equal(t, want.Text, got)
}

func TestChatKeepsSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat", `{"message":"bu ay ne kadar harcadım"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeBody[chatResponse](t, rec)
	_, err := uuid.Parse(first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, rec.Header().Get(HeaderChatSession))
	assert.Equal(t, assistant.SourceLocal, first.Source)
	assert.NotEmpty(t, first.Text)

	rec = env.do(t, http.MethodPost, "/api/chat", `{"message":"tasarruf"}`, HeaderChatSession, first.SessionID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.SessionID, decodeBody[chatResponse](t, rec).SessionID)

	rec = env.do(t, http.MethodPost, "/api/chat", `{"message":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/chat/"+first.SessionID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, env.srv.sessions.Len(), "only the session from the empty message remains")
}

func TestListExpenses(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantTotal int
		wantIDs   []int64
	}{
		{name: "default page", query: "", wantCode: 200, wantTotal: 10, wantIDs: []int64{10, 9, 8, 7, 6}},
		{name: "second page", query: "?page=2", wantCode: 200, wantTotal: 10, wantIDs: []int64{5, 4, 3, 2, 1}},
		{name: "category", query: "?category=Market&sort=date:asc", wantCode: 200, wantTotal: 2, wantIDs: []int64{1, 6}},
		{name: "amount range", query: "?min=100&max=200&sort=amount", wantCode: 200, wantTotal: 3, wantIDs: []int64{10, 1, 7}},
		{name: "tax flag", query: "?tax=true&page_size=10", wantCode: 200, wantTotal: 4, wantIDs: []int64{10, 7, 4, 2}},
		{name: "bad sort", query: "?sort=colour", wantCode: 400},
		{name: "bad date", query: "?from=yesterday", wantCode: 400},
		{name: "bad page", query: "?page=0", wantCode: 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/expenses"+tt.query, "")
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != 200 {
				assert.NotEmpty(t, decodeBody[errorBody](t, rec).Error)
				return
			}
			res := decodeBody[services.ListResult](t, rec)
			assert.Equal(t, tt.wantTotal, res.Total)
			var ids []int64
			for _, e := range res.Items {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids[:min(len(ids), len(tt.wantIDs))])
		})
	}
}

func TestExpenseCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/expenses", `{"date":"2023-06-01","amount":"42.10","category":"Sağlık","description":"Vitamin"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[core.Expense](t, rec)
	assert.Equal(t, int64(11), created.ID)
	assert.True(t, created.IsTaxDeductible, "automatic tax rule applies to allowed categories")
	assert.Equal(t, "/api/expenses/11", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/api/expenses/11", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodeBody[core.Expense](t, rec))

	rec = env.do(t, http.MethodPut, "/api/expenses/11", `{"date":"2023-06-01","amount":50,"category":"Market","description":"Vitamin"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decodeBody[core.Expense](t, rec).IsTaxDeductible)

	rec = env.do(t, http.MethodDelete, "/api/expenses/11", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/expenses/11", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/expenses/11", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/expenses/abc", "").Code)

	invalid := []string{
		`{"date":"2023-06-01","amount":0,"category":"Market","description":"x"}`,
		`{"date":"2023-06-01","amount":"abc","category":"Market","description":"x"}`,
		`{"date":"01/06/2023","amount":1,"category":"Market","description":"x"}`,
		`{"date":"2023-06-01","amount":1,"category":"","description":"x"}`,
		`{"date":"2023-06-01","amount":1,"category":"Market","description":"  "}`,
	}
	for _, body := range invalid {
		rec := env.do(t, http.MethodPost, "/api/expenses", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
	}
}

func TestExpenseSummary(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/expenses/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decodeBody[services.ExpenseSummary](t, rec)
	assert.Equal(t, 10, sum.Count)
	assert.Equal(t, int64(221664), sum.Total.Cents)
	assert.Equal(t, int64(59575), sum.TaxDeductible.Cents)
}

func TestTaxSummaryEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/expenses/tax-summary", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sum := decodeBody[services.TaxSummary](t, rec)
	assert.Equal(t, 4, sum.Count)
	assert.Equal(t, int64(59575), sum.Total.Cents)
	assert.Equal(t, int64(10724), sum.EstimatedSaving.Cents)
	require.Len(t, sum.Categories, 3)

	rec = env.do(t, http.MethodGet, "/api/expenses/tax-summary?from=2023-05-05&to=2023-05-15", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(37000), decodeBody[services.TaxSummary](t, rec).Total.Cents)

	rec = env.do(t, http.MethodGet, "/api/expenses/tax-summary?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinancialHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/advice/financial-health", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := auth.GenerateToken(testSecret, "tester", time.Hour)
	require.NoError(t, err)
	rec = env.do(t, http.MethodGet, "/api/advice/financial-health", "", "Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[financialHealthResponse](t, rec)
	assert.Equal(t, core.AnalyzeHealth(core.DefaultSummary()), resp.Health)
	require.NotEmpty(t, resp.ExpenseCategories)
	assert.Equal(t, "Market", resp.ExpenseCategories[0].Name)
	assert.Len(t, resp.Budgets, 5)
	assert.Len(t, resp.Goals, 3)
}

func TestTaxEstimateEndpoint(t *testing.T) {
	env := newTestEnv(t)
	tok, err := auth.GenerateToken(testSecret, "tester", time.Hour)
	require.NoError(t, err)
	get := func(path string) *httptest.ResponseRecorder {
		return env.do(t, http.MethodGet, path, "", "Authorization", "Bearer "+tok)
	}

	rec := get("/api/advice/tax-estimate?year=2023")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[taxEstimateResponse](t, rec)
	assert.Equal(t, 2023, resp.Year)
	assert.Equal(t, int64(59575), resp.Deductions.Total.Cents)
	assert.Equal(t, int64(16200000), resp.IncomeTax.AnnualIncome.Cents)
	assert.Equal(t, int64(16140425), resp.IncomeTax.TaxableIncome.Cents)
	// 4800 + 7600 + 91404.25 at 27%
	assert.Equal(t, int64(3707915), resp.IncomeTax.TotalTax.Cents)

	rec = get("/api/advice/tax-estimate?year=2022")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeBody[taxEstimateResponse](t, rec)
	assert.Zero(t, resp.Deductions.Count)
	assert.Equal(t, resp.IncomeTax.AnnualIncome, resp.IncomeTax.TaxableIncome)

	assert.Equal(t, http.StatusBadRequest, get("/api/advice/tax-estimate?year=last").Code)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/expenses/export.csv?category=Faturalar&sort=date:asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"4", "2023-05-05", "Faturalar", "Elektrik faturası", "250", "true"}, rows[1])
}

func TestExportXLSX(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/expenses/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 11)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "10", rows[1][0], "newest first")
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/settings/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]core.Category](t, rec), len(core.DefaultCategories()))

	rec = env.do(t, http.MethodPut, "/api/settings/categories", `[{"name":"Market"},{"name":"market"}]`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = env.do(t, http.MethodPut, "/api/settings/categories", `[{"name":"Market"},{"name":"Spor","color":"#000"}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	cats, err := store.Categories(context.Background(), env.store)
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	rec = env.do(t, http.MethodGet, "/api/settings/tax", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[core.TaxSettings](t, rec).AutomaticTaxCalculation)
	rec = env.do(t, http.MethodPut, "/api/settings/tax", `{"allowedCategories":["Spor"],"defaultTaxRate":150}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = env.do(t, http.MethodPut, "/api/settings/tax", `{"allowedCategories":["Spor"],"defaultTaxRate":20,"automaticTaxCalculation":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ts, err := store.TaxSettings(context.Background(), env.store)
	require.NoError(t, err)
	assert.True(t, ts.Allows("Spor"))

	rec = env.do(t, http.MethodPut, "/api/settings/general", `{"language":"de"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = env.do(t, http.MethodPut, "/api/settings/general", `{"language":"en"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	gs := decodeBody[core.GeneralSettings](t, rec)
	assert.Equal(t, "YYYY-MM-DD", gs.DateFormat)
	assert.Equal(t, "light", gs.Theme)
}

func TestRateLimitOnWrites(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.RateLimitPerMinute = 1 })

	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, "/api/chat", `{"message":""}`).Code)
	rec := env.do(t, http.MethodPost, "/api/chat", `{"message":""}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/expenses", "").Code, "reads are not limited")
}

func TestChatSocket(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.srv.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "session", hello["type"])
	sessionID, _ := hello["session_id"].(string)
	_, err = uuid.Parse(sessionID)
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("   ")))
	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame["type"])

	require.NoError(t, conn.WriteJSON(chatRequest{Message: "tasarruf"}))
	frame = nil
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "reply", frame["type"])
	assert.Equal(t, sessionID, frame["session_id"])
	assert.NotEmpty(t, frame["text"])
	assert.Equal(t, "local", frame["source"])

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return env.srv.sessions.Len() == 0 }, 2*time.Second, 10*time.Millisecond,
		"closing the socket dismisses the session")
}

func TestChatSocketRenewsExpiredSession(t *testing.T) {
	env := newTestEnv(t, func(o *Options) {
		o.Sessions = assistant.NewSessions(o.Assistant, 16, 100*time.Millisecond)
	})
	ts := httptest.NewServer(env.srv.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))
	first, _ := hello["session_id"].(string)

	time.Sleep(250 * time.Millisecond)
	env.srv.sessions.Cleaner().CleanExpired()

	require.NoError(t, conn.WriteJSON(chatRequest{Message: "tasarruf"}))
	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "session", frame["type"])
	renewed, _ := frame["session_id"].(string)
	assert.NotEqual(t, first, renewed)

	frame = nil
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "reply", frame["type"])
	assert.Equal(t, renewed, frame["session_id"])
	assert.NotEmpty(t, frame["text"])
}

func TestShutdownIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, env.srv.Shutdown(ctx))
	assert.NoError(t, env.srv.Shutdown(ctx))
}
