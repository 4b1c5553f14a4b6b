package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaikyD/wc-tracking-service/internal/application"
	"github.com/RaikyD/wc-tracking-service/internal/domain"
	"github.com/RaikyD/wc-tracking-service/internal/repository"
	"github.com/RaikyD/wc-tracking-service/internal/timeline"
	"github.com/RaikyD/wc-tracking-service/internal/webhook"
)

const scenarioBody = `{"status":"completed","id":"123","date_created":"2024-01-01T00:00:00","shipping":{"city":"Rome","postcode":"00100","country":"IT"}}`

type brokenStore struct{}

func (brokenStore) Append(context.Context, []string) error {
	return errors.New("sheet unavailable")
}

func (brokenStore) ReadAll(context.Context) ([]domain.Record, error) {
	return nil, errors.New("sheet unavailable")
}

type fixture struct {
	router http.Handler
	store  *repository.MemoryStore
	svc    *application.OrdersService
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	store := repository.NewMemoryStore(domain.DefaultColumns)
	return newFixtureWithStore(t, store, secret, store)
}

func newFixtureWithStore(t *testing.T, store repository.RecordStore, secret string, mem *repository.MemoryStore) *fixture {
	t.Helper()
	builder := application.NewBuilder(application.BuilderConfig{TrackingBaseURL: "https://shop.example/track"})
	svc := application.NewOrdersService(store, builder, timeline.New(timeline.DefaultConfig()), domain.DefaultColumns, secret)
	svc.SetClock(func() time.Time { return time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC) })

	r := chi.NewRouter()
	NewOrdersHandler(svc).Register(r)
	MountStatic(r)
	return &fixture{router: r, store: mem, svc: svc}
}

func (f *fixture) do(t *testing.T, method, path, contentType, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestWebhookThenTrackAfter45Days(t *testing.T) {
	f := newFixture(t, "")

	rec, body := f.do(t, http.MethodPost, "/webhook", "application/json", scenarioBody, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", body["status"])

	link, _ := body["tracking_link"].(string)
	token := link[strings.LastIndex(link, "/")+1:]
	assert.Len(t, token, 8)
	assert.Equal(t, token, body["token"])

	rows := f.store.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "IT", rows[0][4])
	assert.Equal(t, "00100", rows[0][6])

	f.svc.SetClock(func() time.Time { return time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC) })
	rec, view := f.do(t, http.MethodGet, "/api/track/"+token, "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "delivered", view["status_label"])
	assert.Equal(t, float64(45), view["elapsed_days"])
	assert.Equal(t, "123", view["order_id"])
	assert.Equal(t, float64(3), view["step"])

	history := view["history"].([]any)
	first := history[0].(map[string]any)
	assert.Equal(t, "CONSEGNATO", first["label"])
	assert.Equal(t, "00100 IT", first["location"])
}

func TestWebhookIgnoredStatus(t *testing.T) {
	f := newFixture(t, "")
	body := strings.Replace(scenarioBody, `"completed"`, `"cancelled"`, 1)

	rec, out := f.do(t, http.MethodPost, "/webhook", "application/json", body, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ignored"}, out)
	assert.Empty(t, f.store.Rows())
}

func TestWebhookPingRegardlessOfSecret(t *testing.T) {
	for _, secret := range []string{"", "s3cret"} {
		f := newFixture(t, secret)
		rec, out := f.do(t, http.MethodPost, "/webhook", "application/x-www-form-urlencoded", "webhook_id=1", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"status": "ping acknowledged"}, out)
		assert.Empty(t, f.store.Rows())
	}
}

func TestWebhookSignature(t *testing.T) {
	f := newFixture(t, "s3cret")

	rec, out := f.do(t, http.MethodPost, "/webhook", "application/json", scenarioBody, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, out["error"])

	rec, _ = f.do(t, http.MethodPost, "/webhook", "application/json", "{nope", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/webhook", "application/json", scenarioBody,
		map[string]string{webhook.SignatureHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.store.Rows())

	rec, _ = f.do(t, http.MethodPost, "/webhook", "application/json", scenarioBody,
		map[string]string{webhook.SignatureHeader: webhook.Sign("s3cret", []byte(scenarioBody))})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.store.Rows(), 1)
}

func TestWebhookBadRequests(t *testing.T) {
	f := newFixture(t, "")
	for _, tc := range []struct{ ct, body string }{
		{"application/json", ""},
		{"application/json", "{nope"},
		{"application/json", "[1,2,3]"},
		{"text/plain", "just words"},
	} {
		rec, out := f.do(t, http.MethodPost, "/webhook", tc.ct, tc.body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.body)
		assert.NotEmpty(t, out["error"], tc.body)
	}
	assert.Empty(t, f.store.Rows())
}

func TestWebhookStoreFailure(t *testing.T) {
	f := newFixtureWithStore(t, brokenStore{}, "", nil)

	rec, out := f.do(t, http.MethodPost, "/webhook", "application/json", scenarioBody, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, out["error"], "sheet unavailable")

	rec, _ = f.do(t, http.MethodGet, "/api/track/abcd1234", "", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTrackNotFound(t *testing.T) {
	f := newFixture(t, "")
	rec, out := f.do(t, http.MethodGet, "/api/track/deadbeef", "", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, out["error"])
}

func TestTrackBlankTokenNotFound(t *testing.T) {
	f := newFixture(t, "")
	rec, _ := f.do(t, http.MethodPost, "/webhook", "application/json", scenarioBody, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out := f.do(t, http.MethodGet, "/api/track/%20", "", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, out["error"])
}

func TestInspect(t *testing.T) {
	f := newFixture(t, "")
	long := strings.Repeat("a", 800)
	rec, out := f.do(t, http.MethodPost, "/webhook-inspect", "text/plain", long, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", out["content_type"])
	assert.Equal(t, float64(800), out["length"])
	assert.Len(t, out["preview"], 500)
	assert.Equal(t, false, out["has_signature"])
}

func TestTrackingPageServed(t *testing.T) {
	f := newFixture(t, "")
	rec, _ := f.do(t, http.MethodGet, "/track/abcd1234", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/static/app.js")

	rec, _ = f.do(t, http.MethodGet, "/static/app.js", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/track/")
}

func TestHealth(t *testing.T) {
	f := newFixture(t, "")
	rec, out := f.do(t, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestCORSOnTrackingAPI(t *testing.T) {
	f := newFixture(t, "")
	r := chi.NewRouter()
	r.Use(CORS([]string{"https://shop.example"}))
	NewOrdersHandler(f.svc).Register(r)

	req := httptest.NewRequest(http.MethodGet, "/api/track/nothere", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/track/nothere", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/track/nothere", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDefaultsToAnyOrigin(t *testing.T) {
	r := chi.NewRouter()
	r.Use(CORS(nil))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
