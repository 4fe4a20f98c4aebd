package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hotspot-voucher-manager/internal/domain"
	"hotspot-voucher-manager/internal/domain/model"
	"hotspot-voucher-manager/internal/infra/api"
	"hotspot-voucher-manager/internal/infra/storage"
	"hotspot-voucher-manager/internal/usecase"
)

// memKV is an in-memory KeyValue for wiring the real repos without disk.
type memKV struct {
	mu       sync.Mutex
	data     map[string]string
	failFull bool
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFull {
		return domain.ErrStorageFull
	}
	m.data[key] = string(value)
	return nil
}

func (m *memKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memKV) Close() error { return nil }

func newTestServer(t *testing.T, kv *memKV) *chi.Mux {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	bundleUC := usecase.NewBundleUseCase(storage.NewBundleRepo(kv, &logger), &logger)
	voucherUC := usecase.NewVoucherUseCase(storage.NewVoucherRepo(kv, &logger), bundleUC, 50, &logger)
	if err := bundleUC.Load(ctx); err != nil {
		t.Fatalf("load bundles: %v", err)
	}
	if err := voucherUC.Load(ctx); err != nil {
		t.Fatalf("load vouchers: %v", err)
	}

	r := chi.NewRouter()
	api.NewServer(voucherUC, bundleUC, &logger).Register(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createBatch(t *testing.T, r http.Handler, bundleID string, count int) []model.Voucher {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/v1/vouchers", map[string]any{"bundleId": bundleID, "count": count})
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d, body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Items []model.Voucher `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Items
}

func TestVouchers_CreateBatch(t *testing.T) {
	t.Run("valid batch returns 201 with items", func(t *testing.T) {
		r := newTestServer(t, newMemKV())
		items := createBatch(t, r, "b1", 3)
		if len(items) != 3 {
			t.Fatalf("want 3 items, got %d", len(items))
		}
		for _, v := range items {
			if v.Status != model.VoucherStatusAvailable {
				t.Errorf("voucher %s not available", v.ID)
			}
		}
	})

	t.Run("unknown bundle returns 404 and creates nothing", func(t *testing.T) {
		r := newTestServer(t, newMemKV())
		rec := doJSON(t, r, http.MethodPost, "/api/v1/vouchers", map[string]any{"bundleId": "nope", "count": 3})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", rec.Code)
		}
		rec = doJSON(t, r, http.MethodGet, "/api/v1/vouchers", nil)
		if !strings.Contains(rec.Body.String(), `"items":[]`) {
			t.Fatalf("collection should be empty, body=%s", rec.Body.String())
		}
	})

	t.Run("out-of-policy count returns 400", func(t *testing.T) {
		r := newTestServer(t, newMemKV())
		rec := doJSON(t, r, http.MethodPost, "/api/v1/vouchers", map[string]any{"bundleId": "b1", "count": 51})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		r := newTestServer(t, newMemKV())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/vouchers", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})

	t.Run("full store returns 507", func(t *testing.T) {
		kv := newMemKV()
		r := newTestServer(t, kv)
		kv.failFull = true
		rec := doJSON(t, r, http.MethodPost, "/api/v1/vouchers", map[string]any{"bundleId": "b1", "count": 1})
		if rec.Code != http.StatusInsufficientStorage {
			t.Fatalf("want 507, got %d", rec.Code)
		}
	})
}

func TestVouchers_Lifecycle(t *testing.T) {
	r := newTestServer(t, newMemKV())
	items := createBatch(t, r, "b2", 2)

	t.Run("activate stamps the window", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/v1/vouchers/"+items[0].ID+"/activate", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d, body=%s", rec.Code, rec.Body.String())
		}
		var v model.Voucher
		if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if v.Status != model.VoucherStatusActive || v.ActivatedAt == nil || v.ExpiresAt == nil {
			t.Fatalf("activation incomplete: %+v", v)
		}
		if *v.ExpiresAt-*v.ActivatedAt != 21_600_000 {
			t.Fatalf("expected a 360-minute window, got %d ms", *v.ExpiresAt-*v.ActivatedAt)
		}
	})

	t.Run("second activation returns 409", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/v1/vouchers/"+items[0].ID+"/activate", nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("want 409, got %d", rec.Code)
		}
	})

	t.Run("mark used", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/v1/vouchers/"+items[1].ID+"/use", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/v1/vouchers?status=used", nil)
		var body struct {
			Items []model.Voucher `json:"items"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Items) != 1 || body.Items[0].ID != items[1].ID {
			t.Fatalf("filter mismatch: %+v", body.Items)
		}
	})

	t.Run("unknown status filter returns 400", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/v1/vouchers?status=bogus", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})

	t.Run("stats reflect both transitions", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/v1/stats", nil)
		var stats usecase.Stats
		if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if stats.Active != 1 || stats.Used != 1 || stats.Available != 0 {
			t.Fatalf("stats mismatch: %+v", stats)
		}
		if stats.TotalRevenue != 1000 { // two b2 vouchers left Available
			t.Fatalf("want revenue 1000, got %d", stats.TotalRevenue)
		}
	})

	t.Run("delete then 404", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodDelete, "/api/v1/vouchers/"+items[1].ID, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("want 204, got %d", rec.Code)
		}
		rec = doJSON(t, r, http.MethodDelete, "/api/v1/vouchers/"+items[1].ID, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", rec.Code)
		}
	})
}

func TestVouchers_ClearEndpoints(t *testing.T) {
	r := newTestServer(t, newMemKV())
	items := createBatch(t, r, "b1", 3)
	doJSON(t, r, http.MethodPost, "/api/v1/vouchers/"+items[0].ID+"/use", nil)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/vouchers/clear-expired", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"removed":0`) {
		t.Fatalf("clear-expired: got %d, body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/api/v1/vouchers/clear-used", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"removed":1`) {
		t.Fatalf("clear-used: got %d, body=%s", rec.Code, rec.Body.String())
	}
}

func TestBundles_Endpoints(t *testing.T) {
	r := newTestServer(t, newMemKV())

	t.Run("list returns the default catalog", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/v1/bundles", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		var body struct {
			Items []model.Bundle `json:"items"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Items) != 4 {
			t.Fatalf("want 4 bundles, got %d", len(body.Items))
		}
	})

	t.Run("put edits a bundle", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/api/v1/bundles/b1",
			map[string]any{"name": "SAA 1 PROMO", "durationMinutes": 60, "price": 150})
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d, body=%s", rec.Code, rec.Body.String())
		}
	})

	t.Run("put rejects invalid fields", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/api/v1/bundles/b1",
			map[string]any{"name": "", "durationMinutes": 60, "price": 150})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})
}

func TestPrintSheet(t *testing.T) {
	r := newTestServer(t, newMemKV())
	items := createBatch(t, r, "b1", 2)
	doJSON(t, r, http.MethodPost, "/api/v1/vouchers/"+items[0].ID+"/use", nil)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/print", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("want text/plain, got %s", ct)
	}
	body := rec.Body.String()
	if strings.Contains(body, items[0].Code) {
		t.Error("used voucher must not be on the print sheet")
	}
	if !strings.Contains(body, items[1].Code) {
		t.Error("available voucher missing from the print sheet")
	}
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestServer(t, newMemKV())
	rec := doJSON(t, r, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected an X-Request-Id header on every response")
	}
}
