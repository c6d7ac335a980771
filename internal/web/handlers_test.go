package web

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/evcraddock/staylist/internal/cache"
	"github.com/evcraddock/staylist/internal/db"
	"github.com/evcraddock/staylist/internal/listing"
	"github.com/evcraddock/staylist/internal/metrics"
)

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	r := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q, want application/json", ct)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q, want status ok", w.Body.String())
	}
}

func TestHandleListEmpty(t *testing.T) {
	srv := testServer(t)

	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "No properties listed yet.") {
		t.Error("expected empty state message")
	}
}

func TestHandleListWithProperties(t *testing.T) {
	srv, d := testServerWithDB(t, Options{})
	insertTestProperty(t, d, "Villa Arrecife")
	insertTestProperty(t, d, "Mountain Cabin")

	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if n := strings.Count(body, `<article class="card">`); n != 2 {
		t.Errorf("got %d cards, want 2", n)
	}
	if !strings.Contains(body, `href="/property/Villa%20Arrecife"`) {
		t.Error("expected detail link routed by name")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content-type = %q, want text/html", ct)
	}
}

func TestHandleDetail(t *testing.T) {
	srv, d := testServerWithDB(t, Options{})
	insertTestProperty(t, d, "Villa Arrecife")

	r := httptest.NewRequest("GET", "/property/Villa%20Arrecife", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	for _, s := range []string{
		`<h1 class="detail-name">Villa Arrecife</h1>`,
		"What this place offers",
		"Guest Reviews",
		`<span class="price">$3200</span><span class="per-night">/night</span>`,
	} {
		if !strings.Contains(body, s) {
			t.Errorf("expected %q in detail page", s)
		}
	}
}

func TestHandleDetailEscapedSlash(t *testing.T) {
	srv, d := testServerWithDB(t, Options{})
	insertTestProperty(t, d, "Loft 2/B")

	p := &listing.Property{Name: "Loft 2/B"}
	r := httptest.NewRequest("GET", p.DetailPath(), nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Loft 2/B") {
		t.Error("expected property name in detail page")
	}
}

func TestHandleDetailNotFound(t *testing.T) {
	srv := testServer(t)

	r := httptest.NewRequest("GET", "/property/Nowhere", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Property data not available") {
		t.Error("expected fallback message")
	}
	if strings.Contains(body, "Property Details") {
		t.Error("expected no detail layout in fallback")
	}
}

func TestHandleBooking(t *testing.T) {
	srv := testServer(t)

	r := httptest.NewRequest("GET", "/booking", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestStaticFiles(t *testing.T) {
	srv := testServer(t)

	r := httptest.NewRequest("GET", "/static/style.css", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "css") {
		t.Errorf("content-type = %q, want css", w.Header().Get("Content-Type"))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := testServerWithDB(t, Options{Registry: metrics.NewRegistry()})

	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "staylist_http_requests_total") {
		t.Error("expected request counter in metrics output")
	}
}

func TestMetricsEndpointDisabled(t *testing.T) {
	srv := testServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestDetailPageCache(t *testing.T) {
	mr := miniredis.RunT(t)
	pages := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = pages.Close() })

	srv, d := testServerWithDB(t, Options{Pages: pages, CacheTTL: time.Minute})
	insertTestProperty(t, d, "Villa Arrecife")

	first := httptest.NewRecorder()
	srv.ServeHTTP(first, httptest.NewRequest("GET", "/property/Villa%20Arrecife", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", first.Code, http.StatusOK)
	}

	cached, ok, err := pages.Get(context.Background(), "detail:Villa Arrecife")
	if err != nil || !ok {
		t.Fatalf("expected cached page, ok=%v err=%v", ok, err)
	}
	if string(cached) != first.Body.String() {
		t.Error("cached page differs from response")
	}
	if ttl := mr.TTL("staylist:page:detail:Villa Arrecife"); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}

	// Served from cache even after the row is gone
	if _, err := d.Exec("DELETE FROM properties"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	second := httptest.NewRecorder()
	srv.ServeHTTP(second, httptest.NewRequest("GET", "/property/Villa%20Arrecife", nil))
	if second.Code != http.StatusOK || second.Body.String() != first.Body.String() {
		t.Errorf("expected cached response, got status %d", second.Code)
	}
}

func TestDetailNotFoundNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	pages := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = pages.Close() })

	srv, _ := testServerWithDB(t, Options{Pages: pages, CacheTTL: time.Minute})

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/property/Nowhere", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if len(mr.Keys()) != 0 {
		t.Errorf("expected nothing cached, got keys %v", mr.Keys())
	}
}

func TestDetailCacheDownFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	pages := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = pages.Close() })
	mr.Close()

	srv, d := testServerWithDB(t, Options{Pages: pages, CacheTTL: time.Minute})
	insertTestProperty(t, d, "Villa Arrecife")

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/property/Villa%20Arrecife", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

// test helpers

func testServer(t *testing.T) *Server {
	t.Helper()
	srv, _ := testServerWithDB(t, Options{})
	return srv
}

func testServerWithDB(t *testing.T, opts Options) (*Server, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	srv, err := NewServer(d, opts)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	return srv, d
}

func insertTestProperty(t *testing.T, d *sql.DB, name string) {
	t.Helper()
	p := &listing.Property{
		Name:     name,
		Address:  listing.Address{City: "Punta Cana", State: "La Altagracia", Country: "Dominican Republic"},
		Rating:   4.5,
		Category: []string{"Pool", "WiFi"},
		Price:    3200,
		Offers:   listing.Offers{Bed: "3", Shower: "2", Occupants: "6"},
		Discount: "10% OFF",
		Reviews:  []listing.Review{{Name: "Ana", Rating: 5, Comment: "Lovely"}},
	}
	if _, err := listing.NewRepository(d).Upsert(context.Background(), p); err != nil {
		t.Fatalf("insert test property: %v", err)
	}
}
