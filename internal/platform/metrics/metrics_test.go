package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMiddlewareLabelsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/customers/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ids := []string{
		"6a1f0a7e-93b4-4f6d-9a20-59c4f3a1b001",
		"6a1f0a7e-93b4-4f6d-9a20-59c4f3a1b002",
	}
	for _, id := range ids {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/"+id, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request for %s: status = %d", id, rec.Code)
		}
	}

	scrape := httptest.NewRecorder()
	Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(scrape.Body)
	if err != nil {
		t.Fatalf("read scrape: %v", err)
	}

	out := string(body)
	for _, id := range ids {
		if strings.Contains(out, id) {
			t.Fatalf("scrape contains raw path parameter %s", id)
		}
	}
	want := `crm_http_requests_total{method="GET",path="/customers/{id}",status="200"} 2`
	if !strings.Contains(out, want) {
		t.Fatalf("scrape missing single pattern series %q", want)
	}
}

func TestMiddlewareUnmatchedPath(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/known", func(w http.ResponseWriter, _ *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope/whatever", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	scrape := httptest.NewRecorder()
	Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(scrape.Body)
	if err != nil {
		t.Fatalf("read scrape: %v", err)
	}
	if strings.Contains(string(body), `path="/nope/whatever"`) {
		t.Fatalf("unmatched path leaked into labels")
	}
}
