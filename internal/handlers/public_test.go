package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"autovitrine/internal/catalog"
	"autovitrine/internal/events"
	"autovitrine/internal/models"
)

// newPublicRouter mounts the public handlers over the embedded dataset,
// without a query cache.
func newPublicRouter(t *testing.T, hub *events.Hub) *chi.Mux {
	t.Helper()
	src, err := catalog.NewLocalSource()
	if err != nil {
		t.Fatalf("NewLocalSource: %v", err)
	}
	pub := NewPublic(catalog.NewService(src), nil, hub)

	r := chi.NewRouter()
	r.Get("/api/v1/categories", pub.Categories)
	r.Get("/api/v1/products", pub.Products)
	r.Get("/api/v1/products/{slug}", pub.Product)
	r.Get("/api/v1/products/{slug}/related", pub.Related)
	r.Get("/api/v1/tags", pub.Tags)
	r.Get("/api/v1/events/products", pub.Events)
	return r
}

func getJSON(t *testing.T, router *chi.Mux, path string, into any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec
}

func TestPublicCategories(t *testing.T) {
	router := newPublicRouter(t, nil)

	var resp struct {
		Data []models.Category `json:"data"`
	}
	rec := getJSON(t, router, "/api/v1/categories", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(resp.Data) != 5 {
		t.Fatalf("got %d categories, want 5", len(resp.Data))
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestPublicProductsListsOnlyVisible(t *testing.T) {
	router := newPublicRouter(t, nil)

	var list models.ProductList
	rec := getJSON(t, router, "/api/v1/products", &list)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(list.Data) != 9 {
		t.Fatalf("got %d products, want 9 visible", len(list.Data))
	}
	for _, p := range list.Data {
		if !p.IsVisible {
			t.Errorf("hidden product %s in public listing", p.Slug)
		}
	}
}

func TestPublicProductsFilters(t *testing.T) {
	router := newPublicRouter(t, nil)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"category", "?category=jantes", []string{"jante-alu-sport-18", "jante-racing-19"}},
		{"featured", "?featured=true", []string{"phare-led-x1", "jante-racing-19", "becquet-carbone"}},
		{"tags union", "?tags=tapis,carbone", []string{"tapis-caoutchouc-premium", "becquet-carbone"}},
		{"search", "?search=jante", []string{"jante-alu-sport-18", "jante-racing-19", "kit-nettoyage-jantes"}},
		{"unknown category", "?category=moteur", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list models.ProductList
			rec := getJSON(t, router, "/api/v1/products"+tt.query, &list)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			got := make(map[string]bool, len(list.Data))
			for _, p := range list.Data {
				got[p.Slug] = true
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d products %v, want %d", len(got), got, len(tt.want))
			}
			for _, slug := range tt.want {
				if !got[slug] {
					t.Errorf("missing %s", slug)
				}
			}
		})
	}
}

func TestPublicProductsPagination(t *testing.T) {
	router := newPublicRouter(t, nil)

	var list models.ProductList
	rec := getJSON(t, router, "/api/v1/products?page=2&per_page=4", &list)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(list.Data) != 4 {
		t.Errorf("got %d products on page 2, want 4", len(list.Data))
	}
	if list.Meta.Total != 9 || list.Meta.TotalPages != 3 {
		t.Errorf("meta = %+v", list.Meta)
	}
}

func TestPublicProductsBadParams(t *testing.T) {
	router := newPublicRouter(t, nil)

	for _, query := range []string{"?page=0", "?page=x", "?per_page=-1", "?sort=price", "?featured=maybe"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products"+query, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestPublicProductDetail(t *testing.T) {
	router := newPublicRouter(t, nil)

	var resp struct {
		Data models.Product `json:"data"`
	}
	rec := getJSON(t, router, "/api/v1/products/phare-led-x1", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Data.Name != "Phare LED X1" {
		t.Errorf("name = %q", resp.Data.Name)
	}
	if len(resp.Data.Images) == 0 {
		t.Error("expected images on detail response")
	}
}

func TestPublicProductDetailMisses(t *testing.T) {
	router := newPublicRouter(t, nil)

	// Unknown slug and hidden product both read as absent.
	for _, slug := range []string{"does-not-exist", "ampoule-h7-halogene"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+slug, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", slug, rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if resp["error"] == "" {
			t.Error("missing error message in envelope")
		}
	}
}

func TestPublicRelated(t *testing.T) {
	router := newPublicRouter(t, nil)

	var resp struct {
		Data []models.Product `json:"data"`
	}
	rec := getJSON(t, router, "/api/v1/products/phare-led-x1/related?limit=2", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d related, want 2", len(resp.Data))
	}
	for _, p := range resp.Data {
		if p.Slug == "phare-led-x1" {
			t.Error("product related to itself")
		}
	}
}

func TestPublicTags(t *testing.T) {
	router := newPublicRouter(t, nil)

	var resp struct {
		Data []string `json:"data"`
	}
	rec := getJSON(t, router, "/api/v1/tags", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(resp.Data) == 0 {
		t.Fatal("no tags returned")
	}
	for i := 1; i < len(resp.Data); i++ {
		if resp.Data[i-1] >= resp.Data[i] {
			t.Fatalf("tags not sorted: %v", resp.Data)
		}
	}
	for _, tag := range resp.Data {
		if tag == "ampoule" {
			t.Error("tag from hidden product leaked into aggregate")
		}
	}
}

func TestPublicEventsStream(t *testing.T) {
	hub := events.NewHub()
	router := newPublicRouter(t, hub)

	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events/products", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	// First frame is the connected comment.
	if line, err := reader.ReadString('\n'); err != nil || !strings.HasPrefix(line, ":") {
		t.Fatalf("expected comment frame, got %q (%v)", line, err)
	}

	// Publish once the subscriber is registered.
	go func() {
		for i := 0; i < 50; i++ {
			if hub.Subscribers() > 0 {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		hub.Publish(models.Event{Type: models.EventProductUpdated, Slug: "phare-led-x1", Timestamp: 123})
	}()

	var data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}

	var ev models.Event
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != models.EventProductUpdated || ev.Slug != "phare-led-x1" {
		t.Errorf("event = %+v", ev)
	}
}

func TestPublicEventsUnavailableWithoutHub(t *testing.T) {
	router := newPublicRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/products", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
