package catalog_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"CatalogAdmin/internal/catalog"
)

func newCatalogTS(t *testing.T, store catalog.Store) *httptest.Server {
	t.Helper()

	up, err := catalog.NewUploader(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}

	s := &catalog.Server{Store: store, Uploads: up, Log: zap.NewNop()}
	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			r = bytes.NewReader(raw)
		}
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func listProducts(t *testing.T, baseURL string) []catalog.Product {
	t.Helper()

	resp, raw := doJSON(t, http.MethodGet, baseURL+"/api/products", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status=%d body=%s", resp.StatusCode, raw)
	}
	var ps []catalog.Product
	if err := json.Unmarshal(raw, &ps); err != nil {
		t.Fatalf("decode list: %v body=%s", err, raw)
	}
	return ps
}

func hasID(ps []catalog.Product, id int64) bool {
	for _, p := range ps {
		if p.ID == id {
			return true
		}
	}
	return false
}

func TestCatalog_CreateListDelete(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewStore())

	var created catalog.Product
	{
		resp, raw := doJSON(t, http.MethodPost, ts.URL+"/api/products", map[string]any{
			"name":        "Rope",
			"price":       500,
			"status":      "active",
			"description": "",
			"image":       "",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status=%d body=%s", resp.StatusCode, raw)
		}
		if err := json.Unmarshal(raw, &created); err != nil {
			t.Fatalf("decode created: %v body=%s", err, raw)
		}
		want := catalog.Product{ID: 3, Name: "Rope", Price: 500, Status: catalog.StatusActive}
		if created != want {
			t.Fatalf("created=%+v want=%+v", created, want)
		}
	}

	if ps := listProducts(t, ts.URL); !hasID(ps, created.ID) {
		t.Fatalf("created product %d missing from list %+v", created.ID, ps)
	}

	{
		resp, raw := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/products/%d", ts.URL, created.ID), nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete status=%d body=%s", resp.StatusCode, raw)
		}
		if len(raw) != 0 {
			t.Fatalf("delete body=%q want empty", raw)
		}
	}

	if ps := listProducts(t, ts.URL); hasID(ps, created.ID) {
		t.Fatalf("deleted product %d still listed", created.ID)
	}
}

func TestCatalog_DeleteMissingIs204(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewStore())

	for _, id := range []string{"999", "not-a-number"} {
		resp, raw := doJSON(t, http.MethodDelete, ts.URL+"/api/products/"+id, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete %s status=%d body=%s", id, resp.StatusCode, raw)
		}
	}

	if n := len(listProducts(t, ts.URL)); n != 2 {
		t.Fatalf("len=%d want 2", n)
	}
}

func TestCatalog_UpdateMissingIs404(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewStore())
	before := listProducts(t, ts.URL)

	body := map[string]any{"name": "X", "description": "", "image": "", "price": 1, "status": "active"}
	for _, id := range []string{"999", "abc"} {
		resp, raw := doJSON(t, http.MethodPut, ts.URL+"/api/products/"+id, body)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("update %s status=%d body=%s", id, resp.StatusCode, raw)
		}
		var e struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &e); err != nil || e.Message == "" {
			t.Fatalf("404 body=%s err=%v", raw, err)
		}
	}

	after := listProducts(t, ts.URL)
	if fmt.Sprint(before) != fmt.Sprint(after) {
		t.Fatalf("collection changed: before=%+v after=%+v", before, after)
	}
}

func TestCatalog_UpdateTakesIDFromPath(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewStore())

	resp, raw := doJSON(t, http.MethodPut, ts.URL+"/api/products/2", map[string]any{
		"id":          77,
		"name":        "Backpack 70 l",
		"description": "<p>bigger</p>",
		"image":       "http://img/2.jpg",
		"price":       27000,
		"status":      "active",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status=%d body=%s", resp.StatusCode, raw)
	}

	var got catalog.Product
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := catalog.Product{
		ID:          2,
		Name:        "Backpack 70 l",
		Description: "<p>bigger</p>",
		Image:       "http://img/2.jpg",
		Price:       27000,
		Status:      catalog.StatusActive,
	}
	if got != want {
		t.Fatalf("got=%+v want=%+v", got, want)
	}

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/api/products/2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestCatalog_RejectsMalformedBodies(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewStore())

	bodies := []string{
		`{"name":"Rope","price":500}`,
		`{"name":"Rope","description":"","image":"","price":500,"status":"gone"}`,
		`not json`,
	}
	for _, b := range bodies {
		for _, target := range []struct{ method, path string }{
			{http.MethodPost, "/api/products"},
			{http.MethodPut, "/api/products/1"},
		} {
			resp, raw := doJSON(t, target.method, ts.URL+target.path, b)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("%s %s body=%s status=%d resp=%s", target.method, target.path, b, resp.StatusCode, raw)
			}
		}
	}

	if n := len(listProducts(t, ts.URL)); n != 2 {
		t.Fatalf("len=%d want 2", n)
	}
}

func TestCatalog_GetMissingIs404(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewStore())

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/api/products/404", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestCatalog_EmptyListIsArray(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore(nil))

	_, raw := doJSON(t, http.MethodGet, ts.URL+"/api/products", nil)
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("body=%s want []", raw)
	}
}

// Random create/update/delete sequences must leave the listing equal to a
// simple model of their net effect.
func TestCatalog_ListReflectsNetEffect(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewStore())
	model := listProducts(t, ts.URL)
	rng := rand.New(rand.NewSource(7))
	lastID := int64(2)

	indexOf := func(id int64) int {
		for i, p := range model {
			if p.ID == id {
				return i
			}
		}
		return -1
	}

	for step := 0; step < 60; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(model) == 0:
			f := map[string]any{
				"name": fmt.Sprintf("item-%d", step), "description": "", "image": "",
				"price": float64(step + 1), "status": "active",
			}
			resp, raw := doJSON(t, http.MethodPost, ts.URL+"/api/products", f)
			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("step %d create status=%d", step, resp.StatusCode)
			}
			var p catalog.Product
			_ = json.Unmarshal(raw, &p)
			if p.ID <= lastID {
				t.Fatalf("step %d id=%d not greater than %d", step, p.ID, lastID)
			}
			lastID = p.ID
			model = append(model, p)

		case op == 1:
			target := model[rng.Intn(len(model))]
			target.Name += "*"
			target.Status = catalog.StatusArchived
			resp, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/products/%d", ts.URL, target.ID), target)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("step %d update status=%d", step, resp.StatusCode)
			}
			model[indexOf(target.ID)] = target

		default:
			id := model[rng.Intn(len(model))].ID
			resp, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/products/%d", ts.URL, id), nil)
			if resp.StatusCode != http.StatusNoContent {
				t.Fatalf("step %d delete status=%d", step, resp.StatusCode)
			}
			i := indexOf(id)
			model = append(model[:i], model[i+1:]...)
		}
	}

	got := listProducts(t, ts.URL)
	if fmt.Sprint(got) != fmt.Sprint(model) {
		t.Fatalf("list=%+v\nmodel=%+v", got, model)
	}
}

func TestCatalog_HealthAndCORS(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewStore())

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d", path, resp.StatusCode)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin=%q", got)
	}
}

func TestCatalog_WithoutUploader(t *testing.T) {
	s := &catalog.Server{Store: catalog.NewStore()}
	ts := httptest.NewServer(catalog.NewHandler(s, catalog.HTTPDeps{Service: "catalog"}))
	t.Cleanup(ts.Close)

	if ps := listProducts(t, ts.URL); len(ps) != 2 {
		t.Fatalf("expected seeded products, got %d", len(ps))
	}

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/api/upload", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("upload status=%d body=%s", resp.StatusCode, raw)
	}
	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/uploads/a.png", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("uploads status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestCatalog_MetricsEndpoint(t *testing.T) {
	up, err := catalog.NewUploader(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	s := &catalog.Server{Store: catalog.NewStore(), Uploads: up}
	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            zap.NewNop(),
		Service:        "catalog",
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
		MetricsToken:   "scrape",
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	doJSON(t, http.MethodGet, ts.URL+"/api/products", nil)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/metrics", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unauthenticated scrape status=%d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	req.Header.Set("Authorization", "Bearer scrape")
	mresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer mresp.Body.Close()
	raw, _ := io.ReadAll(mresp.Body)

	for _, want := range []string{
		`catalog_products 2`,
		`http_requests_total{method="GET"`,
		`service="catalog",status="200"}`,
	} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("metrics missing %q:\n%s", want, raw)
		}
	}
}
