package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tokoadmin/internal/app"
	"tokoadmin/internal/database"
	"tokoadmin/internal/handlers"
)

// setupApp builds the full back office over an in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return app.NewApp(app.Options{DB: db}).Fiber
}

// TestMain silences request logging for cleaner output.
func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func do(t *testing.T, a *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func createProduct(t *testing.T, a *fiber.App, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	resp, data := do(t, a, http.MethodPost, "/api/v1/products", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	return decode(t, data)
}

func TestProductCRUD(t *testing.T) {
	a := setupApp(t)

	created := createProduct(t, a, map[string]interface{}{
		"name":         "Smartphone X",
		"sku":          "SKU-PHONE",
		"description":  "Latest model smartphone",
		"price":        799.99,
		"stock":        5,
		"status":       "active",
		"category":     "Phones",
		"tags":         []string{"5g", "5g", "android"},
		"published_at": "2024-06-01",
	})
	id := created["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "smartphone-x", created["slug"])
	assert.Equal(t, "799.99", created["price"])
	assert.Equal(t, true, created["is_visible"])
	assert.Equal(t, []interface{}{"5g", "android"}, created["tags"])

	display := created["display"].(map[string]interface{})
	assert.Equal(t, handlers.ToneSuccess, display["status_tone"])
	assert.Equal(t, "check-circle", display["status_icon"])
	assert.Equal(t, handlers.ToneWarning, display["stock_tone"])

	resp, data := do(t, a, http.MethodGet, "/api/v1/products/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode(t, data)
	assert.Equal(t, id, fetched["id"])
	assert.Equal(t, "SKU-PHONE", fetched["sku"])

	resp, data = do(t, a, http.MethodPut, "/api/v1/products/"+id, map[string]interface{}{
		"name":     "Smartphone X Pro",
		"sku":      "SKU-PHONE",
		"price":    "899.99",
		"stock":    0,
		"status":   "archived",
		"category": "Phones",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	updated := decode(t, data)
	assert.Equal(t, "Smartphone X Pro", updated["name"])
	assert.Equal(t, "smartphone-x", updated["slug"])
	assert.Equal(t, "899.99", updated["price"])
	display = updated["display"].(map[string]interface{})
	assert.Equal(t, handlers.ToneDanger, display["status_tone"])
	assert.Equal(t, handlers.ToneDanger, display["stock_tone"])

	resp, _ = do(t, a, http.MethodGet, "/api/v1/products/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateProduct_Validation(t *testing.T) {
	a := setupApp(t)

	resp, data := do(t, a, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":   "",
		"stock":  -3,
		"status": "unknown",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode(t, data)
	assert.Equal(t, handlers.CodeValidation, body["code"])

	fields := map[string]bool{}
	for _, e := range body["errors"].([]interface{}) {
		fields[e.(map[string]interface{})["field"].(string)] = true
	}
	for _, f := range []string{"name", "sku", "price", "stock", "status"} {
		assert.True(t, fields[f], "expected a violation for %s", f)
	}

	resp, data = do(t, a, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":         "Dated",
		"sku":          "SKU-DATED",
		"price":        1,
		"published_at": "next tuesday",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(data), "published_at")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	raw, err := a.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestCreateProduct_Conflict(t *testing.T) {
	a := setupApp(t)

	createProduct(t, a, map[string]interface{}{"name": "Router", "sku": "SKU-NET", "price": 60})

	resp, data := do(t, a, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Router Plus", "sku": "SKU-NET", "price": 80,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode(t, data)
	assert.Equal(t, handlers.CodeConflict, body["code"])
	assert.Equal(t, "sku", body["field"])
}

func TestListProducts(t *testing.T) {
	a := setupApp(t)

	for _, p := range []map[string]interface{}{
		{"name": "Alpha", "sku": "SKU-A", "price": 30, "stock": 0, "status": "active", "category": "Books"},
		{"name": "Bravo", "sku": "SKU-B", "price": 10, "stock": 4, "status": "draft", "category": "Toys", "is_featured": true},
		{"name": "Charlie", "sku": "SKU-C", "price": 20, "stock": 50, "status": "active", "category": "Books"},
	} {
		createProduct(t, a, p)
	}

	resp, data := do(t, a, http.MethodGet, "/api/v1/products?status=active&sort=-price", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, data)
	assert.Equal(t, float64(2), body["total"])
	items := body["data"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "SKU-A", items[0].(map[string]interface{})["sku"])
	assert.Equal(t, "SKU-C", items[1].(map[string]interface{})["sku"])

	resp, data = do(t, a, http.MethodGet, "/api/v1/products?featured=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decode(t, data)["total"])

	resp, data = do(t, a, http.MethodGet, "/api/v1/products?low_stock=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decode(t, data)["total"])

	resp, data = do(t, a, http.MethodGet, "/api/v1/products?category=Books,Toys&sort=name&per_page=2&page=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, data)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["last_page"])
	items = body["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "SKU-C", items[0].(map[string]interface{})["sku"])

	resp, _ = do(t, a, http.MethodGet, "/api/v1/products?status=retired", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp, _ = do(t, a, http.MethodGet, "/api/v1/products?sort=password", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp, _ = do(t, a, http.MethodGet, "/api/v1/products?trashed=sometimes", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestTogglesAndDuplicate(t *testing.T) {
	a := setupApp(t)
	id := createProduct(t, a, map[string]interface{}{"name": "Lamp", "sku": "SKU-LAMP", "price": 12})["id"].(string)

	resp, data := do(t, a, http.MethodPost, "/api/v1/products/"+id+"/toggle-featured", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode(t, data)["is_featured"])

	resp, data = do(t, a, http.MethodPost, "/api/v1/products/"+id+"/toggle-visibility", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decode(t, data)["is_visible"])

	resp, data = do(t, a, http.MethodPost, "/api/v1/products/"+id+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dup := decode(t, data)
	assert.NotEqual(t, id, dup["id"])
	assert.Equal(t, "Lamp (Copy)", dup["name"])
	assert.Equal(t, "SKU-LAMP-COPY", dup["sku"])
	assert.Contains(t, dup["slug"], "lamp-copy-")

	resp, data = do(t, a, http.MethodPost, "/api/v1/products/"+id+"/duplicate", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, handlers.CodeConflict, decode(t, data)["code"])

	resp, _ = do(t, a, http.MethodPost, "/api/v1/products/missing/toggle-featured", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeletionLifecycle(t *testing.T) {
	a := setupApp(t)
	id := createProduct(t, a, map[string]interface{}{"name": "Chair", "sku": "SKU-CHAIR", "price": 75})["id"].(string)

	resp, data := do(t, a, http.MethodDelete, "/api/v1/products/"+id+"/force", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, handlers.CodeIllegalState, decode(t, data)["code"])

	resp, _ = do(t, a, http.MethodDelete, "/api/v1/products/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, a, http.MethodGet, "/api/v1/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, data = do(t, a, http.MethodGet, "/api/v1/products/"+id+"?trashed=with", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, decode(t, data)["deleted_at"])

	resp, data = do(t, a, http.MethodGet, "/api/v1/products?trashed=only", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decode(t, data)["total"])

	resp, data = do(t, a, http.MethodPost, "/api/v1/products/"+id+"/restore", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, decode(t, data)["id"])

	resp, _ = do(t, a, http.MethodDelete, "/api/v1/products/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, a, http.MethodDelete, "/api/v1/products/"+id+"/force", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, a, http.MethodGet, "/api/v1/products/"+id+"?trashed=with", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBulkActions(t *testing.T) {
	a := setupApp(t)
	first := createProduct(t, a, map[string]interface{}{"name": "One", "sku": "SKU-1", "price": 1})["id"].(string)
	second := createProduct(t, a, map[string]interface{}{"name": "Two", "sku": "SKU-2", "price": 2})["id"].(string)

	resp, data := do(t, a, http.MethodPost, "/api/v1/products/bulk/feature", map[string]interface{}{
		"ids": []string{first, second, "missing"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode(t, data)
	assert.Equal(t, float64(2), result["succeeded"])
	failed := result["failed"].([]interface{})
	require.Len(t, failed, 1)
	assert.Equal(t, "missing", failed[0].(map[string]interface{})["id"])

	resp, data = do(t, a, http.MethodPost, "/api/v1/products/bulk/hide", map[string]interface{}{"ids": []string{first}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decode(t, data)["succeeded"])

	resp, data = do(t, a, http.MethodPost, "/api/v1/products/bulk/delete", map[string]interface{}{"ids": []string{first, second}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decode(t, data)["succeeded"])

	resp, data = do(t, a, http.MethodPost, "/api/v1/products/bulk/restore", map[string]interface{}{"ids": []string{first}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decode(t, data)["succeeded"])

	resp, data = do(t, a, http.MethodPost, "/api/v1/products/bulk/force-delete", map[string]interface{}{"ids": []string{first, second}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result = decode(t, data)
	assert.Equal(t, float64(1), result["succeeded"])
	assert.Len(t, result["failed"], 1)

	resp, _ = do(t, a, http.MethodPost, "/api/v1/products/bulk/feature", map[string]interface{}{"ids": []string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestReports(t *testing.T) {
	a := setupApp(t)

	resp, data := do(t, a, http.MethodGet, "/api/v1/reports/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode(t, data))

	resp, data = do(t, a, http.MethodGet, "/api/v1/reports/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode(t, data)["stats"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["active_percent"])

	createProduct(t, a, map[string]interface{}{"name": "Novel", "sku": "SKU-N", "price": 15.5, "stock": 3, "status": "active", "category": "Books"})
	createProduct(t, a, map[string]interface{}{"name": "Atlas", "sku": "SKU-AT", "price": 40, "stock": 30, "category": "Books"})
	createProduct(t, a, map[string]interface{}{"name": "Kite", "sku": "SKU-K", "price": 9, "stock": 25, "status": "active", "category": "Toys"})
	createProduct(t, a, map[string]interface{}{"name": "Mystery Box", "sku": "SKU-MB", "price": 5, "stock": 100})

	resp, data = do(t, a, http.MethodGet, "/api/v1/reports/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"Books": float64(2), "Toys": float64(1), "uncategorized": float64(1)}, decode(t, data))

	resp, data = do(t, a, http.MethodGet, "/api/v1/reports/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, data)
	stats = body["stats"].(map[string]interface{})
	assert.Equal(t, float64(4), stats["total"])
	assert.Equal(t, float64(2), stats["active"])
	assert.Equal(t, float64(50), stats["active_percent"])
	assert.Equal(t, "69.5", stats["total_value"])
	assert.Equal(t, float64(1), stats["low_stock"])
	assert.Equal(t, handlers.ToneDanger, body["low_stock_tone"])

	resp, data = do(t, a, http.MethodGet, "/api/v1/reports/creators", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "Unassigned")

	resp, data = do(t, a, http.MethodGet, "/api/v1/reports/export.xlsx?category=Books", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestAuthoringHelpers(t *testing.T) {
	a := setupApp(t)

	resp, data := do(t, a, http.MethodPost, "/api/v1/authoring/slug", map[string]string{"name": "Café Crème @ Home"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cafe-creme-at-home", decode(t, data)["slug"])

	resp, data = do(t, a, http.MethodGet, "/api/v1/authoring/visibility?stock=0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, data)
	assert.Equal(t, false, body["is_visible"])
	assert.Equal(t, handlers.ToneDanger, body["stock_tone"])

	resp, data = do(t, a, http.MethodGet, "/api/v1/authoring/visibility?stock=12", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode(t, data)["is_visible"])

	resp, data = do(t, a, http.MethodGet, "/api/v1/authoring/statuses", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"value":"archived"`)
}

func TestHealth(t *testing.T) {
	a := setupApp(t)

	resp, data := do(t, a, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, data)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["dependencies"].(map[string]interface{})["database"])

	resp, _ = do(t, a, http.MethodGet, "/api/v1/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth_ReportsDependencyStats(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	failing := errors.New("connection refused")
	a := app.NewApp(app.Options{
		DB:     db,
		Checks: map[string]handlers.Pinger{"redis": func(context.Context) error { return failing }},
		Stats: map[string]handlers.StatsReporter{
			"report_cache": func() interface{} { return map[string]int{"hits": 3, "misses": 1} },
		},
	}).Fiber

	resp, data := do(t, a, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode(t, data)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "connection refused", body["dependencies"].(map[string]interface{})["redis"])
	cacheStats := body["stats"].(map[string]interface{})["report_cache"].(map[string]interface{})
	assert.EqualValues(t, 3, cacheStats["hits"])
	assert.EqualValues(t, 1, cacheStats["misses"])
}
