package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto-parts-manager/internal/bridge"
	"auto-parts-manager/internal/models"
	"auto-parts-manager/internal/settings"
	"auto-parts-manager/internal/state"
)

// stubBinder answers configured operations; everything else is unbound.
type stubBinder struct {
	ops map[string]func(payload string) (string, error)
}

func (s *stubBinder) Call(_ context.Context, op, payload string) (string, error) {
	if fn, ok := s.ops[op]; ok {
		return fn(payload)
	}
	return "", bridge.ErrNotBound
}

func newRouter(binder *stubBinder) *mux.Router {
	b := bridge.New(binder, nil)
	prefs := settings.NewManager(settings.NewMemStore(), nil)
	prefs.Load()

	orders := state.NewOrderManager(b, nil, prefs)
	stock := state.NewStockManager(b, nil, prefs)

	orderHandler := NewOrderHandler(orders, b)
	stockHandler := NewStockHandler(stock)
	settingsHandler := NewSettingsHandler(prefs, b)

	r := mux.NewRouter()
	r.HandleFunc("/v1/orders/current", orderHandler.GetCurrent).Methods("GET")
	r.HandleFunc("/v1/orders/items", orderHandler.AddItem).Methods("POST")
	r.HandleFunc("/v1/orders/items/{itemId}", orderHandler.RemoveItem).Methods("DELETE")
	r.HandleFunc("/v1/orders/save", orderHandler.Save).Methods("POST")
	r.HandleFunc("/v1/orders/oem-conflict", orderHandler.CheckOEMConflict).Methods("GET")
	r.HandleFunc("/v1/stock/products/query", stockHandler.Query).Methods("POST")
	r.HandleFunc("/v1/stock/products", stockHandler.GetProducts).Methods("GET")
	r.HandleFunc("/v1/stock/in", stockHandler.StockIn).Methods("POST")
	r.HandleFunc("/v1/settings", settingsHandler.Get).Methods("GET")
	r.HandleFunc("/v1/settings/theme", settingsHandler.SetTheme).Methods("PUT")
	r.HandleFunc("/health", NewHealthHandler().Health).Methods("GET")
	return r
}

func do(t *testing.T, router *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newRouter(&stubBinder{})
	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestSaveEmptyOrderReturnsBadRequest(t *testing.T) {
	router := newRouter(&stubBinder{})
	rec := do(t, router, http.MethodPost, "/v1/orders/save", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "empty_order", body.Code)
}

func TestAddItemAndCurrentDraft(t *testing.T) {
	router := newRouter(&stubBinder{})

	rec := do(t, router, http.MethodPost, "/v1/orders/items",
		`{"name":"Oil filter","quantity":2,"unit_price":60.5,"part_status":"original"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.OrderItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "-", item.OEMNumber)
	assert.Equal(t, 121.0, item.TotalPrice)

	rec = do(t, router, http.MethodGet, "/v1/orders/current", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var draft struct {
		Items      []models.OrderItem `json:"items"`
		GrandTotal float64            `json:"grand_total"`
		IsEditing  bool               `json:"is_editing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	assert.Len(t, draft.Items, 1)
	assert.Equal(t, 121.0, draft.GrandTotal)
	assert.False(t, draft.IsEditing)
}

func TestAddItemRequiresName(t *testing.T) {
	router := newRouter(&stubBinder{})
	rec := do(t, router, http.MethodPost, "/v1/orders/items", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOEMConflictEndpoint(t *testing.T) {
	binder := &stubBinder{ops: map[string]func(string) (string, error){
		"listAllProducts":  func(string) (string, error) { return `[{"id":"p-1","name":"Brake pad","oem_number":"OEM1"}]`, nil },
		"listAllCustomers": func(string) (string, error) { return `[]`, nil },
	}}
	b := bridge.New(binder, nil)
	prefs := settings.NewManager(settings.NewMemStore(), nil)
	prefs.Load()
	orders := state.NewOrderManager(b, nil, prefs)
	orders.LoadData(context.Background())

	handler := NewOrderHandler(orders, b)
	r := mux.NewRouter()
	r.HandleFunc("/v1/orders/oem-conflict", handler.CheckOEMConflict).Methods("GET")

	rec := do(t, r, http.MethodGet, "/v1/orders/oem-conflict?name=Other+part&oem=oem1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Conflict bool            `json:"conflict"`
		Product  *models.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Conflict)
	require.NotNil(t, body.Product)
	assert.Equal(t, "Brake pad", body.Product.Name)
}

func TestQueryPageSizeResetsToFirstPage(t *testing.T) {
	binder := &stubBinder{ops: map[string]func(string) (string, error){
		"listProductsPaginated": func(payload string) (string, error) {
			var req models.PaginatedProductRequest
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return "", err
			}
			return fmt.Sprintf(`{"products":[],"total":200,"page":%d,"page_size":%d}`, req.Page, req.PageSize), nil
		},
		"getCriticalStockProducts": func(string) (string, error) { return `[]`, nil },
	}}
	router := newRouter(binder)

	// Prime the total so later page jumps are in range.
	rec := do(t, router, http.MethodPost, "/v1/stock/products/query", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	}
	rec = do(t, router, http.MethodPost, "/v1/stock/products/query", `{"page":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 3, page.Page)

	rec = do(t, router, http.MethodPost, "/v1/stock/products/query", `{"page_size":50}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 4, page.TotalPages)
}

func TestStockInValidation(t *testing.T) {
	router := newRouter(&stubBinder{})

	rec := do(t, router, http.MethodPost, "/v1/stock/in", `{"amount":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/stock/in", `{"product_id":"p-1","amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unbound engine surfaces the fixed unavailable message.
	rec = do(t, router, http.MethodPost, "/v1/stock/in", `{"product_id":"p-1","amount":5}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	router := newRouter(&stubBinder{})

	rec := do(t, router, http.MethodGet, "/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Theme        string `json:"theme"`
		ItemsPerPage int    `json:"itemsPerPage"`
		DarkMode     bool   `json:"darkMode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "dark", view.Theme)
	assert.Equal(t, 25, view.ItemsPerPage)
	assert.True(t, view.DarkMode)

	rec = do(t, router, http.MethodPut, "/v1/settings/theme", `{"theme":"light"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "light", view.Theme)
	assert.False(t, view.DarkMode)

	rec = do(t, router, http.MethodPut, "/v1/settings/theme", `{"theme":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
