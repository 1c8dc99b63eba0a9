package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto-parts-manager/internal/models"
)

// fakeBinder binds a subset of operations in memory. Unlisted operations
// behave as unbound, mirroring a host missing that capability.
type fakeBinder struct {
	ops   map[string]func(payload string) (string, error)
	calls []string
}

func (f *fakeBinder) Call(ctx context.Context, op string, payload string) (string, error) {
	f.calls = append(f.calls, op)
	fn, ok := f.ops[op]
	if !ok {
		return "", ErrNotBound
	}
	return fn(payload)
}

func TestNopBinderDefaults(t *testing.T) {
	b := New(NopBinder{}, nil)
	ctx := context.Background()

	res := b.SaveOrder(ctx, models.Order{Title: "x"})
	assert.Equal(t, "API not available", res.Error)

	_, err := b.LoadOrderByID(ctx, "o1")
	assert.EqualError(t, err, "API not available")

	customers, err := b.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers)

	page, err := b.ListProductsPaginated(ctx, models.PaginatedProductRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 25, page.PageSize)
	assert.Empty(t, page.Products)

	categories, err := b.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategories(), categories)

	unitNames, err := b.GetUnits(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultUnits(), unitNames)

	brands, err := b.GetBrands(ctx)
	require.NoError(t, err)
	assert.Empty(t, brands)

	dev := b.GetDeveloperMode(ctx)
	assert.False(t, dev.Enabled)
	assert.Empty(t, dev.Error)
}

func TestSaveOrderRoundTrip(t *testing.T) {
	var received models.Order
	fb := &fakeBinder{ops: map[string]func(string) (string, error){
		"saveOrder": func(payload string) (string, error) {
			if err := json.Unmarshal([]byte(payload), &received); err != nil {
				return "", err
			}
			return `{"success": true, "id": "ord-1", "customer_id": "cus-1"}`, nil
		},
	}}

	b := New(fb, nil)
	res := b.SaveOrder(context.Background(), models.Order{
		Title:        "December tender",
		CustomerName: "Acme",
		Items:        []models.OrderItem{{ID: "1", ProductName: "Filter", Quantity: 2, UnitPrice: 10, TotalPrice: 20}},
	})

	require.True(t, res.Success)
	assert.Equal(t, "ord-1", res.ID)
	assert.Equal(t, "cus-1", res.CustomerID)
	assert.Equal(t, "December tender", received.Title)
	require.Len(t, received.Items, 1)
	assert.Equal(t, 20.0, received.Items[0].TotalPrice)
}

func TestTransportFailureBecomesErrorResult(t *testing.T) {
	fb := &fakeBinder{ops: map[string]func(string) (string, error){
		"stockIn": func(string) (string, error) {
			return "", errors.New("pipe closed")
		},
	}}

	b := New(fb, nil)
	res := b.StockIn(context.Background(), "P1", 5, "restock")
	assert.False(t, res.Success)
	assert.Equal(t, "pipe closed", res.Error)
}

func TestLoadOrderByIDErrorPayload(t *testing.T) {
	fb := &fakeBinder{ops: map[string]func(string) (string, error){
		"loadOrderById": func(payload string) (string, error) {
			assert.Equal(t, "missing", payload)
			return `{"error": "order not found"}`, nil
		},
	}}

	b := New(fb, nil)
	_, err := b.LoadOrderByID(context.Background(), "missing")
	assert.EqualError(t, err, "order not found")
}

func TestBulkStockOutBreakdown(t *testing.T) {
	fb := &fakeBinder{ops: map[string]func(string) (string, error){
		"bulkStockOut": func(payload string) (string, error) {
			var entries []models.BulkStockEntry
			if err := json.Unmarshal([]byte(payload), &entries); err != nil {
				return "", err
			}
			if len(entries) != 2 {
				return "", errors.New("unexpected entry count")
			}
			return `{"success": true, "succeeded": 1, "errors": ["P2: insufficient stock"]}`, nil
		},
	}}

	b := New(fb, nil)
	res := b.BulkStockOut(context.Background(), []models.BulkStockEntry{
		{ProductID: "P1", Amount: 2, Note: "order"},
		{ProductID: "P2", Amount: 9, Note: "order"},
	})

	require.True(t, res.Success)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, []string{"P2: insufficient stock"}, res.Errors)
}

func TestListProductsPaginatedEcho(t *testing.T) {
	fb := &fakeBinder{ops: map[string]func(string) (string, error){
		"listProductsPaginated": func(payload string) (string, error) {
			var req models.PaginatedProductRequest
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return "", err
			}
			page := models.ProductPage{
				Products: []models.Product{{ID: "P1", Name: "Filter"}},
				Total:    41,
				Page:     req.Page,
				PageSize: req.PageSize,
			}
			data, _ := json.Marshal(page)
			return string(data), nil
		},
	}}

	b := New(fb, nil)
	page, err := b.ListProductsPaginated(context.Background(), models.PaginatedProductRequest{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 41, page.Total)
	require.Len(t, page.Products, 1)
}

func TestListShapedTransportErrorSurfaces(t *testing.T) {
	fb := &fakeBinder{ops: map[string]func(string) (string, error){
		"listAllProducts": func(string) (string, error) {
			return "", errors.New("engine offline")
		},
	}}

	b := New(fb, nil)
	_, err := b.ListProducts(context.Background())
	assert.EqualError(t, err, "engine offline")
}
