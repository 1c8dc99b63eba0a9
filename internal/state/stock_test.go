package state

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto-parts-manager/internal/bridge"
	"auto-parts-manager/internal/cache"
	"auto-parts-manager/internal/models"
)

func newTestStockManager(binder *fakeBinder) *StockManager {
	return NewStockManager(bridge.New(binder, nil), nil, nil)
}

// pagedBinder answers listProductsPaginated by echoing the requested page
// against a fixed total.
func pagedBinder(total int) *fakeBinder {
	binder := newFakeBinder()
	binder.ops["listProductsPaginated"] = func(payload string) (string, error) {
		var req models.PaginatedProductRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", err
		}
		return fmt.Sprintf(`{"products":[],"total":%d,"page":%d,"page_size":%d}`, total, req.Page, req.PageSize), nil
	}
	binder.on("getCriticalStockProducts", `[]`)
	return binder
}

func TestTotalPagesNeverBelowOne(t *testing.T) {
	m := newTestStockManager(newFakeBinder())
	assert.Equal(t, 1, m.TotalPages())

	m.totalProducts = 51
	m.itemsPerPage = 25
	assert.Equal(t, 3, m.TotalPages())

	m.totalProducts = 50
	assert.Equal(t, 2, m.TotalPages())
}

func TestGoToPageOutOfRangeIsNoOp(t *testing.T) {
	binder := pagedBinder(51)
	m := newTestStockManager(binder)

	res := m.LoadProductsPaginated(context.Background())
	require.True(t, res.Success)
	require.Equal(t, 3, m.TotalPages())

	before := binder.callCount("listProductsPaginated")
	m.GoToPage(context.Background(), 0)
	m.GoToPage(context.Background(), 4)
	assert.Equal(t, 1, m.CurrentPage())
	assert.Equal(t, before, binder.callCount("listProductsPaginated"))

	m.GoToPage(context.Background(), 3)
	assert.Equal(t, 3, m.CurrentPage())
}

func TestSetPageSizeResetsToFirstPage(t *testing.T) {
	binder := pagedBinder(200)
	m := newTestStockManager(binder)

	m.LoadProductsPaginated(context.Background())
	m.GoToPage(context.Background(), 3)
	require.Equal(t, 3, m.CurrentPage())

	m.SetPageSize(context.Background(), 50)
	assert.Equal(t, 1, m.CurrentPage())
	assert.Equal(t, 50, m.ItemsPerPage())
}

func TestSetSortAndApplyFilterResetToFirstPage(t *testing.T) {
	binder := pagedBinder(200)
	m := newTestStockManager(binder)
	m.LoadProductsPaginated(context.Background())
	m.GoToPage(context.Background(), 2)

	m.SetSort(context.Background(), "stock_quantity", "desc")
	assert.Equal(t, 1, m.CurrentPage())
	field, dir := m.Sort()
	assert.Equal(t, "stock_quantity", field)
	assert.Equal(t, "desc", dir)

	m.GoToPage(context.Background(), 2)
	m.ApplyFilter(context.Background(), models.ProductFilter{Search: "filtre"})
	assert.Equal(t, 1, m.CurrentPage())
	assert.Equal(t, "filtre", m.Filter().Search)
}

func TestFilteredProducts(t *testing.T) {
	m := newTestStockManager(newFakeBinder())
	m.products = []models.Product{
		{Name: "Yağ filtresi", OEMNumber: "OF-1", Brand: "Bosch", Category: "Filtre", StockQuantity: 10, CriticalStock: 5},
		{Name: "Motor yağı", OEMNumber: "MY-2", Brand: "Castrol", Category: "Yağ", StockQuantity: 2, CriticalStock: 5},
		{Name: "Fren balatası", OEMNumber: "FB-3", Brand: "Bosch", Category: "Fren", StockQuantity: 1},
	}

	m.filter = models.ProductFilter{Search: "bosch"}
	names := func() []string {
		var out []string
		for _, p := range m.FilteredProducts() {
			out = append(out, p.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Yağ filtresi", "Fren balatası"}, names())

	m.filter = models.ProductFilter{Category: "Yağ"}
	assert.Equal(t, []string{"Motor yağı"}, names())

	// Critical: below own threshold, or below the default of 3 when unset.
	m.filter = models.ProductFilter{OnlyCritical: true}
	assert.Equal(t, []string{"Motor yağı", "Fren balatası"}, names())
}

func TestIsCriticalStock(t *testing.T) {
	assert.True(t, IsCriticalStock(models.Product{StockQuantity: 2, CriticalStock: 5}))
	assert.False(t, IsCriticalStock(models.Product{StockQuantity: 5, CriticalStock: 5}))
	assert.True(t, IsCriticalStock(models.Product{StockQuantity: 2.5}))
	assert.False(t, IsCriticalStock(models.Product{StockQuantity: 3}))
}

func TestStockInFailureUsesDefaultMessage(t *testing.T) {
	binder := newFakeBinder()
	binder.on("stockIn", `{"success":false}`)
	m := newTestStockManager(binder)

	res := m.StockIn(context.Background(), "p-1", 5, "delivery")
	assert.Equal(t, "Stock in failed", res.Error)
	assert.Zero(t, binder.callCount("listProductsPaginated"))
}

func TestStockOutSuccessReloadsCatalog(t *testing.T) {
	binder := pagedBinder(10)
	binder.on("stockOut", `{"success":true}`)
	m := newTestStockManager(binder)

	res := m.StockOut(context.Background(), "p-1", 2, "sold")
	assert.True(t, res.Success)
	assert.Equal(t, 1, binder.callCount("listProductsPaginated"))
}

func TestBulkStockOutPassesBreakdownThrough(t *testing.T) {
	binder := pagedBinder(10)
	binder.on("bulkStockOut", `{"success":true,"succeeded":2,"errors":["p-3: insufficient stock"]}`)
	m := newTestStockManager(binder)

	res := m.BulkStockOut(context.Background(), []models.BulkStockEntry{
		{ProductID: "p-1", Amount: 1}, {ProductID: "p-2", Amount: 2}, {ProductID: "p-3", Amount: 9},
	})
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, []string{"p-3: insufficient stock"}, res.Errors)
}

func TestBulkStockInFailureUsesDefaultMessage(t *testing.T) {
	binder := newFakeBinder()
	binder.on("bulkStockIn", `{"success":false}`)
	m := newTestStockManager(binder)

	res := m.BulkStockIn(context.Background(), []models.BulkStockEntry{{ProductID: "p-1", Amount: 1}})
	assert.Equal(t, "Bulk stock in failed", res.Error)
}

func TestCreateProductRequiresReturnedID(t *testing.T) {
	binder := pagedBinder(10)
	binder.on("getCategories", `["Yağ"]`)
	binder.on("createProductFull", `{"success":true}`)
	m := newTestStockManager(binder)

	res := m.CreateProduct(context.Background(), models.Product{Name: "New part"})
	assert.Equal(t, "Product creation failed", res.Error)

	binder.on("createProductFull", `{"success":true,"id":"p-9"}`)
	res = m.CreateProduct(context.Background(), models.Product{Name: "New part"})
	assert.Equal(t, "p-9", res.ID)
	assert.Equal(t, 1, binder.callCount("listProductsPaginated"))
}

func TestDeleteProductReloadsOnSuccess(t *testing.T) {
	binder := pagedBinder(10)
	binder.on("deleteProduct", `{"success":true}`)
	m := newTestStockManager(binder)

	res := m.DeleteProduct(context.Background(), "p-1")
	assert.True(t, res.Success)
	assert.Equal(t, 1, binder.callCount("listProductsPaginated"))
}

func TestLookupListsKeepDefaultsWhenEngineEmpty(t *testing.T) {
	binder := newFakeBinder()
	binder.on("getCategories", `[]`)
	binder.on("getUnits", `[]`)
	m := newTestStockManager(binder)

	m.LoadCategories(context.Background())
	m.LoadUnits(context.Background())
	assert.Equal(t, bridge.DefaultCategories(), m.Categories())
	assert.Equal(t, bridge.DefaultUnits(), m.Units())
}

func TestLookupListsServedFromCache(t *testing.T) {
	binder := newFakeBinder()
	binder.on("getCategories", `["Yağ","Filtre"]`)

	lookups := cache.NewLookupCache(time.Minute, time.Minute)
	defer lookups.Stop()
	m := NewStockManager(bridge.New(binder, nil), lookups, nil)

	m.LoadCategories(context.Background())
	m.LoadCategories(context.Background())
	assert.Equal(t, 1, binder.callCount("getCategories"))
	assert.Equal(t, []string{"Yağ", "Filtre"}, m.Categories())
}

func TestGenerateReportKeepsStaleReportOnFailure(t *testing.T) {
	binder := newFakeBinder()
	binder.on("getStockReport", `{"period":"daily","date":"2026-08-31","total_in":12,"total_out":4}`)
	m := newTestStockManager(binder)

	res := m.GenerateReport(context.Background(), "daily", "2026-08-31")
	require.True(t, res.Success)
	require.NotNil(t, m.Report())
	assert.Equal(t, 12.0, m.Report().TotalIn)

	binder.on("getStockReport", `{"error":"report backend down"}`)
	res = m.GenerateReport(context.Background(), "daily", "2026-09-01")
	assert.Equal(t, "report backend down", res.Error)
	require.NotNil(t, m.Report())
	assert.Equal(t, "2026-08-31", m.Report().Date)
}

func TestLoadStockMovements(t *testing.T) {
	binder := newFakeBinder()
	binder.on("getStockMovements", `[{"id":"m-1","product_id":"p-1","movement_type":"out","amount":2}]`)
	m := newTestStockManager(binder)

	res := m.LoadStockMovements(context.Background(), models.MovementQuery{ProductID: "p-1"})
	assert.True(t, res.Success)
	require.Len(t, m.Movements(), 1)
	assert.Equal(t, "out", m.Movements()[0].MovementType)
}
