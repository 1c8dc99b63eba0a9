package state

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"auto-parts-manager/internal/bridge"
	"auto-parts-manager/internal/cache"
	"auto-parts-manager/internal/models"
	"auto-parts-manager/internal/settings"
)

// Lookup cache keys.
const (
	cacheKeyCategories = "categories"
	cacheKeyBrands     = "brands"
	cacheKeyUnits      = "units"
)

// defaultCriticalThreshold applies when a product carries no threshold of its
// own.
const defaultCriticalThreshold = 3

// StockManager owns the cached catalog page, its pagination and filter state,
// the movement history and the generated reports. Every page-state mutation
// re-requests the page from the engine.
type StockManager struct {
	bridge  *bridge.Bridge
	lookups *cache.LookupCache

	mu            sync.RWMutex
	products      []models.Product
	critical      []models.Product
	movements     []models.StockMovement
	categories    []string
	brands        []string
	unitNames     []string
	report        *models.StockReport
	filter        models.ProductFilter
	currentPage   int
	itemsPerPage  int
	totalProducts int
	sortField     string
	sortDir       string
	loading       bool
}

// NewStockManager creates a stock manager. The page size starts from the
// persisted preference; lookups may be nil to disable caching.
func NewStockManager(b *bridge.Bridge, lookups *cache.LookupCache, prefs *settings.Manager) *StockManager {
	pageSize := 25
	if prefs != nil {
		if n := prefs.Get().ItemsPerPage; n > 0 {
			pageSize = n
		}
	}

	return &StockManager{
		bridge:       b,
		lookups:      lookups,
		categories:   bridge.DefaultCategories(),
		unitNames:    bridge.DefaultUnits(),
		currentPage:  1,
		itemsPerPage: pageSize,
		sortField:    "name",
		sortDir:      "asc",
	}
}

// InitialLoad fetches the first catalog page and every lookup list.
func (m *StockManager) InitialLoad(ctx context.Context) {
	m.LoadProductsPaginated(ctx)
	m.LoadCategories(ctx)
	m.LoadBrands(ctx)
	m.LoadUnits(ctx)
}

// ---- Catalog pages ----

// LoadProducts replaces the cached catalog with the full unpaginated list and
// refreshes the critical list.
func (m *StockManager) LoadProducts(ctx context.Context) models.OpResult {
	m.setLoading(true)
	defer m.setLoading(false)

	products, err := m.bridge.ListProducts(ctx)
	if err != nil {
		return models.OpResult{Error: err.Error()}
	}

	m.mu.Lock()
	if products == nil {
		products = []models.Product{}
	}
	m.products = products
	m.totalProducts = len(products)
	m.mu.Unlock()

	m.LoadCriticalStockProducts(ctx)
	return models.OpResult{Success: true}
}

// LoadProductsPaginated requests the page described by the current pagination,
// filter and sort state, adopts the result and refreshes the critical list.
func (m *StockManager) LoadProductsPaginated(ctx context.Context) models.OpResult {
	m.setLoading(true)
	defer m.setLoading(false)

	m.mu.RLock()
	req := models.PaginatedProductRequest{
		Page:         m.currentPage,
		PageSize:     m.itemsPerPage,
		Search:       m.filter.Search,
		Category:     m.filter.Category,
		OnlyCritical: m.filter.OnlyCritical,
		SortField:    m.sortField,
		SortDir:      m.sortDir,
	}
	m.mu.RUnlock()

	page, err := m.bridge.ListProductsPaginated(ctx, req)
	if err != nil {
		slog.Warn("Could not load catalog page", "page", req.Page, "error", err)
		return models.OpResult{Error: err.Error()}
	}

	m.mu.Lock()
	if page.Products == nil {
		page.Products = []models.Product{}
	}
	m.products = page.Products
	m.totalProducts = page.Total
	if page.Page > 0 {
		m.currentPage = page.Page
	}
	m.mu.Unlock()

	m.LoadCriticalStockProducts(ctx)
	return models.OpResult{Success: true}
}

// GoToPage jumps to page p. Values outside [1, TotalPages] are a silent no-op.
func (m *StockManager) GoToPage(ctx context.Context, p int) models.OpResult {
	m.mu.Lock()
	if p < 1 || p > m.totalPagesLocked() {
		m.mu.Unlock()
		return models.OpResult{Success: true}
	}
	m.currentPage = p
	m.mu.Unlock()

	return m.LoadProductsPaginated(ctx)
}

// SetPageSize changes the page size and jumps back to the first page.
func (m *StockManager) SetPageSize(ctx context.Context, size int) models.OpResult {
	if size < 1 {
		return models.OpResult{Success: true}
	}

	m.mu.Lock()
	m.itemsPerPage = size
	m.currentPage = 1
	m.mu.Unlock()

	return m.LoadProductsPaginated(ctx)
}

// SetSort changes the sort order and jumps back to the first page.
func (m *StockManager) SetSort(ctx context.Context, field, dir string) models.OpResult {
	m.mu.Lock()
	m.sortField = field
	m.sortDir = dir
	m.currentPage = 1
	m.mu.Unlock()

	return m.LoadProductsPaginated(ctx)
}

// ApplyFilter replaces the active filter and jumps back to the first page.
func (m *StockManager) ApplyFilter(ctx context.Context, filter models.ProductFilter) models.OpResult {
	m.mu.Lock()
	m.filter.Search = filter.Search
	m.filter.Category = filter.Category
	m.filter.OnlyCritical = filter.OnlyCritical
	m.currentPage = 1
	m.mu.Unlock()

	return m.LoadProductsPaginated(ctx)
}

// ResetFilters clears the filter and re-requests the first page.
func (m *StockManager) ResetFilters(ctx context.Context) models.OpResult {
	return m.ApplyFilter(ctx, models.ProductFilter{})
}

// FilteredProducts applies the active filter over the cached page. It is a
// derived view: search matches name, OEM number or brand case-insensitively,
// category matches exactly and the critical flag keeps only low-stock rows.
func (m *StockManager) FilteredProducts() []models.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(m.filter.Search))
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.OEMNumber), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			continue
		}
		if m.filter.Category != "" && p.Category != m.filter.Category {
			continue
		}
		if m.filter.OnlyCritical && !IsCriticalStock(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// IsCriticalStock reports whether a product sits at or below its critical
// threshold, falling back to the default threshold when it has none.
func IsCriticalStock(p models.Product) bool {
	threshold := p.CriticalStock
	if threshold <= 0 {
		threshold = defaultCriticalThreshold
	}
	return p.StockQuantity < float64(threshold)
}

// TotalPages is the page count for the current total and page size, never
// below one.
func (m *StockManager) TotalPages() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPagesLocked()
}

func (m *StockManager) totalPagesLocked() int {
	if m.itemsPerPage < 1 || m.totalProducts < 1 {
		return 1
	}
	pages := (m.totalProducts + m.itemsPerPage - 1) / m.itemsPerPage
	if pages < 1 {
		return 1
	}
	return pages
}

// ---- Stock movements ----

// StockIn records a single stock entry and reloads the catalog on success.
func (m *StockManager) StockIn(ctx context.Context, productID string, amount float64, note string) models.OpResult {
	res := m.bridge.StockIn(ctx, productID, amount, note)
	if msg, failed := res.Failed("Stock in failed"); failed {
		return models.OpResult{Error: msg}
	}
	m.LoadProductsPaginated(ctx)
	return models.OpResult{Success: true}
}

// StockOut records a single stock withdrawal and reloads the catalog on
// success.
func (m *StockManager) StockOut(ctx context.Context, productID string, amount float64, note string) models.OpResult {
	res := m.bridge.StockOut(ctx, productID, amount, note)
	if msg, failed := res.Failed("Stock out failed"); failed {
		return models.OpResult{Error: msg}
	}
	m.LoadProductsPaginated(ctx)
	return models.OpResult{Success: true}
}

// BulkStockIn records several entries in one call, passing the per-entry
// breakdown through and reloading the catalog on success.
func (m *StockManager) BulkStockIn(ctx context.Context, entries []models.BulkStockEntry) models.BulkStockResult {
	res := m.bridge.BulkStockIn(ctx, entries)
	return m.finishBulk(ctx, res, "Bulk stock in failed")
}

// BulkStockOut records several withdrawals in one call.
func (m *StockManager) BulkStockOut(ctx context.Context, entries []models.BulkStockEntry) models.BulkStockResult {
	res := m.bridge.BulkStockOut(ctx, entries)
	return m.finishBulk(ctx, res, "Bulk stock out failed")
}

func (m *StockManager) finishBulk(ctx context.Context, res models.BulkStockResult, fallback string) models.BulkStockResult {
	if !res.Success {
		if res.Error == "" {
			res.Error = fallback
		}
		return res
	}
	m.LoadProductsPaginated(ctx)
	return res
}

// LoadStockMovements fetches movement history for a product and date window.
func (m *StockManager) LoadStockMovements(ctx context.Context, query models.MovementQuery) models.OpResult {
	movements, err := m.bridge.GetStockMovements(ctx, query)
	if err != nil {
		return models.OpResult{Error: err.Error()}
	}

	m.mu.Lock()
	if movements == nil {
		movements = []models.StockMovement{}
	}
	m.movements = movements
	m.mu.Unlock()
	return models.OpResult{Success: true}
}

// LoadCriticalStockProducts refreshes the low-stock list. Failures keep the
// previous list.
func (m *StockManager) LoadCriticalStockProducts(ctx context.Context) {
	critical, err := m.bridge.GetCriticalStockProducts(ctx)
	if err != nil {
		slog.Warn("Could not load critical stock products", "error", err)
		return
	}

	m.mu.Lock()
	if critical == nil {
		critical = []models.Product{}
	}
	m.critical = critical
	m.mu.Unlock()
}

// ---- Catalog mutations ----

// CreateProduct creates a catalog entry with every field set. Creation counts
// as successful only when the engine returns an id.
func (m *StockManager) CreateProduct(ctx context.Context, product models.Product) models.SaveProductResult {
	res := m.bridge.CreateProductFull(ctx, product)
	if res.Error != "" {
		return res
	}
	if res.ID == "" {
		return models.SaveProductResult{Error: "Product creation failed"}
	}

	m.refreshAfterCatalogChange(ctx)
	return res
}

// UpdateProduct rewrites a catalog entry and reloads the catalog and
// categories on success.
func (m *StockManager) UpdateProduct(ctx context.Context, product models.Product) models.OpResult {
	res := m.bridge.UpdateProduct(ctx, product)
	if msg, failed := res.Failed("Product update failed"); failed {
		return models.OpResult{Error: msg}
	}

	m.refreshAfterCatalogChange(ctx)
	return models.OpResult{Success: true}
}

// DeleteProduct removes a catalog entry and reloads the catalog on success.
func (m *StockManager) DeleteProduct(ctx context.Context, id string) models.OpResult {
	res := m.bridge.DeleteProduct(ctx, id)
	if msg, failed := res.Failed("Product deletion failed"); failed {
		return models.OpResult{Error: msg}
	}

	m.LoadProductsPaginated(ctx)
	return models.OpResult{Success: true}
}

func (m *StockManager) refreshAfterCatalogChange(ctx context.Context) {
	if m.lookups != nil {
		m.lookups.Invalidate(cacheKeyCategories)
		m.lookups.Invalidate(cacheKeyBrands)
	}
	m.LoadProductsPaginated(ctx)
	m.LoadCategories(ctx)
}

// ---- Lookup lists ----

// LoadCategories fetches the category list, keeping the built-in defaults
// when the engine returns nothing.
func (m *StockManager) LoadCategories(ctx context.Context) {
	m.loadLookup(ctx, cacheKeyCategories, m.bridge.GetCategories, func(values []string) {
		m.categories = values
	})
}

// LoadBrands fetches the brand list.
func (m *StockManager) LoadBrands(ctx context.Context) {
	m.loadLookup(ctx, cacheKeyBrands, m.bridge.GetBrands, func(values []string) {
		m.brands = values
	})
}

// LoadUnits fetches the unit list, keeping the built-in defaults when the
// engine returns nothing.
func (m *StockManager) LoadUnits(ctx context.Context) {
	m.loadLookup(ctx, cacheKeyUnits, m.bridge.GetUnits, func(values []string) {
		m.unitNames = values
	})
}

func (m *StockManager) loadLookup(ctx context.Context, key string, fetch func(context.Context) ([]string, error), assign func([]string)) {
	if m.lookups != nil {
		if values, ok := m.lookups.Get(key); ok {
			m.mu.Lock()
			assign(values)
			m.mu.Unlock()
			return
		}
	}

	values, err := fetch(ctx)
	if err != nil {
		slog.Warn("Could not load lookup list", "key", key, "error", err)
		return
	}
	if len(values) == 0 {
		return
	}

	m.mu.Lock()
	assign(values)
	m.mu.Unlock()

	if m.lookups != nil {
		m.lookups.Set(key, values)
	}
}

// ---- Reports ----

// GenerateReport asks the engine for a daily or monthly stock report. A
// failure keeps the previously generated report in place.
func (m *StockManager) GenerateReport(ctx context.Context, period, date string) models.OpResult {
	report := m.bridge.GetStockReport(ctx, models.ReportRequest{Period: period, Date: date})
	if report.Error != "" {
		return models.OpResult{Error: report.Error}
	}

	m.mu.Lock()
	m.report = &report
	m.mu.Unlock()
	return models.OpResult{Success: true}
}

// Report returns the last generated report, nil when none exists.
func (m *StockManager) Report() *models.StockReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.report == nil {
		return nil
	}
	copied := *m.report
	return &copied
}

// ---- Accessors ----

// Products returns a copy of the cached catalog page.
func (m *StockManager) Products() []models.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Product(nil), m.products...)
}

// CriticalProducts returns a copy of the low-stock list.
func (m *StockManager) CriticalProducts() []models.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Product(nil), m.critical...)
}

// Movements returns a copy of the loaded movement history.
func (m *StockManager) Movements() []models.StockMovement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.StockMovement(nil), m.movements...)
}

// Categories returns the current category list.
func (m *StockManager) Categories() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.categories...)
}

// Brands returns the current brand list.
func (m *StockManager) Brands() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.brands...)
}

// Units returns the current unit list.
func (m *StockManager) Units() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.unitNames...)
}

// CurrentPage returns the one-based page number.
func (m *StockManager) CurrentPage() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentPage
}

// ItemsPerPage returns the page size.
func (m *StockManager) ItemsPerPage() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.itemsPerPage
}

// TotalProducts returns the engine-reported total row count.
func (m *StockManager) TotalProducts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalProducts
}

// Sort returns the active sort field and direction.
func (m *StockManager) Sort() (field, dir string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortField, m.sortDir
}

// Filter returns the active filter.
func (m *StockManager) Filter() models.ProductFilter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter
}

// Loading reports whether a catalog request is in flight.
func (m *StockManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *StockManager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}
