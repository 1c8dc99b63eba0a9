package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"auto-parts-manager/internal/models"
	"auto-parts-manager/internal/state"
)

// StockHandler exposes the cached catalog page, stock movements, lookups and
// reports.
type StockHandler struct {
	stock *state.StockManager
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(stock *state.StockManager) *StockHandler {
	return &StockHandler{stock: stock}
}

// catalogPage is the GET /v1/stock/products payload.
type catalogPage struct {
	Products    []models.Product     `json:"products"`
	Total       int                  `json:"total"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
	TotalPages  int                  `json:"total_pages"`
	SortField   string               `json:"sort_field"`
	SortDir     string               `json:"sort_dir"`
	Filter      models.ProductFilter `json:"filter"`
	Loading     bool                 `json:"loading"`
	CriticalCnt int                  `json:"critical_count"`
}

func (h *StockHandler) currentPage() catalogPage {
	field, dir := h.stock.Sort()
	return catalogPage{
		Products:    h.stock.Products(),
		Total:       h.stock.TotalProducts(),
		Page:        h.stock.CurrentPage(),
		PageSize:    h.stock.ItemsPerPage(),
		TotalPages:  h.stock.TotalPages(),
		SortField:   field,
		SortDir:     dir,
		Filter:      h.stock.Filter(),
		Loading:     h.stock.Loading(),
		CriticalCnt: len(h.stock.CriticalProducts()),
	}
}

// GetProducts handles GET /v1/stock/products - the cached page.
func (h *StockHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.currentPage())
}

// queryRequest drives pagination, sorting and filtering in one call. Zero
// values leave the corresponding state untouched.
type queryRequest struct {
	Page         *int    `json:"page,omitempty"`
	PageSize     *int    `json:"page_size,omitempty"`
	SortField    *string `json:"sort_field,omitempty"`
	SortDir      *string `json:"sort_dir,omitempty"`
	Search       *string `json:"search,omitempty"`
	Category     *string `json:"category,omitempty"`
	OnlyCritical *bool   `json:"only_critical,omitempty"`
	Reset        bool    `json:"reset,omitempty"`
}

// Query handles POST /v1/stock/products/query - applies page, sort and
// filter changes and returns the refreshed page.
func (h *StockHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Invalid JSON in catalog query", "error", err, "remote_addr", r.RemoteAddr)
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}

	ctx := r.Context()
	switch {
	case req.Reset:
		h.stock.ResetFilters(ctx)
	case req.Search != nil || req.Category != nil || req.OnlyCritical != nil:
		filter := h.stock.Filter()
		if req.Search != nil {
			filter.Search = *req.Search
		}
		if req.Category != nil {
			filter.Category = *req.Category
		}
		if req.OnlyCritical != nil {
			filter.OnlyCritical = *req.OnlyCritical
		}
		h.stock.ApplyFilter(ctx, filter)
	case req.SortField != nil || req.SortDir != nil:
		field, dir := h.stock.Sort()
		if req.SortField != nil {
			field = *req.SortField
		}
		if req.SortDir != nil {
			dir = *req.SortDir
		}
		h.stock.SetSort(ctx, field, dir)
	case req.PageSize != nil:
		h.stock.SetPageSize(ctx, *req.PageSize)
	case req.Page != nil:
		h.stock.GoToPage(ctx, *req.Page)
	default:
		h.stock.LoadProductsPaginated(ctx)
	}

	writeJSONResponse(w, http.StatusOK, h.currentPage())
}

// stockMoveRequest is the single stock in/out body.
type stockMoveRequest struct {
	ProductID string  `json:"product_id"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note"`
}

// StockIn handles POST /v1/stock/in.
func (h *StockHandler) StockIn(w http.ResponseWriter, r *http.Request) {
	h.singleMove(w, r, h.stock.StockIn)
}

// StockOut handles POST /v1/stock/out.
func (h *StockHandler) StockOut(w http.ResponseWriter, r *http.Request) {
	h.singleMove(w, r, h.stock.StockOut)
}

func (h *StockHandler) singleMove(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, productID string, amount float64, note string) models.OpResult) {
	var req stockMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if req.ProductID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Product id required")
		return
	}
	if req.Amount <= 0 {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Amount must be positive")
		return
	}

	res := op(r.Context(), req.ProductID, req.Amount, req.Note)
	if res.Error != "" {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", res.Error)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}

func (h *StockHandler) bulkMove(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, entries []models.BulkStockEntry) models.BulkStockResult) {
	var entries []models.BulkStockEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if len(entries) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "No entries")
		return
	}

	res := op(r.Context(), entries)
	if res.Error != "" {
		// The per-entry breakdown still matters to the caller.
		writeJSONResponse(w, http.StatusBadGateway, res)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}

// BulkStockIn handles POST /v1/stock/bulk-in.
func (h *StockHandler) BulkStockIn(w http.ResponseWriter, r *http.Request) {
	h.bulkMove(w, r, h.stock.BulkStockIn)
}

// BulkStockOut handles POST /v1/stock/bulk-out.
func (h *StockHandler) BulkStockOut(w http.ResponseWriter, r *http.Request) {
	h.bulkMove(w, r, h.stock.BulkStockOut)
}

// GetMovements handles GET /v1/stock/movements?product_id=&start=&end=.
func (h *StockHandler) GetMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := h.stock.LoadStockMovements(r.Context(), models.MovementQuery{
		ProductID: q.Get("product_id"),
		Start:     q.Get("start"),
		End:       q.Get("end"),
	})
	if res.Error != "" {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", res.Error)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.stock.Movements())
}

// GetCritical handles GET /v1/stock/critical.
func (h *StockHandler) GetCritical(w http.ResponseWriter, r *http.Request) {
	h.stock.LoadCriticalStockProducts(r.Context())
	writeJSONResponse(w, http.StatusOK, h.stock.CriticalProducts())
}

// GetLookups handles GET /v1/stock/lookups - categories, brands, units.
func (h *StockHandler) GetLookups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.stock.LoadCategories(ctx)
	h.stock.LoadBrands(ctx)
	h.stock.LoadUnits(ctx)

	writeJSONResponse(w, http.StatusOK, map[string][]string{
		"categories": h.stock.Categories(),
		"brands":     h.stock.Brands(),
		"units":      h.stock.Units(),
	})
}

// reportRequest is the POST /v1/stock/report body.
type reportRequest struct {
	Period string `json:"period"`
	Date   string `json:"date"`
}

// GenerateReport handles POST /v1/stock/report.
func (h *StockHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if req.Period != "daily" && req.Period != "monthly" {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Period must be daily or monthly")
		return
	}

	res := h.stock.GenerateReport(r.Context(), req.Period, req.Date)
	if res.Error != "" {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", res.Error)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.stock.Report())
}

// CreateProduct handles POST /v1/products.
func (h *StockHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if product.Name == "" {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Product name required")
		return
	}

	res := h.stock.CreateProduct(r.Context(), product)
	if res.Error != "" {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", res.Error)
		return
	}
	writeJSONResponse(w, http.StatusCreated, res)
}

// UpdateProduct handles PUT /v1/products/{productId}.
func (h *StockHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	product.ID = mux.Vars(r)["productId"]

	res := h.stock.UpdateProduct(r.Context(), product)
	if res.Error != "" {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", res.Error)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}

// DeleteProduct handles DELETE /v1/products/{productId}.
func (h *StockHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	res := h.stock.DeleteProduct(r.Context(), mux.Vars(r)["productId"])
	if res.Error != "" {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", res.Error)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}
