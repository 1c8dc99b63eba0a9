// Package bridge marshals requests to the host engine's named operations and
// decodes their textual answers. It is a pure marshalling boundary: no
// retries, no timeouts, no state.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"auto-parts-manager/internal/models"
)

// apiUnavailable is the fixed error text for object-shaped calls whose
// operation is not bound.
const apiUnavailable = "API not available"

// CallRecorder receives one measurement per bridge round-trip.
type CallRecorder interface {
	RecordCall(ctx context.Context, op string, duration time.Duration, err error)
}

// Bridge wraps a Binder with one typed method per host operation.
type Bridge struct {
	binder   Binder
	recorder CallRecorder
}

// New creates a Bridge over the given binder. recorder may be nil.
func New(binder Binder, recorder CallRecorder) *Bridge {
	if binder == nil {
		binder = NopBinder{}
	}
	return &Bridge{binder: binder, recorder: recorder}
}

// call performs one round-trip and records it.
func (b *Bridge) call(ctx context.Context, op, payload string) (string, error) {
	callID := uuid.NewString()
	start := time.Now()

	result, err := b.binder.Call(ctx, op, payload)
	duration := time.Since(start)

	if b.recorder != nil {
		b.recorder.RecordCall(ctx, op, duration, err)
	}

	switch {
	case errors.Is(err, ErrNotBound):
		slog.Debug("Host operation not bound", "op", op, "call_id", callID)
	case err != nil:
		slog.Warn("Host call failed", "op", op, "call_id", callID, "error", err, "duration_ms", duration.Milliseconds())
	default:
		slog.Debug("Host call completed", "op", op, "call_id", callID, "duration_ms", duration.Milliseconds())
	}

	return result, err
}

// callJSON marshals req (skipped when nil), performs the call and decodes the
// answer into out (skipped when out is nil).
func (b *Bridge) callJSON(ctx context.Context, op string, req, out any) error {
	var payload string
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		payload = string(data)
	}

	result, err := b.call(ctx, op, payload)
	if err != nil {
		return err
	}
	if out == nil || result == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(result), out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

// callRaw is callJSON for operations taking a bare id or search term.
func (b *Bridge) callRaw(ctx context.Context, op, arg string, out any) error {
	result, err := b.call(ctx, op, arg)
	if err != nil {
		return err
	}
	if out == nil || result == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(result), out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

// DefaultCategories is the category list used until the engine provides one.
func DefaultCategories() []string {
	return []string{"Yağ", "Filtre", "Sprey", "Fren", "Diğer"}
}

// DefaultUnits is the unit list used until the engine provides one.
func DefaultUnits() []string {
	return []string{"adet", "litre", "kutu", "paket"}
}

// ---- Order operations ----

// SaveOrder persists a full order snapshot and reports the adopted identity.
func (b *Bridge) SaveOrder(ctx context.Context, order models.Order) models.SaveOrderResult {
	var res models.SaveOrderResult
	if err := b.callJSON(ctx, opSaveOrder, order, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.SaveOrderResult{Error: apiUnavailable}
		}
		return models.SaveOrderResult{Error: err.Error()}
	}
	return res
}

// LoadOrders lists orders per filter (today, range, all).
func (b *Bridge) LoadOrders(ctx context.Context, filter models.OrderListFilter) ([]models.Order, error) {
	var out []models.Order
	if err := b.callJSON(ctx, opLoadOrders, filter, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// LoadOrderByID fetches one persisted order.
func (b *Bridge) LoadOrderByID(ctx context.Context, id string) (models.Order, error) {
	var raw struct {
		models.Order
		Error string `json:"error,omitempty"`
	}
	if err := b.callRaw(ctx, opLoadOrderByID, id, &raw); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.Order{}, errors.New(apiUnavailable)
		}
		return models.Order{}, err
	}
	if raw.Error != "" {
		return models.Order{}, errors.New(raw.Error)
	}
	return raw.Order, nil
}

// DeleteOrder removes a persisted order.
func (b *Bridge) DeleteOrder(ctx context.Context, id string) models.OpResult {
	var res models.OpResult
	if err := b.callRaw(ctx, opDeleteOrder, id, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.OpResult{Error: apiUnavailable}
		}
		return models.OpResult{Error: err.Error()}
	}
	return res
}

// SearchOrders runs a free-text order search.
func (b *Bridge) SearchOrders(ctx context.Context, term string) ([]models.Order, error) {
	var out []models.Order
	if err := b.callRaw(ctx, opSearchOrders, term, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// SearchOrdersAdvanced runs a multi-field order search.
func (b *Bridge) SearchOrdersAdvanced(ctx context.Context, filter models.AdvancedOrderFilter) ([]models.Order, error) {
	var out []models.Order
	if err := b.callJSON(ctx, opSearchOrdersAdvanced, filter, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// ---- Customer operations ----

// ListCustomers returns the full customer list.
func (b *Bridge) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	if err := b.callJSON(ctx, opListCustomers, nil, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// SearchCustomers runs a customer autocomplete search.
func (b *Bridge) SearchCustomers(ctx context.Context, term string) ([]models.Customer, error) {
	var out []models.Customer
	if err := b.callRaw(ctx, opSearchCustomers, term, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// GetCustomerOrders lists a customer's orders.
func (b *Bridge) GetCustomerOrders(ctx context.Context, customerID string) ([]models.Order, error) {
	var out []models.Order
	if err := b.callRaw(ctx, opGetCustomerOrders, customerID, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// UpdateCustomer rewrites a customer's name and phone.
func (b *Bridge) UpdateCustomer(ctx context.Context, customer models.Customer) models.OpResult {
	var res models.OpResult
	if err := b.callJSON(ctx, opUpdateCustomer, customer, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.OpResult{Error: apiUnavailable}
		}
		return models.OpResult{Error: err.Error()}
	}
	return res
}

// DeleteCustomer removes a customer.
func (b *Bridge) DeleteCustomer(ctx context.Context, id string) models.OpResult {
	var res models.OpResult
	if err := b.callRaw(ctx, opDeleteCustomer, id, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.OpResult{Error: apiUnavailable}
		}
		return models.OpResult{Error: err.Error()}
	}
	return res
}

// ---- Product operations ----

// ListProducts returns the whole catalog.
func (b *Bridge) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := b.callJSON(ctx, opListProducts, nil, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// ListProductsPaginated returns one catalog page with total bookkeeping.
func (b *Bridge) ListProductsPaginated(ctx context.Context, req models.PaginatedProductRequest) (models.ProductPage, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 25
	}
	if req.SortDir == "" {
		req.SortDir = "asc"
	}

	var page models.ProductPage
	if err := b.callJSON(ctx, opListProductsPaged, req, &page); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.ProductPage{Products: []models.Product{}, Page: 1, PageSize: req.PageSize}, nil
		}
		return models.ProductPage{}, err
	}
	return page, nil
}

// SearchProducts runs a product autocomplete search.
func (b *Bridge) SearchProducts(ctx context.Context, term string) ([]models.Product, error) {
	var out []models.Product
	if err := b.callRaw(ctx, opSearchProducts, term, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// SaveProduct upserts a catalog entry by name and OEM number.
func (b *Bridge) SaveProduct(ctx context.Context, name, oemNumber string) models.SaveProductResult {
	req := struct {
		Name      string `json:"name"`
		OEMNumber string `json:"oem_number"`
	}{Name: name, OEMNumber: oemNumber}

	var res models.SaveProductResult
	if err := b.callJSON(ctx, opSaveProduct, req, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.SaveProductResult{Error: apiUnavailable}
		}
		return models.SaveProductResult{Error: err.Error()}
	}
	return res
}

// CreateProductFull creates a catalog entry with every field set.
func (b *Bridge) CreateProductFull(ctx context.Context, product models.Product) models.SaveProductResult {
	var res models.SaveProductResult
	if err := b.callJSON(ctx, opCreateProductFull, product, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.SaveProductResult{Error: apiUnavailable}
		}
		return models.SaveProductResult{Error: err.Error()}
	}
	return res
}

// UpdateProduct rewrites a catalog entry.
func (b *Bridge) UpdateProduct(ctx context.Context, product models.Product) models.OpResult {
	var res models.OpResult
	if err := b.callJSON(ctx, opUpdateProduct, product, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.OpResult{Error: apiUnavailable}
		}
		return models.OpResult{Error: err.Error()}
	}
	return res
}

// DeleteProduct removes a catalog entry.
func (b *Bridge) DeleteProduct(ctx context.Context, id string) models.OpResult {
	var res models.OpResult
	if err := b.callRaw(ctx, opDeleteProduct, id, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.OpResult{Error: apiUnavailable}
		}
		return models.OpResult{Error: err.Error()}
	}
	return res
}

// ---- Stock operations ----

// StockIn records a single stock entry.
func (b *Bridge) StockIn(ctx context.Context, productID string, amount float64, note string) models.OpResult {
	return b.singleStockOp(ctx, opStockIn, productID, amount, note)
}

// StockOut records a single stock withdrawal.
func (b *Bridge) StockOut(ctx context.Context, productID string, amount float64, note string) models.OpResult {
	return b.singleStockOp(ctx, opStockOut, productID, amount, note)
}

func (b *Bridge) singleStockOp(ctx context.Context, op, productID string, amount float64, note string) models.OpResult {
	req := models.BulkStockEntry{ProductID: productID, Amount: amount, Note: note}
	var res models.OpResult
	if err := b.callJSON(ctx, op, req, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.OpResult{Error: apiUnavailable}
		}
		return models.OpResult{Error: err.Error()}
	}
	return res
}

// BulkStockIn records several stock entries in one call.
func (b *Bridge) BulkStockIn(ctx context.Context, entries []models.BulkStockEntry) models.BulkStockResult {
	return b.bulkStockOp(ctx, opBulkStockIn, entries)
}

// BulkStockOut records several stock withdrawals in one call.
func (b *Bridge) BulkStockOut(ctx context.Context, entries []models.BulkStockEntry) models.BulkStockResult {
	return b.bulkStockOp(ctx, opBulkStockOut, entries)
}

func (b *Bridge) bulkStockOp(ctx context.Context, op string, entries []models.BulkStockEntry) models.BulkStockResult {
	var res models.BulkStockResult
	if err := b.callJSON(ctx, op, entries, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.BulkStockResult{Error: apiUnavailable}
		}
		return models.BulkStockResult{Error: err.Error()}
	}
	return res
}

// GetStockMovements queries movement history for a product and date window.
func (b *Bridge) GetStockMovements(ctx context.Context, query models.MovementQuery) ([]models.StockMovement, error) {
	var out []models.StockMovement
	if err := b.callJSON(ctx, opGetStockMovements, query, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// GetCriticalStockProducts lists products below their critical threshold.
func (b *Bridge) GetCriticalStockProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := b.callJSON(ctx, opGetCriticalStock, nil, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// GetStockReport generates a daily or monthly stock report.
func (b *Bridge) GetStockReport(ctx context.Context, req models.ReportRequest) models.StockReport {
	var res models.StockReport
	if err := b.callJSON(ctx, opGetStockReport, req, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.StockReport{Error: apiUnavailable}
		}
		return models.StockReport{Error: err.Error()}
	}
	return res
}

// ---- Lookup operations ----

// GetCategories returns the category list, falling back to the built-in
// defaults while the engine is absent.
func (b *Bridge) GetCategories(ctx context.Context) ([]string, error) {
	var out []string
	if err := b.callJSON(ctx, opGetCategories, nil, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return DefaultCategories(), nil
		}
		return nil, err
	}
	return out, nil
}

// GetBrands returns the brand list.
func (b *Bridge) GetBrands(ctx context.Context) ([]string, error) {
	var out []string
	if err := b.callJSON(ctx, opGetBrands, nil, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// GetUnits returns the unit list, falling back to the built-in defaults while
// the engine is absent.
func (b *Bridge) GetUnits(ctx context.Context) ([]string, error) {
	var out []string
	if err := b.callJSON(ctx, opGetUnits, nil, &out); err != nil {
		if errors.Is(err, ErrNotBound) {
			return DefaultUnits(), nil
		}
		return nil, err
	}
	return out, nil
}

// ---- Developer mode ----

// SetDeveloperMode flips the engine's developer-mode flag.
func (b *Bridge) SetDeveloperMode(ctx context.Context, enabled bool) models.OpResult {
	req := struct {
		Enabled bool `json:"enabled"`
	}{Enabled: enabled}

	var res models.OpResult
	if err := b.callJSON(ctx, opSetDeveloperMode, req, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.OpResult{Error: apiUnavailable}
		}
		return models.OpResult{Error: err.Error()}
	}
	return res
}

// GetDeveloperMode reads the engine's developer-mode flag; false when absent.
func (b *Bridge) GetDeveloperMode(ctx context.Context) models.DeveloperMode {
	var res models.DeveloperMode
	if err := b.callJSON(ctx, opGetDeveloperMode, nil, &res); err != nil {
		if errors.Is(err, ErrNotBound) {
			return models.DeveloperMode{Enabled: false}
		}
		return models.DeveloperMode{Error: err.Error()}
	}
	return res
}
