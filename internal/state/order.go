package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"auto-parts-manager/internal/bridge"
	"auto-parts-manager/internal/models"
	"auto-parts-manager/internal/settings"
	"auto-parts-manager/internal/tasks"
	"auto-parts-manager/internal/units"
)

// ErrEmptyOrder rejects saving an order with no line items. Checked before
// any remote call.
var ErrEmptyOrder = errors.New("order has no items")

// noOEM marks a line item without an OEM number.
const noOEM = "-"

// ItemInput carries the user-entered fields of a line item.
type ItemInput struct {
	Name       string
	OEMNumber  string
	Quantity   float64
	UnitPrice  float64
	PartStatus string
}

// OrderManager owns the in-progress order draft and mediates every change to
// it. A draft becomes persisted on its first successful save and keeps that
// identity across re-saves until Reset.
type OrderManager struct {
	bridge *bridge.Bridge
	tasks  *tasks.Runner
	prefs  *settings.Manager
	now    func() time.Time

	mu                sync.RWMutex
	items             []models.OrderItem
	currentOrderID    string
	currentCustomerID string
	orderTitle        string
	customerName      string
	customerPhone     string
	allProducts       []models.Product
	allCustomers      []models.Customer
}

// NewOrderManager creates an order manager. runner may be nil, in which case
// best-effort side effects run inline (still without surfacing errors).
func NewOrderManager(b *bridge.Bridge, runner *tasks.Runner, prefs *settings.Manager) *OrderManager {
	return &OrderManager{
		bridge: b,
		tasks:  runner,
		prefs:  prefs,
		now:    time.Now,
	}
}

// LoadData refreshes the cached customer and product snapshots. Failures are
// logged; the caller keeps whatever snapshot it had.
func (m *OrderManager) LoadData(ctx context.Context) {
	customers, err := m.bridge.ListCustomers(ctx)
	if err != nil {
		slog.Warn("Could not load customers", "error", err)
	}
	products, err := m.bridge.ListProducts(ctx)
	if err != nil {
		slog.Warn("Could not load products", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if customers != nil {
		m.allCustomers = customers
	}
	if products != nil {
		m.allProducts = products
	}
}

// CheckOEMConflict reports the catalog product that already uses oem under a
// different name. An empty or "-" OEM never conflicts, and neither does an
// exact (name, oem) match; both comparisons are case-insensitive.
func (m *OrderManager) CheckOEMConflict(name, oem string) *models.Product {
	if oem == "" || oem == noOEM {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	lowerOEM := strings.ToLower(oem)
	lowerName := strings.ToLower(name)

	for _, p := range m.allProducts {
		if strings.ToLower(p.OEMNumber) == lowerOEM && strings.ToLower(p.Name) == lowerName {
			return nil
		}
	}
	for i, p := range m.allProducts {
		if strings.ToLower(p.OEMNumber) == lowerOEM && strings.ToLower(p.Name) != lowerName {
			return &m.allProducts[i]
		}
	}
	return nil
}

// AddItem appends a new line item with a client-generated id and upserts the
// product into the catalog as a best-effort side effect.
func (m *OrderManager) AddItem(input ItemInput) models.OrderItem {
	oem := input.OEMNumber
	if oem == "" {
		oem = noOEM
	}

	item := models.OrderItem{
		ID:          strconv.FormatInt(m.now().UnixMilli(), 10),
		ProductName: input.Name,
		OEMNumber:   oem,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		PartStatus:  input.PartStatus,
		TotalPrice:  units.LineTotal(input.Quantity, input.UnitPrice),
	}

	m.mu.Lock()
	m.items = append(m.items, item)
	m.mu.Unlock()

	m.submitTask("catalog-upsert", func(ctx context.Context) error {
		res := m.bridge.SaveProduct(ctx, input.Name, input.OEMNumber)
		if res.Error != "" {
			return errors.New(res.Error)
		}
		m.LoadData(ctx)
		return nil
	})

	return item
}

// UpdateItem replaces the fields of the line item with the given id and
// recomputes its total. Unknown ids are ignored.
func (m *OrderManager) UpdateItem(id string, input ItemInput) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID != id {
			continue
		}
		oem := input.OEMNumber
		if oem == "" {
			oem = noOEM
		}
		m.items[i].ProductName = input.Name
		m.items[i].OEMNumber = oem
		m.items[i].Quantity = input.Quantity
		m.items[i].UnitPrice = input.UnitPrice
		m.items[i].PartStatus = input.PartStatus
		m.items[i].TotalPrice = units.LineTotal(input.Quantity, input.UnitPrice)
		return
	}
}

// RemoveItem deletes the line item with the given id. Unknown ids are ignored.
func (m *OrderManager) RemoveItem(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.items[:0]
	for _, item := range m.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	m.items = kept
}

// Save submits the full draft to the engine. It returns ErrEmptyOrder before
// any remote call when there are no items. On success the draft adopts the
// returned order and customer identity, and stock deduction is queued when
// the auto-deduct preference is on.
func (m *OrderManager) Save(ctx context.Context) (models.SaveOrderResult, error) {
	m.mu.RLock()
	if len(m.items) == 0 {
		m.mu.RUnlock()
		return models.SaveOrderResult{}, ErrEmptyOrder
	}
	order := m.snapshotLocked()
	m.mu.RUnlock()

	result := m.bridge.SaveOrder(ctx, order)
	if result.Error != "" {
		return result, nil
	}

	m.mu.Lock()
	m.currentOrderID = result.ID
	if result.CustomerID != "" {
		m.currentCustomerID = result.CustomerID
	}
	m.mu.Unlock()

	if m.autoDeduct() {
		m.submitTask("stock-deduction", m.DeductStock)
	}

	m.LoadData(ctx)
	return result, nil
}

// DeductStock withdraws each line item's quantity from the catalog in one
// bulk call. Items are matched case-insensitively by OEM number first, then
// by name; unmatched items are skipped silently.
func (m *OrderManager) DeductStock(ctx context.Context) error {
	m.mu.RLock()
	title := m.orderTitle
	customer := m.customerName
	items := append([]models.OrderItem(nil), m.items...)
	catalog := append([]models.Product(nil), m.allProducts...)
	m.mu.RUnlock()

	if title == "" {
		title = "Unnamed"
	}
	if customer == "" {
		customer = "No customer"
	}
	note := fmt.Sprintf("Order: %s - %s", title, customer)

	var entries []models.BulkStockEntry
	for _, item := range items {
		product := matchCatalogProduct(catalog, item)
		if product == nil || product.ID == "" {
			continue
		}
		entries = append(entries, models.BulkStockEntry{
			ProductID: product.ID,
			Amount:    item.Quantity,
			Note:      note,
		})
	}

	if len(entries) == 0 {
		return nil
	}

	res := m.bridge.BulkStockOut(ctx, entries)
	if msg, failed := (models.OpResult{Success: res.Success, Error: res.Error}).Failed("bulk stock out failed"); failed {
		return errors.New(msg)
	}
	return nil
}

// matchCatalogProduct resolves a line item against the catalog: OEM number
// first ("-" and empty mean no OEM), then product name.
func matchCatalogProduct(catalog []models.Product, item models.OrderItem) *models.Product {
	itemOEM := strings.ToLower(item.OEMNumber)
	if itemOEM != "" && itemOEM != noOEM {
		for i, p := range catalog {
			if strings.ToLower(p.OEMNumber) == itemOEM {
				return &catalog[i]
			}
		}
	}

	itemName := strings.ToLower(item.ProductName)
	for i, p := range catalog {
		if strings.ToLower(p.Name) == itemName {
			return &catalog[i]
		}
	}
	return nil
}

// Load replaces the draft with a persisted order. The engine's error is
// surfaced as-is when the id is unknown. Items missing an id get a
// synthesized timestamp+index token; the customer phone comes from the
// cached customer list, empty when absent.
func (m *OrderManager) Load(ctx context.Context, orderID string) (models.Order, error) {
	order, err := m.bridge.LoadOrderByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.currentOrderID = order.ID
	m.currentCustomerID = order.CustomerID
	m.orderTitle = order.Title
	m.customerName = order.CustomerName

	m.customerPhone = ""
	if order.CustomerID != "" {
		for _, c := range m.allCustomers {
			if c.ID == order.CustomerID {
				m.customerPhone = c.Phone
				break
			}
		}
	}

	base := m.now().UnixMilli()
	m.items = make([]models.OrderItem, 0, len(order.Items))
	for i, item := range order.Items {
		if item.ID == "" {
			item.ID = strconv.FormatInt(base+int64(i), 10)
		}
		if item.OEMNumber == "" {
			item.OEMNumber = noOEM
		}
		m.items = append(m.items, item)
	}

	return order, nil
}

// Reset clears every draft field back to defaults in one step.
func (m *OrderManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	m.currentOrderID = ""
	m.currentCustomerID = ""
	m.orderTitle = ""
	m.customerName = ""
	m.customerPhone = ""
}

// ClearItems empties the line item list, keeping the rest of the draft.
func (m *OrderManager) ClearItems() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
}

// SetTitle sets the draft's title.
func (m *OrderManager) SetTitle(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderTitle = title
}

// SetCustomer sets the draft's customer fields.
func (m *OrderManager) SetCustomer(id, name, phone string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentCustomerID = id
	m.customerName = name
	m.customerPhone = phone
}

// IsEditing reports whether the draft carries a persisted identity.
func (m *OrderManager) IsEditing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentOrderID != ""
}

// GrandTotal is the recomputed sum of all line totals.
func (m *OrderManager) GrandTotal() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total float64
	for _, item := range m.items {
		total += item.TotalPrice
	}
	return total
}

// Items returns a copy of the current line items.
func (m *OrderManager) Items() []models.OrderItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.OrderItem(nil), m.items...)
}

// Customers returns the cached customer snapshot.
func (m *OrderManager) Customers() []models.Customer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Customer(nil), m.allCustomers...)
}

// CatalogProducts returns the cached product snapshot.
func (m *OrderManager) CatalogProducts() []models.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Product(nil), m.allProducts...)
}

// Snapshot returns the current draft as a full order.
func (m *OrderManager) Snapshot() models.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *OrderManager) snapshotLocked() models.Order {
	return models.Order{
		ID:            m.currentOrderID,
		Title:         m.orderTitle,
		CustomerID:    m.currentCustomerID,
		CustomerName:  m.customerName,
		CustomerPhone: m.customerPhone,
		Items:         append([]models.OrderItem(nil), m.items...),
	}
}

func (m *OrderManager) autoDeduct() bool {
	if m.prefs == nil {
		return false
	}
	return m.prefs.Get().AutoDeductStock || m.prefs.GetOrderPrefs().AutoDeductStock
}

// submitTask routes best-effort work through the runner; without one the
// work runs inline and its error is logged here instead.
func (m *OrderManager) submitTask(name string, run func(ctx context.Context) error) {
	if m.tasks != nil {
		m.tasks.Submit(name, run)
		return
	}
	if err := run(context.Background()); err != nil {
		slog.Error("Best-effort task failed", "task", name, "error", err)
	}
}
