package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"auto-parts-manager/internal/bridge"
	"auto-parts-manager/internal/models"
	"auto-parts-manager/internal/state"
)

// OrderHandler exposes the order draft and the persisted-order operations.
type OrderHandler struct {
	orders *state.OrderManager
	bridge *bridge.Bridge
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders *state.OrderManager, b *bridge.Bridge) *OrderHandler {
	return &OrderHandler{orders: orders, bridge: b}
}

// writeJSONResponse is a helper function to write JSON responses
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse is a helper function to write error responses
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.ErrorResponse{Code: code, Message: message})
}

// currentDraft is the GET /v1/orders/current payload.
type currentDraft struct {
	models.Order
	GrandTotal float64 `json:"grand_total"`
	IsEditing  bool    `json:"is_editing"`
}

// GetCurrent handles GET /v1/orders/current - the in-progress draft.
func (h *OrderHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, currentDraft{
		Order:      h.orders.Snapshot(),
		GrandTotal: h.orders.GrandTotal(),
		IsEditing:  h.orders.IsEditing(),
	})
}

// itemRequest is the add/update line item body.
type itemRequest struct {
	Name       string  `json:"name"`
	OEMNumber  string  `json:"oem_number"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	PartStatus string  `json:"part_status"`
}

func (r itemRequest) toInput() state.ItemInput {
	return state.ItemInput{
		Name:       r.Name,
		OEMNumber:  r.OEMNumber,
		Quantity:   r.Quantity,
		UnitPrice:  r.UnitPrice,
		PartStatus: r.PartStatus,
	}
}

// AddItem handles POST /v1/orders/items.
func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Invalid JSON in add item request", "error", err, "remote_addr", r.RemoteAddr)
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Product name required")
		return
	}

	item := h.orders.AddItem(req.toInput())
	writeJSONResponse(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /v1/orders/items/{itemId}.
func (h *OrderHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}

	h.orders.UpdateItem(mux.Vars(r)["itemId"], req.toInput())
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"items":       h.orders.Items(),
		"grand_total": h.orders.GrandTotal(),
	})
}

// RemoveItem handles DELETE /v1/orders/items/{itemId}.
func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.orders.RemoveItem(mux.Vars(r)["itemId"])
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"items":       h.orders.Items(),
		"grand_total": h.orders.GrandTotal(),
	})
}

// metaRequest is the draft title/customer body.
type metaRequest struct {
	Title         string `json:"title"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// SetMeta handles PUT /v1/orders/meta.
func (h *OrderHandler) SetMeta(w http.ResponseWriter, r *http.Request) {
	var req metaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}

	h.orders.SetTitle(req.Title)
	h.orders.SetCustomer(req.CustomerID, req.CustomerName, req.CustomerPhone)
	writeJSONResponse(w, http.StatusOK, h.orders.Snapshot())
}

// Save handles POST /v1/orders/save.
func (h *OrderHandler) Save(w http.ResponseWriter, r *http.Request) {
	res, err := h.orders.Save(r.Context())
	if errors.Is(err, state.ErrEmptyOrder) {
		writeErrorResponse(w, http.StatusBadRequest, "empty_order", err.Error())
		return
	}
	if res.Error != "" {
		writeJSONResponse(w, http.StatusBadGateway, res)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}

// Reset handles POST /v1/orders/reset.
func (h *OrderHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.orders.Reset()
	writeJSONResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// CheckOEMConflict handles GET /v1/orders/oem-conflict?name=&oem=.
func (h *OrderHandler) CheckOEMConflict(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	oem := r.URL.Query().Get("oem")

	conflict := h.orders.CheckOEMConflict(name, oem)
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"conflict": conflict != nil,
		"product":  conflict,
	})
}

// Load handles POST /v1/orders/{orderId}/load - replaces the draft with a
// persisted order.
func (h *OrderHandler) Load(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Load(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, order)
}

// List handles GET /v1/orders?type=&start_date=&end_date=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.OrderListFilter{
		Type:      q.Get("type"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}

	orders, err := h.bridge.LoadOrders(r.Context(), filter)
	if err != nil {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", err.Error())
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSONResponse(w, http.StatusOK, orders)
}

// Search handles GET /v1/orders/search?q=.
func (h *OrderHandler) Search(w http.ResponseWriter, r *http.Request) {
	orders, err := h.bridge.SearchOrders(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", err.Error())
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSONResponse(w, http.StatusOK, orders)
}

// SearchAdvanced handles POST /v1/orders/search.
func (h *OrderHandler) SearchAdvanced(w http.ResponseWriter, r *http.Request) {
	var filter models.AdvancedOrderFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}

	orders, err := h.bridge.SearchOrdersAdvanced(r.Context(), filter)
	if err != nil {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", err.Error())
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSONResponse(w, http.StatusOK, orders)
}

// Delete handles DELETE /v1/orders/{orderId}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res := h.bridge.DeleteOrder(r.Context(), mux.Vars(r)["orderId"])
	if msg, failed := res.Failed("Order deletion failed"); failed {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", msg)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}

// ListCustomers handles GET /v1/customers.
func (h *OrderHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.bridge.ListCustomers(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", err.Error())
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	writeJSONResponse(w, http.StatusOK, customers)
}

// SearchCustomers handles GET /v1/customers/search?q=.
func (h *OrderHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.bridge.SearchCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", err.Error())
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	writeJSONResponse(w, http.StatusOK, customers)
}

// SearchProducts handles GET /v1/products/search?q= - autocomplete for the
// order composer.
func (h *OrderHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.bridge.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", err.Error())
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSONResponse(w, http.StatusOK, products)
}

// CustomerOrders handles GET /v1/customers/{customerId}/orders.
func (h *OrderHandler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.bridge.GetCustomerOrders(r.Context(), mux.Vars(r)["customerId"])
	if err != nil {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", err.Error())
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSONResponse(w, http.StatusOK, orders)
}

// UpdateCustomer handles PUT /v1/customers/{customerId}.
func (h *OrderHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	customer.ID = mux.Vars(r)["customerId"]

	res := h.bridge.UpdateCustomer(r.Context(), customer)
	if msg, failed := res.Failed("Customer update failed"); failed {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", msg)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}

// DeleteCustomer handles DELETE /v1/customers/{customerId}.
func (h *OrderHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	res := h.bridge.DeleteCustomer(r.Context(), mux.Vars(r)["customerId"])
	if msg, failed := res.Failed("Customer deletion failed"); failed {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", msg)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}
