package bridge

import (
	"context"
	"errors"
)

// ErrNotBound is returned by a Binder when the named operation is not
// provided by the host. The bridge degrades to a fixed default instead of
// surfacing it to callers.
var ErrNotBound = errors.New("operation not bound")

// Binder is the capability boundary to the host engine. Each named operation
// accepts a single JSON-encoded argument (or a raw id/term, or nothing) and
// answers with a JSON-encoded result.
type Binder interface {
	Call(ctx context.Context, op string, payload string) (string, error)
}

// NopBinder is the Binder used when no engine is attached. Every call reports
// the operation as unbound.
type NopBinder struct{}

func (NopBinder) Call(ctx context.Context, op string, payload string) (string, error) {
	return "", ErrNotBound
}

// Named operations of the host engine.
const (
	opSaveOrder            = "saveOrder"
	opLoadOrders           = "loadOrders"
	opLoadOrderByID        = "loadOrderById"
	opDeleteOrder          = "deleteOrder"
	opSearchOrders         = "searchOrders"
	opSearchOrdersAdvanced = "searchOrdersAdvanced"
	opListCustomers        = "listAllCustomers"
	opSearchCustomers      = "searchCustomers"
	opGetCustomerOrders    = "getCustomerOrders"
	opUpdateCustomer       = "updateCustomer"
	opDeleteCustomer       = "deleteCustomer"
	opListProducts         = "listAllProducts"
	opListProductsPaged    = "listProductsPaginated"
	opSearchProducts       = "searchProducts"
	opSaveProduct          = "saveProduct"
	opCreateProductFull    = "createProductFull"
	opUpdateProduct        = "updateProduct"
	opDeleteProduct        = "deleteProduct"
	opStockIn              = "stockIn"
	opStockOut             = "stockOut"
	opBulkStockIn          = "bulkStockIn"
	opBulkStockOut         = "bulkStockOut"
	opGetStockMovements    = "getStockMovements"
	opGetCriticalStock     = "getCriticalStockProducts"
	opGetStockReport       = "getStockReport"
	opGetCategories        = "getCategories"
	opGetBrands            = "getBrands"
	opGetUnits             = "getUnits"
	opSetDeveloperMode     = "setDeveloperMode"
	opGetDeveloperMode     = "getDeveloperMode"
)
