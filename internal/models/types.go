package models

// Product is a catalog entry owned by the host engine. The UI holds a cached page.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	OEMNumber     string  `json:"oem_number"`
	Brand         string  `json:"brand"`
	Category      string  `json:"category"`
	Unit          string  `json:"unit"` // adet, litre, kutu, paket
	StockQuantity float64 `json:"stock_quantity"`
	CriticalStock int     `json:"critical_stock"`
	UsedCount     int     `json:"used_count"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// Customer is a read-only snapshot cached from the host engine.
type Customer struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Address     string  `json:"address,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	OrderCount  int     `json:"order_count,omitempty"`
	TotalAmount float64 `json:"total_amount,omitempty"`
}

// OrderItem is a line item owned by the in-progress order.
type OrderItem struct {
	ID          string  `json:"id"`
	ProductName string  `json:"product_name"`
	OEMNumber   string  `json:"oem_number"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	PartStatus  string  `json:"part_status"` // "original" or "used"
	TotalPrice  float64 `json:"total_price"`
}

// Order is the full order snapshot exchanged with the host engine.
// CustomerPhone travels with the save request; the engine resolves it into its
// own customer record and does not echo it back.
type Order struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	CustomerID    string      `json:"customer_id"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone,omitempty"`
	Items         []OrderItem `json:"items"`
	GrandTotal    float64     `json:"grand_total,omitempty"`
}

// StockMovement is an append-only stock in/out record.
type StockMovement struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	MovementType string  `json:"movement_type"` // "in" or "out"
	Amount       float64 `json:"amount"`
	Note         string  `json:"note"`
	Date         string  `json:"date"`
}

// BulkStockEntry is one adjustment inside a bulk stock request.
type BulkStockEntry struct {
	ProductID string  `json:"product_id"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note"`
}

// ProductFilter carries the catalog listing parameters.
type ProductFilter struct {
	Search       string `json:"search"`
	Category     string `json:"category"`
	OnlyCritical bool   `json:"only_critical"`
	SortField    string `json:"sort_field"` // name, oem_number, brand, category, stock_quantity, critical_stock
	SortDir      string `json:"sort_dir"`   // asc, desc
}

// PaginatedProductRequest is the wire shape of a paginated catalog read.
type PaginatedProductRequest struct {
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
	Search       string `json:"search"`
	Category     string `json:"category"`
	OnlyCritical bool   `json:"only_critical"`
	SortField    string `json:"sort_field"`
	SortDir      string `json:"sort_dir"`
}

// ProductPage is one page of the catalog plus pagination bookkeeping.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// OrderListFilter selects which orders to load (today, range, all).
type OrderListFilter struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// AdvancedOrderFilter is the advanced order search request.
type AdvancedOrderFilter struct {
	ProductName  string  `json:"product_name,omitempty"`
	OEMNumber    string  `json:"oem_number,omitempty"`
	CustomerName string  `json:"customer_name,omitempty"`
	MinQuantity  int     `json:"min_quantity,omitempty"`
	MaxQuantity  int     `json:"max_quantity,omitempty"`
	MinTotal     float64 `json:"min_total,omitempty"`
	MaxTotal     float64 `json:"max_total,omitempty"`
	MinUnitPrice float64 `json:"min_unit_price,omitempty"`
	MaxUnitPrice float64 `json:"max_unit_price,omitempty"`
	DateFilter   string  `json:"date_filter,omitempty"`
	StartDate    string  `json:"start_date,omitempty"`
	EndDate      string  `json:"end_date,omitempty"`
}

// MovementQuery selects stock movement history.
type MovementQuery struct {
	ProductID string `json:"product_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// ReportRequest asks the engine for a stock report.
type ReportRequest struct {
	Period string `json:"period"` // "daily" or "monthly"
	Date   string `json:"date"`   // "2006-01-02" or "2006-01"
}

// ReportProductLine is a per-product row inside a stock report.
type ReportProductLine struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	TotalIn     float64 `json:"total_in"`
	TotalOut    float64 `json:"total_out"`
}

// StockReport is the engine's report payload.
type StockReport struct {
	Period           string              `json:"period"`
	Date             string              `json:"date"`
	TotalIn          float64             `json:"total_in"`
	TotalOut         float64             `json:"total_out"`
	InMovementCount  int                 `json:"in_movement_count"`
	OutMovementCount int                 `json:"out_movement_count"`
	Products         []ReportProductLine `json:"products,omitempty"`
	Error            string              `json:"error,omitempty"`
}

// ErrorResponse is the HTTP error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OpResult is the uniform outcome of a mutating remote operation.
type OpResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the operation did not succeed, substituting msg when
// the engine provided no message of its own.
func (r OpResult) Failed(msg string) (string, bool) {
	if r.Success {
		return "", false
	}
	if r.Error != "" {
		return r.Error, true
	}
	return msg, true
}

// SaveOrderResult is the engine's answer to an order save.
type SaveOrderResult struct {
	Success    bool   `json:"success"`
	ID         string `json:"id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SaveProductResult is the engine's answer to a catalog upsert or create.
type SaveProductResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BulkStockResult carries the per-entry breakdown of a bulk stock call.
type BulkStockResult struct {
	Success   bool     `json:"success"`
	Succeeded int      `json:"succeeded"`
	Errors    []string `json:"errors,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// DeveloperMode is the developer-mode flag payload.
type DeveloperMode struct {
	Enabled bool   `json:"enabled"`
	Error   string `json:"error,omitempty"`
}
