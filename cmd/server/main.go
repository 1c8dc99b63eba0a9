package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"auto-parts-manager/internal/bridge"
	"auto-parts-manager/internal/cache"
	"auto-parts-manager/internal/config"
	"auto-parts-manager/internal/handlers"
	"auto-parts-manager/internal/middleware"
	"auto-parts-manager/internal/settings"
	"auto-parts-manager/internal/state"
	"auto-parts-manager/internal/tasks"
	"auto-parts-manager/internal/telemetry"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg := config.LoadConfig()

	slog.Info("Starting auto parts manager", "version", "1.0.0")

	ctx := context.Background()

	// Initialize OpenTelemetry metrics
	otelTelemetry := telemetry.Init(ctx, cfg.MetricsExporter, cfg.MetricsAddr)

	// Settings store and manager
	store, err := settings.NewFileStore(cfg.SettingsPath)
	if err != nil {
		slog.Error("Failed to open settings store", "path", cfg.SettingsPath, "error", err)
		return
	}
	prefs := settings.NewManager(store, nil)
	prefs.Load()

	// Best-effort task runner
	workerCount, _ := strconv.Atoi(cfg.TaskWorkerCount)
	bufferSize, _ := strconv.Atoi(cfg.TaskQueueBufferSize)
	runner := tasks.NewRunner(tasks.RunnerConfig{
		WorkerCount:     workerCount,
		QueueBufferSize: bufferSize,
	})

	// Lookup cache for categories, brands and units
	cacheTTL, err := time.ParseDuration(cfg.LookupCacheTTL)
	if err != nil || cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	cleanupInterval, err := time.ParseDuration(cfg.LookupCacheCleanupInterval)
	if err != nil || cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	lookups := cache.NewLookupCache(cacheTTL, cleanupInterval)

	// Host engine bridge. Without an attached engine every operation degrades
	// to its fixed default.
	var recorder bridge.CallRecorder
	if bridgeMetrics, err := telemetry.NewBridgeMetrics(otelTelemetry.Meter()); err != nil {
		slog.Error("Failed to register bridge metrics", "error", err)
	} else {
		recorder = bridgeMetrics
	}
	engineBridge := bridge.New(bridge.NopBinder{}, recorder)

	// State managers
	orderManager := state.NewOrderManager(engineBridge, runner, prefs)
	stockManager := state.NewStockManager(engineBridge, lookups, prefs)

	orderManager.LoadData(ctx)
	stockManager.InitialLoad(ctx)

	// HTTP handlers
	orderHandler := handlers.NewOrderHandler(orderManager, engineBridge)
	stockHandler := handlers.NewStockHandler(stockManager)
	settingsHandler := handlers.NewSettingsHandler(prefs, engineBridge)
	healthHandler := handlers.NewHealthHandler()
	slog.Debug("HTTP handlers initialized")

	r := mux.NewRouter()

	if httpMetrics, err := telemetry.NewHTTPMetrics(otelTelemetry.Meter()); err != nil {
		slog.Error("Failed to register HTTP metrics", "error", err)
	} else {
		r.Use(httpMetrics.Middleware())
	}

	// Apply auth middleware to v1 API routes
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(middleware.AuthMiddleware)

	// Order draft routes - specific routes first
	v1.HandleFunc("/orders/current", orderHandler.GetCurrent).Methods("GET")
	v1.HandleFunc("/orders/items", orderHandler.AddItem).Methods("POST")
	v1.HandleFunc("/orders/items/{itemId}", orderHandler.UpdateItem).Methods("PUT")
	v1.HandleFunc("/orders/items/{itemId}", orderHandler.RemoveItem).Methods("DELETE")
	v1.HandleFunc("/orders/meta", orderHandler.SetMeta).Methods("PUT")
	v1.HandleFunc("/orders/save", orderHandler.Save).Methods("POST")
	v1.HandleFunc("/orders/reset", orderHandler.Reset).Methods("POST")
	v1.HandleFunc("/orders/oem-conflict", orderHandler.CheckOEMConflict).Methods("GET")
	v1.HandleFunc("/orders/search", orderHandler.Search).Methods("GET")
	v1.HandleFunc("/orders/search", orderHandler.SearchAdvanced).Methods("POST")
	v1.HandleFunc("/orders/{orderId}/load", orderHandler.Load).Methods("POST")
	v1.HandleFunc("/orders/{orderId}", orderHandler.Delete).Methods("DELETE")
	v1.HandleFunc("/orders", orderHandler.List).Methods("GET")

	// Customer routes
	v1.HandleFunc("/customers/search", orderHandler.SearchCustomers).Methods("GET")
	v1.HandleFunc("/customers/{customerId}/orders", orderHandler.CustomerOrders).Methods("GET")
	v1.HandleFunc("/customers/{customerId}", orderHandler.UpdateCustomer).Methods("PUT")
	v1.HandleFunc("/customers/{customerId}", orderHandler.DeleteCustomer).Methods("DELETE")
	v1.HandleFunc("/customers", orderHandler.ListCustomers).Methods("GET")

	// Stock and catalog routes
	v1.HandleFunc("/stock/products/query", stockHandler.Query).Methods("POST")
	v1.HandleFunc("/stock/products", stockHandler.GetProducts).Methods("GET")
	v1.HandleFunc("/stock/in", stockHandler.StockIn).Methods("POST")
	v1.HandleFunc("/stock/out", stockHandler.StockOut).Methods("POST")
	v1.HandleFunc("/stock/bulk-in", stockHandler.BulkStockIn).Methods("POST")
	v1.HandleFunc("/stock/bulk-out", stockHandler.BulkStockOut).Methods("POST")
	v1.HandleFunc("/stock/movements", stockHandler.GetMovements).Methods("GET")
	v1.HandleFunc("/stock/critical", stockHandler.GetCritical).Methods("GET")
	v1.HandleFunc("/stock/lookups", stockHandler.GetLookups).Methods("GET")
	v1.HandleFunc("/stock/report", stockHandler.GenerateReport).Methods("POST")
	v1.HandleFunc("/products/search", orderHandler.SearchProducts).Methods("GET")
	v1.HandleFunc("/products/{productId}", stockHandler.UpdateProduct).Methods("PUT")
	v1.HandleFunc("/products/{productId}", stockHandler.DeleteProduct).Methods("DELETE")
	v1.HandleFunc("/products", stockHandler.CreateProduct).Methods("POST")

	// Settings routes
	v1.HandleFunc("/settings/theme/toggle", settingsHandler.ToggleTheme).Methods("POST")
	v1.HandleFunc("/settings/theme", settingsHandler.SetTheme).Methods("PUT")
	v1.HandleFunc("/settings/items-per-page", settingsHandler.SetItemsPerPage).Methods("PUT")
	v1.HandleFunc("/settings/auto-deduct", settingsHandler.SetAutoDeductStock).Methods("PUT")
	v1.HandleFunc("/settings/order-auto-deduct", settingsHandler.SetOrderAutoDeduct).Methods("PUT")
	v1.HandleFunc("/settings/show-loadout", settingsHandler.SetShowLoadoutAlways).Methods("PUT")
	v1.HandleFunc("/settings/default-unit", settingsHandler.SetDefaultUnit).Methods("PUT")
	v1.HandleFunc("/settings/columns", settingsHandler.SetStockListColumns).Methods("PUT")
	v1.HandleFunc("/settings/developer-mode", settingsHandler.SetDeveloperMode).Methods("PUT")
	v1.HandleFunc("/settings/developer-mode", settingsHandler.GetDeveloperMode).Methods("GET")
	v1.HandleFunc("/settings", settingsHandler.Get).Methods("GET")

	// Health check endpoint (no auth required)
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	slog.Info("Starting HTTP server",
		"port", cfg.Port,
		"environment", cfg.Environment)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in a goroutine so shutdown signals can be handled
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	runner.Close()
	lookups.Stop()
	otelTelemetry.Shutdown(shutdownCtx)

	slog.Info("Shutdown complete")
}
