package handlers

import (
	"encoding/json"
	"net/http"

	"auto-parts-manager/internal/bridge"
	"auto-parts-manager/internal/settings"
)

// SettingsHandler exposes the persisted UI preferences through typed
// endpoints, one per setting.
type SettingsHandler struct {
	prefs  *settings.Manager
	bridge *bridge.Bridge
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(prefs *settings.Manager, b *bridge.Bridge) *SettingsHandler {
	return &SettingsHandler{prefs: prefs, bridge: b}
}

// settingsView is the GET /v1/settings payload.
type settingsView struct {
	settings.Settings
	OrderPrefs settings.OrderPrefs `json:"orderPrefs"`
	DarkMode   bool                `json:"darkMode"`
}

// Get handles GET /v1/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, settingsView{
		Settings:   h.prefs.Get(),
		OrderPrefs: h.prefs.GetOrderPrefs(),
		DarkMode:   h.prefs.DarkMode(),
	})
}

// SetTheme handles PUT /v1/settings/theme.
func (h *SettingsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if req.Theme != "dark" && req.Theme != "light" {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Theme must be dark or light")
		return
	}

	h.prefs.SetTheme(req.Theme)
	h.Get(w, r)
}

// ToggleTheme handles POST /v1/settings/theme/toggle.
func (h *SettingsHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	h.prefs.ToggleTheme()
	h.Get(w, r)
}

// SetItemsPerPage handles PUT /v1/settings/items-per-page.
func (h *SettingsHandler) SetItemsPerPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemsPerPage int `json:"itemsPerPage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if req.ItemsPerPage < 1 {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "itemsPerPage must be positive")
		return
	}

	h.prefs.SetItemsPerPage(req.ItemsPerPage)
	h.Get(w, r)
}

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetAutoDeductStock handles PUT /v1/settings/auto-deduct.
func (h *SettingsHandler) SetAutoDeductStock(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}

	h.prefs.SetAutoDeductStock(req.Enabled)
	h.Get(w, r)
}

// SetOrderAutoDeduct handles PUT /v1/settings/order-auto-deduct.
func (h *SettingsHandler) SetOrderAutoDeduct(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}

	h.prefs.SetOrderAutoDeductStock(req.Enabled)
	h.Get(w, r)
}

// SetShowLoadoutAlways handles PUT /v1/settings/show-loadout.
func (h *SettingsHandler) SetShowLoadoutAlways(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}

	h.prefs.SetShowLoadoutAlways(req.Enabled)
	h.Get(w, r)
}

// SetDefaultUnit handles PUT /v1/settings/default-unit.
func (h *SettingsHandler) SetDefaultUnit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DefaultUnit string `json:"defaultUnit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if req.DefaultUnit == "" {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "defaultUnit required")
		return
	}

	h.prefs.SetDefaultUnit(req.DefaultUnit)
	h.Get(w, r)
}

// SetStockListColumns handles PUT /v1/settings/columns.
func (h *SettingsHandler) SetStockListColumns(w http.ResponseWriter, r *http.Request) {
	var cols settings.StockListColumns
	if err := json.NewDecoder(r.Body).Decode(&cols); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}

	h.prefs.SetStockListColumns(cols)
	h.Get(w, r)
}

// SetDeveloperMode handles PUT /v1/settings/developer-mode. The flag is kept
// both locally and in the engine; the engine's answer wins when it errors.
func (h *SettingsHandler) SetDeveloperMode(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}

	res := h.bridge.SetDeveloperMode(r.Context(), req.Enabled)
	if msg, failed := res.Failed("Could not set developer mode"); failed {
		writeErrorResponse(w, http.StatusBadGateway, "engine_error", msg)
		return
	}

	h.prefs.SetDeveloperMode(req.Enabled)
	h.Get(w, r)
}

// GetDeveloperMode handles GET /v1/settings/developer-mode.
func (h *SettingsHandler) GetDeveloperMode(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.bridge.GetDeveloperMode(r.Context()))
}
