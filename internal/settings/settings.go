// Package settings manages persisted UI preferences: one structured object
// merged over built-in defaults at load and written back on every mutation.
package settings

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Store keys. The bare theme key predates the structured object and is still
// written so older installs keep their theme after a downgrade.
const (
	keyAppSettings   = "appSettings"
	keyLegacyTheme   = "theme"
	keyOrderSettings = "orderSettings"
)

// StockListColumns are the visibility flags of the stock table.
type StockListColumns struct {
	Name          bool `json:"name"`
	OEMNumber     bool `json:"oem_number"`
	Brand         bool `json:"brand"`
	Category      bool `json:"category"`
	Unit          bool `json:"unit"`
	StockQuantity bool `json:"stock_quantity"`
	CriticalStock bool `json:"critical_stock"`
	Status        bool `json:"status"`
}

// Settings is the full preference object.
type Settings struct {
	ItemsPerPage      int              `json:"itemsPerPage"`
	Theme             string           `json:"theme"`
	ShowLoadoutAlways bool             `json:"showLoadoutAlways"`
	AutoDeductStock   bool             `json:"autoDeductStock"`
	DefaultUnit       string           `json:"defaultUnit"`
	DeveloperMode     bool             `json:"developerMode"`
	StockListColumns  StockListColumns `json:"stockListColumns"`
}

// OrderPrefs are the order composer's own persisted preferences.
type OrderPrefs struct {
	AutoDeductStock bool `json:"autoDeductStock"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		ItemsPerPage:      25,
		Theme:             "dark",
		ShowLoadoutAlways: false,
		AutoDeductStock:   false,
		DefaultUnit:       "adet",
		DeveloperMode:     false,
		StockListColumns: StockListColumns{
			Name:          true,
			OEMNumber:     true,
			Brand:         true,
			Category:      true,
			Unit:          true,
			StockQuantity: true,
			CriticalStock: true,
			Status:        true,
		},
	}
}

// Manager owns the loaded settings and persists every mutation.
type Manager struct {
	store Store

	mu         sync.RWMutex
	settings   Settings
	orderPrefs OrderPrefs
	loaded     bool
	darkMode   bool

	// onThemeChange mirrors the original document-level dark flag toggle.
	onThemeChange func(dark bool)
}

// NewManager creates a manager over the given store. onThemeChange may be nil.
func NewManager(store Store, onThemeChange func(dark bool)) *Manager {
	return &Manager{
		store:         store,
		settings:      Defaults(),
		onThemeChange: onThemeChange,
	}
}

// Load reads the persisted objects once, merging saved keys over defaults so
// missing keys fall back and stale keys are ignored. Repeated calls are no-ops.
func (m *Manager) Load() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return
	}

	if raw, ok := m.store.Get(keyAppSettings); ok {
		merged := m.settings
		if err := json.Unmarshal([]byte(raw), &merged); err != nil {
			slog.Error("Could not parse saved settings, keeping defaults", "error", err)
		} else {
			m.settings = merged
		}
	}

	// The legacy single-key theme wins over the structured object.
	if theme, ok := m.store.Get(keyLegacyTheme); ok && theme != "" {
		m.settings.Theme = theme
	}

	if raw, ok := m.store.Get(keyOrderSettings); ok {
		merged := m.orderPrefs
		if err := json.Unmarshal([]byte(raw), &merged); err != nil {
			slog.Error("Could not parse saved order preferences, keeping defaults", "error", err)
		} else {
			m.orderPrefs = merged
		}
	}

	m.loaded = true
	m.applyThemeLocked()

	slog.Info("Settings loaded",
		"theme", m.settings.Theme,
		"itemsPerPage", m.settings.ItemsPerPage,
		"autoDeductStock", m.settings.AutoDeductStock)
}

// Get returns a copy of the current settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// GetOrderPrefs returns a copy of the order composer preferences.
func (m *Manager) GetOrderPrefs() OrderPrefs {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orderPrefs
}

// DarkMode reports the current document-level dark flag.
func (m *Manager) DarkMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.darkMode
}

// SetTheme sets the theme, persists it and flips the dark flag.
func (m *Manager) SetTheme(theme string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings.Theme = theme
	m.applyThemeLocked()
	m.saveLocked()
}

// ToggleTheme switches between dark and light.
func (m *Manager) ToggleTheme() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settings.Theme == "dark" {
		m.settings.Theme = "light"
	} else {
		m.settings.Theme = "dark"
	}
	m.applyThemeLocked()
	m.saveLocked()
}

// SetItemsPerPage sets the preferred page size.
func (m *Manager) SetItemsPerPage(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.ItemsPerPage = n
	m.saveLocked()
}

// SetAutoDeductStock sets the post-save stock deduction preference.
func (m *Manager) SetAutoDeductStock(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.AutoDeductStock = enabled
	m.saveLocked()
}

// SetDefaultUnit sets the unit preselected for new products.
func (m *Manager) SetDefaultUnit(unit string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.DefaultUnit = unit
	m.saveLocked()
}

// SetDeveloperMode sets the local developer-mode preference.
func (m *Manager) SetDeveloperMode(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.DeveloperMode = enabled
	m.saveLocked()
}

// SetShowLoadoutAlways sets the startup overlay preference.
func (m *Manager) SetShowLoadoutAlways(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.ShowLoadoutAlways = enabled
	m.saveLocked()
}

// SetStockListColumns replaces the stock table column visibility flags.
func (m *Manager) SetStockListColumns(cols StockListColumns) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.StockListColumns = cols
	m.saveLocked()
}

// SetOrderAutoDeductStock sets the order composer's deduction preference.
func (m *Manager) SetOrderAutoDeductStock(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orderPrefs.AutoDeductStock = enabled
	raw, err := json.Marshal(m.orderPrefs)
	if err != nil {
		slog.Error("Could not encode order preferences", "error", err)
		return
	}
	if err := m.store.Set(keyOrderSettings, string(raw)); err != nil {
		slog.Error("Could not persist order preferences", "error", err)
	}
}

func (m *Manager) applyThemeLocked() {
	m.darkMode = m.settings.Theme == "dark"
	if m.onThemeChange != nil {
		m.onThemeChange(m.darkMode)
	}
}

func (m *Manager) saveLocked() {
	raw, err := json.Marshal(m.settings)
	if err != nil {
		slog.Error("Could not encode settings", "error", err)
		return
	}
	if err := m.store.Set(keyAppSettings, string(raw)); err != nil {
		slog.Error("Could not persist settings", "error", err)
	}
	if err := m.store.Set(keyLegacyTheme, m.settings.Theme); err != nil {
		slog.Error("Could not persist legacy theme key", "error", err)
	}
}
