// Package notify holds the single transient toast message shown to the user.
package notify

import (
	"sync"
	"time"
)

// DismissAfter is how long a toast stays visible.
const DismissAfter = 3 * time.Second

// Toast types.
const (
	TypeSuccess = "success"
	TypeError   = "error"
	TypeInfo    = "info"
)

// Toaster manages one global toast. Showing a new toast while one is visible
// replaces it and restarts the dismiss timer; timers never stack.
type Toaster struct {
	mu      sync.Mutex
	message string
	kind    string
	visible bool
	timer   *time.Timer
	after   time.Duration
}

// NewToaster creates a toaster with the standard dismiss delay.
func NewToaster() *Toaster {
	return &Toaster{after: DismissAfter, kind: TypeSuccess}
}

// Show displays a toast, restarting the auto-dismiss timer.
func (t *Toaster) Show(message, kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if kind == "" {
		kind = TypeSuccess
	}
	t.message = message
	t.kind = kind
	t.visible = true

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.after, t.dismiss)
}

// Current returns the toast message, type and visibility.
func (t *Toaster) Current() (message, kind string, visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.message, t.kind, t.visible
}

// Stop cancels any pending dismiss timer.
func (t *Toaster) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Toaster) dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = false
}
