package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShowAndAutoDismiss(t *testing.T) {
	toaster := NewToaster()
	toaster.after = 30 * time.Millisecond
	defer toaster.Stop()

	toaster.Show("saved", TypeSuccess)
	message, kind, visible := toaster.Current()
	assert.Equal(t, "saved", message)
	assert.Equal(t, TypeSuccess, kind)
	assert.True(t, visible)

	time.Sleep(60 * time.Millisecond)
	_, _, visible = toaster.Current()
	assert.False(t, visible)
}

func TestShowResetsTimerInsteadOfStacking(t *testing.T) {
	toaster := NewToaster()
	toaster.after = 50 * time.Millisecond
	defer toaster.Stop()

	toaster.Show("first", TypeInfo)
	time.Sleep(30 * time.Millisecond)
	toaster.Show("second", TypeError)

	// The first toast's timer would have fired by now; the reset keeps the
	// second toast visible.
	time.Sleep(30 * time.Millisecond)
	message, kind, visible := toaster.Current()
	assert.True(t, visible)
	assert.Equal(t, "second", message)
	assert.Equal(t, TypeError, kind)

	time.Sleep(40 * time.Millisecond)
	_, _, visible = toaster.Current()
	assert.False(t, visible)
}

func TestEmptyTypeDefaultsToSuccess(t *testing.T) {
	toaster := NewToaster()
	defer toaster.Stop()

	toaster.Show("done", "")
	_, kind, _ := toaster.Current()
	assert.Equal(t, TypeSuccess, kind)
}
