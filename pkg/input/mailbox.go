package input

import (
	"sync/atomic"

	"github.com/cbodonnell/simon/pkg/game/types"
)

// Mailbox holds at most one pending remote color.
// A write replaces any unread value; the latest write wins.
type Mailbox struct {
	slot atomic.Pointer[types.Color]
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Put stores c, discarding any unread value.
func (m *Mailbox) Put(c types.Color) {
	m.slot.Store(&c)
}

// Take reads and clears the pending value in one step.
func (m *Mailbox) Take() (types.Color, bool) {
	c := m.slot.Swap(nil)
	if c == nil {
		return "", false
	}
	return *c, true
}

// Pending reports whether a value is waiting, without consuming it.
func (m *Mailbox) Pending() bool {
	return m.slot.Load() != nil
}

// Clear discards any pending value.
func (m *Mailbox) Clear() {
	m.slot.Store(nil)
}
