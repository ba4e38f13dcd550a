package shell

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/platform"
	"github.com/jakebf/layershell/program"
)

// ErrWindowExists is returned by Insert when the window id or its surface is
// already registered.
var ErrWindowExists = errors.New("shell: window already registered")

// WindowManager owns the open windows. Every surface alias resolves to a
// registered window and every window is reachable through its alias.
type WindowManager struct {
	conn    platform.Connection
	aliases map[platform.SurfaceID]core.WindowID
	entries map[core.WindowID]*Window
}

// NewWindowManager returns an empty manager whose windows talk to conn.
func NewWindowManager(conn platform.Connection) *WindowManager {
	return &WindowManager{
		conn:    conn,
		aliases: make(map[platform.SurfaceID]core.WindowID),
		entries: make(map[core.WindowID]*Window),
	}
}

// Insert creates the window's render surface and renderer and registers it.
// Nothing is registered when the id or the surface is already taken or the
// surface cannot be created.
func (m *WindowManager) Insert(id core.WindowID, surfaceID platform.SurfaceID, size core.PhysicalSize, p program.Program, compositor graphics.Compositor) (*Window, error) {
	if _, ok := m.entries[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrWindowExists, id)
	}
	if owner, ok := m.aliases[surfaceID]; ok {
		return nil, fmt.Errorf("%w: surface %d belongs to %s", ErrWindowExists, surfaceID, owner)
	}
	surface, err := compositor.CreateSurface(surfaceID, size.Width, size.Height)
	if err != nil {
		return nil, fmt.Errorf("create surface for %s: %w", id, err)
	}
	state := newWindowState(p, id, size, 1)
	w := &Window{
		id:              id,
		surfaceID:       surfaceID,
		conn:            m.conn,
		state:           state,
		viewportVersion: state.viewportVersion,
		pointers:        make(map[platform.DeviceID]struct{}),
		redrawAt:        core.Wait,
		surface:         surface,
		renderer:        compositor.CreateRenderer(),
	}
	m.aliases[surfaceID] = id
	m.entries[id] = w
	return w, nil
}

// Remove detaches the window from both maps.
func (m *WindowManager) Remove(id core.WindowID) (*Window, bool) {
	w, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	delete(m.entries, id)
	delete(m.aliases, w.surfaceID)
	return w, true
}

// Get returns the window registered under id.
func (m *WindowManager) Get(id core.WindowID) (*Window, bool) {
	w, ok := m.entries[id]
	return w, ok
}

// GetByAlias resolves a native surface handle.
func (m *WindowManager) GetByAlias(surface platform.SurfaceID) (*Window, bool) {
	id, ok := m.aliases[surface]
	if !ok {
		return nil, false
	}
	return m.Get(id)
}

// IDs returns the window ids in ascending order.
func (m *WindowManager) IDs() []core.WindowID {
	return slices.Sorted(maps.Keys(m.entries))
}

// Each calls f for every window in ascending id order. Windows removed by f
// before their turn are skipped.
func (m *WindowManager) Each(f func(id core.WindowID, w *Window)) {
	for _, id := range m.IDs() {
		if w, ok := m.entries[id]; ok {
			f(id, w)
		}
	}
}

// First returns the window with the lowest id.
func (m *WindowManager) First() (*Window, bool) {
	if len(m.entries) == 0 {
		return nil, false
	}
	return m.entries[slices.Min(slices.Collect(maps.Keys(m.entries)))], true
}

// Last returns the window with the highest id, which is the most recently
// requested one still open.
func (m *WindowManager) Last() (*Window, bool) {
	if len(m.entries) == 0 {
		return nil, false
	}
	return m.entries[slices.Max(slices.Collect(maps.Keys(m.entries)))], true
}

// Len returns the number of open windows.
func (m *WindowManager) Len() int { return len(m.entries) }

// IsEmpty reports whether no window is open.
func (m *WindowManager) IsEmpty() bool { return len(m.entries) == 0 }

// IsIdle reports whether no window has a redraw pending.
func (m *WindowManager) IsIdle() bool {
	for _, w := range m.entries {
		if !w.redrawAt.IsWait() {
			return false
		}
	}
	return true
}

// RedrawAt returns the earliest scheduled redraw across all windows.
func (m *WindowManager) RedrawAt() (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	for _, w := range m.entries {
		at, ok := w.redrawAt.Scheduled()
		if !ok {
			continue
		}
		if !found || at.Before(earliest) {
			earliest, found = at, true
		}
	}
	return earliest, found
}

// check verifies that aliases and entries agree.
func (m *WindowManager) check() error {
	if len(m.aliases) != len(m.entries) {
		return fmt.Errorf("%d aliases for %d windows", len(m.aliases), len(m.entries))
	}
	for surface, id := range m.aliases {
		w, ok := m.entries[id]
		if !ok {
			return fmt.Errorf("alias %d points at missing %s", surface, id)
		}
		if w.surfaceID != surface {
			return fmt.Errorf("alias %d points at %s with surface %d", surface, id, w.surfaceID)
		}
	}
	for id, w := range m.entries {
		if got, ok := m.aliases[w.surfaceID]; !ok || got != id {
			return fmt.Errorf("%s is not reachable through surface %d", id, w.surfaceID)
		}
	}
	return nil
}
