// Package device tracks the compute targets registered on this worker and
// resolves the device component of remote object ids against them.
package device

import (
	"sort"
	"strings"
	"sync"
)

// KindCPU is the default device kind.
const KindCPU = "cpu"

// Device is a handle to a compute target registered on this worker.
type Device struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// KindOf derives a device kind from a conventional "kind:ordinal" name,
// falling back to cpu for names without a kind prefix.
func KindOf(name string) string {
	if kind, _, ok := strings.Cut(name, ":"); ok && kind != "" {
		return kind
	}
	return KindCPU
}

// Manager resolves device names to handles. Safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewManager creates an empty device manager.
func NewManager() *Manager {
	return &Manager{devices: make(map[string]*Device)}
}

// Register adds a device under its name, replacing any previous handle.
func (m *Manager) Register(d *Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[d.Name] = d
}

// Resolve returns the handle for name, or nil when no such device is
// registered.
func (m *Manager) Resolve(name string) *Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.devices[name]
}

// List returns all registered devices sorted by name for a stable API
// response.
func (m *Manager) List() []*Device {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered device names sorted alphabetically.
func (m *Manager) Names() []string {
	devs := m.List()
	names := make([]string, len(devs))
	for i, d := range devs {
		names[i] = d.Name
	}
	return names
}
