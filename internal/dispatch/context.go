package dispatch

import (
	"github.com/tessera-run/tessera/internal/device"
	"github.com/tessera-run/tessera/internal/object"
	"github.com/tessera-run/tessera/internal/program"
)

// Compile-time check: the context is injectable into functions declaring
// a ctx argument.
var _ program.ContextInfo = (*Context)(nil)

// Context is the distributed context this worker participates in the
// execution group under: its identity plus the per-context collaborators.
// It is created when the worker joins the group and torn down with it.
type Context struct {
	worker  string
	devices *device.Manager
	objects *object.Store
}

// NewContext creates the distributed context for a worker.
func NewContext(worker string, devices *device.Manager, objects *object.Store) *Context {
	return &Context{worker: worker, devices: devices, objects: objects}
}

// WorkerName returns the worker's identity within the execution group.
func (c *Context) WorkerName() string {
	return c.worker
}

// DeviceNames returns the names of the devices visible to this context.
func (c *Context) DeviceNames() []string {
	return c.devices.Names()
}

// Devices returns the context's device manager.
func (c *Context) Devices() *device.Manager {
	return c.devices
}

// Objects returns the context's remote object store.
func (c *Context) Objects() *object.Store {
	return c.objects
}
