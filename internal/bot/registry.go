package bot

import "sync"

// Registry collects modules in registration order. Registration happens from
// init functions across packages, so access is synchronized even though the
// set is fixed once the process is up.
type Registry struct {
	mu      sync.RWMutex
	modules []Module
}

// NewRegistry returns an empty module registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a module.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	r.modules = append(r.modules, m)
	r.mu.Unlock()
}

// Modules returns the registered modules. The returned slice is a copy;
// mutating it does not affect the registry.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Module(nil), r.modules...)
}

// The process-wide registry that module packages register themselves into
// via blank imports in main.
var globalRegistry = NewRegistry()

// Register adds a module to the process-wide registry. Called from module
// init functions.
func Register(m Module) {
	globalRegistry.Register(m)
}

// Modules returns the modules registered process-wide.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry replaces the process-wide registry with an empty one.
// Test use only.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
