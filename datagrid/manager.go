// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datagrid

import (
	"fmt"
	"log/slog"
	"sync"
)

// attachedPlugin pairs a plugin with its handle.
type attachedPlugin struct {
	plugin Plugin
	handle *GridHandle
}

// pluginManager maintains the attached-plugin list in insertion order and
// dispatches hooks. processColumns runs as a left-to-right fold;
// afterRender/onScroll broadcast in attachment order for determinism.
// Teardown detaches in reverse attachment order so soft dependencies
// unwind safely.
type pluginManager struct {
	mu      sync.Mutex
	plugins []attachedPlugin
	logger  *slog.Logger
}

func newPluginManager(logger *slog.Logger) *pluginManager {
	return &pluginManager{logger: logger}
}

// attach validates the plugin's name and required dependencies, then calls
// its Attach hook. An Attach error aborts the registration: the plugin is
// not added and the error is returned to the caller.
func (m *pluginManager) attach(p Plugin, h *GridHandle) error {
	m.mu.Lock()
	for _, ap := range m.plugins {
		if ap.plugin.Name() == p.Name() {
			m.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrDuplicatePlugin, p.Name())
		}
	}
	for _, dep := range p.Dependencies() {
		if !dep.Required {
			continue
		}
		if m.lookupLocked(dep.Name) == nil {
			m.mu.Unlock()
			return fmt.Errorf("%w: %q requires %q (%s)",
				ErrMissingDependency, p.Name(), dep.Name, dep.Reason)
		}
	}
	m.mu.Unlock()

	// Attach runs without the manager lock so the plugin may call back
	// into the grid (lookups, queries) during initialization.
	if err := p.Attach(h); err != nil {
		h.disconnect()
		return fmt.Errorf("attach plugin %q: %w", p.Name(), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.plugins = append(m.plugins, attachedPlugin{plugin: p, handle: h})
	return nil
}

// detach removes the named plugin, firing its disconnect signal before
// calling Detach. Detaching a plugin another attached plugin requires is
// refused with ErrDependencyHeld: the dependent must be detached first.
func (m *pluginManager) detach(name string) error {
	m.mu.Lock()
	idx := -1
	for i, ap := range m.plugins {
		if ap.plugin.Name() == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrPluginNotFound, name)
	}
	for _, ap := range m.plugins {
		if ap.plugin.Name() == name {
			continue
		}
		for _, dep := range ap.plugin.Dependencies() {
			if dep.Required && dep.Name == name {
				m.mu.Unlock()
				return fmt.Errorf("%w: %q is required by %q",
					ErrDependencyHeld, name, ap.plugin.Name())
			}
		}
	}
	ap := m.plugins[idx]
	m.plugins = append(m.plugins[:idx], m.plugins[idx+1:]...)
	m.mu.Unlock()

	ap.handle.disconnect()
	ap.plugin.Detach()
	return nil
}

// detachAll tears down every attached plugin in reverse attachment order.
func (m *pluginManager) detachAll() {
	m.mu.Lock()
	plugins := m.plugins
	m.plugins = nil
	m.mu.Unlock()

	for i := len(plugins) - 1; i >= 0; i-- {
		plugins[i].handle.disconnect()
		plugins[i].plugin.Detach()
	}
}

func (m *pluginManager) lookupLocked(name string) Plugin {
	for _, ap := range m.plugins {
		if ap.plugin.Name() == name {
			return ap.plugin
		}
	}
	return nil
}

// lookup resolves a plugin by exact name, or nil.
func (m *pluginManager) lookup(name string) Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookupLocked(name)
}

// snapshot returns the attached plugins in attachment order.
func (m *pluginManager) snapshot() []attachedPlugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]attachedPlugin, len(m.plugins))
	copy(out, m.plugins)
	return out
}

// processColumns folds the column list through every attached plugin in
// attachment order. A hook that panics does not crash the render loop:
// the failure is logged and that plugin's input columns pass through
// unchanged for this pass.
func (m *pluginManager) processColumns(cols []Column) []Column {
	for _, ap := range m.snapshot() {
		cols = m.processOne(ap, cols)
	}
	return cols
}

func (m *pluginManager) processOne(ap attachedPlugin, cols []Column) (out []Column) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("processColumns hook failed",
				"plugin", ap.plugin.Name(), "panic", r)
			out = cols
		}
	}()
	processed := ap.plugin.ProcessColumns(cols)
	if processed == nil {
		return cols
	}
	return processed
}

// afterRender broadcasts the hook to all attached plugins, recovering
// per-plugin failures so rendering continues.
func (m *pluginManager) afterRender() {
	for _, ap := range m.snapshot() {
		m.safeCall(ap, "afterRender", func() { ap.plugin.AfterRender() })
	}
}

// onScroll broadcasts the scroll tick to all attached plugins.
func (m *pluginManager) onScroll(ev ScrollEvent) {
	for _, ap := range m.snapshot() {
		m.safeCall(ap, "onScroll", func() { ap.plugin.OnScroll(ev) })
	}
}

// query dispatches in attachment order; the first plugin to claim the
// query wins.
func (m *pluginManager) query(q *Query) bool {
	for _, ap := range m.snapshot() {
		claimed := false
		m.safeCall(ap, "handleQuery", func() { claimed = ap.plugin.HandleQuery(q) })
		if claimed {
			return true
		}
	}
	return false
}

func (m *pluginManager) safeCall(ap attachedPlugin, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("plugin hook failed",
				"plugin", ap.plugin.Name(), "hook", hook, "panic", r)
		}
	}()
	fn()
}
