package plugin

import (
	"sync"

	"github.com/saheli56/Temple-Run/internal/logging"
	"github.com/saheli56/Temple-Run/internal/store"
)

// DefaultTimeoutMs bounds a single plugin execution.
const DefaultTimeoutMs = 5000

// Event is one recognized action as seen by the dispatcher.
type Event struct {
	Gesture    string
	Action     string
	Confidence float64
}

// Dispatcher fans recognized actions out to the plugins bound to the
// triggering gesture. Execution is asynchronous and best effort: a failing
// plugin is logged and never stalls recognition.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	bindings *store.BindingRepository
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given manager and binding
// repository. A nil bindings repository disables dispatch.
func NewDispatcher(manager *Manager, bindings *store.BindingRepository) *Dispatcher {
	return &Dispatcher{
		manager:  manager,
		executor: NewExecutor(DefaultTimeoutMs),
		bindings: bindings,
	}
}

// Dispatch routes one event to every enabled binding for its gesture.
// Returns immediately; plugin executions run in the background.
func (d *Dispatcher) Dispatch(ev Event) {
	if d.bindings == nil {
		return
	}

	bindings, err := d.bindings.GetByGesture(ev.Gesture)
	if err != nil {
		logging.S().Warnw("binding lookup failed",
			"gesture", ev.Gesture, "error", err)
		return
	}

	for _, b := range bindings {
		d.wg.Add(1)
		go d.run(b, ev)
	}
}

func (d *Dispatcher) run(b *store.Binding, ev Event) {
	defer d.wg.Done()

	plug, err := d.manager.Get(b.PluginName)
	if err != nil {
		logging.S().Warnw("bound plugin not available",
			"plugin", b.PluginName, "gesture", ev.Gesture)
		return
	}
	if !plug.Supports(b.ActionName) {
		logging.S().Warnw("plugin does not support bound action",
			"plugin", b.PluginName, "action", b.ActionName)
		return
	}

	req := &Request{
		Action:     b.ActionName,
		Gesture:    ev.Gesture,
		Confidence: ev.Confidence,
		Params:     b.Params,
	}

	resp, err := d.executor.Execute(plug, req)
	if err != nil {
		logging.S().Warnw("plugin execution failed",
			"plugin", b.PluginName, "action", b.ActionName, "error", err)
		return
	}
	if !resp.Success {
		logging.S().Warnw("plugin reported failure",
			"plugin", b.PluginName, "action", b.ActionName, "error", resp.Error)
	}
}

// Wait blocks until all in-flight plugin executions finish. Used at
// shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
