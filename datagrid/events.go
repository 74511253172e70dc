package datagrid

// Names of events dispatched by the grid and its plugins.
const (
	// EventColumnMove fires before a column is moved. Cancelable.
	EventColumnMove = "column-move"
	// EventSelectionChange fires after the selection changes.
	EventSelectionChange = "selection-change"
	// EventCellCommit fires before an edited cell value is committed. Cancelable.
	EventCellCommit = "cell-commit"
	// EventRenderComplete fires after every completed render pass.
	EventRenderComplete = "render-complete"
)

// Event is a grid notification. Cancelable events let a listener veto the
// action by calling PreventDefault before the dispatching code proceeds.
type Event struct {
	// Name identifies the event kind (see the Event* constants).
	Name string

	// Detail carries event-specific payload values.
	Detail map[string]interface{}

	// Cancelable marks whether PreventDefault has any effect.
	Cancelable bool

	prevented bool
}

// PreventDefault vetoes the default action of a cancelable event.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.prevented = true
	}
}

// DefaultPrevented reports whether a listener vetoed the event.
func (e *Event) DefaultPrevented() bool { return e.prevented }

// EventListener receives dispatched events.
type EventListener func(*Event)

// On registers a listener for the named event and returns a function that
// removes the registration.
func (g *Grid) On(name string, fn EventListener) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextListenerID
	g.nextListenerID++
	if g.listeners == nil {
		g.listeners = make(map[string]map[int]EventListener)
	}
	if g.listeners[name] == nil {
		g.listeners[name] = make(map[int]EventListener)
	}
	g.listeners[name][id] = fn

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.listeners[name], id)
	}
}

// Dispatch delivers the event to all listeners registered for its name and
// reports whether the default action should proceed (true unless a listener
// called PreventDefault).
func (g *Grid) Dispatch(ev *Event) bool {
	g.mu.Lock()
	fns := make([]EventListener, 0, len(g.listeners[ev.Name]))
	for _, fn := range g.listeners[ev.Name] {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
	return !ev.DefaultPrevented()
}
