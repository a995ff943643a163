package page

// Element is a minimal stand-in for a form control on the page: an input
// whose type can change, or a checkbox carrying a value and a checked state.
// It is not safe for concurrent use; a page runs its handlers one at a time.
type Element struct {
	id        string
	inputType string
	value     string
	checked   bool
	listeners []func()
}

// NewElement returns an element with the given id and input type.
func NewElement(id, inputType string) *Element {
	return &Element{id: id, inputType: inputType}
}

// NewCheckbox returns a checkbox element carrying value.
func NewCheckbox(id, value string) *Element {
	return &Element{id: id, inputType: "checkbox", value: value}
}

func (e *Element) ID() string        { return e.id }
func (e *Element) Type() string      { return e.inputType }
func (e *Element) SetType(t string)  { e.inputType = t }
func (e *Element) Value() string     { return e.value }
func (e *Element) SetValue(v string) { e.value = v }
func (e *Element) Checked() bool     { return e.checked }

// SetChecked changes the checked state without dispatching a change event,
// the same as assigning the property from script.
func (e *Element) SetChecked(checked bool) { e.checked = checked }

// AddChangeListener registers fn to run on every change event.
func (e *Element) AddChangeListener(fn func()) {
	e.listeners = append(e.listeners, fn)
}

// Click flips the checked state and dispatches a change event, the way a user
// click on a checkbox does.
func (e *Element) Click() {
	e.checked = !e.checked
	e.DispatchChange()
}

// DispatchChange runs the change listeners in registration order.
func (e *Element) DispatchChange() {
	for _, fn := range e.listeners {
		fn()
	}
}

// Document indexes elements by id.
type Document struct {
	byID map[string]*Element
}

func NewDocument(elements ...*Element) *Document {
	d := &Document{byID: make(map[string]*Element, len(elements))}
	for _, el := range elements {
		d.byID[el.ID()] = el
	}
	return d
}

// ElementByID returns the element registered under id.
func (d *Document) ElementByID(id string) (*Element, bool) {
	el, ok := d.byID[id]
	return el, ok
}
