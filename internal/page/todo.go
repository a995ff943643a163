package page

import "context"

// TodoCheckbox is a todo control that announces changes.
type TodoCheckbox interface {
	TodoControl
	AddChangeListener(fn func())
}

// BindTodoCheckbox sends the todo's new status on every change of box. The
// outcome is only logged; the checkbox keeps whatever state the user gave it.
func BindTodoCheckbox(ctx context.Context, client *Client, box TodoCheckbox) {
	box.AddChangeListener(func() {
		_ = client.UpdateTodoStatus(ctx, box)
	})
}
