package page

import "fmt"

const (
	PasswordFieldID   = "password"
	ShowPasswordID    = "show_password"
	inputTypeText     = "text"
	inputTypePassword = "password"
)

// Checkbox is a control with a checked state that announces changes.
type Checkbox interface {
	Checked() bool
	AddChangeListener(fn func())
}

// InputField is a control whose input type can be switched.
type InputField interface {
	SetType(t string)
}

// BindPasswordToggle shows the field's contents while box is checked and
// masks them otherwise.
func BindPasswordToggle(field InputField, box Checkbox) {
	box.AddChangeListener(func() {
		field.SetType(PasswordInputType(box.Checked()))
	})
}

// PasswordInputType maps the checkbox state to the field's input type.
func PasswordInputType(visible bool) string {
	if visible {
		return inputTypeText
	}
	return inputTypePassword
}

// MountPasswordToggle looks up the password field and its checkbox once and
// wires them together.
func MountPasswordToggle(doc *Document) error {
	field, ok := doc.ElementByID(PasswordFieldID)
	if !ok {
		return fmt.Errorf("element %q not found", PasswordFieldID)
	}
	box, ok := doc.ElementByID(ShowPasswordID)
	if !ok {
		return fmt.Errorf("element %q not found", ShowPasswordID)
	}
	BindPasswordToggle(field, box)
	return nil
}
