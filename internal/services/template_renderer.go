package services

import (
	"fmt"
	"regexp"
)

// DefaultReminderTemplate is the reminder body pushed the evening before a
// todo is due.
const DefaultReminderTemplate = "Hey {{name}}! {{title}} due tomorrow! Take action!"

var placeholderRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// RenderTemplate replaces {{key}} placeholders with values from variables.
// Unknown placeholders are left as they are.
func RenderTemplate(template string, variables map[string]interface{}) string {
	if template == "" || len(variables) == 0 {
		return template
	}

	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRegex.FindStringSubmatch(match)[1]
		if value, ok := variables[key]; ok {
			return fmt.Sprint(value)
		}
		return match
	})
}
