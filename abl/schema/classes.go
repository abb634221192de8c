package schema

import (
	"sort"
	"strings"
)

// DefaultWidgets are the object types the runtime can CREATE besides
// records and automation objects: visual widgets and the handle-based
// objects created the same way.
var DefaultWidgets = []string{
	"BROWSE", "BUTTON", "COMBO-BOX", "CONTROL-FRAME", "DIALOG-BOX", "EDITOR",
	"FIELD-GROUP", "FILL-IN", "FRAME", "IMAGE", "LITERAL", "MENU",
	"MENU-ITEM", "RADIO-SET", "RECTANGLE", "SELECTION-LIST", "SLIDER", "SUB-MENU",
	"TEXT", "TOGGLE-BOX", "WINDOW",
	"BUFFER", "CALL", "CLIENT-PRINCIPAL", "DATA-SOURCE", "DATASET", "QUERY",
	"SAX-ATTRIBUTES", "SAX-READER", "SAX-WRITER", "SERVER", "SERVER-SOCKET", "SOAP-HEADER",
	"SOAP-HEADER-ENTRYREF", "SOCKET", "TEMP-TABLE", "X-DOCUMENT", "X-NODEREF",
}

// ClassTables tell the tree parser what the target of a CREATE statement
// names when the grammar alone cannot: an automation (COM) class or a
// widget type. Names compare case-insensitively. The tables are configured
// per session and never inferred from the source.
type ClassTables struct {
	automation map[string]bool
	widgets    map[string]bool
}

// NewClassTables builds the tables from the given names. Widget names are
// added to DefaultWidgets.
func NewClassTables(automation, widgets []string) *ClassTables {
	c := &ClassTables{
		automation: make(map[string]bool),
		widgets:    make(map[string]bool),
	}
	for _, name := range automation {
		c.automation[strings.ToUpper(name)] = true
	}
	for _, name := range DefaultWidgets {
		c.widgets[name] = true
	}
	for _, name := range widgets {
		c.widgets[strings.ToUpper(name)] = true
	}
	return c
}

func (c *ClassTables) IsAutomation(name string) bool {
	return c != nil && c.automation[strings.ToUpper(name)]
}

func (c *ClassTables) IsWidget(name string) bool {
	if c == nil {
		return false
	}
	return c.widgets[strings.ToUpper(name)]
}

// Automation returns the sorted automation class names.
func (c *ClassTables) Automation() []string {
	return sortedKeys(c.automation)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
