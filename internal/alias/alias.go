package alias

import (
	"sort"
)

// Table is the process-lifetime alias map. It lives on the REPL driver and
// has no locking: the alias builtin reads and writes it from the goroutine
// that runs a builtin stage, while the shell waits for that stage.
type Table struct {
	entries map[string]string
}

// NewTable creates an empty alias table.
func NewTable() *Table {
	return &Table{entries: make(map[string]string)}
}

// Get returns the value for name.
func (t *Table) Get(name string) (string, bool) {
	v, ok := t.entries[name]
	return v, ok
}

// Set defines or overwrites an alias.
func (t *Table) Set(name, value string) {
	t.entries[name] = value
}

// Delete removes an alias.
func (t *Table) Delete(name string) {
	delete(t.entries, name)
}

// Names returns all alias names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of defined aliases.
func (t *Table) Len() int {
	return len(t.entries)
}

// clone copies the table for provisional expansion.
func (t *Table) clone() *Table {
	c := NewTable()
	for k, v := range t.entries {
		c.entries[k] = v
	}
	return c
}
