// Package catalog holds the table and column declarations that column
// references are resolved against.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/sqlcheck/internal/ir"
)

var (
	ErrUnknownTable    = errors.New("unknown table")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrAmbiguousColumn = errors.New("ambiguous column")
	ErrDuplicateTable  = errors.New("duplicate table")
)

// Column is a declared column.
type Column struct {
	Name string     `json:"name"`
	Type ir.RawType `json:"type"`
}

// Table is a declared table with columns in declaration order.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column returns the column with the given name. Names compare
// case-insensitively, as unquoted SQL identifiers do.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// Catalog is a set of tables. The zero value is not usable; use New.
// A Catalog is not safe for concurrent mutation, but concurrent lookups on
// a fully built catalog are safe.
type Catalog struct {
	tables map[string]*Table
	order  []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

// AddTable adds a table. Table names are case-insensitive.
func (c *Catalog) AddTable(t Table) error {
	key := strings.ToLower(t.Name)
	if _, exists := c.tables[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, t.Name)
	}
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)
	c.tables[key] = &Table{Name: t.Name, Columns: cols}
	c.order = append(c.order, key)
	return nil
}

// Merge adds every table of other to c.
func (c *Catalog) Merge(other *Catalog) error {
	if other == nil {
		return nil
	}
	for _, t := range other.Tables() {
		if err := c.AddTable(t); err != nil {
			return err
		}
	}
	return nil
}

// Table returns the table with the given name.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.tables[strings.ToLower(name)]
	return t, ok
}

// Tables returns copies of all tables in insertion order.
func (c *Catalog) Tables() []Table {
	out := make([]Table, 0, len(c.order))
	for _, key := range c.order {
		t := c.tables[key]
		cols := make([]Column, len(t.Columns))
		copy(cols, t.Columns)
		out = append(out, Table{Name: t.Name, Columns: cols})
	}
	return out
}

// Len returns the number of tables.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Resolve finds a column. With an empty table name every table is searched
// and the column must be unique across them.
func (c *Catalog) Resolve(table, column string) (Column, error) {
	if table != "" {
		t, ok := c.Table(table)
		if !ok {
			return Column{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
		}
		col, ok := t.Column(column)
		if !ok {
			return Column{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.Name, column)
		}
		return col, nil
	}

	var (
		found  Column
		owners []string
	)
	for _, key := range c.order {
		t := c.tables[key]
		if col, ok := t.Column(column); ok {
			found = col
			owners = append(owners, t.Name)
		}
	}
	switch len(owners) {
	case 0:
		return Column{}, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	case 1:
		return found, nil
	default:
		sort.Strings(owners)
		return Column{}, fmt.Errorf("%w: %s (in %s)", ErrAmbiguousColumn, column, strings.Join(owners, ", "))
	}
}
