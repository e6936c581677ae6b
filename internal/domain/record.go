package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Columns is the projection of the inspection search, in order.
var Columns = []string{
	"product_id",
	"inspection_start_time",
	"inspection_complete_time",
	"is_defect",
	"error_type",
	"width",
	"height",
}

// Column is one named value of a Record.
type Column struct {
	Name  string
	Value interface{}
}

// Record is a single result row. Column order follows the query projection
// and is preserved when encoding to JSON.
type Record []Column

// NewRecord pairs names with values, lower-casing every name.
// Extra values without a name are dropped.
func NewRecord(names []string, values []interface{}) Record {
	rec := make(Record, 0, len(names))
	for i, name := range names {
		var v interface{}
		if i < len(values) {
			v = values[i]
		}
		rec = append(rec, Column{Name: strings.ToLower(name), Value: v})
	}
	return rec
}

// Names returns the column names in order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// Get returns the value stored under name.
func (r Record) Get(name string) (interface{}, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
