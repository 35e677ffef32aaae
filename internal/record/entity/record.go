package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"
)

// Reserved fields are assigned by the store and never taken from callers.
const (
	FieldID         = "id"
	FieldBatchID    = "batchId"
	FieldUploadDate = "uploadDate"
)

// TimeLayout is the ISO-8601 layout used for uploadDate (millisecond precision, UTC "Z").
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// IsReserved reports whether key is one of the store-assigned fields.
func IsReserved(key string) bool {
	return key == FieldID || key == FieldBatchID || key == FieldUploadDate
}

// Record is an ordered mapping of field name to scalar value.
type Record struct {
	keys   []string
	fields map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{fields: make(map[string]Value)}
}

// Get returns the value stored under key.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Text returns the text form of key, or "" when absent.
func (r Record) Text(key string) string {
	return r.fields[key].Text()
}

// Set stores v under key. A new key is appended; an existing key keeps its position.
func (r *Record) Set(key string, v Value) {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

// Delete removes key if present.
func (r *Record) Delete(key string) {
	if _, ok := r.fields[key]; !ok {
		return
	}
	delete(r.fields, key)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == key })
}

// Keys returns the field names in insertion order.
func (r Record) Keys() []string {
	return slices.Clone(r.keys)
}

func (r Record) Len() int {
	return len(r.keys)
}

func (r Record) ID() string {
	return r.Text(FieldID)
}

func (r Record) BatchID() string {
	return r.Text(FieldBatchID)
}

func (r Record) UploadDate() string {
	return r.Text(FieldUploadDate)
}

// Clone returns a deep copy that shares nothing with r.
func (r Record) Clone() Record {
	out := Record{
		keys:   slices.Clone(r.keys),
		fields: make(map[string]Value, len(r.fields)),
	}
	for k, v := range r.fields {
		out.fields[k] = v
	}
	return out
}

// Equal reports whether both records hold the same fields in the same order.
func (r Record) Equal(o Record) bool {
	if !slices.Equal(r.keys, o.keys) {
		return false
	}
	for _, k := range r.keys {
		if r.fields[k] != o.fields[k] {
			return false
		}
	}
	return true
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := r.fields[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. A repeated key keeps
// its first position and its last value. Objects and arrays are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	out, _, err := decodeRecord(data, false)
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// Degraded describes one piece of a stored collection that could not be
// loaded as is. Field is empty when the whole element was skipped.
type Degraded struct {
	Index int
	Field string
	Err   error
}

// DecodeStoredRecords parses a persisted record array. One bad field never
// costs the collection: a nested object or array is kept as its compact JSON
// text and an element that is not an object is skipped. Both are reported in
// the returned slice. An error means data is not a JSON array at all.
func DecodeStoredRecords(data []byte) ([]Record, []Degraded, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil, err
	}

	records := make([]Record, 0, len(items))
	var degraded []Degraded
	for i, item := range items {
		rec, nested, err := decodeRecord(item, true)
		if err != nil {
			degraded = append(degraded, Degraded{Index: i, Err: err})
			continue
		}
		for _, field := range nested {
			degraded = append(degraded, Degraded{Index: i, Field: field, Err: ErrUnsupportedValue})
		}
		records = append(records, rec)
	}

	return records, degraded, nil
}

// decodeRecord reads one JSON object. With keepNested set, nested values are
// stored as text and their keys returned instead of failing the record.
func decodeRecord(data []byte, keepNested bool) (Record, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Record{}, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Record{}, nil, errors.New("record must be a JSON object")
	}

	out := NewRecord()
	var nested []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Record{}, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return Record{}, nil, fmt.Errorf("unexpected key token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Record{}, nil, fmt.Errorf("field %q: %w", key, err)
		}

		var val Value
		err = val.UnmarshalJSON(raw)
		if errors.Is(err, ErrUnsupportedValue) && keepNested {
			var buf bytes.Buffer
			if err := json.Compact(&buf, raw); err != nil {
				return Record{}, nil, fmt.Errorf("field %q: %w", key, err)
			}
			val, err = String(buf.String()), nil
			nested = append(nested, key)
		}
		if err != nil {
			return Record{}, nil, fmt.Errorf("field %q: %w", key, err)
		}
		out.Set(key, val)
	}

	if _, err := dec.Token(); err != nil {
		return Record{}, nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Record{}, nil, errors.New("unexpected data after record object")
	}

	return out, nested, nil
}

func unmarshalNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
