package entity

import (
	"encoding/json"
	"errors"
	"strconv"
)

// ErrUnsupportedValue is returned when a field holds an object or an array.
var ErrUnsupportedValue = errors.New("field value must be a string, number or null")

// Kind is the closed set of scalar kinds a field value can take.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// Value is a single scalar field value. Numbers keep their JSON literal so
// they round-trip without float formatting drift.
type Value struct {
	kind Kind
	raw  string
}

func Null() Value {
	return Value{kind: KindNull}
}

func String(s string) Value {
	return Value{kind: KindString, raw: s}
}

// Number builds a numeric value from a JSON number literal.
func Number(n json.Number) Value {
	return Value{kind: KindNumber, raw: n.String()}
}

func Int(n int64) Value {
	return Value{kind: KindNumber, raw: strconv.FormatInt(n, 10)}
}

func Float(f float64) Value {
	return Value{kind: KindNumber, raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Text returns the value as text: the string itself, the number literal, or
// "" for null.
func (v Value) Text() string {
	return v.raw
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.raw)
	case KindNumber:
		return []byte(v.raw), nil
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := unmarshalNumber(data, &raw); err != nil {
		return err
	}

	val, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = val

	return nil
}

// valueOf converts a decoded JSON token into a Value. Booleans are kept as
// their text form.
func valueOf(tok any) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case bool:
		return String(strconv.FormatBool(t)), nil
	default:
		return Value{}, ErrUnsupportedValue
	}
}
