package core

import (
	"encoding/json"
	"strconv"
)

// ValueKind discriminates the polymorphic datum the pipeline hands to an
// accumulator. Only numeric values count as observations; everything else
// is skipped without error.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindNumeric
	KindString
	KindBool
)

type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
}

func Numeric(v float64) Value { return Value{kind: KindNumeric, num: v} }
func Null() Value             { return Value{kind: KindNull} }
func Str(s string) Value      { return Value{kind: KindString, str: s} }
func Boolean(b bool) Value    { return Value{kind: KindBool, b: b} }

func (v Value) Kind() ValueKind  { return v.kind }
func (v Value) IsNumeric() bool  { return v.kind == KindNumeric }
func (v Value) IsNull() bool     { return v.kind == KindNull }
func (v Value) Float64() float64 { return v.num }
func (v Value) StringVal() string { return v.str }
func (v Value) Bool() bool       { return v.b }

func (v Value) String() string {
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return "null"
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumeric:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	}
	return []byte("null"), nil
}
