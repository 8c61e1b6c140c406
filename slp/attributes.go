package slp

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"strconv"
	"strings"
)

// ValueType is the wire type of an attribute value.
type ValueType int

const (
	ValueString ValueType = iota
	ValueInteger
	ValueBoolean
	ValueOpaque
)

// Value is one typed value of a multi-valued attribute.
type Value struct {
	Type    ValueType
	Str     string
	Int     int64
	Bool    bool
	Opaque  []byte
}

func StringValue(s string) Value  { return Value{Type: ValueString, Str: s} }
func IntValue(i int64) Value      { return Value{Type: ValueInteger, Int: i} }
func BoolValue(b bool) Value      { return Value{Type: ValueBoolean, Bool: b} }
func OpaqueValue(b []byte) Value  { return Value{Type: ValueOpaque, Opaque: b} }

func (v Value) String() string {
	switch v.Type {
	case ValueString:
		return v.Str
	case ValueInteger:
		return strconv.FormatInt(v.Int, 10)
	case ValueBoolean:
		return strconv.FormatBool(v.Bool)
	case ValueOpaque:
		return fmt.Sprintf("0x%x", v.Opaque)
	default:
		return ""
	}
}

// Equals compares two values under their declared type: string compare is
// case-insensitive, integer compare is numeric, boolean and opaque compare
// exactly.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValueString:
		return strings.EqualFold(v.Str, other.Str)
	case ValueInteger:
		return v.Int == other.Int
	case ValueBoolean:
		return v.Bool == other.Bool
	case ValueOpaque:
		if len(v.Opaque) != len(other.Opaque) {
			return false
		}
		for i := range v.Opaque {
			if v.Opaque[i] != other.Opaque[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// entry is one attribute: either a bare presence flag (no values) or a
// non-empty, ordered list of typed values.
type entry struct {
	tag    string // original casing, as first registered
	flag   bool
	values []Value
}

// Attributes is an ordered mapping from case-insensitive attribute tag to
// either a presence flag or a list of typed values.
type Attributes struct {
	order   []string          // lower-cased tags, insertion order
	entries map[string]*entry // keyed by lower-cased tag
}

func NewAttributes() Attributes {
	return Attributes{entries: make(map[string]*entry)}
}

// AttributesFrom parses a simple attribute-list string of the form
// "(tag=v1,v2),(flagtag),(other=1)". This is the textual form used in
// configuration files and in service registrations; it is not the RFC 2608
// binary PDU encoding, which lives below the wire/transport boundary.
func AttributesFrom(s string) (Attributes, error) {
	a := NewAttributes()
	s = strings.TrimSpace(s)
	if s == "" {
		return a, nil
	}
	for _, group := range splitGroups(s) {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		if !strings.HasPrefix(group, "(") || !strings.HasSuffix(group, ")") {
			return Attributes{}, NewError(InvalidRegistration, "malformed attribute list "+s)
		}
		inner := group[1 : len(group)-1]
		eq := strings.Index(inner, "=")
		if eq < 0 {
			a.SetFlag(inner)
			continue
		}
		tag := inner[:eq]
		rawValues := strings.Split(inner[eq+1:], ",")
		values := make([]Value, 0, len(rawValues))
		for _, rv := range rawValues {
			values = append(values, parseValue(strings.TrimSpace(rv)))
		}
		a.SetValues(tag, values...)
	}
	return a, nil
}

// splitGroups splits a "(a),(b=c)" string on top-level parenthesized groups.
func splitGroups(s string) []string {
	var groups []string
	depth := 0
	start := -1
	for i, r := range s {
		switch r {
		case '(':
			if depth == 0 {
				start = i
			}
			depth++
		case ')':
			depth--
			if depth == 0 && start >= 0 {
				groups = append(groups, s[start:i+1])
				start = -1
			}
		}
	}
	return groups
}

func parseValue(s string) Value {
	if b, err := strconv.ParseBool(s); err == nil {
		return BoolValue(b)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i)
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "\\FF") {
		return OpaqueValue([]byte(s))
	}
	return StringValue(s)
}

func (a *Attributes) ensure() {
	if a.entries == nil {
		a.entries = make(map[string]*entry)
	}
}

// SetFlag sets tag as a bare presence flag, overwriting any prior entry.
func (a *Attributes) SetFlag(tag string) {
	a.ensure()
	key := strings.ToLower(tag)
	if _, exists := a.entries[key]; !exists {
		a.order = append(a.order, key)
	}
	a.entries[key] = &entry{tag: tag, flag: true}
}

// SetValues sets tag to the given values, overwriting any prior entry.
func (a *Attributes) SetValues(tag string, values ...Value) {
	a.ensure()
	key := strings.ToLower(tag)
	if _, exists := a.entries[key]; !exists {
		a.order = append(a.order, key)
	}
	a.entries[key] = &entry{tag: tag, values: values}
}

func (a Attributes) Len() int { return len(a.order) }

// Has reports whether tag is present, flag or valued.
func (a Attributes) Has(tag string) bool {
	_, ok := a.entries[strings.ToLower(tag)]
	return ok
}

// Values returns the values registered under tag, or nil if tag is absent
// or is a bare flag.
func (a Attributes) Values(tag string) []Value {
	e, ok := a.entries[strings.ToLower(tag)]
	if !ok || e.flag {
		return nil
	}
	return e.values
}

// IsFlag reports whether tag is present as a bare presence flag.
func (a Attributes) IsFlag(tag string) bool {
	e, ok := a.entries[strings.ToLower(tag)]
	return ok && e.flag
}

// Tags returns the attribute tags in insertion order, in their original
// casing.
func (a Attributes) Tags() []string {
	out := make([]string, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.entries[key].tag)
	}
	return out
}

// Merge returns the union of a and other, with other's entries overwriting
// a's on conflicting tags.
func (a Attributes) Merge(other Attributes) Attributes {
	out := NewAttributes()
	for _, key := range a.order {
		out.copyEntry(a.entries[key])
	}
	for _, key := range other.order {
		out.copyEntry(other.entries[key])
	}
	return out
}

func (a *Attributes) copyEntry(e *entry) {
	if e.flag {
		a.SetFlag(e.tag)
		return
	}
	a.SetValues(e.tag, e.values...)
}

// Unmerge returns a with other's tags removed entirely when other names
// them as a bare flag, or with only the named values removed when other
// supplies values for a tag.
func (a Attributes) Unmerge(other Attributes) Attributes {
	out := NewAttributes()
	for _, key := range a.order {
		e := a.entries[key]
		oe, present := other.entries[key]
		if !present {
			out.copyEntry(e)
			continue
		}
		if oe.flag || e.flag {
			// removing the whole tag
			continue
		}
		remaining := make([]Value, 0, len(e.values))
		for _, v := range e.values {
			if !containsValue(oe.values, v) {
				remaining = append(remaining, v)
			}
		}
		if len(remaining) > 0 {
			out.SetValues(e.tag, remaining...)
		}
	}
	return out
}

func containsValue(values []Value, v Value) bool {
	for _, existing := range values {
		if existing.Equals(v) {
			return true
		}
	}
	return false
}

// attrEntryDTO is the exported shape Attributes encodes itself as for gob:
// entry and Attributes itself carry only unexported fields, which gob
// cannot compile an encoder for.
type attrEntryDTO struct {
	Tag    string
	Flag   bool
	Values []Value
}

func (a Attributes) GobEncode() ([]byte, error) {
	dtos := make([]attrEntryDTO, 0, len(a.order))
	for _, key := range a.order {
		e := a.entries[key]
		dtos = append(dtos, attrEntryDTO{Tag: e.tag, Flag: e.flag, Values: e.values})
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dtos); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *Attributes) GobDecode(data []byte) error {
	var dtos []attrEntryDTO
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&dtos); err != nil {
		return err
	}
	out := NewAttributes()
	for _, dto := range dtos {
		if dto.Flag {
			out.SetFlag(dto.Tag)
			continue
		}
		out.SetValues(dto.Tag, dto.Values...)
	}
	*a = out
	return nil
}

func (a Attributes) String() string {
	var b strings.Builder
	for i, key := range a.order {
		if i > 0 {
			b.WriteByte(',')
		}
		e := a.entries[key]
		if e.flag {
			fmt.Fprintf(&b, "(%s)", e.tag)
			continue
		}
		strs := make([]string, len(e.values))
		for i, v := range e.values {
			strs[i] = v.String()
		}
		fmt.Fprintf(&b, "(%s=%s)", e.tag, strings.Join(strs, ","))
	}
	return b.String()
}
