package interpreter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type ObjectType int

const (
	NONE_OBJ ObjectType = iota
	BOOL_OBJ
	INT_OBJ
	FLOAT_OBJ
	CHAR_OBJ
	STRING_OBJ
	TYPE_OBJ
	LIST_OBJ
	HASH_OBJ
)

func (ot ObjectType) String() string {
	switch ot {
	case NONE_OBJ:
		return "None"
	case BOOL_OBJ:
		return "Bool"
	case INT_OBJ:
		return "Int"
	case FLOAT_OBJ:
		return "Float"
	case CHAR_OBJ:
		return "Char"
	case STRING_OBJ:
		return "String"
	case TYPE_OBJ:
		return "Type"
	case LIST_OBJ:
		return "List"
	case HASH_OBJ:
		return "Hash"
	default:
		return "Unknown"
	}
}

type Object interface {
	Type() ObjectType
	Inspect() string
}

var (
	NONE  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type Null struct{}

func (n *Null) Type() ObjectType { return NONE_OBJ }
func (n *Null) Inspect() string  { return "None" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOL_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INT_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return formatFloat(f.Value) }

// formatFloat prints the shortest decimal form without an exponent; 2.0 prints as "2".
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type Char struct {
	Value rune
}

func (c *Char) Type() ObjectType { return CHAR_OBJ }
func (c *Char) Inspect() string  { return string(c.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// TypeValue is the result of the type built-in.
type TypeValue struct {
	Value ObjectType
}

func (t *TypeValue) Type() ObjectType { return TYPE_OBJ }
func (t *TypeValue) Inspect() string  { return t.Value.String() }

type List struct {
	Elements []*Cell
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	for i, e := range l.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(e.Value.Inspect())
	}
	out.WriteString("]")
	return out.String()
}

type Hash struct {
	Pairs map[string]*Cell
}

func (h *Hash) Type() ObjectType { return HASH_OBJ }

// Inspect lists pairs sorted by key so output is stable.
func (h *Hash) Inspect() string {
	keys := make([]string, 0, len(h.Pairs))
	for k := range h.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s: %s", k, h.Pairs[k].Value.Inspect())
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// Cell is a shared, mutable holder of one value. Names and containers hold cells,
// so writing Value is visible through every holder.
type Cell struct {
	Value Object
}

func NewCell(v Object) *Cell {
	if v == nil {
		v = NONE
	}
	return &Cell{Value: v}
}

// Assign overwrites the cell's value with a shallow copy of v, so a list or hash is
// never owned by two cells.
func (c *Cell) Assign(v Object) {
	c.Value = shallowCopy(v)
}

// Copy returns a fresh cell holding a deep, alias-free copy of the cell's value.
func (c *Cell) Copy() *Cell {
	return &Cell{Value: deepCopy(c.Value)}
}

func (c *Cell) String() string {
	return c.Value.Inspect()
}

func shallowCopy(v Object) Object {
	switch v := v.(type) {
	case *List:
		elements := make([]*Cell, len(v.Elements))
		copy(elements, v.Elements)
		return &List{Elements: elements}
	case *Hash:
		pairs := make(map[string]*Cell, len(v.Pairs))
		for k, c := range v.Pairs {
			pairs[k] = c
		}
		return &Hash{Pairs: pairs}
	case nil:
		return NONE
	default:
		return v
	}
}

func deepCopy(v Object) Object {
	switch v := v.(type) {
	case *List:
		elements := make([]*Cell, len(v.Elements))
		for i, c := range v.Elements {
			elements[i] = c.Copy()
		}
		return &List{Elements: elements}
	case *Hash:
		pairs := make(map[string]*Cell, len(v.Pairs))
		for k, c := range v.Pairs {
			pairs[k] = c.Copy()
		}
		return &Hash{Pairs: pairs}
	case nil:
		return NONE
	default:
		return v
	}
}

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// isTruthy: None is false, numbers and chars are true when non-zero,
// strings and containers when non-empty.
func isTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Null:
		return false
	case *Boolean:
		return obj.Value
	case *Integer:
		return obj.Value != 0
	case *Float:
		return obj.Value != 0
	case *Char:
		return obj.Value != 0
	case *String:
		return obj.Value != ""
	case *List:
		return len(obj.Elements) > 0
	case *Hash:
		return len(obj.Pairs) > 0
	default:
		return true
	}
}
