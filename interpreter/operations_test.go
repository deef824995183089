package interpreter

import (
	"errors"
	"testing"
)

func cell(v Object) *Cell { return NewCell(v) }

func TestOperateArithmetic(t *testing.T) {
	tests := []struct {
		left, right Object
		op          Operator
		want        string
		kind        ObjectType
	}{
		{&Integer{Value: 7}, &Integer{Value: 2}, OpAdd, "9", INT_OBJ},
		{&Integer{Value: 7}, &Integer{Value: 2}, OpDiv, "3", INT_OBJ},
		{&Integer{Value: 7}, &Integer{Value: 2}, OpMod, "1", INT_OBJ},
		{&Integer{Value: 7}, &Float{Value: 0.5}, OpMul, "3.5", FLOAT_OBJ},
		{&Float{Value: 1}, &Integer{Value: 1}, OpAdd, "2", FLOAT_OBJ},
		{&Float{Value: 1}, &Float{Value: 4}, OpDiv, "0.25", FLOAT_OBJ},
		{&Integer{Value: 1}, &Float{Value: 1.5}, OpLt, "true", BOOL_OBJ},
		{&String{Value: "ab"}, &String{Value: "cd"}, OpAdd, "abcd", STRING_OBJ},
		{&String{Value: "ab"}, &String{Value: "ab"}, OpEq, "true", BOOL_OBJ},
		{&String{Value: "ab"}, &String{Value: "b"}, OpLt, "true", BOOL_OBJ},
		{TRUE, FALSE, OpAnd, "false", BOOL_OBJ},
		{TRUE, FALSE, OpOr, "true", BOOL_OBJ},
		{TRUE, TRUE, OpNotEq, "false", BOOL_OBJ},
		{&Char{Value: 'a'}, &Char{Value: 'b'}, OpLt, "true", BOOL_OBJ},
		{NONE, NONE, OpEq, "true", BOOL_OBJ},
		{NONE, &Integer{Value: 1}, OpNotEq, "true", BOOL_OBJ},
		{&TypeValue{Value: INT_OBJ}, &TypeValue{Value: INT_OBJ}, OpEq, "true", BOOL_OBJ},
	}
	for _, tt := range tests {
		result, err := Operate(cell(tt.left), cell(tt.right), tt.op)
		if err != nil {
			t.Fatalf("%s %s %s: unexpected error %v", tt.left.Inspect(), tt.op, tt.right.Inspect(), err)
		}
		if result.Value.Type() != tt.kind || result.Value.Inspect() != tt.want {
			t.Fatalf("%s %s %s: expected %s %s, got %s %s", tt.left.Inspect(), tt.op, tt.right.Inspect(),
				tt.kind, tt.want, result.Value.Type(), result.Value.Inspect())
		}
	}
}

func TestOperateUnsupported(t *testing.T) {
	tests := []struct {
		left, right Object
		op          Operator
	}{
		{&String{Value: "a"}, &Integer{Value: 1}, OpAdd},
		{&Integer{Value: 1}, &String{Value: "a"}, OpAdd},
		{&Integer{Value: 1}, &Integer{Value: 1}, OpAnd},
		{TRUE, TRUE, OpAdd},
		{&Char{Value: 'a'}, &Char{Value: 'b'}, OpAdd},
		{NONE, NONE, OpAdd},
		{&List{}, &List{}, OpEq},
		{&Integer{Value: 1}, &List{}, OpIndex},
	}
	for _, tt := range tests {
		if _, err := Operate(cell(tt.left), cell(tt.right), tt.op); !errors.Is(err, ErrUnsupported) {
			t.Fatalf("%s %s %s: expected ErrUnsupported, got %v", tt.left.Type(), tt.op, tt.right.Type(), err)
		}
	}
}

func TestOperateIndex(t *testing.T) {
	first := cell(&Integer{Value: 10})
	list := cell(&List{Elements: []*Cell{first, cell(&Integer{Value: 20})}})

	got, err := Operate(list, cell(&Integer{Value: 0}), OpIndex)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got != first {
		t.Fatalf("list index must return the element cell itself")
	}

	ch, err := Operate(cell(&String{Value: "héllo"}), cell(&Integer{Value: 1}), OpIndex)
	if err != nil || ch.Value.Inspect() != "é" {
		t.Fatalf("string index = %v, %v", ch, err)
	}

	hash := cell(&Hash{Pairs: map[string]*Cell{"k": cell(&Integer{Value: 1})}})
	missing, err := Operate(hash, cell(&String{Value: "nope"}), OpIndex)
	if err != nil || missing.Value != Object(NONE) {
		t.Fatalf("missing key = %v, %v", missing, err)
	}
}

func TestOperateFaults(t *testing.T) {
	tests := []struct {
		left, right Object
		op          Operator
		kind        ErrorKind
	}{
		{&Integer{Value: 1}, &Integer{Value: 0}, OpDiv, ErrDivisionByZero},
		{&Integer{Value: 1}, &Integer{Value: 0}, OpMod, ErrDivisionByZero},
		{&List{}, &Integer{Value: 0}, OpIndex, ErrIndexOutOfRange},
		{&String{Value: "ab"}, &Integer{Value: -1}, OpIndex, ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		_, err := Operate(cell(tt.left), cell(tt.right), tt.op)
		var rerr *RuntimeError
		if !errors.As(err, &rerr) || rerr.Kind != tt.kind {
			t.Fatalf("%s %s %s: expected %s, got %v", tt.left.Type(), tt.op, tt.right.Type(), tt.kind, err)
		}
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		value Object
		want  bool
	}{
		{NONE, false},
		{TRUE, true},
		{FALSE, false},
		{&Integer{Value: 0}, false},
		{&Integer{Value: -2}, true},
		{&Float{Value: 0}, false},
		{&Char{Value: 0}, false},
		{&Char{Value: 'a'}, true},
		{&String{Value: ""}, false},
		{&String{Value: "x"}, true},
		{&List{}, false},
		{&List{Elements: []*Cell{cell(NONE)}}, true},
		{&Hash{Pairs: map[string]*Cell{}}, false},
		{&TypeValue{Value: NONE_OBJ}, true},
	}
	for _, tt := range tests {
		if got := isTruthy(tt.value); got != tt.want {
			t.Fatalf("isTruthy(%s %s) = %v", tt.value.Type(), tt.value.Inspect(), got)
		}
	}
}

func TestCellAssignAndCopy(t *testing.T) {
	inner := cell(&List{Elements: []*Cell{cell(&Integer{Value: 1})}})
	original := cell(&List{Elements: []*Cell{inner}})

	shallow := cell(NONE)
	shallow.Assign(original.Value)
	shallow.Value.(*List).Elements = append(shallow.Value.(*List).Elements, cell(&Integer{Value: 2}))
	if n := len(original.Value.(*List).Elements); n != 1 {
		t.Fatalf("assigned list must not share its element slice, original has %d elements", n)
	}
	if shallow.Value.(*List).Elements[0] != inner {
		t.Fatalf("assignment copies the list shallowly")
	}

	deep := original.Copy()
	deep.Value.(*List).Elements[0].Value.(*List).Elements[0].Value = &Integer{Value: 99}
	if got := original.Value.Inspect(); got != "[[1]]" {
		t.Fatalf("deep copy leaked into the original: %s", got)
	}
}

func TestDisplayForms(t *testing.T) {
	tests := []struct {
		value Object
		want  string
	}{
		{&Float{Value: 2}, "2"},
		{&Float{Value: 2.5}, "2.5"},
		{&Char{Value: 'z'}, "z"},
		{&List{Elements: []*Cell{cell(&Integer{Value: 1}), cell(&String{Value: "a"})}}, "[1, a]"},
		{&Hash{Pairs: map[string]*Cell{"b": cell(TRUE), "a": cell(NONE)}}, "{a: None, b: true}"},
		{&TypeValue{Value: LIST_OBJ}, "List"},
	}
	for _, tt := range tests {
		if got := tt.value.Inspect(); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}
