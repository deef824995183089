package interpreter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/oarkflow/convert"
)

type BuiltinFunction func(i *Interpreter, args []*Cell) (*Cell, error)

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

var builtins = map[string]*Builtin{}

func init() {
	for _, b := range []*Builtin{
		{Name: "print", Fn: builtinPrint},
		{Name: "debug", Fn: builtinDebug},
		{Name: "input", Fn: builtinInput},
		{Name: "exit", Fn: builtinExit},
		{Name: "copy", Fn: builtinCopy},
		{Name: "push", Fn: builtinPush},
		{Name: "pop", Fn: builtinPop},
		{Name: "insert", Fn: builtinInsert},
		{Name: "remove", Fn: builtinRemove},
		{Name: "set", Fn: builtinSet},
		{Name: "type", Fn: builtinType},
		{Name: "int", Fn: builtinInt},
		{Name: "str", Fn: builtinStr},
		{Name: "len", Fn: builtinLen},
		{Name: "range", Fn: builtinRange},
		{Name: "contains", Fn: builtinContains},
		{Name: "split", Fn: builtinSplit},
		{Name: "tcp_bind", Fn: builtinTCPBind},
		{Name: "tcp_unbind", Fn: builtinTCPUnbind},
		{Name: "tcp_listen", Fn: builtinTCPListen},
		{Name: "tcp_write", Fn: builtinTCPWrite},
	} {
		builtins[b.Name] = b
	}
}

// IsBuiltin reports whether name is reserved for a built-in.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

func none() (*Cell, error) {
	return NewCell(NONE), nil
}

func arity(name string, args []*Cell, n int) error {
	if len(args) != n {
		return incorrectArgs(name, n, len(args))
	}
	return nil
}

func listArg(cell *Cell) (*List, error) {
	list, ok := cell.Value.(*List)
	if !ok {
		return nil, incorrectType(LIST_OBJ, cell.Value.Type())
	}
	return list, nil
}

func intArg(cell *Cell) (int64, error) {
	n, ok := cell.Value.(*Integer)
	if !ok {
		return 0, incorrectType(INT_OBJ, cell.Value.Type())
	}
	return n.Value, nil
}

func stringArg(cell *Cell) (string, error) {
	s, ok := cell.Value.(*String)
	if !ok {
		return "", incorrectType(STRING_OBJ, cell.Value.Type())
	}
	return s.Value, nil
}

// position validates idx against a length; limit is len for inserts and len-1 otherwise.
func position(idx int64, limit int) (int, error) {
	if idx < 0 || idx > int64(limit) {
		return 0, runtimeErrorf(ErrIndexOutOfRange, "index %d out of range", idx)
	}
	return int(idx), nil
}

func builtinPrint(i *Interpreter, args []*Cell) (*Cell, error) {
	var out strings.Builder
	for _, arg := range args {
		out.WriteString(arg.Value.Inspect())
	}
	out.WriteString("\n")
	if _, err := io.WriteString(i.stdout, out.String()); err != nil {
		return nil, ioFailure(err, "print")
	}
	return none()
}

func builtinDebug(i *Interpreter, args []*Cell) (*Cell, error) {
	for _, arg := range args {
		if _, err := fmt.Fprintf(i.stdout, "%p: %s\n", arg, arg.Value.Inspect()); err != nil {
			return nil, ioFailure(err, "debug")
		}
	}
	return none()
}

func builtinInput(i *Interpreter, args []*Cell) (*Cell, error) {
	if len(args) > 1 {
		return nil, incorrectArgs("input", 1, len(args))
	}
	if len(args) == 1 {
		if _, err := io.WriteString(i.stdout, args[0].Value.Inspect()); err != nil {
			return nil, ioFailure(err, "input prompt")
		}
	}
	line, err := i.stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, ioFailure(err, "input")
	}
	return NewCell(&String{Value: strings.TrimRight(line, "\r\n")}), nil
}

func builtinExit(_ *Interpreter, _ []*Cell) (*Cell, error) {
	return nil, ErrExit
}

func builtinCopy(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("copy", args, 1); err != nil {
		return nil, err
	}
	return args[0].Copy(), nil
}

func builtinPush(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("push", args, 2); err != nil {
		return nil, err
	}
	list, err := listArg(args[0])
	if err != nil {
		return nil, err
	}
	list.Elements = append(list.Elements, args[1].Copy())
	return none()
}

func builtinPop(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("pop", args, 1); err != nil {
		return nil, err
	}
	list, err := listArg(args[0])
	if err != nil {
		return nil, err
	}
	n := len(list.Elements)
	if n == 0 {
		return none()
	}
	last := list.Elements[n-1]
	list.Elements = list.Elements[:n-1]
	return last, nil
}

func builtinInsert(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("insert", args, 3); err != nil {
		return nil, err
	}
	list, err := listArg(args[0])
	if err != nil {
		return nil, err
	}
	raw, err := intArg(args[1])
	if err != nil {
		return nil, err
	}
	idx, err := position(raw, len(list.Elements))
	if err != nil {
		return nil, err
	}
	list.Elements = append(list.Elements, nil)
	copy(list.Elements[idx+1:], list.Elements[idx:])
	list.Elements[idx] = args[2].Copy()
	return none()
}

func builtinRemove(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("remove", args, 2); err != nil {
		return nil, err
	}
	list, err := listArg(args[0])
	if err != nil {
		return nil, err
	}
	raw, err := intArg(args[1])
	if err != nil {
		return nil, err
	}
	idx, err := position(raw, len(list.Elements)-1)
	if err != nil {
		return nil, err
	}
	removed := list.Elements[idx]
	list.Elements = append(list.Elements[:idx], list.Elements[idx+1:]...)
	return removed, nil
}

// builtinSet overwrites a list element, or a rune of a string, in place.
func builtinSet(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("set", args, 3); err != nil {
		return nil, err
	}
	raw, err := intArg(args[1])
	if err != nil {
		return nil, err
	}
	switch target := args[0].Value.(type) {
	case *List:
		idx, err := position(raw, len(target.Elements)-1)
		if err != nil {
			return nil, err
		}
		target.Elements[idx] = args[2].Copy()
	case *String:
		ch, ok := args[2].Value.(*Char)
		if !ok {
			return nil, incorrectType(CHAR_OBJ, args[2].Value.Type())
		}
		runes := []rune(target.Value)
		idx, err := position(raw, len(runes)-1)
		if err != nil {
			return nil, err
		}
		runes[idx] = ch.Value
		args[0].Value = &String{Value: string(runes)}
	default:
		return nil, incorrectType(LIST_OBJ, args[0].Value.Type())
	}
	return none()
}

func builtinType(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("type", args, 1); err != nil {
		return nil, err
	}
	return NewCell(&TypeValue{Value: args[0].Value.Type()}), nil
}

func builtinInt(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("int", args, 1); err != nil {
		return nil, err
	}
	var text string
	switch v := args[0].Value.(type) {
	case *Integer:
		return NewCell(v), nil
	case *String:
		text = v.Value
	case *Char:
		text = string(v.Value)
	default:
		return none()
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &RuntimeError{Kind: ErrInvalidConversion, Detail: fmt.Sprintf("cannot convert %q to Int", text)}
	}
	return NewCell(&Integer{Value: n}), nil
}

func builtinStr(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("str", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].Value.(type) {
	case *Integer:
		s, _ := convert.ToString(v.Value)
		return NewCell(&String{Value: s}), nil
	case *Float, *Boolean, *Char:
		return NewCell(&String{Value: v.Inspect()}), nil
	case *String:
		return NewCell(&String{Value: v.Value}), nil
	}
	return none()
}

func builtinLen(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("len", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].Value.(type) {
	case *List:
		return NewCell(&Integer{Value: int64(len(v.Elements))}), nil
	case *String:
		return NewCell(&Integer{Value: int64(len([]rune(v.Value)))}), nil
	}
	return nil, incorrectType(LIST_OBJ, args[0].Value.Type())
}

func builtinRange(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("range", args, 1); err != nil {
		return nil, err
	}
	n, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	elements := make([]*Cell, n)
	for k := range elements {
		elements[k] = NewCell(&Integer{Value: int64(k)})
	}
	return NewCell(&List{Elements: elements}), nil
}

func builtinContains(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("contains", args, 2); err != nil {
		return nil, err
	}
	list, err := listArg(args[0])
	if err != nil {
		return nil, err
	}
	for _, element := range list.Elements {
		eq, err := Operate(element, args[1], OpEq)
		if err != nil {
			continue
		}
		if b, ok := eq.Value.(*Boolean); ok && b.Value {
			return NewCell(TRUE), nil
		}
	}
	return NewCell(FALSE), nil
}

func builtinSplit(_ *Interpreter, args []*Cell) (*Cell, error) {
	if err := arity("split", args, 2); err != nil {
		return nil, err
	}
	s, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	sep, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	elements := make([]*Cell, len(parts))
	for k, part := range parts {
		elements[k] = NewCell(&String{Value: part})
	}
	return NewCell(&List{Elements: elements}), nil
}
