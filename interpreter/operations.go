package interpreter

import "math"

// Operate applies op to two cells. Index on a list yields the element cell itself;
// every other result is a fresh cell. Combinations without a rule return ErrUnsupported.
func Operate(left, right *Cell, op Operator) (*Cell, error) {
	if op == OpIndex {
		return index(left, right)
	}
	if left.Value.Type() == NONE_OBJ || right.Value.Type() == NONE_OBJ {
		return compareNone(left.Value, right.Value, op)
	}
	var (
		result Object
		err    error
	)
	switch l := left.Value.(type) {
	case *Integer:
		switch r := right.Value.(type) {
		case *Integer:
			result, err = integerOperation(l.Value, r.Value, op)
		case *Float:
			result, err = floatOperation(float64(l.Value), r.Value, op)
		default:
			err = ErrUnsupported
		}
	case *Float:
		switch r := right.Value.(type) {
		case *Integer:
			result, err = floatOperation(l.Value, float64(r.Value), op)
		case *Float:
			result, err = floatOperation(l.Value, r.Value, op)
		default:
			err = ErrUnsupported
		}
	case *String:
		r, ok := right.Value.(*String)
		if !ok {
			return nil, ErrUnsupported
		}
		result, err = stringOperation(l.Value, r.Value, op)
	case *Boolean:
		r, ok := right.Value.(*Boolean)
		if !ok {
			return nil, ErrUnsupported
		}
		result, err = booleanOperation(l.Value, r.Value, op)
	case *Char:
		r, ok := right.Value.(*Char)
		if !ok {
			return nil, ErrUnsupported
		}
		result, err = charOperation(l.Value, r.Value, op)
	case *TypeValue:
		r, ok := right.Value.(*TypeValue)
		if !ok {
			return nil, ErrUnsupported
		}
		result, err = equality(l.Value == r.Value, op)
	default:
		err = ErrUnsupported
	}
	if err != nil {
		return nil, err
	}
	return NewCell(result), nil
}

func index(left, right *Cell) (*Cell, error) {
	switch container := left.Value.(type) {
	case *List:
		i, ok := right.Value.(*Integer)
		if !ok {
			return nil, ErrUnsupported
		}
		if i.Value < 0 || i.Value >= int64(len(container.Elements)) {
			return nil, runtimeErrorf(ErrIndexOutOfRange, "index %d out of range for list of length %d", i.Value, len(container.Elements))
		}
		return container.Elements[i.Value], nil
	case *String:
		i, ok := right.Value.(*Integer)
		if !ok {
			return nil, ErrUnsupported
		}
		runes := []rune(container.Value)
		if i.Value < 0 || i.Value >= int64(len(runes)) {
			return nil, runtimeErrorf(ErrIndexOutOfRange, "index %d out of range for string of length %d", i.Value, len(runes))
		}
		return NewCell(&Char{Value: runes[i.Value]}), nil
	case *Hash:
		key, ok := right.Value.(*String)
		if !ok {
			return nil, ErrUnsupported
		}
		if cell, ok := container.Pairs[key.Value]; ok {
			return cell, nil
		}
		return NewCell(NONE), nil
	}
	return nil, ErrUnsupported
}

// compareNone handles None on either side: only Eq and NotEq are defined.
func compareNone(left, right Object, op Operator) (*Cell, error) {
	same := left.Type() == NONE_OBJ && right.Type() == NONE_OBJ
	result, err := equality(same, op)
	if err != nil {
		return nil, err
	}
	return NewCell(result), nil
}

func equality(equal bool, op Operator) (Object, error) {
	switch op {
	case OpEq:
		return nativeBoolToBooleanObject(equal), nil
	case OpNotEq:
		return nativeBoolToBooleanObject(!equal), nil
	}
	return nil, ErrUnsupported
}

func integerOperation(l, r int64, op Operator) (Object, error) {
	switch op {
	case OpAdd:
		return &Integer{Value: l + r}, nil
	case OpSub:
		return &Integer{Value: l - r}, nil
	case OpMul:
		return &Integer{Value: l * r}, nil
	case OpDiv:
		if r == 0 {
			return nil, runtimeErrorf(ErrDivisionByZero, "integer division by zero")
		}
		return &Integer{Value: l / r}, nil
	case OpMod:
		if r == 0 {
			return nil, runtimeErrorf(ErrDivisionByZero, "integer modulo by zero")
		}
		return &Integer{Value: l % r}, nil
	case OpLt:
		return nativeBoolToBooleanObject(l < r), nil
	case OpGt:
		return nativeBoolToBooleanObject(l > r), nil
	}
	return equality(l == r, op)
}

func floatOperation(l, r float64, op Operator) (Object, error) {
	switch op {
	case OpAdd:
		return &Float{Value: l + r}, nil
	case OpSub:
		return &Float{Value: l - r}, nil
	case OpMul:
		return &Float{Value: l * r}, nil
	case OpDiv:
		return &Float{Value: l / r}, nil
	case OpMod:
		return &Float{Value: math.Mod(l, r)}, nil
	case OpLt:
		return nativeBoolToBooleanObject(l < r), nil
	case OpGt:
		return nativeBoolToBooleanObject(l > r), nil
	}
	return equality(l == r, op)
}

func stringOperation(l, r string, op Operator) (Object, error) {
	switch op {
	case OpAdd:
		return &String{Value: l + r}, nil
	case OpLt:
		return nativeBoolToBooleanObject(l < r), nil
	case OpGt:
		return nativeBoolToBooleanObject(l > r), nil
	}
	return equality(l == r, op)
}

func booleanOperation(l, r bool, op Operator) (Object, error) {
	switch op {
	case OpAnd:
		return nativeBoolToBooleanObject(l && r), nil
	case OpOr:
		return nativeBoolToBooleanObject(l || r), nil
	}
	return equality(l == r, op)
}

func charOperation(l, r rune, op Operator) (Object, error) {
	switch op {
	case OpLt:
		return nativeBoolToBooleanObject(l < r), nil
	case OpGt:
		return nativeBoolToBooleanObject(l > r), nil
	}
	return equality(l == r, op)
}
