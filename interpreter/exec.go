package interpreter

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/oarkflow/spl/pkg/source"
)

// Exec runs script as a single unit and returns the value the entry function returned.
func Exec(ctx context.Context, script string, opts ...Option) (Object, error) {
	program, err := LoadSource("main.spl", script, nil)
	if err != nil {
		return nil, err
	}
	return run(ctx, program, opts)
}

// ExecFile loads filename together with its imports and runs it.
func ExecFile(ctx context.Context, filename string, opts ...Option) (Object, error) {
	program, err := LoadUnits(filename, source.FileReader{})
	if err != nil {
		return nil, err
	}
	return run(ctx, program, opts)
}

func run(ctx context.Context, program *Program, opts []Option) (Object, error) {
	interp, err := NewInterpreter(program, opts...)
	if err != nil {
		return nil, err
	}
	result, err := interp.Run(ctx)
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

// WithGlobals pre-binds Go values as global variables.
func WithGlobals(data map[string]any) Option {
	return func(i *Interpreter) {
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			i.globals.Set(k, NewCell(toObject(data[k])))
		}
	}
}

// toObject converts a Go value to a script value.
func toObject(val any) Object {
	if val == nil {
		return NONE
	}
	if obj, ok := val.(Object); ok {
		return obj
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Bool:
		return nativeBoolToBooleanObject(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Integer{Value: v.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Integer{Value: int64(v.Uint())}
	case reflect.Float32, reflect.Float64:
		return &Float{Value: v.Float()}
	case reflect.String:
		return &String{Value: v.String()}
	case reflect.Slice, reflect.Array:
		elements := make([]*Cell, v.Len())
		for k := 0; k < v.Len(); k++ {
			elements[k] = NewCell(toObject(v.Index(k).Interface()))
		}
		return &List{Elements: elements}
	case reflect.Map:
		pairs := make(map[string]*Cell, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			pairs[fmt.Sprint(iter.Key().Interface())] = NewCell(toObject(iter.Value().Interface()))
		}
		return &Hash{Pairs: pairs}
	case reflect.Struct:
		pairs := make(map[string]*Cell)
		t := v.Type()
		for k := 0; k < v.NumField(); k++ {
			field := t.Field(k)
			if !field.IsExported() {
				continue
			}
			pairs[field.Name] = NewCell(toObject(v.Field(k).Interface()))
		}
		return &Hash{Pairs: pairs}
	case reflect.Pointer:
		if v.IsNil() {
			return NONE
		}
		return toObject(v.Elem().Interface())
	default:
		return &String{Value: fmt.Sprintf("%v", val)}
	}
}
