package interpreter

import (
	"context"
	"io"
	"testing"

	"github.com/oarkflow/expr"
)

// --- Simple Arithmetic: 1 + 2 * 3 ---

func Benchmark_SPL_Math_ParseOnly(b *testing.B) {
	input := "1 + 2 * 3"
	for i := 0; i < b.N; i++ {
		tokens, err := Tokenize(input, 0)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := NewParser(tokens).parseValue(); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Expr_Math_ParseOnly(b *testing.B) {
	input := "1 + 2 * 3"
	for i := 0; i < b.N; i++ {
		if _, err := expr.Compile(input); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_SPL_Math_EvalOnly(b *testing.B) {
	tokens, err := Tokenize("1 + 2 * 3", 0)
	if err != nil {
		b.Fatal(err)
	}
	value, err := NewParser(tokens).parseValue()
	if err != nil {
		b.Fatal(err)
	}
	interp, err := NewInterpreter(&Program{})
	if err != nil {
		b.Fatal(err)
	}
	ec := &execContext{ctx: context.Background()}
	scope := NewScope()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := interp.evalExpr(ec, value, scope); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Expr_Math_EvalOnly(b *testing.B) {
	program, err := expr.Compile("1 + 2 * 3")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		expr.Run(program, nil)
	}
}

// --- Variables: x + y ---

func Benchmark_SPL_Exec_Vars(b *testing.B) {
	script := "func main() { return x + y; }"
	data := map[string]any{"x": 10, "y": 20}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Exec(context.Background(), script, WithGlobals(data), WithStdout(io.Discard)); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Expr_Exec_Vars(b *testing.B) {
	script := "x + y"
	data := map[string]any{"x": 10, "y": 20}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		program, err := expr.Compile(script, expr.Env(data))
		if err != nil {
			b.Fatal(err)
		}
		if _, err := expr.Run(program, data); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Loop: sum of 0..999 ---

func Benchmark_SPL_Loop(b *testing.B) {
	program, err := LoadSource("bench.spl", `
func main() {
	let total = 0;
	for i in range(1000) { total = total + i; }
	return total;
}`, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interp, err := NewInterpreter(program, WithStdout(io.Discard))
		if err != nil {
			b.Fatal(err)
		}
		if _, err := interp.Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
