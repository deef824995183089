package interpreter

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func parseExpression(t *testing.T, input string) Expression {
	t.Helper()
	tokens, err := Tokenize(input, 0)
	if err != nil {
		t.Fatalf("%q: lex error %v", input, err)
	}
	p := NewParser(tokens)
	expr, err := p.parseValue()
	if err != nil {
		t.Fatalf("%q: parse error %v", input, err)
	}
	if _, ok := p.current(); ok {
		t.Fatalf("%q: tokens left after expression", input)
	}
	return expr
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2 + 3 * 4", "(2 + (3 * 4))"},
		{"2 * 3 + 4", "((2 * 3) + 4)"},
		{"8 - 3 - 2", "((8 - 3) - 2)"},
		{"8 / 4 % 3 * 2", "(((8 / 4) % 3) * 2)"},
		{"a | b & c", "(a | (b & c))"},
		{"1 < 2 == true", "((1 < 2) == true)"},
		{"x == 1 | y != 2", "((x == 1) | (y != 2))"},
		{"a[0][1] + 1", "(a[0][1] + 1)"},
		{"(2 + 3) * 4", "((2 + 3) * 4)"},
		{"-3 + 1", "((0 - 3) + 1)"},
		{"2 * -x[1]", "(2 * (0 - x[1]))"},
		{"f(1, 2 + 3) * 2", "(f(1, (2 + 3)) * 2)"},
		{`{"a": 1, "b": [1, 2]}`, `{"a": 1, "b": [1, 2]}`},
		{"[]", "[]"},
		{"None == None", "(None == None)"},
	}
	for _, tt := range tests {
		if got := parseExpression(t, tt.input).String(); got != tt.want {
			t.Fatalf("%q: expected %s, got %s", tt.input, tt.want, got)
		}
	}
}

func TestExpressionTree(t *testing.T) {
	expr := parseExpression(t, "2 + 3 * 4")
	add, ok := expr.(*BinaryExpression)
	if !ok || add.Op != OpAdd {
		t.Fatalf("expected Add at the root, got %s", expr)
	}
	if lit, ok := add.Left.(*IntegerLiteral); !ok || lit.Value != 2 {
		t.Fatalf("expected literal 2 on the left, got %s", add.Left)
	}
	mul, ok := add.Right.(*BinaryExpression)
	if !ok || mul.Op != OpMul {
		t.Fatalf("expected Mul on the right, got %s", add.Right)
	}
}

func TestExpressionStopsAtTerminator(t *testing.T) {
	tokens, err := Tokenize("a + 1 { b }", 0)
	if err != nil {
		t.Fatalf("lex error %v", err)
	}
	p := NewParser(tokens)
	if _, err := p.parseValue(); err != nil {
		t.Fatalf("parse error %v", err)
	}
	if !p.curIs(TOKEN_LBRACE) {
		t.Fatalf("expected cursor on '{'")
	}
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"1 2", "expected operator"},
		{"1 + * 2", "expected value"},
		{"1 +", "unexpected end of input"},
		{"(1 + 2", "unexpected end of input"},
		{`{1: 2}`, "expected 'string'"},
	}
	for _, tt := range tests {
		tokens, err := Tokenize(tt.input, 0)
		if err != nil {
			t.Fatalf("%q: lex error %v", tt.input, err)
		}
		_, err = NewParser(tokens).parseValue()
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Fatalf("%q: expected SyntaxError, got %v", tt.input, err)
		}
		if !strings.Contains(serr.Message, tt.message) {
			t.Fatalf("%q: expected message containing %q, got %q", tt.input, tt.message, serr.Message)
		}
	}
}

const fullProgram = `
import "lib.spl";
import "util.spl"

func helper(a, b) {
	return a + b;
}

func main() {
	let x = 1;
	x = x + 1;
	let m = {"k": [1, 2]};
	m["k"][0] = 5;
	helper(1, 2);
	if x == 1 {
		print("one");
	} else if x == 2 {
		print("two");
	} else {
		print("many");
	}
	while x < 5 { x = x + 1; }
	loop { break; }
	for i in range(3) { continue; }
	return;
}
`

func TestParseProgram(t *testing.T) {
	imports, funcs, err := ParseSource(fullProgram, 0)
	if err != nil {
		t.Fatalf("parse error %v", err)
	}
	if len(imports) != 2 || imports[0] != "lib.spl" || imports[1] != "util.spl" {
		t.Fatalf("unexpected imports %v", imports)
	}
	if len(funcs) != 2 || funcs[0].Name != "helper" || funcs[1].Name != "main" {
		t.Fatalf("unexpected functions %v", funcs)
	}
	if got := funcs[0].Params; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected params %v", got)
	}
	body := funcs[1].Body
	kinds := []string{"*interpreter.LetStatement", "*interpreter.AssignStatement", "*interpreter.LetStatement",
		"*interpreter.AssignStatement", "*interpreter.CallStatement", "*interpreter.IfStatement",
		"*interpreter.ElseIfStatement", "*interpreter.ElseStatement", "*interpreter.WhileStatement",
		"*interpreter.LoopStatement", "*interpreter.ForStatement", "*interpreter.ReturnStatement"}
	if len(body) != len(kinds) {
		t.Fatalf("expected %d statements, got %d", len(kinds), len(body))
	}
	for i, kind := range kinds {
		if got := fmt.Sprintf("%T", body[i]); got != kind {
			t.Fatalf("statement %d: expected %s, got %s", i, kind, got)
		}
	}
	assign := body[3].(*AssignStatement)
	if assign.Name != "m" || len(assign.Indexes) != 2 {
		t.Fatalf("unexpected assignment %s", assign)
	}
	if pos := body[0].Position(); pos.Line != 10 || pos.Column != 2 {
		t.Fatalf("unexpected let position %v", pos)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"else without if", "func main() { else { } }", "else without a preceding if"},
		{"else after let", "func main() { let a = 1; else { } }", "else without a preceding if"},
		{"missing semicolon", "func main() { let a = 1 }", "expected ';'"},
		{"unterminated block", "func main() { let a = 1;", "unexpected end of input"},
		{"statement shape", "func main() { a + 1; }", "expected '(', '=' or '['"},
		{"top level statement", "let a = 1;", "expected 'func'"},
		{"bad params", "func f(a b) {}", "expected ')'"},
		{"for without in", "func main() { for x range(3) {} }", "expected 'in'"},
		{"import after func", "func main() {} import \"x\";", "expected 'func'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseSource(tt.input, 0)
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("expected SyntaxError, got %v", err)
			}
			if !strings.Contains(serr.Message, tt.message) {
				t.Fatalf("expected message containing %q, got %q", tt.message, serr.Message)
			}
		})
	}
}

func FuzzParserNoPanic(f *testing.F) {
	seeds := []string{
		fullProgram,
		"func main() { print(1 + 2 * 3); }",
		`func main() { let s = "a\nb"; set(s, 0, 'c'); }`,
		"func main() { let x = [1, [2, 3]]; x[1][0] = -4; }",
		"func f(a) { if a { return a; } else { return None; } }",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("parser panicked for %q: %v", src, r)
			}
		}()
		_, _, _ = ParseSource(src, 0)
	})
}
