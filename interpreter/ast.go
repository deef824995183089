package interpreter

import (
	"fmt"
	"strings"
)

// Operator is a binary operator. Index is only produced for [expr] suffixes.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpGt
	OpAnd
	OpOr
	OpIndex
)

var operatorNames = [...]string{"Add", "Sub", "Mul", "Div", "Mod", "Eq", "NotEq", "Lt", "Gt", "And", "Or", "Index"}
var operatorSymbols = [...]string{"+", "-", "*", "/", "%", "==", "!=", "<", ">", "&", "|", "[]"}

func (op Operator) String() string {
	if int(op) < len(operatorNames) {
		return operatorNames[op]
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

func (op Operator) Symbol() string {
	if int(op) < len(operatorSymbols) {
		return operatorSymbols[op]
	}
	return "?"
}

// Rank is the binding strength used when resolving a flat expression; higher binds tighter.
func (op Operator) Rank() int {
	switch op {
	case OpOr:
		return 1
	case OpAnd:
		return 2
	case OpEq, OpNotEq:
		return 3
	case OpLt, OpGt:
		return 4
	case OpAdd, OpSub:
		return 5
	case OpMul, OpDiv, OpMod:
		return 6
	case OpIndex:
		return 7
	}
	return 0
}

var binaryOperators = map[TokenKind]Operator{
	TOKEN_PLUS:     OpAdd,
	TOKEN_MINUS:    OpSub,
	TOKEN_ASTERISK: OpMul,
	TOKEN_SLASH:    OpDiv,
	TOKEN_PERCENT:  OpMod,
	TOKEN_EQ:       OpEq,
	TOKEN_NEQ:      OpNotEq,
	TOKEN_LT:       OpLt,
	TOKEN_GT:       OpGt,
	TOKEN_AND:      OpAnd,
	TOKEN_OR:       OpOr,
}

// AST Nodes
type Node interface {
	String() string
	Position() Position
}

type Expression interface {
	Node
	expressionNode()
}

type Statement interface {
	Node
	statementNode()
}

type FunctionDecl struct {
	Pos    Position
	Name   string
	Params []string
	Body   []Statement
}

func (f *FunctionDecl) Position() Position { return f.Pos }
func (f *FunctionDecl) String() string {
	return fmt.Sprintf("func %s(%s) %s", f.Name, strings.Join(f.Params, ", "), blockString(f.Body))
}

// Program is the merged result of loading every unit reachable from an entry file.
type Program struct {
	Units     []string
	Imports   []string
	Functions []*FunctionDecl
}

func (p *Program) String() string {
	var out strings.Builder
	for _, imp := range p.Imports {
		fmt.Fprintf(&out, "import %q;\n", imp)
	}
	for _, fn := range p.Functions {
		out.WriteString(fn.String())
		out.WriteString("\n")
	}
	return out.String()
}

func blockString(stmts []Statement) string {
	var out strings.Builder
	out.WriteString("{ ")
	for _, s := range stmts {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

type IntegerLiteral struct {
	Pos   Position
	Value int64
}

func (il *IntegerLiteral) expressionNode()    {}
func (il *IntegerLiteral) Position() Position { return il.Pos }
func (il *IntegerLiteral) String() string     { return fmt.Sprintf("%d", il.Value) }

type FloatLiteral struct {
	Pos   Position
	Value float64
}

func (fl *FloatLiteral) expressionNode()    {}
func (fl *FloatLiteral) Position() Position { return fl.Pos }
func (fl *FloatLiteral) String() string     { return formatFloat(fl.Value) }

type BooleanLiteral struct {
	Pos   Position
	Value bool
}

func (bl *BooleanLiteral) expressionNode()    {}
func (bl *BooleanLiteral) Position() Position { return bl.Pos }
func (bl *BooleanLiteral) String() string     { return fmt.Sprintf("%t", bl.Value) }

type StringLiteral struct {
	Pos   Position
	Value string
}

func (sl *StringLiteral) expressionNode()    {}
func (sl *StringLiteral) Position() Position { return sl.Pos }
func (sl *StringLiteral) String() string     { return fmt.Sprintf("%q", sl.Value) }

type CharLiteral struct {
	Pos   Position
	Value rune
}

func (cl *CharLiteral) expressionNode()    {}
func (cl *CharLiteral) Position() Position { return cl.Pos }
func (cl *CharLiteral) String() string     { return fmt.Sprintf("%q", cl.Value) }

type NoneLiteral struct {
	Pos Position
}

func (nl *NoneLiteral) expressionNode()    {}
func (nl *NoneLiteral) Position() Position { return nl.Pos }
func (nl *NoneLiteral) String() string     { return "None" }

type Identifier struct {
	Pos  Position
	Name string
}

func (i *Identifier) expressionNode()    {}
func (i *Identifier) Position() Position { return i.Pos }
func (i *Identifier) String() string     { return i.Name }

type CallExpression struct {
	Pos  Position
	Name string
	Args []Expression
}

func (ce *CallExpression) expressionNode()    {}
func (ce *CallExpression) Position() Position { return ce.Pos }
func (ce *CallExpression) String() string {
	return fmt.Sprintf("%s(%s)", ce.Name, joinExpressions(ce.Args))
}

type BinaryExpression struct {
	Pos   Position
	Left  Expression
	Right Expression
	Op    Operator
}

func (be *BinaryExpression) expressionNode()    {}
func (be *BinaryExpression) Position() Position { return be.Pos }
func (be *BinaryExpression) String() string {
	if be.Op == OpIndex {
		return fmt.Sprintf("%s[%s]", be.Left, be.Right)
	}
	return fmt.Sprintf("(%s %s %s)", be.Left, be.Op.Symbol(), be.Right)
}

type ListLiteral struct {
	Pos      Position
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()    {}
func (ll *ListLiteral) Position() Position { return ll.Pos }
func (ll *ListLiteral) String() string     { return "[" + joinExpressions(ll.Elements) + "]" }

type MapPair struct {
	Key   string
	Value Expression
}

type MapLiteral struct {
	Pos   Position
	Pairs []MapPair
}

func (ml *MapLiteral) expressionNode()    {}
func (ml *MapLiteral) Position() Position { return ml.Pos }
func (ml *MapLiteral) String() string {
	parts := make([]string, len(ml.Pairs))
	for i, p := range ml.Pairs {
		parts[i] = fmt.Sprintf("%q: %s", p.Key, p.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type LetStatement struct {
	Pos   Position
	Name  string
	Value Expression
}

func (ls *LetStatement) statementNode()     {}
func (ls *LetStatement) Position() Position { return ls.Pos }
func (ls *LetStatement) String() string {
	return fmt.Sprintf("let %s = %s;", ls.Name, ls.Value)
}

// AssignStatement overwrites the cell reached from Name through Indexes.
type AssignStatement struct {
	Pos     Position
	Name    string
	Indexes []Expression
	Value   Expression
}

func (as *AssignStatement) statementNode()     {}
func (as *AssignStatement) Position() Position { return as.Pos }
func (as *AssignStatement) String() string {
	var out strings.Builder
	out.WriteString(as.Name)
	for _, idx := range as.Indexes {
		fmt.Fprintf(&out, "[%s]", idx)
	}
	fmt.Fprintf(&out, " = %s;", as.Value)
	return out.String()
}

type CallStatement struct {
	Pos  Position
	Call *CallExpression
}

func (cs *CallStatement) statementNode()     {}
func (cs *CallStatement) Position() Position { return cs.Pos }
func (cs *CallStatement) String() string     { return cs.Call.String() + ";" }

type IfStatement struct {
	Pos       Position
	Condition Expression
	Body      []Statement
}

func (is *IfStatement) statementNode()     {}
func (is *IfStatement) Position() Position { return is.Pos }
func (is *IfStatement) String() string {
	return fmt.Sprintf("if %s %s", is.Condition, blockString(is.Body))
}

type ElseIfStatement struct {
	Pos       Position
	Condition Expression
	Body      []Statement
}

func (es *ElseIfStatement) statementNode()     {}
func (es *ElseIfStatement) Position() Position { return es.Pos }
func (es *ElseIfStatement) String() string {
	return fmt.Sprintf("else if %s %s", es.Condition, blockString(es.Body))
}

type ElseStatement struct {
	Pos  Position
	Body []Statement
}

func (es *ElseStatement) statementNode()     {}
func (es *ElseStatement) Position() Position { return es.Pos }
func (es *ElseStatement) String() string     { return "else " + blockString(es.Body) }

type WhileStatement struct {
	Pos       Position
	Condition Expression
	Body      []Statement
}

func (ws *WhileStatement) statementNode()     {}
func (ws *WhileStatement) Position() Position { return ws.Pos }
func (ws *WhileStatement) String() string {
	return fmt.Sprintf("while %s %s", ws.Condition, blockString(ws.Body))
}

type LoopStatement struct {
	Pos  Position
	Body []Statement
}

func (ls *LoopStatement) statementNode()     {}
func (ls *LoopStatement) Position() Position { return ls.Pos }
func (ls *LoopStatement) String() string     { return "loop " + blockString(ls.Body) }

type ForStatement struct {
	Pos      Position
	Variable string
	Iterable Expression
	Body     []Statement
}

func (fs *ForStatement) statementNode()     {}
func (fs *ForStatement) Position() Position { return fs.Pos }
func (fs *ForStatement) String() string {
	return fmt.Sprintf("for %s in %s %s", fs.Variable, fs.Iterable, blockString(fs.Body))
}

// ReturnStatement with a nil Value returns None.
type ReturnStatement struct {
	Pos   Position
	Value Expression
}

func (rs *ReturnStatement) statementNode()     {}
func (rs *ReturnStatement) Position() Position { return rs.Pos }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", rs.Value)
}

type BreakStatement struct {
	Pos Position
}

func (bs *BreakStatement) statementNode()     {}
func (bs *BreakStatement) Position() Position { return bs.Pos }
func (bs *BreakStatement) String() string     { return "break;" }

type ContinueStatement struct {
	Pos Position
}

func (cs *ContinueStatement) statementNode()     {}
func (cs *ContinueStatement) Position() Position { return cs.Pos }
func (cs *ContinueStatement) String() string     { return "continue;" }
