package interpreter

import (
	"bufio"
	"context"
	sterrors "errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/oarkflow/log"
)

type signal int

const (
	signalNormal signal = iota
	signalReturn
	signalBreak
	signalContinue
)

// outcome is the result of running a block: how control left it, and the returned
// cell when it left through return.
type outcome struct {
	signal signal
	value  *Cell
}

// execContext travels down one call chain.
type execContext struct {
	ctx      context.Context
	depth    int
	function string
	// entry is set while running the body of the entry function, whose top-level
	// let statements also bind globally.
	entry bool
}

// Interpreter runs a loaded Program. It is not safe for concurrent use.
type Interpreter struct {
	program   *Program
	functions map[string]*FunctionDecl
	globals   *Scope
	config    RuntimeConfig
	logger    *log.Logger
	stdout    io.Writer
	stdin     *bufio.Reader
	listener  net.Listener
	conn      net.Conn
	exited    bool
}

type Option func(*Interpreter)

func WithLogger(logger *log.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) {
		i.stdout = w
	}
}

func WithStdin(r io.Reader) Option {
	return func(i *Interpreter) {
		i.stdin = bufio.NewReader(r)
	}
}

// WithRuntimeConfig replaces the process-wide runtime configuration for this interpreter.
func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(i *Interpreter) {
		i.config = cfg
	}
}

// NewInterpreter builds the function table. Duplicate declarations are rejected;
// functions named like a built-in are logged and stay unreachable.
func NewInterpreter(program *Program, opts ...Option) (*Interpreter, error) {
	i := &Interpreter{
		program:   program,
		functions: make(map[string]*FunctionDecl, len(program.Functions)),
		globals:   NewScope(),
		config:    GetRuntimeConfig(),
		logger:    &log.DefaultLogger,
		stdout:    os.Stdout,
		stdin:     bufio.NewReader(os.Stdin),
	}
	for _, opt := range opts {
		opt(i)
	}
	for _, fn := range program.Functions {
		if _, exists := i.functions[fn.Name]; exists {
			return nil, &RuntimeError{Kind: ErrDuplicateFunction, Name: fn.Name, Pos: fn.Pos}
		}
		if _, builtin := builtins[fn.Name]; builtin {
			i.logger.Warn().Str("function", fn.Name).Str("position", fn.Pos.String()).
				Msg("function shadows a built-in and will never be called")
		}
		i.functions[fn.Name] = fn
	}
	return i, nil
}

// Globals exposes the global scope, which only grows through let at the top level of the entry function.
func (i *Interpreter) Globals() *Scope {
	return i.globals
}

// Exited reports whether the last run stopped through the exit built-in.
func (i *Interpreter) Exited() bool {
	return i.exited
}

// Run invokes the entry function with no arguments. A run stopped by exit returns
// None and no error. Cancelling ctx interrupts the run at the next loop iteration or call.
func (i *Interpreter) Run(ctx context.Context) (*Cell, error) {
	defer i.closeNetwork()
	start := time.Now()
	ec := &execContext{ctx: ctx}
	result, err := i.callFunction(ec, i.config.entry(), nil, Position{})
	if i.config.LogExecution {
		i.logger.Info().Str("entry", i.config.entry()).Dur("duration", time.Since(start)).Err(err).Msg("run finished")
	}
	if IsExit(err) {
		i.exited = true
		return NewCell(NONE), nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ec *execContext) interrupted() error {
	if ec.ctx == nil {
		return nil
	}
	if err := ec.ctx.Err(); err != nil {
		return &RuntimeError{Kind: ErrInterrupted, Name: ec.function, Cause: err}
	}
	return nil
}

func (i *Interpreter) callFunction(ec *execContext, name string, args []*Cell, pos Position) (*Cell, error) {
	if b, ok := builtins[name]; ok {
		result, err := b.Fn(i, args)
		if err != nil {
			return nil, at(err, pos)
		}
		return result, nil
	}
	fn, ok := i.functions[name]
	if !ok {
		return nil, at(funcNotFound(name), pos)
	}
	if len(fn.Params) != len(args) {
		return nil, at(incorrectArgs(name, len(fn.Params), len(args)), pos)
	}
	if i.config.MaxCallDepth > 0 && ec.depth >= i.config.MaxCallDepth {
		return nil, &RuntimeError{Kind: ErrStackOverflow, Name: name, Pos: pos, Detail: "call depth exceeds limit"}
	}
	if err := ec.interrupted(); err != nil {
		return nil, at(err, pos)
	}

	local := NewScope()
	for idx, param := range fn.Params {
		local.Set(param, args[idx])
	}
	callee := &execContext{
		ctx:      ec.ctx,
		depth:    ec.depth + 1,
		function: name,
		entry:    ec.depth == 0 && name == i.config.entry(),
	}
	if i.config.LogExecution {
		i.logger.Info().Str("function", name).Int("depth", callee.depth).Int("args", len(args)).Msg("call")
	}
	out, err := i.execBlock(callee, fn.Body, local, true)
	if err != nil {
		return nil, err
	}
	if out.signal == signalReturn && out.value != nil {
		return out.value, nil
	}
	return NewCell(NONE), nil
}

// execBlock runs stmts in a snapshot of scope. top marks a function body.
func (i *Interpreter) execBlock(ec *execContext, stmts []Statement, scope *Scope, top bool) (outcome, error) {
	local := scope.Snapshot()
	// pending is true while every conditional so far in an if/else chain has failed.
	pending := false
	for _, stmt := range stmts {
		var (
			out outcome
			err error
		)
		switch s := stmt.(type) {
		case *IfStatement:
			out, pending, err = i.execBranch(ec, s.Condition, s.Body, local)
		case *ElseIfStatement:
			if pending {
				out, pending, err = i.execBranch(ec, s.Condition, s.Body, local)
			}
		case *ElseStatement:
			if pending {
				pending = false
				out, err = i.execBlock(ec, s.Body, local, false)
			}
		case *LetStatement:
			var cell *Cell
			cell, err = i.evalExpr(ec, s.Value, local)
			if err == nil {
				local.Set(s.Name, cell)
				if top && ec.entry {
					i.globals.Set(s.Name, cell)
				}
			}
		case *AssignStatement:
			err = i.execAssign(ec, s, local)
		case *CallStatement:
			_, err = i.evalCall(ec, s.Call, local)
		case *WhileStatement:
			out, err = i.execWhile(ec, s, local)
		case *LoopStatement:
			out, err = i.execLoop(ec, s, local)
		case *ForStatement:
			out, err = i.execFor(ec, s, local)
		case *ReturnStatement:
			value := NewCell(NONE)
			if s.Value != nil {
				value, err = i.evalExpr(ec, s.Value, local)
			}
			out = outcome{signal: signalReturn, value: value}
		case *BreakStatement:
			out = outcome{signal: signalBreak}
		case *ContinueStatement:
			out = outcome{signal: signalContinue}
		}
		if err != nil {
			return outcome{}, at(err, stmt.Position())
		}
		if out.signal != signalNormal {
			return out, nil
		}
	}
	return outcome{}, nil
}

// execBranch runs body when cond holds. The returned bool is the new pending state.
func (i *Interpreter) execBranch(ec *execContext, cond Expression, body []Statement, scope *Scope) (outcome, bool, error) {
	ok, err := i.condition(ec, cond, scope)
	if err != nil {
		return outcome{}, false, err
	}
	if !ok {
		return outcome{}, true, nil
	}
	out, err := i.execBlock(ec, body, scope, false)
	return out, false, err
}

func (i *Interpreter) condition(ec *execContext, cond Expression, scope *Scope) (bool, error) {
	cell, err := i.evalExpr(ec, cond, scope)
	if err != nil {
		return false, err
	}
	return isTruthy(cell.Value), nil
}

func (i *Interpreter) execAssign(ec *execContext, s *AssignStatement, scope *Scope) error {
	value, err := i.evalExpr(ec, s.Value, scope)
	if err != nil {
		return err
	}
	target, ok := i.lookup(s.Name, scope)
	if !ok {
		return at(varNotFound(s.Name), s.Pos)
	}
	for n, idxExpr := range s.Indexes {
		idx, err := i.evalExpr(ec, idxExpr, scope)
		if err != nil {
			return err
		}
		if str, ok := target.Value.(*String); ok && n == len(s.Indexes)-1 {
			return at(assignRune(target, str, idx, value), idxExpr.Position())
		}
		if hash, ok := target.Value.(*Hash); ok {
			if key, ok := idx.Value.(*String); ok {
				if _, exists := hash.Pairs[key.Value]; !exists {
					hash.Pairs[key.Value] = NewCell(NONE)
				}
			}
		}
		next, err := Operate(target, idx, OpIndex)
		if sterrors.Is(err, ErrUnsupported) {
			return at(noOperation(target.Value.Type(), idx.Value.Type(), OpIndex), idxExpr.Position())
		}
		if err != nil {
			return at(err, idxExpr.Position())
		}
		target = next
	}
	target.Assign(value.Value)
	return nil
}

// assignRune replaces one rune of the string held by target, in place like set.
func assignRune(target *Cell, str *String, idx, value *Cell) error {
	pos, ok := idx.Value.(*Integer)
	if !ok {
		return noOperation(STRING_OBJ, idx.Value.Type(), OpIndex)
	}
	ch, ok := value.Value.(*Char)
	if !ok {
		return incorrectType(CHAR_OBJ, value.Value.Type())
	}
	runes := []rune(str.Value)
	k, err := position(pos.Value, len(runes)-1)
	if err != nil {
		return err
	}
	runes[k] = ch.Value
	target.Value = &String{Value: string(runes)}
	return nil
}

// loopStep applies a body outcome to the enclosing loop. done ends the loop and
// out is what the loop statement itself produces.
func loopStep(body outcome) (done bool, out outcome) {
	switch body.signal {
	case signalReturn:
		return true, body
	case signalBreak:
		return true, outcome{}
	}
	return false, outcome{}
}

func (i *Interpreter) execWhile(ec *execContext, s *WhileStatement, scope *Scope) (outcome, error) {
	for {
		if err := ec.interrupted(); err != nil {
			return outcome{}, err
		}
		ok, err := i.condition(ec, s.Condition, scope)
		if err != nil || !ok {
			return outcome{}, err
		}
		body, err := i.execBlock(ec, s.Body, scope, false)
		if err != nil {
			return outcome{}, err
		}
		if done, out := loopStep(body); done {
			return out, nil
		}
	}
}

func (i *Interpreter) execLoop(ec *execContext, s *LoopStatement, scope *Scope) (outcome, error) {
	for {
		if err := ec.interrupted(); err != nil {
			return outcome{}, err
		}
		body, err := i.execBlock(ec, s.Body, scope, false)
		if err != nil {
			return outcome{}, err
		}
		if done, out := loopStep(body); done {
			return out, nil
		}
	}
}

func (i *Interpreter) execFor(ec *execContext, s *ForStatement, scope *Scope) (outcome, error) {
	iterable, err := i.evalExpr(ec, s.Iterable, scope)
	if err != nil {
		return outcome{}, err
	}
	list, ok := iterable.Value.(*List)
	if !ok {
		return outcome{}, at(incorrectType(LIST_OBJ, iterable.Value.Type()), s.Iterable.Position())
	}
	loopScope := scope.Snapshot()
	elements := list.Elements
	for _, element := range elements {
		if err := ec.interrupted(); err != nil {
			return outcome{}, err
		}
		loopScope.Set(s.Variable, element)
		body, err := i.execBlock(ec, s.Body, loopScope, false)
		if err != nil {
			return outcome{}, err
		}
		if done, out := loopStep(body); done {
			return out, nil
		}
	}
	return outcome{}, nil
}

func (i *Interpreter) lookup(name string, scope *Scope) (*Cell, bool) {
	if cell, ok := scope.Get(name); ok {
		return cell, true
	}
	return i.globals.Get(name)
}

func (i *Interpreter) evalExpr(ec *execContext, expr Expression, scope *Scope) (*Cell, error) {
	switch e := expr.(type) {
	case *IntegerLiteral:
		return NewCell(&Integer{Value: e.Value}), nil
	case *FloatLiteral:
		return NewCell(&Float{Value: e.Value}), nil
	case *BooleanLiteral:
		return NewCell(nativeBoolToBooleanObject(e.Value)), nil
	case *StringLiteral:
		return NewCell(&String{Value: e.Value}), nil
	case *CharLiteral:
		return NewCell(&Char{Value: e.Value}), nil
	case *NoneLiteral:
		return NewCell(NONE), nil
	case *Identifier:
		cell, ok := i.lookup(e.Name, scope)
		if !ok {
			return nil, at(varNotFound(e.Name), e.Pos)
		}
		return cell, nil
	case *CallExpression:
		return i.evalCall(ec, e, scope)
	case *BinaryExpression:
		left, err := i.evalExpr(ec, e.Left, scope)
		if err != nil {
			return nil, err
		}
		right, err := i.evalExpr(ec, e.Right, scope)
		if err != nil {
			return nil, err
		}
		result, err := Operate(left, right, e.Op)
		if sterrors.Is(err, ErrUnsupported) {
			return nil, at(noOperation(left.Value.Type(), right.Value.Type(), e.Op), e.Pos)
		}
		if err != nil {
			return nil, at(err, e.Pos)
		}
		return result, nil
	case *ListLiteral:
		elements := make([]*Cell, 0, len(e.Elements))
		for _, el := range e.Elements {
			cell, err := i.evalExpr(ec, el, scope)
			if err != nil {
				return nil, err
			}
			elements = append(elements, NewCell(shallowCopy(cell.Value)))
		}
		return NewCell(&List{Elements: elements}), nil
	case *MapLiteral:
		pairs := make(map[string]*Cell, len(e.Pairs))
		for _, pair := range e.Pairs {
			cell, err := i.evalExpr(ec, pair.Value, scope)
			if err != nil {
				return nil, err
			}
			pairs[pair.Key] = NewCell(shallowCopy(cell.Value))
		}
		return NewCell(&Hash{Pairs: pairs}), nil
	}
	return nil, syntaxErrorf(expr.Position(), "cannot evaluate %s", expr)
}

func (i *Interpreter) evalCall(ec *execContext, call *CallExpression, scope *Scope) (*Cell, error) {
	args := make([]*Cell, 0, len(call.Args))
	for _, argExpr := range call.Args {
		arg, err := i.evalExpr(ec, argExpr, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return i.callFunction(ec, call.Name, args, call.Pos)
}
