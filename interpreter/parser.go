package interpreter

// Parser builds declarations from the tokens of one unit. The first error aborts parsing.
type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse returns the unit's import paths, in source order, and its function declarations.
func Parse(tokens []Token) ([]string, []*FunctionDecl, error) {
	return NewParser(tokens).ParseUnit()
}

func (p *Parser) current() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) peekAt(offset int) (Token, bool) {
	if p.pos+offset >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos+offset], true
}

func (p *Parser) curIs(kind TokenKind) bool {
	tok, ok := p.current()
	return ok && tok.Kind == kind
}

func (p *Parser) curIsIdent(name string) bool {
	tok, ok := p.current()
	return ok && tok.IsIdent(name)
}

func (p *Parser) nextToken() {
	p.pos++
}

func (p *Parser) endOfInput() *SyntaxError {
	var pos Position
	if n := len(p.tokens); n > 0 {
		pos = p.tokens[n-1].Pos
	}
	return syntaxErrorf(pos, "unexpected end of input")
}

// unexpected reports the current token, or end of input, where want was required.
func (p *Parser) unexpected(want string) *SyntaxError {
	tok, ok := p.current()
	if !ok {
		return p.endOfInput()
	}
	return syntaxErrorf(tok.Pos, "expected %s, found %s", want, tok)
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	tok, ok := p.current()
	if !ok || tok.Kind != kind {
		return tok, p.unexpected("'" + kind.String() + "'")
	}
	p.nextToken()
	return tok, nil
}

func (p *Parser) expectIdent() (Token, error) {
	tok, ok := p.current()
	if !ok || tok.Kind != TOKEN_IDENT {
		return tok, p.unexpected("identifier")
	}
	p.nextToken()
	return tok, nil
}

func (p *Parser) expectKeyword(name string) (Token, error) {
	tok, ok := p.current()
	if !ok || !tok.IsIdent(name) {
		return tok, p.unexpected("'" + name + "'")
	}
	p.nextToken()
	return tok, nil
}

func (p *Parser) ParseUnit() ([]string, []*FunctionDecl, error) {
	var imports []string
	for p.curIsIdent("import") {
		p.nextToken()
		path, err := p.expect(TOKEN_STRING)
		if err != nil {
			return nil, nil, err
		}
		if p.curIs(TOKEN_SEMICOLON) {
			p.nextToken()
		}
		imports = append(imports, path.Text)
	}
	var funcs []*FunctionDecl
	for {
		if _, ok := p.current(); !ok {
			break
		}
		fn, err := p.parseFunction()
		if err != nil {
			return nil, nil, err
		}
		funcs = append(funcs, fn)
	}
	return imports, funcs, nil
}

func (p *Parser) parseFunction() (*FunctionDecl, error) {
	start, err := p.expectKeyword("func")
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	var params []string
	if !p.curIs(TOKEN_RPAREN) {
		for {
			param, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			params = append(params, param.Text)
			if !p.curIs(TOKEN_COMMA) {
				break
			}
			p.nextToken()
		}
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FunctionDecl{Pos: start.Pos, Name: name.Text, Params: params, Body: body}, nil
}

// parseBlock consumes { statement* } and enforces that else branches follow an if.
func (p *Parser) parseBlock() ([]Statement, error) {
	if _, err := p.expect(TOKEN_LBRACE); err != nil {
		return nil, err
	}
	var stmts []Statement
	for {
		tok, ok := p.current()
		if !ok {
			return nil, p.endOfInput()
		}
		if tok.Kind == TOKEN_RBRACE {
			p.nextToken()
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		switch stmt.(type) {
		case *ElseIfStatement, *ElseStatement:
			if !followsConditional(stmts) {
				return nil, syntaxErrorf(stmt.Position(), "else without a preceding if")
			}
		}
		stmts = append(stmts, stmt)
	}
}

func followsConditional(stmts []Statement) bool {
	if len(stmts) == 0 {
		return false
	}
	switch stmts[len(stmts)-1].(type) {
	case *IfStatement, *ElseIfStatement:
		return true
	}
	return false
}

func (p *Parser) parseStatement() (Statement, error) {
	tok, _ := p.current()
	if tok.Kind != TOKEN_IDENT {
		return nil, syntaxErrorf(tok.Pos, "expected statement, found %s", tok)
	}
	switch tok.Text {
	case "let":
		return p.parseLetStatement()
	case "if":
		return p.parseIfStatement()
	case "else":
		return p.parseElseStatement()
	case "while":
		return p.parseWhileStatement()
	case "loop":
		p.nextToken()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &LoopStatement{Pos: tok.Pos, Body: body}, nil
	case "for":
		return p.parseForStatement()
	case "return":
		return p.parseReturnStatement()
	case "break":
		p.nextToken()
		if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
			return nil, err
		}
		return &BreakStatement{Pos: tok.Pos}, nil
	case "continue":
		p.nextToken()
		if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
			return nil, err
		}
		return &ContinueStatement{Pos: tok.Pos}, nil
	}

	next, ok := p.peekAt(1)
	if !ok {
		p.nextToken()
		return nil, p.endOfInput()
	}
	switch next.Kind {
	case TOKEN_LPAREN:
		call, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
			return nil, err
		}
		return &CallStatement{Pos: tok.Pos, Call: call}, nil
	case TOKEN_ASSIGN, TOKEN_LBRACKET:
		return p.parseAssignStatement()
	}
	return nil, syntaxErrorf(next.Pos, "expected '(', '=' or '[' after %s, found %s", tok, next)
}

func (p *Parser) parseLetStatement() (Statement, error) {
	start, _ := p.current()
	p.nextToken()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &LetStatement{Pos: start.Pos, Name: name.Text, Value: value}, nil
}

func (p *Parser) parseAssignStatement() (Statement, error) {
	name, _ := p.current()
	p.nextToken()
	var indexes []Expression
	for p.curIs(TOKEN_LBRACKET) {
		p.nextToken()
		idx, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_RBRACKET); err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	if _, err := p.expect(TOKEN_ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &AssignStatement{Pos: name.Pos, Name: name.Text, Indexes: indexes, Value: value}, nil
}

// parseConditional reads "expr { body }" after a keyword.
func (p *Parser) parseConditional() (Expression, []Statement, error) {
	cond, err := p.parseValue()
	if err != nil {
		return nil, nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, nil, err
	}
	return cond, body, nil
}

func (p *Parser) parseIfStatement() (Statement, error) {
	start, _ := p.current()
	p.nextToken()
	cond, body, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &IfStatement{Pos: start.Pos, Condition: cond, Body: body}, nil
}

func (p *Parser) parseElseStatement() (Statement, error) {
	start, _ := p.current()
	p.nextToken()
	if p.curIsIdent("if") {
		p.nextToken()
		cond, body, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		return &ElseIfStatement{Pos: start.Pos, Condition: cond, Body: body}, nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ElseStatement{Pos: start.Pos, Body: body}, nil
}

func (p *Parser) parseWhileStatement() (Statement, error) {
	start, _ := p.current()
	p.nextToken()
	cond, body, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &WhileStatement{Pos: start.Pos, Condition: cond, Body: body}, nil
}

func (p *Parser) parseForStatement() (Statement, error) {
	start, _ := p.current()
	p.nextToken()
	variable, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iterable, body, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &ForStatement{Pos: start.Pos, Variable: variable.Text, Iterable: iterable, Body: body}, nil
}

func (p *Parser) parseReturnStatement() (Statement, error) {
	start, _ := p.current()
	p.nextToken()
	stmt := &ReturnStatement{Pos: start.Pos}
	if !p.curIs(TOKEN_SEMICOLON) {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	if _, err := p.expect(TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseCall reads name(arg, ...) with the cursor on the name.
func (p *Parser) parseCall() (*CallExpression, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	args, err := p.parseValueList(TOKEN_RPAREN)
	if err != nil {
		return nil, err
	}
	return &CallExpression{Pos: name.Pos, Name: name.Text, Args: args}, nil
}

// parseValueList reads comma separated values up to and including end.
func (p *Parser) parseValueList(end TokenKind) ([]Expression, error) {
	var list []Expression
	if p.curIs(end) {
		p.nextToken()
		return list, nil
	}
	for {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list = append(list, value)
		if p.curIs(TOKEN_COMMA) {
			p.nextToken()
			continue
		}
		if _, err := p.expect(end); err != nil {
			return nil, err
		}
		return list, nil
	}
}
