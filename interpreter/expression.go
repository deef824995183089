package interpreter

var terminators = map[TokenKind]bool{
	TOKEN_SEMICOLON: true,
	TOKEN_RPAREN:    true,
	TOKEN_RBRACE:    true,
	TOKEN_RBRACKET:  true,
	TOKEN_COMMA:     true,
	TOKEN_LBRACE:    true,
	TOKEN_COLON:     true,
}

// parseValue reads one expression as a flat alternation of operands and operators,
// then resolves it into a tree. The cursor is left on the terminator.
func (p *Parser) parseValue() (Expression, error) {
	var (
		operands  []Expression
		operators []Operator
		opPos     []Position
	)
	for {
		tok, ok := p.current()
		if !ok {
			break
		}
		if len(operands) == len(operators) {
			operand, err := p.parseOperand(true)
			if err != nil {
				return nil, err
			}
			operands = append(operands, operand)
			continue
		}
		if terminators[tok.Kind] {
			break
		}
		op, isOp := binaryOperators[tok.Kind]
		if !isOp {
			return nil, syntaxErrorf(tok.Pos, "expected operator, found %s", tok)
		}
		p.nextToken()
		operators = append(operators, op)
		opPos = append(opPos, tok.Pos)
	}
	if len(operands) == len(operators) {
		return nil, p.unexpected("expression")
	}
	return reduceOperations(operands, operators, opPos), nil
}

// reduceOperations collapses the leftmost operator of highest rank until one operand remains.
func reduceOperations(operands []Expression, operators []Operator, opPos []Position) Expression {
	for len(operators) > 0 {
		best := 0
		for i := 1; i < len(operators); i++ {
			if operators[i].Rank() > operators[best].Rank() {
				best = i
			}
		}
		operands[best] = &BinaryExpression{
			Pos:   opPos[best],
			Left:  operands[best],
			Right: operands[best+1],
			Op:    operators[best],
		}
		operands = append(operands[:best+1], operands[best+2:]...)
		operators = append(operators[:best], operators[best+1:]...)
		opPos = append(opPos[:best], opPos[best+1:]...)
	}
	return operands[0]
}

// parseOperand reads a primary value and folds any [index] suffixes onto it.
func (p *Parser) parseOperand(allowNegation bool) (Expression, error) {
	tok, ok := p.current()
	if !ok {
		return nil, p.endOfInput()
	}
	if tok.Kind == TOKEN_MINUS && allowNegation {
		p.nextToken()
		operand, err := p.parseOperand(false)
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{Pos: tok.Pos, Left: &IntegerLiteral{Pos: tok.Pos}, Right: operand, Op: OpSub}, nil
	}
	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.curIs(TOKEN_LBRACKET) {
		open, _ := p.current()
		p.nextToken()
		index, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_RBRACKET); err != nil {
			return nil, err
		}
		operand = &BinaryExpression{Pos: open.Pos, Left: operand, Right: index, Op: OpIndex}
	}
	return operand, nil
}

func (p *Parser) parsePrimary() (Expression, error) {
	tok, _ := p.current()
	switch tok.Kind {
	case TOKEN_INT:
		p.nextToken()
		return &IntegerLiteral{Pos: tok.Pos, Value: tok.Int}, nil
	case TOKEN_FLOAT:
		p.nextToken()
		return &FloatLiteral{Pos: tok.Pos, Value: tok.Float}, nil
	case TOKEN_STRING:
		p.nextToken()
		return &StringLiteral{Pos: tok.Pos, Value: tok.Text}, nil
	case TOKEN_CHAR:
		p.nextToken()
		return &CharLiteral{Pos: tok.Pos, Value: tok.Char}, nil
	case TOKEN_IDENT:
		switch tok.Text {
		case "true", "false":
			p.nextToken()
			return &BooleanLiteral{Pos: tok.Pos, Value: tok.Text == "true"}, nil
		case "None":
			p.nextToken()
			return &NoneLiteral{Pos: tok.Pos}, nil
		}
		if next, ok := p.peekAt(1); ok && next.Kind == TOKEN_LPAREN {
			return p.parseCall()
		}
		p.nextToken()
		return &Identifier{Pos: tok.Pos, Name: tok.Text}, nil
	case TOKEN_LBRACKET:
		p.nextToken()
		elements, err := p.parseValueList(TOKEN_RBRACKET)
		if err != nil {
			return nil, err
		}
		return &ListLiteral{Pos: tok.Pos, Elements: elements}, nil
	case TOKEN_LBRACE:
		return p.parseMapLiteral()
	case TOKEN_LPAREN:
		p.nextToken()
		inner, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, syntaxErrorf(tok.Pos, "expected value, found %s", tok)
}

func (p *Parser) parseMapLiteral() (Expression, error) {
	open, _ := p.current()
	p.nextToken()
	lit := &MapLiteral{Pos: open.Pos}
	if p.curIs(TOKEN_RBRACE) {
		p.nextToken()
		return lit, nil
	}
	for {
		key, err := p.expect(TOKEN_STRING)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_COLON); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		lit.Pairs = append(lit.Pairs, MapPair{Key: key.Text, Value: value})
		if p.curIs(TOKEN_COMMA) {
			p.nextToken()
			continue
		}
		if _, err := p.expect(TOKEN_RBRACE); err != nil {
			return nil, err
		}
		return lit, nil
	}
}
