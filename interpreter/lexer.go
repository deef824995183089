package interpreter

import (
	"math"
	"strings"
	"unicode"
)

// Lexer turns the text of one source unit into tokens.
type Lexer struct {
	input  []rune
	pos    int
	unit   int
	line   int
	column int
	tokens []Token
}

func NewLexer(input string, unit int) *Lexer {
	return &Lexer{input: []rune(input), unit: unit, line: 1, column: 1}
}

// Tokenize lexes a whole unit. Malformed string and char literals are the only failures.
func Tokenize(input string, unit int) ([]Token, error) {
	return NewLexer(input, unit).Tokens()
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() rune {
	if l.eof() {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) readChar() rune {
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) here() Position {
	return Position{Unit: l.unit, Line: l.line, Column: l.column}
}

func (l *Lexer) emit(tok Token) {
	l.tokens = append(l.tokens, tok)
}

// Tokens runs the lexer to the end of input.
func (l *Lexer) Tokens() ([]Token, error) {
	for !l.eof() {
		ch := l.peek()
		start := l.here()

		if unicode.IsSpace(ch) {
			l.readChar()
			continue
		}
		if ch == '/' && l.peekAt(1) == '/' {
			l.skipComment()
			continue
		}
		if ch == '=' && l.peekAt(1) == '=' {
			l.readChar()
			l.readChar()
			l.emit(Token{Kind: TOKEN_EQ, Pos: start})
			continue
		}
		if ch == '!' && l.peekAt(1) == '=' {
			l.readChar()
			l.readChar()
			l.emit(Token{Kind: TOKEN_NEQ, Pos: start})
			continue
		}

		switch {
		case ch == '"':
			s, err := l.readString(start)
			if err != nil {
				return nil, err
			}
			l.emit(Token{Kind: TOKEN_STRING, Text: s, Pos: start})
		case ch == '\'':
			c, err := l.readCharLiteral(start)
			if err != nil {
				return nil, err
			}
			l.emit(Token{Kind: TOKEN_CHAR, Char: c, Pos: start})
		case isDigit(ch):
			tok, err := l.readNumber(start)
			if err != nil {
				return nil, err
			}
			l.emit(tok)
		default:
			if kind, ok := punctuation[ch]; ok {
				l.readChar()
				l.emit(Token{Kind: kind, Pos: start})
				continue
			}
			l.emit(Token{Kind: TOKEN_IDENT, Text: l.readIdentifier(), Pos: start})
		}
	}
	return l.tokens, nil
}

func (l *Lexer) skipComment() {
	for !l.eof() && l.peek() != '\n' {
		l.readChar()
	}
}

// readEscaped consumes one possibly escaped character inside a literal.
func (l *Lexer) readEscaped(start Position, what string) (rune, bool, error) {
	if l.eof() {
		return 0, false, syntaxErrorf(start, "unterminated %s literal", what)
	}
	ch := l.readChar()
	if ch != '\\' {
		return ch, false, nil
	}
	if l.eof() {
		return 0, false, syntaxErrorf(start, "unterminated %s literal", what)
	}
	escPos := l.here()
	switch esc := l.readChar(); esc {
	case '"', '\'', '\\':
		return esc, true, nil
	case 'n':
		return '\n', true, nil
	case 'r':
		return '\r', true, nil
	default:
		return 0, false, syntaxErrorf(escPos, "unknown escape sequence \\%c", esc)
	}
}

func (l *Lexer) readString(start Position) (string, error) {
	l.readChar() // opening quote
	var out strings.Builder
	for {
		ch, escaped, err := l.readEscaped(start, "string")
		if err != nil {
			return "", err
		}
		if ch == '"' && !escaped {
			return out.String(), nil
		}
		out.WriteRune(ch)
	}
}

func (l *Lexer) readCharLiteral(start Position) (rune, error) {
	l.readChar() // opening quote
	ch, _, err := l.readEscaped(start, "char")
	if err != nil {
		return 0, err
	}
	if l.eof() || l.peek() != '\'' {
		return 0, syntaxErrorf(start, "missing ' after char literal")
	}
	l.readChar()
	return ch, nil
}

// readNumber accumulates digits; a '.' followed by a digit turns the literal into a float.
// An integer literal that does not fit in int64 is a syntax error.
func (l *Lexer) readNumber(start Position) (Token, error) {
	var whole int64
	var wholeFloat float64
	overflow := false
	for !l.eof() && isDigit(l.peek()) {
		d := int64(l.readChar() - '0')
		wholeFloat = wholeFloat*10 + float64(d)
		if whole > (math.MaxInt64-d)/10 {
			overflow = true
		}
		whole = whole*10 + d
	}
	if l.peek() != '.' || !isDigit(l.peekAt(1)) {
		if overflow {
			return Token{}, syntaxErrorf(start, "integer literal out of range")
		}
		return Token{Kind: TOKEN_INT, Int: whole, Pos: start}, nil
	}
	l.readChar()
	value := wholeFloat
	decimal := 10.0
	for !l.eof() && isDigit(l.peek()) {
		value += float64(l.readChar()-'0') / decimal
		decimal *= 10
	}
	return Token{Kind: TOKEN_FLOAT, Float: value, Pos: start}, nil
}

func (l *Lexer) readIdentifier() string {
	var out strings.Builder
	for !l.eof() {
		ch := l.peek()
		if unicode.IsSpace(ch) || isPunctuation(ch) {
			break
		}
		if ch == '"' || ch == '\'' {
			break
		}
		// "x!=y" is x followed by !=.
		if ch == '!' && l.peekAt(1) == '=' {
			break
		}
		out.WriteRune(l.readChar())
	}
	return out.String()
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isPunctuation(ch rune) bool {
	_, ok := punctuation[ch]
	return ok
}
