package interpreter

import "fmt"

// TokenKind classifies a lexed token.
type TokenKind int

const (
	TOKEN_SEMICOLON TokenKind = iota
	TOKEN_PLUS
	TOKEN_MINUS
	TOKEN_ASTERISK
	TOKEN_SLASH
	TOKEN_PERCENT
	TOKEN_AND
	TOKEN_OR
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_LBRACE
	TOKEN_RBRACE
	TOKEN_LBRACKET
	TOKEN_RBRACKET
	TOKEN_COLON
	TOKEN_COMMA
	TOKEN_ASSIGN
	TOKEN_EQ
	TOKEN_NEQ
	TOKEN_LT
	TOKEN_GT

	// Literals
	TOKEN_IDENT
	TOKEN_INT
	TOKEN_FLOAT
	TOKEN_STRING
	TOKEN_CHAR
)

var tokenNames = map[TokenKind]string{
	TOKEN_SEMICOLON: ";",
	TOKEN_PLUS:      "+",
	TOKEN_MINUS:     "-",
	TOKEN_ASTERISK:  "*",
	TOKEN_SLASH:     "/",
	TOKEN_PERCENT:   "%",
	TOKEN_AND:       "&",
	TOKEN_OR:        "|",
	TOKEN_LPAREN:    "(",
	TOKEN_RPAREN:    ")",
	TOKEN_LBRACE:    "{",
	TOKEN_RBRACE:    "}",
	TOKEN_LBRACKET:  "[",
	TOKEN_RBRACKET:  "]",
	TOKEN_COLON:     ":",
	TOKEN_COMMA:     ",",
	TOKEN_ASSIGN:    "=",
	TOKEN_EQ:        "==",
	TOKEN_NEQ:       "!=",
	TOKEN_LT:        "<",
	TOKEN_GT:        ">",
	TOKEN_IDENT:     "identifier",
	TOKEN_INT:       "integer",
	TOKEN_FLOAT:     "float",
	TOKEN_STRING:    "string",
	TOKEN_CHAR:      "char",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// punctuation maps the single-character tokens; these characters also end an identifier.
var punctuation = map[rune]TokenKind{
	';': TOKEN_SEMICOLON,
	'+': TOKEN_PLUS,
	'-': TOKEN_MINUS,
	'*': TOKEN_ASTERISK,
	'/': TOKEN_SLASH,
	'%': TOKEN_PERCENT,
	'&': TOKEN_AND,
	'|': TOKEN_OR,
	'(': TOKEN_LPAREN,
	')': TOKEN_RPAREN,
	'{': TOKEN_LBRACE,
	'}': TOKEN_RBRACE,
	'[': TOKEN_LBRACKET,
	']': TOKEN_RBRACKET,
	':': TOKEN_COLON,
	',': TOKEN_COMMA,
	'=': TOKEN_ASSIGN,
	'<': TOKEN_LT,
	'>': TOKEN_GT,
}

// Position locates a token: the unit (source file) index plus 1-based line and column.
type Position struct {
	Unit   int `json:"unit"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d:%d", p.Unit, p.Line, p.Column)
}

// Token is a single lexeme. Only the field matching Kind carries a value.
type Token struct {
	Kind  TokenKind `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Int   int64     `json:"int,omitempty"`
	Float float64   `json:"float,omitempty"`
	Char  rune      `json:"char,omitempty"`
	Pos   Position  `json:"pos"`
}

// IsIdent reports whether the token is the identifier name.
func (t Token) IsIdent(name string) bool {
	return t.Kind == TOKEN_IDENT && t.Text == name
}

func (t Token) String() string {
	switch t.Kind {
	case TOKEN_IDENT:
		return t.Text
	case TOKEN_INT:
		return fmt.Sprintf("%d", t.Int)
	case TOKEN_FLOAT:
		return fmt.Sprintf("%g", t.Float)
	case TOKEN_STRING:
		return fmt.Sprintf("%q", t.Text)
	case TOKEN_CHAR:
		return fmt.Sprintf("%q", t.Char)
	default:
		return t.Kind.String()
	}
}
