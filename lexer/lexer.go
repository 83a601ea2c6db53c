package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type TokenType int

const (
	EOF TokenType = iota
	ERROR

	// Keywords
	CLASS
	INHERITS
	ISVOID
	IF
	ELSE
	FI
	THEN
	LET
	IN
	WHILE
	CASE
	ESAC
	LOOP
	POOL
	NEW
	OF
	NOT

	// Constants
	STR_CONST
	BOOL_CONST
	INT_CONST

	// Identifiers
	TYPEID
	OBJECTID

	// Operators and punctuation
	ASSIGN // <-
	DARROW // =>
	LT     // <
	LE     // <=
	EQ     // =
	PLUS   // +
	MINUS  // -
	TIMES  // *
	DIVIDE // /
	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }
	SEMI   // ;
	COLON  // :
	COMMA  // ,
	DOT    // .
	AT     // @
	NEG    // ~
)

var tokenNames = [...]string{
	"EOF", "ERROR",
	"CLASS", "INHERITS", "ISVOID", "IF", "ELSE", "FI", "THEN",
	"LET", "IN", "WHILE", "CASE", "ESAC", "LOOP", "POOL",
	"NEW", "OF", "NOT",
	"STR_CONST", "BOOL_CONST", "INT_CONST",
	"TYPEID", "OBJECTID",
	"ASSIGN", "DARROW", "LT", "LE", "EQ", "PLUS", "MINUS",
	"TIMES", "DIVIDE", "LPAREN", "RPAREN", "LBRACE", "RBRACE",
	"SEMI", "COLON", "COMMA", "DOT", "AT", "NEG",
}

func (tt TokenType) String() string {
	if int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// keywords are matched case-insensitively.
var keywords = map[string]TokenType{
	"class":    CLASS,
	"inherits": INHERITS,
	"isvoid":   ISVOID,
	"if":       IF,
	"fi":       FI,
	"else":     ELSE,
	"then":     THEN,
	"case":     CASE,
	"esac":     ESAC,
	"while":    WHILE,
	"loop":     LOOP,
	"pool":     POOL,
	"of":       OF,
	"let":      LET,
	"in":       IN,
	"new":      NEW,
	"not":      NOT,
}

// single maps one-character tokens that never start a longer token.
var single = map[rune]TokenType{
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	';': SEMI,
	':': COLON,
	',': COMMA,
	'+': PLUS,
	'/': DIVIDE,
	'~': NEG,
	'.': DOT,
	'@': AT,
}

// MaxStringLength is the longest string constant accepted.
const MaxStringLength = 1024

// Token represents a lexical token with its type, value, and position.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Literal, t.Line, t.Column)
}

// Lexer is the lexical analyzer.
type Lexer struct {
	reader *bufio.Reader
	line   int
	column int
	char   rune
}

// NewLexer creates a new lexer from an io.Reader
func NewLexer(reader io.Reader) *Lexer {
	l := &Lexer{
		reader: bufio.NewReader(reader),
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// readChar advances to the next rune. Position tracks the rune in l.char.
func (l *Lexer) readChar() {
	if l.char == '\n' {
		l.line++
		l.column = 0
	}

	l.column++
	r, _, err := l.reader.ReadRune()
	if err != nil {
		l.char = 0
		return
	}
	l.char = r
}

func (l *Lexer) peekChar() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return 0
	}
	_ = l.reader.UnreadRune()
	return r
}

func (l *Lexer) skipWhiteSpace() {
	for unicode.IsSpace(l.char) {
		l.readChar()
	}
}

func (l *Lexer) readWhile(pred func(rune) bool) string {
	var sb strings.Builder
	for l.char != 0 && pred(l.char) {
		sb.WriteRune(l.char)
		l.readChar()
	}
	return sb.String()
}

func isIdentifierStart(char rune) bool {
	return unicode.IsLetter(char) || char == '_'
}

func isIdentifierPart(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsDigit(char) || char == '_'
}

func (l *Lexer) readString() (string, error) {
	var sb strings.Builder
	startLine := l.line

	l.readChar() // opening quote
	for l.char != '"' {
		switch l.char {
		case 0:
			return "", fmt.Errorf("EOF in string constant starting at line %d", startLine)
		case '\n':
			return "", fmt.Errorf("Unterminated string constant at line %d", startLine)
		case '\\':
			l.readChar()
			switch l.char {
			case 'b':
				sb.WriteRune('\b')
			case 't':
				sb.WriteRune('\t')
			case 'n':
				sb.WriteRune('\n')
			case 'f':
				sb.WriteRune('\f')
			case 0:
				return "", fmt.Errorf("EOF in string constant starting at line %d", startLine)
			default:
				// \c is c, including an escaped newline
				sb.WriteRune(l.char)
			}
		default:
			sb.WriteRune(l.char)
		}
		l.readChar()
	}
	l.readChar() // closing quote

	str := sb.String()
	if len(str) > MaxStringLength {
		return "", fmt.Errorf("String constant too long at line %d", startLine)
	}
	return str, nil
}

// skipLineComment consumes `--` through the end of the line.
func (l *Lexer) skipLineComment() {
	for l.char != '\n' && l.char != 0 {
		l.readChar()
	}
}

// skipBlockComment consumes a possibly nested `(* ... *)` comment. It
// reports false when input ends inside the comment.
func (l *Lexer) skipBlockComment() bool {
	l.readChar() // (
	l.readChar() // *
	depth := 1
	for depth > 0 {
		switch {
		case l.char == 0:
			return false
		case l.char == '(' && l.peekChar() == '*':
			l.readChar()
			depth++
		case l.char == '*' && l.peekChar() == ')':
			l.readChar()
			depth--
		}
		l.readChar()
	}
	return true
}

func (l *Lexer) NextToken() Token {
	for {
		l.skipWhiteSpace()
		if l.char == '-' && l.peekChar() == '-' {
			l.skipLineComment()
			continue
		}
		if l.char == '(' && l.peekChar() == '*' {
			line, col := l.line, l.column
			if !l.skipBlockComment() {
				return Token{Type: ERROR, Literal: "EOF in comment", Line: line, Column: col}
			}
			continue
		}
		break
	}

	tok := Token{Line: l.line, Column: l.column}

	if tt, ok := single[l.char]; ok {
		tok.Type = tt
		tok.Literal = string(l.char)
		l.readChar()
		return tok
	}

	// two-character operators
	two := func(tt TokenType, lit string) Token {
		tok.Type = tt
		tok.Literal = lit
		l.readChar()
		l.readChar()
		return tok
	}

	switch {
	case l.char == 0:
		tok.Type = EOF
	case l.char == '(':
		tok.Type = LPAREN
		tok.Literal = "("
		l.readChar()
	case l.char == '*':
		if l.peekChar() == ')' {
			return two(ERROR, "Unmatched *)")
		}
		tok.Type = TIMES
		tok.Literal = "*"
		l.readChar()
	case l.char == '-':
		tok.Type = MINUS
		tok.Literal = "-"
		l.readChar()
	case l.char == '=':
		if l.peekChar() == '>' {
			return two(DARROW, "=>")
		}
		tok.Type = EQ
		tok.Literal = "="
		l.readChar()
	case l.char == '<':
		switch l.peekChar() {
		case '-':
			return two(ASSIGN, "<-")
		case '=':
			return two(LE, "<=")
		}
		tok.Type = LT
		tok.Literal = "<"
		l.readChar()
	case l.char == '"':
		str, err := l.readString()
		if err != nil {
			tok.Type = ERROR
			tok.Literal = err.Error()
		} else {
			tok.Type = STR_CONST
			tok.Literal = str
		}
	case unicode.IsDigit(l.char):
		num := l.readWhile(unicode.IsDigit)
		if _, err := strconv.ParseInt(num, 10, 32); err != nil {
			tok.Type = ERROR
			tok.Literal = "Integer constant out of range: " + num
		} else {
			tok.Type = INT_CONST
			tok.Literal = num
		}
	case isIdentifierStart(l.char):
		tok.Literal = l.readWhile(isIdentifierPart)
		tok.Type = identifierType(tok.Literal)
	default:
		tok.Type = ERROR
		tok.Literal = fmt.Sprintf("Unexpected character: %c", l.char)
		l.readChar()
	}

	return tok
}

// identifierType classifies a word as keyword, boolean constant, type or
// object identifier. Boolean constants must begin with a lowercase letter;
// `True` is a type name.
func identifierType(word string) TokenType {
	if tt, ok := keywords[strings.ToLower(word)]; ok {
		return tt
	}
	first := rune(word[0])
	switch strings.ToLower(word) {
	case "true", "false":
		if unicode.IsLower(first) {
			return BOOL_CONST
		}
	}
	if unicode.IsUpper(first) {
		return TYPEID
	}
	return OBJECTID
}

// Tokenize drains the lexer, returning every token up to and including EOF.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}
