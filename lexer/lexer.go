// Package lexer turns مُعرّب source text into a stream of tokens.
//
// The lexer decodes its input to Unicode scalar values once, up front, and
// from then on only ever looks at runes: keyword/identifier scanning still
// compares the resulting lexeme against the keyword table as a UTF-8 byte
// sequence, which is cheap because Go string comparison already works that
// way.
package lexer

import (
	"fmt"

	"github.com/skx/math-compiler/token"
)

// Error reports a scalar the lexer does not recognize.  Lexing aborts on
// the first Error; there is no partial token stream.
type Error struct {
	Pos    token.Position
	Scalar rune
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: unrecognized character %q",
		e.Pos.Line, e.Pos.Column, e.Scalar)
}

// Lexer holds our object-state.
type Lexer struct {
	position     int    // current character position
	readPosition int    // next character position
	ch           rune   // current character
	characters   []rune // rune slice of input string

	line   int // 1-indexed line of ch
	column int // 1-indexed column of ch, counting scalar values
}

// New creates a Lexer instance from string input.
func New(input string) *Lexer {
	l := &Lexer{characters: []rune(input), line: 1}
	l.readChar()
	return l
}

// readChar advances to the next scalar, keeping line/column in step.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.characters) {
		l.ch = rune(0)
	} else {
		l.ch = l.characters[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.ch != 0 {
		l.column++
	}
}

// peekChar looks one scalar ahead without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.characters) {
		return rune(0)
	}
	return l.characters[l.readPosition]
}

func (l *Lexer) pos() token.Position {
	end := l.position
	if end > len(l.characters) {
		end = len(l.characters)
	}
	// position indexes runes; Offset is the byte offset in the UTF-8 input.
	return token.Position{Line: l.line, Column: l.column, Offset: len(string(l.characters[:end]))}
}

// NextToken reads the next token, skipping whitespace and comments first.
// It returns a non-nil *Error, and a zero Token, on the first unrecognized
// scalar.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespaceAndComments()

	pos := l.pos()

	switch l.ch {
	case rune(0):
		return token.Token{Kind: token.EOF, Pos: pos}, nil

	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.EQ, Lexeme: "==", Pos: pos}, nil
		}
		l.readChar()
		return token.Token{Kind: token.ASSIGN, Lexeme: "=", Pos: pos}, nil

	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.NEQ, Lexeme: "!=", Pos: pos}, nil
		}
		return token.Token{}, &Error{Pos: pos, Scalar: l.ch}

	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.LE, Lexeme: "<=", Pos: pos}, nil
		}
		l.readChar()
		return token.Token{Kind: token.LT, Lexeme: "<", Pos: pos}, nil

	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.GE, Lexeme: ">=", Pos: pos}, nil
		}
		l.readChar()
		return token.Token{Kind: token.GT, Lexeme: ">", Pos: pos}, nil

	default:
		if kind, lexeme, ok := singlePunct(l.ch); ok {
			l.readChar()
			return token.Token{Kind: kind, Lexeme: lexeme, Pos: pos}, nil
		}

		if isDigit(l.ch) {
			return l.readNumber(pos), nil
		}

		if isIdentStart(l.ch) {
			lit := l.readIdentifier()
			return token.Token{Kind: token.LookupIdentifier(lit), Lexeme: lit, Pos: pos}, nil
		}

		scalar := l.ch
		return token.Token{}, &Error{Pos: pos, Scalar: scalar}
	}
}

// singlePunct reports the Kind for every single-scalar punctuation and
// operator, including the Arabic semicolon `؛` (U+061B) and Arabic comma
// `،` (U+060C).
func singlePunct(ch rune) (token.Kind, string, bool) {
	switch ch {
	case '+':
		return token.PLUS, "+", true
	case '-':
		return token.MINUS, "-", true
	case '*':
		return token.STAR, "*", true
	case '/':
		return token.SLASH, "/", true
	case '(':
		return token.LPAREN, "(", true
	case ')':
		return token.RPAREN, ")", true
	case '{':
		return token.LBRACE, "{", true
	case '}':
		return token.RBRACE, "}", true
	case '،':
		return token.COMMA, "،", true
	case '؛':
		return token.SEMI, "؛", true
	}
	return "", "", false
}

// skipWhitespaceAndComments consumes runs of whitespace and `//` line
// comments; neither produces a token.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for isWhitespace(l.ch) {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != rune(0) {
				l.readChar()
			}
			continue
		}
		return
	}
}

// readNumber handles reading a non-negative decimal integer, comprising of
// digits 0-9.  Unary minus is handled by the parser, not here.
func (l *Lexer) readNumber(pos token.Position) token.Token {
	start := l.position
	var value int64
	for isDigit(l.ch) {
		value = value*10 + int64(l.ch-'0')
		l.readChar()
	}
	lexeme := string(l.characters[start:l.position])
	return token.Token{Kind: token.NUMBER, Lexeme: lexeme, Value: value, Pos: pos}
}

// readIdentifier reads a maximal run whose first scalar is an identifier
// start (Arabic letter, ASCII letter, or underscore) and whose subsequent
// scalars additionally allow digits.
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentContinue(l.ch) {
		l.readChar()
	}
	return string(l.characters[start:l.position])
}

func isWhitespace(ch rune) bool {
	return ch == rune(' ') || ch == rune('\t') || ch == rune('\n') || ch == rune('\r')
}

func isDigit(ch rune) bool {
	return rune('0') <= ch && ch <= rune('9')
}

// isArabicLetter reports whether ch is in the Arabic letter block
// (U+0600-U+06FF), excluding the Arabic semicolon and Arabic comma, which
// are punctuation rather than letters.
func isArabicLetter(ch rune) bool {
	return ch >= 0x0600 && ch <= 0x06FF && ch != '؛' && ch != '،'
}

func isIdentStart(ch rune) bool {
	return isArabicLetter(ch) ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		ch == '_'
}

func isIdentContinue(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
