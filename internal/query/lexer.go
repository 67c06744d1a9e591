package query

import "strings"

// Token is one whitespace-delimited unit of a query string
type Token struct {
	Literal  string
	Position int  // byte offset of the first character
	Quoted   bool // true if the token contains a "..." span
}

// Lexer splits a query string into tokens.
// A token is a run of segments, each either non-space/non-quote characters or a
// complete "..." span, so -"foo bar" is a single token. An unmatched quote
// separates tokens and is otherwise dropped.
type Lexer struct {
	input    string
	position int
}

// NewLexer creates a new Lexer for the given input string
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token and false once the input is exhausted
func (l *Lexer) NextToken() (Token, bool) {
	l.skipSeparators()
	if l.position >= len(l.input) {
		return Token{Position: l.position}, false
	}

	var b strings.Builder
	tok := Token{Position: l.position}

	for l.position < len(l.input) {
		ch := l.input[l.position]
		if isSpace(ch) {
			break
		}
		if ch == '"' {
			end := l.closingQuote()
			if end < 0 {
				// stray quote ends the token
				break
			}
			b.WriteString(l.input[l.position : end+1])
			tok.Quoted = true
			l.position = end + 1
			continue
		}
		b.WriteByte(ch)
		l.position++
	}

	tok.Literal = b.String()
	return tok, true
}

// Tokens drains the lexer
func (l *Lexer) Tokens() []Token {
	var tokens []Token
	for {
		tok, ok := l.NextToken()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// skipSeparators skips whitespace and quotes that have no closing partner
func (l *Lexer) skipSeparators() {
	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch {
		case isSpace(ch):
			l.position++
		case ch == '"' && l.closingQuote() < 0:
			l.position++
		default:
			return
		}
	}
}

// closingQuote returns the index of the quote closing the one at the current position, or -1
func (l *Lexer) closingQuote() int {
	end := strings.IndexByte(l.input[l.position+1:], '"')
	if end < 0 {
		return -1
	}
	return l.position + 1 + end
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
