// Package query parses free-text search strings into boolean expressions and
// matches them against row text.
//
// Syntax:
//   - whitespace-separated words are joined by the default junction (AND unless configured)
//   - a bare OR or AND keyword splits the query; OR binds loosest
//   - -word excludes rows containing word
//   - "some phrase" matches the phrase literally
//   - john-smith, john.smith, john_smith and john+smith match the phrase "john smith"
//
// Parsing never fails; malformed input produces a permissive or restrictive tree.
package query

import (
	"regexp"
	"strings"
)

// Junction joins terms or sub-expressions
type Junction string

const (
	And Junction = "AND"
	Or  Junction = "OR"
)

// ParseJunction converts a string to a Junction, defaulting to And
func ParseJunction(s string) Junction {
	if strings.EqualFold(strings.TrimSpace(s), string(Or)) {
		return Or
	}
	return And
}

// Options control how a query is parsed and matched
type Options struct {
	Space      Junction // junction between words that have no explicit keyword
	Connectors bool     // treat + . - _ between word characters as spaces
	IgnoreCase bool
}

// DefaultOptions returns AND-joined, connector-aware, case-insensitive options
func DefaultOptions() Options {
	return Options{Space: And, Connectors: true, IgnoreCase: true}
}

func (o Options) normalize() Options {
	if o.Space != Or {
		o.Space = And
	}
	return o
}

var (
	connectorPattern = regexp.MustCompile(`\w[+.\-_]\w`)
	connectorChars   = regexp.MustCompile(`[+.\-_]`)
)

// Query is a parsed search string
type Query struct {
	value    string
	original string
	opts     Options
	root     Node
}

// New parses value with DefaultOptions
func New(value string) *Query {
	return Parse(value, DefaultOptions())
}

// Parse builds a Query from value. It never fails.
func Parse(value string, opts Options) *Query {
	q := &Query{
		value:    value,
		original: value,
		opts:     opts.normalize(),
	}
	q.root = q.parse(value)
	return q
}

// Value returns the current query text
func (q *Query) Value() string {
	if q == nil {
		return ""
	}
	return q.value
}

// Original returns the text the query was first built from
func (q *Query) Original() string {
	if q == nil {
		return ""
	}
	return q.original
}

// Options returns the options the query was built with
func (q *Query) Options() Options {
	if q == nil {
		return DefaultOptions()
	}
	return q.opts
}

// Root returns the parsed expression tree
func (q *Query) Root() Node {
	if q == nil {
		return nil
	}
	return q.root
}

// SetValue re-parses the query with new text.
// Setting the current text again is a no-op and returns false.
func (q *Query) SetValue(value string) bool {
	if q == nil || value == q.value {
		return false
	}
	q.value = value
	q.root = q.parse(value)
	return true
}

// Match reports whether candidate satisfies the query
func (q *Query) Match(candidate string) bool {
	if q == nil || q.root == nil {
		return false
	}
	return q.root.Match(candidate)
}

// Terms returns every leaf term in the tree, left to right
func (q *Query) Terms() []Term {
	var terms []Term
	Walk(q.Root(), func(n Node) bool {
		if leaf, ok := n.(*Leaf); ok {
			terms = append(terms, leaf.Terms...)
		}
		return true
	})
	return terms
}

// String renders the parsed tree
func (q *Query) String() string {
	return nodeString(q.Root())
}

func (q *Query) parse(value string) Node {
	return parseTokens(value, NewLexer(value).Tokens(), q.opts)
}

// parseTokens splits on the first OR keyword, then the first AND keyword,
// and otherwise turns the tokens into a leaf. A side without tokens is nil.
func parseTokens(input string, tokens []Token, opts Options) Node {
	for _, kw := range []Junction{Or, And} {
		if i := keywordIndex(input, tokens, kw); i >= 0 {
			return &Branch{
				Operator: kw,
				Left:     parseSide(input, tokens[:i], opts),
				Right:    parseSide(input, tokens[i+1:], opts),
			}
		}
	}

	leaf := &Leaf{
		Space:      opts.Space,
		IgnoreCase: opts.IgnoreCase,
		Terms:      make([]Term, 0, len(tokens)),
	}
	for _, tok := range tokens {
		leaf.Terms = append(leaf.Terms, newTerm(tok.Literal, opts))
	}
	return leaf
}

func parseSide(input string, tokens []Token, opts Options) Node {
	if len(tokens) == 0 {
		return nil
	}
	return parseTokens(input, tokens, opts)
}

// keywordIndex finds the first unquoted keyword with whitespace on both
// sides in the raw input
func keywordIndex(input string, tokens []Token, kw Junction) int {
	for i, tok := range tokens {
		if tok.Quoted || tok.Literal != string(kw) {
			continue
		}
		end := tok.Position + len(tok.Literal)
		if tok.Position > 0 && isSpace(input[tok.Position-1]) &&
			end < len(input) && isSpace(input[end]) {
			return i
		}
	}
	return -1
}

func newTerm(literal string, opts Options) Term {
	t := Term{Text: literal}

	if strings.HasPrefix(t.Text, "-") {
		t.Negate = true
		t.Text = t.Text[1:]
	}

	switch {
	case len(t.Text) >= 2 && strings.HasPrefix(t.Text, `"`) && strings.HasSuffix(t.Text, `"`):
		t.Text = t.Text[1 : len(t.Text)-1]
		t.Phrase = true
		t.Exact = true
	case opts.Connectors && connectorPattern.MatchString(t.Text):
		t.Text = connectorChars.ReplaceAllString(t.Text, " ")
		t.Phrase = true
	}

	t.Empty = t.Text == ""
	return t
}
