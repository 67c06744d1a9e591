package query_test

import (
	"testing"

	"github.com/rebeliceyang/lazytable/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_EmptyMatchesEverything(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"", "   ", "\t\n"} {
		q := query.New(value)
		for _, candidate := range []string{"", "anything", "A OR B"} {
			assert.True(t, q.Match(candidate), "query %q should match %q", value, candidate)
		}
	}
}

func TestQuery_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		candidate string
		expected  bool
	}{
		{name: "single term case-insensitive", query: "A", candidate: "xax", expected: true},
		{name: "single term missing", query: "A", candidate: "xyz", expected: false},
		{name: "or left side", query: "A OR B", candidate: "xAx", expected: true},
		{name: "or right side", query: "A OR B", candidate: "xBx", expected: true},
		{name: "or neither", query: "A OR B", candidate: "xCx", expected: false},
		{name: "and both", query: "A AND B", candidate: "AB", expected: true},
		{name: "and one", query: "A AND B", candidate: "A", expected: false},
		{name: "implicit and", query: "john smith", candidate: "Smith, John", expected: true},
		{name: "implicit and missing word", query: "john smith", candidate: "John Doe", expected: false},
		{name: "negate present", query: "-A", candidate: "A", expected: false},
		{name: "negate absent", query: "-A", candidate: "B", expected: true},
		{name: "negate with positive", query: "john -doe", candidate: "John Smith", expected: true},
		{name: "negate with positive excluded", query: "john -doe", candidate: "John Doe", expected: false},
		{name: "phrase substring", query: `"A B"`, candidate: "xA Bx", expected: true},
		{name: "phrase split", query: `"A B"`, candidate: "xAxBx", expected: false},
		{name: "negated phrase", query: `-"A B"`, candidate: "xA Bx", expected: false},
		{name: "connector hyphen", query: "A-B", candidate: "A B", expected: true},
		{name: "connector dot", query: "john.smith", candidate: "Mr John Smith", expected: true},
		{name: "connector plus", query: "a+b", candidate: "a b", expected: true},
		{name: "connector underscore", query: "plan_check", candidate: "plan check run", expected: true},
		{name: "connector not literal", query: "A-B", candidate: "A-B", expected: false},
		{name: "empty phrase matches empty", query: `""`, candidate: "", expected: true},
		{name: "empty phrase rejects text", query: `""`, candidate: "x", expected: false},
		{name: "negated empty phrase rejects empty", query: `-""`, candidate: "", expected: false},
		{name: "negated empty phrase accepts text", query: `-""`, candidate: "x", expected: true},
		{name: "or binds loosest", query: "A AND B OR C", candidate: "C", expected: true},
		{name: "or binds loosest both", query: "A AND B OR C", candidate: "A", expected: false},
		{name: "and chain", query: "A AND B AND C", candidate: "CBA", expected: true},
		{name: "and chain missing", query: "A AND B AND C", candidate: "CB", expected: false},
		{name: "lowercase keyword is a term", query: "A or B", candidate: "A", expected: false},
		{name: "lowercase keyword is a term match", query: "A or B", candidate: "a or b", expected: true},
		{name: "leading keyword is a term", query: "OR B", candidate: "b", expected: false},
		{name: "trailing keyword is a term", query: "A AND", candidate: "a and", expected: true},
		{name: "dangling or keeps left side", query: "A OR ", candidate: "xyz a", expected: true},
		{name: "dangling or without left side", query: "A OR ", candidate: "xyz", expected: false},
		{name: "dangling and keeps left side", query: "A AND ", candidate: "xyz a", expected: true},
		{name: "dangling and without left side", query: "A AND ", candidate: "xyz", expected: false},
		{name: "leading spaced or", query: " OR B", candidate: "b", expected: true},
		{name: "leading spaced or missing", query: " OR B", candidate: "a", expected: false},
		{name: "doubled or", query: "A OR OR B", candidate: "b", expected: true},
		{name: "quoted keyword is not split", query: `"cats OR dogs"`, candidate: "cats", expected: false},
		{name: "quoted keyword phrase", query: `"cats OR dogs"`, candidate: "cats or dogs", expected: true},
		{name: "unterminated quote", query: `"abc`, candidate: "xabcx", expected: true},
		{name: "unicode ignore case", query: "ÄPFEL", candidate: "äpfel", expected: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := query.New(tt.query)
			assert.Equal(t, tt.expected, q.Match(tt.candidate))
		})
	}
}

func TestQuery_CaseSensitive(t *testing.T) {
	t.Parallel()

	q := query.Parse("Apple", query.Options{Space: query.And, Connectors: true, IgnoreCase: false})

	assert.True(t, q.Match("Apple pie"))
	assert.False(t, q.Match("apple pie"))
}

func TestQuery_ConnectorsDisabled(t *testing.T) {
	t.Parallel()

	q := query.Parse("A-B", query.Options{Space: query.And, IgnoreCase: true})

	assert.True(t, q.Match("xa-bx"))
	assert.False(t, q.Match("a b"))

	terms := q.Terms()
	require.Len(t, terms, 1)
	assert.Equal(t, "A-B", terms[0].Text)
	assert.False(t, terms[0].Phrase)
}

func TestQuery_OrSpace(t *testing.T) {
	t.Parallel()

	opts := query.Options{Space: query.Or, Connectors: true, IgnoreCase: true}

	tests := []struct {
		query     string
		candidate string
		expected  bool
	}{
		{"red blue", "a red car", true},
		{"red blue", "a blue car", true},
		{"red blue", "a green car", false},
		{"red -car", "a red car", false},
		{"red -car", "a red bike", true},
		{"-car -bike", "a red boat", true},
		{"-car -bike", "a red bike", false},
		{`"" red`, "", true},
	}

	for _, tt := range tests {
		q := query.Parse(tt.query, opts)
		assert.Equal(t, tt.expected, q.Match(tt.candidate), "%q against %q", tt.query, tt.candidate)
	}
}

func TestQuery_UnknownSpaceDefaultsToAnd(t *testing.T) {
	t.Parallel()

	q := query.Parse("red blue", query.Options{Space: "XOR", IgnoreCase: true})

	assert.Equal(t, query.And, q.Options().Space)
	assert.False(t, q.Match("red"))
	assert.True(t, q.Match("red blue"))
}

func TestQuery_Tree(t *testing.T) {
	t.Parallel()

	q := query.New("A AND B AND C")

	root, ok := q.Root().(*query.Branch)
	require.True(t, ok, "root should be a branch")
	assert.Equal(t, query.And, root.Operator)

	left, ok := root.Left.(*query.Leaf)
	require.True(t, ok, "left should be a leaf")
	require.Len(t, left.Terms, 1)
	assert.Equal(t, "A", left.Terms[0].Text)

	right, ok := root.Right.(*query.Branch)
	require.True(t, ok, "right should nest the remaining AND")
	assert.Equal(t, query.And, right.Operator)
	assert.Equal(t, "B AND C", right.String())
}

func TestQuery_OrSplitsBeforeAnd(t *testing.T) {
	t.Parallel()

	q := query.New("A AND B OR C AND D")

	root, ok := q.Root().(*query.Branch)
	require.True(t, ok)
	assert.Equal(t, query.Or, root.Operator)
	assert.Equal(t, "A AND B", root.Left.String())
	assert.Equal(t, "C AND D", root.Right.String())
}

func TestQuery_DanglingKeyword(t *testing.T) {
	t.Parallel()

	root, ok := query.New("A OR ").Root().(*query.Branch)
	require.True(t, ok)
	assert.Equal(t, query.Or, root.Operator)
	assert.Equal(t, "A", root.Left.String())
	assert.Nil(t, root.Right)

	root, ok = query.New(" AND B").Root().(*query.Branch)
	require.True(t, ok)
	assert.Equal(t, query.And, root.Operator)
	assert.Nil(t, root.Left)
	assert.Equal(t, "B", root.Right.String())

	_, ok = query.New("A AND").Root().(*query.Leaf)
	assert.True(t, ok, "a keyword without trailing whitespace stays a term")
}

func TestQuery_Terms(t *testing.T) {
	t.Parallel()

	q := query.New(`-john "a b" x.y ""`)

	terms := q.Terms()
	require.Len(t, terms, 4)

	assert.Equal(t, query.Term{Text: "john", Negate: true}, terms[0])
	assert.Equal(t, query.Term{Text: "a b", Phrase: true, Exact: true}, terms[1])
	assert.Equal(t, query.Term{Text: "x y", Phrase: true}, terms[2])
	assert.Equal(t, query.Term{Text: "", Phrase: true, Exact: true, Empty: true}, terms[3])
}

func TestQuery_SetValue(t *testing.T) {
	t.Parallel()

	q := query.New("A")
	root := q.Root()

	assert.False(t, q.SetValue("A"), "same value should be a no-op")
	assert.Same(t, root, q.Root())

	assert.True(t, q.SetValue("B"))
	assert.NotSame(t, root, q.Root())
	assert.Equal(t, "B", q.Value())
	assert.Equal(t, "A", q.Original())
	assert.True(t, q.Match("b"))
	assert.False(t, q.Match("a"))

	assert.True(t, q.SetValue("A"), "returning to an earlier value re-parses")
	assert.True(t, q.Match("a"))

	assert.True(t, q.SetValue(""))
	assert.True(t, q.Match("anything"))
}

func TestQuery_OrderIndependence(t *testing.T) {
	t.Parallel()

	candidates := []string{"", "a", "b", "ab", "ba", "xyz", "A B"}
	pairs := [][2]string{
		{"A AND B", "B AND A"},
		{"A OR B", "B OR A"},
		{"A -B", "-B A"},
	}

	for _, p := range pairs {
		first, second := query.New(p[0]), query.New(p[1])
		for _, c := range candidates {
			assert.Equal(t, first.Match(c), second.Match(c), "%q vs %q on %q", p[0], p[1], c)
		}
	}
}

func TestQuery_StringRoundTrip(t *testing.T) {
	t.Parallel()

	candidates := []string{"", "john smith", "john-smith", "doe", "a b c", "x"}
	queries := []string{
		"john -doe",
		`"john smith" OR doe`,
		"a AND b OR c",
		"john-smith",
		`-""`,
	}

	for _, value := range queries {
		q := query.New(value)
		again := query.New(q.String())
		for _, c := range candidates {
			assert.Equal(t, q.Match(c), again.Match(c), "%q (rendered %q) on %q", value, q.String(), c)
		}
	}
}

func TestQuery_NilIsSafe(t *testing.T) {
	t.Parallel()

	var q *query.Query

	assert.False(t, q.Match("anything"))
	assert.False(t, q.SetValue("x"))
	assert.Empty(t, q.Value())
	assert.Nil(t, q.Root())
	assert.Empty(t, q.Terms())
}

func TestParseJunction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, query.Or, query.ParseJunction("or"))
	assert.Equal(t, query.Or, query.ParseJunction(" OR "))
	assert.Equal(t, query.And, query.ParseJunction("and"))
	assert.Equal(t, query.And, query.ParseJunction(""))
	assert.Equal(t, query.And, query.ParseJunction("xor"))
}
