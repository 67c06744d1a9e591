package query

import "strings"

// Node is a parsed query expression
type Node interface {
	// Match reports whether the candidate text satisfies the expression
	Match(candidate string) bool
	// String renders the expression back into query syntax
	String() string

	node()
}

// Branch joins two sub-expressions with OR or AND
type Branch struct {
	Operator Junction
	Left     Node
	Right    Node
}

func (b *Branch) node() {}

// Match evaluates both sides with short-circuiting
func (b *Branch) Match(candidate string) bool {
	if b.Operator == Or {
		return matchNode(b.Left, candidate, false) || matchNode(b.Right, candidate, false)
	}
	return matchNode(b.Left, candidate, true) && matchNode(b.Right, candidate, true)
}

func (b *Branch) String() string {
	return nodeString(b.Left) + " " + string(b.Operator) + " " + nodeString(b.Right)
}

// Leaf holds the whitespace-separated terms of a query without keywords
type Leaf struct {
	Space      Junction
	IgnoreCase bool
	Terms      []Term
}

func (l *Leaf) node() {}

// Match applies the leaf's terms, joined by Space.
// A leaf without terms matches everything.
func (l *Leaf) Match(candidate string) bool {
	if len(l.Terms) == 0 {
		return true
	}
	if l.IgnoreCase {
		candidate = strings.ToLower(candidate)
	}
	if l.Space == Or {
		return l.matchAny(candidate)
	}
	return l.matchAll(candidate)
}

// matchAll requires every term to hold, stopping at the first that does not
func (l *Leaf) matchAll(candidate string) bool {
	for _, t := range l.Terms {
		if l.hit(t, candidate) == t.Negate {
			return false
		}
	}
	return true
}

// matchAny requires one positive hit and no negated hit
func (l *Leaf) matchAny(candidate string) bool {
	matched, positives := false, 0
	for _, t := range l.Terms {
		hit := l.hit(t, candidate)
		if t.Negate {
			if hit {
				return false
			}
			continue
		}
		positives++
		if hit {
			matched = true
		}
	}
	return matched || positives == 0
}

// hit reports whether the term's text occurs in the candidate.
// Empty terms only hit the empty candidate.
func (l *Leaf) hit(t Term, candidate string) bool {
	if t.Empty {
		return candidate == ""
	}
	text := t.Text
	if l.IgnoreCase {
		text = strings.ToLower(text)
	}
	return strings.Contains(candidate, text)
}

func (l *Leaf) String() string {
	parts := make([]string, len(l.Terms))
	for i, t := range l.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Term is a single word or phrase of a leaf
type Term struct {
	Text   string
	Negate bool
	Phrase bool // multi-word, either quoted or connector-expanded
	Exact  bool // quoted in the source text
	Empty  bool
}

func (t Term) String() string {
	text := t.Text
	if t.Phrase || t.Empty {
		text = `"` + text + `"`
	}
	if t.Negate {
		return "-" + text
	}
	return text
}

// Walk visits node and its descendants depth-first, left to right.
// Returning false from fn stops descent below that node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	if b, ok := node.(*Branch); ok {
		Walk(b.Left, fn)
		Walk(b.Right, fn)
	}
}

// matchNode evaluates n, treating a missing side as the junction's identity
func matchNode(n Node, candidate string, missing bool) bool {
	if n == nil {
		return missing
	}
	return n.Match(candidate)
}

func nodeString(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}
