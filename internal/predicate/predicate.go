// Package predicate builds boolean expressions over message fields and
// renders them in the Python expression grammar accepted by `rosbag filter`.
package predicate

import "strings"

// Expr is a node of a predicate expression.
type Expr interface {
	String() string
	precedence() int
}

const (
	precOr = iota + 1
	precAtom
)

// Eq tests a field for equality with a string literal.
type Eq struct {
	Field string
	Value string
}

func (e Eq) String() string {
	return e.Field + "==" + Quote(e.Value)
}

func (Eq) precedence() int { return precAtom }

// TopicIs is shorthand for Eq{Field: "topic", Value: name}.
func TopicIs(name string) Eq {
	return Eq{Field: "topic", Value: name}
}

// Or is true when any of its terms is.
type Or []Expr

func (o Or) String() string { return join(o, " or ", precOr) }

func (Or) precedence() int { return precOr }

// AnyTopic matches messages on any of the named topics.
func AnyTopic(names ...string) Or {
	terms := make(Or, 0, len(names))
	for _, n := range names {
		terms = append(terms, TopicIs(n))
	}
	return terms
}

// Quote renders s as a single-quoted Python string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '\'':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func join(terms []Expr, sep string, prec int) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, wrap(t, prec))
	}
	return strings.Join(parts, sep)
}

func wrap(e Expr, prec int) string {
	if e.precedence() <= prec {
		return "(" + e.String() + ")"
	}
	return e.String()
}
