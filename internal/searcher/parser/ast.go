package parser

import "strings"

// Node is a parsed boolean query.
type Node interface {
	String() string
	node()
}

// Term matches documents containing Word.
type Term struct {
	Word string
}

// Phrase matches documents where Words occur at consecutive positions. Words
// are lower-cased with stop-words still present.
type Phrase struct {
	Words []string
}

type And struct {
	Left, Right Node
}

type Or struct {
	Left, Right Node
}

type Not struct {
	Operand Node
}

func (Term) node()   {}
func (Phrase) node() {}
func (And) node()    {}
func (Or) node()     {}
func (Not) node()    {}

func (t Term) String() string   { return t.Word }
func (p Phrase) String() string { return `"` + strings.Join(p.Words, " ") + `"` }
func (a And) String() string    { return "(" + a.Left.String() + " AND " + a.Right.String() + ")" }
func (o Or) String() string     { return "(" + o.Left.String() + " OR " + o.Right.String() + ")" }
func (n Not) String() string    { return "NOT " + n.Operand.String() }
