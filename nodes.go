package formula

import (
	"math"
	"strconv"
	"strings"
)

// NodeKind is the kind of an AST node.
type NodeKind int8

const (
	nodeNone NodeKind = iota

	NodeLiteral  // value
	NodeVariable // lookup(name)
	NodeUnary    // def(child 0)
	NodeBinary   // def(child 0, child 1)
	NodeCall     // def(children...)
	NodeCond     // child 0 ? child 1 : child 2, evaluating only one branch
)

func (k NodeKind) String() string {
	switch k {
	case NodeLiteral:
		return "Literal"
	case NodeVariable:
		return "Variable"
	case NodeUnary:
		return "Unary"
	case NodeBinary:
		return "Binary"
	case NodeCall:
		return "Call"
	case NodeCond:
		return "Cond"
	default:
		return "NodeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Node is a node in the abstract syntax tree of an expression. Nodes are
// owned by their Expr and change only when it is folded.
type Node struct {
	kind NodeKind
	// pos is the rune offset of the token that created the node.
	pos  int
	val  float64
	name string
	def  *Definition
	kids []*Node
}

func newLiteral(v float64, pos int) *Node {
	return &Node{kind: NodeLiteral, val: v, pos: pos}
}

// Kind returns the kind of the node.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// Value returns the value of a literal, or NaN for other nodes.
func (n *Node) Value() float64 {
	if n.kind != NodeLiteral {
		return math.NaN()
	}
	return n.val
}

// Name returns the name of a variable or the name of the definition applied
// by an operator or call. Literals and conditionals have no name.
func (n *Node) Name() string {
	if n.def != nil {
		return n.def.Name
	}
	return n.name
}

// Def returns the definition applied by an operator or call node, or nil.
func (n *Node) Def() *Definition {
	return n.def
}

// Pos returns the source offset of the token that produced the node.
func (n *Node) Pos() int {
	return n.pos
}

// NumChildren returns the number of operands of the node.
func (n *Node) NumChildren() int {
	return len(n.kids)
}

// Child returns the i'th operand of the node.
func (n *Node) Child(i int) *Node {
	return n.kids[i]
}

// Children returns a copy of the operands of the node.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.kids...)
}

// walk calls f on n and each of its descendants in preorder.
func (n *Node) walk(f func(*Node)) {
	f(n)
	for _, k := range n.kids {
		k.walk(f)
	}
}

// clone deep copies the tree. Variables are interned in names.
func (n *Node) clone(names map[string]*Node) *Node {
	switch n.kind {
	case NodeVariable:
		if v := names[n.name]; v != nil {
			return v
		}
		v := *n
		names[n.name] = &v
		return &v
	case NodeLiteral:
		m := *n
		return &m
	default:
		m := *n
		m.kids = make([]*Node, len(n.kids))
		for i, k := range n.kids {
			m.kids[i] = k.clone(names)
		}
		return &m
	}
}

// String renders the tree as source text. Every operator application is
// parenthesized, so the result parses back to the same tree under the same
// registry.
func (n *Node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

func (n *Node) fmt(b *strings.Builder) {
	switch n.kind {
	case NodeLiteral:
		s := fmtnum(n.val)
		if n.val < 0 || math.Signbit(n.val) {
			b.WriteByte('(')
			b.WriteString(s)
			b.WriteByte(')')
			return
		}
		b.WriteString(s)
	case NodeVariable:
		b.WriteString(n.name)
	case NodeUnary, NodeBinary:
		b.WriteByte('(')
		n.fmttemplate(b)
		b.WriteByte(')')
	case NodeCall:
		n.fmttemplate(b)
	case NodeCond:
		b.WriteByte('(')
		n.kids[0].fmt(b)
		b.WriteString(" ? ")
		n.kids[1].fmt(b)
		b.WriteString(" : ")
		n.kids[2].fmt(b)
		b.WriteByte(')')
	default:
		panic("formula: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

// fmttemplate expands the definition's template.
func (n *Node) fmttemplate(b *strings.Builder) {
	t := n.def.Template
	for {
		k := strings.IndexByte(t, '$')
		if k < 0 || k == len(t)-1 {
			b.WriteString(t)
			return
		}
		b.WriteString(t[:k])
		switch c := t[k+1]; {
		case c == '*':
			for i, a := range n.kids {
				if i > 0 {
					b.WriteString(", ")
				}
				a.fmt(b)
			}
		case '1' <= c && c <= '9' && int(c-'1') < len(n.kids):
			n.kids[c-'1'].fmt(b)
		default:
			b.WriteString(t[k : k+2])
		}
		t = t[k+2:]
	}
}

// fmtnum formats a number so that it tokenizes back to the same value with
// the default constants.
func fmtnum(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}
