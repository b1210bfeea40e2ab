package formula

import (
	"math"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

// diff finds the first preorder node of n that differs from m, or nil, nil if
// the two ASTs are equal.
func (n *Node) diff(m *Node) (*Node, *Node) {
	if n == nil || m == nil {
		if n != m {
			return n, m
		}
		return nil, nil
	}
	if n.kind != m.kind || len(n.kids) != len(m.kids) {
		return n, m
	}
	switch n.kind {
	case NodeLiteral:
		if n.val != m.val && !(math.IsNaN(n.val) && math.IsNaN(m.val)) {
			return n, m
		}
		if math.Signbit(n.val) != math.Signbit(m.val) {
			return n, m
		}
	case NodeVariable:
		if n.name != m.name {
			return n, m
		}
	case NodeUnary, NodeBinary, NodeCall:
		if n.def.Name != m.def.Name || n.def.Kind != m.def.Kind {
			return n, m
		}
	}
	for i := range n.kids {
		if d, e := n.kids[i].diff(m.kids[i]); d != nil || e != nil {
			return d, e
		}
	}
	return nil, nil
}

// haskind checks whether a parse tree contains a node of the given type.
func (n *Node) haskind(k NodeKind) bool {
	if n.kind == k {
		return true
	}
	for _, c := range n.kids {
		if c.haskind(k) {
			return true
		}
	}
	return false
}

// treebuilder makes expected trees against a registry.
type treebuilder struct {
	reg *Registry
}

func (b treebuilder) lit(v float64) *Node {
	return &Node{kind: NodeLiteral, val: v}
}

func (b treebuilder) v(name string) *Node {
	return &Node{kind: NodeVariable, name: name}
}

func (b treebuilder) un(sym string, x *Node) *Node {
	return &Node{kind: NodeUnary, def: b.reg.Unary(sym), kids: []*Node{x}}
}

func (b treebuilder) bin(sym string, x, y *Node) *Node {
	return &Node{kind: NodeBinary, def: b.reg.Binary(sym), kids: []*Node{x, y}}
}

func (b treebuilder) call(name string, args ...*Node) *Node {
	return &Node{kind: NodeCall, def: b.reg.Ident(name), kids: args}
}

func (b treebuilder) cond(c, x, y *Node) *Node {
	return &Node{kind: NodeCond, kids: []*Node{c, x, y}}
}

func TestParseShape(t *testing.T) {
	b := treebuilder{Base()}
	a, x, y, z, w := b.v("a"), b.v("b"), b.v("c"), b.v("d"), b.v("e")
	cases := []struct {
		name string
		src  string
		want *Node
	}{
		{"num", "1", b.lit(1)},
		{"ident", "a", a},
		{"paren", "((a))", a},
		{"const", "PI", b.lit(math.Pi)},
		{"infinity", "Infinity", b.lit(math.Inf(1))},
		{"mul-over-add", "2 + 3 * 4", b.bin("+", b.lit(2), b.bin("*", b.lit(3), b.lit(4)))},
		{"add-under-mul", "2 * 3 + 4", b.bin("+", b.bin("*", b.lit(2), b.lit(3)), b.lit(4))},
		{"group", "(2 + 3) * 4", b.bin("*", b.bin("+", b.lit(2), b.lit(3)), b.lit(4))},
		{"sub-left", "a - b - c", b.bin("-", b.bin("-", a, x), y)},
		{"div-mul-left", "a / b * c", b.bin("*", b.bin("/", a, x), y)},
		{"mixed", "a + b * c - d", b.bin("-", b.bin("+", a, b.bin("*", x, y)), z)},
		{"two-products", "a * b + c * d", b.bin("+", b.bin("*", a, x), b.bin("*", y, z))},
		{"cmp-eq", "a < b == c", b.bin("==", b.bin("<", a, x), y)},
		{"or-and", "a || b && c", b.bin("||", a, b.bin("&&", x, y))},
		{"and-or", "a && b || c", b.bin("||", b.bin("&&", a, x), y)},
		{"descend-ascend", "a || b < c + d * e", b.bin("||", a, b.bin("<", x, b.bin("+", y, b.bin("*", z, w))))},
		{"ascend", "a * b + c < d || e", b.bin("||", b.bin("<", b.bin("+", b.bin("*", a, x), y), z), w)},
		{"neg", "-a", b.un("-", a)},
		{"neg-neg", "--a", b.un("-", b.un("-", a))},
		{"neg-not", "-!a", b.un("-", b.un("!", a))},
		{"neg-mul", "-a * b", b.bin("*", b.un("-", a), x)},
		{"mul-neg", "a * -b", b.bin("*", a, b.un("-", x))},
		{"sub-neg", "a - -b", b.bin("-", a, b.un("-", x))},
		{"call", "sin(a)", b.call("sin", a)},
		{"call-expr", "pow(2, a + 1)", b.call("pow", b.lit(2), b.bin("+", a, b.lit(1)))},
		{"call-varargs", "max(a, b, c)", b.call("max", a, x, y)},
		{"call-nested", "abs(min(a, -b))", b.call("abs", b.call("min", a, b.un("-", x)))},
		{"call-space", "sin (a)", b.call("sin", a)},
		{"cond", "a ? b : c", b.cond(a, x, y)},
		{"cond-right", "a ? b : c ? d : e", b.cond(a, x, b.cond(y, z, w))},
		{"cond-middle", "a ? b ? c : d : e", b.cond(a, b.cond(x, y, z), w)},
		{"cond-cmp", "a > 0 ? a : -a", b.cond(b.bin(">", a, b.lit(0)), a, b.un("-", a))},
		{"cond-arith", "a + b ? c : d - e", b.cond(b.bin("+", a, x), y, b.bin("-", z, w))},
		{"cond-under-or", "a || b ? c : d", b.bin("||", a, b.cond(x, y, z))},
		{"cond-over-or", "a ? b : c || d", b.bin("||", b.cond(a, x, y), z)},
		{"cond-in-call", "max(a ? b : c, d)", b.call("max", b.cond(a, x, y), z)},
		{"cond-paren", "(a ? b : c) + d", b.bin("+", b.cond(a, x, y), z)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := Parse(c.src, NoFold())
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			if d, f := e.Root().diff(c.want); d != nil || f != nil {
				t.Errorf("%q parsed wrong: got %v, want %v", c.src, e.Root(), c.want)
				t.Logf("actual:\n%s", spew.Sdump(d))
				t.Logf("expected:\n%s", spew.Sdump(f))
			}
		})
	}
}

func TestParseRegisteredOperators(t *testing.T) {
	reg := Base().Clone()
	if err := reg.AddBinaryOperator("**", 2, RightAssoc, math.Pow); err != nil {
		t.Fatal(err)
	}
	if err := reg.AddUnaryOperator("~", 1, func(x float64) float64 { return -x - 1 }); err != nil {
		t.Fatal(err)
	}
	// Right associative at the precedence of the left associative + and -.
	if err := reg.AddBinaryOperator("^", 6, RightAssoc, func(x, y float64) float64 { return x - y }); err != nil {
		t.Fatal(err)
	}
	b := treebuilder{reg}
	x, y, z := b.v("x"), b.v("y"), b.v("z")
	cases := []struct {
		name string
		src  string
		want *Node
	}{
		{"right", "x ** y ** z", b.bin("**", x, b.bin("**", y, z))},
		{"paren", "(x ** y) ** z", b.bin("**", b.bin("**", x, y), z)},
		{"neg-pow", "-x ** y", b.un("-", b.bin("**", x, y))},
		{"pow-neg", "x ** -y ** z", b.bin("**", x, b.un("-", b.bin("**", y, z)))},
		{"tight-unary", "~x ** y", b.bin("**", b.un("~", x), y)},
		{"mul-pow", "x * y ** z", b.bin("*", x, b.bin("**", y, z))},
		{"left-then-right", "x - y ^ z", b.bin("^", b.bin("-", x, y), z)},
		{"right-then-left", "x ^ y - z", b.bin("-", b.bin("^", x, y), z)},
		{"mixed-chain", "x + y ^ z ^ x", b.bin("^", b.bin("+", x, y), b.bin("^", z, x))},
		{"all-right", "x ^ y ^ z", b.bin("^", x, b.bin("^", y, z))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := Parse(c.src, NoFold(), WithRegistry(reg))
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			if d, f := e.Root().diff(c.want); d != nil || f != nil {
				t.Errorf("%q parsed wrong: got %v, want %v", c.src, e.Root(), c.want)
			}
		})
	}
}

func TestParseInternsVariables(t *testing.T) {
	e, err := Parse("x + x * y", NoFold())
	if err != nil {
		t.Fatal(err)
	}
	root := e.Root()
	if root.Child(0) != root.Child(1).Child(0) {
		t.Error("uses of x are distinct nodes")
	}
	if root.Child(0) == root.Child(1).Child(1) {
		t.Error("x and y are the same node")
	}
	vars := e.Variables()
	if len(vars) != 2 || vars["x"] != root.Child(0) || vars["y"] != root.Child(1).Child(1) {
		t.Errorf("wrong variables: %v", vars)
	}
}

func TestParseConstantsIgnoreNoFold(t *testing.T) {
	e, err := Parse("NaN", NoFold())
	if err != nil {
		t.Fatal(err)
	}
	if e.Root().Kind() != NodeLiteral || !math.IsNaN(e.Root().Value()) {
		t.Errorf("NaN parsed as %v", e.Root())
	}
	if e.Root().haskind(NodeVariable) {
		t.Error("constant parsed as a variable")
	}
}

func TestParseErrors(t *testing.T) {
	const (
		tokenize = "tokenize"
		syntax   = "syntax"
		semantic = "semantic"
	)
	cases := []struct {
		name string
		src  string
		kind string
		pos  int
		msg  string
	}{
		{"empty", "", syntax, 0, "empty"},
		{"blank", "   ", syntax, 3, "empty"},
		{"dangling-op", "1 +", syntax, 3, "end of input"},
		{"unclosed", "(1 + 2", syntax, 6, `")"`},
		{"unopened", "1 + 2)", syntax, 5, `")"`},
		{"two-nums", "1 2", syntax, 2, "number 2"},
		{"two-idents", "x y", syntax, 2, "identifier y"},
		{"leading-binop", "* 2", syntax, 0, `"*"`},
		{"empty-group", "()", syntax, 1, `")"`},
		{"juxtaposed-group", "2 (3)", syntax, 2, `"("`},
		{"dot", "1 . 2", syntax, 2, "unknown binary operator"},
		{"semicolon", "1 ; 2", syntax, 2, "unknown binary operator"},
		{"unary-as-binary", "1 ! 2", syntax, 2, "unknown binary operator"},
		{"cond-no-colon", "a ? b", syntax, 5, `":"`},
		{"cond-junk", "a ? b c", syntax, 6, `":"`},
		{"cond-stray-colon", "a : b", syntax, 2, `":"`},
		{"trailing-comma", "sin(1,)", syntax, 6, `")"`},
		{"unclosed-call", "sin(1", syntax, 5, `"," or ")"`},
		{"call-junk", "sin(1 2)", syntax, 6, `"," or ")"`},
		{"bad-char", "2 $", tokenize, 2, "invalid character"},
		{"bad-number", "2 + 3x", tokenize, 4, "malformed number"},
		{"unknown-func", "f(1)", semantic, 0, `unknown function "f"`},
		{"const-call", "1 + PI(1)", semantic, 4, "is not a function"},
		{"func-value", "sin", semantic, 0, "used as a value"},
		{"func-operand", "2 * sin + 1", semantic, 4, "used as a value"},
		{"arity-exact", "sin(1, 2)", semantic, 0, "sin accepts exactly 1 argument, got 2"},
		{"arity-exact-plural", "x + clamp(1)", semantic, 4, "clamp accepts exactly 3 arguments, got 1"},
		{"arity-min", "min(1)", semantic, 0, "min accepts at least 2 arguments, got 1"},
		{"arity-none", "sin()", semantic, 0, "got 0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := Parse(c.src)
			if err == nil {
				t.Fatalf("%q parsed as %v", c.src, e)
			}
			if e != nil {
				t.Errorf("%q gave an expression with error %v", c.src, err)
			}
			var ok bool
			switch c.kind {
			case tokenize:
				var te *TokenizeError
				ok = errors.As(err, &te)
			case syntax:
				var se *SyntaxError
				ok = errors.As(err, &se)
			case semantic:
				var se *SemanticError
				ok = errors.As(err, &se)
			}
			if !ok {
				t.Errorf("%q: want %s error, got %T: %v", c.src, c.kind, err, err)
			}
			var ie InputError
			if !errors.As(err, &ie) {
				t.Fatalf("%q: %T is not an InputError", c.src, err)
			}
			if ie.Pos() != c.pos {
				t.Errorf("%q: want position %d, got %d (%v)", c.src, c.pos, ie.Pos(), err)
			}
			if !strings.Contains(err.Error(), c.msg) {
				t.Errorf("%q: error %q does not mention %q", c.src, err.Error(), c.msg)
			}
		})
	}
}

func TestParseArityRange(t *testing.T) {
	reg := Base().Clone()
	if err := reg.AddFunction("avg", 1, 3, func(args ...float64) float64 { return args[0] }); err != nil {
		t.Fatal(err)
	}
	_, err := Parse("avg(1, 2, 3, 4)", WithRegistry(reg))
	var se *SemanticError
	if !errors.As(err, &se) {
		t.Fatalf("want SemanticError, got %v", err)
	}
	if want := "avg accepts 1 to 3 arguments, got 4"; !strings.Contains(se.Error(), want) {
		t.Errorf("error %q does not contain %q", se.Error(), want)
	}
	if se.Name != "avg" {
		t.Errorf("error names %q, not avg", se.Name)
	}
}

func TestParseAllowVars(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		allow []string
		bad   string
		pos   int
	}{
		{"allowed", "x * 2", []string{"x"}, "", 0},
		{"constants-ok", "x + PI", []string{"x"}, "", 0},
		{"functions-ok", "sin(x)", []string{"x"}, "", 0},
		{"rejected", "sin(z)", []string{"x"}, "z", 4},
		{"second", "x + y", []string{"x"}, "y", 4},
		{"empty-list", "x", nil, "x", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.src, AllowVars(c.allow...))
			if c.bad == "" {
				if err != nil {
					t.Errorf("%q: unexpected error %v", c.src, err)
				}
				return
			}
			var se *SemanticError
			if !errors.As(err, &se) {
				t.Fatalf("%q: want SemanticError, got %v", c.src, err)
			}
			if se.Name != c.bad || se.Pos() != c.pos {
				t.Errorf("%q: want %q at %d, got %q at %d", c.src, c.bad, c.pos, se.Name, se.Pos())
			}
			if !strings.Contains(se.Error(), c.bad) {
				t.Errorf("%q: error %q does not name %q", c.src, se.Error(), c.bad)
			}
		})
	}
}

func TestAllowVarsCombine(t *testing.T) {
	if _, err := Parse("x + y", AllowVars("x"), AllowVars("y")); err != nil {
		t.Errorf("combined whitelist rejected: %v", err)
	}
}

func TestOperatorMoreBinding(t *testing.T) {
	tight := operator{prec: 5}
	loose := operator{prec: 6}
	right := operator{prec: 5, right: true}
	if !tight.moreBinding(loose) {
		t.Error("lower precedence number does not bind tighter")
	}
	if loose.moreBinding(tight) {
		t.Error("higher precedence number binds tighter")
	}
	if tight.moreBinding(tight) {
		t.Error("left associative operator takes operand from equal precedence")
	}
	if !right.moreBinding(right) {
		t.Error("right associative operator does not take operand from equal precedence")
	}
	if right.moreBinding(tight) {
		t.Error("right associative operator takes operand from equal precedence left associative one")
	}
	if !condprec.moreBinding(exprprec) {
		t.Error("conditional does not bind tighter than a whole expression")
	}
}
