package formula

import (
	"math"
	"strconv"
)

// Evaluator evaluates an expression with variables looked up by name.
// Variables missing from vars are NaN.
type Evaluator func(vars map[string]float64) float64

// Positional evaluates an expression with one argument per variable, in the
// order given to Compile. It panics if called with the wrong number of
// arguments.
type Positional func(args ...float64) float64

// Evaluator returns the default evaluator for the expression. It is compiled
// on first use and kept until the expression is next changed by Fold.
func (e *Expr) Evaluator() Evaluator {
	if e.eval == nil {
		names := e.Vars()
		slots := make(map[string]int, len(names))
		for i, name := range names {
			slots[name] = i
		}
		f := compile(e.root, slots)
		e.eval = func(vars map[string]float64) float64 {
			args := make([]float64, len(names))
			for i, name := range names {
				v, ok := vars[name]
				if !ok {
					v = math.NaN()
				}
				args[i] = v
			}
			return f(args)
		}
	}
	return e.eval
}

// Eval evaluates the expression with the default evaluator.
func (e *Expr) Eval(vars map[string]float64) float64 {
	return e.Evaluator()(vars)
}

// Compile creates an evaluator taking variables as arguments in the order of
// names. Every variable in the expression must be named exactly once; names
// may include variables the expression does not use.
func (e *Expr) Compile(names ...string) (Positional, error) {
	slots := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := slots[name]; ok {
			return nil, &SemanticError{Offset: -1, Name: name, Msg: "duplicate variable " + strconv.Quote(name) + " in argument list"}
		}
		slots[name] = i
	}
	vars := e.variables()
	for _, name := range e.Vars() {
		if _, ok := slots[name]; !ok {
			return nil, &SemanticError{Offset: vars[name].pos, Name: name, Msg: "variable " + strconv.Quote(name) + " is not in the argument list"}
		}
	}
	f := compile(e.root, slots)
	n := len(names)
	return func(args ...float64) float64 {
		if len(args) != n {
			panic("formula: compiled expression takes " + strconv.Itoa(n) + " arguments, got " + strconv.Itoa(len(args)))
		}
		return f(args)
	}, nil
}

// compile turns the tree into a Thunk reading variables from the argument
// slots given by slots. Every variable in the tree must have a slot.
func compile(n *Node, slots map[string]int) Thunk {
	switch n.kind {
	case NodeLiteral:
		v := n.val
		return func([]float64) float64 { return v }
	case NodeVariable:
		i, ok := slots[n.name]
		if !ok {
			panic("formula: no slot for variable " + strconv.Quote(n.name))
		}
		return func(args []float64) float64 { return args[i] }
	case NodeCond:
		cond, yes, no := compile(n.kids[0], slots), compile(n.kids[1], slots), compile(n.kids[2], slots)
		return func(args []float64) float64 {
			if truth(cond(args)) {
				return yes(args)
			}
			return no(args)
		}
	case NodeUnary, NodeBinary, NodeCall:
		operands := make([]Thunk, len(n.kids))
		for i, k := range n.kids {
			operands[i] = compile(k, slots)
		}
		if n.def.Emit == nil {
			panic("formula: definition " + strconv.Quote(n.def.Name) + " has no emitter")
		}
		return n.def.Emit(operands)
	default:
		panic("formula: cannot compile node kind " + n.kind.String())
	}
}

// Interpret evaluates the expression by walking its tree, without compiling
// it. Variables missing from vars are NaN. The result is the same as Eval.
func (e *Expr) Interpret(vars map[string]float64) float64 {
	return e.root.eval(vars)
}

func (n *Node) eval(vars map[string]float64) float64 {
	switch n.kind {
	case NodeLiteral:
		return n.val
	case NodeVariable:
		v, ok := vars[n.name]
		if !ok {
			return math.NaN()
		}
		return v
	case NodeCond:
		if truth(n.kids[0].eval(vars)) {
			return n.kids[1].eval(vars)
		}
		return n.kids[2].eval(vars)
	case NodeUnary, NodeBinary, NodeCall:
		args := make([]float64, len(n.kids))
		for i, k := range n.kids {
			args[i] = k.eval(vars)
		}
		return n.def.Eval(args...)
	default:
		panic("formula: invalid AST node " + n.kind.String())
	}
}

// Eval is a shortcut to parse an expression with the default registry and
// evaluate it once.
func Eval(src string, vars map[string]float64) (float64, error) {
	e, err := Parse(src)
	if err != nil {
		return math.NaN(), err
	}
	return e.Eval(vars), nil
}
