package formula

// Expr is a parsed expression. An Expr is not safe for concurrent use until
// its caches are warm: call Variables and Evaluator before sharing it, and do
// not Fold it while it is shared.
type Expr struct {
	reg *Registry
	// root is the root node of the expression.
	root *Node
	// vars interns variables by name. It is nil when a fold may have
	// removed some.
	vars map[string]*Node
	// eval is the cached default evaluator, or nil.
	eval Evaluator
	logf func(format string, v ...interface{})
}

// Root returns the root node of the expression.
func (e *Expr) Root() *Node {
	return e.root
}

// Registry returns the registry the expression was parsed with.
func (e *Expr) Registry() *Registry {
	return e.reg
}

// Variables returns the variables used in the expression, keyed by name.
// The map is a copy; the nodes are shared with the expression.
func (e *Expr) Variables() map[string]*Node {
	vars := e.variables()
	m := make(map[string]*Node, len(vars))
	for k, v := range vars {
		m[k] = v
	}
	return m
}

func (e *Expr) variables() map[string]*Node {
	if e.vars == nil {
		e.vars = make(map[string]*Node)
		e.root.walk(func(n *Node) {
			if n.kind == NodeVariable {
				e.vars[n.name] = n
			}
		})
	}
	return e.vars
}

// Vars returns the sorted names of the variables used in the expression.
func (e *Expr) Vars() []string {
	vars := e.variables()
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sortstrs(names)
	return names
}

// Clone creates a deep copy of the expression. Folding either one does not
// affect the other.
func (e *Expr) Clone() *Expr {
	names := make(map[string]*Node, len(e.vars))
	c := &Expr{
		reg:  e.reg,
		root: e.root.clone(names),
		logf: e.logf,
	}
	c.vars = names
	return c
}

// String renders the expression as source text.
func (e *Expr) String() string {
	return e.root.String()
}

func (e *Expr) debugf(format string, v ...interface{}) {
	if e.logf != nil {
		e.logf(format, v...)
	}
}
