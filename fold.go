package formula

// Fold simplifies the expression in place. Variables named in subs are
// replaced by their values, then every operator or call whose definition is
// pure and whose operands are all literals is replaced by its result. A
// conditional whose condition becomes a literal is replaced by the branch it
// selects; the other branch is discarded without being evaluated.
//
// Fold returns e so that calls can be chained. Folding a folded expression
// with no substitutions does nothing.
func (e *Expr) Fold(subs map[string]float64) *Expr {
	n, changed := e.fold(e.root, subs)
	if changed {
		e.root = n
		e.vars = nil
		e.eval = nil
	}
	return e
}

// fold returns the folded form of n and whether anything changed. Nodes
// other than variables and literals are modified in place.
func (e *Expr) fold(n *Node, subs map[string]float64) (*Node, bool) {
	switch n.kind {
	case NodeLiteral:
		return n, false
	case NodeVariable:
		v, ok := subs[n.name]
		if !ok {
			return n, false
		}
		e.debugf("fold: substituting %s = %v", n.name, v)
		return newLiteral(v, n.pos), true
	case NodeCond:
		cond, changed := e.fold(n.kids[0], subs)
		if cond.kind == NodeLiteral {
			k := 2
			if truth(cond.val) {
				k = 1
			}
			e.debugf("fold: conditional at %d takes branch %d", n.pos, k)
			b, _ := e.fold(n.kids[k], subs)
			return b, true
		}
		n.kids[0] = cond
		for i := 1; i < 3; i++ {
			var c bool
			n.kids[i], c = e.fold(n.kids[i], subs)
			changed = changed || c
		}
		return n, changed
	case NodeUnary, NodeBinary, NodeCall:
		changed := false
		lits := true
		for i, k := range n.kids {
			m, c := e.fold(k, subs)
			n.kids[i] = m
			changed = changed || c
			lits = lits && m.kind == NodeLiteral
		}
		if !lits || !n.def.Pure() {
			return n, changed
		}
		args := make([]float64, len(n.kids))
		for i, k := range n.kids {
			args[i] = k.val
		}
		v := n.def.Eval(args...)
		e.debugf("fold: %v = %v", n, v)
		return newLiteral(v, n.pos), true
	default:
		panic("formula: invalid node kind " + n.kind.String())
	}
}
