package formula

import (
	"fmt"
	"math"
	"strconv"
)

// expr    = unaries primary { binop expr } [ '?' expr ':' expr ]
// primary = num | ident | ident '(' [ expr { ',' expr } ] ')' | '(' expr ')'
// unaries = { unop }

// Parse parses an expression. The given options are applied in order. Unless
// NoFold is given, the expression is folded before it is returned.
//
// Errors from invalid input are *TokenizeError, *SyntaxError, or
// *SemanticError. All of them implement InputError.
func Parse(src string, opts ...ParseOption) (*Expr, error) {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	if p.reg == nil {
		p.reg = base
	}
	p.names = make(map[string]*Node)
	scan, err := lex(src, p.reg)
	if err != nil {
		return nil, err
	}
	if tok := scan.peek(); tok.kind == tokenEOF {
		return nil, &SyntaxError{Offset: tok.pos, Msg: "empty expression"}
	}
	n, err := parseterm(scan, &p, exprprec)
	if err != nil {
		return nil, err
	}
	if tok := scan.next(); tok.kind != tokenEOF {
		return nil, unexpected(tok, "end of input")
	}
	e := &Expr{
		reg:  p.reg,
		root: n,
		vars: p.names,
		logf: p.logf,
	}
	if p.logf != nil {
		p.logf("parsed %v with variables %q", n, e.Vars())
	}
	if !p.nofold {
		e.Fold(nil)
	}
	return e, nil
}

// MustParse is like Parse but panics if the expression cannot be parsed.
func MustParse(src string, opts ...ParseOption) *Expr {
	e, err := Parse(src, opts...)
	if err != nil {
		panic("formula: Parse(" + strconv.Quote(src) + "): " + err.Error())
	}
	return e
}

// parseterm parses operands and operators until it finds an operator that
// binds no tighter than until, a token that cannot continue an expression, or
// the end of input. That token is left unread.
func parseterm(scan *lexer, p *parsectx, until operator) (*Node, error) {
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	for {
		tok := scan.next()
		if tok.kind != tokenPunct {
			// Two operands in a row. Let the caller report it.
			scan.push()
			return n, nil
		}
		switch tok.text {
		case ")", ",", ":":
			// End of a group, argument, or conditional branch.
			scan.push()
			return n, nil
		case "?":
			if !condprec.moreBinding(until) {
				scan.push()
				return n, nil
			}
			n, err = parsecond(scan, p, n, tok)
			if err != nil {
				return nil, err
			}
			continue
		case "(":
			return nil, unexpected(tok, "operator")
		}
		def := p.reg.Binary(tok.text)
		if def == nil {
			return nil, &SyntaxError{Offset: tok.pos, Token: tok.text, Msg: "unknown binary operator " + strconv.Quote(tok.text)}
		}
		prec := operator{prec: def.Precedence, right: def.Assoc == RightAssoc}
		if !prec.moreBinding(until) {
			scan.push()
			return n, nil
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		n = &Node{kind: NodeBinary, pos: tok.pos, def: def, kids: []*Node{n, rhs}}
	}
}

// parsecond parses the branches of a conditional after its '?' token.
func parsecond(scan *lexer, p *parsectx, cond *Node, q lexToken) (*Node, error) {
	yes, err := parseterm(scan, p, exprprec)
	if err != nil {
		return nil, err
	}
	if tok := scan.next(); tok.kind != tokenPunct || tok.text != ":" {
		return nil, unexpected(tok, `":"`)
	}
	no, err := parseterm(scan, p, condprec)
	if err != nil {
		return nil, err
	}
	return &Node{kind: NodeCond, pos: q.pos, kids: []*Node{cond, yes, no}}, nil
}

// parselhs parses the first operand of a term, including any unary operators
// applied to it.
func parselhs(scan *lexer, p *parsectx, until operator) (*Node, error) {
	tok := scan.next()
	switch tok.kind {
	case tokenNum:
		return newLiteral(tok.num, tok.pos), nil
	case tokenIdent:
		return parseident(scan, p, tok)
	case tokenPunct:
		if tok.text == "(" {
			n, err := parseterm(scan, p, exprprec)
			if err != nil {
				return nil, err
			}
			if end := scan.next(); end.kind != tokenPunct || end.text != ")" {
				return nil, unexpected(end, `")"`)
			}
			return n, nil
		}
		def := p.reg.Unary(tok.text)
		if def == nil {
			return nil, unexpected(tok, "operand")
		}
		prec := operator{prec: def.Precedence, right: true}
		if !prec.moreBinding(until) {
			// x ** -y ** z -> x ** (-(y ** z))
			// Just use the enclosing operator's precedence to simplify.
			prec = until
		}
		operand, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		return &Node{kind: NodeUnary, pos: tok.pos, def: def, kids: []*Node{operand}}, nil
	default:
		return nil, unexpected(tok, "operand")
	}
}

// parseident parses a constant, variable, or function call starting with the
// identifier tok.
func parseident(scan *lexer, p *parsectx, tok lexToken) (*Node, error) {
	name := tok.text
	def := p.reg.Ident(name)
	if open := scan.peek(); open.kind == tokenPunct && open.text == "(" {
		scan.next()
		switch {
		case def == nil:
			return nil, &SemanticError{Offset: tok.pos, Name: name, Msg: "unknown function " + strconv.Quote(name)}
		case def.Kind != DefFunction:
			return nil, &SemanticError{Offset: tok.pos, Name: name, Msg: def.Kind.String() + " " + strconv.Quote(name) + " is not a function"}
		}
		args, err := parseargs(scan, p)
		if err != nil {
			return nil, err
		}
		if !def.CanCall(len(args)) {
			return nil, arityError(tok, def, len(args))
		}
		return &Node{kind: NodeCall, pos: tok.pos, def: def, kids: args}, nil
	}
	if def != nil {
		switch def.Kind {
		case DefConstant:
			return newLiteral(def.Value, tok.pos), nil
		case DefFunction:
			return nil, &SemanticError{Offset: tok.pos, Name: name, Msg: "function " + strconv.Quote(name) + " used as a value"}
		}
	}
	if p.allow != nil && !p.allow[name] {
		return nil, &SemanticError{Offset: tok.pos, Name: name, Msg: "variable " + strconv.Quote(name) + " is not allowed"}
	}
	if v := p.names[name]; v != nil {
		return v, nil
	}
	v := &Node{kind: NodeVariable, pos: tok.pos, name: name}
	p.names[name] = v
	return v, nil
}

// parseargs parses a comma separated argument list after its open
// parenthesis, through the close parenthesis.
func parseargs(scan *lexer, p *parsectx) ([]*Node, error) {
	if tok := scan.peek(); tok.kind == tokenPunct && tok.text == ")" {
		scan.next()
		return nil, nil
	}
	var args []*Node
	for {
		arg, err := parseterm(scan, p, exprprec)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		end := scan.next()
		if end.kind != tokenPunct {
			return nil, unexpected(end, `"," or ")"`)
		}
		switch end.text {
		case ")":
			return args, nil
		case ",":
		default:
			return nil, unexpected(end, `"," or ")"`)
		}
	}
}

func arityError(tok lexToken, def *Definition, n int) *SemanticError {
	var accepts string
	switch {
	case def.MinArgs == def.MaxArgs:
		accepts = "exactly " + plural(def.MinArgs, "argument")
	case def.MaxArgs < 0:
		accepts = "at least " + plural(def.MinArgs, "argument")
	default:
		accepts = strconv.Itoa(def.MinArgs) + " to " + plural(def.MaxArgs, "argument")
	}
	return &SemanticError{
		Offset: tok.pos,
		Name:   def.Name,
		Msg:    fmt.Sprintf("%s accepts %s, got %d", def.Name, accepts, n),
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

type operator struct {
	// prec is the precedence value. Lower is more binding.
	prec int
	// right indicates right-associativity.
	right bool
}

// moreBinding reports whether an operator p following an operand should take
// that operand from an operator than that precedes it. At equal precedence,
// only a chain of right associative operators groups to the right.
func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec < than.prec
	}
	return p.right && than.right
}

var (
	// condprec is the binding of the conditional operator.
	condprec = operator{prec: CondPrecedence, right: true}
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{prec: math.MaxInt32, right: true}
)
