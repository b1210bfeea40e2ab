package formula

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	nofoldopt struct{}
	allowopt  []string
	regopt    struct{ reg *Registry }
	logopt    func(format string, v ...interface{})
)

// parsectx holds general data for parsing.
type parsectx struct {
	// reg resolves operators, functions, and constants.
	reg *Registry
	// allow is the set of permitted variable names, or nil to permit any.
	allow map[string]bool
	// nofold disables folding the parsed expression.
	nofold bool
	// logf receives debugging output if non-nil.
	logf func(format string, v ...interface{})
	// names interns variables seen this parse.
	names map[string]*Node
}

// NoFold disables the constant folding pass that normally follows parsing.
// Constants are still replaced by their values.
func NoFold() ParseOption {
	return nofoldopt{}
}

func (nofoldopt) parseOption(p parsectx) parsectx {
	p.nofold = true
	return p
}

// AllowVars restricts the variables an expression may use. Using any other
// name is an error. Multiple AllowVars options combine. With no AllowVars
// option, any name that is not a constant or function is a variable.
func AllowVars(names ...string) ParseOption {
	return allowopt(names)
}

func (o allowopt) parseOption(p parsectx) parsectx {
	m := make(map[string]bool, len(p.allow)+len(o))
	for k := range p.allow {
		m[k] = true
	}
	for _, k := range o {
		m[k] = true
	}
	p.allow = m
	return p
}

// WithRegistry sets the registry used to parse. The default is Base(). The
// registry must not change while parsing. Passing nil restores the default.
func WithRegistry(reg *Registry) ParseOption {
	return regopt{reg}
}

func (o regopt) parseOption(p parsectx) parsectx {
	p.reg = o.reg
	return p
}

// Logf sets a function to receive debugging output about parsing and folding.
// The function is retained by the parsed expression for later folds.
func Logf(logf func(format string, v ...interface{})) ParseOption {
	return logopt(logf)
}

func (o logopt) parseOption(p parsectx) parsectx {
	p.logf = o
	return p
}
