package formula

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// DefKind is the kind of a Definition.
type DefKind int8

const (
	defNone DefKind = iota
	// DefConstant names a fixed value. Constants are substituted while parsing.
	DefConstant
	// DefUnary is a prefix operator.
	DefUnary
	// DefBinary is an infix operator.
	DefBinary
	// DefFunction is a function called with a parenthesized argument list.
	DefFunction
)

func (k DefKind) String() string {
	switch k {
	case DefConstant:
		return "constant"
	case DefUnary:
		return "unary operator"
	case DefBinary:
		return "binary operator"
	case DefFunction:
		return "function"
	default:
		return "DefKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Assoc is the associativity of a binary operator.
type Assoc int8

const (
	// AssocNone is the zero Assoc. Binary operators cannot use it.
	AssocNone Assoc = iota
	// LeftAssoc groups a chain of equal precedence operators left to right.
	LeftAssoc
	// RightAssoc groups a chain of equal precedence operators right to left.
	RightAssoc
)

// Thunk computes a value from the arguments of a compiled expression.
type Thunk func(args []float64) float64

// Emitter builds the Thunk for one operator or function application from the
// Thunks of its operands. An Emitter must not evaluate its operands itself.
type Emitter func(operands []Thunk) Thunk

// Definition describes a constant, operator, or function in a Registry.
type Definition struct {
	// Kind is the kind of definition.
	Kind DefKind
	// Name is the identifier or operator symbol. Constants and functions
	// need identifiers; operators need one to four punctuation characters.
	Name string
	// Value is the value of a constant.
	Value float64
	// MinArgs and MaxArgs bound the number of arguments to a function. A
	// negative MaxArgs means there is no upper bound. Operators always have
	// exactly one or two.
	MinArgs, MaxArgs int
	// Precedence is the binding strength of an operator. Lower binds
	// tighter. It must be positive.
	Precedence int
	// Assoc is the associativity of a binary operator.
	Assoc Assoc
	// Impure excludes the definition from constant folding. Anything with
	// side effects or results that vary between calls must set it.
	Impure bool
	// Eval computes the result of an operator or function.
	Eval func(args ...float64) float64
	// Emit builds compiled code for the definition. If nil, it is derived
	// from Eval.
	Emit Emitter
	// Template renders an application of the definition as text. $1 and $2
	// are replaced by the first and second operands and $* by all arguments
	// separated by commas. If empty, it is derived from Name.
	Template string
}

// Pure reports whether the definition may be constant folded.
func (d *Definition) Pure() bool {
	return !d.Impure
}

// CanCall returns whether the definition accepts n arguments.
func (d *Definition) CanCall(n int) bool {
	return n >= d.MinArgs && (d.MaxArgs < 0 || n <= d.MaxArgs)
}

func (d *Definition) validate() error {
	var errs *multierror.Error
	bad := func(format string, args ...interface{}) {
		errs = multierror.Append(errs, errors.Errorf(format, args...))
	}
	switch d.Kind {
	case DefConstant:
		if !isIdent(d.Name) {
			bad("constant name must be an identifier")
		}
	case DefUnary, DefBinary:
		if !isOpSymbol(d.Name) {
			bad("operator symbol must be 1 to %d punctuation characters other than parentheses and commas, and not ? or :", maxOpLen)
		}
		if d.Precedence <= 0 {
			bad("operator precedence must be positive, not %d", d.Precedence)
		}
		if d.Kind == DefBinary && d.Assoc != LeftAssoc && d.Assoc != RightAssoc {
			bad("binary operator needs LeftAssoc or RightAssoc")
		}
		if d.Eval == nil {
			bad("operator has no Eval")
		}
	case DefFunction:
		if !isIdent(d.Name) {
			bad("function name must be an identifier")
		}
		if d.MinArgs < 0 {
			bad("negative minimum argument count %d", d.MinArgs)
		}
		if d.MaxArgs >= 0 && d.MaxArgs < d.MinArgs {
			bad("maximum argument count %d is less than minimum %d", d.MaxArgs, d.MinArgs)
		}
		if d.Eval == nil {
			bad("function has no Eval")
		}
	default:
		bad("unknown definition kind %v", d.Kind)
	}
	if errs == nil {
		return nil
	}
	errs.ErrorFormat = joinErrors
	return errs
}

func joinErrors(es []error) string {
	s := make([]string, len(es))
	for i, err := range es {
		s[i] = err.Error()
	}
	return strings.Join(s, "; ")
}

// isOpSymbol reports whether s can name an operator.
func isOpSymbol(s string) bool {
	if s == "" || s == "?" || s == ":" || len(s) > maxOpLen {
		return false
	}
	for _, r := range s {
		if classify(r) != charPunct || r == '(' || r == ')' || r == ',' {
			return false
		}
	}
	return true
}

// normalize fills in the fields derived from the kind.
func (d *Definition) normalize() {
	switch d.Kind {
	case DefConstant:
		d.MinArgs, d.MaxArgs = 0, 0
		if d.Template == "" {
			d.Template = d.Name
		}
	case DefUnary:
		d.MinArgs, d.MaxArgs = 1, 1
		if d.Template == "" {
			d.Template = d.Name + "$1"
		}
	case DefBinary:
		d.MinArgs, d.MaxArgs = 2, 2
		if d.Template == "" {
			d.Template = "$1 " + d.Name + " $2"
		}
	case DefFunction:
		if d.Template == "" {
			d.Template = d.Name + "($*)"
		}
	}
	if d.Emit == nil {
		d.Emit = deriveEmitter(d)
	}
}

// deriveEmitter creates an Emitter that calls d.Eval.
func deriveEmitter(d *Definition) Emitter {
	if d.Kind == DefConstant {
		v := d.Value
		return func([]Thunk) Thunk {
			return func([]float64) float64 { return v }
		}
	}
	eval := d.Eval
	return func(operands []Thunk) Thunk {
		switch len(operands) {
		case 1:
			x := operands[0]
			return func(args []float64) float64 { return eval(x(args)) }
		case 2:
			x, y := operands[0], operands[1]
			return func(args []float64) float64 { return eval(x(args), y(args)) }
		}
		return func(args []float64) float64 {
			v := make([]float64, len(operands))
			for i, f := range operands {
				v[i] = f(args)
			}
			return eval(v...)
		}
	}
}

// DefOption is an option for the Registry.Add* builders.
type DefOption interface {
	defOption(*Definition)
}

type (
	impureopt   struct{}
	templateopt string
	emitopt     Emitter
)

// Impure marks a definition as excluded from constant folding.
func Impure() DefOption {
	return impureopt{}
}

func (impureopt) defOption(d *Definition) {
	d.Impure = true
}

// WithTemplate sets the template used to render the definition as text.
func WithTemplate(tmpl string) DefOption {
	return templateopt(tmpl)
}

func (o templateopt) defOption(d *Definition) {
	d.Template = string(o)
}

// WithEmitter sets the Emitter used to compile the definition.
func WithEmitter(e Emitter) DefOption {
	return emitopt(e)
}

func (o emitopt) defOption(d *Definition) {
	d.Emit = Emitter(o)
}

// Registry holds the definitions available to expressions. A frozen Registry
// cannot be changed and is safe for concurrent use. An unfrozen Registry must
// not be changed while it is used to parse. The zero Registry is empty and
// ready to use.
type Registry struct {
	// names holds constants and functions.
	names map[string]*Definition
	// unary and binary hold operators by symbol.
	unary  map[string]*Definition
	binary map[string]*Definition
	frozen bool
}

// NewRegistry creates an empty, unfrozen registry. Most callers want
// Base().Clone() instead.
func NewRegistry() *Registry {
	return &Registry{
		names:  make(map[string]*Definition),
		unary:  make(map[string]*Definition),
		binary: make(map[string]*Definition),
	}
}

// table returns the table holding definitions of kind k, creating the tables
// of a zero Registry.
func (r *Registry) table(k DefKind) map[string]*Definition {
	if r.names == nil {
		r.names = make(map[string]*Definition)
		r.unary = make(map[string]*Definition)
		r.binary = make(map[string]*Definition)
	}
	switch k {
	case DefUnary:
		return r.unary
	case DefBinary:
		return r.binary
	default:
		return r.names
	}
}

// Get returns the definition with the given name. Constants and functions are
// preferred over binary operators, and binary over unary ones. The result is
// nil if there is no such definition. The result must not be modified.
func (r *Registry) Get(name string) *Definition {
	if d := r.names[name]; d != nil {
		return d
	}
	if d := r.binary[name]; d != nil {
		return d
	}
	return r.unary[name]
}

// Ident returns the constant or function with the given name, or nil.
func (r *Registry) Ident(name string) *Definition {
	return r.names[name]
}

// Unary returns the unary operator with the given symbol, or nil.
func (r *Registry) Unary(sym string) *Definition {
	return r.unary[sym]
}

// Binary returns the binary operator with the given symbol, or nil.
func (r *Registry) Binary(sym string) *Definition {
	return r.binary[sym]
}

func (r *Registry) isOperator(sym string) bool {
	return r.unary[sym] != nil || r.binary[sym] != nil
}

// Add adds a definition. The definition is copied. Names must be unique among
// constants and functions, among unary operators, and among binary operators.
func (r *Registry) Add(d *Definition) error {
	if d == nil {
		return &RegistrationError{Msg: "nil definition"}
	}
	if r.frozen {
		return &RegistrationError{Name: d.Name, Msg: "registry is frozen"}
	}
	if err := d.validate(); err != nil {
		return &RegistrationError{Name: d.Name, Msg: "invalid " + d.Kind.String(), Err: err}
	}
	t := r.table(d.Kind)
	if old := t[d.Name]; old != nil {
		return &RegistrationError{Name: d.Name, Msg: "already defined as a " + old.Kind.String()}
	}
	c := *d
	c.normalize()
	t[c.Name] = &c
	return nil
}

// AddConstant adds a constant.
func (r *Registry) AddConstant(name string, value float64, opts ...DefOption) error {
	d := &Definition{Kind: DefConstant, Name: name, Value: value}
	for _, opt := range opts {
		opt.defOption(d)
	}
	return r.Add(d)
}

// AddUnaryOperator adds a prefix operator.
func (r *Registry) AddUnaryOperator(sym string, prec int, fn func(x float64) float64, opts ...DefOption) error {
	d := &Definition{Kind: DefUnary, Name: sym, Precedence: prec}
	if fn != nil {
		d.Eval = func(args ...float64) float64 { return fn(args[0]) }
		d.Emit = func(operands []Thunk) Thunk {
			x := operands[0]
			return func(args []float64) float64 { return fn(x(args)) }
		}
	}
	for _, opt := range opts {
		opt.defOption(d)
	}
	return r.Add(d)
}

// AddBinaryOperator adds an infix operator.
func (r *Registry) AddBinaryOperator(sym string, prec int, assoc Assoc, fn func(x, y float64) float64, opts ...DefOption) error {
	d := &Definition{Kind: DefBinary, Name: sym, Precedence: prec, Assoc: assoc}
	if fn != nil {
		d.Eval = func(args ...float64) float64 { return fn(args[0], args[1]) }
		d.Emit = func(operands []Thunk) Thunk {
			x, y := operands[0], operands[1]
			return func(args []float64) float64 { return fn(x(args), y(args)) }
		}
	}
	for _, opt := range opts {
		opt.defOption(d)
	}
	return r.Add(d)
}

// AddFunction adds a function accepting minArgs to maxArgs arguments. Use a
// negative maxArgs for no upper bound.
func (r *Registry) AddFunction(name string, minArgs, maxArgs int, fn func(args ...float64) float64, opts ...DefOption) error {
	d := &Definition{Kind: DefFunction, Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Eval: fn}
	for _, opt := range opts {
		opt.defOption(d)
	}
	return r.Add(d)
}

// Remove deletes every definition with the given name, which may be both a
// unary and a binary operator. Expressions already parsed keep using the
// removed definitions.
func (r *Registry) Remove(name string) error {
	if r.frozen {
		return &RegistrationError{Name: name, Msg: "registry is frozen"}
	}
	found := false
	for _, t := range []map[string]*Definition{r.names, r.unary, r.binary} {
		if _, ok := t[name]; ok {
			delete(t, name)
			found = true
		}
	}
	if !found {
		return &RegistrationError{Name: name, Msg: "not defined"}
	}
	return nil
}

// Clone creates an unfrozen copy of the registry. Changes to either registry
// are not visible in the other.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		names:  copydefs(r.names),
		unary:  copydefs(r.unary),
		binary: copydefs(r.binary),
	}
	return c
}

func copydefs(t map[string]*Definition) map[string]*Definition {
	m := make(map[string]*Definition, len(t))
	for k, d := range t {
		c := *d
		m[k] = &c
	}
	return m
}

// Freeze makes the registry immutable. Freezing a frozen registry does
// nothing.
func (r *Registry) Freeze() *Registry {
	r.frozen = true
	return r
}

// Frozen reports whether the registry is frozen.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Names returns the names of all definitions in sorted order. Symbols used by
// both a unary and a binary operator appear once.
func (r *Registry) Names() []string {
	seen := make(map[string]bool, len(r.names)+len(r.unary)+len(r.binary))
	var names []string
	for _, t := range []map[string]*Definition{r.names, r.unary, r.binary} {
		for k := range t {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sortstrs(names)
	return names
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}
