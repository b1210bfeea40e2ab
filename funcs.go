package formula

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
	"github.com/zephyrtronium/bigfloat"
)

// CondPrecedence is the precedence of the conditional operator c ? a : b. It
// binds more loosely than comparisons and more tightly than && and ||.
const CondPrecedence = 11

// maxSafeInt is the largest integer n such that n and n+1 are exactly
// representable as float64.
const maxSafeInt = 1<<53 - 1

var base = newBase()

// Base returns the default registry. It is frozen; use Base().Clone() to
// extend it.
//
// The default registry contains:
//
//	unary (3):            -  !
//	binary:               * / % (5)  + - (6)  < <= > >= (8)  == != ~= (9)  && (13)  || (14)
//	conditional (11):     c ? a : b
//	functions of one:     isnan isinf isfinite isint issafeint sign round trunc floor ceil
//	                      abs frac sqrt cbrt exp expm1 log log2 log10 sin cos tan sinh cosh
//	                      tanh asin acos atan asinh acosh atanh
//	functions of two:     pow atan2 hypot isequal
//	functions of three:   isbetween(x, min, max) clamp(x, min, max)
//	functions of 2 or more: min max minval maxval
//	constants:            Infinity NaN PI E
//
// Comparison and logical operators produce 1 for true and 0 for false. Any
// value other than 0 and NaN is true.
func Base() *Registry {
	return base
}

func newBase() *Registry {
	r := NewRegistry()
	must := func(err error) {
		if err != nil {
			panic(errors.Wrap(err, "formula: building default registry"))
		}
	}

	must(r.AddUnaryOperator("-", 3, func(x float64) float64 { return -x }))
	must(r.AddUnaryOperator("!", 3, func(x float64) float64 { return bool2f(!truth(x)) }))

	must(r.AddBinaryOperator("*", 5, LeftAssoc, func(x, y float64) float64 { return x * y }))
	must(r.AddBinaryOperator("/", 5, LeftAssoc, func(x, y float64) float64 { return x / y }))
	must(r.AddBinaryOperator("%", 5, LeftAssoc, math.Mod))
	must(r.AddBinaryOperator("+", 6, LeftAssoc, func(x, y float64) float64 { return x + y }))
	must(r.AddBinaryOperator("-", 6, LeftAssoc, func(x, y float64) float64 { return x - y }))
	must(r.AddBinaryOperator("<", 8, LeftAssoc, func(x, y float64) float64 { return bool2f(x < y) }))
	must(r.AddBinaryOperator("<=", 8, LeftAssoc, func(x, y float64) float64 { return bool2f(x <= y) }))
	must(r.AddBinaryOperator(">", 8, LeftAssoc, func(x, y float64) float64 { return bool2f(x > y) }))
	must(r.AddBinaryOperator(">=", 8, LeftAssoc, func(x, y float64) float64 { return bool2f(x >= y) }))
	must(r.AddBinaryOperator("==", 9, LeftAssoc, func(x, y float64) float64 { return bool2f(x == y) }))
	must(r.AddBinaryOperator("!=", 9, LeftAssoc, func(x, y float64) float64 { return bool2f(x != y) }))
	must(r.AddBinaryOperator("~=", 9, LeftAssoc, func(x, y float64) float64 { return bool2f(sameValue(x, y)) }))
	must(r.AddBinaryOperator("&&", 13, LeftAssoc, func(x, y float64) float64 { return bool2f(truth(x) && truth(y)) }))
	must(r.AddBinaryOperator("||", 14, LeftAssoc, func(x, y float64) float64 { return bool2f(truth(x) || truth(y)) }))

	monadic := []struct {
		name string
		f    func(float64) float64
	}{
		{"isnan", func(x float64) float64 { return bool2f(math.IsNaN(x)) }},
		{"isinf", func(x float64) float64 { return bool2f(math.IsInf(x, 0)) }},
		{"isfinite", func(x float64) float64 { return bool2f(isfinite(x)) }},
		{"isint", func(x float64) float64 { return bool2f(isint(x)) }},
		{"issafeint", func(x float64) float64 { return bool2f(isint(x) && math.Abs(x) <= maxSafeInt) }},
		{"sign", sign},
		{"round", round},
		{"trunc", math.Trunc},
		{"floor", math.Floor},
		{"ceil", math.Ceil},
		{"abs", math.Abs},
		{"frac", func(x float64) float64 { return x - math.Trunc(x) }},
		{"sqrt", math.Sqrt},
		{"cbrt", math.Cbrt},
		{"exp", math.Exp},
		{"expm1", math.Expm1},
		{"log", math.Log},
		{"log2", math.Log2},
		{"log10", math.Log10},
		{"sin", math.Sin},
		{"cos", math.Cos},
		{"tan", math.Tan},
		{"sinh", math.Sinh},
		{"cosh", math.Cosh},
		{"tanh", math.Tanh},
		{"asin", math.Asin},
		{"acos", math.Acos},
		{"atan", math.Atan},
		{"asinh", math.Asinh},
		{"acosh", math.Acosh},
		{"atanh", math.Atanh},
	}
	for _, m := range monadic {
		must(r.AddMonadic(m.name, m.f))
	}

	must(r.AddFunction("pow", 2, 2, func(a ...float64) float64 { return math.Pow(a[0], a[1]) }))
	must(r.AddFunction("atan2", 2, 2, func(a ...float64) float64 { return math.Atan2(a[0], a[1]) }))
	must(r.AddFunction("hypot", 2, 2, func(a ...float64) float64 { return math.Hypot(a[0], a[1]) }))
	must(r.AddFunction("isequal", 2, 2, func(a ...float64) float64 { return bool2f(sameValue(a[0], a[1])) }))
	must(r.AddFunction("isbetween", 3, 3, func(a ...float64) float64 { return bool2f(a[1] <= a[0] && a[0] <= a[2]) }))
	must(r.AddFunction("clamp", 3, 3, func(a ...float64) float64 { return clamp(a[0], a[1], a[2]) }))
	must(r.AddFunction("min", 2, -1, minimum))
	must(r.AddFunction("max", 2, -1, maximum))
	must(r.AddFunction("minval", 2, -1, minval))
	must(r.AddFunction("maxval", 2, -1, maxval))

	must(r.AddConstant("Infinity", math.Inf(1)))
	must(r.AddConstant("NaN", math.NaN()))
	must(r.AddConstant("PI", bigconst(bigfloat.Pi)))
	must(r.AddConstant("E", bigconst(func(out *big.Float) *big.Float {
		var one big.Float
		one.SetFloat64(1)
		return bigfloat.Exp(out, &one)
	})))

	return r.Freeze()
}

// AddMonadic adds a function of exactly one argument.
func (r *Registry) AddMonadic(name string, f func(x float64) float64, opts ...DefOption) error {
	if f == nil {
		return r.AddFunction(name, 1, 1, nil, opts...)
	}
	emit := WithEmitter(func(operands []Thunk) Thunk {
		x := operands[0]
		return func(args []float64) float64 { return f(x(args)) }
	})
	eval := func(args ...float64) float64 { return f(args[0]) }
	return r.AddFunction(name, 1, 1, eval, append([]DefOption{emit}, opts...)...)
}

// constprec is the working precision for constants. It leaves enough guard
// bits past float64's 53 that rounding the result once gives the nearest
// float64 to the true value.
const constprec = 128

// bigconst computes a constant at constprec bits and rounds it to the nearest
// float64.
func bigconst(f func(out *big.Float) *big.Float) float64 {
	r := new(big.Float).SetPrec(constprec)
	f(r)
	v, _ := r.Float64()
	return v
}

// truth is the truth value of x.
func truth(x float64) bool {
	return x != 0 && !math.IsNaN(x)
}

func bool2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// sameValue is equality where NaN equals NaN and -0 equals +0.
func sameValue(x, y float64) bool {
	return x == y || math.IsNaN(x) && math.IsNaN(y)
}

func isfinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func isint(x float64) bool {
	return isfinite(x) && x == math.Trunc(x)
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		// NaN and signed zeros are their own signs.
		return x
	}
}

// round rounds half way cases toward positive infinity, keeping the sign of
// zero results.
func round(x float64) float64 {
	if !isfinite(x) || x == math.Trunc(x) {
		return x
	}
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	if r == 0 {
		return math.Copysign(0, x)
	}
	return r
}

func clamp(x, lo, hi float64) float64 {
	switch {
	case x < lo:
		return lo
	case x > hi:
		return hi
	default:
		return x
	}
}

// minimum is NaN if any argument is NaN. math.Min alone prefers -Inf to NaN.
func minimum(args ...float64) float64 {
	if hasNaN(args) {
		return math.NaN()
	}
	m := args[0]
	for _, v := range args[1:] {
		m = math.Min(m, v)
	}
	return m
}

// maximum is NaN if any argument is NaN. math.Max alone prefers +Inf to NaN.
func maximum(args ...float64) float64 {
	if hasNaN(args) {
		return math.NaN()
	}
	m := args[0]
	for _, v := range args[1:] {
		m = math.Max(m, v)
	}
	return m
}

func hasNaN(args []float64) bool {
	for _, v := range args {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// minval is the minimum of the arguments that are not NaN.
func minval(args ...float64) float64 {
	m := math.NaN()
	for _, v := range args {
		switch {
		case math.IsNaN(v):
		case math.IsNaN(m):
			m = v
		default:
			m = math.Min(m, v)
		}
	}
	return m
}

// maxval is the maximum of the arguments that are not NaN.
func maxval(args ...float64) float64 {
	m := math.NaN()
	for _, v := range args {
		switch {
		case math.IsNaN(v):
		case math.IsNaN(m):
			m = v
		default:
			m = math.Max(m, v)
		}
	}
	return m
}
