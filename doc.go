// Package formula parses and evaluates numeric formulas.
//
// Expressions use the usual infix notation: "2 + 3 * x", "x > 0 ? sqrt(x) :
// 0", "clamp(round(score), 0, 100)". Operators, functions, and constants come
// from a Registry. Base returns the default one, which is frozen; clone it to
// add definitions of your own, such as a right associative "**":
//
//	reg := formula.Base().Clone()
//	reg.AddBinaryOperator("**", 2, formula.RightAssoc, math.Pow)
//	e, err := formula.Parse("2 ** 3 ** 2", formula.WithRegistry(reg))
//
// Parsing folds constant subexpressions unless NoFold is given. Parse an
// expression once, then evaluate it for many inputs, either by name with
// Eval or with a positional function from Compile.
//
// All values are float64. Comparisons produce 1 or 0, and any value other
// than 0 and NaN counts as true.
package formula
