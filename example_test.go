package formula_test

import (
	"fmt"
	"math"

	"github.com/zephyrtronium/formula"
)

func ExampleExpr_Compile() {
	e := formula.MustParse("x / y")
	f, err := e.Compile("x", "y")
	if err != nil {
		panic(err)
	}
	fmt.Println(f(8, 2))
	fmt.Println(f(1, 4))

	// Output:
	// 4
	// 0.25
}

func ExampleExpr_Fold() {
	e := formula.MustParse("a * x + b")
	fmt.Println(e, e.Vars())
	e.Fold(map[string]float64{"a": 2, "b": 1})
	fmt.Println(e, e.Vars())

	// Output:
	// ((a * x) + b) [a b x]
	// ((2 * x) + 1) [x]
}

func ExampleRegistry_Clone() {
	reg := formula.Base().Clone()
	if err := reg.AddBinaryOperator("**", 2, formula.RightAssoc, math.Pow); err != nil {
		panic(err)
	}
	fmt.Println(formula.MustParse("2 ** 3 ** 2", formula.WithRegistry(reg)))
	fmt.Println(formula.MustParse("x ** 3 ** 2", formula.WithRegistry(reg)))
	fmt.Println(formula.MustParse("(x ** 3) ** 2", formula.WithRegistry(reg)))

	// Output:
	// 512
	// (x ** 9)
	// ((x ** 3) ** 2)
}

func ExampleAllowVars() {
	_, err := formula.Parse("sin(z)", formula.AllowVars("x", "y"))
	fmt.Println(err)

	// Output:
	// 4: variable "z" is not allowed
}

func ExampleInputError() {
	for _, src := range []string{"2 $ 3", "(1 + 2", "sin(1, 2)"} {
		_, err := formula.Parse(src)
		if ie, ok := err.(formula.InputError); ok {
			fmt.Printf("%-10q at %d: %v\n", src, ie.Pos(), err)
		}
	}

	// Output:
	// "2 $ 3"    at 2: 2: invalid character '$'
	// "(1 + 2"   at 6: 6: unexpected end of input, expected ")"
	// "sin(1, 2)" at 0: 0: sin accepts exactly 1 argument, got 2
}
