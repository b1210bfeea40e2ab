//go:build go1.18
// +build go1.18

package formula_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/zephyrtronium/formula"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("1 + 2 * 3")
	f.Add("a ? b : c ? d : e")
	f.Add("max(x, -.5e3, sin(y))")
	f.Add("!!x <= y != 1e")
	f.Fuzz(func(t *testing.T, s string) {
		e, err := formula.Parse(s)
		if err != nil {
			var ie formula.InputError
			if !errors.As(err, &ie) {
				t.Fatalf("%q gave %T, not InputError: %v", s, err, err)
			}
			return
		}
		r := e.String()
		g, err := formula.Parse(r)
		if err != nil {
			t.Fatalf("%q rendered as %q, which failed to parse: %v", s, r, err)
		}
		if q := g.String(); q != r {
			t.Errorf("%q rendered as %q, then %q", s, r, q)
		}
	})
}

func FuzzEval(f *testing.F) {
	f.Add("x", 1.0, 2.0)
	f.Add("x / y", 0.0, 0.0)
	f.Add("x > y ? x : y", -1.0, 3.0)
	f.Add("round(x) % y", 2.5, -1.0)
	f.Fuzz(func(t *testing.T, s string, x, y float64) {
		e, err := formula.Parse(s, formula.AllowVars("x", "y"))
		if err != nil {
			return
		}
		vars := map[string]float64{"x": x, "y": y}
		r := e.Eval(vars)
		if q := e.Interpret(vars); !same(r, q) {
			t.Errorf("%q with %v: Eval gave %g, Interpret gave %g", s, vars, r, q)
		}
		p, err := e.Compile("x", "y")
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if q := p(x, y); !same(r, q) {
			t.Errorf("%q with %v: Eval gave %g, compiled gave %g", s, vars, r, q)
		}
	})
}
