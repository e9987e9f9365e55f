package expr

// Bindings assigns values to the free variables.
type Bindings struct {
	X, Y float64
}

// Evaluate evaluates e at b.
//
// It always returns a number. Domain errors are not reported: sqrt(-1) is NaN, ln(0) is -Inf,
// 1/0 is +Inf, following IEEE 754. Callers that need validity check the result with math.IsNaN and
// math.IsInf; the sampler relies on this to mark grid cells invalid instead of aborting a pass.
func Evaluate(e *Expr, b Bindings) float64 {
	return e.Eval(b.X, b.Y)
}

// Eval evaluates the expression at (x, y). See Evaluate.
func (e *Expr) Eval(x, y float64) float64 {
	return e.Root.Eval(x, y)
}

// EvalGrid evaluates the expression over the cartesian product of xs and ys.
// The result is indexed out[j][i] = f(xs[i], ys[j]).
func (e *Expr) EvalGrid(xs, ys []float64) [][]float64 {
	flat := make([]float64, len(xs)*len(ys))
	e.EvalGridInto(flat, xs, ys)
	out := make([][]float64, len(ys))
	for j := range ys {
		out[j] = flat[j*len(xs) : (j+1)*len(xs) : (j+1)*len(xs)]
	}
	return out
}

// EvalGridInto is EvalGrid writing row-major into dst, which must hold len(xs)*len(ys) values.
// Disjoint dst slices may be filled concurrently from different goroutines.
func (e *Expr) EvalGridInto(dst []float64, xs, ys []float64) {
	n := len(xs)
	if len(dst) < n*len(ys) {
		panic("expr: EvalGridInto destination too short")
	}
	root := e.Root
	for j, y := range ys {
		row := dst[j*n : (j+1)*n]
		for i, x := range xs {
			row[i] = root.Eval(x, y)
		}
	}
}
