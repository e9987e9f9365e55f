package expr

import "math"

// Func identifies one of the built-in functions. The set is closed.
type Func uint8

const (
	FuncInvalid Func = iota
	FuncSin
	FuncCos
	FuncTan
	FuncAsin
	FuncAcos
	FuncAtan
	FuncAtan2
	FuncSinh
	FuncCosh
	FuncTanh
	FuncExp
	FuncLn
	FuncLog
	FuncLog10
	FuncAbs
	FuncSqrt
)

var funcNames = [...]string{
	FuncInvalid: "",
	FuncSin:     "sin",
	FuncCos:     "cos",
	FuncTan:     "tan",
	FuncAsin:    "asin",
	FuncAcos:    "acos",
	FuncAtan:    "atan",
	FuncAtan2:   "atan2",
	FuncSinh:    "sinh",
	FuncCosh:    "cosh",
	FuncTanh:    "tanh",
	FuncExp:     "exp",
	FuncLn:      "ln",
	FuncLog:     "log",
	FuncLog10:   "log10",
	FuncAbs:     "abs",
	FuncSqrt:    "sqrt",
}

func (f Func) String() string {
	if int(f) < len(funcNames) {
		return funcNames[f]
	}
	return "?"
}

// Arity is the exact number of arguments the function takes.
func (f Func) Arity() int {
	if f == FuncAtan2 {
		return 2
	}
	return 1
}

// LookupFunc resolves a function name. It reports false for names outside the built-in set.
func LookupFunc(name string) (Func, bool) {
	for f := FuncSin; int(f) < len(funcNames); f++ {
		if funcNames[f] == name {
			return f, true
		}
	}
	return FuncInvalid, false
}

// FuncNames lists the built-in function names in declaration order.
func FuncNames() []string {
	out := make([]string, 0, len(funcNames)-1)
	for _, n := range funcNames[1:] {
		out = append(out, n)
	}
	return out
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

func isVariableName(name string) bool { return name == "x" || name == "y" }

func isKnownName(name string) bool {
	if isVariableName(name) {
		return true
	}
	if _, ok := constants[name]; ok {
		return true
	}
	_, ok := LookupFunc(name)
	return ok
}

// apply evaluates f. Domain errors follow IEEE semantics (NaN, ±Inf) and never fail.
func (f Func) apply(a, b float64) float64 {
	switch f {
	case FuncSin:
		return math.Sin(a)
	case FuncCos:
		return math.Cos(a)
	case FuncTan:
		return math.Tan(a)
	case FuncAsin:
		return math.Asin(a)
	case FuncAcos:
		return math.Acos(a)
	case FuncAtan:
		return math.Atan(a)
	case FuncAtan2:
		return math.Atan2(a, b)
	case FuncSinh:
		return math.Sinh(a)
	case FuncCosh:
		return math.Cosh(a)
	case FuncTanh:
		return math.Tanh(a)
	case FuncExp:
		return math.Exp(a)
	case FuncLn, FuncLog:
		return math.Log(a)
	case FuncLog10:
		return math.Log10(a)
	case FuncAbs:
		return math.Abs(a)
	case FuncSqrt:
		return math.Sqrt(a)
	default:
		return math.NaN()
	}
}
