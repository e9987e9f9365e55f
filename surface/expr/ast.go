package expr

import "math"

// Node is an expression tree node. Children are owned by their parent; trees never share nodes.
type Node interface {
	// Eval evaluates the subtree at (x, y). It never fails; see Evaluate.
	Eval(x, y float64) float64
	// Offset is the byte offset of the node's leading token in the source.
	Offset() int
}

// Constant is a numeric literal or a named constant (pi, e).
type Constant struct {
	Value float64
	Name  string // empty for literals
	Pos   int
}

// Variable references x or y.
type Variable struct {
	Name string
	Pos  int
}

// Unary is a prefix operator. Op is always '-'.
type Unary struct {
	Op  byte
	X   Node
	Pos int
}

// Binary is an infix operator: one of + - * / ^ %.
type Binary struct {
	Op          byte
	Left, Right Node
	Pos         int
}

// Call applies a built-in function. Func is FuncInvalid while Name is unresolved; such calls never
// survive validation.
type Call struct {
	Func Func
	Name string
	Args []Node
	Pos  int
}

func (n *Constant) Offset() int { return n.Pos }
func (n *Variable) Offset() int { return n.Pos }
func (n *Unary) Offset() int    { return n.Pos }
func (n *Binary) Offset() int   { return n.Pos }
func (n *Call) Offset() int     { return n.Pos }

func (n *Constant) Eval(_, _ float64) float64 { return n.Value }

func (n *Variable) Eval(x, y float64) float64 {
	if n.Name == "y" {
		return y
	}
	return x
}

func (n *Unary) Eval(x, y float64) float64 {
	v := n.X.Eval(x, y)
	if n.Op == '-' {
		return -v
	}
	return v
}

func (n *Binary) Eval(x, y float64) float64 {
	a := n.Left.Eval(x, y)
	b := n.Right.Eval(x, y)
	switch n.Op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		return a / b
	case '^':
		return math.Pow(a, b)
	case '%':
		return math.Mod(a, b)
	default:
		return math.NaN()
	}
}

func (n *Call) Eval(x, y float64) float64 {
	switch len(n.Args) {
	case 1:
		return n.Func.apply(n.Args[0].Eval(x, y), 0)
	case 2:
		return n.Func.apply(n.Args[0].Eval(x, y), n.Args[1].Eval(x, y))
	default:
		return math.NaN()
	}
}

// walk visits every node depth-first, parents before children.
func walk(n Node, fn func(Node) error) error {
	if n == nil {
		return nil
	}
	if err := fn(n); err != nil {
		return err
	}
	switch n := n.(type) {
	case *Unary:
		return walk(n.X, fn)
	case *Binary:
		if err := walk(n.Left, fn); err != nil {
			return err
		}
		return walk(n.Right, fn)
	case *Call:
		for _, a := range n.Args {
			if err := walk(a, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
