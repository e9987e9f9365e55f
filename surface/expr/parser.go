package expr

import (
	"sort"
	"strings"
)

// Expr is a parsed and validated expression over x and y.
//
// Only Parse constructs an Expr, so every Expr handed to the evaluator has passed validation.
// An Expr is immutable and safe for concurrent evaluation.
type Expr struct {
	Source string
	Root   Node
	// Vars lists the free variables the expression references, sorted ("x", "y" or both).
	Vars []string
}

// Parse tokenizes, parses and validates text.
//
// Errors are always *ParseError.
func Parse(text string) (*Expr, error) {
	toks, perr := tokenize(text)
	if perr != nil {
		return nil, perr
	}
	if len(toks) == 1 {
		return nil, errorf(EmptyExpression, 0, "expression is empty")
	}

	p := &parser{toks: toks}
	p.cur = p.toks[0]
	root, perr := p.parseSum()
	if perr != nil {
		return nil, perr
	}
	switch p.cur.kind {
	case tokEOF:
	case tokRParen:
		return nil, errorf(UnmatchedParen, p.cur.pos, "unmatched ')'")
	default:
		return nil, errorf(UnexpectedToken, p.cur.pos, "unexpected %s", p.cur.describe())
	}

	vars, perr := validate(root)
	if perr != nil {
		return nil, perr
	}
	return &Expr{Source: text, Root: root, Vars: vars}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and package-level defaults.
func MustParse(text string) *Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

// Uses reports whether the expression references the named variable.
func (e *Expr) Uses(name string) bool {
	for _, v := range e.Vars {
		if v == name {
			return true
		}
	}
	return false
}

type parser struct {
	toks []token
	i    int
	cur  token
}

func (p *parser) next() {
	if p.i < len(p.toks)-1 {
		p.i++
	}
	p.cur = p.toks[p.i]
}

func (p *parser) prev() token {
	if p.i == 0 {
		return token{kind: tokEOF}
	}
	return p.toks[p.i-1]
}

// implicitMul reports whether the current token continues a product without an operator: a number,
// ')' or non-function identifier followed by an identifier or '('.
func (p *parser) implicitMul() bool {
	if p.cur.kind != tokIdent && p.cur.kind != tokLParen {
		return false
	}
	switch prev := p.prev(); prev.kind {
	case tokNumber, tokRParen:
		return true
	case tokIdent:
		_, isFunc := LookupFunc(prev.text)
		return !isFunc
	}
	return false
}

func (p *parser) parseSum() (Node, *ParseError) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op.text[0], Left: left, Right: right, Pos: op.pos}
	}
	return left, nil
}

func (p *parser) parseProduct() (Node, *ParseError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op byte
		pos := p.cur.pos
		switch {
		case p.cur.kind == tokStar || p.cur.kind == tokSlash || p.cur.kind == tokPercent:
			op = p.cur.text[0]
			p.next()
		case p.implicitMul():
			op = '*'
		default:
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right, Pos: pos}
	}
}

func (p *parser) parseUnary() (Node, *ParseError) {
	if p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op.kind == tokPlus {
			return x, nil
		}
		return &Unary{Op: '-', X: x, Pos: op.pos}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Node, *ParseError) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokCaret {
		return base, nil
	}
	pos := p.cur.pos
	p.next()
	// Right-associative; the exponent may carry its own sign (2^-x).
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: '^', Left: base, Right: exp, Pos: pos}, nil
}

func (p *parser) parsePrimary() (Node, *ParseError) {
	switch tok := p.cur; tok.kind {
	case tokNumber:
		p.next()
		return &Constant{Value: tok.num, Pos: tok.pos}, nil

	case tokIdent:
		p.next()
		if f, ok := LookupFunc(tok.text); ok {
			if p.cur.kind != tokLParen {
				return nil, errorf(UnexpectedToken, tok.pos, "function %s requires parentheses", tok.text)
			}
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if len(args) != f.Arity() {
				return nil, errorf(ArityMismatch, tok.pos, "%s takes %d argument%s, got %d",
					tok.text, f.Arity(), plural(f.Arity()), len(args))
			}
			return &Call{Func: f, Name: tok.text, Args: args, Pos: tok.pos}, nil
		}
		if v, ok := constants[tok.text]; ok {
			return &Constant{Value: v, Name: tok.text, Pos: tok.pos}, nil
		}
		if !isVariableName(tok.text) && p.cur.kind == tokLParen {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &Call{Name: tok.text, Args: args, Pos: tok.pos}, nil
		}
		return &Variable{Name: tok.text, Pos: tok.pos}, nil

	case tokLParen:
		p.next()
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if err := p.expectClose(tok); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, errorf(UnexpectedToken, tok.pos, "unexpected %s", tok.describe())
	}
}

// parseArgs parses a parenthesised, comma-separated argument list; p.cur is the '('.
func (p *parser) parseArgs() ([]Node, *ParseError) {
	open := p.cur
	p.next()
	var args []Node
	if p.cur.kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		a, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.cur.kind != tokComma {
			break
		}
		p.next()
	}
	if err := p.expectClose(open); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) expectClose(open token) *ParseError {
	switch p.cur.kind {
	case tokRParen:
		p.next()
		return nil
	case tokEOF:
		return errorf(UnmatchedParen, open.pos, "missing ')' for '(' at offset %d", open.pos)
	default:
		return errorf(UnexpectedToken, p.cur.pos, "expected ')', got %s", p.cur.describe())
	}
}

// validate rejects names outside the supported set and collects the free variables.
func validate(root Node) ([]string, *ParseError) {
	seen := map[string]bool{}
	var perr *ParseError
	_ = walk(root, func(n Node) error {
		switch n := n.(type) {
		case *Variable:
			if !isVariableName(n.Name) {
				perr = errorf(UnknownVariable, n.Pos, "unknown variable %q (only x and y are allowed)", n.Name)
				return perr
			}
			seen[n.Name] = true
		case *Call:
			if n.Func == FuncInvalid {
				perr = errorf(UnknownFunction, n.Pos, "unknown function %q (supported: %s)",
					n.Name, strings.Join(FuncNames(), ", "))
				return perr
			}
		}
		return nil
	})
	if perr != nil {
		return nil, perr
	}
	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
