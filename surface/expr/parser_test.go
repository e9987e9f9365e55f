package expr

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1+2*3", want: "(1 + (2 * 3))"},
		{in: "1*2+3", want: "((1 * 2) + 3)"},
		{in: "1-2-3", want: "((1 - 2) - 3)"},
		{in: "2^3^2", want: "(2 ^ (3 ^ 2))"},
		{in: "-x^2", want: "(-(x ^ 2))"},
		{in: "2^-1", want: "(2 ^ (-1))"},
		{in: "-2*x", want: "((-2) * x)"},
		{in: "x%2*y", want: "((x % 2) * y)"},
		{in: "x/y/2", want: "((x / y) / 2)"},
		{in: "+x", want: "x"},
		{in: "--x", want: "(-(-x))"},
		{in: "e^x", want: "(e ^ x)"},
		{in: "exp(x)", want: "exp(x)"},
		{in: "atan2(y, x)", want: "atan2(y, x)"},
		{in: "log10(x)", want: "log10(x)"},
		{in: "1.5e3", want: "1500"},
		{in: ".5", want: "0.5"},
		{in: "sin(x) * cos(y)", want: "(sin(x) * cos(y))"},
	}
	for _, tt := range tests {
		e, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.in, err)
		}
		if got := e.String(); got != tt.want {
			t.Fatalf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParse_ImplicitMultiplication(t *testing.T) {
	tests := []struct {
		in       string
		explicit string
	}{
		{in: "2x", explicit: "2*x"},
		{in: "2 x", explicit: "2*x"},
		{in: "2(x+1)", explicit: "2*(x+1)"},
		{in: "(x)(y)", explicit: "x*y"},
		{in: "x y", explicit: "x*y"},
		{in: "xy", explicit: "x*y"},
		{in: "x(y+1)", explicit: "x*(y+1)"},
		{in: "2pix", explicit: "2*pi*x"},
		{in: "2x^2", explicit: "2*(x^2)"},
		{in: "sin(x)cos(y)", explicit: "sin(x)*cos(y)"},
		{in: "xsin(y)", explicit: "x*sin(y)"},
		{in: "-2x", explicit: "(-2)*x"},
	}
	for _, tt := range tests {
		a, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.in, err)
		}
		b, err := Parse(tt.explicit)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.explicit, err)
		}
		if a.String() != b.String() {
			t.Fatalf("Parse(%q) = %s, want %s (from %q)", tt.in, a.String(), b.String(), tt.explicit)
		}
		if av, bv := a.Eval(1.25, -0.5), b.Eval(1.25, -0.5); av != bv {
			t.Fatalf("Eval(%q) = %v, Eval(%q) = %v", tt.in, av, tt.explicit, bv)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		in     string
		kind   ErrorKind
		offset int
		is     error
	}{
		{in: "", kind: EmptyExpression, offset: 0, is: ErrEmptyExpression},
		{in: "   ", kind: EmptyExpression, offset: 0, is: ErrEmptyExpression},
		{in: "foo(x)", kind: UnknownFunction, offset: 0, is: ErrUnknownFunction},
		{in: "x + bar(1)", kind: UnknownFunction, offset: 4, is: ErrUnknownFunction},
		{in: "atan2(x)", kind: ArityMismatch, offset: 0, is: ErrArityMismatch},
		{in: "1 + sin(x, y)", kind: ArityMismatch, offset: 4, is: ErrArityMismatch},
		{in: "sin()", kind: ArityMismatch, offset: 0, is: ErrArityMismatch},
		{in: "x + z", kind: UnknownVariable, offset: 4, is: ErrUnknownVariable},
		{in: "xz", kind: UnknownVariable, offset: 0, is: ErrUnknownVariable},
		{in: "(x + 1", kind: UnmatchedParen, offset: 0, is: ErrUnmatchedParen},
		{in: "sin(x", kind: UnmatchedParen, offset: 3, is: ErrUnmatchedParen},
		{in: "x + 1)", kind: UnmatchedParen, offset: 5, is: ErrUnmatchedParen},
		{in: "sin(x))", kind: UnmatchedParen, offset: 6, is: ErrUnmatchedParen},
		{in: "x +", kind: UnexpectedToken, offset: 3, is: ErrUnexpectedToken},
		{in: "x # y", kind: UnexpectedToken, offset: 2, is: ErrUnexpectedToken},
		{in: "2 3", kind: UnexpectedToken, offset: 2, is: ErrUnexpectedToken},
		{in: "2 . 3", kind: UnexpectedToken, offset: 2, is: ErrUnexpectedToken},
		{in: "sin x", kind: UnexpectedToken, offset: 0, is: ErrUnexpectedToken},
		{in: "()", kind: UnexpectedToken, offset: 1, is: ErrUnexpectedToken},
		{in: "x*/y", kind: UnexpectedToken, offset: 2, is: ErrUnexpectedToken},
		{in: "(x, y)", kind: UnexpectedToken, offset: 2, is: ErrUnexpectedToken},
	}
	for _, tt := range tests {
		_, err := Parse(tt.in)
		if err == nil {
			t.Fatalf("Parse(%q) error = nil, want %v", tt.in, tt.kind)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Parse(%q) error %T is not *ParseError", tt.in, err)
		}
		if perr.Kind != tt.kind || perr.Offset != tt.offset {
			t.Fatalf("Parse(%q) = %v at %d, want %v at %d (%v)", tt.in, perr.Kind, perr.Offset, tt.kind, tt.offset, err)
		}
		if !errors.Is(err, tt.is) || !errors.Is(err, ErrParse) {
			t.Fatalf("Parse(%q) error %v does not match %v / ErrParse", tt.in, err, tt.is)
		}
		if perr.Msg == "" {
			t.Fatalf("Parse(%q) error has empty message", tt.in)
		}
	}
}

func TestParse_NonASCIICharacter(t *testing.T) {
	_, err := Parse("x + é")
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != UnexpectedToken || perr.Offset != 4 {
		t.Fatalf("Parse(%q) = %v, want UnexpectedToken at 4", "x + é", err)
	}
	if !strings.Contains(perr.Msg, "'é'") {
		t.Fatalf("message = %q, want the decoded character", perr.Msg)
	}
}

func TestParse_Deterministic(t *testing.T) {
	inputs := []string{
		"x+y",
		"sin(x) * cos(y)",
		"2x^2 - 3xy + atan2(y, x)",
		"sqrt(x^2 + y^2) % 1.5",
		"exp(-(x^2 + y^2))",
	}
	for _, in := range inputs {
		a, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		b, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		if diff := cmp.Diff(a, b); diff != "" {
			t.Fatalf("Parse(%q) not deterministic (-first +second):\n%s", in, diff)
		}
	}
}

func TestParse_Vars(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "x+y", want: []string{"x", "y"}},
		{in: "y*y", want: []string{"y"}},
		{in: "sin(x)", want: []string{"x"}},
		{in: "pi*e", want: []string{}},
	}
	for _, tt := range tests {
		e, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, e.Vars); diff != "" {
			t.Fatalf("Parse(%q).Vars (-want +got):\n%s", tt.in, diff)
		}
	}
	if e := MustParse("x*2"); !e.Uses("x") || e.Uses("y") {
		t.Fatalf("Uses mismatch for %q: %v", e.Source, e.Vars)
	}
}

func TestParse_Offsets(t *testing.T) {
	e := MustParse("2 * sin(x)")
	b, ok := e.Root.(*Binary)
	if !ok {
		t.Fatalf("root = %T, want *Binary", e.Root)
	}
	if b.Offset() != 2 {
		t.Fatalf("operator offset = %d, want 2", b.Offset())
	}
	if c, ok := b.Right.(*Call); !ok || c.Offset() != 4 || c.Func != FuncSin {
		t.Fatalf("right = %#v, want sin call at 4", b.Right)
	}
}

func TestTokenize_SplitIdent(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "x", want: []string{"x"}},
		{in: "xy", want: []string{"x", "y"}},
		{in: "pix", want: []string{"pi", "x"}},
		{in: "log10", want: []string{"log10"}},
		{in: "atan2", want: []string{"atan2"}},
		{in: "sinhx", want: []string{"sinh", "x"}},
		{in: "foo", want: []string{"foo"}},
		{in: "x2", want: []string{"x2"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitIdent(tt.in)); diff != "" {
			t.Fatalf("splitIdent(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestLookupFunc(t *testing.T) {
	for _, name := range FuncNames() {
		f, ok := LookupFunc(name)
		if !ok || f.String() != name {
			t.Fatalf("LookupFunc(%q) = %v, %v", name, f, ok)
		}
	}
	if _, ok := LookupFunc("foo"); ok {
		t.Fatalf("LookupFunc(foo) ok = true")
	}
	if FuncAtan2.Arity() != 2 || FuncSin.Arity() != 1 {
		t.Fatalf("arity table mismatch")
	}
}
