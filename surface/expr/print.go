package expr

import (
	"strconv"
	"strings"
)

// String returns the canonical, fully parenthesised form of the expression. Expressions with the
// same structure print identically regardless of spacing or implicit multiplication in the source.
func (e *Expr) String() string {
	var sb strings.Builder
	format(&sb, e.Root)
	return sb.String()
}

// Format prints a single node in canonical form.
func Format(n Node) string {
	var sb strings.Builder
	format(&sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Constant:
		if n.Name != "" {
			sb.WriteString(n.Name)
			return
		}
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *Variable:
		sb.WriteString(n.Name)
	case *Unary:
		sb.WriteString("(")
		sb.WriteByte(n.Op)
		format(sb, n.X)
		sb.WriteString(")")
	case *Binary:
		sb.WriteString("(")
		format(sb, n.Left)
		sb.WriteString(" ")
		sb.WriteByte(n.Op)
		sb.WriteString(" ")
		format(sb, n.Right)
		sb.WriteString(")")
	case *Call:
		sb.WriteString(n.Name)
		sb.WriteString("(")
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, a)
		}
		sb.WriteString(")")
	case nil:
		sb.WriteString("<nil>")
	}
}
