// Package expr parses and evaluates real-valued formulas in x and y.
//
// Grammar, lowest precedence first:
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/" | "%") unary | implicit unary }
//	unary   = ("-" | "+") unary | power
//	power   = primary [ "^" unary ]
//	primary = number | name | name "(" args ")" | "(" sum ")"
//
// Implicit multiplication applies after a number, ')' or variable when the next token is a name
// or '(': "2x", "2(x+1)", "x y". Identifier runs such as "xy" or "2pix" are split into known names
// by greedy longest match.
//
// Evaluation never fails: domain errors produce NaN or ±Inf.
package expr
