package expr

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokPercent
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

var singleCharTokens = map[byte]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'^': tokCaret,
	'%': tokPercent,
	'(': tokLParen,
	')': tokRParen,
	',': tokComma,
}

// knownNames is every identifier the tokenizer may split a run into, longest first.
var knownNames = func() []string {
	names := append(FuncNames(), "x", "y")
	for c := range constants {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

func tokenize(s string) ([]token, *ParseError) {
	var out []token
	i := 0
	for i < len(s) {
		c := s[i]
		if isSpace(c) {
			i++
			continue
		}
		if k, ok := singleCharTokens[c]; ok {
			out = append(out, token{kind: k, text: s[i : i+1], pos: i})
			i++
			continue
		}
		if isIdentStart(c) {
			start := i
			for i < len(s) && isIdentContinue(s[i]) {
				i++
			}
			off := start
			for _, part := range splitIdent(s[start:i]) {
				out = append(out, token{kind: tokIdent, text: part, pos: off})
				off += len(part)
			}
			continue
		}
		if c == '.' || isDigit(c) {
			end := scanNumber(s, i)
			if end == i {
				return nil, errorf(UnexpectedToken, i, "unexpected %q", string(c))
			}
			txt := s[i:end]
			f, err := strconv.ParseFloat(txt, 64)
			if err != nil {
				// Only range errors reach here; ParseFloat still returns ±Inf for them.
				if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
					return nil, errorf(UnexpectedToken, i, "malformed number %q", txt)
				}
			}
			out = append(out, token{kind: tokNumber, text: txt, num: f, pos: i})
			i = end
			continue
		}
		r, _ := utf8.DecodeRuneInString(s[i:])
		return nil, errorf(UnexpectedToken, i, "unexpected character %q", r)
	}
	out = append(out, token{kind: tokEOF, pos: len(s)})
	return out, nil
}

// splitIdent breaks an identifier run into known names by greedy longest match, so "xy" reads as
// x times y. Runs that cannot be consumed entirely are returned whole for validation to reject.
func splitIdent(run string) []string {
	if isKnownName(run) {
		return []string{run}
	}
	var parts []string
	for rest := run; rest != ""; {
		match := ""
		for _, n := range knownNames {
			if strings.HasPrefix(rest, n) {
				match = n
				break
			}
		}
		if match == "" {
			return []string{run}
		}
		parts = append(parts, match)
		rest = rest[len(match):]
	}
	return parts
}

// scanNumber returns the end of the numeric literal starting at i, or i if there is none.
// The exponent is only consumed when digits follow it, so "2e" lexes as 2 followed by e.
func scanNumber(s string, i int) int {
	start := i
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return start
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentContinue(c byte) bool { return isIdentStart(c) || isDigit(c) }
