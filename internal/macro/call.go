package macro

import (
	"strconv"
	"strings"
)

type argKind int

const (
	argString argKind = iota
	argInt
	argBool
)

// Arg is one typed macro argument.
type Arg struct {
	kind argKind
	str  string
	num  int64
	flag bool
}

// String builds a string argument.
func String(value string) Arg { return Arg{kind: argString, str: value} }

// Int builds an integer argument.
func Int(value int64) Arg { return Arg{kind: argInt, num: value} }

// Bool builds a boolean argument, rendered as 0 or 1.
func Bool(value bool) Arg { return Arg{kind: argBool, flag: value} }

// Value returns the argument as a Go value (string, int64, or bool).
func (a Arg) Value() any {
	switch a.kind {
	case argInt:
		return a.num
	case argBool:
		return a.flag
	default:
		return a.str
	}
}

func (a Arg) render() string {
	switch a.kind {
	case argInt:
		return strconv.FormatInt(a.num, 10)
	case argBool:
		if a.flag {
			return "1"
		}
		return "0"
	default:
		return quote(a.str)
	}
}

// quote renders a C++ string literal.
func quote(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Call names a macro file and the arguments its entry function receives.
type Call struct {
	Macro string
	Args  []Arg
}

// Expression renders the call in ROOT's command-line macro syntax, e.g.
// scripts/extract_fit_results.cc("list.txt","fits.csv",0).
func (c Call) Expression() string {
	parts := make([]string, len(c.Args))
	for i, arg := range c.Args {
		parts[i] = arg.render()
	}
	return c.Macro + "(" + strings.Join(parts, ",") + ")"
}

// Values returns the Go values of the call arguments in order.
func (c Call) Values() []any {
	values := make([]any, len(c.Args))
	for i, arg := range c.Args {
		values[i] = arg.Value()
	}
	return values
}
