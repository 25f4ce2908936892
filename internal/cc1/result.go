package cc1

import "fmt"

// BreakKind is an abnormal exit of a statement.
type BreakKind int

const (
	breakKindInvalid BreakKind = iota

	BreakKindBreak
	BreakKindContinue
	BreakKindReturn
)

var breakKindValueMap = map[BreakKind]string{
	BreakKindBreak:    "break",
	BreakKindContinue: "continue",
	BreakKindReturn:   "return",
}

func (k BreakKind) String() string {
	v, ok := breakKindValueMap[k]
	if !ok {
		return fmt.Sprintf("invalid(%d)", k)
	}

	return v
}

// Result is how a statement finished: it either completed or broke out with a break
// kind. The zero value is a completion.
type Result struct {
	kind BreakKind
}

// Completed returns the result of a statement that ran to its end.
func Completed() Result {
	return Result{}
}

// BrokeWith returns the result of a statement that broke out.
func BrokeWith(kind BreakKind) Result {
	if _, ok := breakKindValueMap[kind]; !ok {
		panic(fmt.Errorf("break with %s", kind))
	}
	return Result{kind: kind}
}

// IsCompleted tells whether the statement ran to its end.
func (r Result) IsCompleted() bool { return r.kind == breakKindInvalid }

// Kind returns the break kind. It is not valid for completed results.
func (r Result) Kind() BreakKind { return r.kind }

func (r Result) IsBreak() bool    { return r.kind == BreakKindBreak }
func (r Result) IsContinue() bool { return r.kind == BreakKindContinue }
func (r Result) IsReturn() bool   { return r.kind == BreakKindReturn }

func (r Result) String() string {
	if r.IsCompleted() {
		return "completed"
	}
	return "broke with " + r.kind.String()
}
