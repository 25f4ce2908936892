package domain

import "fmt"

// Operator is a comparison operator used to narrow, widen and test domains.
type Operator int

const (
	_ Operator = iota
	OpEQ
	OpNE
	OpLT
	OpGT
	OpLE
	OpGE
)

var operatorValueMap = map[Operator]string{
	OpEQ: "==",
	OpNE: "!=",
	OpLT: "<",
	OpGT: ">",
	OpLE: "<=",
	OpGE: ">=",
}

func (op Operator) String() string {
	v, ok := operatorValueMap[op]
	if !ok {
		return fmt.Sprintf("invalid(%d)", op)
	}

	return v
}

// OperatorOf returns the operator spelled as text.
func OperatorOf(text string) (Operator, bool) {
	for k, v := range operatorValueMap {
		if v == text {
			return k, true
		}
	}

	return 0, false
}

// Negate returns the operator of the logical complement: !(a < b) is a >= b.
func (op Operator) Negate() Operator {
	switch op {
	case OpEQ:
		return OpNE
	case OpNE:
		return OpEQ
	case OpLT:
		return OpGE
	case OpGT:
		return OpLE
	case OpLE:
		return OpGT
	case OpGE:
		return OpLT
	default:
		panic(fmt.Errorf("missing handling for operator %s", op))
	}
}

// Mirror returns the operator with swapped operands: a < b is b > a.
func (op Operator) Mirror() Operator {
	switch op {
	case OpEQ, OpNE:
		return op
	case OpLT:
		return OpGT
	case OpGT:
		return OpLT
	case OpLE:
		return OpGE
	case OpGE:
		return OpLE
	default:
		panic(fmt.Errorf("missing handling for operator %s", op))
	}
}
