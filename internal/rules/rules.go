package rules

import (
	"fmt"
	"strings"
)

// Rule represents a cadlint rule code (CAD-series).
type Rule int

const (
	ruleInvalid Rule = iota

	CAD001SyntaxError
	CAD010AlwaysTrue
	CAD011AlwaysFalse
	CAD020UnreachableBranch
	CAD030SwitchWithoutDefault
	CAD040UnreachableStatement
	CAD050NegativeToUnsigned
	CAD051OverflowToSigned
	CAD060IntegerToPointer
	CAD900Paths
	CAD901UnreachedStatements

	ruleLimit
)

// All returns every known rule in code order.
func All() []Rule {
	res := make([]Rule, 0, ruleLimit-1)
	for r := ruleInvalid + 1; r < ruleLimit; r++ {
		res = append(res, r)
	}
	return res
}

// Code returns the code of the rule like "CAD010".
func (r Rule) Code() string {
	switch r {
	case CAD001SyntaxError:
		return "CAD001"
	case CAD010AlwaysTrue:
		return "CAD010"
	case CAD011AlwaysFalse:
		return "CAD011"
	case CAD020UnreachableBranch:
		return "CAD020"
	case CAD030SwitchWithoutDefault:
		return "CAD030"
	case CAD040UnreachableStatement:
		return "CAD040"
	case CAD050NegativeToUnsigned:
		return "CAD050"
	case CAD051OverflowToSigned:
		return "CAD051"
	case CAD060IntegerToPointer:
		return "CAD060"
	case CAD900Paths:
		return "CAD900"
	case CAD901UnreachedStatements:
		return "CAD901"
	default:
		return fmt.Sprintf("invalid(%d)", r)
	}
}

// String returns the canonical code and short name of the rule.
// Example: "CAD010: AlwaysTrue"
func (r Rule) String() string {
	switch r {
	case CAD001SyntaxError:
		return "CAD001: SyntaxError"
	case CAD010AlwaysTrue:
		return "CAD010: AlwaysTrue"
	case CAD011AlwaysFalse:
		return "CAD011: AlwaysFalse"
	case CAD020UnreachableBranch:
		return "CAD020: UnreachableBranch"
	case CAD030SwitchWithoutDefault:
		return "CAD030: SwitchWithoutDefault"
	case CAD040UnreachableStatement:
		return "CAD040: UnreachableStatement"
	case CAD050NegativeToUnsigned:
		return "CAD050: NegativeToUnsigned"
	case CAD051OverflowToSigned:
		return "CAD051: OverflowToSigned"
	case CAD060IntegerToPointer:
		return "CAD060: IntegerToPointer"
	case CAD900Paths:
		return "CAD900: Paths"
	case CAD901UnreachedStatements:
		return "CAD901: UnreachedStatements"
	default:
		return fmt.Sprintf("invalid(%d)", r)
	}
}

// Description returns the human-readable explanation of the rule.
func (r Rule) Description() string {
	switch r {
	case CAD001SyntaxError:
		return "Source cannot be parsed."
	case CAD010AlwaysTrue:
		return "Controlling expression is always true."
	case CAD011AlwaysFalse:
		return "Controlling expression is always false."
	case CAD020UnreachableBranch:
		return "Controlling variables cannot hold values entering the branch."
	case CAD030SwitchWithoutDefault:
		return "Switch statement has no default label."
	case CAD040UnreachableStatement:
		return "Statement is never executed."
	case CAD050NegativeToUnsigned:
		return "Implicit conversion may wrap a negative value into an unsigned type."
	case CAD051OverflowToSigned:
		return "Implicit conversion may wrap a value above the signed maximum."
	case CAD060IntegerToPointer:
		return "Integer that is not a null pointer constant is converted into a pointer."
	case CAD900Paths:
		return "Number of paths through the function."
	case CAD901UnreachedStatements:
		return "Number of statements of the function never executed."
	default:
		return fmt.Sprintf("invalid(%d)", r)
	}
}

// IsMetric tells whether the rule reports a measure rather than a defect.
func (r Rule) IsMetric() bool {
	return r == CAD900Paths || r == CAD901UnreachedStatements
}

// Parse returns the rule with the given code. Both "CAD010" and "CAD010: AlwaysTrue"
// are accepted.
func Parse(code string) (Rule, error) {
	code, _, _ = strings.Cut(strings.TrimSpace(code), ":")
	for _, r := range All() {
		if strings.EqualFold(r.Code(), code) {
			return r, nil
		}
	}
	return ruleInvalid, fmt.Errorf("unknown rule code %q", code)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rule) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}

	*r = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Rule) MarshalText() ([]byte, error) {
	if r <= ruleInvalid || r >= ruleLimit {
		return nil, fmt.Errorf("marshal invalid rule %d", int(r))
	}
	return []byte(r.Code()), nil
}

// Canonical constructors for readable call sites.

func SyntaxError() Rule          { return CAD001SyntaxError }
func AlwaysTrue() Rule           { return CAD010AlwaysTrue }
func AlwaysFalse() Rule          { return CAD011AlwaysFalse }
func UnreachableBranch() Rule    { return CAD020UnreachableBranch }
func SwitchWithoutDefault() Rule { return CAD030SwitchWithoutDefault }
func UnreachableStatement() Rule { return CAD040UnreachableStatement }
func NegativeToUnsigned() Rule   { return CAD050NegativeToUnsigned }
func OverflowToSigned() Rule     { return CAD051OverflowToSigned }
func IntegerToPointer() Rule     { return CAD060IntegerToPointer }
func Paths() Rule                { return CAD900Paths }
func UnreachedStatements() Rule  { return CAD901UnreachedStatements }
