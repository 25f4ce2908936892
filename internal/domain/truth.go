package domain

// Truth is the outcome of testing a condition over domains.
type Truth struct {
	mayTrue  bool
	mayFalse bool
}

// TruthOf builds a truth value out of its two possibilities.
func TruthOf(mayTrue, mayFalse bool) Truth {
	return Truth{mayTrue: mayTrue, mayFalse: mayFalse}
}

// Arbitrary is the truth of a condition nothing is known about.
func Arbitrary() Truth {
	return Truth{mayTrue: true, mayFalse: true}
}

func (t Truth) MayBeTrue() bool   { return t.mayTrue }
func (t Truth) MayBeFalse() bool  { return t.mayFalse }
func (t Truth) MustBeTrue() bool  { return t.mayTrue && !t.mayFalse }
func (t Truth) MustBeFalse() bool { return t.mayFalse && !t.mayTrue }

// Not returns the truth of the negated condition.
func (t Truth) Not() Truth {
	return Truth{mayTrue: t.mayFalse, mayFalse: t.mayTrue}
}

// And combines truths of independent conditions with &&.
func (t Truth) And(o Truth) Truth {
	return Truth{
		mayTrue:  t.mayTrue && o.mayTrue,
		mayFalse: t.mayFalse || o.mayFalse,
	}
}

// Or combines truths of independent conditions with ||.
func (t Truth) Or(o Truth) Truth {
	return Truth{
		mayTrue:  t.mayTrue || o.mayTrue,
		mayFalse: t.mayFalse && o.mayFalse,
	}
}

// Domain returns the {0, 1} subset the truth can evaluate to.
func (t Truth) Domain() Domain {
	var d Domain
	if t.mayFalse {
		d = d.Union(Of(Zero))
	}
	if t.mayTrue {
		d = d.Union(Of(One))
	}
	return d
}

// TruthOfValue tests a scalar domain against zero the way C does.
func TruthOfValue(d Domain) Truth {
	return d.Compare(OpNE, Of(Zero))
}

func (t Truth) String() string {
	switch {
	case t.MustBeTrue():
		return "true"
	case t.MustBeFalse():
		return "false"
	case t.mayTrue:
		return "arbitrary"
	default:
		return "undefined"
	}
}
