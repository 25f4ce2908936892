package cc1

import (
	"fmt"
	"strings"
)

// Options control how a branch is executed and how its group merges.
type Options uint16

const (
	// OptionFirst marks the branch opening a group. Only CreateFirstBranch sets it.
	OptionFirst Options = 1 << iota

	// OptionFinal marks the branch closing a group.
	OptionFinal

	// OptionNarrowing narrows controlling variables to the values the controlling
	// expression holds for.
	OptionNarrowing

	// OptionWidening widens controlling variables so that the controlling expression may
	// hold.
	OptionWidening

	// OptionSmotherBreak keeps break events from closing the construct. Switch cases use it.
	OptionSmotherBreak

	// OptionImplicitCond tells the condition is computed by the construct itself.
	OptionImplicitCond

	// OptionComplemental marks a branch taken when none of its siblings were: else,
	// default.
	OptionComplemental

	// OptionComplete tells some branch of the group is always entered.
	OptionComplete

	// OptionIteration marks the group of a loop body.
	OptionIteration
)

const (
	branchOptions = OptionFirst | OptionFinal | OptionNarrowing | OptionWidening |
		OptionSmotherBreak | OptionImplicitCond | OptionComplemental
	groupOptions = OptionComplete | OptionIteration
)

var optionsNames = []struct {
	opt  Options
	name string
}{
	{OptionFirst, "FIRST"},
	{OptionFinal, "FINAL"},
	{OptionNarrowing, "NARROWING"},
	{OptionWidening, "WIDENING"},
	{OptionSmotherBreak, "SMOTHER_BREAK"},
	{OptionImplicitCond, "IMPLICIT_COND"},
	{OptionComplemental, "COMPLEMENTAL"},
	{OptionComplete, "COMPLETE"},
	{OptionIteration, "ITERATION"},
}

// Has tells whether every given option is set.
func (o Options) Has(opts Options) bool {
	return o&opts == opts
}

func (o Options) String() string {
	if o == 0 {
		return "NONE"
	}

	var parts []string
	for _, n := range optionsNames {
		if o&n.opt != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := o &^ (branchOptions | groupOptions); rest != 0 {
		parts = append(parts, fmt.Sprintf("invalid(%#x)", uint16(rest)))
	}
	return strings.Join(parts, "|")
}

// OptionsError is raised with panic on an inconsistent option set.
type OptionsError struct {
	Options Options
	Reason  string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid branch options %s: %s", e.Options, e.Reason)
}

func validateOptions(opts Options) {
	if opts.Has(OptionNarrowing | OptionWidening) {
		panic(&OptionsError{Options: opts, Reason: "narrowing and widening are mutually exclusive"})
	}
	if rest := opts &^ (branchOptions | groupOptions); rest != 0 {
		panic(&OptionsError{Options: opts, Reason: "unknown options"})
	}
}
