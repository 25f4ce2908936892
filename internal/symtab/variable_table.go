package symtab

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/domain"
)

// VariableTable owns variables and versions their value domains along branches.
//
// Versioning works in groups. A versioning group spans every branch of one
// control-flow construct, a version spans one branch. Each group remembers, per
// touched variable:
//
//   - base: the value the next branch of the group starts with;
//   - covered: the union of the exact controlling narrowings of the group's branches,
//     so that an implicit branch can start from the complement of its siblings;
//   - outcomes: the values the variable had at the end of every branch that rejoins
//     the control flow after the construct.
//
// Leaving a group sets every touched variable to the union of its outcomes, plus the
// complement of the covered values when the construct may be passed without entering
// any branch.
type VariableTable struct {
	scopes []map[string]*Variable
	groups []*versioningGroup
	log    *slog.Logger
}

type versioningGroup struct {
	base     map[*Variable]domain.Domain
	covered  map[*Variable]domain.Domain
	outcomes map[*Variable][]domain.Domain

	// rejoined is the number of closed versions whose values rejoin the control flow.
	rejoined int
	version  *version
}

type version struct {
	// entry holds exact narrowings of the version's controlling variables.
	entry   map[*Variable]domain.Domain
	thinned bool
}

// NewVariableTable creates a table with the global scope open.
func NewVariableTable() *VariableTable {
	return &VariableTable{
		scopes: []map[string]*Variable{{}},
		log:    slog.Default().With(slog.String("component", "symtab")),
	}
}

// --- Scopes ---------------------------------------------------------------------------------------------------------

// EnterScope opens a nested lexical scope.
func (t *VariableTable) EnterScope() {
	t.scopes = append(t.scopes, map[string]*Variable{})
}

// LeaveScope closes the innermost lexical scope. The global scope cannot be closed.
func (t *VariableTable) LeaveScope() {
	if len(t.scopes) == 1 {
		panic("leave global variable scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the depth of the innermost scope.
func (t *VariableTable) Depth() int {
	return len(t.scopes) - 1
}

// Declare creates a variable in the innermost scope. Redeclaration in the same scope
// replaces the previous variable.
func (t *VariableTable) Declare(name string, typ *ctype.Type, value domain.Domain, readonly bool) *Variable {
	v := &Variable{
		name:     name,
		typ:      typ,
		depth:    t.Depth(),
		readonly: readonly,
		value:    value,
	}
	t.scopes[len(t.scopes)-1][name] = v
	return v
}

// Lookup finds the innermost visible variable of the given name.
func (t *VariableTable) Lookup(name string) *Variable {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if v, ok := t.scopes[i][name]; ok {
			return v
		}
	}

	return nil
}

// Globals returns variables of the global scope ordered by name.
func (t *VariableTable) Globals() []*Variable {
	keys := slices.Sorted(maps.Keys(t.scopes[0]))
	res := make([]*Variable, 0, len(keys))
	for _, k := range keys {
		res = append(res, t.scopes[0][k])
	}
	return res
}

// Reset drops versioning state and every scope except the global one.
func (t *VariableTable) Reset() {
	t.scopes = t.scopes[:1]
	t.groups = nil
}

// --- Values ---------------------------------------------------------------------------------------------------------

// Assign sets the value of a variable.
func (t *VariableTable) Assign(v *Variable, value domain.Domain) {
	t.touch(v)
	v.value = value
}

// Narrow sets the value of a variable to the domain its controlling expression
// allows. Exact narrowings are remembered by the current version and group: thinning
// subtracts them from the group's base and implicit branches start from their
// complement.
func (t *VariableTable) Narrow(v *Variable, value domain.Domain, exact bool) {
	t.touch(v)
	v.value = value

	if !exact || len(t.groups) == 0 {
		return
	}

	g := t.groups[len(t.groups)-1]
	if g.version != nil {
		g.version.entry[v] = value
	}
	g.covered[v] = g.covered[v].Union(value)
}

// Complement returns the values of v no branch of the current group has covered with
// an exact narrowing yet.
func (t *VariableTable) Complement(v *Variable) domain.Domain {
	if len(t.groups) == 0 {
		return v.value
	}

	g := t.groups[len(t.groups)-1]
	base, ok := g.base[v]
	if !ok {
		return v.value
	}
	return base.Subtract(g.covered[v])
}

func (t *VariableTable) touch(v *Variable) {
	for _, g := range t.groups {
		if _, ok := g.base[v]; ok {
			continue
		}

		g.base[v] = v.value
		outcomes := make([]domain.Domain, g.rejoined)
		for i := range outcomes {
			outcomes[i] = v.value
		}
		g.outcomes[v] = outcomes
	}
}

// --- Versioning -----------------------------------------------------------------------------------------------------

// EnterVersioningGroup opens a versioning group.
func (t *VariableTable) EnterVersioningGroup() {
	t.groups = append(t.groups, &versioningGroup{
		base:     map[*Variable]domain.Domain{},
		covered:  map[*Variable]domain.Domain{},
		outcomes: map[*Variable][]domain.Domain{},
	})
}

// LeaveVersioningGroup closes the innermost versioning group and merges the values
// of its rejoining versions. With raiseComplement the path passing the construct
// without entering any branch is merged as well.
func (t *VariableTable) LeaveVersioningGroup(raiseComplement bool) {
	g := t.currentGroup("leave versioning group")
	if g.version != nil {
		panic(fmt.Errorf("leave versioning group with version open"))
	}
	t.groups = t.groups[:len(t.groups)-1]

	for v, base := range g.base {
		merged := domain.Empty()
		for _, o := range g.outcomes[v] {
			merged = merged.Union(o)
		}
		if raiseComplement {
			merged = merged.Union(base.Subtract(g.covered[v]))
		}
		v.value = merged
	}

	t.log.Debug(
		"versioning group left",
		slog.Int("variables", len(g.base)),
		slog.Int("rejoined", g.rejoined),
		slog.Bool("complement", raiseComplement),
	)
}

// BeginVersioning opens a version in the innermost group.
func (t *VariableTable) BeginVersioning() {
	g := t.currentGroup("begin versioning")
	if g.version != nil {
		panic(fmt.Errorf("begin versioning with version open"))
	}
	g.version = &version{entry: map[*Variable]domain.Domain{}}
}

// EndVersioning closes the version of the innermost group. Values of a version that
// was not thinned are kept as outcomes of the group. Every touched variable is reset to
// the group's base for the next branch.
func (t *VariableTable) EndVersioning() {
	g := t.currentGroup("end versioning")
	if g.version == nil {
		panic(fmt.Errorf("end versioning without version"))
	}

	if !g.version.thinned {
		for v := range g.base {
			g.outcomes[v] = append(g.outcomes[v], v.value)
		}
		g.rejoined++
	}
	g.version = nil

	for v, base := range g.base {
		v.value = base
	}
}

// ThinLatestVersion drops the values of the latest version from the outcomes of the
// group: the branch does not rejoin the control flow after the construct. Unless
// withRollback is set, the exact narrowings of the version are also subtracted from
// the group's base, since following branches are only entered when they did not hold.
func (t *VariableTable) ThinLatestVersion(withRollback bool) {
	g := t.currentGroup("thin latest version")
	if g.version == nil {
		panic(fmt.Errorf("thin latest version without version"))
	}

	g.version.thinned = true
	if withRollback {
		return
	}

	for v, entry := range g.version.entry {
		g.base[v] = g.base[v].Subtract(entry)
	}
}

// VersioningDepth returns the number of open versioning groups.
func (t *VariableTable) VersioningDepth() int {
	return len(t.groups)
}

func (t *VariableTable) currentGroup(action string) *versioningGroup {
	if len(t.groups) == 0 {
		panic(fmt.Errorf("%s outside of versioning group", action))
	}
	return t.groups[len(t.groups)-1]
}
