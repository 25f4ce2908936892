// Package exam examines interpretation events and collects the findings into reports.
package exam

import (
	"cmp"
	"fmt"
	"go/token"
	"slices"
	"sync"

	"github.com/sirkon/cadlint/internal/rules"
)

// ReportEngine collects findings of all translation units. It is safe for concurrent use.
type ReportEngine struct {
	mu       sync.Mutex
	reports  []Report
	disabled map[rules.Rule]bool
}

// NewReportEngine creates an engine dropping findings of the disabled rules.
func NewReportEngine(disabled ...rules.Rule) *ReportEngine {
	res := &ReportEngine{disabled: map[rules.Rule]bool{}}
	for _, r := range disabled {
		res.disabled[r] = true
	}
	return res
}

// Report represents a single finding.
type Report struct {
	Phase   ReportPhase
	Rule    rules.Rule
	Pos     token.Position
	Context []string
	Message string
	Details any
}

// ReportPhase marks the analysis stage where a report was generated.
type ReportPhase int

const (
	reportPhaseInvalid ReportPhase = iota
	ReportParse                    // source parsing
	ReportInterp                   // interpretation of function bodies
	ReportMetric                   // function metrics
)

func (p ReportPhase) String() string {
	switch p {
	case ReportParse:
		return "parse"
	case ReportInterp:
		return "interp"
	case ReportMetric:
		return "metric"
	default:
		return fmt.Sprintf("invalid(%d)", p)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p ReportPhase) MarshalText() ([]byte, error) {
	if p <= reportPhaseInvalid || p > ReportMetric {
		return nil, fmt.Errorf("marshal invalid report phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// ReporterPhase binds a ReportEngine to a fixed phase.
type ReporterPhase struct {
	parent *ReportEngine
	phase  ReportPhase
}

// Phase returns a reporter setting the given phase for all reports produced through it.
func (r *ReportEngine) Phase(p ReportPhase) *ReporterPhase {
	return &ReporterPhase{parent: r, phase: p}
}

// Report adds a new record unless its rule is disabled.
func (r *ReportEngine) Report(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disabled[rep.Rule] {
		return
	}
	r.reports = append(r.reports, rep)
}

// Report records a finding under the bound phase. An empty message is replaced with the
// rule description.
func (rp *ReporterPhase) Report(rule rules.Rule, message string, pos token.Position, context []string, details any) {
	if message == "" {
		message = rule.Description()
	}
	rp.parent.Report(Report{
		Phase:   rp.phase,
		Rule:    rule,
		Pos:     pos,
		Context: context,
		Message: message,
		Details: details,
	})
}

// Reports returns a snapshot of all collected records ordered by position.
func (r *ReportEngine) Reports() []Report {
	r.mu.Lock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	r.mu.Unlock()

	slices.SortStableFunc(out, func(a, b Report) int {
		return cmp.Or(
			cmp.Compare(a.Pos.Filename, b.Pos.Filename),
			cmp.Compare(a.Pos.Line, b.Pos.Line),
			cmp.Compare(a.Pos.Column, b.Pos.Column),
			cmp.Compare(a.Rule, b.Rule),
		)
	})
	return out
}

// Failed tells whether any finding other than a metric was reported.
func (r *ReportEngine) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rep := range r.reports {
		if !rep.Rule.IsMetric() {
			return true
		}
	}
	return false
}
