package exam

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// PrintSummary writes reports one per line in a compact, human-readable form.
func (r *ReportEngine) PrintSummary(w io.Writer) error {
	for _, rep := range r.Reports() {
		line := fmt.Sprintf("%s: [%s] %s: %s", rep.Pos, rep.Phase, rep.Rule, rep.Message)
		if len(rep.Context) > 0 {
			line += " (in " + strings.Join(rep.Context, " > ") + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

type jsonReport struct {
	File    string      `json:"file"`
	Line    int         `json:"line"`
	Column  int         `json:"column"`
	Phase   ReportPhase `json:"phase"`
	Rule    string      `json:"rule"`
	Message string      `json:"message"`
	Context []string    `json:"context,omitempty"`
	Details any         `json:"details,omitempty"`
}

// WriteJSON writes reports as a JSON array.
func (r *ReportEngine) WriteJSON(w io.Writer) error {
	reports := r.Reports()
	out := make([]jsonReport, 0, len(reports))
	for _, rep := range reports {
		out = append(out, jsonReport{
			File:    rep.Pos.Filename,
			Line:    rep.Pos.Line,
			Column:  rep.Pos.Column,
			Phase:   rep.Phase,
			Rule:    rep.Rule.Code(),
			Message: rep.Message,
			Context: rep.Context,
			Details: rep.Details,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	return nil
}
