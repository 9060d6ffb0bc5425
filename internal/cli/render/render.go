// Package render turns judge results and listings into terminal text.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ojclient/internal/api"
	"ojclient/internal/judge/report"

	"github.com/charmbracelet/lipgloss"
)

var (
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71")).Bold(true)
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1c40f")).Bold(true)
	compileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95a5a6"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9b59b6"))
)

// StatusStyle picks the colour of a status title.
func StatusStyle(name report.StatusName) lipgloss.Style {
	switch name {
	case report.StatusGood:
		return goodStyle
	case report.StatusPartial:
		return partialStyle
	case report.StatusCompileError:
		return compileStyle
	default:
		return failStyle
	}
}

// Status renders the title of s, with the partial fraction or sandbox outcome when present.
func Status(s report.Status) string {
	title := s.Title()
	switch {
	case s.Name == report.StatusPartial:
		title = fmt.Sprintf("%s %g/%g", title, s.Numerator, s.Denominator)
	case s.Name == report.StatusCompileError && s.Sandbox != nil:
		title = fmt.Sprintf("%s (%s)", title, s.Sandbox)
	}
	return StatusStyle(s.Name).Render(title)
}

// Pending renders a placeholder for a test without a report.
func Pending() string {
	return pendingStyle.Render("Pending")
}

func label(name string) string {
	return labelStyle.Render(name + ":")
}

func metaLine(m report.TaskMeta) string {
	return fmt.Sprintf("%s  score %.0f%%  %dms  %s", Status(m.Status), m.ScoreRate*100, m.Time, Memory(m.Memory))
}

// Memory formats a byte count the way the judge pages do.
func Memory(b uint64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1fMiB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1fKiB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// Task renders one test report with its artifacts.
func Task(t *report.TaskReport) string {
	if t == nil {
		return Pending()
	}
	var b strings.Builder
	b.WriteString(metaLine(t.Meta))
	for _, a := range t.Payload {
		fmt.Fprintf(&b, "\n%s\n%s", label(a.Name), indent(a.Text.String()))
	}
	return b.String()
}

// Detail renders a judge detail, one line per test.
func Detail(d report.JudgeDetail) string {
	var lines []string
	row := func(prefix string, i int, t *report.TaskReport) {
		if t == nil {
			lines = append(lines, fmt.Sprintf("%s#%d  %s", prefix, i+1, Pending()))
			return
		}
		lines = append(lines, fmt.Sprintf("%s#%d  %s", prefix, i+1, metaLine(t.Meta)))
	}
	switch d.Kind {
	case report.DetailTests:
		for i, t := range d.Tests {
			row("", i, t)
		}
	case report.DetailSubtask:
		for si, s := range d.Subtasks {
			lines = append(lines, fmt.Sprintf("subtask %d  %s  total %g", si+1, metaLine(s.Meta), s.TotalScore))
			for i, t := range s.Tasks {
				row("  ", i, t)
			}
		}
	}
	p := d.Progress()
	if !p.Finished() {
		lines = append(lines, pendingStyle.Render(fmt.Sprintf("%d/%d tests judged", p.DoneTests, p.TotalTests)))
	}
	return strings.Join(lines, "\n")
}

// Submission renders a submission with every phase that has run.
func Submission(d report.SubmissionDetail) string {
	var b strings.Builder
	m := d.Info.Meta
	fmt.Fprintf(&b, "%s %d  %s %d %s  %s %s", label("submission"), m.ID, label("problem"), m.PID, m.ProblemTitle, label("by"), m.Username)
	if m.Status != nil {
		fmt.Fprintf(&b, "\n%s %s", label("status"), Status(*m.Status))
	} else {
		fmt.Fprintf(&b, "\n%s %s", label("status"), Pending())
	}
	rep := d.Report()
	for _, phase := range []report.Phase{report.PhasePre, report.PhaseData, report.PhaseExtra} {
		jr := rep.Phase(phase)
		if jr == nil {
			continue
		}
		fmt.Fprintf(&b, "\n%s %s\n%s", label(string(phase)), metaLine(jr.Meta), indent(Detail(jr.Detail)))
	}
	for _, src := range d.Raw {
		fmt.Fprintf(&b, "\n%s %s\n%s", label(src.Name), src.Lang, indent(src.Content.String()))
	}
	if len(d.Judge) > 0 {
		fmt.Fprintf(&b, "\n%s\n%s", label("judge log"), indent(strings.Join(d.Judge, "\n")))
	}
	return b.String()
}

// Submissions renders a submission listing.
func Submissions(metas []report.SubmissionMeta) string {
	lines := make([]string, 0, len(metas))
	for _, m := range metas {
		status := Pending()
		if m.Status != nil {
			status = Status(*m.Status)
		}
		lang := "-"
		if m.Lang != nil {
			lang = string(*m.Lang)
		}
		lines = append(lines, fmt.Sprintf("%6d  %-20s %-14s %-12s %s", m.ID, m.ProblemTitle, m.Username, lang, status))
	}
	return strings.Join(lines, "\n")
}

// Catalogue renders the endpoint table.
func Catalogue(descs []api.Descriptor) string {
	var b strings.Builder
	for i, d := range descs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s -> %s\n  %s", labelStyle.Render(d.Signature.String()), d.Payload, d.Return, d.Doc)
		for _, c := range d.Constraints {
			fmt.Fprintf(&b, "\n  - %s", c)
		}
	}
	return b.String()
}

// Value renders any command result. Known judge types get dedicated layouts, the
// rest is printed as JSON.
func Value(v any, pretty bool) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return fmt.Sprintf("%d bytes", len(v))
	case *report.TaskReport:
		return Task(v)
	case report.SubmissionDetail:
		return Submission(v)
	case *report.SubmissionDetail:
		return Submission(*v)
	case []report.SubmissionMeta:
		return Submissions(v)
	case []api.Descriptor:
		return Catalogue(v)
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s %s", label(k), v[k]))
		}
		return strings.Join(lines, "\n")
	}
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = "\t" + lines[i]
	}
	return strings.Join(lines, "\n")
}
