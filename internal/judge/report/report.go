package report

import (
	"encoding/json"
	"fmt"

	appErr "ojclient/pkg/errors"
)

// TaskMeta holds the metrics of one judged task.
type TaskMeta struct {
	ScoreRate float64 `json:"score_rate"`
	Status    Status  `json:"status"`
	Time      uint64  `json:"time"`   // milliseconds
	Memory    uint64  `json:"memory"` // bytes
}

func (m *TaskMeta) UnmarshalJSON(data []byte) error {
	type plain TaskMeta
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ScoreRate < 0 || raw.ScoreRate > 1 {
		return fmt.Errorf("score_rate %g out of [0, 1]", raw.ScoreRate)
	}
	*m = TaskMeta(raw)
	return nil
}

// Artifact is one named capture of a task run, such as stdin, stdout or answer.
type Artifact struct {
	Name string
	Text TruncatedText
}

func (a Artifact) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{a.Name, a.Text})
}

func (a *Artifact) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("artifact: want [name, text], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &a.Name); err != nil {
		return fmt.Errorf("artifact name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &a.Text); err != nil {
		return fmt.Errorf("artifact %s: %w", a.Name, err)
	}
	return nil
}

// TaskReport is the result of a single test.
type TaskReport struct {
	Meta    TaskMeta   `json:"meta"`
	Payload []Artifact `json:"payload"`
}

// Artifact returns the first artifact called name.
func (r *TaskReport) Artifact(name string) (TruncatedText, bool) {
	if r == nil {
		return TruncatedText{}, false
	}
	for _, a := range r.Payload {
		if a.Name == name {
			return a.Text, true
		}
	}
	return TruncatedText{}, false
}

// SubtaskReport groups tests whose meta and total score are aggregated by the backend.
type SubtaskReport struct {
	TotalScore float64       `json:"total_score"`
	Meta       TaskMeta      `json:"meta"`
	Tasks      []*TaskReport `json:"tasks"`
}

// DetailKind discriminates the two shapes of a judge detail.
type DetailKind string

const (
	DetailTests   DetailKind = "Tests"
	DetailSubtask DetailKind = "Subtask"
)

// JudgeDetail is either a flat test list or a list of subtasks. A nil test entry has not
// been judged yet.
type JudgeDetail struct {
	Kind     DetailKind
	Tests    []*TaskReport
	Subtasks []SubtaskReport
}

// TestsDetail builds a flat test detail.
func TestsDetail(tasks ...*TaskReport) JudgeDetail {
	if tasks == nil {
		tasks = []*TaskReport{}
	}
	return JudgeDetail{Kind: DetailTests, Tests: tasks}
}

// SubtaskDetail builds a grouped detail.
func SubtaskDetail(subtasks ...SubtaskReport) JudgeDetail {
	if subtasks == nil {
		subtasks = []SubtaskReport{}
	}
	return JudgeDetail{Kind: DetailSubtask, Subtasks: subtasks}
}

type detailWire struct {
	Kind  DetailKind      `json:"type"`
	Tasks json.RawMessage `json:"tasks"`
}

func (d JudgeDetail) MarshalJSON() ([]byte, error) {
	var (
		tasks []byte
		err   error
	)
	switch d.Kind {
	case DetailTests:
		tasks, err = json.Marshal(d.Tests)
	case DetailSubtask:
		tasks, err = json.Marshal(d.Subtasks)
	default:
		return nil, appErr.Newf(appErr.UnknownDetailKind, "unknown judge detail kind %q", d.Kind)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(detailWire{Kind: d.Kind, Tasks: tasks})
}

func (d *JudgeDetail) UnmarshalJSON(data []byte) error {
	var wire detailWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	out := JudgeDetail{Kind: wire.Kind}
	switch wire.Kind {
	case DetailTests:
		if err := json.Unmarshal(wire.Tasks, &out.Tests); err != nil {
			return err
		}
	case DetailSubtask:
		if err := json.Unmarshal(wire.Tasks, &out.Subtasks); err != nil {
			return err
		}
	default:
		return appErr.Newf(appErr.UnknownDetailKind, "unknown judge detail kind %q", wire.Kind).
			WithDetail("kind", string(wire.Kind))
	}
	*d = out
	return nil
}

// JudgeReport is the outcome of one judge phase.
type JudgeReport struct {
	Meta   TaskMeta    `json:"meta"`
	Detail JudgeDetail `json:"detail"`
}

// Phase names one independent run of a submission against a test set.
type Phase string

const (
	PhasePre   Phase = "pre"
	PhaseData  Phase = "data"
	PhaseExtra Phase = "extra"
)

// ParsePhase accepts the wire names of the judge phases.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(s); p {
	case PhasePre, PhaseData, PhaseExtra:
		return p, nil
	}
	return "", appErr.ValidationError("phase", fmt.Sprintf("%q is not one of pre, data, extra", s))
}

// FullJudgeReport collects up to three phases, each nil until the backend has run it.
type FullJudgeReport struct {
	Pre   *JudgeReport `json:"pre"`
	Data  *JudgeReport `json:"data"`
	Extra *JudgeReport `json:"extra"`
}

// Phase returns the report of phase p, or nil if it has not run.
func (r *FullJudgeReport) Phase(p Phase) *JudgeReport {
	if r == nil {
		return nil
	}
	switch p {
	case PhasePre:
		return r.Pre
	case PhaseData:
		return r.Data
	case PhaseExtra:
		return r.Extra
	}
	return nil
}

func (r *FullJudgeReport) phases() []*JudgeReport {
	if r == nil {
		return nil
	}
	return []*JudgeReport{r.Pre, r.Data, r.Extra}
}

// MaxTime is the largest time over the phases that have run.
func (r *FullJudgeReport) MaxTime() uint64 {
	var out uint64
	for _, p := range r.phases() {
		if p != nil && p.Meta.Time > out {
			out = p.Meta.Time
		}
	}
	return out
}

// MaxMemory is the largest memory over the phases that have run.
func (r *FullJudgeReport) MaxMemory() uint64 {
	var out uint64
	for _, p := range r.phases() {
		if p != nil && p.Meta.Memory > out {
			out = p.Meta.Memory
		}
	}
	return out
}
