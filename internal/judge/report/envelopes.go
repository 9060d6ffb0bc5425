package report

import (
	"encoding/json"
	"fmt"
)

// CustomTestResult is what GET /custom_test answers; Result stays nil until the run ends.
type CustomTestResult struct {
	Result *TaskReport `json:"result"`
}

// SourceFile is one stored file of a submission.
type SourceFile struct {
	Source   string   `json:"source"`
	FileType FileType `json:"file_type"`
}

// SubmissionMeta is the list view of a submission. Optional fields are nil until judged.
type SubmissionMeta struct {
	ID           uint64    `json:"id"`
	PID          uint64    `json:"pid"`
	ProblemTitle string    `json:"problem_title"`
	UID          uint64    `json:"uid"`
	Username     string    `json:"username"`
	SubmitTime   string    `json:"submit_time"`
	JudgeTime    *string   `json:"judge_time"`
	Lang         *FileType `json:"lang"`
	Status       *Status   `json:"status"`
	Time         *uint64   `json:"time"`
	Memory       *uint64   `json:"memory"`
}

// SubmissionInfo couples a submission meta with its files and judge report.
type SubmissionInfo struct {
	Meta   SubmissionMeta        `json:"meta"`
	Raw    map[string]SourceFile `json:"raw"`
	Report *FullJudgeReport      `json:"report"`
}

// SourceEntry is a displayed source file: name, language and truncated content.
type SourceEntry struct {
	Name    string
	Lang    FileType
	Content TruncatedText
}

func (e SourceEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{e.Name, e.Lang, e.Content})
}

func (e *SourceEntry) UnmarshalJSON(data []byte) error {
	var triple []json.RawMessage
	if err := json.Unmarshal(data, &triple); err != nil {
		return err
	}
	if len(triple) != 3 {
		return fmt.Errorf("source entry: want [name, lang, text], got %d elements", len(triple))
	}
	if err := json.Unmarshal(triple[0], &e.Name); err != nil {
		return fmt.Errorf("source entry name: %w", err)
	}
	if err := json.Unmarshal(triple[1], &e.Lang); err != nil {
		return fmt.Errorf("source entry %s lang: %w", e.Name, err)
	}
	if err := json.Unmarshal(triple[2], &e.Content); err != nil {
		return fmt.Errorf("source entry %s content: %w", e.Name, err)
	}
	return nil
}

// SubmissionDetail is what GET /submission/detail answers.
type SubmissionDetail struct {
	Info  SubmissionInfo `json:"info"`
	Raw   []SourceEntry  `json:"raw"`
	Judge []string       `json:"judge"`
}

// Report returns the judge report, nil while the submission is queued.
func (d *SubmissionDetail) Report() *FullJudgeReport {
	if d == nil {
		return nil
	}
	return d.Info.Report
}
