package report

import (
	"encoding/json"
	"strings"
	"testing"

	"ojclient/internal/testutil"
	appErr "ojclient/pkg/errors"

	"github.com/stretchr/testify/require"
)

func TestTruncateLaw(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		limit int
	}{
		{name: "short ascii", input: "hello", limit: 10},
		{name: "exact limit", input: "hello", limit: 5},
		{name: "long ascii", input: strings.Repeat("a", 2000), limit: 0},
		{name: "multibyte", input: strings.Repeat("答案", 700), limit: 1024},
		{name: "empty", input: "", limit: 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Truncate(tc.input, tc.limit)
			limit := tc.limit
			if limit <= 0 {
				limit = DefaultTruncateLimit
			}
			kept := len([]rune(got.Content))
			if kept > limit {
				t.Fatalf("kept %d code points, limit %d", kept, limit)
			}
			if kept+got.Truncated != len([]rune(tc.input)) {
				t.Fatalf("kept %d + truncated %d != original %d", kept, got.Truncated, len([]rune(tc.input)))
			}
			if !strings.HasPrefix(tc.input, got.Content) {
				t.Fatalf("content is not a prefix of the input")
			}
			if got.IsTruncated() != (got.Truncated > 0) {
				t.Fatalf("IsTruncated disagrees with count")
			}
		})
	}
}

func TestTruncatedString(t *testing.T) {
	txt := Truncate("abcdef", 4)
	testutil.AssertEqual(t, txt.String(), "abcd...(2 characters truncated)")
	testutil.AssertEqual(t, Truncate("abc", 4).String(), "abc")
}

func TestTruncatedTextRejectsNegativeCount(t *testing.T) {
	var txt TruncatedText
	if err := json.Unmarshal([]byte(`{"str":"a","limit":1,"truncated":-1}`), &txt); err == nil {
		t.Fatalf("expected error for negative truncated count")
	}
}

func TestTaskMetaRejectsOutOfRangeScore(t *testing.T) {
	var m TaskMeta
	err := json.Unmarshal([]byte(`{"score_rate":1.5,"status":{"name":"good"},"time":1,"memory":1}`), &m)
	require.Error(t, err)
}

const subtaskReport = `{
  "pre": null,
  "data": {
    "meta": {"score_rate": 0.5, "status": {"name": "wrong_answer"}, "time": 12, "memory": 2048},
    "detail": {
      "type": "Subtask",
      "tasks": [
        {
          "total_score": 50,
          "meta": {"score_rate": 1, "status": {"name": "good"}, "time": 12, "memory": 2048},
          "tasks": [
            {"meta": {"score_rate": 1, "status": {"name": "good"}, "time": 12, "memory": 2048},
             "payload": [["stdout", {"str": "3", "limit": 1024, "truncated": 0}]]},
            null
          ]
        }
      ]
    }
  },
  "extra": null
}`

func TestFullJudgeReportDecode(t *testing.T) {
	var full FullJudgeReport
	testutil.MustUnmarshalJSON(t, []byte(subtaskReport), &full)

	require.Nil(t, full.Phase(PhasePre))
	data := full.Phase(PhaseData)
	require.NotNil(t, data)
	require.Equal(t, StatusWrongAnswer, data.Meta.Status.Name)
	require.Equal(t, DetailSubtask, data.Detail.Kind)
	require.Len(t, data.Detail.Subtasks, 1)

	sub := data.Detail.Subtasks[0]
	require.Equal(t, 50.0, sub.TotalScore)
	require.Len(t, sub.Tasks, 2)
	out, ok := sub.Tasks[0].Artifact("stdout")
	require.True(t, ok)
	require.Equal(t, "3", out.Content)
	require.Nil(t, sub.Tasks[1])

	p := data.Detail.Progress()
	require.Equal(t, Progress{TotalTests: 2, DoneTests: 1}, p)
	require.Equal(t, 1, p.Pending())
	require.False(t, p.Finished())

	require.Equal(t, uint64(12), full.MaxTime())
	require.Equal(t, uint64(2048), full.MaxMemory())

	again, err := json.Marshal(full)
	require.NoError(t, err)
	var back FullJudgeReport
	require.NoError(t, json.Unmarshal(again, &back))
	require.Equal(t, full.Data.Detail.Progress(), back.Data.Detail.Progress())
}

func TestUnknownDetailKind(t *testing.T) {
	var d JudgeDetail
	err := json.Unmarshal([]byte(`{"type":"Interactive","tasks":[]}`), &d)
	require.Error(t, err)
	require.True(t, appErr.Is(err, appErr.UnknownDetailKind))
}

func TestPendingTestsNeverFail(t *testing.T) {
	d := TestsDetail(nil, nil, &TaskReport{Meta: TaskMeta{ScoreRate: 1, Status: Good()}})
	p := d.Progress()
	testutil.AssertEqual(t, p.TotalTests, 3)
	testutil.AssertEqual(t, p.DoneTests, 1)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"Tests","tasks":[null,null,{"meta":{"score_rate":1,"status":{"name":"good"},"time":0,"memory":0},"payload":null}]}`, string(data))
}

func TestParsePhase(t *testing.T) {
	for _, s := range []string{"pre", "data", "extra"} {
		if _, err := ParsePhase(s); err != nil {
			t.Fatalf("ParsePhase(%q): %v", s, err)
		}
	}
	_, err := ParsePhase("final")
	testutil.AssertEqual(t, appErr.KindOf(err), appErr.KindValidation)
}

func TestFileTypes(t *testing.T) {
	testutil.AssertEqual(t, GnuCpp20O2.SourceName("source"), "source.gnu_cpp20_o2.cpp")
	testutil.AssertEqual(t, Python3.SourceName("main"), "main.python3.py")
	testutil.AssertTrue(t, !Plain.Compilable(), "plain text is not compilable")
	for _, ft := range FileTypes() {
		if ft.Ext() == "" {
			t.Fatalf("%s has no extension", ft)
		}
	}
	_, err := ParseFileType("cobol")
	require.True(t, appErr.Is(err, appErr.LanguageNotSupported))
}

func TestSubmissionDetailDecode(t *testing.T) {
	wire := `{
  "info": {
    "meta": {"id": 7, "pid": 1, "problem_title": "A + B", "uid": 2, "username": "alice",
             "submit_time": "2024-01-01 00:00:00 UTC", "judge_time": null, "lang": "python3",
             "status": null, "time": null, "memory": null},
    "raw": {"source": {"source": "print(3)", "file_type": "python3"}},
    "report": null
  },
  "raw": [["source", "python3", {"str": "print(3)", "limit": 102400, "truncated": 0}]],
  "judge": []
}`
	var d SubmissionDetail
	testutil.MustUnmarshalJSON(t, []byte(wire), &d)
	require.Nil(t, d.Report())
	require.Nil(t, d.Info.Meta.Status)
	require.Equal(t, Python3, *d.Info.Meta.Lang)
	require.Len(t, d.Raw, 1)
	require.Equal(t, "source", d.Raw[0].Name)
	require.Equal(t, "print(3)", d.Raw[0].Content.Content)
	require.Nil(t, d.Report().Phase(PhaseData))
}
