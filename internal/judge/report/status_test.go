package report

import (
	"encoding/json"
	"testing"

	appErr "ojclient/pkg/errors"
)

func TestEveryStatusHasTitle(t *testing.T) {
	names := AllStatusNames()
	if len(names) != 7 {
		t.Fatalf("taxonomy size = %d, want 7", len(names))
	}
	seen := make(map[string]StatusName)
	for _, name := range names {
		title := Title(name)
		if title == "" {
			t.Fatalf("status %q has no title", name)
		}
		if other, dup := seen[title]; dup {
			t.Fatalf("statuses %q and %q share title %q", name, other, title)
		}
		seen[title] = name
	}
	if Title("presentation_error") != "" {
		t.Fatalf("unknown status should have no title")
	}
}

func TestStatusTitles(t *testing.T) {
	testCases := []struct {
		status Status
		want   string
	}{
		{Good(), "Accepted"},
		{WrongAnswer(), "Wrong Answer"},
		{Partial(3, 10), "Partially Accepted"},
		{CompileError(nil), "Compile Error"},
		{RuntimeError(), "Runtime Error"},
		{TimeLimitExceeded(), "Time Limit Exceeded"},
		{MemoryLimitExceeded(), "Memory Limit Exceeded"},
	}
	for _, tc := range testCases {
		if got := tc.status.Title(); got != tc.want {
			t.Fatalf("%s title = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestStatusJSON(t *testing.T) {
	testCases := []struct {
		name   string
		status Status
		wire   string
	}{
		{name: "good", status: Good(), wire: `{"name":"good"}`},
		{name: "partial", status: Partial(1, 4), wire: `{"name":"partial","payload":[1,4]}`},
		{name: "compile error without sandbox", status: CompileError(nil), wire: `{"name":"compile_error","payload":null}`},
		{
			name:   "compile error with exit code",
			status: CompileError(&SandboxStatus{Kind: SandboxRuntimeError, ExitCode: 1}),
			wire:   `{"name":"compile_error","payload":{"RuntimeError":1}}`,
		},
		{
			name:   "compile error with syscall",
			status: CompileError(&SandboxStatus{Kind: SandboxDangerousSyscall}),
			wire:   `{"name":"compile_error","payload":"DangerousSyscall"}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.status)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tc.wire {
				t.Fatalf("marshal = %s, want %s", data, tc.wire)
			}
			var back Status
			if err := json.Unmarshal([]byte(tc.wire), &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if back.String() != tc.status.String() {
				t.Fatalf("decoded %s, want %s", back, tc.status)
			}
		})
	}
}

func TestUnknownStatusIsDecodeError(t *testing.T) {
	var s Status
	err := json.Unmarshal([]byte(`{"name":"presentation_error"}`), &s)
	if err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if !appErr.Is(err, appErr.UnknownStatusName) {
		t.Fatalf("error code = %v, want UnknownStatusName", appErr.GetCode(err))
	}
	if appErr.KindOf(err) != appErr.KindDecode {
		t.Fatalf("kind = %s, want decode", appErr.KindOf(err))
	}
}

func TestStatusUpdate(t *testing.T) {
	s := Good()
	s.Update(Good())
	if !s.IsGood() {
		t.Fatalf("good folded with good should stay good")
	}
	s.Update(WrongAnswer())
	s.Update(Good())
	if s.Name != StatusWrongAnswer {
		t.Fatalf("status = %s, want wrong_answer", s)
	}
	s.Update(TimeLimitExceeded())
	if s.Name != StatusTimeLimitExceeded {
		t.Fatalf("status = %s, want the latest failure", s)
	}
}

func TestScoreRate(t *testing.T) {
	if got := Partial(1, 4).ScoreRate(); got != 0.25 {
		t.Fatalf("partial score = %g, want 0.25", got)
	}
	if got := Partial(1, 0).ScoreRate(); got != 0 {
		t.Fatalf("zero denominator score = %g, want 0", got)
	}
	if Good().ScoreRate() != 1 || RuntimeError().ScoreRate() != 0 {
		t.Fatalf("unexpected score for good or runtime error")
	}
}
