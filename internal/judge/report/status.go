// Package report defines judge results as the backend reports them: statuses, truncated
// artifacts, task and subtask reports, and the multi-phase judge report.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	appErr "ojclient/pkg/errors"
)

// StatusName is the wire discriminator of a judge status.
type StatusName string

const (
	StatusGood                StatusName = "good"
	StatusWrongAnswer         StatusName = "wrong_answer"
	StatusPartial             StatusName = "partial"
	StatusCompileError        StatusName = "compile_error"
	StatusRuntimeError        StatusName = "runtime_error"
	StatusTimeLimitExceeded   StatusName = "time_limit_exceeded"
	StatusMemoryLimitExceeded StatusName = "memory_limit_exceeded"
)

var knownStatuses = []StatusName{
	StatusGood,
	StatusWrongAnswer,
	StatusPartial,
	StatusCompileError,
	StatusRuntimeError,
	StatusTimeLimitExceeded,
	StatusMemoryLimitExceeded,
}

// AllStatusNames lists every member of the status taxonomy.
func AllStatusNames() []StatusName {
	out := make([]StatusName, len(knownStatuses))
	copy(out, knownStatuses)
	return out
}

// Valid reports whether name belongs to the taxonomy.
func (n StatusName) Valid() bool {
	for _, known := range knownStatuses {
		if n == known {
			return true
		}
	}
	return false
}

// Status is the outcome of one judged task.
// Numerator and Denominator are set only for partial; Sandbox only for compile_error.
type Status struct {
	Name        StatusName
	Numerator   float64
	Denominator float64
	Sandbox     *SandboxStatus
}

func Good() Status                { return Status{Name: StatusGood} }
func WrongAnswer() Status         { return Status{Name: StatusWrongAnswer} }
func RuntimeError() Status        { return Status{Name: StatusRuntimeError} }
func TimeLimitExceeded() Status   { return Status{Name: StatusTimeLimitExceeded} }
func MemoryLimitExceeded() Status { return Status{Name: StatusMemoryLimitExceeded} }

// Partial builds a partially accepted status scoring numerator out of denominator.
func Partial(numerator, denominator float64) Status {
	return Status{Name: StatusPartial, Numerator: numerator, Denominator: denominator}
}

// CompileError builds a compile error, optionally carrying the checker run status.
func CompileError(sandbox *SandboxStatus) Status {
	return Status{Name: StatusCompileError, Sandbox: sandbox}
}

// IsGood reports whether nothing went wrong. Good does not imply full score.
func (s Status) IsGood() bool {
	return s.Name == StatusGood
}

// Title returns the human readable title of the status.
func (s Status) Title() string {
	return Title(s.Name)
}

// ScoreRate returns the score fraction implied by the status alone.
func (s Status) ScoreRate() float64 {
	switch s.Name {
	case StatusGood:
		return 1
	case StatusPartial:
		if s.Denominator <= 0 {
			return 0
		}
		return s.Numerator / s.Denominator
	default:
		return 0
	}
}

// Update folds next into the running status: any non-good status replaces it.
func (s *Status) Update(next Status) {
	if next.IsGood() {
		return
	}
	*s = next
}

func (s Status) String() string {
	switch s.Name {
	case StatusPartial:
		return fmt.Sprintf("%s(%g/%g)", s.Name, s.Numerator, s.Denominator)
	case StatusCompileError:
		if s.Sandbox != nil {
			return fmt.Sprintf("%s(%s)", s.Name, s.Sandbox)
		}
	}
	return string(s.Name)
}

type statusWire struct {
	Name    StatusName      `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (s Status) MarshalJSON() ([]byte, error) {
	wire := statusWire{Name: s.Name}
	switch s.Name {
	case StatusPartial:
		payload, err := json.Marshal([2]float64{s.Numerator, s.Denominator})
		if err != nil {
			return nil, err
		}
		wire.Payload = payload
	case StatusCompileError:
		payload, err := json.Marshal(s.Sandbox)
		if err != nil {
			return nil, err
		}
		wire.Payload = payload
	}
	return json.Marshal(wire)
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var wire statusWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if !wire.Name.Valid() {
		return appErr.Newf(appErr.UnknownStatusName, "unknown judge status %q", wire.Name).
			WithDetail("name", string(wire.Name))
	}
	out := Status{Name: wire.Name}
	switch wire.Name {
	case StatusPartial:
		var pair [2]float64
		if err := json.Unmarshal(wire.Payload, &pair); err != nil {
			return fmt.Errorf("partial payload: %w", err)
		}
		out.Numerator, out.Denominator = pair[0], pair[1]
	case StatusCompileError:
		if len(wire.Payload) > 0 && !bytes.Equal(bytes.TrimSpace(wire.Payload), []byte("null")) {
			var sandbox SandboxStatus
			if err := json.Unmarshal(wire.Payload, &sandbox); err != nil {
				return fmt.Errorf("compile_error payload: %w", err)
			}
			out.Sandbox = &sandbox
		}
	}
	*s = out
	return nil
}

// SandboxKind is the outcome of an auxiliary checker or validator run.
type SandboxKind string

const (
	SandboxOk                  SandboxKind = "Ok"
	SandboxRuntimeError        SandboxKind = "RuntimeError"
	SandboxTimeLimitExceeded   SandboxKind = "TimeLimitExceeded"
	SandboxMemoryLimitExceeded SandboxKind = "MemoryLimitExceeded"
	SandboxOutputLimitExceeded SandboxKind = "OutputLimitExceeded"
	SandboxDangerousSyscall    SandboxKind = "DangerousSyscall"
)

// SandboxStatus is only meaningful nested under a compile error.
type SandboxStatus struct {
	Kind     SandboxKind
	ExitCode int32
}

func (s SandboxStatus) String() string {
	if s.Kind == SandboxRuntimeError {
		return fmt.Sprintf("%s(%d)", s.Kind, s.ExitCode)
	}
	return string(s.Kind)
}

func (s SandboxStatus) MarshalJSON() ([]byte, error) {
	if s.Kind == SandboxRuntimeError {
		return json.Marshal(map[string]int32{string(SandboxRuntimeError): s.ExitCode})
	}
	return json.Marshal(string(s.Kind))
}

func (s *SandboxStatus) UnmarshalJSON(data []byte) error {
	var kind string
	if err := json.Unmarshal(data, &kind); err == nil {
		switch SandboxKind(kind) {
		case SandboxOk, SandboxTimeLimitExceeded, SandboxMemoryLimitExceeded,
			SandboxOutputLimitExceeded, SandboxDangerousSyscall:
			*s = SandboxStatus{Kind: SandboxKind(kind)}
			return nil
		}
		return fmt.Errorf("unknown sandbox status %q", kind)
	}
	var tagged map[string]int32
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("sandbox status: %w", err)
	}
	code, ok := tagged[string(SandboxRuntimeError)]
	if !ok || len(tagged) != 1 {
		return fmt.Errorf("unknown sandbox status %s", string(data))
	}
	*s = SandboxStatus{Kind: SandboxRuntimeError, ExitCode: code}
	return nil
}
