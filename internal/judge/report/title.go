package report

// Older backend revisions also emitted custom, dangerous_syscall, output_limit_exceeded
// and presentation_error, and some lacked wrong_answer or partial. Those names are
// rejected on decode instead of being reconciled here.
var titles = map[StatusName]string{
	StatusGood:                "Accepted",
	StatusWrongAnswer:         "Wrong Answer",
	StatusPartial:             "Partially Accepted",
	StatusCompileError:        "Compile Error",
	StatusRuntimeError:        "Runtime Error",
	StatusTimeLimitExceeded:   "Time Limit Exceeded",
	StatusMemoryLimitExceeded: "Memory Limit Exceeded",
}

// Title maps a status name to its display title. Names outside the taxonomy yield "".
func Title(name StatusName) string {
	return titles[name]
}
