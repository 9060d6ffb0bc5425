package report

// Progress counts judged and pending tests of a detail.
type Progress struct {
	TotalTests int `json:"totalTests"`
	DoneTests  int `json:"doneTests"`
}

// Pending is the number of tests the backend has not reported yet.
func (p Progress) Pending() int {
	return p.TotalTests - p.DoneTests
}

// Finished reports whether every test has a report.
func (p Progress) Finished() bool {
	return p.DoneTests == p.TotalTests
}

// Progress counts nil task entries as pending. Statuses are not consulted, so a
// pending test never counts as failed.
func (d JudgeDetail) Progress() Progress {
	var p Progress
	count := func(tasks []*TaskReport) {
		for _, t := range tasks {
			p.TotalTests++
			if t != nil {
				p.DoneTests++
			}
		}
	}
	switch d.Kind {
	case DetailTests:
		count(d.Tests)
	case DetailSubtask:
		for _, s := range d.Subtasks {
			count(s.Tasks)
		}
	}
	return p
}
