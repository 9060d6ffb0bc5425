package fakeoj

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"ojclient/internal/api"
	"ojclient/internal/judge/report"
	"ojclient/pkg/errors"
	"ojclient/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zip"
)

// judge is the stand-in for the sandbox: the answer is the sum of the integers in input.
func judge(input string) *report.TaskReport {
	var sum int64
	for _, field := range strings.Fields(input) {
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return &report.TaskReport{
				Meta: report.TaskMeta{Status: report.RuntimeError(), Time: 1, Memory: 1 << 20},
				Payload: []report.Artifact{
					{Name: "stdin", Text: report.Truncate(input, 0)},
				},
			}
		}
		sum += n
	}
	return &report.TaskReport{
		Meta: report.TaskMeta{ScoreRate: 1, Status: report.Good(), Time: 3, Memory: 2 << 20},
		Payload: []report.Artifact{
			{Name: "stdin", Text: report.Truncate(input, 0)},
			{Name: "stdout", Text: report.Truncate(strconv.FormatInt(sum, 10), 0)},
		},
	}
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// parseNamedFile splits "name.lang.ext" the way the backend does.
func parseNamedFile(fileName string) (string, report.FileType, bool) {
	parts := strings.Split(strings.TrimSpace(fileName), ".")
	if len(parts) < 2 {
		return "", "", false
	}
	ft, err := report.ParseFileType(parts[1])
	if err != nil {
		return "", "", false
	}
	return parts[0], ft, true
}

func (s *Server) customTestPost(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["source"]) == 0 || len(form.File["input"]) == 0 {
		response.BadRequest(c, "invalid payload file")
		return
	}
	_, lang, ok := parseNamedFile(form.File["source"][0].Filename)
	if !ok {
		response.BadRequest(c, "invalid payload file")
		return
	}
	if !lang.Compilable() {
		response.BadRequest(c, "file not compilable")
		return
	}
	input, err := readPart(form.File["input"][0])
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	s.mu.Lock()
	s.customTests[sessionUser(c)] = &customTest{result: judge(string(input))}
	s.mu.Unlock()
	response.Text(c, "Judge started")
}

func (s *Server) customTestGet(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ct, ok := s.customTests[sessionUser(c)]
	if !ok {
		response.JSON(c, report.CustomTestResult{})
		return
	}
	ct.polls++
	if ct.polls <= s.PendingPolls {
		response.JSON(c, report.CustomTestResult{})
		return
	}
	response.JSON(c, report.CustomTestResult{Result: ct.result})
}

func (s *Server) submit(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "invalid multipart payload")
		return
	}
	username := sessionUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sids := form.Value["sid"]; len(sids) > 0 {
		sid, err := strconv.ParseUint(sids[0], 10, 64)
		sub, ok := s.submissions[sid]
		if err != nil || !ok {
			response.ErrorWithCode(c, errors.SubmissionNotFound, "submission not found")
			return
		}
		sub.polls, sub.report = 0, nil
		response.JSON(c, api.SubmitReturn{SID: sid})
		return
	}

	pids := form.Value["pid"]
	if len(pids) == 0 {
		response.BadRequest(c, "missing field pid")
		return
	}
	pid, err := strconv.ParseUint(pids[0], 10, 64)
	prob, ok := s.problems[pid]
	if err != nil || !ok {
		response.ErrorWithCode(c, errors.ProblemNotFound, "problem not found")
		return
	}
	raw := make(map[string]report.SourceFile)
	for _, fh := range form.File["files"] {
		name, lang, ok := parseNamedFile(fh.Filename)
		if !ok {
			continue
		}
		data, err := readPart(fh)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		raw[name] = report.SourceFile{Source: string(data), FileType: lang}
	}
	source, ok := raw["source"]
	if !ok {
		response.BadRequest(c, "source file not found")
		return
	}

	s.nextSID++
	lang := source.FileType
	s.submissions[s.nextSID] = &submission{
		meta: report.SubmissionMeta{
			ID:           s.nextSID,
			PID:          pid,
			ProblemTitle: prob.meta.Title,
			UID:          uint64(s.users[username].id),
			Username:     username,
			SubmitTime:   "2024-01-01 00:00:00 UTC",
			Lang:         &lang,
		},
		raw: raw,
	}
	response.JSON(c, api.SubmitReturn{SID: s.nextSID})
}

func finishedReport() *report.FullJudgeReport {
	tests := report.TestsDetail(judge("1 2"), judge("3 4"))
	phase := &report.JudgeReport{
		Meta:   report.TaskMeta{ScoreRate: 1, Status: report.Good(), Time: 3, Memory: 2 << 20},
		Detail: tests,
	}
	return &report.FullJudgeReport{Pre: phase, Data: phase}
}

func (s *Server) submissionDetail(c *gin.Context) {
	sid, err := strconv.ParseUint(c.Query("sid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "missing field sid")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[sid]
	if !ok {
		response.ErrorWithCode(c, errors.SubmissionNotFound, "submission not found")
		return
	}
	sub.polls++
	if sub.report == nil && sub.polls > s.PendingPolls {
		sub.report = finishedReport()
		status := sub.report.Data.Meta.Status
		judgeTime := "2024-01-01 00:00:05 UTC"
		maxTime, maxMemory := sub.report.MaxTime(), sub.report.MaxMemory()
		sub.meta.Status, sub.meta.JudgeTime = &status, &judgeTime
		sub.meta.Time, sub.meta.Memory = &maxTime, &maxMemory
	}
	entries := make([]report.SourceEntry, 0, len(sub.raw))
	for name, file := range sub.raw {
		entries = append(entries, report.SourceEntry{Name: name, Lang: file.FileType, Content: report.Truncate(file.Source, 100*1024)})
	}
	var log []string
	if sub.report != nil {
		log = []string{fmt.Sprintf("judged %d tests", sub.report.Data.Detail.Progress().TotalTests)}
	}
	response.JSON(c, report.SubmissionDetail{
		Info:  report.SubmissionInfo{Meta: sub.meta, Raw: sub.raw, Report: sub.report},
		Raw:   entries,
		Judge: log,
	})
}

func (s *Server) submissionMetas(c *gin.Context) {
	pid, _ := strconv.ParseUint(c.Query("pid"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]report.SubmissionMeta, 0, len(s.submissions))
	for sid := uint64(1); sid <= s.nextSID; sid++ {
		sub, ok := s.submissions[sid]
		if !ok || (pid != 0 && sub.meta.PID != pid) {
			continue
		}
		out = append(out, sub.meta)
	}
	response.JSON(c, page(c, out))
}

func (s *Server) problemMetas(c *gin.Context) {
	pattern := c.Query("pattern")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.ProblemMeta, 0, len(s.problems))
	for pid := uint64(1); pid <= s.nextPID; pid++ {
		p, ok := s.problems[pid]
		if !ok || (pattern != "" && !strings.Contains(p.meta.Title, pattern)) {
			continue
		}
		out = append(out, p.meta)
	}
	response.JSON(c, page(c, out))
}

func (s *Server) lookupProblem(c *gin.Context) (*problem, bool) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "missing field id")
		return nil, false
	}
	s.mu.Lock()
	p, ok := s.problems[id]
	s.mu.Unlock()
	if !ok {
		response.ErrorWithCode(c, errors.ProblemNotFound, "problem not found")
		return nil, false
	}
	return p, true
}

func (s *Server) statement(c *gin.Context) {
	if p, ok := s.lookupProblem(c); ok {
		response.JSON(c, p.statement)
	}
}

func (s *Server) statementAsset(c *gin.Context) {
	p, ok := s.lookupProblem(c)
	if !ok {
		return
	}
	data, ok := p.assets[c.Query("name")]
	if !ok {
		response.NotFound(c, "asset not found")
		return
	}
	response.Bytes(c, "application/octet-stream", data)
}

func (s *Server) fulldataMeta(c *gin.Context) {
	if p, ok := s.lookupProblem(c); ok {
		response.Text(c, p.fulldata)
	}
}

func (s *Server) fulldata(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["data"]) == 0 {
		response.BadRequest(c, "missing field data")
		return
	}
	data, err := readPart(form.File["data"][0])
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		response.BadRequest(c, "invalid zip archive")
		return
	}
	title := "untitled"
	for _, f := range zr.File {
		if f.Name == "title.txt" {
			rc, err := f.Open()
			if err == nil {
				b, _ := io.ReadAll(rc)
				_ = rc.Close()
				title = strings.TrimSpace(string(b))
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var id uint64
	if ids := form.Value["id"]; len(ids) > 0 {
		id, err = strconv.ParseUint(ids[0], 10, 64)
		if _, ok := s.problems[id]; err != nil || !ok {
			response.ErrorWithCode(c, errors.ProblemNotFound, "problem not found")
			return
		}
	} else {
		s.nextPID++
		id = s.nextPID
	}
	meta := api.ProblemMeta{ID: id, Title: title}
	s.problems[id] = &problem{
		meta:      meta,
		statement: api.ProblemStatement{Title: title, Statement: []byte(`null`), Meta: []byte(`{}`)},
		assets:    map[string][]byte{},
		fulldata:  fmt.Sprintf("%d files", len(zr.File)),
	}
	response.JSON(c, api.FullDataReturn{ID: id})
}

// page applies max_count and offset to a listing.
func page[T any](c *gin.Context, items []T) []T {
	offset, _ := strconv.Atoi(c.Query("offset"))
	maxCount, err := strconv.Atoi(c.Query("max_count"))
	if err != nil || maxCount <= 0 || maxCount > 255 {
		maxCount = 255
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if len(items) > maxCount {
		items = items[:maxCount]
	}
	return items
}
