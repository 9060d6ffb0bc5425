package api

import (
	"strconv"

	"ojclient/internal/judge/report"
)

// NoPayload marks endpoints that take no input.
type NoPayload struct{}

// NoContent marks endpoints whose body is ignored.
type NoContent struct{}

// Part is one multipart field. A part with an empty FileName is a text field.
type Part struct {
	Name        string
	FileName    string
	ContentType string
	Data        []byte
}

// Multipart payloads are sent as multipart/form-data and never JSON encoded.
type Multipart interface {
	Parts() []Part
}

// TextPart builds a plain form field.
func TextPart(name, value string) Part {
	return Part{Name: name, Data: []byte(value)}
}

// FilePart builds a file field.
func FilePart(name, fileName string, data []byte) Part {
	return Part{Name: name, FileName: fileName, ContentType: "application/octet-stream", Data: data}
}

// CustomTestForm is the payload of POST /custom_test.
type CustomTestForm struct {
	Lang   report.FileType
	Source []byte
	Input  []byte
}

func (f CustomTestForm) Parts() []Part {
	return []Part{
		FilePart("source", f.Lang.SourceName("source"), f.Source),
		FilePart("input", "input.txt", f.Input),
	}
}

// SourceUpload is one named file of a submission.
type SourceUpload struct {
	Name   string
	Lang   report.FileType
	Source []byte
}

// SubmitForm is the payload of POST /problem/submit. A non-zero SID asks for a rejudge.
type SubmitForm struct {
	PID   uint64
	CID   uint64
	SID   uint64
	Files []SourceUpload
}

func (f SubmitForm) Parts() []Part {
	parts := make([]Part, 0, len(f.Files)+2)
	if f.SID != 0 {
		parts = append(parts, TextPart("sid", strconv.FormatUint(f.SID, 10)))
	} else {
		parts = append(parts, TextPart("pid", strconv.FormatUint(f.PID, 10)))
		if f.CID != 0 {
			parts = append(parts, TextPart("cid", strconv.FormatUint(f.CID, 10)))
		}
	}
	for _, file := range f.Files {
		parts = append(parts, FilePart("files", file.Lang.SourceName(file.Name), file.Source))
	}
	return parts
}

// FullDataForm is the payload of POST /problem/fulldata. A zero ID creates a new problem.
type FullDataForm struct {
	ID      uint64
	Archive []byte
}

func (f FullDataForm) Parts() []Part {
	parts := make([]Part, 0, 2)
	if f.ID != 0 {
		parts = append(parts, TextPart("id", strconv.FormatUint(f.ID, 10)))
	}
	parts = append(parts, Part{Name: "data", FileName: "data.zip", ContentType: "application/zip", Data: f.Archive})
	return parts
}
