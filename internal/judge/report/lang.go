package report

import (
	"encoding/json"
	"fmt"
	"strings"

	appErr "ojclient/pkg/errors"
)

// FileType is the language tag of a source or data file.
type FileType string

const (
	GnuCpp20O2  FileType = "gnu_cpp20_o2"
	GnuCpp17O2  FileType = "gnu_cpp17_o2"
	GnuCpp14O2  FileType = "gnu_cpp14_o2"
	Plain       FileType = "plain"
	Python3     FileType = "python3"
	Rust        FileType = "rust"
	GnuAssembly FileType = "gnu_assembly"
)

var extensions = map[FileType]string{
	GnuCpp20O2:  "cpp",
	GnuCpp17O2:  "cpp",
	GnuCpp14O2:  "cpp",
	Plain:       "txt",
	Python3:     "py",
	Rust:        "rs",
	GnuAssembly: "s",
}

// FileTypes lists the supported tags in a stable order.
func FileTypes() []FileType {
	return []FileType{GnuCpp20O2, GnuCpp17O2, GnuCpp14O2, Plain, Python3, Rust, GnuAssembly}
}

// ParseFileType validates a language tag.
func ParseFileType(s string) (FileType, error) {
	ft := FileType(strings.TrimSpace(s))
	if _, ok := extensions[ft]; !ok {
		return "", appErr.New(appErr.LanguageNotSupported).
			WithMessagef("unsupported language %q", s).
			WithDetail("lang", s)
	}
	return ft, nil
}

// Ext returns the file extension used for the tag.
func (t FileType) Ext() string {
	return extensions[t]
}

// Compilable reports whether the judge compiles files of this type.
func (t FileType) Compilable() bool {
	return t != Plain
}

// SourceName builds the upload file name "<name>.<tag>.<ext>".
func (t FileType) SourceName(name string) string {
	return fmt.Sprintf("%s.%s.%s", name, t, t.Ext())
}

func (t *FileType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ft, err := ParseFileType(s)
	if err != nil {
		return err
	}
	*t = ft
	return nil
}
