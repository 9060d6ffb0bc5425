package command

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"ojclient/internal/client/oj"
	"ojclient/internal/client/state"
	"ojclient/internal/judge/report"
)

// FieldType describes input type.
type FieldType int

const (
	FieldString FieldType = iota
	FieldUint
	FieldBool
	FieldLang
	FieldFile
	FieldDir
)

// Field defines a CLI input field.
type Field struct {
	Name     string
	Aliases  []string
	Prompt   string
	Type     FieldType
	Required bool
}

// Env is what a command runs against.
type Env struct {
	Client *oj.Client
	Store  *state.Store
}

// RunFunc executes a command. The returned value is rendered by the REPL.
type RunFunc func(ctx context.Context, env Env, p Params) (any, error)

// Command defines a CLI command binding.
type Command struct {
	Service string
	Action  string
	Summary string
	Fields  []Field
	Run     RunFunc
}

// Key is the registry key "service action".
func (c Command) Key() string {
	return c.Service + " " + c.Action
}

// Validate checks that every required field is present and typed values parse.
func (c Command) Validate(p Params) error {
	for _, field := range c.Fields {
		value := p.Get(field.Name)
		if value == "" {
			if field.Required {
				return fmt.Errorf("missing field %s", field.Name)
			}
			continue
		}
		var err error
		switch field.Type {
		case FieldUint:
			_, err = ParseUint(value)
		case FieldBool:
			_, err = strconv.ParseBool(value)
		case FieldLang:
			_, err = report.ParseFileType(value)
		case FieldFile, FieldDir:
			var info os.FileInfo
			info, err = os.Stat(value)
			switch {
			case err != nil:
			case field.Type == FieldDir && !info.IsDir():
				err = fmt.Errorf("%s is not a directory", value)
			case field.Type == FieldFile && info.IsDir():
				err = fmt.Errorf("%s is a directory", value)
			}
		}
		if err != nil {
			return fmt.Errorf("invalid %s: %w", field.Name, err)
		}
	}
	return nil
}

// Params holds parsed input params.
type Params map[string]string

func (p Params) Get(key string) string {
	return p[strings.ToLower(key)]
}

func (p Params) Set(key, value string) {
	p[strings.ToLower(key)] = value
}

func (p Params) Has(key string) bool {
	_, ok := p[strings.ToLower(key)]
	return ok
}

func (p Params) Canonicalize(fields []Field) {
	for _, field := range fields {
		for _, alias := range field.Aliases {
			aliasKey := strings.ToLower(alias)
			if value, ok := p[aliasKey]; ok {
				p[strings.ToLower(field.Name)] = value
				delete(p, aliasKey)
			}
		}
	}
}

// Uint returns the field as an unsigned integer, zero when absent.
func (p Params) Uint(key string) uint64 {
	n, _ := ParseUint(p.Get(key))
	return n
}

// Bool returns the field as a boolean, false when absent.
func (p Params) Bool(key string) bool {
	b, _ := strconv.ParseBool(p.Get(key))
	return b
}

// Optional returns a pointer to the field value, nil when absent.
func (p Params) Optional(key string) *string {
	if !p.Has(key) {
		return nil
	}
	v := p.Get(key)
	return &v
}

func ParseUint(value string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(value), 10, 64)
}

func ParseStringList(value string) []string {
	raw := strings.Split(value, ",")
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file failed: %w", err)
	}
	return data, nil
}
