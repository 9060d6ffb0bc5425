package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"ojclient/internal/cli/command"
	"ojclient/internal/cli/config"
	"ojclient/internal/cli/render"
	"ojclient/internal/client/transport"
	appErr "ojclient/pkg/errors"

	"github.com/google/shlex"
)

const prompt = "oj> "

// Session holds REPL state.
type Session struct {
	transport  *transport.Client
	env        command.Env
	commands   map[string]command.Command
	cfg        config.Config
	prettyJSON bool

	input        *bufio.Reader
	outputWriter *bufio.Writer
}

func New(tc *transport.Client, env command.Env, commands map[string]command.Command, cfg config.Config, in io.Reader, out io.Writer) *Session {
	return &Session{
		transport:    tc,
		env:          env,
		commands:     commands,
		cfg:          cfg,
		prettyJSON:   cfg.PrettyJSON != nil && *cfg.PrettyJSON,
		input:        bufio.NewReader(in),
		outputWriter: bufio.NewWriter(out),
	}
}

// Run reads commands until exit or end of input.
func (s *Session) Run(ctx context.Context) {
	for {
		_, _ = s.outputWriter.WriteString(prompt)
		_ = s.outputWriter.Flush()
		line, err := s.input.ReadString('\n')
		if err != nil && line == "" {
			if err != io.EOF {
				s.printLine("read input failed: %v", err)
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := s.Exec(ctx, line); quit {
			s.printLine("bye")
			return
		}
	}
}

// Exec runs one line and reports whether the session should end.
func (s *Session) Exec(ctx context.Context, line string) bool {
	switch line {
	case "exit", "quit":
		return true
	case "help":
		s.printHelp()
		return false
	}
	if strings.HasPrefix(line, "set ") {
		s.handleSet(strings.TrimSpace(strings.TrimPrefix(line, "set ")))
		return false
	}
	if strings.HasPrefix(line, "show ") {
		s.handleShow(strings.TrimSpace(strings.TrimPrefix(line, "show ")))
		return false
	}
	if err := s.handleCommand(ctx, line); err != nil {
		s.printError(err)
	}
	return false
}

func (s *Session) handleSet(args string) {
	parts := strings.Fields(args)
	if len(parts) == 0 {
		s.printLine("usage: set base|timeout|header")
		return
	}
	switch parts[0] {
	case "base":
		if len(parts) < 2 {
			s.printLine("usage: set base http://127.0.0.1:8080")
			return
		}
		s.transport.SetBaseURL(parts[1])
		s.printLine("base set to %s", s.transport.BaseURL())
	case "timeout":
		if len(parts) < 2 {
			s.printLine("usage: set timeout 10s")
			return
		}
		dur, err := time.ParseDuration(parts[1])
		if err != nil {
			s.printLine("invalid duration: %v", err)
			return
		}
		s.transport.SetTimeout(dur)
		s.printLine("timeout set to %s", s.transport.Timeout())
	case "header":
		if len(parts) < 2 {
			s.printLine("usage: set header X-Name value")
			return
		}
		value := strings.Join(parts[2:], " ")
		s.transport.SetHeader(parts[1], value)
		if value == "" {
			s.printLine("header %s cleared", parts[1])
			return
		}
		s.printLine("header %s set", parts[1])
	default:
		s.printLine("unknown set command")
	}
}

func (s *Session) handleShow(args string) {
	switch args {
	case "cookies":
		cookies := s.transport.Cookies()
		if len(cookies) == 0 {
			s.printLine("cookies: <empty>")
			return
		}
		for _, c := range cookies {
			value := c.Value
			if len(value) > 12 {
				value = value[:6] + "..." + value[len(value)-4:]
			}
			s.printLine("%s=%s", c.Name, value)
		}
	case "config":
		s.printLine("base: %s", s.transport.BaseURL())
		s.printLine("timeout: %s", s.transport.Timeout())
		s.printLine("racePolicy: %s", s.env.Client.Dispatcher().Policy())
		s.printLine("pollInterval: %s", s.cfg.PollInterval)
		s.printLine("pollMaxAttempts: %d", s.cfg.PollMaxAttempts)
		if headers := s.transport.Headers(); len(headers) > 0 {
			s.printLine("%s", render.Value(headers, s.prettyJSON))
		}
	case "messages":
		msgs := s.env.Store.Messages().List()
		if len(msgs) == 0 {
			s.printLine("messages: <empty>")
			return
		}
		for _, m := range msgs {
			s.printLine("[%s] %s", m.Level, m.Text)
		}
	default:
		s.printLine("usage: show cookies|config|messages")
	}
}

func (s *Session) handleCommand(ctx context.Context, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) < 2 {
		return fmt.Errorf("invalid command, use: <service> <action> key=value ...")
	}
	key := fmt.Sprintf("%s %s", tokens[0], tokens[1])
	cmd, ok := s.commands[key]
	if !ok {
		return fmt.Errorf("unknown command: %s", key)
	}
	params := command.Params{}
	for _, token := range tokens[2:] {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid param: %s", token)
		}
		params.Set(parts[0], parts[1])
	}
	params.Canonicalize(cmd.Fields)

	if err := s.promptMissing(&cmd, params); err != nil {
		return err
	}
	if err := cmd.Validate(params); err != nil {
		return err
	}
	start := time.Now()
	out, err := cmd.Run(ctx, s.env, params)
	if err != nil {
		return err
	}
	if text := render.Value(out, s.prettyJSON); text != "" {
		s.printLine("%s", text)
	}
	s.printLine("(%s)", time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Session) promptMissing(cmd *command.Command, params command.Params) error {
	for _, field := range cmd.Fields {
		if !field.Required || params.Get(field.Name) != "" {
			continue
		}
		value, err := s.promptValue(field.Prompt)
		if err != nil {
			return err
		}
		params.Set(field.Name, value)
	}
	return nil
}

func (s *Session) promptValue(prompt string) (string, error) {
	s.printLine("%s:", prompt)
	line, err := s.input.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input failed: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) printError(err error) {
	kind := appErr.KindOf(err)
	if kind == appErr.KindNone || kind == appErr.KindOther {
		s.printLine("error: %v", err)
		return
	}
	if status := appErr.StatusOf(err); kind == appErr.KindProtocol && status != 0 {
		s.printLine("%s error (HTTP %d): %v", kind, status, err)
		return
	}
	s.printLine("%s error: %v", kind, err)
}

func (s *Session) printHelp() {
	s.printLine("usage: <service> <action> key=value ...")
	s.printLine("system: help | exit | set base|timeout|header | show cookies|config|messages")
	keys := make([]string, 0, len(s.commands))
	for key := range s.commands {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		s.printLine("  %-22s %s", key, s.commands[key].Summary)
	}
	s.printLine("examples:")
	s.printLine("  user login username=demo password=secret")
	s.printLine("  custom run lang=gnu_cpp20_o2 file=./a.cpp input=./in.txt")
	s.printLine("  problem submit pid=1 lang=python3 file=./main.py wait=data")
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.outputWriter, format+"\n", args...)
	_ = s.outputWriter.Flush()
}
