package command

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"ojclient/internal/api"
	"ojclient/internal/judge/report"
	"ojclient/internal/passwd"
)

const defaultListCount = 20

// Registry returns all CLI commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service: "user",
			Action:  "register",
			Summary: "create an account and log in",
			Fields: []Field{
				{Name: "username", Aliases: []string{"u"}, Prompt: "username", Type: FieldString, Required: true},
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
				{Name: "password", Aliases: []string{"p"}, Prompt: "password", Type: FieldString, Required: true},
			},
			Run: runRegister,
		},
		{
			Service: "user",
			Action:  "login",
			Summary: "log in and keep the session cookie",
			Fields: []Field{
				{Name: "username", Aliases: []string{"u"}, Prompt: "username", Type: FieldString, Required: true},
				{Name: "password", Aliases: []string{"p"}, Prompt: "password", Type: FieldString, Required: true},
			},
			Run: runLogin,
		},
		{
			Service: "user",
			Action:  "logout",
			Summary: "drop the session",
			Run: func(ctx context.Context, env Env, _ Params) (any, error) {
				return env.Client.Logout(ctx)
			},
		},
		{
			Service: "user",
			Action:  "whoami",
			Summary: "identity behind the session",
			Run:     runWhoami,
		},
		{
			Service: "user",
			Action:  "info",
			Summary: "public profile of a user",
			Fields: []Field{
				{Name: "username", Aliases: []string{"u"}, Prompt: "username", Type: FieldString, Required: true},
			},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				return env.Client.User(ctx, p.Get("username"))
			},
		},
		{
			Service: "user",
			Action:  "edit",
			Summary: "update the session user; absent fields stay unchanged",
			Fields: []Field{
				{Name: "email", Type: FieldString},
				{Name: "motto", Type: FieldString},
				{Name: "name", Type: FieldString},
				{Name: "gender", Type: FieldString},
				{Name: "password", Aliases: []string{"p"}, Type: FieldString},
			},
			Run: runEditUser,
		},
		{
			Service: "user",
			Action:  "gravatar",
			Summary: "download the avatar of an email",
			Fields: []Field{
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
				{Name: "out", Type: FieldString},
				{Name: "no_cache", Type: FieldBool},
			},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				img, err := env.Client.Gravatar(ctx, p.Get("email"), p.Bool("no_cache"))
				if err != nil {
					return nil, err
				}
				return writeOut(p.Get("out"), img)
			},
		},
		{
			Service: "problem",
			Action:  "list",
			Summary: "list problems",
			Fields:  listFields(),
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				return env.Client.ProblemMetas(ctx, searchQuery(p))
			},
		},
		{
			Service: "problem",
			Action:  "statement",
			Summary: "show a problem statement",
			Fields:  []Field{idField("problem_id")},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				return env.Client.Statement(ctx, p.Uint("id"))
			},
		},
		{
			Service: "problem",
			Action:  "asset",
			Summary: "download a statement asset",
			Fields: []Field{
				idField("problem_id"),
				{Name: "name", Prompt: "asset name", Type: FieldString, Required: true},
				{Name: "out", Type: FieldString},
			},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				data, err := env.Client.StatementAsset(ctx, p.Uint("id"), p.Get("name"))
				if err != nil {
					return nil, err
				}
				return writeOut(p.Get("out"), data)
			},
		},
		{
			Service: "problem",
			Action:  "data",
			Summary: "describe the stored problem data",
			Fields:  []Field{idField("problem_id")},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				return env.Client.FullDataMeta(ctx, p.Uint("id"))
			},
		},
		{
			Service: "problem",
			Action:  "upload",
			Summary: "zip a problem directory and upload it; without id a new problem is created",
			Fields: []Field{
				{Name: "dir", Prompt: "problem directory", Type: FieldDir, Required: true},
				{Name: "id", Aliases: []string{"pid"}, Type: FieldUint},
			},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				id, err := env.Client.UploadFullDataDir(ctx, p.Uint("id"), p.Get("dir"))
				if err != nil {
					return nil, err
				}
				return fmt.Sprintf("problem %d uploaded", id), nil
			},
		},
		{
			Service: "problem",
			Action:  "submit",
			Summary: "submit a source file; wait=pre|data|extra polls until that phase is judged",
			Fields: []Field{
				{Name: "pid", Aliases: []string{"id"}, Prompt: "problem_id", Type: FieldUint, Required: true},
				{Name: "cid", Type: FieldUint},
				{Name: "lang", Prompt: "lang", Type: FieldLang, Required: true},
				{Name: "file", Aliases: []string{"source_file"}, Prompt: "source file", Type: FieldFile, Required: true},
				{Name: "wait", Type: FieldString},
			},
			Run: runSubmit,
		},
		{
			Service: "submission",
			Action:  "detail",
			Summary: "show a submission",
			Fields:  []Field{{Name: "sid", Aliases: []string{"id"}, Prompt: "submission_id", Type: FieldUint, Required: true}},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				return env.Client.SubmissionDetail(ctx, p.Uint("sid"))
			},
		},
		{
			Service: "submission",
			Action:  "wait",
			Summary: "poll a submission until a phase is judged (default data)",
			Fields: []Field{
				{Name: "sid", Aliases: []string{"id"}, Prompt: "submission_id", Type: FieldUint, Required: true},
				{Name: "phase", Type: FieldString},
			},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				phase, err := phaseOf(p.Get("phase"))
				if err != nil {
					return nil, err
				}
				return env.Client.WaitJudged(ctx, p.Uint("sid"), phase)
			},
		},
		{
			Service: "submission",
			Action:  "rejudge",
			Summary: "judge a submission again",
			Fields:  []Field{{Name: "sid", Aliases: []string{"id"}, Prompt: "submission_id", Type: FieldUint, Required: true}},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				sid, err := env.Client.Rejudge(ctx, p.Uint("sid"))
				if err != nil {
					return nil, err
				}
				return fmt.Sprintf("submission %d queued", sid), nil
			},
		},
		{
			Service: "submission",
			Action:  "list",
			Summary: "list submissions",
			Fields: append(listFields(),
				Field{Name: "pid", Type: FieldUint},
				Field{Name: "uid", Type: FieldUint},
				Field{Name: "lang", Type: FieldLang},
			),
			Run: runSubmissionList,
		},
		{
			Service: "custom",
			Action:  "run",
			Summary: "run a source file once against an input file",
			Fields: []Field{
				{Name: "lang", Prompt: "lang", Type: FieldLang, Required: true},
				{Name: "file", Aliases: []string{"source_file"}, Prompt: "source file", Type: FieldFile, Required: true},
				{Name: "input", Aliases: []string{"input_file"}, Prompt: "input file", Type: FieldFile, Required: true},
			},
			Run: runCustomTest,
		},
		{
			Service: "custom",
			Action:  "result",
			Summary: "poll the last custom test once",
			Run: func(ctx context.Context, env Env, _ Params) (any, error) {
				res, err := env.Client.CustomTestResult(ctx)
				if err != nil {
					return nil, err
				}
				if res.Result == nil {
					return "still running", nil
				}
				return res.Result, nil
			},
		},
		{
			Service: "contest",
			Action:  "list",
			Summary: "list contests",
			Fields:  listFields(),
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				return env.Client.ContestMetas(ctx, searchQuery(p))
			},
		},
		{
			Service: "contest",
			Action:  "info",
			Summary: "contest meta and problems",
			Fields:  []Field{idField("contest_id")},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				return env.Client.ContestInfo(ctx, p.Uint("id"))
			},
		},
		{
			Service: "contest",
			Action:  "registrants",
			Summary: "list users registered to a contest",
			Fields:  append(listFields(), idField("contest_id")),
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				return env.Client.Registrants(ctx, api.RegistrantsQuery{ListQuery: listQuery(p), ID: p.Uint("id")})
			},
		},
		{
			Service: "contest",
			Action:  "register",
			Summary: "register the session user",
			Fields:  []Field{idField("contest_id")},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				return env.Client.RegisterContest(ctx, p.Uint("id"))
			},
		},
		{
			Service: "contest",
			Action:  "unregister",
			Summary: "unregister the session user",
			Fields:  []Field{idField("contest_id")},
			Run: func(ctx context.Context, env Env, p Params) (any, error) {
				return env.Client.UnregisterContest(ctx, p.Uint("id"))
			},
		},
		{
			Service: "api",
			Action:  "list",
			Summary: "every endpoint with its payload, return type and constraints",
			Run: func(context.Context, Env, Params) (any, error) {
				return api.Catalogue(), nil
			},
		},
	}

	result := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		result[cmd.Key()] = cmd
	}
	return result
}

func idField(prompt string) Field {
	return Field{Name: "id", Aliases: []string{"cid", "pid"}, Prompt: prompt, Type: FieldUint, Required: true}
}

func listFields() []Field {
	return []Field{
		{Name: "max", Aliases: []string{"max_count"}, Type: FieldUint},
		{Name: "offset", Type: FieldUint},
		{Name: "pattern", Type: FieldString},
	}
}

func listQuery(p Params) api.ListQuery {
	q := api.ListQuery{MaxCount: defaultListCount}
	if p.Has("max") {
		q.MaxCount = uint8(min(p.Uint("max"), math.MaxUint8))
	}
	q.Offset = uint32(min(p.Uint("offset"), math.MaxUint32))
	return q
}

func searchQuery(p Params) api.SearchQuery {
	q := api.SearchQuery{ListQuery: listQuery(p)}
	if p.Get("pattern") != "" {
		q.Pattern = p.Optional("pattern")
	}
	return q
}

func phaseOf(s string) (report.Phase, error) {
	if s == "" {
		return report.PhaseData, nil
	}
	return report.ParsePhase(s)
}

func runRegister(ctx context.Context, env Env, p Params) (any, error) {
	payload := api.RegisterPayload{
		Email:        p.Get("email"),
		Username:     p.Get("username"),
		PasswordHash: passwd.RegisterHash(p.Get("password")),
	}
	if err := api.ValidateRegister(payload); err != nil {
		return nil, err
	}
	msg, err := env.Client.Register(ctx, payload)
	if err != nil {
		return nil, err
	}
	_ = env.Store.Auth().Refresh(ctx)
	env.Store.Messages().Info("registered as " + payload.Username)
	return msg, nil
}

func runLogin(ctx context.Context, env Env, p Params) (any, error) {
	msg, err := env.Client.Login(ctx, api.LoginPayload{
		Username:     p.Get("username"),
		PasswordHash: passwd.RegisterHash(p.Get("password")),
	})
	if err != nil {
		return nil, err
	}
	_ = env.Store.Auth().Refresh(ctx)
	env.Store.Messages().Info("logged in as " + p.Get("username"))
	return msg, nil
}

func runWhoami(ctx context.Context, env Env, _ Params) (any, error) {
	auth := env.Store.Auth()
	if err := auth.Refresh(ctx); err != nil {
		return nil, err
	}
	return auth.Data(), nil
}

func runEditUser(ctx context.Context, env Env, p Params) (any, error) {
	update := api.UserUpdate{
		Email: p.Optional("email"),
		Motto: p.Optional("motto"),
		Name:  p.Optional("name"),
	}
	if update.Email != nil {
		if err := api.ValidateEmail(*update.Email); err != nil {
			return nil, err
		}
	}
	if g := p.Optional("gender"); g != nil {
		gender := api.Gender(*g)
		update.Gender = &gender
	}
	if pw := p.Optional("password"); pw != nil {
		hash := passwd.RegisterHash(*pw)
		update.PasswordHash = &hash
	}
	return env.Client.EditUser(ctx, update)
}

func runSubmit(ctx context.Context, env Env, p Params) (any, error) {
	lang, err := report.ParseFileType(p.Get("lang"))
	if err != nil {
		return nil, err
	}
	source, err := ReadFile(p.Get("file"))
	if err != nil {
		return nil, err
	}
	sid, err := env.Client.Submit(ctx, p.Uint("pid"), p.Uint("cid"), api.SourceUpload{Name: "source", Lang: lang, Source: source})
	if err != nil {
		return nil, err
	}
	if p.Get("wait") == "" {
		return fmt.Sprintf("submission %d queued", sid), nil
	}
	phase, err := report.ParsePhase(p.Get("wait"))
	if err != nil {
		return nil, err
	}
	return env.Client.WaitJudged(ctx, sid, phase)
}

func runSubmissionList(ctx context.Context, env Env, p Params) (any, error) {
	q := api.SubmissionListQuery{ListQuery: listQuery(p)}
	if p.Has("pid") {
		pid := p.Uint("pid")
		q.PID = &pid
	}
	if p.Has("uid") {
		uid := p.Uint("uid")
		q.UID = &uid
	}
	if p.Has("lang") {
		lang, err := report.ParseFileType(p.Get("lang"))
		if err != nil {
			return nil, err
		}
		q.Lang = &lang
	}
	return env.Client.SubmissionMetas(ctx, q)
}

func runCustomTest(ctx context.Context, env Env, p Params) (any, error) {
	lang, err := report.ParseFileType(p.Get("lang"))
	if err != nil {
		return nil, err
	}
	if !lang.Compilable() {
		return nil, fmt.Errorf("%s is not compilable", lang)
	}
	source, err := ReadFile(p.Get("file"))
	if err != nil {
		return nil, err
	}
	input, err := ReadFile(p.Get("input"))
	if err != nil {
		return nil, err
	}
	return env.Client.RunCustomTest(ctx, api.CustomTestForm{Lang: lang, Source: source, Input: input})
}

func writeOut(path string, data []byte) (any, error) {
	if path == "" {
		return data, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write output failed: %w", err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(data), strings.TrimSpace(path)), nil
}
