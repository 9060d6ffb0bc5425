package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ojclient/internal/cli/command"
	"ojclient/internal/cli/config"
	"ojclient/internal/cli/repl"
	"ojclient/internal/client/dispatch"
	"ojclient/internal/client/oj"
	"ojclient/internal/client/state"
	"ojclient/internal/client/transport"
	"ojclient/pkg/utils/logger"
)

const defaultConfigPath = "configs/ojcli.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	baseURL := flag.String("base", "", "Override base URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 10s)")
	race := flag.String("race", "", "Override race policy (last-settled-wins|latest-issued-wins)")
	pretty := flag.Bool("pretty", false, "Pretty print JSON results")
	exec := flag.String("c", "", "Run one command and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *race != "" {
		cfg.RacePolicy = *race
	}
	if *pretty {
		trueValue := true
		cfg.PrettyJSON = &trueValue
	}

	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	policy, err := dispatch.ParseRacePolicy(cfg.RacePolicy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid race policy: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []transport.Option{transport.WithTimeout(cfg.Timeout)}
	for k, v := range cfg.Headers {
		opts = append(opts, transport.WithHeader(k, v))
	}
	tc := transport.New(cfg.BaseURL, opts...)
	d := dispatch.New(tc, dispatch.WithRacePolicy(policy))
	store := state.New(ctx, d, cfg.Messages)
	defer store.Close()

	env := command.Env{Client: oj.New(d, cfg.Client()), Store: store}
	session := repl.New(tc, env, command.Registry(), cfg, os.Stdin, os.Stdout)
	if line := strings.TrimSpace(*exec); line != "" {
		session.Exec(ctx, line)
		return
	}
	session.Run(ctx)
}
