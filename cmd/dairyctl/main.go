// Command dairyctl drives the farm API from a terminal. The session survives
// between invocations in the configured token store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"dairyflow/client"
	"dairyflow/internal/bootstrap"
	"dairyflow/internal/config"
	"dairyflow/internal/metrics"
	"dairyflow/pkg/logger"
	"dairyflow/service"
	"dairyflow/tokenstore"

	"go.uber.org/zap"
)

var errUsage = errors.New("usage")

// app is what every command runs against.
type app struct {
	svc   *service.Services
	store *tokenstore.Store
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) (any, error)
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dairyctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "path to a config file")
	verbose := fs.Bool("v", false, "log every API request")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		usage(stderr)
		return 2
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		usage(stderr)
		return 2
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if *verbose {
		logger.InitLogger(cfg.Environment)
	} else {
		logger.InitLogger("cli")
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend, err := bootstrap.OpenBackend(ctx, cfg.Store.Backend, cfg)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer backend.Close()

	a := newApp(cfg, backend)
	out, err := cmd.run(ctx, a, fs.Args()[1:])
	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "usage: dairyctl %s %s\n", fs.Arg(0), cmd.usage)
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", errorMessage(err))
		logger.Debug("command failed", zap.String("command", fs.Arg(0)), zap.Error(err))
		return 1
	}
	if out == nil {
		return 0
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func newApp(cfg *config.Config, backend tokenstore.Backend) *app {
	store := tokenstore.New(backend)

	opts := []client.Option{
		client.WithTimeout(cfg.Client.Timeout),
		client.WithObserver(metrics.NewClientObserver()),
	}
	if cfg.Client.RefreshCoalescing {
		opts = append(opts, client.WithRefreshCoalescing())
	}
	c := client.New(cfg.Client.BaseURL, store, opts...)

	return &app{
		svc:   service.New(c, store),
		store: store,
	}
}

// errorMessage prefers the normalized message the API layer produced.
func errorMessage(err error) string {
	if e, ok := client.AsError(err); ok {
		return e.Message
	}
	return err.Error()
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: dairyctl [-config file] [-v] <command> [args]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-18s %s\n", name, commands[name].usage)
	}
}

// parseFlags parses command flags, turning any flag error into errUsage.
func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func requireFlags(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return errUsage
		}
	}
	return nil
}
