package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/watplay"
	"github.com/wippyai/watplay/config"
	"github.com/wippyai/watplay/engine"
	"github.com/wippyai/watplay/playground"
	"github.com/wippyai/watplay/wat"
)

type options struct {
	configPath  string
	watFile     string
	hostFile    string
	logLevel    string
	logFile     string
	timeout     time.Duration
	interactive bool
	once        bool
	printAST    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&opts.watFile, "wat", "", "WAT source file (default: built-in sample)")
	flag.StringVar(&opts.hostFile, "host", "", "Starlark host bindings file (default: built-in sample)")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI (default on a terminal)")
	flag.BoolVar(&opts.once, "once", false, "Evaluate once and print the console, even on a terminal")
	flag.BoolVar(&opts.printAST, "ast", false, "Print the decoded module before the console in batch mode")
	flag.DurationVar(&opts.timeout, "timeout", 0, "Bound each evaluation run (0 = unbounded)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flag.Parse()

	if opts.interactive && opts.once {
		fmt.Fprintln(os.Stderr, "Usage: watplay [-config file] [-wat file] [-host file] [-i | -once [-ast]]")
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if opts.timeout != 0 {
		cfg.Timeout = opts.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	src, err := readSources(opts.watFile, opts.hostFile)
	if err != nil {
		return err
	}

	interactive := opts.interactive ||
		(!opts.once && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())))

	logger := zap.NewNop()
	if !interactive || cfg.Log.File != "" {
		if logger, err = cfg.Log.Logger(); err != nil {
			return err
		}
	}
	defer logger.Sync()
	wat.SetLogger(logger.Named("wat"))
	engine.SetLogger(logger.Named("engine"))
	playground.SetLogger(logger.Named("playground"))

	if interactive {
		return runInteractive(cfg.Config, src)
	}
	return runOnce(context.Background(), cfg.Config, src, opts.printAST, os.Stdout)
}

func readSources(watFile, hostFile string) (playground.SourcePair, error) {
	src := playground.SourcePair{WAT: watplay.DefaultWAT, Host: watplay.DefaultHost}
	if watFile != "" {
		data, err := os.ReadFile(watFile)
		if err != nil {
			return src, fmt.Errorf("read wat: %w", err)
		}
		src.WAT = string(data)
	}
	if hostFile != "" {
		data, err := os.ReadFile(hostFile)
		if err != nil {
			return src, fmt.Errorf("read host: %w", err)
		}
		src.Host = string(data)
	}
	return src, nil
}

// runOnce evaluates src and prints the panes. A failed run is reported on
// the console and also returned so the exit status reflects it.
func runOnce(ctx context.Context, cfg playground.Config, src playground.SourcePair, printAST bool, w io.Writer, opts ...playground.Option) error {
	pg, err := playground.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer pg.Close(ctx)

	res := pg.Trigger(ctx, src)
	playground.Logger().Info("evaluated", zap.Stringer("result", res))

	if printAST && pg.AST() != "" {
		fmt.Fprintln(w, pg.AST())
		fmt.Fprintln(w)
	}
	for _, line := range pg.Console() {
		fmt.Fprintln(w, line)
	}
	if res.Err != nil {
		return fmt.Errorf("run failed at %s", res.FailedAt)
	}
	return nil
}
