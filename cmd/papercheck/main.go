package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/papercheck/internal/config"
	"github.com/kirillkom/papercheck/internal/core/ports"
	"github.com/kirillkom/papercheck/internal/observability/logging"
)

const version = "0.3.0"

const (
	exitOK          = 0
	exitHasErrors   = 1
	exitInvocation  = 2
	exitConfigError = 3
	exitInternal    = 4
)

// usageError marks a bad command line; main prints it with the usage text.
type usageError struct {
	message string
}

func (e *usageError) Error() string { return e.message }

func usagef(format string, args ...any) error {
	return &usageError{message: fmt.Sprintf(format, args...)}
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, env *environment, args []string) (int, error)
}

var commands = []command{
	{name: "check-pdf", usage: "check-pdf PATH [-type short|long] [-o results.json] [-xlsx results.xlsx] [-q] [-v]", run: runCheckPDF},
	{name: "find-refs", usage: "find-refs PDF [-pages N]", run: runFindRefs},
	{name: "reviews", usage: "reviews -user ID [-venue V] [-comment TEXT] [-remind] [-test-email ADDR]", run: runReviews},
}

// environment carries the process streams and the loaded config.
type environment struct {
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config

	// reviews overrides how the review tracker is built.
	reviews func(config.Config) (ports.ReviewTracker, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitInvocation
	}
	switch args[0] {
	case "-h", "-help", "--help", "help":
		printUsage(stdout)
		return exitOK
	case "-version", "--version", "version":
		fmt.Fprintf(stdout, "papercheck %s\n", version)
		return exitOK
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return exitInvocation
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return exitConfigError
	}
	logging.NewConsoleLogger(stderr, cfg.LogLevel)

	code, err := cmd.run(ctx, &environment{stdout: stdout, stderr: stderr, cfg: cfg}, args[1:])
	if err != nil {
		var uerr *usageError
		if errors.As(err, &uerr) || errors.Is(err, flag.ErrHelp) {
			if !errors.Is(err, flag.ErrHelp) {
				fmt.Fprintln(stderr, err)
			}
			fmt.Fprintf(stderr, "usage: papercheck %s\n", cmd.usage)
			return exitInvocation
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if code == exitOK {
			code = exitInternal
		}
	}
	return code
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "papercheck - academic submission checks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  papercheck %s\n", c.usage)
	}
}

// parseArgs lets flags appear before or after positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, usagef("%v", err)
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}
