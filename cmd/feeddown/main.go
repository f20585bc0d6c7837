// Command feeddown reduces RDT feed-down measurements.
//
// Usage:
//
//	feeddown build    [flags] <scan>...
//	feeddown response [flags]
//	feeddown group    [flags]
//
// Shared settings (store, logging, knob source, ...) can be given as flags
// or as FEEDDOWN_* environment variables; flags win.
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
)

const usage = `usage: feeddown <command> [flags]

commands:
  build     build, fit and save datasets from a reference and knob scans
  response  reduce a simulated reference and scan to per-monitor responses
  group     merge saved partial datasets into one dataset per beam

Run "feeddown <command> -h" for the flags of a command.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return flag.ErrHelp
	}
	cmd := command{
		settings: loadSettings(getenv),
		stdout:   stdout,
		stderr:   stderr,
	}
	switch args[0] {
	case "build":
		return cmd.build(ctx, args[1:])
	case "response":
		return cmd.response(ctx, args[1:])
	case "group":
		return cmd.group(ctx, args[1:])
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}
