// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// droidbridge is an MCP server and CLI for Android device automation
// through adb.
//
// Usage:
//
//	droidbridge [--config FILE] <command> [flags]
//
// The configuration file may also be named by DROIDBRIDGE_CONFIG. With
// neither, built-in defaults apply.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/droidbridge/cmd/droidbridge/cli"
	"github.com/bureau-foundation/droidbridge/cmd/droidbridge/commands"
	"github.com/bureau-foundation/droidbridge/lib/config"
	"github.com/bureau-foundation/droidbridge/lib/process"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		process.Fatal(err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("droidbridge", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(io.Discard)
	configPath := flagSet.String("config", "", "configuration file (.yaml, .yml, .json or .jsonc)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			// Fall through to the command tree's help.
			args = []string{"--help"}
		} else {
			return cli.Validation("%v", err)
		}
	} else {
		args = flagSet.Args()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cli.NewCommandLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	env, err := commands.NewEnvironment(cfg, logger, commands.EnvironmentOptions{})
	if err != nil {
		return err
	}
	return commands.Root(env).Execute(ctx, args, out)
}
