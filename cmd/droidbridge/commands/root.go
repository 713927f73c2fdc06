// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/bureau-foundation/droidbridge/cmd/droidbridge/cli"
	"github.com/bureau-foundation/droidbridge/cmd/droidbridge/mcp"
	"github.com/bureau-foundation/droidbridge/lib/version"
)

const serverInstructions = "Android device automation through adb. Device-scoped tools accept an optional " +
	"device_id; it may be omitted only when exactly one device is connected. Call adb_devices to list " +
	"devices. Relative host paths resolve under the user's home directory."

// Root returns the droidbridge command tree.
func Root(env *Environment) *cli.Command {
	root := &cli.Command{
		Name:    "droidbridge",
		Summary: "Android device automation over adb, as CLI commands and MCP tools",
		Description: "droidbridge exposes Android device automation (shell, packages, files, app lifecycle,\n" +
			"screenshots) through adb. Every operation is a subcommand here and a tool of the MCP\n" +
			"server started by 'droidbridge serve'.",
		Examples: []cli.Example{
			{Description: "Serve MCP on stdin/stdout", Command: "droidbridge serve"},
			{Description: "List connected devices", Command: "droidbridge devices"},
			{Description: "Save a screenshot as JPEG", Command: "droidbridge screenshot -o ~/shot.jpg -f jpg"},
		},
	}
	root.Subcommands = append(toolCommands(env), serveCommand(env, root), versionCommand())
	return root
}

func serveCommand(env *Environment, root *cli.Command) *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Summary: "Serve the device tools over MCP on stdin/stdout",
		Description: "Serve every device operation as an MCP tool over newline-delimited JSON-RPC 2.0 on\n" +
			"stdin/stdout. adb must be runnable; this is checked once before serving.",
		Run: func(ctx context.Context, _ []string, out io.Writer) error {
			if err := env.Bridge.Check(ctx); err != nil {
				return err
			}
			env.Logger.Info("serving MCP on stdio", "adb", env.Bridge.Binary(), "version", version.Short())

			server := mcp.NewServer(root,
				mcp.WithLogger(env.Logger.With("component", "mcp")),
				mcp.WithInstructions(serverInstructions),
			)
			return server.Run(ctx, env.Input, out)
		},
	}
}

type versionParams struct {
	cli.JSONOutput
}

func versionCommand() *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Params:  func() any { return &params },
		Run: func(_ context.Context, _ []string, out io.Writer) error {
			if done, err := params.EmitJSON(out, version.Current()); done {
				return err
			}
			_, err := fmt.Fprintln(out, "droidbridge "+version.Full())
			return err
		},
	}
}
