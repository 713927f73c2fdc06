// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bureau-foundation/droidbridge/cmd/droidbridge/cli"
	"github.com/bureau-foundation/droidbridge/lib/automation"
	"github.com/bureau-foundation/droidbridge/lib/screenshot"
)

// DeviceTarget is embedded by every device-scoped parameter struct.
type DeviceTarget struct {
	DeviceID string `json:"device_id" flag:"device,d" desc:"Device ID (optional if only one device is connected)"`
}

// PackageTarget names an installed app.
type PackageTarget struct {
	DeviceTarget
	PackageName string `json:"package_name" flag:"package,p" desc:"Package name of the app" required:"true"`
}

type shellParams struct {
	DeviceTarget
	Command string `json:"command" flag:"command,c" desc:"Shell command to execute on the device" required:"true"`
}

type installParams struct {
	DeviceTarget
	Path string `json:"path" flag:"path" desc:"Path to the APK file, a directory of split APKs, or a glob" required:"true"`
}

type listPackagesParams struct {
	DeviceTarget
	cli.JSONOutput
	Filter string `json:"filter" flag:"filter" desc:"Optional case-insensitive substring to filter package names"`
}

type pullParams struct {
	DeviceTarget
	RemotePath string `json:"remote_path" flag:"remote-path" desc:"Path of the file on the device" required:"true"`
	LocalPath  string `json:"local_path" flag:"local-path" desc:"Destination on the host (relative paths resolve under the home directory)" required:"true"`
}

type pushParams struct {
	DeviceTarget
	LocalPath  string `json:"local_path" flag:"local-path" desc:"Source file on the host (relative paths resolve under the home directory)" required:"true"`
	RemotePath string `json:"remote_path" flag:"remote-path" desc:"Destination path on the device" required:"true"`
}

type saveScreenshotParams struct {
	DeviceTarget
	OutputPath string `json:"output_path" flag:"output,o" desc:"Where to save the screenshot (relative paths resolve under the home directory)" required:"true"`
	Format     string `json:"format" flag:"format,f" desc:"Image format" default:"png" enum:"png,jpg,jpeg,webp,bmp,gif"`
}

type copyScreenshotParams struct {
	DeviceTarget
	Format string `json:"format" flag:"format,f" desc:"Image format" default:"png" enum:"png,jpg,jpeg,webp,bmp,gif"`
}

type deviceOnlyParams struct {
	DeviceTarget
}

// toolCommands builds the device operation commands.
func toolCommands(env *Environment) []*cli.Command {
	service := env.Service
	return []*cli.Command{
		devicesCommand(env),
		shellCommand(service),
		textCommand(&installParams{}, "install", "adb_install",
			"Install an APK on the device",
			"Install an APK on the device. A directory or glob installs its APKs together as one split-APK transaction.",
			cli.Create(),
			func(ctx context.Context, params *installParams) (string, error) {
				return service.Install(ctx, params.DeviceID, params.Path)
			}),
		textCommand(&PackageTarget{}, "uninstall", "adb_uninstall",
			"Uninstall an app from the device", "",
			cli.Destructive(),
			func(ctx context.Context, params *PackageTarget) (string, error) {
				return service.Uninstall(ctx, params.DeviceID, params.PackageName)
			}),
		listPackagesCommand(service),
		textCommand(&pullParams{}, "pull", "adb_pull",
			"Pull a file from the device", "",
			cli.Create(),
			func(ctx context.Context, params *pullParams) (string, error) {
				return service.Pull(ctx, params.DeviceID, params.RemotePath, params.LocalPath)
			}),
		textCommand(&pushParams{}, "push", "adb_push",
			"Push a file to the device", "",
			cli.Create(),
			func(ctx context.Context, params *pushParams) (string, error) {
				return service.Push(ctx, params.DeviceID, params.LocalPath, params.RemotePath)
			}),
		textCommand(&PackageTarget{}, "launch", "launch_app",
			"Launch an app on the device",
			"Launch an app by package name. Falls back to starting the MAIN activity found in dumpsys when the launcher intent cannot be delivered.",
			cli.Create(),
			func(ctx context.Context, params *PackageTarget) (string, error) {
				return service.LaunchApp(ctx, params.DeviceID, params.PackageName)
			}),
		textCommand(&saveScreenshotParams{}, "screenshot", "take_screenshot_and_save",
			"Take a screenshot and save it",
			"Take a screenshot and save it to a host path. The file extension is adjusted to the chosen format.",
			cli.Create(),
			func(ctx context.Context, params *saveScreenshotParams) (string, error) {
				result, err := service.SaveScreenshot(ctx, params.DeviceID, params.OutputPath, params.Format)
				if err != nil {
					return "", err
				}
				return automation.SavedMessage(result) + "\n" + captureDetails(result), nil
			}),
		textCommand(&copyScreenshotParams{}, "screenshot-clipboard", "take_screenshot_and_copy_to_clipboard",
			"Take a screenshot and copy it to the clipboard", "",
			cli.Create(),
			func(ctx context.Context, params *copyScreenshotParams) (string, error) {
				result, err := service.CopyScreenshot(ctx, params.DeviceID, params.Format)
				if err != nil {
					return "", err
				}
				return automation.CopiedMessage(result) + "\n" + captureDetails(result), nil
			}),
		textCommand(&PackageTarget{}, "clear-data", "clear_app_data",
			"Clear an app's data and cache", "",
			cli.Destructive(),
			func(ctx context.Context, params *PackageTarget) (string, error) {
				return service.ClearAppData(ctx, params.DeviceID, params.PackageName)
			}),
		textCommand(&PackageTarget{}, "force-stop", "force_stop_app",
			"Force stop an app", "",
			cli.Idempotent(),
			func(ctx context.Context, params *PackageTarget) (string, error) {
				return service.ForceStopApp(ctx, params.DeviceID, params.PackageName)
			}),
		textCommand(&deviceOnlyParams{}, "home", "go_to_home",
			"Navigate to the home screen", "",
			cli.Idempotent(),
			func(ctx context.Context, params *deviceOnlyParams) (string, error) {
				return service.GoToHome(ctx, params.DeviceID)
			}),
		textCommand(&deviceOnlyParams{}, "settings", "open_settings",
			"Open the Settings app", "",
			cli.Idempotent(),
			func(ctx context.Context, params *deviceOnlyParams) (string, error) {
				return service.OpenSettings(ctx, params.DeviceID)
			}),
		textCommand(&PackageTarget{}, "clear-and-restart", "clear_cache_and_restart",
			"Clear an app's data and restart it", "",
			cli.Destructive(),
			func(ctx context.Context, params *PackageTarget) (string, error) {
				return service.ClearCacheAndRestart(ctx, params.DeviceID, params.PackageName)
			}),
		textCommand(&PackageTarget{}, "force-restart", "force_restart_app",
			"Force stop an app and start it again", "",
			cli.Create(),
			func(ctx context.Context, params *PackageTarget) (string, error) {
				return service.ForceRestartApp(ctx, params.DeviceID, params.PackageName)
			}),
	}
}

// textCommand builds a command whose result is one block of text.
func textCommand[P any](params *P, name, toolName, summary, description string, annotations *cli.ToolAnnotations,
	run func(context.Context, *P) (string, error)) *cli.Command {
	return &cli.Command{
		Name:        name,
		ToolName:    toolName,
		Summary:     summary,
		Description: description,
		Annotations: annotations,
		Params:      func() any { return params },
		Run: func(ctx context.Context, _ []string, out io.Writer) error {
			text, err := run(ctx, params)
			if err != nil {
				return categorize(err)
			}
			return writeText(out, text)
		},
	}
}

func shellCommand(service *automation.Service) *cli.Command {
	command := textCommand(&shellParams{}, "shell", "adb_shell",
		"Run a shell command on the device",
		"Run a shell command on the device. The command string is interpreted by the device's shell.",
		cli.Destructive(),
		func(ctx context.Context, params *shellParams) (string, error) {
			return service.Shell(ctx, params.DeviceID, params.Command)
		})
	command.Examples = []cli.Example{
		{Description: "Read a system property", Command: `droidbridge shell -c "getprop ro.build.version.release"`},
		{Description: "Target one of several devices", Command: `droidbridge shell -d emulator-5554 -c "echo ok"`},
	}
	return command
}

func listPackagesCommand(service *automation.Service) *cli.Command {
	var params listPackagesParams
	return &cli.Command{
		Name:        "packages",
		ToolName:    "adb_list_packages",
		Summary:     "List installed packages",
		Annotations: cli.ReadOnly(),
		Params:      func() any { return &params },
		Run: func(ctx context.Context, _ []string, out io.Writer) error {
			packages, err := service.ListPackages(ctx, params.DeviceID, params.Filter)
			if err != nil {
				return categorize(err)
			}
			if done, err := params.EmitJSON(out, packages); done {
				return err
			}
			return writeText(out, strings.Join(packages, "\n"))
		},
	}
}

// captureDetails describes a delivered capture so callers can tell
// whether the screen changed between two shots.
func captureDetails(result *screenshot.Result) string {
	return fmt.Sprintf("Size: %dx%d\nBLAKE3: %s", result.Width, result.Height, result.Digest)
}

func writeText(out io.Writer, text string) error {
	if text == "" {
		return nil
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(out, text)
	return err
}
