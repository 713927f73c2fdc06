// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/droidbridge/cmd/droidbridge/cli"
	"github.com/bureau-foundation/droidbridge/lib/device"
)

type devicesParams struct {
	cli.JSONOutput
}

func devicesCommand(env *Environment) *cli.Command {
	var params devicesParams
	return &cli.Command{
		Name:        "devices",
		ToolName:    "adb_devices",
		Summary:     "List connected Android devices",
		Description: "List connected Android devices with their state (device, offline, unauthorized).",
		Annotations: cli.ReadOnly(),
		Params:      func() any { return &params },
		Run: func(ctx context.Context, _ []string, out io.Writer) error {
			devices, err := env.Service.Devices(ctx)
			if err != nil {
				return categorize(err)
			}
			if done, err := params.EmitJSON(out, devices); done {
				return err
			}
			return writeText(out, renderDevices(out, devices))
		},
	}
}

// renderDevices formats devices as an aligned table. Colors are only
// emitted when out is a terminal.
func renderDevices(out io.Writer, devices []device.Device) string {
	if len(devices) == 0 {
		return "No devices connected."
	}

	renderer := lipgloss.NewRenderer(out)
	idWidth := len("DEVICE")
	for _, entry := range devices {
		idWidth = max(idWidth, len(entry.ID))
	}
	idStyle := renderer.NewStyle().Width(idWidth + 2)
	headerStyle := renderer.NewStyle().Bold(true)

	var builder strings.Builder
	builder.WriteString(headerStyle.Render(idStyle.Render("DEVICE") + "STATE"))
	for _, entry := range devices {
		builder.WriteString("\n")
		builder.WriteString(idStyle.Render(entry.ID))
		builder.WriteString(stateStyle(renderer, entry.State).Render(string(entry.State)))
	}
	return builder.String()
}

func stateStyle(renderer *lipgloss.Renderer, state device.State) lipgloss.Style {
	style := renderer.NewStyle()
	switch state {
	case device.StateDevice:
		return style.Foreground(lipgloss.Color("2"))
	case device.StateUnauthorized:
		return style.Foreground(lipgloss.Color("3"))
	default:
		return style.Faint(true)
	}
}
