// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/bureau-foundation/droidbridge/cmd/droidbridge/cli"
	"github.com/bureau-foundation/droidbridge/lib/version"
)

// maxMessageSize bounds one JSON-RPC line.
const maxMessageSize = 4 * 1024 * 1024

// Server exposes droidbridge commands as MCP tools.
type Server struct {
	tools        []tool
	toolsByName  map[string]*tool
	instructions string
	logger       *slog.Logger
	initialized  bool
}

// ServerOption configures optional server behavior.
type ServerOption func(*Server)

// WithInstructions sets the instructions returned from initialize.
func WithInstructions(instructions string) ServerOption {
	return func(s *Server) {
		s.instructions = instructions
	}
}

// WithLogger sets the logger for protocol and tool-call records.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

type tool struct {
	name        string
	title       string
	description string
	annotations *toolAnnotations
	inputSchema *cli.Schema
	command     *cli.Command
}

// NewServer walks root and registers every command that declares a
// ToolName. A command whose schema cannot be generated is skipped with
// a warning.
func NewServer(root *cli.Command, options ...ServerOption) *Server {
	s := &Server{logger: slog.New(slog.DiscardHandler)}
	for _, option := range options {
		option(s)
	}

	root.Walk(func(command *cli.Command) {
		if command.ToolName == "" || command.Run == nil {
			return
		}
		inputSchema := &cli.Schema{Type: "object"}
		if command.Params != nil {
			schema, err := cli.ParamsSchema(command.Params())
			if err != nil {
				s.logger.Warn("skipping tool: input schema error", "tool", command.ToolName, "error", err)
				return
			}
			inputSchema = schema
		}
		s.tools = append(s.tools, tool{
			name:        command.ToolName,
			title:       command.Summary,
			description: descriptionText(command),
			annotations: translateAnnotations(command.Annotations),
			inputSchema: inputSchema,
			command:     command,
		})
	})

	s.toolsByName = make(map[string]*tool, len(s.tools))
	for i := range s.tools {
		s.toolsByName[s.tools[i].name] = &s.tools[i]
	}
	return s
}

// ToolNames returns the registered tool names in discovery order.
func (s *Server) ToolNames() []string {
	names := make([]string, len(s.tools))
	for i := range s.tools {
		names[i] = s.tools[i].name
	}
	return names
}

// Run processes newline-delimited JSON-RPC requests from input and
// writes responses to output until input reaches EOF. It returns nil at
// EOF and an error only when the transport itself fails.
func (s *Server) Run(ctx context.Context, input io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	encoder := json.NewEncoder(output)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			if writeErr := writeError(encoder, json.RawMessage("null"), codeParseError, "parse error: "+err.Error()); writeErr != nil {
				return cli.Internal("writing parse error response: %w", writeErr)
			}
			continue
		}

		if req.JSONRPC != "2.0" {
			if !req.isNotification() {
				if writeErr := writeError(encoder, req.ID, codeInvalidRequest, "unsupported JSON-RPC version"); writeErr != nil {
					return cli.Internal("writing version error response: %w", writeErr)
				}
			}
			continue
		}

		if req.isNotification() {
			s.logger.Debug("notification", "method", req.Method)
			continue
		}

		if err := s.dispatch(ctx, encoder, &req); err != nil {
			return cli.Internal("writing response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, encoder *json.Encoder, req *request) error {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(encoder, req)
	case "ping":
		return writeResult(encoder, req.ID, map[string]any{})
	case "tools/list":
		if !s.initialized {
			return writeError(encoder, req.ID, codeInvalidRequest, "server not initialized (call initialize first)")
		}
		return s.handleToolsList(encoder, req)
	case "tools/call":
		if !s.initialized {
			return writeError(encoder, req.ID, codeInvalidRequest, "server not initialized (call initialize first)")
		}
		return s.handleToolsCall(ctx, encoder, req)
	default:
		return writeError(encoder, req.ID, codeMethodNotFound, "unknown method: "+req.Method)
	}
}

func (s *Server) handleInitialize(encoder *json.Encoder, req *request) error {
	if len(req.Params) == 0 {
		return writeError(encoder, req.ID, codeInvalidParams, "params required for initialize")
	}
	var params initializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(encoder, req.ID, codeInvalidParams, "invalid initialize params: "+err.Error())
	}

	s.initialized = true
	s.logger.Info("client initialized",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"requested_protocol", params.ProtocolVersion,
	)

	return writeResult(encoder, req.ID, initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    serverCapabilities{Tools: &toolCapability{}},
		ServerInfo:      serverInfo{Name: serverName, Version: version.Short()},
		Instructions:    s.instructions,
	})
}

func (s *Server) handleToolsList(encoder *json.Encoder, req *request) error {
	descriptions := make([]toolDescription, 0, len(s.tools))
	for _, t := range s.tools {
		descriptions = append(descriptions, toolDescription{
			Name:        t.name,
			Title:       t.title,
			Description: t.description,
			InputSchema: t.inputSchema,
			Annotations: t.annotations,
		})
	}
	return writeResult(encoder, req.ID, toolsListResult{Tools: descriptions})
}

func (s *Server) handleToolsCall(ctx context.Context, encoder *json.Encoder, req *request) error {
	if len(req.Params) == 0 {
		return writeError(encoder, req.ID, codeInvalidParams, "params required for tools/call")
	}
	var params toolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(encoder, req.ID, codeInvalidParams, "invalid tools/call params: "+err.Error())
	}

	t, ok := s.toolsByName[params.Name]
	if !ok {
		return writeError(encoder, req.ID, codeInvalidParams, "unknown tool: "+params.Name)
	}

	start := time.Now()
	output, runErr := s.executeTool(ctx, t, params.Arguments)
	logger := s.logger.With("tool", t.name, "duration", time.Since(start))
	if runErr != nil {
		logger.Info("tool call failed", "error", runErr)
	} else {
		logger.Info("tool call")
	}

	return writeResult(encoder, req.ID, buildToolResult(output, runErr))
}

// executeTool zeroes the command's params, applies tag defaults,
// overlays the JSON arguments and runs the command with output
// captured in memory.
func (s *Server) executeTool(ctx context.Context, t *tool, arguments json.RawMessage) (string, error) {
	var params any
	if t.command.Params != nil {
		params = t.command.Params()
		reflect.ValueOf(params).Elem().SetZero()

		// Building the flag set writes each field's default.
		t.command.FlagSet()

		if len(arguments) > 0 && string(arguments) != "null" {
			if err := json.Unmarshal(arguments, params); err != nil {
				return "", cli.Validation("Invalid parameters: %v", err).WithCode("InvalidParameters")
			}
		}
		if outputter, ok := params.(cli.JSONOutputter); ok {
			outputter.SetJSONOutput(true)
		}
		if err := cli.CheckRequired(params); err != nil {
			return "", err
		}
	}

	var buffer bytes.Buffer
	runErr := t.command.Run(ctx, nil, &buffer)
	return strings.TrimRight(buffer.String(), "\n"), runErr
}

// buildToolResult assembles the tools/call result. MCP requires at
// least one content block.
func buildToolResult(output string, runErr error) toolsCallResult {
	result := toolsCallResult{}
	if output != "" {
		result.Content = append(result.Content, contentBlock{Type: "text", Text: output})
	}
	if runErr != nil {
		result.IsError = true
		result.Content = append(result.Content, contentBlock{Type: "text", Text: "Error: " + runErr.Error()})
		result.ErrorInfo = classifyError(runErr)
	}
	if len(result.Content) == 0 {
		result.Content = []contentBlock{{Type: "text", Text: ""}}
	}
	return result
}

func classifyError(err error) *errorInfo {
	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) {
		return &errorInfo{
			Category:  string(toolErr.Category),
			Code:      toolErr.Code,
			Retryable: toolErr.Retryable(),
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &errorInfo{Category: string(cli.CategoryTransient), Retryable: true}
	}
	return &errorInfo{Category: string(cli.CategoryInternal)}
}

func descriptionText(command *cli.Command) string {
	if command.Description != "" {
		return command.Description
	}
	return command.Summary
}

func translateAnnotations(annotations *cli.ToolAnnotations) *toolAnnotations {
	if annotations == nil {
		return nil
	}
	return &toolAnnotations{
		ReadOnlyHint:    annotations.ReadOnly,
		DestructiveHint: annotations.Destructive,
		IdempotentHint:  annotations.Idempotent,
		OpenWorldHint:   annotations.OpenWorld,
	}
}

func writeResult(encoder *json.Encoder, id json.RawMessage, result any) error {
	return encoder.Encode(response{JSONRPC: "2.0", ID: id, Result: result})
}

func writeError(encoder *json.Encoder, id json.RawMessage, code int, message string) error {
	return encoder.Encode(response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}
