// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/bureau-foundation/droidbridge/cmd/droidbridge/cli"
)

type testResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *testRPCError   `json:"error"`
}

type testRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type echoParams struct {
	Message string `json:"message" flag:"message" desc:"message to echo" required:"true"`
}

type failParams struct {
	Reason string `json:"reason" flag:"reason" desc:"failure reason" default:"boom"`
}

type formatParams struct {
	cli.JSONOutput
	Value string `json:"value" flag:"value" desc:"value to print"`
}

// testCommandTree returns a fresh tree for each test so parameter
// variables are not shared.
func testCommandTree() *cli.Command {
	var echo echoParams
	var fail failParams
	var format formatParams

	return &cli.Command{
		Name: "test",
		Subcommands: []*cli.Command{
			{
				Name:        "echo",
				ToolName:    "test_echo",
				Summary:     "Echo a message",
				Description: "Echo the provided message.",
				Annotations: cli.ReadOnly(),
				Params:      func() any { return &echo },
				Run: func(_ context.Context, _ []string, out io.Writer) error {
					_, err := fmt.Fprintln(out, echo.Message)
					return err
				},
			},
			{
				Name:     "fail",
				ToolName: "test_fail",
				Summary:  "Always fails",
				Params:   func() any { return &fail },
				Run: func(_ context.Context, _ []string, out io.Writer) error {
					fmt.Fprint(out, "partial")
					return cli.NotFound("nothing called %s", fail.Reason).WithCode("DeviceNotFound")
				},
			},
			{
				Name:     "format",
				ToolName: "test_format",
				Summary:  "Conditional JSON output",
				Params:   func() any { return &format },
				Run: func(_ context.Context, _ []string, out io.Writer) error {
					if done, err := format.EmitJSON(out, map[string]string{"value": format.Value}); done {
						return err
					}
					_, err := fmt.Fprintf(out, "VALUE: %s\n", format.Value)
					return err
				},
			},
			{
				Name:     "plain",
				ToolName: "test_plain",
				Summary:  "Fails with an uncategorized error",
				Run: func(context.Context, []string, io.Writer) error {
					return errors.New("plain failure")
				},
			},
			{
				Name:    "local",
				Summary: "CLI only",
				Run:     func(context.Context, []string, io.Writer) error { return nil },
			},
		},
	}
}

func initMessages() []map[string]any {
	return []map[string]any{
		{
			"jsonrpc": "2.0",
			"id":      0,
			"method":  "initialize",
			"params": map[string]any{
				"protocolVersion": protocolVersion,
				"capabilities":    map[string]any{},
				"clientInfo":      map[string]any{"name": "test", "version": "1.0"},
			},
		},
		{
			"jsonrpc": "2.0",
			"method":  "notifications/initialized",
		},
	}
}

func callMessage(id int, name string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": arguments},
	}
}

// mcpSession feeds messages to a fresh server and returns the responses.
func mcpSession(t *testing.T, root *cli.Command, messages ...map[string]any) []testResponse {
	t.Helper()

	var input bytes.Buffer
	for _, message := range messages {
		data, err := json.Marshal(message)
		if err != nil {
			t.Fatalf("marshal message: %v", err)
		}
		input.Write(data)
		input.WriteByte('\n')
	}
	return runSession(t, root, &input)
}

func runSession(t *testing.T, root *cli.Command, input io.Reader) []testResponse {
	t.Helper()

	var output bytes.Buffer
	if err := NewServer(root).Run(context.Background(), input, &output); err != nil {
		t.Fatalf("server.Run: %v", err)
	}

	var responses []testResponse
	scanner := bufio.NewScanner(&output)
	for scanner.Scan() {
		var response testResponse
		if err := json.Unmarshal(scanner.Bytes(), &response); err != nil {
			t.Fatalf("unmarshal response: %v\nraw: %s", err, scanner.Bytes())
		}
		responses = append(responses, response)
	}
	return responses
}

func toolResult(t *testing.T, response testResponse) toolsCallResult {
	t.Helper()
	if response.Error != nil {
		t.Fatalf("unexpected RPC error: %d %s", response.Error.Code, response.Error.Message)
	}
	var result toolsCallResult
	if err := json.Unmarshal(response.Result, &result); err != nil {
		t.Fatalf("unmarshal tools/call result: %v", err)
	}
	return result
}

func TestNewServer_ToolDiscovery(t *testing.T) {
	t.Parallel()

	server := NewServer(testCommandTree())
	got := strings.Join(server.ToolNames(), ",")
	want := "test_echo,test_fail,test_format,test_plain"
	if got != want {
		t.Errorf("ToolNames() = %s, want %s", got, want)
	}
	if schema := server.toolsByName["test_plain"].inputSchema; schema == nil || schema.Type != "object" {
		t.Errorf("paramless tool schema = %+v, want an object schema", schema)
	}
}

func TestServer_Initialize(t *testing.T) {
	t.Parallel()

	responses := mcpSession(t, testCommandTree(), initMessages()...)
	if len(responses) != 1 {
		t.Fatalf("expected 1 response (the notification gets none), got %d", len(responses))
	}

	var result initializeResult
	if err := json.Unmarshal(responses[0].Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.ProtocolVersion != protocolVersion {
		t.Errorf("protocolVersion = %q, want %q", result.ProtocolVersion, protocolVersion)
	}
	if result.ServerInfo.Name != "droidbridge" {
		t.Errorf("serverInfo.name = %q, want droidbridge", result.ServerInfo.Name)
	}
	if result.Capabilities.Tools == nil {
		t.Error("capabilities.tools is nil")
	}
}

func TestServer_Ping(t *testing.T) {
	t.Parallel()

	responses := mcpSession(t, testCommandTree(), map[string]any{"jsonrpc": "2.0", "id": 7, "method": "ping"})
	if len(responses) != 1 || responses[0].Error != nil {
		t.Fatalf("ping responses = %+v", responses)
	}
	if string(responses[0].ID) != "7" {
		t.Errorf("id = %s, want 7", responses[0].ID)
	}
}

func TestServer_ProtocolErrors(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name     string
		input    string
		wantCode int
		wantID   string
	}
	for _, tc := range []testCase{
		{
			name:     "parse error",
			input:    "{not json\n",
			wantCode: codeParseError,
			wantID:   "null",
		},
		{
			name:     "wrong jsonrpc version",
			input:    `{"jsonrpc":"1.0","id":3,"method":"ping"}` + "\n",
			wantCode: codeInvalidRequest,
			wantID:   "3",
		},
		{
			name:     "unknown method",
			input:    `{"jsonrpc":"2.0","id":4,"method":"resources/list"}` + "\n",
			wantCode: codeMethodNotFound,
			wantID:   "4",
		},
		{
			name:     "tools/list before initialize",
			input:    `{"jsonrpc":"2.0","id":5,"method":"tools/list"}` + "\n",
			wantCode: codeInvalidRequest,
			wantID:   "5",
		},
		{
			name:     "initialize without params",
			input:    `{"jsonrpc":"2.0","id":6,"method":"initialize"}` + "\n",
			wantCode: codeInvalidParams,
			wantID:   "6",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			responses := runSession(t, testCommandTree(), strings.NewReader(tc.input))
			if len(responses) != 1 {
				t.Fatalf("expected 1 response, got %d", len(responses))
			}
			if responses[0].Error == nil {
				t.Fatalf("expected an error response, got result %s", responses[0].Result)
			}
			if responses[0].Error.Code != tc.wantCode {
				t.Errorf("code = %d, want %d", responses[0].Error.Code, tc.wantCode)
			}
			if string(responses[0].ID) != tc.wantID {
				t.Errorf("id = %s, want %s", responses[0].ID, tc.wantID)
			}
		})
	}
}

func TestServer_NotificationsAndBlankLines(t *testing.T) {
	t.Parallel()

	input := "\n" + `{"jsonrpc":"2.0","method":"notifications/cancelled"}` + "\n\n" +
		`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"
	responses := runSession(t, testCommandTree(), strings.NewReader(input))
	if len(responses) != 1 {
		t.Fatalf("expected only the ping response, got %d", len(responses))
	}
}

func TestServer_ToolsList(t *testing.T) {
	t.Parallel()

	messages := append(initMessages(), map[string]any{"jsonrpc": "2.0", "id": 1, "method": "tools/list"})
	responses := mcpSession(t, testCommandTree(), messages...)
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}

	var result struct {
		Tools []struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			InputSchema cli.Schema      `json:"inputSchema"`
			Annotations toolAnnotations `json:"annotations"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(responses[1].Result, &result); err != nil {
		t.Fatalf("unmarshal tools/list: %v", err)
	}
	if len(result.Tools) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(result.Tools))
	}

	echo := result.Tools[0]
	if echo.Description != "Echo the provided message." {
		t.Errorf("description = %q", echo.Description)
	}
	if len(echo.InputSchema.Required) != 1 || echo.InputSchema.Required[0] != "message" {
		t.Errorf("required = %v, want [message]", echo.InputSchema.Required)
	}
	if echo.Annotations.ReadOnlyHint == nil || !*echo.Annotations.ReadOnlyHint {
		t.Error("echo should carry readOnlyHint=true")
	}

	// The JSON output toggle is forced by the server, not offered to clients.
	format := result.Tools[2]
	if _, ok := format.InputSchema.Properties["json"]; ok {
		t.Error("format schema should not expose the json flag")
	}
	if result.Tools[1].Description != "Always fails" {
		t.Errorf("description should fall back to the summary, got %q", result.Tools[1].Description)
	}
}

func TestServer_ToolsCall(t *testing.T) {
	t.Parallel()

	messages := append(initMessages(),
		callMessage(1, "test_echo", map[string]any{"message": "hello"}),
		callMessage(2, "test_format", map[string]any{"value": "x"}),
	)
	responses := mcpSession(t, testCommandTree(), messages...)
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}

	echo := toolResult(t, responses[1])
	if echo.IsError || len(echo.Content) != 1 || echo.Content[0].Text != "hello" {
		t.Errorf("echo result = %+v, want one block reading hello", echo)
	}

	format := toolResult(t, responses[2])
	var decoded map[string]string
	if err := json.Unmarshal([]byte(format.Content[0].Text), &decoded); err != nil {
		t.Fatalf("format output should be JSON, got %q: %v", format.Content[0].Text, err)
	}
	if decoded["value"] != "x" {
		t.Errorf("decoded value = %q, want x", decoded["value"])
	}
}

func TestServer_ToolsCall_Errors(t *testing.T) {
	t.Parallel()

	messages := append(initMessages(),
		callMessage(1, "test_fail", nil),
		callMessage(2, "test_echo", map[string]any{}),
		callMessage(3, "test_echo", map[string]any{"message": 42}),
		callMessage(4, "test_plain", nil),
		callMessage(5, "test_missing", nil),
	)
	responses := mcpSession(t, testCommandTree(), messages...)
	if len(responses) != 6 {
		t.Fatalf("expected 6 responses, got %d", len(responses))
	}

	fail := toolResult(t, responses[1])
	if !fail.IsError || len(fail.Content) != 2 {
		t.Fatalf("fail result = %+v, want isError with output and error blocks", fail)
	}
	if fail.Content[0].Text != "partial" {
		t.Errorf("first block = %q, want the partial output", fail.Content[0].Text)
	}
	// The reason default applies when the argument is absent.
	if fail.Content[1].Text != "Error: nothing called boom" {
		t.Errorf("error block = %q", fail.Content[1].Text)
	}
	if fail.ErrorInfo == nil || fail.ErrorInfo.Category != "not_found" || fail.ErrorInfo.Code != "DeviceNotFound" {
		t.Errorf("errorInfo = %+v, want not_found/DeviceNotFound", fail.ErrorInfo)
	}

	missing := toolResult(t, responses[2])
	if !missing.IsError || missing.Content[0].Text != "Error: Invalid parameters: message is required and must be a string" {
		t.Errorf("missing-parameter result = %+v", missing)
	}
	if missing.ErrorInfo.Category != "validation" || missing.ErrorInfo.Code != "InvalidParameters" {
		t.Errorf("missing-parameter errorInfo = %+v", missing.ErrorInfo)
	}

	wrongType := toolResult(t, responses[3])
	if !wrongType.IsError || !strings.HasPrefix(wrongType.Content[0].Text, "Error: Invalid parameters:") {
		t.Errorf("wrong-type result = %+v", wrongType)
	}

	plain := toolResult(t, responses[4])
	if plain.ErrorInfo == nil || plain.ErrorInfo.Category != "internal" || plain.ErrorInfo.Retryable {
		t.Errorf("plain errorInfo = %+v, want internal and not retryable", plain.ErrorInfo)
	}

	if responses[5].Error == nil || responses[5].Error.Code != codeInvalidParams {
		t.Errorf("unknown tool response = %+v, want invalid params", responses[5])
	}
}

func TestServer_ToolsCall_ParamsResetBetweenCalls(t *testing.T) {
	t.Parallel()

	messages := append(initMessages(),
		callMessage(1, "test_echo", map[string]any{"message": "first"}),
		callMessage(2, "test_echo", map[string]any{}),
	)
	responses := mcpSession(t, testCommandTree(), messages...)
	second := toolResult(t, responses[2])
	if !second.IsError {
		t.Errorf("second call reused the first call's message: %+v", second)
	}
}

func TestClassifyError_Context(t *testing.T) {
	t.Parallel()

	info := classifyError(fmt.Errorf("adb shell: %w", context.DeadlineExceeded))
	if info.Category != "transient" || !info.Retryable {
		t.Errorf("errorInfo = %+v, want transient and retryable", info)
	}
}
