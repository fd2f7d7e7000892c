package mcphub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// JSON-RPC methods understood by stdio servers.
const (
	methodDiscover = "discover"
	methodCallTool = "call_tool"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// StdioAdapter reaches servers that run as short-lived subprocesses: one
// JSON-RPC-shaped request is written to stdin, stdin is closed, and the last
// non-empty line of stdout is the response. Earlier stdout lines are treated
// as incidental log noise.
type StdioAdapter struct {
	// Timeout bounds each subprocess run when the server config has none.
	Timeout time.Duration
	Logger  *logrus.Logger
}

func (a *StdioAdapter) logger() *logrus.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logrus.StandardLogger()
}

// Discover runs the configured command once with a discover request and
// decodes the catalog from its output.
func (a *StdioAdapter) Discover(ctx context.Context, cfg ServerConfig) (*DiscoveredServer, error) {
	stdioCfg, ok := AsStdio(cfg)
	if !ok {
		return nil, fmt.Errorf("mcphub: stdio adapter received %T", cfg)
	}
	payload, err := a.roundTrip(ctx, stdioCfg, methodDiscover, map[string]any{})
	if err != nil {
		return nil, err
	}
	return &DiscoveredServer{
		ID:        stdioCfg.ID,
		Transport: TransportStdio,
		Version:   resolveVersion(payloadVersion(payload), stdioCfg.Version),
		Tools:     decodeTools(payload),
		Resources: decodeResources(payload),
		Prompts:   decodePrompts(payload),
	}, nil
}

// Execute runs the configured command once with a call_tool request.
func (a *StdioAdapter) Execute(ctx context.Context, cfg ServerConfig, toolName string, args map[string]any) (any, error) {
	stdioCfg, ok := AsStdio(cfg)
	if !ok {
		return nil, fmt.Errorf("mcphub: stdio adapter received %T", cfg)
	}
	if args == nil {
		args = map[string]any{}
	}
	return a.roundTrip(ctx, stdioCfg, methodCallTool, map[string]any{
		"name":      toolName,
		"arguments": args,
	})
}

// roundTrip spawns the process, performs the single exchange, and enforces
// the per-call deadline. The command context is the only cancellation
// source: when the deadline fires the process is killed exactly once.
func (a *StdioAdapter) roundTrip(ctx context.Context, cfg *StdioServerConfig, method string, params any) (any, error) {
	if cfg.Command == "" {
		return nil, &TransportError{ServerID: cfg.ID, Body: "command missing"}
	}

	timeout := callTimeout(&cfg.BaseServerConfig, a.Timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("mcphub: encoding request for %q: %w", cfg.ID, err)
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = cfg.WorkingDir
	if len(cfg.Env) > 0 {
		env := os.Environ()
		for k, v := range cfg.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}
	cmd.Stdin = bytes.NewReader(append(request, '\n'))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	a.logger().WithFields(logrus.Fields{
		"server":  cfg.ID,
		"command": cfg.Command,
		"method":  method,
	}).Debug("spawning stdio server")

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, &TimeoutError{ServerID: cfg.ID, Timeout: timeout}
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, &TransportError{
				ServerID: cfg.ID,
				Body:     fmt.Sprintf("exit status %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String())),
			}
		}
		return nil, &TransportError{ServerID: cfg.ID, Body: runErr.Error()}
	}

	line := lastNonEmptyLine(stdout.String())
	if line == "" {
		return nil, &TransportError{
			ServerID: cfg.ID,
			Body:     fmt.Sprintf("no output from command: %s", strings.TrimSpace(stderr.String())),
		}
	}
	var payload any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		return nil, &TransportError{ServerID: cfg.ID, Body: fmt.Sprintf("invalid JSON response: %v", err)}
	}
	return unwrapResult(payload), nil
}

func lastNonEmptyLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
