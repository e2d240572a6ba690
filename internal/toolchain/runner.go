// Package toolchain runs the Solana command-line utilities and scrapes the
// addresses they print.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/lugondev/solmint/internal/common"
	werrors "github.com/lugondev/solmint/internal/errors"
	"github.com/lugondev/solmint/internal/metrics"
)

var commandContext = exec.CommandContext

// Result captures one finished command.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes external commands.
type Runner struct {
	common.LoggerMixin

	metrics metrics.Metrics
}

// NewRunner creates a Runner. A nil m disables metrics.
func NewRunner(m metrics.Metrics) *Runner {
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &Runner{
		LoggerMixin: common.NewLoggerMixin(),
		metrics:     m,
	}
}

// Run executes name with args and waits for it. A non-zero exit returns the
// Result together with a COMMAND_FAILED error.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	command := strings.TrimSpace(name + " " + strings.Join(args, " "))

	cmd := commandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	_ = r.metrics.IncrementCounter(ctx, metrics.MetricCommandRuns, 1)
	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Command:  command,
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		_ = r.metrics.IncrementCounter(ctx, metrics.MetricCommandFailures, 1)

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			r.GetLogger().Warn("command exited with error",
				"command", command,
				"exit_code", result.ExitCode,
				"elapsed", time.Since(start),
			)
			detail := strings.TrimSpace(result.Stderr)
			if detail == "" {
				detail = fmt.Sprintf("exit status %d", result.ExitCode)
			}
			return result, werrors.CommandFailed(command, errors.New(detail)).
				WithDetails(map[string]any{"exit_code": result.ExitCode})
		}

		result.ExitCode = -1
		r.GetLogger().Warn("command could not run", "command", command, "error", err)
		return result, werrors.CommandFailed(command, err)
	}

	r.GetLogger().Info("command finished",
		"command", command,
		"exit_code", result.ExitCode,
		"elapsed", time.Since(start),
	)
	return result, nil
}

// FieldAfterMarker finds the first line of output containing marker and
// returns its whitespace-separated field at index. A negative index counts
// from the end, so -1 is the last field.
func FieldAfterMarker(output, marker string, index int) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, marker) {
			continue
		}
		fields := strings.Fields(line)
		i := index
		if i < 0 {
			i += len(fields)
		}
		if i < 0 || i >= len(fields) {
			return "", werrors.MarkerNotFound(marker).
				WithDetails(map[string]any{"line": strings.TrimSpace(line), "field": index})
		}
		return fields[i], nil
	}
	return "", werrors.MarkerNotFound(marker)
}
