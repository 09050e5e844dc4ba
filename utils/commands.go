package utils

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"
)

// how long output pipes may stay open after the process was killed
const pipeWaitDelay = 5 * time.Second

// Diagnostics buckets tool output lines by their "Error:" / "Warning:" prefix.
type Diagnostics struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Classify files a single output line into its bucket and reports whether it matched one.
func (d *Diagnostics) Classify(line string) bool {
	prefix, _, found := strings.Cut(line, ":")
	if !found {
		return false
	}
	switch strings.TrimSpace(prefix) {
	case "Error":
		d.Errors = append(d.Errors, line)
		return true
	case "Warning":
		d.Warnings = append(d.Warnings, line)
		return true
	}
	return false
}

type CommandResult struct {
	ExitCode    int
	Lines       []string
	Diagnostics Diagnostics
}

// CommandRunner runs an external tool to completion, streaming its combined output.
type CommandRunner interface {
	Run(ctx context.Context, workDir string, name string, args ...string) (*CommandResult, error)
}

type ExecRunner struct {
	// optional per-line hook, e.g. for debug logging
	OnLine func(line string)
}

func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run blocks until the process exits. A non-zero exit status is reported through
// CommandResult.ExitCode; err is only set when the process could not be run at all
// or was cancelled through ctx.
func (r *ExecRunner) Run(ctx context.Context, workDir string, name string, args ...string) (*CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	cmd.WaitDelay = pipeWaitDelay

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return nil, err
	}

	result := &CommandResult{}
	scanned := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 8*1000000)
		for scanner.Scan() {
			line := scanner.Text()
			result.Lines = append(result.Lines, line)
			result.Diagnostics.Classify(line)
			if r.OnLine != nil {
				r.OnLine(line)
			}
		}
		// drain whatever is left so the process never blocks on a full pipe
		_, _ = io.Copy(io.Discard, pr)
		scanned <- scanner.Err()
	}()

	waitErr := cmd.Wait()
	pw.Close()
	scanErr := <-scanned
	pr.Close()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return nil, waitErr
	}

	if scanErr != nil {
		return nil, scanErr
	}
	return result, nil
}

var _ CommandRunner = (*ExecRunner)(nil)
