// Package local runs programs as child processes of the grader. It is meant for
// development and trusted environments only.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/core/services/normalizer"
	"gitlab.com/fcv-grader.net/internal/domain"
)

var _ secondary.CodeExecutor = (*Runner)(nil)

// waitDelay bounds how long output pipes are drained after the process is killed
const waitDelay = 500 * time.Millisecond

type Runner struct {
	cfg    *config.LocalSandboxConfig
	logger primary.Logger
}

func NewRunner(cfg *config.LocalSandboxConfig, logger primary.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

func (r *Runner) Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	interp, ok := r.cfg.Interpreters[strings.ToLower(string(req.Language))]
	if !ok {
		return domain.Failed(domain.ErrorKindConfiguration, fmt.Sprintf("Unsupported language: %s", req.Language), "", 0)
	}

	var scratch []string
	defer func() {
		for _, path := range scratch {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				r.logger.Warn("Failed to remove scratch file", "path", path, "error", err)
			}
		}
	}()

	args := append([]string{}, interp.Args...)
	if interp.Preload != "" {
		preload, err := r.writeScratch("preload-*"+interp.Extension, interp.Preload)
		if err != nil {
			r.logger.Error("Failed to write preload file", "error", err)
			return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution error: %v", err), "", 0)
		}
		scratch = append(scratch, preload)
		if interp.PreloadFlag != "" {
			args = append(args, interp.PreloadFlag)
		}
		args = append(args, preload)
	}

	path, err := r.writeScratch("submission-*"+interp.Extension, req.SourceCode)
	if err != nil {
		r.logger.Error("Failed to write scratch file", "error", err)
		return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution error: %v", err), "", 0)
	}
	scratch = append(scratch, path)
	args = append(args, path)

	runCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, interp.Command, args...)
	cmd.Stdin = strings.NewReader(req.Stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start).Seconds()

	if runErr == nil {
		return domain.Succeeded(stdout.String(), elapsed)
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return domain.Failed(domain.ErrorKindWallTimeExceeded, normalizer.TimeoutMessage(req.TimeoutSeconds()), stdout.String(), elapsed)
	}
	if ctx.Err() != nil {
		return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution cancelled: %v", ctx.Err()), stdout.String(), elapsed)
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return domain.Failed(domain.ErrorKindRuntime, normalizer.ExitMessage(stderr.String(), exitErr.ExitCode()), stdout.String(), elapsed)
	}

	r.logger.Error("Failed to start interpreter", "command", interp.Command, "error", runErr)
	return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution error: %v", runErr), stdout.String(), elapsed)
}

// writeScratch stores content in a new file and returns its absolute path.
// Interpreters resolve relative module paths differently from file paths.
func (r *Runner) writeScratch(pattern, content string) (string, error) {
	file, err := os.CreateTemp(r.cfg.ScratchDir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to close scratch file: %w", err)
	}
	path, err := filepath.Abs(file.Name())
	if err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to resolve scratch file: %w", err)
	}
	return path, nil
}
