// Package command runs external programs such as git and pdftotext.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
)

// Ensure Runner implements the interface.
var _ driven.EnvCommandRunner = (*Runner)(nil)

// Runner executes commands with os/exec.
type Runner struct{}

// NewRunner creates a new command runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes name with args in dir and returns its standard output.
func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return r.RunWithEnv(ctx, dir, nil, name, args...)
}

// RunWithEnv executes name with env added to the inherited environment.
func (r *Runner) RunWithEnv(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		line := name + " " + strings.Join(redactArgs(args), " ")
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w", line, err)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w: %s", line, err, msg)
	}
	return stdout.Bytes(), nil
}

// redactArgs hides the values of "-c key=value" config overrides, which
// may carry credentials.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		if out[i-1] != "-c" {
			continue
		}
		if key, _, ok := strings.Cut(out[i], "="); ok {
			out[i] = key + "=<redacted>"
		}
	}
	return out
}
