package mkcert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
)

// RunOptions adjusts a single invocation.
type RunOptions struct {
	Dir string
	// Env, when non-nil, is the complete environment for the process. A nil
	// Env inherits the parent environment.
	Env []string
}

// RunResult carries the captured output of a finished invocation.
type RunResult struct {
	Stdout string
	Stderr string
}

// Runner executes the mkcert binary. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, opts RunOptions) (RunResult, error)
}

// CmdRunner runs binaries through os/exec.
type CmdRunner struct{}

var _ Runner = CmdRunner{}

func (CmdRunner) Run(ctx context.Context, binary string, args []string, opts RunOptions) (RunResult, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if opts.Env != nil {
		cmd.Env = opts.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := RunResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return res, fmt.Errorf("run %s: %w", filepath.Base(binary), err)
	}
	return res, nil
}
