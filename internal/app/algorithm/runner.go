// internal/app/algorithm/runner.go
package algorithm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner executes one external grouping-algorithm invocation and
// returns the program's single stdout message.
type Runner interface {
	Run(ctx context.Context, payload []byte) ([]byte, error)
}

// ExecRunner invokes the scoring/grouping program as a child process.
// The job payload is passed JSON-serialized as the last command-line
// argument; the program must emit exactly one JSON value on stdout.
// Any stderr output or non-zero exit is treated as job failure.
type ExecRunner struct {
	Command string // e.g. "python3"
	Script  string // path to the algorithm script; may be empty
}

func (r *ExecRunner) Run(ctx context.Context, payload []byte) ([]byte, error) {
	args := make([]string, 0, 2)
	if r.Script != "" {
		args = append(args, r.Script)
	}
	args = append(args, string(payload))

	cmd := exec.CommandContext(ctx, r.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("algorithm process failed: %w (stderr: %s)", err, stderr.String())
	}
	if stderr.Len() > 0 {
		return nil, fmt.Errorf("algorithm process wrote to stderr: %s", stderr.String())
	}
	return stdout.Bytes(), nil
}
