// =============================================================================
// pkg/harness/harness.go - Benchmark Harness Invocation
// =============================================================================
//
// Runs the external benchmark command that produces the raw result files,
// e.g. `cargo bench --bench bench -- --save-json`.
//
// The command line is split with shell quoting rules but is NOT passed to a
// shell: no globbing, pipes or variable expansion. Standard output and error
// are captured in full so they can be surfaced verbatim when the harness
// fails. A non-zero exit status is a *types.HarnessExecutionError and the
// caller must not compute statistics for that run.
//
// =============================================================================

package harness

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/interfaces"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/logging"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
)

// Runner invokes one harness command line.
type Runner struct {
	// Command is the full command line, e.g. "cargo bench -- --save-json".
	Command string

	// Dir is the working directory; empty means the current directory.
	Dir string

	// Timeout bounds the run; zero means no limit beyond ctx.
	Timeout time.Duration

	Logger interfaces.Logger
}

// Result holds the captured output of a successful run.
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Args splits the command line with shell quoting rules.
func Args(command string) ([]string, error) {
	args, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid harness command %q", command)
	}
	if len(args) == 0 {
		return nil, errors.New("harness command is empty")
	}
	return args, nil
}

// Run executes the command and waits for it to finish.
//
// A command that cannot be parsed or started is a plain error. A command
// that runs and exits non-zero (or is killed by the timeout) yields a
// *types.HarnessExecutionError carrying everything it printed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	logger := logging.OrNop(r.Logger)

	args, err := Args(r.Command)
	if err != nil {
		return nil, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.Dir
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("Running harness: %s", r.Command)
	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, errors.Wrapf(err, "failed to start harness %q", r.Command)
		}
		code := exitErr.ExitCode()
		if ctx.Err() == context.DeadlineExceeded {
			logger.Error("Harness timed out after %v", r.Timeout)
		}
		logger.Error("Harness exited with status %d after %v", code, elapsed)
		return nil, &types.HarnessExecutionError{
			Command:  r.Command,
			ExitCode: code,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}
	}

	logger.Info("Harness finished in %v (%d bytes stdout, %d bytes stderr)",
		elapsed, stdout.Len(), stderr.Len())
	return &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}, nil
}
