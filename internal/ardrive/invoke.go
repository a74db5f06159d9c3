package ardrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tonimelisma/sugar-cli/internal/wallet"
)

// waitDelay is how long a killed child gets to release its output pipes
// before Wait gives up on them.
const waitDelay = 5 * time.Second

// childEnv is appended to the parent environment for every invocation.
var childEnv = []string{
	"NODE_ENV=production",
	"NO_COLOR=1",
}

// Result is the captured outcome of one invocation.
type Result struct {
	Command  []string
	Stdout   string
	Stderr   string
	ExitCode int
	Binary   Binary
	Duration time.Duration
}

// RunnerOptions configure a Runner.
type RunnerOptions struct {
	// Probes locate the executable, in priority order.
	Probes []Probe

	// TempDir holds the per-invocation wallet files. Empty means os.TempDir().
	TempDir string

	// TempPrefix starts every temporary wallet file name.
	TempPrefix string

	// Timeout bounds each invocation. Zero disables the limit.
	Timeout time.Duration

	// JSONOutput passes --json to operations that accept it.
	JSONOutput bool

	// Env is the base child environment. Nil means os.Environ().
	Env []string
}

// Runner invokes the ardrive CLI. Each Run materializes the wallet into its
// own temporary file, so Runs may execute concurrently.
type Runner struct {
	opts   RunnerOptions
	logger *slog.Logger
}

// NewRunner returns a Runner using opts.
func NewRunner(opts RunnerOptions, logger *slog.Logger) *Runner {
	return &Runner{opts: opts, logger: logger}
}

// Run executes inv with cred. The temporary wallet file is removed on every
// return path; a failed removal is logged, not returned. A non-zero exit
// yields an *ExitError. Output on stderr alongside a zero exit is kept on the
// Result and logged at debug level only.
func (r *Runner) Run(ctx context.Context, inv Invocation, cred *wallet.Credential) (*Result, error) {
	if err := inv.validate(); err != nil {
		return nil, err
	}

	if cred == nil || strings.TrimSpace(cred.Content) == "" {
		return nil, fmt.Errorf("ardrive: %s: wallet is empty: %w", inv.Op, wallet.ErrNoWallet)
	}

	tmp, err := wallet.WriteTemp(r.opts.TempDir, r.opts.TempPrefix, cred.Content)
	if err != nil {
		return nil, fmt.Errorf("ardrive: %s: %w", inv.Op, err)
	}

	defer func() {
		if rmErr := tmp.Remove(); rmErr != nil {
			r.logger.Warn("failed to remove temporary wallet file",
				slog.String("path", tmp.Path),
				slog.String("error", rmErr.Error()),
			)
		}
	}()

	bin, err := Locate(ctx, r.opts.Probes, r.logger)
	if err != nil {
		return nil, err
	}

	return r.exec(ctx, inv, bin, inv.args(tmp.Path, r.opts.JSONOutput))
}

func (r *Runner) exec(ctx context.Context, inv Invocation, bin Binary, args []string) (*Result, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)

		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin.Path, args...)
	cmd.Env = r.env()
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := &Result{
		Command: append([]string{bin.Path}, args...),
		Binary:  bin,
	}

	r.logger.Debug("running ardrive",
		slog.String("op", inv.Op.String()),
		slog.String("command", strings.Join(result.Command, " ")),
	)

	start := time.Now()
	runErr := cmd.Run()
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr != nil {
		return nil, r.classify(ctx, inv, result, runErr)
	}

	r.logger.Info("ardrive finished",
		slog.String("op", inv.Op.String()),
		slog.Int("stdout_bytes", len(result.Stdout)),
		slog.Int64("duration_ms", result.Duration.Milliseconds()),
	)

	if strings.TrimSpace(result.Stderr) != "" {
		r.logger.Debug("ardrive wrote to stderr despite success",
			slog.String("op", inv.Op.String()),
			slog.String("stderr", result.Stderr),
		)
	}

	return result, nil
}

// classify maps a failed cmd.Run to timeout, cancellation, exit, or start
// errors.
func (r *Runner) classify(ctx context.Context, inv Invocation, result *Result, runErr error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s did not finish within %s (raise [ardrive] timeout in the config)",
			ErrTimeout, inv.Op, r.opts.Timeout)
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("ardrive: %s canceled: %w", inv.Op, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		r.logger.Warn("ardrive exited with error",
			slog.String("op", inv.Op.String()),
			slog.Int("exit_code", result.ExitCode),
		)

		return &ExitError{
			Command:  result.Command,
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
	}

	return fmt.Errorf("ardrive: starting %s: %w", result.Command[0], runErr)
}

func (r *Runner) env() []string {
	base := r.opts.Env
	if base == nil {
		base = os.Environ()
	}

	env := make([]string, 0, len(base)+len(childEnv))
	env = append(env, base...)

	return append(env, childEnv...)
}
