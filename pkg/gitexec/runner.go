// Package gitexec runs the git binary and implements attribution.Gateway on
// top of it and libgit2.
package gitexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Defaults applied by NewRunner to zero-value options.
const (
	DefaultBinary    = "git"
	DefaultTimeout   = 30 * time.Second
	DefaultMaxOutput = 64 << 20

	// stderrLimit bounds the stderr kept for error messages.
	stderrLimit = 16 << 10

	spanPrefix = "git."
	tracerName = "github.com/Sumatoshi-tech/gitattr/pkg/gitexec"
)

// Sentinel errors for git invocations.
var (
	// ErrCommandFailed indicates a non-zero exit status.
	ErrCommandFailed = errors.New("git command failed")
	// ErrTimeout indicates that the command outlived its deadline.
	ErrTimeout = errors.New("git command timed out")
	// ErrOutputTooLarge indicates that stdout exceeded the configured limit.
	ErrOutputTooLarge = errors.New("git output exceeds limit")
)

// globalArgs precede every subcommand so that paths and output stay
// machine-readable regardless of user configuration.
var globalArgs = []string{"-c", "core.quotepath=off", "-c", "color.ui=false", "--no-pager"}

// RunnerOptions configures a Runner. Zero values use the defaults above.
type RunnerOptions struct {
	Binary    string
	Timeout   time.Duration
	MaxOutput int64
	Logger    *slog.Logger
	Tracer    trace.Tracer
}

// Runner executes git subcommands. It is safe for concurrent use.
type Runner struct {
	binary    string
	timeout   time.Duration
	maxOutput int64
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOptions) *Runner {
	runner := &Runner{
		binary:    opts.Binary,
		timeout:   opts.Timeout,
		maxOutput: opts.MaxOutput,
		logger:    opts.Logger,
		tracer:    opts.Tracer,
	}

	if runner.binary == "" {
		runner.binary = DefaultBinary
	}

	if runner.timeout <= 0 {
		runner.timeout = DefaultTimeout
	}

	if runner.maxOutput <= 0 {
		runner.maxOutput = DefaultMaxOutput
	}

	if runner.logger == nil {
		runner.logger = slog.Default()
	}

	if runner.tracer == nil {
		runner.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}

	return runner
}

// Run executes `git <args>` in dir and returns its stdout.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	subcommand := "git"
	if len(args) > 0 {
		subcommand = args[0]
	}

	ctx, span := r.tracer.Start(ctx, spanPrefix+subcommand,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("git.subcommand", subcommand),
			attribute.String("git.dir", dir),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stdout := &cappedBuffer{limit: r.maxOutput, onExceed: cancel}
	stderr := &cappedBuffer{limit: stderrLimit}

	cmd := exec.CommandContext(ctx, r.binary, append(append([]string{}, globalArgs...), args...)...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_OPTIONAL_LOCKS=0")

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	err = r.classify(ctx, subcommand, stdout, stderr, err)

	span.SetAttributes(attribute.Int("git.output_bytes", stdout.Len()))
	r.logger.DebugContext(ctx, "git command finished",
		"subcommand", subcommand, "dir", dir, "duration", elapsed, "bytes", stdout.Len(), "error", err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return "", err
	}

	return stdout.String(), nil
}

func (r *Runner) classify(ctx context.Context, subcommand string, stdout, stderr *cappedBuffer, err error) error {
	switch {
	case stdout.Exceeded():
		return fmt.Errorf("%w: git %s: more than %d bytes", ErrOutputTooLarge, subcommand, r.maxOutput)
	case err == nil:
		return nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: git %s after %s", ErrTimeout, subcommand, r.timeout)
	case ctx.Err() != nil:
		return fmt.Errorf("git %s: %w", subcommand, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = exitErr.String()
		}

		return fmt.Errorf("%w: git %s: %s", ErrCommandFailed, subcommand, message)
	}

	return fmt.Errorf("%w: git %s: %w", ErrCommandFailed, subcommand, err)
}

// cappedBuffer stores at most limit bytes. Writes past the limit are
// discarded and trigger onExceed once.
type cappedBuffer struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	limit    int64
	exceeded bool
	onExceed func()
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.limit - int64(b.buf.Len())
	if int64(len(p)) <= room {
		b.buf.Write(p)

		return len(p), nil
	}

	if room > 0 {
		b.buf.Write(p[:room])
	}

	if !b.exceeded {
		b.exceeded = true

		if b.onExceed != nil {
			b.onExceed()
		}
	}

	return len(p), nil
}

func (b *cappedBuffer) Exceeded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.exceeded
}

func (b *cappedBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Len()
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
