// Package session drives the engine one line at a time, either interactively
// with a prompt or over a batch file with each line echoed back.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/lemonberrylabs/calc/pkg/expr"
)

const (
	DefaultPrompt    = "input: "
	DefaultPrecision = 6
	quitCommand      = "quit"

	initialBufferSize = 64 * 1024
)

// Options configures a Session.
type Options struct {
	// Prompt is printed before every line. Defaults to DefaultPrompt.
	Prompt string
	// Precision is the number of significant digits in printed results.
	Precision int
	// Echo prints every line read, for batch input that the user did not type.
	Echo bool
	// Logger receives the end-of-session summary. Defaults to slog.Default().
	Logger *slog.Logger
}

// Summary counts the outcome of a session.
type Summary struct {
	Lines     int
	Succeeded int
	Failed    map[expr.Kind]int
	Quit      bool
}

// Session reads expressions from in and writes results to out.
type Session struct {
	in   io.Reader
	out  io.Writer
	opts Options
}

// New creates a session over the given streams.
func New(in io.Reader, out io.Writer, opts Options) *Session {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.Precision <= 0 {
		opts.Precision = DefaultPrecision
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Session{in: in, out: out, opts: opts}
}

// Run processes lines until quit, end of input or ctx cancellation.
// Evaluation errors are printed and never end the session; only read and
// write failures are returned.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	sum := Summary{Failed: make(map[expr.Kind]int)}
	w := &errWriter{w: s.out}

	// Lines have no length limit.
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, initialBufferSize), math.MaxInt)
	w.printf("%s", s.opts.Prompt)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		line := scanner.Text()
		sum.Lines++
		if s.opts.Echo {
			w.printf("%s\n", line)
		}

		// An empty line has no value; it always prints 0.
		if line == "" {
			w.printf("output: %s\n\n", s.Format(0))
			w.printf("%s", s.opts.Prompt)
			continue
		}

		line = strings.ToLower(line)
		if line == quitCommand {
			sum.Quit = true
			w.printf("User quit. \n")
			break
		}

		v, err := expr.Eval(line)
		if err != nil {
			sum.Failed[expr.KindOf(err)]++
			w.printf("%s\n\n", err)
		} else {
			sum.Succeeded++
			w.printf("output: %s\n\n", s.Format(v))
		}
		w.printf("%s", s.opts.Prompt)

		if w.err != nil {
			return sum, fmt.Errorf("write output: %w", w.err)
		}
	}

	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("read input: %w", err)
	}

	if !sum.Quit {
		w.printf("End of input file reached.\n")
	}
	w.printf("Goodbye!\n")

	s.opts.Logger.Debug("session finished",
		"lines", sum.Lines,
		"succeeded", sum.Succeeded,
		"failed", sum.FailedTotal(),
		"quit", sum.Quit)

	if w.err != nil {
		return sum, fmt.Errorf("write output: %w", w.err)
	}
	return sum, nil
}

// Format renders v with the session's significant-digit precision.
func (s *Session) Format(v float64) string {
	return FormatResult(v, s.opts.Precision)
}

// FormatResult renders v in %g style with the given number of significant
// digits, the way an iostream prints a double by default.
func FormatResult(v float64, precision int) string {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	s := strconv.FormatFloat(v, 'g', precision, 64)
	switch s {
	case "+Inf":
		return "inf"
	case "-Inf":
		return "-inf"
	case "NaN":
		return "nan"
	}
	return s
}

// FailedTotal is the number of lines that failed to evaluate.
func (s Summary) FailedTotal() int {
	n := 0
	for _, c := range s.Failed {
		n += c
	}
	return n
}

// errWriter keeps the first write error so printing can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
