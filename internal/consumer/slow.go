package consumer

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	logpkg "github.com/rzbill/streamlat/pkg/log"
)

// slowFilter is a compiled CEL predicate over a Sample. A disabled filter
// never matches.
type slowFilter struct {
	prog    cel.Program
	enabled bool
}

func compileSlowFilter(expr string) (slowFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return slowFilter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("latency_ms", cel.IntType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("slot", cel.IntType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return slowFilter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return slowFilter{}, iss.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return slowFilter{}, fmt.Errorf("slow filter must be a boolean expression, got %s", ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return slowFilter{}, err
	}
	return slowFilter{prog: prog, enabled: true}, nil
}

func (f slowFilter) match(s Sample) bool {
	if !f.enabled {
		return false
	}
	out, _, err := f.prog.Eval(map[string]any{
		"latency_ms": s.LatencyMs,
		"kind":       s.Kind,
		"slot":       int64(s.Slot),
		"now_ms":     s.NowMs,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// SlowReporter logs a warning for samples matching a CEL expression, then
// forwards every measurement to the wrapped reporter.
//
// Example: latency_ms > 250 || (kind == "slot" && latency_ms > 50)
type SlowReporter struct {
	next   Reporter
	filter slowFilter
	logger logpkg.Logger
}

// NewSlowReporter compiles expr and wraps next. An empty expression
// disables matching.
func NewSlowReporter(expr string, next Reporter, logger logpkg.Logger) (*SlowReporter, error) {
	f, err := compileSlowFilter(expr)
	if err != nil {
		return nil, fmt.Errorf("compile slow filter: %w", err)
	}
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return &SlowReporter{next: next, filter: f, logger: logger.WithComponent("consumer")}, nil
}

func (r *SlowReporter) Latency(s Sample) {
	if r.filter.match(s) {
		r.logger.Warn("slow sample",
			logpkg.Uint64("seq", s.Seq),
			logpkg.Str("kind", s.Kind),
			logpkg.Uint64("slot", s.Slot),
			logpkg.Int64("latency_ms", s.LatencyMs),
		)
	}
	if r.next != nil {
		r.next.Latency(s)
	}
}

func (r *SlowReporter) Throughput(w Window) {
	if r.next != nil {
		r.next.Throughput(w)
	}
}

func (r *SlowReporter) StreamError(err error) {
	if r.next != nil {
		r.next.StreamError(err)
	}
}
