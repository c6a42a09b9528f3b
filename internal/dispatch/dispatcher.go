package dispatch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tessera-run/tessera/internal/cache"
	"github.com/tessera-run/tessera/internal/exec"
	"github.com/tessera-run/tessera/internal/model"
	"github.com/tessera-run/tessera/internal/object"
	"github.com/tessera-run/tessera/internal/program"
	"github.com/tessera-run/tessera/internal/store"
	"github.com/tessera-run/tessera/internal/tensor"
)

// defaultCompileCacheSize bounds the source-hash to compiled-bytes
// memoization used on the registration path.
const defaultCompileCacheSize = 256

// Compiler turns program source text into compiled bytes. May fail; empty
// output is also treated as failure.
type Compiler func(source string) ([]byte, error)

// Dispatcher handles register and execute requests for one distributed
// context. Multiple request-handling goroutines may call into it
// concurrently.
type Dispatcher struct {
	dctx     *Context
	cache    *cache.Cache
	env      *exec.Env
	compiler Compiler
	compiled *lru.Cache[string, []byte]
	programs store.ProgramStore // optional; nil disables persistence
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. programs may be nil when the worker
// runs without durable registrations.
func NewDispatcher(dctx *Context, c *cache.Cache, env *exec.Env, compiler Compiler,
	programs store.ProgramStore, logger *slog.Logger) (*Dispatcher, error) {
	compiled, err := lru.New[string, []byte](defaultCompileCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create compile cache: %w", err)
	}
	return &Dispatcher{
		dctx:     dctx,
		cache:    c,
		env:      env,
		compiler: compiler,
		compiled: compiled,
		programs: programs,
		logger:   logger,
	}, nil
}

// Context returns the distributed context this dispatcher serves.
func (d *Dispatcher) Context() *Context {
	return d.dctx
}

// Cache returns the dispatcher's program cache.
func (d *Dispatcher) Cache() *cache.Cache {
	return d.cache
}

// HandleRegister compiles the program source and stores the result in the
// program cache under the request's name. Registration is fire-and-forget:
// there is no response, and all failures surface only through diagnostics.
// Identical sources hit a bounded compile memoization keyed by source
// hash, so re-registering the same program skips recompilation.
func (d *Dispatcher) HandleRegister(ctx context.Context, req model.RegisterRequest) {
	rid := model.NewRequestID()

	hash := sourceHash(req.Source)
	compiledBytes, hit := d.compiled.Get(hash)
	if hit {
		compileCacheHits.Inc()
	} else {
		var err error
		compiledBytes, err = d.compiler(req.Source)
		if err != nil || len(compiledBytes) == 0 {
			d.logger.Error("failed to compile program",
				"request_id", rid, "program", req.Name, "error", err)
			registrationsTotal.WithLabelValues(outcomeCompileError).Inc()
			return
		}
		d.compiled.Add(hash, compiledBytes)
	}

	d.cache.Register(req.Name, compiledBytes)
	registrationsTotal.WithLabelValues(outcomeAccepted).Inc()

	if d.programs != nil {
		rec := &store.ProgramRecord{
			Name:         req.Name,
			SourceHash:   hash,
			Bytes:        compiledBytes,
			RegisteredAt: time.Now().UTC(),
		}
		if err := d.programs.SaveProgram(ctx, rec); err != nil {
			d.logger.Warn("failed to persist program registration",
				"request_id", rid, "program", req.Name, "error", err)
		}
	}
}

// HandleExecute runs a previously registered program against the
// request's inputs and publishes the results under its output ids. The
// done callback is invoked exactly once on every path, including every
// failure path; the caller is blocked awaiting it.
//
// Invocation never blocks this goroutine: it schedules and returns while
// the results remain pending, and the response is assembled by a
// continuation that fires once all results are ready.
func (d *Dispatcher) HandleExecute(req model.ExecuteRequest, done func(model.ExecuteResult)) {
	rid := model.NewRequestID()
	start := time.Now()

	fail := func(outcome, msg string, kv ...any) {
		d.logger.Error(msg,
			append([]any{"request_id", rid, "program", req.Program}, kv...)...)
		executionsTotal.WithLabelValues(outcome).Inc()
		done(model.ExecuteResult{OK: false})
	}

	entry := d.cache.Prepare(req.Program)
	if entry == nil {
		fail(outcomeProgramNotFound, "program not found")
		return
	}

	fn := entry.Program.Function(req.Function)
	if fn == nil {
		fail(outcomeFunctionNotFound, "function not found", "function", req.Function)
		return
	}

	if len(fn.Results) != len(req.Outputs) {
		fail(outcomeResultMismatch, "result count mismatch",
			"function", req.Function,
			"declared", len(fn.Results), "requested", len(req.Outputs))
		return
	}

	// A function whose first declared argument is the distributed-context
	// capability type receives this worker's context as argument 0; the
	// caller supplies only the remaining arguments.
	args := make([]*object.Pending, 0, len(fn.Args))
	implicit := 0
	if len(fn.Args) > 0 && fn.Args[0] == program.TypeDistContext {
		args = append(args, object.Ready(d.dctx))
		implicit = 1
	}
	if len(fn.Args) != implicit+len(req.Inputs) {
		fail(outcomeArgumentMismatch, "argument count mismatch",
			"function", req.Function,
			"declared", len(fn.Args), "received", len(req.Inputs))
		return
	}

	objects := d.dctx.Objects()
	devices := d.dctx.Devices()
	for _, id := range req.Inputs {
		if devices.Resolve(id.Device) == nil {
			fail(outcomeDeviceNotFound, "input device not found", "device", id.Device)
			return
		}
		// Absent objects become unresolved placeholders; invocation
		// proceeds and suspends internally until a peer publishes them.
		args = append(args, objects.Get(id))
	}

	// Resolve output devices before invoking so a bad output id aborts
	// with nothing scheduled and nothing published.
	for _, out := range req.Outputs {
		if devices.Resolve(out.ID.Device) == nil {
			fail(outcomeDeviceNotFound, "output device not found", "device", out.ID.Device)
			return
		}
	}

	results := d.env.Invoke(fn, args, len(fn.Results))

	// Publish every result in request order before any is known to be
	// ready, so peers polling the store can wait on the placeholders with
	// no race against publication.
	for i, out := range req.Outputs {
		objects.Set(out.ID, results[i])
	}

	exec.OnAllReady(results, func() {
		metadata := make([]string, 0, len(req.Outputs))
		for i, out := range req.Outputs {
			if !out.NeedMetadata {
				continue
			}
			if fn.Results[i] != program.TypeTensor {
				fail(outcomeTypeMismatch, "metadata requested for non-tensor result",
					"result", i, "type", fn.Results[i].String())
				return
			}
			v, err := results[i].Value()
			if err != nil {
				fail(outcomeKernelError, "result failed", "result", i, "error", err)
				return
			}
			t, ok := v.(*tensor.Tensor)
			if !ok {
				fail(outcomeTypeMismatch, "result value is not a tensor",
					"result", i, "value_type", fmt.Sprintf("%T", v))
				return
			}
			metadata = append(metadata, t.Meta.String())
		}

		executionsTotal.WithLabelValues(outcomeOK).Inc()
		executionDuration.Observe(time.Since(start).Seconds())
		done(model.ExecuteResult{OK: true, Metadata: metadata})
	})
}

func sourceHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
