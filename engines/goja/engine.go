// Package goja runs the embedded CoffeeScript compiler script on the goja JavaScript
// runtime.
//
// The compiler script is evaluated once into a global scope. Every compilation then runs
// inside a fresh function scope that receives the CoffeeScript text as its argument, so
// nothing from one request is visible to the next.
package goja

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	gojaSDK "github.com/dop251/goja"

	"github.com/robbyt/go-coffeescript/coffeejs"
	"github.com/robbyt/go-coffeescript/engine"
	"github.com/robbyt/go-coffeescript/errz"
	"github.com/robbyt/go-coffeescript/internal/helpers"
	"github.com/robbyt/go-coffeescript/loader"
)

// sourceParam is the name of the per-call binding holding the CoffeeScript text.
const sourceParam = "coffeeScriptSource"

// Engine hosts the compiler script in a goja runtime.
type Engine struct {
	loader           loader.Loader
	scriptName       string
	entryPoint       string
	maxCallStackSize int

	logHandler slog.Handler
	logger     *slog.Logger

	// mu guards state and scriptLogger, and serializes every use of the runtime, which is
	// single-threaded.
	mu    sync.Mutex
	state *globalScope
	// scriptLogger receives the output of the script's `logger` global.
	scriptLogger *slog.Logger
}

// globalScope is the initialized runtime with the compiler script evaluated into it.
type globalScope struct {
	runtime  *gojaSDK.Runtime
	script   string
	checksum string
}

// New creates an Engine. The compiler script is not read until the first Initialize or
// Invoke, so a missing script surfaces as an environment error at that point.
func New(opts ...FunctionalOption) (*Engine, error) {
	e := &Engine{}
	e.applyDefaults()

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("error applying engine option: %w", err)
		}
	}

	if err := e.validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	e.setupLogger()
	e.scriptLogger = e.logger.WithGroup("script")
	return e, nil
}

func (e *Engine) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return fmt.Sprintf("goja.Engine{EntryPoint: %s, Initialized: false}", e.entryPoint)
	}
	return fmt.Sprintf(
		"goja.Engine{Script: %s, SHA256: %s, EntryPoint: %s, Initialized: true}",
		e.state.script, e.state.checksum, e.entryPoint,
	)
}

// Initialize evaluates the compiler script if that has not happened yet. Concurrent
// callers block until the single initialization finishes. A failed initialization is
// reported as *errz.EnvironmentError and is retried by the next call.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.initialized(e.logger)
	return err
}

// Reset discards the initialized global scope. The next call re-creates it, re-reading the
// compiler script through the loader.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != nil {
		e.logger.Debug("Discarding compiler scope", "script", e.state.script)
	}
	e.state = nil
}

// Invoke compiles req.Source with the compiler script and returns the JavaScript. Logs go
// to req.LogHandler when it is set.
func (e *Engine) Invoke(req *engine.Request) (string, error) {
	if req == nil {
		return "", errz.NewEnvironmentError("invalid invocation", ErrRequestNil)
	}
	callLogger := e.requestLogger(req)
	logger := callLogger.WithGroup("invoke")

	e.mu.Lock()
	defer e.mu.Unlock()

	e.scriptLogger = callLogger.WithGroup("script")
	defer func() { e.scriptLogger = e.logger.WithGroup("script") }()

	scope, err := e.initialized(callLogger)
	if err != nil {
		return "", err
	}

	startTime := time.Now()
	call, err := scope.compileEntry(req, e.entryPoint)
	if err != nil {
		return "", err
	}

	result, err := call(gojaSDK.Undefined(), scope.runtime.ToValue(req.Source))
	if err != nil {
		return "", translate(logger, scope.runtime, req.Name, err)
	}

	js, err := resultString(scope.runtime, result)
	if err != nil {
		logger.Error("Compiler returned an unexpected value", "source", req.Name, "type", result.ExportType())
		return "", errz.NewEnvironmentError(fmt.Sprintf("compiling %s", req.Name), err)
	}

	logger.Debug("Compilation finished",
		"source", req.Name,
		"options", req.Options.Serialize(),
		"duration", time.Since(startTime),
	)
	return js, nil
}

func (e *Engine) requestLogger(req *engine.Request) *slog.Logger {
	if req.LogHandler == nil {
		return e.logger
	}
	_, logger := helpers.SetupLogger(req.LogHandler, "goja", "Engine")
	return logger
}

// resultString returns the compiler's result when it is a string. Inspecting any other
// value can run script code, so it happens under inspect.
func resultString(rt *gojaSDK.Runtime, result gojaSDK.Value) (string, error) {
	var js, desc string
	var ok bool
	err := inspect(rt, func() {
		if js, ok = result.Export().(string); !ok {
			desc = result.String()
		}
	})
	switch {
	case err != nil:
		return "", fmt.Errorf("%w: inspecting the result failed: %s", ErrResultNotString, exceptionText(rt, err))
	case !ok:
		return "", fmt.Errorf("%w: %s", ErrResultNotString, desc)
	}
	return js, nil
}

// compileEntry builds the per-call function wrapping the entry point with the serialized
// options. The wrapper is compiled under the request's display name so stack traces from
// the compiler name the unit being compiled.
func (s *globalScope) compileEntry(req *engine.Request, entryPoint string) (gojaSDK.Callable, error) {
	expr := fmt.Sprintf(
		"(function(%s) { return %s(%s, %s); })",
		sourceParam, entryPoint, sourceParam, req.Options.Serialize(),
	)

	prog, err := gojaSDK.Compile(req.Name, expr, false)
	if err != nil {
		return nil, errz.NewEnvironmentError("failed to build invocation expression", err)
	}

	val, err := s.runtime.RunProgram(prog)
	if err != nil {
		return nil, errz.NewEnvironmentError("failed to evaluate invocation expression", err)
	}

	call, ok := gojaSDK.AssertFunction(val)
	if !ok {
		return nil, errz.NewEnvironmentError("invocation expression is not a function", nil)
	}
	return call, nil
}

// initialized returns the global scope, creating it first if needed. Callers hold e.mu.
func (e *Engine) initialized(callLogger *slog.Logger) (*globalScope, error) {
	if e.state != nil {
		return e.state, nil
	}

	logger := callLogger.WithGroup("initialize")
	startTime := time.Now()

	scope, err := e.newGlobalScope()
	if err != nil {
		logger.Error("Compiler script initialization failed", "error", err)
		return nil, err
	}

	logger.Info("Compiler script initialized",
		"script", scope.script,
		"sha256", scope.checksum,
		"duration", time.Since(startTime),
	)
	e.state = scope
	return scope, nil
}

func (e *Engine) newGlobalScope() (*globalScope, error) {
	ldr := e.loader
	if ldr == nil {
		bundled, err := coffeejs.NewLoader()
		if err != nil {
			return nil, errz.NewEnvironmentError("compiler script unavailable", err)
		}
		ldr = bundled
	}

	scriptName := e.scriptName
	if scriptName == "" {
		scriptName = loader.SourceName(ldr, coffeejs.ScriptName)
	}

	content, err := readScript(ldr)
	if err != nil {
		return nil, errz.NewEnvironmentError(fmt.Sprintf("failed to read %s", scriptName), err)
	}

	prog, err := gojaSDK.Compile(scriptName, content, false)
	if err != nil {
		return nil, errz.NewEnvironmentError(fmt.Sprintf("failed to parse %s", scriptName), err)
	}

	rt := gojaSDK.New()
	rt.SetMaxCallStackSize(e.maxCallStackSize)
	if err := bindLogger(rt, func() *slog.Logger { return e.scriptLogger }); err != nil {
		return nil, errz.NewEnvironmentError("failed to bind logger", err)
	}

	if _, err := rt.RunProgram(prog); err != nil {
		return nil, errz.NewEnvironmentError(fmt.Sprintf("failed to evaluate %s", scriptName), err)
	}

	entry, err := rt.RunString(e.entryPoint)
	if err != nil {
		return nil, errz.NewEnvironmentError(
			fmt.Sprintf("failed to resolve %s", e.entryPoint),
			fmt.Errorf("%w: %w", ErrEntryPointMissing, err),
		)
	}
	if _, ok := gojaSDK.AssertFunction(entry); !ok {
		return nil, errz.NewEnvironmentError(
			fmt.Sprintf("failed to resolve %s", e.entryPoint),
			ErrEntryPointMissing,
		)
	}

	return &globalScope{
		runtime:  rt,
		script:   scriptName,
		checksum: helpers.ShortChecksum([]byte(content), 8),
	}, nil
}

func readScript(ldr loader.Loader) (string, error) {
	reader, err := ldr.GetReader()
	if err != nil {
		return "", err
	}
	defer func() { _ = reader.Close() }()

	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", ErrScriptEmpty
	}
	return string(b), nil
}

// translate maps a failure raised while the compiler ran. Values thrown by the script are
// compile errors; anything that stopped the runtime itself is an environment error.
func translate(logger *slog.Logger, rt *gojaSDK.Runtime, sourceName string, err error) error {
	var interrupted *gojaSDK.InterruptedError
	if errors.As(err, &interrupted) {
		logger.Error("Compiler interrupted", "source", sourceName, "error", err)
		return errz.NewEnvironmentError(
			fmt.Sprintf("compiling %s", sourceName),
			fmt.Errorf("%w: %w", ErrInterrupted, err),
		)
	}

	var overflow *gojaSDK.StackOverflowError
	if errors.As(err, &overflow) {
		logger.Error("Compiler exceeded the call stack limit", "source", sourceName, "error", err)
		return errz.NewEnvironmentError(
			fmt.Sprintf("compiling %s", sourceName),
			fmt.Errorf("%w: %w", ErrStackOverflow, err),
		)
	}

	var exception *gojaSDK.Exception
	if errors.As(err, &exception) {
		ce := compileErrorFrom(rt, sourceName, exception)
		logger.Debug("Compiler rejected source", "source", sourceName, "error", ce.Message)
		return ce
	}

	logger.Error("Compiler failed", "source", sourceName, "error", err)
	return errz.NewEnvironmentError(fmt.Sprintf("compiling %s", sourceName), err)
}

// compileErrorFrom reads the message and the 0-based location the CoffeeScript compiler
// attaches to the errors it throws. Reading them may run script getters, which can throw
// in turn; fields that could not be read keep their fallback values.
func compileErrorFrom(rt *gojaSDK.Runtime, sourceName string, exception *gojaSDK.Exception) *errz.CompileError {
	ce := &errz.CompileError{
		Source:  sourceName,
		Message: exceptionText(rt, exception),
	}
	// Cause is only kept when it can describe itself without running script code that throws.
	if inspect(rt, func() { _ = exception.Error() }) == nil {
		ce.Cause = exception
	}

	thrown := exception.Value()
	obj, ok := thrown.(*gojaSDK.Object)
	if !ok {
		if thrown != nil && !gojaSDK.IsUndefined(thrown) && !gojaSDK.IsNull(thrown) {
			_ = inspect(rt, func() { ce.Message = thrown.String() })
		}
		return ce
	}

	_ = inspect(rt, func() {
		if msg := obj.Get("message"); msg != nil && !gojaSDK.IsUndefined(msg) {
			ce.Message = msg.String()
		}
	})

	_ = inspect(rt, func() {
		loc, ok := obj.Get("location").(*gojaSDK.Object)
		if !ok {
			return
		}
		line, lineOK := intProperty(loc, "first_line")
		column, columnOK := intProperty(loc, "first_column")
		if lineOK {
			ce.Line = line + 1
			if columnOK {
				ce.Column = column + 1
			}
		}
	})
	return ce
}

func intProperty(obj *gojaSDK.Object, name string) (int, bool) {
	v := obj.Get(name)
	if v == nil || gojaSDK.IsUndefined(v) || gojaSDK.IsNull(v) {
		return 0, false
	}
	return int(v.ToInteger()), true
}

// inspect runs f, which reads script values from Go, and returns what the script threw
// while it ran. Uncatchable failures such as a stack overflow are returned as well.
func inspect(rt *gojaSDK.Runtime, f func()) (err error) {
	defer func() {
		switch r := recover().(type) {
		case nil:
		case *gojaSDK.StackOverflowError:
			err = r
		case *gojaSDK.InterruptedError:
			err = r
		default:
			panic(r)
		}
	}()
	if ex := rt.Try(f); ex != nil {
		return ex
	}
	return nil
}

// exceptionText describes err, falling back to a fixed text when describing it throws.
func exceptionText(rt *gojaSDK.Runtime, err error) string {
	text := "the compiler threw a value that cannot be converted to a string"
	_ = inspect(rt, func() { text = err.Error() })
	return text
}
