package query

import (
	"go.uber.org/atomic"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
)

// Observer receives engine events. Implementations must be safe for
// concurrent use and cheap: CursorStarted runs on every enumeration.
type Observer interface {
	// CursorStarted is called when a descriptor hands out a cursor; reused
	// reports whether the descriptor's own cursor was handed out.
	CursorStarted(op string, reused bool)
	// Materialized is called after op buffered n elements.
	Materialized(op string, n int)
	// Failed is called when a terminal operation returns an error.
	Failed(op string, code errors.ErrorCode)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) CursorStarted(string, bool)      {}
func (NopObserver) Materialized(string, int)        {}
func (NopObserver) Failed(string, errors.ErrorCode) {}

// Options holds engine-wide settings.
type Options struct {
	Logger           *logger.Logger
	Observer         Observer
	BufferCapacity   int
	TraceBuildPhases bool
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithObserver sets the engine observer; nil restores the no-op observer.
func WithObserver(obs Observer) Option {
	return func(o *Options) {
		if obs == nil {
			obs = NopObserver{}
		}
		o.Observer = obs
	}
}

// WithBufferCapacity sets the initial capacity of buffers filled from
// sources of unknown size. Values below 1 are ignored.
func WithBufferCapacity(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BufferCapacity = n
		}
	}
}

// WithTraceBuildPhases toggles debug logging of lookup builds, sorts and
// materializations.
func WithTraceBuildPhases(on bool) Option {
	return func(o *Options) {
		o.TraceBuildPhases = on
	}
}

// DefaultBufferCapacity is the initial capacity of buffers filled from
// sources of unknown size.
const DefaultBufferCapacity = 4

var current atomic.Pointer[Options]

func defaultOptions() *Options {
	return &Options{
		Logger:           logger.Get("query"),
		Observer:         NopObserver{},
		BufferCapacity:   DefaultBufferCapacity,
		TraceBuildPhases: true,
	}
}

func opts() *Options {
	if o := current.Load(); o != nil {
		return o
	}
	current.CompareAndSwap(nil, defaultOptions())
	return current.Load()
}

// Configure replaces the engine options. Unset fields keep their current value.
func Configure(options ...Option) {
	for {
		prev := opts()
		next := *prev
		for _, opt := range options {
			opt(&next)
		}
		if current.CompareAndSwap(prev, &next) {
			return
		}
	}
}

// Reset restores the default options.
func Reset() {
	current.Store(defaultOptions())
}

// CurrentOptions returns a copy of the active options.
func CurrentOptions() Options {
	return *opts()
}

// traceBuild logs an eager build phase at debug level.
func traceBuild(msg string, fields map[string]interface{}) {
	o := opts()
	if !o.TraceBuildPhases || !o.Logger.DebugEnabled() {
		return
	}
	o.Logger.Debug(msg, fields)
}

const codeExternal errors.ErrorCode = "EXTERNAL"

// fail reports err to the observer and returns it unchanged.
func fail(op string, err error) error {
	code := errors.CodeOf(err)
	if code == "" {
		code = codeExternal
	}
	opts().Observer.Failed(op, code)
	return err
}
