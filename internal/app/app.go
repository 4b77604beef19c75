// Package app wires the bridge, store, maps and scripting host into one
// application and manages its lifecycle.
package app

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/bridge"
	"github.com/dshills/mapbridge/internal/camera"
	"github.com/dshills/mapbridge/internal/config"
	"github.com/dshills/mapbridge/internal/glmap"
	"github.com/dshills/mapbridge/internal/hud"
	"github.com/dshills/mapbridge/internal/mapstate"
	"github.com/dshills/mapbridge/internal/mount"
	"github.com/dshills/mapbridge/internal/script"
	"github.com/dshills/mapbridge/internal/store"
	"github.com/dshills/mapbridge/internal/telemetry"
)

// Application owns one bridge, the store it is installed in, and every
// map attached through it.
type Application struct {
	mu sync.Mutex

	cfg     config.Config
	logger  *Logger
	metrics *Metrics

	bridge  *bridge.Bridge
	store   *store.Store[mapstate.State]
	scripts *script.Host
	view    *hud.View

	root     *mount.Node
	controls map[action.MapID]*bridge.Control

	unsubscribeHUD    func()
	shutdownTelemetry telemetry.Shutdown
	closed            bool
}

// Option configures an Application.
type Option func(*options)

type options struct {
	logger *Logger
	screen tcell.Screen
	tracer trace.Tracer
}

// WithLogger sets the application logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithScreen renders the HUD onto screen regardless of the hud setting.
func WithScreen(s tcell.Screen) Option {
	return func(o *options) {
		o.screen = s
	}
}

// WithTracer uses tracer instead of installing the configured provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// New builds an application from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, initError("config", err)
	}

	app := &Application{
		cfg:               cfg,
		logger:            o.logger,
		metrics:           NewMetrics(),
		root:              mount.NewNode("body"),
		controls:          make(map[action.MapID]*bridge.Control),
		shutdownTelemetry: func(context.Context) error { return nil },
	}
	if app.logger == nil {
		app.logger = NewLogger(LoggerConfig{
			Level:  ParseLogLevel(cfg.LogLevel),
			Output: os.Stderr,
			Prefix: "mapbridge",
		})
	}

	filter, err := store.CompileFilter(cfg.LogFilter)
	if err != nil {
		return nil, initError("log filter", err)
	}

	tracer := o.tracer
	if tracer == nil {
		shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
		if err != nil {
			return nil, initError("telemetry", err)
		}
		app.shutdownTelemetry = shutdown
		tracer = otel.Tracer(store.TracerName)
	}

	bridgeOpts := []bridge.Option{bridge.WithLogger(app.logger.WithComponent("bridge"))}
	if cfg.AllowReplace {
		bridgeOpts = append(bridgeOpts, bridge.WithReplace())
	}
	app.bridge = bridge.New(bridgeOpts...)

	app.store, err = store.New(mapstate.Reduce, mapstate.Initial(),
		app.metrics.Middleware(),
		store.Logging(app.logger.WithComponent("store"), filter),
		store.Tracing(tracer),
		app.bridge.Middleware(),
	)
	if err != nil {
		_ = app.shutdownTelemetry(ctx)
		return nil, initError("store", err)
	}

	app.scripts = script.NewHost(app.store.Dispatch,
		script.WithLogger(app.logger.WithComponent("script")),
		script.WithTimeout(cfg.Script.Timeout()),
		script.WithMaxDispatches(cfg.Script.MaxDispatches),
	)

	switch {
	case o.screen != nil:
		app.view = hud.New(o.screen)
	case cfg.HUD:
		view, err := hud.NewTerminal()
		if err != nil {
			_ = app.scripts.Close()
			_ = app.shutdownTelemetry(ctx)
			return nil, initError("hud", err)
		}
		app.view = view
	}
	if app.view != nil {
		app.unsubscribeHUD = app.view.Subscribe(app.store)
	}

	app.logger.Debug("application ready (replace=%t hud=%t)", cfg.AllowReplace, app.view != nil)
	return app, nil
}

func initError(component string, err error) error {
	return NewOperationError("init", component, fmt.Errorf("%w: %w", ErrInitialization, err))
}

// NewMap creates a headless camera map from the viewport settings,
// attaches it under id and fires its load event.
func (app *Application) NewMap(id action.MapID) (*camera.Map, error) {
	v := app.cfg.Viewport
	opts := camera.DefaultOptions()
	opts.Width, opts.Height = v.Width, v.Height
	opts.MinZoom, opts.MaxZoom = v.MinZoom, v.MaxZoom
	opts.MaxPitch = v.MaxPitch
	if v.Projection != "" {
		opts.Projection = v.Projection
	}

	m := camera.New(opts)
	if _, err := app.AttachMap(id, m); err != nil {
		return nil, err
	}
	m.Load()
	return m, nil
}

// AttachMap attaches m under id and mounts its container under the root.
// With allow_replace set, a map already attached under id is detached
// first.
func (app *Application) AttachMap(id action.MapID, m glmap.Map) (*bridge.Control, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return nil, ErrClosed
	}

	if old, ok := app.controls[id]; ok && app.cfg.AllowReplace {
		old.Detach()
		delete(app.controls, id)
	}

	ctrl := app.bridge.NewControl(id)
	node, err := ctrl.Attach(m)
	if err != nil {
		return nil, NewOperationError("attach", string(id), err)
	}
	app.root.AppendChild(node)
	app.controls[id] = ctrl

	app.logger.Info("attached map %s", id)
	return ctrl, nil
}

// DetachMap detaches the map attached under id.
func (app *Application) DetachMap(id action.MapID) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	ctrl, ok := app.controls[id]
	if !ok {
		return NewOperationError("detach", string(id), ErrUnknownMap)
	}
	ctrl.Detach()
	delete(app.controls, id)

	app.logger.Info("detached map %s", id)
	return nil
}

// Control returns the control attached under id.
func (app *Application) Control(id action.MapID) (*bridge.Control, bool) {
	app.mu.Lock()
	defer app.mu.Unlock()
	ctrl, ok := app.controls[id]
	return ctrl, ok
}

// MapIDs returns the ids of attached maps in order.
func (app *Application) MapIDs() []action.MapID {
	app.mu.Lock()
	defer app.mu.Unlock()

	ids := make([]action.MapID, 0, len(app.controls))
	for id := range app.controls {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Dispatch sends a through the store.
func (app *Application) Dispatch(a action.Action) error {
	if app.isClosed() {
		return ErrClosed
	}
	return app.store.Dispatch(a)
}

// RunScript runs the Lua script at path.
func (app *Application) RunScript(ctx context.Context, path string) error {
	if app.isClosed() {
		return ErrClosed
	}
	if err := app.scripts.RunFile(ctx, path); err != nil {
		return NewOperationError("script", path, err)
	}
	return nil
}

// RunScriptString runs Lua code as a chunk called name.
func (app *Application) RunScriptString(ctx context.Context, name, code string) error {
	if app.isClosed() {
		return ErrClosed
	}
	if err := app.scripts.Run(ctx, name, code); err != nil {
		return NewOperationError("script", name, err)
	}
	return nil
}

// State returns the reduced map state.
func (app *Application) State() mapstate.State {
	return app.store.State()
}

// Store returns the application store.
func (app *Application) Store() *store.Store[mapstate.State] {
	return app.store
}

// Bridge returns the application bridge.
func (app *Application) Bridge() *bridge.Bridge {
	return app.bridge
}

// Root returns the node every map container is mounted under.
func (app *Application) Root() *mount.Node {
	return app.root
}

// Metrics returns the dispatch metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

func (app *Application) isClosed() bool {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.closed
}

// Close detaches every map and releases the scripting host, the HUD and
// the trace provider. Closing twice is harmless.
func (app *Application) Close(ctx context.Context) error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return nil
	}
	app.closed = true

	ids := make([]action.MapID, 0, len(app.controls))
	for id := range app.controls {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		app.controls[id].Detach()
		delete(app.controls, id)
	}
	app.mu.Unlock()

	var errs ErrorList
	errs.Add(app.scripts.Close())
	if app.unsubscribeHUD != nil {
		app.unsubscribeHUD()
	}
	if app.view != nil {
		app.view.Close()
	}
	if err := app.shutdownTelemetry(ctx); err != nil {
		errs.Add(NewOperationError("shutdown", "telemetry", err))
	}

	snap := app.metrics.Snapshot()
	app.logger.Info("shutdown after %d actions (%d failed)", snap.Total(), snap.Failures)
	return errs.AsError()
}
