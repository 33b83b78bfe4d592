package ecs

import (
	"context"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// Plugin bundles the components, resources and systems of one feature.
type Plugin interface {
	Build(app *App)
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(app *App)

// Build calls f.
func (f PluginFunc) Build(app *App) {
	f(app)
}

// App wires a registry, a storage and a scheduler together and lets plugins
// populate them. Configuration calls chain:
//
//	app := ecs.NewApp().
//		AddPlugin(&hello.Plugin{}).
//		AddSystem(&Render{})
type App struct {
	registry  *ComponentRegistry
	storage   *Storage
	scheduler *Scheduler
	logger    *zap.Logger
	plugins   []string
}

// AppOption configures an App.
type AppOption func(*App)

// WithLogger sets the logger used by the app and its scheduler.
func WithLogger(logger *zap.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRegistry makes the app use an existing component registry.
func WithRegistry(registry *ComponentRegistry) AppOption {
	return func(a *App) {
		if registry != nil {
			a.registry = registry
		}
	}
}

// NewApp creates an app with an empty world.
func NewApp(opts ...AppOption) *App {
	a := &App{
		registry: NewComponentRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.storage = NewStorage(a.registry)
	a.scheduler = NewScheduler(a.storage)
	a.scheduler.SetLogger(a.logger)
	return a
}

// Registry returns the component registry. Plugins register their components here.
func (a *App) Registry() *ComponentRegistry { return a.registry }

// Storage returns the world storage.
func (a *App) Storage() *Storage { return a.storage }

// Scheduler returns the scheduler.
func (a *App) Scheduler() *Scheduler { return a.scheduler }

// Logger returns the app logger. Never nil.
func (a *App) Logger() *zap.Logger { return a.logger }

// Plugins lists the names of the plugins added so far, in order.
func (a *App) Plugins() []string { return a.plugins }

// AddPlugin lets p configure the app.
func (a *App) AddPlugin(p Plugin) *App {
	name := pluginName(p)
	a.plugins = append(a.plugins, name)
	a.logger.Debug("adding plugin", zap.String("plugin", name))
	p.Build(a)
	return a
}

func pluginName(p Plugin) string {
	t := reflect.TypeOf(p)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// AddResource stores value as a resource, replacing any existing value of the same type.
func (a *App) AddResource(value any) *App {
	a.storage.AddSingleton(value)
	return a
}

// AddStartupSystem registers a system to run once before the first tick.
func (a *App) AddStartupSystem(system System) *App {
	a.scheduler.RegisterStartup(system)
	return a
}

// AddSystem registers a system to run every tick.
func (a *App) AddSystem(system System) *App {
	a.scheduler.Register(system)
	return a
}

// Startup runs the startup systems if they have not run yet.
func (a *App) Startup() error {
	return a.scheduler.Startup()
}

// Tick runs one update pass with the given elapsed time.
func (a *App) Tick(dt time.Duration) error {
	return a.scheduler.Once(dt.Seconds())
}

// Run ticks every interval until ctx is done.
func (a *App) Run(ctx context.Context, interval time.Duration) error {
	return a.scheduler.Run(ctx, interval)
}
