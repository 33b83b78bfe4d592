// Package hello is a small plugin for the ecs package: it spawns a handful of
// people at startup and greets them on a timer.
package hello

import (
	"io"
	"time"

	"github.com/plus3/greet/ecs"
)

// Plugin registers the hello components, the GreetTimer resource, the
// AddPeople startup system and the GreetPeople update system. The zero value
// greets DefaultPeople every DefaultInterval.
type Plugin struct {
	// People to spawn. Empty means DefaultPeople.
	People []string
	// Interval between greetings. Zero means DefaultInterval.
	Interval time.Duration
	// OneShot greets only once instead of repeating.
	OneShot bool
	// Out receives the greetings. Nil means stdout.
	Out io.Writer

	greeter *GreetPeople
}

func (p *Plugin) Build(app *ecs.App) {
	ecs.RegisterComponent[Person](app.Registry())
	ecs.RegisterComponent[Name](app.Registry())

	people := p.People
	if len(people) == 0 {
		people = DefaultPeople
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.greeter = &GreetPeople{
		Out:    p.Out,
		Logger: app.Logger().Named("hello"),
	}

	app.AddResource(GreetTimer{ecs.NewTimer(interval, !p.OneShot)}).
		AddStartupSystem(&AddPeople{People: people}).
		AddSystem(p.greeter)
}

// Greeted returns how many greetings the plugin's system has written.
func (p *Plugin) Greeted() int {
	if p.greeter == nil {
		return 0
	}
	return p.greeter.Greeted()
}
