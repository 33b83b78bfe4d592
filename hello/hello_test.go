package hello_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/plus3/greet/ecs"
	"github.com/plus3/greet/hello"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newApp(t *testing.T, plugin *hello.Plugin) (*ecs.App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	plugin.Out = out
	return ecs.NewApp().AddPlugin(plugin), out
}

func lines(out *bytes.Buffer) []string {
	text := strings.TrimSuffix(out.String(), "\n")
	out.Reset()
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func people(storage *ecs.Storage) []hello.Name {
	var names []hello.Name
	view := ecs.NewView[struct {
		*hello.Person
		*hello.Name
	}](storage)
	for item := range view.Values() {
		names = append(names, *item.Name)
	}
	return names
}

var greetings = []string{
	"hello Elaina Proctor!",
	"hello Renzo Hume!",
	"hello Zayna Nieves!",
}

func TestStartupSpawnsThreePeople(t *testing.T) {
	app, _ := newApp(t, &hello.Plugin{})

	assert.Empty(t, people(app.Storage()))
	require.NoError(t, app.Startup())

	assert.Equal(t, []hello.Name{"Elaina Proctor", "Renzo Hume", "Zayna Nieves"}, people(app.Storage()))

	for i := 0; i < 10; i++ {
		require.NoError(t, app.Tick(700*time.Millisecond))
	}
	assert.Len(t, people(app.Storage()), 3, "the population never changes")

	require.NoError(t, app.Startup())
	assert.Len(t, people(app.Storage()), 3, "startup runs once")
}

func TestGreetingSchedule(t *testing.T) {
	tests := []struct {
		name     string
		deltas   []time.Duration
		greeting []bool
	}{
		{
			name:     "one second ticks",
			deltas:   []time.Duration{time.Second, time.Second, time.Second, time.Second},
			greeting: []bool{false, true, false, true},
		},
		{
			name:     "half second ticks",
			deltas:   []time.Duration{500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond},
			greeting: []bool{false, false, false, true, false, false, false, true},
		},
		{
			name:     "uneven ticks",
			deltas:   []time.Duration{1500 * time.Millisecond, 1500 * time.Millisecond, 200 * time.Millisecond, 1500 * time.Millisecond},
			greeting: []bool{false, true, false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, out := newApp(t, &hello.Plugin{})

			for i, d := range tt.deltas {
				require.NoError(t, app.Tick(d))
				if tt.greeting[i] {
					assert.Equal(t, greetings, lines(out), "tick %d", i+1)
				} else {
					assert.Empty(t, lines(out), "tick %d", i+1)
				}
			}
		})
	}
}

func TestTimerResource(t *testing.T) {
	app, _ := newApp(t, &hello.Plugin{})

	timer, err := ecs.GetResource[hello.GreetTimer](app.Storage())
	require.NoError(t, err)
	assert.Equal(t, hello.DefaultInterval, timer.Duration())
	assert.True(t, timer.Repeating())

	require.NoError(t, app.Tick(1500*time.Millisecond))
	assert.Equal(t, 1500*time.Millisecond, timer.Elapsed())
	assert.False(t, timer.JustFinished())

	require.NoError(t, app.Tick(time.Second))
	assert.True(t, timer.JustFinished())
	assert.Equal(t, 500*time.Millisecond, timer.Elapsed())
}

func TestOneShotPlugin(t *testing.T) {
	plugin := &hello.Plugin{Interval: time.Second, OneShot: true}
	app, out := newApp(t, plugin)

	var total int
	for i := 0; i < 5; i++ {
		require.NoError(t, app.Tick(time.Second))
		total += len(lines(out))
	}

	assert.Equal(t, 3, total)
	assert.Equal(t, 3, plugin.Greeted())
}

func TestCustomRoster(t *testing.T) {
	plugin := &hello.Plugin{People: []string{"Ada", "Grace"}, Interval: 100 * time.Millisecond}
	app, out := newApp(t, plugin)

	require.NoError(t, app.Tick(100*time.Millisecond))
	assert.Equal(t, []string{"hello Ada!", "hello Grace!"}, lines(out))
	assert.Equal(t, 2, plugin.Greeted())
}

func TestGreetPeopleWithoutTimer(t *testing.T) {
	app := ecs.NewApp()
	ecs.RegisterComponent[hello.Person](app.Registry())
	ecs.RegisterComponent[hello.Name](app.Registry())
	app.AddSystem(&hello.GreetPeople{})

	assert.ErrorIs(t, app.Tick(time.Second), ecs.ErrResourceNotFound)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestGreetWriteFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	app := ecs.NewApp(ecs.WithLogger(zap.New(core)))
	plugin := &hello.Plugin{Out: failingWriter{}}
	app.AddPlugin(plugin)

	require.NoError(t, app.Tick(2*time.Second))

	assert.Equal(t, 3, logs.FilterMessage("greeting not written").Len())
	assert.Zero(t, plugin.Greeted())
}

func TestAddPeopleIsNotIdempotent(t *testing.T) {
	app := ecs.NewApp()
	ecs.RegisterComponent[hello.Person](app.Registry())
	ecs.RegisterComponent[hello.Name](app.Registry())

	spawn := &hello.AddPeople{People: hello.DefaultPeople}
	app.AddStartupSystem(spawn).AddStartupSystem(spawn)
	require.NoError(t, app.Startup())

	assert.Len(t, people(app.Storage()), 6)
}
