package ecs_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/plus3/greet/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Greeting struct {
	Text string
}

type Counter int

func TestGetResource(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	t.Run("missing resource", func(t *testing.T) {
		res, err := ecs.GetResource[Greeting](storage)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ecs.ErrResourceNotFound)
		assert.Contains(t, err.Error(), "ecs_test.Greeting")
	})

	t.Run("registered resource", func(t *testing.T) {
		storage.AddSingleton(Greeting{Text: "hello"})

		res, err := ecs.GetResource[Greeting](storage)
		require.NoError(t, err)
		assert.Equal(t, "hello", res.Text)

		res.Text = "hi"
		again, err := ecs.GetResource[Greeting](storage)
		require.NoError(t, err)
		assert.Same(t, res, again)
	})
}

func TestAddSingletonOverwrites(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	handle := ecs.NewSingleton[Counter](storage, 1)
	assert.Equal(t, Counter(1), *handle.Get())

	storage.AddSingleton(Counter(7))
	assert.Equal(t, Counter(7), *handle.Get(), "existing handles see the new value")

	value := Counter(9)
	storage.AddSingleton(&value)
	assert.Equal(t, Counter(9), *handle.Get())

	value = 10
	assert.Equal(t, Counter(9), *handle.Get(), "the resource is a copy")

	assert.Equal(t, 1, storage.CollectStats().SingletonCount)
}

func TestNewSingletonKeepsExistingValue(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	storage.AddSingleton(Greeting{Text: "first"})
	handle := ecs.NewSingleton[Greeting](storage, Greeting{Text: "second"})

	assert.Equal(t, "first", handle.Get().Text)
}

func TestSingletonHandle(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	var handle ecs.Singleton[Greeting]
	assert.Nil(t, handle.Get(), "unbound handle")

	handle.Init(storage)
	assert.False(t, handle.Exists())
	assert.Nil(t, handle.Get())

	storage.AddSingleton(Greeting{Text: "late"})
	assert.True(t, handle.Exists())
	assert.Equal(t, "late", handle.Get().Text)
}

func TestReadSingleton(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	storage.AddSingleton(Greeting{Text: "hello"})

	var greeting *Greeting
	require.True(t, storage.ReadSingleton(&greeting))
	assert.Equal(t, "hello", greeting.Text)

	var counter *Counter
	assert.False(t, storage.ReadSingleton(&counter))
	assert.Nil(t, counter)

	assert.Panics(t, func() { storage.ReadSingleton(greeting) })
}

func TestRemoveSingleton(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	storage.AddSingleton(Counter(3))
	require.True(t, storage.HasSingleton(reflect.TypeFor[Counter]()))

	storage.RemoveSingleton(reflect.TypeFor[Counter]())

	_, err := ecs.GetResource[Counter](storage)
	assert.True(t, errors.Is(err, ecs.ErrResourceNotFound))
}

func TestSingletonHandleFollowsRemoveAndReAdd(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	storage.AddSingleton(Counter(1))
	handle := ecs.NewSingleton[Counter](storage)
	require.Equal(t, Counter(1), *handle.Get())

	storage.RemoveSingleton(reflect.TypeFor[Counter]())
	assert.Nil(t, handle.Get())
	assert.False(t, handle.Exists())

	storage.AddSingleton(Counter(7))
	require.True(t, handle.Exists())
	assert.Equal(t, Counter(7), *handle.Get())

	*handle.Get() = 8
	stored, err := ecs.GetResource[Counter](storage)
	require.NoError(t, err)
	assert.Equal(t, Counter(8), *stored)
}

func TestScheduledSystemSeesRemovedAndReAddedResource(t *testing.T) {
	app := ecs.NewApp().
		AddResource(Counter(0)).
		AddSystem(&needsCounter{})

	require.NoError(t, app.Tick(time.Second))
	counter, err := ecs.GetResource[Counter](app.Storage())
	require.NoError(t, err)
	assert.Equal(t, Counter(1), *counter)

	app.Storage().RemoveSingleton(reflect.TypeFor[Counter]())
	assert.ErrorIs(t, app.Tick(time.Second), ecs.ErrResourceNotFound)

	app.AddResource(Counter(100))
	require.NoError(t, app.Tick(time.Second))

	counter, err = ecs.GetResource[Counter](app.Storage())
	require.NoError(t, err)
	assert.Equal(t, Counter(101), *counter)
}
