package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/greet/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spawnPeopleSystem struct {
	names    []string
	executed int
}

func (s *spawnPeopleSystem) Execute(frame *ecs.UpdateFrame) {
	s.executed++
	for _, name := range s.names {
		frame.Commands.Spawn(Person{}, Name(name))
	}
}

type countPeopleSystem struct {
	People ecs.Query[struct {
		*Person
		*Name
	}]
	seen []int
}

func (s *countPeopleSystem) Execute(frame *ecs.UpdateFrame) {
	s.seen = append(s.seen, s.People.Len())
}

func TestCommandsAreDeferredToEndOfPass(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	spawner := &spawnPeopleSystem{names: []string{"Renzo Hume"}}
	counter := &countPeopleSystem{}
	scheduler.Register(spawner)
	scheduler.Register(counter)

	require.NoError(t, scheduler.Once(1.0))
	require.NoError(t, scheduler.Once(1.0))

	// The counter runs after the spawner but only sees entities flushed by
	// previous passes.
	assert.Equal(t, []int{0, 1}, counter.seen)
	assert.Equal(t, 2, storage.EntityCount())
}

func TestCommandsFlush(t *testing.T) {
	registry := newTestRegistry()

	t.Run("spawn keeps queue order", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		cmds := ecs.NewCommands()

		cmds.Spawn(Person{}, Name("Elaina Proctor"))
		cmds.Spawn(Person{}, Name("Renzo Hume"))
		assert.Equal(t, 2, cmds.Pending())
		assert.Equal(t, 0, storage.EntityCount())

		cmds.Flush(storage)
		assert.Equal(t, 0, cmds.Pending())

		var names []Name
		for item := range ecs.NewView[struct{ *Name }](storage).Values() {
			names = append(names, *item.Name)
		}
		assert.Equal(t, []Name{"Elaina Proctor", "Renzo Hume"}, names)
	})

	t.Run("delete wins over add and remove", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		id := storage.Spawn(Person{}, Name("Zayna Nieves"), Age(20))
		cmds := ecs.NewCommands()

		cmds.AddComponent(id, Mood{Happy: true})
		cmds.RemoveComponent(id, reflect.TypeFor[Age]())
		cmds.Delete(id)
		cmds.Flush(storage)

		assert.Equal(t, 0, storage.EntityCount())
	})

	t.Run("remove then add", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		id := storage.Spawn(Person{}, Name("Zayna Nieves"), Age(20))
		cmds := ecs.NewCommands()

		cmds.RemoveComponent(id, reflect.TypeFor[Age]())
		cmds.Flush(storage)

		view := ecs.NewView[struct {
			ecs.EntityId
			*Name
		}](storage)
		var moved ecs.EntityId
		for item := range view.Values() {
			moved = item.EntityId
		}
		require.NotEqual(t, ecs.EntityId(0), moved)
		assert.Nil(t, ecs.ReadComponent[Age](storage, moved))

		cmds.AddComponent(moved, Mood{Happy: true})
		cmds.Flush(storage)

		assert.Equal(t, 1, ecs.NewView[struct {
			*Name
			*Mood
		}](storage).Count())
	})

	t.Run("defers run last", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		cmds := ecs.NewCommands()

		var seen int
		cmds.Defer(func() { seen = storage.EntityCount() })
		cmds.Spawn(Name("Renzo Hume"))
		cmds.Flush(storage)

		assert.Equal(t, 1, seen)
	})
}
