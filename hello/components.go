package hello

import (
	"time"

	"github.com/plus3/greet/ecs"
)

// Person marks an entity as someone to greet.
type Person struct{}

// Name is an entity's display name.
type Name string

// GreetTimer paces the greetings.
type GreetTimer struct {
	ecs.Timer
}

// DefaultInterval is the time between two rounds of greetings.
const DefaultInterval = 2 * time.Second

// DefaultPeople are spawned when no roster is configured.
var DefaultPeople = []string{"Elaina Proctor", "Renzo Hume", "Zayna Nieves"}
