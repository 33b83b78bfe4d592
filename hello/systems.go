package hello

import (
	"fmt"
	"io"
	"os"

	"github.com/plus3/greet/ecs"
	"go.uber.org/zap"
)

// AddPeople spawns one Person per name, in order. Running it twice spawns
// everyone twice; the scheduler runs startup systems only once.
type AddPeople struct {
	People []string
}

func (s *AddPeople) Execute(frame *ecs.UpdateFrame) {
	for _, name := range s.People {
		frame.Commands.Spawn(Person{}, Name(name))
	}
}

// GreetPeople ticks the GreetTimer and, each time it fires, writes
// "hello {name}!" for every person.
type GreetPeople struct {
	Time   ecs.Singleton[ecs.Time]
	Timer  ecs.Singleton[GreetTimer]
	People ecs.Query[struct {
		*Person
		*Name
	}]

	// Out receives the greetings. Defaults to stdout.
	Out    io.Writer
	Logger *zap.Logger

	greeted int
}

func (s *GreetPeople) Execute(frame *ecs.UpdateFrame) {
	timer := s.Timer.Get()
	if !timer.Tick(s.Time.Get().Delta).JustFinished() {
		return
	}

	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	n := 0
	for person := range s.People.Values() {
		if _, err := fmt.Fprintf(out, "hello %s!\n", *person.Name); err != nil {
			s.logger().Warn("greeting not written", zap.String("name", string(*person.Name)), zap.Error(err))
			continue
		}
		n++
	}
	s.greeted += n

	s.logger().Debug("greet timer fired",
		zap.Int("greeted", n),
		zap.Duration("elapsed", timer.Elapsed()),
	)
}

// Greeted returns the number of greetings written so far.
func (s *GreetPeople) Greeted() int {
	return s.greeted
}

func (s *GreetPeople) logger() *zap.Logger {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return s.Logger
}
