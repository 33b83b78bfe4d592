package ecs_test

import (
	"reflect"

	"github.com/plus3/greet/ecs"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Person struct{}

type Name string

type Age int

type Mood struct {
	Happy bool
}

type Inventory struct {
	Items []string
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Person](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Age](registry)
	ecs.RegisterComponent[Mood](registry)
	ecs.RegisterComponent[Inventory](registry)
	return registry
}

func ptr[T any](v T) *T {
	return &v
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
