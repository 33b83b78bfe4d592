package ecs

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

// ErrResourceNotFound is returned when a resource is requested that was never
// added to the storage.
var ErrResourceNotFound = errors.New("ecs: resource not found")

type singletonEntry struct {
	typ     reflect.Type
	dataPtr unsafe.Pointer
}

// AddSingleton stores value as the resource for its type. Pointers are
// dereferenced. An existing resource of the same type is overwritten in place,
// so Singleton handles already bound to it observe the new value.
func (s *Storage) AddSingleton(value any) {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		panic("ecs: cannot add nil singleton")
	}
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	if entry, ok := s.singletons[t]; ok {
		reflect.NewAt(t, entry.dataPtr).Elem().Set(v)
		return
	}

	ptr := reflect.New(t)
	ptr.Elem().Set(v)
	s.singletons[t] = &singletonEntry{typ: t, dataPtr: ptr.UnsafePointer()}
	s.singletonGen++
}

// HasSingleton reports whether a resource of type t exists.
func (s *Storage) HasSingleton(t reflect.Type) bool {
	return s.getSingletonEntry(t) != nil
}

// RemoveSingleton drops the resource of type t. Bound Singleton handles report
// it as missing from then on, and pick up a value added again later.
func (s *Storage) RemoveSingleton(t reflect.Type) {
	if _, ok := s.singletons[t]; !ok {
		return
	}
	delete(s.singletons, t)
	s.singletonGen++
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

// ReadSingleton points *target at the resource of type T. target must be a **T.
// Returns false if no such resource exists.
func (s *Storage) ReadSingleton(target any) bool {
	out := reflect.ValueOf(target)
	if out.Kind() != reflect.Ptr || out.Elem().Kind() != reflect.Ptr {
		panic("ecs: ReadSingleton target must be a pointer to a pointer")
	}

	t := out.Elem().Type().Elem()
	entry := s.getSingletonEntry(t)
	if entry == nil {
		return false
	}
	out.Elem().Set(reflect.NewAt(t, entry.dataPtr))
	return true
}

// GetResource returns the resource of type T, or ErrResourceNotFound.
func GetResource[T any](storage *Storage) (*T, error) {
	t := reflect.TypeFor[T]()
	entry := storage.getSingletonEntry(t)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, t)
	}
	return (*T)(entry.dataPtr), nil
}

// Singleton is a handle to a resource: a single value of type T owned by the
// storage rather than by an entity. Declared as a field on a System, it is
// bound by the Scheduler at registration.
type Singleton[T any] struct {
	storage      *Storage
	componentPtr unsafe.Pointer
	gen          uint64
}

// NewSingleton returns a handle to the T resource, creating it from
// initializer (or the zero value) if it does not exist yet. An existing
// resource is left untouched.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	if storage.getSingletonEntry(reflect.TypeFor[T]()) == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(&value)
	}

	s := &Singleton[T]{}
	s.Init(storage)
	return s
}

// Init binds the handle to storage.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.updateCache()
}

// Get returns the resource, or nil if it is not in the storage.
func (s *Singleton[T]) Get() *T {
	if s.componentPtr == nil || (s.storage != nil && s.gen != s.storage.singletonGen) {
		s.updateCache()
	}
	return (*T)(s.componentPtr)
}

// Exists reports whether the resource has been added.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

func (s *Singleton[T]) resourceType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (s *Singleton[T]) updateCache() {
	if s.storage == nil {
		return
	}
	s.gen = s.storage.singletonGen
	if entry := s.storage.getSingletonEntry(reflect.TypeFor[T]()); entry != nil {
		s.componentPtr = entry.dataPtr
	} else {
		s.componentPtr = nil
	}
}
