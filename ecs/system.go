package ecs

// System is a routine run by the Scheduler, either once at startup or once per
// tick. Exported fields of type Query[...] and Singleton[...] are bound to the
// scheduler's storage when the system is registered; any other fields are the
// system's own state and persist between ticks.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(frame *UpdateFrame)

// Execute calls f.
func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}
