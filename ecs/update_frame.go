package ecs

import "time"

// UpdateFrame is what a system sees of the current pass.
type UpdateFrame struct {
	// DeltaTime is the time since the previous tick, in seconds. Zero during startup.
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(dt float64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  NewCommands(),
		Storage:   storage,
	}
}

// Delta is DeltaTime as a time.Duration.
func (f *UpdateFrame) Delta() time.Duration {
	return secondsToDuration(f.DeltaTime)
}
