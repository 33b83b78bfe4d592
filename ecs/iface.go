package ecs

import "unsafe"

// eface mirrors the runtime layout of an empty interface. Component pointers
// are pulled out of `any` values through it without a type switch.
type eface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

func dataPointer(v any) unsafe.Pointer {
	return (*eface)(unsafe.Pointer(&v)).data
}
