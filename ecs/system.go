package ecs

// System is one step of a frame. Systems may declare exported Query and
// Singleton fields; the Scheduler binds them at registration.
type System interface {
	Execute(frame *UpdateFrame)
}
