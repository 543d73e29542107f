package ecs

// UpdateFrame is handed to every system during one Scheduler pass.
type UpdateFrame struct {
	DeltaTime float64
	Frame     uint64
	Commands  *Commands
	Storage   *Storage

	halted bool
}

func newUpdateFrame(dt float64, frame uint64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Frame:     frame,
		Commands:  newCommands(),
		Storage:   storage,
	}
}

// Halt asks the Scheduler to stop after this frame. The remaining systems of
// the frame still run.
func (f *UpdateFrame) Halt() {
	f.halted = true
}

// Halted reports whether a system called Halt during this frame.
func (f *UpdateFrame) Halted() bool {
	return f.halted
}
