package emulator

// Status is the run state of an Emulator.
type Status int32

const (
	// Running is the status of an emulator executing frames.
	Running Status = iota
	// Halted is the status of an emulator whose CPU has trapped,
	// either on an illegal opcode or on STOP.
	Halted
	// Errored is the status of an emulator that failed for any
	// other reason.
	Errored
)

var statusNames = map[Status]string{
	Running: "Running",
	Halted:  "Halted",
	Errored: "Errored",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// IsRunning returns true if the emulator is executing frames,
// which it may still not be doing while paused.
func (s Status) IsRunning() bool {
	return s == Running
}
