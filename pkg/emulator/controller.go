package emulator

// Controller defines the interface contract for an Emulator to
// implement in order for a display driver to be able to control
// it.
type Controller interface {
	// SendCommand sends a command packet to the emulator, and
	// waits for its response.
	SendCommand(command CommandPacket) ResponsePacket
	// Status returns the status of the emulator.
	Status() Status
	// Paused returns true if the emulator is paused.
	Paused() bool
}
