package recorder

// State is the Recorder's lifecycle position (spec §4.4):
// IDLE -> LAUNCHING -> READY <-> RECORDING -> CLOSING -> IDLE.
type State string

const (
	StateIdle      State = "IDLE"
	StateLaunching State = "LAUNCHING"
	StateReady     State = "READY"
	StateRecording State = "RECORDING"
	StateClosing   State = "CLOSING"
)
