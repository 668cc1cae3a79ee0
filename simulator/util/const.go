package util

// Runtime states of the simulator and of its components.
const (
	Stopped = iota
	Running
)
