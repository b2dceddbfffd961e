package simulation

// ResetMode is the three state reset signal cycled by the user.
type ResetMode int

const (
	ResetIdle ResetMode = iota
	ResetRunning
	ResetRearrange
)

func (r ResetMode) Next() ResetMode {
	return (r + 1) % 3
}

func (r ResetMode) String() string {
	switch r {
	case ResetIdle:
		return "idle"
	case ResetRunning:
		return "running"
	case ResetRearrange:
		return "rearrange"
	default:
		return "unknown"
	}
}
