package models

// DownloadState is a step in the lifecycle of a single download request
type DownloadState int

const (
	StateIdle DownloadState = iota
	StateTitleResolving
	StateDownloading
	StateTransferring
	StateCleaning
	StateDone
	StateFailed
)

// String returns the state name used in logs
func (s DownloadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTitleResolving:
		return "title_resolving"
	case StateDownloading:
		return "downloading"
	case StateTransferring:
		return "transferring"
	case StateCleaning:
		return "cleaning"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition can happen
func (s DownloadState) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// CanFail reports whether the Failed state is reachable from s
func (s DownloadState) CanFail() bool {
	switch s {
	case StateTitleResolving, StateDownloading, StateTransferring:
		return true
	default:
		return false
	}
}
