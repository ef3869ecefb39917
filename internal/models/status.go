package models

// Status is the lifecycle status shared by servers, users and accounts
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusDisactive Status = "DISACTIVE"
	StatusDeleted   Status = "DELETED"
)

// IsValid reports whether s is one of the known statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusDisactive, StatusDeleted:
		return true
	default:
		return false
	}
}

// Action is a lifecycle action executed against a remote account
type Action string

const (
	ActionBlock   Action = "BLOCK"
	ActionUnblock Action = "UNBLOCK"
	ActionRestart Action = "RESTART"
)

// ResultingStatus returns the local status an account moves to after the
// action succeeded remotely. RESTART keeps the current status.
func (a Action) ResultingStatus(current Status) Status {
	switch a {
	case ActionBlock:
		return StatusDisactive
	case ActionUnblock:
		return StatusActive
	default:
		return current
	}
}
