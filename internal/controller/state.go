package controller

// State is a step of the update flow.
type State int32

const (
	StateIdle State = iota
	StateChecking
	StateNoUpdateFound
	StateUpdateFound
	StateAwaitingUserDecision
	StateCancelled
	StatePermissionNeeded
	StatePermissionDenied
	StateDownloading
	StateValidating
	StateInstalling
	StateInvalid
	StateFailed
)

var stateNames = [...]string{
	StateIdle:                 "Idle",
	StateChecking:             "Checking",
	StateNoUpdateFound:        "NoUpdateFound",
	StateUpdateFound:          "UpdateFound",
	StateAwaitingUserDecision: "AwaitingUserDecision",
	StateCancelled:            "Cancelled",
	StatePermissionNeeded:     "PermissionNeeded",
	StatePermissionDenied:     "PermissionDenied",
	StateDownloading:          "Downloading",
	StateValidating:           "Validating",
	StateInstalling:           "Installing",
	StateInvalid:              "Invalid",
	StateFailed:               "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}
