package sdk

// Action tells the router what to do with a protected route.
type Action int

const (
	// ActionWait renders nothing and does not redirect; verification is in flight.
	ActionWait Action = iota
	// ActionRedirect sends the visitor to Decision.To.
	ActionRedirect
	// ActionRender shows the protected content.
	ActionRender
)

func (a Action) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionRedirect:
		return "redirect"
	case ActionRender:
		return "render"
	}
	return "unknown"
}

// Decision is the outcome of Guard.
type Decision struct {
	Action Action
	To     string
}

// Guard gates a protected route on phase. It holds no state and should be
// re-evaluated whenever the phase changes.
func Guard(phase Phase, loginPath string) Decision {
	switch phase {
	case PhaseAuthenticated:
		return Decision{Action: ActionRender}
	case PhaseResolving:
		return Decision{Action: ActionWait}
	}
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return Decision{Action: ActionRedirect, To: loginPath}
}
