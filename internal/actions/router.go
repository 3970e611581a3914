package actions

import "github.com/goaltext/goaltext/internal/parser"

// State is the identity state of the sender.
type State int

const (
	// NoIdentity means the phone resolved to no user.
	NoIdentity State = iota
	// Unbound means a user lists the phone but no active binding confirms it.
	Unbound
	// Bound means an active binding points at the resolved user.
	Bound
)

func (s State) String() string {
	switch s {
	case NoIdentity:
		return "no_identity"
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	}
	return "unknown"
}

// Plan is the ordered list of actions selected for one message.
type Plan struct {
	kinds []Kind
}

// Kinds returns the planned actions in execution order.
func (p Plan) Kinds() []Kind {
	return append([]Kind(nil), p.kinds...)
}

// Empty reports whether no action is planned.
func (p Plan) Empty() bool {
	return len(p.kinds) == 0
}

// boundPlan builds a plan for a bound sender. It never returns an empty plan:
// when nothing was recognized the fallback HelpRequest is planned.
func boundPlan(kinds []Kind) Plan {
	if len(kinds) == 0 {
		kinds = []Kind{HelpRequest}
	}
	return Plan{kinds: kinds}
}

// Route selects actions for req given the sender's identity state.
func Route(state State, req parser.Request) Plan {
	switch state {
	case NoIdentity:
		return Plan{kinds: []Kind{PromptSignup}}
	case Unbound:
		if req.Signup {
			return Plan{kinds: []Kind{Signup}}
		}
		return Plan{}
	}

	var kinds []Kind
	if req.Help {
		kinds = append(kinds, SendHelp)
	}
	if req.Stop {
		kinds = append(kinds, Stop)
	}
	if req.ListGoals {
		kinds = append(kinds, ListGoals)
	}
	if len(req.NewGoals) > 0 {
		kinds = append(kinds, SetGoals)
	}
	if len(req.MarkDone) > 0 {
		kinds = append(kinds, MarkDone)
	}
	if req.DeviceID != "" {
		kinds = append(kinds, PairDevice)
	}
	return boundPlan(kinds)
}
