// Package actions decides which actions an inbound message triggers and runs
// them through a dispatch table.
package actions

// Kind names an action. The declaration order is the execution order.
type Kind int

const (
	PromptSignup Kind = iota
	Signup
	SendHelp
	Stop
	ListGoals
	SetGoals
	MarkDone
	PairDevice
	HelpRequest
)

var kindNames = [...]string{
	PromptSignup: "prompt_signup",
	Signup:       "signup",
	SendHelp:     "send_help",
	Stop:         "stop",
	ListGoals:    "list_goals",
	SetGoals:     "set_goals",
	MarkDone:     "mark_done",
	PairDevice:   "pair_device",
	HelpRequest:  "help_request",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}
