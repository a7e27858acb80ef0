package agent

import "strings"

// NextAction hints what the caller should do after a reply.
type NextAction string

const (
	ActionRedirectToSystem     NextAction = "redirect_to_system"
	ActionAppointmentConfirmed NextAction = "appointment_confirmed"
	ActionRequestMoreInfo      NextAction = "request_more_info"
	// ActionNone means the reply needs no follow-up.
	ActionNone NextAction = ""
)

// ReplyInterpreter derives the next action from an agent reply. Kept as
// an interface so the trigger-phrase strategy can be swapped without
// touching the orchestrator.
type ReplyInterpreter interface {
	NextAction(reply string) NextAction
}

// systemURLToken is the booking-system host Luciano is scripted to send.
const systemURLToken = "vanluagendamento.online"

// PhraseInterpreter matches the fixed Portuguese phrases the agent script
// mandates. This is a known coupling to the exact wording of the prompt:
// it breaks silently if the script changes.
type PhraseInterpreter struct{}

// NextAction inspects the reply for the scripted trigger phrases.
func (PhraseInterpreter) NextAction(reply string) NextAction {
	lowered := strings.ToLower(reply)

	if strings.Contains(reply, systemURLToken) && strings.Contains(lowered, "sistema") {
		return ActionRedirectToSystem
	}

	if strings.Contains(lowered, "agendado para") && strings.Contains(lowered, "te espero") {
		return ActionAppointmentConfirmed
	}

	if strings.HasSuffix(strings.TrimSpace(reply), "?") {
		return ActionRequestMoreInfo
	}

	return ActionNone
}
