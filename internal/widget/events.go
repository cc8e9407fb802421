package widget

// EventType classifies instance events delivered to the embedding host.
type EventType string

const (
	// EventPanelOpened fires when the panel opens, including the implicit
	// open on the first transcript append.
	EventPanelOpened EventType = "panel_opened"

	// EventMessageAppended fires for every transcript append, user and
	// assistant alike.
	EventMessageAppended EventType = "message_appended"

	// EventRequirementsChanged fires when the pending document requirement
	// list is replaced or cleared.
	EventRequirementsChanged EventType = "requirements_changed"

	// EventSanctionIssued fires when a reply carries a sanction identifier.
	EventSanctionIssued EventType = "sanction_issued"

	// EventError fires for failures already converted to user-visible
	// apologies, for host diagnostics.
	EventError EventType = "error"
)

// Event is one notification from a widget instance. The host consumes these
// from Events() instead of the DOM event bus a browser embed would use.
type Event struct {
	Type         EventType
	Message      *Message
	Requirements []Requirement
	SanctionID   string
	Err          error
}

// emit delivers an event without ever blocking the runtime; a slow or absent
// host loses events rather than stalling the conversation.
func (i *Instance) emit(ev Event) {
	select {
	case i.events <- ev:
	default:
		i.logger.Warn().Str("event", string(ev.Type)).Msg("event buffer full, dropping")
	}
}
