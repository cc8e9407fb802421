package widget

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// State is the conversation manager's lifecycle state.
type State string

const (
	// StateReady accepts user input.
	StateReady State = "ready"
	// StateDegraded is Ready without a backend session: the welcome came
	// from a local fallback because session creation failed.
	StateDegraded State = "degraded"
	// StateAwaiting has a chat turn in flight.
	StateAwaiting State = "awaiting"
	// StateClosed is a torn-down instance.
	StateClosed State = "closed"
)

// Transcript roles.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is one transcript turn.
type Message struct {
	Role       string
	Text       string
	SanctionID string
}

// Attachment is a user-selected file held in memory until submission.
type Attachment struct {
	FileName string
	Contents []byte
}

// Fallback texts for backend failures.
const (
	offlineWelcome = "Namaste! I'm Vittam, your personal loan assistant. I'm having trouble reaching our servers right now, so please try again in a little while."
	apologyText    = "I'm sorry, something went wrong on my side. Please try that again in a moment."
)

// Instance is one mounted widget runtime. It owns the session identity, the
// transcript, the pending document requirements, and the attached files; all
// of it lives in memory and dies with the instance.
type Instance struct {
	cfg    Config
	client *Client
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	events chan Event

	mu           sync.Mutex
	state        State
	sessionID    string
	transcript   []Message
	requirements []Requirement
	files        map[string]Attachment
	submitting   bool
	panelOpen    bool
}

func newInstance(cfg Config) *Instance {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	logger := cfg.Logger.With().Str("component", "widget").Str("bot_id", cfg.BotID).Logger()

	return &Instance{
		cfg:    cfg,
		client: NewClient(cfg.BaseURL, cfg.HTTPClient, cfg.Logger),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 64),
		files:  make(map[string]Attachment),
	}
}

// start opens the backend session. A failure degrades to a local welcome
// instead of surfacing an error: the widget must render something on any
// host page.
func (i *Instance) start() {
	info, err := i.client.CreateSession(i.ctx)

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateClosed {
		return
	}

	if err != nil {
		i.logger.Error().Err(err).Msg("session creation failed, entering degraded mode")
		i.state = StateDegraded
		i.appendLocked(Message{Role: RoleBot, Text: offlineWelcome})
		return
	}

	i.sessionID = info.SessionID
	i.state = StateReady
	i.appendLocked(Message{Role: RoleBot, Text: info.Message})
	i.logger.Info().Str("session_id", info.SessionID).Msg("session started")
}

// SendMessage runs one conversational turn. The user's message lands in the
// transcript before the network call goes out, so the user's turn is always
// visible regardless of latency. Failures append an apology and return the
// instance to Ready; there is no automatic retry.
func (i *Instance) SendMessage(text string) {
	if text == "" {
		return
	}

	i.mu.Lock()
	if i.state == StateClosed || i.state == StateAwaiting {
		i.mu.Unlock()
		return
	}
	i.appendLocked(Message{Role: RoleUser, Text: text})

	if i.sessionID == "" {
		i.appendLocked(Message{Role: RoleBot, Text: offlineWelcome})
		i.mu.Unlock()
		return
	}

	prev := i.state
	i.state = StateAwaiting
	i.setRequirementsLocked(nil)
	sessionID := i.sessionID
	i.mu.Unlock()

	reply, err := i.client.SendChatMessage(i.ctx, sessionID, text)

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateClosed {
		return
	}
	i.state = prev

	if err != nil {
		i.logger.Error().Err(err).Msg("chat turn failed")
		i.appendLocked(Message{Role: RoleBot, Text: apologyText})
		i.emit(Event{Type: EventError, Err: err})
		return
	}

	msg := Message{Role: RoleBot, Text: reply.Response, SanctionID: reply.SanctionID}
	i.appendLocked(msg)

	if len(reply.Documents) > 0 {
		i.setRequirementsLocked(reply.Documents)
	}
	if reply.SanctionID != "" {
		i.emit(Event{Type: EventSanctionIssued, SanctionID: reply.SanctionID})
	}
}

// AttachFile stages a file for a named requirement. Once every pending
// requirement has an attachment, the submission cycle starts automatically.
func (i *Instance) AttachFile(requirementName, fileName string, contents []byte) {
	i.mu.Lock()
	if i.state == StateClosed {
		i.mu.Unlock()
		return
	}
	i.files[requirementName] = Attachment{FileName: fileName, Contents: contents}

	if !i.satisfiedLocked() || i.submitting {
		i.mu.Unlock()
		return
	}
	i.submitting = true
	reqs := append([]Requirement(nil), i.requirements...)
	files := make(map[string]Attachment, len(i.files))
	for k, v := range i.files {
		files[k] = v
	}
	sessionID := i.sessionID
	i.mu.Unlock()

	i.runSubmission(sessionID, reqs, files)
}

// satisfiedLocked reports whether every pending requirement name has an
// attached file. Partial sets never trigger a submission.
func (i *Instance) satisfiedLocked() bool {
	if len(i.files) == 0 || len(i.requirements) == 0 {
		return false
	}
	for _, r := range i.requirements {
		if _, ok := i.files[r.Name]; !ok {
			return false
		}
	}
	return true
}

func (i *Instance) appendLocked(msg Message) {
	i.transcript = append(i.transcript, msg)
	if !i.panelOpen {
		i.panelOpen = true
		i.emit(Event{Type: EventPanelOpened})
	}
	m := msg
	i.emit(Event{Type: EventMessageAppended, Message: &m})
}

func (i *Instance) setRequirementsLocked(reqs []Requirement) {
	i.requirements = reqs
	i.emit(Event{Type: EventRequirementsChanged, Requirements: append([]Requirement(nil), reqs...)})
}

// Events delivers instance notifications to the embedding host.
func (i *Instance) Events() <-chan Event {
	return i.events
}

// SessionID returns the backend session id, empty in degraded mode.
func (i *Instance) SessionID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sessionID
}

// State returns the current lifecycle state.
func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Transcript returns a copy of the message sequence.
func (i *Instance) Transcript() []Message {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Message(nil), i.transcript...)
}

// Requirements returns a copy of the pending document requirements.
func (i *Instance) Requirements() []Requirement {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Requirement(nil), i.requirements...)
}

// PanelOpen reports whether the panel has been opened.
func (i *Instance) PanelOpen() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.panelOpen
}

// Config returns the effective instance configuration.
func (i *Instance) Config() Config {
	return i.cfg
}

// close cancels in-flight requests and marks the instance dead. Late
// responses from calls already in flight are discarded by the state checks
// after each network await. The event channel is closed here so host range
// loops terminate; every emit runs under the mutex behind a StateClosed
// check, so nothing can send after this.
func (i *Instance) close() {
	i.mu.Lock()
	if i.state != StateClosed {
		i.state = StateClosed
		close(i.events)
	}
	i.mu.Unlock()
	i.cancel()
}
