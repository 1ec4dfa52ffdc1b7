package termcore

import "time"

// Mood is an avatar mood request from the backend, selecting which
// animation the engine plays.
type Mood string

const (
	MoodIdle     Mood = "idle"
	MoodThinking Mood = "thinking"
	MoodHappy    Mood = "happy"
	MoodCurious  Mood = "curious"
)

// BackendMessageKind enumerates the message kinds the backend channel
// carries. Unknown kinds (not among these) are ignored by the render
// loop rather than treated as an error, per spec.md §6's
// version-tagged, forward-compatible message schema.
type BackendMessageKind int

const (
	BackendMessageTokenDelta BackendMessageKind = iota
	BackendMessageComplete
	BackendMessageMoodChange
	BackendMessageTaskStart
	BackendMessageTaskProgress
	BackendMessageTaskComplete
	BackendMessageFatalError
)

// BackendMessage is one event arriving from the backend channel.
// Only the fields relevant to Kind are populated by a given producer;
// the render loop reads fields by Kind.
type BackendMessage struct {
	Kind BackendMessageKind

	// BackendMessageTokenDelta / BackendMessageComplete
	Token string

	// BackendMessageMoodChange
	Mood Mood

	// BackendMessageTaskStart / TaskProgress / TaskComplete
	TaskID   string
	TaskText string
	Progress float64

	// BackendMessageFatalError
	Err error
}

// Backend is the minimal contract the rendering core needs from the
// external LLM backend and conversation-state store (out of scope per
// spec.md §1, but the core must compile and be testable against
// something implementing it).
type Backend interface {
	// Messages returns the channel of incoming backend events. It is
	// closed when the backend connection ends.
	Messages() <-chan BackendMessage

	// Connect attempts to establish the backend connection, bounded by
	// timeout. A timeout or closed channel
	// surfaces as ErrBackendUnavailable to the caller, not a panic.
	Connect(timeout time.Duration) error

	// Close releases backend resources.
	Close() error
}

// StubBackend is a Backend that never responds — used to exercise the
// render loop's startup screen and BackendUnavailable handling without
// a real model connection.
type StubBackend struct {
	messages chan BackendMessage
}

// NewStubBackend creates a Backend whose Messages channel never
// receives anything and whose Connect always times out.
func NewStubBackend() *StubBackend {
	return &StubBackend{messages: make(chan BackendMessage)}
}

func (s *StubBackend) Messages() <-chan BackendMessage { return s.messages }

func (s *StubBackend) Connect(timeout time.Duration) error {
	time.Sleep(timeout)
	return NewError(ErrBackendUnavailable, "stub backend never connects")
}

func (s *StubBackend) Close() error {
	close(s.messages)
	return nil
}
