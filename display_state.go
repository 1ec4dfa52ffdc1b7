package termcore

import "github.com/companionterm/termcore/signals"

// ConversationRole distinguishes who spoke a ConversationMessage.
type ConversationRole string

const (
	ConversationUser      ConversationRole = "user"
	ConversationAssistant ConversationRole = "assistant"
)

// ConversationMessage is one line of the chat transcript. Streaming is
// true while the backend is still appending tokens to it.
type ConversationMessage struct {
	Role      ConversationRole
	Text      string
	Streaming bool
}

// Task is one entry in the task surface: a backend-reported unit of
// work with a progress fraction in [0, 1].
type Task struct {
	ID       string
	Text     string
	Progress float64
	Done     bool
}

// StatusInfo is the status surface's content.
type StatusInfo struct {
	Text               string
	BackendUnavailable bool
	Processing         bool
}

// DisplayState is the render loop's single owned shared value, per
// spec.md §9's design note: one slot per surface, each paired with a
// small version counter. A surface renderer skips repainting by
// comparing its own last-seen counter against the current one,
// instead of deep-comparing content every tick. The backend event
// handler and the key handler are the only mutators.
type DisplayState struct {
	conversation        signals.Accessor[[]ConversationMessage]
	setConversation     signals.Setter[[]ConversationMessage]
	conversationVersion signals.Accessor[int]
	bumpConversation    signals.Setter[int]

	tasks        signals.Accessor[[]Task]
	setTasks     signals.Setter[[]Task]
	tasksVersion signals.Accessor[int]
	bumpTasks    signals.Setter[int]

	status        signals.Accessor[StatusInfo]
	setStatus     signals.Setter[StatusInfo]
	statusVersion signals.Accessor[int]
	bumpStatus    signals.Setter[int]

	mood    signals.Accessor[Mood]
	setMood signals.Setter[Mood]
}

// NewDisplayState constructs an empty display state: no messages, no
// tasks, status "ready", mood idle.
func NewDisplayState() *DisplayState {
	conv, setConv := signals.CreateSignal([]ConversationMessage{})
	convVer, bumpConv := signals.CreateSignal(0)
	tasks, setTasks := signals.CreateSignal([]Task{})
	tasksVer, bumpTasks := signals.CreateSignal(0)
	status, setStatus := signals.CreateSignal(StatusInfo{Text: "ready"})
	statusVer, bumpStatus := signals.CreateSignal(0)
	mood, setMood := signals.CreateSignal(MoodIdle)

	return &DisplayState{
		conversation: conv, setConversation: setConv,
		conversationVersion: convVer, bumpConversation: bumpConv,
		tasks: tasks, setTasks: setTasks,
		tasksVersion: tasksVer, bumpTasks: bumpTasks,
		status: status, setStatus: setStatus,
		statusVersion: statusVer, bumpStatus: bumpStatus,
		mood: mood, setMood: setMood,
	}
}

// Conversation returns the current transcript.
func (d *DisplayState) Conversation() []ConversationMessage { return d.conversation() }

// ConversationVersion returns the conversation slot's version counter.
func (d *DisplayState) ConversationVersion() int { return d.conversationVersion() }

// AppendMessage appends a complete message to the transcript.
func (d *DisplayState) AppendMessage(msg ConversationMessage) {
	signals.BatchVoid(func() {
		signals.SetWith(d.setConversation, func(prev []ConversationMessage) []ConversationMessage {
			return append(prev, msg)
		}, d.conversation)
		signals.SetWith(d.bumpConversation, func(v int) int { return v + 1 }, d.conversationVersion)
	})
}

// AppendToken appends a token delta, extending the trailing streaming
// message or starting a new one if the transcript doesn't already end
// in one.
func (d *DisplayState) AppendToken(token string) {
	signals.BatchVoid(func() {
		signals.SetWith(d.setConversation, func(prev []ConversationMessage) []ConversationMessage {
			if len(prev) == 0 || !prev[len(prev)-1].Streaming {
				return append(prev, ConversationMessage{Role: ConversationAssistant, Text: token, Streaming: true})
			}
			next := append([]ConversationMessage(nil), prev...)
			last := next[len(next)-1]
			last.Text += token
			next[len(next)-1] = last
			return next
		}, d.conversation)
		signals.SetWith(d.bumpConversation, func(v int) int { return v + 1 }, d.conversationVersion)
	})
}

// CompleteStreaming marks the trailing streaming message, if any, as
// finished.
func (d *DisplayState) CompleteStreaming() {
	signals.BatchVoid(func() {
		signals.SetWith(d.setConversation, func(prev []ConversationMessage) []ConversationMessage {
			if len(prev) == 0 || !prev[len(prev)-1].Streaming {
				return prev
			}
			next := append([]ConversationMessage(nil), prev...)
			last := next[len(next)-1]
			last.Streaming = false
			next[len(next)-1] = last
			return next
		}, d.conversation)
		signals.SetWith(d.bumpConversation, func(v int) int { return v + 1 }, d.conversationVersion)
	})
}

// Tasks returns the current task list.
func (d *DisplayState) Tasks() []Task { return d.tasks() }

// TasksVersion returns the tasks slot's version counter.
func (d *DisplayState) TasksVersion() int { return d.tasksVersion() }

// StartTask appends a new in-progress task.
func (d *DisplayState) StartTask(id, text string) {
	signals.BatchVoid(func() {
		signals.SetWith(d.setTasks, func(prev []Task) []Task {
			return append(prev, Task{ID: id, Text: text})
		}, d.tasks)
		signals.SetWith(d.bumpTasks, func(v int) int { return v + 1 }, d.tasksVersion)
	})
}

// ProgressTask updates a task's progress fraction by id. A reference
// to an unknown id is a silent no-op, not an error — the backend's
// task stream and the UI's task list are allowed to drift briefly.
func (d *DisplayState) ProgressTask(id string, progress float64) {
	signals.BatchVoid(func() {
		signals.SetWith(d.setTasks, func(prev []Task) []Task {
			next := append([]Task(nil), prev...)
			for i, t := range next {
				if t.ID == id {
					t.Progress = progress
					next[i] = t
				}
			}
			return next
		}, d.tasks)
		signals.SetWith(d.bumpTasks, func(v int) int { return v + 1 }, d.tasksVersion)
	})
}

// CompleteTask marks a task done by id.
func (d *DisplayState) CompleteTask(id string) {
	signals.BatchVoid(func() {
		signals.SetWith(d.setTasks, func(prev []Task) []Task {
			next := append([]Task(nil), prev...)
			for i, t := range next {
				if t.ID == id {
					t.Done = true
					t.Progress = 1
					next[i] = t
				}
			}
			return next
		}, d.tasks)
		signals.SetWith(d.bumpTasks, func(v int) int { return v + 1 }, d.tasksVersion)
	})
}

// Status returns the current status content.
func (d *DisplayState) Status() StatusInfo { return d.status() }

// StatusVersion returns the status slot's version counter.
func (d *DisplayState) StatusVersion() int { return d.statusVersion() }

// SetStatus replaces the status content.
func (d *DisplayState) SetStatus(info StatusInfo) {
	signals.BatchVoid(func() {
		d.setStatus(info)
		signals.SetWith(d.bumpStatus, func(v int) int { return v + 1 }, d.statusVersion)
	})
}

// Mood returns the avatar's current backend-requested mood.
func (d *DisplayState) Mood() Mood { return d.mood() }

// SetMood replaces the avatar's current mood.
func (d *DisplayState) SetMood(m Mood) { d.setMood(m) }
