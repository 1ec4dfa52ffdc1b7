package termcore

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

// backendConnectTimeout bounds how long Run waits for the backend
// before surfacing ErrBackendUnavailable on the status surface. The
// render loop keeps running either way — a slow or absent backend
// never blocks the terminal from painting.
const backendConnectTimeout = 3 * time.Second

// RenderLoop is the single-threaded cooperative scheduler that owns
// every core component (Compositor, Palette, Animation Engine, Input,
// DisplayState) and the terminal itself, and drives them at a fixed
// target frame interval via one non-blocking multi-way select over the
// tick timer, key input, backend messages, and OS signals.
type RenderLoop struct {
	cfg     Config
	logger  *LogCapture
	backend Backend
	out     io.Writer

	compositor *Compositor
	palette    *Palette
	engine     *Engine
	input      *Input
	state      *DisplayState

	width, height int
	layout        surfaceLayout

	convLayer, tasksLayer, inputLayer, statusLayer, avatarLayer, logLayer, loadingLayer LayerID

	lastConvVersion   int
	lastTasksVersion  int
	lastStatusVersion int
	lastInputValue    string
	lastCursorPos     int

	showLogs      bool
	loadingActive bool

	prevOutput    *Buffer
	changeScratch []CellChange
	runScratch    []CellRun
	flush         strings.Builder

	termState *State
	rawMode   bool
}

// NewRenderLoop wires the five core components together against an
// initial terminal size and creates the five named compositor layers
// plus the transient log-panel layer and the startup loading layer.
func NewRenderLoop(cfg Config, backend Backend, logger *LogCapture, width, height int) *RenderLoop {
	var palette *Palette
	if cfg.ReduceMotion {
		palette = StaticColors()
	} else {
		palette = NewPalette(cfg.RotationInterval)
	}

	rl := &RenderLoop{
		cfg:        cfg,
		logger:     logger,
		backend:    backend,
		out:        os.Stdout,
		compositor: NewCompositor(width, height, logger),
		palette:    palette,
		engine:     NewEngine(cfg.EvolutionThresholds, logger),
		input:      NewInput(InputOptions{Placeholder: "Type a message…"}),
		state:      NewDisplayState(),
		width:      width,
		height:     height,
		prevOutput: NewBuffer(width, height),
	}
	rl.engine.SetSize(cfg.AvatarDefaultSize)
	rl.layout = computeLayout(width, height)

	rl.convLayer = rl.compositor.CreateLayer(rl.layout.Conversation, 0)
	rl.tasksLayer = rl.compositor.CreateLayer(rl.layout.Tasks, 0)
	rl.inputLayer = rl.compositor.CreateLayer(rl.layout.Input, 0)
	rl.statusLayer = rl.compositor.CreateLayer(rl.layout.Status, 0)
	rl.avatarLayer = rl.compositor.CreateLayer(rl.layout.Avatar, 0)
	rl.logLayer = rl.compositor.CreateLayer(Bounds{X: 0, Y: 0, Width: width, Height: height}, 10)
	rl.compositor.SetVisible(rl.logLayer, false)

	// The loading surface replaces the five main surfaces until the
	// backend reports ready: they're created and kept painted (so a
	// resize during startup still lays them out correctly) but hidden,
	// and the loading layer stands alone at z=5, below the log panel.
	rl.loadingLayer = rl.compositor.CreateLayer(Bounds{X: 0, Y: 0, Width: width, Height: height}, 5)
	rl.compositor.SetVisible(rl.convLayer, false)
	rl.compositor.SetVisible(rl.tasksLayer, false)
	rl.compositor.SetVisible(rl.inputLayer, false)
	rl.compositor.SetVisible(rl.statusLayer, false)
	rl.compositor.SetVisible(rl.avatarLayer, false)

	rl.lastConvVersion = -1
	rl.lastTasksVersion = -1
	rl.lastStatusVersion = -1
	rl.lastCursorPos = -1
	rl.lastInputValue = "\x00"

	rl.loadingActive = true
	rl.state.SetStatus(StatusInfo{Text: "loading…"})

	// Paint the avatar's initial idle frame and the startup loading
	// surface now, before any tick. The avatar depends on this:
	// Update(0)'s monotonicity guarantee means renderTick alone would
	// leave its layer blank until idle's first frame advance (~600ms).
	// renderTick repaints the loading surface on every tick while
	// loadingActive is set.
	rl.renderAvatar()
	rl.renderLoading()

	return rl
}

// Run puts the terminal in raw mode, paints a non-blank startup frame,
// connects the backend in the background, and drives the render loop
// until ctx is cancelled, the user quits (Ctrl+C), or the process
// receives SIGINT/SIGTERM. The terminal is always restored to its
// original state before returning, including on every early-return
// path.
func (rl *RenderLoop) Run(ctx context.Context) error {
	isTTY := IsTerminal(Stdin())
	if isTTY {
		state, err := MakeRaw(Stdin())
		if err != nil {
			return NewError(ErrTerminalCapability, "could not enter raw mode: %v", err)
		}
		rl.termState = state
		rl.rawMode = true
	}
	defer rl.restoreTerminal()

	io.WriteString(rl.out, HideCursor())

	// First frame must be non-blank within ~50ms: render synchronously,
	// before waiting on anything else.
	rl.renderTick(0)

	backendReady := make(chan error, 1)
	go func() {
		backendReady <- rl.backend.Connect(backendConnectTimeout)
	}()

	keyCh := rl.startKeyReader()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGWINCH)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(rl.cfg.TargetFrameInterval)
	defer ticker.Stop()
	lastTick := time.Now()

	backendMessages := rl.backend.Messages()

	for {
		select {
		case <-ctx.Done():
			return nil

		case sig := <-sigCh:
			switch sig {
			case syscall.SIGWINCH:
				if w, h, err := GetSize(Stdout()); err == nil {
					rl.handleResize(w, h)
				}
			case syscall.SIGINT, syscall.SIGTERM:
				return nil
			}

		case err := <-backendReady:
			backendReady = nil
			rl.handleBackendReady(err)

		case msg, ok := <-backendMessages:
			if !ok {
				backendMessages = nil
				continue
			}
			rl.handleBackendMessage(msg)

		case key, ok := <-keyCh:
			if !ok {
				keyCh = nil
				continue
			}
			if key == CtrlC {
				return nil
			}
			rl.handleKey(key)

		case now := <-ticker.C:
			delta := now.Sub(lastTick)
			lastTick = now
			rl.renderTick(delta)
		}
	}
}

// startKeyReader launches the raw-mode stdin reader goroutine and
// returns the channel of decoded key strings. The goroutine exits on
// any read error (EOF, closed fd), closing the channel.
func (rl *RenderLoop) startKeyReader() <-chan string {
	keyCh := make(chan string)
	go func() {
		defer close(keyCh)
		buf := make([]byte, 64)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n > 0 {
				keyCh <- string(buf[:n])
			}
		}
	}()
	return keyCh
}

func (rl *RenderLoop) restoreTerminal() {
	if rl.rawMode && rl.termState != nil {
		Restore(Stdin(), rl.termState)
	}
	io.WriteString(rl.out, ShowCursor())
	io.WriteString(rl.out, ClearScreen())
	rl.backend.Close()
	if rl.logger != nil {
		rl.logger.Stop()
	}
}

// handleBackendReady applies the backend's connection result to the
// status surface and dismisses the startup loading screen in favor of
// the main five-surface layout — whether the backend connected
// successfully or not, since a failed connection still surfaces as a
// status notice on the main status bar rather than staying stuck on
// the loading surface forever.
func (rl *RenderLoop) handleBackendReady(err error) {
	if err != nil {
		rl.state.SetStatus(StatusInfo{Text: "backend connection failed", BackendUnavailable: true})
		if rl.logger != nil {
			rl.logger.Error("backend: %v", err)
		}
	} else {
		rl.state.SetStatus(StatusInfo{Text: "ready"})
	}

	rl.loadingActive = false
	rl.compositor.SetVisible(rl.loadingLayer, false)
	rl.compositor.SetVisible(rl.convLayer, true)
	rl.compositor.SetVisible(rl.tasksLayer, true)
	rl.compositor.SetVisible(rl.inputLayer, true)
	rl.compositor.SetVisible(rl.statusLayer, true)
	rl.compositor.SetVisible(rl.avatarLayer, true)
}

// handleResize recomputes the layout and every layer's bounds, then
// immediately repaints so the terminal never shows a stale frame
// between SIGWINCH and the next timer tick.
func (rl *RenderLoop) handleResize(width, height int) {
	rl.width, rl.height = width, height
	rl.layout = computeLayout(width, height)
	rl.compositor.Resize(width, height)

	rl.compositor.MoveLayer(rl.convLayer, rl.layout.Conversation.X, rl.layout.Conversation.Y)
	rl.compositor.ResizeLayer(rl.convLayer, rl.layout.Conversation.Width, rl.layout.Conversation.Height)
	rl.compositor.MoveLayer(rl.tasksLayer, rl.layout.Tasks.X, rl.layout.Tasks.Y)
	rl.compositor.ResizeLayer(rl.tasksLayer, rl.layout.Tasks.Width, rl.layout.Tasks.Height)
	rl.compositor.MoveLayer(rl.inputLayer, rl.layout.Input.X, rl.layout.Input.Y)
	rl.compositor.ResizeLayer(rl.inputLayer, rl.layout.Input.Width, rl.layout.Input.Height)
	rl.compositor.MoveLayer(rl.statusLayer, rl.layout.Status.X, rl.layout.Status.Y)
	rl.compositor.ResizeLayer(rl.statusLayer, rl.layout.Status.Width, rl.layout.Status.Height)
	rl.compositor.MoveLayer(rl.avatarLayer, rl.layout.Avatar.X, rl.layout.Avatar.Y)
	rl.compositor.ResizeLayer(rl.avatarLayer, rl.layout.Avatar.Width, rl.layout.Avatar.Height)
	rl.compositor.ResizeLayer(rl.logLayer, width, height)
	rl.compositor.ResizeLayer(rl.loadingLayer, width, height)

	rl.lastConvVersion = -1
	rl.lastTasksVersion = -1
	rl.lastStatusVersion = -1
	rl.lastCursorPos = -1
	rl.lastInputValue = "\x00"

	rl.renderTick(0)
}

// renderTick runs one full pass of the per-tick sequence: advance the
// palette and animation engine, re-render only the surfaces whose
// backing slot changed, composite, then diff and flush the minimal
// ANSI edit to the terminal.
func (rl *RenderLoop) renderTick(delta time.Duration) {
	rl.palette.Update(delta)
	avatarChanged := rl.engine.Update(delta)
	if delta > 0 {
		rl.bumpEvolution(func() { rl.engine.RecordActiveTime(delta) })
	}

	if v := rl.state.ConversationVersion(); v != rl.lastConvVersion {
		rl.renderConversation()
		rl.lastConvVersion = v
	}
	if v := rl.state.TasksVersion(); v != rl.lastTasksVersion {
		rl.renderTasks()
		rl.lastTasksVersion = v
	}
	if value, pos := rl.input.Value(), rl.input.CursorPos(); value != rl.lastInputValue || pos != rl.lastCursorPos {
		rl.renderInput()
		rl.lastInputValue, rl.lastCursorPos = value, pos
	}
	if v := rl.state.StatusVersion(); v != rl.lastStatusVersion {
		rl.renderStatus()
		rl.lastStatusVersion = v
	}
	if avatarChanged || rl.palette.GlowActive() {
		rl.renderAvatar()
	}
	if rl.loadingActive {
		rl.renderLoading()
	}
	if rl.showLogs {
		rl.renderLogs()
	}

	output := rl.compositor.Composite()
	rl.flushFrame(output)
}

func (rl *RenderLoop) renderConversation() {
	buf := rl.compositor.LayerBufferMut(rl.convLayer)
	renderConversationLayer(buf, rl.state.Conversation(), rl.palette)
	rl.compositor.MarkLayerDirty(rl.convLayer)
}

func (rl *RenderLoop) renderTasks() {
	buf := rl.compositor.LayerBufferMut(rl.tasksLayer)
	renderTasksLayer(buf, rl.state.Tasks(), rl.palette)
	rl.compositor.MarkLayerDirty(rl.tasksLayer)
}

func (rl *RenderLoop) renderInput() {
	buf := rl.compositor.LayerBufferMut(rl.inputLayer)
	renderInputLayer(buf, rl.input, rl.palette)
	rl.compositor.MarkLayerDirty(rl.inputLayer)
}

func (rl *RenderLoop) renderStatus() {
	buf := rl.compositor.LayerBufferMut(rl.statusLayer)
	renderStatusLayer(buf, rl.state.Status(), rl.palette)
	rl.compositor.MarkLayerDirty(rl.statusLayer)
}

func (rl *RenderLoop) renderAvatar() {
	buf := rl.compositor.LayerBufferMut(rl.avatarLayer)
	renderAvatarLayer(buf, rl.engine.CurrentFrame(), rl.palette)
	rl.compositor.MarkLayerDirty(rl.avatarLayer)
}

func (rl *RenderLoop) renderLoading() {
	buf := rl.compositor.LayerBufferMut(rl.loadingLayer)
	renderLoadingLayer(buf, rl.engine.CurrentFrame(), rl.state.Status().Text, rl.palette)
	rl.compositor.MarkLayerDirty(rl.loadingLayer)
}

func (rl *RenderLoop) renderLogs() {
	if rl.logger == nil {
		return
	}
	buf := rl.compositor.LayerBufferMut(rl.logLayer)
	renderLogLayer(buf, rl.logger.Messages())
	rl.compositor.MarkLayerDirty(rl.logLayer)
}

// flushFrame diffs output against the previous frame, reusing the
// scratch slices across ticks, and writes only the changed runs.
func (rl *RenderLoop) flushFrame(output *Buffer) {
	rl.changeScratch = DiffBuffersInto(rl.prevOutput, output, rl.changeScratch[:0])
	if len(rl.changeScratch) == 0 {
		return
	}
	rl.runScratch = FindRunsInto(rl.changeScratch, rl.runScratch[:0])

	rl.flush.Reset()
	RunsToAnsiBuilder(rl.runScratch, &rl.flush)
	io.WriteString(rl.out, rl.flush.String())

	rl.prevOutput.CopyFrom(output)
}

// bumpEvolution runs mutate, then starts the palette's evolution glow
// if it raised the avatar's level.
func (rl *RenderLoop) bumpEvolution(mutate func()) {
	before := rl.engine.Evolution().Level
	mutate()
	after := rl.engine.Evolution().Level
	if after > before {
		rl.palette.StartEvolutionGlow()
		if rl.logger != nil {
			rl.logger.Info("avatar evolved to level %d", after)
		}
	}
}

// handleBackendMessage applies one backend event to the display
// state and animation engine. This and handleKey are the display
// state's only mutators.
func (rl *RenderLoop) handleBackendMessage(msg BackendMessage) {
	switch msg.Kind {
	case BackendMessageTokenDelta:
		rl.state.AppendToken(msg.Token)
		rl.engine.PlayMood(MoodThinking, LoopRepeat)

	case BackendMessageComplete:
		if msg.Token != "" {
			rl.state.AppendToken(msg.Token)
		}
		rl.state.CompleteStreaming()
		rl.bumpEvolution(func() { rl.engine.RecordInteraction() })
		rl.state.SetStatus(StatusInfo{Text: "ready"})
		rl.engine.PlayMood(MoodHappy, LoopHold)

	case BackendMessageMoodChange:
		rl.state.SetMood(msg.Mood)
		rl.engine.PlayMood(msg.Mood, LoopRepeat)

	case BackendMessageTaskStart:
		rl.state.StartTask(msg.TaskID, msg.TaskText)

	case BackendMessageTaskProgress:
		rl.state.ProgressTask(msg.TaskID, msg.Progress)

	case BackendMessageTaskComplete:
		rl.state.CompleteTask(msg.TaskID)

	case BackendMessageFatalError:
		text := "backend error"
		if msg.Err != nil {
			text = msg.Err.Error()
		}
		rl.state.SetStatus(StatusInfo{Text: text, BackendUnavailable: true})
		if rl.logger != nil {
			rl.logger.Error("backend: %v", msg.Err)
		}
	}
}

// handleKey applies one decoded key to the input field or a global
// shortcut. Ctrl+C is handled by the caller before reaching here.
func (rl *RenderLoop) handleKey(key string) {
	switch key {
	case CtrlL:
		rl.showLogs = !rl.showLogs
		rl.compositor.SetVisible(rl.logLayer, rl.showLogs)
		if rl.showLogs {
			rl.renderLogs()
		}
		return

	case CtrlK:
		if rl.showLogs && rl.logger != nil {
			rl.logger.Clear()
			rl.renderLogs()
		}
		return

	case Enter:
		text := rl.input.Value()
		if text == "" {
			return
		}
		rl.state.AppendMessage(ConversationMessage{Role: ConversationUser, Text: text})
		rl.input.Clear()
		rl.bumpEvolution(func() { rl.engine.RecordInteraction() })
		rl.engine.PlayMood(MoodThinking, LoopRepeat)
		rl.state.SetStatus(StatusInfo{Text: "thinking…", Processing: true})
		return
	}

	rl.input.HandleKey(key)
}
