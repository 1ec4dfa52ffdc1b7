package termcore

import (
	"testing"
	"time"
)

func newTestRenderLoop() *RenderLoop {
	cfg := DefaultConfig()
	cfg.TargetFrameInterval = 10 * time.Millisecond
	return NewRenderLoop(cfg, NewStubBackend(), NewLogCapture(10), 80, 24)
}

func TestNewRenderLoop_InitialStatusIsLoading(t *testing.T) {
	rl := newTestRenderLoop()
	if got := rl.state.Status(); got.Text != "loading…" {
		t.Fatalf("expected initial status %q, got %q", "loading…", got.Text)
	}
}

func TestNewRenderLoop_LogLayerStartsInvisible(t *testing.T) {
	rl := newTestRenderLoop()
	if rl.showLogs {
		t.Fatal("expected log panel hidden by default")
	}
}

func TestNewRenderLoop_AvatarLayerPaintedBeforeFirstTick(t *testing.T) {
	rl := newTestRenderLoop()
	buf := rl.compositor.LayerBufferMut(rl.avatarLayer)
	nonBlank := false
	for y := 0; y < buf.Height() && !nonBlank; y++ {
		for x := 0; x < buf.Width(); x++ {
			if !buf.Get(x, y).IsBlank() {
				nonBlank = true
				break
			}
		}
	}
	if !nonBlank {
		t.Fatal("expected the avatar layer painted at construction, before any renderTick")
	}
}

func TestNewRenderLoop_LoadingSurfaceVisibleAndMainSurfacesHidden(t *testing.T) {
	rl := newTestRenderLoop()

	loadingBuf := rl.compositor.LayerBufferMut(rl.loadingLayer)
	nonBlank := false
	for y := 0; y < loadingBuf.Height() && !nonBlank; y++ {
		for x := 0; x < loadingBuf.Width(); x++ {
			if !loadingBuf.Get(x, y).IsBlank() {
				nonBlank = true
				break
			}
		}
	}
	if !nonBlank {
		t.Fatal("expected the loading surface painted at construction, before any backend reply")
	}
	if !rl.loadingActive {
		t.Fatal("expected loadingActive true before the backend has reported ready")
	}
	for _, id := range []LayerID{rl.convLayer, rl.tasksLayer, rl.inputLayer, rl.statusLayer, rl.avatarLayer} {
		if rl.compositor.layers[id].Visible {
			t.Fatalf("expected main surface layer %d hidden while the loading surface is active", id)
		}
	}
}

func TestHandleBackendReady_DismissesLoadingScreenAndRevealsMainSurfaces(t *testing.T) {
	rl := newTestRenderLoop()
	rl.handleBackendReady(nil)

	if rl.loadingActive {
		t.Fatal("expected loadingActive false once the backend has reported ready")
	}
	if rl.compositor.layers[rl.loadingLayer].Visible {
		t.Fatal("expected the loading surface hidden once the backend has reported ready")
	}
	for _, id := range []LayerID{rl.convLayer, rl.tasksLayer, rl.inputLayer, rl.statusLayer, rl.avatarLayer} {
		if !rl.compositor.layers[id].Visible {
			t.Fatalf("expected main surface layer %d visible once the backend has reported ready", id)
		}
	}
	if got := rl.state.Status(); got.Text != "ready" {
		t.Fatalf("expected status %q, got %q", "ready", got.Text)
	}
}

func TestHandleBackendReady_FailureStillDismissesLoadingScreen(t *testing.T) {
	rl := newTestRenderLoop()
	rl.handleBackendReady(NewError(ErrBackendUnavailable, "connect timed out"))

	if rl.loadingActive {
		t.Fatal("expected loadingActive false even when the backend failed to connect")
	}
	got := rl.state.Status()
	if !got.BackendUnavailable {
		t.Fatal("expected BackendUnavailable true after a failed connection")
	}
}

func TestHandleBackendMessage_CompleteRepaintsAvatarOnNextTick(t *testing.T) {
	rl := newTestRenderLoop()
	rl.renderTick(0)

	rl.handleBackendMessage(BackendMessage{Kind: BackendMessageComplete})

	avatarBuf := rl.compositor.LayerBufferMut(rl.avatarLayer)
	before := avatarBuf.ToDebugString()

	rl.renderTick(10 * time.Millisecond)

	after := rl.compositor.LayerBufferMut(rl.avatarLayer).ToDebugString()
	if before == after {
		t.Fatal("expected the mood switch to happy to repaint the avatar layer on the next tick")
	}
}

func TestRenderTick_FirstTickProducesNonBlankOutput(t *testing.T) {
	rl := newTestRenderLoop()
	rl.renderTick(0)

	out := rl.compositor.Composite()
	nonBlank := false
	for y := 0; y < out.Height() && !nonBlank; y++ {
		for x := 0; x < out.Width(); x++ {
			if !out.Get(x, y).IsBlank() {
				nonBlank = true
				break
			}
		}
	}
	if !nonBlank {
		t.Fatal("expected the first render tick to produce a non-blank frame")
	}
}

func TestRenderTick_IdleTicksProduceNoFurtherFlush(t *testing.T) {
	rl := newTestRenderLoop()
	rl.renderTick(0)
	before := rl.prevOutput.ToDebugString()

	rl.renderTick(10 * time.Millisecond)
	rl.renderTick(10 * time.Millisecond)

	after := rl.prevOutput.ToDebugString()
	if before != after {
		t.Fatal("expected idle ticks with no state change to leave the composited frame unchanged")
	}
}

func TestHandleBackendMessage_TaskLifecycleUpdatesDisplayState(t *testing.T) {
	rl := newTestRenderLoop()
	rl.handleBackendMessage(BackendMessage{Kind: BackendMessageTaskStart, TaskID: "t1", TaskText: "indexing"})
	rl.handleBackendMessage(BackendMessage{Kind: BackendMessageTaskProgress, TaskID: "t1", Progress: 0.75})
	rl.handleBackendMessage(BackendMessage{Kind: BackendMessageTaskComplete, TaskID: "t1"})

	tasks := rl.state.Tasks()
	if len(tasks) != 1 || !tasks[0].Done {
		t.Fatalf("expected task t1 marked done, got %+v", tasks)
	}
}

func TestHandleBackendMessage_TokenDeltaAppendsToConversationAndCompleteFinishesStreaming(t *testing.T) {
	rl := newTestRenderLoop()
	rl.handleBackendMessage(BackendMessage{Kind: BackendMessageTokenDelta, Token: "hel"})
	rl.handleBackendMessage(BackendMessage{Kind: BackendMessageTokenDelta, Token: "lo"})
	rl.handleBackendMessage(BackendMessage{Kind: BackendMessageComplete})

	conv := rl.state.Conversation()
	if len(conv) != 1 || conv[0].Text != "hello" || conv[0].Streaming {
		t.Fatalf("expected one completed message \"hello\", got %+v", conv)
	}
	if rl.state.Status().Text != "ready" {
		t.Fatalf("expected status ready after completion, got %+v", rl.state.Status())
	}
}

func TestHandleBackendMessage_FatalErrorSetsBackendUnavailable(t *testing.T) {
	rl := newTestRenderLoop()
	rl.handleBackendMessage(BackendMessage{Kind: BackendMessageFatalError, Err: NewError(ErrBackendUnavailable, "connection lost")})

	status := rl.state.Status()
	if !status.BackendUnavailable {
		t.Fatal("expected BackendUnavailable set on a fatal error message")
	}
}

func TestHandleKey_EnterAppendsMessageAndClearsInput(t *testing.T) {
	rl := newTestRenderLoop()
	for _, r := range "hi there" {
		rl.input.HandleKey(string(r))
	}
	rl.handleKey(Enter)

	conv := rl.state.Conversation()
	if len(conv) != 1 || conv[0].Text != "hi there" || conv[0].Role != ConversationUser {
		t.Fatalf("expected the typed message appended as a user message, got %+v", conv)
	}
	if rl.input.Value() != "" {
		t.Fatalf("expected input cleared after Enter, got %q", rl.input.Value())
	}
	if !rl.state.Status().Processing {
		t.Fatal("expected status to report processing after sending a message")
	}
}

func TestHandleKey_EnterOnEmptyInputIsNoop(t *testing.T) {
	rl := newTestRenderLoop()
	rl.handleKey(Enter)
	if len(rl.state.Conversation()) != 0 {
		t.Fatal("expected Enter on an empty input to append nothing")
	}
}

func TestHandleKey_CtrlLTogglesLogLayerVisibility(t *testing.T) {
	rl := newTestRenderLoop()
	rl.handleKey(CtrlL)
	if !rl.showLogs {
		t.Fatal("expected Ctrl+L to show the log panel")
	}
	rl.handleKey(CtrlL)
	if rl.showLogs {
		t.Fatal("expected a second Ctrl+L to hide the log panel")
	}
}

func TestHandleKey_CtrlKClearsLogsOnlyWhenPanelOpen(t *testing.T) {
	rl := newTestRenderLoop()
	rl.logger.Error("boom")
	rl.handleKey(CtrlK) // panel closed: must not clear
	if len(rl.logger.Messages()) == 0 {
		t.Fatal("expected Ctrl+K to be a no-op while the log panel is closed")
	}

	rl.handleKey(CtrlL) // open panel
	rl.handleKey(CtrlK)
	if len(rl.logger.Messages()) != 0 {
		t.Fatal("expected Ctrl+K to clear logs while the panel is open")
	}
}

func TestHandleResize_RecomputesLayoutAndForcesRedraw(t *testing.T) {
	rl := newTestRenderLoop()
	rl.renderTick(0)

	rl.handleResize(200, 50)
	if rl.width != 200 || rl.height != 50 {
		t.Fatalf("expected internal dimensions updated, got %dx%d", rl.width, rl.height)
	}
	if rl.lastConvVersion != -1 || rl.lastCursorPos != -1 {
		t.Fatal("expected resize to reset the render-gate sentinels so the next tick redraws everything")
	}

	out := rl.compositor.Composite()
	if out.Width() != 200 || out.Height() != 50 {
		t.Fatalf("expected the composited frame resized to 200x50, got %dx%d", out.Width(), out.Height())
	}
}

func TestBumpEvolution_StartsGlowOnLevelIncrease(t *testing.T) {
	rl := newTestRenderLoop()
	rl.cfg.EvolutionThresholds = testThresholds()
	rl.engine = NewEngine(testThresholds(), rl.logger)

	if rl.palette.GlowActive() {
		t.Fatal("expected no glow before any evolution")
	}
	rl.bumpEvolution(func() {
		for i := 0; i < 2; i++ {
			rl.engine.RecordInteraction()
		}
	})
	if !rl.palette.GlowActive() {
		t.Fatal("expected crossing an evolution threshold to start the glow")
	}
}
