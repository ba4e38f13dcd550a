package shell

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
	"github.com/jakebf/layershell/platform"
	"github.com/jakebf/layershell/program"
	"github.com/jakebf/layershell/runtime"
	"github.com/jakebf/layershell/runtime/action"
	"github.com/jakebf/layershell/system"
)

func daemon(o *Options) { o.Daemon = true }

// settle flushes buffered events and resets every window to Wait by drawing
// it once.
func (f *fixture) settle() {
	f.s.aboutToWait()
	f.s.windows.Each(func(_ core.WindowID, w *Window) {
		f.s.onFrame(w.surfaceID)
	})
}

func TestOpenCompletesOnConfigure(t *testing.T) {
	f := newFixture(t, daemon)
	id, task := runtime.OpenLayer(core.DefaultLayerSettings(), func(id core.WindowID) any { return id })
	f.s.runtime.Run(task)
	f.drain()
	require.Len(t, f.s.inProgress, 1)

	w := f.configure(t, 1, 300, 200)
	assert.Equal(t, id, w.ID())
	assert.Empty(t, f.s.inProgress)
	assert.Equal(t, []core.Event{core.LayerOpened{Size: core.Size{Width: 300, Height: 200}}}, f.eventsFor(id))
	assert.True(t, w.RedrawRequest().IsNextFrame())
	assert.Equal(t, []platform.SurfaceID{1}, f.conn.frames)
	require.NoError(t, f.s.windows.check())

	require.Eventually(t, func() bool {
		f.drain()
		return len(f.s.messages) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, id, f.s.messages[0])
}

func TestCloseBeforeConfigureCancelsOpen(t *testing.T) {
	f := newFixture(t, daemon)
	id := core.NewWindowID()
	done := make(chan core.WindowID, 1)
	f.s.runAction(action.Open{ID: id, Settings: core.DefaultLayerSettings(), Done: done})
	require.Len(t, f.s.inProgress, 1)

	f.s.runAction(action.Close{ID: id})
	assert.Empty(t, f.s.inProgress)
	assert.Equal(t, []platform.SurfaceID{1}, f.conn.destroyed)
	_, ok := <-done
	assert.False(t, ok)
	assert.False(t, f.s.exiting)
}

func TestOpenFailureClosesDone(t *testing.T) {
	f := newFixture(t, daemon)
	f.conn.createErr = errors.New("no layer shell")
	done := make(chan core.WindowID, 1)
	f.s.runAction(action.Open{ID: core.NewWindowID(), Done: done})
	_, ok := <-done
	assert.False(t, ok)
	assert.Empty(t, f.s.inProgress)
}

func TestOpenWithTakenIDIsIgnored(t *testing.T) {
	f := newFixture(t, daemon)
	id := core.NewWindowID()
	first := make(chan core.WindowID, 1)
	second := make(chan core.WindowID, 1)
	f.s.runAction(action.Open{ID: id, Settings: core.DefaultLayerSettings(), Done: first})
	f.s.runAction(action.Open{ID: id, Settings: core.DefaultLayerSettings(), Done: second})
	assert.Equal(t, 1, f.conn.createdCount())
	_, ok := <-second
	assert.False(t, ok)

	f.configure(t, 1, 100, 100)
	assert.Equal(t, id, <-first)
	f.s.runAction(action.Open{ID: id, Settings: core.DefaultLayerSettings()})
	assert.Equal(t, 1, f.conn.createdCount())

	f.s.runAction(action.Close{ID: id})
	assert.Equal(t, []platform.SurfaceID{1}, f.conn.destroyed)
	assert.True(t, f.s.windows.IsEmpty())
	require.NoError(t, f.s.windows.check())
}

func TestActionsAfterExitAreDropped(t *testing.T) {
	f := newFixture(t, daemon)
	_, open := runtime.OpenLayer(core.DefaultLayerSettings(), nil)
	f.s.runtime.Run(runtime.Batch(runtime.Exit(), open))
	f.drain()

	assert.True(t, f.s.exiting)
	assert.Zero(t, f.conn.createdCount())
	assert.Empty(t, f.s.inProgress)
}

func TestShutdownDestroysPendingSurfaces(t *testing.T) {
	f := newFixture(t, daemon)
	done := make(chan core.WindowID, 1)
	f.s.runAction(action.Open{ID: core.NewWindowID(), Settings: core.DefaultLayerSettings(), Done: done})
	require.Len(t, f.s.inProgress, 1)

	f.s.shutdown()
	assert.Equal(t, []platform.SurfaceID{1}, f.conn.destroyed)
	assert.Empty(t, f.s.inProgress)
	_, ok := <-done
	assert.False(t, ok)
}

func TestResizeQueuesOneResizedEvent(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()
	version := w.ViewportVersion()

	f.s.handlePlatform(platform.LayerConfigure{Surface: 1, Width: 800, Height: 600})

	assert.Equal(t, []core.Event{core.WindowResized{Size: core.Size{Width: 800, Height: 600}}}, f.eventsFor(w.ID()))
	assert.Equal(t, version+1, w.ViewportVersion())
	assert.True(t, w.RedrawRequest().IsNextFrame())
}

func TestKeyPressCarriesModifiers(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()

	f.s.handlePlatform(platform.KeyboardEnter{Keyboard: 7, Surface: 1})
	f.s.handlePlatform(platform.Modifiers{Keyboard: 7, Modifiers: platform.ModifierState{Shift: true}})
	f.s.handlePlatform(platform.Key{Keyboard: 7, Pressed: true, Sym: platform.KeysymFromRune('a'), RawCode: 30, Text: "a"})

	assert.Equal(t, []core.Event{
		core.WindowFocused{},
		core.ModifiersChanged{Modifiers: core.ModShift},
		core.KeyPressed{
			Key:         core.CharacterKey("a"),
			ModifiedKey: core.CharacterKey("a"),
			PhysicalKey: core.Physical{Native: 30},
			Location:    core.LocationStandard,
			Modifiers:   core.ModShift,
			Text:        "a",
		},
	}, f.eventsFor(w.ID()))
}

func TestKeyWithoutFocusIsDropped(t *testing.T) {
	f := newFixture(t)
	f.openFirst(t)
	f.settle()

	f.s.handlePlatform(platform.Key{Keyboard: 7, Pressed: true, Sym: platform.KeyEscape})
	assert.Empty(t, f.s.events)
}

func TestKeyboardLeaveResetsModifiers(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()

	f.s.handlePlatform(platform.KeyboardEnter{Keyboard: 7, Surface: 1})
	f.s.handlePlatform(platform.Modifiers{Keyboard: 7, Modifiers: platform.ModifierState{Ctrl: true}})
	f.s.aboutToWait()
	f.s.handlePlatform(platform.KeyboardLeave{Keyboard: 7, Surface: 1})

	assert.Equal(t, []core.Event{core.ModifiersChanged{}, core.WindowUnfocused{}}, f.eventsFor(w.ID()))
	assert.Zero(t, w.state.modifiers)
	assert.Empty(t, f.s.keyboardFocus)
}

func TestKeyboardCapabilityRemovedUnfocuses(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()

	f.s.handlePlatform(platform.CapabilityAdded{Seat: 1, Capability: platform.CapabilityKeyboard, Device: 7})
	f.s.handlePlatform(platform.KeyboardEnter{Keyboard: 7, Surface: 1})
	f.s.aboutToWait()
	f.s.handlePlatform(platform.CapabilityRemoved{Seat: 1, Capability: platform.CapabilityKeyboard})

	assert.Equal(t, []core.Event{core.ModifiersChanged{}, core.WindowUnfocused{}}, f.eventsFor(w.ID()))
	assert.Empty(t, f.s.keyboards)
}

func TestTouchDownThenUp(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()

	f.s.handlePlatform(platform.TouchDown{Touch: 9, Surface: 1, ID: 3, X: 10, Y: 20})
	f.s.handlePlatform(platform.TouchUp{Touch: 9, ID: 3})

	at := core.Point{X: 10, Y: 20}
	assert.Equal(t, []core.Event{
		core.FingerPressed{ID: 3, Position: at},
		core.FingerLifted{ID: 3, Position: at},
	}, f.eventsFor(w.ID()))
	_, tracked := f.s.touches[9][3]
	assert.False(t, tracked)
}

func TestTouchMotionAndCancel(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()

	f.s.handlePlatform(platform.TouchDown{Touch: 9, Surface: 1, ID: 2, X: 1, Y: 1})
	f.s.handlePlatform(platform.TouchDown{Touch: 9, Surface: 1, ID: 1, X: 5, Y: 5})
	f.s.handlePlatform(platform.TouchMotion{Touch: 9, ID: 2, X: 4, Y: 8})
	f.s.handlePlatform(platform.TouchMotion{Touch: 9, ID: 42, X: 4, Y: 8})
	f.s.aboutToWait()
	f.s.handlePlatform(platform.TouchCancel{Touch: 9})

	assert.Equal(t, []core.Event{
		core.FingerLost{ID: 1, Position: core.Point{X: 5, Y: 5}},
		core.FingerLost{ID: 2, Position: core.Point{X: 4, Y: 8}},
	}, f.eventsFor(w.ID()))
	assert.Empty(t, f.s.touches)
}

func TestPointerFrameUsesLogicalCoordinates(t *testing.T) {
	f := newFixture(t)
	f.prog.scale = 2
	w := f.openFirst(t)
	f.settle()
	assert.Equal(t, core.Size{Width: 320, Height: 240}, w.Size())

	f.s.handlePlatform(platform.PointerFrame{Pointer: 4, Events: []platform.PointerEvent{
		{Surface: 1, Kind: platform.PointerEnter, X: 100, Y: 50},
		{Surface: 1, Kind: platform.PointerMotion, X: 100, Y: 50},
		{Surface: 1, Kind: platform.PointerPress, Button: 0x110},
		{Surface: 1, Kind: platform.PointerRelease, Button: 0x113},
		{Surface: 1, Kind: platform.PointerAxis, Horizontal: 0, Vertical: 15},
		{Surface: 99, Kind: platform.PointerEnter},
	}})

	assert.Equal(t, []core.Event{
		core.CursorEntered{},
		core.CursorMoved{Position: core.Point{X: 50, Y: 25}},
		core.ButtonPressed{Button: core.Button{Kind: core.ButtonLeft}},
		core.ButtonReleased{Button: core.Button{Kind: core.ButtonOther, Code: 0x113}},
		core.WheelScrolled{Delta: core.ScrollDelta{Unit: core.ScrollPixels, Y: 15}},
	}, f.eventsFor(w.ID()))
	assert.Equal(t, core.CursorAt(core.Point{X: 50, Y: 25}), w.state.cursor())
	assert.Contains(t, w.pointers, platform.DeviceID(4))

	f.kit.state.MouseInteraction = core.InteractionPointer
	f.s.aboutToWait()
	assert.Equal(t, core.InteractionPointer, f.conn.cursors[4])

	f.s.handlePlatform(platform.PointerFrame{Pointer: 4, Events: []platform.PointerEvent{
		{Surface: 1, Kind: platform.PointerLeave},
	}})
	assert.Empty(t, w.pointers)
	assert.False(t, w.state.cursor().Available)
}

func TestIdlePassIsNoop(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()
	require.True(t, f.s.windows.IsIdle())

	ui := f.uiFor(t, w.ID())
	builds, seen, frames := f.kit.builds, len(ui.events), f.conn.frameRequests()
	f.s.aboutToWait()

	assert.Equal(t, builds, f.kit.builds)
	assert.Len(t, ui.events, seen)
	assert.Equal(t, frames, f.conn.frameRequests())
	assert.Empty(t, f.prog.updates)
}

func TestMessagesCommitAndRebuild(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()

	f.kit.emit = []any{"inc"}
	f.s.handlePlatform(platform.KeyboardEnter{Keyboard: 7, Surface: 1})
	f.s.aboutToWait()

	assert.Equal(t, []any{"inc"}, f.prog.updates)
	ui := f.uiFor(t, w.ID())
	assert.Equal(t, fmt.Sprintf("%s:1", w.ID()), ui.view)
	assert.Equal(t, 2, ui.cache.builds)
	assert.True(t, w.RedrawRequest().IsNextFrame())
	assert.Empty(t, f.s.messages)
}

func TestOutdatedTreeIsRebuilt(t *testing.T) {
	f := newFixture(t)
	f.openFirst(t)
	f.settle()
	builds := f.kit.builds

	f.kit.state.Outdated = true
	f.s.handlePlatform(platform.KeyboardEnter{Keyboard: 7, Surface: 1})
	f.s.aboutToWait()

	assert.Equal(t, builds+1, f.kit.builds)
	assert.Empty(t, f.prog.updates)
}

func TestCacheRoundTripPaintsTheSame(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()

	before := f.uiFor(t, w.ID())
	first := &fakeRenderer{}
	before.Draw(first, w.state.theme, w.state.style, core.Cursor{})

	f.s.runAction(action.Reload{})

	after := f.uiFor(t, w.ID())
	require.NotSame(t, before, after)
	second := &fakeRenderer{}
	after.Draw(second, w.state.theme, w.state.style, core.Cursor{})

	assert.Equal(t, first.texts, second.texts)
	assert.Equal(t, 2, after.cache.builds)
	assert.Empty(t, f.prog.updates)
	assert.True(t, w.RedrawRequest().IsNextFrame())
}

type recordOp struct {
	seen []string
	next core.Operation
}

func (o *recordOp) Container(id string, _ core.Rectangle)             { o.seen = append(o.seen, id) }
func (o *recordOp) Focusable(string, core.Rectangle, core.Focusable) {}
func (o *recordOp) Text(string, core.Rectangle, string)              {}

func (o *recordOp) Finish() core.Outcome {
	if o.next != nil {
		return core.Chain(o.next)
	}
	return core.Outcome{Kind: core.OutcomeSome}
}

func TestWidgetOperationChainsAcrossWindows(t *testing.T) {
	f := newFixture(t)
	a := f.openFirst(t)
	b := f.openAnother(t, 200, 100)
	require.Less(t, a.ID(), b.ID())

	second := &recordOp{}
	first := &recordOp{next: second}
	f.s.runAction(action.Widget{Operation: first})

	views := []string{f.uiFor(t, a.ID()).view, f.uiFor(t, b.ID()).view}
	assert.Equal(t, views, first.seen)
	assert.Equal(t, views, second.seen)
	assert.Equal(t, 2, f.uiFor(t, a.ID()).ops)
}

func TestRedrawNeverDowngradesNextFrame(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()

	w.requestRedraw(core.NextFrame)
	frames := f.conn.frameRequests()
	w.requestRedraw(core.RedrawAtTime(f.clock.Now().Add(time.Second)))
	w.requestRedraw(core.NextFrame)

	assert.True(t, w.RedrawRequest().IsNextFrame())
	assert.Equal(t, frames, f.conn.frameRequests())
}

func TestTimerPromotesDueWindows(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.s.aboutToWait()

	at := f.clock.Now().Add(time.Second)
	f.kit.state.RedrawRequest = core.RedrawAtTime(at)
	f.s.onFrame(1)
	scheduled, ok := w.RedrawRequest().Scheduled()
	require.True(t, ok)
	assert.Equal(t, at, scheduled)

	f.s.aboutToWait()
	deadline, armed := f.s.timer.armed()
	require.True(t, armed)
	assert.Equal(t, at, deadline)

	frames := f.conn.frameRequests()
	f.clock.Add(time.Second)
	select {
	case now := <-f.s.timer.C():
		f.s.onTimerWake(now)
	case <-time.After(2 * time.Second):
		t.Fatal("redraw timer did not fire")
	}
	assert.True(t, w.RedrawRequest().IsNextFrame())
	assert.Equal(t, frames+1, f.conn.frameRequests())
	_, armed = f.s.timer.armed()
	assert.False(t, armed)
}

func TestTimerOnlyMovesEarlier(t *testing.T) {
	f := newFixture(t)
	a := f.openFirst(t)
	b := f.openAnother(t, 100, 100)
	now := f.clock.Now()

	a.redrawAt = core.RedrawAtTime(now.Add(5 * time.Second))
	b.redrawAt = core.Wait
	f.s.scheduleWakeIfNeeded()
	deadline, _ := f.s.timer.armed()
	assert.Equal(t, now.Add(5*time.Second), deadline)

	b.redrawAt = core.RedrawAtTime(now.Add(2 * time.Second))
	f.s.scheduleWakeIfNeeded()
	deadline, _ = f.s.timer.armed()
	assert.Equal(t, now.Add(2*time.Second), deadline)

	b.redrawAt = core.Wait
	f.s.scheduleWakeIfNeeded()
	deadline, _ = f.s.timer.armed()
	assert.Equal(t, now.Add(2*time.Second), deadline)
}

func TestFrameRelayoutsAfterResize(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()
	ui := f.uiFor(t, w.ID())
	assert.Zero(t, ui.relayouts)

	f.s.handlePlatform(platform.LayerConfigure{Surface: 1, Width: 1024, Height: 768})
	f.s.onFrame(1)

	assert.Equal(t, 1, ui.relayouts)
	assert.Equal(t, core.Size{Width: 1024, Height: 768}, ui.size)
	assert.Equal(t, []core.PhysicalSize{{Width: 1024, Height: 768}}, f.comp.configured)
	assert.Equal(t, w.state.viewportVersion, w.viewportVersion)
	assert.IsType(t, core.RedrawRequested{}, ui.events[len(ui.events)-1])
	assert.True(t, w.RedrawRequest().IsWait())
}

func TestFrameSkipsEmptySurface(t *testing.T) {
	f := newFixture(t)
	f.drain()
	w := f.configure(t, 1, 0, 0)

	f.s.onFrame(1)
	assert.Zero(t, f.comp.presents)
	assert.True(t, w.RedrawRequest().IsWait())
}

func TestPresentFailureRedrawsEveryWindow(t *testing.T) {
	f := newFixture(t)
	a := f.openFirst(t)
	b := f.openAnother(t, 100, 100)
	f.settle()
	require.True(t, f.s.windows.IsIdle())

	f.comp.presentErr = graphics.ErrSurfaceLost
	f.s.onFrame(a.SurfaceID())

	assert.True(t, a.RedrawRequest().IsNextFrame())
	assert.True(t, b.RedrawRequest().IsNextFrame())
}

func TestPresentOutOfMemoryPanics(t *testing.T) {
	f := newFixture(t)
	f.openFirst(t)
	f.comp.presentErr = fmt.Errorf("present: %w", graphics.ErrOutOfMemory)
	assert.Panics(t, func() { f.s.onFrame(1) })
}

func TestPreeditDrawsAfterTree(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()

	f.kit.state.InputMethod = core.EnableInputMethod(core.Point{X: 10, Y: 40}, core.PurposeNormal,
		&core.Preedit{Content: "kana", Selection: &[2]int{1, 3}})
	f.s.onFrame(1)

	require.NotNil(t, w.preedit)
	require.NotNil(t, f.conn.ime[1])
	r := w.renderer.(*fakeRenderer)
	var contents []string
	for _, text := range r.texts {
		contents = append(contents, text.Content)
	}
	assert.Equal(t, []string{f.uiFor(t, w.ID()).view, "k", "an", "a"}, contents[len(contents)-4:])

	f.kit.state.InputMethod = core.InputMethod{}
	f.s.onFrame(1)
	assert.Nil(t, w.preedit)
	assert.Nil(t, f.conn.ime[1])
}

func TestClosingLastWindowExits(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)

	f.s.handlePlatform(platform.LayerClosed{Surface: 1})

	assert.True(t, f.s.exiting)
	assert.NoError(t, f.s.err)
	assert.Equal(t, []platform.SurfaceID{1}, f.conn.destroyed)
	assert.Nil(t, f.s.compositor)
	events := f.eventsFor(w.ID())
	assert.Equal(t, core.WindowClosed{}, events[len(events)-1])
	_, ok := f.s.wrapper.ui(w.ID())
	assert.False(t, ok)
	require.NoError(t, f.s.windows.check())
}

func TestDaemonSurvivesLastWindow(t *testing.T) {
	f := newFixture(t, daemon)
	w := f.openAnother(t, 100, 100)

	f.s.runAction(action.Close{ID: w.ID()})
	assert.False(t, f.s.exiting)
	assert.True(t, f.s.windows.IsEmpty())
}

func TestWindowQueries(t *testing.T) {
	f := newFixture(t)
	a := f.openFirst(t)
	b := f.openAnother(t, 300, 200)

	size := make(chan core.Size, 1)
	f.s.runAction(action.WindowGetSize{ID: a.ID(), Reply: size})
	assert.Equal(t, core.Size{Width: 640, Height: 480}, <-size)

	scale := make(chan float64, 1)
	f.s.runAction(action.WindowGetScaleFactor{ID: b.ID(), Reply: scale})
	assert.Equal(t, 1.0, <-scale)

	latest := make(chan core.WindowID, 1)
	f.s.runAction(action.WindowGetLatest{Reply: latest})
	assert.Equal(t, b.ID(), <-latest)

	missing := make(chan core.Size, 1)
	f.s.runAction(action.WindowGetSize{ID: core.WindowID(1 << 40), Reply: missing})
	_, ok := <-missing
	assert.False(t, ok)
}

func TestLoadFontWaitsForCompositor(t *testing.T) {
	f := newFixture(t, daemon)
	loaded := make(chan error, 1)
	f.s.runAction(action.LoadFont{Bytes: []byte{0}, Reply: loaded})
	assert.Len(t, f.s.pendingFonts, 1)
	assert.Empty(t, loaded)

	f.openAnother(t, 100, 100)
	assert.Equal(t, 1, f.comp.fonts)
	assert.NoError(t, <-loaded)
	assert.Empty(t, f.s.pendingFonts)
}

func TestQueryInformationIncludesCompositor(t *testing.T) {
	f := newFixture(t)
	f.openFirst(t)
	reply := make(chan system.Information, 1)
	f.s.runAction(action.QueryInformation{Reply: reply})

	select {
	case info := <-reply:
		assert.Equal(t, "test", info.GraphicsInfo.Backend)
		assert.NotZero(t, info.CPUCores)
	case <-time.After(2 * time.Second):
		t.Fatal("no information")
	}
}

func TestClipboardActions(t *testing.T) {
	clip := &memClipboard{}
	f := newFixture(t, func(o *Options) { o.Clipboard = clip })
	f.s.runAction(action.ClipboardWrite{Kind: core.ClipboardStandard, Contents: "copied"})

	reply := make(chan core.ClipboardContents, 1)
	f.s.runAction(action.ClipboardRead{Kind: core.ClipboardStandard, Reply: reply})
	assert.Equal(t, core.ClipboardContents{Contents: "copied", OK: true}, <-reply)
}

type memClipboard struct{ contents string }

func (c *memClipboard) Read(core.ClipboardKind) (string, bool) { return c.contents, c.contents != "" }
func (c *memClipboard) Write(_ core.ClipboardKind, s string)    { c.contents = s }

func TestScaleChangeResizesLogically(t *testing.T) {
	f := newFixture(t)
	w := f.openFirst(t)
	f.settle()
	version := w.ViewportVersion()

	f.s.handlePlatform(platform.ScaleChanged{Surface: 1, Factor: 2})

	assert.Equal(t, 2.0, w.ScaleFactor())
	assert.Equal(t, version+1, w.ViewportVersion())
	assert.Equal(t, []core.Event{core.WindowResized{Size: core.Size{Width: 320, Height: 240}}}, f.eventsFor(w.ID()))
}

func TestSubscriptionSeesInteractions(t *testing.T) {
	f := newFixture(t)
	f.prog.sub = runtime.ListenWith("keys", func(ev runtime.Event) (any, bool) {
		in, ok := ev.(runtime.Interaction)
		if !ok {
			return nil, false
		}
		if _, key := in.Event.(core.KeyPressed); !key {
			return nil, false
		}
		return in.Status, true
	})
	f.s.runtime.Track(f.prog.Subscription())
	f.openFirst(t)
	f.settle()

	f.s.handlePlatform(platform.KeyboardEnter{Keyboard: 7, Surface: 1})
	f.s.handlePlatform(platform.Key{Keyboard: 7, Pressed: true, Sym: platform.KeyReturn})
	f.s.aboutToWait()

	require.Eventually(t, func() bool {
		f.drain()
		return len(f.s.messages) > 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, core.StatusCaptured, f.s.messages[0])
}

func TestOutputEventsAreBroadcast(t *testing.T) {
	f := newFixture(t, daemon)
	f.prog.sub = runtime.ListenWith("outputs", func(ev runtime.Event) (any, bool) {
		if o, ok := ev.(runtime.OutputAdded); ok {
			return o.Name, true
		}
		return nil, false
	})
	f.s.runtime.Track(f.prog.Subscription())

	f.s.handlePlatform(platform.OutputAdded{Name: "DP-1"})
	require.Eventually(t, func() bool {
		f.drain()
		return len(f.s.messages) > 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "DP-1", f.s.messages[0])
}

// ─── Run ─────────────────────────────────────────────────────────────────────

type bootProgram struct {
	*fakeProgram
	boot runtime.Task
}

func (p bootProgram) Boot() runtime.Task { return p.boot }

func runAsync(ctx context.Context, p program.Program, opts Options) <-chan error {
	done := make(chan error, 1)
	go func() { done <- Run(ctx, p, opts) }()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func baseOptions(conn *fakeConn, factory graphics.Factory) Options {
	return Options{
		Connection: conn,
		Compositor: factory,
		Toolkit:    &fakeToolkit{},
		Settings:   graphics.DefaultSettings(),
		Layer:      core.DefaultLayerSettings(),
	}
}

func TestRunValidatesOptions(t *testing.T) {
	err := Run(context.Background(), &fakeProgram{}, Options{})
	assert.Error(t, err)
}

func TestRunExecutorCreationFailed(t *testing.T) {
	opts := baseOptions(newFakeConn(), factoryFor(&fakeCompositor{}))
	opts.ExecutorLimit = -1
	err := Run(context.Background(), &fakeProgram{}, opts)

	var shellErr *Error
	require.ErrorAs(t, err, &shellErr)
	assert.Equal(t, ExecutorCreationFailed, shellErr.Kind)
	assert.ErrorIs(t, err, runtime.ErrExecutor)
}

func TestRunGraphicsCreationFailed(t *testing.T) {
	conn := newFakeConn()
	cause := errors.New("no adapter")
	opts := baseOptions(conn, func(context.Context, graphics.Settings, graphics.RawWindow) (graphics.Compositor, error) {
		return nil, cause
	})
	done := runAsync(context.Background(), &fakeProgram{}, opts)

	require.Eventually(t, func() bool { return conn.createdCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	conn.events <- platform.LayerConfigure{Surface: 1, Width: 640, Height: 480}

	err := wait(t, done)
	var shellErr *Error
	require.ErrorAs(t, err, &shellErr)
	assert.Equal(t, GraphicsCreationFailed, shellErr.Kind)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &Error{Kind: GraphicsCreationFailed})
}

func TestRunEndsWhenLastWindowCloses(t *testing.T) {
	conn := newFakeConn()
	done := runAsync(context.Background(), &fakeProgram{}, baseOptions(conn, factoryFor(&fakeCompositor{})))

	require.Eventually(t, func() bool { return conn.createdCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	conn.events <- platform.LayerConfigure{Surface: 1, Width: 640, Height: 480}
	conn.events <- platform.Frame{Surface: 1}
	conn.events <- platform.LayerClosed{Surface: 1}

	assert.NoError(t, wait(t, done))
}

func TestRunConnectionClosed(t *testing.T) {
	conn := newFakeConn()
	opts := baseOptions(conn, factoryFor(&fakeCompositor{}))
	opts.Daemon = true
	done := runAsync(context.Background(), &fakeProgram{}, opts)

	close(conn.events)
	assert.ErrorIs(t, wait(t, done), ErrConnectionClosed)
}

func TestRunExitTask(t *testing.T) {
	opts := baseOptions(newFakeConn(), factoryFor(&fakeCompositor{}))
	opts.Daemon = true
	p := bootProgram{fakeProgram: &fakeProgram{}, boot: runtime.Exit()}
	done := runAsync(context.Background(), p, opts)

	assert.NoError(t, wait(t, done))
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := baseOptions(newFakeConn(), factoryFor(&fakeCompositor{}))
	opts.Daemon = true
	done := runAsync(ctx, &fakeProgram{}, opts)

	cancel()
	assert.NoError(t, wait(t, done))
}
