package desktop

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/deskrun/internal/eventloop"
	"github.com/1broseidon/deskrun/internal/mainthread"
	"github.com/1broseidon/deskrun/internal/platform"
	"github.com/1broseidon/deskrun/internal/platform/headless"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRuntime(t *testing.T, opts ...headless.Option) (*Runtime, *headless.Backend) {
	t.Helper()
	b := headless.New(opts...)
	rt, err := NewAnyThread(b, WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt, b
}

// openWindow creates a window titled label synchronously and returns its
// dispatcher and native window.
func openWindow(t *testing.T, rt *Runtime, b *headless.Backend, label string, opts ...WindowOption) (*Dispatcher, *headless.Window) {
	t.Helper()
	p, err := NewPendingWindow(label, append([]WindowOption{WithTitle(label)}, opts...)...)
	require.NoError(t, err)
	dw, err := rt.CreateWindow(p)
	require.NoError(t, err)
	native, ok := b.WindowByTitle(label)
	require.True(t, ok)
	return dw.Dispatcher, native
}

// pumpUntil runs loop iterations on the calling goroutine until cond holds.
func pumpUntil(t *testing.T, rt *Runtime, callback func(RunEvent), cond func() bool) RunIteration {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var it RunIteration
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out pumping the event loop")
		}
		it = rt.RunIteration(callback)
		time.Sleep(time.Millisecond)
	}
	return it
}

// await runs fn on another goroutine and pumps until it returns.
func await[T any](t *testing.T, rt *Runtime, fn func() T) T {
	t.Helper()
	ch := make(chan T, 1)
	go func() { ch <- fn() }()
	var v T
	done := false
	pumpUntil(t, rt, nil, func() bool {
		select {
		case v = <-ch:
			done = true
		default:
		}
		return done
	})
	return v
}

func TestSameThreadFastPath(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, native := openWindow(t, rt, b, "main")

	require.NoError(t, d.SetTitle("changed"))
	assert.Equal(t, "changed", native.State().Title)

	title, err := d.Title()
	require.NoError(t, err)
	assert.Equal(t, "changed", title)

	require.NoError(t, d.SetSize(platform.PhysicalSize{Width: 640, Height: 480}))
	assert.Equal(t, platform.PhysicalSize{Width: 640, Height: 480}, native.State().Size)

	assert.Zero(t, rt.loop.Pending(), "fast path must not touch the queue")
}

func TestCrossThreadGetterRoundTrip(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, native := openWindow(t, rt, b, "main",
		WithInnerSize(1024, 768),
		WithPosition(10, 20))

	type answer struct {
		title string
		size  platform.PhysicalSize
		pos   platform.PhysicalPosition
		mon   *platform.Monitor
		err   error
	}
	got := await(t, rt, func() answer {
		var a answer
		if a.title, a.err = d.Title(); a.err != nil {
			return a
		}
		if a.size, a.err = d.InnerSize(); a.err != nil {
			return a
		}
		if a.pos, a.err = d.OuterPosition(); a.err != nil {
			return a
		}
		a.mon, a.err = d.CurrentMonitor()
		return a
	})
	require.NoError(t, got.err)

	state := native.State()
	assert.Equal(t, state.Title, got.title)
	assert.Equal(t, state.Size, got.size)
	assert.Equal(t, state.Position, got.pos)
	require.NotNil(t, got.mon)
	assert.Equal(t, headless.DefaultMonitor.Name, got.mon.Name)
}

func TestFIFOPerSender(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, native := openWindow(t, rt, b, "main")

	err := await(t, rt, func() error {
		for _, title := range []string{"A", "B", "C"} {
			if err := d.SetTitle(title); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	pumpUntil(t, rt, nil, func() bool { return rt.loop.Pending() == 0 })
	rt.RunIteration(nil)

	assert.Equal(t, "C", native.State().Title)
}

func TestFIFOManySenders(t *testing.T) {
	rt, b := newTestRuntime(t)
	const senders = 4
	const perSender = 50

	var dispatchers [senders]*Dispatcher
	var natives [senders]*headless.Window
	for i := range senders {
		dispatchers[i], natives[i] = openWindow(t, rt, b, string(rune('a'+i)))
	}

	var mu sync.Mutex
	seen := make(map[WindowID][]int)
	for i := range senders {
		d := dispatchers[i]
		d.OnWindowEvent(func(ev WindowEvent) {
			if m, ok := ev.(WindowMoved); ok {
				mu.Lock()
				seen[d.WindowID()] = append(seen[d.WindowID()], m.Position.X)
				mu.Unlock()
			}
		})
	}

	err := await(t, rt, func() error {
		var g errgroup.Group
		for i := range senders {
			d := dispatchers[i]
			g.Go(func() error {
				for n := range perSender {
					if err := d.SetTitle(string(rune('A' + n%26))); err != nil {
						return err
					}
					if err := d.RunOnMainThread(func() {
						d.ctx.exec.notifyWindow(d.windowID, WindowMoved{Position: platform.PhysicalPosition{X: n}})
					}); err != nil {
						return err
					}
				}
				return nil
			})
		}
		return g.Wait()
	})
	require.NoError(t, err)
	rt.RunIteration(nil)

	mu.Lock()
	defer mu.Unlock()
	for i := range senders {
		xs := seen[dispatchers[i].WindowID()]
		require.Len(t, xs, perSender)
		for n, x := range xs {
			assert.Equal(t, n, x)
		}
		assert.Equal(t, string(rune('A'+(perSender-1)%26)), natives[i].State().Title)
	}
}

func TestListenerCallsDispatcherWithoutDeadlock(t *testing.T) {
	type outcome struct {
		title string
		other string
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		var out outcome
		defer func() { done <- out }()

		b := headless.New()
		rt, err := NewAnyThread(b, WithLogger(quietLogger()))
		if err != nil {
			out.err = err
			return
		}
		defer rt.Close()

		mk := func(label string) (*Dispatcher, platform.NativeID) {
			p, _ := NewPendingWindow(label, WithTitle(label))
			dw, err := rt.CreateWindow(p)
			if err != nil {
				out.err = err
				return nil, 0
			}
			w, _ := b.WindowByTitle(label)
			return dw.Dispatcher, w.ID()
		}
		first, native := mk("first")
		second, otherNative := mk("second")
		if out.err != nil {
			return
		}

		handled := false
		first.OnWindowEvent(func(ev WindowEvent) {
			if _, ok := ev.(WindowResized); !ok {
				return
			}
			if err := first.SetTitle("resized"); err != nil {
				out.err = err
				return
			}
			if out.title, err = first.Title(); err != nil {
				out.err = err
				return
			}
			if err := second.SetTitle("touched"); err != nil {
				out.err = err
			}
			handled = true
		})

		b.Resize(native, platform.PhysicalSize{Width: 300, Height: 200})
		for !handled && out.err == nil {
			rt.RunIteration(nil)
		}
		if w, ok := b.Window(otherNative); ok {
			out.other = w.State().Title
		}
	}()

	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.Equal(t, "resized", out.title)
		assert.Equal(t, "touched", out.other)
	case <-time.After(time.Second):
		t.Fatal("listener deadlocked the event loop")
	}
}

func TestCloseVetoByWindowListener(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, native := openWindow(t, rt, b, "main")

	d.OnWindowEvent(func(ev WindowEvent) {
		if req, ok := ev.(WindowCloseRequested); ok {
			req.Signal.Send(true)
		}
	})

	var closed bool
	b.RequestClose(native.ID())
	it := rt.RunIteration(func(ev RunEvent) {
		if _, ok := ev.(WindowClose); ok {
			closed = true
		}
	})

	assert.Equal(t, 1, it.WindowCount)
	assert.False(t, it.ExitRequested)
	assert.False(t, closed)
	assert.False(t, native.State().Destroyed)

	title, err := d.Title()
	require.NoError(t, err)
	assert.Equal(t, "main", title)
}

func TestCloseVetoByApplication(t *testing.T) {
	rt, b := newTestRuntime(t)
	_, native := openWindow(t, rt, b, "main")

	b.RequestClose(native.ID())
	it := rt.RunIteration(func(ev RunEvent) {
		if req, ok := ev.(CloseRequested); ok {
			assert.Equal(t, "main", req.Label)
			req.Signal.Prevent()
		}
	})
	assert.Equal(t, 1, it.WindowCount)
	assert.False(t, native.State().Destroyed)
}

func TestExitVetoKeepsLoopRunning(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, native := openWindow(t, rt, b, "main")

	var events []RunEvent
	callback := func(ev RunEvent) {
		events = append(events, ev)
		if req, ok := ev.(ExitRequested); ok {
			req.Signal.Send(ExitPrevent)
		}
	}

	b.RequestClose(native.ID())
	it := rt.RunIteration(callback)

	assert.Equal(t, 0, it.WindowCount)
	assert.False(t, it.ExitRequested)
	assert.False(t, rt.loop.Closed())
	assert.True(t, native.State().Destroyed)

	var labels []string
	for _, ev := range events {
		switch ev := ev.(type) {
		case WindowClose:
			labels = append(labels, "close:"+ev.Label)
		case ExitRequested:
			labels = append(labels, "exit:"+ev.Label)
		}
	}
	assert.Equal(t, []string{"close:main", "exit:main"}, labels)

	// The loop is still usable after the veto.
	_, err := d.Title()
	assert.ErrorIs(t, err, ErrFailedToReceiveMessage)
	openWindow(t, rt, b, "again")
	it = rt.RunIteration(nil)
	assert.Equal(t, 1, it.WindowCount)
}

func TestLastWindowCloseExits(t *testing.T) {
	rt, b := newTestRuntime(t)
	_, native := openWindow(t, rt, b, "main")

	b.RequestClose(native.ID())
	it := rt.RunIteration(nil)
	assert.Equal(t, 0, it.WindowCount)
	assert.True(t, it.ExitRequested)
}

func TestCloseVetoByAnyHandler(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, native := openWindow(t, rt, b, "main")
	openWindow(t, rt, b, "other")

	d.OnWindowEvent(func(ev WindowEvent) {
		if req, ok := ev.(WindowCloseRequested); ok {
			req.Signal.Send(false)
		}
	})

	b.RequestClose(native.ID())
	it := rt.RunIteration(func(ev RunEvent) {
		if req, ok := ev.(CloseRequested); ok {
			req.Signal.Send(true)
		}
	})
	assert.Equal(t, 2, it.WindowCount)
	assert.False(t, native.State().Destroyed)
}

func TestExitVetoIsNotUndone(t *testing.T) {
	rt, b := newTestRuntime(t)
	_, native := openWindow(t, rt, b, "main")

	b.RequestClose(native.ID())
	it := rt.RunIteration(func(ev RunEvent) {
		if req, ok := ev.(ExitRequested); ok {
			req.Signal.Send(ExitPrevent)
			req.Signal.Send(ExitAllow)
		}
	})
	assert.Equal(t, 0, it.WindowCount)
	assert.False(t, it.ExitRequested)
	assert.False(t, rt.loop.Closed())
}

// runWithWatchdog runs rt.Run and exits the loop through the handle if it
// is still running after two seconds. It reports whether the watchdog fired.
func runWithWatchdog(t *testing.T, rt *Runtime, callback func(RunEvent)) bool {
	t.Helper()
	var fired atomic.Bool
	timer := time.AfterFunc(2*time.Second, func() {
		fired.Store(true)
		_ = rt.Handle().Exit()
	})
	defer timer.Stop()
	rt.Run(callback)
	return fired.Load()
}

func TestRunReturnsWhenLastWindowCloses(t *testing.T) {
	rt, b := newTestRuntime(t)
	_, native := openWindow(t, rt, b, "main")

	var events []RunEvent
	fired := runWithWatchdog(t, rt, func(ev RunEvent) {
		switch ev.(type) {
		case Ready:
			go b.RequestClose(native.ID())
		case MainEventsCleared:
			return
		}
		events = append(events, ev)
	})

	assert.False(t, fired, "Run kept going after the last window closed")
	require.NotEmpty(t, events)
	assert.Equal(t, Exit{}, events[len(events)-1])
	assert.Contains(t, events, RunEvent(WindowClose{Label: "main"}))
	assert.True(t, native.State().Destroyed)
	assert.True(t, rt.loop.Closed())
}

func TestRunKeepsGoingAfterExitVeto(t *testing.T) {
	rt, b := newTestRuntime(t)
	_, native := openWindow(t, rt, b, "main")
	h := rt.Handle()
	proxy := rt.CreateProxy()

	var order []string
	fired := runWithWatchdog(t, rt, func(ev RunEvent) {
		switch ev := ev.(type) {
		case Ready:
			go b.RequestClose(native.ID())
		case ExitRequested:
			order = append(order, "exit-requested")
			ev.Signal.Prevent()
			go func() {
				time.Sleep(20 * time.Millisecond)
				_ = proxy.SendEvent("still running")
			}()
		case UserEvent:
			order = append(order, "user:"+ev.Payload.(string))
			_ = h.Exit()
		case Exit:
			order = append(order, "exit")
		}
	})

	assert.False(t, fired)
	assert.Equal(t, []string{"exit-requested", "user:still running", "exit"}, order)
	assert.True(t, native.State().Destroyed)
}

func TestProgrammaticCloseSkipsWindowVeto(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, first := openWindow(t, rt, b, "first")
	_, second := openWindow(t, rt, b, "second")

	asked := false
	d.OnWindowEvent(func(ev WindowEvent) {
		if req, ok := ev.(WindowCloseRequested); ok {
			asked = true
			req.Signal.Prevent()
		}
	})

	require.NoError(t, d.Close())
	assert.Equal(t, 1, rt.loop.Pending(), "close is always queued")
	it := rt.RunIteration(nil)

	assert.False(t, asked)
	assert.Equal(t, 1, it.WindowCount)
	assert.False(t, it.ExitRequested)
	assert.True(t, first.State().Destroyed)
	assert.False(t, second.State().Destroyed)
}

func TestDanglingReplyAfterWindowRemoval(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, _ := openWindow(t, rt, b, "main")

	errc := make(chan error, 1)
	go func() {
		_, err := d.Title()
		errc <- err
	}()
	require.Eventually(t, func() bool { return rt.loop.Pending() == 1 }, time.Second, time.Millisecond)

	_, ok := rt.exec.windows.remove(d.WindowID())
	require.True(t, ok)
	rt.RunIteration(nil)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrFailedToReceiveMessage)
	case <-time.After(time.Second):
		t.Fatal("getter hung after its window was removed")
	}
}

func TestDanglingReplyAtTeardown(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, _ := openWindow(t, rt, b, "main")

	errc := make(chan error, 1)
	go func() {
		_, err := d.IsVisible()
		errc <- err
	}()
	require.Eventually(t, func() bool { return rt.loop.Pending() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, rt.Close())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrFailedToReceiveMessage)
	case <-time.After(time.Second):
		t.Fatal("getter hung after the loop closed")
	}

	assert.ErrorIs(t, d.SetTitle("late"), ErrFailedToSendMessage)
	go func() { errc <- d.SetTitle("late") }()
	assert.ErrorIs(t, <-errc, ErrFailedToSendMessage)
}

func TestConcurrentCreateWindowIDs(t *testing.T) {
	rt, b := newTestRuntime(t)
	const k = 16

	var unprepared []WindowID
	rt.Plugin(PluginBuilderFunc(func(ctx *Context) Plugin {
		return PluginFunc(func(ev eventloop.Event[Message], _ EventContext, _ *eventloop.ControlFlow) bool {
			var id WindowID
			switch m := ev.User.(type) {
			case CreateWebviewMessage:
				id = m.ID
			case WindowMessage:
				id = m.ID
			default:
				return false
			}
			if !ctx.windowListeners.prepared(id) {
				unprepared = append(unprepared, id)
			}
			return false
		})
	}))

	h := rt.Handle()
	ids := make([]WindowID, k)
	err := await(t, rt, func() error {
		var g errgroup.Group
		for i := range k {
			g.Go(func() error {
				p, err := NewPendingWindow("w" + string(rune('a'+i)))
				if err != nil {
					return err
				}
				dw, err := h.CreateWindow(p)
				if err != nil {
					return err
				}
				ids[i] = dw.Dispatcher.WindowID()
				return dw.Dispatcher.SetTitle(dw.Label)
			})
		}
		return g.Wait()
	})
	require.NoError(t, err)
	pumpUntil(t, rt, nil, func() bool { return rt.exec.windows.len() == k && rt.loop.Pending() == 0 })

	unique := make(map[WindowID]struct{}, k)
	for _, id := range ids {
		assert.NotZero(t, id)
		unique[id] = struct{}{}
	}
	assert.Len(t, unique, k)
	assert.Empty(t, unprepared)
	assert.Len(t, b.Windows(), k)
}

func TestCallsBeforeWindowExistsAreQueuedBehindIt(t *testing.T) {
	rt, b := newTestRuntime(t)
	p, err := NewPendingWindow("late", WithTitle("first"))
	require.NoError(t, err)

	res := await(t, rt, func() Result[DetachedWindow] {
		dw, err := rt.Handle().CreateWindow(p)
		if err == nil {
			err = dw.Dispatcher.SetTitle("second")
		}
		return Result[DetachedWindow]{Value: dw, Err: err}
	})
	require.NoError(t, res.Err)
	dw := res.Value
	pumpUntil(t, rt, nil, func() bool { return rt.loop.Pending() == 0 })

	title, err := dw.Dispatcher.Title()
	require.NoError(t, err)
	assert.Equal(t, "second", title)
	_, ok := b.WindowByTitle("second")
	assert.True(t, ok)
}

func TestCreateWebviewFailureRetiresID(t *testing.T) {
	rt, b := newTestRuntime(t)
	b.FailNextWebview(errors.New("no webkit"))

	p, err := NewPendingWindow("broken")
	require.NoError(t, err)
	_, err = rt.CreateWindow(p)
	require.ErrorIs(t, err, ErrCreateWebview)
	assert.Contains(t, err.Error(), "no webkit")
	assert.Empty(t, b.Windows(), "window of a failed webview is destroyed")
	assert.Zero(t, rt.exec.windows.len())
}

func TestCreateCoreWindow(t *testing.T) {
	rt, b := newTestRuntime(t)
	h := rt.Handle()

	d, err := h.CreateCoreWindow(func() (string, platform.WindowAttributes) {
		attrs := platform.DefaultWindowAttributes()
		attrs.Title = "core"
		return "core", attrs
	})
	require.NoError(t, err)
	native, ok := b.WindowByTitle("core")
	require.True(t, ok)
	_, hasWebview := native.Webview()
	assert.False(t, hasWebview)

	id, ok := h.WindowID(native.ID())
	require.True(t, ok)
	assert.Equal(t, d.WindowID(), id)

	byLabel, ok := h.Window("core")
	require.True(t, ok)
	assert.Equal(t, d.WindowID(), byLabel.WindowID())
	assert.Contains(t, h.Windows(), "core")
}

func TestCreateCoreWindowFailure(t *testing.T) {
	rt, b := newTestRuntime(t)
	b.FailNextWindow(errors.New("display gone"))

	res := await(t, rt, func() Result[*Dispatcher] {
		d, err := rt.Handle().CreateCoreWindow(func() (string, platform.WindowAttributes) {
			return "other", platform.DefaultWindowAttributes()
		})
		return Result[*Dispatcher]{Value: d, Err: err}
	})
	require.ErrorIs(t, res.Err, ErrCreateWindow)
	assert.Contains(t, res.Err.Error(), "display gone")
	assert.Nil(t, res.Value)
}

func TestRunUntilHandleExit(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, _ := openWindow(t, rt, b, "main")
	h := rt.Handle()
	proxy := rt.CreateProxy()

	go func() {
		_ = proxy.SendEvent("hello")
		_ = h.Exit()
	}()

	var events []RunEvent
	rt.Run(func(ev RunEvent) {
		switch ev.(type) {
		case MainEventsCleared:
		default:
			events = append(events, ev)
		}
	})

	require.NotEmpty(t, events)
	assert.Equal(t, Ready{}, events[0])
	assert.Equal(t, Exit{}, events[len(events)-1])
	assert.Contains(t, events, RunEvent(UserEvent{Payload: "hello"}))
	assert.True(t, rt.loop.Closed())

	assert.ErrorIs(t, d.SetTitle("late"), ErrFailedToSendMessage)
	assert.ErrorIs(t, proxy.SendEvent("late"), ErrEventLoopClosed)

	it := rt.RunIteration(nil)
	assert.True(t, it.ExitRequested)
}

func TestNativeCallsStayOnMainThread(t *testing.T) {
	var owner atomic.Uint64
	var offThread atomic.Int32
	rt, b := newTestRuntime(t, headless.WithGuard(func(op string) {
		if id := owner.Load(); id != 0 && mainthread.Current() != mainthread.ID(id) {
			offThread.Add(1)
		}
	}))
	owner.Store(uint64(rt.ctx.mainThreadID))
	d, _ := openWindow(t, rt, b, "main")

	err := await(t, rt, func() error {
		if err := d.SetTitle("x"); err != nil {
			return err
		}
		if _, err := d.InnerSize(); err != nil {
			return err
		}
		if err := d.Center(); err != nil {
			return err
		}
		return d.EvalScript("1+1")
	})
	require.NoError(t, err)
	rt.RunIteration(nil)
	assert.Zero(t, offThread.Load())
}

func TestPluginPreventsDefaultHandling(t *testing.T) {
	rt, b := newTestRuntime(t)
	d, native := openWindow(t, rt, b, "main")

	rt.Plugin(PluginBuilderFunc(func(*Context) Plugin {
		return PluginFunc(func(ev eventloop.Event[Message], _ EventContext, _ *eventloop.ControlFlow) bool {
			m, ok := ev.User.(WindowMessage)
			if !ok {
				return false
			}
			_, isTitle := m.Op.(GetTitle)
			_, isSet := m.Op.(SetTitle)
			return isTitle || isSet
		})
	}))

	res := await(t, rt, func() Result[string] {
		if err := d.SetTitle("blocked"); err != nil {
			return Result[string]{Err: err}
		}
		title, err := d.Title()
		return Result[string]{Value: title, Err: err}
	})
	assert.ErrorIs(t, res.Err, ErrFailedToReceiveMessage)
	assert.Equal(t, "main", native.State().Title)
}

func TestNewRequiresProcessMainThread(t *testing.T) {
	mainthread.Lock()
	if mainthread.IsProcessMain() {
		t.Skip("test goroutine runs on the process main thread")
	}
	_, err := New(headless.New())
	assert.ErrorIs(t, err, ErrNotMainThread)
}

func TestAttachFailure(t *testing.T) {
	b := headless.New()
	require.NoError(t, b.Attach(eventloop.New[Message]()))

	_, err := NewAnyThread(b, WithLogger(quietLogger()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attach headless backend")
}
