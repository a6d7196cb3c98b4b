package replayer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LEECHUNGYOON/u4a-record-replay/internal/action"
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
)

func newTestReplayer(t *testing.T, browser *fakeBrowser) *Replayer {
	t.Helper()
	p, err := NewReplayer(Options{
		URL:           "https://example.com",
		LaunchOptions: driver.LaunchOptions{ExecutablePath: "/usr/bin/chrome"},
		Browser:       browser,
	})
	require.NoError(t, err)
	return p
}

func sampleRecording() *action.Recording {
	rec := action.NewRecording("web", "https://example.com")
	rec.RecordingStartTime = 1000
	rec.RecordingEndTime = 1100
	rec.Actions = []action.Action{
		{Type: action.Click, Selector: "#a", Timestamp: 1000, X: action.IntPtr(1), Y: action.IntPtr(1)},
		{Type: action.Click, Selector: "#b", Timestamp: 1020, X: action.IntPtr(2), Y: action.IntPtr(2)},
	}
	return rec
}

func TestReplayer_LaunchPlayFinish(t *testing.T) {
	browser := &fakeBrowser{}
	p := newTestReplayer(t, browser)
	ctx := context.Background()

	require.True(t, p.LaunchPage(ctx).IsOK())
	assert.Equal(t, StateLaunched, p.state)

	var finished bool
	var playedActions []action.Action
	p.On("finish", func(any) { finished = true })
	p.On("action", func(payload any) {
		if a, ok := payload.(action.Action); ok {
			playedActions = append(playedActions, a)
		}
	})

	res := p.Play(ctx, sampleRecording())
	require.True(t, res.IsOK())
	assert.True(t, finished)
	assert.Equal(t, StateLaunched, p.state)
	assert.Len(t, playedActions, 2)
}

func TestReplayer_PlayRequiresLaunchedState(t *testing.T) {
	browser := &fakeBrowser{}
	p := newTestReplayer(t, browser)
	res := p.Play(context.Background(), sampleRecording())
	assert.False(t, res.IsOK())
	assert.Equal(t, action.NoPageFound, res.STCOD)
}

func TestReplayer_PlayRejectsNilActions(t *testing.T) {
	browser := &fakeBrowser{}
	p := newTestReplayer(t, browser)
	ctx := context.Background()
	require.True(t, p.LaunchPage(ctx).IsOK())

	rec := action.NewRecording("web", "https://example.com")
	rec.Actions = nil
	res := p.Play(ctx, rec)
	assert.False(t, res.IsOK())
	assert.Equal(t, action.InvalidData, res.STCOD)
}

func TestReplayer_Stop(t *testing.T) {
	browser := &fakeBrowser{}
	p := newTestReplayer(t, browser)
	ctx := context.Background()
	require.True(t, p.LaunchPage(ctx).IsOK())

	p.mu.Lock()
	p.state = StatePlaying
	p.mu.Unlock()

	res := p.Stop(ctx)
	require.True(t, res.IsOK())
	assert.Equal(t, StateLaunched, p.state)
}

func TestReplayer_StopWhenNotPlayingFails(t *testing.T) {
	browser := &fakeBrowser{}
	p := newTestReplayer(t, browser)
	ctx := context.Background()
	require.True(t, p.LaunchPage(ctx).IsOK())

	res := p.Stop(ctx)
	assert.False(t, res.IsOK())
	assert.Equal(t, action.NotPlaying, res.STCOD)
}

func TestReplayer_BusyTimeout(t *testing.T) {
	browser := &fakeBrowser{}
	p := newTestReplayer(t, browser)
	p.opts.BusyIndicatorSelector = ".spinner"
	p.opts.BusyTimeout = 50 * time.Millisecond
	ctx := context.Background()
	require.True(t, p.LaunchPage(ctx).IsOK())

	browser.tab.evaluateFunc = func(ctx context.Context, expr string, out any) error {
		// Only the busy check decodes into a bool; overlay calls pass *any.
		if b, ok := out.(*bool); ok {
			*b = true // indicator always visible
		}
		return nil
	}

	res := p.Play(ctx, sampleRecording())
	assert.False(t, res.IsOK())
	assert.Equal(t, action.BusyTimeout, res.STCOD)
	assert.Equal(t, StateLaunched, p.state) // busy timeout is not a disconnect
}

func TestReplayer_CloseDuringPlayReportsBrowserClosed(t *testing.T) {
	browser := &fakeBrowser{}
	p := newTestReplayer(t, browser)
	ctx := context.Background()
	require.True(t, p.LaunchPage(ctx).IsOK())

	rec := action.NewRecording("web", "https://example.com")
	rec.Actions = []action.Action{
		{Type: action.Click, Selector: "#a", Timestamp: 0, X: action.IntPtr(1), Y: action.IntPtr(1)},
		{Type: action.Click, Selector: "#b", Timestamp: 300, X: action.IntPtr(2), Y: action.IntPtr(2)},
	}

	var closed bool
	p.On("close", func(any) { closed = true })

	go func() {
		time.Sleep(30 * time.Millisecond)
		p.mu.Lock()
		p.state = StateClosing
		p.mu.Unlock()
	}()

	res := p.Play(ctx, rec)
	assert.False(t, res.IsOK())
	assert.Equal(t, action.BrowserClosed, res.STCOD)
	assert.True(t, closed)
	assert.Equal(t, StateIdle, p.state)
}

func TestReplayer_ActionFailureAbortsPlay(t *testing.T) {
	browser := &fakeBrowser{}
	p := newTestReplayer(t, browser)
	ctx := context.Background()
	require.True(t, p.LaunchPage(ctx).IsOK())

	browser.tab.err = assert.AnError

	res := p.Play(ctx, sampleRecording())
	assert.False(t, res.IsOK())
	assert.Equal(t, action.ActionFailed, res.STCOD)
	assert.Equal(t, StateLaunched, p.state)
}

func TestReplayer_DisconnectEmitsClose(t *testing.T) {
	browser := &fakeBrowser{}
	p := newTestReplayer(t, browser)
	ctx := context.Background()
	require.True(t, p.LaunchPage(ctx).IsOK())

	var closed bool
	p.On("close", func(any) { closed = true })

	browser.tab.emit(driver.Event{Kind: driver.EventDisconnected})

	assert.True(t, closed)
	assert.Equal(t, StateIdle, p.state)
}
