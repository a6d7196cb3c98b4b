// Package replayer implements the Replayer state machine (C5): it owns
// a browser tab, iterates a recorded action stream honoring original
// timing and an application-defined busy barrier, dispatches the
// per-action executors (C7), and hints the overlay (C3). Grounded on
// the teacher's internal/snapshot/replay.go Replay/ReplayWithResult
// split, generalized from its fixed 500ms inter-action sleep to the
// full offset/timing algorithm of spec §4.5.
package replayer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/LEECHUNGYOON/u4a-record-replay/internal/action"
	"github.com/LEECHUNGYOON/u4a-record-replay/internal/config"
	"github.com/LEECHUNGYOON/u4a-record-replay/internal/emitter"
	"github.com/LEECHUNGYOON/u4a-record-replay/internal/overlay"
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver/chromedpdriver"
)

// PlayResult is play's RDATA payload (spec §4.5, §8 S5/S6).
type PlayResult struct {
	ConsoleErrors []action.Error `json:"consoleErrors"`
}

// ScreenshotResult is captureScreen's RDATA payload (spec §4.5).
type ScreenshotResult struct {
	Data []byte `json:"data,omitempty"`
	Path string `json:"path,omitempty"`
}

// Replayer drives one browser tab through the replay lifecycle.
type Replayer struct {
	mu            sync.Mutex
	opts          Options
	visualEffects bool

	state   State
	browser driver.Browser
	tab     driver.Tab
	overlay *overlay.Overlay

	consoleErrors []action.Error

	emit *emitter.Emitter
}

// NewReplayer validates opts and returns a Replayer in state IDLE.
func NewReplayer(opts Options) (*Replayer, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("replayer: %s", action.NoURLFound)
	}
	if opts.LaunchOptions.ExecutablePath == "" {
		opts.LaunchOptions.ExecutablePath = config.ChromePath
	}
	if opts.LaunchOptions.ExecutablePath == "" {
		return nil, fmt.Errorf("replayer: launchOptions.executablePath required")
	}
	if opts.Type == "" {
		opts.Type = "web"
	}
	if opts.GotoOptions.WaitUntil == "" && opts.GotoOptions.Timeout == 0 {
		opts.GotoOptions = driver.DefaultGotoOptions()
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = config.BusyTimeout
	}

	visualEffects := true
	if opts.VisualEffects != nil {
		visualEffects = *opts.VisualEffects
	}

	return &Replayer{
		opts:          opts,
		visualEffects: visualEffects,
		state:         StateIdle,
		emit:          emitter.New(),
	}, nil
}

// On subscribes fn to one of the Replayer's channels: action,
// console-error, finish, close.
func (p *Replayer) On(event string, fn func(any)) { p.emit.On(event, fn) }

func (p *Replayer) stateIs(s State) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == s
}

// LaunchPage implements spec §4.5 launchPage: as Recorder's, plus
// overlay re-injection (and re-showing the indicator if PLAYING) on
// every subsequent main-frame navigation.
func (p *Replayer) LaunchPage(ctx context.Context) action.Result[struct{}] {
	p.mu.Lock()
	if p.state != StateIdle {
		st := p.state
		p.mu.Unlock()
		return action.Err[struct{}](action.AlreadyLaunched, fmt.Sprintf("replayer: cannot launch from state %s", st))
	}
	p.state = StateLaunching
	p.mu.Unlock()

	if p.opts.Browser == nil {
		p.opts.Browser = chromedpdriver.New()
	}
	browser := p.opts.Browser

	tab, err := browser.LaunchTab(ctx, p.opts.LaunchOptions)
	if err != nil {
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
		return action.Err[struct{}](action.LaunchFailed, err.Error())
	}
	if !p.stateIs(StateLaunching) {
		_ = browser.Close()
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
		return action.Err[struct{}](action.AbortedByUser, "replayer: close() called during launchPage")
	}

	ov := overlay.New(tab)
	ov.Disabled = !p.visualEffects
	p.installListeners(tab, ov)

	if err := tab.Navigate(ctx, p.opts.URL, p.opts.GotoOptions); err != nil {
		_ = browser.Close()
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
		return action.Err[struct{}](action.LaunchFailed, err.Error())
	}
	if !p.stateIs(StateLaunching) {
		_ = browser.Close()
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
		return action.Err[struct{}](action.AbortedByUser, "replayer: close() called during launchPage")
	}

	ov.Inject()

	p.mu.Lock()
	p.browser = browser
	p.tab = tab
	p.overlay = ov
	p.state = StateLaunched
	p.mu.Unlock()

	log.Printf("[REPLAYER] launched, navigated to %s", p.opts.URL)
	return action.Ok(struct{}{})
}

func (p *Replayer) installListeners(tab driver.Tab, ov *overlay.Overlay) {
	tab.OnEvent(func(e driver.Event) {
		switch e.Kind {
		case driver.EventConsoleError, driver.EventPageError:
			p.pushError(action.Error{Type: action.BrowserConsoleError, Message: e.Message, Stack: e.Stack, Timestamp: nowMs()})
		case driver.EventRequestFailed:
			p.pushError(action.Error{Type: action.RequestError, Message: e.Message, URL: e.URL, Method: e.Method, Timestamp: nowMs()})
		case driver.EventNavigated:
			p.onNavigated(ov)
		case driver.EventDisconnected:
			p.onDisconnected()
		}
	})
}

func (p *Replayer) onNavigated(ov *overlay.Overlay) {
	ov.Inject()
	if p.stateIs(StatePlaying) {
		ov.ShowReplayIndicator()
	}
}

func (p *Replayer) onDisconnected() {
	p.mu.Lock()
	if p.state == StateIdle || p.state == StateClosing {
		p.mu.Unlock()
		return
	}
	p.state = StateIdle
	p.tab = nil
	p.browser = nil
	p.overlay = nil
	p.mu.Unlock()

	log.Printf("[REPLAYER] disconnected unexpectedly")
	p.emit.Emit("close", struct{}{})
}

func (p *Replayer) pushError(e action.Error) {
	p.mu.Lock()
	p.consoleErrors = append(p.consoleErrors, e)
	p.mu.Unlock()
	p.emit.Emit("console-error", e)
}

// ReloadPage implements spec §4.5 reloadPage.
func (p *Replayer) ReloadPage(ctx context.Context) action.Result[struct{}] {
	p.mu.Lock()
	if p.state == StateIdle || p.state == StateClosing || p.state == StateLaunching {
		st := p.state
		p.mu.Unlock()
		return action.Err[struct{}](action.NoPageFound, fmt.Sprintf("replayer: cannot reload from state %s", st))
	}
	tab, ov := p.tab, p.overlay
	p.mu.Unlock()

	if err := tab.Reload(ctx); err != nil {
		return action.Err[struct{}](action.ActionFailed, err.Error())
	}
	ov.Inject()
	return action.Ok(struct{}{})
}

// CaptureScreen implements spec §4.5 captureScreen.
func (p *Replayer) CaptureScreen(ctx context.Context, opts driver.ScreenshotOptions) action.Result[ScreenshotResult] {
	p.mu.Lock()
	if p.state == StateIdle || p.state == StateClosing || p.state == StateLaunching {
		st := p.state
		p.mu.Unlock()
		return action.Err[ScreenshotResult](action.NoPageFound, fmt.Sprintf("replayer: cannot capture from state %s", st))
	}
	tab := p.tab
	p.mu.Unlock()

	data, path, err := tab.Screenshot(ctx, opts)
	if err != nil {
		return action.Err[ScreenshotResult](action.ActionFailed, err.Error())
	}
	return action.Ok(ScreenshotResult{Data: data, Path: path})
}

// Play implements spec §4.5 play(recordData) and its timing algorithm.
func (p *Replayer) Play(ctx context.Context, rec *action.Recording) action.Result[PlayResult] {
	p.mu.Lock()
	if p.state != StateLaunched {
		st := p.state
		p.mu.Unlock()
		return action.Err[PlayResult](action.NoPageFound, fmt.Sprintf("replayer: cannot play from state %s", st))
	}
	if rec == nil || rec.Actions == nil {
		p.mu.Unlock()
		return action.Err[PlayResult](action.InvalidData, "replayer: recordData.actions must be an array")
	}
	if rec.Type != "" {
		p.opts.Type = rec.Type
	}
	tab, ov := p.tab, p.overlay
	p.consoleErrors = nil
	p.state = StatePlaying
	p.mu.Unlock()

	ov.Inject()
	ov.ShowReplayIndicator()
	log.Printf("[REPLAYER] play started, %d actions", len(rec.Actions))

	outcome := p.runLoop(ctx, tab, ov, rec)

	p.mu.Lock()
	consoleErrors := append([]action.Error{}, p.consoleErrors...)
	if p.state == StatePlaying {
		p.state = StateLaunched
	}
	closedDuringPlay := outcome.code == action.BrowserClosed
	p.mu.Unlock()

	ov.HideReplayIndicator()

	if outcome.err == nil {
		p.emit.Emit("finish", struct{}{})
		log.Printf("[REPLAYER] play finished")
		return action.Ok(PlayResult{ConsoleErrors: consoleErrors})
	}

	if closedDuringPlay {
		p.mu.Lock()
		p.state = StateIdle
		p.tab = nil
		p.browser = nil
		p.overlay = nil
		p.mu.Unlock()
		p.emit.Emit("close", struct{}{})
	}

	log.Printf("[REPLAYER] play aborted: %v", outcome.err)
	return action.ErrWithData[PlayResult](outcome.code, outcome.err.Error(), PlayResult{ConsoleErrors: consoleErrors})
}

type loopOutcome struct {
	err  error
	code action.StatusCode
}

// runLoop is the timing algorithm of spec §4.5 steps 1-5.
func (p *Replayer) runLoop(ctx context.Context, tab driver.Tab, ov *overlay.Overlay, rec *action.Recording) loopOutcome {
	var timeOffset time.Duration
	n := len(rec.Actions)

	for i := 0; i < n; i++ {
		p.mu.Lock()
		st := p.state
		p.mu.Unlock()
		if st != StatePlaying {
			if st == StateClosing {
				return loopOutcome{err: fmt.Errorf("replayer: closed during play"), code: action.BrowserClosed}
			}
			return loopOutcome{err: fmt.Errorf("replayer: stopped at step %d", i), code: action.ReplayStopped}
		}

		if err := waitForIdle(ctx, tab, p.opts.BusyIndicatorSelector, p.opts.BusyTimeout, tab.Closed()); err != nil {
			if bt, ok := err.(*BusyTimeoutError); ok {
				return loopOutcome{err: bt, code: action.BusyTimeout}
			}
			code := action.ActionFailed
			if isTargetClosed(err) {
				code = action.BrowserClosed
			}
			return loopOutcome{err: err, code: code}
		}

		a := rec.Actions[i]
		start := time.Now()
		err := execute(ctx, tab, ov, a)
		executionTime := time.Since(start)
		if err != nil {
			code := action.ActionFailed
			if isTargetClosed(err) {
				code = action.BrowserClosed
			}
			return loopOutcome{err: fmt.Errorf("replayer: action %d (%s) failed: %w", i, a.Type, err), code: code}
		}
		p.emit.Emit("action", a)

		switch {
		case i < n-1:
			delay := time.Duration(rec.Actions[i+1].Timestamp-a.Timestamp) * time.Millisecond
			timeOffset += executionTime
			waitTime := delay - timeOffset
			if waitTime < 0 {
				waitTime = 0
			}
			timeOffset -= delay
			if timeOffset < 0 {
				timeOffset = 0
			}
			sleepOrAbort(ctx, waitTime)
		case rec.RecordingEndTime != 0:
			finalDelay := time.Duration(rec.RecordingEndTime-a.Timestamp) * time.Millisecond
			timeOffset += executionTime
			waitTime := finalDelay - timeOffset
			if waitTime < 0 {
				waitTime = 0
			}
			sleepOrAbort(ctx, waitTime)
		}
	}

	return loopOutcome{}
}

func sleepOrAbort(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Stop implements spec §4.5 stop(): valid only in PLAYING, terminates
// the loop at the next iteration boundary.
func (p *Replayer) Stop(ctx context.Context) action.Result[struct{}] {
	p.mu.Lock()
	if p.state != StatePlaying {
		st := p.state
		p.mu.Unlock()
		return action.Err[struct{}](action.NotPlaying, fmt.Sprintf("replayer: cannot stop from state %s", st))
	}
	p.state = StateLaunched
	p.mu.Unlock()
	return action.Ok(struct{}{})
}

// Close implements spec §4.5 close(), as Recorder's.
func (p *Replayer) Close(ctx context.Context) action.Result[struct{}] {
	p.mu.Lock()
	if p.state == StateIdle {
		p.mu.Unlock()
		return action.Ok(struct{}{})
	}
	if p.state == StateClosing {
		p.mu.Unlock()
		return action.Err[struct{}](action.BrowserClosed, "replayer: already closing")
	}
	p.state = StateClosing
	browser := p.browser
	ov := p.overlay
	p.mu.Unlock()

	if ov != nil {
		ov.HideReplayIndicator()
	}
	if browser != nil {
		_ = browser.Close()
	}

	p.mu.Lock()
	p.state = StateIdle
	p.tab = nil
	p.browser = nil
	p.overlay = nil
	p.mu.Unlock()

	p.emit.Emit("close", struct{}{})
	log.Printf("[REPLAYER] closed")
	return action.Ok(struct{}{})
}
