// Package recorder implements the Recorder state machine (C4): it owns
// a browser tab, injects the capture script, and serializes the
// resulting action/error streams behind the uniform result envelope.
// Grounded on the teacher's internal/daemon.Daemon shape (mutex-guarded
// state enum, with the CLOSING state as the abort signal) and internal/snapshot/recorder.go's
// chromedp.ListenTarget wiring, generalized to the driver.Browser/Tab seam.
package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/LEECHUNGYOON/u4a-record-replay/internal/action"
	"github.com/LEECHUNGYOON/u4a-record-replay/internal/capture"
	"github.com/LEECHUNGYOON/u4a-record-replay/internal/config"
	"github.com/LEECHUNGYOON/u4a-record-replay/internal/emitter"
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver/chromedpdriver"
)

// Metadata is getMetadata's RDATA payload (spec §4.4).
type Metadata struct {
	Type               string `json:"type"`
	URL                string `json:"url"`
	RecordingStartTime int64  `json:"recordingStartTime"`
	RecordingEndTime   int64  `json:"recordingEndTime,omitempty"`
	DurationMs         int64  `json:"durationMs,omitempty"`
	Duration           string `json:"duration,omitempty"`
}

// Recorder drives one browser tab through the capture lifecycle.
type Recorder struct {
	mu   sync.Mutex
	opts Options

	stream bool

	state   State
	browser driver.Browser
	tab     driver.Tab

	recording      *action.Recording
	scriptInjected bool

	emit *emitter.Emitter
}

// NewRecorder validates opts and returns a Recorder in state IDLE.
// Construction is the Go substitute for spec §6's "construction
// validates" requirement: there is no instance yet to carry a result
// envelope, so failures surface as a plain error.
func NewRecorder(opts Options) (*Recorder, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("recorder: %s", action.NoURLFound)
	}
	if opts.LaunchOptions.ExecutablePath == "" {
		opts.LaunchOptions.ExecutablePath = config.ChromePath
	}
	if opts.LaunchOptions.ExecutablePath == "" {
		return nil, fmt.Errorf("recorder: launchOptions.executablePath required")
	}
	if opts.Type == "" {
		opts.Type = "web"
	}
	if opts.GotoOptions.WaitUntil == "" && opts.GotoOptions.Timeout == 0 {
		opts.GotoOptions = driver.DefaultGotoOptions()
	}

	stream := config.Stream
	if opts.Stream != nil {
		stream = *opts.Stream
	}

	return &Recorder{
		opts:   opts,
		stream: stream,
		state:  StateIdle,
		emit:   emitter.New(),
	}, nil
}

// On subscribes fn to one of the Recorder's channels: action,
// console-error, stop, close.
func (r *Recorder) On(event string, fn func(any)) { r.emit.On(event, fn) }

func nowMs() int64 { return time.Now().UnixMilli() }

func isTargetClosed(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "closed") || strings.Contains(s, "detached") || strings.Contains(s, "no such target")
}

func (r *Recorder) stateIs(s State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == s
}

// LaunchPage implements spec §4.4 launchPage.
func (r *Recorder) LaunchPage(ctx context.Context) action.Result[struct{}] {
	r.mu.Lock()
	if r.state != StateIdle {
		st := r.state
		r.mu.Unlock()
		return action.Err[struct{}](action.AlreadyLaunched, fmt.Sprintf("recorder: cannot launch from state %s", st))
	}
	r.state = StateLaunching
	r.mu.Unlock()

	if r.opts.Browser == nil {
		r.opts.Browser = chromedpdriver.New()
	}
	browser := r.opts.Browser

	tab, err := browser.LaunchTab(ctx, r.opts.LaunchOptions)
	if err != nil {
		r.mu.Lock()
		r.state = StateIdle
		r.mu.Unlock()
		return action.Err[struct{}](action.LaunchFailed, err.Error())
	}

	if !r.stateIs(StateLaunching) {
		_ = browser.Close()
		r.mu.Lock()
		r.state = StateIdle
		r.mu.Unlock()
		return action.Err[struct{}](action.AbortedByUser, "recorder: close() called during launchPage")
	}

	r.installListeners(tab)

	if err := tab.Navigate(ctx, r.opts.URL, r.opts.GotoOptions); err != nil {
		_ = browser.Close()
		r.mu.Lock()
		r.state = StateIdle
		r.mu.Unlock()
		return action.Err[struct{}](action.LaunchFailed, err.Error())
	}

	if !r.stateIs(StateLaunching) {
		_ = browser.Close()
		r.mu.Lock()
		r.state = StateIdle
		r.mu.Unlock()
		return action.Err[struct{}](action.AbortedByUser, "recorder: close() called during launchPage")
	}

	r.mu.Lock()
	r.browser = browser
	r.tab = tab
	r.state = StateReady
	r.mu.Unlock()

	log.Printf("[RECORDER] launched, navigated to %s", r.opts.URL)
	return action.Ok(struct{}{})
}

// installListeners wires driver.Event delivery into the error stream
// and the captured-action binding into the recording buffer.
func (r *Recorder) installListeners(tab driver.Tab) {
	tab.OnEvent(func(e driver.Event) {
		switch e.Kind {
		case driver.EventConsoleError, driver.EventPageError:
			r.pushError(action.Error{Type: action.BrowserConsoleError, Message: e.Message, Stack: e.Stack, Timestamp: nowMs()})
		case driver.EventRequestFailed:
			r.pushError(action.Error{Type: action.RequestError, Message: e.Message, URL: e.URL, Method: e.Method, Timestamp: nowMs()})
		case driver.EventDisconnected:
			r.onDisconnected()
		}
	})
}

func (r *Recorder) pushError(e action.Error) {
	r.mu.Lock()
	recording := r.state == StateRecording
	if recording && r.recording != nil {
		r.recording.Errors = append(r.recording.Errors, e)
	}
	stream := r.stream
	r.mu.Unlock()

	if recording && stream {
		r.emit.Emit("console-error", e)
	}
}

// onDisconnected implements the disconnected handler of spec §4.4: if
// it fires mid-RECORDING and not during CLOSING, it stamps the end
// time, finalizes, emits a synthetic stop, then emits close.
func (r *Recorder) onDisconnected() {
	r.mu.Lock()
	if r.state == StateIdle || r.state == StateClosing {
		r.mu.Unlock()
		return
	}
	wasRecording := r.state == StateRecording
	var actions []action.Action
	var errs []action.Error
	if wasRecording && r.recording != nil {
		r.recording.RecordingEndTime = nowMs()
		actions, errs = r.finalizeLocked()
	}
	r.state = StateIdle
	r.tab = nil
	r.browser = nil
	r.mu.Unlock()

	log.Printf("[RECORDER] disconnected unexpectedly")

	if wasRecording && !r.stream {
		r.emit.Emit("action", actions)
		r.emit.Emit("console-error", errs)
	}
	if wasRecording {
		r.emit.Emit("stop", struct{}{})
	}
	r.emit.Emit("close", struct{}{})
}

// onCapturedAction is bound as the capture script's host callback.
func (r *Recorder) onCapturedAction(payload string) {
	var a action.Action
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		log.Printf("[RECORDER] malformed captured action: %v", err)
		return
	}

	r.mu.Lock()
	if r.state != StateRecording || r.recording == nil {
		r.mu.Unlock()
		return
	}
	r.recording.Actions = append(r.recording.Actions, a)
	stream := r.stream
	r.mu.Unlock()

	if stream {
		r.emit.Emit("action", a)
	}
}

// StartRecording implements spec §4.4 startRecording.
func (r *Recorder) StartRecording(ctx context.Context) action.Result[struct{}] {
	r.mu.Lock()
	switch r.state {
	case StateRecording:
		r.mu.Unlock()
		return action.Err[struct{}](action.AlreadyRecording, "recorder: already recording")
	case StateReady:
	default:
		st := r.state
		r.mu.Unlock()
		return action.Err[struct{}](action.NotRecording, fmt.Sprintf("recorder: cannot start from state %s", st))
	}
	tab := r.tab
	r.recording = action.NewRecording(r.opts.Type, r.opts.URL)
	r.recording.RecordingStartTime = nowMs()
	r.mu.Unlock()

	width, height, err := tab.OuterWindowSize(ctx)
	if err != nil {
		r.revertToReady()
		if isTargetClosed(err) {
			return action.Err[struct{}](action.AbortedByUser, err.Error())
		}
		return action.Err[struct{}](action.RecordingStartFailed, err.Error())
	}

	r.mu.Lock()
	r.recording.Actions = append(r.recording.Actions, action.Action{
		Type:       action.BrowserResize,
		Timestamp:  nowMs(),
		FromWidth:  action.IntPtr(width),
		FromHeight: action.IntPtr(height),
		ToWidth:    action.IntPtr(width),
		ToHeight:   action.IntPtr(height),
	})
	r.mu.Unlock()

	if err := tab.AddBinding(ctx, capture.CallbackName, r.onCapturedAction); err != nil {
		r.revertToReady()
		if isTargetClosed(err) {
			return action.Err[struct{}](action.AbortedByUser, err.Error())
		}
		return action.Err[struct{}](action.RecordingStartFailed, err.Error())
	}

	if !r.scriptInjected {
		if err := tab.AddScriptOnNewDocument(ctx, capture.Script()); err != nil {
			r.revertToReady()
			return action.Err[struct{}](action.RecordingStartFailed, err.Error())
		}
		r.scriptInjected = true
	}

	var discard any
	if err := tab.Evaluate(ctx, capture.Script(), &discard); err != nil {
		r.revertToReady()
		if isTargetClosed(err) {
			return action.Err[struct{}](action.AbortedByUser, err.Error())
		}
		return action.Err[struct{}](action.RecordingStartFailed, err.Error())
	}

	r.mu.Lock()
	r.state = StateRecording
	r.mu.Unlock()

	log.Printf("[RECORDER] recording started")
	return action.Ok(struct{}{})
}

func (r *Recorder) revertToReady() {
	r.mu.Lock()
	r.state = StateReady
	r.recording = nil
	r.mu.Unlock()
}

// finalizeLocked must be called with r.mu held. It stamps duration
// fields and, for batched (stream=false) emission, returns copies of
// the final actions/errors for the caller to emit outside the lock.
func (r *Recorder) finalizeLocked() (actions []action.Action, errs []action.Error) {
	rec := r.recording
	if rec == nil {
		return nil, nil
	}
	if rec.RecordingEndTime == 0 {
		rec.RecordingEndTime = nowMs()
	}
	rec.DurationMs = rec.RecordingEndTime - rec.RecordingStartTime
	rec.Duration = action.FormatDuration(rec.DurationMs)
	if !r.stream {
		actions = append([]action.Action{}, rec.Actions...)
		errs = append([]action.Error{}, rec.Errors...)
	}
	return actions, errs
}

// StopRecording implements spec §4.4 stopRecording.
func (r *Recorder) StopRecording(ctx context.Context) action.Result[struct{}] {
	r.mu.Lock()
	if r.state != StateRecording {
		st := r.state
		r.mu.Unlock()
		return action.Err[struct{}](action.NotRecording, fmt.Sprintf("recorder: cannot stop from state %s", st))
	}
	r.recording.RecordingEndTime = nowMs()
	actions, errs := r.finalizeLocked()
	r.state = StateReady
	r.mu.Unlock()

	if !r.stream {
		r.emit.Emit("action", actions)
		r.emit.Emit("console-error", errs)
	}
	r.emit.Emit("stop", struct{}{})

	log.Printf("[RECORDER] recording stopped")
	return action.Ok(struct{}{})
}

// GetMetadata implements spec §4.4 getMetadata: a pure accessor.
func (r *Recorder) GetMetadata() action.Result[Metadata] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording == nil {
		return action.Ok(Metadata{Type: r.opts.Type, URL: r.opts.URL})
	}
	m := Metadata{
		Type:               r.recording.Type,
		URL:                r.recording.URL,
		RecordingStartTime: r.recording.RecordingStartTime,
		RecordingEndTime:   r.recording.RecordingEndTime,
	}
	if r.recording.RecordingEndTime != 0 {
		m.DurationMs = r.recording.RecordingEndTime - r.recording.RecordingStartTime
		m.Duration = action.FormatDuration(m.DurationMs)
	}
	return action.Ok(m)
}

// Close implements spec §4.4 close(): valid in any non-IDLE/CLOSING
// state, transitions through CLOSING (the cancellation signal for any
// awaiting launchPage/startRecording), closes the browser, and resets
// to IDLE.
func (r *Recorder) Close(ctx context.Context) action.Result[struct{}] {
	r.mu.Lock()
	if r.state == StateIdle {
		r.mu.Unlock()
		return action.Ok(struct{}{})
	}
	if r.state == StateClosing {
		r.mu.Unlock()
		return action.Err[struct{}](action.BrowserClosed, "recorder: already closing")
	}

	wasRecording := r.state == StateRecording
	r.state = StateClosing
	browser := r.browser

	var actions []action.Action
	var errs []action.Error
	if wasRecording && r.recording != nil {
		r.recording.RecordingEndTime = nowMs()
		actions, errs = r.finalizeLocked()
	}
	r.mu.Unlock()

	if browser != nil {
		_ = browser.Close()
	}

	if wasRecording && !r.stream {
		r.emit.Emit("action", actions)
		r.emit.Emit("console-error", errs)
	}
	if wasRecording {
		r.emit.Emit("stop", struct{}{})
	}

	r.mu.Lock()
	r.state = StateIdle
	r.tab = nil
	r.browser = nil
	r.recording = nil
	r.scriptInjected = false
	r.mu.Unlock()

	r.emit.Emit("close", struct{}{})
	log.Printf("[RECORDER] closed")
	return action.Ok(struct{}{})
}
