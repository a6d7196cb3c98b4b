// Package driver defines the seam the recorder and replayer state
// machines program against: page navigation, DOM evaluation, mouse and
// keyboard synthesis, CDP-level window control, and lifecycle events.
// The browser driver library itself is an external collaborator
// (spec §1); pkg/driver/chromedpdriver is the concrete chromedp-backed
// implementation, and tests substitute a fake satisfying the same
// interfaces.
package driver

import (
	"context"
	"time"
)

// GotoOptions configures a navigation call. Defaults mirror spec §6's
// gotoOptions table: {waitUntil:"load", timeout:30000}.
type GotoOptions struct {
	WaitUntil string
	Timeout   time.Duration
}

// DefaultGotoOptions returns spec §6's documented default.
func DefaultGotoOptions() GotoOptions {
	return GotoOptions{WaitUntil: "load", Timeout: 30 * time.Second}
}

// LaunchOptions configures how the browser process is started.
// ExecutablePath is required (validated at construction, spec §6).
type LaunchOptions struct {
	ExecutablePath string
	Headless       bool
	ExtraFlags     map[string]string
}

// ScreenshotOptions configures captureScreen (spec §4.5).
type ScreenshotOptions struct {
	// Path, if set, writes the PNG to disk and the operation returns
	// the path instead of binary data.
	Path     string
	FullPage bool
}

// EventKind classifies a lifecycle/runtime event surfaced by OnEvent.
type EventKind string

const (
	EventConsoleError  EventKind = "console_error"
	EventPageError     EventKind = "page_error"
	EventRequestFailed EventKind = "request_failed"
	EventNavigated     EventKind = "navigated"
	EventDisconnected  EventKind = "disconnected"
)

// Event carries the fields needed to classify console/runtime/network
// errors per spec §4.4 "Error sources".
type Event struct {
	Kind    EventKind
	Message string
	Stack   string
	URL     string
	Method  string
}

// Browser launches or attaches to a browser process and hands out the
// single tab the recorder/replayer own exclusively (spec §5 "Shared
// resources").
type Browser interface {
	// LaunchTab starts the browser (or connects to one) and returns
	// its first/only tab, already navigated nowhere.
	LaunchTab(ctx context.Context, opts LaunchOptions) (Tab, error)
	// Close closes every page and then the browser itself, ignoring
	// per-page failures (spec §4.4 close()).
	Close() error
}

// Tab is the single page a Recorder or Replayer drives.
type Tab interface {
	Navigate(ctx context.Context, url string, opts GotoOptions) error
	Reload(ctx context.Context) error

	// Evaluate runs expr and decodes its JSON-serializable result into out.
	Evaluate(ctx context.Context, expr string, out any) error

	// AddBinding exposes a host callback under name; onCall receives
	// the raw JSON payload the page passed. Exposing an already-bound
	// name is tolerated as a no-op (spec §9 Open Question i).
	AddBinding(ctx context.Context, name string, onCall func(payload string)) error

	// AddScriptOnNewDocument registers script to run on every
	// subsequent navigation (evaluateOnNewDocument-equivalent).
	AddScriptOnNewDocument(ctx context.Context, script string) error

	// OnEvent registers a handler for console/pageerror/requestfailed/
	// navigated/disconnected events. Handlers fire on the driver's
	// dispatch goroutine.
	OnEvent(handler func(Event))

	// Closed is closed when the underlying page/target goes away
	// (user closed the window, crash, etc.).
	Closed() <-chan struct{}

	// OuterWindowSize returns the current outer browser window size.
	OuterWindowSize(ctx context.Context) (width, height int, err error)
	// ResizeWindow sets the outer browser window size at the OS level
	// via CDP Browser.setWindowBounds (spec §4.7 browser_resize).
	ResizeWindow(ctx context.Context, width, height int) error

	// Action executors (C7).
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	ClickSelector(ctx context.Context, selector string, timeout time.Duration) error
	ClickXY(ctx context.Context, x, y int) error
	SetCheckedAndDispatch(ctx context.Context, selector string, checked bool) error
	SetValueAndDispatch(ctx context.Context, selector, eventName, value string, selStart, selEnd *int) error
	SelectOption(ctx context.Context, selector, value string) error
	PressKey(ctx context.Context, selector, key string) error
	AnimateScroll(ctx context.Context, selector string, fromX, fromY, toX, toY int, duration time.Duration) error

	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, string, error)
}
