// Package chromedpdriver implements pkg/driver's Browser/Tab seam on
// top of github.com/chromedp/chromedp and github.com/chromedp/cdproto
// — the concrete browser driver library named in spec §1, reused from
// the teacher's own internal/snapshot package (chromedp.ListenTarget,
// runtime.AddBinding, chromedp.Run action lists).
package chromedpdriver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/LEECHUNGYOON/u4a-record-replay/pkg/driver"
)

// Browser launches and owns a single Chrome process via chromedp.
type Browser struct {
	mu  sync.Mutex
	tab *Tab
}

// New returns a Browser with no tab yet launched.
func New() *Browser { return &Browser{} }

// LaunchTab implements driver.Browser.
func (b *Browser) LaunchTab(ctx context.Context, opts driver.LaunchOptions) (driver.Tab, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", false),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("start-maximized", !opts.Headless),
	)
	if opts.ExecutablePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecutablePath))
	}
	for k, v := range opts.ExtraFlags {
		allocOpts = append(allocOpts, chromedp.Flag(k, v))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("chromedpdriver: launch: %w", err)
	}

	t := &Tab{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		closed:      make(chan struct{}),
		bindings:    make(map[string]func(string)),
		requests:    make(map[network.RequestID]requestInfo),
	}

	if err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := page.Enable().Do(ctx); err != nil {
			return err
		}
		if err := runtime.Enable().Do(ctx); err != nil {
			return err
		}
		return network.Enable().Do(ctx)
	})); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("chromedpdriver: enable domains: %w", err)
	}

	t.installListeners()

	b.mu.Lock()
	b.tab = t
	b.mu.Unlock()

	return t, nil
}

// Close implements driver.Browser: shuts down the single owned tab and
// the Chrome process underneath it.
func (b *Browser) Close() error {
	b.mu.Lock()
	t := b.tab
	b.tab = nil
	b.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.shutdown()
}

type requestInfo struct {
	URL    string
	Method string
}

// Tab drives a single Chrome tab via chromedp.
type Tab struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	closeOnce sync.Once
	closed    chan struct{}

	bindingsMu sync.RWMutex
	bindings   map[string]func(string)

	handlersMu sync.RWMutex
	handlers   []func(driver.Event)

	requestsMu sync.Mutex
	requests   map[network.RequestID]requestInfo
}

func (t *Tab) shutdown() error {
	t.closeOnce.Do(func() { close(t.closed) })
	t.cancelTab()
	t.cancelAlloc()
	return nil
}

func (t *Tab) Closed() <-chan struct{} { return t.closed }

func (t *Tab) OnEvent(handler func(driver.Event)) {
	t.handlersMu.Lock()
	t.handlers = append(t.handlers, handler)
	t.handlersMu.Unlock()
}

func (t *Tab) dispatch(e driver.Event) {
	t.handlersMu.RLock()
	hs := append([]func(driver.Event){}, t.handlers...)
	t.handlersMu.RUnlock()
	for _, h := range hs {
		h(e)
	}
}

// installListeners wires chromedp.ListenTarget once per tab, routing
// CDP events into driver.Event (console/pageerror/requestfailed) and
// into bound host callbacks (spec §4.2 "Callback contract"). Grounded
// directly on the teacher's recorder.go ListenTarget switch.
func (t *Tab) installListeners() {
	chromedp.ListenTarget(t.ctx, func(ev any) {
		switch e := ev.(type) {
		case *runtime.EventBindingCalled:
			t.bindingsMu.RLock()
			cb, ok := t.bindings[e.Name]
			t.bindingsMu.RUnlock()
			if ok {
				go cb(e.Payload)
			}

		case *runtime.EventExceptionThrown:
			msg := ""
			if e.ExceptionDetails != nil {
				msg = e.ExceptionDetails.Text
				if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
					msg = e.ExceptionDetails.Exception.Description
				}
			}
			t.dispatch(driver.Event{Kind: driver.EventPageError, Message: msg})

		case *runtime.EventConsoleAPICalled:
			if e.Type != runtime.APITypeError {
				return
			}
			msg, stack := consoleMessage(e.Args)
			t.dispatch(driver.Event{Kind: driver.EventConsoleError, Message: msg, Stack: stack})

		case *network.EventRequestWillBeSent:
			t.requestsMu.Lock()
			t.requests[e.RequestID] = requestInfo{URL: e.Request.URL, Method: e.Request.Method}
			t.requestsMu.Unlock()

		case *network.EventLoadingFailed:
			if e.ErrorText == "net::ERR_ABORTED" {
				return
			}
			t.requestsMu.Lock()
			info := t.requests[e.RequestID]
			delete(t.requests, e.RequestID)
			t.requestsMu.Unlock()
			t.dispatch(driver.Event{Kind: driver.EventRequestFailed, Message: e.ErrorText, URL: info.URL, Method: info.Method})

		case *page.EventFrameNavigated:
			if e.Frame.ParentID == "" {
				t.dispatch(driver.Event{Kind: driver.EventNavigated, URL: e.Frame.URL})
			}

		case *target.EventDetachedFromTarget:
			t.closeOnce.Do(func() { close(t.closed) })
			t.dispatch(driver.Event{Kind: driver.EventDisconnected})
		}
	})
}

// consoleMessage serializes a console.error call's arguments the way
// spec §4.4 describes: string-valued args take Value, error objects
// take Description (first line -> Message, full text -> Stack).
func consoleMessage(args []*runtime.RemoteObject) (message, stack string) {
	var parts []string
	for _, a := range args {
		if a.Value != nil {
			var s string
			if json.Unmarshal(a.Value, &s) == nil {
				parts = append(parts, s)
				continue
			}
			parts = append(parts, string(a.Value))
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
			if stack == "" {
				stack = a.Description
			}
		}
	}
	message = joinNonEmpty(parts, " ")
	if message == "" {
		message = "console.error"
	}
	if stack == "" {
		stack = message
	} else if idx := indexNewline(stack); idx >= 0 {
		message = stack[:idx]
	}
	return message, stack
}

func joinNonEmpty(parts []string, sep string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}

func indexNewline(s string) int {
	for i, r := range s {
		if r == '\n' {
			return i
		}
	}
	return -1
}

func (t *Tab) Navigate(ctx context.Context, url string, opts driver.GotoOptions) error {
	navCtx := t.ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(t.ctx, opts.Timeout)
		defer cancel()
	}
	return chromedp.Run(navCtx, chromedp.Navigate(url))
}

func (t *Tab) Reload(ctx context.Context) error {
	return chromedp.Run(t.ctx, chromedp.Reload())
}

func (t *Tab) Evaluate(ctx context.Context, expr string, out any) error {
	return chromedp.Run(t.ctx, chromedp.Evaluate(expr, out))
}

func (t *Tab) AddBinding(ctx context.Context, name string, onCall func(payload string)) error {
	err := chromedp.Run(t.ctx, runtime.AddBinding(name))
	if err != nil && !isAlreadyExposedErr(err) {
		return fmt.Errorf("chromedpdriver: add binding %s: %w", name, err)
	}
	t.bindingsMu.Lock()
	t.bindings[name] = onCall
	t.bindingsMu.Unlock()
	return nil
}

// isAlreadyExposedErr tolerates re-registering an existing binding, the
// same leniency spec §9 Open Question (i) and §5 call for.
func isAlreadyExposedErr(err error) bool {
	s := err.Error()
	return contains(s, "already exist") || contains(s, "already registered") || contains(s, "already has")
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func (t *Tab) AddScriptOnNewDocument(ctx context.Context, script string) error {
	return chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	}))
}

func (t *Tab) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	wctx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()
	return chromedp.Run(wctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (t *Tab) ClickSelector(ctx context.Context, selector string, timeout time.Duration) error {
	wctx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()
	return chromedp.Run(wctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

func (t *Tab) ClickXY(ctx context.Context, x, y int) error {
	return chromedp.Run(t.ctx, chromedp.MouseClickXY(float64(x), float64(y)))
}

func (t *Tab) SetCheckedAndDispatch(ctx context.Context, selector string, checked bool) error {
	expr := fmt.Sprintf(`(function(){
  var el = document.querySelector(%s);
  if (!el) { throw new Error("element not found"); }
  el.checked = %t;
  el.dispatchEvent(new Event("change", {bubbles:true}));
  el.dispatchEvent(new Event("click", {bubbles:true}));
})();`, jsString(selector), checked)
	var discard any
	return chromedp.Run(t.ctx, chromedp.Evaluate(expr, &discard))
}

func (t *Tab) SetValueAndDispatch(ctx context.Context, selector, eventName, value string, selStart, selEnd *int) error {
	wctx, cancel := context.WithTimeout(t.ctx, 5*time.Second)
	defer cancel()
	if err := chromedp.Run(wctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return err
	}

	rangeExpr := "null"
	if selStart != nil && selEnd != nil {
		rangeExpr = fmt.Sprintf(`[%d,%d]`, *selStart, *selEnd)
	}
	expr := fmt.Sprintf(`(function(){
  var el = document.querySelector(%s);
  if (!el) { throw new Error("element not found"); }
  el.value = %s;
  el.dispatchEvent(new Event(%s, {bubbles:true}));
  var range = %s;
  var textLike = {text:1, search:1, url:1, tel:1, password:1};
  if (range && el.type && textLike[el.type]) {
    el.setSelectionRange(range[0], range[1]);
  }
})();`, jsString(selector), jsString(value), jsString(eventName), rangeExpr)

	var discard any
	return chromedp.Run(t.ctx, chromedp.Evaluate(expr, &discard))
}

func (t *Tab) SelectOption(ctx context.Context, selector, value string) error {
	return chromedp.Run(t.ctx, chromedp.SetValue(selector, value, chromedp.ByQuery))
}

// keyInfo maps the capture script's key whitelist to CDP DispatchKeyEvent codes.
type keyInfo struct {
	Code         string
	VirtualKey   int64
}

var keyTable = map[string]keyInfo{
	"Enter":      {"Enter", 13},
	"Tab":        {"Tab", 9},
	"Escape":     {"Escape", 27},
	"Backspace":  {"Backspace", 8},
	"Delete":     {"Delete", 46},
	"Home":       {"Home", 36},
	"End":        {"End", 35},
	"PageUp":     {"PageUp", 33},
	"PageDown":   {"PageDown", 34},
	"Insert":     {"Insert", 45},
	"Space":      {"Space", 32},
	"ArrowUp":    {"ArrowUp", 38},
	"ArrowDown":  {"ArrowDown", 40},
	"ArrowLeft":  {"ArrowLeft", 37},
	"ArrowRight": {"ArrowRight", 39},
}

func (t *Tab) PressKey(ctx context.Context, selector, key string) error {
	actions := make([]chromedp.Action, 0, 2)
	if selector != "" {
		actions = append(actions, chromedp.Focus(selector, chromedp.ByQuery))
	}
	actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
		info, ok := keyTable[key]
		if !ok {
			return input.DispatchKeyEvent(input.KeyChar).WithText(key).Do(ctx)
		}
		down := input.DispatchKeyEvent(input.KeyRawKeyDown).
			WithKey(key).WithCode(info.Code).
			WithWindowsVirtualKeyCode(info.VirtualKey).
			WithNativeVirtualKeyCode(info.VirtualKey)
		if err := down.Do(ctx); err != nil {
			return err
		}
		up := input.DispatchKeyEvent(input.KeyUp).
			WithKey(key).WithCode(info.Code).
			WithWindowsVirtualKeyCode(info.VirtualKey).
			WithNativeVirtualKeyCode(info.VirtualKey)
		return up.Do(ctx)
	}))
	return chromedp.Run(t.ctx, actions...)
}

func (t *Tab) AnimateScroll(ctx context.Context, selector string, fromX, fromY, toX, toY int, duration time.Duration) error {
	targetExpr := "window"
	if selector != "" && selector != "window" {
		targetExpr = fmt.Sprintf(`document.querySelector(%s)`, jsString(selector))
	}
	ms := duration.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	expr := fmt.Sprintf(`(function(){
  var target = %s;
  if (!target) { return Promise.resolve(); }
  var fromX=%d, fromY=%d, toX=%d, toY=%d, duration=%d;
  return new Promise(function(resolve){
    var start = null;
    function ease(p){ return 1 - Math.pow(1-p, 3); }
    function step(ts){
      if (!start) { start = ts; }
      var p = Math.min((ts-start)/duration, 1);
      var e = ease(p);
      var x = fromX + (toX-fromX)*e;
      var y = fromY + (toY-fromY)*e;
      if (target === window) { window.scrollTo(x,y); } else { target.scrollLeft = x; target.scrollTop = y; }
      if (p < 1) { requestAnimationFrame(step); } else { resolve(); }
    }
    requestAnimationFrame(step);
  });
})();`, targetExpr, fromX, fromY, toX, toY, ms)

	var discard any
	return chromedp.Run(t.ctx, chromedp.Evaluate(expr, &discard, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
}

func (t *Tab) OuterWindowSize(ctx context.Context) (int, int, error) {
	var w, h int64
	err := chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		targetID := chromedp.FromContext(ctx).Target.TargetID
		_, bounds, err := browser.GetWindowForTarget().WithTargetID(targetID).Do(ctx)
		if err != nil {
			return err
		}
		if bounds.Width != nil {
			w = *bounds.Width
		}
		if bounds.Height != nil {
			h = *bounds.Height
		}
		return nil
	}))
	return int(w), int(h), err
}

func (t *Tab) ResizeWindow(ctx context.Context, width, height int) error {
	return chromedp.Run(t.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		targetID := chromedp.FromContext(ctx).Target.TargetID
		wid, _, err := browser.GetWindowForTarget().WithTargetID(targetID).Do(ctx)
		if err != nil {
			return err
		}
		w, h := int64(width), int64(height)
		return browser.SetWindowBounds(wid, &browser.Bounds{Width: &w, Height: &h}).Do(ctx)
	}))
}

func (t *Tab) Screenshot(ctx context.Context, opts driver.ScreenshotOptions) ([]byte, string, error) {
	var buf []byte
	var action chromedp.Action
	if opts.FullPage {
		action = chromedp.FullScreenshot(&buf, 100)
	} else {
		action = chromedp.CaptureScreenshot(&buf)
	}
	if err := chromedp.Run(t.ctx, action); err != nil {
		return nil, "", fmt.Errorf("chromedpdriver: screenshot: %w", err)
	}
	if opts.Path != "" {
		if err := os.WriteFile(opts.Path, buf, 0644); err != nil {
			return nil, "", fmt.Errorf("chromedpdriver: write screenshot: %w", err)
		}
		return nil, opts.Path, nil
	}
	return buf, "", nil
}

func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
