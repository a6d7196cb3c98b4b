package overlay

import (
	"context"
	"encoding/json"
	"fmt"
)

// Evaluator is the minimal seam overlay needs from a browser tab: run
// a JS expression and discard the result. Satisfied by
// pkg/driver.Tab without importing it here (keeps overlay dependency-free).
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, out any) error
}

// Overlay wraps the injected widget with the defensive hint methods
// spec §4.3 lists. Every method swallows its own error: visual effects
// must never break functional flow (spec §7).
type Overlay struct {
	tab      Evaluator
	Disabled bool
}

// New returns an Overlay bound to tab. Pass Disabled=true (via the
// Replayer's visualEffects option) to make every call a no-op.
func New(tab Evaluator) *Overlay {
	return &Overlay{tab: tab}
}

func (o *Overlay) run(expr string) {
	if o == nil || o.Disabled || o.tab == nil {
		return
	}
	var discard any
	_ = o.tab.Evaluate(context.Background(), expr, &discard)
}

// Inject installs the overlay widget. Idempotent: safe to call after
// every main-frame navigation before further hints.
func (o *Overlay) Inject() { o.run(Script()) }

func (o *Overlay) ShowReplayIndicator() {
	o.run(`window.__u4aOverlay && window.__u4aOverlay.show();`)
}

func (o *Overlay) HideReplayIndicator() {
	o.run(`window.__u4aOverlay && window.__u4aOverlay.hide();`)
}

func (o *Overlay) ShowClick(selector string, x, y int) {
	o.run(fmt.Sprintf(`window.__u4aOverlay && window.__u4aOverlay.setLast(%s);`,
		jsString(fmt.Sprintf("click %s (%d,%d)", selector, x, y))))
}

func (o *Overlay) ShowInput(selector, value string) {
	o.run(fmt.Sprintf(`window.__u4aOverlay && window.__u4aOverlay.setLast(%s);`,
		jsString(fmt.Sprintf("input %s = %q", selector, value))))
}

func (o *Overlay) ShowKeyPress(key string) {
	o.run(fmt.Sprintf(`window.__u4aOverlay && window.__u4aOverlay.setLast(%s);`,
		jsString(fmt.Sprintf("key %s", key))))
}

func (o *Overlay) ShowScroll(selector string) {
	o.run(fmt.Sprintf(`window.__u4aOverlay && window.__u4aOverlay.setLast(%s);`,
		jsString(fmt.Sprintf("scroll %s", selector))))
}

func (o *Overlay) ShowBrowserResize(fromW, fromH, toW, toH int) {
	o.run(fmt.Sprintf(`window.__u4aOverlay && window.__u4aOverlay.setLast(%s);`,
		jsString(fmt.Sprintf("resize %dx%d -> %dx%d", fromW, fromH, toW, toH))))
}

// jsString renders a Go string as a JS double-quoted string literal
// using encoding/json's escaping rules (safe for embedding in Evaluate
// expressions built by simple concatenation).
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
