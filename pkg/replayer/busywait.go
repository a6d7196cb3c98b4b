package replayer

import (
	"context"
	"fmt"
	"time"
)

// Evaluator is the minimal seam waitForIdle needs: run a JS
// expression and decode its result. driver.Tab satisfies this
// structurally without this package importing pkg/driver for it.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, out any) error
}

// BusyTimeoutError is returned by waitForIdle when the busy indicator
// never clears within busyTimeout (spec §4.6).
type BusyTimeoutError struct {
	Timeout  time.Duration
	Selector string
}

func (e *BusyTimeoutError) Error() string {
	return fmt.Sprintf("replayer: busy indicator %q still visible after %s", e.Selector, e.Timeout)
}

// waitForIdle polls every 100ms until no element matching the
// comma-separated selector list is visible (not display:none,
// visibility:hidden, or [hidden]), the page closes, or busyTimeout
// elapses. An empty selector is treated as "no barrier configured".
func waitForIdle(ctx context.Context, tab Evaluator, selector string, busyTimeout time.Duration, closed <-chan struct{}) error {
	if selector == "" {
		return nil
	}
	expr := busyCheckExpr(selector)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.Now().Add(busyTimeout)

	for {
		var anyVisible bool
		if err := tab.Evaluate(ctx, expr, &anyVisible); err == nil && !anyVisible {
			return nil
		}
		if time.Now().After(deadline) {
			return &BusyTimeoutError{Timeout: busyTimeout, Selector: selector}
		}
		select {
		case <-closed:
			return fmt.Errorf("replayer: page closed while waiting for busy indicator")
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func busyCheckExpr(selector string) string {
	return `(function(){
  var sel = ` + jsString(selector) + `;
  var list = document.querySelectorAll(sel);
  for (var i = 0; i < list.length; i++) {
    var el = list[i];
    var style = window.getComputedStyle(el);
    if (style.display === "none" || style.visibility === "hidden" || el.hasAttribute("hidden")) { continue; }
    return true;
  }
  return false;
})();`
}
